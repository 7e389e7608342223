package viewmodel

import (
	"context"
	"errors"
	"log"

	"github.com/pageza/nutriplan/internal/api"
	"github.com/pageza/nutriplan/internal/archive"
	"github.com/pageza/nutriplan/internal/async"
	"github.com/pageza/nutriplan/internal/models"
	"github.com/pageza/nutriplan/internal/state"
)

// StatsViewModel logs meals and loads nutrition reports
type StatsViewModel struct {
	base

	DailyNutrition  state.Slot[models.DailyNutrition]
	WeeklyReport    state.Slot[models.WeeklyReport]
	NutritionReport state.Slot[models.NutritionReport]

	LogOp    state.Op
	DailyOp  state.Op
	WeeklyOp state.Op
	ReportOp state.Op
	ShareOp  state.Op

	client   api.NutritionAPI
	archiver archive.Archiver
}

// NewStatsViewModel creates a StatsViewModel. archiver may be nil, in which
// case sharing reports fails with archive.ErrNotConfigured.
func NewStatsViewModel(ctx context.Context, client api.NutritionAPI, archiver archive.Archiver, logger *log.Logger) *StatsViewModel {
	return &StatsViewModel{
		base:     newBase(ctx, logger),
		client:   client,
		archiver: archiver,
	}
}

// LogMeal records a planned meal as eaten on date. Nutrition slots are not
// refreshed; fetch them again to see the change.
func (vm *StatsViewModel) LogMeal(uid, mealID, date string) *async.Task[*models.MessageResponse] {
	req := models.LogMealRequest{UID: uid, MealID: mealID, Date: date}
	if err := models.Validate(req); err != nil {
		return reject[*models.MessageResponse](&vm.base, &vm.LogOp, "log meal", err)
	}
	return launch(&vm.base, &vm.LogOp, "log meal",
		func(ctx context.Context) (*models.MessageResponse, error) {
			return vm.client.LogMeal(ctx, req)
		},
		vm.acknowledge("Meal logged successfully"))
}

// LogCustomMeal records a hand-entered meal
func (vm *StatsViewModel) LogCustomMeal(meal models.CustomMeal) *async.Task[*models.MessageResponse] {
	if err := models.Validate(meal); err != nil {
		return reject[*models.MessageResponse](&vm.base, &vm.LogOp, "log custom meal", err)
	}
	return launch(&vm.base, &vm.LogOp, "log custom meal",
		func(ctx context.Context) (*models.MessageResponse, error) {
			return vm.client.LogCustomMeal(ctx, meal)
		},
		vm.acknowledge("Custom meal logged successfully"))
}

func (vm *StatsViewModel) acknowledge(fallback string) func(*models.MessageResponse) {
	return func(resp *models.MessageResponse) {
		msg := resp.Message
		if msg == "" {
			msg = fallback
		}
		vm.Message.Set(msg)
	}
}

// FetchDailyNutrition replaces DailyNutrition with the summary for date
func (vm *StatsViewModel) FetchDailyNutrition(uid, date string) *async.Task[*models.DailyNutrition] {
	if _, err := models.ParseDate(date); err != nil {
		return reject[*models.DailyNutrition](&vm.base, &vm.DailyOp, "fetch daily nutrition", err)
	}
	return launch(&vm.base, &vm.DailyOp, "fetch daily nutrition",
		func(ctx context.Context) (*models.DailyNutrition, error) {
			return vm.client.GetDailyNutrition(ctx, uid, date)
		},
		func(d *models.DailyNutrition) {
			vm.DailyNutrition.Set(*d)
		})
}

// FetchWeeklyReport replaces WeeklyReport with the week ending at endDate
func (vm *StatsViewModel) FetchWeeklyReport(uid, endDate string) *async.Task[*models.WeeklyReport] {
	if _, err := models.ParseDate(endDate); err != nil {
		return reject[*models.WeeklyReport](&vm.base, &vm.WeeklyOp, "fetch weekly report", err)
	}
	return launch(&vm.base, &vm.WeeklyOp, "fetch weekly report",
		func(ctx context.Context) (*models.WeeklyReport, error) {
			return vm.client.GetWeeklyReport(ctx, uid, endDate)
		},
		func(r *models.WeeklyReport) {
			vm.WeeklyReport.Set(*r)
		})
}

// FetchNutritionReport replaces NutritionReport with the inclusive range
// startDate..endDate
func (vm *StatsViewModel) FetchNutritionReport(uid, startDate, endDate string) *async.Task[*models.NutritionReport] {
	if err := models.ValidateRange(startDate, endDate); err != nil {
		return reject[*models.NutritionReport](&vm.base, &vm.ReportOp, "fetch nutrition report", err)
	}
	return launch(&vm.base, &vm.ReportOp, "fetch nutrition report",
		func(ctx context.Context) (*models.NutritionReport, error) {
			return vm.client.GetNutritionReport(ctx, uid, startDate, endDate)
		},
		func(r *models.NutritionReport) {
			vm.NutritionReport.Set(*r)
		})
}

// ShareWeeklyReport archives the loaded weekly report and yields a link to it
func (vm *StatsViewModel) ShareWeeklyReport() *async.Task[string] {
	report, ok := vm.WeeklyReport.Get()
	if err := vm.checkShare(ok); err != nil {
		return reject[string](&vm.base, &vm.ShareOp, "share weekly report", err)
	}
	return launch(&vm.base, &vm.ShareOp, "share weekly report",
		func(ctx context.Context) (string, error) {
			return vm.archiver.ArchiveWeeklyReport(ctx, &report)
		},
		func(url string) {
			vm.Message.Set("Report shared: " + url)
		})
}

// ShareNutritionReport archives the loaded range report and yields a link to it
func (vm *StatsViewModel) ShareNutritionReport() *async.Task[string] {
	report, ok := vm.NutritionReport.Get()
	if err := vm.checkShare(ok); err != nil {
		return reject[string](&vm.base, &vm.ShareOp, "share nutrition report", err)
	}
	return launch(&vm.base, &vm.ShareOp, "share nutrition report",
		func(ctx context.Context) (string, error) {
			return vm.archiver.ArchiveNutritionReport(ctx, &report)
		},
		func(url string) {
			vm.Message.Set("Report shared: " + url)
		})
}

func (vm *StatsViewModel) checkShare(loaded bool) error {
	if vm.archiver == nil {
		return archive.ErrNotConfigured
	}
	if !loaded {
		return errors.New("no report loaded")
	}
	return nil
}
