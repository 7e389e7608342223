package viewmodel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pageza/nutriplan/internal/async"
	"github.com/pageza/nutriplan/internal/models"
	"github.com/pageza/nutriplan/internal/preferences"
)

var (
	ErrDraftIndex    = errors.New("feedback draft index out of range")
	ErrDraftMismatch = errors.New("feedback draft does not match the meal at this position")
	ErrDraftRating   = errors.New("rating must be between 0 and 5")
	ErrNoDrafts      = errors.New("no rated meals to submit")
)

// FeedbackSummary is the outcome of SubmitFeedback
type FeedbackSummary struct {
	Sent     int
	Skipped  int
	Failures []FeedbackFailure
}

// FeedbackFailure is one rating the server did not accept
type FeedbackFailure struct {
	Index    int
	RecipeID string
	Message  string
}

func buildDrafts(plan *models.MealPlanResponse) []models.RecipeFeedback {
	drafts := make([]models.RecipeFeedback, len(plan.MealPlan))
	for i, meal := range plan.MealPlan {
		drafts[i] = models.RecipeFeedback{RecipeID: meal.MealID, RecipeName: meal.Name}
	}
	return drafts
}

// UpdateDraft replaces the draft at index. The draft must keep the recipe id
// already at that position. Drafts is republished as a new slice.
func (vm *MealPlanViewModel) UpdateDraft(index int, draft models.RecipeFeedback) error {
	if draft.Rating < 0 || draft.Rating > models.MaxRating {
		return ErrDraftRating
	}

	vm.draftMu.Lock()
	defer vm.draftMu.Unlock()

	current := vm.Drafts.Value()
	if index < 0 || index >= len(current) {
		return fmt.Errorf("%w: %d", ErrDraftIndex, index)
	}
	if current[index].RecipeID != draft.RecipeID {
		return fmt.Errorf("%w: want %s, got %s", ErrDraftMismatch, current[index].RecipeID, draft.RecipeID)
	}

	next := make([]models.RecipeFeedback, len(current))
	copy(next, current)
	next[index] = draft
	vm.Drafts.Set(next)
	return nil
}

// SetRating is UpdateDraft for the rating alone
func (vm *MealPlanViewModel) SetRating(index, rating int) error {
	draft, err := vm.draftAt(index)
	if err != nil {
		return err
	}
	draft.Rating = rating
	return vm.UpdateDraft(index, draft)
}

// SetComment is UpdateDraft for the comment alone
func (vm *MealPlanViewModel) SetComment(index int, comment string) error {
	draft, err := vm.draftAt(index)
	if err != nil {
		return err
	}
	draft.Comment = comment
	return vm.UpdateDraft(index, draft)
}

func (vm *MealPlanViewModel) draftAt(index int) (models.RecipeFeedback, error) {
	drafts := vm.Drafts.Value()
	if index < 0 || index >= len(drafts) {
		return models.RecipeFeedback{}, fmt.Errorf("%w: %d", ErrDraftIndex, index)
	}
	return drafts[index], nil
}

// SubmitFeedback sends one request per draft rated 1 to 5. Unrated drafts are
// skipped whatever their comment. Each request is independent; a failure does
// not stop the rest. After at least one rating is accepted the submission
// date is stored.
func (vm *MealPlanViewModel) SubmitFeedback(uid string) *async.Task[FeedbackSummary] {
	if uid == "" {
		return reject[FeedbackSummary](&vm.base, &vm.SubmitOp, "submit feedback", errors.New("uid is required"))
	}

	drafts := vm.Drafts.Value()
	rated := 0
	for _, d := range drafts {
		if d.Rated() {
			rated++
		}
	}
	if rated == 0 {
		return reject[FeedbackSummary](&vm.base, &vm.SubmitOp, "submit feedback", ErrNoDrafts)
	}

	gen := vm.SubmitOp.Begin()
	vm.Error.Clear()
	return async.Run(vm.ctx, func(ctx context.Context) (FeedbackSummary, error) {
		var summary FeedbackSummary
		for i, d := range drafts {
			if !d.Rated() {
				summary.Skipped++
				continue
			}
			_, err := vm.client.SubmitRecipeFeedback(ctx, models.FeedbackSubmission{
				UID:      uid,
				RecipeID: d.RecipeID,
				Rating:   d.Rating,
				Comment:  d.Comment,
			})
			if err != nil {
				if vm.closed() {
					return summary, ctx.Err()
				}
				vm.logger.Printf("Failed to submit feedback for %s: %v", d.RecipeID, err)
				summary.Failures = append(summary.Failures, FeedbackFailure{Index: i, RecipeID: d.RecipeID, Message: failureText(err)})
				continue
			}
			summary.Sent++
		}

		if vm.closed() {
			return summary, ctx.Err()
		}

		if summary.Sent > 0 && vm.feedback != nil {
			today := models.FormatDate(vm.now())
			if err := vm.feedback.Save(ctx, preferences.KeyLastFeedbackDate, today); err != nil {
				vm.logger.Printf("Failed to store feedback date: %v", err)
			}
		}

		if len(summary.Failures) > 0 {
			msg := summary.Failures[0].Message
			vm.SubmitOp.Fail(gen, msg, func() {
				vm.Error.Set(msg)
				if summary.Sent > 0 {
					vm.Message.Set(fmt.Sprintf("Submitted %d of %d ratings", summary.Sent, rated))
				}
			})
			return summary, nil
		}

		vm.SubmitOp.Succeed(gen, func() {
			vm.Message.Set(fmt.Sprintf("Submitted %d ratings", summary.Sent))
		})
		return summary, nil
	})
}

// ShouldPromptFeedback reports whether feedback has not yet been given on the
// calendar day of today
func (vm *MealPlanViewModel) ShouldPromptFeedback(ctx context.Context, today time.Time) (bool, error) {
	if vm.feedback == nil {
		return true, nil
	}
	last, ok, err := vm.feedback.Get(ctx, preferences.KeyLastFeedbackDate)
	if err != nil {
		return false, fmt.Errorf("failed to read last feedback date: %w", err)
	}
	return !ok || last != models.FormatDate(today), nil
}
