// Package app wires configuration, storage, the API client and the
// view-models into one client instance.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pageza/nutriplan/config"
	"github.com/pageza/nutriplan/internal/api"
	"github.com/pageza/nutriplan/internal/archive"
	"github.com/pageza/nutriplan/internal/database"
	"github.com/pageza/nutriplan/internal/identity"
	"github.com/pageza/nutriplan/internal/preferences"
	"github.com/pageza/nutriplan/internal/service"
	"github.com/pageza/nutriplan/internal/viewmodel"
)

// App owns every long-lived client component
type App struct {
	Client   *api.Client
	Provider *identity.RESTProvider
	Auth     *service.AuthRepository

	Session    *preferences.Store
	Feedback   *preferences.Store
	Onboarding *preferences.Store

	AuthVM     *viewmodel.AuthViewModel
	UserVM     *viewmodel.UserViewModel
	MealPlanVM *viewmodel.MealPlanViewModel
	StatsVM    *viewmodel.StatsViewModel

	db     *gorm.DB
	redis  *redis.Client
	logger *log.Logger
}

// New builds an App from cfg. Report sharing is disabled when no bucket is
// configured.
func New(ctx context.Context, cfg *config.Config, logger *log.Logger) (*App, error) {
	if logger == nil {
		logger = log.Default()
	}
	a := &App{logger: logger}

	backend, err := a.openBackend(cfg)
	if err != nil {
		return nil, err
	}

	client, err := api.NewClient(cfg.APIBaseURL, cfg.HTTPTimeout, logger)
	if err != nil {
		a.closeStorage()
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}
	a.Client = client

	a.Provider = identity.NewRESTProvider(identity.RESTConfig{
		BaseURL:             cfg.IdentityBaseURL,
		APIKey:              cfg.IdentityAPIKey,
		Timeout:             cfg.HTTPTimeout,
		GoogleSignInEnabled: cfg.GoogleSignInEnabled,
	}, logger)
	a.Auth = service.NewAuthRepository(a.Provider, client, logger)

	a.Session = preferences.New(backend, preferences.NamespaceSession, logger)
	a.Feedback = preferences.New(backend, preferences.NamespaceFeedback, logger)
	a.Onboarding = preferences.New(backend, preferences.NamespaceOnboarding, logger)

	var archiver archive.Archiver
	s3Archiver, err := archive.NewFromConfig(ctx, cfg, logger)
	switch {
	case err == nil:
		archiver = s3Archiver
	case errors.Is(err, archive.ErrNotConfigured):
		logger.Println("No S3 bucket configured, report sharing disabled")
	default:
		a.Close()
		return nil, err
	}

	a.AuthVM = viewmodel.NewAuthViewModel(ctx, a.Auth, a.Session, a.Onboarding, logger)
	if _, err := a.AuthVM.ReconcileSession(ctx); err != nil {
		logger.Printf("Failed to reconcile stored session: %v", err)
	}
	a.UserVM = viewmodel.NewUserViewModel(ctx, client, logger)
	a.MealPlanVM = viewmodel.NewMealPlanViewModel(ctx, client, a.Feedback, logger)
	a.StatsVM = viewmodel.NewStatsViewModel(ctx, client, archiver, logger)

	return a, nil
}

func (a *App) openBackend(cfg *config.Config) (preferences.Backend, error) {
	switch cfg.PrefsBackend {
	case config.PrefsBackendMemory:
		return preferences.NewMemoryBackend(), nil
	case config.PrefsBackendSQLite, config.PrefsBackendPostgres:
		db, err := database.Open(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open preference database: %w", err)
		}
		if err := database.RunMigrations(db); err != nil {
			database.Close(db)
			return nil, err
		}
		a.db = db
		return preferences.NewGormBackend(db), nil
	case config.PrefsBackendRedis:
		client, err := database.NewRedisClient(cfg)
		if err != nil {
			return nil, err
		}
		a.redis = client
		return preferences.NewRedisBackend(client), nil
	default:
		return nil, fmt.Errorf("unknown preference backend %q", cfg.PrefsBackend)
	}
}

// Close stops the view-models and observers, then releases storage
func (a *App) Close() {
	if a.AuthVM != nil {
		a.AuthVM.Close()
	}
	if a.UserVM != nil {
		a.UserVM.Close()
	}
	if a.MealPlanVM != nil {
		a.MealPlanVM.Close()
	}
	if a.StatsVM != nil {
		a.StatsVM.Close()
	}
	for _, s := range []*preferences.Store{a.Session, a.Feedback, a.Onboarding} {
		if s != nil {
			s.Close()
		}
	}
	a.closeStorage()
}

func (a *App) closeStorage() {
	if a.db != nil {
		if err := database.Close(a.db); err != nil {
			a.logger.Printf("Failed to close preference database: %v", err)
		}
		a.db = nil
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Printf("Failed to close Redis client: %v", err)
		}
		a.redis = nil
	}
}
