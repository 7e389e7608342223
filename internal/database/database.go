package database

import (
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq"
	"github.com/pageza/nutriplan/config"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open creates the gorm connection backing the preference store
func Open(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.PrefsBackend {
	case config.PrefsBackendSQLite:
		log.Printf("Opening preference database at %s", cfg.PrefsSQLitePath)
		dialector = sqlite.Open(cfg.PrefsSQLitePath)
	case config.PrefsBackendPostgres:
		// Log connection details (without password)
		log.Printf("Connecting to database at %s:%s as user %s", cfg.DBHost, cfg.DBPort, cfg.DBUser)
		dialector = postgres.New(postgres.Config{
			DriverName: "postgres",
			DSN:        PostgresDSN(cfg),
		})
	default:
		return nil, fmt.Errorf("backend %q is not a SQL backend", cfg.PrefsBackend)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("error getting database handle: %w", err)
	}

	if cfg.PrefsBackend == config.PrefsBackendSQLite {
		// sqlite allows a single writer; one connection keeps commits ordered
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	log.Printf("Successfully connected to %s preference database", cfg.PrefsBackend)
	return db, nil
}

// PostgresDSN builds a lib/pq connection string from the configuration
func PostgresDSN(cfg *config.Config) string {
	sslMode := cfg.DBSSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, sslMode,
	)
}

// Close releases the underlying connection pool
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
