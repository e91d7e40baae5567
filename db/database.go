package db

import (
	"database/sql"
	"fmt"
	"lessonbook_app_go/config"
	"lessonbook_app_go/models"
	"strings"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Initialize opens the configured store. Postgres wins when DATABASE_URL is
// set, then Turso, then the local sqlite file in WAL mode.
func Initialize(cfg *config.Config) error {
	logLevel := logger.Info
	if cfg.Environment == "production" {
		logLevel = logger.Warn
	}
	gormCfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	}

	dialector, backend, err := dialectorFor(cfg)
	if err != nil {
		return err
	}

	DB, err = gorm.Open(dialector, gormCfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	zap.L().Info("database connection established", zap.String("backend", backend))
	return nil
}

func dialectorFor(cfg *config.Config) (gorm.Dialector, string, error) {
	switch {
	case strings.HasPrefix(cfg.DatabaseURL, "postgres://") || strings.HasPrefix(cfg.DatabaseURL, "postgresql://"):
		return postgres.Open(cfg.DatabaseURL), "postgres", nil
	case cfg.TursoDatabaseURL != "":
		dsn := cfg.TursoDatabaseURL
		if cfg.TursoAuthToken != "" {
			dsn += "?authToken=" + cfg.TursoAuthToken
		}
		conn, err := sql.Open("libsql", dsn)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open libsql connection: %w", err)
		}
		return sqlite.New(sqlite.Config{Conn: conn}), "libsql", nil
	case cfg.DatabaseURL != "":
		return nil, "", fmt.Errorf("unsupported DATABASE_URL scheme")
	default:
		// Enable WAL mode for better concurrency support
		return sqlite.Open(cfg.DBPath + "?_journal_mode=WAL&_busy_timeout=5000"), "sqlite", nil
	}
}

// Models lists every persisted model in migration order
func Models() []interface{} {
	return []interface{}{
		&models.Teacher{},
		&models.Session{},
		&models.AvailabilityWindow{},
		&models.BlockedRange{},
		&models.BookingSettings{},
		&models.ScheduledReservation{},
		&models.BookingRequest{},
		&models.AuditLog{},
	}
}

// AutoMigrate runs database migrations for the provided models
func AutoMigrate(models ...interface{}) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	if err := DB.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	zap.L().Info("database migrations completed")
	return nil
}

// Close closes the database connection
func Close() error {
	if DB == nil {
		return nil
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	return sqlDB.Close()
}
