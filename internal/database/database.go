package database

import (
	"fmt"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/yukikurage/sponsor-deliverables-api/internal/config"
	"github.com/yukikurage/sponsor-deliverables-api/internal/models"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

const (
	connectInitialInterval = 2 * time.Second
	connectMaxInterval     = 30 * time.Second
	connectMaxElapsed      = 3 * time.Minute
)

// Dialector builds the GORM dialector for the configured driver.
func Dialector(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.DBDriver {
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			cfg.DBHost,
			cfg.DBPort,
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBName,
		)
		return postgres.Open(dsn), nil
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBHost,
			cfg.DBPort,
			cfg.DBName,
		)
		return mysql.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}
}

// Connect opens the database, retrying with exponential backoff while it is unreachable.
func Connect(cfg *config.Config, log *zap.Logger) error {
	dialector, err := Dialector(cfg)
	if err != nil {
		return err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = connectInitialInterval
	bo.MaxInterval = connectMaxInterval
	bo.MaxElapsedTime = connectMaxElapsed

	var db *gorm.DB
	err = backoff.RetryNotify(func() error {
		log.Info("Attempting to connect to database", zap.String("driver", cfg.DBDriver), zap.String("host", cfg.DBHost))

		var openErr error
		db, openErr = gorm.Open(dialector, &gorm.Config{
			Logger: logger.Default.LogMode(logLevel(cfg.DBLogLevel)),
		})
		if openErr != nil {
			return openErr
		}

		sqlDB, openErr := db.DB()
		if openErr != nil {
			return openErr
		}
		return sqlDB.Ping()
	}, bo, func(err error, d time.Duration) {
		log.Warn("Database connection failed, retrying", zap.Error(err), zap.Duration("retry_in", d))
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	DB = db
	log.Info("Database connection established")
	return nil
}

// Migrate creates or updates the schema and its secondary indexes.
func Migrate(log *zap.Logger) error {
	log.Info("Running database migrations...")
	err := DB.AutoMigrate(
		&models.Organization{},
		&models.Profile{},
		&models.Event{},
		&models.Sponsor{},
		&models.DeliverableTemplate{},
		&models.Deliverable{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := AddIndexes(DB, log); err != nil {
		return fmt.Errorf("failed to add indexes: %w", err)
	}

	log.Info("Database migrations completed")
	return nil
}

func GetDB() *gorm.DB {
	return DB
}

// SetDB sets the database instance (used for testing)
func SetDB(db *gorm.DB) {
	DB = db
}

func logLevel(level string) logger.LogLevel {
	switch level {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}
