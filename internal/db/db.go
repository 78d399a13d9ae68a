package db

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"nearmex/internal/config"
	"nearmex/internal/destination"
	"nearmex/internal/favorite"
	"nearmex/internal/review"
	"nearmex/internal/user"
)

func dialector(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "postgres":
		return postgres.Open(cfg.DSN), nil
	case "sqlite":
		return sqlite.Open(cfg.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Open connects to the configured database. Queries slower than 200ms and
// errors are logged through logger.
func Open(cfg config.DatabaseConfig, logger *logrus.Logger) (*gorm.DB, error) {
	dial, err := dialector(cfg)
	if err != nil {
		return nil, err
	}
	gl := gormlogger.New(logger, gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
	})
	conn, err := gorm.Open(dial, &gorm.Config{
		TranslateError: true,
		Logger:         gl,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	if cfg.Driver == "sqlite" {
		// One writer avoids "database is locked" under concurrent requests.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}
	return conn, nil
}

// Migrate creates or updates every table the service owns.
func Migrate(conn *gorm.DB) error {
	if err := conn.AutoMigrate(&user.User{}); err != nil {
		return err
	}
	if err := conn.AutoMigrate(&destination.Destination{}); err != nil {
		return err
	}
	if err := conn.AutoMigrate(&review.Review{}, &favorite.Favorite{}); err != nil {
		return err
	}
	return nil
}

// Init opens the database and migrates it.
func Init(cfg *config.Config, logger *logrus.Logger) (*gorm.DB, error) {
	conn, err := Open(cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	if err := Migrate(conn); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	logger.Info("Database connected and migrated")
	return conn, nil
}
