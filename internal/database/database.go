package database

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/yukikurage/warbler/internal/config"
	"github.com/yukikurage/warbler/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Dialector picks a GORM dialector from a database URL.
// Supported schemes: postgres://, postgresql://, mysql:// and sqlite://.
func Dialector(databaseURL string) (gorm.Dialector, error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return postgres.Open(databaseURL), nil
	case strings.HasPrefix(databaseURL, "mysql://"):
		dsn, err := mysqlDSN(databaseURL)
		if err != nil {
			return nil, err
		}
		return mysql.Open(dsn), nil
	case strings.HasPrefix(databaseURL, "sqlite://"):
		return sqlite.Open(sqliteDSN(strings.TrimPrefix(databaseURL, "sqlite://"))), nil
	default:
		return nil, fmt.Errorf("unsupported database url: %q", databaseURL)
	}
}

// sqliteDSN turns on foreign keys for every pooled connection. The PRAGMA
// in Open only reaches the connection it runs on.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys=") || strings.Contains(dsn, "_fk=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&_foreign_keys=on"
	}
	return dsn + "?_foreign_keys=on"
}

func mysqlDSN(databaseURL string) (string, error) {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid mysql url: %w", err)
	}
	password, _ := u.User.Password()
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		u.User.Username(),
		password,
		u.Host,
		strings.TrimPrefix(u.Path, "/"),
	), nil
}

// Connect opens the database described by cfg.DatabaseURL.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	dialector, err := Dialector(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	level := logger.Warn
	if cfg.GinMode == "debug" {
		level = logger.Info
	}

	db, err := Open(dialector, logger.Default.LogMode(level))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established", "dialect", db.Dialector.Name())
	return db, nil
}

// Open opens a GORM connection with constraint error translation enabled.
// SQLite connections additionally get foreign key enforcement.
func Open(dialector gorm.Dialector, gormLogger logger.Interface) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	if db.Dialector.Name() == "sqlite" {
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}
	return db, nil
}

// Migrate creates or updates the schema and its secondary indexes.
func Migrate(db *gorm.DB) error {
	slog.Info("running database migrations")
	err := db.AutoMigrate(
		&models.User{},
		&models.Message{},
		&models.Follow{},
		&models.Like{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := AddIndexes(db); err != nil {
		return err
	}

	slog.Info("database migrations completed")
	return nil
}
