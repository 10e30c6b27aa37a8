package database

import (
	"embed"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrationManager handles database migrations
type MigrationManager struct {
	db      *gorm.DB
	migrate *migrate.Migrate
	dbType  string
	logger  *slog.Logger
}

// NewMigrationManager creates a new migration manager
func NewMigrationManager(db *gorm.DB, dbType string) (*MigrationManager, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to create source driver: %w", err)
	}

	var dbDriver database.Driver
	switch dbType {
	case "sqlite", "sqlite3", "":
		dbDriver, err = sqlite3.WithInstance(sqlDB, &sqlite3.Config{})
	case "postgres", "postgresql":
		dbDriver, err = postgres.WithInstance(sqlDB, &postgres.Config{})
	case "mysql":
		dbDriver, err = mysql.WithInstance(sqlDB, &mysql.Config{})
	default:
		return nil, fmt.Errorf("unsupported database type: %s", dbType)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create database driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, dbType, dbDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	return &MigrationManager{
		db:      db,
		migrate: m,
		dbType:  dbType,
		logger:  slog.Default(),
	}, nil
}

// Up runs all pending migrations
func (m *MigrationManager) Up() error {
	m.logger.Info("Running database migrations", "database", m.dbType)

	err := m.migrate.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, dirty, _ := m.migrate.Version()
	m.logger.Info("Migrations complete", "version", version, "dirty", dirty)
	return nil
}

// Down rolls back the most recent migration
func (m *MigrationManager) Down() error {
	m.logger.Info("Rolling back last migration")

	if err := m.migrate.Steps(-1); err != nil {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}
	return nil
}
