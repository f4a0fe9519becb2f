package postgres

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"photocritic/domain/models"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type DatabaseConfig struct {
	Driver     string
	Host       string
	Port       string
	User       string
	Password   string
	DBName     string
	SSLMode    string
	SQLitePath string
	Verbose    bool
}

// NewDatabase opens Postgres, or SQLite for single-node deployments.
func NewDatabase(config DatabaseConfig) (*gorm.DB, error) {
	level := logger.Warn
	if config.Verbose {
		level = logger.Info
	}
	gormConfig := &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	}

	var dialector gorm.Dialector
	switch config.Driver {
	case DriverSQLite:
		dialector = sqlite.Open(config.SQLitePath)
	case DriverPostgres, "":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
			config.Host, config.User, config.Password, config.DBName, config.Port, config.SSLMode)
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", config.Driver)
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if config.Driver == DriverSQLite {
		// SQLite allows one writer; serialize through a single connection.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sql.DB: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Photo{},
		&models.Analysis{},
		&models.Opinion{},
		&models.CameraModel{},
		&models.ActivityLog{},
	); err != nil {
		return fmt.Errorf("failed to run auto migrations: %w", err)
	}

	if db.Dialector.Name() == DriverPostgres {
		if err := runPostgresMigrations(db); err != nil {
			return fmt.Errorf("failed to run postgres migrations: %w", err)
		}
	}
	return nil
}

// runPostgresMigrations handles what AutoMigrate cannot express
func runPostgresMigrations(db *gorm.DB) error {
	migrations := []string{
		// Opinions survive their analysis with a NULL reference
		`DO $$ BEGIN
			ALTER TABLE opinions ADD CONSTRAINT fk_opinions_analysis
				FOREIGN KEY (analysis_id) REFERENCES analyses(id) ON DELETE SET NULL;
		EXCEPTION WHEN duplicate_object THEN NULL; END $$`,

		// Partial index backing the current-analysis-per-photo listing
		`CREATE INDEX IF NOT EXISTS idx_analyses_visible_photo_created
			ON analyses(photo_id, created_at DESC, id DESC) WHERE is_hidden = false`,
	}

	for _, sql := range migrations {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("migration failed: %.50s: %w", sql, err)
		}
	}
	return nil
}
