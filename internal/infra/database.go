package infra

import (
	"fmt"

	"ventifai/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx and migrates the
// schema. The model set is small enough that AutoMigrate is authoritative.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}
	return db, nil
}

// RunMigrations creates/updates all tables plus the partial unique index that
// enforces at most one open caja per negocio at the database level — the
// service checks it too, but the constraint is what makes it safe under
// concurrent instances.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Negocio{},
		&model.Usuario{},
		&model.Caja{},
		&model.MovimientoCaja{},
	); err != nil {
		return err
	}
	return db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_caja_abierta_por_negocio
		    ON cajas (negocio_id)
		    WHERE abierta = true
	`).Error
}
