package infra

import (
	"fmt"

	"tireshop/internal/migrations"
	"tireshop/internal/model"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// NewDatabase opens a GORM connection for the configured driver and brings
// the schema up to date. PostgreSQL is migrated with the embedded SQL files;
// SQLite (local mode and tests) uses AutoMigrate.
func NewDatabase(driver, dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	}

	switch driver {
	case DriverPostgres, "":
		db, err := gorm.Open(postgres.Open(dsn), cfg)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)

		if err := migrations.Run(sqlDB); err != nil {
			return nil, err
		}
		return db, nil

	case DriverSQLite:
		db, err := gorm.Open(sqlite.Open(dsn), cfg)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// one writer; also keeps ":memory:" databases on a single connection
		sqlDB.SetMaxOpenConns(1)

		if err := AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("AutoMigrate: %w", err)
		}
		return db, nil

	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
}

// AutoMigrate creates the schema from the GORM models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Customer{},
		&model.Product{},
		&model.Service{},
		&model.InventoryMovement{},
		&model.ServiceOrder{},
		&model.ServiceOrderProduct{},
		&model.ServiceOrderService{},
	)
}
