package repository

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// Migrations returns the ordered schema migrations.
func Migrations() []*gormigrate.Migration {
	return []*gormigrate.Migration{
		{
			ID: "20250301_create_transport_records",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&TransportModel{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("transport_records")
			},
		},
		{
			ID: "20250315_index_transport_records_date",
			Migrate: func(tx *gorm.DB) error {
				return tx.Exec("CREATE INDEX IF NOT EXISTS idx_transport_records_date ON transport_records (date_of_transport)").Error
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Exec("DROP INDEX IF EXISTS idx_transport_records_date").Error
			},
		},
		{
			ID: "20250401_unconstrain_transport_numeric_columns",
			Migrate: func(tx *gorm.DB) error {
				return alterNumericColumns(tx, "numeric")
			},
			Rollback: func(tx *gorm.DB) error {
				return alterNumericColumns(tx, "numeric(14,2)")
			},
		},
	}
}

// numericColumns hold quantities and money entered with arbitrary precision.
var numericColumns = []string{"quantity_qtls", "distance_km", "rate_per_km", "amount"}

func alterNumericColumns(tx *gorm.DB, columnType string) error {
	for _, col := range numericColumns {
		stmt := "ALTER TABLE transport_records ALTER COLUMN " + col + " TYPE " + columnType
		if err := tx.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

// Migrate applies every pending migration.
func Migrate(db *gorm.DB) error {
	return gormigrate.New(db, gormigrate.DefaultOptions, Migrations()).Migrate()
}

// RollbackLast reverts the most recently applied migration.
func RollbackLast(db *gorm.DB) error {
	return gormigrate.New(db, gormigrate.DefaultOptions, Migrations()).RollbackLast()
}
