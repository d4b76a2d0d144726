package database

import (
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type index struct {
	table   string
	name    string
	columns string
}

var indexes = []index{
	// Work hours are filtered by owner and date range, then by job and activity
	{"work_hour_entries", "idx_work_hours_user_date", "user_id, work_date"},
	{"work_hour_entries", "idx_work_hours_job_activity", "job_number, activity_type"},

	// Expiry scans
	{"equipment", "idx_equipment_calibration_expiry", "calibration_expiry"},
	{"qualifications", "idx_qualifications_expiry_date", "expiry_date"},

	// Current revision lookups
	{"procedures", "idx_procedures_current", "job_number, is_current_revision"},
}

// AddIndexes adds the composite indexes the struct tags do not declare.
func AddIndexes(db *gorm.DB, log zerolog.Logger) error {
	for _, idx := range indexes {
		exists, err := indexExists(db, idx)
		if err != nil {
			return fmt.Errorf("failed to check index %s: %w", idx.name, err)
		}

		if exists {
			log.Debug().Str("index", idx.name).Msg("Index already exists, skipping")
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Info().Str("index", idx.name).Str("table", idx.table).Str("columns", idx.columns).Msg("Created index")
	}

	return nil
}

func indexExists(db *gorm.DB, idx index) (bool, error) {
	if db.Dialector.Name() != "postgres" {
		return db.Migrator().HasIndex(idx.table, idx.name), nil
	}

	var count int64
	err := db.Raw(`SELECT COUNT(*) FROM pg_indexes WHERE tablename = ? AND indexname = ?`, idx.table, idx.name).
		Scan(&count).Error
	return count > 0, err
}

// MigrateDatabase runs the schema migration and then the extra indexes.
func MigrateDatabase(log zerolog.Logger) error {
	if err := Migrate(log); err != nil {
		return err
	}

	if err := AddIndexes(DB, log); err != nil {
		return fmt.Errorf("failed to add indexes: %w", err)
	}

	return nil
}
