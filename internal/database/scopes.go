package database

import (
	"time"

	"gorm.io/gorm"

	"github.com/yukikurage/ndt-worklog/internal/utils"
)

// Paginate applies pagination to a GORM query
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if params.Limit <= 0 {
			return db
		}
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}

// DateBetween restricts column to the inclusive civil-date range. Nil bounds
// are open. The upper bound is compared exclusively against the next day so
// drivers that store dates with a time part still match the last day.
func DateBetween(column string, from, to *time.Time) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if from != nil {
			db = db.Where(column+" >= ?", civil(*from))
		}
		if to != nil {
			db = db.Where(column+" < ?", civil(*to).AddDate(0, 0, 1))
		}
		return db
	}
}

func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
