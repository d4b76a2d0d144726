package database

import (
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/ndt-worklog/internal/config"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newPostgresMock(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)
	return db, mock
}

func TestAddIndexes_Postgres(t *testing.T) {
	db, mock := newPostgresMock(t)

	for i, idx := range indexes {
		count := 0
		if i == 0 {
			count = 1
		}
		mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM pg_indexes WHERE tablename = $1 AND indexname = $2")).
			WithArgs(idx.table, idx.name).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(count))
		if count == 0 {
			mock.ExpectExec(regexp.QuoteMeta("CREATE INDEX " + idx.name + " ON " + idx.table)).
				WillReturnResult(sqlmock.NewResult(0, 0))
		}
	}

	require.NoError(t, AddIndexes(db, zerolog.Nop()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddIndexes_PostgresCheckFails(t *testing.T) {
	db, mock := newPostgresMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM pg_indexes")).
		WillReturnError(assert.AnError)

	err := AddIndexes(db, zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), indexes[0].name)
}

func TestAddIndexes_SQLiteIsIdempotent(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	defer sqlDB.Close()

	require.NoError(t, db.AutoMigrate(Models()...))
	require.NoError(t, AddIndexes(db, zerolog.Nop()))
	require.NoError(t, AddIndexes(db, zerolog.Nop()))

	for _, idx := range indexes {
		assert.True(t, db.Migrator().HasIndex(idx.table, idx.name), idx.name)
	}
}

func TestDialector(t *testing.T) {
	for _, driver := range []string{"mysql", "postgres", "sqlite"} {
		d, err := Dialector(&config.Config{DBDriver: driver, DBPath: ":memory:"})
		require.NoError(t, err)
		assert.Equal(t, driver, d.Name())
	}

	_, err := Dialector(&config.Config{DBDriver: "oracle"})
	assert.Error(t, err)
}
