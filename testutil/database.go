package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DBHelper database test helpers
type DBHelper struct {
	DB *gorm.DB
}

// NewDBHelper wraps db
func NewDBHelper(db *gorm.DB) *DBHelper {
	return &DBHelper{DB: db}
}

// NewSQLite in-memory sqlite database, migrated with models
func NewSQLite(t testing.TB, models ...any) *DBHelper {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	if len(models) > 0 {
		require.NoError(t, db.AutoMigrate(models...))
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return NewDBHelper(db)
}

// DeleteAll removes every row of a table
func (h *DBHelper) DeleteAll(tableName string) error {
	return h.DB.Exec("DELETE FROM " + tableName).Error
}

// Count rows of a table
func (h *DBHelper) Count(tableName string) (int64, error) {
	var count int64
	err := h.DB.Table(tableName).Count(&count).Error
	return count, err
}

// CountWhere rows matching a condition
func (h *DBHelper) CountWhere(tableName string, where string, args ...any) (int64, error) {
	var count int64
	err := h.DB.Table(tableName).Where(where, args...).Count(&count).Error
	return count, err
}
