package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"agencypulse/server/internal/models"
)

func newTestGorm(t *testing.T) (*Database, *gorm.DB) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")

	db, err := NewDatabase(path)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	require.NoError(t, err)
	return db, gdb
}

func TestUpsertPropertiesInsertsNewRecords(t *testing.T) {
	db, gdb := newTestGorm(t)

	batch := []*models.PropertyDetails{sampleProperty(), sampleProperty()}
	err := gdb.Transaction(func(tx *gorm.DB) error {
		return UpsertProperties(tx, batch)
	})
	require.NoError(t, err)

	all, err := db.GetAllProperties(ListOptions{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUpsertPropertiesReplacesByID(t *testing.T) {
	db, gdb := newTestGorm(t)

	id, err := db.InsertProperty(sampleProperty())
	require.NoError(t, err)

	replacement := sampleProperty()
	replacement.ID = id
	replacement.Category = models.CategorySold
	replacement.SoldPrice = floatPtr(910000)

	err = gdb.Transaction(func(tx *gorm.DB) error {
		return UpsertProperties(tx, []*models.PropertyDetails{replacement})
	})
	require.NoError(t, err)

	all, err := db.GetAllProperties(ListOptions{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, models.CategorySold, all[0].Category)
	require.NotNil(t, all[0].SoldPrice)
	assert.Equal(t, 910000.0, *all[0].SoldPrice)
}

func TestUpsertPropertiesSkipsNilAndEmpty(t *testing.T) {
	db, gdb := newTestGorm(t)

	err := gdb.Transaction(func(tx *gorm.DB) error {
		return UpsertProperties(tx, []*models.PropertyDetails{nil})
	})
	require.NoError(t, err)

	all, err := db.GetAllProperties(ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, all)
}
