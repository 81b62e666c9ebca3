package repository

import (
	"context"
	"testing"

	"github.com/Thapthai/app-microservice-sub000/internal/catalog/domain"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupCatalog(t *testing.T) (domain.Catalog, *gorm.DB) {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, conn.AutoMigrate(&domain.ItemCatalogEntry{}))
	return Provide(conn), conn
}

func TestLookup(t *testing.T) {
	cat, conn := setupCatalog(t)
	ctx := context.Background()

	require.NoError(t, conn.Create(&domain.ItemCatalogEntry{
		ItemCode: "GAUZE", ItemName: "Sterile Gauze 4x4", ItemTypeID: 7,
	}).Error)

	entry, err := cat.Lookup(ctx, "GAUZE")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, int64(7), entry.ItemTypeID)
	assert.Equal(t, "Sterile Gauze 4x4", entry.ItemName)

	entry, err = cat.Lookup(ctx, "NOPE")
	require.NoError(t, err)
	assert.Nil(t, entry)

	entry, err = cat.Lookup(ctx, "   ")
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestLookupServesFromCache(t *testing.T) {
	cat, conn := setupCatalog(t)
	ctx := context.Background()

	require.NoError(t, conn.Create(&domain.ItemCatalogEntry{
		ItemCode: "GAUZE", ItemTypeID: 7,
	}).Error)

	first, err := cat.Lookup(ctx, "GAUZE")
	require.NoError(t, err)
	require.NotNil(t, first)

	// Row deleted underneath; the cached entry still answers.
	require.NoError(t, conn.Where("item_code = ?", "GAUZE").Delete(&domain.ItemCatalogEntry{}).Error)

	second, err := cat.Lookup(ctx, "GAUZE")
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, first.ItemTypeID, second.ItemTypeID)
}
