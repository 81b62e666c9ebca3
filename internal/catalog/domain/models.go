// Package domain exposes the item catalog lookup used to resolve an item
// code to its item type.
package domain

import (
	"context"
	"errors"
)

// ItemCatalogEntry is the master record for one supply item code.
type ItemCatalogEntry struct {
	ItemCode   string `gorm:"primaryKey;type:text" json:"item_code"`
	ItemName   string `gorm:"type:text" json:"item_name"`
	ItemTypeID int64  `gorm:"index" json:"item_type_id"`
}

func (ItemCatalogEntry) TableName() string { return "item_catalog" }

// Catalog resolves item codes to their catalog entries.
type Catalog interface {
	// Lookup returns nil when the item code has no catalog entry.
	Lookup(ctx context.Context, itemCode string) (*ItemCatalogEntry, error)
}

var ErrCatalogUnavailable = errors.New("item_catalog_unavailable")
