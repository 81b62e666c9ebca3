package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Thapthai/app-microservice-sub000/internal/cache"
	"github.com/Thapthai/app-microservice-sub000/internal/catalog/domain"
	"gorm.io/gorm"
)

const entryTTL = 10 * time.Minute

type catalog struct {
	db      *gorm.DB
	entries cache.Cache[string, *domain.ItemCatalogEntry]
}

func Provide(db *gorm.DB) domain.Catalog {
	return &catalog{
		db:      db,
		entries: cache.NewTTLCache[string, *domain.ItemCatalogEntry](),
	}
}

func (c *catalog) Lookup(ctx context.Context, itemCode string) (*domain.ItemCatalogEntry, error) {
	code := strings.TrimSpace(itemCode)
	if code == "" {
		return nil, nil
	}

	if cached, ok := c.entries.Get(code); ok {
		return cached, nil
	}

	var entry domain.ItemCatalogEntry
	err := c.db.WithContext(ctx).
		Where("item_code = ?", code).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}

	c.entries.Set(code, &entry, entryTTL)
	return &entry, nil
}
