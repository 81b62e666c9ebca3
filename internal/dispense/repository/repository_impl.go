package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/Thapthai/app-microservice-sub000/internal/dispense/domain"
	"gorm.io/gorm"
)

type source struct {
	db *gorm.DB
}

func Provide(db *gorm.DB) domain.Source {
	return &source{db: db}
}

func (s *source) AggregateByItemCode(ctx context.Context, q domain.Query) ([]domain.Aggregate, error) {
	stmt := s.db.WithContext(ctx).
		Model(&domain.DispensedEvent{}).
		Select(`item_code,
			SUM(qty) AS total_dispensed,
			COUNT(*) AS record_count,
			MIN(dispensed_at) AS first_dispensed,
			MAX(dispensed_at) AS last_dispensed`).
		Group("item_code")

	if code := strings.TrimSpace(q.ItemCode); code != "" {
		stmt = stmt.Where("item_code = ?", code)
	}
	if q.From != nil {
		stmt = stmt.Where("dispensed_at >= ?", q.From.UTC())
	}
	if q.To != nil {
		stmt = stmt.Where("dispensed_at <= ?", q.To.UTC())
	}

	var rows []domain.Aggregate
	if err := stmt.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}
	return rows, nil
}
