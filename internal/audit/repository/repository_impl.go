package repository

import (
	"context"
	"strings"

	"github.com/Thapthai/app-microservice-sub000/internal/audit/domain"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

func Provide(db *gorm.DB) domain.Repository {
	return &repo{db: db}
}

func (r *repo) Insert(ctx context.Context, entry *domain.OperationLog) error {
	if entry == nil {
		return nil
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repo) List(ctx context.Context, req domain.ListRequest) ([]domain.OperationLog, int64, error) {
	build := func() *gorm.DB {
		stmt := r.db.WithContext(ctx).Model(&domain.OperationLog{})

		if operation := strings.TrimSpace(req.Operation); operation != "" {
			stmt = stmt.Where("operation = ?", operation)
		}
		if req.Success != nil {
			stmt = stmt.Where("success = ?", *req.Success)
		}
		if req.StartAt != nil {
			stmt = stmt.Where("created_at >= ?", req.StartAt.UTC())
		}
		if req.EndAt != nil {
			stmt = stmt.Where("created_at <= ?", req.EndAt.UTC())
		}
		return stmt
	}

	var total int64
	if err := build().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []domain.OperationLog
	err := build().Order("created_at desc, id desc").
		Scopes(req.Pagination.Scope()).
		Find(&logs).Error
	if err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
