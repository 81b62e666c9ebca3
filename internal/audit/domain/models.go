// Package domain defines the operation audit trail. Writes are best effort
// and must never block or fail the operation being audited.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/Thapthai/app-microservice-sub000/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// OperationLog is one persisted audit entry.
type OperationLog struct {
	ID         snowflake.ID      `gorm:"primaryKey" json:"id"`
	Operation  string            `gorm:"type:text;not null;index" json:"operation"`
	Success    bool              `gorm:"not null" json:"success"`
	ActorID    *string           `gorm:"type:text" json:"actor_id,omitempty"`
	TargetType string            `gorm:"type:text;not null" json:"target_type"`
	TargetID   *string           `gorm:"type:text" json:"target_id,omitempty"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	Error      *string           `gorm:"type:text" json:"error,omitempty"`
	CreatedAt  time.Time         `gorm:"not null;index" json:"created_at"`
}

func (OperationLog) TableName() string { return "operation_logs" }

// Entry is the enqueue payload handed to the Recorder.
type Entry struct {
	Operation  string
	Success    bool
	ActorID    string
	TargetType string
	TargetID   string
	Metadata   map[string]any
	Err        error
}

type ListRequest struct {
	pagination.Pagination
	Operation string
	Success   *bool
	StartAt   *time.Time
	EndAt     *time.Time
}

type ListResponse struct {
	pagination.PageInfo
	Logs []OperationLog `json:"data"`
}

// Recorder accepts audit entries without blocking the caller.
type Recorder interface {
	// Record enqueues the entry. It never returns an error and never blocks;
	// entries are dropped when the queue is full.
	Record(ctx context.Context, entry Entry)
	List(ctx context.Context, req ListRequest) (ListResponse, error)
}

// Repository persists audit entries.
type Repository interface {
	Insert(ctx context.Context, entry *OperationLog) error
	List(ctx context.Context, req ListRequest) ([]OperationLog, int64, error)
}

var ErrInvalidTimeRange = errors.New("invalid_time_range")
