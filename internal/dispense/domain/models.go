// Package domain models the cabinet dispensing feed. The table is owned by
// the inventory subsystem; this core only reads from it.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
)

// DispensedEvent is one cabinet-level record that an RFID-tagged item left stock.
type DispensedEvent struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	ItemCode    string       `gorm:"type:text;not null;index" json:"item_code"`
	Qty         int64        `gorm:"not null" json:"qty"`
	TagID       uuid.UUID    `gorm:"type:uuid;not null" json:"tag_id"`
	CabinetCode string       `gorm:"type:text" json:"cabinet_code"`
	DispensedAt time.Time    `gorm:"not null;index" json:"dispensed_at"`
}

func (DispensedEvent) TableName() string { return "dispensed_events" }

// Query filters dispensing events by time range and optional item code.
type Query struct {
	ItemCode string
	From     *time.Time
	To       *time.Time
}

// Aggregate is the per-item-code rollup of the dispensing feed.
type Aggregate struct {
	ItemCode       string    `gorm:"column:item_code"`
	TotalDispensed int64     `gorm:"column:total_dispensed"`
	RecordCount    int64     `gorm:"column:record_count"`
	FirstDispensed time.Time `gorm:"column:first_dispensed"`
	LastDispensed  time.Time `gorm:"column:last_dispensed"`
}

// Source is the read-only view of the dispensing feed.
type Source interface {
	AggregateByItemCode(ctx context.Context, q Query) ([]Aggregate, error)
}

var ErrSourceUnavailable = errors.New("dispense_source_unavailable")
