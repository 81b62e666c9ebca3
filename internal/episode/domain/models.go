// Package domain contains persistence models for clinical usage episodes
// and their dispensed supply line items.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// ItemStatus is derived from the three quantity fields of a LineItem and
// persisted alongside them so status filters stay index-friendly. It is
// never settable on its own.
type ItemStatus string

const (
	ItemStatusPending   ItemStatus = "PENDING"
	ItemStatusPartial   ItemStatus = "PARTIAL"
	ItemStatusCompleted ItemStatus = "COMPLETED"
)

// ReturnReason enumerates why an item went back to the cabinet.
type ReturnReason string

const (
	ReturnReasonUnused       ReturnReason = "unused"
	ReturnReasonExpired      ReturnReason = "expired"
	ReturnReasonContaminated ReturnReason = "contaminated"
	ReturnReasonDamaged      ReturnReason = "damaged"
)

// ValidReturnReason reports whether reason is one of the enumerated values.
func ValidReturnReason(reason ReturnReason) bool {
	switch reason {
	case ReturnReasonUnused, ReturnReasonExpired, ReturnReasonContaminated, ReturnReasonDamaged:
		return true
	default:
		return false
	}
}

// UsageEpisode is one clinical event against which supply items were dispensed.
type UsageEpisode struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	HospitalCode   string       `gorm:"type:text;not null;uniqueIndex:ux_usage_episodes_no" json:"hospital_code"`
	EpisodeNo      string       `gorm:"type:text;not null;uniqueIndex:ux_usage_episodes_no" json:"episode_no"`
	PatientHN      string       `gorm:"type:text;not null;index" json:"patient_hn"`
	PatientName    string       `gorm:"type:text" json:"patient_name"`
	DepartmentCode string       `gorm:"type:text;index" json:"department_code"`
	UsedAt         time.Time    `gorm:"not null;index" json:"used_at"`
	BillingStatus  string       `gorm:"type:text" json:"billing_status"`
	BilledAt       *time.Time   `json:"billed_at,omitempty"`
	PrintedCount   int          `gorm:"not null;default:0" json:"printed_count"`
	LastPrintedAt  *time.Time   `json:"last_printed_at,omitempty"`
	CreatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	Items []LineItem `gorm:"foreignKey:EpisodeID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

func (UsageEpisode) TableName() string { return "usage_episodes" }

// LineItem is one dispensed supply line within an episode.
//
// Invariant: QtyUsed + QtyReturned <= Qty and both are non-negative.
type LineItem struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	EpisodeID   snowflake.ID `gorm:"not null;index" json:"episode_id"`
	ItemCode    string       `gorm:"type:text;not null;index" json:"item_code"`
	ItemDesc    string       `gorm:"type:text" json:"item_desc"`
	AccessionNo string       `gorm:"type:text" json:"accession_no"`
	Unit        string       `gorm:"type:text" json:"unit"`
	Qty         int64        `gorm:"not null" json:"qty"`
	QtyUsed     int64        `gorm:"not null;default:0" json:"qty_used_with_patient"`
	QtyReturned int64        `gorm:"not null;default:0" json:"qty_returned_to_cabinet"`
	ItemStatus  ItemStatus   `gorm:"type:text;not null;index" json:"item_status"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	Returns []ReturnRecord `gorm:"foreignKey:LineItemID;constraint:OnDelete:CASCADE" json:"returns,omitempty"`
}

func (LineItem) TableName() string { return "line_items" }

// QtyPending is the remainder not yet used or returned.
func (i LineItem) QtyPending() int64 {
	return i.Qty - i.QtyUsed - i.QtyReturned
}

// ReturnRecord is one append-only return event against a line item. The sum
// of a line item's return record quantities equals its QtyReturned.
type ReturnRecord struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	LineItemID snowflake.ID `gorm:"not null;index" json:"line_item_id"`
	Qty        int64        `gorm:"not null" json:"qty"`
	Reason     ReturnReason `gorm:"type:text;not null" json:"reason"`
	ReturnedBy string       `gorm:"type:text;not null" json:"returned_by"`
	Note       *string      `gorm:"type:text" json:"note,omitempty"`
	ReturnedAt time.Time    `gorm:"not null;index" json:"returned_at"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (ReturnRecord) TableName() string { return "return_records" }

// DeriveStatus computes the lifecycle status from the three quantities.
func DeriveStatus(qty, used, returned int64) ItemStatus {
	consumed := used + returned
	switch {
	case consumed == 0:
		return ItemStatusPending
	case consumed == qty:
		return ItemStatusCompleted
	default:
		return ItemStatusPartial
	}
}
