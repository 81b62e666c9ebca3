// Package domain defines the dispensed-vs-usage comparison produced by the
// reconciliation engine. Rows are derived per request and never persisted.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/Thapthai/app-microservice-sub000/pkg/db/pagination"
)

// DiscrepancyStatus classifies one item code's reconciliation outcome.
type DiscrepancyStatus string

const (
	StatusMatched             DiscrepancyStatus = "MATCHED"
	StatusDispenseExceedsUse  DiscrepancyStatus = "DISPENSE_EXCEEDS_USAGE"
	StatusUsageExceedsDisp    DiscrepancyStatus = "USAGE_EXCEEDS_DISPENSE"
	StatusUsedWithoutDispense DiscrepancyStatus = "USED_WITHOUT_DISPENSE"
	StatusDispensedNotUsed    DiscrepancyStatus = "DISPENSED_NOT_USED"
)

// Priority orders statuses by operational concern; lower sorts first.
// Usage without a matching dispense is the most alarming outcome, a clean
// match the least.
func Priority(status DiscrepancyStatus) int {
	switch status {
	case StatusUsageExceedsDisp:
		return 0
	case StatusUsedWithoutDispense:
		return 1
	case StatusDispenseExceedsUse:
		return 2
	case StatusDispensedNotUsed:
		return 3
	case StatusMatched:
		return 4
	default:
		return 5
	}
}

// Classify derives the status from the two totals.
func Classify(totalDispensed, totalUsed int64) DiscrepancyStatus {
	switch {
	case totalDispensed == 0 && totalUsed > 0:
		return StatusUsedWithoutDispense
	case totalDispensed > 0 && totalUsed == 0:
		return StatusDispensedNotUsed
	case totalDispensed > totalUsed:
		return StatusDispenseExceedsUse
	case totalDispensed < totalUsed:
		return StatusUsageExceedsDisp
	default:
		return StatusMatched
	}
}

// ComparisonRow is the per-item-code join of the two sources.
type ComparisonRow struct {
	ItemCode string `json:"item_code"`

	TotalDispensed int64      `json:"total_dispensed"`
	DispensedCount int64      `json:"dispensed_record_count"`
	FirstDispensed *time.Time `json:"first_dispensed,omitempty"`
	LastDispensed  *time.Time `json:"last_dispensed,omitempty"`

	TotalUsed  int64      `json:"total_used"`
	UsageCount int64      `json:"usage_record_count"`
	FirstUsed  *time.Time `json:"first_used,omitempty"`
	LastUsed   *time.Time `json:"last_used,omitempty"`

	// Difference is total_dispensed - total_used; the missing side counts as 0.
	Difference int64             `json:"difference"`
	Status     DiscrepancyStatus `json:"status"`
}

type CompareRequest struct {
	pagination.Pagination
	ItemCode       string
	ItemTypeID     int64
	DepartmentCode string
	DateFrom       *time.Time
	DateTo         *time.Time
}

// Summary totals the full sorted comparison list, not just the page returned.
type Summary struct {
	TotalItemCodes   int                         `json:"total_item_codes"`
	CountByStatus    map[DiscrepancyStatus]int64 `json:"count_by_status"`
	TotalDispensed   int64                       `json:"total_dispensed"`
	TotalUsed        int64                       `json:"total_used"`
	TotalDiscrepancy int64                       `json:"total_discrepancy"`
}

type CompareResponse struct {
	Summary    Summary             `json:"summary"`
	Comparison []ComparisonRow     `json:"comparison"`
	Pagination pagination.PageInfo `json:"pagination"`
}

type Service interface {
	Compare(ctx context.Context, req CompareRequest) (*CompareResponse, error)
}

var ErrUpstreamUnavailable = errors.New("upstream_unavailable")
