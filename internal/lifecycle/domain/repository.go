package domain

import (
	"context"
	"time"

	episodedomain "github.com/Thapthai/app-microservice-sub000/internal/episode/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type PendingFilter struct {
	Statuses       []episodedomain.ItemStatus
	DepartmentCode string
	PatientHN      string
	Offset         int
	Limit          int
}

type ReturnFilter struct {
	DepartmentCode string
	PatientHN      string
	Reason         episodedomain.ReturnReason
	DateFrom       *time.Time
	DateTo         *time.Time
	Offset         int
	Limit          int
}

// UsageAggregate is the per-item-code rollup of clinical usage, the ledger
// side of the reconciliation join.
type UsageAggregate struct {
	ItemCode    string    `gorm:"column:item_code"`
	TotalUsed   int64     `gorm:"column:total_used"`
	RecordCount int64     `gorm:"column:record_count"`
	FirstUsed   time.Time `gorm:"column:first_used"`
	LastUsed    time.Time `gorm:"column:last_used"`
}

type UsageAggregateQuery struct {
	ItemCode       string
	DepartmentCode string
	From           *time.Time
	To             *time.Time
}

// Repository is the ledger store for episodes, line items and returns.
// Mutating methods take the transaction handle they must run under.
type Repository interface {
	// GetLineItemForUpdate loads the item inside tx with a row-level lock so
	// the read-check-write of a mutation is serialized per item.
	GetLineItemForUpdate(ctx context.Context, tx *gorm.DB, itemID snowflake.ID) (*episodedomain.LineItem, error)
	UpdateQuantities(ctx context.Context, tx *gorm.DB, itemID snowflake.ID, used, returned int64, status episodedomain.ItemStatus) error
	InsertReturnRecord(ctx context.Context, tx *gorm.DB, record *episodedomain.ReturnRecord) error

	GetLineItem(ctx context.Context, itemID snowflake.ID) (*episodedomain.LineItem, error)
	ListPending(ctx context.Context, filter PendingFilter) ([]PendingItem, int64, error)
	ListReturns(ctx context.Context, filter ReturnFilter) ([]ReturnHistoryRow, int64, error)
	SumReturnRecords(ctx context.Context, itemID snowflake.ID) (int64, error)

	QuantityTotals(ctx context.Context, departmentCode string) (totalQty, totalUsed, totalReturned int64, err error)
	CountByStatus(ctx context.Context, departmentCode string) (map[episodedomain.ItemStatus]int64, error)
	ReasonStats(ctx context.Context, departmentCode string) ([]ReasonStat, error)

	AggregateUsageByItemCode(ctx context.Context, q UsageAggregateQuery) ([]UsageAggregate, error)

	CreateEpisode(ctx context.Context, tx *gorm.DB, episode *episodedomain.UsageEpisode) error
	GetEpisode(ctx context.Context, episodeID snowflake.ID) (*episodedomain.UsageEpisode, error)
	DeleteEpisode(ctx context.Context, tx *gorm.DB, episodeID snowflake.ID) error
}
