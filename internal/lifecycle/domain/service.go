package domain

import (
	"context"
	"time"

	episodedomain "github.com/Thapthai/app-microservice-sub000/internal/episode/domain"
	"github.com/Thapthai/app-microservice-sub000/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
)

type RecordUsageRequest struct {
	ItemID     snowflake.ID `json:"item_id"`
	QtyUsed    int64        `json:"qty_used"`
	RecordedBy string       `json:"recorded_by_user_id"`
}

type RecordReturnRequest struct {
	ItemID      snowflake.ID               `json:"item_id"`
	QtyReturned int64                      `json:"qty_returned"`
	Reason      episodedomain.ReturnReason `json:"return_reason"`
	ReturnedBy  string                     `json:"return_by_user_id"`
	Note        string                     `json:"return_note"`
}

type RecordReturnResponse struct {
	ReturnRecord episodedomain.ReturnRecord `json:"return_record"`
	UpdatedItem  episodedomain.LineItem     `json:"updated_item"`
}

type ListPendingRequest struct {
	pagination.Pagination
	DepartmentCode string
	PatientHN      string
	// Status narrows the default PENDING+PARTIAL selection to one status.
	Status episodedomain.ItemStatus
}

// PendingItem is a line item annotated with its episode context and the
// quantity not yet accounted for.
type PendingItem struct {
	episodedomain.LineItem
	QtyPending     int64     `json:"qty_pending"`
	EpisodeNo      string    `json:"episode_no" gorm:"column:episode_no"`
	PatientHN      string    `json:"patient_hn" gorm:"column:patient_hn"`
	PatientName    string    `json:"patient_name" gorm:"column:patient_name"`
	DepartmentCode string    `json:"department_code" gorm:"column:department_code"`
	UsedAt         time.Time `json:"used_at" gorm:"column:used_at"`
}

type ListPendingResponse struct {
	pagination.PageInfo
	Items []PendingItem `json:"data"`
}

type ListReturnHistoryRequest struct {
	pagination.Pagination
	DepartmentCode string
	PatientHN      string
	Reason         episodedomain.ReturnReason
	DateFrom       *time.Time
	DateTo         *time.Time
}

// ReturnHistoryRow joins a return record to its line item and episode.
type ReturnHistoryRow struct {
	episodedomain.ReturnRecord
	ItemCode       string `json:"item_code" gorm:"column:item_code"`
	ItemDesc       string `json:"item_desc" gorm:"column:item_desc"`
	Unit           string `json:"unit" gorm:"column:unit"`
	EpisodeNo      string `json:"episode_no" gorm:"column:episode_no"`
	PatientHN      string `json:"patient_hn" gorm:"column:patient_hn"`
	PatientName    string `json:"patient_name" gorm:"column:patient_name"`
	DepartmentCode string `json:"department_code" gorm:"column:department_code"`
}

type ListReturnHistoryResponse struct {
	pagination.PageInfo
	Rows []ReturnHistoryRow `json:"data"`
}

type ReasonStat struct {
	Reason episodedomain.ReturnReason `json:"reason" gorm:"column:reason"`
	Count  int64                      `json:"count" gorm:"column:count"`
	Qty    int64                      `json:"qty" gorm:"column:qty"`
}

// StatisticsReport aggregates quantities over all matching line items.
// Percentages are 0 when total quantity is 0.
type StatisticsReport struct {
	TotalQty      int64 `json:"total_qty"`
	TotalUsed     int64 `json:"total_used"`
	TotalReturned int64 `json:"total_returned"`
	TotalPending  int64 `json:"total_pending"`

	UsedPct     float64 `json:"used_pct"`
	ReturnedPct float64 `json:"returned_pct"`
	PendingPct  float64 `json:"pending_pct"`

	CountByStatus map[episodedomain.ItemStatus]int64 `json:"count_by_status"`
	ByReason      []ReasonStat                       `json:"by_reason"`
}

type CreateLineItemInput struct {
	ItemCode    string `json:"item_code"`
	ItemDesc    string `json:"item_desc"`
	AccessionNo string `json:"accession_no"`
	Unit        string `json:"unit"`
	Qty         int64  `json:"qty"`
}

type CreateEpisodeRequest struct {
	HospitalCode   string                `json:"hospital_code"`
	EpisodeNo      string                `json:"episode_no"`
	PatientHN      string                `json:"patient_hn"`
	PatientName    string                `json:"patient_name"`
	DepartmentCode string                `json:"department_code"`
	UsedAt         time.Time             `json:"used_at"`
	CreatedBy      string                `json:"created_by_user_id"`
	Items          []CreateLineItemInput `json:"items"`
}

// Service is the quantity lifecycle manager plus its read-only facade.
type Service interface {
	RecordUsage(ctx context.Context, req RecordUsageRequest) (*episodedomain.LineItem, error)
	RecordReturn(ctx context.Context, req RecordReturnRequest) (*RecordReturnResponse, error)

	ListPendingItems(ctx context.Context, req ListPendingRequest) (ListPendingResponse, error)
	ListReturnHistory(ctx context.Context, req ListReturnHistoryRequest) (ListReturnHistoryResponse, error)
	QuantityStatistics(ctx context.Context, departmentCode string) (*StatisticsReport, error)

	CreateEpisode(ctx context.Context, req CreateEpisodeRequest) (*episodedomain.UsageEpisode, error)
	GetEpisode(ctx context.Context, episodeID snowflake.ID) (*episodedomain.UsageEpisode, error)
	DeleteEpisode(ctx context.Context, episodeID snowflake.ID, deletedBy string) error
}
