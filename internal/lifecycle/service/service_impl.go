package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	auditdomain "github.com/Thapthai/app-microservice-sub000/internal/audit/domain"
	episodedomain "github.com/Thapthai/app-microservice-sub000/internal/episode/domain"
	"github.com/Thapthai/app-microservice-sub000/internal/lifecycle/domain"
	"github.com/Thapthai/app-microservice-sub000/internal/metrics"
	"github.com/Thapthai/app-microservice-sub000/pkg/db"
	"github.com/Thapthai/app-microservice-sub000/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	opRecordUsage    = "record_usage"
	opRecordReturn   = "record_return"
	opPendingItems   = "get_pending_items"
	opReturnHistory  = "get_return_history"
	opStatistics     = "get_quantity_statistics"
	opCreateEpisode  = "create_episode"
	opGetEpisode     = "get_episode"
	opDeleteEpisode  = "delete_episode"
	targetLineItem   = "line_item"
	targetEpisode    = "usage_episode"
	targetDepartment = "department"
)

type ServiceParam struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Repo    domain.Repository
	Audit   auditdomain.Recorder
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	repo    domain.Repository
	audit   auditdomain.Recorder
	metrics *metrics.Metrics
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("lifecycle.service"),
		genID:   p.GenID,
		repo:    p.Repo,
		audit:   p.Audit,
		metrics: p.Metrics,
	}
}

func (s *Service) RecordUsage(ctx context.Context, req domain.RecordUsageRequest) (*episodedomain.LineItem, error) {
	finish := s.observe(ctx, opRecordUsage, targetLineItem, req.ItemID.String(), map[string]any{
		"qty_used":    req.QtyUsed,
		"recorded_by": req.RecordedBy,
	})

	if req.QtyUsed <= 0 {
		return nil, finish(domain.ErrInvalidQuantity)
	}
	if strings.TrimSpace(req.RecordedBy) == "" {
		return nil, finish(domain.ErrInvalidActor)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		item, err := s.repo.GetLineItemForUpdate(ctx, tx, req.ItemID)
		if err != nil {
			return err
		}

		newUsed := item.QtyUsed + req.QtyUsed
		if newUsed+item.QtyReturned > item.Qty {
			return &domain.QuantityExceededError{
				Approved:  item.Qty,
				Used:      item.QtyUsed,
				Returned:  item.QtyReturned,
				Attempted: newUsed + item.QtyReturned,
			}
		}

		status := episodedomain.DeriveStatus(item.Qty, newUsed, item.QtyReturned)
		return s.repo.UpdateQuantities(ctx, tx, item.ID, newUsed, item.QtyReturned, status)
	})
	if err != nil {
		return nil, finish(err)
	}

	item, err := s.repo.GetLineItem(ctx, req.ItemID)
	if err != nil {
		return nil, finish(fmt.Errorf("reload line item: %w", err))
	}
	return item, finish(nil)
}

func (s *Service) RecordReturn(ctx context.Context, req domain.RecordReturnRequest) (*domain.RecordReturnResponse, error) {
	finish := s.observe(ctx, opRecordReturn, targetLineItem, req.ItemID.String(), map[string]any{
		"qty_returned": req.QtyReturned,
		"reason":       string(req.Reason),
		"returned_by":  req.ReturnedBy,
	})

	if req.QtyReturned <= 0 {
		return nil, finish(domain.ErrInvalidQuantity)
	}
	if !episodedomain.ValidReturnReason(req.Reason) {
		return nil, finish(domain.ErrInvalidReason)
	}
	if strings.TrimSpace(req.ReturnedBy) == "" {
		return nil, finish(domain.ErrInvalidActor)
	}

	record := episodedomain.ReturnRecord{
		ID:         s.genID.Generate(),
		LineItemID: req.ItemID,
		Qty:        req.QtyReturned,
		Reason:     req.Reason,
		ReturnedBy: strings.TrimSpace(req.ReturnedBy),
		ReturnedAt: time.Now().UTC(),
	}
	if note := strings.TrimSpace(req.Note); note != "" {
		record.Note = &note
	}

	// Both writes commit or neither does; a return record without the
	// matching quantity update would break the return-sum invariant.
	err := s.db.Transaction(func(tx *gorm.DB) error {
		item, err := s.repo.GetLineItemForUpdate(ctx, tx, req.ItemID)
		if err != nil {
			return err
		}

		newReturned := item.QtyReturned + req.QtyReturned
		if item.QtyUsed+newReturned > item.Qty {
			return &domain.QuantityExceededError{
				Approved:  item.Qty,
				Used:      item.QtyUsed,
				Returned:  item.QtyReturned,
				Attempted: item.QtyUsed + newReturned,
			}
		}

		if err := s.repo.InsertReturnRecord(ctx, tx, &record); err != nil {
			return err
		}

		status := episodedomain.DeriveStatus(item.Qty, item.QtyUsed, newReturned)
		return s.repo.UpdateQuantities(ctx, tx, item.ID, item.QtyUsed, newReturned, status)
	})
	if err != nil {
		return nil, finish(err)
	}

	item, err := s.repo.GetLineItem(ctx, req.ItemID)
	if err != nil {
		return nil, finish(fmt.Errorf("reload line item: %w", err))
	}

	return &domain.RecordReturnResponse{
		ReturnRecord: record,
		UpdatedItem:  *item,
	}, finish(nil)
}

func (s *Service) ListPendingItems(ctx context.Context, req domain.ListPendingRequest) (domain.ListPendingResponse, error) {
	finish := s.observe(ctx, opPendingItems, targetLineItem, "", map[string]any{
		"department": req.DepartmentCode,
		"patient_hn": req.PatientHN,
		"status":     string(req.Status),
	})

	statuses := []episodedomain.ItemStatus{episodedomain.ItemStatusPending, episodedomain.ItemStatusPartial}
	if req.Status != "" {
		switch req.Status {
		case episodedomain.ItemStatusPending, episodedomain.ItemStatusPartial, episodedomain.ItemStatusCompleted:
			statuses = []episodedomain.ItemStatus{req.Status}
		default:
			return domain.ListPendingResponse{}, finish(domain.ErrInvalidStatus)
		}
	}

	page := req.Pagination.Normalize()
	items, total, err := s.repo.ListPending(ctx, domain.PendingFilter{
		Statuses:       statuses,
		DepartmentCode: req.DepartmentCode,
		PatientHN:      req.PatientHN,
		Offset:         page.Offset(),
		Limit:          page.Limit,
	})
	if err != nil {
		return domain.ListPendingResponse{}, finish(err)
	}

	resp := domain.ListPendingResponse{Items: items}
	resp.PageInfo = pagination.BuildPageInfo(total, page)
	return resp, finish(nil)
}

func (s *Service) ListReturnHistory(ctx context.Context, req domain.ListReturnHistoryRequest) (domain.ListReturnHistoryResponse, error) {
	finish := s.observe(ctx, opReturnHistory, targetLineItem, "", map[string]any{
		"department": req.DepartmentCode,
		"patient_hn": req.PatientHN,
		"reason":     string(req.Reason),
	})

	if req.Reason != "" && !episodedomain.ValidReturnReason(req.Reason) {
		return domain.ListReturnHistoryResponse{}, finish(domain.ErrInvalidReason)
	}

	page := req.Pagination.Normalize()
	rows, total, err := s.repo.ListReturns(ctx, domain.ReturnFilter{
		DepartmentCode: req.DepartmentCode,
		PatientHN:      req.PatientHN,
		Reason:         req.Reason,
		DateFrom:       req.DateFrom,
		DateTo:         req.DateTo,
		Offset:         page.Offset(),
		Limit:          page.Limit,
	})
	if err != nil {
		return domain.ListReturnHistoryResponse{}, finish(err)
	}

	resp := domain.ListReturnHistoryResponse{Rows: rows}
	resp.PageInfo = pagination.BuildPageInfo(total, page)
	return resp, finish(nil)
}

func (s *Service) QuantityStatistics(ctx context.Context, departmentCode string) (*domain.StatisticsReport, error) {
	finish := s.observe(ctx, opStatistics, targetDepartment, departmentCode, nil)

	totalQty, totalUsed, totalReturned, err := s.repo.QuantityTotals(ctx, departmentCode)
	if err != nil {
		return nil, finish(err)
	}
	byStatus, err := s.repo.CountByStatus(ctx, departmentCode)
	if err != nil {
		return nil, finish(err)
	}
	byReason, err := s.repo.ReasonStats(ctx, departmentCode)
	if err != nil {
		return nil, finish(err)
	}

	report := &domain.StatisticsReport{
		TotalQty:      totalQty,
		TotalUsed:     totalUsed,
		TotalReturned: totalReturned,
		TotalPending:  totalQty - totalUsed - totalReturned,
		CountByStatus: byStatus,
		ByReason:      byReason,
	}
	if totalQty > 0 {
		report.UsedPct = pct(totalUsed, totalQty)
		report.ReturnedPct = pct(totalReturned, totalQty)
		report.PendingPct = pct(report.TotalPending, totalQty)
	}
	return report, finish(nil)
}

func (s *Service) CreateEpisode(ctx context.Context, req domain.CreateEpisodeRequest) (*episodedomain.UsageEpisode, error) {
	finish := s.observe(ctx, opCreateEpisode, targetEpisode, req.EpisodeNo, map[string]any{
		"patient_hn": req.PatientHN,
		"items":      len(req.Items),
		"created_by": req.CreatedBy,
	})

	if strings.TrimSpace(req.EpisodeNo) == "" || strings.TrimSpace(req.PatientHN) == "" {
		return nil, finish(domain.ErrInvalidEpisode)
	}
	for _, item := range req.Items {
		if item.Qty <= 0 || strings.TrimSpace(item.ItemCode) == "" {
			return nil, finish(domain.ErrInvalidEpisode)
		}
	}

	now := time.Now().UTC()
	usedAt := req.UsedAt
	if usedAt.IsZero() {
		usedAt = now
	}

	episode := &episodedomain.UsageEpisode{
		ID:             s.genID.Generate(),
		HospitalCode:   strings.TrimSpace(req.HospitalCode),
		EpisodeNo:      strings.TrimSpace(req.EpisodeNo),
		PatientHN:      strings.TrimSpace(req.PatientHN),
		PatientName:    strings.TrimSpace(req.PatientName),
		DepartmentCode: strings.TrimSpace(req.DepartmentCode),
		UsedAt:         usedAt.UTC(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	for _, input := range req.Items {
		episode.Items = append(episode.Items, episodedomain.LineItem{
			ID:          s.genID.Generate(),
			EpisodeID:   episode.ID,
			ItemCode:    strings.TrimSpace(input.ItemCode),
			ItemDesc:    input.ItemDesc,
			AccessionNo: input.AccessionNo,
			Unit:        input.Unit,
			Qty:         input.Qty,
			ItemStatus:  episodedomain.DeriveStatus(input.Qty, 0, 0),
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		return s.repo.CreateEpisode(ctx, tx, episode)
	})
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, finish(domain.ErrDuplicateEpisode)
		}
		return nil, finish(err)
	}
	return episode, finish(nil)
}

func (s *Service) GetEpisode(ctx context.Context, episodeID snowflake.ID) (*episodedomain.UsageEpisode, error) {
	finish := s.observe(ctx, opGetEpisode, targetEpisode, episodeID.String(), nil)

	episode, err := s.repo.GetEpisode(ctx, episodeID)
	if err != nil {
		return nil, finish(err)
	}
	return episode, finish(nil)
}

func (s *Service) DeleteEpisode(ctx context.Context, episodeID snowflake.ID, deletedBy string) error {
	finish := s.observe(ctx, opDeleteEpisode, targetEpisode, episodeID.String(), map[string]any{
		"deleted_by": deletedBy,
	})

	err := s.db.Transaction(func(tx *gorm.DB) error {
		return s.repo.DeleteEpisode(ctx, tx, episodeID)
	})
	return finish(err)
}

// observe returns a closure that records the audit entry and metrics for the
// operation outcome. Audit writes are fire-and-forget; they can never fail
// the primary operation.
func (s *Service) observe(ctx context.Context, operation, targetType, targetID string, metadata map[string]any) func(error) error {
	return func(err error) error {
		s.metrics.IncOperation(operation, err == nil)
		s.audit.Record(ctx, auditdomain.Entry{
			Operation:  operation,
			Success:    err == nil,
			TargetType: targetType,
			TargetID:   targetID,
			Metadata:   metadata,
			Err:        err,
		})
		return err
	}
}

func pct(part, total int64) float64 {
	return float64(part) / float64(total) * 100
}
