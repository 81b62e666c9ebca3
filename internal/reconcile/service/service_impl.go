package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	auditdomain "github.com/Thapthai/app-microservice-sub000/internal/audit/domain"
	catalogdomain "github.com/Thapthai/app-microservice-sub000/internal/catalog/domain"
	dispensedomain "github.com/Thapthai/app-microservice-sub000/internal/dispense/domain"
	lifecycledomain "github.com/Thapthai/app-microservice-sub000/internal/lifecycle/domain"
	"github.com/Thapthai/app-microservice-sub000/internal/metrics"
	"github.com/Thapthai/app-microservice-sub000/internal/reconcile/domain"
	"github.com/Thapthai/app-microservice-sub000/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const opCompare = "compare_dispensed_vs_usage"

type ServiceParam struct {
	fx.In

	Log     *zap.Logger
	Ledger  lifecycledomain.Repository
	Source  dispensedomain.Source
	Catalog catalogdomain.Catalog
	Audit   auditdomain.Recorder
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	log     *zap.Logger
	ledger  lifecycledomain.Repository
	source  dispensedomain.Source
	catalog catalogdomain.Catalog
	audit   auditdomain.Recorder
	metrics *metrics.Metrics
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		log:     p.Log.Named("reconcile.service"),
		ledger:  p.Ledger,
		source:  p.Source,
		catalog: p.Catalog,
		audit:   p.Audit,
		metrics: p.Metrics,
	}
}

// Compare joins the cabinet dispensing feed against recorded clinical usage
// per item code. The join is in-memory: item-code cardinality is catalog
// scale, not transaction scale. The two source queries run without a shared
// snapshot; the result is an advisory audit, not a financial ledger.
func (s *Service) Compare(ctx context.Context, req domain.CompareRequest) (*domain.CompareResponse, error) {
	started := time.Now()

	resp, err := s.compare(ctx, req)

	s.metrics.ObserveReconcile(time.Since(started))
	s.audit.Record(ctx, auditdomain.Entry{
		Operation:  opCompare,
		Success:    err == nil,
		TargetType: "item_code",
		TargetID:   req.ItemCode,
		Metadata: map[string]any{
			"item_type_id": req.ItemTypeID,
			"department":   req.DepartmentCode,
		},
		Err: err,
	})
	return resp, err
}

func (s *Service) compare(ctx context.Context, req domain.CompareRequest) (*domain.CompareResponse, error) {
	dispensed, err := s.source.AggregateByItemCode(ctx, dispensedomain.Query{
		ItemCode: req.ItemCode,
		From:     req.DateFrom,
		To:       req.DateTo,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: dispensing feed: %v", domain.ErrUpstreamUnavailable, err)
	}

	usage, err := s.ledger.AggregateUsageByItemCode(ctx, lifecycledomain.UsageAggregateQuery{
		ItemCode:       req.ItemCode,
		DepartmentCode: req.DepartmentCode,
		From:           req.DateFrom,
		To:             req.DateTo,
	})
	if err != nil {
		return nil, fmt.Errorf("aggregate usage: %w", err)
	}

	rows := s.join(dispensed, usage)

	if req.ItemTypeID != 0 {
		rows = s.filterByItemType(ctx, rows, req.ItemTypeID)
	}

	sortRows(rows)

	summary := buildSummary(rows)
	page := req.Pagination.Normalize()

	return &domain.CompareResponse{
		Summary:    summary,
		Comparison: pagination.Slice(rows, page),
		Pagination: pagination.BuildPageInfo(int64(len(rows)), page),
	}, nil
}

// join forms the union of item codes across both sources. A code present on
// only one side still yields a row; it is never silently dropped.
func (s *Service) join(dispensed []dispensedomain.Aggregate, usage []lifecycledomain.UsageAggregate) []domain.ComparisonRow {
	byCode := make(map[string]*domain.ComparisonRow, len(dispensed)+len(usage))

	for _, agg := range dispensed {
		first := agg.FirstDispensed
		last := agg.LastDispensed
		byCode[agg.ItemCode] = &domain.ComparisonRow{
			ItemCode:       agg.ItemCode,
			TotalDispensed: agg.TotalDispensed,
			DispensedCount: agg.RecordCount,
			FirstDispensed: &first,
			LastDispensed:  &last,
		}
	}

	for _, agg := range usage {
		row, ok := byCode[agg.ItemCode]
		if !ok {
			row = &domain.ComparisonRow{ItemCode: agg.ItemCode}
			byCode[agg.ItemCode] = row
		}
		first := agg.FirstUsed
		last := agg.LastUsed
		row.TotalUsed = agg.TotalUsed
		row.UsageCount = agg.RecordCount
		row.FirstUsed = &first
		row.LastUsed = &last
	}

	rows := make([]domain.ComparisonRow, 0, len(byCode))
	for _, row := range byCode {
		row.Difference = row.TotalDispensed - row.TotalUsed
		row.Status = domain.Classify(row.TotalDispensed, row.TotalUsed)
		rows = append(rows, *row)
	}
	return rows
}

// filterByItemType keeps rows whose item code resolves to the requested type.
// A failed lookup excludes that code rather than aborting the comparison;
// excluded codes are absent from both the page and the summary.
func (s *Service) filterByItemType(ctx context.Context, rows []domain.ComparisonRow, itemTypeID int64) []domain.ComparisonRow {
	kept := rows[:0]
	for _, row := range rows {
		entry, err := s.catalog.Lookup(ctx, row.ItemCode)
		if err != nil {
			s.log.Warn("item type lookup failed, excluding item code",
				zap.String("item_code", row.ItemCode),
				zap.Error(err),
			)
			continue
		}
		if entry == nil || entry.ItemTypeID != itemTypeID {
			continue
		}
		kept = append(kept, row)
	}
	return kept
}

// sortRows orders by status priority, then by descending absolute
// difference, then by item code so equal rows stay deterministic. Downstream
// reports depend on this ordering.
func sortRows(rows []domain.ComparisonRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		pi, pj := domain.Priority(rows[i].Status), domain.Priority(rows[j].Status)
		if pi != pj {
			return pi < pj
		}
		di, dj := abs(rows[i].Difference), abs(rows[j].Difference)
		if di != dj {
			return di > dj
		}
		return rows[i].ItemCode < rows[j].ItemCode
	})
}

func buildSummary(rows []domain.ComparisonRow) domain.Summary {
	summary := domain.Summary{
		TotalItemCodes: len(rows),
		CountByStatus:  make(map[domain.DiscrepancyStatus]int64),
	}
	for _, row := range rows {
		summary.CountByStatus[row.Status]++
		summary.TotalDispensed += row.TotalDispensed
		summary.TotalUsed += row.TotalUsed
		summary.TotalDiscrepancy += abs(row.Difference)
	}
	return summary
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
