package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	auditdomain "github.com/Thapthai/app-microservice-sub000/internal/audit/domain"
	catalogdomain "github.com/Thapthai/app-microservice-sub000/internal/catalog/domain"
	dispensedomain "github.com/Thapthai/app-microservice-sub000/internal/dispense/domain"
	lifecycledomain "github.com/Thapthai/app-microservice-sub000/internal/lifecycle/domain"
	"github.com/Thapthai/app-microservice-sub000/internal/reconcile/domain"
	"github.com/Thapthai/app-microservice-sub000/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type sourceStub struct {
	aggs []dispensedomain.Aggregate
	err  error
}

func (s *sourceStub) AggregateByItemCode(context.Context, dispensedomain.Query) ([]dispensedomain.Aggregate, error) {
	return s.aggs, s.err
}

type ledgerStub struct {
	lifecycledomain.Repository
	aggs []lifecycledomain.UsageAggregate
	err  error
}

func (s *ledgerStub) AggregateUsageByItemCode(context.Context, lifecycledomain.UsageAggregateQuery) ([]lifecycledomain.UsageAggregate, error) {
	return s.aggs, s.err
}

type catalogStub struct {
	entries map[string]catalogdomain.ItemCatalogEntry
	fail    map[string]bool
}

func (c *catalogStub) Lookup(_ context.Context, itemCode string) (*catalogdomain.ItemCatalogEntry, error) {
	if c.fail[itemCode] {
		return nil, catalogdomain.ErrCatalogUnavailable
	}
	entry, ok := c.entries[itemCode]
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

type recorderStub struct{}

func (recorderStub) Record(context.Context, auditdomain.Entry) {}
func (recorderStub) List(context.Context, auditdomain.ListRequest) (auditdomain.ListResponse, error) {
	return auditdomain.ListResponse{}, nil
}

func newCompareService(source dispensedomain.Source, ledger lifecycledomain.Repository, catalog catalogdomain.Catalog) domain.Service {
	if catalog == nil {
		catalog = &catalogStub{}
	}
	return NewService(ServiceParam{
		Log:     zap.NewNop(),
		Ledger:  ledger,
		Source:  source,
		Catalog: catalog,
		Audit:   recorderStub{},
	})
}

func ts(hour int) time.Time {
	return time.Date(2026, 3, 10, hour, 0, 0, 0, time.UTC)
}

func TestCompareClassifiesAndSorts(t *testing.T) {
	source := &sourceStub{aggs: []dispensedomain.Aggregate{
		{ItemCode: "MED-A", TotalDispensed: 50, RecordCount: 5, FirstDispensed: ts(8), LastDispensed: ts(12)},
		{ItemCode: "MED-C", TotalDispensed: 20, RecordCount: 2, FirstDispensed: ts(9), LastDispensed: ts(10)},
	}}
	ledger := &ledgerStub{aggs: []lifecycledomain.UsageAggregate{
		{ItemCode: "MED-A", TotalUsed: 50, RecordCount: 4, FirstUsed: ts(8), LastUsed: ts(13)},
		{ItemCode: "MED-B", TotalUsed: 5, RecordCount: 1, FirstUsed: ts(11), LastUsed: ts(11)},
		{ItemCode: "MED-C", TotalUsed: 12, RecordCount: 3, FirstUsed: ts(9), LastUsed: ts(14)},
	}}

	resp, err := newCompareService(source, ledger, nil).Compare(context.Background(), domain.CompareRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Comparison, 3)

	// Discrepancies surface before clean matches.
	assert.Equal(t, "MED-B", resp.Comparison[0].ItemCode)
	assert.Equal(t, domain.StatusUsedWithoutDispense, resp.Comparison[0].Status)
	assert.Equal(t, int64(-5), resp.Comparison[0].Difference)
	assert.Zero(t, resp.Comparison[0].TotalDispensed)
	assert.Nil(t, resp.Comparison[0].FirstDispensed)

	assert.Equal(t, "MED-C", resp.Comparison[1].ItemCode)
	assert.Equal(t, domain.StatusDispenseExceedsUse, resp.Comparison[1].Status)
	assert.Equal(t, int64(8), resp.Comparison[1].Difference)

	assert.Equal(t, "MED-A", resp.Comparison[2].ItemCode)
	assert.Equal(t, domain.StatusMatched, resp.Comparison[2].Status)
	assert.Zero(t, resp.Comparison[2].Difference)

	assert.Equal(t, 3, resp.Summary.TotalItemCodes)
	assert.Equal(t, int64(70), resp.Summary.TotalDispensed)
	assert.Equal(t, int64(67), resp.Summary.TotalUsed)
	assert.Equal(t, int64(13), resp.Summary.TotalDiscrepancy)
	assert.Equal(t, int64(1), resp.Summary.CountByStatus[domain.StatusMatched])
	assert.Equal(t, int64(1), resp.Summary.CountByStatus[domain.StatusUsedWithoutDispense])
	assert.Equal(t, int64(1), resp.Summary.CountByStatus[domain.StatusDispenseExceedsUse])
}

func TestCompareDispensedNotUsed(t *testing.T) {
	source := &sourceStub{aggs: []dispensedomain.Aggregate{
		{ItemCode: "MED-X", TotalDispensed: 3, RecordCount: 1, FirstDispensed: ts(8), LastDispensed: ts(8)},
	}}
	ledger := &ledgerStub{}

	resp, err := newCompareService(source, ledger, nil).Compare(context.Background(), domain.CompareRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Comparison, 1)
	assert.Equal(t, domain.StatusDispensedNotUsed, resp.Comparison[0].Status)
	assert.Equal(t, int64(3), resp.Comparison[0].Difference)
	assert.Nil(t, resp.Comparison[0].FirstUsed)
	assert.Nil(t, resp.Comparison[0].LastUsed)
}

func TestCompareOrderingWithinPriority(t *testing.T) {
	source := &sourceStub{aggs: []dispensedomain.Aggregate{
		{ItemCode: "MED-SMALL", TotalDispensed: 10},
		{ItemCode: "MED-BIG", TotalDispensed: 30},
		{ItemCode: "MED-TIE-B", TotalDispensed: 9},
		{ItemCode: "MED-TIE-A", TotalDispensed: 9},
	}}
	ledger := &ledgerStub{aggs: []lifecycledomain.UsageAggregate{
		{ItemCode: "MED-SMALL", TotalUsed: 7},
		{ItemCode: "MED-BIG", TotalUsed: 22},
		{ItemCode: "MED-TIE-B", TotalUsed: 4},
		{ItemCode: "MED-TIE-A", TotalUsed: 4},
	}}

	resp, err := newCompareService(source, ledger, nil).Compare(context.Background(), domain.CompareRequest{})
	require.NoError(t, err)

	var codes []string
	for _, row := range resp.Comparison {
		codes = append(codes, row.ItemCode)
	}
	// Same priority class: larger absolute difference first, ties broken by code.
	assert.Equal(t, []string{"MED-BIG", "MED-TIE-A", "MED-TIE-B", "MED-SMALL"}, codes)
}

func TestComparePaginationIsExact(t *testing.T) {
	var aggs []dispensedomain.Aggregate
	for i := 0; i < 25; i++ {
		aggs = append(aggs, dispensedomain.Aggregate{
			ItemCode:       fmt.Sprintf("MED-%03d", i),
			TotalDispensed: int64(i + 1),
		})
	}
	source := &sourceStub{aggs: aggs}
	svc := newCompareService(source, &ledgerStub{}, nil)
	ctx := context.Background()

	full, err := svc.Compare(ctx, domain.CompareRequest{Pagination: pagination.Pagination{Limit: 250}})
	require.NoError(t, err)
	require.Len(t, full.Comparison, 25)

	var stitched []domain.ComparisonRow
	for page := 1; page <= 3; page++ {
		resp, err := svc.Compare(ctx, domain.CompareRequest{Pagination: pagination.Pagination{Page: page, Limit: 10}})
		require.NoError(t, err)
		assert.Equal(t, int64(25), resp.Pagination.Total)
		assert.Equal(t, 3, resp.Pagination.TotalPages)
		// Summary always covers the full list regardless of the page.
		assert.Equal(t, full.Summary, resp.Summary)
		stitched = append(stitched, resp.Comparison...)
	}
	assert.Equal(t, full.Comparison, stitched)

	resp, err := svc.Compare(ctx, domain.CompareRequest{Pagination: pagination.Pagination{Page: 4, Limit: 10}})
	require.NoError(t, err)
	assert.Empty(t, resp.Comparison)
}

func TestCompareItemTypeFilter(t *testing.T) {
	source := &sourceStub{aggs: []dispensedomain.Aggregate{
		{ItemCode: "GAUZE", TotalDispensed: 10},
		{ItemCode: "SYRINGE", TotalDispensed: 8},
		{ItemCode: "UNCATALOGED", TotalDispensed: 4},
		{ItemCode: "FLAKY", TotalDispensed: 6},
	}}
	catalog := &catalogStub{
		entries: map[string]catalogdomain.ItemCatalogEntry{
			"GAUZE":   {ItemCode: "GAUZE", ItemTypeID: 7},
			"SYRINGE": {ItemCode: "SYRINGE", ItemTypeID: 9},
			"FLAKY":   {ItemCode: "FLAKY", ItemTypeID: 7},
		},
		fail: map[string]bool{"FLAKY": true},
	}
	svc := newCompareService(source, &ledgerStub{}, catalog)
	ctx := context.Background()

	// Wrong type, missing catalog entry, and failed lookups are all excluded,
	// from the summary as well as the rows.
	resp, err := svc.Compare(ctx, domain.CompareRequest{ItemTypeID: 7})
	require.NoError(t, err)
	require.Len(t, resp.Comparison, 1)
	assert.Equal(t, "GAUZE", resp.Comparison[0].ItemCode)
	assert.Equal(t, 1, resp.Summary.TotalItemCodes)
	assert.Equal(t, int64(10), resp.Summary.TotalDispensed)

	// No filter: every code stays, catalog never consulted.
	resp, err = svc.Compare(ctx, domain.CompareRequest{})
	require.NoError(t, err)
	assert.Len(t, resp.Comparison, 4)
}

func TestCompareUpstreamUnavailable(t *testing.T) {
	source := &sourceStub{err: errors.New("cabinet gateway timeout")}

	_, err := newCompareService(source, &ledgerStub{}, nil).Compare(context.Background(), domain.CompareRequest{})
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestCompareEmptySources(t *testing.T) {
	resp, err := newCompareService(&sourceStub{}, &ledgerStub{}, nil).Compare(context.Background(), domain.CompareRequest{})
	require.NoError(t, err)
	assert.Empty(t, resp.Comparison)
	assert.Zero(t, resp.Summary.TotalItemCodes)
	assert.Zero(t, resp.Pagination.Total)
}
