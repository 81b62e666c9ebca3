package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Thapthai/app-microservice-sub000/internal/audit/domain"
	"github.com/Thapthai/app-microservice-sub000/internal/config"
	"github.com/Thapthai/app-microservice-sub000/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type fakeLifecycle struct {
	hooks []fx.Hook
}

func (f *fakeLifecycle) Append(hook fx.Hook) { f.hooks = append(f.hooks, hook) }

func (f *fakeLifecycle) start(t *testing.T) {
	t.Helper()
	for _, hook := range f.hooks {
		if hook.OnStart != nil {
			require.NoError(t, hook.OnStart(context.Background()))
		}
	}
}

func (f *fakeLifecycle) stop(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, hook := range f.hooks {
		if hook.OnStop != nil {
			require.NoError(t, hook.OnStop(ctx))
		}
	}
}

type repoStub struct {
	mu        sync.Mutex
	inserted  []domain.OperationLog
	insertErr error

	listLogs  []domain.OperationLog
	listTotal int64
	listErr   error
}

func (r *repoStub) Insert(_ context.Context, entry *domain.OperationLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return r.insertErr
	}
	r.inserted = append(r.inserted, *entry)
	return nil
}

func (r *repoStub) List(context.Context, domain.ListRequest) ([]domain.OperationLog, int64, error) {
	return r.listLogs, r.listTotal, r.listErr
}

func (r *repoStub) rows() []domain.OperationLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.OperationLog, len(r.inserted))
	copy(out, r.inserted)
	return out
}

func newTestRecorder(t *testing.T, repo domain.Repository, queueSize int) (domain.Recorder, *fakeLifecycle) {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	lc := &fakeLifecycle{}
	rec := NewRecorder(Params{
		LC:     lc,
		Log:    zap.NewNop(),
		GenID:  node,
		Repo:   repo,
		Config: config.Config{AuditQueueSize: queueSize},
	})
	return rec, lc
}

func TestRecorderPersistsEntries(t *testing.T) {
	repo := &repoStub{}
	rec, lc := newTestRecorder(t, repo, 16)
	lc.start(t)

	rec.Record(context.Background(), domain.Entry{
		Operation:  "record_usage",
		Success:    false,
		ActorID:    "nurse-1",
		TargetType: "line_item",
		TargetID:   "123",
		Metadata:   map[string]any{"qty_used": 3},
		Err:        errors.New("quantity exceeds approved amount"),
	})
	rec.Record(context.Background(), domain.Entry{Operation: "record_return", Success: true})

	lc.stop(t)

	rows := repo.rows()
	require.Len(t, rows, 2)

	first := rows[0]
	assert.Equal(t, "record_usage", first.Operation)
	assert.False(t, first.Success)
	require.NotNil(t, first.ActorID)
	assert.Equal(t, "nurse-1", *first.ActorID)
	require.NotNil(t, first.TargetID)
	assert.Equal(t, "123", *first.TargetID)
	require.NotNil(t, first.Error)
	assert.Equal(t, "quantity exceeds approved amount", *first.Error)
	assert.EqualValues(t, 3, first.Metadata["qty_used"])
	assert.False(t, first.CreatedAt.IsZero())

	second := rows[1]
	assert.True(t, second.Success)
	assert.Equal(t, "unknown", second.TargetType)
	assert.Nil(t, second.Error)
}

func TestRecorderNeverBlocksWhenQueueFull(t *testing.T) {
	repo := &repoStub{}
	rec, lc := newTestRecorder(t, repo, 1)

	// Drain goroutine not started yet, so only one slot is available. Every
	// call must still return immediately.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 10; i++ {
			rec.Record(context.Background(), domain.Entry{Operation: "record_usage", Success: true})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Record blocked on a full queue")
	}

	lc.start(t)
	lc.stop(t)

	// The single buffered entry survives; the overflow was dropped.
	assert.Len(t, repo.rows(), 1)
}

func TestRecorderSkipsBlankOperation(t *testing.T) {
	repo := &repoStub{}
	rec, lc := newTestRecorder(t, repo, 16)
	lc.start(t)

	rec.Record(context.Background(), domain.Entry{Operation: "   "})

	lc.stop(t)
	assert.Empty(t, repo.rows())
}

func TestRecorderSurvivesWriteFailures(t *testing.T) {
	repo := &repoStub{insertErr: errors.New("disk full")}
	rec, lc := newTestRecorder(t, repo, 16)
	lc.start(t)

	rec.Record(context.Background(), domain.Entry{Operation: "record_usage", Success: true})

	// Stop still completes; a failed write never wedges the drain loop.
	lc.stop(t)
	assert.Empty(t, repo.rows())
}

func TestRecorderListValidatesTimeRange(t *testing.T) {
	rec, _ := newTestRecorder(t, &repoStub{}, 16)

	start := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	end := start.Add(-time.Hour)
	_, err := rec.List(context.Background(), domain.ListRequest{StartAt: &start, EndAt: &end})
	assert.ErrorIs(t, err, domain.ErrInvalidTimeRange)
}

func TestRecorderListPageInfo(t *testing.T) {
	repo := &repoStub{
		listLogs:  []domain.OperationLog{{Operation: "record_usage"}},
		listTotal: 41,
	}
	rec, _ := newTestRecorder(t, repo, 16)

	resp, err := rec.List(context.Background(), domain.ListRequest{
		Pagination: pagination.Pagination{Page: 2, Limit: 20},
	})
	require.NoError(t, err)
	assert.Len(t, resp.Logs, 1)
	assert.Equal(t, int64(41), resp.Total)
	assert.Equal(t, 3, resp.TotalPages)
}
