package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Thapthai/app-microservice-sub000/internal/audit/domain"
	"github.com/Thapthai/app-microservice-sub000/internal/config"
	"github.com/Thapthai/app-microservice-sub000/internal/metrics"
	"github.com/Thapthai/app-microservice-sub000/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const flushTimeout = 5 * time.Second

type Params struct {
	fx.In

	LC      fx.Lifecycle
	Log     *zap.Logger
	GenID   *snowflake.Node
	Repo    domain.Repository
	Config  config.Config
	Metrics *metrics.Metrics `optional:"true"`
}

// Recorder buffers audit entries on a bounded queue and writes them from a
// single background goroutine. Enqueue never blocks; when the queue is full
// the entry is counted as dropped.
type Recorder struct {
	log     *zap.Logger
	genID   *snowflake.Node
	repo    domain.Repository
	metrics *metrics.Metrics

	queue chan domain.OperationLog
	done  chan struct{}
	once  sync.Once
}

func NewRecorder(p Params) domain.Recorder {
	size := p.Config.AuditQueueSize
	if size <= 0 {
		size = 1024
	}

	r := &Recorder{
		log:     p.Log.Named("audit.recorder"),
		genID:   p.GenID,
		repo:    p.Repo,
		metrics: p.Metrics,
		queue:   make(chan domain.OperationLog, size),
		done:    make(chan struct{}),
	}

	p.LC.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go r.drain()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			r.close()
			select {
			case <-r.done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})

	return r
}

func (r *Recorder) Record(_ context.Context, entry domain.Entry) {
	operation := strings.TrimSpace(entry.Operation)
	if operation == "" {
		return
	}

	row := domain.OperationLog{
		ID:         r.genID.Generate(),
		Operation:  operation,
		Success:    entry.Success,
		TargetType: entry.TargetType,
		CreatedAt:  time.Now().UTC(),
	}
	if row.TargetType == "" {
		row.TargetType = "unknown"
	}
	if actor := strings.TrimSpace(entry.ActorID); actor != "" {
		row.ActorID = &actor
	}
	if target := strings.TrimSpace(entry.TargetID); target != "" {
		row.TargetID = &target
	}
	if entry.Err != nil {
		msg := entry.Err.Error()
		row.Error = &msg
	}
	if len(entry.Metadata) > 0 {
		payload := map[string]any{}
		for key, value := range entry.Metadata {
			if key == "" {
				continue
			}
			payload[key] = value
		}
		row.Metadata = datatypes.JSONMap(payload)
	}

	select {
	case r.queue <- row:
	default:
		r.metrics.IncAuditDropped()
		r.log.Warn("audit queue full, entry dropped", zap.String("operation", operation))
	}
}

func (r *Recorder) List(ctx context.Context, req domain.ListRequest) (domain.ListResponse, error) {
	if req.StartAt != nil && req.EndAt != nil && req.StartAt.After(*req.EndAt) {
		return domain.ListResponse{}, domain.ErrInvalidTimeRange
	}

	logs, total, err := r.repo.List(ctx, req)
	if err != nil {
		return domain.ListResponse{}, err
	}

	resp := domain.ListResponse{Logs: logs}
	resp.PageInfo = pagination.BuildPageInfo(total, req.Pagination)
	return resp, nil
}

func (r *Recorder) drain() {
	defer close(r.done)
	for row := range r.queue {
		ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
		if err := r.repo.Insert(ctx, &row); err != nil {
			r.metrics.IncAuditWriteFailure()
			r.log.Warn("failed to write audit log",
				zap.String("operation", row.Operation),
				zap.Error(err),
			)
		}
		cancel()
	}
}

func (r *Recorder) close() {
	r.once.Do(func() { close(r.queue) })
}
