package dispatcher

import (
	"context"
	"fmt"
	"time"

	"siren/internal/database"
	"siren/internal/incident/model"
	"siren/internal/logging"
)

// ProvideFn is the contract for returning the Manager instance.
type ProvideFn func(chan<- error) (Manager, error)

// Collector accepts historical incident rows from outside and queues them
// for storage.
type Collector interface {
	Collect(in ...model.Incident) error
}

// Manager is the background ingest service: it drains the collect queue into
// bulk database inserts and keeps the stored history within bounds.
type Manager interface {
	Collector
	Run(context.Context) error
	Stop()
}

type Options struct {
	queueSize      int
	dbFlushSize    int
	dbFlushTime    time.Duration
	rebuildDBTime  time.Duration
	maxItemsStored int
	maxStorageTime time.Duration
}

type Option func(*manager)

func WithQueueSize(n int) Option {
	return func(o *manager) {
		o.opts.queueSize = n
	}
}

func WithDBFlushSize(n int) Option {
	return func(o *manager) {
		o.opts.dbFlushSize = n
	}
}

func WithDBFlushTime(t time.Duration) Option {
	return func(o *manager) {
		o.opts.dbFlushTime = t
	}
}

func WithRebuildDBTime(t time.Duration) Option {
	return func(o *manager) {
		o.opts.rebuildDBTime = t
	}
}

func WithMaxItemsStored(n int) Option {
	return func(o *manager) {
		o.opts.maxItemsStored = n
	}
}

func WithMaxStorageTime(t time.Duration) Option {
	return func(o *manager) {
		o.opts.maxStorageTime = t
	}
}

var defaultOptions = Options{
	queueSize:     1024,
	dbFlushSize:   64,
	dbFlushTime:   5 * time.Second,
	rebuildDBTime: 60 * time.Second,
}

func New(db *database.DB, shutdownCh chan<- error, opts ...Option) (*manager, error) {
	if db == nil {
		return nil, fmt.Errorf("database instance is not created")
	}
	m := &manager{opts: defaultOptions, shutdownCh: shutdownCh}
	for _, opt := range opts {
		opt(m)
	}
	m.queue = make(chan model.Incident, m.opts.queueSize)
	m.txExecutor = newDbTxExecutor(db, dbTxExecutorOptions{
		dbFlushSize: m.opts.dbFlushSize,
		dbFlushTime: m.opts.dbFlushTime,
	}, shutdownCh)
	m.scheduler = newDBScheduler(db, dbSchedulerConfig{
		maxItemsStored: m.opts.maxItemsStored,
		maxStorageTime: m.opts.maxStorageTime,
		rebuildDbTime:  m.opts.rebuildDBTime,
	})
	return m, nil
}

type manager struct {
	opts       Options
	queue      chan model.Incident
	txExecutor *dbTxExecutor
	scheduler  *dbScheduler
	shutdownCh chan<- error
	cancel     func()
}

// Collect queues rows for storage without blocking the caller; a full queue
// is an error the caller must surface.
func (m *manager) Collect(in ...model.Incident) error {
	for i := range in {
		select {
		case m.queue <- in[i]:
		default:
			return fmt.Errorf("ingest queue is full, dropping incident %s", in[i].ID)
		}
	}
	return nil
}

func (m *manager) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	go m.consume(ctx)
	go m.txExecutor.flusher(ctx, m.txExecutor.incidentDb.AppendMany)
	go m.rebuild(ctx)
	return nil
}

func (m *manager) Stop() {
	m.cancel()
}

func (m *manager) consume(ctx context.Context) {
	for {
		select {
		case incident := <-m.queue:
			m.txExecutor.append(ctx, incident)
		case <-ctx.Done():
			return
		}
	}
}

func (m *manager) rebuild(ctx context.Context) {
	logger := logging.FromContext(ctx)
	ticker := time.NewTicker(m.opts.rebuildDBTime)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := m.scheduler.rebuild(ctx); err != nil {
				logger.Errorf("dispatcher: rebuild db error: %v", err)
			}
		case <-ctx.Done():
			return
		}
	}
}
