package dispatcher

import (
	"context"
	"fmt"
	"sync"
	"time"

	"siren/internal/database"
	incidentDb "siren/internal/incident/database"
	"siren/internal/incident/model"
	"siren/internal/logging"
)

func newDbTxExecutor(db *database.DB, opts dbTxExecutorOptions, shutdownCh chan<- error) *dbTxExecutor {
	return &dbTxExecutor{incidentDb: incidentDb.New(db), opts: opts, shutdownCh: shutdownCh}
}

type dbTxExecutorOptions struct {
	dbFlushSize int
	dbFlushTime time.Duration
}

type appendIncidentsFn func(context.Context, []model.Incident) error

// dbTxExecutor accumulates collected incidents and inserts them in bulk into
// persistent storage, on size or time.
type dbTxExecutor struct {
	mtx sync.RWMutex

	opts       dbTxExecutorOptions
	incidentDb *incidentDb.DB
	buf        []model.Incident
	shutdownCh chan<- error
}

// shutdown urgently drains the buffer into persistent storage.
func (tx *dbTxExecutor) shutdown(appendFn appendIncidentsFn) error {
	tx.mtx.Lock()
	defer tx.mtx.Unlock()
	if err := appendFn(context.Background(), tx.buf); err != nil {
		return fmt.Errorf("txExecutor: append many operation failed: %v", err)
	}
	tx.buf = tx.buf[:0]
	return nil
}

// append buffers one incident; a full buffer triggers a bulk insert.
func (tx *dbTxExecutor) append(ctx context.Context, data model.Incident) {
	tx.mtx.Lock()
	if tx.buf == nil {
		tx.buf = []model.Incident{}
	}
	tx.buf = append(tx.buf, data)
	bufLen := len(tx.buf)
	tx.mtx.Unlock()

	if bufLen >= tx.opts.dbFlushSize {
		go tx.bulkAppend(ctx, tx.incidentDb.AppendMany)
	}
}

func (tx *dbTxExecutor) bulkAppend(ctx context.Context, appendFn appendIncidentsFn) {
	logger := logging.FromContext(ctx)

	tx.mtx.Lock()
	tmpBuf := make([]model.Incident, len(tx.buf))
	copy(tmpBuf, tx.buf)
	tx.buf = tx.buf[:0]
	tx.mtx.Unlock()

	if err := appendFn(context.Background(), tmpBuf); err != nil {
		logger.Errorf("txExecutor: append many operation failed: %v", err)
	}
}

// flusher periodically drains the buffer into the database.
func (tx *dbTxExecutor) flusher(ctx context.Context, appendFn appendIncidentsFn) {
	defer func() {
		tx.shutdownCh <- tx.shutdown(appendFn)
	}()
	ticker := time.NewTicker(tx.opts.dbFlushTime)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			tx.bulkAppend(ctx, appendFn)
		case <-ctx.Done():
			return
		}
	}
}
