package dataset

import (
	"context"
	"fmt"
	"sync"
	"time"

	"siren/internal/incident/model"
	"siren/internal/logging"
	"siren/internal/util"
)

// ErrEmpty reports that no historical rows are available. The caller must
// surface it rather than retry silently.
var ErrEmpty = fmt.Errorf("dataset: no historical rows available")

type Config struct {
	File string `envconfig:"SIREN_DATASET_FILE"`
}

// FetchFn pulls the current historical rows from persistent storage.
type FetchFn func(context.Context) ([]model.Incident, error)

// Snapshot is an immutable view of the historical dataset. Concurrent reads
// are safe; a snapshot is never mutated after construction.
type Snapshot struct {
	rows        []model.Record
	fingerprint string
	loadedAt    time.Time
}

func NewSnapshot(rows []model.Record, loadedAt time.Time) *Snapshot {
	return &Snapshot{
		rows:        rows,
		fingerprint: util.HashRecords(rows),
		loadedAt:    loadedAt,
	}
}

func (s *Snapshot) Rows() []model.Record {
	return s.rows
}

func (s *Snapshot) Len() int {
	return len(s.rows)
}

// Fingerprint identifies the dataset version a prediction was computed
// against. Predictions are snapshot-relative, not model-versioned.
func (s *Snapshot) Fingerprint() string {
	return s.fingerprint
}

func (s *Snapshot) LoadedAt() time.Time {
	return s.loadedAt
}

// Provider hands out the current snapshot and serializes refreshes. The
// snapshot is loaded once on first use; replacing it is an explicit Refresh
// call, never an implicit side effect of a prediction.
type Provider struct {
	mtx     sync.RWMutex
	fetchFn FetchFn
	current *Snapshot
}

func NewProvider(fetchFn FetchFn) *Provider {
	return &Provider{fetchFn: fetchFn}
}

// Current returns the active snapshot, loading it on first call.
func (p *Provider) Current(ctx context.Context) (*Snapshot, error) {
	p.mtx.RLock()
	snap := p.current
	p.mtx.RUnlock()
	if snap != nil {
		return snap, nil
	}
	return p.Refresh(ctx)
}

// Refresh replaces the active snapshot from storage. In-flight readers keep
// the snapshot they already hold.
func (p *Provider) Refresh(ctx context.Context) (*Snapshot, error) {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	incidents, err := p.fetchFn(ctx)
	if err != nil {
		return nil, fmt.Errorf("dataset: fetch rows: %w", err)
	}
	rows := make([]model.Record, len(incidents))
	for i := range incidents {
		rows[i] = incidents[i].Fields
	}
	snap := NewSnapshot(rows, time.Now())
	p.current = snap
	logging.FromContext(ctx).Infof(
		"dataset: snapshot refreshed, %d rows, fingerprint %s", snap.Len(), snap.Fingerprint(),
	)
	return snap, nil
}
