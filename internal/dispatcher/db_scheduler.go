package dispatcher

import (
	"context"
	"fmt"
	"time"

	"siren/internal/database"
	incidentDb "siren/internal/incident/database"
	"siren/internal/incident/model"
)

type dbSchedulerConfig struct {
	maxItemsStored int
	maxStorageTime time.Duration
	rebuildDbTime  time.Duration
}

func newDBScheduler(db *database.DB, config dbSchedulerConfig) *dbScheduler {
	return &dbScheduler{incidentDb: incidentDb.New(db), opts: config}
}

// dbScheduler holds the stored history to the configured bounds: it deletes
// rows past the max storage time and trims the oldest rows past the max
// count. Zero bounds disable the respective pruning.
type dbScheduler struct {
	opts       dbSchedulerConfig
	incidentDb *incidentDb.DB
}

type countIncidentsFn func(context.Context) (int, error)

type deleteOldestFn func(context.Context, int) error

type deleteMatchingFn func(context.Context, incidentDb.FilterFn) (int, error)

func (s *dbScheduler) processOutdated(ctx context.Context, deleteFn deleteMatchingFn) (int, error) {
	deadline := time.Now().Add(-s.opts.maxStorageTime)
	removed, err := deleteFn(ctx, func(incident model.Incident) bool {
		return incident.CreatedAt.Before(deadline)
	})
	if err != nil {
		return 0, fmt.Errorf("unable delete outdated incidents: %v", err)
	}
	return removed, nil
}

func (s *dbScheduler) processOverSize(ctx context.Context, countFn countIncidentsFn, deleteFn deleteOldestFn) (int, error) {
	count, err := countFn(ctx)
	if err != nil {
		return 0, fmt.Errorf("unable count incidents: %v", err)
	}
	over := count - s.opts.maxItemsStored
	if over <= 0 {
		return 0, nil
	}
	if err := deleteFn(ctx, over); err != nil {
		return 0, fmt.Errorf("unable delete oversize incidents: %v", err)
	}
	return over, nil
}

func (s *dbScheduler) rebuild(ctx context.Context) error {
	if s.opts.maxStorageTime > 0 {
		if _, err := s.processOutdated(ctx, s.incidentDb.DeleteMatching); err != nil {
			return err
		}
	}
	if s.opts.maxItemsStored > 0 {
		if _, err := s.processOverSize(ctx, s.incidentDb.Count, s.incidentDb.DeleteOldest); err != nil {
			return err
		}
	}
	return nil
}
