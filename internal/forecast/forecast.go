package forecast

import (
	"context"
	"fmt"
	"time"

	"siren/internal/database"
	unitDb "siren/internal/unit/database"
	"siren/internal/unit/model"
)

type Option func(*Forecaster)

func WithThreshold(n int) Option {
	return func(f *Forecaster) {
		f.opts.threshold = n
	}
}

func WithWindow(d time.Duration) Option {
	return func(f *Forecaster) {
		f.opts.window = d
	}
}

func WithHorizon(d time.Duration) Option {
	return func(f *Forecaster) {
		f.opts.horizon = d
	}
}

type Options struct {
	threshold int
	window    time.Duration
	horizon   time.Duration
}

var defaultOptions = Options{
	threshold: 2,
	window:    120 * time.Minute,
	horizon:   180 * time.Minute,
}

// Report is the outcome of one supply projection.
type Report struct {
	Low                bool    `json:"low"`
	Message            string  `json:"message"`
	AvailableNow       int     `json:"available_now"`
	Total              int     `json:"total"`
	ConsumptionPerHour float64 `json:"consumption_per_hour"`
	MinutesToThreshold int     `json:"minutes_to_threshold"`
}

func New(db *database.DB, opts ...Option) *Forecaster {
	f := &Forecaster{unitDb: unitDb.New(db), opts: defaultOptions}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Forecaster projects when the available-ambulance pool will drain to the
// configured threshold, from the current availability and the recent
// AVAILABLE to DISPATCHED consumption rate in the status log.
type Forecaster struct {
	opts   Options
	unitDb *unitDb.DB
}

func (f *Forecaster) AmbulanceLow(ctx context.Context) (*Report, error) {
	availableNow, err := f.unitDb.CountByTypeAndStatus(ctx, model.TypeAmbulance, model.StatusAvailable)
	if err != nil {
		return nil, fmt.Errorf("forecast: count available ambulances: %w", err)
	}
	total, err := f.unitDb.CountByType(ctx, model.TypeAmbulance)
	if err != nil {
		return nil, fmt.Errorf("forecast: count ambulances: %w", err)
	}

	report := &Report{AvailableNow: availableNow, Total: total}
	if availableNow <= f.opts.threshold {
		report.Low = true
		report.Message = fmt.Sprintf(
			"LOW NOW: only %d ambulances AVAILABLE (threshold=%d)", availableNow, f.opts.threshold,
		)
		return report, nil
	}

	since := time.Now().Add(-f.opts.window)
	events, err := f.unitDb.Logs(ctx, func(entry model.LogEntry) bool {
		return entry.UnitType == model.TypeAmbulance &&
			entry.FromStatus == model.StatusAvailable &&
			entry.ToStatus == model.StatusDispatched &&
			entry.CreatedAt.After(since)
	})
	if err != nil {
		return nil, fmt.Errorf("forecast: fetch consumption events: %w", err)
	}

	if len(events) == 0 {
		report.Message = fmt.Sprintf(
			"OK: %d ambulances AVAILABLE (total=%d), no recent consumption detected", availableNow, total,
		)
		return report, nil
	}

	hours := f.opts.window.Hours()
	if hours <= 0 {
		hours = 1e-6
	}
	rate := float64(len(events)) / hours
	minutesToThreshold := int(float64(availableNow-f.opts.threshold) / rate * 60)
	report.ConsumptionPerHour = rate
	report.MinutesToThreshold = minutesToThreshold

	if time.Duration(minutesToThreshold)*time.Minute <= f.opts.horizon {
		report.Low = true
		report.Message = fmt.Sprintf(
			"FORECAST LOW: %d AVAILABLE now, projected to reach <= %d in ~%d minutes",
			availableNow, f.opts.threshold, minutesToThreshold,
		)
		return report, nil
	}

	report.Message = fmt.Sprintf(
		"OK: %d ambulances AVAILABLE (total=%d), estimated time to threshold ~%d minutes",
		availableNow, total, minutesToThreshold,
	)
	return report, nil
}
