package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	alertDb "siren/internal/alert/database"
	"siren/internal/alert/model"
	"siren/internal/database"
	"siren/internal/forecast"
	"siren/internal/httputil"
	"siren/internal/logging"
	"siren/pkg/rworker"
)

type ProvideFn = func(chan<- error) (Manager, error)

const UserAgent = "SIREN/0.1"

type Options struct {
	maxConcurrentRequest int
	alertInterval        time.Duration
	cooldown             time.Duration
	targets              Targets
}

type Option func(*manager)

func WithMaxConcurrentRequest(n int) Option {
	return func(o *manager) {
		o.opts.maxConcurrentRequest = n
	}
}

func WithInterval(t time.Duration) Option {
	return func(o *manager) {
		o.opts.alertInterval = t
	}
}

func WithCooldown(t time.Duration) Option {
	return func(o *manager) {
		o.opts.cooldown = t
	}
}

func WithTargets(m Targets) Option {
	return func(o *manager) {
		o.opts.targets = m
	}
}

// Supplier produces the supply report the manager evaluates each tick.
type Supplier interface {
	AmbulanceLow(context.Context) (*forecast.Report, error)
}

type Manager interface {
	Run(context.Context) error
	Stop()
}

var defaultOptions = Options{
	maxConcurrentRequest: 64,
	alertInterval:        60 * time.Second,
	cooldown:             15 * time.Minute,
}

func New(db *database.DB, supplier Supplier, shutdownCh chan<- error, opts ...Option) (*manager, error) {
	if supplier == nil {
		return nil, fmt.Errorf("supply forecaster instance is not created")
	}
	m := &manager{
		opts:       defaultOptions,
		alertDb:    alertDb.New(db),
		supplier:   supplier,
		shutdownCh: shutdownCh,
		clients:    map[string]*http.Client{},
	}
	for _, f := range opts {
		f(m)
	}
	for _, target := range m.opts.targets {
		if _, ok := m.clients[target.Name]; !ok {
			client, err := httputil.NewClientFromConfig(target.HTTPConfig, true)
			if err != nil {
				return nil, fmt.Errorf("unable create client for target %s: %v", target.Name, err)
			}
			m.clients[target.Name] = client
		}
	}
	return m, nil
}

// manager periodically evaluates the ambulance supply forecast and posts a
// warning to every configured target when the pool is projected low. Issued
// alerts are stored and rate-limited by the cooldown.
type manager struct {
	mtx        sync.RWMutex
	opts       Options
	alertDb    *alertDb.DB
	supplier   Supplier
	shutdownCh chan<- error
	clients    map[string]*http.Client
	lastIssued time.Time
	cancel     func()
}

func (m *manager) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	if last, err := m.alertDb.Last(ctx); err == nil && last != nil {
		m.lastIssued = last.CreatedAt
	}
	go m.watch(ctx)
	return nil
}

func (m *manager) Stop() {
	m.cancel()
}

func (m *manager) watch(ctx context.Context) {
	logger := logging.FromContext(ctx)
	defer func() {
		m.shutdownCh <- nil
	}()
	ticker := time.NewTicker(m.opts.alertInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := m.evaluate(ctx); err != nil {
				logger.Errorf("alert: evaluate supply forecast: %v", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

func (m *manager) evaluate(ctx context.Context) error {
	report, err := m.supplier.AmbulanceLow(ctx)
	if err != nil {
		return err
	}
	if !report.Low {
		return nil
	}

	m.mtx.Lock()
	if time.Since(m.lastIssued) < m.opts.cooldown {
		m.mtx.Unlock()
		return nil
	}
	m.lastIssued = time.Now()
	m.mtx.Unlock()

	issued := model.NewAlert(*report)
	if err := m.alertDb.Store(ctx, issued); err != nil {
		return fmt.Errorf("store issued alert: %v", err)
	}
	m.notify(ctx, issued)
	return nil
}

func (m *manager) notify(ctx context.Context, issued model.Alert) {
	logger := logging.FromContext(ctx)
	body, err := json.Marshal(issued)
	if err != nil {
		logger.Errorf("alert: marshal alert: %v", err)
		return
	}

	var wg sync.WaitGroup
	rate := make(chan struct{}, m.opts.maxConcurrentRequest)
	errCh := make(chan error, 1)
	for _, target := range m.opts.targets {
		target := target
		rworker.Job(&wg, func() error {
			return m.post(ctx, target, body)
		}, rate, errCh)
	}
	wg.Wait()

	select {
	case err := <-errCh:
		logger.Errorf("alert: notify targets: %v", err)
	default:
	}
}

func (m *manager) post(ctx context.Context, target Target, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request for %s: %w", target.Name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", UserAgent)

	client, ok := m.clients[target.Name]
	if !ok {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("send alert to %s: %w", target.Name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("alert target %s responded %d", target.Name, resp.StatusCode)
	}
	return nil
}
