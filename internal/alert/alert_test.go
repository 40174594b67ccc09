package alert

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	alertDb "siren/internal/alert/database"
	"siren/internal/database"
	"siren/internal/forecast"
)

type fakeSupplier struct {
	report *forecast.Report
}

func (f *fakeSupplier) AmbulanceLow(ctx context.Context) (*forecast.Report, error) {
	return f.report, nil
}

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	sDB, err := database.NewFromEnv(context.Background(), &database.Config{
		FileName: filepath.Join(t.TempDir(), "siren-test.db"),
	})
	if err != nil {
		t.Fatalf("unable to open test db: %v", err)
	}
	t.Cleanup(func() {
		_ = sDB.Close(context.Background())
	})
	return sDB
}

func TestManagerEvaluate_Cooldown(t *testing.T) {
	sDB := newTestDB(t)
	ctx := context.Background()

	supplier := &fakeSupplier{report: &forecast.Report{Low: true, Message: "LOW NOW", AvailableNow: 1, Total: 5}}
	m, err := New(sDB, supplier, make(chan error, 1), WithCooldown(time.Hour))
	if err != nil {
		t.Fatalf("unable to create manager: %v", err)
	}

	if err := m.evaluate(ctx); err != nil {
		t.Fatalf("the error should not be returned: %v", err)
	}
	store := alertDb.New(sDB)
	first, err := store.Last(ctx)
	if err != nil {
		t.Fatalf("the error should not be returned: %v", err)
	}
	if first == nil {
		t.Fatalf("a low report must store an alert")
	}

	if err := m.evaluate(ctx); err != nil {
		t.Fatalf("the error should not be returned: %v", err)
	}
	second, err := store.Last(ctx)
	if err != nil {
		t.Fatalf("the error should not be returned: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("a second alert inside the cooldown must not be issued")
	}
}

func TestManagerEvaluate_NotLow(t *testing.T) {
	sDB := newTestDB(t)
	ctx := context.Background()

	supplier := &fakeSupplier{report: &forecast.Report{Low: false, AvailableNow: 5, Total: 5}}
	m, err := New(sDB, supplier, make(chan error, 1))
	if err != nil {
		t.Fatalf("unable to create manager: %v", err)
	}
	if err := m.evaluate(ctx); err != nil {
		t.Fatalf("the error should not be returned: %v", err)
	}

	stored, err := alertDb.New(sDB).Last(ctx)
	if err != nil {
		t.Fatalf("the error should not be returned: %v", err)
	}
	if stored != nil {
		t.Errorf("a healthy report must not issue an alert")
	}
}

func TestNewRequiresSupplier(t *testing.T) {
	if _, err := New(newTestDB(t), nil, make(chan error, 1)); err == nil {
		t.Errorf("creating a manager without a supplier must return an error")
	}
}
