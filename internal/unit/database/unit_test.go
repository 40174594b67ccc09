package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"siren/internal/database"
	"siren/internal/unit/model"
)

func newTestDB(t *testing.T) *DB {
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
	return New(sDB)
}

func TestDB_SaveFind(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	u := model.NewUnit("M-17", model.TypeAmbulance)
	if err := db.Save(ctx, u); err != nil {
		t.Fatalf("the error should not be returned: %v", err)
	}

	got, err := db.Find(ctx, u.ID)
	if err != nil {
		t.Fatalf("the error should not be returned: %v", err)
	}
	if got.Name != "M-17" || got.Type != model.TypeAmbulance || got.Status != model.StatusAvailable {
		t.Errorf("stored unit, got: %+v", got)
	}
}

func TestDB_FindMissing(t *testing.T) {
	db := newTestDB(t)
	if _, err := db.Find(context.Background(), uuid.New()); !errors.Is(err, ErrUnitNotFound) {
		t.Errorf("finding a missing unit, got: %v, expected: %v", err, ErrUnitNotFound)
	}
}

func TestDB_SetStatus(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	u := model.NewUnit("M-17", model.TypeAmbulance)
	if err := db.Save(ctx, u); err != nil {
		t.Fatalf("the error should not be returned: %v", err)
	}

	got, changed, err := db.SetStatus(ctx, u.ID, model.StatusDispatched)
	if err != nil {
		t.Fatalf("the error should not be returned: %v", err)
	}
	if !changed {
		t.Errorf("a real transition must report changed")
	}
	if got.Status != model.StatusDispatched {
		t.Errorf("unit status, got: %v, expected: %v", got.Status, model.StatusDispatched)
	}

	_, changed, err = db.SetStatus(ctx, u.ID, model.StatusDispatched)
	if err != nil {
		t.Fatalf("the error should not be returned: %v", err)
	}
	if changed {
		t.Errorf("a same-status transition must be a no-op")
	}

	entries, err := db.Logs(ctx, nil)
	if err != nil {
		t.Fatalf("the error should not be returned: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("log entries, got: %v, expected: 1", len(entries))
	}
	entry := entries[0]
	if entry.UnitID != u.ID || entry.FromStatus != model.StatusAvailable || entry.ToStatus != model.StatusDispatched {
		t.Errorf("log entry, got: %+v", entry)
	}
}

func TestDB_SetStatusMissing(t *testing.T) {
	db := newTestDB(t)
	_, _, err := db.SetStatus(context.Background(), uuid.New(), model.StatusDispatched)
	if !errors.Is(err, ErrUnitNotFound) {
		t.Errorf("transitioning a missing unit, got: %v, expected: %v", err, ErrUnitNotFound)
	}
}

func TestDB_Counts(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	amb1 := model.NewUnit("M-1", model.TypeAmbulance)
	amb2 := model.NewUnit("M-2", model.TypeAmbulance)
	eng := model.NewUnit("E-1", model.TypeEngine)
	for _, u := range []model.Unit{amb1, amb2, eng} {
		if err := db.Save(ctx, u); err != nil {
			t.Fatalf("the error should not be returned: %v", err)
		}
	}
	if _, _, err := db.SetStatus(ctx, amb2.ID, model.StatusDispatched); err != nil {
		t.Fatalf("the error should not be returned: %v", err)
	}

	available, err := db.CountByTypeAndStatus(ctx, model.TypeAmbulance, model.StatusAvailable)
	if err != nil {
		t.Fatalf("the error should not be returned: %v", err)
	}
	if available != 1 {
		t.Errorf("available ambulances, got: %v, expected: 1", available)
	}

	total, err := db.CountByType(ctx, model.TypeAmbulance)
	if err != nil {
		t.Fatalf("the error should not be returned: %v", err)
	}
	if total != 2 {
		t.Errorf("total ambulances, got: %v, expected: 2", total)
	}
}

func TestDB_LogsFilter(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	amb := model.NewUnit("M-1", model.TypeAmbulance)
	eng := model.NewUnit("E-1", model.TypeEngine)
	for _, u := range []model.Unit{amb, eng} {
		if err := db.Save(ctx, u); err != nil {
			t.Fatalf("the error should not be returned: %v", err)
		}
	}
	if _, _, err := db.SetStatus(ctx, amb.ID, model.StatusDispatched); err != nil {
		t.Fatalf("the error should not be returned: %v", err)
	}
	if _, _, err := db.SetStatus(ctx, eng.ID, model.StatusDispatched); err != nil {
		t.Fatalf("the error should not be returned: %v", err)
	}

	entries, err := db.Logs(ctx, func(entry model.LogEntry) bool {
		return entry.UnitType == model.TypeAmbulance
	})
	if err != nil {
		t.Fatalf("the error should not be returned: %v", err)
	}
	if len(entries) != 1 || entries[0].UnitID != amb.ID {
		t.Errorf("filtered log entries, got: %v, expected the ambulance entry only", len(entries))
	}
}
