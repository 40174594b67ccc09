package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"siren/internal/database"
	"siren/internal/unit/model"
)

const (
	unitBucket = "unit:registry"
	logBucket  = "unit:log"
)

// ErrUnitNotFound reports a lookup for an unknown unit id.
var ErrUnitNotFound = fmt.Errorf("unit not found")

type UnitFilterFn func(unit model.Unit) bool

type LogFilterFn func(entry model.LogEntry) bool

func New(db *database.DB) *DB {
	return &DB{sDB: db}
}

type DB struct {
	sDB *database.DB
}

func seqKey(seq uint64) []byte {
	return []byte(fmt.Sprintf("%016d", seq))
}

func (db *DB) Save(_ context.Context, unit model.Unit) error {
	bytes, err := json.Marshal(unit)
	if err != nil {
		return err
	}
	if err := db.sDB.DB.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(unitBucket))
		if err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
		if err := b.Put([]byte(unit.ID.String()), bytes); err != nil {
			return fmt.Errorf("put to bucket error: %w", err)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("update transaction error: %v", err)
	}
	return nil
}

func (db *DB) Find(_ context.Context, id uuid.UUID) (model.Unit, error) {
	var unit model.Unit
	found := false
	if err := db.sDB.DB.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(unitBucket))
		if b == nil {
			return nil
		}
		v := b.Get([]byte(id.String()))
		if v == nil {
			return nil
		}
		if err := json.Unmarshal(v, &unit); err != nil {
			return fmt.Errorf("unit unmarshal error, %q", err)
		}
		found = true
		return nil
	}); err != nil {
		return model.Unit{}, fmt.Errorf("view transaction error: %v", err)
	}
	if !found {
		return model.Unit{}, ErrUnitNotFound
	}
	return unit, nil
}

// FindAll returns the units matching the filter. A nil filter matches
// everything.
func (db *DB) FindAll(_ context.Context, filter UnitFilterFn) ([]model.Unit, error) {
	var units []model.Unit
	if err := db.sDB.DB.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(unitBucket))
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var unit model.Unit
			if err := json.Unmarshal(v, &unit); err != nil {
				return fmt.Errorf("unit unmarshal error, %q", err)
			}
			if filter == nil || filter(unit) {
				units = append(units, unit)
			}
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("view transaction error: %v", err)
	}
	return units, nil
}

func (db *DB) CountByTypeAndStatus(ctx context.Context, unitType model.Type, status model.Status) (int, error) {
	units, err := db.FindAll(ctx, func(unit model.Unit) bool {
		return unit.Type == unitType && unit.Status == status
	})
	if err != nil {
		return 0, err
	}
	return len(units), nil
}

func (db *DB) CountByType(ctx context.Context, unitType model.Type) (int, error) {
	units, err := db.FindAll(ctx, func(unit model.Unit) bool {
		return unit.Type == unitType
	})
	if err != nil {
		return 0, err
	}
	return len(units), nil
}

// SetStatus is the single source of truth for status transitions: it
// updates the unit and writes the log entry in one transaction. A no-op
// transition writes nothing and reports false.
func (db *DB) SetStatus(_ context.Context, id uuid.UUID, status model.Status) (model.Unit, bool, error) {
	var unit model.Unit
	changed := false
	if err := db.sDB.DB.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(unitBucket))
		if err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
		v := b.Get([]byte(id.String()))
		if v == nil {
			return ErrUnitNotFound
		}
		if err := json.Unmarshal(v, &unit); err != nil {
			return fmt.Errorf("unit unmarshal error, %q", err)
		}
		if unit.Status == status {
			return nil
		}
		entry := model.NewLogEntry(unit, unit.Status, status)
		unit.Status = status
		unit.LastStatusAt = entry.CreatedAt

		bytes, err := json.Marshal(unit)
		if err != nil {
			return err
		}
		if err := b.Put([]byte(unit.ID.String()), bytes); err != nil {
			return fmt.Errorf("put to bucket error: %w", err)
		}

		lb, err := tx.CreateBucketIfNotExists([]byte(logBucket))
		if err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
		seq, err := lb.NextSequence()
		if err != nil {
			return fmt.Errorf("bucket sequence error: %w", err)
		}
		entryBytes, err := json.Marshal(entry)
		if err != nil {
			return err
		}
		if err := lb.Put(seqKey(seq), entryBytes); err != nil {
			return fmt.Errorf("put to bucket error: %w", err)
		}
		changed = true
		return nil
	}); err != nil {
		if err == ErrUnitNotFound {
			return model.Unit{}, false, err
		}
		return model.Unit{}, false, fmt.Errorf("update transaction error: %v", err)
	}
	return unit, changed, nil
}

// Logs returns status-change entries matching the filter in write order.
func (db *DB) Logs(_ context.Context, filter LogFilterFn) ([]model.LogEntry, error) {
	var entries []model.LogEntry
	if err := db.sDB.DB.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(logBucket))
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var entry model.LogEntry
			if err := json.Unmarshal(v, &entry); err != nil {
				return fmt.Errorf("log entry unmarshal error, %q", err)
			}
			if filter == nil || filter(entry) {
				entries = append(entries, entry)
			}
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("view transaction error: %v", err)
	}
	return entries, nil
}
