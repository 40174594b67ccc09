package database

import (
	"context"
	"encoding/json"
	"fmt"

	bolt "go.etcd.io/bbolt"

	"siren/internal/database"
	"siren/internal/incident/model"
)

const bucketName = "incident:history"

// FilterFn selects incidents during a scan.
type FilterFn func(incident model.Incident) bool

func New(db *database.DB) *DB {
	return &DB{sDB: db}
}

// DB stores historical incidents in insertion order. Keys are zero-padded
// sequence numbers so a cursor walk reproduces the original row order.
type DB struct {
	sDB *database.DB
}

func seqKey(seq uint64) []byte {
	return []byte(fmt.Sprintf("%016d", seq))
}

func (db *DB) Store(_ context.Context, incident model.Incident) error {
	bytes, err := json.Marshal(incident)
	if err != nil {
		return err
	}

	if err := db.sDB.DB.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		if err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
		seq, err := b.NextSequence()
		if err != nil {
			return fmt.Errorf("bucket sequence error: %w", err)
		}
		if err := b.Put(seqKey(seq), bytes); err != nil {
			return fmt.Errorf("put to bucket error: %w", err)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("update transaction error: %v", err)
	}

	return nil
}

func (db *DB) AppendMany(_ context.Context, incidents []model.Incident) error {
	if len(incidents) == 0 {
		return nil
	}
	if err := db.sDB.DB.Batch(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		if err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
		for _, incident := range incidents {
			bytes, err := json.Marshal(incident)
			if err != nil {
				return err
			}
			seq, err := b.NextSequence()
			if err != nil {
				return fmt.Errorf("bucket sequence error: %w", err)
			}
			if err := b.Put(seqKey(seq), bytes); err != nil {
				return fmt.Errorf("put to bucket error: %w", err)
			}
		}
		return nil
	}); err != nil {
		return fmt.Errorf("update transaction error: %v", err)
	}

	return nil
}

// FindAll returns the incidents matching the filter in insertion order.
// A nil filter matches everything.
func (db *DB) FindAll(_ context.Context, filter FilterFn) ([]model.Incident, error) {
	var incidents []model.Incident
	if err := db.sDB.DB.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var incident model.Incident
			if err := json.Unmarshal(v, &incident); err != nil {
				return fmt.Errorf("incident unmarshal error, %q", err)
			}
			if filter == nil || filter(incident) {
				incidents = append(incidents, incident)
			}
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("view transaction error: %v", err)
	}

	return incidents, nil
}

func (db *DB) Count(_ context.Context) (int, error) {
	var n int
	if err := db.sDB.DB.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return nil
		}
		n = b.Stats().KeyN
		return nil
	}); err != nil {
		return 0, fmt.Errorf("view transaction error: %v", err)
	}
	return n, nil
}

// DeleteOldest removes the first n incidents in insertion order. The
// scheduler uses it to hold the history to a configured size.
func (db *DB) DeleteOldest(_ context.Context, n int) error {
	if n <= 0 {
		return nil
	}
	if err := db.sDB.DB.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return nil
		}
		var keys [][]byte
		c := b.Cursor()
		for k, _ := c.First(); k != nil && len(keys) < n; k, _ = c.Next() {
			key := make([]byte, len(k))
			copy(key, k)
			keys = append(keys, key)
		}
		for _, key := range keys {
			if err := b.Delete(key); err != nil {
				return fmt.Errorf("unable delete: %w", err)
			}
		}
		return nil
	}); err != nil {
		return fmt.Errorf("update transaction error: %v", err)
	}
	return nil
}

// DeleteMatching removes every incident the filter selects and reports how
// many were removed.
func (db *DB) DeleteMatching(_ context.Context, filter FilterFn) (int, error) {
	removed := 0
	if err := db.sDB.DB.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return nil
		}
		var keys [][]byte
		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var incident model.Incident
			if err := json.Unmarshal(v, &incident); err != nil {
				return fmt.Errorf("incident unmarshal error, %q", err)
			}
			if !filter(incident) {
				continue
			}
			key := make([]byte, len(k))
			copy(key, k)
			keys = append(keys, key)
		}
		for _, key := range keys {
			if err := b.Delete(key); err != nil {
				return fmt.Errorf("unable delete: %w", err)
			}
			removed++
		}
		return nil
	}); err != nil {
		return 0, fmt.Errorf("update transaction error: %v", err)
	}
	return removed, nil
}
