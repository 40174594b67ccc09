package database

import (
	"context"
	"encoding/json"
	"fmt"

	bolt "go.etcd.io/bbolt"

	"siren/internal/alert/model"
	"siren/internal/database"
)

const bucketName = "alert:issued"

func New(db *database.DB) *DB {
	return &DB{sDB: db}
}

type DB struct {
	sDB *database.DB
}

func seqKey(seq uint64) []byte {
	return []byte(fmt.Sprintf("%016d", seq))
}

func (db *DB) Store(_ context.Context, alert model.Alert) error {
	bytes, err := json.Marshal(alert)
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

// Last returns the most recently issued alert, or nil when none exists.
func (db *DB) Last(_ context.Context) (*model.Alert, error) {
	var alert *model.Alert
	if err := db.sDB.DB.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return nil
		}
		_, v := b.Cursor().Last()
		if v == nil {
			return nil
		}
		var a model.Alert
		if err := json.Unmarshal(v, &a); err != nil {
			return fmt.Errorf("alert unmarshal error, %q", err)
		}
		alert = &a
		return nil
	}); err != nil {
		return nil, fmt.Errorf("view transaction error: %v", err)
	}
	return alert, nil
}
