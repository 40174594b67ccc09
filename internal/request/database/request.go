package database

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"siren/internal/database"
	"siren/internal/request/model"
)

const requestBucket = "request:resource"

// ErrRequestNotFound reports a lookup for an unknown request id.
var ErrRequestNotFound = fmt.Errorf("resource request not found")

type RequestFilterFn func(req model.ResourceRequest) bool

func New(db *database.DB) *DB {
	return &DB{sDB: db}
}

type DB struct {
	sDB *database.DB
}

func (db *DB) Save(_ context.Context, req model.ResourceRequest) error {
	bytes, err := json.Marshal(req)
	if err != nil {
		return err
	}
	if err := db.sDB.DB.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(requestBucket))
		if err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
		if err := b.Put([]byte(req.ID.String()), bytes); err != nil {
			return fmt.Errorf("put to bucket error: %w", err)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("update transaction error: %v", err)
	}
	return nil
}

func (db *DB) Find(_ context.Context, id uuid.UUID) (model.ResourceRequest, error) {
	var req model.ResourceRequest
	found := false
	if err := db.sDB.DB.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(requestBucket))
		if b == nil {
			return nil
		}
		v := b.Get([]byte(id.String()))
		if v == nil {
			return nil
		}
		if err := json.Unmarshal(v, &req); err != nil {
			return fmt.Errorf("request unmarshal error, %q", err)
		}
		found = true
		return nil
	}); err != nil {
		return model.ResourceRequest{}, fmt.Errorf("view transaction error: %v", err)
	}
	if !found {
		return model.ResourceRequest{}, ErrRequestNotFound
	}
	return req, nil
}

// FindAll returns the requests matching the filter, newest first. A nil
// filter matches everything.
func (db *DB) FindAll(_ context.Context, filter RequestFilterFn) ([]model.ResourceRequest, error) {
	var requests []model.ResourceRequest
	if err := db.sDB.DB.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(requestBucket))
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var req model.ResourceRequest
			if err := json.Unmarshal(v, &req); err != nil {
				return fmt.Errorf("request unmarshal error, %q", err)
			}
			if filter == nil || filter(req) {
				requests = append(requests, req)
			}
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("view transaction error: %v", err)
	}
	sort.SliceStable(requests, func(i, j int) bool {
		return requests[i].CreatedAt.After(requests[j].CreatedAt)
	})
	return requests, nil
}
