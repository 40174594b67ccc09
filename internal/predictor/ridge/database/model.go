package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"siren/internal/database"
)

const bucketName = "model:artifacts"

// ErrNoModel reports that no trained artifact has been stored yet.
var ErrNoModel = fmt.Errorf("no trained model artifact stored")

// Artifact is a versioned trained-model record. The payload is the encoded
// model; the surrounding fields describe the training run.
type Artifact struct {
	ID        uuid.UUID       `json:"id"`
	TrainedAt time.Time       `json:"trainedAt"`
	Rows      int             `json:"rows"`
	Lambda    float64         `json:"lambda"`
	Payload   json.RawMessage `json:"payload"`
}

func NewArtifact(payload []byte, rows int, lambda float64) Artifact {
	return Artifact{
		ID:        uuid.New(),
		TrainedAt: time.Now(),
		Rows:      rows,
		Lambda:    lambda,
		Payload:   payload,
	}
}

func New(db *database.DB) *DB {
	return &DB{sDB: db}
}

type DB struct {
	sDB *database.DB
}

func seqKey(seq uint64) []byte {
	return []byte(fmt.Sprintf("%016d", seq))
}

func (db *DB) Save(_ context.Context, artifact Artifact) error {
	bytes, err := json.Marshal(artifact)
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

// Latest returns the most recently stored artifact.
func (db *DB) Latest(_ context.Context) (*Artifact, error) {
	var artifact *Artifact
	if err := db.sDB.DB.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return nil
		}
		_, v := b.Cursor().Last()
		if v == nil {
			return nil
		}
		var a Artifact
		if err := json.Unmarshal(v, &a); err != nil {
			return fmt.Errorf("artifact unmarshal error, %q", err)
		}
		artifact = &a
		return nil
	}); err != nil {
		return nil, fmt.Errorf("view transaction error: %v", err)
	}
	if artifact == nil {
		return nil, ErrNoModel
	}
	return artifact, nil
}
