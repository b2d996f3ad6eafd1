package store

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	bolt "go.etcd.io/bbolt"

	"github.com/scroll-tech/proving-sdk/pkg/types"
)

var tasksBucket = []byte("tasks")

// BoltStore implements Store on top of an embedded bbolt database. One
// bucket holds both key families described in the keyspace layout, so an
// independent implementation reading the same file sees the exact same
// key/value pairs.
type BoltStore struct {
	db *bolt.DB
}

// Open creates or opens a bbolt database at <dataDir>/prover.db.
func Open(dataDir string) (*BoltStore, error) {
	dbPath := filepath.Join(dataDir, "prover.db")

	db, err := bolt.Open(dbPath, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("opening task store: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(tasksBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tasks bucket: %w", err)
	}

	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) GetTask(pubkey string) (*types.CoordinatorTask, string, error) {
	var task *types.CoordinatorTask
	var backendID string

	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(tasksBucket)
		task = decodeCoordinatorTask(b.Get(coordinatorTaskKey(pubkey)))
		backendID = string(b.Get(backendTaskIDKey(pubkey)))
		return nil
	})
	if err != nil {
		return nil, "", fmt.Errorf("reading active task for %s: %w", pubkey, err)
	}
	return task, backendID, nil
}

func (s *BoltStore) SetTask(pubkey string, task *types.CoordinatorTask, backendTaskID string) error {
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshaling coordinator task: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(tasksBucket)
		if err := b.Put(coordinatorTaskKey(pubkey), data); err != nil {
			return err
		}
		return b.Put(backendTaskIDKey(pubkey), []byte(backendTaskID))
	})
}

func (s *BoltStore) DeleteTask(pubkey string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(tasksBucket)
		if err := b.Delete(coordinatorTaskKey(pubkey)); err != nil {
			return err
		}
		return b.Delete(backendTaskIDKey(pubkey))
	})
}

var _ Store = (*BoltStore)(nil)
