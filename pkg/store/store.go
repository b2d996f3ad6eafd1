// Package store is the crash-safe key-value layer that remembers each
// worker's currently active coordinator task and its assigned backend task
// id, so an in-flight proof survives a restart instead of being re-requested.
package store

import (
	"encoding/json"

	"github.com/scroll-tech/proving-sdk/pkg/types"
)

const (
	coordinatorTaskPrefix = "last_coordinator_task_"
	backendTaskIDPrefix   = "last_proving_task_id_"
)

// Store is the C2 contract. Implementations must give keys partitioned by
// worker public key single-writer-many-reader safety; workers never touch
// each other's keys so no cross-worker coordination is required.
type Store interface {
	// GetTask returns the persisted coordinator task and backend task id for
	// pubkey. Either may be nil/empty; a missing or malformed record is
	// treated as absent rather than as an error.
	GetTask(pubkey string) (*types.CoordinatorTask, string, error)

	// SetTask durably records the active task for pubkey. Called before the
	// first status poll so a crash after Proving is recoverable.
	SetTask(pubkey string, task *types.CoordinatorTask, backendTaskID string) error

	// DeleteTask removes both entries for pubkey. Called once, after a
	// terminal submit_proof.
	DeleteTask(pubkey string) error

	Close() error
}

func coordinatorTaskKey(pubkey string) []byte {
	return []byte(coordinatorTaskPrefix + pubkey)
}

func backendTaskIDKey(pubkey string) []byte {
	return []byte(backendTaskIDPrefix + pubkey)
}

func decodeCoordinatorTask(data []byte) *types.CoordinatorTask {
	if len(data) == 0 {
		return nil
	}
	var task types.CoordinatorTask
	if err := json.Unmarshal(data, &task); err != nil {
		return nil
	}
	return &task
}
