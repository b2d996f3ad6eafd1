// Package types holds the wire and persistence data model shared by every
// other package in the SDK: proof-task kinds, circuit families, provider
// flavors, and the coordinator task envelope.
package types

import (
	"encoding/json"
	"fmt"
)

// ProofType is the coordinator's proof-task kind. It serializes on the wire
// as a small unsigned integer, matching the coordinator's own enum.
type ProofType uint8

const (
	ProofTypeUndefined ProofType = 0
	ProofTypeChunk     ProofType = 1
	ProofTypeBatch     ProofType = 2
	ProofTypeBundle    ProofType = 3
)

func (t ProofType) String() string {
	switch t {
	case ProofTypeChunk:
		return "chunk"
	case ProofTypeBatch:
		return "batch"
	case ProofTypeBundle:
		return "bundle"
	default:
		return "undefined"
	}
}

// ProofTypeFromU8 maps an unrecognized value to ProofTypeUndefined rather
// than erroring, mirroring the coordinator's permissive decode.
func ProofTypeFromU8(v uint8) ProofType {
	switch v {
	case 1:
		return ProofTypeChunk
	case 2:
		return ProofTypeBatch
	case 3:
		return ProofTypeBundle
	default:
		return ProofTypeUndefined
	}
}

func (t ProofType) MarshalJSON() ([]byte, error) {
	return json.Marshal(uint8(t))
}

func (t *ProofType) UnmarshalJSON(data []byte) error {
	var v uint8
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*t = ProofTypeFromU8(v)
	return nil
}

// CircuitType is the proving-system family. It determines how C7 assembles
// a ProveRequest's input from a coordinator task.
type CircuitType uint8

const (
	CircuitTypeUndefined CircuitType = 0
	CircuitTypeHalo2     CircuitType = 1
	CircuitTypeOpenVM    CircuitType = 2
)

func (c CircuitType) String() string {
	switch c {
	case CircuitTypeHalo2:
		return "halo2"
	case CircuitTypeOpenVM:
		return "openvm"
	default:
		return "undefined"
	}
}

func CircuitTypeFromU8(v uint8) CircuitType {
	switch v {
	case 1:
		return CircuitTypeHalo2
	case 2:
		return CircuitTypeOpenVM
	default:
		return CircuitTypeUndefined
	}
}

func (c CircuitType) MarshalJSON() ([]byte, error) {
	return json.Marshal(uint8(c))
}

func (c *CircuitType) UnmarshalJSON(data []byte) error {
	var v uint8
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*c = CircuitTypeFromU8(v)
	return nil
}

// ProverProviderType distinguishes a locally-hosted backend from a cloud one.
// It is reported to the coordinator with every login.
type ProverProviderType uint8

const (
	ProverProviderUndefined ProverProviderType = 0
	ProverProviderInternal  ProverProviderType = 1
	ProverProviderExternal  ProverProviderType = 2
)

func ProverProviderTypeFromU8(v uint8) ProverProviderType {
	switch v {
	case 1:
		return ProverProviderInternal
	case 2:
		return ProverProviderExternal
	default:
		return ProverProviderUndefined
	}
}

func (p ProverProviderType) MarshalJSON() ([]byte, error) {
	return json.Marshal(uint8(p))
}

func (p *ProverProviderType) UnmarshalJSON(data []byte) error {
	var v uint8
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = ProverProviderTypeFromU8(v)
	return nil
}

// ProofStatus is the outcome reported in a SubmitProofRequest. Any nonzero
// wire value decodes to Error, matching the coordinator's own from_u8.
type ProofStatus uint8

const (
	ProofStatusOk    ProofStatus = 0
	ProofStatusError ProofStatus = 1
)

func (s ProofStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(uint8(s))
}

func (s *ProofStatus) UnmarshalJSON(data []byte) error {
	var v uint8
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v == 0 {
		*s = ProofStatusOk
	} else {
		*s = ProofStatusError
	}
	return nil
}

// ProofFailureType refines a ProofStatusError submission. The worker loop
// only ever produces Panic today; NoPanic is reserved for a richer backend
// failure kind that no proving service currently surfaces (see the open
// question in the submission design).
type ProofFailureType uint8

const (
	ProofFailureUndefined ProofFailureType = 0
	ProofFailurePanic     ProofFailureType = 1
	ProofFailureNoPanic   ProofFailureType = 2
)

func (f ProofFailureType) MarshalJSON() ([]byte, error) {
	return json.Marshal(uint8(f))
}

func (f *ProofFailureType) UnmarshalJSON(data []byte) error {
	var v uint8
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch v {
	case 1:
		*f = ProofFailurePanic
	case 2:
		*f = ProofFailureNoPanic
	default:
		*f = ProofFailureUndefined
	}
	return nil
}

// TaskStatus is the proving backend's view of a submitted job, as returned
// by ProvingService.QueryTask.
type TaskStatus string

const (
	TaskStatusQueued  TaskStatus = "queued"
	TaskStatusProving TaskStatus = "proving"
	TaskStatusSuccess TaskStatus = "success"
	TaskStatusFailed  TaskStatus = "failed"
)

// Terminal reports whether the status will not change with further polling.
func (s TaskStatus) Terminal() bool {
	return s == TaskStatusSuccess || s == TaskStatusFailed
}

// CoordinatorTask is the unit of work handed out by get_task. TaskData's
// shape depends on TaskType: chunk tasks carry a ChunkTaskDetail JSON
// document, batch/bundle tasks carry backend-opaque JSON.
type CoordinatorTask struct {
	UUID         string    `json:"uuid"`
	TaskID       string    `json:"task_id"`
	TaskType     ProofType `json:"task_type"`
	TaskData     string    `json:"task_data"`
	HardForkName string    `json:"hard_fork_name"`
}

// ChunkTaskDetail is the parsed form of a chunk task's TaskData.
// PrevMsgQueueHash is required for OpenVM circuits and parsed permissively
// (allowed to be empty) for Halo2, per the open question in the design notes.
type ChunkTaskDetail struct {
	BlockHashes      []string `json:"block_hashes"`
	PrevMsgQueueHash string   `json:"prev_msg_queue_hash,omitempty"`
}

// ActiveTaskRecord is the persisted (coordinator_task, backend_task_id) pair
// for a single worker public key. Either half may be absent: a record with
// an empty BackendTaskID means the worker crashed between Proving and
// Polling and must decide how to recover per the crash-recovery contract.
type ActiveTaskRecord struct {
	CoordinatorTask *CoordinatorTask
	BackendTaskID   string
}

// ErrUnsupportedProofType is returned when a coordinator task's type is not
// in the prover's configured supported set.
type ErrUnsupportedProofType struct {
	Got ProofType
}

func (e *ErrUnsupportedProofType) Error() string {
	return fmt.Sprintf("unsupported proof type: %s", e.Got)
}
