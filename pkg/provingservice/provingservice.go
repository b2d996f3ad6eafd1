// Package provingservice defines the capability a proving backend must
// implement to be driven by the worker loop: fetching verification keys,
// submitting a proving job, and polling its status. Concrete backends
// (local in-process proving, or a cloud HTTP API) live outside this SDK;
// cmd/local and cmd/cloud are example wirings of the interface.
package provingservice

import (
	"context"

	"github.com/scroll-tech/proving-sdk/pkg/types"
)

// ProvingService is the pluggable backend capability (C5). IsLocal is
// static for the lifetime of an instance: the builder rejects configuring
// more than one worker against a local backend, since a local backend's
// Prove is expected to serialize on shared compute.
type ProvingService interface {
	// IsLocal reports whether this backend runs in-process. true forbids
	// n_workers > 1 at build time.
	IsLocal() bool

	// GetVks returns one verification key per requested proof type, in the
	// same order as req.ProofTypes. Called once at startup.
	GetVks(ctx context.Context, req GetVksRequest) (GetVksResponse, error)

	// Prove submits a proving job and returns a backend-assigned task id.
	// May fail synchronously (e.g. malformed input); a synchronous failure
	// leaves the task unowned, so the worker loop does not persist or
	// submit for it.
	Prove(ctx context.Context, req ProveRequest) (ProveResponse, error)

	// QueryTask returns the current state of a previously submitted job.
	// Must tolerate being polled repeatedly (roughly every 20s) against the
	// same task id with no side effects beyond the network call itself.
	QueryTask(ctx context.Context, req QueryTaskRequest) (QueryTaskResponse, error)
}

// GetVksRequest asks the backend for verification keys covering every
// proof type the prover is configured to serve.
type GetVksRequest struct {
	ProofTypes     []types.ProofType
	CircuitVersion string
}

// GetVksResponse carries one VK per requested proof type, order-matched to
// the request, or a fatal Error aborting the builder.
type GetVksResponse struct {
	Vks   []string
	Error string
}

// ProveRequest is the fully-assembled input to a single proving job, built
// by the worker loop's build_proving_input step.
type ProveRequest struct {
	ProofType      types.ProofType
	CircuitVersion string
	HardForkName   string
	Input          string
}

// ProveResponse is the backend's synchronous reply to Prove.
type ProveResponse struct {
	TaskID string
	Status types.TaskStatus
	Error  string
}

// QueryTaskRequest identifies a previously submitted job by its
// backend-assigned id.
type QueryTaskRequest struct {
	TaskID string
}

// QueryTaskResponse is the backend's current view of a submitted job.
type QueryTaskResponse struct {
	TaskID string
	Status types.TaskStatus
	Proof  string
	Vk     string
	Error  string
}
