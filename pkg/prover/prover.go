// Package prover implements the worker lifecycle: the per-worker state
// machine (C7) that authenticates with the coordinator, dispatches proving
// work to a pluggable backend, persists in-flight progress, and the builder
// (C6) that assembles a Prover from configuration.
package prover

import (
	"context"
	"sync"
	"time"

	"github.com/scroll-tech/proving-sdk/pkg/coordinator"
	"github.com/scroll-tech/proving-sdk/pkg/health"
	"github.com/scroll-tech/proving-sdk/pkg/keysigner"
	"github.com/scroll-tech/proving-sdk/pkg/l2client"
	"github.com/scroll-tech/proving-sdk/pkg/provingservice"
	"github.com/scroll-tech/proving-sdk/pkg/store"
	"github.com/scroll-tech/proving-sdk/pkg/types"
)

// WorkerSleep is the fixed pause between outer iterations of the worker
// loop, and the polling cadence while waiting for a backend task to reach a
// terminal state.
const WorkerSleep = 20 * time.Second

// coordinatorClient is the subset of *coordinator.Client the worker loop
// drives. It exists so tests can substitute a fake rather than needing a
// live coordinator to exercise the state machine.
type coordinatorClient interface {
	GetTask(ctx context.Context, req coordinator.GetTaskRequest) (coordinator.Envelope[coordinator.GetTaskResponseData], error)
	SubmitProof(ctx context.Context, req coordinator.SubmitProofRequest) (coordinator.Envelope[coordinator.SubmitProofResponseData], error)
}

// workerDeps is the per-worker identity and authenticated client pair the
// builder constructs: every worker owns its own signer and coordinator
// client, never a shared one.
type workerDeps struct {
	index       int
	signer      *keysigner.KeySigner
	coordinator coordinatorClient
}

// Prover is the fully-wired, runnable agent (the output of Builder.Build).
// The proving backend is shared across workers behind a read/write lock so
// cloud backends' read-mostly methods run in parallel, while the builder's
// ErrLocalMultiWorker check keeps a local backend's exclusive access
// uncontended.
type Prover struct {
	circuitType         types.CircuitType
	circuitVersion      string
	supportedProofTypes []types.ProofType
	healthListenerAddr  string

	store   store.Store
	l2      *l2client.Client
	service provingservice.ProvingService
	svcMu   sync.RWMutex

	workers []*workerDeps
}

// Run starts the health server and one goroutine per worker, then blocks
// until whichever finishes first. There is no graceful drain: a crash or
// SIGTERM at any point is recoverable through each worker's crash-recovery
// probe on the next boot.
func (p *Prover) Run(ctx context.Context) error {
	done := make(chan error, 1)
	var once sync.Once
	finish := func(err error) {
		once.Do(func() { done <- err })
	}

	go func() {
		finish(health.New(p.healthListenerAddr).ListenAndServe())
	}()

	for _, w := range p.workers {
		w := w
		go func() {
			p.workingLoop(ctx, w)
			finish(nil)
		}()
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// withProvingServiceRead and withProvingServiceWrite run fn while holding
// the shared backend lock. Reads (QueryTask) take the read lock and run in
// parallel across workers; writes (Prove) take the write lock.
func (p *Prover) withProvingServiceRead(fn func(provingservice.ProvingService) error) error {
	p.svcMu.RLock()
	defer p.svcMu.RUnlock()
	return fn(p.service)
}

func (p *Prover) withProvingServiceWrite(fn func(provingservice.ProvingService) error) error {
	p.svcMu.Lock()
	defer p.svcMu.Unlock()
	return fn(p.service)
}

var _ coordinatorClient = (*coordinator.Client)(nil)

// Close releases the store and L2 client. It does not stop running
// workers; callers should cancel the context passed to Run first.
func (p *Prover) Close() error {
	if p.l2 != nil {
		p.l2.Close()
	}
	return p.store.Close()
}
