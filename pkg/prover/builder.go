package prover

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/scroll-tech/proving-sdk/pkg/config"
	"github.com/scroll-tech/proving-sdk/pkg/coordinator"
	"github.com/scroll-tech/proving-sdk/pkg/keysigner"
	"github.com/scroll-tech/proving-sdk/pkg/l2client"
	"github.com/scroll-tech/proving-sdk/pkg/provingservice"
	"github.com/scroll-tech/proving-sdk/pkg/store"
	"github.com/scroll-tech/proving-sdk/pkg/types"
)

// ErrLocalMultiWorker is the fatal configuration error raised when a local
// proving service is paired with more than one worker.
var ErrLocalMultiWorker = fmt.Errorf("cannot use multiple workers with local proving service")

// ErrNoSupportedProofTypes is raised when the prover is configured to
// serve no proof types at all.
var ErrNoSupportedProofTypes = fmt.Errorf("supported_proof_types must be non-empty")

// ErrChunkRequiresL2Geth is raised when Chunk is among the supported proof
// types but no L2 trace endpoint is configured.
var ErrChunkRequiresL2Geth = fmt.Errorf("circuit_type supports chunk but l2geth config is not provided")

// Builder validates configuration, fetches verification keys from the
// backend, constructs one KeySigner and one CoordinatorClient per worker,
// opens the task store, and assembles a runnable Prover (C6).
type Builder struct {
	cfg     *config.Config
	service provingservice.ProvingService
}

// NewBuilder pairs a loaded configuration with one concrete proving
// backend.
func NewBuilder(cfg *config.Config, service provingservice.ProvingService) *Builder {
	return &Builder{cfg: cfg, service: service}
}

// formatCloudProverName derives a per-worker prover name for a cloud
// backend: "cloud_prover_<prefix>_<i>". Local backends use the prefix
// verbatim since they never run more than one worker.
func formatCloudProverName(prefix string, i int) string {
	return fmt.Sprintf("cloud_prover_%s_%d", prefix, i)
}

// Build runs the C6 assertions, wires every component, and returns a
// Prover ready for Run.
func (b *Builder) Build(ctx context.Context) (*Prover, error) {
	cfg := b.cfg

	if len(cfg.Prover.SupportedProofTypes) == 0 {
		return nil, ErrNoSupportedProofTypes
	}

	supportsChunk := false
	for _, pt := range cfg.Prover.SupportedProofTypes {
		if pt == types.ProofTypeChunk {
			supportsChunk = true
			break
		}
	}
	if supportsChunk && cfg.L2Geth == nil {
		return nil, ErrChunkRequiresL2Geth
	}

	if b.service.IsLocal() && cfg.Prover.NWorkers > 1 {
		return nil, ErrLocalMultiWorker
	}

	vkResp, err := b.service.GetVks(ctx, provingservice.GetVksRequest{
		ProofTypes:     cfg.Prover.SupportedProofTypes,
		CircuitVersion: cfg.Prover.CircuitVersion,
	})
	if err != nil {
		return nil, fmt.Errorf("fetching verification keys: %w", err)
	}
	if vkResp.Error != "" {
		return nil, fmt.Errorf("fetching verification keys: %s", vkResp.Error)
	}

	providerType := types.ProverProviderExternal
	if b.service.IsLocal() {
		providerType = types.ProverProviderInternal
	}

	taskStore, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening task store: %w", err)
	}

	var l2 *l2client.Client
	if cfg.L2Geth != nil {
		l2, err = l2client.Dial(cfg.L2Geth.Endpoint)
		if err != nil {
			taskStore.Close()
			return nil, fmt.Errorf("dialing l2geth: %w", err)
		}
	}

	workers := make([]*workerDeps, cfg.Prover.NWorkers)
	for i := 0; i < cfg.Prover.NWorkers; i++ {
		keyPath := filepath.Join(cfg.KeysDir, fmt.Sprintf("%d", i))
		signer, err := keysigner.New(keyPath)
		if err != nil {
			taskStore.Close()
			return nil, fmt.Errorf("building key signer for worker %d: %w", i, err)
		}

		proverName := cfg.ProverNamePrefix
		if !b.service.IsLocal() {
			proverName = formatCloudProverName(cfg.ProverNamePrefix, i)
		}

		client := coordinator.New(
			coordinator.Config{
				BaseURL:              cfg.Coordinator.BaseURL,
				ConnectionTimeoutSec: cfg.Coordinator.ConnectionTimeoutSec,
				RetryWaitTimeSec:     cfg.Coordinator.RetryWaitTimeSec,
				RetryCount:           cfg.Coordinator.RetryCount,
			},
			cfg.Prover.CircuitType,
			cfg.Prover.SupportedProofTypes,
			proverName,
			providerType,
			Version(),
			vkResp.Vks,
			signer,
		)

		workers[i] = &workerDeps{
			index:      i,
			signer:     signer,
			coordinator: client,
		}
	}

	return &Prover{
		circuitType:         cfg.Prover.CircuitType,
		circuitVersion:      cfg.Prover.CircuitVersion,
		supportedProofTypes: cfg.Prover.SupportedProofTypes,
		healthListenerAddr:  cfg.HealthListenerAddr,
		store:               taskStore,
		l2:                  l2,
		service:             b.service,
		workers:             workers,
	}, nil
}
