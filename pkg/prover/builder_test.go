package prover

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scroll-tech/proving-sdk/pkg/config"
	"github.com/scroll-tech/proving-sdk/pkg/provingservice"
	"github.com/scroll-tech/proving-sdk/pkg/types"
)

type fakeService struct {
	local   bool
	vks     provingservice.GetVksResponse
	vksErr  error
	prove   provingservice.ProveResponse
	proveErr error
	query   provingservice.QueryTaskResponse
	queryErr error
}

func (f *fakeService) IsLocal() bool { return f.local }

func (f *fakeService) GetVks(ctx context.Context, req provingservice.GetVksRequest) (provingservice.GetVksResponse, error) {
	return f.vks, f.vksErr
}

func (f *fakeService) Prove(ctx context.Context, req provingservice.ProveRequest) (provingservice.ProveResponse, error) {
	return f.prove, f.proveErr
}

func (f *fakeService) QueryTask(ctx context.Context, req provingservice.QueryTaskRequest) (provingservice.QueryTaskResponse, error) {
	return f.query, f.queryErr
}

func baseConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		DBPath:           t.TempDir(),
		KeysDir:          t.TempDir(),
		ProverNamePrefix: "test",
		Coordinator: config.CoordinatorConfig{
			BaseURL:              "http://coordinator.invalid",
			ConnectionTimeoutSec: 5,
			RetryWaitTimeSec:     2,
			RetryCount:           1,
		},
		Prover: config.ProverConfig{
			CircuitType:         types.CircuitTypeHalo2,
			CircuitVersion:      "v1",
			NWorkers:            1,
			SupportedProofTypes: []types.ProofType{types.ProofTypeBatch},
		},
		HealthListenerAddr: "127.0.0.1:0",
	}
}

func TestBuildRejectsLocalWithMultipleWorkers(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Prover.NWorkers = 2

	_, err := NewBuilder(cfg, &fakeService{local: true}).Build(context.Background())
	require.ErrorIs(t, err, ErrLocalMultiWorker)
}

func TestBuildRejectsEmptySupportedProofTypes(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Prover.SupportedProofTypes = nil

	_, err := NewBuilder(cfg, &fakeService{}).Build(context.Background())
	require.ErrorIs(t, err, ErrNoSupportedProofTypes)
}

func TestBuildRejectsChunkWithoutL2Geth(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Prover.SupportedProofTypes = []types.ProofType{types.ProofTypeChunk}
	cfg.L2Geth = nil

	_, err := NewBuilder(cfg, &fakeService{}).Build(context.Background())
	require.ErrorIs(t, err, ErrChunkRequiresL2Geth)
}

func TestBuildSucceedsAndWiresOneWorkerPerConfiguredCount(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Prover.NWorkers = 3
	svc := &fakeService{vks: provingservice.GetVksResponse{Vks: []string{"vk1"}}}

	p, err := NewBuilder(cfg, svc).Build(context.Background())
	require.NoError(t, err)
	defer p.Close()

	require.Len(t, p.workers, 3)
}

func TestFormatCloudProverName(t *testing.T) {
	require.Equal(t, "cloud_prover_myprefix_2", formatCloudProverName("myprefix", 2))
}
