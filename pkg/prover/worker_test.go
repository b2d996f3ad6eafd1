package prover

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scroll-tech/proving-sdk/pkg/coordinator"
	"github.com/scroll-tech/proving-sdk/pkg/keysigner"
	"github.com/scroll-tech/proving-sdk/pkg/log"
	"github.com/scroll-tech/proving-sdk/pkg/provingservice"
	"github.com/scroll-tech/proving-sdk/pkg/types"
)

type fakeCoordinator struct {
	getTaskEnv    coordinator.Envelope[coordinator.GetTaskResponseData]
	getTaskErr    error
	submitEnv     coordinator.Envelope[coordinator.SubmitProofResponseData]
	submitErr     error
	submitted     []coordinator.SubmitProofRequest
}

func (f *fakeCoordinator) GetTask(ctx context.Context, req coordinator.GetTaskRequest) (coordinator.Envelope[coordinator.GetTaskResponseData], error) {
	return f.getTaskEnv, f.getTaskErr
}

func (f *fakeCoordinator) SubmitProof(ctx context.Context, req coordinator.SubmitProofRequest) (coordinator.Envelope[coordinator.SubmitProofResponseData], error) {
	f.submitted = append(f.submitted, req)
	return f.submitEnv, f.submitErr
}

type fakeStore struct {
	task      *types.CoordinatorTask
	backendID string
	deleted   bool
}

func (s *fakeStore) GetTask(pubkey string) (*types.CoordinatorTask, string, error) {
	return s.task, s.backendID, nil
}

func (s *fakeStore) SetTask(pubkey string, task *types.CoordinatorTask, backendTaskID string) error {
	s.task = task
	s.backendID = backendTaskID
	return nil
}

func (s *fakeStore) DeleteTask(pubkey string) error {
	s.deleted = true
	s.task = nil
	s.backendID = ""
	return nil
}

func (s *fakeStore) Close() error { return nil }

func newTestSigner(t *testing.T) *keysigner.KeySigner {
	t.Helper()
	secret := make([]byte, 32)
	secret[31] = 1
	signer, err := keysigner.NewFromSecret(secret)
	require.NoError(t, err)
	return signer
}

func newTestProver(t *testing.T, store *fakeStore, svc provingservice.ProvingService, coord *fakeCoordinator) (*Prover, *workerDeps) {
	t.Helper()
	w := &workerDeps{index: 0, signer: newTestSigner(t), coordinator: coord}
	p := &Prover{
		circuitType:         types.CircuitTypeHalo2,
		circuitVersion:      "v1",
		supportedProofTypes: []types.ProofType{types.ProofTypeBatch},
		store:               store,
		service:             svc,
		workers:             []*workerDeps{w},
	}
	return p, w
}

func TestRunOneCycleHappyPathAcquireProvePollSubmit(t *testing.T) {
	task := &types.CoordinatorTask{UUID: "u1", TaskID: "t1", TaskType: types.ProofTypeBatch, TaskData: `{"foo":"bar"}`}
	coord := &fakeCoordinator{
		getTaskEnv: coordinator.Envelope[coordinator.GetTaskResponseData]{ErrCode: coordinator.ErrCodeSuccess, Data: task},
		submitEnv:  coordinator.Envelope[coordinator.SubmitProofResponseData]{ErrCode: coordinator.ErrCodeSuccess},
	}
	store := &fakeStore{}
	svc := &fakeService{
		prove: provingservice.ProveResponse{TaskID: "backend-1", Status: types.TaskStatusProving},
		query: provingservice.QueryTaskResponse{TaskID: "backend-1", Status: types.TaskStatusSuccess, Proof: "proof-bytes"},
	}
	p, w := newTestProver(t, store, svc, coord)

	p.runOneCycle(context.Background(), w, w.signer.PublicKey(), log.Logger)

	require.Len(t, coord.submitted, 1)
	require.Equal(t, types.ProofStatusOk, coord.submitted[0].Status)
	require.Equal(t, "proof-bytes", coord.submitted[0].Proof)
	require.True(t, store.deleted)
}

func TestRunOneCycleBackendFailureReportsErrorAndClearsStore(t *testing.T) {
	task := &types.CoordinatorTask{UUID: "u1", TaskID: "t1", TaskType: types.ProofTypeBatch, TaskData: `{}`}
	coord := &fakeCoordinator{
		getTaskEnv: coordinator.Envelope[coordinator.GetTaskResponseData]{ErrCode: coordinator.ErrCodeSuccess, Data: task},
		submitEnv:  coordinator.Envelope[coordinator.SubmitProofResponseData]{ErrCode: coordinator.ErrCodeSuccess},
	}
	store := &fakeStore{}
	svc := &fakeService{
		prove: provingservice.ProveResponse{TaskID: "backend-1", Status: types.TaskStatusProving},
		query: provingservice.QueryTaskResponse{TaskID: "backend-1", Status: types.TaskStatusFailed, Error: "oom"},
	}
	p, w := newTestProver(t, store, svc, coord)

	p.runOneCycle(context.Background(), w, w.signer.PublicKey(), log.Logger)

	require.Len(t, coord.submitted, 1)
	require.Equal(t, types.ProofStatusError, coord.submitted[0].Status)
	require.NotNil(t, coord.submitted[0].FailureType)
	require.Equal(t, types.ProofFailurePanic, *coord.submitted[0].FailureType)
	require.NotNil(t, coord.submitted[0].FailureMsg)
	require.Equal(t, "oom", *coord.submitted[0].FailureMsg)
	require.True(t, store.deleted)
}

func TestRunOneCycleAcquireErrorStopsBeforeProve(t *testing.T) {
	coord := &fakeCoordinator{getTaskErr: context.DeadlineExceeded}
	store := &fakeStore{}
	svc := &fakeService{}
	p, w := newTestProver(t, store, svc, coord)

	p.runOneCycle(context.Background(), w, w.signer.PublicKey(), log.Logger)

	require.Nil(t, store.task)
	require.Empty(t, coord.submitted)
}

// TestRunOneCycleCrashRecoveryResumesPolling reproduces a worker that
// crashed after persisting both the coordinator task and the backend task
// id: the next cycle must go straight to polling, never re-acquiring or
// re-proving.
func TestRunOneCycleCrashRecoveryResumesPolling(t *testing.T) {
	task := &types.CoordinatorTask{UUID: "u1", TaskID: "t1", TaskType: types.ProofTypeBatch, TaskData: `{}`}
	coord := &fakeCoordinator{
		submitEnv: coordinator.Envelope[coordinator.SubmitProofResponseData]{ErrCode: coordinator.ErrCodeSuccess},
	}
	store := &fakeStore{task: task, backendID: "backend-1"}
	svc := &fakeService{
		query: provingservice.QueryTaskResponse{TaskID: "backend-1", Status: types.TaskStatusSuccess, Proof: "p"},
	}
	p, w := newTestProver(t, store, svc, coord)

	p.runOneCycle(context.Background(), w, w.signer.PublicKey(), log.Logger)

	require.Empty(t, coord.getTaskEnv.ErrMsg)
	require.Len(t, coord.submitted, 1)
	require.True(t, store.deleted)
}

// TestRunOneCycleCrashRecoveryLocalAlwaysReproves mirrors a local backend,
// which always re-submits on recovery rather than polling a job that never
// outlives the in-process call that produced it.
func TestRunOneCycleCrashRecoveryLocalAlwaysReproves(t *testing.T) {
	task := &types.CoordinatorTask{UUID: "u1", TaskID: "t1", TaskType: types.ProofTypeBatch, TaskData: `{}`}
	coord := &fakeCoordinator{
		submitEnv: coordinator.Envelope[coordinator.SubmitProofResponseData]{ErrCode: coordinator.ErrCodeSuccess},
	}
	store := &fakeStore{task: task}
	svc := &fakeService{
		local: true,
		prove: provingservice.ProveResponse{TaskID: "backend-2", Status: types.TaskStatusProving},
		query: provingservice.QueryTaskResponse{TaskID: "backend-2", Status: types.TaskStatusSuccess, Proof: "p2"},
	}
	p, w := newTestProver(t, store, svc, coord)

	p.runOneCycle(context.Background(), w, w.signer.PublicKey(), log.Logger)

	require.Len(t, coord.submitted, 1)
	require.Equal(t, "p2", coord.submitted[0].Proof)
}
