package prover

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/scroll-tech/proving-sdk/pkg/coordinator"
	"github.com/scroll-tech/proving-sdk/pkg/log"
	"github.com/scroll-tech/proving-sdk/pkg/metrics"
	"github.com/scroll-tech/proving-sdk/pkg/provingservice"
	"github.com/scroll-tech/proving-sdk/pkg/types"
)

// state is the worker's position in the per-task lifecycle. It exists only
// to label the worker-state metric; it is never persisted directly,
// since the store's (task, backend_task_id) pair is reconstructed into a
// state on every boot.
type state int

const (
	stateIdle state = iota
	stateAcquiring
	stateProving
	statePolling
	stateSubmitting
)

func (s state) String() string {
	switch s {
	case stateAcquiring:
		return "acquiring"
	case stateProving:
		return "proving"
	case statePolling:
		return "polling"
	case stateSubmitting:
		return "submitting"
	default:
		return "idle"
	}
}

// workingLoop runs w's state machine until ctx is canceled. Every outer
// iteration, regardless of which path it took, sleeps WorkerSleep before
// looping: this is the sole pacing mechanism against the coordinator and the
// proving backend alike.
func (p *Prover) workingLoop(ctx context.Context, w *workerDeps) {
	worker := w.signer.PublicKey()
	logger := log.WithWorker(worker)

	for {
		if ctx.Err() != nil {
			return
		}
		p.runOneCycle(ctx, w, worker, logger)

		select {
		case <-ctx.Done():
			return
		case <-time.After(WorkerSleep):
		}
	}
}

// runOneCycle runs the recovery probe once and then whichever of
// Acquiring/Proving/Polling/Submitting the probe lands on, all the way
// through to either a terminal submission or an early return on error. Any
// error at any step ends the cycle; the next cycle's recovery probe decides
// how to pick back up.
func (p *Prover) runOneCycle(ctx context.Context, w *workerDeps, worker string, logger zerolog.Logger) {
	metrics.SetWorkerState(worker, stateIdle.String())

	task, backendTaskID, err := p.store.GetTask(worker)
	if err != nil {
		logger.Error().Err(err).Msg("reading persisted task")
		return
	}

	switch {
	case task == nil:
		task = p.acquire(ctx, w, worker, logger)
		if task == nil {
			return
		}
		backendTaskID = p.prove(ctx, w, worker, logger, task)
		if backendTaskID == "" {
			return
		}
	case backendTaskID != "" || p.service.IsLocal():
		// Either we already handed the job to the backend and crashed before
		// it reached a terminal state (both halves persisted), or this is a
		// local backend, which re-proves in-process rather than polling a
		// remote job (a local Prove call blocks until done, so there is
		// nothing to poll for after a crash: re-submit it).
		if p.service.IsLocal() {
			backendTaskID = p.prove(ctx, w, worker, logger, task)
			if backendTaskID == "" {
				return
			}
		}
	default:
		// A coordinator task was persisted but no backend task id, and the
		// backend is not local: there is no backend job to poll. The stale
		// record is left in place and a fresh task is acquired; a successful
		// prove overwrites the record.
		task = p.acquire(ctx, w, worker, logger)
		if task == nil {
			return
		}
		backendTaskID = p.prove(ctx, w, worker, logger, task)
		if backendTaskID == "" {
			return
		}
	}

	status, proof, backendErr := p.poll(ctx, w, worker, logger, task, backendTaskID)
	if status == "" {
		return
	}

	p.submit(ctx, w, worker, logger, task, status, proof, backendErr)
}

// acquire fetches one task among the configured supported proof types.
func (p *Prover) acquire(ctx context.Context, w *workerDeps, worker string, logger zerolog.Logger) *types.CoordinatorTask {
	metrics.SetWorkerState(worker, stateAcquiring.String())

	env, err := w.coordinator.GetTask(ctx, coordinator.GetTaskRequest{
		TaskTypes: p.supportedProofTypes,
	})
	if err != nil {
		logger.Error().Err(err).Msg("get_task failed")
		return nil
	}
	if env.ErrCode != coordinator.ErrCodeSuccess || env.Data == nil {
		logger.Error().Int("errcode", int(env.ErrCode)).Str("errmsg", env.ErrMsg).Msg("get_task returned an error")
		return nil
	}

	metrics.TasksAcquiredTotal.WithLabelValues(worker).Inc()
	return env.Data
}

// prove builds the proving input and submits it to the backend, persisting
// the (task, backend_task_id) pair before returning so a crash afterward is
// recoverable. Returns "" on any failure, including build failures that
// never reach the backend at all — those are not persisted, since the task
// was never handed to anyone.
func (p *Prover) prove(ctx context.Context, w *workerDeps, worker string, logger zerolog.Logger, task *types.CoordinatorTask) string {
	logger = log.WithTaskUUID(logger, task.UUID)
	logger = log.WithTaskID(logger, task.TaskID)
	metrics.SetWorkerState(worker, stateProving.String())

	req, err := p.buildProvingInput(ctx, task)
	if err != nil {
		logger.Error().Err(err).Msg("building proving input")
		return ""
	}

	var resp provingservice.ProveResponse
	err = p.withProvingServiceWrite(func(svc provingservice.ProvingService) error {
		var proveErr error
		resp, proveErr = svc.Prove(ctx, req)
		return proveErr
	})
	if err != nil {
		logger.Error().Err(err).Msg("prove call failed")
		return ""
	}
	if resp.Error != "" {
		logger.Error().Str("error", resp.Error).Msg("backend rejected proving job")
		return ""
	}

	if err := p.store.SetTask(worker, task, resp.TaskID); err != nil {
		logger.Error().Err(err).Msg("persisting active task")
		return ""
	}

	return resp.TaskID
}

// poll repeatedly queries the backend until the job reaches a terminal
// status, sleeping WorkerSleep between attempts. A transient query error
// ends the cycle without losing the persisted task: the next cycle's
// recovery probe resumes polling the same backend task id.
func (p *Prover) poll(ctx context.Context, w *workerDeps, worker string, logger zerolog.Logger, task *types.CoordinatorTask, backendTaskID string) (types.TaskStatus, string, string) {
	logger = log.WithTaskUUID(logger, task.UUID)
	logger = log.WithTaskID(logger, task.TaskID)
	logger = log.WithBackendTaskID(logger, backendTaskID)
	metrics.SetWorkerState(worker, statePolling.String())

	timer := metrics.NewTimer()

	for {
		var resp provingservice.QueryTaskResponse
		err := p.withProvingServiceRead(func(svc provingservice.ProvingService) error {
			var queryErr error
			resp, queryErr = svc.QueryTask(ctx, provingservice.QueryTaskRequest{TaskID: backendTaskID})
			return queryErr
		})
		if err != nil {
			logger.Error().Err(err).Msg("query_task failed")
			return "", "", ""
		}

		if resp.Status.Terminal() {
			timer.ObserveDuration(metrics.PollDuration)
			return resp.Status, resp.Proof, resp.Error
		}

		select {
		case <-ctx.Done():
			return "", "", ""
		case <-time.After(WorkerSleep):
		}
	}
}

// submit reports the task's outcome to the coordinator and clears the
// persisted record only once the coordinator has accepted it: a submit
// failure leaves the task persisted so the next cycle retries submission
// against the same already-completed backend job, rather than re-proving it
// (for a non-local backend; a local backend re-proves the persisted task).
func (p *Prover) submit(ctx context.Context, w *workerDeps, worker string, logger zerolog.Logger, task *types.CoordinatorTask, status types.TaskStatus, proof, backendErr string) {
	logger = log.WithTaskUUID(logger, task.UUID)
	logger = log.WithTaskID(logger, task.TaskID)
	metrics.SetWorkerState(worker, stateSubmitting.String())

	req := coordinator.SubmitProofRequest{
		UUID:     task.UUID,
		TaskID:   task.TaskID,
		TaskType: task.TaskType,
		Proof:    proof,
	}
	if status == types.TaskStatusSuccess {
		req.Status = types.ProofStatusOk
	} else {
		req.Status = types.ProofStatusError
		failureType := types.ProofFailurePanic
		failureMsg := backendErr
		req.FailureType = &failureType
		req.FailureMsg = &failureMsg
	}

	env, err := w.coordinator.SubmitProof(ctx, req)
	if err != nil {
		logger.Error().Err(err).Msg("submit_proof failed")
		return
	}
	if env.ErrCode != coordinator.ErrCodeSuccess {
		logger.Error().Int("errcode", int(env.ErrCode)).Str("errmsg", env.ErrMsg).Msg("submit_proof returned an error")
		return
	}

	resultLabel := "success"
	if status != types.TaskStatusSuccess {
		resultLabel = "failed"
	}
	metrics.TasksSubmittedTotal.WithLabelValues(worker, resultLabel).Inc()

	if err := p.store.DeleteTask(worker); err != nil {
		logger.Error().Err(err).Msg("clearing persisted task after submission")
	}
}
