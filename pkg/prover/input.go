package prover

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/scroll-tech/proving-sdk/pkg/provingservice"
	"github.com/scroll-tech/proving-sdk/pkg/types"
)

// buildProvingInput assembles a ProveRequest from a coordinator task,
// branching on circuit family and proof type per the input-assembly rules.
// Chunk tasks for the Halo2 family string-concatenate already-JSON traces
// rather than re-serializing them, since re-encoding would escape JSON that
// is meant to be embedded verbatim.
func (p *Prover) buildProvingInput(ctx context.Context, task *types.CoordinatorTask) (provingservice.ProveRequest, error) {
	supported := false
	for _, pt := range p.supportedProofTypes {
		if pt == task.TaskType {
			supported = true
			break
		}
	}
	if !supported {
		return provingservice.ProveRequest{}, &types.ErrUnsupportedProofType{Got: task.TaskType}
	}

	var input string
	var err error

	switch p.circuitType {
	case types.CircuitTypeOpenVM:
		input, err = p.buildOpenVMInput(ctx, task)
	default:
		input, err = p.buildHalo2Input(ctx, task)
	}
	if err != nil {
		return provingservice.ProveRequest{}, err
	}

	return provingservice.ProveRequest{
		ProofType:      task.TaskType,
		CircuitVersion: p.circuitVersion,
		HardForkName:   task.HardForkName,
		Input:          input,
	}, nil
}

func (p *Prover) buildHalo2Input(ctx context.Context, task *types.CoordinatorTask) (string, error) {
	if task.TaskType != types.ProofTypeChunk {
		return task.TaskData, nil
	}

	var detail types.ChunkTaskDetail
	if err := json.Unmarshal([]byte(task.TaskData), &detail); err != nil {
		return "", fmt.Errorf("parsing chunk task data: %w", err)
	}

	traces, err := p.l2.GetTracesByHashes(ctx, detail.BlockHashes)
	if err != nil {
		return "", fmt.Errorf("fetching block traces: %w", err)
	}

	// Traces arrive as JSON already; concatenating them directly avoids
	// double-encoding them as an escaped JSON string.
	return "[" + strings.Join(traces, ",") + "]", nil
}

func (p *Prover) buildOpenVMInput(ctx context.Context, task *types.CoordinatorTask) (string, error) {
	if task.TaskType != types.ProofTypeChunk {
		return task.TaskData, nil
	}

	var detail types.ChunkTaskDetail
	if err := json.Unmarshal([]byte(task.TaskData), &detail); err != nil {
		return "", fmt.Errorf("parsing chunk task data: %w", err)
	}
	if detail.PrevMsgQueueHash == "" {
		return "", fmt.Errorf("openvm chunk task data is missing prev_msg_queue_hash")
	}

	witnesses, err := p.l2.GetWitnessesByHashes(ctx, detail.BlockHashes)
	if err != nil {
		return "", fmt.Errorf("fetching block witnesses: %w", err)
	}

	raw := make([]json.RawMessage, len(witnesses))
	for i, w := range witnesses {
		raw[i] = json.RawMessage(w.Raw)
	}

	payload := struct {
		Witnesses        []json.RawMessage `json:"witnesses"`
		PrevMsgQueueHash string            `json:"prev_msg_queue_hash"`
	}{
		Witnesses:        raw,
		PrevMsgQueueHash: detail.PrevMsgQueueHash,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encoding openvm chunk input: %w", err)
	}
	return string(data), nil
}
