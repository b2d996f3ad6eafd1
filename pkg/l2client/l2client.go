// Package l2client is a thin JSON-RPC client over the L2 execution node,
// used by chunk tasks to fetch the latest block height and per-block trace
// or witness data that the proving backend needs as input.
package l2client

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/rpc"
)

// Client wraps a JSON-RPC 2.0 connection to the L2 execution node.
type Client struct {
	rpc *rpc.Client
}

// Dial connects to endpoint (http(s):// or ws(s):// per go-ethereum's rpc
// package dialer).
func Dial(endpoint string) (*Client, error) {
	c, err := rpc.Dial(endpoint)
	if err != nil {
		return nil, fmt.Errorf("dialing l2geth endpoint %s: %w", endpoint, err)
	}
	return &Client{rpc: c}, nil
}

func (c *Client) Close() {
	c.rpc.Close()
}

// BlockNumber issues eth_blockNumber and returns the current block height.
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	var result string
	if err := c.rpc.CallContext(ctx, &result, "eth_blockNumber"); err != nil {
		return 0, fmt.Errorf("eth_blockNumber: %w", err)
	}
	var height uint64
	if _, err := fmt.Sscanf(result, "0x%x", &height); err != nil {
		return 0, fmt.Errorf("parsing block number %q: %w", result, err)
	}
	return height, nil
}

// GetBlockTraceByHash returns the raw JSON trace document for hash, exactly
// as the node returned it: callers pass it through unparsed since the
// backend, not this SDK, interprets its shape.
func (c *Client) GetBlockTraceByHash(ctx context.Context, hash string) (string, error) {
	var raw json.RawMessage
	err := c.rpc.CallContext(ctx, &raw, "scroll_getBlockTraceByNumberOrHash", hash)
	if err != nil {
		return "", fmt.Errorf("scroll_getBlockTraceByNumberOrHash(%s): %w", hash, err)
	}
	return string(raw), nil
}

// ErrEmptyTraceHashes is returned by GetTracesByHashes when given no input:
// a chunk task with no blocks is invalid upstream and must not be silently
// accepted.
var ErrEmptyTraceHashes = fmt.Errorf("get_traces_by_hashes: empty hash list")

// GetTracesByHashes returns one raw trace JSON document per hash, in the
// same order as the input — chunk tasks rely on this ordering matching the
// order the proving backend expects.
func (c *Client) GetTracesByHashes(ctx context.Context, hashes []string) ([]string, error) {
	if len(hashes) == 0 {
		return nil, ErrEmptyTraceHashes
	}
	traces := make([]string, len(hashes))
	for i, hash := range hashes {
		trace, err := c.GetBlockTraceByHash(ctx, hash)
		if err != nil {
			return nil, err
		}
		traces[i] = trace
	}
	return traces, nil
}

// BlockWitness is a single block's OpenVM witness object. The schema beyond
// BlockNumber is backend-defined; Raw carries the full JSON document through
// unparsed.
type BlockWitness struct {
	BlockNumber uint64
	Raw         string
}

// GetWitnessesByHashes fetches one witness document per hash via
// scroll_getBlockWitnessByNumberOrHash, then returns them sorted ascending
// by block number, as required for OpenVM chunk input assembly.
func (c *Client) GetWitnessesByHashes(ctx context.Context, hashes []string) ([]BlockWitness, error) {
	if len(hashes) == 0 {
		return nil, ErrEmptyTraceHashes
	}

	witnesses := make([]BlockWitness, len(hashes))
	for i, hash := range hashes {
		var raw json.RawMessage
		if err := c.rpc.CallContext(ctx, &raw, "scroll_getBlockWitnessByNumberOrHash", hash); err != nil {
			return nil, fmt.Errorf("scroll_getBlockWitnessByNumberOrHash(%s): %w", hash, err)
		}
		witnesses[i] = BlockWitness{Raw: string(raw), BlockNumber: extractBlockNumber(string(raw))}
	}

	sort.Slice(witnesses, func(i, j int) bool {
		return witnesses[i].BlockNumber < witnesses[j].BlockNumber
	})

	return witnesses, nil
}

// extractBlockNumber pulls the "number" field out of a raw witness JSON
// document for sort ordering. An unparsable or missing field sorts the
// witness first rather than failing the whole batch.
func extractBlockNumber(raw string) uint64 {
	var payload struct {
		Number uint64 `json:"number"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return 0
	}
	return payload.Number
}
