package l2client

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetTracesByHashesEmptyIsError(t *testing.T) {
	c := &Client{}
	_, err := c.GetTracesByHashes(context.Background(), nil)
	require.ErrorIs(t, err, ErrEmptyTraceHashes)
}

func TestGetWitnessesByHashesEmptyIsError(t *testing.T) {
	c := &Client{}
	_, err := c.GetWitnessesByHashes(context.Background(), nil)
	require.ErrorIs(t, err, ErrEmptyTraceHashes)
}

func TestExtractBlockNumber(t *testing.T) {
	require.Equal(t, uint64(42), extractBlockNumber(`{"number":42,"data":"x"}`))
	require.Equal(t, uint64(0), extractBlockNumber(`not json`))
	require.Equal(t, uint64(0), extractBlockNumber(`{}`))
}
