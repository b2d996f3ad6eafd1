package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scroll-tech/proving-sdk/pkg/types"
)

func TestBoltStoreRoundTrip(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	defer s.Close()

	task, backendID, err := s.GetTask("pk1")
	require.NoError(t, err)
	require.Nil(t, task)
	require.Empty(t, backendID)

	want := &types.CoordinatorTask{UUID: "u", TaskID: "t", TaskType: types.ProofTypeChunk, TaskData: "{}", HardForkName: "hf"}
	require.NoError(t, s.SetTask("pk1", want, "bt"))

	got, gotBackendID, err := s.GetTask("pk1")
	require.NoError(t, err)
	require.Equal(t, want, got)
	require.Equal(t, "bt", gotBackendID)

	require.NoError(t, s.DeleteTask("pk1"))
	got, gotBackendID, err = s.GetTask("pk1")
	require.NoError(t, err)
	require.Nil(t, got)
	require.Empty(t, gotBackendID)
}

func TestBoltStoreKeysPartitionedByPubkey(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.SetTask("pk1", &types.CoordinatorTask{UUID: "a"}, "b1"))
	require.NoError(t, s.SetTask("pk2", &types.CoordinatorTask{UUID: "b"}, "b2"))

	t1, id1, err := s.GetTask("pk1")
	require.NoError(t, err)
	t2, id2, err := s.GetTask("pk2")
	require.NoError(t, err)

	require.Equal(t, "a", t1.UUID)
	require.Equal(t, "b1", id1)
	require.Equal(t, "b", t2.UUID)
	require.Equal(t, "b2", id2)
}

func TestBoltStoreMissingBackendIDIsAbsent(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.SetTask("pk1", &types.CoordinatorTask{UUID: "a"}, ""))
	task, backendID, err := s.GetTask("pk1")
	require.NoError(t, err)
	require.NotNil(t, task)
	require.Empty(t, backendID)
}
