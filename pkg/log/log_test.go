package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitJSONOutputIncludesTaggedFields(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: InfoLevel, JSONOutput: true, Output: &buf})

	worker := WithWorker("abc123")
	tagged := WithBackendTaskID(WithTaskID(WithTaskUUID(worker, "u1"), "t1"), "bt1")
	tagged.Info().Msg("submitting proof")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	require.Equal(t, "abc123", record["worker"])
	require.Equal(t, "u1", record["task_uuid"])
	require.Equal(t, "t1", record["task_id"])
	require.Equal(t, "bt1", record["backend_task_id"])
	require.Equal(t, "submitting proof", record["message"])
}

func TestWithBackendTaskIDOmittedWhenEmpty(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: InfoLevel, JSONOutput: true, Output: &buf})

	tagged := WithBackendTaskID(WithWorker("abc123"), "")
	tagged.Info().Msg("acquiring")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	_, present := record["backend_task_id"]
	require.False(t, present)
}
