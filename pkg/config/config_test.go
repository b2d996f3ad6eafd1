package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scroll-tech/proving-sdk/pkg/types"
)

const sampleConfig = `{
	"db_path": "/data/db",
	"keys_dir": "/data/keys",
	"prover_name_prefix": "prover",
	"coordinator": {"base_url": "http://coordinator", "connection_timeout_sec": 30, "retry_wait_time_sec": 10, "retry_count": 3},
	"l2geth": {"endpoint": "http://l2geth"},
	"prover": {"circuit_type": 1, "circuit_version": "v1", "n_workers": 2, "supported_proof_types": [1,2]},
	"proving_service": {"base_url": "http://backend", "api_key": "k"},
	"health_listener_addr": "0.0.0.0:80"
}`

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o600))
	return path
}

func TestLoadParsesFile(t *testing.T) {
	path := writeSample(t)
	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "/data/db", cfg.DBPath)
	require.Equal(t, types.CircuitTypeHalo2, cfg.Prover.CircuitType)
	require.Equal(t, 2, cfg.Prover.NWorkers)
	require.Equal(t, []types.ProofType{types.ProofTypeChunk, types.ProofTypeBatch}, cfg.Prover.SupportedProofTypes)
}

func TestLoadUnsetEnvKeepsFileValue(t *testing.T) {
	path := writeSample(t)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/data/db", cfg.DBPath)
}

func TestLoadEnvOverridesFileValue(t *testing.T) {
	path := writeSample(t)
	t.Setenv("DB_PATH", "/override/db")
	t.Setenv("N_WORKERS", "5")
	t.Setenv("PROOF_TYPES", "[3]")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/override/db", cfg.DBPath)
	require.Equal(t, 5, cfg.Prover.NWorkers)
	require.Equal(t, []types.ProofType{types.ProofTypeBundle}, cfg.Prover.SupportedProofTypes)
}

func TestParseProofTypesBracketedAndBare(t *testing.T) {
	got, err := parseProofTypes("[1,2]")
	require.NoError(t, err)
	require.Equal(t, []types.ProofType{types.ProofTypeChunk, types.ProofTypeBatch}, got)

	got, err = parseProofTypes("1,2")
	require.NoError(t, err)
	require.Equal(t, []types.ProofType{types.ProofTypeChunk, types.ProofTypeBatch}, got)
}
