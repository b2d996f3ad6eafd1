// Package config loads the agent's configuration from a JSON file and
// applies a fixed set of environment-variable overrides on top of it. It
// only parses and overlays: validation lives in the prover builder, which
// is the component that knows which combinations are actually fatal.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/kelseyhightower/envconfig"

	"github.com/scroll-tech/proving-sdk/pkg/types"
)

// CoordinatorConfig configures the authenticated RPC client to the
// coordinator.
type CoordinatorConfig struct {
	BaseURL              string `json:"base_url"`
	ConnectionTimeoutSec uint64 `json:"connection_timeout_sec"`
	RetryWaitTimeSec     uint64 `json:"retry_wait_time_sec"`
	RetryCount           int    `json:"retry_count"`
}

// L2GethConfig configures the L2 trace client. A nil *L2GethConfig means no
// L2 client is built; the builder rejects this when Chunk is supported.
type L2GethConfig struct {
	Endpoint string `json:"endpoint"`
}

// ProverConfig is the set of fields describing the worker pool itself.
type ProverConfig struct {
	CircuitType         types.CircuitType `json:"circuit_type"`
	CircuitVersion      string            `json:"circuit_version"`
	NWorkers            int               `json:"n_workers"`
	SupportedProofTypes []types.ProofType `json:"supported_proof_types"`
}

// ProvingServiceConfig configures the example cloud backend binary; local
// proving has no network configuration of its own.
type ProvingServiceConfig struct {
	BaseURL string `json:"base_url"`
	APIKey  string `json:"api_key"`
}

// Config is the top-level, file-plus-environment configuration for the
// agent.
type Config struct {
	DBPath             string               `json:"db_path"`
	KeysDir            string               `json:"keys_dir"`
	ProverNamePrefix   string               `json:"prover_name_prefix"`
	Coordinator        CoordinatorConfig    `json:"coordinator"`
	L2Geth             *L2GethConfig        `json:"l2geth"`
	Prover             ProverConfig         `json:"prover"`
	ProvingService     ProvingServiceConfig `json:"proving_service"`
	HealthListenerAddr string               `json:"health_listener_addr"`
}

// Load reads and JSON-unmarshals the config file at path, then applies the
// fixed environment-variable overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if err := ApplyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("applying environment overrides: %w", err)
	}

	return &cfg, nil
}

// envOverrides mirrors the subset of Config that environment variables can
// override, using exact variable names via envconfig tags rather than
// envconfig's default prefix-derived naming.
type envOverrides struct {
	ProverNamePrefix      string `envconfig:"PROVER_NAME_PREFIX"`
	KeysDir               string `envconfig:"KEYS_DIR"`
	DBPath                string `envconfig:"DB_PATH"`
	CoordinatorBaseURL    string `envconfig:"COORDINATOR_BASE_URL"`
	L2GethEndpoint        string `envconfig:"L2GETH_ENDPOINT"`
	NWorkers              int    `envconfig:"N_WORKERS"`
	ProvingServiceBaseURL string `envconfig:"PROVING_SERVICE_BASE_URL"`
	ProvingServiceAPIKey  string `envconfig:"PROVING_SERVICE_API_KEY"`
}

// ApplyEnvOverrides overlays the fixed set of environment variables onto
// cfg. An unset variable keeps the value already in cfg; envconfig only
// assigns a field when its variable is actually present in the
// environment, which is exactly the "unset = keep file value" contract.
func ApplyEnvOverrides(cfg *Config) error {
	var overrides envOverrides
	if err := envconfig.Process("", &overrides); err != nil {
		return err
	}

	if v, ok := os.LookupEnv("PROVER_NAME_PREFIX"); ok && v != "" {
		cfg.ProverNamePrefix = overrides.ProverNamePrefix
	}
	if v, ok := os.LookupEnv("KEYS_DIR"); ok && v != "" {
		cfg.KeysDir = overrides.KeysDir
	}
	if v, ok := os.LookupEnv("DB_PATH"); ok && v != "" {
		cfg.DBPath = overrides.DBPath
	}
	if v, ok := os.LookupEnv("COORDINATOR_BASE_URL"); ok && v != "" {
		cfg.Coordinator.BaseURL = overrides.CoordinatorBaseURL
	}
	if v, ok := os.LookupEnv("L2GETH_ENDPOINT"); ok && v != "" {
		if cfg.L2Geth == nil {
			cfg.L2Geth = &L2GethConfig{}
		}
		cfg.L2Geth.Endpoint = overrides.L2GethEndpoint
	}
	if v, ok := os.LookupEnv("N_WORKERS"); ok && v != "" {
		cfg.Prover.NWorkers = overrides.NWorkers
	}
	if v, ok := os.LookupEnv("PROVING_SERVICE_BASE_URL"); ok && v != "" {
		cfg.ProvingService.BaseURL = overrides.ProvingServiceBaseURL
	}
	if v, ok := os.LookupEnv("PROVING_SERVICE_API_KEY"); ok && v != "" {
		cfg.ProvingService.APIKey = overrides.ProvingServiceAPIKey
	}

	if raw, ok := os.LookupEnv("PROOF_TYPES"); ok && raw != "" {
		parsed, err := parseProofTypes(raw)
		if err != nil {
			return fmt.Errorf("parsing PROOF_TYPES=%q: %w", raw, err)
		}
		cfg.Prover.SupportedProofTypes = parsed
	}

	return nil
}

// parseProofTypes accepts a comma-separated, optionally bracketed list of
// decimal ProofType values, e.g. "1,2" or "[1,2]".
func parseProofTypes(raw string) ([]types.ProofType, error) {
	trimmed := strings.TrimSpace(raw)
	trimmed = strings.TrimPrefix(trimmed, "[")
	trimmed = strings.TrimSuffix(trimmed, "]")

	var out []types.ProofType
	for _, part := range strings.Split(trimmed, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseUint(part, 10, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid proof type %q: %w", part, err)
		}
		out = append(out, types.ProofTypeFromU8(uint8(v)))
	}
	return out, nil
}
