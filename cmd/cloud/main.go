// Command cloud is an example binary wiring a cloud HTTP proving backend
// into the SDK: GetVks/Prove/QueryTask are plain JSON-over-HTTP calls to a
// third-party proving service, authenticated with a static API key.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/scroll-tech/proving-sdk/pkg/config"
	"github.com/scroll-tech/proving-sdk/pkg/log"
	"github.com/scroll-tech/proving-sdk/pkg/prover"
	"github.com/scroll-tech/proving-sdk/pkg/provingservice"
)

var (
	version    = "dev"
	configPath string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "cloud-prover",
	Short:   "Run a prover agent against a cloud HTTP proving backend",
	Version: version,
	RunE:    run,
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "config.json", "path to the agent configuration file")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "output logs in JSON format")
	cobra.OnInitialize(initLogging)
}

func initLogging() {
	level, _ := rootCmd.PersistentFlags().GetString("log-level")
	jsonOutput, _ := rootCmd.PersistentFlags().GetBool("log-json")
	log.Init(log.Config{Level: log.Level(level), JSONOutput: jsonOutput})
}

func run(cmd *cobra.Command, args []string) error {
	prover.SetVersion(version)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	backend := newCloudProver(cfg.ProvingService.BaseURL, cfg.ProvingService.APIKey)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	p, err := prover.NewBuilder(cfg, backend).Build(ctx)
	if err != nil {
		return fmt.Errorf("building prover: %w", err)
	}
	defer p.Close()

	return p.Run(ctx)
}

// cloudProver drives a remote proving service over plain JSON-over-HTTP,
// authenticated with a static bearer API key rather than the coordinator's
// login handshake: the proving backend and the coordinator are unrelated
// authorities.
type cloudProver struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

func newCloudProver(endpoint, apiKey string) *cloudProver {
	return &cloudProver{
		endpoint: endpoint,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *cloudProver) IsLocal() bool { return false }

func (c *cloudProver) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("X-Request-Id", uuid.New().String())

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, string(respBody))
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(respBody, out)
}

func (c *cloudProver) GetVks(ctx context.Context, req provingservice.GetVksRequest) (provingservice.GetVksResponse, error) {
	var out provingservice.GetVksResponse
	if err := c.doJSON(ctx, http.MethodPost, "/vks", req, &out); err != nil {
		return provingservice.GetVksResponse{}, err
	}
	return out, nil
}

func (c *cloudProver) Prove(ctx context.Context, req provingservice.ProveRequest) (provingservice.ProveResponse, error) {
	var out provingservice.ProveResponse
	if err := c.doJSON(ctx, http.MethodPost, "/prove", req, &out); err != nil {
		return provingservice.ProveResponse{}, err
	}
	return out, nil
}

func (c *cloudProver) QueryTask(ctx context.Context, req provingservice.QueryTaskRequest) (provingservice.QueryTaskResponse, error) {
	var out provingservice.QueryTaskResponse
	if err := c.doJSON(ctx, http.MethodGet, "/tasks/"+req.TaskID, nil, &out); err != nil {
		return provingservice.QueryTaskResponse{}, err
	}
	return out, nil
}
