// Command local is an example binary wiring a fully in-process proving
// backend into the SDK. A real local backend would call out to a prover
// binary or library directly; this one exists to show the wiring, not to
// prove anything.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/scroll-tech/proving-sdk/pkg/config"
	"github.com/scroll-tech/proving-sdk/pkg/log"
	"github.com/scroll-tech/proving-sdk/pkg/prover"
	"github.com/scroll-tech/proving-sdk/pkg/provingservice"
	"github.com/scroll-tech/proving-sdk/pkg/types"
)

var (
	version   = "dev"
	configPath string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "local-prover",
	Short:   "Run a prover agent against an in-process local proving backend",
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

	backend := newLocalProver()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	p, err := prover.NewBuilder(cfg, backend).Build(ctx)
	if err != nil {
		return fmt.Errorf("building prover: %w", err)
	}
	defer p.Close()

	return p.Run(ctx)
}

// localProver is a placeholder ProvingService that runs entirely
// in-process. A real deployment swaps this out for a binding to an actual
// Halo2 or OpenVM proving library.
type localProver struct{}

func newLocalProver() *localProver {
	return &localProver{}
}

func (l *localProver) IsLocal() bool { return true }

func (l *localProver) GetVks(ctx context.Context, req provingservice.GetVksRequest) (provingservice.GetVksResponse, error) {
	vks := make([]string, len(req.ProofTypes))
	for i, pt := range req.ProofTypes {
		vks[i] = fmt.Sprintf("local_vk_%s_%s", pt, req.CircuitVersion)
	}
	return provingservice.GetVksResponse{Vks: vks}, nil
}

func (l *localProver) Prove(ctx context.Context, req provingservice.ProveRequest) (provingservice.ProveResponse, error) {
	return provingservice.ProveResponse{}, fmt.Errorf("local proving is not implemented in this example binary")
}

func (l *localProver) QueryTask(ctx context.Context, req provingservice.QueryTaskRequest) (provingservice.QueryTaskResponse, error) {
	return provingservice.QueryTaskResponse{TaskID: req.TaskID, Status: types.TaskStatusFailed}, nil
}
