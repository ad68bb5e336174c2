// Command empower1sim drives a simulated proof-of-work network: it wires
// up a node registry from CLI flags, starts the requested number of mining
// nodes (a requested fraction of them malicious), and runs until an OS
// signal asks it to stop.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/empower1/powsim/internal/config"
	"github.com/empower1/powsim/internal/network"
)

var rootCmd = &cobra.Command{
	Use:   "empower1sim",
	Short: "Run a simulated proof-of-work node network",
	Long: `empower1sim spins up an in-process network of mining and
malicious nodes, each racing to extend its own chain replica via
proof-of-work, broadcasting mined blocks to its peers, and
resynchronizing to the longest chain on demand.`,
}

func main() {
	rootCmd.AddCommand(runCmd())
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	var (
		nodeCount    int
		maliciousPct float64
		difficulty   int
		hashLength   int
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the network and run until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(nodeCount, maliciousPct, difficulty, hashLength)
		},
	}

	cmd.Flags().IntVar(&nodeCount, "nodes", 5, "number of nodes to register at startup")
	cmd.Flags().Float64Var(&maliciousPct, "malicious-fraction", 0.0, "fraction of started nodes (0-1) that tamper with committed blocks")
	cmd.Flags().IntVar(&difficulty, "difficulty", 0, "leading-zero proof-of-work difficulty (0 keeps the default)")
	cmd.Flags().IntVar(&hashLength, "hash-length", 0, "hex-character hash width (0 keeps the default)")
	return cmd
}

func run(nodeCount int, maliciousPct float64, difficulty, hashLength int) error {
	log, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()
	sugar := log.Sugar()

	cfg := config.Default()
	if difficulty > 0 {
		cfg.Difficulty = difficulty
	}
	if hashLength > 0 {
		cfg.HashLength = hashLength
	}
	if nodeCount > cfg.MaxNodes {
		cfg.MaxNodes = nodeCount
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	registry := network.NewRegistry(cfg, sugar)

	for i := 0; i < nodeCount; i++ {
		malicious := maliciousPct > 0 && float64(i)/float64(nodeCount) < maliciousPct
		if _, err := registry.AddNode(true, malicious); err != nil {
			return fmt.Errorf("failed to add node %d: %w", i, err)
		}
	}
	sugar.Infow("network started", "node_count", nodeCount, "difficulty", cfg.Difficulty)

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case sig := <-shutdownChan:
			sugar.Infow("caught signal, shutting down", "signal", sig.String())
			registry.Shutdown()
			sugar.Infow("network shut down gracefully")
			return nil
		case <-ticker.C:
			reportStatus(sugar, registry)
		}
	}
}

func reportStatus(sugar *zap.SugaredLogger, registry *network.Registry) {
	for _, n := range registry.Nodes() {
		sugar.Infow("node status",
			"node_id", n.ID,
			"active", n.IsActive(),
			"malicious", n.IsMalicious(),
			"block_count", n.Chain.BlockCount(),
			"pow_attempts", n.Attempts())
	}
}
