// Command lftj is a thin demonstration harness over the engine's public
// API (SPEC_FULL.md's Supplemented Features): it never implements query
// semantics itself, only builds the S4 and S5 example queries from
// spec.md §8 and lets a user insert/delete tuples and watch the query's
// result change.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	verbose bool
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "lftj",
	Short: "lftj - an incremental leapfrog-triejoin query engine inspector",
	Long: `lftj drives the incremental relational query engine defined in
internal/engine and internal/graph through a couple of example query
shapes (the binary join and triangle self-join from spec.md §8),
letting you insert and delete base tuples and observe the resulting
deltas propagate through the query graph.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		cfg.Encoding = "console"
		cfg.EncoderConfig.TimeKey = ""
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(watchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
