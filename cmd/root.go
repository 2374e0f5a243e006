package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	flagVerbose bool
	flagConfig  string

	// logger is replaced in PersistentPreRunE once flags are parsed.
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:          "cindex",
	Short:        "cindex resolves component manifests and queries them by facet",
	SilenceUsage: true, // don't print usage on operational errors
	Long: `cindex looks up component manifests by identifier and finds every
component in the index whose facets match a filter.

The component index lives at ~/.cindex/components/index.json unless
cindex.yaml or CINDEX_INDEX_PATH says otherwise.`,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		l, err := newLogger(flagVerbose)
		if err != nil {
			return fmt.Errorf("cannot initialise logger: %w", err)
		}
		logger = l
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log diagnostics at debug level to stderr")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default ~/.cindex/cindex.yaml)")
}

// newLogger builds a production logger on stderr. Info and below are
// suppressed unless verbose is set, so normal output stays readable.
func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}

// Execute is called by main.go.
func Execute() {
	err := rootCmd.Execute()
	flush()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// flush exports pending spans and syncs the logger. It runs whether or not
// the command failed.
func flush() {
	if tracer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracer.Shutdown(ctx); err != nil {
			logger.Warn("cannot flush traces", zap.Error(err))
		}
	}
	_ = logger.Sync()
}
