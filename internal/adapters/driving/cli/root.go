// Package cli implements the coursecheck command line.
//
// Commands reach the core through the package-level driving ports below.
// They are wired lazily on first use (see bootstrap.go) so that commands
// like version and settings work without a reachable embedding provider.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/coursecheck/internal/core/ports/driving"
	"github.com/custodia-labs/coursecheck/internal/logger"
	"github.com/custodia-labs/coursecheck/internal/observability"
)

// version is set at build time with -ldflags "-X ...cli.version=v1.2.3".
var version = "dev"

// Driving ports used by the commands.
var (
	overlapService  driving.OverlapService
	corpusService   driving.CorpusService
	settingsService driving.SettingsService
)

// Persistent flags.
var (
	verbose   bool
	configDir string
	traceRun  bool
)

var tracerProvider *observability.TracerProvider

var rootCmd = &cobra.Command{
	Use:   "coursecheck",
	Short: "Detect overlapping course descriptions",
	Long: `coursecheck compares course descriptions for overlapping content and
shared literature.

Submit a proposed course to see which existing courses it overlaps with,
or analyse the whole corpus for overlapping pairs.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupRun,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print progress and timing to stderr")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.coursecheck)")
	rootCmd.PersistentFlags().BoolVar(&traceRun, "trace", false, "print OpenTelemetry spans to stderr")
}

func setupRun(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	logger.SetOutput(cmd.ErrOrStderr())

	if traceRun && !tracerProvider.Enabled() {
		tp, err := observability.InitTracing(cmd.Context(), observability.TracingConfig{
			ServiceVersion: version,
			Output:         cmd.ErrOrStderr(),
		})
		if err != nil {
			return err
		}
		tracerProvider = tp
	}
	return nil
}

// ExecuteContext runs the root command with ctx and releases every opened
// store and provider afterwards.
func ExecuteContext(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if serr := shutdown(context.Background()); serr != nil {
		logger.Error("shutdown: %v", serr)
		err = errors.Join(err, serr)
	}
	return err
}

func shutdown(ctx context.Context) error {
	err := closeServices()
	if tracerProvider != nil {
		err = errors.Join(err, tracerProvider.Shutdown(ctx))
		tracerProvider = nil
	}
	return err
}
