// Package cli provides the reposcan command line interface.
package cli

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/reposcan/internal/config"
	"github.com/custodia-labs/reposcan/internal/core/ports/driven"
	"github.com/custodia-labs/reposcan/internal/core/ports/driving"
	"github.com/custodia-labs/reposcan/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "reposcan",
	Short: "Find GitHub repositories of a language and record their manifests",
	Long: `reposcan walks every public GitHub repository in id order, keeps the
non-fork repositories whose language list contains the target language, and
records whether each has the expected manifest and lock file.

The walk is checkpointed after every page, so an interrupted crawl resumes
where it stopped.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"config file (default ~/.reposcan/config.toml when present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version printed by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Runtime holds the services a command works with.
type Runtime struct {
	Crawler driving.Crawler
	Results driving.ResultQuery
	// Forge is validated before a crawl starts; nil skips the check.
	Forge driven.Forge
	// Quotas may be nil when the forge cannot report its rate limits.
	Quotas driving.QuotaReporter
	// SchemaVersion is set when the store reports its migration level.
	SchemaVersion func(ctx context.Context) (int, error)
	Close         func() error
}

// RuntimeFactory builds a Runtime from the effective configuration.
type RuntimeFactory func(ctx context.Context, cfg config.Config) (*Runtime, error)

var runtimeFactory RuntimeFactory

// SetRuntimeFactory sets the factory used by commands that need services.
func SetRuntimeFactory(f RuntimeFactory) {
	runtimeFactory = f
}

func openRuntime(ctx context.Context, cfg config.Config) (*Runtime, error) {
	if runtimeFactory == nil {
		return nil, errors.New("runtime not configured")
	}
	rt, err := runtimeFactory(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if rt.Close == nil {
		rt.Close = func() error { return nil }
	}
	return rt, nil
}

// resolveConfigPath returns --config, else the default path if that file exists.
func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	def, err := config.DefaultPath()
	if err != nil {
		return ""
	}
	if _, err := os.Stat(def); err != nil {
		return ""
	}
	return def
}

func loadConfig() (config.Config, error) {
	return config.Load(resolveConfigPath())
}
