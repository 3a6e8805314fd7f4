// Command reposcan crawls GitHub for repositories of a target language.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/custodia-labs/reposcan/internal/adapters/driving/cli"
	"github.com/custodia-labs/reposcan/internal/app"
	"github.com/custodia-labs/reposcan/internal/config"
	"github.com/custodia-labs/reposcan/internal/core/ports/driving"
	"github.com/custodia-labs/reposcan/internal/logger"
)

// version is set at build time via -ldflags "-X main.version=...".
var version string

func main() {
	cli.SetVersion(version)
	cli.SetRuntimeFactory(newRuntime)

	err := cli.Execute()
	logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// schemaVersioner is implemented by stores that track applied migrations.
type schemaVersioner interface {
	SchemaVersion(ctx context.Context) (int, error)
}

func newRuntime(ctx context.Context, cfg config.Config) (*cli.Runtime, error) {
	if err := logger.Init(cfg.Logging.Development); err != nil {
		return nil, err
	}

	a, err := app.New(ctx, cfg, logger.L())
	if err != nil {
		return nil, err
	}

	rt := &cli.Runtime{
		Crawler: a.Crawler,
		Results: a.Results,
		Forge:   a.Forge,
		Close:   a.Close,
	}
	if q, ok := a.Forge.(driving.QuotaReporter); ok {
		rt.Quotas = q
	}
	if s, ok := a.Store.(schemaVersioner); ok {
		rt.SchemaVersion = s.SchemaVersion
	}
	return rt, nil
}
