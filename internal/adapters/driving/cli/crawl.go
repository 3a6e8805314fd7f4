package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/reposcan/internal/adapters/driving/httpserver"
	"github.com/custodia-labs/reposcan/internal/config"
	"github.com/custodia-labs/reposcan/internal/connectors/github"
	"github.com/custodia-labs/reposcan/internal/core/domain"
	"github.com/custodia-labs/reposcan/internal/logger"
)

var (
	crawlLanguage    string
	crawlMetricsAddr string
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Crawl GitHub from the persisted cursor",
	Long: `Resumes the repository walk from the persisted cursor and runs until
GitHub returns a short page. Interrupting with Ctrl-C stops after the
current request; the cursor of the last completed page is kept.

A token is required: set REPOSCAN_FORGE_TOKEN or GITHUB_TOKEN, or forge.token
in the config file.`,
	Args: cobra.NoArgs,
	RunE: runCrawl,
}

func init() {
	crawlCmd.Flags().StringVarP(&crawlLanguage, "language", "l", "",
		"target language, exactly as GitHub names it (overrides crawl.language)")
	crawlCmd.Flags().StringVar(&crawlMetricsAddr, "metrics-addr", "",
		"serve /metrics, /healthz and /status on this address while crawling")
	rootCmd.AddCommand(crawlCmd)
}

func runCrawl(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if crawlLanguage != "" {
		cfg.Crawl.Language = crawlLanguage
	}
	if crawlMetricsAddr != "" {
		cfg.Metrics.Addr = crawlMetricsAddr
	}
	if strings.TrimSpace(cfg.Forge.Token) == "" {
		return fmt.Errorf("%w: set REPOSCAN_FORGE_TOKEN or GITHUB_TOKEN", domain.ErrAuthRequired)
	}
	if _, warning := config.CheckLanguage(cfg.Crawl.Language); warning != "" {
		logger.Warn("%s", warning)
	}

	logger.Section("crawl")
	logger.Debug("source=%s language=%s storage=%s page_size=%d batch_size=%d flush_order=%s",
		cfg.Crawl.SourceKey, cfg.Crawl.Language, cfg.Storage.Driver,
		cfg.Crawl.PageSize, cfg.Crawl.BatchSize, cfg.Crawl.FlushOrder)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := openRuntime(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rt.Close(); cerr != nil {
			logger.Warn("close: %v", cerr)
		}
	}()

	if rt.Forge != nil {
		if err := rt.Forge.Validate(ctx); err != nil {
			return fmt.Errorf("check %s access: %w", rt.Forge.Name(), err)
		}
	}

	if cfg.Metrics.Addr != "" {
		ln, err := net.Listen("tcp", cfg.Metrics.Addr)
		if err != nil {
			return fmt.Errorf("metrics listener: %w", err)
		}
		srvCtx, cancel := context.WithCancel(ctx)
		done := make(chan struct{})
		srv := httpserver.New(rt.Results, logger.L())
		go func() {
			defer close(done)
			if serr := srv.Serve(srvCtx, ln); serr != nil {
				logger.Error("metrics server stopped: %v", serr)
			}
		}()
		// Runs before rt.Close so /status never reads a closed store.
		defer func() {
			cancel()
			<-done
		}()
	}

	cmd.Printf("Crawling %s for %s repositories...\n", cfg.Crawl.SourceKey, cfg.Crawl.Language)
	logger.Info("crawl started: source=%s language=%s", cfg.Crawl.SourceKey, cfg.Crawl.Language)

	report, err := rt.Crawler.Crawl(ctx)
	if report != nil {
		printReport(cmd, report)
		logger.Info("crawl %s: cursor %d -> %d, %d written", report.State, report.StartCursor, report.EndCursor, report.Written)
	}
	if err != nil {
		if github.IsRateLimited(err) {
			printRateLimitHint(cmd, err)
		}
		return fmt.Errorf("crawl failed: %w", err)
	}
	return nil
}

// printRateLimitHint tells the user when the crawl can be resumed.
func printRateLimitHint(cmd *cobra.Command, err error) {
	var rlErr *github.RateLimitError
	if errors.As(err, &rlErr) && !rlErr.ResetAt.IsZero() {
		cmd.Printf("GitHub rate limit reached; run crawl again after %s\n",
			rlErr.ResetAt.Local().Format(time.Kitchen))
		return
	}
	cmd.Println("GitHub rate limit reached; run crawl again later")
}

func printReport(cmd *cobra.Command, r *domain.CrawlReport) {
	cmd.Printf("Run %s %s after %s\n", r.RunID, r.State, r.Duration().Round(time.Millisecond))
	cmd.Printf("  Cursor:     %d -> %d\n", r.StartCursor, r.EndCursor)
	cmd.Printf("  Pages:      %d (%d repositories, %d forks)\n", r.Pages, r.Summaries, r.Forks)
	cmd.Printf("  Hydrated:   %d in %d batches (%d gone)\n", r.Hydrated, r.Flushes, r.Absent)
	cmd.Printf("  Matches:    %d\n", r.Matches)
	cmd.Printf("  Written:    %d", r.Written)
	if r.Skipped > 0 {
		cmd.Printf(" (%d duplicates skipped)", r.Skipped)
	}
	cmd.Println()
}
