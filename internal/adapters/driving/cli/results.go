package cli

import (
	"encoding/json"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/reposcan/internal/core/domain"
)

var (
	resultsLimit int
	resultsJSON  bool
)

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "List stored results",
	Long: `Lists the repositories recorded so far, ordered by name, with whether
each contains the configured manifest and lock file.`,
	Args: cobra.NoArgs,
	RunE: runResults,
}

func init() {
	resultsCmd.Flags().IntVarP(&resultsLimit, "limit", "n", 20, "maximum number of results (0 for all)")
	resultsCmd.Flags().BoolVar(&resultsJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(resultsCmd)
}

func runResults(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	rt, err := openRuntime(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	results, err := rt.Results.Results(ctx, resultsLimit)
	if err != nil {
		return fmt.Errorf("results failed: %w", err)
	}

	if resultsJSON {
		return outputResultsJSON(cmd, results)
	}
	if len(results) == 0 {
		cmd.Println("No results yet.")
		return nil
	}

	total := len(results)
	if st, err := rt.Results.Status(ctx); err == nil {
		total = st.Results
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), renderResultsTable(results, cfg.Crawl.ManifestPath, cfg.Crawl.LockPath, total))
	return err
}

type resultJSON struct {
	Name        string `json:"name"`
	NodeID      string `json:"node_id"`
	HasManifest bool   `json:"has_manifest"`
	HasLock     bool   `json:"has_lock"`
	UpdatedAt   string `json:"updated_at"`
}

func outputResultsJSON(cmd *cobra.Command, results []domain.Result) error {
	out := make([]resultJSON, len(results))
	for i, r := range results {
		out[i] = resultJSON{
			Name:        r.Name,
			NodeID:      r.NodeID,
			HasManifest: r.HasManifest,
			HasLock:     r.HasLock,
			UpdatedAt:   r.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}

func renderResultsTable(results []domain.Result, manifest, lock string, total int) string {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.DrawBorder = false
	tbl.Style().Options.SeparateColumns = false

	tbl.AppendHeader(table.Row{"Repository", manifest, lock, "Updated"})
	for _, r := range results {
		tbl.AppendRow(table.Row{r.Name, yesNo(r.HasManifest), yesNo(r.HasLock), r.UpdatedAt.UTC().Format("2006-01-02 15:04")})
	}
	tbl.AppendFooter(table.Row{fmt.Sprintf("Showing %d of %d", len(results), total)})

	return tbl.Render() + "\n"
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
