package cli

import (
	"sort"
	"time"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the resume cursor, stored results and API quota",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
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

	st, err := rt.Results.Status(ctx)
	if err != nil {
		return err
	}

	cmd.Printf("Source:   %s\n", st.SourceKey)
	if st.HasCursor {
		cmd.Printf("Cursor:   %d\n", st.Cursor)
	} else {
		cmd.Println("Cursor:   none (crawl starts from the beginning)")
	}
	cmd.Printf("Results:  %d\n", st.Results)
	if rt.SchemaVersion != nil {
		if v, err := rt.SchemaVersion(ctx); err != nil {
			cmd.Printf("Schema:   unavailable (%v)\n", err)
		} else {
			cmd.Printf("Schema:   v%d\n", v)
		}
	}

	if rt.Quotas == nil || cfg.Forge.Token == "" {
		return nil
	}

	// Quota is informational; an unreachable API must not fail status.
	quotas, err := rt.Quotas.Quotas(ctx)
	if err != nil {
		cmd.Printf("Quota:    unavailable (%v)\n", err)
		return nil
	}
	names := make([]string, 0, len(quotas))
	for name := range quotas {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		q := quotas[name]
		cmd.Printf("Quota:    %-8s %d/%d, resets %s\n",
			name, q.Remaining, q.Limit, q.ResetAt.Local().Format(time.Kitchen))
	}
	return nil
}
