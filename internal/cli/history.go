package cli

import (
	"fmt"
	"maps"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent ad requests and totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, cmdLog, err := loadConfig(log)
			if err != nil {
				return err
			}
			if cfg.History.Store == "memory" {
				return fmt.Errorf("history.store is memory: nothing is kept between runs")
			}

			history, db, err := openHistory(cfg.History, cmdLog)
			if err != nil {
				return err
			}
			defer db.Close()

			ctx := cmd.Context()
			records, err := history.Recent(ctx, limit)
			if err != nil {
				return err
			}
			stats, err := history.Stats(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "STARTED\tPLUGIN\tKIND\tRESULT\tDURATION\tCLIENT")
			for _, r := range records {
				result := "shown"
				if !r.Shown {
					result = string(r.Reason)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					humanize.Time(r.StartedAt), r.Plugin, r.Kind, result,
					r.Duration().Round(time.Millisecond), r.ClientID)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			fmt.Fprintf(out, "\nTotal: %d  Shown: %d\n", stats.Total, stats.Shown)
			for _, reason := range slices.Sorted(maps.Keys(stats.ByReason)) {
				fmt.Fprintf(out, "  %s: %d\n", reason, stats.ByReason[reason])
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of records to show")

	return cmd
}
