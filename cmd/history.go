package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/minish-sh/minish/core/history"
)

var (
	historyCount   int
	historySession string
)

// historyCmd queries the history database without starting a shell
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show commands recorded in the history database.",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx := context.Background()
		store, err := history.NewRepository(ctx, history.RepositoryConfig{
			DBPath: cfg.HistoryDBPath(),
		})
		if err != nil {
			return err
		}
		defer store.Close()

		count := historyCount
		if count <= 0 {
			count = cfg.HistoryLimit
		}

		var entries []history.Entry
		if historySession != "" {
			entries, err = store.BySession(ctx, historySession)
		} else {
			entries, err = store.Recent(ctx, count)
		}
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 8, 8, 4, ' ', 0)
		defer tw.Flush()

		fmt.Fprintln(tw, "ID\tWHEN\tSESSION\tCOMMAND")
		for _, entry := range entries {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n",
				entry.ID,
				entry.RanAt.Format(time.RFC3339),
				entry.SessionID,
				entry.Line,
			)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVarP(&historyCount, "count", "n", 0, "Number of entries to show, defaulting to the configured history limit.")
	historyCmd.Flags().StringVar(&historySession, "session", "", "Show every entry recorded under one session ID.")
}
