package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/minish-sh/minish/core/sessionlog"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Explore the session event log.",
}

var reportJSON bool

var reportCommand = &cobra.Command{
	Use:   "report",
	Short: "Show a report of recorded sessions.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		config, err := loadConfig()
		if err != nil {
			return err
		}

		fd, err := config.ReadEventLog()
		if err != nil {
			return err
		}
		defer fd.Close()

		var report sessionlog.Report
		if err := sessionlog.ReadEvents(fd, report.Update); err != nil {
			return err
		}

		var out []byte
		if reportJSON {
			out, err = json.MarshalIndent(report, "", "  ")
		} else {
			out, err = yaml.Marshal(report)
		}
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), string(out))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(reportCommand)

	reportCommand.Flags().BoolVar(&reportJSON, "json", false, "Emit the report as JSON instead of YAML.")
}
