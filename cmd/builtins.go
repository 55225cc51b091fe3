package cmd

import (
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/minish-sh/minish/core/shell"
)

// builtinsCmd lists the shell builtin commands
var builtinsCmd = &cobra.Command{
	Use:   "builtins",
	Short: "Show the builtin commands for the shell.",
	RunE: func(cmd *cobra.Command, args []string) error {
		var builtins []string

		for name := range shell.AllBuiltins {
			builtins = append(builtins, name)
		}

		sort.Strings(builtins)

		cyan := color.New(color.FgCyan).SprintFunc()
		for _, v := range builtins {
			fmt.Fprintln(cmd.OutOrStdout(), cyan(v))
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(builtinsCmd)
}
