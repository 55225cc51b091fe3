package cmd

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/minish-sh/minish/core/config"
	"github.com/minish-sh/minish/core/history"
	"github.com/minish-sh/minish/core/jobs"
	"github.com/minish-sh/minish/core/proc"
	"github.com/minish-sh/minish/core/shell"
	"github.com/minish-sh/minish/core/signals"
)

// playgroundCmd runs the shell against a throwaway data directory
var playgroundCmd = &cobra.Command{
	Use:   "playground",
	Short: "Run the shell with line editing and a throwaway data directory.",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		dir, err := os.MkdirTemp("", "playground")
		if err != nil {
			return err
		}
		defer os.RemoveAll(dir)

		playgroundLogger := log.New(cmd.ErrOrStderr(), "[playground] ", 0)
		cfg, err := config.Initialize(dir, playgroundLogger)
		if err != nil {
			return err
		}

		store, err := history.NewRepository(context.Background(), history.RepositoryConfig{
			DBPath: cfg.HistoryDBPath(),
			Logger: playgroundLogger,
		})
		if err != nil {
			return err
		}
		defer store.Close()

		// The line editor owns the terminal in raw mode: ^C and ^Z arrive
		// in-band, so the signal overrides stay uninstalled here.
		manager := signals.NewManager(signals.ManagerConfig{
			Out: cmd.OutOrStdout(),
		})

		registry := jobs.NewRegistry(jobs.RegistryConfig{
			Limit: cfg.MaxBackgroundJobs,
			Out:   cmd.OutOrStdout(),
		})

		launcher, err := proc.NewLauncher(proc.LauncherConfig{
			Signals: manager,
			Jobs:    registry,
		})
		if err != nil {
			return err
		}

		reader, err := shell.NewEditorReader(filepath.Join(dir, "readline_history"))
		if err != nil {
			return err
		}

		sh, err := shell.New(shell.Config{
			Reader:       reader,
			Launcher:     launcher,
			Jobs:         registry,
			History:      store,
			HistoryLimit: cfg.HistoryLimit,
			Motd:         cfg.Motd,
			Stdout:       cmd.OutOrStdout(),
			Stderr:       cmd.ErrOrStderr(),
		})
		if err != nil {
			return err
		}

		playgroundLogger.Printf("Data directory: file://%s\n", dir)
		playgroundLogger.Println(strings.Repeat("=", 80))

		return sh.Run()
	},
}

func init() {
	rootCmd.AddCommand(playgroundCmd)
}
