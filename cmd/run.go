package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/oklog/run"
	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"github.com/minish-sh/minish/core/config"
	"github.com/minish-sh/minish/core/history"
	"github.com/minish-sh/minish/core/jobs"
	"github.com/minish-sh/minish/core/proc"
	"github.com/minish-sh/minish/core/sessionlog"
	"github.com/minish-sh/minish/core/shell"
	"github.com/minish-sh/minish/core/signals"
)

// runCmd starts the interactive shell, same as calling minish without a
// subcommand.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the interactive shell.",
	Args:  cobra.ExactArgs(0),
	RunE:  runShellE,
}

func runShellE(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	return runShell(cmd, cfg)
}

func runShell(cmd *cobra.Command, cfg *config.Configuration) error {
	recorder := sessionlog.NewNop()
	if cfg.LogCommands {
		logFd, err := cfg.OpenEventLog()
		if err != nil {
			return err
		}
		defer logFd.Close()
		recorder = sessionlog.NewRecorder(logFd, os.Getpid())
	}

	store, err := history.NewRepository(context.Background(), history.RepositoryConfig{
		DBPath: cfg.HistoryDBPath(),
	})
	if err != nil {
		return err
	}
	defer store.Close()

	manager := signals.NewManager(signals.ManagerConfig{
		Out:      cmd.OutOrStdout(),
		OnToggle: recorder.ForegroundOnly,
	})

	registry := jobs.NewRegistry(jobs.RegistryConfig{
		Limit:  cfg.MaxBackgroundJobs,
		Out:    cmd.OutOrStdout(),
		OnReap: recorder.BackgroundDone,
	})

	launcher, err := proc.NewLauncher(proc.LauncherConfig{
		Signals: manager,
		Jobs:    registry,
		Stdin:   cmd.InOrStdin(),
		Stdout:  cmd.OutOrStdout(),
		Stderr:  cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}

	sh, err := shell.New(shell.Config{
		Reader:       shell.NewPromptReader(cmd.InOrStdin(), cmd.OutOrStdout()),
		Launcher:     launcher,
		Jobs:         registry,
		Recorder:     recorder,
		History:      store,
		HistoryLimit: cfg.HistoryLimit,
		Motd:         cfg.Motd,
		Stdout:       cmd.OutOrStdout(),
		Stderr:       cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}

	manager.Install()
	defer manager.Uninstall()

	var g run.Group

	// Termination signals. SIGINT stays with the signal manager so ^C only
	// interrupts foreground children.
	{
		signalCtx, signalCancel := signal.NotifyContext(context.Background(), unix.SIGTERM, unix.SIGHUP)
		defer signalCancel()

		g.Add(
			func() error {
				<-signalCtx.Done()
				return nil
			},
			func(_ error) {
				signalCancel()
			},
		)
	}

	// Interactive loop.
	{
		g.Add(
			func() error {
				return sh.Run()
			},
			func(_ error) {
				sh.Quit()
			},
		)
	}

	return g.Run()
}

func init() {
	rootCmd.AddCommand(runCmd)
}
