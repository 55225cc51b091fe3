// Package shell runs the interactive command loop: prompting, expansion,
// parsing, builtin dispatch, and handoff to the process launcher.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/minish-sh/minish/core/history"
	"github.com/minish-sh/minish/core/jobs"
	"github.com/minish-sh/minish/core/proc"
	"github.com/minish-sh/minish/core/sessionlog"
)

const (
	// exitKeyword ends the session without consulting the launcher.
	exitKeyword = "exit"
	// commentMarker at the start of a line skips the whole line.
	commentMarker = "#"

	// DefaultHistoryLimit bounds the history builtin's output when the
	// configuration doesn't say otherwise.
	DefaultHistoryLimit = 20
)

// HistoryStore records executed command lines and recalls recent ones.
type HistoryStore interface {
	AddEntry(ctx context.Context, entry history.Entry) (int64, error)
	Recent(ctx context.Context, n int) ([]history.Entry, error)
}

// Config wires a Shell's collaborators.
type Config struct {
	// Reader supplies input lines. Required.
	Reader LineReader
	// Launcher starts external commands. Required.
	Launcher *proc.Launcher
	// Jobs is the background registry shared with the launcher. Required.
	Jobs *jobs.Registry
	// Recorder receives session lifecycle events. Defaults to a no-op.
	Recorder *sessionlog.Recorder
	// History persists executed lines. Optional.
	History HistoryStore
	// HistoryLimit caps how many entries the history builtin shows.
	HistoryLimit int
	// Motd is printed once before the first prompt.
	Motd string

	Stdout io.Writer
	Stderr io.Writer
}

func (c *Config) defaults() error {
	if c.Reader == nil {
		return errors.New("reader is required")
	}
	if c.Launcher == nil {
		return errors.New("launcher is required")
	}
	if c.Jobs == nil {
		return errors.New("jobs registry is required")
	}
	if c.Recorder == nil {
		c.Recorder = sessionlog.NewNop()
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = DefaultHistoryLimit
	}
	if c.Stdout == nil {
		c.Stdout = os.Stdout
	}
	if c.Stderr == nil {
		c.Stderr = os.Stderr
	}
	return nil
}

// Shell drives one interactive session over a line reader.
type Shell struct {
	reader   LineReader
	launcher *proc.Launcher
	jobs     *jobs.Registry
	recorder *sessionlog.Recorder
	history  HistoryStore

	historyLimit int
	motd         string
	stdout       io.Writer
	stderr       io.Writer

	pid        int
	lastStatus proc.Status

	// Set to true to quit the shell
	quit bool
}

// New creates a Shell from cfg.
func New(cfg Config) (*Shell, error) {
	if err := cfg.defaults(); err != nil {
		return nil, err
	}

	return &Shell{
		reader:       cfg.Reader,
		launcher:     cfg.Launcher,
		jobs:         cfg.Jobs,
		recorder:     cfg.Recorder,
		history:      cfg.History,
		historyLimit: cfg.HistoryLimit,
		motd:         cfg.Motd,
		stdout:       cfg.Stdout,
		stderr:       cfg.Stderr,
		pid:          os.Getpid(),
	}, nil
}

// Run loops until exit, end of input, or a failed read. Finished
// background children are reported before each prompt, and any still
// alive when the loop ends are killed.
func (s *Shell) Run() error {
	s.recorder.SessionStart()
	defer s.recorder.SessionEnd()

	if s.motd != "" {
		fmt.Fprintln(s.stdout, s.motd)
	}

	for !s.quit {
		s.jobs.ReapAll()

		line, err := s.reader.ReadLine()
		if err != nil {
			// io.EOF or a closed reader, quit.
			s.quit = true
			continue
		}

		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			continue // empty line

		case strings.HasPrefix(trimmed, commentMarker):
			continue

		case trimmed == exitKeyword:
			s.quit = true

		default:
			s.dispatch(Expand(trimmed, s.pid))
		}
	}

	if killed := s.jobs.TerminateAll(); killed > 0 {
		s.recorder.JobsKilled(killed)
	}
	return nil
}

// Quit unblocks a pending read so Run winds down. Safe to call from
// another goroutine.
func (s *Shell) Quit() {
	_ = s.reader.Close()
}

// LastStatus reports how the most recent foreground command ended.
func (s *Shell) LastStatus() proc.Status {
	return s.lastStatus
}

func (s *Shell) dispatch(line string) {
	cmd, err := Parse(line)
	if err != nil {
		fmt.Fprintln(s.stderr, err)
		return
	}

	s.remember(line, cmd)
	s.recorder.Command(cmd.Args, cmd.Background)

	if builtin, ok := AllBuiltins[cmd.Program]; ok {
		builtin.Main(s, cmd.Args)
		return
	}

	res := s.launcher.Dispatch(cmd)
	switch {
	case res.BackgroundPid > 0:
		s.recorder.BackgroundStart(res.BackgroundPid, cmd.Args)
	case res.StatusUpdated:
		s.lastStatus = res.Status
		s.recorder.ForegroundDone(cmd.Args, res.Status)
	}
}

// remember stores the line in persistent history, ignoring failures.
func (s *Shell) remember(line string, cmd proc.Command) {
	if s.history == nil {
		return
	}
	_, _ = s.history.AddEntry(context.Background(), history.Entry{
		SessionID:  s.recorder.SessionID(),
		Line:       line,
		Program:    cmd.Program,
		Background: cmd.Background,
	})
}
