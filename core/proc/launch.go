// Package proc turns structured commands into running child processes and
// classifies their outcomes.
package proc

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"

	"github.com/minish-sh/minish/core/signals"
)

// JobRegistry is the launcher's view of the background job table: a
// capacity check before a launch and registration after one. The jobs
// package's Registry satisfies it; naming only the needed methods here
// keeps proc importable from that package.
type JobRegistry interface {
	Register(pid int) error
	Full() bool
	Len() int
}

// Command is the parsed, immutable form of one input line.
type Command struct {
	// Program is the executable name or path; always equal to Args[0].
	Program string
	// Args is the full argument vector, program name included, and is never
	// empty. The sentinel termination the exec call needs is the OS layer's
	// business, not part of the command.
	Args []string
	// InputPath and OutputPath are redirection targets; empty means
	// unspecified, not the null device.
	InputPath  string
	OutputPath string
	// Background is set when the line's final token was a bare &.
	Background bool
}

// Result describes what a dispatch did on the parent side.
type Result struct {
	// BackgroundPid is the registered child's PID when a background launch
	// succeeded, zero otherwise.
	BackgroundPid int
	// Status holds the foreground outcome; meaningful only when
	// StatusUpdated is set.
	Status Status
	// StatusUpdated reports whether Status must overwrite the shell's last
	// foreground status.
	StatusUpdated bool
}

// LauncherConfig wires a Launcher's collaborators.
type LauncherConfig struct {
	Signals *signals.Manager
	Jobs    JobRegistry

	// Stdin, Stdout, Stderr are the shell's own streams, inherited by
	// children that no binding overrides. Attaching real files here keeps
	// the exec layer from interposing copier goroutines, which the
	// PID-level background reaps rely on.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// OnFatal runs when process creation itself fails; the shell cannot
	// usefully continue without the ability to fork. Defaults to
	// terminating the process.
	OnFatal func(err error)
}

func (c *LauncherConfig) defaults() error {
	if c.Signals == nil {
		return fmt.Errorf("signal manager is required")
	}
	if c.Jobs == nil {
		return fmt.Errorf("job registry is required")
	}
	if c.Stdin == nil {
		c.Stdin = os.Stdin
	}
	if c.Stdout == nil {
		c.Stdout = os.Stdout
	}
	if c.Stderr == nil {
		c.Stderr = os.Stderr
	}
	if c.OnFatal == nil {
		stderr := c.Stderr
		c.OnFatal = func(err error) {
			fmt.Fprintf(stderr, "%v\n", err)
			os.Exit(1)
		}
	}
	return nil
}

// Launcher starts external commands and decides whether the shell blocks on
// them. Builtins never come through here.
type Launcher struct {
	signals *signals.Manager
	jobs    JobRegistry
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
	onFatal func(err error)
}

// NewLauncher creates a launcher.
func NewLauncher(cfg LauncherConfig) (*Launcher, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Launcher{
		signals: cfg.Signals,
		jobs:    cfg.Jobs,
		stdin:   cfg.Stdin,
		stdout:  cfg.Stdout,
		stderr:  cfg.Stderr,
		onFatal: cfg.OnFatal,
	}, nil
}

// Dispatch launches one external command. Background eligibility is decided
// here, once: a trailing & only detaches the child while foreground-only
// mode is off. Foreground children are waited on synchronously and their
// outcome is returned; background children are reported and registered.
func (l *Launcher) Dispatch(cmd Command) Result {
	backgroundEligible := cmd.Background && !l.signals.ForegroundOnly()

	if backgroundEligible && l.jobs.Full() {
		fmt.Fprintf(l.stdout, "too many background jobs (%d running)\n", l.jobs.Len())
		return Result{}
	}

	bind, err := bindRedirections(cmd, backgroundEligible)
	if err != nil {
		fmt.Fprintln(l.stdout, err)
		return Result{}
	}
	defer bind.close()

	child := exec.Command(cmd.Program, cmd.Args[1:]...)
	child.Stdin = l.stdin
	child.Stdout = l.stdout
	child.Stderr = l.stderr
	if bind.stdin != nil {
		child.Stdin = bind.stdin
	}
	if bind.stdout != nil {
		child.Stdout = bind.stdout
	}

	restore := l.signals.ChildDispositions(backgroundEligible)
	err = child.Start()
	restore()

	if err != nil {
		return l.startFailure(cmd, backgroundEligible, err)
	}

	if backgroundEligible {
		pid := child.Process.Pid
		if err := l.jobs.Register(pid); err != nil {
			fmt.Fprintln(l.stderr, err)
		}
		fmt.Fprintf(l.stdout, "background PID is %d\n", pid)
		return Result{BackgroundPid: pid}
	}

	status := l.wait(child)
	if status.Signaled {
		fmt.Fprintf(l.stdout, "terminated by signal %d\n", status.Value)
	}
	return Result{Status: status, StatusUpdated: true}
}

// startFailure sorts a failed start into the error taxonomy: a program that
// cannot be resolved or invoked is fatal to that child alone and surfaces
// as an exit-1 outcome, while a failure of process creation itself is fatal
// to the whole shell.
func (l *Launcher) startFailure(cmd Command, backgroundEligible bool, err error) Result {
	switch {
	case errors.Is(err, exec.ErrNotFound),
		errors.Is(err, fs.ErrNotExist),
		errors.Is(err, fs.ErrPermission):
		fmt.Fprintf(l.stdout, "%s: %v\n", cmd.Program, cause(err))
		if backgroundEligible {
			return Result{}
		}
		return Result{Status: ExitStatus(1), StatusUpdated: true}
	default:
		l.onFatal(fmt.Errorf("fork failed: %w", err))
		return Result{}
	}
}

// cause unwraps the exec layer's error envelopes so reports read as
// "name: reason" rather than repeating the program name.
func cause(err error) error {
	var execErr *exec.Error
	if errors.As(err, &execErr) {
		return execErr.Err
	}
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return pathErr.Err
	}
	return err
}

// wait blocks until the foreground child finishes and classifies how.
func (l *Launcher) wait(child *exec.Cmd) Status {
	err := child.Wait()
	if err == nil {
		return ExitStatus(0)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return StatusFromState(exitErr.ProcessState)
	}
	// Wait failed without the child reporting an exit; only reachable when
	// stdio plumbing breaks.
	fmt.Fprintf(l.stderr, "wait: %v\n", err)
	return ExitStatus(1)
}
