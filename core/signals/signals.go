// Package signals owns the shell's two signal overrides: the dropped
// interrupt and the terminal-stop handler behind foreground-only mode.
package signals

import (
	"io"
	"os"
	"os/signal"
	"sync/atomic"

	"golang.org/x/sys/unix"
)

// Toggle messages are precomputed and written in one raw call so they land
// on the terminal even while the loop goroutine is blocked in a read. The
// trailing prompt repaints over the restarted read.
var (
	enteringMsg = []byte("\nEntering foreground-only mode (& is now ignored)\n: ")
	exitingMsg  = []byte("\nExiting foreground-only mode\n: ")
)

// ManagerConfig configures a Manager.
type ManagerConfig struct {
	// Out receives the toggle messages; defaults to stdout.
	Out io.Writer
	// OnToggle, when set, observes each toggle for the session log.
	OnToggle func(enabled bool)
}

func (c *ManagerConfig) defaults() {
	if c.Out == nil {
		c.Out = os.Stdout
	}
}

// Manager installs the shell's signal dispositions and owns the
// foreground-only toggle. The toggle is the only datum shared between the
// asynchronous signal path and the loop goroutine.
type Manager struct {
	fgOnly   atomic.Bool
	out      io.Writer
	onToggle func(enabled bool)

	ch   chan os.Signal
	done chan struct{}
}

// NewManager creates a manager. Nothing is intercepted until Install runs.
func NewManager(cfg ManagerConfig) *Manager {
	cfg.defaults()
	return &Manager{
		out:      cfg.Out,
		onToggle: cfg.OnToggle,
	}
}

// Install begins catching SIGINT and SIGTSTP in the shell process. SIGINT
// deliveries are dropped so an idle ^C never kills the shell; SIGTSTP flips
// foreground-only mode. All handling funnels through one goroutine, so a
// toggle is never reentered, and the runtime restarts any blocked read the
// signals interrupt.
func (m *Manager) Install() {
	m.ch = make(chan os.Signal, 1)
	m.done = make(chan struct{})
	signal.Notify(m.ch, unix.SIGINT, unix.SIGTSTP)
	go m.watch()
}

// Uninstall restores default dispositions and stops the watcher.
func (m *Manager) Uninstall() {
	if m.ch == nil {
		return
	}
	signal.Stop(m.ch)
	signal.Reset(unix.SIGINT, unix.SIGTSTP)
	close(m.ch)
	<-m.done
	m.ch = nil
}

func (m *Manager) watch() {
	defer close(m.done)
	for sig := range m.ch {
		if sig != unix.SIGTSTP {
			continue
		}
		enabled := !m.fgOnly.Load()
		m.fgOnly.Store(enabled)
		if enabled {
			m.out.Write(enteringMsg)
		} else {
			m.out.Write(exitingMsg)
		}
		if m.onToggle != nil {
			m.onToggle(enabled)
		}
	}
}

// ForegroundOnly reports whether the terminal-stop toggle is currently on.
func (m *Manager) ForegroundOnly() bool {
	return m.fgOnly.Load()
}

// ChildDispositions prepares the process signal state so a child started
// right now inherits the dispositions for its role: every child ignores the
// terminal stop, and only a background child ignores the interrupt. A
// foreground child is started while the shell merely catches SIGINT, so
// across exec it gets the default, terminable disposition. The returned
// func reinstates the shell's own handlers and must run as soon as the
// start attempt finishes.
func (m *Manager) ChildDispositions(background bool) (restore func()) {
	signal.Ignore(unix.SIGTSTP)
	if background {
		signal.Ignore(unix.SIGINT)
	}
	return func() {
		if m.ch != nil {
			signal.Notify(m.ch, unix.SIGINT, unix.SIGTSTP)
		} else {
			signal.Reset(unix.SIGINT, unix.SIGTSTP)
		}
	}
}
