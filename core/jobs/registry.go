// Package jobs tracks the shell's in-flight background children.
package jobs

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"

	"github.com/minish-sh/minish/core/proc"
)

// DefaultLimit caps concurrently tracked jobs unless configuration says
// otherwise.
const DefaultLimit = 100

// RegistryConfig configures a Registry.
type RegistryConfig struct {
	// Limit is the maximum number of tracked jobs; DefaultLimit if not set.
	Limit int
	// Out receives the user-visible job reports.
	Out io.Writer
	// OnReap, when set, observes each reaped job for the session log.
	OnReap func(pid int, status proc.Status)
}

func (c *RegistryConfig) defaults() {
	if c.Limit <= 0 {
		c.Limit = DefaultLimit
	}
	if c.Out == nil {
		c.Out = os.Stdout
	}
}

// Registry is a dense, order-preserving collection of background process
// IDs. It is owned by the interactive loop goroutine; nothing here is
// touched from signal context, so it takes no lock.
type Registry struct {
	pids   []int
	limit  int
	out    io.Writer
	onReap func(pid int, status proc.Status)
}

// NewRegistry creates an empty registry.
func NewRegistry(cfg RegistryConfig) *Registry {
	cfg.defaults()
	return &Registry{
		limit:  cfg.Limit,
		out:    cfg.Out,
		onReap: cfg.OnReap,
	}
}

// Register starts tracking a launched background child.
func (r *Registry) Register(pid int) error {
	if len(r.pids) >= r.limit {
		return fmt.Errorf("job table full (%d jobs)", r.limit)
	}
	r.pids = append(r.pids, pid)
	return nil
}

// Full reports whether the registry cannot accept another job.
func (r *Registry) Full() bool {
	return len(r.pids) >= r.limit
}

// Len returns the number of tracked jobs.
func (r *Registry) Len() int {
	return len(r.pids)
}

// PIDs returns the tracked process IDs in registration order.
func (r *Registry) PIDs() []int {
	out := make([]int, len(r.pids))
	copy(out, r.pids)
	return out
}

// ReapAll polls every tracked child without blocking, reports the ones that
// finished, and compacts the survivors preserving their relative order.
func (r *Registry) ReapAll() {
	live := r.pids[:0]
	for _, pid := range r.pids {
		var ws unix.WaitStatus
		got, err := unix.Wait4(pid, &ws, unix.WNOHANG, nil)
		switch {
		case err != nil:
			// The child is no longer waitable; stop tracking it.
		case got == 0:
			live = append(live, pid)
		default:
			status := proc.StatusFromWait(ws)
			fmt.Fprintf(r.out, "background pid %d is done: %s\n", pid, status)
			if r.onReap != nil {
				r.onReap(pid, status)
			}
		}
	}
	r.pids = live
}

// TerminateAll force-kills every tracked job, attempts one non-blocking
// reap per PID, and clears the registry. Kill and reap errors are swallowed
// so shutdown always completes. Returns how many jobs were killed.
func (r *Registry) TerminateAll() int {
	killed := len(r.pids)
	for _, pid := range r.pids {
		_ = unix.Kill(pid, unix.SIGKILL)
	}
	for _, pid := range r.pids {
		var ws unix.WaitStatus
		_, _ = unix.Wait4(pid, &ws, unix.WNOHANG, nil)
	}
	r.pids = nil
	return killed
}
