package proc

import (
	"fmt"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// Status is the recorded outcome of a completed child: either a normal exit
// code or the number of the signal that terminated it. The two are kept
// distinct so an exit code of 2 never renders as a death by signal 2.
type Status struct {
	Value    int
	Signaled bool
}

// ExitStatus returns the Status for a normal exit with the given code.
func ExitStatus(code int) Status {
	return Status{Value: code}
}

// StatusFromWait classifies a raw wait status from a non-blocking reap.
func StatusFromWait(ws unix.WaitStatus) Status {
	if ws.Signaled() {
		return Status{Value: int(ws.Signal()), Signaled: true}
	}
	return Status{Value: ws.ExitStatus()}
}

// StatusFromState classifies the outcome of a child reaped through the
// standard library's wait path.
func StatusFromState(state *os.ProcessState) Status {
	if ws, ok := state.Sys().(syscall.WaitStatus); ok {
		return StatusFromWait(unix.WaitStatus(ws))
	}
	return Status{Value: state.ExitCode()}
}

// String renders the status exactly the way the status builtin and the
// background job reports display it.
func (s Status) String() string {
	if s.Signaled {
		return fmt.Sprintf("terminated by signal %d", s.Value)
	}
	return fmt.Sprintf("exit value %d", s.Value)
}
