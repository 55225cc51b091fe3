package proc

import (
	"fmt"
	"os"
)

// binding holds the files prepared for a child's standard streams. A nil
// field means the child inherits the shell's own stream.
type binding struct {
	stdin  *os.File
	stdout *os.File
}

// close releases the parent's copies once the start attempt is over; the
// child keeps its own duplicated descriptors.
func (b *binding) close() {
	if b.stdin != nil {
		b.stdin.Close()
	}
	if b.stdout != nil {
		b.stdout.Close()
	}
}

// bindRedirections opens the files the child's stdin and stdout attach to.
// Explicit paths win; a background-eligible command with no explicit path
// is pointed at the null device so it can neither read nor write the
// terminal. A foreground command with no redirection inherits untouched.
// Open failures happen before anything is started and leave the shell's
// state alone.
func bindRedirections(cmd Command, backgroundEligible bool) (*binding, error) {
	b := &binding{}

	switch {
	case cmd.InputPath != "":
		fd, err := os.Open(cmd.InputPath)
		if err != nil {
			return nil, fmt.Errorf("cannot open %s for input", cmd.InputPath)
		}
		b.stdin = fd
	case backgroundEligible:
		fd, err := os.Open(os.DevNull)
		if err != nil {
			return nil, fmt.Errorf("cannot open %s for input", os.DevNull)
		}
		b.stdin = fd
	}

	switch {
	case cmd.OutputPath != "":
		fd, err := os.OpenFile(cmd.OutputPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0666)
		if err != nil {
			b.close()
			return nil, fmt.Errorf("cannot open %s for output", cmd.OutputPath)
		}
		b.stdout = fd
	case backgroundEligible:
		fd, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
		if err != nil {
			b.close()
			return nil, fmt.Errorf("cannot open %s for output", os.DevNull)
		}
		b.stdout = fd
	}

	return b, nil
}
