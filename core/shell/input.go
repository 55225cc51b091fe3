package shell

import (
	"bufio"
	"io"
	"strings"

	"github.com/abiosoft/readline"
)

// Prompt precedes every interactive read.
const Prompt = ": "

// LineReader supplies raw input lines without their trailing newline. An
// io.EOF return means the input is exhausted and the shell should wind
// down the same way the exit keyword does.
type LineReader interface {
	ReadLine() (string, error)
	Close() error
}

// PromptReader reads cooked-mode lines, printing the prompt before each
// read. Cooked mode matters here: a raw-mode editor would swallow ^C and
// ^Z as input bytes instead of letting the terminal raise the signals the
// shell's overrides are built on.
type PromptReader struct {
	out    io.Writer
	in     *bufio.Reader
	closer io.Closer
}

// NewPromptReader wraps the shell's input and output streams. When in can
// be closed, Close does so to unblock a pending read.
func NewPromptReader(in io.Reader, out io.Writer) *PromptReader {
	pr := &PromptReader{out: out, in: bufio.NewReader(in)}
	if c, ok := in.(io.Closer); ok {
		pr.closer = c
	}
	return pr
}

// ReadLine prints the prompt and blocks for one line. A final unterminated
// line is delivered before io.EOF.
func (r *PromptReader) ReadLine() (string, error) {
	io.WriteString(r.out, Prompt)
	line, err := r.in.ReadString('\n')
	if err != nil {
		if err == io.EOF && line != "" {
			return line, nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Close closes the underlying input when possible.
func (r *PromptReader) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

// EditorReader is a readline-backed LineReader with history and line
// editing. It owns the terminal in raw mode, so only sessions that skip
// the signal overrides (the playground) use it.
type EditorReader struct {
	rl *readline.Instance
}

// NewEditorReader creates a line editor persisting history to historyFile.
func NewEditorReader(historyFile string) (*EditorReader, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:      Prompt,
		HistoryFile: historyFile,
	})
	if err != nil {
		return nil, err
	}
	return &EditorReader{rl: rl}, nil
}

// ReadLine returns the next edited line. An interrupt clears the line and
// delivers an empty one, matching the usual editor behavior.
func (r *EditorReader) ReadLine() (string, error) {
	line, err := r.rl.Readline()
	switch {
	case err == readline.ErrInterrupt:
		return "", nil
	case err != nil:
		return "", err
	}
	return line, nil
}

// Close releases the terminal.
func (r *EditorReader) Close() error {
	return r.rl.Close()
}
