package shell

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptReader(t *testing.T) {
	t.Run("prompts before every line", func(t *testing.T) {
		out := &bytes.Buffer{}
		r := NewPromptReader(strings.NewReader("first\nsecond\n"), out)

		line, err := r.ReadLine()
		assert.NoError(t, err)
		assert.Equal(t, "first", line)

		line, err = r.ReadLine()
		assert.NoError(t, err)
		assert.Equal(t, "second", line)

		assert.Equal(t, Prompt+Prompt, out.String())
	})

	t.Run("strips carriage returns", func(t *testing.T) {
		r := NewPromptReader(strings.NewReader("dir\r\n"), io.Discard)

		line, err := r.ReadLine()
		assert.NoError(t, err)
		assert.Equal(t, "dir", line)
	})

	t.Run("delivers a final unterminated line", func(t *testing.T) {
		r := NewPromptReader(strings.NewReader("last"), io.Discard)

		line, err := r.ReadLine()
		assert.NoError(t, err)
		assert.Equal(t, "last", line)

		_, err = r.ReadLine()
		assert.ErrorIs(t, err, io.EOF)
	})

	t.Run("reports eof on empty input", func(t *testing.T) {
		out := &bytes.Buffer{}
		r := NewPromptReader(strings.NewReader(""), out)

		_, err := r.ReadLine()
		assert.ErrorIs(t, err, io.EOF)
		assert.Equal(t, Prompt, out.String())
	})

	t.Run("close without a closer is a no-op", func(t *testing.T) {
		r := NewPromptReader(strings.NewReader(""), io.Discard)
		assert.NoError(t, r.Close())
	})

	t.Run("close unblocks a pending read", func(t *testing.T) {
		pr, pw := io.Pipe()
		defer pw.Close()
		r := NewPromptReader(pr, io.Discard)

		errs := make(chan error, 1)
		go func() {
			_, err := r.ReadLine()
			errs <- err
		}()

		require.NoError(t, r.Close())
		assert.Error(t, <-errs)
	})
}

func TestEditorReader(t *testing.T) {
	r, err := NewEditorReader(filepath.Join(t.TempDir(), "history"))
	require.NoError(t, err)
	assert.NoError(t, r.Close())
}
