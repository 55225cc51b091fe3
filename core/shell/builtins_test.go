package shell

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minish-sh/minish/core/history"
	"github.com/minish-sh/minish/core/proc"
)

func TestAllBuiltinsRegistered(t *testing.T) {
	for _, name := range []string{"cd", "exit", "help", "history", "status"} {
		assert.Contains(t, AllBuiltins, name)
		assert.Contains(t, builtinUsage, name, "every builtin needs a help line")
	}
	assert.Len(t, AllBuiltins, 5)
}

func TestCd(t *testing.T) {
	orig, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(orig)

	t.Run("changes to the named directory", func(t *testing.T) {
		dir := t.TempDir()
		h := newTestShell(t, "")

		ret := Cd(h.Shell, []string{"cd", dir})
		assert.Zero(t, ret)

		wd, err := os.Getwd()
		require.NoError(t, err)
		resolved, err := filepath.EvalSymlinks(dir)
		require.NoError(t, err)
		assert.Equal(t, resolved, wd)
	})

	t.Run("defaults to the home directory", func(t *testing.T) {
		home, err := os.UserHomeDir()
		require.NoError(t, err)
		h := newTestShell(t, "")

		ret := Cd(h.Shell, []string{"cd"})
		assert.Zero(t, ret)

		wd, err := os.Getwd()
		require.NoError(t, err)
		resolved, err := filepath.EvalSymlinks(home)
		require.NoError(t, err)
		assert.Equal(t, resolved, wd)
	})

	t.Run("rejects extra arguments", func(t *testing.T) {
		h := newTestShell(t, "")

		ret := Cd(h.Shell, []string{"cd", "/tmp", "/var"})
		assert.Equal(t, 1, ret)
		assert.Equal(t, "cd: too many arguments\n", h.errOut.String())
	})

	t.Run("reports a missing target", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "absent")
		h := newTestShell(t, "")

		ret := Cd(h.Shell, []string{"cd", path})
		assert.Equal(t, 1, ret)
		assert.Contains(t, h.errOut.String(), "cd: ")
		assert.Contains(t, h.errOut.String(), "no such file or directory")
	})
}

func TestExit(t *testing.T) {
	h := newTestShell(t, "")

	ret := Exit(h.Shell, []string{"exit"})
	assert.Zero(t, ret)
	assert.True(t, h.quit)
}

func TestStatus(t *testing.T) {
	cases := []struct {
		name     string
		status   proc.Status
		expected string
	}{
		{"fresh shell", proc.Status{}, "exit value 0\n"},
		{"after a failure", proc.ExitStatus(2), "exit value 2\n"},
		{"after a signal", proc.Status{Value: 15, Signaled: true}, "terminated by signal 15\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newTestShell(t, "")
			h.lastStatus = tc.status

			ret := Status(h.Shell, []string{"status"})
			assert.Zero(t, ret)
			assert.Equal(t, tc.expected, h.out.String())
		})
	}
}

func TestHistoryBuiltin(t *testing.T) {
	seed := func(t *testing.T, lines ...string) *fakeHistory {
		t.Helper()
		store := &fakeHistory{}
		for _, line := range lines {
			_, err := store.AddEntry(context.Background(), history.Entry{Line: line})
			require.NoError(t, err)
		}
		return store
	}

	t.Run("prints numbered recent entries", func(t *testing.T) {
		store := seed(t, "ls", "pwd", "echo hi")
		h := newTestShell(t, "", func(c *Config) { c.History = store })

		ret := History(h.Shell, []string{"history"})
		assert.Zero(t, ret)
		assert.Equal(t, "    1  ls\n    2  pwd\n    3  echo hi\n", h.out.String())
	})

	t.Run("caps the output with -n", func(t *testing.T) {
		store := seed(t, "ls", "pwd", "echo hi")
		h := newTestShell(t, "", func(c *Config) { c.History = store })

		ret := History(h.Shell, []string{"history", "-n", "2"})
		assert.Zero(t, ret)
		assert.Equal(t, "    2  pwd\n    3  echo hi\n", h.out.String())
	})

	t.Run("requires a configured store", func(t *testing.T) {
		h := newTestShell(t, "")

		ret := History(h.Shell, []string{"history"})
		assert.Equal(t, 1, ret)
		assert.Equal(t, "history: no history store is configured\n", h.errOut.String())
	})

	t.Run("reports store failures", func(t *testing.T) {
		store := &fakeHistory{fail: errors.New("database locked")}
		h := newTestShell(t, "", func(c *Config) { c.History = store })

		ret := History(h.Shell, []string{"history"})
		assert.Equal(t, 1, ret)
		assert.Equal(t, "history: database locked\n", h.errOut.String())
	})

	t.Run("help", func(t *testing.T) {
		h := newTestShell(t, "")

		ret := History(h.Shell, []string{"history", "--help"})
		assert.Equal(t, 1, ret)
		assert.Contains(t, h.errOut.String(), "Display the command history with entry numbers.")
		assert.Contains(t, h.errOut.String(), "Options:")
	})

	t.Run("unknown flag", func(t *testing.T) {
		h := newTestShell(t, "")

		ret := History(h.Shell, []string{"history", "-z"})
		assert.Equal(t, 1, ret)
		assert.Contains(t, h.errOut.String(), "Options:")
	})
}

func TestHelp(t *testing.T) {
	t.Run("list", func(t *testing.T) {
		h := newTestShell(t, "")

		ret := Help(h.Shell, []string{"help"})
		assert.Zero(t, ret)

		g := goldie.New(t,
			goldie.WithFixtureDir(filepath.Join("testdata", "golden")),
			goldie.WithDiffEngine(goldie.ColoredDiff),
			goldie.WithTestNameForDir(true),
		)
		g.Assert(t, "list", h.out.Bytes())
	})

	t.Run("named builtin", func(t *testing.T) {
		h := newTestShell(t, "")

		ret := Help(h.Shell, []string{"help", "cd"})
		assert.Zero(t, ret)
		assert.Equal(t, "cd [DIR]: change the working directory, defaulting to $HOME\n", h.out.String())
	})

	t.Run("unknown name", func(t *testing.T) {
		h := newTestShell(t, "")

		ret := Help(h.Shell, []string{"help", "bogus"})
		assert.Equal(t, 1, ret)
		assert.Equal(t, "help: no help for \"bogus\"\n", h.errOut.String())
	})
}
