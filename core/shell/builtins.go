package shell

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pborman/getopt/v2"
)

// AllBuiltins holds a list of all registered shell builtins
var AllBuiltins = make(map[string]Builtin)

// builtinUsage holds the one-line usage shown by help.
var builtinUsage = map[string]string{
	"cd":      "cd [DIR]: change the working directory, defaulting to $HOME",
	"exit":    "exit: quit the shell, killing any background jobs",
	"help":    "help [BUILTIN]: list builtins or show one builtin's usage",
	"history": "history [-n COUNT]: show recent commands, see history --help",
	"status":  "status: show how the last foreground command ended",
}

type Builtin interface {
	Main(s *Shell, args []string) int
}

type BuiltinFunc func(s *Shell, args []string) int

func (f BuiltinFunc) Main(s *Shell, args []string) int {
	return f(s, args)
}

var _ Builtin = (BuiltinFunc)(nil)

// Cd is the cd shell builtin, defaulting to the home directory.
func Cd(s *Shell, args []string) int {
	switch len(args) {
	case 1:
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(s.stderr, "%s: %v\n", args[0], err)
			return 1
		}
		args = append(args, home)
		fallthrough
	case 2:
		if err := os.Chdir(args[1]); err != nil {
			fmt.Fprintf(s.stderr, "%s: %v\n", args[0], err)
			return 1
		}
	default:
		fmt.Fprintf(s.stderr, "%s: too many arguments\n", args[0])
		return 1
	}
	return 0
}

// Exit quits the shell once the current iteration finishes.
func Exit(s *Shell, args []string) int {
	s.quit = true
	return 0
}

// Status reports how the last foreground command ended.
func Status(s *Shell, args []string) int {
	fmt.Fprintln(s.stdout, s.lastStatus)
	return 0
}

func History(s *Shell, args []string) int {
	opts := getopt.New()
	count := opts.Int('n', s.historyLimit, "show at most COUNT entries", "COUNT")
	helpOpt := opts.BoolLong("help", 'h', "show help and exit")

	if err := opts.Getopt(args, nil); err != nil || *helpOpt {
		w := s.stderr
		if err != nil {
			fmt.Fprintln(w, err)
		}
		fmt.Fprintln(w, "Display the command history with entry numbers.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Options:")
		opts.PrintOptions(w)
		return 1
	}

	if s.history == nil {
		fmt.Fprintf(s.stderr, "%s: no history store is configured\n", args[0])
		return 1
	}

	entries, err := s.history.Recent(context.Background(), *count)
	if err != nil {
		fmt.Fprintf(s.stderr, "%s: %v\n", args[0], err)
		return 1
	}
	for _, entry := range entries {
		fmt.Fprintf(s.stdout, "% 5d  %s\n", entry.ID, entry.Line)
	}
	return 0
}

func Help(s *Shell, args []string) int {
	w := s.stdout

	if len(args) > 1 {
		usage, ok := builtinUsage[args[1]]
		if !ok {
			fmt.Fprintf(s.stderr, "%s: no help for %q\n", args[0], args[1])
			return 1
		}
		fmt.Fprintln(w, usage)
		return 0
	}

	fmt.Fprintln(w, "These shell commands are defined internally.  Type `help name' for a builtin's usage.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Builtins:")
	fmt.Fprintln(w)

	var builtins []string
	for k := range AllBuiltins {
		builtins = append(builtins, k)
	}
	sort.Strings(builtins)

	fmt.Fprintln(w, strings.Join(builtins, "\n"))

	return 0
}

func init() {
	AllBuiltins["cd"] = BuiltinFunc(Cd)
	AllBuiltins["exit"] = BuiltinFunc(Exit)
	AllBuiltins["help"] = BuiltinFunc(Help)
	AllBuiltins["history"] = BuiltinFunc(History)
	AllBuiltins["status"] = BuiltinFunc(Status)
}
