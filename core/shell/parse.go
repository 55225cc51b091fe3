package shell

import (
	"fmt"

	shlex "github.com/anmitsu/go-shlex"

	"github.com/minish-sh/minish/core/proc"
)

// Parse turns one expanded line into a structured command. The operators
// are recognized only by exact token match: a bare < takes the next token
// as the input path, a bare > the output path (later ones win), and a bare
// & in final position marks background execution and is dropped from the
// argument list. "<file" is an ordinary argument, not a redirection.
func Parse(line string) (proc.Command, error) {
	tokens, err := shlex.Split(line, true)
	if err != nil {
		return proc.Command{}, fmt.Errorf("syntax error: %v", err)
	}

	var out proc.Command
	var args []string
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		switch {
		case tok == "<" || tok == ">":
			if i+1 >= len(tokens) {
				return proc.Command{}, fmt.Errorf("syntax error: %q missing a file operand", tok)
			}
			i++
			if tok == "<" {
				out.InputPath = tokens[i]
			} else {
				out.OutputPath = tokens[i]
			}
		case tok == "&" && i == len(tokens)-1 && len(args) > 0:
			out.Background = true
		default:
			args = append(args, tok)
		}
	}

	if len(args) == 0 {
		return proc.Command{}, fmt.Errorf("syntax error: no command given")
	}
	out.Program = args[0]
	out.Args = args
	return out, nil
}
