package shell

import (
	"strconv"
	"strings"
)

// selfRefToken is replaced by the shell's PID before parsing.
const selfRefToken = "$$"

// Expand substitutes every occurrence of the self-reference token with the
// decimal process ID, scanning left to right without overlap. All other
// characters pass through verbatim, so a line without the token comes back
// unchanged.
func Expand(line string, pid int) string {
	if !strings.Contains(line, selfRefToken) {
		return line
	}
	return strings.ReplaceAll(line, selfRefToken, strconv.Itoa(pid))
}
