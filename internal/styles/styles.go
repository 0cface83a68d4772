// Package styles colors the messages linecomp prints outside the line
// editor.
package styles

import (
	"io"
	"os"

	"github.com/muesli/termenv"
)

var (
	stdout = termenv.NewOutput(os.Stdout)
	stderr = termenv.NewOutput(os.Stderr)

	// ERROR colors error messages written to stderr.
	ERROR = func(s string) string {
		return stderr.String(s).
			Foreground(stderr.Color("9")).
			String()
	}
	// DIM colors secondary details such as timestamps.
	DIM = func(s string) string {
		return stdout.String(s).
			Foreground(stdout.Color("8")).
			String()
	}
	// HIGHLIGHT colors the part of a line the user asked about.
	HIGHLIGHT = func(s string) string {
		return stdout.String(s).
			Foreground(stdout.Color("11")).
			Bold().
			String()
	}
)

// Highlight wraps the runes of s starting at the given byte offsets with
// HIGHLIGHT.
func Highlight(s string, indexes []int) string {
	if len(indexes) == 0 {
		return s
	}
	marked := make(map[int]bool, len(indexes))
	for _, i := range indexes {
		marked[i] = true
	}

	var out []byte
	for i, r := range s {
		if marked[i] {
			out = append(out, HIGHLIGHT(string(r))...)
		} else {
			out = append(out, string(r)...)
		}
	}
	return string(out)
}

// SetOutput points the styles at w, which decides the color profile.
func SetOutput(w io.Writer) {
	stdout = termenv.NewOutput(w)
	stderr = termenv.NewOutput(w)
}
