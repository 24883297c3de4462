package driver

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/lonelycoder306/plox/internal/module"
	"github.com/lonelycoder306/plox/internal/source"
)

// TestREPLPersistsBindingsAndHandlesContinuation drives the real
// readline-backed loop (§6): a backslash continues a unit onto the next
// prompt, a blank line exits, and a variable bound on one line is still
// visible on a later one. Program output (from `print`) is captured on its
// own buffer, kept separate from readline's own prompt-echo writer, so the
// assertion isn't sensitive to exactly how readline renders prompts over a
// piped, non-tty input.
func TestREPLPersistsBindingsAndHandlesContinuation(t *testing.T) {
	var progOut bytes.Buffer
	p := &Pipeline{
		Loader:   source.MapLoader{},
		Registry: module.NewRegistry(),
		Out:      &progOut,
		Opts:     Options{},
	}

	input := strings.Join([]string{
		"var total = 0;",
		`fun add(n) { \`,
		"  total = total + n; \\",
		"  return total; }",
		"print add(2);",
		"print add(3);",
		"",
	}, "\n")

	code := runREPLFrom(p, strings.NewReader(input), io.Discard)
	if code != ExitOK {
		t.Fatalf("exit code = %d, want %d; output:\n%s", code, ExitOK, progOut.String())
	}
	if progOut.String() != "2\n5\n" {
		t.Errorf("output = %q, want %q", progOut.String(), "2\n5\n")
	}
}
