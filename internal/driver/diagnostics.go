package driver

import (
	"io"
	"strings"

	"github.com/pterm/pterm"

	"github.com/lonelycoder306/plox/internal/diag"
)

// printDiagnostics renders every item in bag using the authoritative format
// from §6: with Opts.ErrorMode, positions and the source line + caret are
// shown; with only LinePos, positions are shown but not the source line;
// with neither (plain REPL/debug mode), only the kind/message survive
// (§4.6's "debug mode elides source positions").
func printDiagnostics(out io.Writer, bag *diag.Bag, opts Options, lines []string) {
	for _, d := range bag.Items() {
		var sourceLine string
		if opts.ErrorMode && d.Pos.Line >= 1 && d.Pos.Line <= len(lines) {
			sourceLine = lines[d.Pos.Line-1]
		}
		text := d.Format(opts.LinePos || opts.ErrorMode, sourceLine)
		if d.Kind == diag.Warning {
			pterm.Warning.WithWriter(out).Println(text)
		} else {
			pterm.Error.WithWriter(out).Println(text)
		}
	}
}

func splitLines(text string) []string {
	return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}
