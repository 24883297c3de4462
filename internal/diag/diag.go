// Package diag formats diagnostics (scan/parse/static/runtime/recursion
// errors and warnings) in the source-line-plus-caret style used throughout
// the driver. Modeled on CWBudde-go-dws's internal/errors.CompilerError.
package diag

import (
	"fmt"
	"strings"

	"github.com/lonelycoder306/plox/internal/token"
)

// Kind is the diagnostic taxonomy from the error-handling design: Scan,
// Parse, Static, Runtime, User, Recursion, plus Warning for non-fatal
// static/runtime notices.
type Kind string

const (
	Scan      Kind = "Scan"
	Parse     Kind = "Parse"
	Static    Kind = "Static"
	Runtime   Kind = "Runtime"
	User      Kind = "User"
	Recursion Kind = "Recursion"
	Warning   Kind = "Warning"
)

// Diagnostic is a single reported error or warning with enough context to
// render the authoritative diagnostic format from the external-interfaces
// section: "<Kind> error[ at '<lexeme>' | at end] [\"<file>\", line L, C]: msg"
// plus an optional source line and caret span.
type Diagnostic struct {
	Kind     Kind
	Message  string
	Pos      token.Position
	AtLexeme string // "" means position-only; "end" is a sentinel for EOF
	AtEnd    bool
	Span     int // caret width; 0 defaults to 1
}

func New(kind Kind, pos token.Position, message string) *Diagnostic {
	return &Diagnostic{Kind: kind, Pos: pos, Message: message}
}

func (d *Diagnostic) WithLexeme(lexeme string) *Diagnostic {
	d.AtLexeme = lexeme
	return d
}

func (d *Diagnostic) WithEnd() *Diagnostic {
	d.AtEnd = true
	return d
}

func (d *Diagnostic) WithSpan(n int) *Diagnostic {
	d.Span = n
	return d
}

func (d *Diagnostic) Error() string { return d.Format(false, "") }

// Format renders the diagnostic. When linepos is false (debug mode, §4.6)
// only "<Kind> error[ at ...]: message" is produced, eliding position and
// source context, matching the debugger's elided error formatting.
func (d *Diagnostic) Format(linepos bool, sourceLine string) string {
	var sb strings.Builder

	sb.WriteString(string(d.Kind))
	sb.WriteString(" error")
	switch {
	case d.AtEnd:
		sb.WriteString(" at end")
	case d.AtLexeme != "":
		sb.WriteString(fmt.Sprintf(" at '%s'", d.AtLexeme))
	}

	if linepos {
		if d.Pos.File != "" {
			sb.WriteString(fmt.Sprintf(" [%q, line %d, %d", d.Pos.File, d.Pos.Line, d.Pos.Column))
		} else {
			sb.WriteString(fmt.Sprintf(" [line %d, %d", d.Pos.Line, d.Pos.Column))
		}
		if d.Span > 1 {
			sb.WriteString(fmt.Sprintf("-%d", d.Pos.Column+d.Span-1))
		}
		sb.WriteString("]")
	}

	sb.WriteString(": ")
	sb.WriteString(d.Message)

	if linepos && sourceLine != "" {
		span := d.Span
		if span < 1 {
			span = 1
		}
		sb.WriteString(fmt.Sprintf("\n%d |\t%s\n", d.Pos.Line, sourceLine))
		pad := strings.Repeat(" ", d.Pos.Column-1)
		sb.WriteString(fmt.Sprintf(" %d |\t%s%s\n", d.Pos.Line, pad, strings.Repeat("^", span)))
	}

	return sb.String()
}

// Bag accumulates diagnostics for a single pipeline stage (scan, parse, or
// resolve), mirroring the parser's append-and-synchronize error-recovery
// policy: a stage keeps going after an error so every problem in the file
// is reported in one pass.
type Bag struct {
	items []*Diagnostic
}

func (b *Bag) Add(d *Diagnostic) { b.items = append(b.items, d) }

func (b *Bag) HasErrors() bool {
	for _, d := range b.items {
		if d.Kind != Warning {
			return true
		}
	}
	return false
}

func (b *Bag) Items() []*Diagnostic { return b.items }

func (b *Bag) Len() int { return len(b.items) }

// Reset clears the bag for reuse between REPL lines, so one bad line's
// diagnostics don't bleed into the next (§7 propagation policy: the REPL
// discards only the current line).
func (b *Bag) Reset() { b.items = nil }
