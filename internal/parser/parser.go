// Package parser implements a recursive-descent parser with per-tier
// precedence climbing, modeled on CWBudde-go-dws's internal/parser: a
// synchronize()-based panic-mode recovery so a single pass reports every
// statement-level error in a file, and a cursor over a pre-scanned token
// slice rather than a pull-based lexer.
package parser

import (
	"fmt"

	"github.com/lonelycoder306/plox/internal/ast"
	"github.com/lonelycoder306/plox/internal/diag"
	"github.com/lonelycoder306/plox/internal/scanner"
	"github.com/lonelycoder306/plox/internal/source"
	"github.com/lonelycoder306/plox/internal/token"
)

// Parser builds an AST from a token stream.
type Parser struct {
	tokens  []token.Token
	current int
	errors  diag.Bag
	loader  source.Loader

	loopStack []ast.LoopKind
	// funcDepth/classDepth are not needed for parsing (the resolver owns
	// semantic legality); the parser only needs the loop stack to reject
	// break/continue outside any loop and to tag them with their kind.
}

// New creates a Parser over pre-scanned tokens. loader resolves GetLib and
// GetFile inclusions; it may be nil if the source never uses them.
func New(tokens []token.Token, loader source.Loader) *Parser {
	return &Parser{tokens: tokens, loader: loader}
}

// Errors returns the accumulated parse errors (and any warnings queued by
// the parser itself, such as code-after-return).
func (p *Parser) Errors() *diag.Bag { return &p.errors }

// ParseProgram parses the whole token stream into a statement list,
// continuing past errors via statement-boundary synchronization so that
// every syntax error in the unit is reported in one pass (§4.2).
func (p *Parser) ParseProgram() []ast.Stmt {
	var stmts []ast.Stmt
	for !p.isAtEnd() {
		stmt := p.declaration()
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}

// ---- token cursor helpers ----

func (p *Parser) peek() token.Token { return p.tokens[p.current] }

func (p *Parser) peekAt(n int) token.Token {
	idx := p.current + n
	if idx >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[idx]
}

func (p *Parser) previous() token.Token { return p.tokens[p.current-1] }

func (p *Parser) isAtEnd() bool { return p.peek().Type == token.EOF }

func (p *Parser) advance() token.Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) check(t token.Type) bool {
	if p.isAtEnd() {
		return t == token.EOF
	}
	return p.peek().Type == t
}

func (p *Parser) match(types ...token.Type) bool {
	for _, t := range types {
		if p.check(t) {
			p.advance()
			return true
		}
	}
	return false
}

// consume advances past an expected token type or records a ParseError.
func (p *Parser) consume(t token.Type, message string) token.Token {
	if p.check(t) {
		return p.advance()
	}
	p.errorAtCurrent(message)
	return p.peek()
}

func (p *Parser) errorAtCurrent(message string) {
	tok := p.peek()
	d := diag.New(diag.Parse, tok.Pos, message)
	if tok.Type == token.EOF {
		d.WithEnd()
	} else {
		d.WithLexeme(tok.Lexeme)
	}
	p.errors.Add(d)
}

func (p *Parser) errorAtToken(tok token.Token, message string) {
	d := diag.New(diag.Parse, tok.Pos, message)
	if tok.Type == token.EOF {
		d.WithEnd()
	} else {
		d.WithLexeme(tok.Lexeme)
	}
	p.errors.Add(d)
}

// synchronize discards tokens until a statement boundary so parsing can
// resume after an error (panic-mode recovery, §4.2).
func (p *Parser) synchronize() {
	p.advance()
	for !p.isAtEnd() {
		if p.previous().Type == token.SEMICOLON {
			return
		}
		switch p.peek().Type {
		case token.CLASS, token.FUN, token.VAR, token.FIX, token.LIST, token.FOR,
			token.IF, token.WHILE, token.PRINT, token.RETURN, token.GROUP,
			token.MATCH, token.ATTEMPT, token.REPORT:
			return
		}
		p.advance()
	}
}

// spliceTokens inserts tok (scanned from an included source unit, EOF
// stripped) at the current position, implementing GetLib/GetFile's
// compile-time inclusion (§4.2, §6).
func (p *Parser) spliceTokens(included []token.Token) {
	if len(included) > 0 && included[len(included)-1].Type == token.EOF {
		included = included[:len(included)-1]
	}
	rest := make([]token.Token, 0, len(included)+len(p.tokens)-p.current)
	rest = append(rest, included...)
	rest = append(rest, p.tokens[p.current:]...)
	p.tokens = append(p.tokens[:p.current], rest...)
}

func (p *Parser) loadAndSplice(kind string, nameTok token.Token) {
	name, _ := nameTok.Literal.(string)
	if p.loader == nil {
		p.errorAtToken(nameTok, fmt.Sprintf("%s %q requires a source loader, none configured", kind, name))
		return
	}
	text, err := p.loader.Load(name)
	if err != nil {
		p.errorAtToken(nameTok, fmt.Sprintf("%s %q: %v", kind, name, err))
		return
	}
	included := scanner.New(text, name).ScanTokens()
	p.spliceTokens(included)
}
