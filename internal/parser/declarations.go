package parser

import (
	"github.com/lonelycoder306/plox/internal/ast"
	"github.com/lonelycoder306/plox/internal/diag"
	"github.com/lonelycoder306/plox/internal/token"
)

// declaration dispatches to the declaration-level productions, falling
// through to statement() for everything else, and synchronizes on error so
// one bad statement doesn't abort the whole parse (§4.2).
func (p *Parser) declaration() (stmt ast.Stmt) {
	defer func() {
		if stmt == nil {
			return
		}
	}()

	before := p.errors.Len()
	var result ast.Stmt
	switch {
	case p.match(token.CLASS):
		result = p.classDecl()
	case p.check(token.FUN) && p.peekAt(1).Type == token.IDENTIFIER:
		p.advance()
		result = p.functionDecl("function")
	case p.match(token.VAR):
		result = p.varDecl(ast.AccessVar)
	case p.match(token.FIX):
		result = p.varDecl(ast.AccessFix)
	case p.match(token.LIST):
		result = p.listDecl()
	case p.match(token.GROUP):
		result = p.groupDecl()
	case p.check(token.GET_MOD), p.check(token.GET_LIB), p.check(token.GET_FILE):
		result = p.fetchStmt()
	default:
		result = p.statement()
	}

	if p.hadErrorThisStatement(before) {
		p.synchronize()
	}
	return result
}

// hadErrorThisStatement reports whether a parse error (not a warning) was
// recorded after the error bag held `before` entries.
func (p *Parser) hadErrorThisStatement(before int) bool {
	for _, d := range p.errors.Items()[before:] {
		if d.Kind != diag.Warning {
			return true
		}
	}
	return false
}

func (p *Parser) varDecl(access ast.AccessTag) ast.Stmt {
	name := p.consume(token.IDENTIFIER, "expect variable name")
	var init ast.Expr
	if p.match(token.EQUAL) {
		init = p.expression()
	}
	p.consume(token.SEMICOLON, "expect ';' after variable declaration")
	return &ast.VarStmt{Name: name, Initializer: init, Access: access}
}

func (p *Parser) listDecl() ast.Stmt {
	name := p.consume(token.IDENTIFIER, "expect list name")
	p.consume(token.EQUAL, "expect '=' after list name")
	init := p.expression()
	p.consume(token.SEMICOLON, "expect ';' after list declaration")
	return &ast.ListStmt{Name: name, Initializer: init}
}

// parseParams parses a parameter list, enforcing: defaults follow plain
// parameters only, `...` must be last and exclusive with defaults (§4.2).
func (p *Parser) parseParams() ([]ast.Param, int) {
	var params []ast.Param
	defaults := 0
	if p.check(token.RPAREN) {
		return params, defaults
	}
	seenDefault := false
	for {
		if p.match(token.DOT_DOT_DOT) {
			if seenDefault {
				p.errorAtToken(p.previous(), "'...' cannot be combined with default parameters")
			}
			// Bare `...` collector with an implicit name `vargs`.
			nameTok := token.New(token.IDENTIFIER, "vargs", nil, p.previous().Pos)
			params = append(params, ast.Param{Name: nameTok, Variadic: true})
			break
		}
		name := p.consume(token.IDENTIFIER, "expect parameter name")
		if p.match(token.DOT_DOT_DOT) {
			if seenDefault {
				p.errorAtToken(p.previous(), "'...' cannot be combined with default parameters")
			}
			params = append(params, ast.Param{Name: name, Variadic: true})
			break
		}
		if p.match(token.EQUAL) {
			def := p.ternary()
			params = append(params, ast.Param{Name: name, Default: def})
			seenDefault = true
			defaults++
		} else {
			if seenDefault {
				p.errorAtToken(name, "required parameter cannot follow a parameter with a default value")
			}
			params = append(params, ast.Param{Name: name})
		}
		if !p.match(token.COMMA) {
			break
		}
	}
	return params, defaults
}

func (p *Parser) functionDecl(kind string) *ast.FunctionStmt {
	name := p.consume(token.IDENTIFIER, "expect "+kind+" name")

	if p.check(token.LBRACE) {
		// Getter: `name { body }`, no parameter list, invoked automatically
		// on `.name` access.
		p.consume(token.LBRACE, "expect '{' before getter body")
		body := p.block()
		return &ast.FunctionStmt{Name: name, Body: body, IsGetter: true}
	}

	p.consume(token.LPAREN, "expect '(' after "+kind+" name")
	params, defaults := p.parseParams()
	p.consume(token.RPAREN, "expect ')' after parameters")
	p.consume(token.LBRACE, "expect '{' before "+kind+" body")
	body := p.block()
	return &ast.FunctionStmt{Name: name, Params: params, Body: body, DefaultCount: defaults}
}

// classDecl parses `class Name (< Super)? { members }`. Member visibility
// syntax is not specified by the source spec's closed keyword set (no
// `private`/`public`/`static` tokens exist); resolved per DESIGN.md as: a
// leading underscore on a method name marks it private, a leading `class`
// keyword marks a class/static method, and everything else is a public
// instance method.
func (p *Parser) classDecl() ast.Stmt {
	name := p.consume(token.IDENTIFIER, "expect class name")

	var superclass *ast.Variable
	if p.match(token.LESS) {
		superName := p.consume(token.IDENTIFIER, "expect superclass name")
		superclass = &ast.Variable{Name: superName}
	}

	p.consume(token.LBRACE, "expect '{' before class body")

	stmt := &ast.ClassStmt{Name: name, Superclass: superclass}
	for !p.check(token.RBRACE) && !p.isAtEnd() {
		if p.match(token.CLASS) {
			stmt.ClassMethods = append(stmt.ClassMethods, p.functionDecl("class method"))
			continue
		}
		method := p.functionDecl("method")
		if len(method.Name.Lexeme) > 0 && method.Name.Lexeme[0] == '_' {
			stmt.PrivateMethods = append(stmt.PrivateMethods, method)
		} else {
			stmt.PublicMethods = append(stmt.PublicMethods, method)
		}
	}
	p.consume(token.RBRACE, "expect '}' after class body")
	return stmt
}

func (p *Parser) groupDecl() ast.Stmt {
	name := p.consume(token.IDENTIFIER, "expect group name")
	p.consume(token.LBRACE, "expect '{' before group body")

	group := &ast.GroupStmt{Name: name}
	for !p.check(token.RBRACE) && !p.isAtEnd() {
		switch {
		case p.match(token.VAR):
			group.Vars = append(group.Vars, p.varDecl(ast.AccessVar).(*ast.VarStmt))
		case p.match(token.FIX):
			group.Vars = append(group.Vars, p.varDecl(ast.AccessFix).(*ast.VarStmt))
		case p.match(token.FUN):
			group.Functions = append(group.Functions, p.functionDecl("function"))
		case p.match(token.CLASS):
			group.Classes = append(group.Classes, p.classDecl().(*ast.ClassStmt))
		default:
			p.errorAtCurrent("expect var, fix, fun, or class declaration in group body")
			p.advance()
		}
	}
	p.consume(token.RBRACE, "expect '}' after group body")
	return group
}

func (p *Parser) fetchStmt() ast.Stmt {
	tok := p.advance()
	var kind ast.FetchKind
	var label string
	switch tok.Type {
	case token.GET_MOD:
		kind, label = ast.FetchMod, "module"
	case token.GET_LIB:
		kind, label = ast.FetchLib, "library"
	case token.GET_FILE:
		kind, label = ast.FetchFile, "file"
	}
	nameTok := p.consume(token.STRING, "expect string name after "+tok.Lexeme)
	p.consume(token.SEMICOLON, "expect ';' after "+tok.Lexeme+" statement")

	if tok.Type == token.GET_LIB || tok.Type == token.GET_FILE {
		p.loadAndSplice(label, nameTok)
		return nil // spliced tokens replace this statement entirely
	}

	name, _ := nameTok.Literal.(string)
	return &ast.FetchStmt{Keyword: tok, Kind: kind, Name: name}
}
