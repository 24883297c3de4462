package parser

import (
	"github.com/lonelycoder306/plox/internal/ast"
	"github.com/lonelycoder306/plox/internal/diag"
	"github.com/lonelycoder306/plox/internal/token"
)

func (p *Parser) statement() ast.Stmt {
	switch {
	case p.match(token.PRINT):
		return p.printStmt()
	case p.match(token.LBRACE):
		return &ast.BlockStmt{LBrace: p.previous(), Statements: p.block()}
	case p.match(token.IF):
		return p.ifStmt()
	case p.match(token.WHILE):
		return p.whileStmt()
	case p.match(token.FOR):
		return p.forStmt()
	case p.match(token.BREAK):
		return p.breakStmt()
	case p.match(token.CONTINUE):
		return p.continueStmt()
	case p.match(token.RETURN):
		return p.returnStmt()
	case p.match(token.MATCH):
		return p.matchStmt()
	case p.match(token.ATTEMPT):
		return p.attemptStmt()
	case p.match(token.REPORT):
		return p.reportStmt()
	case p.match(token.SAFE):
		return p.safeStmt()
	default:
		return p.exprStmt()
	}
}

func (p *Parser) exprStmt() ast.Stmt {
	expr := p.expression()
	p.consume(token.SEMICOLON, "expect ';' after expression")
	return &ast.ExpressionStmt{Expression: expr}
}

func (p *Parser) printStmt() ast.Stmt {
	keyword := p.previous()
	value := p.expression()
	p.consume(token.SEMICOLON, "expect ';' after value")
	return &ast.PrintStmt{Keyword: keyword, Expression: value}
}

// block parses statements up to (and consuming) the closing '}'. It also
// emits the code-after-return warning (§4.2): a return followed by further
// statements in the same block.
func (p *Parser) block() []ast.Stmt {
	var stmts []ast.Stmt
	returnSeen := false
	for !p.check(token.RBRACE) && !p.isAtEnd() {
		stmt := p.declaration()
		if stmt == nil {
			continue
		}
		if returnSeen {
			p.errors.Add(diag.New(diag.Warning, stmt.Pos(), "code after return is unreachable"))
			returnSeen = false
		}
		if _, ok := stmt.(*ast.ReturnStmt); ok {
			returnSeen = true
		}
		stmts = append(stmts, stmt)
	}
	p.consume(token.RBRACE, "expect '}' after block")
	return stmts
}

func (p *Parser) ifStmt() ast.Stmt {
	keyword := p.previous()
	p.consume(token.LPAREN, "expect '(' after 'if'")
	cond := p.expression()
	p.consume(token.RPAREN, "expect ')' after if condition")
	then := p.statement()
	var els ast.Stmt
	if p.match(token.ELSE) {
		els = p.statement()
	}
	return &ast.IfStmt{Keyword: keyword, Condition: cond, ThenBranch: then, ElseBranch: els}
}

func (p *Parser) pushLoop(kind ast.LoopKind) { p.loopStack = append(p.loopStack, kind) }
func (p *Parser) popLoop()                    { p.loopStack = p.loopStack[:len(p.loopStack)-1] }
func (p *Parser) currentLoop() (ast.LoopKind, bool) {
	if len(p.loopStack) == 0 {
		return 0, false
	}
	return p.loopStack[len(p.loopStack)-1], true
}

func (p *Parser) whileStmt() ast.Stmt {
	keyword := p.previous()
	p.consume(token.LPAREN, "expect '(' after 'while'")
	cond := p.expression()
	p.consume(token.RPAREN, "expect ')' after while condition")
	p.pushLoop(ast.LoopWhile)
	body := p.statement()
	p.popLoop()
	return &ast.WhileStmt{Keyword: keyword, Condition: cond, Body: body}
}

// forStmt implements §4.2's two for-loop forms: classic C-style
// `for (init; cond; incr) body`, and the iterator form
// `for ((var)? x : iterable) body`, both desugared into a while loop that
// carries the increment in WhileStmt.ForIncrement rather than in its body,
// so `continue` inside a for-loop still runs it before re-testing the
// condition.
func (p *Parser) forStmt() ast.Stmt {
	keyword := p.previous()
	p.consume(token.LPAREN, "expect '(' after 'for'")

	if p.isIteratorFor() {
		return p.iteratorForStmt(keyword)
	}

	var initializer ast.Stmt
	switch {
	case p.match(token.SEMICOLON):
		initializer = nil
	case p.match(token.VAR):
		initializer = p.varDecl(ast.AccessVar)
	default:
		initializer = p.exprStmt()
	}

	var condition ast.Expr
	if !p.check(token.SEMICOLON) {
		condition = p.expression()
	} else {
		condition = &ast.Literal{Token: p.peek(), Value: true}
	}
	p.consume(token.SEMICOLON, "expect ';' after loop condition")

	var increment ast.Expr
	if !p.check(token.RPAREN) {
		increment = p.expression()
	}
	p.consume(token.RPAREN, "expect ')' after for clauses")

	p.pushLoop(ast.LoopFor)
	body := p.statement()
	p.popLoop()

	whileStmt := &ast.WhileStmt{Keyword: keyword, Condition: condition, Body: body, ForIncrement: increment}

	if initializer == nil {
		return whileStmt
	}
	return &ast.BlockStmt{LBrace: keyword, Statements: []ast.Stmt{initializer, whileStmt}}
}

// isIteratorFor looks ahead, without consuming, to tell `for (var x : xs)` /
// `for (x : xs)` apart from the classic three-clause form.
func (p *Parser) isIteratorFor() bool {
	offset := 0
	if p.peekAt(offset).Type == token.VAR {
		offset++
	}
	return p.peekAt(offset).Type == token.IDENTIFIER && p.peekAt(offset+1).Type == token.COLON
}

func (p *Parser) iteratorForStmt(keyword token.Token) ast.Stmt {
	p.match(token.VAR) // optional, both spellings desugar identically
	elemName := p.consume(token.IDENTIFIER, "expect loop variable name")
	p.consume(token.COLON, "expect ':' after loop variable")
	iterable := p.expression()
	p.consume(token.RPAREN, "expect ')' after for-in clause")

	p.pushLoop(ast.LoopFor)
	body := p.statement()
	p.popLoop()

	idxName := token.New(token.IDENTIFIER, "__idx", nil, keyword.Pos)
	idxInit := &ast.VarStmt{Name: idxName, Initializer: &ast.Literal{Token: keyword, Value: 0.0}, Access: ast.AccessVar}

	lengthCall := &ast.Call{
		Callee:     &ast.Variable{Name: token.New(token.IDENTIFIER, "length", nil, keyword.Pos)},
		LeftParen:  keyword,
		RightParen: keyword,
		Arguments:  []ast.Expr{iterable},
	}
	cond := &ast.Binary{
		Left:     &ast.Variable{Name: idxName},
		Operator: token.New(token.LESS, "<", nil, keyword.Pos),
		Right:    lengthCall,
	}

	elemInit := &ast.VarStmt{
		Name: elemName,
		Initializer: &ast.Access{
			Object:  iterable,
			Bracket: keyword,
			Start:   &ast.Variable{Name: idxName},
		},
		Access: ast.AccessVar,
	}

	increment := &ast.Assign{
		Name: idxName,
		Value: &ast.Binary{
			Left:     &ast.Variable{Name: idxName},
			Operator: token.New(token.PLUS, "+", nil, keyword.Pos),
			Right:    &ast.Literal{Token: keyword, Value: 1.0},
		},
	}

	loopBody := &ast.BlockStmt{LBrace: keyword, Statements: []ast.Stmt{elemInit, body}}
	whileStmt := &ast.WhileStmt{Keyword: keyword, Condition: cond, Body: loopBody, ForIncrement: increment}
	return &ast.BlockStmt{LBrace: keyword, Statements: []ast.Stmt{idxInit, whileStmt}}
}

func (p *Parser) breakStmt() ast.Stmt {
	keyword := p.previous()
	kind, ok := p.currentLoop()
	if !ok {
		p.errorAtToken(keyword, "'break' outside of a loop")
	}
	p.consume(token.SEMICOLON, "expect ';' after 'break'")
	return &ast.BreakStmt{Keyword: keyword, Loop: kind}
}

func (p *Parser) continueStmt() ast.Stmt {
	keyword := p.previous()
	kind, ok := p.currentLoop()
	if !ok {
		p.errorAtToken(keyword, "'continue' outside of a loop")
	}
	p.consume(token.SEMICOLON, "expect ';' after 'continue'")
	return &ast.ContinueStmt{Keyword: keyword, Loop: kind}
}

func (p *Parser) returnStmt() ast.Stmt {
	keyword := p.previous()
	var value ast.Expr
	if !p.check(token.SEMICOLON) {
		value = p.expression()
	}
	p.consume(token.SEMICOLON, "expect ';' after return value")
	return &ast.ReturnStmt{Keyword: keyword, Value: value}
}

// matchStmt parses `match(value) is case: stmt [fallthrough|end] ... is ?: default`.
// A case tagged both fallthrough and end is an ambiguous ParseError (§4.5).
func (p *Parser) matchStmt() ast.Stmt {
	keyword := p.previous()
	p.consume(token.LPAREN, "expect '(' after 'match'")
	value := p.expression()
	p.consume(token.RPAREN, "expect ')' after match value")

	stmt := &ast.MatchStmt{Keyword: keyword, Value: value}
	for p.match(token.IS) {
		var c ast.MatchCase
		if p.match(token.QUESTION) {
			c.Default = true
		} else {
			c.Value = p.expression()
		}
		p.consume(token.COLON, "expect ':' after match case")
		for !p.check(token.IS) && !p.check(token.FALLTHROUGH) && !p.check(token.END) && !p.isAtEnd() {
			s := p.declaration()
			if s != nil {
				c.Body = append(c.Body, s)
			}
		}
		fall := p.match(token.FALLTHROUGH)
		end := p.match(token.END)
		if fall && end {
			p.errorAtToken(p.previous(), "'fallthrough' and 'end' cannot both tag the same case")
		}
		c.Fall, c.EndTag = fall, end
		stmt.Cases = append(stmt.Cases, c)
	}
	return stmt
}

// attemptStmt parses `attempt body [handle (E1, E2, ...)] handlerBody`.
func (p *Parser) attemptStmt() ast.Stmt {
	keyword := p.previous()
	tryBody := p.statement()
	p.consume(token.HANDLE, "expect 'handle' after attempt body")

	var filter []token.Token
	if p.match(token.LPAREN) {
		if !p.check(token.RPAREN) {
			filter = append(filter, p.consume(token.IDENTIFIER, "expect error class name"))
			for p.match(token.COMMA) {
				filter = append(filter, p.consume(token.IDENTIFIER, "expect error class name"))
			}
		}
		p.consume(token.RPAREN, "expect ')' after handle filter")
	}
	handlerBody := p.statement()
	return &ast.ErrorStmt{Keyword: keyword, TryBody: tryBody, Filter: filter, HandlerBody: handlerBody}
}

func (p *Parser) reportStmt() ast.Stmt {
	keyword := p.previous()
	value := p.expression()
	p.consume(token.SEMICOLON, "expect ';' after report value")
	return &ast.ReportStmt{Keyword: keyword, Value: value}
}

// safeStmt parses `safe this.field = value;` — a tail-position private field
// initialization, legal only inside `init` (enforced by the resolver).
func (p *Parser) safeStmt() ast.Stmt {
	expr := p.expression()
	p.consume(token.SEMICOLON, "expect ';' after safe initialization")

	set, ok := expr.(*ast.Set)
	if !ok {
		p.errorAtToken(p.previous(), "'safe' requires a field-initialization expression")
		return &ast.ExpressionStmt{Expression: expr}
	}
	set.Visibility = ast.Private
	return &ast.ExpressionStmt{Expression: set}
}
