package parser

import (
	"github.com/lonelycoder306/plox/internal/ast"
	"github.com/lonelycoder306/plox/internal/token"
)

// expression is the top-level rule: comma.
func (p *Parser) expression() ast.Expr {
	return p.comma()
}

func (p *Parser) comma() ast.Expr {
	first := p.lambdaOrAssignment()
	if !p.check(token.COMMA) {
		return first
	}
	exprs := []ast.Expr{first}
	for p.match(token.COMMA) {
		exprs = append(exprs, p.lambdaOrAssignment())
	}
	return &ast.Comma{Expressions: exprs}
}

// lambdaOrAssignment parses a `fun(params) { body }` lambda literal, or
// falls through to assignment. This lets lambdas appear anywhere an
// argument or comma-operand is expected (§4.2 grammar).
func (p *Parser) lambdaOrAssignment() ast.Expr {
	if p.check(token.FUN) {
		return p.lambda()
	}
	return p.assignment()
}

func (p *Parser) lambda() ast.Expr {
	keyword := p.advance() // 'fun'
	p.consume(token.LPAREN, "expect '(' after 'fun'")
	params, defaults := p.parseParams()
	p.consume(token.RPAREN, "expect ')' after lambda parameters")
	p.consume(token.LBRACE, "expect '{' before lambda body")
	body := p.block()
	return &ast.Lambda{Keyword: keyword, Params: params, Body: body, DefaultCount: defaults}
}

var compoundOps = map[token.Type]token.Type{
	token.PLUS_EQUAL:  token.PLUS,
	token.MINUS_EQUAL: token.MINUS,
	token.STAR_EQUAL:  token.STAR,
	token.SLASH_EQUAL: token.SLASH,
}

func (p *Parser) assignment() ast.Expr {
	expr := p.ternary()

	if p.match(token.PLUS_PLUS, token.MINUS_MINUS) {
		op := p.previous()
		delta := token.Type(token.PLUS)
		if op.Type == token.MINUS_MINUS {
			delta = token.MINUS
		}
		one := &ast.Literal{Token: op, Value: 1.0}
		rhs := &ast.Binary{Left: expr, Operator: token.New(delta, string(delta.String()), nil, op.Pos), Right: one}
		return p.rewriteAssignTarget(expr, rhs, op)
	}

	if p.match(token.EQUAL) {
		equals := p.previous()
		value := p.assignment()
		return p.rewriteAssignTarget(expr, value, equals)
	}

	if p.match(token.PLUS_EQUAL, token.MINUS_EQUAL, token.STAR_EQUAL, token.SLASH_EQUAL) {
		op := p.previous()
		value := p.assignment()
		base := compoundOps[op.Type]
		rhs := &ast.Binary{Left: expr, Operator: token.New(base, base.String(), nil, op.Pos), Right: value}
		return p.rewriteAssignTarget(expr, rhs, op)
	}

	return expr
}

// rewriteAssignTarget implements the assignment-target rewriting rules from
// §4.2: `name = v` -> Assign; `obj.field = v` -> Set(public); `obj[i] = v`
// or `obj[a..b] = v` -> Modify. Any other target is a ParseError.
func (p *Parser) rewriteAssignTarget(target ast.Expr, value ast.Expr, at token.Token) ast.Expr {
	switch t := target.(type) {
	case *ast.Variable:
		return &ast.Assign{Name: t.Name, Value: value}
	case *ast.Get:
		return &ast.Set{Object: t.Object, Name: t.Name, Value: value, Visibility: ast.Public}
	case *ast.Access:
		return &ast.Modify{Access: t, Value: value}
	default:
		p.errorAtToken(at, "invalid assignment target")
		return target
	}
}

func (p *Parser) ternary() ast.Expr {
	expr := p.logicOr()
	for p.check(token.QUESTION) {
		qmark := p.advance()
		then := p.expression()
		p.consume(token.COLON, "expect ':' in ternary expression")
		els := p.ternary()
		expr = &ast.Ternary{Question: qmark, Condition: expr, Then: then, Else: els}
	}
	return expr
}

func (p *Parser) logicOr() ast.Expr {
	expr := p.logicAnd()
	for p.match(token.OR) {
		op := p.previous()
		right := p.logicAnd()
		expr = &ast.Logical{Left: expr, Operator: op, Right: right}
	}
	return expr
}

func (p *Parser) logicAnd() ast.Expr {
	expr := p.equality()
	for p.match(token.AND) {
		op := p.previous()
		right := p.equality()
		expr = &ast.Logical{Left: expr, Operator: op, Right: right}
	}
	return expr
}

func (p *Parser) equality() ast.Expr {
	expr := p.comparison()
	for p.match(token.BANG_EQUAL, token.EQUAL_EQUAL) {
		op := p.previous()
		right := p.comparison()
		expr = &ast.Binary{Left: expr, Operator: op, Right: right}
	}
	return expr
}

func (p *Parser) comparison() ast.Expr {
	expr := p.term()
	for p.match(token.GREATER, token.GREATER_EQUAL, token.LESS, token.LESS_EQUAL) {
		op := p.previous()
		right := p.term()
		expr = &ast.Binary{Left: expr, Operator: op, Right: right}
	}
	return expr
}

func (p *Parser) term() ast.Expr {
	expr := p.factor()
	for p.match(token.PLUS, token.MINUS) {
		op := p.previous()
		right := p.factor()
		expr = &ast.Binary{Left: expr, Operator: op, Right: right}
	}
	return expr
}

func (p *Parser) factor() ast.Expr {
	expr := p.unary()
	for p.match(token.STAR, token.SLASH, token.PERCENT) {
		op := p.previous()
		right := p.unary()
		expr = &ast.Binary{Left: expr, Operator: op, Right: right}
	}
	return expr
}

func (p *Parser) unary() ast.Expr {
	if p.match(token.BANG, token.MINUS) {
		op := p.previous()
		right := p.unary()
		return &ast.Unary{Operator: op, Right: right}
	}
	return p.exponent()
}

// exponent is right-associative: 2 ** 3 ** 2 == 2 ** (3 ** 2).
func (p *Parser) exponent() ast.Expr {
	expr := p.call()
	if p.match(token.STAR_STAR) {
		op := p.previous()
		right := p.exponent()
		return &ast.Binary{Left: expr, Operator: op, Right: right}
	}
	return expr
}

func (p *Parser) call() ast.Expr {
	expr := p.primary()
	for {
		switch {
		case p.match(token.LPAREN):
			expr = p.finishCall(expr)
		case p.match(token.DOT):
			name := p.consume(token.IDENTIFIER, "expect property name after '.'")
			expr = &ast.Get{Object: expr, Name: name}
		case p.match(token.LBRACKET):
			bracket := p.previous()
			start := p.expression()
			var end ast.Expr
			if p.match(token.DOT_DOT) {
				end = p.expression()
			}
			p.consume(token.RBRACKET, "expect ']' after index expression")
			expr = &ast.Access{Object: expr, Bracket: bracket, Start: start, End: end}
		default:
			return expr
		}
	}
}

func (p *Parser) finishCall(callee ast.Expr) ast.Expr {
	leftParen := p.previous()
	var args []ast.Expr
	if !p.check(token.RPAREN) {
		args = append(args, p.lambdaOrAssignment())
		for p.match(token.COMMA) {
			args = append(args, p.lambdaOrAssignment())
		}
	}
	rightParen := p.consume(token.RPAREN, "expect ')' after arguments")
	return &ast.Call{Callee: callee, LeftParen: leftParen, RightParen: rightParen, Arguments: args}
}

func (p *Parser) primary() ast.Expr {
	switch {
	case p.match(token.FALSE):
		return &ast.Literal{Token: p.previous(), Value: false}
	case p.match(token.TRUE):
		return &ast.Literal{Token: p.previous(), Value: true}
	case p.match(token.NIL):
		return &ast.Literal{Token: p.previous(), Value: nil}
	case p.match(token.NUMBER, token.STRING):
		tok := p.previous()
		return &ast.Literal{Token: tok, Value: tok.Literal}
	case p.match(token.THIS):
		return &ast.This{Keyword: p.previous()}
	case p.match(token.SUPER):
		keyword := p.previous()
		p.consume(token.DOT, "expect '.' after 'super'")
		method := p.consume(token.IDENTIFIER, "expect superclass method name")
		return &ast.Super{Keyword: keyword, Method: method}
	case p.match(token.IDENTIFIER):
		return &ast.Variable{Name: p.previous()}
	case p.match(token.LPAREN):
		lparen := p.previous()
		expr := p.expression()
		p.consume(token.RPAREN, "expect ')' after expression")
		return &ast.Grouping{LParen: lparen, Expression: expr}
	case p.match(token.LBRACKET):
		bracket := p.previous()
		var elems []ast.Expr
		if !p.check(token.RBRACKET) {
			elems = append(elems, p.lambdaOrAssignment())
			for p.match(token.COMMA) {
				elems = append(elems, p.lambdaOrAssignment())
			}
		}
		p.consume(token.RBRACKET, "expect ']' after list elements")
		return &ast.List{Bracket: bracket, Elements: elems}
	case p.match(token.FUN):
		p.current-- // let lambda() consume 'fun' itself
		return p.lambda()
	}

	p.errorAtCurrent("expect expression")
	// Return a literal nil placeholder so callers can keep walking the tree
	// without nil-checking every Expr; the recorded error is authoritative.
	return &ast.Literal{Token: p.peek(), Value: nil}
}
