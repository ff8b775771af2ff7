package expr

import (
	"fmt"
	"strconv"
)

// parser is a one-token-lookahead recursive-descent parser over lexer.
type parser struct {
	lex *lexer
	tok token
}

// Parse compiles expression source into an Expr tree.
// Returns ErrParse (wrapped with position context) on malformed input.
func Parse(src string) (Expr, error) {
	p := &parser{lex: &lexer{src: src}}
	if err := p.advance(); err != nil {
		return nil, err
	}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, p.errf("unexpected trailing input %q", p.tok.text)
	}

	return e, nil
}

// MustParse is Parse that panics on error; for fixed built-in expressions.
func MustParse(src string) Expr {
	e, err := Parse(src)
	if err != nil {
		panic(err)
	}

	return e
}

func (p *parser) errf(format string, args ...any) error {
	return fmt.Errorf("%s at offset %d: %w", fmt.Sprintf(format, args...), p.tok.pos, ErrParse)
}

func (p *parser) advance() error {
	t, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = t

	return nil
}

// parseExpr := additive ( compareOp additive )?
func (p *parser) parseExpr() (Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	if p.tok.kind == tokOp && isComparison(p.tok.text) {
		op := p.tok.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}

		return binary{op: op, left: left, right: right}, nil
	}

	return left, nil
}

// parseAdditive := term ( ("+"|"-") term )*
func (p *parser) parseAdditive() (Expr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokOp && (p.tok.text == "+" || p.tok.text == "-") {
		op := p.tok.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = binary{op: op, left: left, right: right}
	}

	return left, nil
}

// parseTerm := unary ( ("*"|"/") unary )*
func (p *parser) parseTerm() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokOp && (p.tok.text == "*" || p.tok.text == "/") {
		op := p.tok.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = binary{op: op, left: left, right: right}
	}

	return left, nil
}

// parseUnary := "-" unary | primary
func (p *parser) parseUnary() (Expr, error) {
	if p.tok.kind == tokOp && p.tok.text == "-" {
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		return unaryNeg{operand: operand}, nil
	}

	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Expr, error) {
	switch p.tok.kind {
	case tokNumber:
		f, err := strconv.ParseFloat(p.tok.text, 64)
		if err != nil {
			return nil, p.errf("bad number %q", p.tok.text)
		}
		if err := p.advance(); err != nil {
			return nil, err
		}

		return numberLit(f), nil

	case tokString:
		s := p.tok.text
		if err := p.advance(); err != nil {
			return nil, err
		}

		return stringLit(s), nil

	case tokLParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.tok.kind != tokRParen {
			return nil, p.errf("expected ')', got %q", p.tok.text)
		}
		if err := p.advance(); err != nil {
			return nil, err
		}

		return inner, nil

	case tokIdent:
		name := p.tok.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		switch name {
		case "true":
			return boolLit(true), nil
		case "false":
			return boolLit(false), nil
		}
		if p.tok.kind == tokLParen {
			return p.parseCall(name)
		}

		return columnRef{name: name}, nil

	case tokEOF:
		return nil, p.errf("unexpected end of expression")

	default:
		return nil, p.errf("unexpected token %q", p.tok.text)
	}
}

// parseCall parses the argument list after "name(".
func (p *parser) parseCall(name string) (Expr, error) {
	if err := p.advance(); err != nil { // consume '('
		return nil, err
	}
	var args []Expr
	if p.tok.kind != tokRParen {
		for {
			a, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, a)
			if p.tok.kind != tokComma {
				break
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}
	if p.tok.kind != tokRParen {
		return nil, p.errf("expected ')' in call to %s, got %q", name, p.tok.text)
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if _, ok := functions[name]; !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownFunction)
	}

	return call{name: name, args: args}, nil
}

func isComparison(op string) bool {
	switch op {
	case "==", "!=", "<", "<=", ">", ">=":
		return true
	default:
		return false
	}
}
