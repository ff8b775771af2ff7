package expr

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// tokenKind enumerates lexical token categories.
type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokNumber
	tokString
	tokIdent
	tokLParen
	tokRParen
	tokComma
	tokOp // + - * / == != < <= > >=
)

// token is one lexical unit with its byte offset in the source.
type token struct {
	kind tokenKind
	text string
	pos  int
}

// lexer produces tokens from expression source. It is a plain scanner:
// no lookahead beyond one rune, positions tracked in bytes.
type lexer struct {
	src string
	pos int
}

func (l *lexer) errf(pos int, format string, args ...any) error {
	return fmt.Errorf("%s at offset %d: %w", fmt.Sprintf(format, args...), pos, ErrParse)
}

func (l *lexer) peek() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.src[l.pos:])

	return r
}

func (l *lexer) advance() rune {
	r, w := utf8.DecodeRuneInString(l.src[l.pos:])
	l.pos += w

	return r
}

// next returns the next token.
func (l *lexer) next() (token, error) {
	for l.pos < len(l.src) && unicode.IsSpace(l.peek()) {
		l.advance()
	}
	if l.pos >= len(l.src) {
		return token{kind: tokEOF, pos: l.pos}, nil
	}

	start := l.pos
	r := l.peek()
	switch {
	case r == '(':
		l.advance()
		return token{kind: tokLParen, text: "(", pos: start}, nil
	case r == ')':
		l.advance()
		return token{kind: tokRParen, text: ")", pos: start}, nil
	case r == ',':
		l.advance()
		return token{kind: tokComma, text: ",", pos: start}, nil
	case r == '+' || r == '-' || r == '*' || r == '/':
		l.advance()
		return token{kind: tokOp, text: string(r), pos: start}, nil
	case r == '=' || r == '!' || r == '<' || r == '>':
		return l.lexComparison(start)
	case r == '"' || r == '\'':
		return l.lexString(start)
	case r == '`':
		return l.lexQuotedIdent(start)
	case unicode.IsDigit(r) || r == '.':
		return l.lexNumber(start)
	case unicode.IsLetter(r) || r == '_':
		for l.pos < len(l.src) && (unicode.IsLetter(l.peek()) || unicode.IsDigit(l.peek()) || l.peek() == '_') {
			l.advance()
		}
		return token{kind: tokIdent, text: l.src[start:l.pos], pos: start}, nil
	default:
		return token{}, l.errf(start, "unexpected character %q", r)
	}
}

func (l *lexer) lexComparison(start int) (token, error) {
	first := l.advance()
	if l.peek() == '=' {
		l.advance()
		return token{kind: tokOp, text: l.src[start:l.pos], pos: start}, nil
	}
	if first == '=' || first == '!' {
		return token{}, l.errf(start, "incomplete operator %q", string(first))
	}

	// bare < or >
	return token{kind: tokOp, text: string(first), pos: start}, nil
}

func (l *lexer) lexString(start int) (token, error) {
	quote := l.advance()
	var sb strings.Builder
	for {
		if l.pos >= len(l.src) {
			return token{}, l.errf(start, "unterminated string")
		}
		r := l.advance()
		if r == quote {
			break
		}
		if r == '\\' && l.pos < len(l.src) {
			r = l.advance()
		}
		sb.WriteRune(r)
	}

	return token{kind: tokString, text: sb.String(), pos: start}, nil
}

// lexQuotedIdent reads a backtick-quoted column name; backticks allow
// columns whose names contain spaces or operators.
func (l *lexer) lexQuotedIdent(start int) (token, error) {
	l.advance() // opening backtick
	for {
		if l.pos >= len(l.src) {
			return token{}, l.errf(start, "unterminated column name")
		}
		if l.advance() == '`' {
			break
		}
	}

	return token{kind: tokIdent, text: l.src[start+1 : l.pos-1], pos: start}, nil
}

func (l *lexer) lexNumber(start int) (token, error) {
	seenDot := false
	for l.pos < len(l.src) {
		r := l.peek()
		switch {
		case unicode.IsDigit(r):
			l.advance()
		case r == '.' && !seenDot:
			seenDot = true
			l.advance()
		case r == 'e' || r == 'E':
			l.advance()
			if l.peek() == '+' || l.peek() == '-' {
				l.advance()
			}
		default:
			return token{kind: tokNumber, text: l.src[start:l.pos], pos: start}, nil
		}
	}

	return token{kind: tokNumber, text: l.src[start:l.pos], pos: start}, nil
}
