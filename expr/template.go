package expr

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/vizsolve/vizsolve/dataset"
)

// Template is a compiled text template: a sequence of literal runs and
// ${expression} or ${expression:format} slots. Evaluation concatenates
// the parts into one string; the format applies only to numeric values.
type Template struct {
	parts []templatePart
}

// templatePart is either literal text or an expression slot.
type templatePart struct {
	literal string
	expr    Expr
	format  string
}

// ParseTemplate compiles template source. "$${" escapes a literal "${".
func ParseTemplate(src string) (*Template, error) {
	var (
		tpl Template
		lit strings.Builder
	)
	for i := 0; i < len(src); {
		if strings.HasPrefix(src[i:], "$${") {
			lit.WriteString("${")
			i += 3
			continue
		}
		if !strings.HasPrefix(src[i:], "${") {
			lit.WriteByte(src[i])
			i++
			continue
		}

		end := strings.IndexByte(src[i:], '}')
		if end < 0 {
			return nil, fmt.Errorf("unterminated ${...} at offset %d: %w", i, ErrParse)
		}
		body := src[i+2 : i+end]
		i += end + 1

		exprSrc, format := splitFormat(body)
		e, err := Parse(exprSrc)
		if err != nil {
			return nil, err
		}
		if lit.Len() > 0 {
			tpl.parts = append(tpl.parts, templatePart{literal: lit.String()})
			lit.Reset()
		}
		tpl.parts = append(tpl.parts, templatePart{expr: e, format: format})
	}
	if lit.Len() > 0 {
		tpl.parts = append(tpl.parts, templatePart{literal: lit.String()})
	}

	return &tpl, nil
}

// splitFormat splits "expression:format" on the last top-level colon.
// Backticked column names may not contain colons, so a plain scan that
// skips string literals suffices.
func splitFormat(body string) (string, string) {
	depth, inStr := 0, byte(0)
	for i := len(body) - 1; i >= 0; i-- {
		c := body[i]
		switch {
		case inStr != 0:
			if c == inStr {
				inStr = 0
			}
		case c == '"' || c == '\'':
			inStr = c
		case c == ')':
			depth++
		case c == '(':
			depth--
		case c == ':' && depth == 0:
			return body[:i], body[i+1:]
		}
	}

	return body, ""
}

// Eval renders the template against ctx.
func (t *Template) Eval(ctx dataset.Context) (string, error) {
	var sb strings.Builder
	for _, p := range t.parts {
		if p.expr == nil {
			sb.WriteString(p.literal)
			continue
		}
		v, err := p.expr.Eval(ctx)
		if err != nil {
			return "", err
		}
		sb.WriteString(formatValue(v, p.format))
	}

	return sb.String(), nil
}

// String reconstructs canonical template source.
func (t *Template) String() string {
	var sb strings.Builder
	for _, p := range t.parts {
		if p.expr == nil {
			sb.WriteString(strings.ReplaceAll(p.literal, "${", "$${"))
			continue
		}
		sb.WriteString("${")
		sb.WriteString(p.expr.String())
		if p.format != "" {
			sb.WriteString(":")
			sb.WriteString(p.format)
		}
		sb.WriteString("}")
	}

	return sb.String()
}

// formatValue applies a numeric format spec to v. Non-numeric values and
// empty specs fall back to the plain string form. Supported specs:
//
//	.Nf  — fixed N decimal places
//	,.Nf — fixed N decimals with thousands separators
//	d    — rounded integer
func formatValue(v dataset.Value, format string) string {
	if format == "" || v.IsNull() {
		return v.AsString()
	}
	// Dates keep their string form even under a numeric spec.
	if v.Type() != dataset.TypeNumber && v.Type() != dataset.TypeBoolean {
		return v.AsString()
	}
	f, ok := v.AsNumber()
	if !ok {
		return v.AsString()
	}

	spec := format
	grouped := strings.HasPrefix(spec, ",")
	if grouped {
		spec = spec[1:]
	}

	var out string
	switch {
	case spec == "d":
		out = strconv.FormatFloat(math.Round(f), 'f', 0, 64)
	case strings.HasPrefix(spec, ".") && strings.HasSuffix(spec, "f"):
		prec, err := strconv.Atoi(spec[1 : len(spec)-1])
		if err != nil || prec < 0 {
			return v.AsString()
		}
		out = strconv.FormatFloat(f, 'f', prec, 64)
	default:
		return v.AsString()
	}

	if grouped {
		out = groupThousands(out)
	}

	return out
}

// groupThousands inserts comma separators into the integer part of a
// plain decimal string.
func groupThousands(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, frac := s, ""
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		intPart, frac = s[:dot], s[dot:]
	}

	var sb strings.Builder
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(c)
	}
	out := sb.String() + frac
	if neg {
		out = "-" + out
	}

	return out
}
