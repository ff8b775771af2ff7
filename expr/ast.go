package expr

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vizsolve/vizsolve/dataset"
)

// Expr is a compiled expression. Eval runs it against a row or group
// Context and yields a typed value; String renders canonical source.
type Expr interface {
	Eval(ctx dataset.Context) (dataset.Value, error)
	String() string
}

// columnRef reads one column from the evaluation context.
type columnRef struct {
	name string
}

func (c columnRef) Eval(ctx dataset.Context) (dataset.Value, error) {
	return ctx.Value(c.name)
}

func (c columnRef) String() string {
	if isBareIdent(c.name) {
		return c.name
	}

	return "`" + c.name + "`"
}

// numberLit is a numeric literal.
type numberLit float64

func (n numberLit) Eval(dataset.Context) (dataset.Value, error) {
	return dataset.Number(float64(n)), nil
}

func (n numberLit) String() string {
	return strconv.FormatFloat(float64(n), 'g', -1, 64)
}

// stringLit is a string literal.
type stringLit string

func (s stringLit) Eval(dataset.Context) (dataset.Value, error) {
	return dataset.String(string(s)), nil
}

func (s stringLit) String() string {
	return strconv.Quote(string(s))
}

// boolLit is the true/false literal.
type boolLit bool

func (b boolLit) Eval(dataset.Context) (dataset.Value, error) {
	return dataset.Boolean(bool(b)), nil
}

func (b boolLit) String() string {
	return strconv.FormatBool(bool(b))
}

// unaryNeg negates a numeric operand.
type unaryNeg struct {
	operand Expr
}

func (u unaryNeg) Eval(ctx dataset.Context) (dataset.Value, error) {
	v, err := u.operand.Eval(ctx)
	if err != nil {
		return dataset.Null(), err
	}
	f, ok := v.AsNumber()
	if !ok {
		return dataset.Null(), fmt.Errorf("negate %s value: %w", v.Type(), ErrType)
	}

	return dataset.Number(-f), nil
}

func (u unaryNeg) String() string { return "-" + u.operand.String() }

// binary applies one of + - * / == != < <= > >=.
type binary struct {
	op          string
	left, right Expr
}

func (b binary) Eval(ctx dataset.Context) (dataset.Value, error) {
	lv, err := b.left.Eval(ctx)
	if err != nil {
		return dataset.Null(), err
	}
	rv, err := b.right.Eval(ctx)
	if err != nil {
		return dataset.Null(), err
	}

	switch b.op {
	case "+", "-", "*", "/":
		return evalArithmetic(b.op, lv, rv)
	default:
		return evalComparison(b.op, lv, rv)
	}
}

func (b binary) String() string {
	return "(" + b.left.String() + " " + b.op + " " + b.right.String() + ")"
}

func evalArithmetic(op string, lv, rv dataset.Value) (dataset.Value, error) {
	// String concatenation: both sides strings under +.
	if op == "+" && lv.Type() == dataset.TypeString && rv.Type() == dataset.TypeString && !lv.IsNull() && !rv.IsNull() {
		return dataset.String(lv.AsString() + rv.AsString()), nil
	}

	lf, lok := lv.AsNumber()
	rf, rok := rv.AsNumber()
	if !lok || !rok {
		return dataset.Null(), fmt.Errorf("operator %q on %s and %s: %w", op, lv.Type(), rv.Type(), ErrType)
	}
	switch op {
	case "+":
		return dataset.Number(lf + rf), nil
	case "-":
		return dataset.Number(lf - rf), nil
	case "*":
		return dataset.Number(lf * rf), nil
	default: // "/"
		return dataset.Number(lf / rf), nil
	}
}

func evalComparison(op string, lv, rv dataset.Value) (dataset.Value, error) {
	// Numeric comparison when both sides have a numeric form, otherwise
	// string comparison. Equality across incomparable types is false.
	lf, lok := lv.AsNumber()
	rf, rok := rv.AsNumber()

	var eq, lt bool
	switch {
	case lok && rok:
		eq, lt = lf == rf, lf < rf
	case !lok && !rok:
		ls, rs := lv.AsString(), rv.AsString()
		eq, lt = ls == rs, ls < rs
	default:
		if op != "==" && op != "!=" {
			return dataset.Null(), fmt.Errorf("operator %q on %s and %s: %w", op, lv.Type(), rv.Type(), ErrType)
		}
		eq = false
	}

	switch op {
	case "==":
		return dataset.Boolean(eq), nil
	case "!=":
		return dataset.Boolean(!eq), nil
	case "<":
		return dataset.Boolean(lt), nil
	case "<=":
		return dataset.Boolean(lt || eq), nil
	case ">":
		return dataset.Boolean(!lt && !eq), nil
	default: // ">="
		return dataset.Boolean(!lt), nil
	}
}

// call is a function invocation.
type call struct {
	name string
	args []Expr
}

func (c call) Eval(ctx dataset.Context) (dataset.Value, error) {
	fn, ok := functions[c.name]
	if !ok {
		return dataset.Null(), fmt.Errorf("%q: %w", c.name, ErrUnknownFunction)
	}

	return fn(ctx, c.args)
}

func (c call) String() string {
	parts := make([]string, len(c.args))
	for i, a := range c.args {
		parts[i] = a.String()
	}

	return c.name + "(" + strings.Join(parts, ", ") + ")"
}

func isBareIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}

	return true
}

// Column returns an expression reading the named column; used by callers
// that synthesize expressions programmatically (e.g. axis bindings).
func Column(name string) Expr { return columnRef{name: name} }

// ColumnName reports the referenced column when e is a bare column
// reference or a single-column aggregate, e.g. "city" or "first(city)".
func ColumnName(e Expr) (string, bool) {
	switch n := e.(type) {
	case columnRef:
		return n.name, true
	case call:
		if len(n.args) == 1 {
			if col, ok := n.args[0].(columnRef); ok {
				return col.name, true
			}
		}
	}

	return "", false
}

// Aggregate wraps a column reference in the named aggregate function.
func Aggregate(fn, column string) Expr {
	return call{name: fn, args: []Expr{columnRef{name: column}}}
}
