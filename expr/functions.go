package expr

import (
	"fmt"
	"math"
	"time"

	"github.com/vizsolve/vizsolve/dataset"
)

// fnImpl evaluates one function call against the current context.
type fnImpl func(ctx dataset.Context, args []Expr) (dataset.Value, error)

// functions is the fixed function table. Aggregates reduce one column
// across the whole context; scalar helpers operate on evaluated values.
var functions = map[string]fnImpl{
	"avg":   aggregateFn("avg", reduceAvg),
	"mean":  aggregateFn("mean", reduceAvg),
	"sum":   aggregateFn("sum", reduceSum),
	"min":   aggregateFn("min", reduceMin),
	"max":   aggregateFn("max", reduceMax),
	"count": countFn,
	"first": firstFn,
	"last":  lastFn,

	"abs":   scalarNumFn("abs", math.Abs),
	"round": scalarNumFn("round", math.Round),
	"floor": scalarNumFn("floor", math.Floor),
	"ceil":  scalarNumFn("ceil", math.Ceil),
	"sqrt":  scalarNumFn("sqrt", math.Sqrt),

	"date": dateFn,
	"not":  notFn,
	"and":  andFn,
	"or":   orFn,
}

// columnArg extracts the column name from an aggregate's single argument.
// Aggregates reduce a stored column; arbitrary sub-expressions have no
// per-row evaluation surface inside a group context.
func columnArg(name string, args []Expr) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("%s expects 1 argument, got %d: %w", name, len(args), ErrType)
	}
	col, ok := args[0].(columnRef)
	if !ok {
		return "", fmt.Errorf("%s expects a column reference: %w", name, ErrType)
	}

	return col.name, nil
}

// numericVector resolves an aggregate column to its non-null numeric values.
func numericVector(ctx dataset.Context, name, column string) ([]float64, error) {
	vec, err := ctx.Vector(column)
	if err != nil {
		return nil, err
	}
	out := make([]float64, 0, len(vec))
	for _, v := range vec {
		if v.IsNull() {
			continue
		}
		f, ok := v.AsNumber()
		if !ok {
			return nil, fmt.Errorf("%s over non-numeric column %q: %w", name, column, ErrType)
		}
		out = append(out, f)
	}

	return out, nil
}

func aggregateFn(name string, reduce func([]float64) (float64, bool)) fnImpl {
	return func(ctx dataset.Context, args []Expr) (dataset.Value, error) {
		column, err := columnArg(name, args)
		if err != nil {
			return dataset.Null(), err
		}
		nums, err := numericVector(ctx, name, column)
		if err != nil {
			return dataset.Null(), err
		}
		f, ok := reduce(nums)
		if !ok {
			return dataset.Null(), nil
		}

		return dataset.Number(f), nil
	}
}

func reduceAvg(nums []float64) (float64, bool) {
	if len(nums) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, f := range nums {
		sum += f
	}

	return sum / float64(len(nums)), true
}

func reduceSum(nums []float64) (float64, bool) {
	sum := 0.0
	for _, f := range nums {
		sum += f
	}

	return sum, len(nums) > 0
}

func reduceMin(nums []float64) (float64, bool) {
	if len(nums) == 0 {
		return 0, false
	}
	lo := nums[0]
	for _, f := range nums[1:] {
		if f < lo {
			lo = f
		}
	}

	return lo, true
}

func reduceMax(nums []float64) (float64, bool) {
	if len(nums) == 0 {
		return 0, false
	}
	hi := nums[0]
	for _, f := range nums[1:] {
		if f > hi {
			hi = f
		}
	}

	return hi, true
}

func countFn(ctx dataset.Context, args []Expr) (dataset.Value, error) {
	column, err := columnArg("count", args)
	if err != nil {
		return dataset.Null(), err
	}
	vec, err := ctx.Vector(column)
	if err != nil {
		return dataset.Null(), err
	}

	return dataset.Number(float64(len(vec))), nil
}

func firstFn(ctx dataset.Context, args []Expr) (dataset.Value, error) {
	column, err := columnArg("first", args)
	if err != nil {
		return dataset.Null(), err
	}
	vec, err := ctx.Vector(column)
	if err != nil {
		return dataset.Null(), err
	}
	if len(vec) == 0 {
		return dataset.Null(), nil
	}

	return vec[0], nil
}

func lastFn(ctx dataset.Context, args []Expr) (dataset.Value, error) {
	column, err := columnArg("last", args)
	if err != nil {
		return dataset.Null(), err
	}
	vec, err := ctx.Vector(column)
	if err != nil {
		return dataset.Null(), err
	}
	if len(vec) == 0 {
		return dataset.Null(), nil
	}

	return vec[len(vec)-1], nil
}

func scalarNumFn(name string, f func(float64) float64) fnImpl {
	return func(ctx dataset.Context, args []Expr) (dataset.Value, error) {
		if len(args) != 1 {
			return dataset.Null(), fmt.Errorf("%s expects 1 argument, got %d: %w", name, len(args), ErrType)
		}
		v, err := args[0].Eval(ctx)
		if err != nil {
			return dataset.Null(), err
		}
		n, ok := v.AsNumber()
		if !ok {
			return dataset.Null(), fmt.Errorf("%s on %s value: %w", name, v.Type(), ErrType)
		}

		return dataset.Number(f(n)), nil
	}
}

func dateFn(ctx dataset.Context, args []Expr) (dataset.Value, error) {
	if len(args) != 1 {
		return dataset.Null(), fmt.Errorf("date expects 1 argument, got %d: %w", len(args), ErrType)
	}
	v, err := args[0].Eval(ctx)
	if err != nil {
		return dataset.Null(), err
	}
	if t, ok := v.AsDate(); ok {
		return dataset.Date(t), nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02", "01/02/2006", "Jan-2006"} {
		if t, err := time.Parse(layout, v.AsString()); err == nil {
			return dataset.Date(t), nil
		}
	}

	return dataset.Null(), fmt.Errorf("date cannot parse %q: %w", v.AsString(), ErrType)
}

func notFn(ctx dataset.Context, args []Expr) (dataset.Value, error) {
	if len(args) != 1 {
		return dataset.Null(), fmt.Errorf("not expects 1 argument, got %d: %w", len(args), ErrType)
	}
	b, err := boolArg(ctx, args[0])
	if err != nil {
		return dataset.Null(), err
	}

	return dataset.Boolean(!b), nil
}

func andFn(ctx dataset.Context, args []Expr) (dataset.Value, error) {
	if len(args) < 2 {
		return dataset.Null(), fmt.Errorf("and expects at least 2 arguments: %w", ErrType)
	}
	for _, a := range args {
		b, err := boolArg(ctx, a)
		if err != nil {
			return dataset.Null(), err
		}
		if !b {
			return dataset.Boolean(false), nil
		}
	}

	return dataset.Boolean(true), nil
}

func orFn(ctx dataset.Context, args []Expr) (dataset.Value, error) {
	if len(args) < 2 {
		return dataset.Null(), fmt.Errorf("or expects at least 2 arguments: %w", ErrType)
	}
	for _, a := range args {
		b, err := boolArg(ctx, a)
		if err != nil {
			return dataset.Null(), err
		}
		if b {
			return dataset.Boolean(true), nil
		}
	}

	return dataset.Boolean(false), nil
}

func boolArg(ctx dataset.Context, e Expr) (bool, error) {
	v, err := e.Eval(ctx)
	if err != nil {
		return false, err
	}
	b, ok := v.AsBool()
	if !ok {
		return false, fmt.Errorf("boolean expected, got %s: %w", v.Type(), ErrType)
	}

	return b, nil
}
