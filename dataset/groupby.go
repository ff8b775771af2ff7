package dataset

import "fmt"

// GroupBy partitions a table's rows by the distinct values of one column.
// A nil *GroupBy means "one group per row".
type GroupBy struct {
	// Column names the partitioning column.
	Column string `json:"column" yaml:"column"`
}

// Group is one partition of a table: a stable key plus the indices of the
// member rows, in row order.
type Group struct {
	// Key identifies the group across re-partitions of the same table.
	Key string
	// Rows are indices into the parent table, ascending.
	Rows []int
}

// Context provides column access during expression evaluation. A Context
// may represent a single row (Vector returns a one-element slice) or a
// whole group (Value returns the first member row's value).
type Context interface {
	// Value returns the context's scalar value for the named column.
	Value(column string) (Value, error)

	// Vector returns the named column's values across the whole context.
	Vector(column string) ([]Value, error)
}

// Evaluator evaluates one expression against a row or group Context.
// It is satisfied by expr.Expr; dataset depends only on the contract.
type Evaluator interface {
	Eval(ctx Context) (Value, error)
}

// rowContext is a single-row Context.
type rowContext struct {
	t   *Table
	row int
}

func (c rowContext) Value(column string) (Value, error) {
	return c.t.Cell(c.row, column)
}

func (c rowContext) Vector(column string) ([]Value, error) {
	v, err := c.t.Cell(c.row, column)
	if err != nil {
		return nil, err
	}

	return []Value{v}, nil
}

// groupContext is a multi-row Context over one Group.
type groupContext struct {
	t    *Table
	rows []int
}

func (c groupContext) Value(column string) (Value, error) {
	if len(c.rows) == 0 {
		return Null(), nil
	}

	return c.t.Cell(c.rows[0], column)
}

func (c groupContext) Vector(column string) ([]Value, error) {
	if !c.t.HasColumn(column) {
		return nil, fmt.Errorf("table %q, column %q: %w", c.t.name, column, ErrUnknownColumn)
	}
	out := make([]Value, 0, len(c.rows))
	for _, r := range c.rows {
		v, err := c.t.Cell(r, column)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}

	return out, nil
}

// RowContext returns a Context for a single row of the table.
func (t *Table) RowContext(row int) (Context, error) {
	if row < 0 || row >= len(t.rows) {
		return nil, fmt.Errorf("table %q, row %d: %w", t.name, row, ErrRowRange)
	}

	return rowContext{t: t, row: row}, nil
}

// GroupContext returns a Context spanning the given row indices.
func (t *Table) GroupContext(rows []int) Context {
	return groupContext{t: t, rows: rows}
}

// Groups partitions the table per groupBy. With a nil groupBy each row is
// its own group keyed "row:<index>". Otherwise rows sharing the grouping
// column's value key form one group, ordered by first appearance.
//
// Ordering is deterministic and stable across calls for identical inputs;
// repeated scale inference over the same triple never reorders categories.
func (t *Table) Groups(groupBy *GroupBy) ([]Group, error) {
	// Per-row grouping: trivial partition.
	if groupBy == nil {
		out := make([]Group, len(t.rows))
		for i := range t.rows {
			out[i] = Group{Key: fmt.Sprintf("row:%d", i), Rows: []int{i}}
		}

		return out, nil
	}

	if !t.HasColumn(groupBy.Column) {
		return nil, fmt.Errorf("table %q, groupBy column %q: %w", t.name, groupBy.Column, ErrUnknownColumn)
	}

	// Partition by value key, first appearance order.
	index := make(map[string]int)
	var out []Group
	for i := range t.rows {
		v, err := t.Cell(i, groupBy.Column)
		if err != nil {
			return nil, err
		}
		k := v.Key()
		gi, seen := index[k]
		if !seen {
			gi = len(out)
			index[k] = gi
			out = append(out, Group{Key: k})
		}
		out[gi].Rows = append(out[gi].Rows, i)
	}

	return out, nil
}

// GroupedValues evaluates ev once per group (or per row when groupBy is
// nil) and returns the typed results in group-definition order.
func (t *Table) GroupedValues(groupBy *GroupBy, ev Evaluator) ([]Value, error) {
	groups, err := t.Groups(groupBy)
	if err != nil {
		return nil, err
	}

	out := make([]Value, 0, len(groups))
	for _, g := range groups {
		v, err := ev.Eval(t.GroupContext(g.Rows))
		if err != nil {
			return nil, fmt.Errorf("table %q, group %q: %w", t.name, g.Key, err)
		}
		out = append(out, v)
	}

	return out, nil
}
