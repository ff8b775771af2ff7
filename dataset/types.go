// Package dataset: central Value, Column, Row, Table and Dataset types.
// This file declares the typed value union and the table metadata model;
// grouping lives in groupby.go and CSV ingestion in csv.go.
package dataset

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"
)

// Type is the storage type of a column or value.
type Type uint8

const (
	// TypeString holds arbitrary text.
	TypeString Type = iota
	// TypeNumber holds a float64.
	TypeNumber
	// TypeBoolean holds true/false.
	TypeBoolean
	// TypeDate holds a calendar timestamp.
	TypeDate
)

// String returns the canonical lower-case name of the type.
func (t Type) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeNumber:
		return "number"
	case TypeBoolean:
		return "boolean"
	case TypeDate:
		return "date"
	default:
		return fmt.Sprintf("type(%d)", uint8(t))
	}
}

// Kind is the semantic kind of a column, independent of its storage type.
// A number column may still be Categorical (e.g. a year used as a label).
type Kind uint8

const (
	// KindCategorical values name discrete, unordered categories.
	KindCategorical Kind = iota
	// KindOrdinal values name discrete categories with a meaningful order.
	KindOrdinal
	// KindNumerical values are continuous quantities.
	KindNumerical
	// KindTemporal values are points in time.
	KindTemporal
)

// String returns the canonical lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindCategorical:
		return "categorical"
	case KindOrdinal:
		return "ordinal"
	case KindNumerical:
		return "numerical"
	case KindTemporal:
		return "temporal"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Value is a tagged union over the four storage types plus null.
// The zero Value is null.
type Value struct {
	typ  Type
	null bool
	str  string
	num  float64
	b    bool
	t    time.Time
}

// Null returns the null Value.
func Null() Value { return Value{null: true} }

// String wraps s as a string Value.
func String(s string) Value { return Value{typ: TypeString, str: s} }

// Number wraps f as a numeric Value.
func Number(f float64) Value { return Value{typ: TypeNumber, num: f} }

// Boolean wraps b as a boolean Value.
func Boolean(b bool) Value { return Value{typ: TypeBoolean, b: b} }

// Date wraps t as a date Value.
func Date(t time.Time) Value { return Value{typ: TypeDate, t: t} }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.null }

// Type returns the storage type of v. Null values report TypeString.
func (v Value) Type() Type { return v.typ }

// AsString returns the string form of v regardless of type.
// Numbers use the shortest round-trip representation; dates use RFC 3339.
func (v Value) AsString() string {
	if v.null {
		return ""
	}
	switch v.typ {
	case TypeString:
		return v.str
	case TypeNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case TypeBoolean:
		return strconv.FormatBool(v.b)
	case TypeDate:
		return v.t.Format(time.RFC3339)
	default:
		return ""
	}
}

// AsNumber returns the numeric form of v and whether one exists.
// Dates convert to Unix milliseconds; booleans to 0/1; numeric-looking
// strings parse.
func (v Value) AsNumber() (float64, bool) {
	if v.null {
		return 0, false
	}
	switch v.typ {
	case TypeNumber:
		return v.num, true
	case TypeBoolean:
		if v.b {
			return 1, true
		}
		return 0, true
	case TypeDate:
		return float64(v.t.UnixMilli()), true
	case TypeString:
		f, err := strconv.ParseFloat(v.str, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// AsBool returns the boolean form of v and whether one exists.
// Numbers are truthy when non-zero.
func (v Value) AsBool() (bool, bool) {
	if v.null {
		return false, false
	}
	switch v.typ {
	case TypeBoolean:
		return v.b, true
	case TypeNumber:
		return v.num != 0, true
	default:
		return false, false
	}
}

// AsDate returns the time form of v and whether one exists.
func (v Value) AsDate() (time.Time, bool) {
	if v.null || v.typ != TypeDate {
		return time.Time{}, false
	}
	return v.t, true
}

// Key returns a stable identity string for grouping and deduplication.
// Two Values with the same Key belong to the same category slot.
func (v Value) Key() string {
	if v.null {
		return "\x00null"
	}
	return v.typ.String() + ":" + v.AsString()
}

// Less reports whether v sorts before w under the natural order of their
// common type: numeric for numbers/dates, lexicographic otherwise.
func (v Value) Less(w Value) bool {
	if vn, ok := v.AsNumber(); ok {
		if wn, ok2 := w.AsNumber(); ok2 {
			return vn < wn
		}
	}
	return v.AsString() < w.AsString()
}

// Column describes one table column: its name, storage type, semantic kind,
// and an optional explicit category order (used by ordinal columns so that
// scale inference preserves the authored ordering).
type Column struct {
	Name  string   `json:"name" yaml:"name"`
	Type  Type     `json:"type" yaml:"type"`
	Kind  Kind     `json:"kind" yaml:"kind"`
	Order []string `json:"order,omitempty" yaml:"order,omitempty"`
}

// Row maps column names to values.
type Row map[string]Value

// Table is an immutable, ordered sequence of rows plus column metadata.
// Build it with NewTable or FromCSV; never mutate rows after construction.
type Table struct {
	name    string
	columns []Column
	colIdx  map[string]int
	rows    []Row
}

// NewTable builds a Table from column metadata and rows.
// Column order is preserved; rows are stored as given.
func NewTable(name string, columns []Column, rows []Row) *Table {
	idx := make(map[string]int, len(columns))
	for i, c := range columns {
		idx[c.Name] = i
	}

	return &Table{name: name, columns: columns, colIdx: idx, rows: rows}
}

// Name returns the table's name.
func (t *Table) Name() string { return t.name }

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Columns returns the column metadata in declaration order.
// The returned slice must not be modified.
func (t *Table) Columns() []Column { return t.columns }

// Column returns metadata for the named column.
func (t *Table) Column(name string) (Column, error) {
	i, ok := t.colIdx[name]
	if !ok {
		return Column{}, fmt.Errorf("table %q, column %q: %w", t.name, name, ErrUnknownColumn)
	}

	return t.columns[i], nil
}

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.colIdx[name]
	return ok
}

// Cell returns the value at (row, column).
func (t *Table) Cell(row int, column string) (Value, error) {
	if row < 0 || row >= len(t.rows) {
		return Null(), fmt.Errorf("table %q, row %d: %w", t.name, row, ErrRowRange)
	}
	if !t.HasColumn(column) {
		return Null(), fmt.Errorf("table %q, column %q: %w", t.name, column, ErrUnknownColumn)
	}
	v, ok := t.rows[row][column]
	if !ok {
		return Null(), nil
	}

	return v, nil
}

// Dataset is a named collection of tables, immutable during a solve pass.
type Dataset struct {
	name   string
	tables map[string]*Table
	order  []string
}

// NewDataset builds a Dataset from tables. Table name collisions keep the
// last table registered, matching map-assignment semantics.
func NewDataset(name string, tables ...*Table) *Dataset {
	d := &Dataset{name: name, tables: make(map[string]*Table, len(tables))}
	for _, t := range tables {
		if _, seen := d.tables[t.name]; !seen {
			d.order = append(d.order, t.name)
		}
		d.tables[t.name] = t
	}

	return d
}

// Name returns the dataset's name.
func (d *Dataset) Name() string { return d.name }

// Table returns the named table or ErrUnknownTable.
func (d *Dataset) Table(name string) (*Table, error) {
	t, ok := d.tables[name]
	if !ok {
		return nil, fmt.Errorf("dataset %q, table %q: %w", d.name, name, ErrUnknownTable)
	}

	return t, nil
}

// TableNames returns table names in registration order.
func (d *Dataset) TableNames() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)

	return out
}

// DistinctKeys returns the distinct Value keys of vals in first-appearance
// order, with the representative Value for each key.
func DistinctKeys(vals []Value) ([]string, map[string]Value) {
	seen := make(map[string]Value, len(vals))
	var order []string
	for _, v := range vals {
		k := v.Key()
		if _, ok := seen[k]; !ok {
			seen[k] = v
			order = append(order, k)
		}
	}

	return order, seen
}

// NumericBounds returns [min, max] over the numeric forms of vals,
// skipping nulls and non-numeric entries. ok is false when no numeric
// value was found or a bound is not finite.
func NumericBounds(vals []Value) (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range vals {
		if v.IsNull() {
			continue
		}
		f, isNum := v.AsNumber()
		if !isNum {
			continue
		}
		if f < lo {
			lo = f
		}
		if f > hi {
			hi = f
		}
	}
	if lo > hi || math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return 0, 0, false
	}

	return lo, hi, true
}

// SortValueStrings sorts a copy of ss lexicographically and returns it.
func SortValueStrings(ss []string) []string {
	out := make([]string, len(ss))
	copy(out, ss)
	sort.Strings(out)

	return out
}
