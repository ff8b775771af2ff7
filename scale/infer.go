package scale

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/vizsolve/vizsolve/dataset"
	"github.com/vizsolve/vizsolve/expr"
)

// Request describes one scale inference: the source table, one or more
// expressions whose grouped values feed the domain (several expressions
// append into one scale), the value's data kind, the target role, and an
// optional ordering hint for categorical domains.
type Request struct {
	Table       string
	Expressions []string
	GroupBy     *dataset.GroupBy
	Kind        dataset.Kind
	Role        Role
	OrderMode   OrderMode
	Order       []string // explicit sequence for OrderExplicit
}

// Inferencer builds or reuses scales for mappings. It pulls value vectors
// through the dataset and expression evaluator and consults the shared
// Registry before creating anything new.
type Inferencer struct {
	ds  *dataset.Dataset
	reg *Registry
}

// NewInferencer wires an Inferencer over a dataset and a scale registry.
func NewInferencer(ds *dataset.Dataset, reg *Registry) *Inferencer {
	return &Inferencer{ds: ds, reg: reg}
}

// Registry returns the registry the inferencer deduplicates against.
func (inf *Inferencer) Registry() *Registry { return inf.reg }

// Infer resolves a Request to a scale per the inference algorithm:
//
//  1. Pull the grouped value vector for every expression.
//  2. Branch on data kind: categorical/ordinal → categorical scale with a
//     deterministic category order; numerical → linear [min, max];
//     temporal → date [min, max].
//  3. Reuse a registered scale compatible in (table, kind, role),
//     widening its domain; otherwise mint a new scale and register it.
//
// A nil scale with a nil error means no scale is warranted (text role);
// the caller handles that case as a plain text mapping. An empty or
// all-null vector fails with ErrEmptyDomain.
func (inf *Inferencer) Infer(req Request) (*Scale, error) {
	if req.Role == RoleText {
		return nil, nil
	}

	tbl, err := inf.ds.Table(req.Table)
	if err != nil {
		return nil, err
	}

	values, explicit, err := inf.pullValues(tbl, req)
	if err != nil {
		return nil, err
	}
	nonNull := values[:0:0]
	for _, v := range values {
		if !v.IsNull() {
			nonNull = append(nonNull, v)
		}
	}
	if len(nonNull) == 0 {
		return nil, fmt.Errorf("table %q, expressions %v: %w", req.Table, req.Expressions, ErrEmptyDomain)
	}

	switch req.Kind {
	case dataset.KindCategorical, dataset.KindOrdinal:
		return inf.inferCategorical(req, nonNull, explicit)
	case dataset.KindNumerical:
		return inf.inferNumeric(req, Linear, nonNull)
	case dataset.KindTemporal:
		return inf.inferTemporal(req, nonNull)
	default:
		return nil, fmt.Errorf("data kind %s: %w", req.Kind, ErrKindMismatch)
	}
}

// pullValues evaluates every requested expression over the grouped table
// and concatenates the results. When an expression is a bare column (or a
// single-column aggregate) and the column declares an explicit category
// order, that order is returned alongside.
func (inf *Inferencer) pullValues(tbl *dataset.Table, req Request) ([]dataset.Value, []string, error) {
	var (
		values   []dataset.Value
		explicit []string
	)
	for _, src := range req.Expressions {
		e, err := expr.Parse(src)
		if err != nil {
			return nil, nil, err
		}
		vals, err := tbl.GroupedValues(req.GroupBy, e)
		if err != nil {
			return nil, nil, err
		}
		values = append(values, vals...)

		if explicit == nil {
			if col, ok := expr.ColumnName(e); ok {
				if meta, err := tbl.Column(col); err == nil && len(meta.Order) > 0 {
					explicit = meta.Order
				}
			}
		}
	}

	return values, explicit, nil
}

// inferCategorical builds or extends a categorical scale. Duplicate
// categories collapse to one slot; each distinct value receives a stable
// integer index.
func (inf *Inferencer) inferCategorical(req Request, values []dataset.Value, columnOrder []string) (*Scale, error) {
	categories := orderCategories(values, req, columnOrder)

	if s := inf.reg.findCompatible(req.Table, Categorical, req.Role); s != nil {
		mergeCategories(s, categories)
		return s, nil
	}

	s := &Scale{
		ID:         uuid.New().String(),
		Kind:       Categorical,
		Role:       req.Role,
		Table:      req.Table,
		Categories: categories,
	}
	inf.reg.Add(s)

	return s, nil
}

// inferNumeric builds or widens a linear scale over [min, max].
func (inf *Inferencer) inferNumeric(req Request, kind Kind, values []dataset.Value) (*Scale, error) {
	lo, hi, ok := dataset.NumericBounds(values)
	if !ok {
		return nil, fmt.Errorf("table %q: no finite numeric values: %w", req.Table, ErrEmptyDomain)
	}

	if s := inf.reg.findCompatible(req.Table, kind, req.Role); s != nil {
		if lo < s.Min {
			s.Min = lo
		}
		if hi > s.Max {
			s.Max = hi
		}
		return s, nil
	}

	s := &Scale{
		ID:    uuid.New().String(),
		Kind:  kind,
		Role:  req.Role,
		Table: req.Table,
		Min:   lo,
		Max:   hi,
	}
	inf.reg.Add(s)

	return s, nil
}

// inferTemporal is the linear contract over date values; the domain is
// stored as Unix milliseconds.
func (inf *Inferencer) inferTemporal(req Request, values []dataset.Value) (*Scale, error) {
	for _, v := range values {
		if _, ok := v.AsDate(); !ok {
			return nil, fmt.Errorf("non-date value %q under temporal kind: %w", v.AsString(), ErrKindMismatch)
		}
	}

	return inf.inferNumeric(req, Temporal, values)
}

// orderCategories produces the deterministic category order: explicit
// column order first when declared, then the requested mode.
func orderCategories(values []dataset.Value, req Request, columnOrder []string) []string {
	distinct := distinctStrings(values)

	switch {
	case len(columnOrder) > 0:
		return applyExplicit(columnOrder, distinct)
	case req.OrderMode == OrderAlphabetical:
		return dataset.SortValueStrings(distinct)
	case req.OrderMode == OrderExplicit:
		return applyExplicit(req.Order, distinct)
	default: // OrderOccurrence
		return distinct
	}
}

// distinctStrings returns the distinct string forms of values in first
// appearance order.
func distinctStrings(values []dataset.Value) []string {
	seen := make(map[string]bool, len(values))
	var out []string
	for _, v := range values {
		s := v.AsString()
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}

	return out
}

// applyExplicit orders distinct values per the given sequence; values the
// sequence does not name append after it in occurrence order.
func applyExplicit(order, distinct []string) []string {
	rank := make(map[string]int, len(order))
	for i, s := range order {
		rank[s] = i
	}

	known := make([]string, 0, len(distinct))
	var unknown []string
	for _, s := range distinct {
		if _, ok := rank[s]; ok {
			known = append(known, s)
		} else {
			unknown = append(unknown, s)
		}
	}
	sort.SliceStable(known, func(i, j int) bool { return rank[known[i]] < rank[known[j]] })

	return append(known, unknown...)
}

// mergeCategories appends categories unseen by s after its existing
// order, preserving every already-assigned slot index.
func mergeCategories(s *Scale, categories []string) {
	seen := make(map[string]bool, len(s.Categories))
	for _, c := range s.Categories {
		seen[c] = true
	}
	for _, c := range categories {
		if !seen[c] {
			seen[c] = true
			s.Categories = append(s.Categories, c)
		}
	}
}
