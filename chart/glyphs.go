package chart

import (
	"fmt"

	"github.com/vizsolve/vizsolve/dataset"
	"github.com/vizsolve/vizsolve/expr"
)

// computeGroups evaluates a plot-segment's filter and groupBy against
// the dataset and returns the glyph-backing data groups in
// first-appearance order.
func (m *Manager) computeGroups(el *Element) ([]dataset.Group, error) {
	table, err := m.dataset.Table(el.Table)
	if err != nil {
		return nil, err
	}

	groups, err := table.Groups(el.GroupBy)
	if err != nil {
		return nil, err
	}
	if el.Filter == "" {
		return groups, nil
	}

	pass, err := filterRows(table, el.Filter)
	if err != nil {
		return nil, err
	}

	// Restrict each group to passing rows; groups left empty vanish.
	out := groups[:0]
	for _, g := range groups {
		kept := g.Rows[:0]
		for _, r := range g.Rows {
			if pass[r] {
				kept = append(kept, r)
			}
		}
		if len(kept) == 0 {
			continue
		}
		g.Rows = kept
		out = append(out, g)
	}

	return out, nil
}

// filterRows evaluates the filter expression per row and returns the
// pass set. The expression must yield a boolean-coercible value.
func filterRows(t *dataset.Table, filter string) (map[int]bool, error) {
	e, err := expr.Parse(filter)
	if err != nil {
		return nil, fmt.Errorf("chart: filter %q: %w", filter, err)
	}

	pass := make(map[int]bool, t.Len())
	for i := 0; i < t.Len(); i++ {
		ctx, err := t.RowContext(i)
		if err != nil {
			return nil, err
		}
		v, err := e.Eval(ctx)
		if err != nil {
			return nil, fmt.Errorf("chart: filter %q: %w", filter, err)
		}
		ok, can := v.AsBool()
		if !can {
			return nil, fmt.Errorf("chart: filter %q, row %d: non-boolean result: %w", filter, i, expr.ErrType)
		}
		pass[i] = ok
	}

	return pass, nil
}

// remapGlyphs rebuilds a plot-segment's glyph-state list from its
// current filter and groupBy. States are matched to new groups by group
// key, so a group that survives the remap keeps its resolved values and
// the chart does not jump visually.
func (m *Manager) remapGlyphs(el *Element, st *ElementState) error {
	groups, err := m.computeGroups(el)
	if err != nil {
		return err
	}

	glyph := m.spec.Glyph(el.GlyphID)

	prev := make(map[string]*GlyphState, len(st.Glyphs))
	for _, g := range st.Glyphs {
		prev[g.GroupKey] = g
	}

	next := make([]*GlyphState, 0, len(groups))
	for _, grp := range groups {
		gs, ok := prev[grp.Key]
		if !ok {
			gs = m.newGlyphState(glyph, grp.Key)
		}
		gs.Rows = grp.Rows
		// Marks added to the glyph template since the state was
		// built still need state nodes.
		if glyph != nil {
			for _, mark := range glyph.Marks {
				if _, ok := gs.Marks[mark.ID]; !ok {
					if cls, err := m.registry.lookup(mark.ClassID); err == nil {
						gs.Marks[mark.ID] = defaultAttributes(cls)
					}
				}
			}
		}
		next = append(next, gs)
	}
	st.Glyphs = next

	return nil
}

// newGlyphState seeds a fresh glyph instance: anchor attributes at the
// origin plus default mark attributes per template mark.
func (m *Manager) newGlyphState(glyph *Glyph, key string) *GlyphState {
	gs := &GlyphState{
		GroupKey: key,
		Attributes: Attributes{
			"x": NumberValue(0),
			"y": NumberValue(0),
		},
		Marks: make(map[string]Attributes),
	}
	if glyph == nil {
		return gs
	}
	for _, mark := range glyph.Marks {
		cls, err := m.registry.lookup(mark.ClassID)
		if err != nil {
			continue
		}
		gs.Marks[mark.ID] = defaultAttributes(cls)
	}

	return gs
}
