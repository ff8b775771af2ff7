package chart

import (
	"fmt"
	"math"

	"github.com/vizsolve/vizsolve/dataset"
	"github.com/vizsolve/vizsolve/expr"
	"github.com/vizsolve/vizsolve/scale"
	"github.com/vizsolve/vizsolve/solver"
)

// chartNode is the solver node id of the chart itself.
const chartNode = ""

// glyphNode builds the solver node id of one glyph instance.
func glyphNode(plotSegmentID, groupKey string) string {
	return plotSegmentID + "/" + groupKey
}

// markNode builds the solver node id of one mark instance.
func markNode(plotSegmentID, groupKey, markID string) string {
	return glyphNode(plotSegmentID, groupKey) + "/" + markID
}

// anchorAttrs returns a mark class's anchor attribute pair: the
// attributes that track the glyph anchor when unmapped.
func anchorAttrs(classID string) (string, string) {
	switch classID {
	case ClassRect, ClassLine:
		return "cx", "cy"
	default:
		return "x", "y"
	}
}

// resolve runs one full solve cycle: build the constraint system from
// the specification, solve, write resolved values back into the state
// tree, resolve non-solver attributes (colors, text, sizes), then emit
// the graphics event. Without an intervening mutation the cycle is
// idempotent.
func (m *Manager) resolve() error {
	sys := solver.New()

	// Chart frame: authoritative values, substituted into any parent
	// mapping that references them.
	for _, name := range []string{"x1", "y1", "x2", "y2", "width", "height"} {
		sys.Fix(solver.Var(chartNode, name), m.state.Attributes.Number(name))
	}

	for _, el := range m.spec.Elements {
		if err := m.buildElement(sys, el); err != nil {
			return err
		}
	}
	if err := m.buildSnapConstraints(sys); err != nil {
		return err
	}

	sol, err := sys.Solve()
	if err != nil {
		return err
	}

	m.failures = sol.Failures
	for _, f := range sol.Failures {
		m.log.Warn("unsatisfiable constraint component",
			"constraint", f.Constraint,
			"residual", f.Residual,
			"variables", len(f.Vars))
	}

	m.writeBack(sol)
	if err := m.resolveNonSolver(); err != nil {
		return err
	}
	m.finalizeLinks()
	m.emitGraphics()

	return nil
}

// buildElement contributes one chart-level element and, for plot
// segments, its glyph and mark instances.
func (m *Manager) buildElement(sys *solver.System, el *Element) error {
	cls, err := m.registry.lookup(el.ClassID)
	if err != nil {
		return err
	}
	st := m.state.Elements[el.ID]
	if st == nil {
		return fmt.Errorf("chart: element %q has no state: %w", el.ID, ErrNotFound)
	}

	m.buildNode(sys, el.ID, cls, el, st.Attributes, chartNode)

	if !IsPlotSegment(el.ClassID) {
		return nil
	}

	// Anchor the frame corners at their current values so glyph layout
	// rows cannot drag the region inward. Hard hints yield to snaps and
	// explicit mappings, which solve at full constraint weight.
	for _, name := range []string{"x1", "y1", "x2", "y2"} {
		if _, mapped := el.Mappings[name]; mapped {
			continue
		}
		sys.Hint(solver.Var(el.ID, name), st.Attributes.Number(name), solver.Hard)
	}

	return m.buildPlotSegment(sys, el, st)
}

// buildNode registers a node's solvable variables, its intrinsic
// constraints, and the solver-facing half of its mappings. parentNode
// resolves MappingParent references.
func (m *Manager) buildNode(sys *solver.System, node string, cls Class, el *Element, attrs Attributes, parentNode string) {
	for _, spec := range cls.Attributes() {
		if spec.Kind != AttrNumber || !spec.Solvable {
			continue
		}
		sys.AddVariable(solver.Var(node, spec.Name), attrs.Number(spec.Name))
	}

	for _, ic := range cls.Constraints(el.Properties) {
		terms := make([]solver.Term, len(ic.Terms))
		for i, t := range ic.Terms {
			terms[i] = solver.Term{Var: solver.Var(node, t.Attribute), Coeff: t.Coeff}
		}
		sys.AddLinear(terms, ic.Constant)
	}

	for name, mapping := range el.Mappings {
		spec := attrSpec(cls, name)
		if spec == nil || spec.Kind != AttrNumber || !spec.Solvable {
			continue
		}
		v := solver.Var(node, name)
		switch mapping.Type {
		case MappingValue:
			sys.Fix(v, mapping.Value)
		case MappingParent:
			sys.AddEquality(v, solver.Var(parentNode, mapping.ParentAttribute), mapping.Offset)
		}
		// Scale mappings on solvable attributes exist only on glyph
		// marks, fixed per instance by the plot-segment build;
		// validateMapping rejects them on frame geometry.
	}
}

// buildPlotSegment contributes the glyph instances: anchor variables,
// axis (or default spread) layout rows, and per-instance mark nodes.
func (m *Manager) buildPlotSegment(sys *solver.System, el *Element, st *ElementState) error {
	glyph := m.spec.Glyph(el.GlyphID)
	table, err := m.dataset.Table(el.Table)
	if err != nil {
		return err
	}

	// Unbound-axis spread: the sublayout dodges glyphs along one axis
	// and centers them on the other.
	n := len(st.Glyphs)
	dodge := func(i int) float64 { return (float64(i) + 0.5) / float64(n) }
	center := func(int) float64 { return 0.5 }
	spreadX, spreadY := dodge, center
	if el.Properties.String("sublayout", "dodge-x") == "dodge-y" {
		spreadX, spreadY = center, dodge
	}

	for i, gs := range st.Glyphs {
		gnode := glyphNode(el.ID, gs.GroupKey)
		sys.AddVariable(solver.Var(gnode, "x"), gs.Attributes.Number("x"))
		sys.AddVariable(solver.Var(gnode, "y"), gs.Attributes.Number("y"))

		ctx := table.GroupContext(gs.Rows)

		if err := m.layoutAxis(sys, el, gnode, "x", "cx1", "cx2", el.XAxis, ctx, spreadX(i)); err != nil {
			return err
		}
		if err := m.layoutAxis(sys, el, gnode, "y", "cy1", "cy2", el.YAxis, ctx, spreadY(i)); err != nil {
			return err
		}

		if glyph == nil {
			continue
		}
		for _, mark := range glyph.Marks {
			if err := m.buildMarkInstance(sys, el, gnode, mark, gs, ctx); err != nil {
				return err
			}
		}
	}

	return nil
}

// layoutAxis positions one glyph anchor coordinate within the content
// region. A bound axis yields the hard relation
//
//	anchor = (1-t)*lo + t*hi
//
// with t the scale position of the group's value, precomputed so the
// row stays linear. Without a binding the sublayout's spread position
// applies at Strong strength, so snaps can override it.
func (m *Manager) layoutAxis(sys *solver.System, el *Element, gnode, anchor, lo, hi string, axis *scale.AxisBinding, ctx dataset.Context, spread float64) error {
	terms := func(t float64) []solver.Term {
		return []solver.Term{
			{Var: solver.Var(gnode, anchor), Coeff: 1},
			{Var: solver.Var(el.ID, lo), Coeff: -(1 - t)},
			{Var: solver.Var(el.ID, hi), Coeff: -t},
		}
	}

	if axis == nil {
		sys.AddSoftLinear(terms(spread), 0, solver.Strong)

		return nil
	}

	sc, err := m.scales.Get(axis.ScaleID)
	if err != nil {
		return err
	}
	e, err := expr.Parse(axis.Expression)
	if err != nil {
		return err
	}
	v, err := e.Eval(ctx)
	if err != nil {
		return err
	}
	t, err := sc.Map(v, 0, 1)
	if err != nil {
		return err
	}
	sys.AddLinear(terms(t), 0)

	return nil
}

// buildMarkInstance contributes one mark instance node: variables,
// intrinsics, mappings with data in hand, and the weak attachment that
// keeps unmapped marks riding their glyph anchor.
func (m *Manager) buildMarkInstance(sys *solver.System, ps *Element, gnode string, mark *Element, gs *GlyphState, ctx dataset.Context) error {
	cls, err := m.registry.lookup(mark.ClassID)
	if err != nil {
		return err
	}
	attrs := gs.Marks[mark.ID]
	if attrs == nil {
		attrs = defaultAttributes(cls)
		gs.Marks[mark.ID] = attrs
	}
	mnode := markNode(ps.ID, gs.GroupKey, mark.ID)

	for _, spec := range cls.Attributes() {
		if spec.Kind != AttrNumber || !spec.Solvable {
			continue
		}
		sys.AddVariable(solver.Var(mnode, spec.Name), attrs.Number(spec.Name))
	}
	for _, ic := range cls.Constraints(mark.Properties) {
		terms := make([]solver.Term, len(ic.Terms))
		for i, t := range ic.Terms {
			terms[i] = solver.Term{Var: solver.Var(mnode, t.Attribute), Coeff: t.Coeff}
		}
		sys.AddLinear(terms, ic.Constant)
	}

	for name, mapping := range mark.Mappings {
		spec := attrSpec(cls, name)
		if spec == nil || spec.Kind != AttrNumber || !spec.Solvable {
			continue
		}
		v := solver.Var(mnode, name)
		switch mapping.Type {
		case MappingValue:
			sys.Fix(v, mapping.Value)
		case MappingParent:
			sys.AddEquality(v, solver.Var(gnode, mapping.ParentAttribute), mapping.Offset)
		case MappingScale:
			val, err := m.scaledNumber(mapping, ctx)
			if err != nil {
				return err
			}
			sys.Fix(v, val)
		}
	}

	ax, ay := anchorAttrs(mark.ClassID)
	sys.AddSoftLinear([]solver.Term{
		{Var: solver.Var(mnode, ax), Coeff: 1},
		{Var: solver.Var(gnode, "x"), Coeff: -1},
	}, 0, solver.Weak)
	sys.AddSoftLinear([]solver.Term{
		{Var: solver.Var(mnode, ay), Coeff: 1},
		{Var: solver.Var(gnode, "y"), Coeff: -1},
	}, 0, solver.Weak)

	return nil
}

// scaledNumber evaluates a scale mapping's expression in a data context
// and maps the value into the mapping's visual range.
func (m *Manager) scaledNumber(mapping Mapping, ctx dataset.Context) (float64, error) {
	sc, err := m.scales.Get(mapping.ScaleID)
	if err != nil {
		return 0, err
	}
	e, err := expr.Parse(mapping.Expression)
	if err != nil {
		return 0, err
	}
	v, err := e.Eval(ctx)
	if err != nil {
		return 0, err
	}

	return sc.Map(v, mapping.RangeLo, mapping.RangeHi)
}

// buildSnapConstraints expands the chart's snap list into solver rows.
// Ends naming chart-level elements resolve to one node; ends naming
// glyph marks resolve to one node per glyph instance and pair up per
// instance when both ends share the glyph.
func (m *Manager) buildSnapConstraints(sys *solver.System) error {
	for _, c := range m.spec.Constraints {
		if c.Type != "snap" {
			continue
		}
		aNodes, aGlyph, err := m.snapNodes(c.Element)
		if err != nil {
			return err
		}
		bNodes, bGlyph, err := m.snapNodes(c.TargetElement)
		if err != nil {
			return err
		}

		switch {
		case aGlyph == "" && bGlyph == "":
			sys.AddEquality(solver.Var(aNodes[0], c.Attribute), solver.Var(bNodes[0], c.TargetAttribute), c.Gap)
		case aGlyph != "" && aGlyph == bGlyph && len(aNodes) == len(bNodes):
			// Mark-to-mark within the same glyph: one row per instance.
			for i := range aNodes {
				sys.AddEquality(solver.Var(aNodes[i], c.Attribute), solver.Var(bNodes[i], c.TargetAttribute), c.Gap)
			}
		default:
			// Mark-to-chart (or mismatched glyphs): every instance
			// snaps to the single target node.
			for _, an := range aNodes {
				for _, bn := range bNodes {
					sys.AddEquality(solver.Var(an, c.Attribute), solver.Var(bn, c.TargetAttribute), c.Gap)
				}
			}
		}
	}

	return nil
}

// snapNodes resolves a constraint end to its solver node ids. Glyph
// marks fan out to one node per glyph instance; the second result names
// the owning glyph ("" for chart-level elements).
func (m *Manager) snapNodes(elementID string) ([]string, string, error) {
	el, glyph, err := m.findElement(elementID)
	if err != nil {
		return nil, "", err
	}
	if glyph == nil {
		return []string{el.ID}, "", nil
	}

	var nodes []string
	for _, ps := range m.spec.Elements {
		if ps.GlyphID != glyph.ID {
			continue
		}
		st := m.state.Elements[ps.ID]
		if st == nil {
			continue
		}
		for _, gs := range st.Glyphs {
			nodes = append(nodes, markNode(ps.ID, gs.GroupKey, el.ID))
		}
	}

	return nodes, glyph.ID, nil
}

// writeBackEpsilon bounds the solver's pass-to-pass jitter: the
// stabilization tier pulls each solve toward the previous pass's
// values, so re-solving an unchanged chart moves results at roundoff
// scale. Deltas below the threshold keep the old value, making an
// unmutated resolve an exact fixed point.
const writeBackEpsilon = 1e-6

// writeBack copies solved values into the state tree. Only solver-owned
// attributes are overwritten; everything else is resolved separately.
func (m *Manager) writeBack(sol *solver.Solution) {
	read := func(node, name string, attrs Attributes) {
		v, ok := sol.Values[solver.Var(node, name)]
		if !ok {
			return
		}
		if prev, has := attrs[name]; has && prev.Kind == AttrNumber && math.Abs(prev.Num-v) < writeBackEpsilon {
			return
		}
		attrs[name] = NumberValue(v)
	}

	for _, el := range m.spec.Elements {
		cls, err := m.registry.lookup(el.ClassID)
		if err != nil {
			continue
		}
		st := m.state.Elements[el.ID]
		for _, spec := range cls.Attributes() {
			if spec.Kind == AttrNumber && spec.Solvable {
				read(el.ID, spec.Name, st.Attributes)
			}
		}

		if !IsPlotSegment(el.ClassID) {
			continue
		}
		glyph := m.spec.Glyph(el.GlyphID)
		for _, gs := range st.Glyphs {
			gnode := glyphNode(el.ID, gs.GroupKey)
			read(gnode, "x", gs.Attributes)
			read(gnode, "y", gs.Attributes)
			if glyph == nil {
				continue
			}
			for _, mark := range glyph.Marks {
				mcls, err := m.registry.lookup(mark.ClassID)
				if err != nil {
					continue
				}
				mnode := markNode(el.ID, gs.GroupKey, mark.ID)
				for _, spec := range mcls.Attributes() {
					if spec.Kind == AttrNumber && spec.Solvable {
						read(mnode, spec.Name, gs.Marks[mark.ID])
					}
				}
			}
		}
	}
}

// resolveNonSolver resolves the attributes the solver does not own:
// strings (colors, text) and non-solvable numbers (sizes, opacities).
func (m *Manager) resolveNonSolver() error {
	for _, el := range m.spec.Elements {
		cls, err := m.registry.lookup(el.ClassID)
		if err != nil {
			return err
		}
		st := m.state.Elements[el.ID]
		if err := m.resolveDirect(cls, el, st.Attributes, nil); err != nil {
			return err
		}

		if !IsPlotSegment(el.ClassID) {
			continue
		}
		glyph := m.spec.Glyph(el.GlyphID)
		if glyph == nil {
			continue
		}
		table, err := m.dataset.Table(el.Table)
		if err != nil {
			return err
		}
		for _, gs := range st.Glyphs {
			ctx := table.GroupContext(gs.Rows)
			for _, mark := range glyph.Marks {
				mcls, err := m.registry.lookup(mark.ClassID)
				if err != nil {
					return err
				}
				if err := m.resolveDirect(mcls, mark, gs.Marks[mark.ID], ctx); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

// resolveDirect applies an element's non-solver mappings to one
// attribute map. ctx supplies data for scale and text mappings and is
// nil outside glyph instances, where those mappings have nothing to
// evaluate against.
func (m *Manager) resolveDirect(cls Class, el *Element, attrs Attributes, ctx dataset.Context) error {
	for name, mapping := range el.Mappings {
		spec := attrSpec(cls, name)
		if spec == nil {
			continue
		}
		if spec.Kind == AttrNumber && spec.Solvable {
			continue // solver territory
		}

		switch mapping.Type {
		case MappingValue:
			if spec.Kind == AttrNumber {
				attrs[name] = NumberValue(mapping.Value)
			} else {
				attrs[name] = StringValue(mapping.StringValue)
			}

		case MappingText:
			if ctx == nil {
				continue
			}
			tpl, err := expr.ParseTemplate(mapping.Template)
			if err != nil {
				return err
			}
			s, err := tpl.Eval(ctx)
			if err != nil {
				return err
			}
			attrs[name] = StringValue(s)

		case MappingScale:
			if ctx == nil {
				continue
			}
			if spec.Kind == AttrString {
				s, err := m.scaledColor(mapping, ctx)
				if err != nil {
					return err
				}
				attrs[name] = StringValue(s)
			} else {
				f, err := m.scaledNumber(mapping, ctx)
				if err != nil {
					return err
				}
				attrs[name] = NumberValue(f)
			}
		}
	}

	return nil
}

// scaledColor evaluates a scale mapping's expression and maps the value
// to a color.
func (m *Manager) scaledColor(mapping Mapping, ctx dataset.Context) (string, error) {
	sc, err := m.scales.Get(mapping.ScaleID)
	if err != nil {
		return "", err
	}
	e, err := expr.Parse(mapping.Expression)
	if err != nil {
		return "", err
	}
	v, err := e.Eval(ctx)
	if err != nil {
		return "", err
	}

	return sc.MapColor(v)
}

// finalizeLinks fills each links element's anchors vector with the
// solved glyph anchor coordinates of its plot-segment, in glyph order.
func (m *Manager) finalizeLinks() {
	for _, el := range m.spec.Elements {
		if el.ClassID != ClassLinks {
			continue
		}
		psID := el.Properties.String("plotSegment", "")
		ps := m.state.Elements[psID]
		st := m.state.Elements[el.ID]
		if ps == nil || st == nil {
			continue
		}
		anchors := make([]float64, 0, 2*len(ps.Glyphs))
		for _, gs := range ps.Glyphs {
			anchors = append(anchors, gs.Attributes.Number("x"), gs.Attributes.Number("y"))
		}
		st.Attributes["anchors"] = VectorValue(anchors)
	}
}
