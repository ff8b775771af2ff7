package chart

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/vizsolve/vizsolve/dataset"
	"github.com/vizsolve/vizsolve/expr"
	"github.com/vizsolve/vizsolve/scale"
	"github.com/vizsolve/vizsolve/solver"
)

// Default chart frame, in canvas units centered on the origin.
const (
	DefaultChartWidth  = 800.0
	DefaultChartHeight = 600.0
)

// Option configures a Manager.
type Option func(*managerOptions)

type managerOptions struct {
	log    *slog.Logger
	width  float64
	height float64
}

func defaultManagerOptions() managerOptions {
	return managerOptions{
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		width:  DefaultChartWidth,
		height: DefaultChartHeight,
	}
}

// WithLogger routes the Manager's structured log output.
// Panics on nil: a logger is programmer-supplied, not user input.
func WithLogger(l *slog.Logger) Option {
	if l == nil {
		panic("chart: WithLogger(nil)")
	}

	return func(o *managerOptions) { o.log = l }
}

// WithChartSize overrides the default chart frame.
// Panics on non-positive dimensions.
func WithChartSize(width, height float64) Option {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("chart: WithChartSize(%v, %v): dimensions must be positive", width, height))
	}

	return func(o *managerOptions) {
		o.width = width
		o.height = height
	}
}

// Manager owns a chart: the specification tree, the mirrored state tree,
// the scale registry, and the solve cycle. It is the single mutator of
// both trees; callers never write them directly.
//
// Every edit operation follows the same shape: validate, run the
// before-mutate hooks (history snapshot point), mutate the
// specification, rebuild dependent state, emit structure events, solve,
// emit the graphics event. Validation happens before any mutation so a
// failed operation leaves both trees untouched.
//
// A Manager is not safe for concurrent use.
type Manager struct {
	dataset  *dataset.Dataset
	spec     *Specification
	state    *State
	registry *classRegistry
	scales   *scale.Registry
	infer    *scale.Inferencer

	notify       notifier
	beforeMutate []func()
	selection    map[string]bool
	generation   uint64
	failures     []solver.Failure
	log          *slog.Logger
	opts         managerOptions
}

// NewManager builds a Manager over a dataset with an empty chart.
func NewManager(ds *dataset.Dataset, opts ...Option) *Manager {
	o := defaultManagerOptions()
	for _, opt := range opts {
		opt(&o)
	}

	reg := scale.NewRegistry()
	m := &Manager{
		dataset:   ds,
		spec:      &Specification{ID: uuid.New().String(), Mappings: make(map[string]Mapping)},
		state:     newState(),
		registry:  defaultRegistry(),
		scales:    reg,
		infer:     scale.NewInferencer(ds, reg),
		selection: make(map[string]bool),
		log:       o.log,
		opts:      o,
	}
	m.initChartState()

	return m
}

// initChartState seeds the chart node's own attributes: the frame bounds
// derived from the configured size, origin-centered.
func (m *Manager) initChartState() {
	w, h := m.opts.width, m.opts.height
	m.state.Attributes = Attributes{
		"width":  NumberValue(w),
		"height": NumberValue(h),
		"x1":     NumberValue(-w / 2),
		"y1":     NumberValue(-h / 2),
		"x2":     NumberValue(w / 2),
		"y2":     NumberValue(h / 2),
	}
}

// Specification returns the live specification tree. Treat it as
// read-only; mutations go through Manager operations.
func (m *Manager) Specification() *Specification { return m.spec }

// State returns the live state tree, read-only to callers.
func (m *Manager) State() *State { return m.state }

// Scales returns the chart's scale registry.
func (m *Manager) Scales() *scale.Registry { return m.scales }

// Dataset returns the backing dataset.
func (m *Manager) Dataset() *dataset.Dataset { return m.dataset }

// Generation returns the edit-cycle counter.
func (m *Manager) Generation() uint64 { return m.generation }

// LastFailures reports the unsatisfiable components of the most recent
// solve, empty when every hard constraint held.
func (m *Manager) LastFailures() []solver.Failure { return m.failures }

// Subscribe registers an event subscriber. Within one edit cycle,
// structure events precede the graphics event.
func (m *Manager) Subscribe(s Subscriber) { m.notify.subscribe(s) }

// OnBeforeMutate registers a hook invoked before every mutation, after
// validation passed. History layers snapshot here.
func (m *Manager) OnBeforeMutate(fn func()) {
	m.beforeMutate = append(m.beforeMutate, fn)
}

func (m *Manager) preMutate() {
	for _, fn := range m.beforeMutate {
		fn()
	}
	m.generation++
}

// resolveOrUndo runs a solve cycle after a specification edit. A solve
// error (an expression or scale failing at evaluation time) undoes the
// edit and re-resolves, so the chart stays in its prior valid state
// instead of poisoning every later cycle.
func (m *Manager) resolveOrUndo(undo func()) error {
	err := m.resolve()
	if err == nil {
		return nil
	}
	undo()
	if rbErr := m.resolve(); rbErr != nil {
		m.log.Warn("resolve after rollback failed", "error", rbErr)
	}

	return err
}

func (m *Manager) emitStructure(elementID string) {
	m.notify.emit(Event{Kind: EventStructure, Element: elementID, Generation: m.generation})
}

func (m *Manager) emitGraphics() {
	m.notify.emit(Event{Kind: EventGraphics, Generation: m.generation})
}

func (m *Manager) emitSelection() {
	m.notify.emit(Event{Kind: EventSelection, Generation: m.generation})
}

// findElement locates an element by id anywhere in the specification:
// chart level first, then glyph marks. The second result is the owning
// glyph, nil for chart-level elements.
func (m *Manager) findElement(id string) (*Element, *Glyph, error) {
	for _, el := range m.spec.Elements {
		if el.ID == id {
			return el, nil, nil
		}
	}
	for _, g := range m.spec.Glyphs {
		for _, mark := range g.Marks {
			if mark.ID == id {
				return mark, g, nil
			}
		}
	}

	return nil, nil, fmt.Errorf("chart: element %q: %w", id, ErrNotFound)
}

// AddGlyph creates an empty glyph template over a table.
func (m *Manager) AddGlyph(table string) (*Glyph, error) {
	if _, err := m.dataset.Table(table); err != nil {
		return nil, err
	}

	m.preMutate()
	g := &Glyph{ID: uuid.New().String(), Table: table}
	m.spec.Glyphs = append(m.spec.Glyphs, g)
	m.emitStructure("")

	return g, nil
}

// AddGlyphMark appends a mark element to a glyph template and seeds a
// state node for it in every glyph instance of plot-segments using the
// glyph.
func (m *Manager) AddGlyphMark(glyphID, classID string) (*Element, error) {
	g := m.spec.Glyph(glyphID)
	if g == nil {
		return nil, fmt.Errorf("chart: glyph %q: %w", glyphID, ErrNotFound)
	}
	cls, err := m.registry.lookup(classID)
	if err != nil {
		return nil, err
	}
	if IsPlotSegment(classID) {
		return nil, fmt.Errorf("chart: class %q cannot live inside a glyph: %w", classID, ErrUnknownClass)
	}

	m.preMutate()
	mark := &Element{
		ID:         uuid.New().String(),
		ClassID:    classID,
		Mappings:   make(map[string]Mapping),
		Properties: cls.DefaultProperties().clone(),
	}
	g.Marks = append(g.Marks, mark)

	for _, el := range m.spec.Elements {
		if el.GlyphID != glyphID {
			continue
		}
		if st := m.state.Elements[el.ID]; st != nil {
			for _, gs := range st.Glyphs {
				gs.Marks[mark.ID] = defaultAttributes(cls)
			}
		}
	}
	m.emitStructure(mark.ID)
	err = m.resolve()

	return mark, err
}

// AddElement appends a chart-level element (mark, legend, links). Plot
// segments go through AddPlotSegment.
func (m *Manager) AddElement(classID string) (*Element, error) {
	cls, err := m.registry.lookup(classID)
	if err != nil {
		return nil, err
	}
	if IsPlotSegment(classID) {
		return nil, fmt.Errorf("chart: class %q needs a glyph and table, use AddPlotSegment: %w", classID, ErrNotPlotSegment)
	}

	m.preMutate()
	el := &Element{
		ID:         uuid.New().String(),
		ClassID:    classID,
		Mappings:   make(map[string]Mapping),
		Properties: cls.DefaultProperties().clone(),
	}
	m.spec.Elements = append(m.spec.Elements, el)
	m.state.Elements[el.ID] = &ElementState{Attributes: defaultAttributes(cls)}
	m.emitStructure(el.ID)
	err = m.resolve()

	return el, err
}

// AddPlotSegment appends a plot-segment replicating a glyph over a
// table's groups. With a nil groupBy every row is its own glyph.
func (m *Manager) AddPlotSegment(classID, glyphID, table string, groupBy *dataset.GroupBy) (*Element, error) {
	cls, err := m.registry.lookup(classID)
	if err != nil {
		return nil, err
	}
	if !IsPlotSegment(classID) {
		return nil, fmt.Errorf("chart: class %q: %w", classID, ErrNotPlotSegment)
	}
	g := m.spec.Glyph(glyphID)
	if g == nil {
		return nil, fmt.Errorf("chart: glyph %q: %w", glyphID, ErrNotFound)
	}
	if _, err := m.dataset.Table(table); err != nil {
		return nil, err
	}
	if g.Table != table {
		return nil, fmt.Errorf("chart: glyph %q is over table %q, not %q: %w", glyphID, g.Table, table, ErrBadMapping)
	}
	if groupBy != nil {
		tbl, _ := m.dataset.Table(table)
		if !tbl.HasColumn(groupBy.Column) {
			return nil, fmt.Errorf("chart: groupBy column %q: %w", groupBy.Column, dataset.ErrUnknownColumn)
		}
	}

	m.preMutate()
	el := &Element{
		ID:         uuid.New().String(),
		ClassID:    classID,
		Mappings:   make(map[string]Mapping),
		Properties: cls.DefaultProperties().clone(),
		GlyphID:    glyphID,
		Table:      table,
		GroupBy:    groupBy,
	}
	m.spec.Elements = append(m.spec.Elements, el)
	st := &ElementState{Attributes: defaultAttributes(cls)}
	m.state.Elements[el.ID] = st
	if err := m.remapGlyphs(el, st); err != nil {
		// Roll the structural change back; validation above makes this
		// unreachable short of dataset errors mid-flight.
		m.spec.Elements = m.spec.Elements[:len(m.spec.Elements)-1]
		delete(m.state.Elements, el.ID)

		return nil, err
	}
	m.emitStructure(el.ID)
	err = m.resolve()

	return el, err
}

// RemoveElement deletes a chart-level element, pruning constraints that
// reference it and any selection on it. Removing an id that is already
// gone is a no-op: callers may double-dispatch deletes.
func (m *Manager) RemoveElement(id string) error {
	idx := -1
	for i, el := range m.spec.Elements {
		if el.ID == id {
			idx = i

			break
		}
	}
	if idx < 0 {
		return nil
	}

	m.preMutate()
	m.spec.Elements = append(m.spec.Elements[:idx], m.spec.Elements[idx+1:]...)
	delete(m.state.Elements, id)
	m.pruneConstraints(func(c Constraint) bool { return c.references(id) })
	if m.selection[id] {
		delete(m.selection, id)
		m.emitSelection()
	}
	m.emitStructure(id)

	return m.resolve()
}

// RemoveGlyphMark deletes a mark from a glyph template and its state
// nodes from every glyph instance. Missing glyph or mark ids are
// tolerated as no-ops, matching RemoveElement.
func (m *Manager) RemoveGlyphMark(glyphID, markID string) error {
	g := m.spec.Glyph(glyphID)
	if g == nil {
		return nil
	}
	idx := -1
	for i, mark := range g.Marks {
		if mark.ID == markID {
			idx = i

			break
		}
	}
	if idx < 0 {
		return nil
	}

	m.preMutate()
	g.Marks = append(g.Marks[:idx], g.Marks[idx+1:]...)
	m.pruneConstraints(func(c Constraint) bool { return c.references(markID) })
	for _, el := range m.spec.Elements {
		if el.GlyphID != glyphID {
			continue
		}
		if st := m.state.Elements[el.ID]; st != nil {
			for _, gs := range st.Glyphs {
				delete(gs.Marks, markID)
			}
		}
	}
	if m.selection[markID] {
		delete(m.selection, markID)
		m.emitSelection()
	}
	m.emitStructure(markID)

	return m.resolve()
}

// ReorderChartElement moves the element at index from to index to,
// shifting the elements in between. Identity and resolved attributes are
// untouched.
func (m *Manager) ReorderChartElement(from, to int) error {
	if err := reorder(m.spec.Elements, from, to); err != nil {
		return err
	}
	m.preMutate()
	moveElement(m.spec.Elements, from, to)
	m.emitStructure("")
	m.emitGraphics()

	return nil
}

// ReorderGlyphMark moves a glyph template mark between indices.
func (m *Manager) ReorderGlyphMark(glyphID string, from, to int) error {
	g := m.spec.Glyph(glyphID)
	if g == nil {
		return fmt.Errorf("chart: glyph %q: %w", glyphID, ErrNotFound)
	}
	if err := reorder(g.Marks, from, to); err != nil {
		return err
	}
	m.preMutate()
	moveElement(g.Marks, from, to)
	m.emitStructure(glyphID)
	m.emitGraphics()

	return nil
}

func reorder(list []*Element, from, to int) error {
	if from < 0 || from >= len(list) || to < 0 || to >= len(list) {
		return fmt.Errorf("chart: reorder %d -> %d of %d: %w", from, to, len(list), ErrNotFound)
	}

	return nil
}

// moveElement shifts list[from] to position to, preserving the relative
// order of everything else.
func moveElement(list []*Element, from, to int) {
	el := list[from]
	if from < to {
		copy(list[from:], list[from+1:to+1])
	} else {
		copy(list[to+1:], list[to:from])
	}
	list[to] = el
}

// SetMapping declares the source of one attribute's value. Scale
// mappings built from data go through MapData; SetMapping accepts
// value, text, parent and pre-built scale mappings.
func (m *Manager) SetMapping(elementID, attribute string, mapping Mapping) error {
	el, _, err := m.findElement(elementID)
	if err != nil {
		return err
	}
	cls, err := m.registry.lookup(el.ClassID)
	if err != nil {
		return err
	}
	spec := attrSpec(cls, attribute)
	if spec == nil {
		return fmt.Errorf("chart: class %q has no attribute %q: %w", el.ClassID, attribute, ErrBadMapping)
	}
	if err := m.validateMapping(cls, spec, mapping); err != nil {
		return err
	}

	m.preMutate()

	return m.installMapping(el, attribute, mapping)
}

// installMapping commits one mapping and solves, undoing the commit if
// the mapping fails at evaluation time.
func (m *Manager) installMapping(el *Element, attribute string, mapping Mapping) error {
	if el.Mappings == nil {
		el.Mappings = make(map[string]Mapping)
	}
	prev, had := el.Mappings[attribute]
	el.Mappings[attribute] = mapping

	return m.resolveOrUndo(func() {
		if had {
			el.Mappings[attribute] = prev
		} else {
			delete(el.Mappings, attribute)
		}
	})
}

// validateMapping checks a mapping against the attribute's schema before
// anything mutates.
func (m *Manager) validateMapping(cls Class, spec *AttrSpec, mapping Mapping) error {
	switch mapping.Type {
	case MappingValue:
		return nil
	case MappingText:
		if spec.Kind != AttrString {
			return fmt.Errorf("chart: text mapping on %s attribute %q: %w", kindName(spec.Kind), spec.Name, ErrBadMapping)
		}
		if _, err := expr.ParseTemplate(mapping.Template); err != nil {
			return err
		}

		return nil
	case MappingScale:
		if IsPlotSegment(cls.ID()) && spec.Solvable {
			// Frame geometry has no per-row data; positions come
			// from axis bindings, not scale mappings.
			return fmt.Errorf("chart: scale mapping on plot-segment attribute %q: %w", spec.Name, ErrBadMapping)
		}
		if !m.scales.Has(mapping.ScaleID) {
			return fmt.Errorf("chart: scale %q: %w", mapping.ScaleID, scale.ErrUnknownScale)
		}
		if _, err := expr.Parse(mapping.Expression); err != nil {
			return err
		}

		return nil
	case MappingParent:
		if spec.Kind != AttrNumber {
			return fmt.Errorf("chart: parent mapping on %s attribute %q: %w", kindName(spec.Kind), spec.Name, ErrBadMapping)
		}

		return nil
	default:
		return fmt.Errorf("chart: mapping type %q: %w", mapping.Type, ErrBadMapping)
	}
}

func kindName(k AttrKind) string {
	switch k {
	case AttrNumber:
		return "number"
	case AttrString:
		return "string"
	default:
		return "vector"
	}
}

// MapData binds a data expression to an attribute: a scale is inferred
// (or reused) for the expression's values and a scale mapping installed.
// Text-role attributes get a template mapping instead, since no scale is
// warranted for plain text. rangeLo/rangeHi bound the visual range for
// numeric attributes and are ignored for color and text.
//
// A bare numerical column is rewritten to avg(column) so the expression
// stays well-defined when glyphs aggregate multi-row groups.
func (m *Manager) MapData(elementID, attribute, expression string, kind dataset.Kind, rangeLo, rangeHi float64) error {
	el, glyph, err := m.findElement(elementID)
	if err != nil {
		return err
	}
	cls, err := m.registry.lookup(el.ClassID)
	if err != nil {
		return err
	}
	spec := attrSpec(cls, attribute)
	if spec == nil {
		return fmt.Errorf("chart: class %q has no attribute %q: %w", el.ClassID, attribute, ErrBadMapping)
	}
	if IsPlotSegment(el.ClassID) && spec.Solvable {
		return fmt.Errorf("chart: plot-segment attribute %q takes an axis binding, not a data mapping: %w", attribute, ErrBadMapping)
	}

	table, groupBy := m.bindingContext(el, glyph)
	if table == "" {
		return fmt.Errorf("chart: element %q has no data context: %w", elementID, ErrBadMapping)
	}
	if _, err := expr.Parse(expression); err != nil {
		return err
	}
	if kind == dataset.KindNumerical {
		if col, ok := expr.ColumnName(expr.MustParse(expression)); ok && isBareColumn(expression) {
			expression = "avg(" + col + ")"
		}
	}

	// Hooks must snapshot the chart before inference touches the
	// scale registry: inference can widen or extend a shared scale,
	// and scales are part of the persisted document.
	m.preMutate()
	sc, err := m.infer.Infer(scale.Request{
		Table:       table,
		Expressions: []string{expression},
		GroupBy:     groupBy,
		Kind:        kind,
		Role:        spec.Role,
	})
	if err != nil {
		return err
	}

	var mapping Mapping
	if sc == nil {
		// Text role: render the raw value through a template.
		mapping = Mapping{Type: MappingText, Template: "${" + expression + "}"}
	} else {
		mapping = Mapping{
			Type:       MappingScale,
			ScaleID:    sc.ID,
			Expression: expression,
			RangeLo:    rangeLo,
			RangeHi:    rangeHi,
		}
	}

	return m.installMapping(el, attribute, mapping)
}

// isBareColumn reports whether the expression source is a single bare or
// backtick-quoted column reference.
func isBareColumn(src string) bool {
	e, err := expr.Parse(src)
	if err != nil {
		return false
	}
	col, ok := expr.ColumnName(e)

	return ok && (src == col || src == "`"+col+"`")
}

// bindingContext resolves the data context of an element: a glyph mark
// inherits its glyph's table and the grouping of the plot-segments using
// it; a plot-segment carries its own.
func (m *Manager) bindingContext(el *Element, glyph *Glyph) (string, *dataset.GroupBy) {
	if glyph != nil {
		for _, ps := range m.spec.Elements {
			if ps.GlyphID == glyph.ID {
				return glyph.Table, ps.GroupBy
			}
		}

		return glyph.Table, nil
	}
	if IsPlotSegment(el.ClassID) {
		return el.Table, el.GroupBy
	}

	return "", nil
}

// RemoveMapping clears an attribute's mapping and prunes snap
// constraints referencing that element/attribute pair, so no constraint
// outlives the mapping that motivated it.
func (m *Manager) RemoveMapping(elementID, attribute string) error {
	el, _, err := m.findElement(elementID)
	if err != nil {
		return err
	}
	if _, ok := el.Mappings[attribute]; !ok {
		return fmt.Errorf("chart: element %q has no mapping for %q: %w", elementID, attribute, ErrNotFound)
	}

	m.preMutate()
	delete(el.Mappings, attribute)
	m.pruneConstraints(func(c Constraint) bool {
		return (c.Element == elementID && c.Attribute == attribute) ||
			(c.TargetElement == elementID && c.TargetAttribute == attribute)
	})

	return m.resolve()
}

// AddSnapConstraint records element.attribute = target.targetAttribute + gap.
func (m *Manager) AddSnapConstraint(elementID, attribute, targetID, targetAttribute string, gap float64) error {
	if err := m.checkSnapEnd(elementID, attribute); err != nil {
		return err
	}
	if err := m.checkSnapEnd(targetID, targetAttribute); err != nil {
		return err
	}

	m.preMutate()
	m.spec.Constraints = append(m.spec.Constraints, Constraint{
		Type:            "snap",
		Element:         elementID,
		Attribute:       attribute,
		TargetElement:   targetID,
		TargetAttribute: targetAttribute,
		Gap:             gap,
	})

	return m.resolve()
}

func (m *Manager) checkSnapEnd(elementID, attribute string) error {
	el, _, err := m.findElement(elementID)
	if err != nil {
		return err
	}
	cls, err := m.registry.lookup(el.ClassID)
	if err != nil {
		return err
	}
	spec := attrSpec(cls, attribute)
	if spec == nil || spec.Kind != AttrNumber {
		return fmt.Errorf("chart: class %q has no numeric attribute %q: %w", el.ClassID, attribute, ErrBadMapping)
	}

	return nil
}

// pruneConstraints drops every constraint matching the predicate.
func (m *Manager) pruneConstraints(drop func(Constraint) bool) {
	kept := m.spec.Constraints[:0]
	for _, c := range m.spec.Constraints {
		if !drop(c) {
			kept = append(kept, c)
		}
	}
	m.spec.Constraints = kept
}

// BindDataToAxis binds an expression to a plot-segment axis ("x" or
// "y"): a position scale is inferred and the axis carries the exact
// domain the scale computed.
func (m *Manager) BindDataToAxis(plotSegmentID, axis, expression string, kind dataset.Kind) error {
	el, _, err := m.findElement(plotSegmentID)
	if err != nil {
		return err
	}
	if !IsPlotSegment(el.ClassID) {
		return fmt.Errorf("chart: element %q: %w", plotSegmentID, ErrNotPlotSegment)
	}
	if axis != "x" && axis != "y" {
		return fmt.Errorf("chart: axis %q: %w", axis, ErrBadMapping)
	}
	if _, err := expr.Parse(expression); err != nil {
		return err
	}

	// Same ordering as MapData: the snapshot hook fires before
	// inference mutates the scale registry.
	m.preMutate()
	sc, err := m.infer.Infer(scale.Request{
		Table:       el.Table,
		Expressions: []string{expression},
		GroupBy:     el.GroupBy,
		Kind:        kind,
		Role:        scale.RolePosition,
	})
	if err != nil {
		return err
	}
	if sc == nil {
		return fmt.Errorf("chart: axis binding for %q warrants no scale: %w", expression, ErrBadMapping)
	}

	binding := sc.Axis(expression)
	prevX, prevY := el.XAxis, el.YAxis
	if axis == "x" {
		el.XAxis = &binding
	} else {
		el.YAxis = &binding
	}

	return m.resolveOrUndo(func() {
		el.XAxis, el.YAxis = prevX, prevY
	})
}

// SetFilter installs a row filter expression on a plot-segment and
// remaps its glyphs. An empty filter clears filtering.
func (m *Manager) SetFilter(plotSegmentID, filter string) error {
	el, st, err := m.plotSegment(plotSegmentID)
	if err != nil {
		return err
	}
	if filter != "" {
		if _, err := expr.Parse(filter); err != nil {
			return err
		}
	}

	m.preMutate()
	prev := el.Filter
	el.Filter = filter
	if err := m.remapGlyphs(el, st); err != nil {
		el.Filter = prev

		return err
	}
	m.emitStructure(plotSegmentID)

	return m.resolve()
}

// SetGroupBy changes a plot-segment's grouping and regenerates its glyph
// states.
func (m *Manager) SetGroupBy(plotSegmentID string, groupBy *dataset.GroupBy) error {
	el, st, err := m.plotSegment(plotSegmentID)
	if err != nil {
		return err
	}
	if groupBy != nil {
		tbl, terr := m.dataset.Table(el.Table)
		if terr != nil {
			return terr
		}
		if !tbl.HasColumn(groupBy.Column) {
			return fmt.Errorf("chart: groupBy column %q: %w", groupBy.Column, dataset.ErrUnknownColumn)
		}
	}

	m.preMutate()
	prev := el.GroupBy
	el.GroupBy = groupBy
	if err := m.remapGlyphs(el, st); err != nil {
		el.GroupBy = prev

		return err
	}
	m.emitStructure(plotSegmentID)

	return m.resolve()
}

func (m *Manager) plotSegment(id string) (*Element, *ElementState, error) {
	el, _, err := m.findElement(id)
	if err != nil {
		return nil, nil, err
	}
	if !IsPlotSegment(el.ClassID) {
		return nil, nil, fmt.Errorf("chart: element %q: %w", id, ErrNotPlotSegment)
	}

	return el, m.state.Elements[id], nil
}

// ConvertPlotSegment switches a plot-segment between layout kinds. The
// dispatch is an explicit exhaustive match over the kind: mappings whose
// attributes exist in the new schema are preserved, shared properties
// carry over, kind-specific properties of the old class are dropped, the
// resolved state is discarded and re-initialized from the new class.
func (m *Manager) ConvertPlotSegment(id, newClassID string) error {
	el, st, err := m.plotSegment(id)
	if err != nil {
		return err
	}
	switch LayoutKind(newClassID) {
	case "cartesian", "polar", "curve":
	default:
		return fmt.Errorf("chart: target class %q: %w", newClassID, ErrNotPlotSegment)
	}
	if el.ClassID == newClassID {
		return nil
	}
	newCls, err := m.registry.lookup(newClassID)
	if err != nil {
		return err
	}

	m.preMutate()
	el.ClassID = newClassID

	// Mappings survive when the new schema knows the attribute.
	for name := range el.Mappings {
		if attrSpec(newCls, name) == nil {
			delete(el.Mappings, name)
		}
	}

	// Properties: start from the new defaults, carry over values for
	// keys the new class understands. Old kind-specific keys vanish.
	next := newCls.DefaultProperties().clone()
	for k := range next {
		if v, ok := el.Properties[k]; ok {
			next[k] = v
		}
	}
	el.Properties = next

	// Fresh state: no stale attributes from the old layout life.
	st.Attributes = defaultAttributes(newCls)
	st.Glyphs = nil
	if err := m.remapGlyphs(el, st); err != nil {
		return err
	}
	m.emitStructure(id)

	return m.resolve()
}

// UpdateElementAttribute writes a resolved value directly into an
// element's state. The value becomes the variable's preferred position
// for subsequent solves, so it sticks wherever constraints allow.
func (m *Manager) UpdateElementAttribute(elementID, attribute string, value AttributeValue) error {
	el, glyph, err := m.findElement(elementID)
	if err != nil {
		return err
	}
	if glyph != nil {
		return fmt.Errorf("chart: %q is a glyph mark, update its instances via mappings: %w", elementID, ErrBadMapping)
	}
	cls, err := m.registry.lookup(el.ClassID)
	if err != nil {
		return err
	}
	if attrSpec(cls, attribute) == nil {
		return fmt.Errorf("chart: class %q has no attribute %q: %w", el.ClassID, attribute, ErrBadMapping)
	}

	m.preMutate()
	m.state.Elements[elementID].Attributes[attribute] = value

	return m.resolve()
}

// SelectElement marks an element selected.
func (m *Manager) SelectElement(id string) error {
	if _, _, err := m.findElement(id); err != nil {
		return err
	}
	m.selection[id] = true
	m.emitSelection()

	return nil
}

// ClearSelection empties the selection.
func (m *Manager) ClearSelection() {
	if len(m.selection) == 0 {
		return
	}
	m.selection = make(map[string]bool)
	m.emitSelection()
}

// Selected reports whether an element is selected.
func (m *Manager) Selected(id string) bool { return m.selection[id] }

// Resolve re-runs the solve cycle without mutating anything. Calling it
// twice in a row yields identical resolved values.
func (m *Manager) Resolve() error { return m.resolve() }
