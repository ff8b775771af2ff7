// Package chart: the specification and state tree model. Element classes
// live in classes_*.go, the Manager in manager.go.
package chart

import (
	"github.com/vizsolve/vizsolve/dataset"
	"github.com/vizsolve/vizsolve/scale"
)

// MappingType tags the Mapping union.
type MappingType string

const (
	// MappingValue pins the attribute to a literal value.
	MappingValue MappingType = "value"
	// MappingScale derives the attribute from data through a scale.
	MappingScale MappingType = "scale"
	// MappingText renders the attribute from a text template.
	MappingText MappingType = "text"
	// MappingParent snaps the attribute to an enclosing element's
	// attribute ("_element" relative positioning).
	MappingParent MappingType = "parent"
)

// Mapping is the declared source of one resolved attribute value. It is
// a tagged union: Type selects which fields are meaningful. An attribute
// with no Mapping entry is unmapped and takes its class default.
type Mapping struct {
	Type MappingType `json:"type" yaml:"type"`

	// MappingValue: exactly one of Value / StringValue applies,
	// matching the attribute's value type.
	Value       float64 `json:"value,omitempty" yaml:"value,omitempty"`
	StringValue string  `json:"stringValue,omitempty" yaml:"stringValue,omitempty"`

	// MappingScale: the scale, its source expression, and the visual
	// range the scale maps into for numeric attributes.
	ScaleID    string  `json:"scaleId,omitempty" yaml:"scaleId,omitempty"`
	Expression string  `json:"expression,omitempty" yaml:"expression,omitempty"`
	RangeLo    float64 `json:"rangeLo,omitempty" yaml:"rangeLo,omitempty"`
	RangeHi    float64 `json:"rangeHi,omitempty" yaml:"rangeHi,omitempty"`

	// MappingText: the template source.
	Template string `json:"template,omitempty" yaml:"template,omitempty"`

	// MappingParent: the enclosing element's attribute to snap to, and
	// an optional offset.
	ParentAttribute string  `json:"parentAttribute,omitempty" yaml:"parentAttribute,omitempty"`
	Offset          float64 `json:"offset,omitempty" yaml:"offset,omitempty"`
}

// Properties is free-form class-specific configuration. Values are plain
// scalars (float64, string, bool) so specifications stay serializable.
type Properties map[string]any

// clone returns a shallow copy; scalar values need no deep copy.
func (p Properties) clone() Properties {
	out := make(Properties, len(p))
	for k, v := range p {
		out[k] = v
	}

	return out
}

// Number reads a float64 property, tolerating integer-decoded values.
func (p Properties) Number(key string, fallback float64) float64 {
	switch v := p[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return fallback
	}
}

// String reads a string property.
func (p Properties) String(key, fallback string) string {
	if s, ok := p[key].(string); ok {
		return s
	}

	return fallback
}

// Element is one chart element (mark, plot-segment, legend, links) or a
// mark inside a glyph template. ClassID selects its polymorphic behavior.
type Element struct {
	ID       string             `json:"id" yaml:"id"`
	ClassID  string             `json:"classId" yaml:"classId"`
	Mappings map[string]Mapping `json:"mappings,omitempty" yaml:"mappings,omitempty"`
	// Properties holds class-specific configuration (margins, gaps,
	// curvature, sublayout, legend scale, link target...).
	Properties Properties `json:"properties,omitempty" yaml:"properties,omitempty"`

	// Plot-segment data binding; empty for other classes.
	GlyphID string              `json:"glyph,omitempty" yaml:"glyph,omitempty"`
	Table   string              `json:"table,omitempty" yaml:"table,omitempty"`
	Filter  string              `json:"filter,omitempty" yaml:"filter,omitempty"`
	GroupBy *dataset.GroupBy    `json:"groupBy,omitempty" yaml:"groupBy,omitempty"`
	XAxis   *scale.AxisBinding  `json:"xAxis,omitempty" yaml:"xAxis,omitempty"`
	YAxis   *scale.AxisBinding  `json:"yAxis,omitempty" yaml:"yAxis,omitempty"`
}

// Glyph is the per-data-group visual template replicated by a
// plot-segment: an ordered list of marks over one table.
type Glyph struct {
	ID    string     `json:"id" yaml:"id"`
	Table string     `json:"table" yaml:"table"`
	Marks []*Element `json:"marks,omitempty" yaml:"marks,omitempty"`
}

// Constraint is one typed constraint entry on the chart; currently only
// snap: element.attribute = targetElement.targetAttribute + gap.
type Constraint struct {
	Type            string  `json:"type" yaml:"type"`
	Element         string  `json:"element" yaml:"element"`
	Attribute       string  `json:"attribute" yaml:"attribute"`
	TargetElement   string  `json:"targetElement" yaml:"targetElement"`
	TargetAttribute string  `json:"targetAttribute" yaml:"targetAttribute"`
	Gap             float64 `json:"gap,omitempty" yaml:"gap,omitempty"`
}

// references reports whether the constraint touches the given element.
func (c Constraint) references(elementID string) bool {
	return c.Element == elementID || c.TargetElement == elementID
}

// Specification is the declarative chart: the root record handed to
// persistence and mirrored by State.
type Specification struct {
	ID          string             `json:"id" yaml:"id"`
	Mappings    map[string]Mapping `json:"mappings,omitempty" yaml:"mappings,omitempty"`
	Elements    []*Element         `json:"elements,omitempty" yaml:"elements,omitempty"`
	Glyphs      []*Glyph           `json:"glyphs,omitempty" yaml:"glyphs,omitempty"`
	Constraints []Constraint       `json:"constraints,omitempty" yaml:"constraints,omitempty"`
	Scales      []*scale.Scale     `json:"scales,omitempty" yaml:"scales,omitempty"`
}

// Element returns the chart element with the given id, or nil.
func (s *Specification) Element(id string) *Element {
	for _, el := range s.Elements {
		if el.ID == id {
			return el
		}
	}

	return nil
}

// Glyph returns the glyph template with the given id, or nil.
func (s *Specification) Glyph(id string) *Glyph {
	for _, g := range s.Glyphs {
		if g.ID == id {
			return g
		}
	}

	return nil
}

// AttrKind tags AttributeValue.
type AttrKind uint8

const (
	// AttrNumber is a resolved numeric value.
	AttrNumber AttrKind = iota
	// AttrString is a resolved string value (colors, text).
	AttrString
	// AttrVector is a resolved numeric vector (link anchor paths).
	AttrVector
)

// AttributeValue is one resolved attribute: a number, string or vector.
type AttributeValue struct {
	Kind AttrKind  `json:"kind" yaml:"kind"`
	Num  float64   `json:"num,omitempty" yaml:"num,omitempty"`
	Str  string    `json:"str,omitempty" yaml:"str,omitempty"`
	Vec  []float64 `json:"vec,omitempty" yaml:"vec,omitempty"`
}

// NumberValue wraps a resolved number.
func NumberValue(f float64) AttributeValue { return AttributeValue{Kind: AttrNumber, Num: f} }

// StringValue wraps a resolved string.
func StringValue(s string) AttributeValue { return AttributeValue{Kind: AttrString, Str: s} }

// VectorValue wraps a resolved vector.
func VectorValue(v []float64) AttributeValue { return AttributeValue{Kind: AttrVector, Vec: v} }

// Attributes is one state node's resolved attribute map.
type Attributes map[string]AttributeValue

// Number reads a numeric attribute (zero when absent or non-numeric).
func (a Attributes) Number(name string) float64 { return a[name].Num }

// String reads a string attribute.
func (a Attributes) String(name string) string { return a[name].Str }

// GlyphState is the resolved state of one glyph instance: one data group
// of a plot-segment. Same group key across remaps means the same glyph
// state object, so resolved values carry over without visual jumps.
type GlyphState struct {
	// GroupKey identifies the backing data group.
	GroupKey string
	// Rows are the group's row indices in the plot-segment's table.
	Rows []int
	// Attributes are the glyph anchor attributes (x, y).
	Attributes Attributes
	// Marks holds resolved attributes per mark id of the glyph template.
	Marks map[string]Attributes
}

// ElementState is the resolved state of one chart element.
type ElementState struct {
	Attributes Attributes
	// Glyphs is populated for plot-segments only: one entry per data
	// group, in group-definition order.
	Glyphs []*GlyphState
}

// State mirrors the Specification: resolved values for the chart node and
// every live element, keyed by element id (parallel indexed collections,
// no parent/child aliasing between the trees).
type State struct {
	Attributes Attributes
	Elements   map[string]*ElementState
}

// newState returns an empty mirror.
func newState() *State {
	return &State{
		Attributes: make(Attributes),
		Elements:   make(map[string]*ElementState),
	}
}
