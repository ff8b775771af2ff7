package chart

import "github.com/vizsolve/vizsolve/scale"

// Auxiliary class ids.
const (
	ClassLegend = "legend.categorical"
	ClassLinks  = "links.through"
)

// legendClass renders the categories (or numeric stops) of one scale.
// The rendered scale is named by the "scale" property.
type legendClass struct{}

func (legendClass) ID() string { return ClassLegend }

func (legendClass) Attributes() []AttrSpec {
	return []AttrSpec{
		{Name: "x", Kind: AttrNumber, Role: scale.RolePosition, Default: 320, Solvable: true},
		{Name: "y", Kind: AttrNumber, Role: scale.RolePosition, Default: 180, Solvable: true},
		{Name: "fontSize", Kind: AttrNumber, Role: scale.RoleSize, Default: 12},
		{Name: "color", Kind: AttrString, Role: scale.RoleColor, DefaultStr: "#000000"},
	}
}

func (legendClass) DefaultProperties() Properties {
	return Properties{"scale": "", "orientation": "vertical"}
}

func (legendClass) Constraints(Properties) []IntrinsicConstraint { return nil }

// linksClass connects consecutive glyphs of a plot-segment (named by the
// "plotSegment" property) with line segments. Its anchors attribute is a
// resolved vector of glyph anchor coordinates filled in after solving.
type linksClass struct{}

func (linksClass) ID() string { return ClassLinks }

func (linksClass) Attributes() []AttrSpec {
	return []AttrSpec{
		{Name: "anchors", Kind: AttrVector},
		{Name: "stroke", Kind: AttrString, Role: scale.RoleColor, DefaultStr: "#888888"},
		{Name: "strokeWidth", Kind: AttrNumber, Role: scale.RoleSize, Default: 1},
		{Name: "opacity", Kind: AttrNumber, Role: scale.RoleSize, Default: 1},
	}
}

func (linksClass) DefaultProperties() Properties {
	return Properties{"plotSegment": "", "interpolation": "line"}
}

func (linksClass) Constraints(Properties) []IntrinsicConstraint { return nil }

// defaultRegistry registers the built-in classes. New classes register
// here without touching dispatch logic elsewhere.
func defaultRegistry() *classRegistry {
	r := newClassRegistry()
	for _, c := range []Class{
		rectClass{},
		symbolClass{},
		textClass{},
		lineClass{},
		cartesianClass{},
		polarClass{},
		curveClass{},
		legendClass{},
		linksClass{},
	} {
		r.register(c)
	}

	return r
}
