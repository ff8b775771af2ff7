package chart

import "github.com/vizsolve/vizsolve/scale"

// Mark class ids.
const (
	ClassRect   = "mark.rect"
	ClassSymbol = "mark.symbol"
	ClassText   = "mark.text"
	ClassLine   = "mark.line"
)

// rectClass is an axis-aligned rectangle. Eight position attributes tied
// together by four intrinsic relations, so mapping any independent pair
// per axis determines the rest.
type rectClass struct{}

func (rectClass) ID() string { return ClassRect }

func (rectClass) Attributes() []AttrSpec {
	return []AttrSpec{
		{Name: "x1", Kind: AttrNumber, Role: scale.RolePosition, Default: -10, Solvable: true},
		{Name: "y1", Kind: AttrNumber, Role: scale.RolePosition, Default: -10, Solvable: true},
		{Name: "x2", Kind: AttrNumber, Role: scale.RolePosition, Default: 10, Solvable: true},
		{Name: "y2", Kind: AttrNumber, Role: scale.RolePosition, Default: 10, Solvable: true},
		{Name: "cx", Kind: AttrNumber, Role: scale.RolePosition, Default: 0, Solvable: true},
		{Name: "cy", Kind: AttrNumber, Role: scale.RolePosition, Default: 0, Solvable: true},
		{Name: "width", Kind: AttrNumber, Role: scale.RoleSize, Default: 20, Solvable: true},
		{Name: "height", Kind: AttrNumber, Role: scale.RoleSize, Default: 20, Solvable: true},
		{Name: "fill", Kind: AttrString, Role: scale.RoleColor, DefaultStr: "#4c78a8"},
		{Name: "stroke", Kind: AttrString, Role: scale.RoleColor, DefaultStr: ""},
		{Name: "strokeWidth", Kind: AttrNumber, Role: scale.RoleSize, Default: 1},
		{Name: "opacity", Kind: AttrNumber, Role: scale.RoleSize, Default: 1},
	}
}

func (rectClass) DefaultProperties() Properties {
	return Properties{"shape": "rectangle"}
}

func (rectClass) Constraints(Properties) []IntrinsicConstraint {
	return []IntrinsicConstraint{
		// 2*cx - x1 - x2 = 0
		{Terms: []AttrTerm{{"cx", 2}, {"x1", -1}, {"x2", -1}}},
		// 2*cy - y1 - y2 = 0
		{Terms: []AttrTerm{{"cy", 2}, {"y1", -1}, {"y2", -1}}},
		// width - x2 + x1 = 0
		{Terms: []AttrTerm{{"width", 1}, {"x2", -1}, {"x1", 1}}},
		// height - y2 + y1 = 0
		{Terms: []AttrTerm{{"height", 1}, {"y2", -1}, {"y1", 1}}},
	}
}

// symbolClass is a point symbol anchored at (x, y).
type symbolClass struct{}

func (symbolClass) ID() string { return ClassSymbol }

func (symbolClass) Attributes() []AttrSpec {
	return []AttrSpec{
		{Name: "x", Kind: AttrNumber, Role: scale.RolePosition, Default: 0, Solvable: true},
		{Name: "y", Kind: AttrNumber, Role: scale.RolePosition, Default: 0, Solvable: true},
		{Name: "size", Kind: AttrNumber, Role: scale.RoleSize, Default: 60},
		{Name: "fill", Kind: AttrString, Role: scale.RoleColor, DefaultStr: "#4c78a8"},
		{Name: "stroke", Kind: AttrString, Role: scale.RoleColor, DefaultStr: ""},
		{Name: "opacity", Kind: AttrNumber, Role: scale.RoleSize, Default: 1},
	}
}

func (symbolClass) DefaultProperties() Properties {
	return Properties{"symbol": "circle"}
}

func (symbolClass) Constraints(Properties) []IntrinsicConstraint { return nil }

// textClass renders a template string anchored at (x, y).
type textClass struct{}

func (textClass) ID() string { return ClassText }

func (textClass) Attributes() []AttrSpec {
	return []AttrSpec{
		{Name: "x", Kind: AttrNumber, Role: scale.RolePosition, Default: 0, Solvable: true},
		{Name: "y", Kind: AttrNumber, Role: scale.RolePosition, Default: 0, Solvable: true},
		{Name: "text", Kind: AttrString, Role: scale.RoleText, DefaultStr: ""},
		{Name: "fontSize", Kind: AttrNumber, Role: scale.RoleSize, Default: 12},
		{Name: "color", Kind: AttrString, Role: scale.RoleColor, DefaultStr: "#000000"},
		{Name: "opacity", Kind: AttrNumber, Role: scale.RoleSize, Default: 1},
	}
}

func (textClass) DefaultProperties() Properties {
	return Properties{"fontFamily": "sans-serif", "alignment": "middle"}
}

func (textClass) Constraints(Properties) []IntrinsicConstraint { return nil }

// lineClass is a straight segment from (x1, y1) to (x2, y2).
type lineClass struct{}

func (lineClass) ID() string { return ClassLine }

func (lineClass) Attributes() []AttrSpec {
	return []AttrSpec{
		{Name: "x1", Kind: AttrNumber, Role: scale.RolePosition, Default: -10, Solvable: true},
		{Name: "y1", Kind: AttrNumber, Role: scale.RolePosition, Default: 0, Solvable: true},
		{Name: "x2", Kind: AttrNumber, Role: scale.RolePosition, Default: 10, Solvable: true},
		{Name: "y2", Kind: AttrNumber, Role: scale.RolePosition, Default: 0, Solvable: true},
		{Name: "cx", Kind: AttrNumber, Role: scale.RolePosition, Default: 0, Solvable: true},
		{Name: "cy", Kind: AttrNumber, Role: scale.RolePosition, Default: 0, Solvable: true},
		{Name: "stroke", Kind: AttrString, Role: scale.RoleColor, DefaultStr: "#4c78a8"},
		{Name: "strokeWidth", Kind: AttrNumber, Role: scale.RoleSize, Default: 1},
		{Name: "opacity", Kind: AttrNumber, Role: scale.RoleSize, Default: 1},
	}
}

func (lineClass) DefaultProperties() Properties { return Properties{} }

func (lineClass) Constraints(Properties) []IntrinsicConstraint {
	return []IntrinsicConstraint{
		{Terms: []AttrTerm{{"cx", 2}, {"x1", -1}, {"x2", -1}}},
		{Terms: []AttrTerm{{"cy", 2}, {"y1", -1}, {"y2", -1}}},
	}
}
