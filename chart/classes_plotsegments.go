package chart

import "github.com/vizsolve/vizsolve/scale"

// Plot-segment class ids: layout kinds of the glyph-replicating region.
const (
	ClassCartesian = "plot-segment.cartesian"
	ClassPolar     = "plot-segment.polar"
	ClassCurve     = "plot-segment.curve"
)

// LayoutKind extracts the layout suffix of a plot-segment class id, or
// "" for non-plot-segment classes.
func LayoutKind(classID string) string {
	switch classID {
	case ClassCartesian:
		return "cartesian"
	case ClassPolar:
		return "polar"
	case ClassCurve:
		return "curve"
	default:
		return ""
	}
}

// IsPlotSegment reports whether a class id names a plot-segment layout.
func IsPlotSegment(classID string) bool { return LayoutKind(classID) != "" }

// plotSegmentAttributes is the schema shared by every layout kind: the
// frame bounds x1..y2 and the content region cx1..cy2 the glyphs are
// laid out within.
func plotSegmentAttributes() []AttrSpec {
	return []AttrSpec{
		{Name: "x1", Kind: AttrNumber, Role: scale.RolePosition, Default: -300, Solvable: true},
		{Name: "y1", Kind: AttrNumber, Role: scale.RolePosition, Default: -200, Solvable: true},
		{Name: "x2", Kind: AttrNumber, Role: scale.RolePosition, Default: 300, Solvable: true},
		{Name: "y2", Kind: AttrNumber, Role: scale.RolePosition, Default: 200, Solvable: true},
		{Name: "cx1", Kind: AttrNumber, Role: scale.RolePosition, Default: -270, Solvable: true},
		{Name: "cy1", Kind: AttrNumber, Role: scale.RolePosition, Default: -170, Solvable: true},
		{Name: "cx2", Kind: AttrNumber, Role: scale.RolePosition, Default: 270, Solvable: true},
		{Name: "cy2", Kind: AttrNumber, Role: scale.RolePosition, Default: 170, Solvable: true},
	}
}

// plotSegmentConstraints derives the content region from the frame
// bounds minus the margin properties.
func plotSegmentConstraints(p Properties) []IntrinsicConstraint {
	left := p.Number("marginLeft", 30)
	right := p.Number("marginRight", 30)
	bottom := p.Number("marginBottom", 30)
	top := p.Number("marginTop", 30)

	return []IntrinsicConstraint{
		// cx1 - x1 = marginLeft
		{Terms: []AttrTerm{{"cx1", 1}, {"x1", -1}}, Constant: left},
		// x2 - cx2 = marginRight
		{Terms: []AttrTerm{{"x2", 1}, {"cx2", -1}}, Constant: right},
		// cy1 - y1 = marginBottom
		{Terms: []AttrTerm{{"cy1", 1}, {"y1", -1}}, Constant: bottom},
		// y2 - cy2 = marginTop
		{Terms: []AttrTerm{{"y2", 1}, {"cy2", -1}}, Constant: top},
	}
}

// sharedPlotSegmentProperties are meaningful to every layout kind and
// survive class conversion.
func sharedPlotSegmentProperties() Properties {
	return Properties{
		"marginLeft":   float64(30),
		"marginRight":  float64(30),
		"marginBottom": float64(30),
		"marginTop":    float64(30),
	}
}

// cartesianClass lays glyphs out on an x/y grid.
type cartesianClass struct{}

func (cartesianClass) ID() string { return ClassCartesian }

func (cartesianClass) Attributes() []AttrSpec { return plotSegmentAttributes() }

func (cartesianClass) DefaultProperties() Properties {
	p := sharedPlotSegmentProperties()
	p["sublayout"] = "dodge-x"
	p["gapX"] = float64(4)
	p["gapY"] = float64(4)

	return p
}

func (cartesianClass) Constraints(p Properties) []IntrinsicConstraint {
	return plotSegmentConstraints(p)
}

// polarClass lays glyphs out on an angle/radius grid inside an annulus.
type polarClass struct{}

func (polarClass) ID() string { return ClassPolar }

func (polarClass) Attributes() []AttrSpec { return plotSegmentAttributes() }

func (polarClass) DefaultProperties() Properties {
	p := sharedPlotSegmentProperties()
	p["sublayout"] = "dodge-x"
	p["innerRadius"] = float64(0.3)
	p["outerRadius"] = float64(1.0)
	p["startAngle"] = float64(0)
	p["endAngle"] = float64(360)

	return p
}

func (polarClass) Constraints(p Properties) []IntrinsicConstraint {
	return plotSegmentConstraints(p)
}

// curveClass lays glyphs out along a custom curve.
type curveClass struct{}

func (curveClass) ID() string { return ClassCurve }

func (curveClass) Attributes() []AttrSpec { return plotSegmentAttributes() }

func (curveClass) DefaultProperties() Properties {
	p := sharedPlotSegmentProperties()
	p["curvature"] = float64(0.5)
	p["normalOffset"] = float64(0)

	return p
}

func (curveClass) Constraints(p Properties) []IntrinsicConstraint {
	return plotSegmentConstraints(p)
}
