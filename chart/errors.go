package chart

import "errors"

// Sentinel errors for chart specification management.
var (
	// ErrNotFound indicates a lookup referenced a missing element,
	// glyph or scale id.
	ErrNotFound = errors.New("chart: not found")

	// ErrUnknownClass indicates an unregistered element classID.
	ErrUnknownClass = errors.New("chart: unknown element class")

	// ErrBadMapping indicates a mapping incompatible with the target
	// attribute (e.g. a text template on a numeric-only attribute).
	ErrBadMapping = errors.New("chart: invalid mapping")

	// ErrNotPlotSegment indicates a plot-segment operation against an
	// element of another class.
	ErrNotPlotSegment = errors.New("chart: element is not a plot-segment")
)
