package scale

import "errors"

// Sentinel errors for scale inference and registry access.
var (
	// ErrEmptyDomain indicates inference over an empty or all-null
	// value vector; a degenerate scale is never created.
	ErrEmptyDomain = errors.New("scale: empty domain")

	// ErrKindMismatch indicates values incompatible with the declared
	// data kind (e.g. non-dates under a temporal scale).
	ErrKindMismatch = errors.New("scale: value kind mismatch")

	// ErrUnknownScale indicates a registry lookup on a missing id.
	ErrUnknownScale = errors.New("scale: unknown scale id")

	// ErrUnmappable indicates Map was asked for a value outside the
	// scale's category domain.
	ErrUnmappable = errors.New("scale: value not in domain")
)
