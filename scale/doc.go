// Package scale builds and reuses the scale objects that map data domains
// to visual ranges: categorical, linear and temporal scales.
//
// Overview:
//
//   - A Scale carries an id, a kind, the attribute-role family it serves
//     (position, size, color, text), the source table, and its domain:
//     an ordered category list or a numeric/date [min, max] pair.
//   - The Inferencer pulls grouped value vectors through dataset +
//     expression evaluation and either creates a scale or reuses an
//     existing compatible one from the Registry. Reuse keeps legends and
//     axes consistent across mappings of the same data.
//   - Category order is deterministic: explicit column order when the
//     column declares one, otherwise the requested mode — OrderOccurrence
//     (first appearance), OrderAlphabetical, or OrderExplicit with a
//     caller-supplied sequence.
//
// Reuse and domain compatibility:
//
//   - Two mappings on the same table, same kind class and same role family
//     resolve to the same scale id. On reuse the domain widens: categorical
//     scales append unseen categories after the existing order; linear and
//     temporal scales extend [min, max] to cover the new vector.
//
// Error handling (sentinel errors):
//
//   - ErrEmptyDomain:  the value vector is empty or all-null; a degenerate
//     scale is never created.
//   - ErrKindMismatch: the declared data kind cannot host the values
//     (e.g. a temporal scale over non-date values).
//   - ErrUnknownScale: a Registry lookup referenced a missing id.
//
// Axis bindings derived from a scale (Scale.Axis) carry the same category
// order or numeric domain the scale computed, so axis rendering and
// scale-based attribute mapping never disagree.
package scale
