// Package chart owns the chart specification and its mirrored state tree,
// and orchestrates the full resolution cycle: structural edits, per-group
// glyph instancing, scale inference, constraint assembly and solving.
//
// Overview:
//
//   - A Specification is the declarative chart: chart elements (marks,
//     plot-segments, legends, links), glyph templates, attribute mappings,
//     snap constraints and the shared scale registry. It is a tree of
//     plain records and round-trips through MarshalJSON/MarshalYAML.
//   - A State mirrors the specification one-to-one: resolved attribute
//     values per element, plus one glyph state per data group under every
//     plot-segment. State nodes are rebuilt on structural change and their
//     attribute values are overwritten (never replaced) by each solve.
//   - The Manager is the only component that mutates either tree. Every
//     edit operation updates the specification, regenerates dependent
//     glyph state, re-infers scales where mappings changed, hands the
//     variable/constraint set to the solver, and writes resolved values
//     back before notifying subscribers.
//
// Element classes:
//
//   - Behavior is polymorphic over classID strings ("mark.rect",
//     "plot-segment.cartesian", "legend.categorical", ...). A class
//     contributes its attribute schema, default properties, intrinsic
//     geometric constraints and state initializer through the registry;
//     new classes register without touching Manager dispatch.
//
// Event ordering:
//
//   - Within one mutation cycle structural events always precede the
//     graphics event, and the graphics event fires only once the entire
//     state tree is self-consistent. Selection changes carry their own
//     event. A pre-mutation hook runs before anything is touched so hosts
//     can snapshot for undo.
//
// Error handling:
//
//   - Structural mutation against a missing id is a guarded no-op
//     (tolerates UI double-dispatch); lookups that must produce a value
//     return ErrNotFound. Scale/expression failures abort only the
//     triggering operation, leaving the chart in its prior valid state.
//     Contradictory constraint subgraphs resolve everything else and are
//     logged as warnings.
package chart
