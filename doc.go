// Package vizsolve resolves declarative chart specifications against
// tabular datasets into fully concrete graphical state — numeric and
// string attribute values for every visual element, ready to render.
//
// 🚀 What is vizsolve?
//
//	A pure-Go chart resolution engine that brings together:
//		• Dataset access: typed tables, grouping & aggregation
//		• Expressions: a small language over columns, with text templates
//		• Scale inference: categorical / linear / temporal scales,
//		  deduplicated and shared across mappings
//		• Constraint solving: tiered-strength equalities over attribute
//		  variables, with per-subgraph failure isolation
//		• Chart management: specification/state trees, per-group glyph
//		  instancing, class-based element polymorphism, incremental re-solve
//
// ✨ Why choose vizsolve?
//
//   - Deterministic – identical inputs always resolve to identical state
//   - Incremental – edits re-solve without discarding unrelated state
//   - Extensible – register new element classes without touching the core
//   - Pure Go numeric kernel – no cgo, no hidden deps
//
// Everything is organized under five packages:
//
//	dataset/ — tables, typed values, grouping & CSV ingestion
//	expr/    — expression parser, evaluator & text templates
//	scale/   — scale objects & the scale inference engine
//	solver/  — the tiered-strength linear constraint solver
//	chart/   — specification & state trees, element classes, the Manager
//
// Quick ASCII example:
//
//	 dataset ──▶ expressions ──▶ scales ─┐
//	                                     ▼
//	 chart spec ──▶ Manager ──▶ constraint solver ──▶ chart state
//
// The cmd/vizsolve CLI wires the whole stack end to end: it loads a CSV
// dataset plus a YAML chart specification and prints the resolved state.
package vizsolve
