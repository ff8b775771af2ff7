// Package dataset provides read-only access to named tabular data for the
// chart resolution engine: typed values, column metadata, and grouped or
// per-row value extraction.
//
// Overview:
//
//   - A Dataset is a set of named Tables; each Table is an ordered sequence
//     of rows plus column metadata (data type, data kind, optional explicit
//     category order).
//   - Tables are immutable once built: every accessor is read-only, so a
//     Table may be shared freely across solve passes.
//   - Grouping is deterministic: for a given (table, groupBy, expression)
//     triple the produced value sequence is identical across calls, in
//     group-definition (first appearance) order. Repeated scale inference
//     therefore never reorders categories.
//
// Key types:
//
//   - Value: a tagged union over {String, Number, Boolean, Date, Null}.
//   - Column: name + Type (storage type) + Kind (semantic kind) + optional
//     explicit category order.
//   - Table: rows + columns; Groups and GroupedValues partition rows.
//   - Context: the column-access surface handed to expression evaluation,
//     covering both a single row and a whole group.
//
// Error handling (sentinel errors):
//
//   - ErrUnknownTable:  a Dataset lookup referenced a missing table.
//   - ErrUnknownColumn: a row/vector lookup referenced a missing column.
//   - ErrRowRange:      a row index is outside the table.
//
// FromCSV ingests CSV bytes with per-column type sniffing; it exists for
// drivers and tests — the chart core itself never parses raw files.
package dataset
