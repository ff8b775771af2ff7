// Package expr implements the small expression language used by chart
// mappings, filters and scale inference: column references, literals,
// arithmetic, comparisons, and aggregate functions over grouped rows.
//
// Overview:
//
//   - Parse compiles a source string into an Expr tree once; Eval runs the
//     tree against a dataset.Context (one row or one group) and produces a
//     typed dataset.Value.
//   - Column references are bare identifiers (amount) or backtick-quoted
//     names (`unit price`) for columns with spaces or punctuation.
//   - Aggregate functions (avg, sum, min, max, count, first, last) take a
//     column reference and reduce that column across the whole context.
//   - ParseTemplate compiles text templates of the form
//     "label ${expression} and ${expression:.1f} more"; evaluation
//     concatenates the parts, applying the format only to numeric values.
//
// Grammar (precedence low to high):
//
//	expr       := additive ( ("=="|"!="|"<"|"<="|">"|">=") additive )?
//	additive   := term ( ("+"|"-") term )*
//	term       := unary ( ("*"|"/") unary )*
//	unary      := "-" unary | primary
//	primary    := NUMBER | STRING | true | false | column
//	            | IDENT "(" expr ("," expr)* ")" | "(" expr ")"
//
// Error handling (sentinel errors):
//
//   - ErrParse: malformed source; wrapped with the byte offset of the
//     offending token.
//   - ErrType: an operator or function was applied to an incompatible
//     value at evaluation time.
//   - ErrUnknownFunction: a call names no registered function.
//
// Both are matched with errors.Is; evaluation never panics on user input.
package expr
