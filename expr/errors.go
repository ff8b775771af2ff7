package expr

import "errors"

// Sentinel errors for expression parsing and evaluation.
var (
	// ErrParse indicates malformed expression or template source.
	ErrParse = errors.New("expr: parse error")

	// ErrType indicates an operator or function applied to an
	// incompatible value at evaluation time.
	ErrType = errors.New("expr: type error")

	// ErrUnknownFunction indicates a call to an unregistered function.
	ErrUnknownFunction = errors.New("expr: unknown function")
)
