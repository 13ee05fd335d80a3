package apperrors

import "errors"

var (
	// ErrNotFound indicates a pipeline record does not exist. Handlers map
	// it to a 404 rather than a generic server error.
	ErrNotFound = errors.New("not found")

	// ErrEmptyGeneration indicates the model response contained no fenced
	// code block to extract a DDL statement from.
	ErrEmptyGeneration = errors.New("generation returned no code blocks")

	// ErrMalformedGeneration indicates the first code block was empty after
	// trimming and cannot be used as a DDL statement.
	ErrMalformedGeneration = errors.New("generation returned empty or malformed DDL")

	// ErrUnsafeName indicates an AI-derived object name failed identifier or
	// injection screening and must not be interpolated into SQL.
	ErrUnsafeName = errors.New("unsafe object name")
)
