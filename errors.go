package mdflow

import (
	"errors"

	"mdflow/internal/action"
	"mdflow/internal/parser"
)

// Parsing and validation failures are tagged sentinels; match with
// errors.Is. Only the directive parser, the validator, and the decode
// step can fail; the splitter and the variable engine never do.
var (
	// ErrBadFormat: directive shape mismatch or empty directive body.
	ErrBadFormat = parser.ErrBadFormat

	// ErrInconsistentSeparator: | and || mixed in one options segment.
	ErrInconsistentSeparator = parser.ErrInconsistentSeparator

	// ErrMissingField: a required directive or record field is absent.
	ErrMissingField = action.ErrMissingField

	// ErrSchema: unknown action keyword or unrecognized enum value.
	ErrSchema = action.ErrSchema

	// ErrDecode: extracted text is still invalid after sanitization.
	// Session-fatal mid-stream; a unit is never silently skipped.
	ErrDecode = action.ErrDecode

	// ErrBlockIndex: block index out of range.
	ErrBlockIndex = errors.New("block index out of range")

	// ErrTruncatedStream: the stream ended with a never-closed object
	// in the buffer. Treated as a hard error, since silent truncation
	// can mask upstream failures.
	ErrTruncatedStream = errors.New("stream ended with incomplete record")

	// ErrNoProvider: the requested mode needs a model-calling provider
	// and none is configured.
	ErrNoProvider = errors.New("no llm provider configured")
)
