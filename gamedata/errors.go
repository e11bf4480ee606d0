package gamedata

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedRecord means a submission node matched none of the run shapes
	ErrMalformedRecord = errors.New("malformed run record")
	// ErrMissingSection means the document has no top-level "runs" list
	ErrMissingSection = errors.New(`missing "runs" section`)
	// ErrEmpty means the document decoded to zero runs
	ErrEmpty = errors.New("no runs found")
)

// MalformedRecordError describes the node and field that failed to decode
type MalformedRecordError struct {
	Path   string // e.g. runs[0].acts[1].layers[2]
	Line   int    // 1-based line in the document, 0 if unknown
	Field  string // e.g. category; empty when the node itself is wrong
	Value  string // offending value, if any
	Reason string
}

func (e *MalformedRecordError) Error() string {
	loc := e.Path
	if e.Line > 0 {
		loc = fmt.Sprintf("%s (line %d)", e.Path, e.Line)
	}
	if e.Field == "" {
		return fmt.Sprintf("%s: %s: %s", ErrMalformedRecord, loc, e.Reason)
	}
	if e.Value != "" {
		return fmt.Sprintf("%s: %s: field %q: %s (got %q)", ErrMalformedRecord, loc, e.Field, e.Reason, e.Value)
	}
	return fmt.Sprintf("%s: %s: field %q: %s", ErrMalformedRecord, loc, e.Field, e.Reason)
}

// Unwrap makes errors.Is(err, ErrMalformedRecord) work
func (e *MalformedRecordError) Unwrap() error {
	return ErrMalformedRecord
}
