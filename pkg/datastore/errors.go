package datastore

import "errors"

var (
	// ErrPointerNotFound is returned when a pointer file does not exist.
	ErrPointerNotFound = errors.New("datastore: pointer file not found")

	// ErrScratchpadNotFound is returned when a scratchpad file does not exist.
	ErrScratchpadNotFound = errors.New("datastore: scratchpad file not found")

	// ErrMalformedPointerFile is returned when a pointer file's contents
	// don't match the "<target>\n<counter>\n" layout.
	ErrMalformedPointerFile = errors.New("datastore: malformed pointer file")
)
