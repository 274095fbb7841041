package graphstore

import "errors"

var (
	// ErrPodNotFound is returned when an operation names a pod with no
	// named graph on record.
	ErrPodNotFound = errors.New("graphstore: pod not found")

	// ErrInvalidAddress is returned by CheckPodExists for a malformed
	// address.
	ErrInvalidAddress = errors.New("graphstore: invalid address")
)
