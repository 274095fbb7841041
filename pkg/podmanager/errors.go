package podmanager

import "errors"

var (
	// ErrKeyNotFound names the KeyNotFound error kind at the PodManager
	// boundary. PodManager operations that fail a key lookup, such as
	// RemovePod, return keystore.ErrKeyNotFound itself, not this value.
	ErrKeyNotFound = errors.New("podmanager: key not found")

	// ErrPodNotFound is returned when an address names no known pod.
	ErrPodNotFound = errors.New("podmanager: pod not found")

	// ErrInvalidAddress is returned when an address fails hex/curve validation.
	ErrInvalidAddress = errors.New("podmanager: invalid address")

	// ErrBadOperation is returned for invariant violations, such as
	// attempting to remove the configuration pod.
	ErrBadOperation = errors.New("podmanager: invalid operation")
)
