package keystore

import "errors"

var (
	// ErrKeyNotFound is returned when an address has no corresponding
	// secret key recorded in any bucket the caller asked about.
	ErrKeyNotFound = errors.New("keystore: key not found")

	// ErrInvalidAddress is returned when a hex address or scalar fails to
	// decode or validate.
	ErrInvalidAddress = errors.New("keystore: invalid address")

	// ErrWalletNotFound is returned when a named wallet key is unknown.
	ErrWalletNotFound = errors.New("keystore: wallet not found")

	// ErrNoActiveWallet is returned by GetActiveWallet before any wallet
	// has been made active.
	ErrNoActiveWallet = errors.New("keystore: no active wallet set")

	// ErrBadMnemonic is returned when a mnemonic phrase fails BIP-39
	// checksum validation.
	ErrBadMnemonic = errors.New("keystore: invalid mnemonic")
)
