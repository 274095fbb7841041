// Package keystore derives and tracks the cryptographic keys PodManager
// needs, deterministically, from a single BIP-39 seed.
//
// A BLS12-381 master secret is expanded once via an EIP-2333-style
// HKDF-based derivation (grounded on the "derive_master_sk" routine the
// original colonylib crate pulls from sn_bls_ckd). Every pointer and
// scratchpad key the user ever owns is then a pure function of a
// monotonically increasing derivation index — nothing about a derived key
// is persisted except which bucket (pointer / scratchpad / free-pointer /
// free-scratchpad / bad) its index currently belongs to. The at-rest file
// holds the encrypted mnemonic, not the master secret; the master secret
// is re-derived from the mnemonic on every load.
//
// At-rest encryption follows the AES-256-GCM pattern the teacher repo uses
// for cluster secrets (pkg/security/secrets.go), upgraded with a
// password-derived key via scrypt instead of a bare SHA-256 hash, since
// a human password — unlike a cluster ID — is a high-value, low-entropy
// secret worth a proper memory-hard KDF.
package keystore
