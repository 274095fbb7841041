package keystore

import "crypto/sha256"

// walletAddress derives a stable opaque identifier for a wallet secret.
// colonylib's original wallet keys are EVM secp256k1 scalars rendered as
// keccak-derived addresses; no secp256k1/keccak stack is present anywhere
// in the retrieved corpus, so a wallet "address" here is a SHA-256 digest
// of the secret rather than a real chain address. It is still a pure,
// injective function of the secret, which is all PodManager needs to tell
// wallets apart.
func walletAddress(secretHex string) string {
	sum := sha256.Sum256([]byte("wallet:" + secretHex))
	return hexEncode(sum[:])
}
