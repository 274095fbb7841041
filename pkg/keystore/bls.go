package keystore

import (
	"crypto/sha256"
	"encoding/binary"
	"io"
	"math/big"

	bls12381 "github.com/kilic/bls12-381"
	"golang.org/x/crypto/hkdf"
)

// groupOrder is the order r of the BLS12-381 scalar field, the same
// constant the EIP-2333 keygen spec reduces derived material against.
var groupOrder, _ = new(big.Int).SetString(
	"73eda753299d7d483339d80809a1d80553bda402fffe5bfeffffffff00000001", 16)

const blsKeygenSalt = "BLS-SIG-KEYGEN-SALT-"

// deriveMasterSK implements the EIP-2333 "derive_master_SK" routine: salt
// the HKDF-Extract step is whitened by repeated SHA-256 hashing of the salt
// itself until the resulting scalar is non-zero mod r. This is the same
// guarantee the original crate's sn_bls_ckd::derive_master_sk provides.
func deriveMasterSK(seed []byte) *big.Int {
	salt := []byte(blsKeygenSalt)
	ikm := append(append([]byte{}, seed...), 0x00)

	for {
		h := sha256.Sum256(salt)
		salt = h[:]

		prk := hkdf.Extract(sha256.New, ikm, salt)
		sk := expandModR(prk, keyInfo(48))
		if sk.Sign() != 0 {
			return sk
		}
	}
}

// deriveIndexSK derives the secret scalar for derivation index i from the
// master secret key. The index is packed into a 32-byte little-endian blob
// exactly as spec.md §4.1 describes, and used as HKDF info so distinct
// indices are independent, reproducible scalars.
func deriveIndexSK(masterSK *big.Int, i uint64) *big.Int {
	prk := sha256Bytes(masterSK)
	sk := expandModR(prk, indexBlob(i))
	if sk.Sign() == 0 {
		// Astronomically unlikely; fall back to re-hashing the info so the
		// derivation stays total over all indices.
		sk = expandModR(prk, append(indexBlob(i), 0x01))
	}
	return sk
}

// indexBlob packs a derivation index into the 32-byte blob spec.md §4.1
// names: an 8-byte little-endian index followed by 24 zero bytes.
func indexBlob(i uint64) []byte {
	blob := make([]byte, 32)
	binary.LittleEndian.PutUint64(blob[:8], i)
	return blob
}

func keyInfo(l uint16) []byte {
	info := make([]byte, 2)
	binary.BigEndian.PutUint16(info, l)
	return info
}

func sha256Bytes(sk *big.Int) []byte {
	sum := sha256.Sum256(skBytes(sk))
	return sum[:]
}

// expandModR runs HKDF-Expand over prk/info for 48 output bytes (the
// EIP-2333 L parameter for a BLS12-381 scalar) and reduces the result mod
// the group order.
func expandModR(prk, info []byte) *big.Int {
	r := hkdf.Expand(sha256.New, prk, info)
	okm := make([]byte, 48)
	if _, err := io.ReadFull(r, okm); err != nil {
		panic("keystore: hkdf expand failed: " + err.Error())
	}
	sk := new(big.Int).SetBytes(okm)
	sk.Mod(sk, groupOrder)
	return sk
}

// skBytes serializes a secret scalar as 32 big-endian bytes.
func skBytes(sk *big.Int) []byte {
	out := make([]byte, 32)
	sk.FillBytes(out)
	return out
}

// skFromBytes parses 32 big-endian bytes into a secret scalar.
func skFromBytes(b []byte) *big.Int {
	return new(big.Int).SetBytes(b)
}

// publicKeyHex computes the compressed G1 public key for a secret scalar
// and hex-encodes it, producing the 96-hex-char address format spec.md §6
// names (48-byte compressed point).
func publicKeyHex(sk *big.Int) string {
	g1 := bls12381.NewG1()
	point := g1.New()
	g1.MulScalar(point, g1.One(), sk)
	return hexEncode(g1.ToCompressed(point))
}
