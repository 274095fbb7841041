package keystore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/crypto/scrypt"
)

const (
	scryptN      = 1 << 15
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 32
	saltLen      = 16
)

// persisted is the JSON shape written to disk, inside the encryption
// envelope. For derived keys only bucket membership is stored; their
// secrets are re-derived from the mnemonic at load time. The mnemonic
// itself and each imported wallet's secret hex are stored as they are.
type persisted struct {
	Mnemonic        string            `json:"mnemonic"`
	NextIndex       uint64            `json:"next_index"`
	Pointers        map[string]uint64 `json:"pointers"`
	Scratchpads     map[string]uint64 `json:"scratchpads"`
	FreePointers    []keyRef          `json:"free_pointers"`
	FreeScratchpads []keyRef          `json:"free_scratchpads"`
	BadKeys         map[string]uint64 `json:"bad_keys"`
	Wallets         map[string]string `json:"wallets"`
	ActiveWallet    string            `json:"active_wallet"`
}

// ToFile encrypts and writes the keystore's state to path. The layout is
// salt(16) || nonce(12) || ciphertext, the same nonce-prepended envelope
// the teacher's pkg/security/secrets.go uses for cluster secrets, upgraded
// with a per-file random scrypt salt instead of a fixed cluster-ID-derived
// key since a human password is worth a memory-hard KDF.
func (ks *KeyStore) ToFile(path, password string) error {
	ks.mu.RLock()
	p := persisted{
		Mnemonic:        ks.mnemonic,
		NextIndex:       ks.nextIndex,
		Pointers:        copyUint64Map(ks.pointers),
		Scratchpads:     copyUint64Map(ks.scratchpads),
		FreePointers:    append([]keyRef(nil), ks.freePointers...),
		FreeScratchpads: append([]keyRef(nil), ks.freeScratchpads...),
		BadKeys:         copyUint64Map(ks.badKeys),
		Wallets:         copyStringMap(ks.wallets),
		ActiveWallet:    ks.activeWallet,
	}
	ks.mu.RUnlock()

	plaintext, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("keystore: marshal state: %w", err)
	}

	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("keystore: generate salt: %w", err)
	}
	key, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return fmt.Errorf("keystore: derive key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return fmt.Errorf("keystore: new cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return fmt.Errorf("keystore: new gcm: %w", err)
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("keystore: generate nonce: %w", err)
	}

	ciphertext := gcm.Seal(nil, nonce, plaintext, nil)
	envelope := make([]byte, 0, saltLen+len(nonce)+len(ciphertext))
	envelope = append(envelope, salt...)
	envelope = append(envelope, nonce...)
	envelope = append(envelope, ciphertext...)

	return os.WriteFile(path, envelope, 0o600)
}

// FromFile decrypts a file written by ToFile and rebuilds a KeyStore,
// re-deriving mainSK from the recovered mnemonic.
func FromFile(path, password string) (*KeyStore, error) {
	envelope, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("keystore: read file: %w", err)
	}
	if len(envelope) < saltLen {
		return nil, fmt.Errorf("keystore: truncated file")
	}
	salt, rest := envelope[:saltLen], envelope[saltLen:]

	key, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return nil, fmt.Errorf("keystore: derive key: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("keystore: new cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("keystore: new gcm: %w", err)
	}
	if len(rest) < gcm.NonceSize() {
		return nil, fmt.Errorf("keystore: truncated file")
	}
	nonce, ciphertext := rest[:gcm.NonceSize()], rest[gcm.NonceSize():]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("keystore: decrypt (wrong password?): %w", err)
	}

	var p persisted
	if err := json.Unmarshal(plaintext, &p); err != nil {
		return nil, fmt.Errorf("keystore: unmarshal state: %w", err)
	}

	ks, err := FromMnemonic(p.Mnemonic)
	if err != nil {
		return nil, err
	}
	ks.nextIndex = p.NextIndex
	ks.pointers = copyUint64Map(p.Pointers)
	ks.scratchpads = copyUint64Map(p.Scratchpads)
	ks.freePointers = append([]keyRef(nil), p.FreePointers...)
	ks.freeScratchpads = append([]keyRef(nil), p.FreeScratchpads...)
	ks.badKeys = copyUint64Map(p.BadKeys)
	ks.wallets = copyStringMap(p.Wallets)
	ks.activeWallet = p.ActiveWallet
	return ks, nil
}

func copyUint64Map(m map[string]uint64) map[string]uint64 {
	out := make(map[string]uint64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyStringMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
