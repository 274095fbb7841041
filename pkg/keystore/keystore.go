package keystore

import (
	"fmt"
	"math/big"
	"sort"
	"sync"

	"github.com/tyler-smith/go-bip39"
)

// keyRef is a derived key's position in the index chain plus the address
// it resolves to, the unit every bucket below tracks.
type keyRef struct {
	Address string
	Index   uint64
}

// KeyStore derives and tracks every key a single mnemonic owns: pointer
// keys, scratchpad keys, retired ("bad") keys the network has rejected,
// and separately-imported wallet keys used only for payment.
//
// All pointer/scratchpad keys are pure functions of mainSK and a
// monotonically increasing index; nothing about them needs persisting
// except which bucket their index currently sits in.
type KeyStore struct {
	mu sync.RWMutex

	mnemonic string
	mainSK   *big.Int

	nextIndex uint64

	pointers    map[string]uint64 // address -> index
	scratchpads map[string]uint64

	freePointers    []keyRef // removed but still valid, reused before deriving fresh
	freeScratchpads []keyRef

	badKeys map[string]uint64 // addresses the network permanently rejected

	wallets      map[string]string // name -> secret hex
	activeWallet string
}

// NewRandom generates a fresh 24-word mnemonic and the KeyStore derived
// from it.
func NewRandom() (*KeyStore, string, error) {
	entropy, err := bip39.NewEntropy(256)
	if err != nil {
		return nil, "", fmt.Errorf("keystore: generate entropy: %w", err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return nil, "", fmt.Errorf("keystore: generate mnemonic: %w", err)
	}
	ks, err := FromMnemonic(mnemonic)
	return ks, mnemonic, err
}

// FromMnemonic rebuilds a KeyStore deterministically from a BIP-39
// mnemonic phrase. The same mnemonic always yields the same mainSK and
// therefore the same sequence of derived addresses.
func FromMnemonic(mnemonic string) (*KeyStore, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, ErrBadMnemonic
	}
	seed := bip39.NewSeed(mnemonic, "")
	return &KeyStore{
		mnemonic:    mnemonic,
		mainSK:      deriveMasterSK(seed),
		pointers:    make(map[string]uint64),
		scratchpads: make(map[string]uint64),
		badKeys:     make(map[string]uint64),
		wallets:     make(map[string]string),
	}, nil
}

// Mnemonic returns the phrase this store was derived from.
func (ks *KeyStore) Mnemonic() string {
	ks.mu.RLock()
	defer ks.mu.RUnlock()
	return ks.mnemonic
}

// GetAddressAtIndex computes the address a given derivation index resolves
// to, without recording or reserving anything. Used to preview keys and to
// verify the index-to-address mapping is injective (invariant 1).
func (ks *KeyStore) GetAddressAtIndex(i uint64) string {
	ks.mu.RLock()
	mainSK := ks.mainSK
	ks.mu.RUnlock()
	sk := deriveIndexSK(mainSK, i)
	return publicKeyHex(sk)
}

// secretAtIndex returns the hex-encoded secret scalar for a derivation
// index. Unexported: callers outside the package only ever see addresses
// and secret hex through Get*Key, never bare indices.
func (ks *KeyStore) secretAtIndex(i uint64) string {
	return hexEncode(skBytes(deriveIndexSK(ks.mainSK, i)))
}

// nextKeyRef returns the next key to hand out for a fresh pointer or
// scratchpad: an address from the matching free list if one is available,
// otherwise a brand-new derivation index.
func (ks *KeyStore) nextKeyRef(free *[]keyRef) keyRef {
	if len(*free) > 0 {
		ref := (*free)[0]
		*free = (*free)[1:]
		return ref
	}
	ref := keyRef{Index: ks.nextIndex, Address: publicKeyHex(deriveIndexSK(ks.mainSK, ks.nextIndex))}
	ks.nextIndex++
	return ref
}

// AddPointerKey reserves a pointer key, preferring a previously freed one,
// and returns its address and secret hex.
func (ks *KeyStore) AddPointerKey() (address, secretHex string) {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	ref := ks.nextKeyRef(&ks.freePointers)
	ks.pointers[ref.Address] = ref.Index
	return ref.Address, ks.secretAtIndex(ref.Index)
}

// AddScratchpadKey reserves a scratchpad key the same way AddPointerKey
// reserves a pointer key.
func (ks *KeyStore) AddScratchpadKey() (address, secretHex string) {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	ref := ks.nextKeyRef(&ks.freeScratchpads)
	ks.scratchpads[ref.Address] = ref.Index
	return ref.Address, ks.secretAtIndex(ref.Index)
}

// RemovePointerKey retires a pointer key into the free pool so a later
// AddPointerKey call reuses it instead of burning a fresh index.
func (ks *KeyStore) RemovePointerKey(address string) error {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	idx, ok := ks.pointers[address]
	if !ok {
		return ErrKeyNotFound
	}
	delete(ks.pointers, address)
	ks.freePointers = append(ks.freePointers, keyRef{Address: address, Index: idx})
	return nil
}

// RemoveScratchpadKey is RemovePointerKey's scratchpad counterpart.
func (ks *KeyStore) RemoveScratchpadKey(address string) error {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	idx, ok := ks.scratchpads[address]
	if !ok {
		return ErrKeyNotFound
	}
	delete(ks.scratchpads, address)
	ks.freeScratchpads = append(ks.freeScratchpads, keyRef{Address: address, Index: idx})
	return nil
}

// AddBadKey permanently retires an address the network rejected; it is
// never handed back out by AddPointerKey/AddScratchpadKey.
func (ks *KeyStore) AddBadKey(address string) error {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	if idx, ok := ks.pointers[address]; ok {
		delete(ks.pointers, address)
		ks.badKeys[address] = idx
		return nil
	}
	if idx, ok := ks.scratchpads[address]; ok {
		delete(ks.scratchpads, address)
		ks.badKeys[address] = idx
		return nil
	}
	ks.freePointers = removeRef(ks.freePointers, address)
	ks.freeScratchpads = removeRef(ks.freeScratchpads, address)
	return nil
}

func removeRef(refs []keyRef, address string) []keyRef {
	for i, r := range refs {
		if r.Address == address {
			return append(refs[:i], refs[i+1:]...)
		}
	}
	return refs
}

// GetPointerKey returns the secret hex for a tracked pointer address.
func (ks *KeyStore) GetPointerKey(address string) (string, error) {
	ks.mu.RLock()
	defer ks.mu.RUnlock()
	idx, ok := ks.pointers[address]
	if !ok {
		return "", ErrKeyNotFound
	}
	return ks.secretAtIndex(idx), nil
}

// GetScratchpadKey returns the secret hex for a tracked scratchpad address.
func (ks *KeyStore) GetScratchpadKey(address string) (string, error) {
	ks.mu.RLock()
	defer ks.mu.RUnlock()
	idx, ok := ks.scratchpads[address]
	if !ok {
		return "", ErrKeyNotFound
	}
	return ks.secretAtIndex(idx), nil
}

// ListPointerAddresses returns every currently active pointer address, sorted.
func (ks *KeyStore) ListPointerAddresses() []string {
	ks.mu.RLock()
	defer ks.mu.RUnlock()
	return sortedKeys(ks.pointers)
}

// ListScratchpadAddresses returns every currently active scratchpad
// address, sorted.
func (ks *KeyStore) ListScratchpadAddresses() []string {
	ks.mu.RLock()
	defer ks.mu.RUnlock()
	return sortedKeys(ks.scratchpads)
}

func sortedKeys(m map[string]uint64) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ClearKeys wipes every pointer, scratchpad, free-pool and bad-key entry.
// The mnemonic and mainSK, and therefore the ability to re-derive any
// address deterministically, are unaffected.
func (ks *KeyStore) ClearKeys() {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	ks.pointers = make(map[string]uint64)
	ks.scratchpads = make(map[string]uint64)
	ks.freePointers = nil
	ks.freeScratchpads = nil
	ks.badKeys = make(map[string]uint64)
	ks.nextIndex = 0
}

// AddWalletKey imports a raw secret scalar (hex-encoded) under a name, for
// use as a payment source. Unlike pointer/scratchpad keys, wallet keys are
// not derived from mainSK: they are user-supplied and opaque to this
// package beyond validation.
func (ks *KeyStore) AddWalletKey(name, secretHex string) error {
	b, err := hexDecode(secretHex)
	if err != nil || len(b) == 0 {
		return ErrInvalidAddress
	}
	ks.mu.Lock()
	defer ks.mu.Unlock()
	ks.wallets[name] = secretHex
	if ks.activeWallet == "" {
		ks.activeWallet = name
	}
	return nil
}

// GetWalletKey returns the secret hex stored for a wallet name.
func (ks *KeyStore) GetWalletKey(name string) (string, error) {
	ks.mu.RLock()
	defer ks.mu.RUnlock()
	secretHex, ok := ks.wallets[name]
	if !ok {
		return "", ErrWalletNotFound
	}
	return secretHex, nil
}

// GetWalletAddresses returns the opaque address derived for every imported
// wallet key, keyed by wallet name. Because no secp256k1/keccak stack is
// available, the address is a stable hash of the secret rather than a real
// chain address; see walletAddress in wallet.go.
func (ks *KeyStore) GetWalletAddresses() map[string]string {
	ks.mu.RLock()
	defer ks.mu.RUnlock()
	out := make(map[string]string, len(ks.wallets))
	for name, secretHex := range ks.wallets {
		out[name] = walletAddress(secretHex)
	}
	return out
}

// RemoveWalletKey deletes an imported wallet key. If it was the active
// wallet, no wallet remains active.
func (ks *KeyStore) RemoveWalletKey(name string) error {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	if _, ok := ks.wallets[name]; !ok {
		return ErrWalletNotFound
	}
	delete(ks.wallets, name)
	if ks.activeWallet == name {
		ks.activeWallet = ""
	}
	return nil
}

// SetActiveWallet marks an already-imported wallet as the one payments are
// drawn from.
func (ks *KeyStore) SetActiveWallet(name string) error {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	if _, ok := ks.wallets[name]; !ok {
		return ErrWalletNotFound
	}
	ks.activeWallet = name
	return nil
}

// TotalDerived returns the number of derivation indices consumed so far,
// the configuration pod's running key-count.
func (ks *KeyStore) TotalDerived() uint64 {
	ks.mu.RLock()
	defer ks.mu.RUnlock()
	return ks.nextIndex
}

// Restore re-registers an already-derived index into the named bucket
// without allocating a fresh index. Used by RefreshCache to rebuild local
// key bookkeeping from the configuration pod's authoritative address
// lists; nextIndex is bumped past index if necessary so later AddPointerKey
// / AddScratchpadKey calls never collide with a restored index.
func (ks *KeyStore) Restore(address string, index uint64, bucket string) {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	switch bucket {
	case "pointer":
		ks.pointers[address] = index
	case "scratchpad":
		ks.scratchpads[address] = index
	case "free_pointer":
		ks.freePointers = append(ks.freePointers, keyRef{Address: address, Index: index})
	case "free_scratchpad":
		ks.freeScratchpads = append(ks.freeScratchpads, keyRef{Address: address, Index: index})
	case "bad":
		ks.badKeys[address] = index
	}
	if index >= ks.nextIndex {
		ks.nextIndex = index + 1
	}
}

// GetActiveWallet returns the name and secret hex of the active wallet.
func (ks *KeyStore) GetActiveWallet() (name, secretHex string, err error) {
	ks.mu.RLock()
	defer ks.mu.RUnlock()
	if ks.activeWallet == "" {
		return "", "", ErrNoActiveWallet
	}
	return ks.activeWallet, ks.wallets[ks.activeWallet], nil
}
