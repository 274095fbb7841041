package network

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// MemClient is an in-memory fake of Client used by unit tests so
// PodManager's fan-out logic can be exercised without a real network.
// It derives a deterministic public address from each secret the same
// way a real owner-signed network would (one secret maps to exactly one
// address), without doing any real elliptic-curve math.
type MemClient struct {
	mu          sync.Mutex
	pointers    map[string]Pointer
	scratchpads map[string][]Scratchpad // multiple entries simulate a fork
}

// NewMemClient creates an empty fake network.
func NewMemClient() *MemClient {
	return &MemClient{
		pointers:    make(map[string]Pointer),
		scratchpads: make(map[string][]Scratchpad),
	}
}

// AddressFor derives the deterministic public address for a secret, the
// same way the fake's Put/Update operations do internally. Tests use this
// to predict addresses before any network call has happened.
func AddressFor(secretHex string) string {
	sum := sha256.Sum256([]byte("addr:" + secretHex))
	return hex.EncodeToString(sum[:])
}

func (m *MemClient) PointerGet(_ context.Context, address string) (Pointer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.pointers[address]
	if !ok {
		return Pointer{}, ErrRecordNotFound
	}
	return p, nil
}

func (m *MemClient) PointerPut(_ context.Context, secretHex, target string, _ Payment) (string, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	addr := AddressFor(secretHex)
	if _, exists := m.pointers[addr]; exists {
		return "", "", ErrCannotUpdateNewPointer
	}
	m.pointers[addr] = Pointer{Address: addr, Target: target, Counter: 0}
	return "0", addr, nil
}

func (m *MemClient) PointerUpdate(_ context.Context, secretHex, target string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	addr := AddressFor(secretHex)
	p, ok := m.pointers[addr]
	if !ok {
		return ErrCannotUpdateNewPointer
	}
	p.Target = target
	p.Counter++
	m.pointers[addr] = p
	return nil
}

func (m *MemClient) ScratchpadGet(_ context.Context, address string) (Scratchpad, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	versions, ok := m.scratchpads[address]
	if !ok || len(versions) == 0 {
		return Scratchpad{}, ErrRecordNotFound
	}
	if len(versions) > 1 {
		return Scratchpad{}, &ForkError{Candidates: append([]Scratchpad(nil), versions...)}
	}
	return versions[0], nil
}

func (m *MemClient) ScratchpadPut(_ context.Context, secretHex string, data []byte, _ Payment) (string, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	addr := AddressFor(secretHex)
	if _, exists := m.scratchpads[addr]; exists {
		return "", "", ErrCannotUpdateNewScratchpad
	}
	m.scratchpads[addr] = []Scratchpad{{Address: addr, Bytes: append([]byte(nil), data...), Counter: 0}}
	return "0", addr, nil
}

func (m *MemClient) ScratchpadUpdate(_ context.Context, secretHex string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	addr := AddressFor(secretHex)
	versions, ok := m.scratchpads[addr]
	if !ok || len(versions) == 0 {
		return ErrCannotUpdateNewScratchpad
	}
	counter := versions[len(versions)-1].Counter + 1
	m.scratchpads[addr] = []Scratchpad{{Address: addr, Bytes: append([]byte(nil), data...), Counter: counter}}
	return nil
}

// InjectFork replaces the stored versions for a scratchpad address with two
// or more concurrent candidates, simulating a network fork for tests.
func (m *MemClient) InjectFork(address string, candidates ...Scratchpad) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scratchpads[address] = append([]Scratchpad(nil), candidates...)
}

// SeedPointer installs a pointer directly, bypassing signing, for tests that
// need to seed pre-existing network state.
func (m *MemClient) SeedPointer(p Pointer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pointers[p.Address] = p
}

// SeedScratchpad installs a single scratchpad version directly.
func (m *MemClient) SeedScratchpad(s Scratchpad) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scratchpads[s.Address] = []Scratchpad{s}
}
