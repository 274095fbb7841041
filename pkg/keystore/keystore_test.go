package keystore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *KeyStore {
	t.Helper()
	ks, _, err := NewRandom()
	require.NoError(t, err)
	return ks
}

func TestGetAddressAtIndexDeterministic(t *testing.T) {
	ks := newTestStore(t)
	a := ks.GetAddressAtIndex(5)
	b := ks.GetAddressAtIndex(5)
	require.Equal(t, a, b)
}

func TestGetAddressAtIndexInjective(t *testing.T) {
	ks := newTestStore(t)
	seen := make(map[string]uint64)
	for i := uint64(0); i < 64; i++ {
		addr := ks.GetAddressAtIndex(i)
		if prev, ok := seen[addr]; ok {
			t.Fatalf("index %d and %d collided on address %s", prev, i, addr)
		}
		seen[addr] = i
	}
}

func TestAddPointerKeyTracksAddress(t *testing.T) {
	ks := newTestStore(t)
	addr, secretHex := ks.AddPointerKey()
	require.NotEmpty(t, addr)
	require.NotEmpty(t, secretHex)

	got, err := ks.GetPointerKey(addr)
	require.NoError(t, err)
	require.Equal(t, secretHex, got)
}

func TestRemovePointerKeyIsReusedBeforeFreshDerivation(t *testing.T) {
	ks := newTestStore(t)
	addr1, _ := ks.AddPointerKey()
	require.NoError(t, ks.RemovePointerKey(addr1))

	addr2, _ := ks.AddPointerKey()
	require.Equal(t, addr1, addr2, "freed pointer key should be reused before deriving a new index")

	_, err := ks.GetPointerKey(addr1)
	require.NoError(t, err)
}

func TestRemovePointerKeyUnknownAddress(t *testing.T) {
	ks := newTestStore(t)
	err := ks.RemovePointerKey("deadbeef")
	require.ErrorIs(t, err, ErrKeyNotFound)
}

func TestAddBadKeyRetiresPermanently(t *testing.T) {
	ks := newTestStore(t)
	addr, _ := ks.AddPointerKey()
	require.NoError(t, ks.AddBadKey(addr))

	_, err := ks.GetPointerKey(addr)
	require.ErrorIs(t, err, ErrKeyNotFound)

	// A fresh pointer key must never resurrect a bad address.
	for i := 0; i < 8; i++ {
		newAddr, _ := ks.AddPointerKey()
		require.NotEqual(t, addr, newAddr)
	}
}

func TestClearKeysResetsButKeepsMnemonic(t *testing.T) {
	ks := newTestStore(t)
	mnemonic := ks.Mnemonic()
	addr, _ := ks.AddPointerKey()

	ks.ClearKeys()

	_, err := ks.GetPointerKey(addr)
	require.ErrorIs(t, err, ErrKeyNotFound)
	require.Equal(t, mnemonic, ks.Mnemonic())

	// Index sequencing restarts, so the first key derived after a clear
	// reproduces index 0's address again.
	newAddr, _ := ks.AddPointerKey()
	require.Equal(t, ks.GetAddressAtIndex(0), newAddr)
}

func TestWalletActiveDefaultsToFirstImported(t *testing.T) {
	ks := newTestStore(t)
	require.NoError(t, ks.AddWalletKey("primary", "01020304"))

	name, secretHex, err := ks.GetActiveWallet()
	require.NoError(t, err)
	require.Equal(t, "primary", name)
	require.Equal(t, "01020304", secretHex)
}

func TestWalletAddressesAreStableAndDistinct(t *testing.T) {
	ks := newTestStore(t)
	require.NoError(t, ks.AddWalletKey("a", "aa"))
	require.NoError(t, ks.AddWalletKey("b", "bb"))

	addrs := ks.GetWalletAddresses()
	require.Len(t, addrs, 2)
	require.NotEqual(t, addrs["a"], addrs["b"])
	require.Equal(t, addrs["a"], walletAddress("aa"))
}

func TestSetActiveWalletUnknown(t *testing.T) {
	ks := newTestStore(t)
	err := ks.SetActiveWallet("missing")
	require.ErrorIs(t, err, ErrWalletNotFound)
}

func TestFromMnemonicRejectsInvalidPhrase(t *testing.T) {
	_, err := FromMnemonic("not a real mnemonic phrase at all")
	require.ErrorIs(t, err, ErrBadMnemonic)
}

func TestFileRoundTrip(t *testing.T) {
	ks := newTestStore(t)
	addr, secretHex := ks.AddPointerKey()
	require.NoError(t, ks.AddWalletKey("primary", "0102"))

	dir := t.TempDir()
	path := filepath.Join(dir, "keystore.bin")
	require.NoError(t, ks.ToFile(path, "correct horse battery staple"))

	reloaded, err := FromFile(path, "correct horse battery staple")
	require.NoError(t, err)

	got, err := reloaded.GetPointerKey(addr)
	require.NoError(t, err)
	require.Equal(t, secretHex, got)

	_, gotSecret, err := reloaded.GetActiveWallet()
	require.NoError(t, err)
	require.Equal(t, "0102", gotSecret)
}

func TestFileRoundTripWrongPasswordFails(t *testing.T) {
	ks := newTestStore(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "keystore.bin")
	require.NoError(t, ks.ToFile(path, "correct horse battery staple"))

	_, err := FromFile(path, "wrong password")
	require.Error(t, err)
}
