package datastore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ActiveWallet is the persisted record of which wallet name/address pays
// for network operations.
type ActiveWallet struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// SaveActiveWallet atomically persists the active wallet record.
func (ds *DataStore) SaveActiveWallet(w ActiveWallet) error {
	data, err := json.MarshalIndent(w, "", "  ")
	if err != nil {
		return fmt.Errorf("datastore: marshal active wallet: %w", err)
	}
	return atomicWrite(ds.root, activeWalletName, data)
}

// ClearActiveWallet removes the active wallet record, if present.
func (ds *DataStore) ClearActiveWallet() error {
	err := os.Remove(filepath.Join(ds.root, activeWalletName))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("datastore: clear active wallet: %w", err)
	}
	return nil
}

// LoadActiveWallet reads the active wallet record, returning (nil, nil) if
// none has been recorded yet.
func (ds *DataStore) LoadActiveWallet() (*ActiveWallet, error) {
	data, err := os.ReadFile(filepath.Join(ds.root, activeWalletName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("datastore: read active wallet: %w", err)
	}
	var w ActiveWallet
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("datastore: parse active wallet: %w", err)
	}
	return &w, nil
}
