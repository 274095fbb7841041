package podmanager

import "github.com/colonylib/colony/pkg/datastore"

// AddWallet imports a raw secret scalar under a name, for use as a payment
// source by future upload operations. If this is the first wallet
// imported, the keystore activates it automatically; syncActiveWallet
// mirrors that onto disk as active_wallet.json.
func (pm *PodManager) AddWallet(name, secretHex string) error {
	if err := pm.keys.AddWalletKey(name, secretHex); err != nil {
		return err
	}
	return pm.syncActiveWallet()
}

// RemoveWallet deletes an imported wallet.
func (pm *PodManager) RemoveWallet(name string) error {
	if err := pm.keys.RemoveWalletKey(name); err != nil {
		return err
	}
	return pm.syncActiveWallet()
}

// SetActiveWallet marks an already-imported wallet as the one payments are
// drawn from.
func (pm *PodManager) SetActiveWallet(name string) error {
	if err := pm.keys.SetActiveWallet(name); err != nil {
		return err
	}
	return pm.syncActiveWallet()
}

// syncActiveWallet mirrors the keystore's current active wallet onto
// DataStore's active_wallet.json, the on-disk record spec.md's external
// interface names alongside the pointer/scratchpad caches and update queue.
func (pm *PodManager) syncActiveWallet() error {
	name, _, err := pm.keys.GetActiveWallet()
	if err != nil {
		return pm.data.ClearActiveWallet()
	}
	return pm.data.SaveActiveWallet(datastore.ActiveWallet{
		Name:    name,
		Address: pm.keys.GetWalletAddresses()[name],
	})
}

// ActiveWallet returns the name and opaque address of the active wallet.
func (pm *PodManager) ActiveWallet() (name, address string, err error) {
	name, _, err = pm.keys.GetActiveWallet()
	if err != nil {
		return "", "", err
	}
	return name, pm.keys.GetWalletAddresses()[name], nil
}

// ListWallets returns every imported wallet name mapped to its opaque
// payment address.
func (pm *PodManager) ListWallets() map[string]string {
	return pm.keys.GetWalletAddresses()
}
