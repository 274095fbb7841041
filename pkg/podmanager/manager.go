package podmanager

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/colonylib/colony/pkg/datastore"
	"github.com/colonylib/colony/pkg/graphstore"
	"github.com/colonylib/colony/pkg/keystore"
	"github.com/colonylib/colony/pkg/log"
	"github.com/colonylib/colony/pkg/metrics"
	"github.com/colonylib/colony/pkg/network"
)

// PodManager is the coordinator: it owns one KeyStore, one DataStore, one
// GraphStore and a network.Client, and is the sole writer to all of them.
// The design assumes a single PodManager instance per data directory.
type PodManager struct {
	keys  *keystore.KeyStore
	data  *datastore.DataStore
	graph *graphstore.GraphStore
	net   network.Client

	cfgPointer    string
	cfgScratchpad string

	log zerolog.Logger
}

// Open wires together an already-unlocked KeyStore with a DataStore and
// GraphStore rooted at dir, bootstrapping the configuration pod on first
// use.
func Open(ctx context.Context, keys *keystore.KeyStore, dataDir, graphPath string, net network.Client) (*PodManager, error) {
	data, err := datastore.New(dataDir)
	if err != nil {
		return nil, fmt.Errorf("podmanager: open datastore: %w", err)
	}
	graph, err := graphstore.Open(graphPath)
	if err != nil {
		return nil, fmt.Errorf("podmanager: open graphstore: %w", err)
	}

	pm := &PodManager{
		keys:  keys,
		data:  data,
		graph: graph,
		net:   net,
		log:   log.WithComponent("podmanager"),
	}

	if err := pm.bootstrapConfigPod(ctx); err != nil {
		graph.Close()
		return nil, err
	}
	return pm, nil
}

// Close releases the underlying graph database handle.
func (pm *PodManager) Close() error {
	return pm.graph.Close()
}

// bootstrapConfigPod derives the configuration pointer/scratchpad keys
// (indices 0 and 1) and creates the configuration pod's graph entry the
// first time this KeyStore is used. Subsequent opens recognize the
// configuration pod already exists and are no-ops.
func (pm *PodManager) bootstrapConfigPod(ctx context.Context) error {
	pointers := pm.keys.ListPointerAddresses()
	if len(pointers) > 0 {
		pm.cfgPointer = pm.keys.GetAddressAtIndex(0)
		pm.cfgScratchpad = pm.keys.GetAddressAtIndex(1)
		return nil
	}

	cfgPointer, _ := pm.keys.AddPointerKey()
	cfgScratchpad, _ := pm.keys.AddScratchpadKey()
	pm.cfgPointer = cfgPointer
	pm.cfgScratchpad = cfgScratchpad

	_, cfgTriG, err := pm.graph.AddPodEntry("Configuration", cfgPointer, cfgScratchpad, cfgPointer, cfgScratchpad, 2)
	if err != nil {
		return fmt.Errorf("podmanager: bootstrap configuration pod: %w", err)
	}
	if err := pm.data.WritePointerFile(cfgPointer, cfgScratchpad, 0); err != nil {
		return fmt.Errorf("podmanager: write configuration pointer file: %w", err)
	}
	if err := pm.ProcessPodData(cfgPointer, cfgTriG); err != nil {
		return err
	}
	metrics.PodsTotal.WithLabelValues("0").Inc()
	pm.log.Info().Str("pointer", cfgPointer).Msg("bootstrapped configuration pod")
	return nil
}

// ConfigPod returns the configuration pod's pointer address.
func (pm *PodManager) ConfigPod() string { return pm.cfgPointer }

func newOperationID() string {
	return uuid.NewString()
}
