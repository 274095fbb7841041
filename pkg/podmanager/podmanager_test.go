package podmanager

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/colonylib/colony/pkg/graphstore"
	"github.com/colonylib/colony/pkg/keystore"
	"github.com/colonylib/colony/pkg/network"
)

func newTestManager(t *testing.T) (*PodManager, *network.MemClient) {
	t.Helper()
	ks, _, err := keystore.NewRandom()
	require.NoError(t, err)
	net := network.NewMemClient()
	dir := t.TempDir()
	pm, err := Open(context.Background(), ks, dir, filepath.Join(dir, "graph.db"), net)
	require.NoError(t, err)
	t.Cleanup(func() { pm.Close() })
	return pm, net
}

// S1: create and retrieve.
func TestCreateAndRetrievePod(t *testing.T) {
	pm, _ := newTestManager(t)
	ctx := context.Background()

	pod, err := pm.AddPod("Pod 1")
	require.NoError(t, err)

	subject := strings.Repeat("0", 92) + "029a"
	jsonLD, err := json.Marshal(map[string]string{"@type": "MediaObject", "name": "ant_girl.png"})
	require.NoError(t, err)
	require.NoError(t, pm.PutSubjectData(pod, subject, jsonLD))

	quads, err := pm.graph.GetSubjectData(subject)
	require.NoError(t, err)
	var found bool
	for _, q := range quads {
		if strings.HasSuffix(q.Predicate, "name") && q.Object.Value == "ant_girl.png" {
			found = true
		}
	}
	require.True(t, found)

	require.NoError(t, pm.UploadAll(ctx))

	ul, err := pm.GetUpdateList()
	require.NoError(t, err)
	require.Empty(t, ul.Pods)
}

// S2: multi-scratchpad expansion.
func TestProcessPodDataExpandsAcrossScratchpads(t *testing.T) {
	pm, _ := newTestManager(t)
	pod, err := pm.AddPod("Big Pod")
	require.NoError(t, err)

	payload := make([]byte, 0, 5*1024*1024)
	for len(payload) < 5*1024*1024 {
		payload = append(payload, []byte("<ant://x> <ant://colony-vocab/name> \"filler\" .\n")...)
	}
	require.NoError(t, pm.ProcessPodData(pod, payload))

	sps, err := pm.graph.GetPodScratchpads(pod)
	require.NoError(t, err)
	require.Len(t, sps, 2)
}

// ListMyPods joins each owned address against its recorded name and depth.
func TestListMyPodsReportsNameAndDepth(t *testing.T) {
	pm, _ := newTestManager(t)

	pod, err := pm.AddPod("Photos")
	require.NoError(t, err)

	pods, err := pm.ListMyPods()
	require.NoError(t, err)
	require.Len(t, pods, 1)
	require.Equal(t, pod, pods[0].Address)
	require.Equal(t, "Photos", pods[0].Name)
	require.EqualValues(t, 0, pods[0].Depth)
}

// S5 / S6: remove-then-upload and queue exclusion cross-move.
func TestRemoveThenUploadClearsNetworkAndLocalState(t *testing.T) {
	pm, net := newTestManager(t)
	ctx := context.Background()

	pod, err := pm.AddPod("Pod 1")
	require.NoError(t, err)
	require.NoError(t, pm.UploadAll(ctx))

	require.NoError(t, pm.RemovePod(pod))

	ul, err := pm.GetUpdateList()
	require.NoError(t, err)
	require.Contains(t, ul.Remove.Pointers, pod)
	require.Empty(t, ul.Pods)

	require.NoError(t, pm.UploadAll(ctx))

	_, err = net.PointerGet(ctx, pod)
	require.Error(t, err)
	require.False(t, pm.data.HasPointerFile(pod))
}

func TestQueueExclusionCrossMove(t *testing.T) {
	pm, _ := newTestManager(t)
	require.NoError(t, pm.data.AppendRemovalList("X", "pointer"))
	require.NoError(t, pm.data.AppendUpdateList("X"))

	ul, err := pm.GetUpdateList()
	require.NoError(t, err)
	require.Contains(t, ul.Pods, "X")
	require.NotContains(t, ul.Remove.Pointers, "X")
}

// Wallet mutations must be mirrored onto active_wallet.json, not just kept
// inside the keystore's encrypted blob.
func TestWalletMutationsSyncActiveWalletFile(t *testing.T) {
	pm, _ := newTestManager(t)

	none, err := pm.data.LoadActiveWallet()
	require.NoError(t, err)
	require.Nil(t, none)

	require.NoError(t, pm.AddWallet("primary", "deadbeef"))
	w, err := pm.data.LoadActiveWallet()
	require.NoError(t, err)
	require.Equal(t, "primary", w.Name)

	require.NoError(t, pm.AddWallet("backup", "cafef00d"))
	w, err = pm.data.LoadActiveWallet()
	require.NoError(t, err)
	require.Equal(t, "primary", w.Name, "first imported wallet stays active")

	require.NoError(t, pm.SetActiveWallet("backup"))
	w, err = pm.data.LoadActiveWallet()
	require.NoError(t, err)
	require.Equal(t, "backup", w.Name)

	require.NoError(t, pm.RemoveWallet("backup"))
	none, err = pm.data.LoadActiveWallet()
	require.NoError(t, err)
	require.Nil(t, none, "removing the active wallet clears the record")
}

// Invariant 7: the configuration pod can never be removed.
func TestRemoveConfigPodFails(t *testing.T) {
	pm, _ := newTestManager(t)
	err := pm.RemovePod(pm.ConfigPod())
	require.ErrorIs(t, err, ErrBadOperation)
}

// S3: fork resolution surfaces through the upload path when a scratchpad
// already holds two concurrent versions.
func TestUploadResolvesExistingFork(t *testing.T) {
	pm, net := newTestManager(t)
	ctx := context.Background()

	pod, err := pm.AddPod("Pod 1")
	require.NoError(t, err)
	require.NoError(t, pm.UploadAll(ctx))

	sps, err := pm.graph.GetPodScratchpads(pod)
	require.NoError(t, err)
	primary := sps[0]

	net.InjectFork(primary,
		network.Scratchpad{Address: primary, Bytes: []byte("#2024-01-15T10:30:00+00:00\nold\n"), Counter: 1},
		network.Scratchpad{Address: primary, Bytes: []byte("#2024-01-15T10:30:05+00:00\nnewer\n"), Counter: 1},
	)

	require.NoError(t, pm.UploadAll(ctx))
}

// S4: reference crawl depth across a 3-cycle A -> B -> C -> A, only A owned
// locally.
func TestRefreshRefCrawlsCyclicReferences(t *testing.T) {
	pm, net := newTestManager(t)
	ctx := context.Background()

	a, err := pm.AddPod("A")
	require.NoError(t, err)
	require.NoError(t, pm.UploadAll(ctx))

	b := seedRemotePod(t, net, "B")
	c := seedRemotePod(t, net, "C")
	seedPodRef(t, net, b, c)
	seedPodRef(t, net, c, a)

	require.NoError(t, pm.AddPodRef(a, b, false))
	require.NoError(t, pm.UploadAll(ctx))

	require.NoError(t, pm.RefreshRef(ctx, 2))

	depthsA, err := pm.graph.GetPodsAtDepth(pm.ConfigPod(), 0)
	require.NoError(t, err)
	require.Contains(t, depthsA, a)

	depthsB, err := pm.graph.GetPodsAtDepth(pm.ConfigPod(), 1)
	require.NoError(t, err)
	require.Contains(t, depthsB, b)

	depthsC, err := pm.graph.GetPodsAtDepth(pm.ConfigPod(), 2)
	require.NoError(t, err)
	require.Contains(t, depthsC, c)
}

// seedRemotePod writes a minimal single-scratchpad pod directly to the fake
// network, simulating a pod owned by a different device/mnemonic.
func seedRemotePod(t *testing.T, net *network.MemClient, name string) string {
	t.Helper()
	_, pointerMnemonic, err := keystore.NewRandom()
	require.NoError(t, err)
	_, scratchpadMnemonic, err := keystore.NewRandom()
	require.NoError(t, err)

	pointerAddr := network.AddressFor(pointerMnemonic)
	spAddr := network.AddressFor(scratchpadMnemonic)

	body := graphstore.SubjectIRI(spAddr) + "\n" +
		"  <" + graphstore.HasIndex + "> \"0\" .\n" +
		graphstore.SubjectIRI(pointerAddr) + "\n" +
		"  <" + graphstore.Name + "> \"" + name + "\" .\n"
	net.SeedScratchpad(network.Scratchpad{
		Address: spAddr,
		Bytes:   []byte("#2024-01-15T10:30:00+00:00\n" + body),
		Counter: 0,
	})
	net.SeedPointer(network.Pointer{Address: pointerAddr, Target: spAddr, Counter: 0})
	return pointerAddr
}

// seedPodRef appends a POD_REF statement from pod to ref into pod's primary
// scratchpad on the fake network.
func seedPodRef(t *testing.T, net *network.MemClient, pod, ref string) {
	t.Helper()
	ctx := context.Background()
	p, err := net.PointerGet(ctx, pod)
	require.NoError(t, err)
	current, err := net.ScratchpadGet(ctx, p.Target)
	require.NoError(t, err)

	refStatement := graphstore.SubjectIRI(pod) + "\n" +
		"  <" + graphstore.PodRef + "> <" + graphstore.SubjectIRI(ref) + "> .\n"
	updated := append(append([]byte{}, current.Bytes...), []byte(refStatement)...)
	net.SeedScratchpad(network.Scratchpad{Address: current.Address, Bytes: updated, Counter: current.Counter})
}
