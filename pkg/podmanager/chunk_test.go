package podmanager

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/colonylib/colony/pkg/graphstore"
	"github.com/colonylib/colony/pkg/network"
)

// Invariant 4: every produced chunk respects the capacity bound.
func TestSplitIntoChunksRespectsCapacity(t *testing.T) {
	var payload []byte
	for i := 0; i < 500; i++ {
		payload = append(payload, []byte(strings.Repeat("x", 37)+"\n")...)
	}
	const capacity = 1000
	chunks := splitIntoChunks(payload, capacity)
	for _, c := range chunks {
		require.LessOrEqual(t, len(c), capacity)
	}
}

// Invariant 8: round trip for a payload under the single-chunk threshold.
func TestProcessPodDataRoundTrip(t *testing.T) {
	pm, _ := newTestManager(t)
	pod, err := pm.AddPod("RoundTrip")
	require.NoError(t, err)

	payload := []byte(graphstore.SubjectIRI("deadbeef") + "\n  <" + graphstore.Name + "> \"hello\" .\n")
	require.NoError(t, pm.ProcessPodData(pod, payload))

	sps, err := pm.graph.GetPodScratchpads(pod)
	require.NoError(t, err)
	require.Len(t, sps, 1)

	stored, err := pm.data.ReadScratchpadFile(sps[0])
	require.NoError(t, err)
	require.Equal(t, graphstore.SortGraphData(payload), stripTimestamp(stored))
}

// Invariant 6: select_newest picks the candidate with the latest parseable
// timestamp, whatever the candidates' order. The no-timestamp fallback is
// covered by TestSelectNewestFallsBackToFirstCandidate.
func TestSelectNewestPicksLatestTimestamp(t *testing.T) {
	older := network.Scratchpad{Bytes: []byte("#2024-01-15T10:30:00+00:00\nold\n")}
	newer := network.Scratchpad{Bytes: []byte("#2024-01-15T10:30:05+00:00\nnew\n")}
	require.Equal(t, newer, selectNewest([]network.Scratchpad{older, newer}))
	require.Equal(t, newer, selectNewest([]network.Scratchpad{newer, older}))
}

func TestSelectNewestFallsBackToFirstCandidate(t *testing.T) {
	a := network.Scratchpad{Bytes: []byte("no timestamp here\n")}
	b := network.Scratchpad{Bytes: []byte("also none\n")}
	require.Equal(t, a, selectNewest([]network.Scratchpad{a, b}))
}

// S3: upload_all writes counter = max(both)+1 and the local payload when it
// encounters an existing fork.
func TestUploadAllResolvesForkWithMaxCounterPlusOne(t *testing.T) {
	pm, net := newTestManager(t)
	ctx := context.Background()

	pod, err := pm.AddPod("Forked")
	require.NoError(t, err)
	require.NoError(t, pm.UploadAll(ctx))

	sps, err := pm.graph.GetPodScratchpads(pod)
	require.NoError(t, err)
	primary := sps[0]

	net.InjectFork(primary,
		network.Scratchpad{Address: primary, Bytes: []byte("#2024-01-15T10:30:00+00:00\nold\n"), Counter: 3},
		network.Scratchpad{Address: primary, Bytes: []byte("#2024-01-15T10:30:05+00:00\nnewer\n"), Counter: 5},
	)

	require.NoError(t, pm.UploadAll(ctx))

	got, err := net.ScratchpadGet(ctx, primary)
	require.NoError(t, err)
	require.EqualValues(t, 6, got.Counter)
	require.False(t, bytes.Contains(got.Bytes, []byte("newer")))
}
