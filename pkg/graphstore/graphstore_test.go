package graphstore

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestGraphStore(t *testing.T) *GraphStore {
	t.Helper()
	gs, err := Open(filepath.Join(t.TempDir(), "graph.db"))
	require.NoError(t, err)
	t.Cleanup(func() { gs.Close() })
	return gs
}

// addr pads a short hex prefix out to the 96-hex-char address format.
func addr(prefix string) string {
	return prefix + strings.Repeat("0", 96-len(prefix))
}

var cfgPod = addr("c0")

func TestAddPodEntryAndSubjectData(t *testing.T) {
	gs := newTestGraphStore(t)
	pod := addr("a1")
	sp := addr("a2")

	podTriG, cfgTriG, err := gs.AddPodEntry("Pod 1", pod, sp, cfgPod, sp, 2)
	require.NoError(t, err)
	require.NotEmpty(t, podTriG)
	require.NotEmpty(t, cfgTriG)

	normalized, err := gs.CheckPodExists(pod)
	require.NoError(t, err)
	require.Equal(t, pod, normalized)

	sps, err := gs.GetPodScratchpads(pod)
	require.NoError(t, err)
	require.Equal(t, []string{sp}, sps)

	_, _, err = gs.PutSubjectData(pod, "subj1", cfgPod, []byte(`{"@type":"MediaObject","name":"ant_girl.png"}`))
	require.NoError(t, err)

	quads, err := gs.GetSubjectData("subj1")
	require.NoError(t, err)
	require.NotEmpty(t, quads)

	var foundName bool
	for _, q := range quads {
		if q.Predicate == "ant://colony-vocab/name" && q.Object.Value == "ant_girl.png" {
			foundName = true
		}
	}
	require.True(t, foundName)
}

func TestPutSubjectDataEmptyDeletes(t *testing.T) {
	gs := newTestGraphStore(t)
	pod := addr("b1")
	sp := addr("b2")
	_, _, err := gs.AddPodEntry("Pod 2", pod, sp, cfgPod, sp, 2)
	require.NoError(t, err)

	_, _, err = gs.PutSubjectData(pod, "subj1", cfgPod, []byte(`{"name":"x"}`))
	require.NoError(t, err)
	quads, err := gs.GetSubjectData("subj1")
	require.NoError(t, err)
	require.NotEmpty(t, quads)

	_, _, err = gs.PutSubjectData(pod, "subj1", cfgPod, nil)
	require.NoError(t, err)
	quads, err = gs.GetSubjectData("subj1")
	require.NoError(t, err)
	require.Empty(t, quads)
}

func TestUpdatePodDepthMinMonotone(t *testing.T) {
	gs := newTestGraphStore(t)
	pod := addr("c1")

	require.NoError(t, gs.UpdatePodDepth(pod, cfgPod, 3))
	require.NoError(t, gs.UpdatePodDepth(pod, cfgPod, 1))
	require.NoError(t, gs.UpdatePodDepth(pod, cfgPod, 5))

	pods, err := gs.GetPodsAtDepth(cfgPod, 1)
	require.NoError(t, err)
	require.Contains(t, pods, pod)

	pods, err = gs.GetPodsAtDepth(cfgPod, 3)
	require.NoError(t, err)
	require.NotContains(t, pods, pod)
}

func TestRemovePodEntryMarksFree(t *testing.T) {
	gs := newTestGraphStore(t)
	pod := addr("d1")
	sp := addr("d2")
	_, _, err := gs.AddPodEntry("Pod 4", pod, sp, cfgPod, sp, 2)
	require.NoError(t, err)

	_, err = gs.RemovePodEntry(pod, []string{sp}, cfgPod)
	require.NoError(t, err)

	_, err = gs.CheckPodExists(pod)
	require.ErrorIs(t, err, ErrPodNotFound)

	free, err := gs.GetFreePointers(cfgPod)
	require.NoError(t, err)
	require.Contains(t, free, pod)
}

func TestPodRefEntryAndGetPodReferences(t *testing.T) {
	gs := newTestGraphStore(t)
	podA := addr("aa")
	podB := addr("bb")
	spA := addr("a1")

	_, _, err := gs.AddPodEntry("Pod A", podA, spA, cfgPod, spA, 2)
	require.NoError(t, err)

	_, err = gs.PodRefEntry(podA, podB, cfgPod, true, false)
	require.NoError(t, err)

	refs, err := gs.GetPodReferences(podA)
	require.NoError(t, err)
	require.Equal(t, []string{podB}, refs)

	_, err = gs.PodRefEntry(podA, podB, cfgPod, false, false)
	require.NoError(t, err)
	refs, err = gs.GetPodReferences(podA)
	require.NoError(t, err)
	require.Empty(t, refs)
}

func TestSearchContentOrdering(t *testing.T) {
	gs := newTestGraphStore(t)
	pod := addr("e1")
	sp := addr("e2")
	_, _, err := gs.AddPodEntry("Pod C", pod, sp, cfgPod, sp, 2)
	require.NoError(t, err)
	require.NoError(t, gs.UpdatePodDepth(pod, cfgPod, 0))

	_, _, err = gs.PutSubjectData(pod, "s1", cfgPod, []byte(`{"name":"ant girl ant"}`))
	require.NoError(t, err)
	_, _, err = gs.PutSubjectData(pod, "s2", cfgPod, []byte(`{"name":"just a girl"}`))
	require.NoError(t, err)

	results, err := gs.SearchContent(cfgPod, "ant girl", 10)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(results.Results.Bindings), 2)

	first := results.Results.Bindings[0]
	require.Equal(t, "ant girl ant", first["object"].Value)
}

func TestSearchContentEmptyQuery(t *testing.T) {
	gs := newTestGraphStore(t)
	results, err := gs.SearchContent(cfgPod, "", 10)
	require.NoError(t, err)
	require.Empty(t, results.Results.Bindings)
}

func TestCheckPodExistsInvalidAddress(t *testing.T) {
	gs := newTestGraphStore(t)
	_, err := gs.CheckPodExists("not-hex")
	require.ErrorIs(t, err, ErrInvalidAddress)
}
