package datastore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *DataStore {
	t.Helper()
	ds, err := New(t.TempDir())
	require.NoError(t, err)
	return ds
}

func TestPointerFileRoundTrip(t *testing.T) {
	ds := newTestStore(t)
	require.False(t, ds.HasPointerFile("p1"))

	require.NoError(t, ds.WritePointerFile("p1", "target1", 3))
	target, counter, err := ds.ReadPointerFile("p1")
	require.NoError(t, err)
	require.Equal(t, "target1", target)
	require.EqualValues(t, 3, counter)

	require.NoError(t, ds.DeletePointerFile("p1"))
	_, _, err = ds.ReadPointerFile("p1")
	require.ErrorIs(t, err, ErrPointerNotFound)
}

func TestScratchpadFileRoundTrip(t *testing.T) {
	ds := newTestStore(t)
	require.NoError(t, ds.WriteScratchpadFile("s1", []byte("#2024-01-01T00:00:00Z\nhello")))

	data, err := ds.ReadScratchpadFile("s1")
	require.NoError(t, err)
	require.Equal(t, "#2024-01-01T00:00:00Z\nhello", string(data))

	require.NoError(t, ds.DeleteScratchpadFile("s1"))
	_, err = ds.ReadScratchpadFile("s1")
	require.ErrorIs(t, err, ErrScratchpadNotFound)
}

func TestAppendUpdateListRemovesFromRemovePointers(t *testing.T) {
	ds := newTestStore(t)
	require.NoError(t, ds.AppendRemovalList("p1", "pointer"))
	require.NoError(t, ds.AppendUpdateList("p1"))

	ul, err := ds.GetUpdateList()
	require.NoError(t, err)
	require.Contains(t, ul.Pods, "p1")
	require.NotContains(t, ul.Remove.Pointers, "p1")
}

func TestAppendRemovalListDropsFromPods(t *testing.T) {
	ds := newTestStore(t)
	require.NoError(t, ds.AppendUpdateList("p1"))
	require.NoError(t, ds.AddScratchpadToPod("p1", "s1"))

	require.NoError(t, ds.AppendRemovalList("s1", "scratchpad"))
	ul, err := ds.GetUpdateList()
	require.NoError(t, err)
	require.NotContains(t, ul.Pods["p1"], "s1")
	require.Contains(t, ul.Remove.Scratchpads, "s1")
}

// TestQueueMutualExclusion exercises the pointer half of invariant 2: no
// address is ever simultaneously in Pods and Remove.Pointers. The
// scratchpad half is covered by TestAppendRemovalListDropsFromPods.
func TestQueueMutualExclusion(t *testing.T) {
	ds := newTestStore(t)

	require.NoError(t, ds.AppendRemovalList("x", "pointer"))
	ul, err := ds.GetUpdateList()
	require.NoError(t, err)
	require.NotContains(t, ul.Pods, "x")
	require.Contains(t, ul.Remove.Pointers, "x")

	require.NoError(t, ds.AppendUpdateList("x"))
	ul, err = ds.GetUpdateList()
	require.NoError(t, err)
	require.Contains(t, ul.Pods, "x")
	require.NotContains(t, ul.Remove.Pointers, "x")
}

func TestClearUpdateList(t *testing.T) {
	ds := newTestStore(t)
	require.NoError(t, ds.AppendUpdateList("p1"))
	require.NoError(t, ds.ClearUpdateList())

	ul, err := ds.GetUpdateList()
	require.NoError(t, err)
	require.Empty(t, ul.Pods)
}

func TestActiveWalletRoundTrip(t *testing.T) {
	ds := newTestStore(t)
	w, err := ds.LoadActiveWallet()
	require.NoError(t, err)
	require.Nil(t, w)

	require.NoError(t, ds.SaveActiveWallet(ActiveWallet{Name: "primary", Address: "abc"}))
	w, err = ds.LoadActiveWallet()
	require.NoError(t, err)
	require.Equal(t, "primary", w.Name)
	require.Equal(t, "abc", w.Address)
}

func TestExportPod(t *testing.T) {
	ds := newTestStore(t)
	path, err := ds.ExportPod("pod1", []byte("graph data"))
	require.NoError(t, err)
	require.FileExists(t, path)
}
