package graphstore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeTriGRoundTrip(t *testing.T) {
	quads := []Quad{
		{Subject: "ant://s1", Predicate: Name, Object: Literal("hello"), Graph: "ant://g"},
		{Subject: "ant://s1", Predicate: HasIndex, Object: Literal("0"), Graph: "ant://g"},
		{Subject: "ant://s2", Predicate: PodRef, Object: IRI("ant://other"), Graph: "ant://g"},
	}
	data := EncodeTriG(quads)
	decoded, err := DecodeTriG(data, "ant://g")
	require.NoError(t, err)
	require.Len(t, decoded, 3)
}

func TestSortGraphDataPriorityOrder(t *testing.T) {
	data := []byte(
		"ant://plain\n  <ant://colony-vocab/name> \"x\" .\n" +
			"ant://refsubj\n  <" + PodRef + "> <ant://other> .\n" +
			"ant://idxsubj\n  <" + HasIndex + "> \"1\" .\n",
	)
	sorted := SortGraphData(data)
	statements := SplitStatements(sorted)
	require.Len(t, statements, 3)
	require.Contains(t, statements[0], HasIndex)
	require.Contains(t, statements[1], PodRef)
	require.Contains(t, statements[2], "name")
}

func TestSortGraphDataStableWithinPriority(t *testing.T) {
	data := []byte(
		"ant://a\n  <ant://colony-vocab/name> \"a\" .\n" +
			"ant://b\n  <ant://colony-vocab/name> \"b\" .\n",
	)
	sorted := SortGraphData(data)
	statements := SplitStatements(sorted)
	require.True(t, statements[0] < statements[1] || len(statements) == 2)
	require.Contains(t, statements[0], "ant://a")
	require.Contains(t, statements[1], "ant://b")
}

func TestSplitStatementsNeverSplitsMultilineStatement(t *testing.T) {
	data := []byte("ant://s1\n  <p1> \"v1\" .\n  <p2> \"v2\" .\nant://s2\n  <p3> \"v3\" .\n")
	statements := SplitStatements(data)
	require.Len(t, statements, 2)
	require.Contains(t, statements[0], "p1")
	require.Contains(t, statements[0], "p2")
}
