package podmanager

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/colonylib/colony/pkg/graphstore"
	"github.com/colonylib/colony/pkg/network"
)

const (
	// ScratchpadSizeLimit is the network's size cap per scratchpad version.
	ScratchpadSizeLimit = 4 * 1024 * 1024
	// TimestampReserve is the byte budget reserved for each chunk's
	// leading "#<RFC3339>\n" comment.
	TimestampReserve = 37
)

func chunkCapacity() int { return ScratchpadSizeLimit - TimestampReserve }

// splitIntoChunks breaks data into chunks no larger than capacity bytes,
// preserving line boundaries wherever possible. A single line longer than
// capacity is split by raw bytes; the trailing newline of that line ends
// up wherever its byte position naturally falls.
func splitIntoChunks(data []byte, capacity int) [][]byte {
	if len(data) == 0 {
		return [][]byte{{}}
	}

	var chunks [][]byte
	var current []byte
	flush := func() {
		if len(current) > 0 {
			chunks = append(chunks, current)
			current = nil
		}
	}

	lines := bytes.Split(data, []byte("\n"))
	for i, line := range lines {
		isTrailingEmpty := i == len(lines)-1 && len(line) == 0
		if isTrailingEmpty {
			continue
		}
		var piece []byte
		if i < len(lines)-1 {
			piece = append(append([]byte{}, line...), '\n')
		} else {
			piece = append([]byte{}, line...)
		}

		if len(piece) > capacity {
			flush()
			rem := piece
			for len(rem) > capacity {
				chunks = append(chunks, append([]byte{}, rem[:capacity]...))
				rem = rem[capacity:]
			}
			current = append([]byte{}, rem...)
			continue
		}

		if len(current)+len(piece) > capacity {
			flush()
		}
		current = append(current, piece...)
	}
	flush()
	if len(chunks) == 0 {
		chunks = append(chunks, []byte{})
	}
	return chunks
}

// stampChunk prepends the "#<RFC3339>\n" timestamp comment every
// scratchpad payload must start with.
func stampChunk(chunk []byte) []byte {
	prefix := "#" + time.Now().UTC().Format(time.RFC3339) + "\n"
	out := make([]byte, 0, len(prefix)+len(chunk))
	out = append(out, prefix...)
	out = append(out, chunk...)
	return out
}

func firstLine(data []byte) string {
	if idx := bytes.IndexByte(data, '\n'); idx >= 0 {
		return string(data[:idx])
	}
	return string(data)
}

// stripTimestamp removes a leading "#<RFC3339>\n" comment, if present.
func stripTimestamp(data []byte) []byte {
	line := firstLine(data)
	if !strings.HasPrefix(line, "#") {
		return data
	}
	if _, err := time.Parse(time.RFC3339, strings.TrimPrefix(line, "#")); err != nil {
		return data
	}
	rest := data[len(line):]
	return bytes.TrimPrefix(rest, []byte("\n"))
}

// selectNewest implements fork resolution: the candidate whose first-line
// "#<RFC3339>" comment parses to the latest timestamp wins; ties or
// unparseable timestamps fall back to the first candidate.
func selectNewest(candidates []network.Scratchpad) network.Scratchpad {
	var best network.Scratchpad
	var bestTime time.Time
	found := false
	for _, c := range candidates {
		ts, ok := parseLeadingTimestamp(c.Bytes)
		if !ok {
			continue
		}
		if !found || ts.After(bestTime) {
			best, bestTime, found = c, ts, true
		}
	}
	if found {
		return best
	}
	return candidates[0]
}

func parseLeadingTimestamp(data []byte) (time.Time, bool) {
	line := firstLine(data)
	if !strings.HasPrefix(line, "#") {
		return time.Time{}, false
	}
	ts, err := time.Parse(time.RFC3339, strings.TrimPrefix(line, "#"))
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// ProcessPodData sorts a pod's combined TriG document, allocates or
// retires scratchpads until the pod owns exactly as many as the sorted
// payload requires, writes each chunk to its scratchpad file, and queues
// the pod's pointer address for upload.
func (pm *PodManager) ProcessPodData(pod string, trigBytes []byte) error {
	sorted := graphstore.SortGraphData(trigBytes)
	chunks := splitIntoChunks(sorted, chunkCapacity())
	required := len(chunks)

	existing, err := pm.graph.GetPodScratchpads(pod)
	if err != nil {
		return fmt.Errorf("podmanager: list pod scratchpads: %w", err)
	}

	for len(existing) < required {
		spAddr, _ := pm.keys.AddScratchpadKey()
		if _, err := pm.graph.AppendPodScratchpad(pod, spAddr, len(existing)); err != nil {
			return fmt.Errorf("podmanager: record new scratchpad: %w", err)
		}
		if _, err := pm.graph.SetConfigKeyCount(pm.cfgPointer, pm.cfgScratchpad, pm.keys.TotalDerived()); err != nil {
			return fmt.Errorf("podmanager: bump key count: %w", err)
		}
		existing = append(existing, spAddr)
	}

	for len(existing) > required {
		last := len(existing) - 1
		spAddr := existing[last]
		existing = existing[:last]

		if err := pm.data.DeleteScratchpadFile(spAddr); err != nil {
			return err
		}
		if _, err := pm.graph.RemovePodScratchpadEntry(pod, spAddr); err != nil {
			return err
		}
		if err := pm.keys.RemoveScratchpadKey(spAddr); err != nil {
			return fmt.Errorf("podmanager: retire scratchpad key: %w", err)
		}
		if err := pm.data.AppendRemovalList(spAddr, "scratchpad"); err != nil {
			return err
		}
	}

	for i, chunk := range chunks {
		stamped := stampChunk(chunk)
		if err := pm.data.WriteScratchpadFile(existing[i], stamped); err != nil {
			return fmt.Errorf("podmanager: write scratchpad file: %w", err)
		}
		if err := pm.data.AddScratchpadToPod(pod, existing[i]); err != nil {
			return err
		}
	}

	return pm.data.AppendUpdateList(pod)
}
