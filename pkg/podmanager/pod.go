package podmanager

import (
	"fmt"

	"github.com/colonylib/colony/pkg/datastore"
	"github.com/colonylib/colony/pkg/metrics"
)

// AddPod derives a fresh pointer/scratchpad pair, registers the pod in
// both its own graph and the configuration graph, and queues it for
// upload. It returns the new pod's pointer address.
func (pm *PodManager) AddPod(name string) (string, error) {
	pointerAddr, _ := pm.keys.AddPointerKey()
	spAddr, _ := pm.keys.AddScratchpadKey()

	podTriG, _, err := pm.graph.AddPodEntry(name, pointerAddr, spAddr, pm.cfgPointer, pm.cfgScratchpad, pm.keys.TotalDerived())
	if err != nil {
		return "", fmt.Errorf("podmanager: add pod: %w", err)
	}
	if err := pm.data.WritePointerFile(pointerAddr, spAddr, 0); err != nil {
		return "", err
	}
	if err := pm.ProcessPodData(pointerAddr, podTriG); err != nil {
		return "", err
	}
	metrics.PodsTotal.WithLabelValues("0").Inc()
	pm.log.Info().Str("pod", pointerAddr).Str("name", name).Msg("added pod")
	return pointerAddr, nil
}

// RemovePod drops a pod's named graph, retags its pointer and scratchpad
// keys as free in the configuration graph, and queues the removal for
// upload_all. The configuration pod itself can never be removed.
func (pm *PodManager) RemovePod(addr string) error {
	if addr == pm.cfgPointer {
		return fmt.Errorf("podmanager: remove pod: %w", ErrBadOperation)
	}

	sps, err := pm.graph.GetPodScratchpads(addr)
	if err != nil {
		return err
	}
	if _, err := pm.graph.RemovePodEntry(addr, sps, pm.cfgPointer); err != nil {
		return fmt.Errorf("podmanager: remove pod: %w", err)
	}

	if err := pm.data.AppendRemovalList(addr, "pointer"); err != nil {
		return err
	}
	for _, sp := range sps {
		if err := pm.data.AppendRemovalList(sp, "scratchpad"); err != nil {
			return err
		}
	}

	if err := pm.keys.RemovePointerKey(addr); err != nil {
		return err
	}
	for _, sp := range sps {
		if err := pm.keys.RemoveScratchpadKey(sp); err != nil {
			return err
		}
	}

	pm.log.Info().Str("pod", addr).Msg("removed pod, queued for upload")
	return nil
}

// RenamePod overwrites a pod's recorded name and re-queues it for upload.
func (pm *PodManager) RenamePod(addr, newName string) error {
	podTriG, err := pm.graph.RenamePodEntry(addr, newName)
	if err != nil {
		return fmt.Errorf("podmanager: rename pod: %w", err)
	}
	return pm.ProcessPodData(addr, podTriG)
}

// AddPodRef records that pod references ref. When isLocal is true, ref is
// also catalogued as one of this key store's own pointers in the
// configuration graph.
func (pm *PodManager) AddPodRef(pod, ref string, isLocal bool) error {
	podTriG, err := pm.graph.PodRefEntry(pod, ref, pm.cfgPointer, true, isLocal)
	if err != nil {
		return fmt.Errorf("podmanager: add pod ref: %w", err)
	}
	return pm.ProcessPodData(pod, podTriG)
}

// RemovePodRef drops a previously recorded reference from pod to ref.
func (pm *PodManager) RemovePodRef(pod, ref string) error {
	podTriG, err := pm.graph.PodRefEntry(pod, ref, pm.cfgPointer, false, false)
	if err != nil {
		return fmt.Errorf("podmanager: remove pod ref: %w", err)
	}
	return pm.ProcessPodData(pod, podTriG)
}

// PutSubjectData replaces a subject's quads in pod's graph with the
// flattened contents of jsonLD (an empty document deletes the subject),
// then re-chunks and queues the pod for upload.
func (pm *PodManager) PutSubjectData(pod, subject string, jsonLD []byte) error {
	podTriG, _, err := pm.graph.PutSubjectData(pod, subject, pm.cfgPointer, jsonLD)
	if err != nil {
		return fmt.Errorf("podmanager: put subject data: %w", err)
	}
	return pm.ProcessPodData(pod, podTriG)
}

// PodInfo is one entry in ListMyPods' result: a pod's address alongside
// its recorded name and crawl depth from the configuration graph.
type PodInfo struct {
	Address string
	Name    string
	Depth   uint64
}

// ListMyPods enumerates every pod this key store owns (excluding the
// configuration pod itself) with its name and depth, the way the original
// list_my_pods joins pod address against the configuration graph's name
// and hasDepth quads.
func (pm *PodManager) ListMyPods() ([]PodInfo, error) {
	all, err := pm.graph.GetPointers(pm.cfgPointer)
	if err != nil {
		return nil, err
	}
	out := make([]PodInfo, 0, len(all))
	for _, addr := range all {
		if addr == pm.cfgPointer {
			continue
		}
		name, depth, err := pm.graph.GetPodInfo(pm.cfgPointer, addr)
		if err != nil {
			return nil, err
		}
		out = append(out, PodInfo{Address: addr, Name: name, Depth: depth})
	}
	return out, nil
}

// ListPodSubjects returns every user-data subject recorded in a pod.
func (pm *PodManager) ListPodSubjects(pod string) ([]string, error) {
	return pm.graph.GetPodSubjects(pod)
}

// ExportPod writes a pod's current combined TriG document under the data
// directory's downloads folder and returns the path written.
func (pm *PodManager) ExportPod(pod string) (string, error) {
	trig, err := pm.graph.PodTriG(pod)
	if err != nil {
		return "", err
	}
	return pm.data.ExportPod(pod, trig)
}

// GetUpdateList returns the pending upload/removal queue.
func (pm *PodManager) GetUpdateList() (*datastore.UpdateList, error) {
	return pm.data.GetUpdateList()
}
