package graphstore

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// UpdatePodDepth applies the min-monotone update rule: the stored depth
// for pod in cfg's graph becomes min(stored_or_infinity, d).
func (gs *GraphStore) UpdatePodDepth(pod, cfg string, d uint64) error {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	cfgIRI := PodIRI(cfg)
	podSubject := SubjectIRI(pod)
	existing, err := gs.engine.Find(Pattern{Graph: cfgIRI, Subject: podSubject, Predicate: HasDepth})
	if err != nil {
		return err
	}

	current := uint64(math.MaxUint64)
	for _, q := range existing {
		if v, err := strconv.ParseUint(q.Object.Value, 10, 64); err == nil && v < current {
			current = v
		}
	}
	if d >= current {
		return nil
	}
	for _, q := range existing {
		if err := gs.engine.Remove(q); err != nil {
			return err
		}
	}
	if err := gs.engine.Add(Quad{
		Subject: podSubject, Predicate: HasDepth, Object: Literal(strconv.FormatUint(d, 10)), Graph: cfgIRI,
	}); err != nil {
		return err
	}
	_, err = gs.persistGraph(cfgIRI)
	return err
}

// GetPodsAtDepth returns every pod address recorded at exactly depth d in
// cfg's graph.
func (gs *GraphStore) GetPodsAtDepth(cfg string, d uint64) ([]string, error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	quads, err := gs.engine.Find(Pattern{
		Graph: PodIRI(cfg), Predicate: HasDepth, Object: strconv.FormatUint(d, 10),
	})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(quads))
	for _, q := range quads {
		out = append(out, stripIRI(q.Subject))
	}
	sort.Strings(out)
	return out, nil
}

// GetPodInfo returns pod's recorded name and depth from cfg's graph. A pod
// with no recorded depth (not yet reached by any refresh) reports depth 0.
func (gs *GraphStore) GetPodInfo(cfg, pod string) (name string, depth uint64, err error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	cfgIRI := PodIRI(cfg)
	podSubject := SubjectIRI(pod)

	nameQuads, err := gs.engine.Find(Pattern{Graph: cfgIRI, Subject: podSubject, Predicate: Name})
	if err != nil {
		return "", 0, err
	}
	if len(nameQuads) > 0 {
		name = nameQuads[0].Object.Value
	}

	depthQuads, err := gs.engine.Find(Pattern{Graph: cfgIRI, Subject: podSubject, Predicate: HasDepth})
	if err != nil {
		return "", 0, err
	}
	for _, q := range depthQuads {
		if v, err := strconv.ParseUint(q.Object.Value, 10, 64); err == nil {
			depth = v
			break
		}
	}
	return name, depth, nil
}

// GetPodReferences returns the pod addresses pod references, excluding
// vocabulary IRIs and pod itself.
func (gs *GraphStore) GetPodReferences(pod string) ([]string, error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	podIRI := PodIRI(pod)
	podSubject := SubjectIRI(pod)
	quads, err := gs.engine.Find(Pattern{Graph: podIRI, Subject: podSubject, Predicate: PodRef})
	if err != nil {
		return nil, err
	}
	var out []string
	for _, q := range quads {
		ref := stripIRI(q.Object.Value)
		if ref == pod || ref == "" || strings.HasPrefix(q.Object.Value, vocabBase) {
			continue
		}
		out = append(out, ref)
	}
	sort.Strings(out)
	return out, nil
}

func (gs *GraphStore) addrTypeAddresses(cfg, addrType string) ([]string, error) {
	quads, err := gs.engine.Find(Pattern{Graph: PodIRI(cfg), Predicate: AddrType, Object: addrType})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(quads))
	for _, q := range quads {
		out = append(out, stripIRI(q.Subject))
	}
	sort.Strings(out)
	return out, nil
}

// GetFreePointers returns every address the configuration graph records as
// a free (released) pointer.
func (gs *GraphStore) GetFreePointers(cfg string) ([]string, error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return gs.addrTypeAddresses(cfg, AddrTypeFreePointer)
}

// GetFreeScratchpads is GetFreePointers' scratchpad counterpart.
func (gs *GraphStore) GetFreeScratchpads(cfg string) ([]string, error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return gs.addrTypeAddresses(cfg, AddrTypeFreeScratchpad)
}

// GetPointers returns every address the configuration graph records as an
// active pointer.
func (gs *GraphStore) GetPointers(cfg string) ([]string, error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return gs.addrTypeAddresses(cfg, AddrTypePointer)
}

// GetScratchpads is GetPointers' scratchpad counterpart.
func (gs *GraphStore) GetScratchpads(cfg string) ([]string, error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return gs.addrTypeAddresses(cfg, AddrTypeScratchpad)
}

// GetBadKeys returns every address the configuration graph records as bad.
func (gs *GraphStore) GetBadKeys(cfg string) ([]string, error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return gs.addrTypeAddresses(cfg, AddrTypeBad)
}

// MarkBadKey retags an address as bad in the configuration graph.
func (gs *GraphStore) MarkBadKey(cfg, address string) error {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	if err := gs.retagAddrType(PodIRI(cfg), SubjectIRI(address), AddrTypeBad); err != nil {
		return err
	}
	_, err := gs.persistGraph(PodIRI(cfg))
	return err
}
