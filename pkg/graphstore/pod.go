package graphstore

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// AddPodEntry creates fresh graphs for a brand-new pod and its primary
// scratchpad entry, records the pod's name, modified date and HasIndex(0)
// for sp, and catalogues both addresses in the configuration graph. It
// returns the serialized TriG for the pod graph and the configuration
// graph.
func (gs *GraphStore) AddPodEntry(name, pod, sp, cfgPod, cfgSp string, keyCount uint64) (podTriG, cfgTriG []byte, err error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	podIRI := PodIRI(pod)
	podSubject := SubjectIRI(pod)
	spSubject := SubjectIRI(sp)
	now := time.Now().UTC().Format(time.RFC3339)

	for _, q := range []Quad{
		{Subject: podSubject, Predicate: Name, Object: Literal(name), Graph: podIRI},
		{Subject: podSubject, Predicate: ModifiedDate, Object: Literal(now), Graph: podIRI},
		{Subject: spSubject, Predicate: HasIndex, Object: Literal("0"), Graph: podIRI},
	} {
		if err := gs.engine.Add(q); err != nil {
			return nil, nil, err
		}
	}

	cfgIRI := PodIRI(cfgPod)
	for _, q := range []Quad{
		{Subject: podSubject, Predicate: AddrType, Object: Literal(AddrTypePointer), Graph: cfgIRI},
		{Subject: spSubject, Predicate: AddrType, Object: Literal(AddrTypeScratchpad), Graph: cfgIRI},
		{Subject: podSubject, Predicate: Name, Object: Literal(name), Graph: cfgIRI},
		{Subject: podSubject, Predicate: HasDepth, Object: Literal("0"), Graph: cfgIRI},
	} {
		if err := gs.engine.Add(q); err != nil {
			return nil, nil, err
		}
	}
	if err := gs.setCount(cfgIRI, SubjectIRI(cfgSp), keyCount); err != nil {
		return nil, nil, err
	}

	podTriG, err = gs.persistGraph(podIRI)
	if err != nil {
		return nil, nil, err
	}
	cfgTriG, err = gs.persistGraph(cfgIRI)
	if err != nil {
		return nil, nil, err
	}
	return podTriG, cfgTriG, nil
}

// SetConfigKeyCount records the configuration pod's running key count
// (how many derivation indices have been consumed).
func (gs *GraphStore) SetConfigKeyCount(cfg, cfgScratchpad string, keyCount uint64) ([]byte, error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	cfgIRI := PodIRI(cfg)
	if err := gs.setCount(cfgIRI, SubjectIRI(cfgScratchpad), keyCount); err != nil {
		return nil, err
	}
	return gs.persistGraph(cfgIRI)
}

// GetConfigKeyCount returns the configuration pod's recorded running key
// count, how many derivation indices have been consumed so far.
func (gs *GraphStore) GetConfigKeyCount(cfg, cfgScratchpad string) (uint64, error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	quads, err := gs.engine.Find(Pattern{Graph: PodIRI(cfg), Subject: SubjectIRI(cfgScratchpad), Predicate: Count})
	if err != nil {
		return 0, err
	}
	var best uint64
	for _, q := range quads {
		if v, err := strconv.ParseUint(q.Object.Value, 10, 64); err == nil && v > best {
			best = v
		}
	}
	return best, nil
}

func (gs *GraphStore) setCount(cfgGraph, cfgSubject string, keyCount uint64) error {
	existing, err := gs.engine.Find(Pattern{Graph: cfgGraph, Subject: cfgSubject, Predicate: Count})
	if err != nil {
		return err
	}
	for _, q := range existing {
		if err := gs.engine.Remove(q); err != nil {
			return err
		}
	}
	return gs.engine.Add(Quad{
		Subject:   cfgSubject,
		Predicate: Count,
		Object:    Literal(strconv.FormatUint(keyCount, 10)),
		Graph:     cfgGraph,
	})
}

// AppendPodScratchpad records a newly allocated scratchpad's HasIndex and
// a fresh ModifiedDate quad in pod's graph, and returns the updated TriG.
func (gs *GraphStore) AppendPodScratchpad(pod, sp string, index int) ([]byte, error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	podIRI := PodIRI(pod)
	podSubject := SubjectIRI(pod)
	spSubject := SubjectIRI(sp)
	now := time.Now().UTC().Format(time.RFC3339)

	existingDate, err := gs.engine.Find(Pattern{Graph: podIRI, Subject: podSubject, Predicate: ModifiedDate})
	if err != nil {
		return nil, err
	}
	for _, q := range existingDate {
		if err := gs.engine.Remove(q); err != nil {
			return nil, err
		}
	}
	if err := gs.engine.Add(Quad{Subject: podSubject, Predicate: ModifiedDate, Object: Literal(now), Graph: podIRI}); err != nil {
		return nil, err
	}
	if err := gs.engine.Add(Quad{
		Subject: spSubject, Predicate: HasIndex, Object: Literal(strconv.Itoa(index)), Graph: podIRI,
	}); err != nil {
		return nil, err
	}
	return gs.persistGraph(podIRI)
}

// RemovePodScratchpadEntry drops a scratchpad's HasIndex quad from pod's
// graph (used when a pod shrinks and the scratchpad is retired).
func (gs *GraphStore) RemovePodScratchpadEntry(pod, sp string) ([]byte, error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	podIRI := PodIRI(pod)
	spSubject := SubjectIRI(sp)
	existing, err := gs.engine.Find(Pattern{Graph: podIRI, Subject: spSubject, Predicate: HasIndex})
	if err != nil {
		return nil, err
	}
	for _, q := range existing {
		if err := gs.engine.Remove(q); err != nil {
			return nil, err
		}
	}
	return gs.persistGraph(podIRI)
}

// RemovePodEntry drops the named graph for pod and records pod + every
// scratchpad address in sps as free in the configuration graph, returning
// the configuration graph's TriG.
func (gs *GraphStore) RemovePodEntry(pod string, sps []string, cfg string) ([]byte, error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	if err := gs.engine.RemoveGraph(PodIRI(pod)); err != nil {
		return nil, err
	}

	cfgIRI := PodIRI(cfg)
	podSubject := SubjectIRI(pod)
	if err := gs.retagAddrType(cfgIRI, podSubject, AddrTypeFreePointer); err != nil {
		return nil, err
	}
	if err := gs.engine.RemoveSubject(cfgIRI, podSubject); err != nil {
		return nil, err
	}
	if err := gs.engine.Add(Quad{Subject: podSubject, Predicate: AddrType, Object: Literal(AddrTypeFreePointer), Graph: cfgIRI}); err != nil {
		return nil, err
	}
	for _, sp := range sps {
		spSubject := SubjectIRI(sp)
		if err := gs.retagAddrType(cfgIRI, spSubject, AddrTypeFreeScratchpad); err != nil {
			return nil, err
		}
	}

	return gs.persistGraph(cfgIRI)
}

func (gs *GraphStore) retagAddrType(cfgGraph, subject, newType string) error {
	existing, err := gs.engine.Find(Pattern{Graph: cfgGraph, Subject: subject, Predicate: AddrType})
	if err != nil {
		return err
	}
	for _, q := range existing {
		if err := gs.engine.Remove(q); err != nil {
			return err
		}
	}
	return gs.engine.Add(Quad{Subject: subject, Predicate: AddrType, Object: Literal(newType), Graph: cfgGraph})
}

// RenamePodEntry overwrites the name quad in pod's own graph.
func (gs *GraphStore) RenamePodEntry(pod, newName string) ([]byte, error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	podIRI := PodIRI(pod)
	podSubject := SubjectIRI(pod)
	existing, err := gs.engine.Find(Pattern{Graph: podIRI, Subject: podSubject, Predicate: Name})
	if err != nil {
		return nil, err
	}
	for _, q := range existing {
		if err := gs.engine.Remove(q); err != nil {
			return nil, err
		}
	}
	if err := gs.engine.Add(Quad{Subject: podSubject, Predicate: Name, Object: Literal(newName), Graph: podIRI}); err != nil {
		return nil, err
	}
	return gs.persistGraph(podIRI)
}

// PodRefEntry adds or removes a POD_REF quad from pod to ref in pod's
// graph, and when isLocal is true, records ref's addr_type as a pointer in
// the configuration graph.
func (gs *GraphStore) PodRefEntry(pod, ref, cfg string, add, isLocal bool) ([]byte, error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	podIRI := PodIRI(pod)
	podSubject := SubjectIRI(pod)
	refIRI := SubjectIRI(ref)
	q := Quad{Subject: podSubject, Predicate: PodRef, Object: IRI(refIRI), Graph: podIRI}

	if add {
		if err := gs.engine.Add(q); err != nil {
			return nil, err
		}
		if isLocal {
			if err := gs.retagAddrType(PodIRI(cfg), SubjectIRI(ref), AddrTypePointer); err != nil {
				return nil, err
			}
		}
	} else {
		if err := gs.engine.Remove(q); err != nil {
			return nil, err
		}
	}

	return gs.persistGraph(podIRI)
}

// PutSubjectData replaces all quads for subject in pod's graph with the
// quads flattened from jsonLD. An empty jsonLD deletes the subject.
func (gs *GraphStore) PutSubjectData(pod, subject, cfg string, jsonLD []byte) (podTriG, cfgTriG []byte, err error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	podIRI := PodIRI(pod)
	subjectIRI := SubjectIRI(subject)
	if err := gs.engine.RemoveSubject(podIRI, subjectIRI); err != nil {
		return nil, nil, err
	}

	quads, err := FlattenJSONLD(jsonLD, subjectIRI, podIRI)
	if err != nil {
		return nil, nil, err
	}
	for _, q := range quads {
		if err := gs.engine.Add(q); err != nil {
			return nil, nil, err
		}
	}

	podTriG, err = gs.persistGraph(podIRI)
	if err != nil {
		return nil, nil, err
	}
	cfgTriG, err = gs.graphTriG(PodIRI(cfg))
	if err != nil {
		return nil, nil, err
	}
	return podTriG, cfgTriG, nil
}

// GetPodScratchpads returns a pod's scratchpad addresses ordered by
// HasIndex ascending.
func (gs *GraphStore) GetPodScratchpads(pod string) ([]string, error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	quads, err := gs.engine.Find(Pattern{Graph: PodIRI(pod), Predicate: HasIndex})
	if err != nil {
		return nil, err
	}
	return orderByIndex(quads), nil
}

// GetPodScratchpadsFromString parses an ad-hoc TriG blob and returns the
// scratchpad addresses it names, ordered by HasIndex ascending. Used
// during refresh before the data has been committed to the store.
func GetPodScratchpadsFromString(trig []byte) ([]string, error) {
	quads, err := DecodeTriG(trig, "")
	if err != nil {
		return nil, err
	}
	var hasIndex []Quad
	for _, q := range quads {
		if q.Predicate == HasIndex {
			hasIndex = append(hasIndex, q)
		}
	}
	return orderByIndex(hasIndex), nil
}

func orderByIndex(quads []Quad) []string {
	sort.SliceStable(quads, func(i, j int) bool {
		vi, _ := strconv.Atoi(quads[i].Object.Value)
		vj, _ := strconv.Atoi(quads[j].Object.Value)
		return vi < vj
	})
	out := make([]string, 0, len(quads))
	for _, q := range quads {
		out = append(out, stripIRI(q.Subject))
	}
	return out
}

func stripIRI(iri string) string {
	return strings.TrimPrefix(iri, "ant://")
}

// GetPodSubjects returns every user-data subject recorded in a pod's
// graph, excluding the pod's own bookkeeping subject and scratchpad
// HasIndex subjects.
func (gs *GraphStore) GetPodSubjects(pod string) ([]string, error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	podIRI := PodIRI(pod)
	quads, err := gs.engine.Find(Pattern{Graph: podIRI})
	if err != nil {
		return nil, err
	}
	podSubject := SubjectIRI(pod)
	scratchpadSubjects := make(map[string]bool)
	for _, q := range quads {
		if q.Predicate == HasIndex {
			scratchpadSubjects[q.Subject] = true
		}
	}
	seen := make(map[string]bool)
	var out []string
	for _, q := range quads {
		if q.Subject == podSubject || scratchpadSubjects[q.Subject] {
			continue
		}
		if !seen[q.Subject] {
			seen[q.Subject] = true
			out = append(out, stripIRI(q.Subject))
		}
	}
	sort.Strings(out)
	return out, nil
}

// GetSubjectData returns every quad recorded about subject across every
// named graph.
func (gs *GraphStore) GetSubjectData(subject string) ([]Quad, error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return gs.engine.Find(Pattern{Subject: SubjectIRI(subject)})
}

// LoadPodIntoGraph clears pod's named graph and loads trig into it.
func (gs *GraphStore) LoadPodIntoGraph(pod string, trig []byte) error {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	podIRI := PodIRI(pod)
	if err := gs.engine.RemoveGraph(podIRI); err != nil {
		return err
	}
	quads, err := DecodeTriG(trig, podIRI)
	if err != nil {
		return err
	}
	for _, q := range quads {
		if err := gs.engine.Add(q); err != nil {
			return err
		}
	}
	_, err = gs.persistGraph(podIRI)
	return err
}
