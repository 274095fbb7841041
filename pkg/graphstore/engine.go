package graphstore

import "sync"

// Engine is the RDF quadstore query/mutation collaborator GraphStore
// drives. It is an out-of-scope external dependency per design: a real
// deployment might swap in an actual SPARQL engine; memEngine below is the
// in-process default, sufficient for every query shape PodManager needs.
type Engine interface {
	Add(q Quad) error
	Remove(q Quad) error
	RemoveGraph(graph string) error
	RemoveSubject(graph, subject string) error
	Find(p Pattern) ([]Quad, error)
	Graphs() ([]string, error)
}

// memEngine is a plain in-memory Engine: a flat slice of quads, scanned
// linearly. It favors simplicity and correctness over the indexing a real
// SPARQL engine would apply; the graph sizes PodManager deals with
// (single-user pod metadata) make this adequate.
type memEngine struct {
	mu    sync.RWMutex
	quads []Quad
}

func newMemEngine() *memEngine {
	return &memEngine{}
}

func (e *memEngine) Add(q Quad) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, existing := range e.quads {
		if existing == q {
			return nil
		}
	}
	e.quads = append(e.quads, q)
	return nil
}

func (e *memEngine) Remove(q Quad) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := e.quads[:0:0]
	for _, existing := range e.quads {
		if existing != q {
			out = append(out, existing)
		}
	}
	e.quads = out
	return nil
}

func (e *memEngine) RemoveGraph(graph string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := e.quads[:0:0]
	for _, existing := range e.quads {
		if existing.Graph != graph {
			out = append(out, existing)
		}
	}
	e.quads = out
	return nil
}

func (e *memEngine) RemoveSubject(graph, subject string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := e.quads[:0:0]
	for _, existing := range e.quads {
		if existing.Graph == graph && existing.Subject == subject {
			continue
		}
		out = append(out, existing)
	}
	e.quads = out
	return nil
}

func (e *memEngine) Find(p Pattern) ([]Quad, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	var out []Quad
	for _, q := range e.quads {
		if p.matches(q) {
			out = append(out, q)
		}
	}
	return out, nil
}

func (e *memEngine) Graphs() ([]string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	seen := make(map[string]bool)
	var out []string
	for _, q := range e.quads {
		if !seen[q.Graph] {
			seen[q.Graph] = true
			out = append(out, q.Graph)
		}
	}
	return out, nil
}
