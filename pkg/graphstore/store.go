package graphstore

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"go.etcd.io/bbolt"
)

var graphsBucket = []byte("graphs")

var hexAddressPattern = regexp.MustCompile(`^[0-9a-fA-F]{96}$`)

// GraphStore is the named-graph quad store: an in-memory Engine for query
// evaluation, backed by a bbolt database holding each named graph's
// canonical TriG-like serialization so it survives restarts.
type GraphStore struct {
	mu     sync.Mutex
	db     *bbolt.DB
	engine Engine
}

// Open opens (creating if necessary) the bbolt-backed graph database at
// path and rebuilds the in-memory engine from every persisted graph.
func Open(path string) (*GraphStore, error) {
	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("graphstore: open db: %w", err)
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(graphsBucket)
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("graphstore: create bucket: %w", err)
	}

	gs := &GraphStore{db: db, engine: newMemEngine()}
	if err := gs.loadAll(); err != nil {
		db.Close()
		return nil, err
	}
	return gs, nil
}

// Close closes the underlying database.
func (gs *GraphStore) Close() error {
	return gs.db.Close()
}

func (gs *GraphStore) loadAll() error {
	return gs.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(graphsBucket)
		return b.ForEach(func(k, v []byte) error {
			graph := string(k)
			quads, err := DecodeTriG(v, graph)
			if err != nil {
				return fmt.Errorf("graphstore: decode graph %s: %w", graph, err)
			}
			for _, q := range quads {
				if err := gs.engine.Add(q); err != nil {
					return err
				}
			}
			return nil
		})
	})
}

// persistGraph re-serializes every quad currently in graph and writes it
// to bbolt, replacing whatever was stored before. An empty graph is
// removed from the bucket entirely.
func (gs *GraphStore) persistGraph(graph string) ([]byte, error) {
	quads, err := gs.engine.Find(Pattern{Graph: graph})
	if err != nil {
		return nil, err
	}
	trig := EncodeTriG(quads)
	err = gs.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(graphsBucket)
		if len(quads) == 0 {
			return b.Delete([]byte(graph))
		}
		return b.Put([]byte(graph), trig)
	})
	if err != nil {
		return nil, fmt.Errorf("graphstore: persist graph %s: %w", graph, err)
	}
	return trig, nil
}

// graphTriG returns the current TriG serialization of graph without
// touching bbolt.
func (gs *GraphStore) graphTriG(graph string) ([]byte, error) {
	quads, err := gs.engine.Find(Pattern{Graph: graph})
	if err != nil {
		return nil, err
	}
	return EncodeTriG(quads), nil
}

// PodTriG returns the current TriG serialization of a pod's named graph,
// used by ExportPod to write a pod's combined document to disk.
func (gs *GraphStore) PodTriG(pod string) ([]byte, error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return gs.graphTriG(PodIRI(pod))
}

// CheckPodExists normalizes addr (lowercase, trimmed) and confirms a named
// graph exists for it.
func (gs *GraphStore) CheckPodExists(addr string) (string, error) {
	normalized := normalizeAddress(addr)
	if !hexAddressPattern.MatchString(normalized) {
		return "", ErrInvalidAddress
	}
	quads, err := gs.engine.Find(Pattern{Graph: PodIRI(normalized)})
	if err != nil {
		return "", err
	}
	if len(quads) == 0 {
		return "", ErrPodNotFound
	}
	return normalized, nil
}

func normalizeAddress(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}
