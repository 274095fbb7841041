// Package graphstore is the named-graph quad store PodManager drives: one
// named graph per pod (IRI ant://<pod_address>) plus a distinguished
// configuration graph cataloguing the user's keys, names, depths and
// references.
//
// No RDF or SPARQL library exists anywhere in the retrieved corpus, so
// query evaluation is defined behind the Engine interface and backed by a
// minimal in-memory default (engine.go). Persistence of each named graph's
// canonical TriG-like serialization is handled separately via bbolt
// (store.go), following the teacher's pkg/storage bucket pattern.
package graphstore
