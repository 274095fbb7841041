// Package podmanager is the orchestrator: it owns chunking pod payloads
// into scratchpads, fork resolution, the upload and refresh state
// machines, the breadth-first pod-reference crawl, and the search façade.
// It drives pkg/keystore, pkg/datastore and pkg/graphstore synchronously,
// and fans out concurrent pkg/network.Client calls via errgroup.Group,
// except for the best-effort fetch of a pod's additional scratchpads,
// which uses a sync.WaitGroup.
package podmanager
