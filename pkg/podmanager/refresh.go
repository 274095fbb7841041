package podmanager

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/colonylib/colony/pkg/datastore"
	"github.com/colonylib/colony/pkg/graphstore"
	"github.com/colonylib/colony/pkg/metrics"
	"github.com/colonylib/colony/pkg/network"
)

// fetchScratchpad fetches a single scratchpad version, resolving a
// concurrent-version fork by selecting the newest candidate.
func (pm *PodManager) fetchScratchpad(ctx context.Context, addr string) (network.Scratchpad, error) {
	sp, err := pm.net.ScratchpadGet(ctx, addr)
	var forkErr *network.ForkError
	if errors.As(err, &forkErr) {
		metrics.ForksResolvedTotal.Inc()
		return selectNewest(forkErr.Candidates), nil
	}
	return sp, err
}

// fetchPodChain downloads a pod's entire scratchpad chain starting from an
// already-fetched pointer, persists every chunk locally, loads the
// concatenated, de-stamped document into the graph, and records the
// pointer file and depth. This is the shared pipeline behind both
// RefreshCache and RefreshRef.
func (pm *PodManager) fetchPodChain(ctx context.Context, pod string, ptr network.Pointer, cfg string, depth uint64) error {
	primary, err := pm.fetchScratchpad(ctx, ptr.Target)
	if err != nil {
		return fmt.Errorf("podmanager: fetch primary scratchpad for %s: %w", pod, err)
	}
	if err := pm.data.WriteScratchpadFile(ptr.Target, primary.Bytes); err != nil {
		return err
	}

	addrs, err := graphstore.GetPodScratchpadsFromString(primary.Bytes)
	if err != nil {
		return fmt.Errorf("podmanager: parse scratchpad chain for %s: %w", pod, err)
	}

	var additional []string
	for _, a := range addrs {
		if a != ptr.Target {
			additional = append(additional, a)
		}
	}

	// Best-effort: an individual additional-scratchpad failure is logged
	// and that chunk is dropped, not a reason to abort the whole pod.
	fetched := make([][]byte, len(additional))
	var wg sync.WaitGroup
	for i, addr := range additional {
		i, addr := i, addr
		wg.Add(1)
		go func() {
			defer wg.Done()
			sp, err := pm.fetchScratchpad(ctx, addr)
			if err != nil {
				pm.log.Warn().Err(err).Str("scratchpad", addr).Str("pod", pod).Msg("fetch additional scratchpad failed, continuing best-effort")
				return
			}
			if err := pm.data.WriteScratchpadFile(addr, sp.Bytes); err != nil {
				pm.log.Warn().Err(err).Str("scratchpad", addr).Msg("persist fetched scratchpad failed")
				return
			}
			fetched[i] = sp.Bytes
		}()
	}
	wg.Wait()

	parts := [][]byte{stripTimestamp(primary.Bytes)}
	for _, b := range fetched {
		if b == nil {
			continue
		}
		parts = append(parts, stripTimestamp(b))
	}
	combined := bytes.Join(parts, []byte("\n"))

	if err := pm.graph.LoadPodIntoGraph(pod, combined); err != nil {
		return fmt.Errorf("podmanager: load %s into graph: %w", pod, err)
	}
	if err := pm.data.WritePointerFile(pod, ptr.Target, ptr.Counter); err != nil {
		return err
	}
	return pm.graph.UpdatePodDepth(pod, cfg, depth)
}

// RefreshCache rebuilds local state from the network's authoritative
// configuration pod: it re-fetches the configuration pointer chain,
// reconciles the local key bookkeeping against the configuration graph's
// address lists, prunes locally cached files the network now considers
// free (unless still queued for upload), and re-fetches every pod this
// key store owns.
func (pm *PodManager) RefreshCache(ctx context.Context) error {
	timer := metrics.NewTimer()
	defer timer.ObserveDurationVec(metrics.RefreshDuration, "cache")

	cfg := pm.cfgPointer
	cfgPtr, err := pm.net.PointerGet(ctx, cfg)
	if errors.Is(err, network.ErrRecordNotFound) {
		// Fresh user: nothing has ever been uploaded under this mnemonic.
		return nil
	}
	if err != nil {
		return fmt.Errorf("podmanager: fetch configuration pointer: %w", err)
	}
	if err := pm.fetchPodChain(ctx, cfg, cfgPtr, cfg, 0); err != nil {
		return err
	}

	pointers, err := pm.graph.GetPointers(cfg)
	if err != nil {
		return err
	}
	scratchpads, err := pm.graph.GetScratchpads(cfg)
	if err != nil {
		return err
	}
	freePointers, err := pm.graph.GetFreePointers(cfg)
	if err != nil {
		return err
	}
	freeScratchpads, err := pm.graph.GetFreeScratchpads(cfg)
	if err != nil {
		return err
	}
	badKeys, err := pm.graph.GetBadKeys(cfg)
	if err != nil {
		return err
	}
	keyCount, err := pm.graph.GetConfigKeyCount(cfg, pm.cfgScratchpad)
	if err != nil {
		return err
	}

	ul, err := pm.data.GetUpdateList()
	if err != nil {
		return err
	}
	queued := make(map[string]bool)
	for pod, sps := range ul.Pods {
		queued[pod] = true
		for _, sp := range sps {
			queued[sp] = true
		}
	}

	for _, addr := range freePointers {
		if !queued[addr] {
			if err := pm.data.DeletePointerFile(addr); err != nil {
				return err
			}
		}
	}
	for _, addr := range freeScratchpads {
		if !queued[addr] {
			if err := pm.data.DeleteScratchpadFile(addr); err != nil {
				return err
			}
		}
	}

	pm.keys.ClearKeys()
	pointerSet := toSet(pointers)
	scratchpadSet := toSet(scratchpads)
	freePointerSet := toSet(freePointers)
	freeScratchpadSet := toSet(freeScratchpads)
	badSet := toSet(badKeys)

	for i := uint64(0); i < keyCount; i++ {
		addr := pm.keys.GetAddressAtIndex(i)
		switch {
		case pointerSet[addr]:
			pm.keys.Restore(addr, i, "pointer")
		case scratchpadSet[addr]:
			pm.keys.Restore(addr, i, "scratchpad")
		case freePointerSet[addr]:
			pm.keys.Restore(addr, i, "free_pointer")
		case freeScratchpadSet[addr]:
			pm.keys.Restore(addr, i, "free_scratchpad")
		case badSet[addr]:
			pm.keys.Restore(addr, i, "bad")
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, pod := range pointers {
		if pod == cfg {
			continue
		}
		pod := pod
		g.Go(func() error {
			ptr, err := pm.net.PointerGet(gctx, pod)
			if errors.Is(err, network.ErrRecordNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			return pm.fetchPodChain(gctx, pod, ptr, cfg, 0)
		})
	}
	return g.Wait()
}

func toSet(list []string) map[string]bool {
	out := make(map[string]bool, len(list))
	for _, v := range list {
		out[v] = true
	}
	return out
}

type refCandidate struct {
	addr string
	ptr  network.Pointer
}

// RefreshRef crawls the reference graph breadth-first starting from every
// pod this key store owns, downloading any referenced pod that is either
// absent locally or whose remote counter has advanced past the locally
// recorded one. depth == 0 means crawl until a round discovers nothing
// new; depth > 0 bounds the number of hops from the owned frontier.
func (pm *PodManager) RefreshRef(ctx context.Context, depth int) error {
	timer := metrics.NewTimer()
	defer timer.ObserveDurationVec(metrics.RefreshDuration, "ref")

	if err := pm.RefreshCache(ctx); err != nil {
		return fmt.Errorf("podmanager: refresh_ref: initial refresh_cache: %w", err)
	}

	cfg := pm.cfgPointer
	owned, err := pm.graph.GetPointers(cfg)
	if err != nil {
		return err
	}

	processed := make(map[string]bool)
	frontier := owned
	for _, p := range frontier {
		processed[p] = true
	}

	hop := 0
	for len(frontier) > 0 {
		if depth > 0 && hop >= depth {
			break
		}

		var candidates []string
		seen := make(map[string]bool)
		for _, pod := range frontier {
			refs, err := pm.graph.GetPodReferences(pod)
			if err != nil {
				return err
			}
			for _, r := range refs {
				if !processed[r] && !seen[r] {
					seen[r] = true
					candidates = append(candidates, r)
				}
			}
		}
		if len(candidates) == 0 {
			break
		}
		for _, c := range candidates {
			processed[c] = true
		}

		results := make([]*refCandidate, len(candidates))
		g, gctx := errgroup.WithContext(ctx)
		for i, addr := range candidates {
			i, addr := i, addr
			g.Go(func() error {
				p, err := pm.net.PointerGet(gctx, addr)
				if errors.Is(err, network.ErrRecordNotFound) {
					return nil
				}
				if err != nil {
					return err
				}
				results[i] = &refCandidate{addr: addr, ptr: p}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		var toDownload []refCandidate
		var nextFrontier []string
		for _, r := range results {
			if r == nil {
				continue
			}
			metrics.CrawlPodsVisitedTotal.Inc()
			if err := pm.graph.UpdatePodDepth(r.addr, cfg, uint64(hop+1)); err != nil {
				return err
			}
			nextFrontier = append(nextFrontier, r.addr)

			_, localCounter, err := pm.data.ReadPointerFile(r.addr)
			absent := errors.Is(err, datastore.ErrPointerNotFound)
			if absent || r.ptr.Counter > localCounter {
				toDownload = append(toDownload, *r)
			}
		}

		g2, gctx2 := errgroup.WithContext(ctx)
		for _, r := range toDownload {
			r := r
			g2.Go(func() error {
				return pm.fetchPodChain(gctx2, r.addr, r.ptr, cfg, uint64(hop+1))
			})
		}
		if err := g2.Wait(); err != nil {
			return err
		}

		frontier = nextFrontier
		hop++
	}
	return nil
}
