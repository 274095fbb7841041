package podmanager

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/colonylib/colony/pkg/metrics"
	"github.com/colonylib/colony/pkg/network"
)

func (pm *PodManager) paymentFromActiveWallet() network.Payment {
	_, secretHex, err := pm.keys.GetActiveWallet()
	if err != nil {
		return network.Payment{}
	}
	return network.Payment{Token: secretHex}
}

// UploadAll drains the update queue: every pending removal and every
// pending pod upload is dispatched concurrently with no staging barrier
// between the two groups, and the first error aborts the whole batch. On
// success the queue is cleared.
func (pm *PodManager) UploadAll(ctx context.Context) error {
	operationID := newOperationID()
	logger := pm.log.With().Str("operation_id", operationID).Str("op", "upload_all").Logger()

	ul, err := pm.data.GetUpdateList()
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	for _, addr := range ul.Remove.Pointers {
		addr := addr
		g.Go(func() error { return pm.removePointerOp(gctx, addr) })
	}
	for _, addr := range ul.Remove.Scratchpads {
		addr := addr
		g.Go(func() error { return pm.removeScratchpadOp(gctx, addr) })
	}
	for pod, sps := range ul.Pods {
		pod := pod
		sps := sps
		if len(sps) == 0 {
			continue
		}
		target := sps[0]
		g.Go(func() error { return pm.uploadPointerOp(gctx, pod, target) })
		for _, sp := range sps {
			sp := sp
			g.Go(func() error { return pm.uploadScratchpadOp(gctx, sp) })
		}
	}

	if err := g.Wait(); err != nil {
		metrics.UploadOperationsTotal.WithLabelValues("all", "error").Inc()
		logger.Error().Err(err).Msg("upload_all failed")
		return err
	}
	metrics.UploadOperationsTotal.WithLabelValues("all", "ok").Inc()
	logger.Info().Msg("upload_all succeeded")
	return pm.data.ClearUpdateList()
}

// UploadPod uploads a single pod's pointer and every scratchpad in its
// chain, applying the same create-or-update policy as UploadAll.
func (pm *PodManager) UploadPod(ctx context.Context, pod string) error {
	sps, err := pm.graph.GetPodScratchpads(pod)
	if err != nil {
		return err
	}
	if len(sps) == 0 {
		return ErrPodNotFound
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return pm.uploadPointerOp(gctx, pod, sps[0]) })
	for _, sp := range sps {
		sp := sp
		g.Go(func() error { return pm.uploadScratchpadOp(gctx, sp) })
	}
	return g.Wait()
}

func (pm *PodManager) removePointerOp(ctx context.Context, addr string) error {
	secretHex, err := pm.keys.GetPointerKey(addr)
	if err != nil {
		pm.log.Warn().Str("address", addr).Msg("remove pointer: key already retired, treating as done")
		return pm.data.DeletePointerFile(addr)
	}
	_, err = pm.net.PointerGet(ctx, addr)
	if errors.Is(err, network.ErrRecordNotFound) {
		return pm.data.DeletePointerFile(addr)
	}
	if err != nil {
		return err
	}
	if err := pm.net.PointerUpdate(ctx, secretHex, addr); err != nil {
		return err
	}
	return pm.data.DeletePointerFile(addr)
}

func (pm *PodManager) removeScratchpadOp(ctx context.Context, addr string) error {
	secretHex, err := pm.keys.GetScratchpadKey(addr)
	if err != nil {
		pm.log.Warn().Str("address", addr).Msg("remove scratchpad: key already retired, treating as done")
		return pm.data.DeleteScratchpadFile(addr)
	}
	_, err = pm.net.ScratchpadGet(ctx, addr)
	var forkErr *network.ForkError
	switch {
	case errors.Is(err, network.ErrRecordNotFound):
		return pm.data.DeleteScratchpadFile(addr)
	case errors.As(err, &forkErr), err == nil:
		if err := pm.net.ScratchpadUpdate(ctx, secretHex, []byte{}); err != nil {
			return err
		}
		return pm.data.DeleteScratchpadFile(addr)
	default:
		return err
	}
}

func (pm *PodManager) uploadPointerOp(ctx context.Context, pod, target string) error {
	secretHex, err := pm.keys.GetPointerKey(pod)
	if err != nil {
		pm.log.Warn().Str("address", pod).Msg("upload pointer: key not found, dropping from plan")
		return nil
	}

	_, err = pm.net.PointerGet(ctx, pod)
	switch {
	case err == nil:
		if err := pm.net.PointerUpdate(ctx, secretHex, target); err != nil {
			return fmt.Errorf("podmanager: update pointer %s: %w", pod, err)
		}
	case errors.Is(err, network.ErrRecordNotFound), errors.Is(err, network.ErrCannotUpdateNewPointer):
		if _, _, err := pm.net.PointerPut(ctx, secretHex, target, pm.paymentFromActiveWallet()); err != nil {
			return fmt.Errorf("podmanager: create pointer %s: %w", pod, err)
		}
	default:
		return err
	}

	counter := uint64(0)
	if _, c, err := pm.data.ReadPointerFile(pod); err == nil {
		counter = c + 1
	}
	return pm.data.WritePointerFile(pod, target, counter)
}

func (pm *PodManager) uploadScratchpadOp(ctx context.Context, sp string) error {
	secretHex, err := pm.keys.GetScratchpadKey(sp)
	if err != nil {
		pm.log.Warn().Str("address", sp).Msg("upload scratchpad: key not found, dropping from plan")
		return nil
	}
	data, err := pm.data.ReadScratchpadFile(sp)
	if err != nil {
		return err
	}

	_, err = pm.net.ScratchpadGet(ctx, sp)
	var forkErr *network.ForkError
	switch {
	case err == nil, errors.As(err, &forkErr):
		if err := pm.net.ScratchpadUpdate(ctx, secretHex, data); err != nil {
			return fmt.Errorf("podmanager: update scratchpad %s: %w", sp, err)
		}
	case errors.Is(err, network.ErrRecordNotFound), errors.Is(err, network.ErrCannotUpdateNewScratchpad):
		if _, _, err := pm.net.ScratchpadPut(ctx, secretHex, data, pm.paymentFromActiveWallet()); err != nil {
			return fmt.Errorf("podmanager: create scratchpad %s: %w", sp, err)
		}
	default:
		return err
	}
	return nil
}
