package processor

import (
	"context"
	"fmt"

	"github.com/Veraticus/pdf-ocr/internal/common"
	"github.com/Veraticus/pdf-ocr/internal/model"
	"golang.org/x/sync/errgroup"
)

// ProgressObserver is told about each file before it is processed.
type ProgressObserver interface {
	// OnProgress receives the 1-based index of the file, the batch size
	// and the file's path. Returning an error aborts the batch.
	OnProgress(index, total int, path string) error
}

// ProgressFunc adapts a function to the ProgressObserver interface.
type ProgressFunc func(index, total int, path string) error

// OnProgress calls f.
func (f ProgressFunc) OnProgress(index, total int, path string) error {
	return f(index, total, path)
}

// ProcessBatch processes paths, each exactly once, and returns the
// outcomes in input order. observer may be nil. It is always called from
// the calling goroutine, in submission order, before the file starts.
//
// A failing file never stops the batch. An observer error or a canceled
// context does: the returned error wraps common.ErrCallback or
// common.ErrInterrupted, and the returned result holds the files that
// were completed. Files whose OCR run was cut short by the cancellation
// are left out of it.
func (p *Processor) ProcessBatch(ctx context.Context, paths []string, observer ProgressObserver) (*model.BatchResult, error) {
	if p.opts.Workers > 1 && len(paths) > 1 {
		return p.processParallel(ctx, paths, observer)
	}
	return p.processSequential(ctx, paths, observer)
}

func (p *Processor) processSequential(ctx context.Context, paths []string, observer ProgressObserver) (*model.BatchResult, error) {
	batch := model.NewBatchResult(len(paths))
	for i, path := range paths {
		if err := p.beforeFile(ctx, observer, i, len(paths), path); err != nil {
			return batch, err
		}
		result := p.ProcessFile(ctx, path)
		if result.Kind == model.FailureInterrupted {
			return batch, interruptedAt(ctx, path)
		}
		batch.Add(result)
	}
	return batch, nil
}

// processParallel runs up to Workers files at once. Results are stored by
// index, so their order matches paths regardless of completion order.
func (p *Processor) processParallel(ctx context.Context, paths []string, observer ProgressObserver) (*model.BatchResult, error) {
	results := make([]model.ProcessResult, len(paths))

	var g errgroup.Group
	g.SetLimit(p.opts.Workers)

	started := 0
	var stopErr error
	for i, path := range paths {
		if err := p.beforeFile(ctx, observer, i, len(paths), path); err != nil {
			stopErr = err
			break
		}
		i, path := i, path
		g.Go(func() error {
			results[i] = p.ProcessFile(ctx, path)
			return nil
		})
		started++
	}
	_ = g.Wait()

	batch := model.NewBatchResult(started)
	for _, r := range results[:started] {
		if r.Kind == model.FailureInterrupted {
			if stopErr == nil {
				stopErr = interruptedAt(ctx, r.InputPath)
			}
			continue
		}
		batch.Add(r)
	}
	return batch, stopErr
}

func (p *Processor) beforeFile(ctx context.Context, observer ProgressObserver, i, total int, path string) error {
	if ctx.Err() != nil {
		return interruptedAt(ctx, path)
	}
	if observer == nil {
		return nil
	}
	if err := observer.OnProgress(i+1, total, path); err != nil {
		return fmt.Errorf("%w: %w", common.ErrCallback, err)
	}
	return nil
}

func interruptedAt(ctx context.Context, path string) error {
	return fmt.Errorf("%w: batch stopped at %s: %w", common.ErrInterrupted, path, context.Cause(ctx))
}
