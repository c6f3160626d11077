// Package processor runs the OCR pipeline over single files and batches,
// skipping files whose output already exists unless forced.
package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/pdf-ocr/internal/common"
	"github.com/Veraticus/pdf-ocr/internal/model"
	"github.com/Veraticus/pdf-ocr/internal/ocr"
)

// ErrOutputIsInput is reported when the output path resolves to the input
// file, which would overwrite the original.
var ErrOutputIsInput = errors.New("output path is the input file")

// Options configures a Processor.
type Options struct {
	// Suffix is inserted into output file names before the extension.
	Suffix string
	// OCR is passed to the engine on every run.
	OCR ocr.Options
	// Timeout bounds a single OCR run. Zero means no limit.
	Timeout time.Duration
	// Workers is the number of files processed concurrently. Values
	// below two process files strictly in order.
	Workers int
	// Force reprocesses files whose output already exists.
	Force bool
}

// DefaultOptions returns sequential, non-forced processing with the
// default suffix and OCR options.
func DefaultOptions() Options {
	return Options{
		Suffix:  DefaultSuffix,
		OCR:     ocr.DefaultOptions(),
		Workers: 1,
	}
}

// Validate checks the options.
func (o Options) Validate() error {
	if o.Suffix == "" {
		return fmt.Errorf("suffix must not be empty: output would overwrite the input file")
	}
	if strings.ContainsAny(o.Suffix, `/\`) {
		return fmt.Errorf("suffix %q must not contain path separators", o.Suffix)
	}
	if o.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", o.Timeout)
	}
	if o.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", o.Workers)
	}
	return nil
}

// Processor applies an OCR engine to files.
type Processor struct {
	engine ocr.Engine
	opts   Options
}

// New creates a processor that runs engine with opts.
func New(engine ocr.Engine, opts Options) *Processor {
	return &Processor{
		engine: engine,
		opts:   opts,
	}
}

// OutputPath returns where the processor writes the OCR'd copy of input.
func (p *Processor) OutputPath(input string) string {
	return OutputPath(input, p.opts.Suffix)
}

// ProcessFile OCRs a single file. An existing output file is left alone
// unless Force is set. The input file is never modified, and a failed run
// leaves no output behind. Failures are reported in the result, never
// returned; a run cut short by cancelling ctx fails with
// model.FailureInterrupted.
func (p *Processor) ProcessFile(ctx context.Context, input string) model.ProcessResult {
	return p.processTo(ctx, input, p.OutputPath(input))
}

func (p *Processor) processTo(ctx context.Context, input, output string) model.ProcessResult {
	if samePath(input, output) {
		return model.Failed(input, model.FailureOutputPath, fmt.Errorf("%w: %s", ErrOutputIsInput, output))
	}

	if !p.opts.Force && exists(output) {
		slog.Debug("Output exists, skipping", "file", input, "output", output)
		return model.Skipped(input, output)
	}

	runCtx := ctx
	if p.opts.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, p.opts.Timeout)
		defer cancel()
	}

	// An existing output always means a finished run: the engine writes a
	// temporary file that is renamed into place only on success.
	tmp, err := tempOutput(output)
	if err != nil {
		return model.Failed(input, model.FailureOutputPath, err)
	}
	defer removeIfExists(tmp)

	start := time.Now()
	if err := p.engine.Run(runCtx, input, tmp, p.opts.OCR); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			slog.Warn("OCR interrupted", "file", input, "error", err)
			return model.Failed(input, model.FailureInterrupted, ctxErr)
		}
		common.LogError(err, "OCR failed", common.Fields{"file": input, "output": output})
		return model.Failed(input, model.FailureOCRPipeline, err)
	}

	if err := os.Rename(tmp, output); err != nil {
		return model.Failed(input, model.FailureOutputPath, fmt.Errorf("failed to move OCR output into place: %w", err))
	}

	common.LogDebug("OCR complete", common.Fields{
		"file":     input,
		"output":   output,
		"duration": time.Since(start).Round(time.Millisecond),
	})
	return model.Processed(input, output)
}

// tempOutput reserves a hidden file in output's directory for the engine
// to write to.
func tempOutput(output string) (string, error) {
	f, err := os.CreateTemp(filepath.Dir(output), "."+filepath.Base(output)+".*.part")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary output: %w", err)
	}
	name := f.Name()
	if err := f.Close(); err != nil {
		removeIfExists(name)
		return "", fmt.Errorf("failed to create temporary output: %w", err)
	}
	return name, nil
}

func removeIfExists(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("Failed to remove temporary output", "path", path, "error", err)
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func samePath(a, b string) bool {
	if filepath.Clean(a) == filepath.Clean(b) {
		return true
	}
	ia, errA := os.Stat(a)
	ib, errB := os.Stat(b)
	return errA == nil && errB == nil && os.SameFile(ia, ib)
}
