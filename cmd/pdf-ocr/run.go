package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Veraticus/pdf-ocr/internal/analyzer"
	"github.com/Veraticus/pdf-ocr/internal/cli"
	"github.com/Veraticus/pdf-ocr/internal/common"
	"github.com/Veraticus/pdf-ocr/internal/config"
	"github.com/Veraticus/pdf-ocr/internal/ocr"
	"github.com/Veraticus/pdf-ocr/internal/processor"
	"github.com/Veraticus/pdf-ocr/internal/report"
	"github.com/spf13/cobra"
)

func (a *app) run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.v)
	if err != nil {
		return common.NewUserError("Invalid options", err)
	}

	target := args[0]
	isDir, err := checkTarget(target)
	if err != nil {
		return err
	}

	// Set up interrupt handling
	interruptHandler := cli.NewInterruptHandler(a.stderr)
	ctx, stop := interruptHandler.HandleInterrupts(cmd.Context(), cfg.DryRun)
	defer stop()

	rep := &report.Report{
		StartedAt: time.Now(),
		Target:    target,
		Suffix:    cfg.Suffix,
		Language:  ocr.DefaultOptions(cfg.Languages...).Language(),
		DryRun:    cfg.DryRun,
	}

	err = a.execute(ctx, cfg, target, isDir, rep)
	if writeErr := a.writeReport(cfg, rep); writeErr != nil {
		if err == nil {
			return writeErr
		}
		slog.Warn("Failed to write report", "error", writeErr)
	}
	return err
}

// checkTarget validates the positional argument and reports whether it is
// a directory.
func checkTarget(target string) (bool, error) {
	info, err := os.Stat(target)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, common.NewUserError(fmt.Sprintf("Path not found: %s", target), common.ErrInvalidTarget)
		}
		return false, common.NewUserError(fmt.Sprintf("Cannot access %s", target), fmt.Errorf("%w: %w", common.ErrInvalidTarget, err))
	}

	switch {
	case info.IsDir():
		return true, nil
	case !info.Mode().IsRegular():
		return false, common.NewUserError(fmt.Sprintf("Not a file or directory: %s", target), common.ErrInvalidTarget)
	case !analyzer.IsPDFName(target):
		return false, common.NewUserError(fmt.Sprintf("Not a PDF file: %s", target), fmt.Errorf("%w: %w", common.ErrInvalidTarget, common.ErrNotPDF))
	default:
		return false, nil
	}
}

func (a *app) execute(ctx context.Context, cfg *config.Config, target string, isDir bool, rep *report.Report) error {
	printer := cli.NewPrinter(a.stdout)
	printer.Scanning(target)

	paths := []string{target}
	if isDir {
		var err error
		paths, err = analyzer.Collect(ctx, target)
		if err != nil {
			return interrupted(common.NewUserError(fmt.Sprintf("Failed to scan %s", target), err))
		}
	}

	printer.Found(len(paths))
	if len(paths) == 0 {
		return nil
	}

	classifier, err := cfg.Classifier()
	if err != nil {
		return err
	}

	bar := cli.NewProgress(a.stderr, len(paths), "Analyzing", !cfg.NoProgress)
	part, err := classifier.Partition(ctx, paths, bar.AnalysisStep())
	if err != nil {
		return interrupted(err)
	}
	bar.Finish()

	printer.Analysis(part)
	rep.SetPartition(part)
	if len(part.NeedsOCR) == 0 {
		return nil
	}

	if cfg.DryRun {
		printer.DryRun(part.NeedsOCR, func(input string) string {
			return processor.OutputPath(input, cfg.Suffix)
		})
		return nil
	}

	engine, err := a.newEngine(cfg)
	if err != nil {
		return common.NewUserError("OCR engine unavailable", err)
	}
	proc := processor.New(engine, cfg.ProcessorOptions())

	printer.Processing(len(part.NeedsOCR))
	bar = cli.NewProgress(a.stderr, len(part.NeedsOCR), "OCR Processing", !cfg.NoProgress)
	batch, err := proc.ProcessBatch(ctx, part.NeedsOCR, bar)
	rep.Batch = batch
	if err != nil {
		if errors.Is(err, common.ErrInterrupted) {
			printer.Interrupted(batch, len(part.NeedsOCR))
		}
		return err
	}
	bar.Finish()

	printer.Complete(batch)
	if !batch.OK() {
		return fmt.Errorf("%w: %d of %d", common.ErrBatchFailed, batch.Failed, batch.Total())
	}
	return nil
}

func (a *app) writeReport(cfg *config.Config, rep *report.Report) error {
	if cfg.ReportPath == "" {
		return nil
	}
	rep.Duration = time.Since(rep.StartedAt)
	if err := rep.WriteFile(cfg.ReportPath); err != nil {
		return common.NewUserError("Failed to write report", err)
	}
	cli.NewPrinter(a.stdout).ReportWritten(cfg.ReportPath)
	return nil
}

// interrupted marks context cancellation so callers can match
// common.ErrInterrupted.
func interrupted(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", common.ErrInterrupted, err)
	}
	return err
}
