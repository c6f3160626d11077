package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"time"
)

// DefaultBinary is the name of the ocrmypdf executable.
const DefaultBinary = "ocrmypdf"

// waitDelay bounds how long Run waits for output pipes after the process
// was killed by context cancellation.
const waitDelay = 5 * time.Second

// OCRmyPDF runs the ocrmypdf command line tool.
type OCRmyPDF struct {
	// Stderr, when set, also receives ocrmypdf's diagnostic output.
	Stderr io.Writer
	// Path is the executable to run. Empty means DefaultBinary from PATH.
	Path string
	// Args are extra arguments inserted before the file names.
	Args []string
}

// NewOCRmyPDF creates an engine for the executable at path.
func NewOCRmyPDF(path string) *OCRmyPDF {
	return &OCRmyPDF{Path: path}
}

// Lookup resolves the executable, failing when it is not installed.
func (o *OCRmyPDF) Lookup() (string, error) {
	bin := o.binary()
	resolved, err := exec.LookPath(bin)
	if err != nil {
		return "", fmt.Errorf("ocrmypdf not found at %s: install it from https://ocrmypdf.readthedocs.io: %w", bin, err)
	}
	return resolved, nil
}

// BuildArgs returns the command line for a run.
func (o *OCRmyPDF) BuildArgs(input, output string, opts Options) []string {
	args := []string{"--language", opts.Language()}
	if opts.SkipText {
		args = append(args, "--skip-text")
	}
	if opts.Deskew {
		args = append(args, "--deskew")
	}
	args = append(args, o.Args...)
	return append(args, input, output)
}

// Run implements Engine.
func (o *OCRmyPDF) Run(ctx context.Context, input, output string, opts Options) error {
	args := o.BuildArgs(input, output, opts)
	cmd := exec.CommandContext(ctx, o.binary(), args...)
	cmd.WaitDelay = waitDelay

	var stderr bytes.Buffer
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr
	if o.Stderr != nil {
		cmd.Stderr = io.MultiWriter(&stderr, o.Stderr)
	}

	slog.Debug("Running ocrmypdf", "input", input, "output", output, "args", args)

	if err := cmd.Run(); err != nil {
		pipeErr := &PipelineError{
			Input:  input,
			Stderr: stderr.String(),
			Err:    err,
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			pipeErr.ExitCode = exitErr.ExitCode()
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			pipeErr.ExitCode = 0
			pipeErr.Err = ctxErr
		}
		return pipeErr
	}

	return nil
}

func (o *OCRmyPDF) binary() string {
	if o.Path == "" {
		return DefaultBinary
	}
	return o.Path
}
