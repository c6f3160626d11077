package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/Veraticus/pdf-ocr/internal/analyzer"
	"github.com/Veraticus/pdf-ocr/internal/model"
)

// Printer writes the human-readable run summary.
type Printer struct {
	writer io.Writer
}

// NewPrinter creates a printer writing to w, or stdout when w is nil.
func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	return &Printer{writer: w}
}

// Scanning announces the target.
func (p *Printer) Scanning(target string) {
	p.println(FormatTitle("Scanning: " + target))
	p.println("")
}

// Found reports the number of PDFs discovered.
func (p *Printer) Found(n int) {
	if n == 0 {
		p.println(FormatInfo("No PDF files found."))
		return
	}
	p.printf("Found %d PDF(s). Analyzing...\n", n)
}

// Analysis prints the classification counts and any unreadable files.
func (p *Printer) Analysis(part analyzer.Partition) {
	var b strings.Builder
	fmt.Fprintf(&b, "  - Already have OCR: %d\n", len(part.HasText))
	fmt.Fprintf(&b, "  - Need OCR:         %d", len(part.NeedsOCR))

	p.println("")
	p.println(BoldStyle.Render("Analysis complete:"))
	p.println(b.String())

	if len(part.Unreadable) > 0 {
		p.println("")
		p.println(FormatWarning(fmt.Sprintf("%d PDF(s) could not be read and were left alone:", len(part.Unreadable))))
		for _, v := range part.Unreadable {
			p.printf("  %s\n", v.Path)
			p.printf("    %s\n", SubtleStyle.Render(v.Err.Error()))
		}
	}

	if len(part.NeedsOCR) == 0 {
		p.println("")
		p.println(FormatSuccess("No PDFs need OCR processing."))
	}
}

// DryRun lists the files that would be processed with their outputs.
func (p *Printer) DryRun(paths []string, outputFor func(string) string) {
	p.println("")
	p.println(WarningStyle.Render("[DRY RUN]") + " Files that would be processed:")
	for _, path := range paths {
		output := outputFor(path)
		marker := ""
		if _, err := os.Stat(output); err == nil {
			marker = SubtleStyle.Render(" (output exists)")
		}
		p.printf("  %s%s\n", path, marker)
		p.printf("    %s %s\n", ArrowIcon, output)
	}
}

// Processing announces the batch.
func (p *Printer) Processing(n int) {
	p.println("")
	p.printf("Processing %d PDF(s)...\n", n)
}

// Complete prints the batch counts and the failed files.
func (p *Printer) Complete(batch *model.BatchResult) {
	var b strings.Builder
	fmt.Fprintf(&b, "  - Processed: %d\n", batch.Processed)
	fmt.Fprintf(&b, "  - Skipped (already existed): %d\n", batch.Skipped)
	fmt.Fprintf(&b, "  - Failed: %d", batch.Failed)

	title := SuccessIcon + " Complete!"
	if !batch.OK() {
		title = ErrorIcon + " Complete with failures!"
	}
	p.println("")
	p.println(RenderBox(title, b.String()))

	failures := batch.Failures()
	if len(failures) == 0 {
		return
	}
	p.println("")
	p.println(ErrorStyle.Render("Failed files:"))
	for _, r := range failures {
		p.printf("  %s\n", r.InputPath)
		p.printf("    Error: %s\n", r.Error)
	}
}

// Interrupted reports how far a canceled batch got.
func (p *Printer) Interrupted(batch *model.BatchResult, total int) {
	done := 0
	if batch != nil {
		done = batch.Total()
	}
	p.println("")
	p.println(FormatWarning(fmt.Sprintf("Stopped after %d of %d PDF(s).", done, total)))
}

// ReportWritten notes where the report went.
func (p *Printer) ReportWritten(path string) {
	p.println(FormatInfo(ChartIcon + " Report written to " + path))
}

func (p *Printer) printf(format string, args ...any) {
	if _, err := fmt.Fprintf(p.writer, format, args...); err != nil {
		slog.Warn("Failed to write output", "error", err)
	}
}

func (p *Printer) println(s string) {
	if _, err := fmt.Fprintln(p.writer, s); err != nil {
		slog.Warn("Failed to write output", "error", err)
	}
}
