package testutil

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/Veraticus/pdf-ocr/internal/ocr"
	"github.com/Veraticus/pdf-ocr/internal/pdftext"
)

// FakeDocument is an in-memory pdftext.Document. Pages holds the
// character count of each page.
type FakeDocument struct {
	PageErr error
	Pages   []int
	closed  bool
}

// PageCount implements pdftext.Document.
func (d *FakeDocument) PageCount() int {
	return len(d.Pages)
}

// PageTextLen implements pdftext.Document.
func (d *FakeDocument) PageTextLen(page int) (int, error) {
	if d.PageErr != nil {
		return 0, d.PageErr
	}
	if page < 1 || page > len(d.Pages) {
		return 0, fmt.Errorf("page %d out of range", page)
	}
	return d.Pages[page-1], nil
}

// Close implements pdftext.Document.
func (d *FakeDocument) Close() error {
	d.closed = true
	return nil
}

// Closed reports whether Close was called.
func (d *FakeDocument) Closed() bool {
	return d.closed
}

// FakeOpener serves FakeDocuments by path. Unknown paths fail with
// pdftext.ErrUnreadablePDF.
type FakeOpener struct {
	Docs   map[string]*FakeDocument
	opened []string
	mu     sync.Mutex
}

// NewFakeOpener creates an opener with no documents.
func NewFakeOpener() *FakeOpener {
	return &FakeOpener{Docs: make(map[string]*FakeDocument)}
}

// With registers a document with the given per-page character counts.
func (o *FakeOpener) With(path string, pages ...int) *FakeOpener {
	o.Docs[path] = &FakeDocument{Pages: pages}
	return o
}

// Open implements pdftext.Opener.
func (o *FakeOpener) Open(path string) (pdftext.Document, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.opened = append(o.opened, path)
	doc, ok := o.Docs[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s: not a PDF", pdftext.ErrUnreadablePDF, path)
	}
	return doc, nil
}

// Opened returns the paths opened so far, in order.
func (o *FakeOpener) Opened() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.opened...)
}

// EngineCall records a single OCR invocation.
type EngineCall struct {
	Input   string
	Output  string
	Options ocr.Options
}

// FakeEngine is an ocr.Engine that writes a marker file to the output
// path. Inputs listed in Fail fail with an *ocr.PipelineError.
type FakeEngine struct {
	Fail map[string]string
	Hook func(ctx context.Context, input string) error
	// Partial makes failing runs leave a truncated output file behind,
	// the way a killed ocrmypdf does.
	Partial bool
	calls   []EngineCall
	mu      sync.Mutex
}

// NewFakeEngine creates an engine that succeeds for every input.
func NewFakeEngine() *FakeEngine {
	return &FakeEngine{Fail: make(map[string]string)}
}

// FailOn makes the engine fail for input with the given message.
func (e *FakeEngine) FailOn(input, message string) *FakeEngine {
	e.Fail[input] = message
	return e
}

// Run implements ocr.Engine.
func (e *FakeEngine) Run(ctx context.Context, input, output string, opts ocr.Options) error {
	e.mu.Lock()
	e.calls = append(e.calls, EngineCall{Input: input, Output: output, Options: opts})
	msg, fail := e.Fail[input]
	hook := e.Hook
	e.mu.Unlock()

	if hook != nil {
		if err := hook(ctx, input); err != nil {
			e.writePartial(output)
			return &ocr.PipelineError{Input: input, Err: err}
		}
	}
	if fail {
		e.writePartial(output)
		return &ocr.PipelineError{Input: input, ExitCode: 2, Stderr: msg, Err: errors.New("exit status 2")}
	}
	if err := os.WriteFile(output, []byte("%PDF-1.4 ocr of "+input), 0o644); err != nil {
		return &ocr.PipelineError{Input: input, Err: err}
	}
	return nil
}

func (e *FakeEngine) writePartial(output string) {
	if e.Partial {
		_ = os.WriteFile(output, []byte("%PDF-1.4 trunc"), 0o644)
	}
}

// Calls returns the recorded invocations.
func (e *FakeEngine) Calls() []EngineCall {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]EngineCall(nil), e.calls...)
}

// CallCount returns the number of invocations.
func (e *FakeEngine) CallCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.calls)
}
