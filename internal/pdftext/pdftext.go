// Package pdftext exposes the read-only view of a PDF that the OCR
// classifier needs: a page count and the amount of extractable text on
// each page. Two parsing backends are provided.
package pdftext

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnreadablePDF is returned when a document cannot be opened or parsed.
var ErrUnreadablePDF = errors.New("unreadable PDF")

// Document is an opened PDF.
type Document interface {
	// PageCount returns the number of pages in the document.
	PageCount() int
	// PageTextLen returns the number of extractable text characters on
	// the given 1-based page.
	PageTextLen(page int) (int, error)
	// Close releases the underlying file.
	Close() error
}

// Opener opens documents by path.
type Opener interface {
	Open(path string) (Document, error)
}

// Backend names accepted by NewOpener.
const (
	BackendLedongthuc = "ledongthuc"
	BackendPDFCPU     = "pdfcpu"
)

// Backends lists the supported backend names.
func Backends() []string {
	return []string{BackendLedongthuc, BackendPDFCPU}
}

// NewOpener returns the opener registered under name. An empty name
// selects the default backend.
func NewOpener(name string) (Opener, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", BackendLedongthuc:
		return LedongthucOpener{}, nil
	case BackendPDFCPU:
		return PDFCPUOpener{}, nil
	default:
		return nil, fmt.Errorf("unknown text extractor %q (supported: %s)", name, strings.Join(Backends(), ", "))
	}
}

func unreadable(path string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrUnreadablePDF, path, err)
}

// recoverUnreadable turns a parser panic into an ErrUnreadablePDF error.
// Both parsing libraries panic on some malformed inputs.
func recoverUnreadable(path string, err *error) {
	if r := recover(); r != nil {
		*err = unreadable(path, fmt.Errorf("parser panic: %v", r))
	}
}
