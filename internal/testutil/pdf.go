// Package testutil provides test utilities shared across packages: a
// builder for small but valid PDF files and in-memory fakes for the text
// extraction and OCR collaborators.
package testutil

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// PDFBuilder assembles a minimal PDF with one content stream per page.
//
// Example:
//
//	path := testutil.NewPDFBuilder(t).
//		WithTextPage("Quarterly report for the archive").
//		WithBlankPage().
//		Write(filepath.Join(dir, "mixed.pdf"))
type PDFBuilder struct {
	t     *testing.T
	pages []string
}

// NewPDFBuilder creates a builder with no pages.
func NewPDFBuilder(t *testing.T) *PDFBuilder {
	t.Helper()
	return &PDFBuilder{t: t}
}

// WithTextPage appends a page that shows text in Helvetica.
func (b *PDFBuilder) WithTextPage(text string) *PDFBuilder {
	b.pages = append(b.pages, text)
	return b
}

// WithBlankPage appends a page with an empty content stream, which is how
// an image-only scan looks to a text extractor.
func (b *PDFBuilder) WithBlankPage() *PDFBuilder {
	b.pages = append(b.pages, "")
	return b
}

// WithBlankPages appends n blank pages.
func (b *PDFBuilder) WithBlankPages(n int) *PDFBuilder {
	for i := 0; i < n; i++ {
		b.WithBlankPage()
	}
	return b
}

// Bytes renders the document.
func (b *PDFBuilder) Bytes() []byte {
	var (
		buf     bytes.Buffer
		offsets []int
	)

	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")

	// 1: catalog, 2: page tree, 3: font, then page/content pairs.
	kids := make([]string, len(b.pages))
	for i := range b.pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}

	obj("<< /Type /Catalog /Pages 2 0 R >>")
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d /MediaBox [0 0 612 792] >>",
		strings.Join(kids, " "), len(b.pages)))
	obj("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")

	for i, text := range b.pages {
		obj(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i))

		content := ""
		if text != "" {
			content = fmt.Sprintf("BT\n/F1 12 Tf\n72 712 Td\n(%s) Tj\nET", escapePDFString(text))
		}
		obj(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)

	return buf.Bytes()
}

// Write renders the document to path, creating parent directories.
func (b *PDFBuilder) Write(path string) string {
	b.t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		b.t.Fatalf("failed to create fixture directory: %v", err)
	}
	if err := os.WriteFile(path, b.Bytes(), 0o644); err != nil {
		b.t.Fatalf("failed to write PDF fixture %s: %v", path, err)
	}
	return path
}

// WriteFile writes arbitrary content to path, creating parent directories.
func WriteFile(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create fixture directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write fixture %s: %v", path, err)
	}
	return path
}

func escapePDFString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}
