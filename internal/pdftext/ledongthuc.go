package pdftext

import (
	"errors"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// LedongthucOpener opens documents with github.com/ledongthuc/pdf.
// It is the default backend.
type LedongthucOpener struct{}

// Open implements Opener.
func (LedongthucOpener) Open(path string) (doc Document, err error) {
	defer recoverUnreadable(path, &err)

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, unreadable(path, err)
	}

	return &ledongthucDocument{path: path, file: f, reader: r}, nil
}

type ledongthucDocument struct {
	file   *os.File
	reader *pdf.Reader
	path   string
}

func (d *ledongthucDocument) PageCount() int {
	return d.reader.NumPage()
}

func (d *ledongthucDocument) PageTextLen(page int) (n int, err error) {
	defer recoverUnreadable(d.path, &err)

	if page < 1 || page > d.reader.NumPage() {
		return 0, fmt.Errorf("page %d out of range [1, %d]", page, d.reader.NumPage())
	}

	p := d.reader.Page(page)
	if p.V.IsNull() {
		return 0, nil
	}

	text, err := p.GetPlainText(nil)
	if err != nil {
		return 0, unreadable(d.path, fmt.Errorf("page %d: %w", page, err))
	}
	return utf8.RuneCountInString(text), nil
}

func (d *ledongthucDocument) Close() error {
	if d.file == nil {
		return nil
	}
	err := d.file.Close()
	d.file = nil
	if errors.Is(err, os.ErrClosed) {
		return nil
	}
	return err
}
