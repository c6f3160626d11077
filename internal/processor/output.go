package processor

import (
	"path/filepath"
	"strings"
)

// DefaultSuffix is inserted before the extension of OCR output files.
const DefaultSuffix = "_ocr"

// OutputPath derives the output file for input: same directory, with
// suffix inserted between the stem and the extension. It performs no I/O.
//
//	OutputPath("/scans/letter.pdf", "_ocr") == "/scans/letter_ocr.pdf"
func OutputPath(input, suffix string) string {
	dir, name := filepath.Split(input)
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	if stem == "" {
		// dotfiles such as ".pdf" have no extension
		stem, ext = name, ""
	}
	return dir + stem + suffix + ext
}
