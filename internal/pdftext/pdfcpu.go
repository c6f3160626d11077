package pdftext

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDFCPUOpener opens documents with github.com/pdfcpu/pdfcpu and measures
// text by scanning each page's content stream for text-showing operators.
// It is stricter than the default backend: files that fail pdfcpu's
// validation are reported as unreadable.
type PDFCPUOpener struct{}

// pdfcpu otherwise creates a configuration directory under the user's
// config dir on first use.
var disableConfigDir sync.Once

// Open implements Opener.
func (PDFCPUOpener) Open(path string) (doc Document, err error) {
	defer recoverUnreadable(path, &err)
	disableConfigDir.Do(api.DisableConfigDir)

	f, err := os.Open(path)
	if err != nil {
		return nil, unreadable(path, err)
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		return nil, unreadable(path, fmt.Errorf("pdfcpu read: %w", err))
	}

	return &pdfcpuDocument{path: path, ctx: ctx}, nil
}

// pdfcpuDocument holds the fully parsed context; the file itself is closed
// as soon as parsing completes.
type pdfcpuDocument struct {
	ctx  *model.Context
	path string
}

func (d *pdfcpuDocument) PageCount() int {
	return d.ctx.PageCount
}

func (d *pdfcpuDocument) PageTextLen(page int) (n int, err error) {
	defer recoverUnreadable(d.path, &err)

	if page < 1 || page > d.ctx.PageCount {
		return 0, fmt.Errorf("page %d out of range [1, %d]", page, d.ctx.PageCount)
	}

	r, err := pdfcpu.ExtractPageContent(d.ctx, page)
	if err != nil {
		return 0, unreadable(d.path, fmt.Errorf("page %d: %w", page, err))
	}
	if r == nil {
		return 0, nil
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return 0, unreadable(d.path, fmt.Errorf("page %d: %w", page, err))
	}
	return countShownText(data), nil
}

func (d *pdfcpuDocument) Close() error {
	d.ctx = nil
	return nil
}

// countShownText counts the characters a content stream paints with the
// Tj, TJ, ' and " operators. Literal strings count one character per
// decoded byte; hex strings count one character per byte pair. Only
// non-whitespace characters are counted.
func countShownText(stream []byte) int {
	var (
		total   int
		pending int
	)

	for i := 0; i < len(stream); {
		c := stream[i]
		switch {
		case c == '%':
			for i < len(stream) && stream[i] != '\n' && stream[i] != '\r' {
				i++
			}
		case c == '(':
			n, next := scanLiteral(stream, i)
			pending += n
			i = next
		case c == '<' && i+1 < len(stream) && stream[i+1] == '<':
			i += 2
		case c == '<':
			n, next := scanHex(stream, i)
			pending += n
			i = next
		case isOperatorStart(c):
			start := i
			for i < len(stream) && isOperatorByte(stream[i]) {
				i++
			}
			switch string(stream[start:i]) {
			case "Tj", "TJ", "'", "\"":
				total += pending
			}
			pending = 0
		default:
			i++
		}
	}

	return total
}

func scanLiteral(stream []byte, i int) (count, next int) {
	depth := 0
	var buf bytes.Buffer
	for ; i < len(stream); i++ {
		c := stream[i]
		switch c {
		case '\\':
			i++
			if i < len(stream) {
				switch e := stream[i]; {
				case e >= '0' && e <= '7':
					// octal escape: up to three digits, one byte
					for j := 0; j < 2 && i+1 < len(stream) && stream[i+1] >= '0' && stream[i+1] <= '7'; j++ {
						i++
					}
					buf.WriteByte('x')
				case e == 'n' || e == 'r' || e == 't' || e == 'f':
					buf.WriteByte(' ')
				case e == 'b' || e == '\n' || e == '\r':
				default:
					buf.WriteByte(e)
				}
			}
			continue
		case '(':
			depth++
			if depth == 1 {
				continue
			}
		case ')':
			depth--
			if depth == 0 {
				return nonSpace(buf.Bytes()), i + 1
			}
		}
		buf.WriteByte(c)
	}
	return nonSpace(buf.Bytes()), i
}

func scanHex(stream []byte, i int) (count, next int) {
	digits := 0
	for i++; i < len(stream); i++ {
		c := stream[i]
		if c == '>' {
			return (digits + 1) / 2, i + 1
		}
		if isHexDigit(c) {
			digits++
		}
	}
	return (digits + 1) / 2, i
}

func nonSpace(b []byte) int {
	n := 0
	for _, c := range b {
		if c != ' ' && c != '\t' && c != '\n' && c != '\r' && c != '\f' && c != 0 {
			n++
		}
	}
	return n
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isOperatorStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '\'' || c == '"' || c == '*'
}

func isOperatorByte(c byte) bool {
	return isOperatorStart(c) || (c >= '0' && c <= '9')
}
