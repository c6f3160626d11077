package processor

import (
	"context"
	"fmt"

	"github.com/Veraticus/pdf-ocr/internal/model"
	"github.com/Veraticus/pdf-ocr/internal/ocr"
)

// OCRFile adds a text layer to a single PDF. With an empty output the
// copy is written next to input with DefaultSuffix; otherwise it is
// written to output. An existing output is kept unless force is set.
// The error is non-nil only for invalid arguments; OCR failures are
// reported in the result.
func OCRFile(ctx context.Context, engine ocr.Engine, input, output string, force bool, language string) (model.ProcessResult, error) {
	langs, err := ocr.ParseLanguages(language)
	if err != nil {
		return model.ProcessResult{}, err
	}

	opts := DefaultOptions()
	opts.Force = force
	opts.OCR = ocr.DefaultOptions(langs...)

	p := New(engine, opts)
	if output == "" {
		return p.ProcessFile(ctx, input), nil
	}
	if samePath(input, output) {
		return model.ProcessResult{}, fmt.Errorf("%w: %s", ErrOutputIsInput, output)
	}
	return p.processTo(ctx, input, output), nil
}
