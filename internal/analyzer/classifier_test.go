package analyzer

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Veraticus/pdf-ocr/internal/pdftext"
	"github.com/Veraticus/pdf-ocr/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name      string
		pages     []int
		threshold int
		ratio     float64
		want      bool
	}{
		{name: "no pages", pages: nil, threshold: 10, ratio: 0.5, want: false},
		{name: "no pages with zero ratio", pages: nil, threshold: 10, ratio: 0, want: false},
		{name: "all text", pages: []int{500, 800, 1200}, threshold: 10, ratio: 0.5, want: false},
		{name: "all empty", pages: []int{0, 0, 0}, threshold: 10, ratio: 0.5, want: true},
		{name: "exactly half empty", pages: []int{0, 300}, threshold: 10, ratio: 0.5, want: true},
		{name: "just under half empty", pages: []int{0, 300, 300}, threshold: 10, ratio: 0.5, want: false},
		{name: "cover page with text on a scan", pages: []int{250, 0, 0, 0}, threshold: 10, ratio: 0.5, want: true},
		{name: "threshold is strict", pages: []int{10}, threshold: 10, ratio: 0.5, want: false},
		{name: "below threshold", pages: []int{9}, threshold: 10, ratio: 0.5, want: true},
		{name: "zero threshold never empty", pages: []int{0, 0}, threshold: 0, ratio: 0.5, want: false},
		{name: "zero ratio always needs", pages: []int{100}, threshold: 10, ratio: 0, want: true},
		{name: "ratio one requires every page", pages: []int{0, 0, 11}, threshold: 10, ratio: 1, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := &testutil.FakeDocument{Pages: tt.pages}
			got, err := Evaluate(doc, tt.threshold, tt.ratio)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluate_MatchesRatioProperty(t *testing.T) {
	for empty := 0; empty <= 8; empty++ {
		for full := 0; full <= 8; full++ {
			if empty+full == 0 {
				continue
			}
			pages := make([]int, 0, empty+full)
			for i := 0; i < empty; i++ {
				pages = append(pages, i%DefaultEmptyPageThreshold)
			}
			for i := 0; i < full; i++ {
				pages = append(pages, DefaultEmptyPageThreshold+i)
			}

			got, err := Evaluate(&testutil.FakeDocument{Pages: pages}, DefaultEmptyPageThreshold, DefaultEmptyPageRatio)
			require.NoError(t, err)
			want := float64(empty)/float64(empty+full) >= DefaultEmptyPageRatio
			assert.Equal(t, want, got, "empty=%d full=%d", empty, full)
		}
	}
}

func TestEvaluate_PageError(t *testing.T) {
	doc := &testutil.FakeDocument{Pages: []int{0, 0}, PageErr: errors.New("bad xref")}
	_, err := Evaluate(doc, 10, 0.5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page 1")
}

func TestClassifier_NeedsOCR(t *testing.T) {
	opener := testutil.NewFakeOpener().
		With("scan.pdf", 0, 0, 3).
		With("text.pdf", 900, 1100).
		With("empty.pdf")
	opener.Docs["broken.pdf"] = &testutil.FakeDocument{Pages: []int{0}, PageErr: errors.New("truncated stream")}

	var reported []string
	classifier := NewClassifier(opener)
	classifier.OnError = func(path string, _ error) {
		reported = append(reported, path)
	}
	require.NoError(t, classifier.Validate())

	assert.True(t, classifier.NeedsOCR("scan.pdf"))
	assert.False(t, classifier.NeedsOCR("text.pdf"))
	assert.False(t, classifier.NeedsOCR("empty.pdf"))
	assert.False(t, classifier.NeedsOCR("missing.pdf"), "unopenable files never need OCR")
	assert.False(t, classifier.NeedsOCR("broken.pdf"), "unreadable pages never need OCR")

	assert.Equal(t, []string{"missing.pdf", "broken.pdf"}, reported)

	for name, doc := range opener.Docs {
		assert.True(t, doc.Closed(), "%s should be closed after classification", name)
	}
}

func TestClassifier_Classify(t *testing.T) {
	opener := testutil.NewFakeOpener().With("scan.pdf", 0)
	classifier := NewClassifier(opener)

	v := classifier.Classify("scan.pdf")
	assert.True(t, v.NeedsOCR)
	assert.False(t, v.Unreadable())
	assert.Equal(t, "scan.pdf", v.Path)

	v = classifier.Classify("corrupt.pdf")
	assert.False(t, v.NeedsOCR)
	assert.True(t, v.Unreadable())
	assert.ErrorIs(t, v.Err, pdftext.ErrUnreadablePDF)
}

func TestClassifier_Validate(t *testing.T) {
	tests := []struct {
		name      string
		opener    pdftext.Opener
		threshold int
		ratio     float64
		wantErr   bool
	}{
		{name: "defaults", opener: testutil.NewFakeOpener(), threshold: 10, ratio: 0.5},
		{name: "bounds", opener: testutil.NewFakeOpener(), threshold: 0, ratio: 1},
		{name: "no opener", threshold: 10, ratio: 0.5, wantErr: true},
		{name: "negative threshold", opener: testutil.NewFakeOpener(), threshold: -1, ratio: 0.5, wantErr: true},
		{name: "ratio above one", opener: testutil.NewFakeOpener(), threshold: 10, ratio: 1.5, wantErr: true},
		{name: "negative ratio", opener: testutil.NewFakeOpener(), threshold: 10, ratio: -0.1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Classifier{Opener: tt.opener, EmptyPageThreshold: tt.threshold, EmptyPageRatio: tt.ratio}
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func ExampleEvaluate() {
	scan := &testutil.FakeDocument{Pages: []int{420, 0, 0}}
	needs, _ := Evaluate(scan, DefaultEmptyPageThreshold, DefaultEmptyPageRatio)
	fmt.Println(needs)
	// Output: true
}
