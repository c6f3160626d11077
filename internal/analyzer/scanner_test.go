package analyzer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/Veraticus/pdf-ocr/internal/pdftext"
	"github.com/Veraticus/pdf-ocr/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPDFName(t *testing.T) {
	assert.True(t, IsPDFName("scan.pdf"))
	assert.True(t, IsPDFName("SCAN.PDF"))
	assert.True(t, IsPDFName("archive.2019.Pdf"))
	assert.False(t, IsPDFName("scan.pdf.bak"))
	assert.False(t, IsPDFName("notes.txt"))
	assert.False(t, IsPDFName("pdf"))
}

func TestScan(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, filepath.Join(root, "a.pdf"), "x")
	testutil.WriteFile(t, filepath.Join(root, "B.PDF"), "x")
	testutil.WriteFile(t, filepath.Join(root, "notes.txt"), "x")
	testutil.WriteFile(t, filepath.Join(root, "nested", "deeper", "c.Pdf"), "x")
	testutil.WriteFile(t, filepath.Join(root, "nested", "d.pdf.txt"), "x")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "folder.pdf"), 0o755))
	testutil.WriteFile(t, filepath.Join(root, "folder.pdf", "inside.pdf"), "x")

	paths, err := Collect(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(root, "B.PDF"),
		filepath.Join(root, "a.pdf"),
		filepath.Join(root, "folder.pdf", "inside.pdf"),
		filepath.Join(root, "nested", "deeper", "c.Pdf"),
	}, paths)
}

func TestScan_Symlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	root := t.TempDir()
	target := testutil.WriteFile(t, filepath.Join(t.TempDir(), "outside.pdf"), "x")
	require.NoError(t, os.Symlink(target, filepath.Join(root, "linked.pdf")))
	require.NoError(t, os.Symlink(filepath.Join(root, "gone.pdf"), filepath.Join(root, "dangling.pdf")))

	paths, err := Collect(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "linked.pdf")}, paths)
}

func TestScan_IsLazy(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"1.pdf", "2.pdf", "3.pdf"} {
		testutil.WriteFile(t, filepath.Join(root, name), "x")
	}

	stop := errors.New("enough")
	var seen []string
	err := Scan(context.Background(), root, func(path string) error {
		seen = append(seen, filepath.Base(path))
		if len(seen) == 2 {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, []string{"1.pdf", "2.pdf"}, seen)
}

func TestScan_Errors(t *testing.T) {
	_, err := Collect(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	root := t.TempDir()
	testutil.WriteFile(t, filepath.Join(root, "a.pdf"), "x")
	_, err = Collect(ctx, root)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyzeDirectory(t *testing.T) {
	root := t.TempDir()
	testutil.NewPDFBuilder(t).WithBlankPages(3).Write(filepath.Join(root, "scan-1.pdf"))
	testutil.NewPDFBuilder(t).WithBlankPages(2).Write(filepath.Join(root, "sub", "scan-2.pdf"))
	testutil.NewPDFBuilder(t).
		WithTextPage("Invoice 2041 for consulting services rendered in March").
		WithTextPage("Payment is due within thirty days of the invoice date").
		Write(filepath.Join(root, "invoice.pdf"))

	classifier := NewClassifier(pdftext.LedongthucOpener{})
	partition, err := classifier.AnalyzeDirectory(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(root, "scan-1.pdf"),
		filepath.Join(root, "sub", "scan-2.pdf"),
	}, partition.NeedsOCR)
	assert.Equal(t, []string{filepath.Join(root, "invoice.pdf")}, partition.HasText)
	assert.Empty(t, partition.Unreadable)
	assert.Equal(t, 3, partition.Total())
}

func TestPartition(t *testing.T) {
	opener := testutil.NewFakeOpener().
		With("a.pdf", 0, 0).
		With("b.pdf", 400).
		With("c.pdf", 0)
	classifier := NewClassifier(opener)

	var indices []int
	partition, err := classifier.Partition(context.Background(),
		[]string{"a.pdf", "b.pdf", "bad.pdf", "c.pdf"},
		func(index int, _ Verdict) error {
			indices = append(indices, index)
			return nil
		})
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3, 4}, indices)
	assert.Equal(t, []string{"a.pdf", "c.pdf"}, partition.NeedsOCR)
	assert.Equal(t, []string{"b.pdf", "bad.pdf"}, partition.HasText)
	require.Len(t, partition.Unreadable, 1)
	assert.Equal(t, "bad.pdf", partition.Unreadable[0].Path)

	t.Run("callback error stops", func(t *testing.T) {
		boom := errors.New("boom")
		partition, err := classifier.Partition(context.Background(), []string{"a.pdf", "b.pdf"},
			func(int, Verdict) error { return boom })
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, []string{"a.pdf"}, partition.NeedsOCR)
		assert.Empty(t, partition.HasText)
	})
}
