package analyzer

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// IsPDFName reports whether name has a .pdf extension, in any case.
func IsPDFName(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}

// Scan walks root recursively and calls fn for every regular file with a
// .pdf extension, in lexical order. Directories named *.pdf are not
// reported. Unreadable subdirectories are logged and skipped; an error
// reading root itself is returned. Returning an error from fn stops the
// walk and returns that error. Symlinked files are
// reported when their target is a regular file; symlinked directories are
// not descended into.
func Scan(ctx context.Context, root string, fn func(path string) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if path == root {
				return fmt.Errorf("failed to scan %s: %w", root, err)
			}
			slog.Warn("Skipping unreadable path", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !IsPDFName(d.Name()) || !isRegularFile(path, d) {
			return nil
		}
		return fn(path)
	})
}

// isRegularFile reports whether d is a regular file, following a symlink
// to its target.
func isRegularFile(path string, d fs.DirEntry) bool {
	if d.Type()&fs.ModeSymlink == 0 {
		return d.Type().IsRegular()
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Collect returns every PDF under root, in lexical order.
func Collect(ctx context.Context, root string) ([]string, error) {
	var paths []string
	err := Scan(ctx, root, func(path string) error {
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

// Partition is the classification of a set of files.
type Partition struct {
	NeedsOCR   []string
	HasText    []string
	Unreadable []Verdict
}

// Total returns the number of classified files.
func (p Partition) Total() int {
	return len(p.NeedsOCR) + len(p.HasText)
}

// Partition classifies paths in order. onEach, when set, is called after
// each file with its 1-based index; it may stop the run by returning an
// error. Unreadable files land in HasText, matching Classify, and are
// also listed in Unreadable.
func (c *Classifier) Partition(ctx context.Context, paths []string, onEach func(index int, v Verdict) error) (Partition, error) {
	var p Partition
	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return p, err
		}

		v := c.Classify(path)
		if v.NeedsOCR {
			p.NeedsOCR = append(p.NeedsOCR, path)
		} else {
			p.HasText = append(p.HasText, path)
		}
		if v.Unreadable() {
			p.Unreadable = append(p.Unreadable, v)
		}

		if onEach != nil {
			if err := onEach(i+1, v); err != nil {
				return p, err
			}
		}
	}
	return p, nil
}

// AnalyzeDirectory scans root and partitions every PDF found.
func (c *Classifier) AnalyzeDirectory(ctx context.Context, root string) (Partition, error) {
	paths, err := Collect(ctx, root)
	if err != nil {
		return Partition{}, err
	}
	return c.Partition(ctx, paths, nil)
}
