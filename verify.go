package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/karrick/godirwalk"
	rcs "github.com/kfsone/rcs-go/lib"
	"golang.org/x/sync/errgroup"
)

// findRCSFiles returns every ,v file under roots, skipping paths that fall
// under one of the exclude prefixes. Roots naming a file are taken as is.
func findRCSFiles(roots []string, exclude []string) ([]string, error) {
	var paths []string
	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, root)
			continue
		}

		err = godirwalk.Walk(root, &godirwalk.Options{
			Callback: func(osPathname string, de *godirwalk.Dirent) error {
				rel, err := filepath.Rel(root, osPathname)
				if err != nil {
					return err
				}
				if isExcluded(filepath.ToSlash(rel), exclude) {
					Log("excluding %s", osPathname)
					if de.IsDir() {
						return godirwalk.SkipThis
					}
					return nil
				}
				if de.IsRegular() && strings.HasSuffix(de.Name(), ",v") {
					paths = append(paths, osPathname)
				}
				return nil
			},
		})
		if err != nil {
			return nil, err
		}
	}
	return paths, nil
}

func isExcluded(path string, exclude []string) bool {
	for _, prefix := range exclude {
		if matchPathPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// matchPathPrefix reports whether path begins with the same path
// *components* as prefix, so "Attic" matches "Attic/x,v" but not
// "Attic2/x,v". An empty or "/" prefix matches nothing.
func matchPathPrefix(path, prefix string) bool {
	path = strings.Trim(path, "/")
	prefix = strings.Trim(prefix, "/")

	if prefix == "" || !strings.HasPrefix(path, prefix) {
		return false
	}
	if len(path) == len(prefix) {
		return true
	}
	return path[len(prefix)] == '/'
}

// verifyFiles checks paths in parallel, at most jobs at a time.
func (s *Session) verifyFiles(ctx context.Context, paths []string) (*VerifyReport, error) {
	report := &VerifyReport{}
	collector := NewCollector(s.cfg.Jobs, func(result VerifyResult) {
		if result.Error != "" {
			report.Failed++
			Log("failed %s: %s", result.Path, result.Error)
		} else {
			Log("verified %s", result.Path)
		}
		report.Results = append(report.Results, result)
	})

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Jobs)
	for _, path := range paths {
		path := path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			result := VerifyResult{Path: path}
			f, err := s.cache.Load(path)
			if err == nil {
				result.Revisions, err = verifyFile(f)
			}
			if err != nil {
				result.Error = err.Error()
			}
			collector.Add(result)
			return nil
		})
	}
	err := g.Wait()
	report.Files = collector.CloseWait()
	if err != nil {
		return nil, err
	}

	sort.Slice(report.Results, func(i, j int) bool {
		return report.Results[i].Path < report.Results[j].Path
	})
	return report, nil
}

// verifyFile reconstructs every revision of f, checks that re-diffing each
// revision against its parent reproduces it, annotates the head, and checks
// that encoding and reparsing f yields the same texts. It returns the
// number of revisions checked.
func verifyFile(f *rcs.File) (int, error) {
	order := f.Order()
	texts := make(map[rcs.RevisionNumber][][]byte, len(order))
	for _, num := range order {
		lines, err := f.Lines(num)
		if err != nil {
			return 0, err
		}
		texts[num] = lines
	}

	for _, num := range order {
		parent := f.Parent(num)
		if parent == "" {
			continue
		}
		from, want := texts[parent], texts[num]
		got, err := rcs.Diff(from, want).Apply(from)
		if err != nil {
			return 0, fmt.Errorf("re-diff %s..%s: %w", parent, num, err)
		}
		if !bytes.Equal(rcs.JoinLines(got), rcs.JoinLines(want)) {
			return 0, fmt.Errorf("re-diff %s..%s does not reproduce %s", parent, num, num)
		}
	}

	if f.Head != "" {
		annotated, err := f.AnnotateRevision(f.Head)
		if err != nil {
			return 0, err
		}
		if len(annotated) != len(texts[f.Head]) {
			return 0, fmt.Errorf("annotate %s: %d lines, text has %d", f.Head, len(annotated), len(texts[f.Head]))
		}
	}

	var buf bytes.Buffer
	if err := f.Encode(&buf); err != nil {
		return 0, err
	}
	again, err := rcs.ParseBytes(buf.Bytes())
	if err != nil {
		return 0, fmt.Errorf("reparse: %w", err)
	}
	for _, num := range order {
		text, err := again.Text(num)
		if err != nil {
			return 0, fmt.Errorf("reparse: %w", err)
		}
		if !bytes.Equal(text, rcs.JoinLines(texts[num])) {
			return 0, fmt.Errorf("reparse: text of %s differs", num)
		}
	}
	return len(order), nil
}
