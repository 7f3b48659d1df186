// Package fs provides file system adapters for finding declaration files,
// fingerprinting emission inputs and writing generated output.
package fs

import (
	iofs "io/fs"
	"iter"
	"path/filepath"
	"slices"

	"go.trai.ch/immut/internal/core/domain"
	"go.trai.ch/zerr"
)

// skippedDirs are never descended into.
var skippedDirs = map[string]bool{
	".git":              true,
	".jj":               true,
	domain.ImmutDirName: true,
	"node_modules":      true,
	"vendor":            true,
}

// Walker finds files below a project root.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// WalkFiles yields every file below root, skipping version control, vendored
// and immut metadata directories as well as entries matching ignores.
// Paths include root, as filepath.WalkDir yields them.
func (w *Walker) WalkFiles(root string, ignores []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d iofs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if path != root {
				if skipped, action := w.skip(d, ignores); skipped {
					return action
				}
			}
			if d.IsDir() {
				return nil
			}
			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

// Match returns the files below root whose base name matches one of the
// patterns, relative to root and sorted.
func (w *Walker) Match(root string, patterns, ignores []string) ([]string, error) {
	for _, p := range patterns {
		if _, err := filepath.Match(p, ""); err != nil {
			return nil, zerr.With(zerr.Wrap(err, "invalid declaration pattern"), "pattern", p)
		}
	}

	var out []string
	for path := range w.WalkFiles(root, ignores) {
		name := filepath.Base(path)
		if !slices.ContainsFunc(patterns, func(p string) bool {
			ok, _ := filepath.Match(p, name)
			return ok
		}) {
			continue
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to resolve relative path"), "path", path)
		}
		out = append(out, filepath.ToSlash(rel))
	}
	slices.Sort(out)
	return out, nil
}

// skip reports whether an entry matches a skip rule, and the walk action for it.
func (w *Walker) skip(d iofs.DirEntry, ignores []string) (bool, error) {
	name := d.Name()
	if d.IsDir() && skippedDirs[name] {
		return true, filepath.SkipDir
	}
	for _, ignore := range ignores {
		if matched, _ := filepath.Match(ignore, name); matched {
			if d.IsDir() {
				return true, filepath.SkipDir
			}
			return true, nil
		}
	}
	return false, nil
}
