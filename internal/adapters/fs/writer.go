package fs

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"

	"go.trai.ch/immut/internal/core/domain"
	"go.trai.ch/immut/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.OutputWriter = (*Writer)(nil)

// Writer stores generated files, leaving files that already hold the same
// content untouched so that their modification time does not change.
type Writer struct{}

// NewWriter creates a new Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Write stores content at path through a temporary file and a rename.
// It reports whether the file on disk differs from content.
func (w *Writer) Write(path string, content []byte, dryRun bool) (bool, error) {
	current, err := os.ReadFile(path) //nolint:gosec // Path is controlled by caller
	switch {
	case err == nil && bytes.Equal(current, content):
		return false, nil
	case err != nil && !errors.Is(err, os.ErrNotExist):
		return false, zerr.With(domain.Wrap(err, domain.ErrOutputWriteFailed), "path", path)
	}

	if dryRun {
		return true, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
		return false, zerr.With(domain.Wrap(err, domain.ErrOutputWriteFailed), "path", path)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return false, zerr.With(domain.Wrap(err, domain.ErrOutputWriteFailed), "path", path)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName) // Best effort cleanup; fails harmlessly after rename
	}()

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		return false, zerr.With(domain.Wrap(err, domain.ErrOutputWriteFailed), "path", path)
	}
	if err := tmp.Chmod(domain.FilePerm); err != nil {
		_ = tmp.Close()
		return false, zerr.With(domain.Wrap(err, domain.ErrOutputWriteFailed), "path", path)
	}
	if err := tmp.Close(); err != nil {
		return false, zerr.With(domain.Wrap(err, domain.ErrOutputWriteFailed), "path", path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return false, zerr.With(domain.Wrap(err, domain.ErrOutputWriteFailed), "path", path)
	}
	return true, nil
}

// Remove deletes a generated file. A missing file is not an error.
func (w *Writer) Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return zerr.With(domain.Wrap(err, domain.ErrOutputRemoveFailed), "path", path)
	}
	return nil
}
