package ports

import "go.trai.ch/immut/internal/core/domain"

// SourceRenderer serializes generated units into source text.
//
//go:generate go run go.uber.org/mock/mockgen -source=source_renderer.go -destination=mocks/mock_source_renderer.go -package=mocks
type SourceRenderer interface {
	// Render turns the units routed to one output file into formatted source.
	// Units are rendered in the given order.
	Render(output string, units []domain.GeneratedUnit) ([]byte, error)
}

// OutputWriter places rendered sources on disk.
type OutputWriter interface {
	// Write stores content at path unless it already holds exactly that content.
	// It reports whether the file changed. With dryRun, nothing is written.
	Write(path string, content []byte, dryRun bool) (bool, error)

	// Remove deletes a generated file. A missing file is not an error.
	Remove(path string) error
}
