package ports

import "go.trai.ch/immut/internal/core/domain"

// Fingerprinter computes the structural hash deciding whether a task must be re-emitted.
//
//go:generate go run go.uber.org/mock/mockgen -source=fingerprinter.go -destination=mocks/mock_fingerprinter.go -package=mocks
type Fingerprinter interface {
	// Fingerprint hashes the task's artifact kind and target, its validated model
	// with the effective style, and the emission-relevant inputs of nested models.
	Fingerprint(task *domain.EmissionTask, deps []domain.DependencyInfo) string
}
