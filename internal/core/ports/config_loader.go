package ports

import "go.trai.ch/immut/internal/core/domain"

// ConfigLoader defines the interface for discovering the project and its declarations.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load finds immut.yaml from the given working directory upwards and reads
	// every declaration file it names.
	Load(cwd string) (*domain.Project, error)

	// DiscoverRoot walks up from cwd to find the directory containing immut.yaml.
	DiscoverRoot(cwd string) (string, error)
}
