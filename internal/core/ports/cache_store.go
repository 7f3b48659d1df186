package ports

import "go.trai.ch/immut/internal/core/domain"

// CacheStore persists incremental cache entries between invocations.
//
//go:generate go run go.uber.org/mock/mockgen -source=cache_store.go -destination=mocks/mock_cache_store.go -package=mocks
type CacheStore interface {
	// LoadAll reads every entry stored under dir. A missing dir yields no entries.
	LoadAll(dir string) ([]domain.CacheEntry, error)

	// Put stores one entry atomically.
	Put(dir string, entry *domain.CacheEntry) error

	// Delete removes the entry stored under key. Deleting a missing entry is not an error.
	Delete(dir string, key domain.CacheKey) error
}
