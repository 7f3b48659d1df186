package immutable

import (
	"fmt"
	"hash"
	"hash/fnv"
)

// ClonePtr returns a pointer to a copy of *p, or nil if p is nil.
func ClonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Of returns a pointer to v. Builders use it to turn a default into a present optional.
func Of[T any](v T) *T {
	return &v
}

// CloneSlice returns a copy of s that is never nil.
func CloneSlice[S ~[]E, E any](s S) S {
	out := make(S, len(s))
	copy(out, s)
	return out
}

// CloneMap returns a copy of m that is never nil.
func CloneMap[M ~map[K]V, K comparable, V any](m M) M {
	out := make(M, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// EqualPtr reports whether two optional values are both absent or both present and equal.
func EqualPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Deref returns *p, or nil if p is nil. It is used where an optional value
// is formatted or hashed rather than its address.
func Deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

// Hasher accumulates an FNV-64a hash over attribute values.
// Values are hashed through their default formatting, which prints map
// entries in key order, so equal values hash equally.
type Hasher struct {
	h hash.Hash64
}

// NewHasher creates an empty Hasher.
func NewHasher() *Hasher {
	return &Hasher{h: fnv.New64a()}
}

// Add mixes a value into the hash.
func (h *Hasher) Add(v any) {
	_, _ = fmt.Fprintf(h.h, "%v\x00", v)
}

// AddHash mixes a precomputed hash, such as a nested value's, into the hash.
func (h *Hasher) AddHash(sum uint64) {
	_, _ = fmt.Fprintf(h.h, "%016x\x00", sum)
}

// Sum returns the accumulated hash.
func (h *Hasher) Sum() uint64 {
	return h.h.Sum64()
}
