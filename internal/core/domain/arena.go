package domain

import (
	"iter"
	"strings"

	"go.trai.ch/zerr"
)

// Arena holds the models of one discovery pass indexed by source identity.
// Nested attributes refer to each other through the arena rather than through
// pointers, so cyclic declarations stay representable and are rejected by
// traversal instead of by construction.
type Arena struct {
	models map[SourceID]*AttributeModel
	order  []SourceID
}

// NewArena creates an empty Arena.
func NewArena() *Arena {
	return &Arena{models: make(map[SourceID]*AttributeModel)}
}

// Add inserts a model. It returns an error if the source identity is already present.
func (a *Arena) Add(m *AttributeModel) error {
	if _, exists := a.models[m.Source]; exists {
		return Annotate(ErrDuplicateSourceID, "source", m.Source.String())
	}
	a.models[m.Source] = m
	a.order = append(a.order, m.Source)
	return nil
}

// Get returns the model extracted from the given source.
func (a *Arena) Get(id SourceID) (*AttributeModel, bool) {
	m, ok := a.models[id]
	return m, ok
}

// Len returns the number of models in the arena.
func (a *Arena) Len() int {
	return len(a.order)
}

// Models yields the models in insertion order.
func (a *Arena) Models() iter.Seq[*AttributeModel] {
	return func(yield func(*AttributeModel) bool) {
		for _, id := range a.order {
			if !yield(a.models[id]) {
				return
			}
		}
	}
}

// NestedRefs returns the distinct nested references of a model in attribute order.
func NestedRefs(m *AttributeModel) []SourceID {
	var refs []SourceID
	seen := make(map[SourceID]bool)
	for i := range m.Attributes {
		k := m.Attributes[i].Kind
		if k.Form != FormNested || seen[k.Ref] {
			continue
		}
		seen[k.Ref] = true
		refs = append(refs, k.Ref)
	}
	return refs
}

// CyclePath reports whether following nested references from the given model
// leads back to it, returning the path in "A -> B -> A" order.
// References to models absent from the arena are ignored.
func (a *Arena) CyclePath(from SourceID) ([]SourceID, bool) {
	visited := make(map[SourceID]bool)
	var path []SourceID

	var visit func(u SourceID) bool
	visit = func(u SourceID) bool {
		visited[u] = true
		path = append(path, u)

		m, ok := a.models[u]
		if ok {
			for _, ref := range NestedRefs(m) {
				if ref == from {
					path = append(path, ref)
					return true
				}
				if !visited[ref] && visit(ref) {
					return true
				}
			}
		}

		path = path[:len(path)-1]
		return false
	}

	if visit(from) {
		return path, true
	}
	return nil, false
}

// FormatPath renders a reference path for diagnostics.
func FormatPath(path []SourceID) string {
	parts := make([]string, len(path))
	for i, id := range path {
		parts[i] = id.String()
	}
	return strings.Join(parts, " -> ")
}

// DependencyOrder returns the arena's models ordered so that every model comes
// after the models its nested attributes reference. Insertion order breaks ties,
// which keeps the result deterministic. Models on a cycle are emitted in the
// order the traversal first finishes them.
func (a *Arena) DependencyOrder() []SourceID {
	out := make([]SourceID, 0, len(a.order))
	state := make(map[SourceID]int) // 0: unvisited, 1: visiting, 2: done

	var visit func(u SourceID)
	visit = func(u SourceID) {
		state[u] = 1
		for _, ref := range NestedRefs(a.models[u]) {
			if _, ok := a.models[ref]; !ok {
				continue
			}
			if state[ref] == 0 {
				visit(ref)
			}
		}
		state[u] = 2
		out = append(out, u)
	}

	for _, id := range a.order {
		if state[id] == 0 {
			visit(id)
		}
	}
	return out
}

// Depths assigns every model its nesting depth: zero for models without nested
// references inside the arena, otherwise one more than the deepest reference.
// It must only be called on an acyclic arena.
func (a *Arena) Depths() map[SourceID]int {
	depth := make(map[SourceID]int, len(a.order))
	for _, id := range a.DependencyOrder() {
		d := 0
		for _, ref := range NestedRefs(a.models[id]) {
			if rd, ok := depth[ref]; ok && rd+1 > d {
				d = rd + 1
			}
		}
		depth[id] = d
	}
	return depth
}

// TypeIndex resolves package-qualified type names to the declarations defining them.
type TypeIndex struct {
	ids map[string]SourceID
}

// NewTypeIndex creates an empty TypeIndex.
func NewTypeIndex() *TypeIndex {
	return &TypeIndex{ids: make(map[string]SourceID)}
}

// Add registers a type. It returns an error if the package already declares the name.
func (t *TypeIndex) Add(pkg, typeName string, id SourceID) error {
	key := pkg + "." + typeName
	if prev, exists := t.ids[key]; exists {
		return zerr.With(Annotate(ErrDuplicateTypeName, "type", key), "first", prev.String())
	}
	t.ids[key] = id
	return nil
}

// Lookup returns the declaration defining typeName in pkg.
func (t *TypeIndex) Lookup(pkg, typeName string) (SourceID, bool) {
	id, ok := t.ids[pkg+"."+typeName]
	return id, ok
}
