package emitter

import (
	"path"
	"slices"
	"strings"

	"go.trai.ch/immut/internal/core/domain"
)

// stdImports are the packages generated bodies may use on their own.
var stdImports = map[string]string{
	"errors":    "errors",
	"fmt":       "fmt",
	"maps":      "maps",
	"slices":    "slices",
	"sync":      "sync",
	"immutable": domain.RuntimeImportPath,
}

// collectImports returns the imports a unit's members need, sorted by path.
//
// Every qualified identifier in types and bodies is resolved in turn through
// the declaration's imports, the qualifiers of declared kinds (whose path
// defaults to the qualifier) and the packages generated code uses itself.
// Identifiers that resolve to nothing are locals and need no import.
func collectImports(m *domain.AttributeModel, members []domain.Member) []domain.Import {
	kinds := kindQualifiers(m)
	paths := make(map[string]string)

	resolve := func(q string) {
		if _, done := paths[q]; done {
			return
		}
		if p, ok := m.Imports[q]; ok {
			paths[q] = p
			return
		}
		if kinds[q] {
			paths[q] = q
			return
		}
		if p, ok := stdImports[q]; ok {
			paths[q] = p
		}
	}

	var walk func(ms []domain.Member)
	walk = func(ms []domain.Member) {
		for i := range ms {
			mem := &ms[i]
			texts := []string{mem.Type}
			if mem.Receiver != nil {
				texts = append(texts, mem.Receiver.Type)
			}
			for _, p := range mem.Params {
				texts = append(texts, p.Type)
			}
			texts = append(texts, mem.Results...)
			texts = append(texts, mem.Body...)
			for _, text := range texts {
				for _, q := range qualifiers(text) {
					resolve(q)
				}
			}
			walk(mem.Members)
		}
	}
	walk(members)

	out := make([]domain.Import, 0, len(paths))
	for alias, p := range paths {
		imp := domain.Import{Path: p}
		if alias != path.Base(p) {
			imp.Alias = alias
		}
		out = append(out, imp)
	}
	slices.SortFunc(out, func(a, b domain.Import) int {
		return strings.Compare(a.Path, b.Path)
	})
	return out
}

// kindQualifiers returns the package qualifiers used by the model's declared kinds.
func kindQualifiers(m *domain.AttributeModel) map[string]bool {
	out := make(map[string]bool)
	for i := range m.Attributes {
		k := &m.Attributes[i].Kind
		for _, t := range []string{k.Elem, k.Key} {
			if q, _, ok := strings.Cut(t, "."); ok {
				out[q] = true
			}
		}
	}
	return out
}

// qualifiers returns the identifiers directly followed by a selector in src,
// skipping string and rune literals, comments and selector chains.
func qualifiers(src string) []string {
	var out []string
	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case c == '"' || c == '\'' || c == '`':
			i = skipLiteral(src, i)
		case c == '/' && i+1 < len(src) && src[i+1] == '/':
			return out
		case isIdentStart(c):
			start := i
			for i < len(src) && isIdentPart(src[i]) {
				i++
			}
			preceded := start > 0 && src[start-1] == '.'
			if !preceded && i+1 < len(src) && src[i] == '.' && isIdentStart(src[i+1]) {
				out = append(out, src[start:i])
			}
		case c >= '0' && c <= '9':
			for i < len(src) && (isIdentPart(src[i]) || src[i] == '.') {
				i++
			}
		default:
			i++
		}
	}
	return out
}

// skipLiteral returns the index just past the literal starting at i.
func skipLiteral(src string, i int) int {
	quote := src[i]
	i++
	for i < len(src) {
		switch src[i] {
		case '\\':
			if quote != '`' {
				i += 2
				continue
			}
		case quote:
			return i + 1
		}
		i++
	}
	return i
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
