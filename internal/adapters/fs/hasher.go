package fs

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/immut/internal/core/domain"
	"go.trai.ch/immut/internal/core/ports"
)

// fingerprintVersion changes whenever the emitted code shape changes, so that
// entries written by an older generator are never reused.
const fingerprintVersion = "immut-fingerprint/1"

var _ ports.Fingerprinter = (*Hasher)(nil)

// Hasher computes emission fingerprints.
type Hasher struct{}

// NewHasher creates a new Hasher.
func NewHasher() *Hasher {
	return &Hasher{}
}

// Fingerprint computes a single hash representing everything the emitted
// unit depends on: the artifact, the styled model and the nested models the
// unit refers to.
func (h *Hasher) Fingerprint(task *domain.EmissionTask, deps []domain.DependencyInfo) string {
	hasher := xxhash.New()

	write(hasher, fingerprintVersion)
	write(hasher, task.Kind.String())
	write(hasher, task.Attribute)
	section(hasher)

	h.hashModel(task.Model, hasher)
	h.hashDependencies(deps, hasher)

	return fmt.Sprintf("%016x", hasher.Sum64())
}

// hashModel hashes the model's identity, routing, imports and attributes.
func (h *Hasher) hashModel(m *domain.AttributeModel, hasher *xxhash.Digest) {
	write(hasher, m.Source.String())
	write(hasher, m.Package)
	write(hasher, m.TypeName)
	write(hasher, m.Output)
	section(hasher)

	// Sort aliases for determinism
	aliases := make([]string, 0, len(m.Imports))
	for alias := range m.Imports {
		aliases = append(aliases, alias)
	}
	slices.Sort(aliases)
	for _, alias := range aliases {
		write(hasher, alias+"="+m.Imports[alias])
	}
	section(hasher)

	for i := range m.Attributes {
		a := &m.Attributes[i]
		write(hasher, a.Name)
		write(hasher, a.Kind.Form.String())
		write(hasher, a.Kind.Shape.String())
		write(hasher, a.Kind.Elem)
		write(hasher, a.Kind.Key)
		write(hasher, a.Kind.Ref.String())
		write(hasher, a.Kind.RefType)
		write(hasher, strconv.FormatBool(a.Mandatory))
		write(hasher, strconv.FormatBool(a.HasDefault))
		write(hasher, a.Default)
		write(hasher, a.Derivation.Mode.String())
		write(hasher, a.Derivation.Expr)
		section(hasher)
	}
	section(hasher)

	if m.Style != nil {
		h.hashStyle(m.Style, hasher)
	}
	section(hasher)
}

func (h *Hasher) hashStyle(s *domain.EffectiveStyle, hasher *xxhash.Digest) {
	write(hasher, strconv.FormatBool(s.BuilderRequired))
	write(hasher, s.Naming.TypePrefix)
	write(hasher, s.Naming.TypeSuffix)
	write(hasher, s.Naming.BuilderSuffix)
	write(hasher, s.Naming.AccessorPrefix)
	write(hasher, s.Naming.CopyWithPrefix)
	write(hasher, s.Collections.String())
	write(hasher, s.Visibility.String())
}

// hashDependencies hashes nested model information in source order.
func (h *Hasher) hashDependencies(deps []domain.DependencyInfo, hasher *xxhash.Digest) {
	sorted := slices.Clone(deps)
	slices.SortFunc(sorted, func(a, b domain.DependencyInfo) int {
		switch as, bs := a.Source.String(), b.Source.String(); {
		case as < bs:
			return -1
		case as > bs:
			return 1
		default:
			return 0
		}
	})

	for i := range sorted {
		d := &sorted[i]
		write(hasher, d.Source.String())
		write(hasher, d.TypeName)
		write(hasher, strconv.FormatBool(d.HasBuilder))
		h.hashStyle(&d.Style, hasher)
		section(hasher)
	}
	section(hasher)
}

func write(hasher *xxhash.Digest, s string) {
	_, _ = hasher.WriteString(s)
	_, _ = hasher.Write([]byte{0}) // Separator
}

func section(hasher *xxhash.Digest) {
	_, _ = hasher.Write([]byte{1})
}
