package extractor

import (
	"regexp"
	"strings"

	"go.trai.ch/immut/internal/core/domain"
	"go.trai.ch/zerr"
)

var (
	identRe     = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	typeNameRe  = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)
	errNoScalar = zerr.New("element must be a plain or qualified type name")
)

// kindParser classifies declared kind tokens for one package.
type kindParser struct {
	pkg   string
	index *domain.TypeIndex
}

// parse classifies a declared kind token.
func (p kindParser) parse(token string) (domain.ValueKind, error) {
	tok := strings.TrimSpace(token)
	if tok == "" {
		return domain.ValueKind{}, domain.ErrUnclassifiableKind
	}

	if inner, ok := strings.CutPrefix(tok, "*"); ok {
		elem, err := p.scalar(inner)
		return domain.ValueKind{Form: domain.FormOptional, Elem: elem}, err
	}
	if inner, ok := unwrap(tok, "optional"); ok {
		elem, err := p.scalar(inner)
		return domain.ValueKind{Form: domain.FormOptional, Elem: elem}, err
	}
	if inner, ok := strings.CutPrefix(tok, "[]"); ok {
		elem, err := p.scalar(inner)
		return domain.ValueKind{Form: domain.FormCollection, Shape: domain.ShapeList, Elem: elem}, err
	}
	if inner, ok := unwrap(tok, "list"); ok {
		elem, err := p.scalar(inner)
		return domain.ValueKind{Form: domain.FormCollection, Shape: domain.ShapeList, Elem: elem}, err
	}
	if inner, ok := unwrap(tok, "set"); ok {
		elem, err := p.scalar(inner)
		return domain.ValueKind{Form: domain.FormCollection, Shape: domain.ShapeSet, Elem: elem}, err
	}
	if rest, ok := strings.CutPrefix(tok, "map["); ok {
		end := closingBracket(rest)
		if end < 0 {
			return domain.ValueKind{}, domain.ErrUnclassifiableKind
		}
		key, err := p.scalar(rest[:end])
		if err != nil {
			return domain.ValueKind{}, err
		}
		elem, err := p.scalar(rest[end+1:])
		return domain.ValueKind{Form: domain.FormCollection, Shape: domain.ShapeMap, Key: key, Elem: elem}, err
	}

	if !typeNameRe.MatchString(tok) {
		return domain.ValueKind{}, domain.ErrUnclassifiableKind
	}
	if ref, ok := p.lookup(tok); ok {
		return domain.ValueKind{Form: domain.FormNested, Ref: ref, RefType: tok}, nil
	}
	return domain.ValueKind{Form: domain.FormScalar, Elem: tok}, nil
}

// scalar accepts the element of a wrapper kind. Wrappers do not nest and
// cannot hold generated models.
func (p kindParser) scalar(token string) (string, error) {
	tok := strings.TrimSpace(token)
	if !typeNameRe.MatchString(tok) {
		return "", domain.Wrap(errNoScalar, domain.ErrUnclassifiableKind)
	}
	if _, ok := p.lookup(tok); ok {
		return "", zerr.With(domain.Wrap(errNoScalar, domain.ErrUnclassifiableKind), "model", tok)
	}
	return tok, nil
}

func (p kindParser) lookup(tok string) (domain.SourceID, bool) {
	if p.index == nil || strings.Contains(tok, ".") {
		return domain.SourceID{}, false
	}
	return p.index.Lookup(p.pkg, tok)
}

// unwrap returns the inside of "name[...]".
func unwrap(tok, name string) (string, bool) {
	rest, ok := strings.CutPrefix(tok, name+"[")
	if !ok {
		return "", false
	}
	if closingBracket(rest) != len(rest)-1 {
		return "", false
	}
	return rest[:len(rest)-1], true
}

// closingBracket returns the index of the bracket closing an already opened one, or -1.
func closingBracket(s string) int {
	depth := 1
	for i, r := range s {
		switch r {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
