// Package gosrc renders generated units as formatted Go source files.
package gosrc

import (
	"bytes"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"go.trai.ch/immut/internal/core/domain"
	"go.trai.ch/immut/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/tools/imports"
)

// Header marks every rendered file as generated.
const Header = "// Code generated by " + domain.GeneratorName + ". DO NOT EDIT."

var _ ports.SourceRenderer = (*Renderer)(nil)

// Renderer prints units and formats the result with goimports in
// format-only mode: imports are sorted and grouped but never added or dropped.
type Renderer struct{}

// NewRenderer creates a new Renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render prints the units routed to one output file, in order.
func (r *Renderer) Render(output string, units []domain.GeneratedUnit) ([]byte, error) {
	if len(units) == 0 {
		return nil, zerr.With(domain.Wrap(zerr.New("no units to render"), domain.ErrRenderFailed), "output", output)
	}

	pkg := units[0].Package
	for i := range units {
		if units[i].Package != pkg {
			return nil, zerr.With(zerr.With(
				domain.Wrap(zerr.New("units of one file must share a package"), domain.ErrRenderFailed),
				"output", output), "packages", pkg+","+units[i].Package)
		}
	}

	imps, err := mergeImports(units)
	if err != nil {
		return nil, zerr.With(domain.Wrap(err, domain.ErrRenderFailed), "output", output)
	}

	var buf bytes.Buffer
	buf.WriteString(Header + "\n\n")
	fmt.Fprintf(&buf, "package %s\n", pkg)

	if len(imps) > 0 {
		buf.WriteString("\nimport (\n")
		for _, imp := range imps {
			if imp.Alias != "" {
				fmt.Fprintf(&buf, "\t%s %s\n", imp.Alias, strconv.Quote(imp.Path))
			} else {
				fmt.Fprintf(&buf, "\t%s\n", strconv.Quote(imp.Path))
			}
		}
		buf.WriteString(")\n")
	}

	for i := range units {
		for j := range units[i].Members {
			buf.WriteString("\n")
			if err := writeMember(&buf, &units[i].Members[j]); err != nil {
				return nil, zerr.With(zerr.With(domain.Wrap(err, domain.ErrRenderFailed),
					"output", output), "source", units[i].Source.String())
			}
		}
	}

	formatted, err := imports.Process(output, buf.Bytes(), &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return nil, zerr.With(domain.Wrap(err, domain.ErrRenderFailed), "output", output)
	}
	return formatted, nil
}

// mergeImports unions the imports of every unit. One alias must not name two paths.
func mergeImports(units []domain.GeneratedUnit) ([]domain.Import, error) {
	byPath := make(map[string]domain.Import)
	byName := make(map[string]string)

	for i := range units {
		for _, imp := range units[i].Imports {
			name := imp.Alias
			if name == "" {
				name = imp.Path[strings.LastIndex(imp.Path, "/")+1:]
			}
			if prev, ok := byName[name]; ok && prev != imp.Path {
				return nil, zerr.With(zerr.With(zerr.New("import name is used for two paths"), "name", name),
					"paths", prev+","+imp.Path)
			}
			byName[name] = imp.Path
			byPath[imp.Path] = imp
		}
	}

	out := make([]domain.Import, 0, len(byPath))
	for _, imp := range byPath {
		out = append(out, imp)
	}
	slices.SortFunc(out, func(a, b domain.Import) int { return strings.Compare(a.Path, b.Path) })
	return out, nil
}

func writeMember(buf *bytes.Buffer, m *domain.Member) error {
	writeDoc(buf, m.Doc)

	switch m.Kind {
	case domain.MemberNestedType:
		fmt.Fprintf(buf, "type %s %s {\n", m.Name, m.Type)
		for i := range m.Members {
			f := &m.Members[i]
			if f.Kind != domain.MemberField {
				return zerr.With(zerr.New("type members must be fields"), "member", f.Name)
			}
			writeDoc(buf, f.Doc)
			fmt.Fprintf(buf, "\t%s %s\n", f.Name, f.Type)
		}
		buf.WriteString("}\n")
	case domain.MemberConstructor:
		fmt.Fprintf(buf, "func %s(%s)%s {\n", m.Name, params(m.Params), results(m.Results))
		writeBody(buf, m.Body)
		buf.WriteString("}\n")
	case domain.MemberMethod:
		if m.Receiver == nil {
			return zerr.With(zerr.New("method has no receiver"), "member", m.Name)
		}
		fmt.Fprintf(buf, "func (%s %s) %s(%s)%s {\n",
			m.Receiver.Name, m.Receiver.Type, m.Name, params(m.Params), results(m.Results))
		writeBody(buf, m.Body)
		buf.WriteString("}\n")
	default:
		return zerr.With(zerr.New("member kind cannot appear at file level"), "kind", m.Kind.String())
	}
	return nil
}

func writeDoc(buf *bytes.Buffer, doc string) {
	if doc == "" {
		return
	}
	for _, line := range strings.Split(doc, "\n") {
		buf.WriteString("// " + line + "\n")
	}
}

func writeBody(buf *bytes.Buffer, body []string) {
	for _, stmt := range body {
		for _, line := range strings.Split(stmt, "\n") {
			buf.WriteString("\t" + line + "\n")
		}
	}
}

func params(ps []domain.Param) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		if p.Variadic {
			parts[i] = p.Name + " ..." + p.Type
		} else {
			parts[i] = p.Name + " " + p.Type
		}
	}
	return strings.Join(parts, ", ")
}

func results(rs []string) string {
	switch len(rs) {
	case 0:
		return ""
	case 1:
		return " " + rs[0]
	default:
		return " (" + strings.Join(rs, ", ") + ")"
	}
}
