package app_test

import (
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/immut/internal/app"
	"go.trai.ch/immut/internal/core/domain"
)

const catalogYAML = `
types:
  - name: Money
    members:
      - name: cents
        kind: int64
        modifiers: [mandatory]
      - name: currency
        kind: string
        default: '"EUR"'
      - name: note
        kind: "*string"

  - name: Catalog
    style:
      builder: true
    members:
      - name: name
        kind: string
        modifiers: [mandatory]
      - name: type
        kind: string
      - name: v
        kind: int
      - name: tags
        kind: set[string]
      - name: prices
        kind: map[string]int
      - name: items
        kind: "[]string"
      - name: owner
        kind: Money
      - name: badge
        kind: Badge
      - name: timeout
        kind: time.Duration
      - name: retries
        kind: "*int"
        default: "3"
      - name: size
        kind: int
        body: len(v.items)
      - name: summary
        kind: string
        modifiers: [lazy]
        body: fmt.Sprintf("%s:%d", v.name, v.size)

  - name: Palette
    style:
      builder: true
      collections: replace
    members:
      - name: colors
        kind: set[string]
      - name: weights
        kind: map[string]float64
      - name: layers
        kind: "[]string"
`

const badgeYAML = `
style:
  visibility: package
types:
  - name: Badge
    members:
      - name: text
        kind: string
      - name: level
        kind: "*int"
        default: "1"
`

// runtimeImporter resolves the generated code's runtime package from this
// module's sources and everything else from the toolchain.
type runtimeImporter struct {
	fset     *token.FileSet
	fallback types.Importer
	runtime  *types.Package
}

func (r *runtimeImporter) Import(path string) (*types.Package, error) {
	if path != domain.RuntimeImportPath {
		return r.fallback.Import(path)
	}
	if r.runtime != nil {
		return r.runtime, nil
	}
	files, err := parseDir(r.fset, filepath.Join("..", "..", "immutable"))
	if err != nil {
		return nil, err
	}
	conf := types.Config{Importer: r.fallback}
	pkg, err := conf.Check(path, r.fset, files, nil)
	if err != nil {
		return nil, err
	}
	r.runtime = pkg
	return pkg, nil
}

// parseDir parses the non-test Go files of one directory.
func parseDir(fset *token.FileSet, dir string) ([]*ast.File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []*ast.File
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		f, err := parser.ParseFile(fset, filepath.Join(dir, name), nil, 0)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

func TestApp_Generate_OutputTypeChecks(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, domain.ConfigFileName, "version: \"1\"\n")
	writeFile(t, root, "catalog/catalog.immut.yaml", catalogYAML)
	writeFile(t, root, "catalog/badge.immut.yaml", badgeYAML)

	report, err := newApp(t, root, nil).app.Generate(t.Context(), app.GenerateOptions{NoCache: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"catalog/badge_immut.go", "catalog/catalog_immut.go"}, report.Changed)

	fset := token.NewFileSet()
	files, err := parseDir(fset, filepath.Join(root, "catalog"))
	require.NoError(t, err)
	require.Len(t, files, 2)

	conf := types.Config{Importer: &runtimeImporter{fset: fset, fallback: importer.Default()}}
	pkg, err := conf.Check("example.com/catalog", fset, files, nil)
	require.NoError(t, err)
	assert.Equal(t, "catalog", pkg.Name())

	scope := pkg.Scope()
	for _, name := range []string{
		"ImmutableMoney", "ImmutableMoneyBuilder",
		"ImmutableCatalog", "NewImmutableCatalog", "ImmutableCatalogBuilder",
		"ImmutablePalette", "ImmutablePaletteBuilder",
		"immutableBadge", "newImmutableBadge",
	} {
		assert.NotNil(t, scope.Lookup(name), name)
	}
	assert.Nil(t, scope.Lookup("ImmutableBadge"), "package-only types are unexported")
	assert.Nil(t, scope.Lookup("immutableBadgeBuilder"), "a type with no explicit attribute has no builder")

	builder := types.NewPointer(scope.Lookup("ImmutableCatalogBuilder").Type())
	for _, method := range []string{"Name", "Type", "V", "AddTags", "PutPrices", "AddItems", "Owner", "OwnerWith", "Badge", "Retries", "Build"} {
		obj, _, _ := types.LookupFieldOrMethod(builder, false, pkg, method)
		assert.NotNil(t, obj, method)
	}
	obj, _, _ := types.LookupFieldOrMethod(builder, false, pkg, "BadgeWith")
	assert.Nil(t, obj, "nested types without a builder get no nested builder method")

	palette := types.NewPointer(scope.Lookup("ImmutablePaletteBuilder").Type())
	for _, method := range []string{"Colors", "Weights", "Layers"} {
		obj, _, _ := types.LookupFieldOrMethod(palette, false, pkg, method)
		assert.NotNil(t, obj, method)
	}
	obj, _, _ = types.LookupFieldOrMethod(palette, false, pkg, "AddColors")
	assert.Nil(t, obj, "replace-whole collections have no adder")
}

func TestApp_Generate_ExamplesUpToDate(t *testing.T) {
	examples := filepath.Join("..", "..", "examples")
	root := t.TempDir()
	for _, rel := range []string{domain.ConfigFileName, "shapes/shapes.immut.yaml"} {
		data, err := os.ReadFile(filepath.Join(examples, rel))
		require.NoError(t, err)
		writeFile(t, root, rel, string(data))
	}

	report, err := newApp(t, root, nil).app.Generate(t.Context(), app.GenerateOptions{NoCache: true})
	require.NoError(t, err)
	require.Empty(t, report.Diagnostics)
	assert.Equal(t, []string{"shapes/shapes_immut.go"}, report.Changed)

	want, err := os.ReadFile(filepath.Join(examples, "shapes", "shapes_immut.go"))
	require.NoError(t, err)
	if diff := cmp.Diff(string(want), readFile(t, root, "shapes/shapes_immut.go")); diff != "" {
		t.Errorf("examples/shapes/shapes_immut.go is stale (-committed +generated):\n%s", diff)
	}
}
