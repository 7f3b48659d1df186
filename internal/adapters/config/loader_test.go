package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/immut/internal/adapters/config"
	"go.trai.ch/immut/internal/adapters/fs"
	"go.trai.ch/immut/internal/core/domain"
	"go.trai.ch/immut/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func createFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), domain.DirPerm))
	require.NoError(t, os.WriteFile(path, []byte(content), domain.FilePerm))
}

func newLoader(t *testing.T) (*config.Loader, *mocks.MockLogger) {
	t.Helper()
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	return config.NewLoader(mockLogger, fs.NewWalker()), mockLogger
}

const shapesYAML = `
imports:
  uuid: github.com/google/uuid
style:
  collections: replace
types:
  - name: Point
    members:
      - name: x
        kind: int
        modifiers: [mandatory]
      - name: y
        kind: int
        modifiers: [mandatory]
      - name: label
        kind: optional[string]
  - name: Line
    style:
      builder: true
      typePrefix: ""
    members:
      - name: start
        kind: Point
      - name: end
        kind: Point
      - name: length
        kind: float64
        modifiers: [lazy]
        body: math.Hypot(float64(v.end.X()-v.start.X()), float64(v.end.Y()-v.start.Y()))
`

func TestLoader_Load(t *testing.T) {
	loader, _ := newLoader(t)
	root := t.TempDir()

	createFile(t, root, domain.ConfigFileName, `
version: "1"
style:
  typePrefix: Frozen
`)
	createFile(t, root, "shapes/shapes.immut.yaml", shapesYAML)

	project, err := loader.Load(filepath.Join(root, "shapes"))
	require.NoError(t, err)

	assert.Equal(t, root, project.Root)
	assert.Equal(t, domain.DefaultCachePath(), project.CacheDir)
	require.NotNil(t, project.Style.TypePrefix)
	assert.Equal(t, "Frozen", *project.Style.TypePrefix)
	assert.Equal(t, []string{"shapes/shapes.immut.yaml"}, project.Files)

	require.Len(t, project.Declarations, 2)
	point := project.Declarations[0]
	assert.Equal(t, "shapes/shapes.immut.yaml#Point", point.Source.String())
	assert.Equal(t, "shapes", point.Package)
	assert.Equal(t, "Point", point.TypeName)
	assert.Equal(t, "shapes/shapes_immut.go", point.Output)
	assert.Equal(t, map[string]string{"uuid": "github.com/google/uuid"}, point.Imports)
	require.Len(t, point.Members, 3)
	assert.Equal(t, domain.RawMember{Name: "x", Kind: "int", Modifiers: []string{"mandatory"}}, point.Members[0])

	require.NotNil(t, point.Scope.Collections)
	assert.Equal(t, domain.ReplaceWhole, *point.Scope.Collections)
	assert.True(t, point.Style.IsEmpty())

	line := project.Declarations[1]
	require.NotNil(t, line.Style.BuilderRequired)
	assert.True(t, *line.Style.BuilderRequired)
	require.NotNil(t, line.Style.TypePrefix)
	assert.Empty(t, *line.Style.TypePrefix)
	assert.Contains(t, line.Members[2].Body, "math.Hypot")
}

func TestLoader_Load_TOML(t *testing.T) {
	loader, mockLogger := newLoader(t)
	root := t.TempDir()

	createFile(t, root, domain.ConfigFileName, `
declarations: ["*.immut.toml"]
cache:
  dir: .cache/immut
`)
	createFile(t, root, "model/events.immut.toml", `
package = "events"
output = "zz_generated.go"
colour = "blue"

[imports]
time = "time"

[[types]]
name = "Event"

[types.style]
visibility = "package"

[[types.members]]
name = "at"
kind = "time.Time"
modifiers = ["required"]

[[types.members]]
name = "tags"
kind = "set[string]"
`)
	mockLogger.EXPECT().Warn(`model/events.immut.toml: unknown key "colour" ignored`).Times(1)

	project, err := loader.Load(root)
	require.NoError(t, err)

	assert.Equal(t, ".cache/immut", project.CacheDir)
	require.Len(t, project.Declarations, 1)
	ev := project.Declarations[0]
	assert.Equal(t, "events", ev.Package)
	assert.Equal(t, "model/zz_generated.go", ev.Output)
	require.NotNil(t, ev.Style.Visibility)
	assert.Equal(t, domain.PackageOnly, *ev.Style.Visibility)
	assert.Equal(t, []domain.RawMember{
		{Name: "at", Kind: "time.Time", Modifiers: []string{"required"}},
		{Name: "tags", Kind: "set[string]"},
	}, ev.Members)
}

func TestLoader_Load_Ordering(t *testing.T) {
	loader, _ := newLoader(t)
	root := t.TempDir()

	createFile(t, root, domain.ConfigFileName, "")
	createFile(t, root, "b/b.immut.yaml", "types:\n  - name: B\n    members: [{name: x, kind: int}]\n")
	createFile(t, root, "a/a.immut.yml", "types:\n  - name: A2\n    members: [{name: x, kind: int}]\n  - name: A1\n    members: [{name: x, kind: int}]\n")
	createFile(t, root, "vendor/v/v.immut.yaml", "types: [{name: V}]\n")
	createFile(t, root, "top.immut.yaml", "types: [{name: Top, members: [{name: x, kind: int}]}]\n")

	project, err := loader.Load(root)
	require.NoError(t, err)

	assert.Equal(t, []string{"a/a.immut.yml", "b/b.immut.yaml", "top.immut.yaml"}, project.Files)
	var names []string
	for _, d := range project.Declarations {
		names = append(names, d.TypeName)
	}
	assert.Equal(t, []string{"A2", "A1", "B", "Top"}, names)
	assert.Equal(t, filepath.Base(root), project.Declarations[3].Package)
	assert.Equal(t, "top_immut.go", project.Declarations[3].Output)
}

func TestLoader_Load_Ignore(t *testing.T) {
	loader, _ := newLoader(t)
	root := t.TempDir()

	createFile(t, root, domain.ConfigFileName, "ignore: [testdata]\n")
	createFile(t, root, "testdata/x.immut.yaml", "types: [{name: X}]\n")
	createFile(t, root, "p/p.immut.yaml", "types: [{name: P, members: [{name: x, kind: int}]}]\n")

	project, err := loader.Load(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"p/p.immut.yaml"}, project.Files)
}

func TestLoader_Load_Warnings(t *testing.T) {
	loader, mockLogger := newLoader(t)
	root := t.TempDir()

	createFile(t, root, domain.ConfigFileName, "version: \"2\"\n")
	createFile(t, root, "empty.immut.yaml", "package: p\n")

	mockLogger.EXPECT().Warn(`immut.yaml declares version "2", expected "1"`).Times(1)
	mockLogger.EXPECT().Warn("empty.immut.yaml declares no types").Times(1)

	project, err := loader.Load(root)
	require.NoError(t, err)
	assert.Empty(t, project.Declarations)
}

func TestLoader_Load_Errors(t *testing.T) {
	tests := []struct {
		name        string
		files       map[string]string
		expectedErr error
		errContains string
	}{
		{
			name:        "NoProjectFile",
			files:       map[string]string{"x.immut.yaml": "types: []"},
			expectedErr: domain.ErrConfigNotFound,
		},
		{
			name:        "UnknownProjectField",
			files:       map[string]string{domain.ConfigFileName: "declaraions: []\n"},
			expectedErr: domain.ErrConfigParseFailed,
		},
		{
			name: "InvalidProjectStyle",
			files: map[string]string{
				domain.ConfigFileName: "style:\n  collections: prepend\n",
			},
			expectedErr: domain.ErrInvalidStyleValue,
		},
		{
			name: "InvalidTypeStyle",
			files: map[string]string{
				domain.ConfigFileName: "",
				"p.immut.yaml":        "types:\n  - name: P\n    style: {visibility: private}\n",
			},
			expectedErr: domain.ErrInvalidStyleValue,
		},
		{
			name: "MalformedDeclaration",
			files: map[string]string{
				domain.ConfigFileName: "",
				"p.immut.yaml":        "types: {name: P\n",
			},
			expectedErr: domain.ErrConfigParseFailed,
		},
		{
			name: "MalformedTOML",
			files: map[string]string{
				domain.ConfigFileName: "declarations: ['*.immut.toml']\n",
				"p.immut.toml":        "[[types]\n",
			},
			expectedErr: domain.ErrConfigParseFailed,
		},
		{
			name: "UnsupportedFormat",
			files: map[string]string{
				domain.ConfigFileName: "declarations: ['*.decl']\n",
				"p.decl":              "",
			},
			expectedErr: domain.ErrUnsupportedDeclarationFormat,
		},
		{
			name: "InvalidPattern",
			files: map[string]string{
				domain.ConfigFileName: "declarations: ['[']\n",
			},
			errContains: "invalid declaration pattern",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader, mockLogger := newLoader(t)
			mockLogger.EXPECT().Warn(gomock.Any()).AnyTimes()

			root := t.TempDir()
			for name, content := range tt.files {
				createFile(t, root, name, content)
			}

			_, err := loader.Load(root)
			require.Error(t, err)
			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)
			}
			if tt.errContains != "" {
				require.ErrorContains(t, err, tt.errContains)
			}
		})
	}
}

func TestLoader_DiscoverRoot(t *testing.T) {
	loader, _ := newLoader(t)
	root := t.TempDir()
	createFile(t, root, domain.ConfigFileName, "")
	deep := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(deep, domain.DirPerm))

	got, err := loader.DiscoverRoot(deep)
	require.NoError(t, err)
	assert.Equal(t, root, got)
}
