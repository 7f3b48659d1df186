// Package config provides the project and declaration loader for immut.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"go.trai.ch/immut/internal/adapters/fs"
	"go.trai.ch/immut/internal/core/domain"
	"go.trai.ch/immut/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// SupportedVersion is the only project file version the loader understands.
const SupportedVersion = "1"

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader implements ports.ConfigLoader over immut.yaml and the declaration
// files it names.
type Loader struct {
	Logger ports.Logger
	walker *fs.Walker
}

// NewLoader creates a new Loader with the given logger and walker.
func NewLoader(logger ports.Logger, walker *fs.Walker) *Loader {
	return &Loader{Logger: logger, walker: walker}
}

// DiscoverRoot walks up from cwd to the directory holding immut.yaml.
func (l *Loader) DiscoverRoot(cwd string) (string, error) {
	abs, err := filepath.Abs(cwd)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to resolve working directory"), "cwd", cwd)
	}

	currentDir := abs
	for {
		if _, err := os.Stat(filepath.Join(currentDir, domain.ConfigFileName)); err == nil {
			return currentDir, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root
			break
		}
		currentDir = parentDir
	}

	return "", domain.Annotate(domain.ErrConfigNotFound, "cwd", cwd)
}

// Load finds the project root from cwd, reads immut.yaml and every
// declaration file matching its patterns. Files are read in sorted order and
// types in file order, so the declaration order is deterministic.
func (l *Loader) Load(cwd string) (*domain.Project, error) {
	root, err := l.DiscoverRoot(cwd)
	if err != nil {
		return nil, err
	}

	var pf ProjectFile
	if err := readYAML(filepath.Join(root, domain.ConfigFileName), &pf); err != nil {
		return nil, domain.Annotate(err, "file", domain.ConfigFileName)
	}
	if pf.Version != "" && pf.Version != SupportedVersion {
		l.Logger.Warn(fmt.Sprintf("%s declares version %q, expected %q", domain.ConfigFileName, pf.Version, SupportedVersion))
	}

	style, err := pf.Style.fragment()
	if err != nil {
		return nil, domain.Annotate(err, "file", domain.ConfigFileName)
	}

	project := &domain.Project{
		Root:     root,
		CacheDir: pf.Cache.Dir,
		Style:    style,
	}
	if project.CacheDir == "" {
		project.CacheDir = domain.DefaultCachePath()
	}

	patterns := pf.Declarations
	if len(patterns) == 0 {
		patterns = domain.DefaultDeclarationPatterns()
	}
	project.Patterns = patterns
	project.Files, err = l.walker.Match(root, patterns, pf.Ignore)
	if err != nil {
		return nil, err
	}

	for _, rel := range project.Files {
		decls, err := l.loadDeclarations(root, rel)
		if err != nil {
			return nil, domain.Annotate(err, "file", rel)
		}
		project.Declarations = append(project.Declarations, decls...)
	}
	return project, nil
}

// loadDeclarations reads one declaration file. rel is slash-separated and
// relative to root.
func (l *Loader) loadDeclarations(root, rel string) ([]domain.Declaration, error) {
	var df DeclarationFile
	abs := filepath.Join(root, filepath.FromSlash(rel))

	switch ext := path.Ext(rel); ext {
	case ".yaml", ".yml":
		if err := readYAML(abs, &df); err != nil {
			return nil, err
		}
	case ".toml":
		undecoded, err := readTOML(abs, &df)
		if err != nil {
			return nil, err
		}
		for _, key := range undecoded {
			l.Logger.Warn(fmt.Sprintf("%s: unknown key %q ignored", rel, key))
		}
	default:
		return nil, domain.Annotate(domain.ErrUnsupportedDeclarationFormat, "extension", ext)
	}

	if len(df.Types) == 0 {
		l.Logger.Warn(fmt.Sprintf("%s declares no types", rel))
		return nil, nil
	}

	scope, err := df.Style.fragment()
	if err != nil {
		return nil, err
	}

	dir := path.Dir(rel)
	pkg := df.Package
	if pkg == "" {
		pkg = packageName(root, dir)
	}
	output := df.Output
	if output == "" {
		output = stem(path.Base(rel)) + domain.DefaultOutputSuffix
	}
	output = path.Join(dir, output)

	decls := make([]domain.Declaration, 0, len(df.Types))
	for i := range df.Types {
		t := &df.Types[i]
		style, err := t.Style.fragment()
		if err != nil {
			return nil, domain.Annotate(err, "type", t.Name)
		}

		members := make([]domain.RawMember, len(t.Members))
		for j, m := range t.Members {
			members[j] = domain.RawMember{
				Name:       m.Name,
				Kind:       m.Kind,
				Modifiers:  m.Modifiers,
				Default:    m.Default,
				Body:       m.Body,
				Params:     m.Params,
				TypeParams: m.TypeParams,
			}
		}

		decls = append(decls, domain.Declaration{
			Source:   domain.NewSourceID(rel + "#" + t.Name),
			Package:  pkg,
			TypeName: t.Name,
			Members:  members,
			Scope:    scope,
			Style:    style,
			Imports:  df.Imports,
			Output:   output,
		})
	}
	return decls, nil
}

// fragment converts the DTO, parsing enum spellings.
func (s *StyleDTO) fragment() (domain.StyleFragment, error) {
	f := domain.StyleFragment{
		BuilderRequired: s.Builder,
		TypePrefix:      s.TypePrefix,
		TypeSuffix:      s.TypeSuffix,
		BuilderSuffix:   s.BuilderSuffix,
		AccessorPrefix:  s.AccessorPrefix,
		CopyWithPrefix:  s.CopyWithPrefix,
	}
	if s.Collections != nil {
		c, err := domain.ParseCollectionStrategy(*s.Collections)
		if err != nil {
			return domain.StyleFragment{}, err
		}
		f.Collections = &c
	}
	if s.Visibility != nil {
		v, err := domain.ParseVisibility(*s.Visibility)
		if err != nil {
			return domain.StyleFragment{}, err
		}
		f.Visibility = &v
	}
	return f, nil
}

// packageName names the package of a declaration file in dir after the
// directory, falling back to the root directory for top-level files.
func packageName(root, dir string) string {
	if dir == "." {
		return filepath.Base(root)
	}
	return path.Base(dir)
}

// stem strips every extension: "shapes.immut.yaml" becomes "shapes".
func stem(name string) string {
	if i := strings.IndexByte(name, '.'); i > 0 {
		return name[:i]
	}
	return name
}

// readYAML reads a YAML file and unmarshals it into the target struct,
// rejecting unknown fields.
func readYAML[T any](configPath string, target *T) error {
	// #nosec G304 -- configPath is built from the discovered root
	data, err := os.ReadFile(configPath)
	if err != nil {
		return domain.Wrap(err, domain.ErrConfigReadFailed)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(target); err != nil && !errors.Is(err, io.EOF) {
		return domain.Wrap(err, domain.ErrConfigParseFailed)
	}
	return nil
}

// readTOML reads a TOML file into the target struct and returns the keys it
// did not recognize.
func readTOML[T any](configPath string, target *T) ([]string, error) {
	// #nosec G304 -- configPath is built from the discovered root
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, domain.Wrap(err, domain.ErrConfigReadFailed)
	}

	md, err := toml.Decode(string(data), target)
	if err != nil {
		return nil, domain.Wrap(err, domain.ErrConfigParseFailed)
	}

	var undecoded []string
	for _, key := range md.Undecoded() {
		undecoded = append(undecoded, key.String())
	}
	return undecoded, nil
}
