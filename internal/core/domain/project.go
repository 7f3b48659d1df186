package domain

import "path/filepath"

// Project is the result of one discovery pass over a workspace.
type Project struct {
	// Root is the directory holding immut.yaml.
	Root string
	// CacheDir is the incremental cache directory, relative to Root.
	CacheDir string
	// Style is the project-wide override fragment.
	Style StyleFragment
	// Patterns are the base-name globs selecting declaration files.
	Patterns []string
	// Files are the declaration files found, relative to Root, sorted.
	Files []string
	// Declarations are the candidate types of every file, in file then declaration order.
	Declarations []Declaration
}

// IsDeclarationFile reports whether a file with the given base name is read
// by the project, either as its config or as a declaration file.
func (p *Project) IsDeclarationFile(base string) bool {
	if base == ConfigFileName {
		return true
	}
	for _, pattern := range p.Patterns {
		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}
	}
	return false
}

// DependencyInfo is the part of a nested attribute's target model that shapes
// the code emitted for the model referencing it.
type DependencyInfo struct {
	Source     SourceID
	TypeName   string
	Style      EffectiveStyle
	HasBuilder bool
}
