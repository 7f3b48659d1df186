package config

// ProjectFile represents the structure of the immut.yaml configuration file.
type ProjectFile struct {
	Version string `yaml:"version"`
	// Declarations are base-name glob patterns of declaration files.
	Declarations []string `yaml:"declarations"`
	// Ignore are base-name glob patterns of files and directories to skip.
	Ignore []string `yaml:"ignore"`
	Cache  CacheDTO `yaml:"cache"`
	Style  StyleDTO `yaml:"style"`
}

// CacheDTO configures the persistent incremental cache.
type CacheDTO struct {
	Dir string `yaml:"dir"`
}

// StyleDTO is a partial style override. Unset fields inherit from the
// enclosing scope.
type StyleDTO struct {
	Builder        *bool   `yaml:"builder" toml:"builder"`
	TypePrefix     *string `yaml:"typePrefix" toml:"typePrefix"`
	TypeSuffix     *string `yaml:"typeSuffix" toml:"typeSuffix"`
	BuilderSuffix  *string `yaml:"builderSuffix" toml:"builderSuffix"`
	AccessorPrefix *string `yaml:"accessorPrefix" toml:"accessorPrefix"`
	CopyWithPrefix *string `yaml:"copyWithPrefix" toml:"copyWithPrefix"`
	Collections    *string `yaml:"collections" toml:"collections"`
	Visibility     *string `yaml:"visibility" toml:"visibility"`
}

// DeclarationFile represents one *.immut.yaml or *.immut.toml file.
type DeclarationFile struct {
	// Package defaults to the name of the directory holding the file.
	Package string `yaml:"package" toml:"package"`
	// Output defaults to the file's stem with the _immut.go suffix.
	Output  string            `yaml:"output" toml:"output"`
	Imports map[string]string `yaml:"imports" toml:"imports"`
	Style   StyleDTO          `yaml:"style" toml:"style"`
	Types   []TypeDTO         `yaml:"types" toml:"types"`
}

// TypeDTO represents one declared type.
type TypeDTO struct {
	Name    string      `yaml:"name" toml:"name"`
	Style   StyleDTO    `yaml:"style" toml:"style"`
	Members []MemberDTO `yaml:"members" toml:"members"`
}

// MemberDTO represents one declared member of a type.
type MemberDTO struct {
	Name       string   `yaml:"name" toml:"name"`
	Kind       string   `yaml:"kind" toml:"kind"`
	Modifiers  []string `yaml:"modifiers" toml:"modifiers"`
	Default    string   `yaml:"default" toml:"default"`
	Body       string   `yaml:"body" toml:"body"`
	Params     []string `yaml:"params" toml:"params"`
	TypeParams []string `yaml:"typeParams" toml:"typeParams"`
}
