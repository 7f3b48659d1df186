package domain

import "path/filepath"

const (
	// ImmutDirName is the name of the internal workspace directory.
	ImmutDirName = ".immut"

	// CacheDirName is the name of the incremental cache directory.
	CacheDirName = "cache"

	// ConfigFileName is the name of the project configuration file.
	ConfigFileName = "immut.yaml"

	// DefaultOutputSuffix is appended to a declaration file's base name to form its output path.
	DefaultOutputSuffix = "_immut.go"

	// GeneratorName identifies the tool in generated file headers.
	GeneratorName = "immut"

	// RuntimeImportPath is the import path of the package generated code depends on.
	RuntimeImportPath = "go.trai.ch/immut/immutable"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// DefaultDeclarationPatterns are the glob patterns used when the project config names none.
func DefaultDeclarationPatterns() []string {
	return []string{"*.immut.yaml", "*.immut.yml", "*.immut.toml"}
}

// DefaultImmutPath returns the default root directory for immut metadata.
func DefaultImmutPath() string {
	return ImmutDirName
}

// DefaultCachePath returns the default path of the incremental cache store.
// It joins .immut and cache.
func DefaultCachePath() string {
	return filepath.Join(ImmutDirName, CacheDirName)
}
