package domain

import (
	"unicode"
	"unicode/utf8"
)

// Exported returns name with its first letter upper-cased.
func Exported(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return string(unicode.ToUpper(r)) + name[size:]
}

// Unexported returns name with its first letter lower-cased.
func Unexported(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return string(unicode.ToLower(r)) + name[size:]
}
