package domain_test

import (
	"path/filepath"
	"testing"

	"go.trai.ch/immut/internal/core/domain"
)

func TestLayoutPaths(t *testing.T) {
	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{
			name:     "DefaultImmutPath",
			got:      domain.DefaultImmutPath(),
			expected: ".immut",
		},
		{
			name:     "DefaultCachePath",
			got:      domain.DefaultCachePath(),
			expected: filepath.Join(".immut", "cache"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("%s() = %v, want %v", tt.name, tt.got, tt.expected)
			}
		})
	}
}
