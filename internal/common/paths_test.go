package common

import (
	"path/filepath"
	"testing"
)

func TestCleanPath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"absolute path", "/tmp/driftcap/config.yaml", false},
		{"relative path", "config.yaml", false},
		{"traversal", "../../etc/passwd", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleaned, err := CleanPath(tt.path)
			if tt.wantErr {
				if err == nil {
					t.Errorf("CleanPath(%q) expected error, got %q", tt.path, cleaned)
				}
				return
			}
			if err != nil {
				t.Fatalf("CleanPath(%q) unexpected error: %v", tt.path, err)
			}
			if !filepath.IsAbs(cleaned) {
				t.Errorf("CleanPath(%q) = %q, expected absolute path", tt.path, cleaned)
			}
		})
	}
}
