// Package testutil provides utilities for testing.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// TemplateFiles is a minimal template application named test-one with a
// dev overlay only.
var TemplateFiles = map[string]string{
	"main.py":         "# Test-One service\nAPP = \"test-one\"\nPORT_VAR = \"TEST_ONE_PORT\"\n",
	"values.yaml":     "name: test-one\nimage: registry/TEST-ONE\n",
	"values-dev.yaml": "env: dev\nhost: test-one.dev.internal\n",
}

// WriteFiles writes files relative to dir, creating parent directories.
func WriteFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()

	for path, content := range files {
		fullPath := filepath.Join(dir, path)
		if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
			t.Fatalf("failed to create directory for %s: %v", path, err)
		}
		if err := os.WriteFile(fullPath, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write file %s: %v", path, err)
		}
	}
}

// WriteTemplateApp writes TemplateFiles under <root>/applications/test-one
// and returns the applications directory.
func WriteTemplateApp(t *testing.T, root string) string {
	t.Helper()

	appsDir := filepath.Join(root, "applications")
	files := make(map[string]string, len(TemplateFiles))
	for name, content := range TemplateFiles {
		files[filepath.Join("test-one", name)] = content
	}
	WriteFiles(t, appsDir, files)
	return appsDir
}

// ReadFile reads a file or fails the test.
func ReadFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}
