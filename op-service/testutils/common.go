package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// IsolatedTestDirWithAutoCleanup returns a per-test directory, under
// TEST_ARTIFACTS_DIR if set, that is removed when the test ends.
func IsolatedTestDirWithAutoCleanup(t *testing.T) string {
	basePath := os.Getenv("TEST_ARTIFACTS_DIR")
	if basePath == "" {
		basePath = t.TempDir()
	}
	dir := filepath.Join(basePath, t.Name())
	require.NoError(t, os.MkdirAll(dir, 0o755))

	t.Cleanup(func() {
		require.NoError(t, os.RemoveAll(dir))
	})
	return dir
}

// WriteTestFile writes content to name inside dir and returns the full path.
func WriteTestFile(t *testing.T, dir string, name string, content string) string {
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}
