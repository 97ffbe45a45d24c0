package driver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScan(t *testing.T) {
	t.Parallel()
	tempDir := t.TempDir()

	files := map[string]string{
		"file1.mini":        "print 1;",
		"file2.calc":        "1 + 2",
		"file3.txt":         "This is a text file",
		"subdir/file4.mini": "print 4;",
	}
	for path, content := range files {
		fullPath := filepath.Join(tempDir, path)
		require.NoError(t, os.MkdirAll(filepath.Dir(fullPath), 0o755))
		require.NoError(t, os.WriteFile(fullPath, []byte(content), 0o644))
	}

	scanned, err := Scan(tempDir, []string{".mini", ".calc"})
	require.NoError(t, err)

	var paths []string
	for _, f := range scanned {
		paths = append(paths, f.Path)
		assert.Greater(t, f.Size, int64(0), "File size should be greater than 0")
	}
	assert.Equal(t, []string{
		filepath.Join(tempDir, "file1.mini"),
		filepath.Join(tempDir, "file2.calc"),
		filepath.Join(tempDir, "subdir/file4.mini"),
	}, paths, "files come in lexical order")

	all, err := Scan(tempDir, nil)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	_, err = Scan(filepath.Join(tempDir, "missing"), nil)
	assert.Error(t, err)
}
