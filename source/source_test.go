package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhere(t *testing.T) {
	t.Parallel()
	src := Named("test.mini", "let x = 1\nprint \"é\" x\n\nend")

	tests := []struct {
		name   string
		offset int
		line   int
		column int
	}{
		{"start", 0, 1, 1},
		{"middle of first line", 4, 1, 5},
		{"newline belongs to its line", 9, 1, 10},
		{"second line start", 10, 2, 1},
		{"columns count runes", 19, 2, 9},
		{"empty line", 23, 3, 1},
		{"last line", 24, 4, 1},
		{"past end is clamped", 100, 4, 4},
		{"negative is clamped", -3, 1, 1},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			pos := src.Where(tt.offset)
			assert.Equal(t, tt.line, pos.Line)
			assert.Equal(t, tt.column, pos.Column)
			assert.Equal(t, "test.mini", pos.Filename)
		})
	}
}

func TestPositionString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "a.mini:2:3", Position{Filename: "a.mini", Line: 2, Column: 3}.String())
	assert.Equal(t, "line 1, column 4", Position{Line: 1, Column: 4}.String())
	assert.Equal(t, "line 1, column 1 (in composed source)", Composed("x").Where(0).String())
}

func TestSlice(t *testing.T) {
	t.Parallel()
	src := New("hello world")
	assert.Equal(t, "hello", src.Slice(0, 5))
	assert.Equal(t, "world", src.Slice(6, 50))
	assert.Equal(t, "", src.Slice(8, 2))
	assert.Equal(t, 11, src.Len())
	assert.False(t, src.IsComposed())
}

func TestReadFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "in.mini")
	require.NoError(t, os.WriteFile(path, []byte("print 1\n"), 0o644))

	src, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, src.Name())
	assert.Equal(t, "print 1\n", src.Text())

	_, err = ReadFile(filepath.Join(dir, "missing.mini"))
	assert.Error(t, err)
}
