package driver

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type watched struct {
	path   string
	result *Result
	err    error
}

func TestWatcherExpandsWrittenFiles(t *testing.T) {
	t.Parallel()
	e := demoEngine(t)
	dir := t.TempDir()

	events := make(chan watched, 8)
	w, err := NewWatcher(Processing{Extensions: []string{".mini"}}, e, ProcessFile,
		func(path string, result *Result, err error) {
			events <- watched{path, result, err}
		})
	require.NoError(t, err)
	require.NoError(t, w.Add(dir))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	writeFile(t, dir, "skip.txt", "unless (a) print 1;")
	path := writeFile(t, dir, "prog.mini", "unless (a) print 1;")

	select {
	case got := <-events:
		require.NoError(t, got.err)
		assert.Equal(t, path, got.path)
		assert.Equal(t, "if (!(a)) print 1;", got.result.Output())
	case <-time.After(5 * time.Second):
		t.Fatal("no expansion after the file was written")
	}

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	require.NoError(t, w.Close())
}

func TestWatcherAddMissingPath(t *testing.T) {
	t.Parallel()
	w, err := NewWatcher(Processing{}, new(mockRunner), ProcessFile, func(string, *Result, error) {})
	require.NoError(t, err)
	defer w.Close()

	err = w.Add(t.TempDir() + string(os.PathSeparator) + "missing")
	assert.Error(t, err)
}
