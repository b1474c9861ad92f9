package repository

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ssim-converter-service/pkg/logger"
)

type failingWriter struct{}

func (failingWriter) WriteTo(w io.Writer) (int64, error) {
	n, _ := w.Write([]byte("partial"))
	return int64(n), errors.New("disk full")
}

func TestFileScheduleStore_Save(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	store, err := NewFileScheduleStore(dir, logger.NewNop())
	require.NoError(t, err)

	path, err := store.Save(context.Background(), "../TS_20250820_01SEP25-30SEP25.ssim", strings.NewReader("line\n"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "TS_20250820_01SEP25-30SEP25.ssim"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "line\n", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileScheduleStore_FailedWriteLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileScheduleStore(dir, logger.NewNop())
	require.NoError(t, err)

	_, err = store.Save(context.Background(), "x.ssim", failingWriter{})
	assert.ErrorContains(t, err, "disk full")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFileScheduleStore_CancelledContext(t *testing.T) {
	store, err := NewFileScheduleStore(t.TempDir(), logger.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = store.Save(ctx, "x.ssim", strings.NewReader(""))
	assert.ErrorIs(t, err, context.Canceled)
}
