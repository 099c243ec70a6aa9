package recording

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanLangman/CM3070-FinalProject/pkg/storage"
)

func newTestService(t *testing.T) (*Service, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(storage.LocalConfig{BasePath: dir})
	require.NoError(t, err)
	return NewService(store), dir
}

func writeRecording(t *testing.T, dir, date, name string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, date), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, date, name), []byte("video"), 0o644))
}

func TestListGroupsByDate(t *testing.T) {
	svc, dir := newTestService(t)
	writeRecording(t, dir, "2026-08-29", "0_20260829100000.mp4")
	writeRecording(t, dir, "2026-08-29", "1_20260829100500.mp4")
	writeRecording(t, dir, "2026-08-30", "0_20260830090000.mp4")

	got, err := svc.List(context.Background())
	require.NoError(t, err)

	assert.Equal(t, map[string][]string{
		"2026-08-29": {"0_20260829100000.mp4", "1_20260829100500.mp4"},
		"2026-08-30": {"0_20260830090000.mp4"},
	}, got)
}

func TestListIgnoresStrayFiles(t *testing.T) {
	svc, dir := newTestService(t)
	writeRecording(t, dir, "2026-08-30", "0_20260830090000.mp4")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	got, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.NotContains(t, got, "")
}

func TestOpenMissingRecording(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Open(context.Background(), "2026-08-30", "missing.mp4")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpenStreamsBytes(t *testing.T) {
	svc, dir := newTestService(t)
	writeRecording(t, dir, "2026-08-30", "0_20260830090000.mp4")

	rc, err := svc.Open(context.Background(), "2026-08-30", "0_20260830090000.mp4")
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, []byte("video"), data)
}

func TestDelete(t *testing.T) {
	svc, dir := newTestService(t)
	writeRecording(t, dir, "2026-08-30", "0_20260830090000.mp4")

	require.NoError(t, svc.Delete(context.Background(), "2026-08-30", "0_20260830090000.mp4"))
	assert.NoFileExists(t, filepath.Join(dir, "2026-08-30", "0_20260830090000.mp4"))

	assert.ErrorIs(t, svc.Delete(context.Background(), "2026-08-30", "0_20260830090000.mp4"), ErrNotFound)
}

func TestRejectsTraversal(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct{ date, name string }{
		{"../..", "etc"},
		{"2026-08-30", "../secret"},
		{"2026-08-30", "a/b.mp4"},
		{"not-a-date", "file.mp4"},
	}
	for _, tc := range cases {
		_, err := svc.Open(ctx, tc.date, tc.name)
		assert.ErrorIs(t, err, ErrNotFound, "date=%q name=%q", tc.date, tc.name)
	}
}
