package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNoteService(t *testing.T) (*NoteService, string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "todo.md"), []byte("# 待办\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("# 笔记\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "image.png"), []byte{0x89}, 0o644))

	svc, err := NewNoteService(&NoteConfig{Dirs: []string{dir}}, nil)
	require.NoError(t, err)
	return svc, dir
}

func TestNoteList(t *testing.T) {
	svc, _ := newTestNoteService(t)

	files, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 2)

	names := []string{files[0].Filename, files[1].Filename}
	assert.ElementsMatch(t, []string{"todo.md", "notes.md"}, names)
}

func TestNoteListMissingDir(t *testing.T) {
	svc, err := NewNoteService(&NoteConfig{Dirs: []string{"/nonexistent/notes"}}, nil)
	require.NoError(t, err)

	files, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestNoteRead(t *testing.T) {
	svc, dir := newTestNoteService(t)

	content, err := svc.Read(context.Background(), filepath.Join(dir, "todo.md"))
	require.NoError(t, err)
	assert.Equal(t, "# 待办\n", content)
}

func TestNoteReadTraversalRejected(t *testing.T) {
	svc, dir := newTestNoteService(t)

	_, err := svc.Read(context.Background(), filepath.Join(dir, "..", "escape.md"))
	assert.ErrorIs(t, err, ErrNoteOutsideRoot)

	_, err = svc.Read(context.Background(), "/etc/passwd.md")
	assert.ErrorIs(t, err, ErrNoteOutsideRoot)
}

func TestNoteReadNonMarkdown(t *testing.T) {
	svc, dir := newTestNoteService(t)

	_, err := svc.Read(context.Background(), filepath.Join(dir, "image.png"))
	assert.ErrorIs(t, err, ErrNotMarkdown)
}

func TestNoteReadNotFound(t *testing.T) {
	svc, dir := newTestNoteService(t)

	_, err := svc.Read(context.Background(), filepath.Join(dir, "missing.md"))
	assert.ErrorIs(t, err, ErrNoteNotFound)
}
