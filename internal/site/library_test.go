package site

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newLibrary(t *testing.T) (*Library, string) {
	t.Helper()
	dir := t.TempDir()
	return NewLibrary(dir, NewMarkdown(""), DefaultPageOptions(), time.Minute, discard()), dir
}

func TestSlug(t *testing.T) {
	tests := map[string]string{
		"content/A Paper.md":        "a-paper",
		"/x/y/Intro To Go.markdown": "intro-to-go",
		"Résumé.md":                 "resume",
	}
	for in, want := range tests {
		if got := Slug(in); got != want {
			t.Errorf("Slug(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLibrary_Get(t *testing.T) {
	lib, dir := newLibrary(t)
	writeFile(t, dir, "paper.md", paper)

	a, err := lib.Get("paper")
	require.NoError(t, err)
	assert.Equal(t, "paper", a.Slug)
	assert.Equal(t, "A Paper", a.Title)
	assert.Equal(t, 4, a.Outline.Len())
	assert.Contains(t, a.Page, `<h2 id="background">Background</h2>`)
	assert.Equal(t, 1, lib.Cached())
	assert.Equal(t, 1, lib.Stats().Snapshot().Count)
}

func TestLibrary_GetNested(t *testing.T) {
	lib, dir := newLibrary(t)
	writeFile(t, dir, "guides/Getting Started.md", paper)

	a, err := lib.Get("getting-started")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "guides", "Getting Started.md"), a.Path)
}

func TestLibrary_NotFound(t *testing.T) {
	lib, dir := newLibrary(t)
	writeFile(t, dir, "notes.txt", "not markdown")

	_, err := lib.Get("notes")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestLibrary_DraftHidden(t *testing.T) {
	lib, dir := newLibrary(t)
	writeFile(t, dir, "wip.md", "---\ndraft: true\n---\n# WIP\n")
	writeFile(t, dir, "done.md", paper)

	_, err := lib.Get("wip")
	assert.True(t, errors.Is(err, ErrNotFound))

	list, err := lib.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "done", list[0].Slug)
}

func TestLibrary_CacheHit(t *testing.T) {
	lib, dir := newLibrary(t)
	writeFile(t, dir, "paper.md", paper)

	first, err := lib.Get("paper")
	require.NoError(t, err)
	second, err := lib.Get("paper")
	require.NoError(t, err)

	assert.Same(t, first, second)
	snap := lib.Stats().Snapshot()
	assert.Equal(t, 1, snap.Count)
	assert.Equal(t, int64(1), snap.CacheHits)
}

func TestLibrary_SourceChangeRerenders(t *testing.T) {
	lib, dir := newLibrary(t)
	path := writeFile(t, dir, "paper.md", paper)

	first, err := lib.Get("paper")
	require.NoError(t, err)

	writeFile(t, dir, "paper.md", "# Rewritten\n\n## One\n\n## Two\n")
	later := first.ModTime.Add(time.Second)
	require.NoError(t, os.Chtimes(path, later, later))

	second, err := lib.Get("paper")
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Equal(t, "Rewritten", second.Title)
}

func TestLibrary_TTL(t *testing.T) {
	lib, dir := newLibrary(t)
	writeFile(t, dir, "paper.md", paper)

	now := time.Now()
	lib.now = func() time.Time { return now }
	first, err := lib.Get("paper")
	require.NoError(t, err)

	lib.now = func() time.Time { return now.Add(2 * time.Minute) }
	second, err := lib.Get("paper")
	require.NoError(t, err)
	assert.NotSame(t, first, second, "expired render is rebuilt")

	lib.now = func() time.Time { return now.Add(5 * time.Minute) }
	assert.Equal(t, 1, lib.Cleanup())
	assert.Equal(t, 0, lib.Cached())
}

func TestLibrary_Invalidate(t *testing.T) {
	lib, dir := newLibrary(t)
	writeFile(t, dir, "paper.md", paper)

	_, err := lib.Get("paper")
	require.NoError(t, err)
	lib.Invalidate("paper")
	assert.Equal(t, 0, lib.Cached())
}

func TestLibrary_RemovedSource(t *testing.T) {
	lib, dir := newLibrary(t)
	path := writeFile(t, dir, "paper.md", paper)

	_, err := lib.Get("paper")
	require.NoError(t, err)
	require.NoError(t, os.Remove(path))

	_, err = lib.Get("paper")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, 0, lib.Cached())
}

func TestLibrary_ListOrderedByTitle(t *testing.T) {
	lib, dir := newLibrary(t)
	writeFile(t, dir, "z.md", "# Alpha\n")
	writeFile(t, dir, "a.md", "# Gamma\n")
	writeFile(t, dir, "m.md", "---\ntitle: Beta\ndescription: middle\n---\n# Ignored\n")

	list, err := lib.List()
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"Alpha", "Beta", "Gamma"}, []string{list[0].Title, list[1].Title, list[2].Title})
	assert.Equal(t, "middle", list[1].Description)
}

func TestLibrary_MissingDir(t *testing.T) {
	lib := NewLibrary(filepath.Join(t.TempDir(), "gone"), NewMarkdown(""), DefaultPageOptions(), time.Minute, discard())
	_, err := lib.List()
	assert.Error(t, err)
}

func TestLibrary_StartStop(t *testing.T) {
	lib, _ := newLibrary(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	lib.Start(ctx)
	done := make(chan struct{})
	go func() {
		lib.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
}

func TestJanitorInterval(t *testing.T) {
	assert.Equal(t, time.Second, janitorInterval(100*time.Millisecond))
	assert.Equal(t, 30*time.Second, janitorInterval(time.Minute))
	assert.Equal(t, 5*time.Minute, janitorInterval(time.Hour))
}

func TestLibrary_ListScansOnce(t *testing.T) {
	lib, dir := newLibrary(t)
	writeFile(t, dir, "a.md", "# Alpha\n")
	writeFile(t, dir, "b.md", "# Beta\n")
	writeFile(t, dir, "nested/c.md", "# Gamma\n")

	list, err := lib.List()
	require.NoError(t, err)
	assert.Len(t, list, 3)
	assert.Equal(t, int64(1), lib.scans.Load())
	assert.Equal(t, 3, lib.Cached())

	_, err = lib.List()
	require.NoError(t, err)
	assert.Equal(t, int64(2), lib.scans.Load())
	assert.Equal(t, int64(3), lib.Stats().Snapshot().CacheHits)
}

func TestLibrary_SkipsHiddenDirs(t *testing.T) {
	lib, dir := newLibrary(t)
	writeFile(t, dir, "paper.md", paper)
	writeFile(t, dir, ".drafts/secret.md", "# Secret\n")

	_, err := lib.Get("secret")
	assert.True(t, errors.Is(err, ErrNotFound))

	list, err := lib.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "paper", list[0].Slug)
}
