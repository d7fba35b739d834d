// Package site turns a directory of markdown articles into pages that carry
// the table of contents widget, and caches the result.
package site

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gosimple/slug"

	"github.com/dgallion1/sidetoc/internal/doctree"
)

// ErrNotFound is returned for slugs with no published article.
var ErrNotFound = errors.New("article not found")

// Article is one rendered markdown source.
type Article struct {
	Slug       string           `json:"slug"`
	Path       string           `json:"-"`
	Title      string           `json:"title"`
	Meta       Meta             `json:"meta"`
	Outline    *doctree.Outline `json:"outline"`
	Minutes    int              `json:"reading_minutes"`
	Page       string           `json:"-"`
	ModTime    time.Time        `json:"mod_time"`
	RenderedAt time.Time        `json:"rendered_at"`
}

// Slug derives an article slug from its file name.
func Slug(path string) string {
	base := filepath.Base(path)
	return slug.Make(strings.TrimSuffix(base, filepath.Ext(base)))
}

func isMarkdown(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

// Library serves articles from a content directory through a render cache
// with TTL eviction.
type Library struct {
	dir   string
	md    *Markdown
	opts  PageOptions
	ttl   time.Duration
	stats *Stats
	log   *slog.Logger
	now   func() time.Time
	scans atomic.Int64

	mu    sync.Mutex
	cache map[string]*Article

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewLibrary(dir string, md *Markdown, opts PageOptions, ttl time.Duration, log *slog.Logger) *Library {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Library{
		dir:   dir,
		md:    md,
		opts:  opts,
		ttl:   ttl,
		stats: NewStats(time.Hour),
		log:   log,
		now:   time.Now,
		cache: make(map[string]*Article),
	}
}

// Dir returns the content directory.
func (l *Library) Dir() string {
	return l.dir
}

// Stats returns the render latency tracker.
func (l *Library) Stats() *Stats {
	return l.stats
}

// Start launches the cache janitor.
func (l *Library) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		ticker := time.NewTicker(janitorInterval(l.ttl))
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := l.Cleanup(); n > 0 {
					l.log.Debug("evicted rendered articles", "count", n)
				}
			}
		}
	}()
}

// Stop halts the janitor and waits for it to exit.
func (l *Library) Stop() {
	if l.cancel != nil {
		l.cancel()
	}
	l.wg.Wait()
}

func janitorInterval(ttl time.Duration) time.Duration {
	return min(max(ttl/2, time.Second), 5*time.Minute)
}

// Get returns the rendered article for slug. Cached renders are reused
// until they expire or their source file changes.
func (l *Library) Get(slug string) (*Article, error) {
	if a := l.cached(slug); a != nil {
		return a, nil
	}

	sources, err := l.sources()
	if err != nil {
		return nil, err
	}
	path, ok := sources[slug]
	if !ok {
		l.Invalidate(slug)
		return nil, fmt.Errorf("%s: %w", slug, ErrNotFound)
	}
	return l.render(slug, path)
}

func (l *Library) cached(slug string) *Article {
	l.mu.Lock()
	a := l.cache[slug]
	l.mu.Unlock()

	if a == nil || !l.fresh(a) {
		return nil
	}
	l.stats.Hit()
	return a
}

// render loads the source at path and caches it under slug.
func (l *Library) render(slug, path string) (*Article, error) {
	a, err := l.load(slug, path)
	if err != nil {
		return nil, err
	}
	if a.Meta.Draft {
		l.Invalidate(slug)
		return nil, fmt.Errorf("%s is a draft: %w", slug, ErrNotFound)
	}

	l.mu.Lock()
	l.cache[slug] = a
	l.mu.Unlock()
	return a, nil
}

func (l *Library) fresh(a *Article) bool {
	if l.now().Sub(a.RenderedAt) > l.ttl {
		return false
	}
	info, err := os.Stat(a.Path)
	return err == nil && info.ModTime().Equal(a.ModTime)
}

func (l *Library) load(slug, path string) (*Article, error) {
	start := time.Now()

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	r, err := l.md.Render(src)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", path, err)
	}
	page, err := Page(slug, r, l.opts, l.log)
	if err != nil {
		return nil, fmt.Errorf("page %s: %w", path, err)
	}

	elapsed := time.Since(start)
	l.stats.Record(elapsed)
	l.log.Debug("rendered article", "slug", slug, "duration_ms", elapsed.Milliseconds(), "entries", r.Outline.Len())

	return &Article{
		Slug:       slug,
		Path:       path,
		Title:      articleTitle(slug, r),
		Meta:       r.Meta,
		Outline:    r.Outline,
		Minutes:    ReadingMinutes(r.Words),
		Page:       page,
		ModTime:    info.ModTime(),
		RenderedAt: l.now(),
	}, nil
}

// HiddenDir reports whether d is a dot-directory below root. Content in
// hidden directories is neither served nor watched.
func HiddenDir(root, path string, d fs.DirEntry) bool {
	return d.IsDir() && path != root && strings.HasPrefix(d.Name(), ".")
}

// sources maps slugs to markdown files under the content directory. When two
// files share a slug the first in lexical order wins.
func (l *Library) sources() (map[string]string, error) {
	l.scans.Add(1)
	out := make(map[string]string)
	err := filepath.WalkDir(l.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if HiddenDir(l.dir, path, d) {
			return filepath.SkipDir
		}
		if d.IsDir() || !isMarkdown(path) {
			return nil
		}
		s := Slug(path)
		if prev, dup := out[s]; dup {
			l.log.Warn("duplicate article slug", "slug", s, "kept", prev, "skipped", path)
			return nil
		}
		out[s] = path
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", l.dir, err)
	}
	return out, nil
}

// List returns every published article, ordered by title.
func (l *Library) List() ([]IndexEntry, error) {
	sources, err := l.sources()
	if err != nil {
		return nil, err
	}

	entries := make([]IndexEntry, 0, len(sources))
	for s, path := range sources {
		a, err := l.cached(s), error(nil)
		if a == nil {
			a, err = l.render(s, path)
		}
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			l.log.Warn("skipping article", "slug", s, "error", err)
			continue
		}
		entries = append(entries, IndexEntry{
			Slug:        a.Slug,
			Title:       a.Title,
			Description: a.Meta.Description,
			Minutes:     a.Minutes,
		})
	}
	slices.SortFunc(entries, func(a, b IndexEntry) int {
		return cmp.Or(cmp.Compare(a.Title, b.Title), cmp.Compare(a.Slug, b.Slug))
	})
	return entries, nil
}

// Invalidate drops the cached render for slug.
func (l *Library) Invalidate(slug string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.cache, slug)
}

// Cleanup removes expired renders and returns how many it removed.
func (l *Library) Cleanup() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	removed := 0
	for s, a := range l.cache {
		if now.Sub(a.RenderedAt) > l.ttl {
			delete(l.cache, s)
			removed++
		}
	}
	return removed
}

// Cached returns the number of renders held in the cache.
func (l *Library) Cached() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.cache)
}
