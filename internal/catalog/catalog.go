package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/denovo-bench/go-ingest/internal/ingesterr"
)

// #region slug

// Slugify lowercases name and collapses every run of characters outside
// [a-z0-9] into a single '-', trimming separators at both ends.
func Slugify(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	pendingSep := false
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return b.String()
}

// #endregion slug

// #region types

// Entry is one file known to the catalog.
type Entry struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Category string    `json:"category"`
	Path     string    `json:"-"`
	Size     int64     `json:"size"`
	ModTime  time.Time `json:"modified"`
}

// Collision records a file that slugified to an identifier already taken.
type Collision struct {
	Category string
	ID       string
	Kept     string
	Dropped  string
}

type snapshot struct {
	byCategory map[string]map[string]Entry
	collisions []Collision
}

// Catalog maps (category, identifier) to files under root. Identifiers are
// computed once per scan; lookups do not touch the filesystem.
type Catalog struct {
	root       string
	categories []string
	filter     func(name string) bool
	logger     *zap.Logger

	mu   sync.RWMutex
	snap snapshot
}

// Option configures Build.
type Option func(*Catalog)

// WithFilter keeps only files whose name satisfies keep.
func WithFilter(keep func(name string) bool) Option {
	return func(c *Catalog) { c.filter = keep }
}

// WithLogger sets the logger used to report collisions.
func WithLogger(l *zap.Logger) Option {
	return func(c *Catalog) {
		if l != nil {
			c.logger = l
		}
	}
}

// #endregion types

// #region build

// Build scans root/<category> for each category. A missing category
// directory is kept as an empty category so listing it returns no entries.
func Build(root string, categories []string, opts ...Option) (*Catalog, error) {
	c := &Catalog{
		root:       root,
		categories: append([]string(nil), categories...),
		logger:     zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	if err := c.Refresh(); err != nil {
		return nil, err
	}
	return c, nil
}

// Refresh rescans the filesystem and swaps in a new snapshot.
func (c *Catalog) Refresh() error {
	next := snapshot{byCategory: make(map[string]map[string]Entry, len(c.categories))}
	for _, cat := range c.categories {
		entries, collisions, err := c.scan(cat)
		if err != nil {
			return err
		}
		next.byCategory[cat] = entries
		next.collisions = append(next.collisions, collisions...)
	}
	for _, col := range next.collisions {
		c.logger.Warn("identifier collision",
			zap.String("category", col.Category),
			zap.String("id", col.ID),
			zap.String("kept", col.Kept),
			zap.String("dropped", col.Dropped),
		)
	}

	c.mu.Lock()
	c.snap = next
	c.mu.Unlock()
	return nil
}

func (c *Catalog) scan(category string) (map[string]Entry, []Collision, error) {
	dir := filepath.Join(c.root, category)
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			c.logger.Debug("category directory missing", zap.String("dir", dir))
			return map[string]Entry{}, nil, nil
		}
		return nil, nil, fmt.Errorf("scan category %s: %w", category, err)
	}

	// ReadDir returns names sorted, so the lexically first file keeps a contested id.
	out := make(map[string]Entry, len(dirEntries))
	var collisions []Collision
	for _, de := range dirEntries {
		if de.IsDir() || (c.filter != nil && !c.filter(de.Name())) {
			continue
		}
		info, err := de.Info()
		if err != nil {
			return nil, nil, fmt.Errorf("stat %s: %w", de.Name(), err)
		}
		id := Slugify(de.Name())
		if prev, taken := out[id]; taken {
			collisions = append(collisions, Collision{Category: category, ID: id, Kept: prev.Name, Dropped: de.Name()})
			continue
		}
		out[id] = Entry{
			ID:       id,
			Name:     de.Name(),
			Category: category,
			Path:     filepath.Join(dir, de.Name()),
			Size:     info.Size(),
			ModTime:  info.ModTime().UTC(),
		}
	}
	return out, collisions, nil
}

// #endregion build

// #region lookup

// Resolve returns the file registered under (category, id).
func (c *Catalog) Resolve(category, id string) (Entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entries, ok := c.snap.byCategory[category]
	if !ok {
		return Entry{}, ingesterr.NotFound("category", category)
	}
	e, ok := entries[id]
	if !ok {
		return Entry{}, ingesterr.NotFound("file", id)
	}
	return e, nil
}

// List returns a category's entries sorted by name.
func (c *Catalog) List(category string) ([]Entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entries, ok := c.snap.byCategory[category]
	if !ok {
		return nil, ingesterr.NotFound("category", category)
	}
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ListAll returns every entry, grouped by category in configured order.
func (c *Catalog) ListAll() []Entry {
	var out []Entry
	for _, cat := range c.categories {
		entries, _ := c.List(cat)
		out = append(out, entries...)
	}
	return out
}

// Categories returns the configured categories.
func (c *Catalog) Categories() []string {
	return append([]string(nil), c.categories...)
}

// Collisions returns the files dropped by the last scan.
func (c *Catalog) Collisions() []Collision {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Collision(nil), c.snap.collisions...)
}

// #endregion lookup
