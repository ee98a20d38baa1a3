package unit

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/vk/flowgrid/internal/ctxlog"
)

// Loader resolves a node's source reference to compute unit code.
type Loader interface {
	Load(ctx context.Context, source string) ([]byte, error)
}

// FileLoader reads units from the local filesystem. Relative sources are
// resolved against Dir; an empty Dir means the working directory.
type FileLoader struct {
	Dir string
}

// Load reads the unit file. A "file://" prefix is accepted and stripped.
func (l FileLoader) Load(_ context.Context, source string) ([]byte, error) {
	path := source
	if scheme, rest, ok := splitScheme(source); ok && scheme == "file" {
		path = rest
	}
	if path == "" {
		return nil, fmt.Errorf("empty source")
	}
	if !filepath.IsAbs(path) && l.Dir != "" {
		path = filepath.Join(l.Dir, path)
	}
	return os.ReadFile(path)
}

// MuxLoader dispatches on the source's URL scheme. Sources without a
// registered scheme go to Fallback.
type MuxLoader struct {
	Schemes  map[string]Loader
	Fallback Loader
}

// Load picks the loader for source and delegates to it.
func (m *MuxLoader) Load(ctx context.Context, source string) ([]byte, error) {
	if scheme, _, ok := splitScheme(source); ok {
		if l, found := m.Schemes[scheme]; found {
			return l.Load(ctx, source)
		}
		if scheme != "file" {
			return nil, fmt.Errorf("unsupported source scheme '%s'", scheme)
		}
	}
	if m.Fallback == nil {
		return nil, fmt.Errorf("no loader for source '%s'", source)
	}
	return m.Fallback.Load(ctx, source)
}

// splitScheme cuts source at "://" and lower-cases the scheme.
func splitScheme(source string) (scheme, rest string, ok bool) {
	scheme, rest, ok = strings.Cut(source, "://")
	return strings.ToLower(scheme), rest, ok
}

// CachingLoader keeps recently loaded code in memory, keyed by source, so a
// node that fires repeatedly in a cycle reads its unit once.
type CachingLoader struct {
	next  Loader
	cache *lru.Cache[string, []byte]
}

// NewCachingLoader wraps next with an LRU cache of the given size.
func NewCachingLoader(next Loader, size int) (*CachingLoader, error) {
	cache, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, fmt.Errorf("create unit cache: %w", err)
	}
	return &CachingLoader{next: next, cache: cache}, nil
}

// Load returns cached code or loads and caches it. Failures are not cached.
func (c *CachingLoader) Load(ctx context.Context, source string) ([]byte, error) {
	if code, ok := c.cache.Get(source); ok {
		ctxlog.FromContext(ctx).Debug("Unit cache hit.", "source", source)
		return code, nil
	}
	code, err := c.next.Load(ctx, source)
	if err != nil {
		return nil, err
	}
	c.cache.Add(source, code)
	return code, nil
}

// Len reports how many units are cached.
func (c *CachingLoader) Len() int {
	return c.cache.Len()
}
