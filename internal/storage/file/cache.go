package file

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/spf13/afero"

	"github.com/honeycarbs/idmapping/internal/repository"
	"github.com/honeycarbs/idmapping/pkg/logging"
)

const maxLineSize = 16 * 1024 * 1024

var _ repository.IDCache = (*Cache)(nil)

// Cache is an IDCache backed by an append-only file of "id=target1,target2" lines.
//
// The file is read once on construction and later lines for an id win. Put appends
// a line whenever the value changes and never rewrites earlier lines, so the file
// may hold stale duplicates. Appends are not coordinated across processes.
type Cache struct {
	fs     afero.Fs
	path   string
	logger *logging.Logger

	mu      sync.RWMutex
	entries map[string][]string
}

// Option configures Cache
type Option func(*Cache)

// WithLogger sets the logger
func WithLogger(l *logging.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewCache opens the cache file at path on fs, loading it if it exists
func NewCache(fs afero.Fs, path string, opts ...Option) (*Cache, error) {
	if fs == nil {
		return nil, fmt.Errorf("file cache: filesystem is required")
	}
	if path == "" {
		return nil, fmt.Errorf("file cache: path is required")
	}

	c := &Cache{
		fs:      fs,
		path:    path,
		logger:  logging.NewNop(),
		entries: make(map[string][]string),
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.load(); err != nil {
		return nil, err
	}

	return c, nil
}

// NewOSCache opens a cache file on the local filesystem
func NewOSCache(path string, opts ...Option) (*Cache, error) {
	return NewCache(afero.NewOsFs(), path, opts...)
}

func (c *Cache) Get(_ context.Context, id string) ([]string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	targets, ok := c.entries[id]
	if !ok {
		return nil, false, nil
	}
	return append([]string(nil), targets...), true, nil
}

// Put records targets for id. Unchanged values are not written again.
// Values the line format cannot represent are kept in memory only.
func (c *Cache) Put(_ context.Context, id string, targets []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if prev, ok := c.entries[id]; ok && slices.Equal(prev, targets) {
		return nil
	}

	if err := validate(id, targets); err != nil {
		c.logger.Warn("keeping cache entry in memory only", "path", c.path, "err", err)
		c.entries[id] = append(make([]string, 0, len(targets)), targets...)
		return nil
	}

	if err := c.appendLine(id, targets); err != nil {
		return err
	}

	c.entries[id] = append(make([]string, 0, len(targets)), targets...)
	return nil
}

// Len returns the number of cached ids
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Path returns the backing file path
func (c *Cache) Path() string {
	return c.path
}

func (c *Cache) load() error {
	f, err := c.fs.Open(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("file cache: open %s: %w", c.path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	lines, err := c.read(f)
	if err != nil {
		return fmt.Errorf("file cache: read %s: %w", c.path, err)
	}

	c.logger.Debug("cache file loaded", "path", c.path, "lines", lines, "ids", len(c.entries))
	return nil
}

func (c *Cache) read(r io.Reader) (int, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lines := 0
	for sc.Scan() {
		lines++
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' || line[0] == '!' {
			continue
		}

		id, value, ok := strings.Cut(line, "=")
		if !ok {
			c.logger.Warn("ignoring cache line without '='", "path", c.path, "line", lines)
			continue
		}

		c.entries[strings.TrimSpace(id)] = splitTargets(strings.TrimSpace(value))
	}

	return lines, sc.Err()
}

func (c *Cache) appendLine(id string, targets []string) error {
	if dir := filepath.Dir(c.path); dir != "." {
		if err := c.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("file cache: create %s: %w", dir, err)
		}
	}

	f, err := c.fs.OpenFile(c.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("file cache: open %s for append: %w", c.path, err)
	}

	_, werr := io.WriteString(f, id+"="+strings.Join(targets, ",")+"\n")
	cerr := f.Close()
	if werr != nil {
		return fmt.Errorf("file cache: append to %s: %w", c.path, werr)
	}
	if cerr != nil {
		return fmt.Errorf("file cache: close %s: %w", c.path, cerr)
	}
	return nil
}

func splitTargets(value string) []string {
	if value == "" {
		return []string{}
	}
	return strings.Split(value, ",")
}

func validate(id string, targets []string) error {
	if id == "" || id[0] == '#' || id[0] == '!' || strings.ContainsAny(id, "=\n\r") || strings.TrimSpace(id) != id {
		return fmt.Errorf("file cache: id %q cannot be stored", id)
	}
	for _, t := range targets {
		if t == "" || strings.ContainsAny(t, ",\n\r") || strings.TrimSpace(t) != t {
			return fmt.Errorf("file cache: target %q of %s cannot be stored", t, id)
		}
	}
	return nil
}
