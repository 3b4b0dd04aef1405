// Package taxonomy keeps a process-wide index between eBird species codes
// and common names.
//
// The full taxonomy is fetched from eBird at most once per machine: the raw
// list is written to a snapshot file and every later process start reads the
// snapshot instead. The index is built lazily on the first lookup and never
// changes afterwards.
package taxonomy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/sync/singleflight"

	"github.com/soyeahso/ebirdmcp/internal/logging"
)

// DefaultSnapshotPath is where the raw taxonomy is persisted, relative to the
// working directory.
const DefaultSnapshotPath = "cache/ebird_taxonomy.json"

// NotFound is the value returned alongside found == false.
const NotFound = ""

var (
	// ErrUpstreamUnavailable wraps a failed taxonomy fetch. The next lookup
	// retries from scratch.
	ErrUpstreamUnavailable = errors.New("taxonomy: upstream unavailable")

	// ErrCorruptCache means the snapshot exists but cannot be decoded. It is
	// not repaired automatically; remove the file to force a refetch.
	ErrCorruptCache = errors.New("taxonomy: corrupt snapshot")
)

// Fetcher retrieves the complete taxonomy. ebird.Client satisfies it.
type Fetcher interface {
	Taxonomy(ctx context.Context, locale string) ([]map[string]any, error)
}

// State is the lifecycle of a Cache.
type State int

const (
	Uninitialized State = iota
	Initializing
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initializing:
		return "initializing"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Options configures a Cache. Zero values pick the defaults.
type Options struct {
	Fs           afero.Fs      // snapshot filesystem; defaults to the OS
	SnapshotPath string        // defaults to DefaultSnapshotPath
	Locale       string        // common-name locale passed to the fetcher
	FetchTimeout time.Duration // 0 means no extra deadline
	Logger       *logging.Logger
}

// Cache owns the species index and the guard around building it.
type Cache struct {
	fetcher      Fetcher
	fs           afero.Fs
	snapshotPath string
	locale       string
	fetchTimeout time.Duration
	log          *logging.Logger

	group singleflight.Group

	mu      sync.RWMutex
	state   State
	lastErr error
	index   map[string]string
}

// New creates an empty Cache. Nothing is read or fetched until the first
// lookup or an explicit Warm.
func New(fetcher Fetcher, opts Options) *Cache {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.SnapshotPath == "" {
		opts.SnapshotPath = DefaultSnapshotPath
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	return &Cache{
		fetcher:      fetcher,
		fs:           opts.Fs,
		snapshotPath: opts.SnapshotPath,
		locale:       opts.Locale,
		fetchTimeout: opts.FetchTimeout,
		log:          opts.Logger.Sub("taxonomy"),
	}
}

// CodeForName returns the species code whose common name matches name,
// ignoring case.
func (c *Cache) CodeForName(ctx context.Context, name string) (string, bool, error) {
	idx, err := c.ensure(ctx)
	if err != nil {
		return NotFound, false, err
	}
	code, ok := idx[strings.ToLower(name)]
	if !ok {
		return NotFound, false, nil
	}
	return code, true, nil
}

// NameForCode returns the common name for an exact species code.
func (c *Cache) NameForCode(ctx context.Context, code string) (string, bool, error) {
	idx, err := c.ensure(ctx)
	if err != nil {
		return NotFound, false, err
	}
	name, ok := idx[code]
	if !ok {
		return NotFound, false, nil
	}
	return name, true, nil
}

// Warm builds the index now instead of on the first lookup.
func (c *Cache) Warm(ctx context.Context) error {
	_, err := c.ensure(ctx)
	return err
}

// State reports where the cache is in its lifecycle, and the error of the
// last failed initialization if any.
func (c *Cache) State() (State, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state, c.lastErr
}

// Len returns the number of index entries, or 0 before the index is ready.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.index)
}

func (c *Cache) ready() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.index
}

// ensure returns the built index, initializing it if needed. Concurrent
// callers share one initialization; a failure is returned to all of them and
// the next call starts over. The shared run is detached from the caller that
// started it: a caller whose ctx ends stops waiting, but the others still get
// the result. FetchTimeout bounds the run.
func (c *Cache) ensure(ctx context.Context) (map[string]string, error) {
	if idx := c.ready(); idx != nil {
		return idx, nil
	}

	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan("init", func() (any, error) {
		// A flight that finished between ready() and Do already published.
		if idx := c.ready(); idx != nil {
			return idx, nil
		}
		c.setState(Initializing, nil)

		idx, err := c.initialize(shared)
		if err != nil {
			c.setState(Failed, err)
			c.log.Warn().Err(err).Msg("taxonomy initialization failed")
			return nil, err
		}

		c.mu.Lock()
		c.index = idx
		c.state = Ready
		c.lastErr = nil
		c.mu.Unlock()
		return idx, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(map[string]string), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Cache) setState(s State, err error) {
	c.mu.Lock()
	c.state = s
	c.lastErr = err
	c.mu.Unlock()
}

func (c *Cache) initialize(ctx context.Context) (map[string]string, error) {
	records, err := c.loadSnapshot()
	if err != nil {
		return nil, err
	}
	if records == nil {
		records, err = c.fetchAndPersist(ctx)
		if err != nil {
			return nil, err
		}
	}

	idx := buildIndex(records, c.log)
	c.log.Info().
		Int("records", len(records)).
		Int("entries", len(idx)).
		Msg("taxonomy index ready")
	return idx, nil
}

// loadSnapshot returns nil records (and no error) when no snapshot exists.
func (c *Cache) loadSnapshot() ([]map[string]any, error) {
	data, err := afero.ReadFile(c.fs, c.snapshotPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("taxonomy: read snapshot %s: %w", c.snapshotPath, err)
	}

	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptCache, c.snapshotPath, err)
	}
	if records == nil {
		// "null" on disk is as unusable as garbage.
		return nil, fmt.Errorf("%w: %s: no records", ErrCorruptCache, c.snapshotPath)
	}
	c.log.Debug().Str("path", c.snapshotPath).Int("records", len(records)).Msg("loaded taxonomy snapshot")
	return records, nil
}

func (c *Cache) fetchAndPersist(ctx context.Context) ([]map[string]any, error) {
	if c.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.fetchTimeout)
		defer cancel()
	}

	c.log.Info().Str("locale", c.locale).Msg("fetching taxonomy from eBird")
	records, err := c.fetcher.Taxonomy(ctx, c.locale)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}
	if records == nil {
		records = []map[string]any{}
	}

	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("taxonomy: encode snapshot: %w", err)
	}
	if err := c.fs.MkdirAll(filepath.Dir(c.snapshotPath), 0o755); err != nil {
		return nil, fmt.Errorf("taxonomy: create snapshot dir: %w", err)
	}
	// Write then rename so a crash never leaves a truncated snapshot behind.
	tmp := c.snapshotPath + ".tmp"
	if err := afero.WriteFile(c.fs, tmp, data, 0o644); err != nil {
		return nil, fmt.Errorf("taxonomy: write snapshot: %w", err)
	}
	if err := c.fs.Rename(tmp, c.snapshotPath); err != nil {
		_ = c.fs.Remove(tmp)
		return nil, fmt.Errorf("taxonomy: write snapshot: %w", err)
	}
	c.log.Info().Str("path", c.snapshotPath).Int("records", len(records)).Msg("wrote taxonomy snapshot")
	return records, nil
}
