// Package cache provides the time-windowed issue cache sitting in front of JIRA.
//
// Entries are keyed by the issue key and the TTL window index
// floor(now / TTL). Every entry computed during a window shares that index,
// so all of them go stale together when the index advances. Stale entries are
// never deleted explicitly; they age out of the LRU as fresh ones arrive.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	"github.com/danielolaszy/jiractx/internal/issuekey"
	"github.com/danielolaszy/jiractx/internal/logging"
	"github.com/danielolaszy/jiractx/internal/metrics"
	"github.com/danielolaszy/jiractx/pkg/models"
)

const (
	// DefaultTTL is the length of one cache window.
	DefaultTTL = 5 * time.Minute
	// DefaultCapacity is the maximum number of (key, window) entries kept.
	DefaultCapacity = 100
)

// Loader fetches the summary for key on a cache miss.
// Returning a nil summary with a nil error reports that the issue does not
// exist; that outcome is cached for the window. Errors are never cached.
type Loader func(ctx context.Context, key issuekey.Key) (*models.IssueSummary, error)

// Config controls cache sizing and windowing. Zero values select the defaults.
type Config struct {
	TTL      time.Duration
	Capacity int
	Clock    clockwork.Clock
}

type entryKey struct {
	key    issuekey.Key
	window int64
}

func (k entryKey) String() string {
	return fmt.Sprintf("%s@%d", k.key, k.window)
}

// entry holds either a resolved summary or the confirmed-absent marker.
// The summary is private to the cache; callers only ever see clones.
type entry struct {
	summary *models.IssueSummary
	absent  bool
}

// WindowCache is a bounded, concurrency-safe issue cache with window-based
// invalidation. At most one load per (key, window) is in flight at a time.
type WindowCache struct {
	ttl     time.Duration
	clock   clockwork.Clock
	entries *lru.Cache[entryKey, entry]
	loads   singleflight.Group
	log     *slog.Logger
}

// New creates a WindowCache from cfg.
func New(cfg Config) (*WindowCache, error) {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultCapacity
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}

	entries, err := lru.New[entryKey, entry](cfg.Capacity)
	if err != nil {
		return nil, fmt.Errorf("failed to create lru: %w", err)
	}

	return &WindowCache{
		ttl:     cfg.TTL,
		clock:   cfg.Clock,
		entries: entries,
		log:     logging.With("component", "cache"),
	}, nil
}

// TTL returns the window length.
func (c *WindowCache) TTL() time.Duration {
	return c.ttl
}

// Len returns the number of entries held, including superseded ones.
func (c *WindowCache) Len() int {
	return c.entries.Len()
}

// WindowIndex returns floor(t / TTL) in whole TTL periods since the Unix epoch.
func (c *WindowCache) WindowIndex(t time.Time) int64 {
	return t.UnixNano() / int64(c.ttl)
}

// Get returns the summary for key in the current window, calling load on a
// miss. A nil summary with a nil error means the issue is confirmed absent.
func (c *WindowCache) Get(ctx context.Context, key issuekey.Key, load Loader) (*models.IssueSummary, error) {
	ek := entryKey{key: key, window: c.WindowIndex(c.clock.Now())}

	if e, ok := c.entries.Get(ek); ok {
		metrics.CacheHitsTotal.Inc()
		c.log.Debug("issue cache hit", "issue_key", key, "window", ek.window, "absent", e.absent)
		return e.summary.Clone(), nil
	}
	metrics.CacheMissesTotal.Inc()

	// The shared load must outlive any single caller that gives up waiting.
	loadCtx := context.WithoutCancel(ctx)

	ch := c.loads.DoChan(ek.String(), func() (v any, err error) {
		// DoChan re-panics on its own goroutine, where nothing can recover.
		defer func() {
			if r := recover(); r != nil {
				metrics.CacheLoadsTotal.WithLabelValues("error").Inc()
				c.log.Error("issue load panicked", "issue_key", key, "panic", r)
				v, err = nil, fmt.Errorf("loading %s panicked: %v", key, r)
			}
		}()

		// A caller that lost the race to a just-finished load sees its result here.
		if e, ok := c.entries.Peek(ek); ok {
			return e, nil
		}

		c.log.Debug("loading issue", "issue_key", key, "window", ek.window)
		summary, err := load(loadCtx, key)
		if err != nil {
			metrics.CacheLoadsTotal.WithLabelValues("error").Inc()
			return nil, err
		}

		e := entry{summary: summary.Clone(), absent: summary == nil}
		if e.absent {
			metrics.CacheLoadsTotal.WithLabelValues("absent").Inc()
		} else {
			metrics.CacheLoadsTotal.WithLabelValues("found").Inc()
		}

		c.entries.Add(ek, e)

		return e, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(entry).summary.Clone(), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
