// Package query is the data-fetching layer between the console and the API
// client: keyed query results with a staleness window, and a declarative
// invalidation graph so a mutation on one resource drops every dependent
// cached query.
package query

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Resource names used as cache-key prefixes and invalidation-graph nodes.
const (
	ResourceConnections   = "connections"
	ResourceModelRefs     = "model-refs"
	ResourceAgents        = "agents"
	ResourceTools         = "tools"
	ResourceKnowledge     = "knowledge"
	ResourceDocuments     = "documents"
	ResourceJudgeConfigs  = "judge-configs"
	ResourceRuns          = "runs"
	ResourceScores        = "scores"
	ResourceConversations = "saved-conversations"
)

// Deps is the invalidation dependency table: mutating a resource drops its
// own cached queries plus, transitively, every dependent resource's.
// connections feed model-refs feed agents; knowledge bases feed documents
// and RAG tools; judge configs feed runs feed scores.
var Deps = map[string][]string{
	ResourceConnections:  {ResourceModelRefs},
	ResourceModelRefs:    {ResourceAgents},
	ResourceKnowledge:    {ResourceDocuments, ResourceTools},
	ResourceDocuments:    {ResourceTools},
	ResourceJudgeConfigs: {ResourceRuns},
	ResourceRuns:         {ResourceScores},
}

// Key identifies one cached query. Keys are "<resource>/<discriminator>".
type Key string

// ListKey is the key for an unpaginated resource listing.
func ListKey(resource string) Key {
	return Key(resource + "/list")
}

// GetKey is the key for a single-entity fetch.
func GetKey(resource, id string) Key {
	return Key(resource + "/get/" + id)
}

// PageKey is the key for one window of a paginated listing. The scope
// discriminates per-parent windows (e.g. scores of one run).
func PageKey(resource, scope string, skip, limit int) Key {
	return Key(fmt.Sprintf("%s/page/%s/%d/%d", resource, scope, skip, limit))
}

func (k Key) resource() string {
	s := string(k)
	if i := strings.IndexByte(s, '/'); i >= 0 {
		return s[:i]
	}
	return s
}

type entry struct {
	value     any
	fetchedAt time.Time
}

// Cache is the keyed query cache. Safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	entries map[Key]entry
	ttl     time.Duration
	deps    map[string][]string
	logger  *slog.Logger

	// now is swappable for staleness tests.
	now func() time.Time
}

// New creates a Cache with the given staleness window and the default
// dependency table.
func New(ttl time.Duration, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		entries: make(map[Key]entry),
		ttl:     ttl,
		deps:    Deps,
		logger:  logger,
		now:     time.Now,
	}
}

// SetClock replaces the cache's clock. Test hook.
func (c *Cache) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// lookup returns a fresh cached value for key, if any.
func (c *Cache) lookup(key Key) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.fetchedAt) > c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

func (c *Cache) store(key Key, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: value, fetchedAt: c.now()}
}

// Invalidate drops all cached queries of resource and, transitively, of
// every resource that depends on it.
func (c *Cache) Invalidate(resource string) {
	affected := c.closure(resource)

	c.mu.Lock()
	defer c.mu.Unlock()
	var dropped int
	for key := range c.entries {
		if affected[key.resource()] {
			delete(c.entries, key)
			dropped++
		}
	}
	if dropped > 0 {
		c.logger.Debug("cache invalidated", "resource", resource, "dropped", dropped)
	}
}

// closure computes the set of resources reachable from root in the
// dependency table, root included.
func (c *Cache) closure(root string) map[string]bool {
	affected := map[string]bool{root: true}
	queue := []string{root}
	for len(queue) > 0 {
		r := queue[0]
		queue = queue[1:]
		for _, dep := range c.deps[r] {
			if !affected[dep] {
				affected[dep] = true
				queue = append(queue, dep)
			}
		}
	}
	return affected
}

// Forget drops a single cached query without touching dependents. Used for
// targeted refreshes where the entity is re-read immediately.
func (c *Cache) Forget(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// InvalidateAll drops every cached query (logout, org switch).
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[Key]entry)
}

// Fetch returns the cached value for key while it is inside the staleness
// window, otherwise calls fn and caches its result. Fetch errors are never
// cached.
func Fetch[T any](ctx context.Context, c *Cache, key Key, fn func(context.Context) (T, error)) (T, error) {
	if v, ok := c.lookup(key); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
	}
	value, err := fn(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	c.store(key, value)
	return value, nil
}

// Mutate runs fn and, only on success, invalidates resource and its
// dependents.
func (c *Cache) Mutate(ctx context.Context, resource string, fn func(context.Context) error) error {
	if err := fn(ctx); err != nil {
		return err
	}
	c.Invalidate(resource)
	return nil
}
