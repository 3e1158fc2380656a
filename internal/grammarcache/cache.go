// Package grammarcache keeps compiled syntaxes so documents sharing a
// grammar compile it once.
package grammarcache

import (
	"fmt"
	"hash/fnv"
	"strings"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"hlkit/internal/grammar"
	"hlkit/internal/syntaxctl"
)

const (
	DefaultExpiration      = 30 * time.Minute
	DefaultCleanupInterval = time.Hour
)

// Cache wraps a Compiler. Entries are keyed by grammar name and content,
// so an edited grammar file never hits a stale entry.
type Cache struct {
	cache   *gocache.Cache
	compile syntaxctl.Compiler
	log     *zap.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

func New(compile syntaxctl.Compiler, ttl time.Duration, log *zap.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultExpiration
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{
		cache:   gocache.New(ttl, DefaultCleanupInterval),
		compile: compile,
		log:     log,
	}
}

// Compiler returns c as a syntaxctl.Compiler.
func (c *Cache) Compiler() syntaxctl.Compiler { return c.Get }

func (c *Cache) Get(g grammar.Grammar) syntaxctl.Syntax {
	key := Key(g)
	if v, found := c.cache.Get(key); found {
		if s, ok := v.(syntaxctl.Syntax); ok {
			c.hits.Add(1)
			c.log.Debug("syntax cache hit", zap.String("grammar", g.Name))
			// refresh the ttl
			c.cache.SetDefault(key, s)
			return s
		}
		c.log.Error("wrong type in syntax cache", zap.String("key", key))
	}

	c.misses.Add(1)
	s := c.compile(g)
	c.cache.SetDefault(key, s)
	return s
}

// Invalidate drops every entry compiled from a grammar named name.
func (c *Cache) Invalidate(name string) int {
	prefix := name + "\x00"
	n := 0
	for key := range c.cache.Items() {
		if strings.HasPrefix(key, prefix) {
			c.cache.Delete(key)
			n++
		}
	}
	return n
}

func (c *Cache) Flush() { c.cache.Flush() }

func (c *Cache) Len() int { return c.cache.ItemCount() }

func (c *Cache) Stats() (hits, misses int64) { return c.hits.Load(), c.misses.Load() }

// Key identifies g by name and a hash of its encoded rules.
func Key(g grammar.Grammar) string {
	h := fnv.New64a()
	if data, err := grammar.EncodeTOML(g); err == nil {
		_, _ = h.Write(data)
	} else {
		// unencodable grammars still key by their printed form
		_, _ = fmt.Fprintf(h, "%#v", g)
	}
	return fmt.Sprintf("%s\x00%016x", g.Name, h.Sum64())
}
