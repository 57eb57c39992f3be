// Package cache serves repeated list reads from memory (or disk) for the
// lifetime of a session. Only reads pass through here; writes go straight to
// the remote client and never touch cached entries unless the caller asks for
// an explicit Invalidate.
package cache

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmcdole/roster/internal/domain"
)

// Store selects where cached reads live
type Store string

const (
	// StoreSession keeps entries in memory until the session closes
	StoreSession Store = "session"
	// StoreLocal persists entries in a bolt file across sessions
	StoreLocal Store = "local"
	// StoreNone disables caching; every read hits the remote service
	StoreNone Store = "none"
)

// ParseStore validates a configured store name. Empty means session.
func ParseStore(s string) (Store, error) {
	switch Store(s) {
	case "", StoreSession:
		return StoreSession, nil
	case StoreLocal, StoreNone:
		return Store(s), nil
	default:
		return "", fmt.Errorf("unknown cache store %q (want session, local or none)", s)
	}
}

// fetcher is the read half of domain.CollectionClient
type fetcher interface {
	Get(ctx context.Context, q domain.Query) ([]byte, error)
}

// recorder counts cache lookups (consumer-defined interface)
type recorder interface {
	ObserveCache(result string)
}

// Options configures a ReadThrough cache
type Options struct {
	Store    Store
	Dir      string        // Base directory for StoreLocal
	Scope    string        // Site URL; partitions the local store
	TTL      time.Duration // 0 keeps entries until the session ends
	Recorder recorder
	Logger   *slog.Logger
	Now      func() time.Time
}

// ReadThrough implements domain.Reader on top of a remote client
type ReadThrough struct {
	client   fetcher
	backend  backend // nil when Store is StoreNone
	store    Store
	ttl      time.Duration
	now      func() time.Time
	recorder recorder
	logger   *slog.Logger
}

// New creates a cache bound to one session
func New(client fetcher, opts Options) (*ReadThrough, error) {
	if client == nil {
		return nil, errors.New("cache requires a client")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Store == "" {
		opts.Store = StoreSession
	}

	c := &ReadThrough{
		client:   client,
		store:    opts.Store,
		ttl:      opts.TTL,
		now:      opts.Now,
		recorder: opts.Recorder,
		logger:   opts.Logger,
	}

	switch opts.Store {
	case StoreSession:
		c.backend = newMemoryBackend()
	case StoreLocal:
		if opts.Dir == "" {
			return nil, errors.New("local cache store requires a directory")
		}
		b, err := openBoltBackend(opts.Dir, opts.Scope)
		if err != nil {
			return nil, err
		}
		c.backend = b
	case StoreNone:
	default:
		return nil, fmt.Errorf("unknown cache store %q", opts.Store)
	}

	return c, nil
}

// key prefixes the operation signature with the store scope
func (c *ReadThrough) key(q domain.Query) string {
	return string(c.store) + ":" + q.Key()
}

// Fetch returns the cached payload for q, or reads it from the remote service
// and caches it. Failures are never cached.
func (c *ReadThrough) Fetch(ctx context.Context, q domain.Query) ([]byte, error) {
	if c.backend == nil {
		c.observe("bypass")
		return c.client.Get(ctx, q)
	}

	key := c.key(q)
	if raw, ok := c.backend.get(key); ok {
		if payload, fresh := c.decode(raw); fresh {
			c.observe("hit")
			c.logger.Debug("cache hit", "key", key)
			return clone(payload), nil
		}
		c.logger.Debug("cache entry expired", "key", key)
	}

	c.observe("miss")
	payload, err := c.client.Get(ctx, q)
	if err != nil {
		return nil, err
	}

	if err := c.backend.set(key, c.encode(payload)); err != nil {
		// The read itself succeeded; a failed store only costs a refetch
		c.logger.Warn("failed to store cache entry", "key", key, "error", err)
	}
	c.logger.Debug("cache fill", "key", key, "bytes", len(payload))
	return clone(payload), nil
}

// Invalidate drops every cached read of a collection
func (c *ReadThrough) Invalidate(collection string) {
	if c.backend == nil {
		return
	}
	prefix := string(c.store) + ":" + domain.CollectionPrefix(collection)
	c.backend.deletePrefix(prefix)
	c.logger.Debug("invalidated cache", "collection", collection)
}

// Clear drops every cached read
func (c *ReadThrough) Clear() {
	if c.backend == nil {
		return
	}
	c.backend.clear()
	c.logger.Debug("cleared cache")
}

// Len returns the number of cached entries
func (c *ReadThrough) Len() int {
	if c.backend == nil {
		return 0
	}
	return c.backend.len()
}

// Store returns the configured store
func (c *ReadThrough) Store() Store {
	return c.store
}

// Close ends the session. Session entries are discarded; local entries stay on disk.
func (c *ReadThrough) Close() error {
	if c.backend == nil {
		return nil
	}
	return c.backend.close()
}

func (c *ReadThrough) observe(result string) {
	if c.recorder != nil {
		c.recorder.ObserveCache(result)
	}
}

// Entries are stored as an 8-byte big-endian fetch time followed by the payload.
func (c *ReadThrough) encode(payload []byte) []byte {
	buf := make([]byte, 8+len(payload))
	binary.BigEndian.PutUint64(buf, uint64(c.now().UnixNano()))
	copy(buf[8:], payload)
	return buf
}

func (c *ReadThrough) decode(raw []byte) ([]byte, bool) {
	if len(raw) < 8 {
		return nil, false
	}
	if c.ttl > 0 {
		fetchedAt := time.Unix(0, int64(binary.BigEndian.Uint64(raw[:8])))
		if c.now().Sub(fetchedAt) >= c.ttl {
			return nil, false
		}
	}
	return raw[8:], true
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
