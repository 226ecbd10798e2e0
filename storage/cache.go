// Package storage persists resource metadata fetched from the remote API so
// that repeated metadata reads do not each require a network round trip.
//
// Entries are stored as JSON envelopes in a key-value backend, keyed by the
// resource path (projects/<project>/global/firewalls/<name>). Entries expire
// after a TTL; an expired entry behaves as if it does not exist.
package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

// The KVBackend is used for persisting cached metadata.
type KVBackend interface {
	// Put creates or updates a key.
	Put(ctx context.Context, key string, value []byte) error

	// Get returns the given key. Returns ErrNotFound if the given key does not
	// exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete deletes a key. Returns ErrNotFound if the given key does not exist.
	Delete(ctx context.Context, key string) error

	// Scan returns a key-value map of all keys matching the given prefix.
	Scan(ctx context.Context, prefix string) (map[string][]byte, error)
}

// DefaultTTL is the entry lifetime used when the cache TTL is not set.
const DefaultTTL = 5 * time.Minute

// A Cache stores raw API response bodies for resource paths.
type Cache struct {
	Backend KVBackend     // Backend to use for persisting entries.
	TTL     time.Duration // Entry lifetime. Zero means DefaultTTL.

	// now allows overriding the clock in tests.
	now func() time.Time
}

// an envelope wraps the cached body and records when it was fetched.
type envelope struct {
	Path      string          `json:"path"`
	FetchedAt time.Time       `json:"fetchedAt"`
	Body      json.RawMessage `json:"body"`
}

// Put stores the raw body for a resource path.
func (c *Cache) Put(ctx context.Context, path string, body []byte) error {
	env := envelope{
		Path:      path,
		FetchedAt: c.timeNow(),
		Body:      body,
	}
	j, err := json.Marshal(env)
	if err != nil {
		return errors.Wrap(err, "marshal envelope")
	}
	if err := c.Backend.Put(ctx, path, j); err != nil {
		return errors.Wrap(err, "store")
	}
	return nil
}

// Get returns the cached body for a resource path.
//
// Returns ErrNotFound if no entry exists or the entry has expired. Expired
// entries are removed from the backend on a best effort basis.
func (c *Cache) Get(ctx context.Context, path string) ([]byte, error) {
	data, err := c.Backend.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, errors.Wrap(err, "unmarshal envelope")
	}
	if c.timeNow().Sub(env.FetchedAt) > c.ttl() {
		_ = c.Backend.Delete(ctx, path)
		return nil, ErrNotFound
	}
	return env.Body, nil
}

// Invalidate removes the entry for a resource path. Invalidating a path that
// has no entry is not an error.
func (c *Cache) Invalidate(ctx context.Context, path string) error {
	err := c.Backend.Delete(ctx, path)
	if errors.Cause(err) == ErrNotFound {
		return nil
	}
	return err
}

func (c *Cache) ttl() time.Duration {
	if c.TTL == 0 {
		return DefaultTTL
	}
	return c.TTL
}

func (c *Cache) timeNow() time.Time {
	if c.now == nil {
		return time.Now()
	}
	return c.now()
}
