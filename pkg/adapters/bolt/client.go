// Package bolt is a persistent store client backed by a single bbolt file.
// Each collection is a top-level bucket keyed by document ID.
package bolt

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/aretw0/fireclass/pkg/core"
)

// DefaultTimeout bounds how long Open waits for the file lock.
const DefaultTimeout = time.Second

// ErrReadOnly is returned by writes on a client opened with WithReadOnly.
var ErrReadOnly = errors.New("store opened read-only")

// Option configures Open.
type Option func(*config)

type config struct {
	timeout  time.Duration
	readOnly bool
}

// WithTimeout sets how long Open waits for another process to release the
// file. Zero waits forever.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// WithReadOnly opens the file with a shared lock and rejects writes.
func WithReadOnly(readOnly bool) Option {
	return func(c *config) {
		c.readOnly = readOnly
	}
}

// Client is a core.Client over a bbolt file. It is safe for concurrent use.
type Client struct {
	db       *bolt.DB
	path     string
	readOnly bool
	now      func() time.Time
}

// Open opens (or creates) the store file at path.
func Open(path string, opts ...Option) (*Client, error) {
	cfg := config{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&cfg)
	}

	if !cfg.readOnly {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: cfg.timeout, ReadOnly: cfg.readOnly})
	if err != nil {
		return nil, fmt.Errorf("failed to open store %s: %w", path, err)
	}
	return &Client{db: db, path: path, readOnly: cfg.readOnly, now: time.Now}, nil
}

// Path returns the file backing the client.
func (c *Client) Path() string { return c.path }

// Close releases the file.
func (c *Client) Close() error {
	return c.db.Close()
}

// Collection implements core.Client.
func (c *Client) Collection(name string) core.Collection {
	return &collection{client: c, name: name}
}

// Collections lists the buckets holding at least one document.
func (c *Client) Collections(ctx context.Context) ([]string, error) {
	var names []string
	err := c.db.View(func(tx *bolt.Tx) error {
		return tx.ForEach(func(name []byte, b *bolt.Bucket) error {
			if k, _ := b.Cursor().First(); k != nil {
				names = append(names, string(name))
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(names)
	return names, nil
}

// RunTransaction runs fn inside a read-only bbolt transaction. Queries run
// with the handle see a consistent view of the file.
//
// fn must not write through the same client: bbolt cannot grow the file
// while a read transaction is open in the same goroutine.
func (c *Client) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx core.Transaction) error) error {
	return c.db.View(func(btx *bolt.Tx) error {
		return fn(ctx, &txn{client: c, btx: btx})
	})
}

type txn struct {
	client *Client
	btx    *bolt.Tx
}

func (t *txn) Store() string { return "bolt" }

// view runs fn in tx when it is a handle of this client, else in a fresh
// read transaction.
func (c *Client) view(tx core.Transaction, fn func(*bolt.Tx) error) error {
	if tx == nil {
		return c.db.View(fn)
	}
	t, ok := tx.(*txn)
	if !ok || t.client != c {
		return fmt.Errorf("%w: transaction %T was not issued by this client", core.ErrInvalidValue, tx)
	}
	return fn(t.btx)
}

func (c *Client) update(fn func(*bolt.Tx) error) error {
	if c.readOnly {
		return ErrReadOnly
	}
	return c.db.Update(fn)
}

var (
	_ core.Client           = (*Client)(nil)
	_ core.Transactional    = (*Client)(nil)
	_ core.CollectionLister = (*Client)(nil)
)
