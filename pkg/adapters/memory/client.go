// Package memory is an in-process store client. Documents live in maps and
// vanish with the process; it backs tests, examples and the default Open configuration.
package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/aretw0/fireclass/pkg/core"
)

// Client is a core.Client holding every collection in memory. It is safe
// for concurrent use.
type Client struct {
	mu   sync.RWMutex
	data map[string]map[string]map[string]any // collection -> id -> fields
	now  func() time.Time
}

// New returns an empty Client.
func New() *Client {
	return &Client{
		data: make(map[string]map[string]map[string]any),
		now:  time.Now,
	}
}

// Collection implements core.Client.
func (c *Client) Collection(name string) core.Collection {
	return &collection{client: c, name: name}
}

// Collections lists the collections holding at least one document.
func (c *Client) Collections(ctx context.Context) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.data))
	for name, docs := range c.data {
		if len(docs) > 0 {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names, nil
}

// RunTransaction runs fn with a handle on a point-in-time copy of the store.
// Queries run with that handle do not observe writes made after it was taken.
func (c *Client) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx core.Transaction) error) error {
	c.mu.RLock()
	snapshot := make(map[string]map[string]map[string]any, len(c.data))
	for name, docs := range c.data {
		snapshot[name] = maps.Clone(docs)
	}
	c.mu.RUnlock()

	return fn(ctx, &txn{client: c, data: snapshot})
}

// Close drops every document.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.data)
	return nil
}

// snapshots copies the documents of a collection out of data. Stored field
// maps are replaced on write, never mutated, so transactions may share them.
func (c *Client) snapshots(data map[string]map[string]map[string]any, name string) []*core.Snapshot {
	docs := data[name]
	out := make([]*core.Snapshot, 0, len(docs))
	for id, fields := range docs {
		out = append(out, &core.Snapshot{ID: id, Exists: true, Data: cloneMap(fields)})
	}
	return out
}

type txn struct {
	client *Client
	data   map[string]map[string]map[string]any
}

func (t *txn) Store() string { return "memory" }

func (c *Client) txData(tx core.Transaction) (map[string]map[string]map[string]any, error) {
	t, ok := tx.(*txn)
	if !ok || t.client != c {
		return nil, fmt.Errorf("%w: transaction %T was not issued by this client", core.ErrInvalidValue, tx)
	}
	return t.data, nil
}

var (
	_ core.Client           = (*Client)(nil)
	_ core.Transactional    = (*Client)(nil)
	_ core.CollectionLister = (*Client)(nil)
)
