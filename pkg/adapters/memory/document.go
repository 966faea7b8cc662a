package memory

import (
	"context"
	"fmt"

	"github.com/segmentio/ksuid"

	"github.com/aretw0/fireclass/internal/filter"
	"github.com/aretw0/fireclass/pkg/core"
)

type collection struct {
	client *Client
	name   string
}

func (col *collection) Doc(id string) core.DocumentRef {
	if id == "" {
		id = ksuid.New().String()
	}
	return &docRef{col: col, id: id}
}

func (col *collection) Documents(ctx context.Context) core.SnapshotIterator {
	return col.Query().Documents(ctx, nil)
}

func (col *collection) Where(field string, op core.Operator, value any) core.QueryRef {
	return col.Query().Where(field, op, value)
}

func (col *collection) Query() core.QueryRef {
	return &query{col: col, limit: -1}
}

type docRef struct {
	col *collection
	id  string
}

func (d *docRef) ID() string { return d.id }

func (d *docRef) Create(ctx context.Context, fields map[string]any) (core.WriteResult, error) {
	if err := ctx.Err(); err != nil {
		return core.WriteResult{}, err
	}
	c := d.col.client
	c.mu.Lock()
	defer c.mu.Unlock()

	docs, ok := c.data[d.col.name]
	if !ok {
		docs = make(map[string]map[string]any)
		c.data[d.col.name] = docs
	}
	if _, exists := docs[d.id]; exists {
		return core.WriteResult{}, fmt.Errorf("%w: %s/%s", core.ErrAlreadyExists, d.col.name, d.id)
	}
	docs[d.id] = cloneMap(fields)
	return core.WriteResult{UpdateTime: c.now().UTC()}, nil
}

func (d *docRef) Update(ctx context.Context, fields map[string]any) (core.WriteResult, error) {
	if err := ctx.Err(); err != nil {
		return core.WriteResult{}, err
	}
	c := d.col.client
	c.mu.Lock()
	defer c.mu.Unlock()

	current, exists := c.data[d.col.name][d.id]
	if !exists {
		return core.WriteResult{}, fmt.Errorf("%w: %s/%s", core.ErrNotFound, d.col.name, d.id)
	}
	next := cloneMap(current)
	for k, v := range fields {
		next[k] = cloneValue(v)
	}
	c.data[d.col.name][d.id] = next
	return core.WriteResult{UpdateTime: c.now().UTC()}, nil
}

func (d *docRef) Delete(ctx context.Context) (core.DeleteResult, error) {
	if err := ctx.Err(); err != nil {
		return core.DeleteResult{}, err
	}
	c := d.col.client
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.data[d.col.name], d.id)
	return core.DeleteResult{DeleteTime: c.now().UTC()}, nil
}

func (d *docRef) Get(ctx context.Context) (*core.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c := d.col.client
	c.mu.RLock()
	defer c.mu.RUnlock()

	fields, exists := c.data[d.col.name][d.id]
	if !exists {
		return &core.Snapshot{ID: d.id}, nil
	}
	return &core.Snapshot{ID: d.id, Exists: true, Data: cloneMap(fields)}, nil
}

type query struct {
	col   *collection
	preds []core.Predicate
	limit int
}

func (q *query) Where(field string, op core.Operator, value any) core.QueryRef {
	next := *q
	next.preds = append(q.preds[:len(q.preds):len(q.preds)], core.Predicate{Field: field, Op: op, Value: value})
	return &next
}

func (q *query) Limit(n int) core.QueryRef {
	next := *q
	next.limit = n
	return &next
}

func (q *query) Documents(ctx context.Context, tx core.Transaction) core.SnapshotIterator {
	c := q.col.client
	var snaps []*core.Snapshot
	if tx != nil {
		data, err := c.txData(tx)
		if err != nil {
			return filter.Failed(err)
		}
		snaps = c.snapshots(data, q.col.name)
	} else {
		c.mu.RLock()
		snaps = c.snapshots(c.data, q.col.name)
		c.mu.RUnlock()
	}
	return filter.NewIterator(ctx, filter.Apply(snaps, q.preds, q.limit))
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		return cloneMap(x)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = cloneValue(e)
		}
		return out
	case []byte:
		return append([]byte(nil), x...)
	}
	return v
}
