package bolt

import (
	"context"
	"fmt"

	"github.com/segmentio/ksuid"
	bolt "go.etcd.io/bbolt"

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

func (d *docRef) key() []byte { return []byte(d.id) }

func (d *docRef) Create(ctx context.Context, fields map[string]any) (core.WriteResult, error) {
	if err := ctx.Err(); err != nil {
		return core.WriteResult{}, err
	}
	raw, err := encodeDoc(fields)
	if err != nil {
		return core.WriteResult{}, err
	}

	err = d.col.client.update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(d.col.name))
		if err != nil {
			return err
		}
		if b.Get(d.key()) != nil {
			return fmt.Errorf("%w: %s/%s", core.ErrAlreadyExists, d.col.name, d.id)
		}
		return b.Put(d.key(), raw)
	})
	if err != nil {
		return core.WriteResult{}, err
	}
	return core.WriteResult{UpdateTime: d.col.client.now().UTC()}, nil
}

func (d *docRef) Update(ctx context.Context, fields map[string]any) (core.WriteResult, error) {
	if err := ctx.Err(); err != nil {
		return core.WriteResult{}, err
	}

	err := d.col.client.update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(d.col.name))
		var current []byte
		if b != nil {
			current = b.Get(d.key())
		}
		if current == nil {
			return fmt.Errorf("%w: %s/%s", core.ErrNotFound, d.col.name, d.id)
		}

		merged, err := decodeDoc(current)
		if err != nil {
			return err
		}
		for k, v := range fields {
			merged[k] = v
		}
		raw, err := encodeDoc(merged)
		if err != nil {
			return err
		}
		return b.Put(d.key(), raw)
	})
	if err != nil {
		return core.WriteResult{}, err
	}
	return core.WriteResult{UpdateTime: d.col.client.now().UTC()}, nil
}

func (d *docRef) Delete(ctx context.Context) (core.DeleteResult, error) {
	if err := ctx.Err(); err != nil {
		return core.DeleteResult{}, err
	}

	err := d.col.client.update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(d.col.name))
		if b == nil {
			return nil
		}
		return b.Delete(d.key())
	})
	if err != nil {
		return core.DeleteResult{}, err
	}
	return core.DeleteResult{DeleteTime: d.col.client.now().UTC()}, nil
}

func (d *docRef) Get(ctx context.Context) (*core.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snap := &core.Snapshot{ID: d.id}
	err := d.col.client.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(d.col.name))
		if b == nil {
			return nil
		}
		raw := b.Get(d.key())
		if raw == nil {
			return nil
		}
		data, err := decodeDoc(raw)
		if err != nil {
			return fmt.Errorf("%s/%s: %w", d.col.name, d.id, err)
		}
		snap.Exists = true
		snap.Data = data
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
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

// Documents materialises the result set inside one read transaction, so
// the returned iterator holds no lock on the file.
func (q *query) Documents(ctx context.Context, tx core.Transaction) core.SnapshotIterator {
	if err := ctx.Err(); err != nil {
		return filter.Failed(err)
	}

	var snaps []*core.Snapshot
	err := q.col.client.view(tx, func(btx *bolt.Tx) error {
		b := btx.Bucket([]byte(q.col.name))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			data, err := decodeDoc(v)
			if err != nil {
				return fmt.Errorf("%s/%s: %w", q.col.name, k, err)
			}
			snaps = append(snaps, &core.Snapshot{ID: string(k), Exists: true, Data: data})
			return nil
		})
	})
	if err != nil {
		return filter.Failed(err)
	}
	return filter.NewIterator(ctx, filter.Apply(snaps, q.preds, q.limit))
}
