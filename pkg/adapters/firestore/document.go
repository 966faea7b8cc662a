package firestore

import (
	"context"
	"errors"
	"fmt"

	gfs "cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/aretw0/fireclass/internal/filter"
	"github.com/aretw0/fireclass/pkg/core"
)

type collection struct {
	client *Client
	ref    *gfs.CollectionRef
}

func (col *collection) Doc(id string) core.DocumentRef {
	if id == "" {
		return &docRef{ref: col.ref.NewDoc()}
	}
	return &docRef{ref: col.ref.Doc(id)}
}

func (col *collection) Documents(ctx context.Context) core.SnapshotIterator {
	return &snapshotIterator{it: col.ref.Documents(ctx)}
}

func (col *collection) Where(field string, op core.Operator, value any) core.QueryRef {
	return col.Query().Where(field, op, value)
}

func (col *collection) Query() core.QueryRef {
	return &query{client: col.client, q: col.ref.Query}
}

type docRef struct {
	ref *gfs.DocumentRef
}

func (d *docRef) ID() string { return d.ref.ID }

func (d *docRef) Create(ctx context.Context, fields map[string]any) (core.WriteResult, error) {
	res, err := d.ref.Create(ctx, fields)
	if err != nil {
		return core.WriteResult{}, translate(err)
	}
	return core.WriteResult{UpdateTime: res.UpdateTime}, nil
}

func (d *docRef) Update(ctx context.Context, fields map[string]any) (core.WriteResult, error) {
	updates := make([]gfs.Update, 0, len(fields))
	for k, v := range fields {
		updates = append(updates, gfs.Update{FieldPath: gfs.FieldPath{k}, Value: v})
	}
	res, err := d.ref.Update(ctx, updates)
	if err != nil {
		return core.WriteResult{}, translate(err)
	}
	return core.WriteResult{UpdateTime: res.UpdateTime}, nil
}

func (d *docRef) Delete(ctx context.Context) (core.DeleteResult, error) {
	res, err := d.ref.Delete(ctx)
	if err != nil {
		return core.DeleteResult{}, translate(err)
	}
	return core.DeleteResult{DeleteTime: res.UpdateTime}, nil
}

func (d *docRef) Get(ctx context.Context) (*core.Snapshot, error) {
	snap, err := d.ref.Get(ctx)
	if status.Code(err) == codes.NotFound {
		return &core.Snapshot{ID: d.ref.ID}, nil
	}
	if err != nil {
		return nil, translate(err)
	}
	return toSnapshot(snap), nil
}

func toSnapshot(snap *gfs.DocumentSnapshot) *core.Snapshot {
	if !snap.Exists() {
		return &core.Snapshot{ID: snap.Ref.ID}
	}
	return &core.Snapshot{ID: snap.Ref.ID, Exists: true, Data: snap.Data()}
}

type query struct {
	client *Client
	q      gfs.Query
}

func (q *query) Where(field string, op core.Operator, value any) core.QueryRef {
	return &query{client: q.client, q: q.q.WherePath(gfs.FieldPath{field}, operator(op), value)}
}

func (q *query) Limit(n int) core.QueryRef {
	return &query{client: q.client, q: q.q.Limit(n)}
}

func (q *query) Documents(ctx context.Context, tx core.Transaction) core.SnapshotIterator {
	if tx == nil {
		return &snapshotIterator{it: q.q.Documents(ctx)}
	}
	t, ok := tx.(*txn)
	if !ok || t.client != q.client {
		return filter.Failed(fmt.Errorf("%w: transaction %T was not issued by this client", core.ErrInvalidValue, tx))
	}
	return &snapshotIterator{it: t.tx.Documents(q.q)}
}

type snapshotIterator struct {
	it *gfs.DocumentIterator
}

func (s *snapshotIterator) Next() (*core.Snapshot, error) {
	snap, err := s.it.Next()
	if errors.Is(err, iterator.Done) {
		return nil, core.Done
	}
	if err != nil {
		return nil, translate(err)
	}
	return toSnapshot(snap), nil
}

func (s *snapshotIterator) Stop() {
	s.it.Stop()
}
