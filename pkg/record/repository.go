package record

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/aretw0/fireclass/pkg/codec"
	"github.com/aretw0/fireclass/pkg/core"
	"github.com/aretw0/fireclass/pkg/schema"
)

// Repository persists values of the record type T in one collection.
// It is safe for concurrent use; individual *T values are not.
type Repository[T any] struct {
	db         *core.Database
	schema     *schema.Schema
	collection string
	logger     *slog.Logger
}

// New creates a repository for T backed by db. *T must embed Base.
func New[T any](db *core.Database, opts ...Option) (*Repository[T], error) {
	if _, ok := any(new(T)).(Entity); !ok {
		return nil, fmt.Errorf("%w: %s does not embed record.Base", core.ErrUnsupportedType, reflect.TypeFor[T]())
	}
	s, err := schema.For[T]()
	if err != nil {
		return nil, err
	}

	o := options{collection: s.Name}
	if n, ok := any(new(T)).(Named); ok {
		o.collection = n.CollectionName()
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Repository[T]{
		db:         db,
		schema:     s,
		collection: o.collection,
		logger:     db.Logger().With("collection", o.collection),
	}, nil
}

// MustNew is like New but panics on error. It is meant for package-level
// repository variables.
func MustNew[T any](db *core.Database, opts ...Option) *Repository[T] {
	r, err := New[T](db, opts...)
	if err != nil {
		panic(err)
	}
	return r
}

// Collection returns the name of the collection backing the repository.
func (r *Repository[T]) Collection() string { return r.collection }

// Schema returns the field schema of T.
func (r *Repository[T]) Schema() *schema.Schema { return r.schema }

func (r *Repository[T]) coll() (core.Collection, error) {
	c, err := r.db.Client()
	if err != nil {
		return nil, err
	}
	return c.Collection(r.collection), nil
}

func identity[T any](doc *T) (*Base, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: nil record", core.ErrInvalidValue)
	}
	return any(doc).(Entity).identity(), nil
}

// Create stores doc as a new document and assigns its identity.
//
// The document ID is generated by the store unless WithID is given. Create
// fails with core.ErrAlreadyPersisted if doc already has an identity, and
// leaves the identity unset on any failure.
func (r *Repository[T]) Create(ctx context.Context, doc *T, opts ...CreateOption) (core.WriteResult, error) {
	b, err := identity(doc)
	if err != nil {
		return core.WriteResult{}, err
	}
	if b.HasID() {
		return core.WriteResult{}, fmt.Errorf("%w: %s %s", core.ErrAlreadyPersisted, r.schema.Name, b.id)
	}

	var o createOptions
	for _, opt := range opts {
		opt(&o)
	}

	data, err := codec.EncodeRecord(r.schema, reflect.ValueOf(doc))
	if err != nil {
		return core.WriteResult{}, err
	}
	col, err := r.coll()
	if err != nil {
		return core.WriteResult{}, err
	}

	ref := col.Doc(o.id)
	res, err := ref.Create(ctx, data)
	if err != nil {
		return core.WriteResult{}, fmt.Errorf("create %s/%s: %w", r.collection, ref.ID(), err)
	}
	b.id = ref.ID()
	r.logger.Debug("record created", "id", b.id)
	return res, nil
}

// Update overwrites the stored document with the current field values of doc.
func (r *Repository[T]) Update(ctx context.Context, doc *T) (core.WriteResult, error) {
	b, err := identity(doc)
	if err != nil {
		return core.WriteResult{}, err
	}
	if !b.HasID() {
		return core.WriteResult{}, fmt.Errorf("%w: cannot update %s", core.ErrNotPersisted, r.schema.Name)
	}

	data, err := codec.EncodeRecord(r.schema, reflect.ValueOf(doc))
	if err != nil {
		return core.WriteResult{}, err
	}
	col, err := r.coll()
	if err != nil {
		return core.WriteResult{}, err
	}

	res, err := col.Doc(b.id).Update(ctx, data)
	if err != nil {
		return core.WriteResult{}, fmt.Errorf("update %s/%s: %w", r.collection, b.id, err)
	}
	r.logger.Debug("record updated", "id", b.id)
	return res, nil
}

// Delete removes the stored document of doc. doc keeps its identity.
func (r *Repository[T]) Delete(ctx context.Context, doc *T) (core.DeleteResult, error) {
	b, err := identity(doc)
	if err != nil {
		return core.DeleteResult{}, err
	}
	if !b.HasID() {
		return core.DeleteResult{}, fmt.Errorf("%w: cannot delete %s", core.ErrNotPersisted, r.schema.Name)
	}
	return r.DeleteByID(ctx, b.id)
}

// DeleteByID removes the document stored under id. Deleting a missing
// document succeeds.
func (r *Repository[T]) DeleteByID(ctx context.Context, id string) (core.DeleteResult, error) {
	if id == "" {
		return core.DeleteResult{}, fmt.Errorf("%w: empty document id", core.ErrInvalidValue)
	}
	col, err := r.coll()
	if err != nil {
		return core.DeleteResult{}, err
	}

	res, err := col.Doc(id).Delete(ctx)
	if err != nil {
		return core.DeleteResult{}, fmt.Errorf("delete %s/%s: %w", r.collection, id, err)
	}
	r.logger.Debug("record deleted", "id", id)
	return res, nil
}

// Get loads the document stored under id. It fails with core.ErrNotFound if
// there is none.
func (r *Repository[T]) Get(ctx context.Context, id string) (*T, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty document id", core.ErrInvalidValue)
	}
	col, err := r.coll()
	if err != nil {
		return nil, err
	}

	snap, err := col.Doc(id).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", r.collection, id, err)
	}
	if snap == nil || !snap.Exists {
		return nil, fmt.Errorf("%w: %s/%s", core.ErrNotFound, r.collection, id)
	}
	return r.decode(snap)
}

func (r *Repository[T]) decode(snap *core.Snapshot) (*T, error) {
	doc := new(T)
	if err := codec.DecodeRecord(r.schema, snap.Data, reflect.ValueOf(doc)); err != nil {
		return nil, fmt.Errorf("decode %s/%s: %w", r.collection, snap.ID, err)
	}
	any(doc).(Entity).identity().id = snap.ID
	return doc, nil
}

// Stream iterates over every document of the collection in store order.
// The iterator must be released with Stop unless it is exhausted.
func (r *Repository[T]) Stream(ctx context.Context) *Iterator[T] {
	col, err := r.coll()
	if err != nil {
		return failed[T](err)
	}
	return newIterator(col.Documents(ctx), r)
}

// Query returns an empty query on the collection.
func (r *Repository[T]) Query() Query[T] {
	return Query[T]{repo: r, limit: -1}
}

// Where is shorthand for r.Query().Where(field, op, value).
func (r *Repository[T]) Where(field string, op core.Operator, value any) (Query[T], error) {
	return r.Query().Where(field, op, value)
}
