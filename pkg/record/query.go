package record

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/aretw0/fireclass/pkg/codec"
	"github.com/aretw0/fireclass/pkg/core"
	"github.com/aretw0/fireclass/pkg/schema"
)

// Query is an immutable set of predicates and an optional limit on the
// collection of T. Every predicate is checked against the schema of T when
// it is added. The zero Query is not usable; obtain one from a Repository.
type Query[T any] struct {
	repo  *Repository[T]
	preds []core.Predicate
	limit int // negative: unlimited
}

// Where returns a copy of q with one more predicate. All predicates must
// hold for a document to match.
//
// field is a stored field name. value must have the declared type of the
// field (the element type for OpArrayContains); nil is accepted for
// optional fields, and only with OpEqual. Enum values are compared in their
// stored form.
func (q Query[T]) Where(field string, op core.Operator, value any) (Query[T], error) {
	if q.repo == nil {
		return q, fmt.Errorf("%w: query has no repository", core.ErrNotConfigured)
	}
	s := q.repo.schema
	f, err := s.Resolve(field)
	if err != nil {
		return q, err
	}
	if !op.Valid() {
		return q, core.NewFieldError(s.Name, field, core.ErrInvalidValue, "unsupported operator %q", op)
	}

	target := f
	if op == core.OpArrayContains {
		if f.Kind != schema.KindSlice {
			return q, core.NewFieldError(s.Name, field, core.ErrTypeMismatch,
				"%s requires a slice field, %q is %s", op, field, f)
		}
		target = f.Elem
	}
	if err := checkValue(target, value); err != nil {
		return q, core.NewFieldError(s.Name, field, core.ErrTypeMismatch, "%v", err)
	}

	enc, err := codec.Encode(value)
	if err != nil {
		return q, core.NewFieldError(s.Name, field, err, "")
	}
	if enc == nil && op != core.OpEqual {
		return q, core.NewFieldError(s.Name, field, core.ErrInvalidValue,
			"null can only be matched with %s, not %s", core.OpEqual, op)
	}

	next := q
	next.preds = slices.Concat(q.preds, []core.Predicate{{Field: field, Op: op, Value: enc}})
	return next, nil
}

// checkValue accepts nil for optional fields and otherwise only values whose
// dynamic type is the declared type. Optional fields also take *T.
func checkValue(f *schema.Field, value any) error {
	t := reflect.TypeOf(value)
	if t == nil {
		if f.Optional {
			return nil
		}
		return fmt.Errorf("nil is not a valid %s", f)
	}
	inner := f.Inner()
	if t == inner || (f.Optional && t == f.Type) {
		return nil
	}
	return fmt.Errorf("expected %s (%s), received %s", f, inner, t)
}

// Limit returns a copy of q returning at most n documents.
func (q Query[T]) Limit(n int) (Query[T], error) {
	if n < 0 {
		return q, fmt.Errorf("%w: negative limit %d", core.ErrInvalidValue, n)
	}
	next := q
	next.preds = slices.Clip(q.preds)
	next.limit = n
	return next, nil
}

// Predicates returns the predicates of q in the order they were added.
func (q Query[T]) Predicates() []core.Predicate {
	return slices.Clone(q.preds)
}

func (q Query[T]) String() string {
	parts := make([]string, 0, len(q.preds)+1)
	for _, p := range q.preds {
		parts = append(parts, p.String())
	}
	s := "*"
	if len(parts) > 0 {
		s = strings.Join(parts, " AND ")
	}
	if q.limit >= 0 {
		s += fmt.Sprintf(" LIMIT %d", q.limit)
	}
	return s
}

// Stream runs the query.
func (q Query[T]) Stream(ctx context.Context) *Iterator[T] {
	return q.StreamTx(ctx, nil)
}

// StreamTx runs the query inside tx, a transaction issued by the configured
// client. A nil tx runs outside any transaction.
func (q Query[T]) StreamTx(ctx context.Context, tx core.Transaction) *Iterator[T] {
	if q.repo == nil {
		return failed[T](fmt.Errorf("%w: query has no repository", core.ErrNotConfigured))
	}
	col, err := q.repo.coll()
	if err != nil {
		return failed[T](err)
	}

	ref := col.Query()
	for _, p := range q.preds {
		ref = ref.Where(p.Field, p.Op, p.Value)
	}
	if q.limit >= 0 {
		ref = ref.Limit(q.limit)
	}
	q.repo.logger.Debug("running query", "query", q.String(), "tx", tx != nil)
	return newIterator(ref.Documents(ctx, tx), q.repo)
}
