package core

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/iterator"
)

// Done is returned by SnapshotIterator.Next when no more snapshots remain.
// It is the same sentinel the Google Cloud client libraries use.
var Done = iterator.Done

// Client is the boundary between the mapping core and a concrete document store.
// Adhering to this interface keeps the core independent of the underlying
// transport (in-memory, bbolt file, Cloud Firestore, etc).
type Client interface {
	// Collection returns a handle to the named collection. It never fails;
	// collections come into existence with their first document.
	Collection(name string) Collection
}

// Collection addresses the documents of one record type.
type Collection interface {
	// Doc returns a reference to the document with the given ID.
	// An empty ID asks the store to generate one.
	Doc(id string) DocumentRef

	// Documents streams every document of the collection in store-defined order.
	Documents(ctx context.Context) SnapshotIterator

	// Where starts a filtered query on the collection.
	Where(field string, op Operator, value any) QueryRef

	// Query returns an unfiltered, unlimited query on the collection.
	Query() QueryRef
}

// DocumentRef points at a single document, which may or may not exist.
type DocumentRef interface {
	ID() string

	// Create stores fields as a new document. It fails with ErrAlreadyExists
	// if a document already exists at this reference.
	Create(ctx context.Context, fields map[string]any) (WriteResult, error)

	// Update overwrites the given fields of an existing document and leaves
	// the other stored fields in place; it merges, it does not replace. A
	// field dropped from a record type therefore stays in documents written
	// before the change, and decoding them fails with ErrUnknownField until
	// the field is removed from the store. Update fails with ErrNotFound if
	// the document does not exist.
	Update(ctx context.Context, fields map[string]any) (WriteResult, error)

	// Delete removes the document. Deleting a missing document is not an error.
	Delete(ctx context.Context) (DeleteResult, error)

	// Get reads the document. A missing document yields a snapshot with
	// Exists set to false and a nil error.
	Get(ctx context.Context) (*Snapshot, error)
}

// QueryRef is a store-side query under construction.
type QueryRef interface {
	Where(field string, op Operator, value any) QueryRef

	// Limit caps the number of results at n (n >= 0).
	Limit(n int) QueryRef

	// Documents runs the query. tx may be nil; otherwise it must be a handle
	// issued by the same client.
	Documents(ctx context.Context, tx Transaction) SnapshotIterator
}

// Snapshot is a point-in-time read of a stored document.
type Snapshot struct {
	ID     string
	Exists bool
	Data   map[string]any
}

// SnapshotIterator is a pull-based, single-use cursor over query results.
type SnapshotIterator interface {
	// Next returns the next snapshot, or Done when the results are exhausted.
	Next() (*Snapshot, error)

	// Stop releases the resources held by the iterator. It is safe to call
	// Stop more than once and after Next has returned Done.
	Stop()
}

// WriteResult is returned by create and update operations.
type WriteResult struct {
	UpdateTime time.Time
}

// DeleteResult is returned by delete operations.
type DeleteResult struct {
	DeleteTime time.Time
}

// Transaction is an opaque, store-issued transaction handle. The core never
// looks inside it; it only passes it back to the client that issued it.
type Transaction interface {
	// Store names the client kind that issued the handle (e.g. "memory").
	Store() string
}

// Transactional is implemented by clients that can run read transactions.
type Transactional interface {
	RunTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error
}

// CollectionLister is implemented by clients that can enumerate collections.
type CollectionLister interface {
	Collections(ctx context.Context) ([]string, error)
}

// Operator is a query comparison operator.
type Operator string

const (
	OpLess          Operator = "<"
	OpLessEqual     Operator = "<="
	OpEqual         Operator = "=="
	OpGreaterEqual  Operator = ">="
	OpGreater       Operator = ">"
	OpArrayContains Operator = "array_contains"
)

// Operators lists every supported operator.
var Operators = []Operator{OpLess, OpLessEqual, OpEqual, OpGreaterEqual, OpGreater, OpArrayContains}

// Valid reports whether op is a supported operator.
func (op Operator) Valid() bool {
	switch op {
	case OpLess, OpLessEqual, OpEqual, OpGreaterEqual, OpGreater, OpArrayContains:
		return true
	}
	return false
}

// ParseOperator converts s into an Operator.
func ParseOperator(s string) (Operator, error) {
	op := Operator(s)
	if !op.Valid() {
		return "", fmt.Errorf("%w: unsupported operator %q", ErrInvalidValue, s)
	}
	return op, nil
}

// Predicate is one (field, operator, value) filter. Value is already encoded
// to its wire form.
type Predicate struct {
	Field string
	Op    Operator
	Value any
}

func (p Predicate) String() string {
	return fmt.Sprintf("%s %s %v", p.Field, p.Op, p.Value)
}
