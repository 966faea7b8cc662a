package fireclass

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/api/option"

	"github.com/aretw0/fireclass/internal/platform"
	"github.com/aretw0/fireclass/pkg/core"
	"github.com/aretw0/fireclass/pkg/record"
)

// --- Types ---

// Base is the identity slot every record type embeds.
type Base = record.Base

// Repository persists one record type.
type Repository[T any] = record.Repository[T]

// Query is an immutable, type-checked query on one record type.
type Query[T any] = record.Query[T]

// Iterator is a single-use cursor over query results.
type Iterator[T any] = record.Iterator[T]

// Database is the store-access context shared by repositories.
type Database = core.Database

// Operator is a query comparison operator.
type Operator = core.Operator

// Query operators.
const (
	OpLess          = core.OpLess
	OpLessEqual     = core.OpLessEqual
	OpEqual         = core.OpEqual
	OpGreaterEqual  = core.OpGreaterEqual
	OpGreater       = core.OpGreater
	OpArrayContains = core.OpArrayContains
)

// Done is returned by Iterator.Next when no more records remain.
var Done = core.Done

// --- Configuration ---

// Option defines a functional option for configuring a Database.
type Option = platform.Option

// WithLogger sets the logger for the database and its repositories.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithClient installs a custom store client.
func WithClient(c core.Client) Option {
	return platform.WithClient(c)
}

// WithAdapter selects the store adapter by name ("memory", "bolt" or "firestore").
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithPath sets the file used by the bolt adapter.
func WithPath(path string) Option {
	return platform.WithPath(path)
}

// WithProjectID sets the Google Cloud project used by the firestore adapter.
func WithProjectID(id string) Option {
	return platform.WithProjectID(id)
}

// WithFirestoreOptions passes client options to the firestore adapter.
func WithFirestoreOptions(opts ...option.ClientOption) Option {
	return platform.WithFirestoreOptions(opts...)
}

// WithBoltTimeout bounds how long the bolt adapter waits for the file lock.
func WithBoltTimeout(d time.Duration) Option {
	return platform.WithBoltTimeout(d)
}

// WithReadOnly opens the bolt file read-only.
func WithReadOnly(enabled bool) Option {
	return platform.WithReadOnly(enabled)
}

// WithDevSafety controls the temp-dir sandbox of the bolt adapter under `go run`.
func WithDevSafety(enabled bool) Option {
	return platform.WithDevSafety(enabled)
}

// WithID creates a record under the given document ID.
func WithID(id string) record.CreateOption {
	return record.WithID(id)
}

// WithCollection overrides the collection of a repository.
func WithCollection(name string) record.Option {
	return record.WithCollection(name)
}

// --- Factory ---

// Open builds a Database configured with the selected store client.
func Open(ctx context.Context, opts ...Option) (*core.Database, error) {
	return platform.Open(ctx, opts...)
}

// For creates the repository of the record type T.
func For[T any](db *core.Database, opts ...record.Option) (*record.Repository[T], error) {
	return record.New[T](db, opts...)
}

// RunTransaction runs fn inside a read transaction of the configured client.
func RunTransaction(ctx context.Context, db *core.Database, fn func(ctx context.Context, tx core.Transaction) error) error {
	return record.RunTransaction(ctx, db, fn)
}

// IsDevRun checks if the current process is running via `go run` or `go test`.
func IsDevRun() bool {
	return platform.IsDevRun()
}
