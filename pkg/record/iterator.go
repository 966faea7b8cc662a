package record

import (
	"context"
	"errors"
	"iter"
	"log/slog"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/fireclass/pkg/core"
)

// Iterator is a single-use cursor over decoded records.
//
// Next returns core.Done once the results are exhausted. Stop releases the
// underlying store cursor; it is called automatically when Next returns an
// error (including core.Done) and is safe to call more than once. An
// Iterator must not be used from several goroutines at once.
type Iterator[T any] struct {
	src  core.SnapshotIterator
	repo *Repository[T]
	err  error
}

func newIterator[T any](src core.SnapshotIterator, repo *Repository[T]) *Iterator[T] {
	return &Iterator[T]{src: src, repo: repo}
}

// failed returns an iterator whose Next always fails with err.
func failed[T any](err error) *Iterator[T] {
	return &Iterator[T]{err: err}
}

// Next returns the next record.
func (it *Iterator[T]) Next() (*T, error) {
	if it.err != nil {
		return nil, it.err
	}
	snap, err := it.src.Next()
	if err != nil {
		it.fail(err)
		return nil, err
	}
	doc, err := it.repo.decode(snap)
	if err != nil {
		it.fail(err)
		return nil, err
	}
	return doc, nil
}

func (it *Iterator[T]) fail(err error) {
	it.err = err
	it.release()
}

func (it *Iterator[T]) release() {
	if it.src != nil {
		it.src.Stop()
		it.src = nil
	}
}

// Stop releases the iterator. Subsequent calls to Next return core.Done.
func (it *Iterator[T]) Stop() {
	if it.err == nil {
		it.err = core.Done
	}
	it.release()
}

// All returns a range-over-func sequence of the remaining records. The
// sequence ends after the first error, which is yielded with a nil record.
// The iterator is stopped when the loop ends, including on break.
func (it *Iterator[T]) All() iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		defer it.Stop()
		for {
			doc, err := it.Next()
			if errors.Is(err, core.Done) {
				return
			}
			if !yield(doc, err) || err != nil {
				return
			}
		}
	}
}

// GetAll drains the iterator into a slice.
func (it *Iterator[T]) GetAll() ([]*T, error) {
	var docs []*T
	for doc, err := range it.All() {
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Result is one element delivered by Chan.
type Result[T any] struct {
	Record *T
	Err    error
}

// Chan drains the iterator from a background goroutine and delivers each
// record on the returned channel, which is closed when the results are
// exhausted, after the first error, or when ctx is cancelled. The caller
// must not use the iterator directly afterwards.
func (it *Iterator[T]) Chan(ctx context.Context) <-chan Result[T] {
	out := make(chan Result[T])
	logger := it.logger()

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(out)
		defer it.Stop()
		for {
			doc, err := it.Next()
			if errors.Is(err, core.Done) {
				return nil
			}
			select {
			case out <- Result[T]{Record: doc, Err: err}:
			case <-ctx.Done():
				return nil
			}
			if err != nil {
				return nil
			}
		}
	}, lifecycle.WithErrorHandler(func(err error) {
		logger.Error("record stream panic", "error", err)
	}))

	return out
}

func (it *Iterator[T]) logger() *slog.Logger {
	if it.repo == nil {
		return slog.New(slog.DiscardHandler)
	}
	return it.repo.logger
}
