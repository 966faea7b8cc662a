package filter

import (
	"cmp"
	"context"
	"slices"

	"github.com/aretw0/fireclass/pkg/core"
)

// Apply keeps the snapshots matching preds, orders them by document ID and
// truncates the result to limit (negative: unlimited).
func Apply(snaps []*core.Snapshot, preds []core.Predicate, limit int) []*core.Snapshot {
	out := make([]*core.Snapshot, 0, len(snaps))
	for _, s := range snaps {
		if Match(s.Data, preds) {
			out = append(out, s)
		}
	}
	slices.SortFunc(out, func(a, b *core.Snapshot) int { return cmp.Compare(a.ID, b.ID) })
	return Limit(out, limit)
}

// Iterator walks a materialised result set.
type Iterator struct {
	ctx   context.Context
	snaps []*core.Snapshot
	err   error
}

// NewIterator returns an iterator over snaps. Next fails with ctx.Err() once
// ctx is cancelled.
func NewIterator(ctx context.Context, snaps []*core.Snapshot) *Iterator {
	return &Iterator{ctx: ctx, snaps: snaps}
}

// Failed returns an iterator whose Next always returns err.
func Failed(err error) *Iterator {
	return &Iterator{err: err}
}

func (it *Iterator) Next() (*core.Snapshot, error) {
	if it.err != nil {
		return nil, it.err
	}
	if err := it.ctx.Err(); err != nil {
		it.err = err
		it.snaps = nil
		return nil, err
	}
	if len(it.snaps) == 0 {
		it.err = core.Done
		return nil, core.Done
	}
	s := it.snaps[0]
	it.snaps = it.snaps[1:]
	return s, nil
}

func (it *Iterator) Stop() {
	if it.err == nil {
		it.err = core.Done
	}
	it.snaps = nil
}

var _ core.SnapshotIterator = (*Iterator)(nil)
