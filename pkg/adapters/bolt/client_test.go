package bolt_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/fireclass/pkg/adapters/bolt"
	"github.com/aretw0/fireclass/pkg/core"
	"github.com/aretw0/fireclass/pkg/record"
	"github.com/aretw0/fireclass/pkg/record/recordtest"
)

func openTemp(t *testing.T) *bolt.Client {
	t.Helper()
	c, err := bolt.Open(filepath.Join(t.TempDir(), "store.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestCompatibility(t *testing.T) {
	recordtest.CompatibilityKit(t, func(t *testing.T) core.Client { return openTemp(t) })
}

func TestValuesSurviveReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "store.db")

	seen := time.Date(2024, 5, 17, 10, 30, 0, 123456789, time.UTC)
	fields := map[string]any{
		"nil":    nil,
		"bool":   true,
		"int":    int64(9007199254740993),
		"float":  1.5,
		"whole":  2.0,
		"string": "s",
		"bytes":  []byte{0, 1, 2},
		"time":   seen,
		"array":  []any{int64(1), "x", nil},
		"map":    map[string]any{"a": []any{}, "b": map[string]any{}},
	}

	c, err := bolt.Open(path)
	require.NoError(t, err)
	_, err = c.Collection("things").Doc("t1").Create(ctx, fields)
	require.NoError(t, err)
	require.NoError(t, c.Close())

	c, err = bolt.Open(path, bolt.WithReadOnly(true))
	require.NoError(t, err)
	defer c.Close()

	snap, err := c.Collection("things").Doc("t1").Get(ctx)
	require.NoError(t, err)
	require.True(t, snap.Exists)
	assert.Equal(t, fields, snap.Data)

	_, err = c.Collection("things").Doc("t2").Create(ctx, fields)
	require.ErrorIs(t, err, bolt.ErrReadOnly)
}

func TestTimestamps_HostZoneMatchesOffset(t *testing.T) {
	prev := time.Local
	time.Local = time.FixedZone("EST", -5*3600)
	t.Cleanup(func() { time.Local = prev })

	ctx := context.Background()
	c := openTemp(t)
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.FixedZone("fixed", -5*3600))

	_, err := c.Collection("events").Doc("e1").Create(ctx, map[string]any{"at": at})
	require.NoError(t, err)
	snap, err := c.Collection("events").Doc("e1").Get(ctx)
	require.NoError(t, err)
	raw := snap.Data["at"].(time.Time)
	assert.NotSame(t, time.Local, raw.Location())
	assert.True(t, at.Equal(raw))

	db := core.NewDatabase(nil)
	require.NoError(t, db.Configure(c))
	users, err := record.New[recordtest.User](db)
	require.NoError(t, err)

	u := &recordtest.User{Email: "a@b.com", Membership: recordtest.MembershipFull, LastLogin: &at}
	_, err = users.Create(ctx, u)
	require.NoError(t, err)

	loaded, err := users.Get(ctx, u.ID())
	require.NoError(t, err)
	require.NotNil(t, loaded.LastLogin)
	_, offset := loaded.LastLogin.Zone()
	assert.Equal(t, -5*3600, offset)

	loaded.Active = true
	_, err = users.Update(ctx, loaded)
	require.NoError(t, err, "a loaded record can be saved again")

	again, err := users.Get(ctx, u.ID())
	require.NoError(t, err)
	assert.True(t, again.Active)
	assert.True(t, at.Equal(*again.LastLogin))
}

func TestDocumentRef(t *testing.T) {
	ctx := context.Background()
	c := openTemp(t)
	col := c.Collection("users")

	ref := col.Doc("")
	assert.Len(t, ref.ID(), 27)

	snap, err := ref.Get(ctx)
	require.NoError(t, err)
	assert.False(t, snap.Exists)

	_, err = ref.Update(ctx, map[string]any{"a": int64(1)})
	require.ErrorIs(t, err, core.ErrNotFound)
	_, err = ref.Delete(ctx)
	require.NoError(t, err, "deleting from a missing bucket succeeds")

	_, err = ref.Create(ctx, map[string]any{"a": int64(1), "b": "keep"})
	require.NoError(t, err)
	_, err = ref.Create(ctx, map[string]any{"a": int64(2)})
	require.ErrorIs(t, err, core.ErrAlreadyExists)

	_, err = ref.Update(ctx, map[string]any{"a": int64(3)})
	require.NoError(t, err)
	snap, err = ref.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": int64(3), "b": "keep"}, snap.Data)

	_, err = ref.Create(ctx, map[string]any{"bad": struct{}{}})
	require.ErrorIs(t, err, core.ErrInvalidValue)
}

func TestQueryAndCollections(t *testing.T) {
	ctx := context.Background()
	c := openTemp(t)

	col := c.Collection("nums")
	for i, id := range []string{"c", "a", "d", "b"} {
		_, err := col.Doc(id).Create(ctx, map[string]any{"n": int64(i), "tags": []any{"even"}})
		require.NoError(t, err)
	}
	_, err := c.Collection("other").Doc("x").Create(ctx, map[string]any{})
	require.NoError(t, err)

	it := col.Where("n", core.OpLess, int64(3)).Where("tags", core.OpArrayContains, "even").Limit(2).Documents(ctx, nil)
	defer it.Stop()
	s, err := it.Next()
	require.NoError(t, err)
	assert.Equal(t, "a", s.ID)
	s, err = it.Next()
	require.NoError(t, err)
	assert.Equal(t, "c", s.ID)
	_, err = it.Next()
	require.ErrorIs(t, err, core.Done)

	names, err := c.Collections(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"nums", "other"}, names)

	st, ok := c.State().(bolt.ClientState)
	require.True(t, ok)
	assert.Equal(t, 2, st.Collections)
	assert.Equal(t, 5, st.Documents)
	assert.Equal(t, "bolt", c.ComponentType())
}

func TestTransaction(t *testing.T) {
	ctx := context.Background()
	c := openTemp(t)
	_, err := c.Collection("users").Doc("a").Create(ctx, map[string]any{"n": int64(1)})
	require.NoError(t, err)

	err = c.RunTransaction(ctx, func(ctx context.Context, tx core.Transaction) error {
		assert.Equal(t, "bolt", tx.Store())
		it := c.Collection("users").Query().Documents(ctx, tx)
		defer it.Stop()
		s, err := it.Next()
		require.NoError(t, err)
		assert.Equal(t, "a", s.ID)
		return nil
	})
	require.NoError(t, err)

	other := openTemp(t)
	err = other.RunTransaction(ctx, func(ctx context.Context, tx core.Transaction) error {
		_, err := c.Collection("users").Query().Documents(ctx, tx).Next()
		return err
	})
	require.ErrorIs(t, err, core.ErrInvalidValue)
}

func TestOpen_Locked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.db")
	c, err := bolt.Open(path)
	require.NoError(t, err)
	defer c.Close()

	_, err = bolt.Open(path, bolt.WithTimeout(50*time.Millisecond))
	require.Error(t, err)
}
