// Package recordtest holds a compatibility kit that checks a core.Client
// against the behaviour pkg/record relies on.
package recordtest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/ksuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/fireclass/pkg/core"
	"github.com/aretw0/fireclass/pkg/record"
)

// Membership is the enum used by the kit.
type Membership int

const (
	MembershipNone Membership = iota + 1
	MembershipIntermediate
	MembershipFull
)

func (m Membership) Valid() bool { return m >= MembershipNone && m <= MembershipFull }

// User is the record type used by the kit.
type User struct {
	record.Base
	Email      string     `fireclass:"email_address"`
	Count      int        `fireclass:"family_members_count"`
	LastLogin  *time.Time `fireclass:"last_login_date"`
	Membership Membership `fireclass:"membership"`
	Active     bool       `fireclass:"is_active"`
	Nick       *string    `fireclass:"nick"`
	Tags       []string   `fireclass:"tags"`
}

// ClientFactory returns a ready client for one subtest.
type ClientFactory func(t *testing.T) core.Client

// CompatibilityKit runs the record scenarios against clients built by
// newClient. Each subtest writes to its own collection.
func CompatibilityKit(t *testing.T, newClient ClientFactory) {
	t.Run("Identity", func(t *testing.T) { testIdentity(t, newRepo(t, newClient)) })
	t.Run("ExplicitID", func(t *testing.T) { testExplicitID(t, newRepo(t, newClient)) })
	t.Run("CreateThenGet", func(t *testing.T) { testCreateThenGet(t, newRepo(t, newClient)) })
	t.Run("Update", func(t *testing.T) { testUpdate(t, newRepo(t, newClient)) })
	t.Run("ZonedTimestamp", func(t *testing.T) { testZonedTimestamp(t, newRepo(t, newClient)) })
	t.Run("DeleteThenGet", func(t *testing.T) { testDeleteThenGet(t, newRepo(t, newClient)) })
	t.Run("QueryLimit", func(t *testing.T) { testQueryLimit(t, newRepo(t, newClient)) })
	t.Run("QueryEnum", func(t *testing.T) { testQueryEnum(t, newRepo(t, newClient)) })
	t.Run("ChainedPredicates", func(t *testing.T) { testChainedPredicates(t, newRepo(t, newClient)) })
	t.Run("OptionalNull", func(t *testing.T) { testOptionalNull(t, newRepo(t, newClient)) })
	t.Run("ArrayContains", func(t *testing.T) { testArrayContains(t, newRepo(t, newClient)) })
	t.Run("Stream", func(t *testing.T) { testStream(t, newRepo(t, newClient)) })
	t.Run("Transaction", func(t *testing.T) { testTransaction(t, newClient) })
}

func newRepo(t *testing.T, newClient ClientFactory) *record.Repository[User] {
	t.Helper()
	repo, _ := newRepoDB(t, newClient)
	return repo
}

func newRepoDB(t *testing.T, newClient ClientFactory) (*record.Repository[User], *core.Database) {
	t.Helper()
	db := core.NewDatabase(nil)
	require.NoError(t, db.Configure(newClient(t)))
	repo, err := record.New[User](db, record.WithCollection("User_"+ksuid.New().String()))
	require.NoError(t, err)
	return repo, db
}

func createN(t *testing.T, repo *record.Repository[User], users ...*User) {
	t.Helper()
	ctx := context.Background()
	for _, u := range users {
		_, err := repo.Create(ctx, u)
		require.NoError(t, err)
	}
}

func ids(users []*User) []string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		out = append(out, u.ID())
	}
	return out
}

func testIdentity(t *testing.T, repo *record.Repository[User]) {
	ctx := context.Background()

	u := &User{Email: "a@b.com", Membership: MembershipNone}
	assert.False(t, u.HasID())
	assert.Empty(t, u.ID())

	_, err := repo.Update(ctx, u)
	require.ErrorIs(t, err, core.ErrNotPersisted)
	_, err = repo.Delete(ctx, u)
	require.ErrorIs(t, err, core.ErrNotPersisted)

	_, err = repo.Create(ctx, u)
	require.NoError(t, err)
	require.True(t, u.HasID())
	id := u.ID()
	assert.NotEmpty(t, id)

	_, err = repo.Create(ctx, u)
	require.ErrorIs(t, err, core.ErrAlreadyPersisted)
	assert.Equal(t, id, u.ID())
}

func testExplicitID(t *testing.T, repo *record.Repository[User]) {
	ctx := context.Background()

	u := &User{Email: "a@b.com", Membership: MembershipFull}
	_, err := repo.Create(ctx, u, record.WithID("user-1"))
	require.NoError(t, err)
	assert.Equal(t, "user-1", u.ID())

	dup := &User{Email: "c@d.com", Membership: MembershipFull}
	_, err = repo.Create(ctx, dup, record.WithID("user-1"))
	require.ErrorIs(t, err, core.ErrAlreadyExists)
	assert.False(t, dup.HasID(), "failed create leaves the identity unset")

	bad := &User{Email: "e@f.com"}
	_, err = repo.Create(ctx, bad)
	require.ErrorIs(t, err, core.ErrInvalidValue, "zero is not a Membership")
	assert.False(t, bad.HasID())
}

func testCreateThenGet(t *testing.T, repo *record.Repository[User]) {
	ctx := context.Background()

	seen := time.Date(2024, 5, 17, 10, 30, 0, 0, time.UTC)
	nick := "ab"
	u := &User{
		Email:      "a@b.com",
		Count:      3,
		LastLogin:  &seen,
		Membership: MembershipIntermediate,
		Active:     true,
		Nick:       &nick,
		Tags:       []string{"x", "y"},
	}
	_, err := repo.Create(ctx, u)
	require.NoError(t, err)

	got, err := repo.Get(ctx, u.ID())
	require.NoError(t, err)
	assert.Equal(t, u.ID(), got.ID())
	assert.Equal(t, u.Email, got.Email)
	assert.Equal(t, u.Count, got.Count)
	require.NotNil(t, got.LastLogin)
	assert.True(t, seen.Equal(*got.LastLogin))
	assert.Equal(t, u.Membership, got.Membership)
	assert.Equal(t, u.Active, got.Active)
	assert.Equal(t, u.Nick, got.Nick)
	assert.Equal(t, u.Tags, got.Tags)

	_, err = repo.Get(ctx, "missing")
	require.ErrorIs(t, err, core.ErrNotFound)
}

func testUpdate(t *testing.T, repo *record.Repository[User]) {
	ctx := context.Background()

	u := &User{Email: "a@b.com", Membership: MembershipNone}
	createN(t, repo, u)
	id := u.ID()

	u.Membership = MembershipFull
	u.Active = true
	_, err := repo.Update(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, id, u.ID())

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, MembershipFull, got.Membership)
	assert.True(t, got.Active)
}

// testZonedTimestamp saves a record loaded from the store again. Stores may
// return a timestamp in another zone than the one written; the instant must
// survive and the value must stay storable.
func testZonedTimestamp(t *testing.T, repo *record.Repository[User]) {
	ctx := context.Background()

	india := time.FixedZone("IST", 5*3600+1800)
	seen := time.Date(2024, 3, 9, 18, 45, 30, 0, india)
	u := &User{Email: "a@b.com", Membership: MembershipNone, LastLogin: &seen}
	createN(t, repo, u)

	loaded, err := repo.Get(ctx, u.ID())
	require.NoError(t, err)
	require.NotNil(t, loaded.LastLogin)
	assert.True(t, seen.Equal(*loaded.LastLogin))

	loaded.Active = true
	_, err = repo.Update(ctx, loaded)
	require.NoError(t, err)

	again, err := repo.Get(ctx, u.ID())
	require.NoError(t, err)
	assert.True(t, again.Active)
	require.NotNil(t, again.LastLogin)
	assert.True(t, seen.Equal(*again.LastLogin))

	streamed, err := repo.Stream(ctx).GetAll()
	require.NoError(t, err)
	require.Len(t, streamed, 1)
	streamed[0].Count = 2
	_, err = repo.Update(ctx, streamed[0])
	require.NoError(t, err, "streamed records can be saved again")
}

func testDeleteThenGet(t *testing.T, repo *record.Repository[User]) {
	ctx := context.Background()

	u := &User{Email: "a@b.com", Membership: MembershipNone}
	createN(t, repo, u)
	id := u.ID()

	_, err := repo.Delete(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, id, u.ID(), "delete keeps the stale identity")

	_, err = repo.Get(ctx, id)
	require.ErrorIs(t, err, core.ErrNotFound)

	_, err = repo.DeleteByID(ctx, id)
	require.NoError(t, err, "deleting twice is not an error")
}

func testQueryLimit(t *testing.T, repo *record.Repository[User]) {
	ctx := context.Background()

	for range 5 {
		createN(t, repo, &User{Email: "x@y.com", Membership: MembershipNone, Active: false})
	}
	createN(t, repo, &User{Email: "z@y.com", Membership: MembershipNone, Active: true})

	q, err := repo.Where("is_active", core.OpEqual, false)
	require.NoError(t, err)
	q, err = q.Limit(2)
	require.NoError(t, err)

	got, err := q.Stream(ctx).GetAll()
	require.NoError(t, err)
	assert.Len(t, got, 2)
	for _, u := range got {
		assert.False(t, u.Active)
	}
}

func testQueryEnum(t *testing.T, repo *record.Repository[User]) {
	ctx := context.Background()

	a := &User{Email: "a@b.com", Membership: MembershipIntermediate}
	b := &User{Email: "b@b.com", Membership: MembershipIntermediate}
	createN(t, repo, a, b)
	for i := range 5 {
		m := MembershipNone
		if i%2 == 0 {
			m = MembershipFull
		}
		createN(t, repo, &User{Email: "o@b.com", Membership: m})
	}

	q, err := repo.Where("membership", core.OpEqual, MembershipIntermediate)
	require.NoError(t, err)
	got, err := q.Stream(ctx).GetAll()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a.ID(), b.ID()}, ids(got))
}

func testChainedPredicates(t *testing.T, repo *record.Repository[User]) {
	ctx := context.Background()

	both := &User{Email: "a@b.com", Membership: MembershipFull, Active: true}
	onlyActive := &User{Email: "b@b.com", Membership: MembershipNone, Active: true}
	onlyFull := &User{Email: "c@b.com", Membership: MembershipFull, Active: false}
	createN(t, repo, both, onlyActive, onlyFull)

	q, err := repo.Where("is_active", core.OpEqual, true)
	require.NoError(t, err)
	q2, err := q.Where("membership", core.OpEqual, MembershipFull)
	require.NoError(t, err)

	got, err := q2.Stream(ctx).GetAll()
	require.NoError(t, err)
	assert.Equal(t, []string{both.ID()}, ids(got))

	got, err = q.Stream(ctx).GetAll()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{both.ID(), onlyActive.ID()}, ids(got), "Where does not mutate its receiver")
}

func testOptionalNull(t *testing.T, repo *record.Repository[User]) {
	ctx := context.Background()

	nick := "n"
	anon := &User{Email: "a@b.com", Membership: MembershipNone}
	named := &User{Email: "b@b.com", Membership: MembershipNone, Nick: &nick}
	createN(t, repo, anon, named)

	q, err := repo.Where("nick", core.OpEqual, nil)
	require.NoError(t, err)
	got, err := q.Stream(ctx).GetAll()
	require.NoError(t, err)
	assert.Equal(t, []string{anon.ID()}, ids(got))
	assert.Nil(t, got[0].Nick)
}

func testArrayContains(t *testing.T, repo *record.Repository[User]) {
	ctx := context.Background()

	tagged := &User{Email: "a@b.com", Membership: MembershipNone, Tags: []string{"admin", "ops"}}
	other := &User{Email: "b@b.com", Membership: MembershipNone, Tags: []string{"ops"}}
	createN(t, repo, tagged, other)

	q, err := repo.Where("tags", core.OpArrayContains, "admin")
	require.NoError(t, err)
	got, err := q.Stream(ctx).GetAll()
	require.NoError(t, err)
	assert.Equal(t, []string{tagged.ID()}, ids(got))
}

func testStream(t *testing.T, repo *record.Repository[User]) {
	ctx := context.Background()

	var want []string
	for range 3 {
		u := &User{Email: "a@b.com", Membership: MembershipNone}
		createN(t, repo, u)
		want = append(want, u.ID())
	}

	got, err := repo.Stream(ctx).GetAll()
	require.NoError(t, err)
	assert.ElementsMatch(t, want, ids(got))

	it := repo.Stream(ctx)
	first, err := it.Next()
	require.NoError(t, err)
	assert.Contains(t, want, first.ID())
	it.Stop()
	it.Stop()
	_, err = it.Next()
	require.ErrorIs(t, err, core.Done)

	var fromChan []string
	for res := range repo.Stream(ctx).Chan(ctx) {
		require.NoError(t, res.Err)
		fromChan = append(fromChan, res.Record.ID())
	}
	assert.ElementsMatch(t, want, fromChan)

	// Deleting while streaming: the cleanup loop of a test teardown.
	for u, err := range repo.Stream(ctx).All() {
		require.NoError(t, err)
		_, err = repo.DeleteByID(ctx, u.ID())
		require.NoError(t, err)
	}
	got, err = repo.Stream(ctx).GetAll()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func testTransaction(t *testing.T, newClient ClientFactory) {
	repo, db := newRepoDB(t, newClient)
	c, err := db.Client()
	require.NoError(t, err)
	if _, ok := c.(core.Transactional); !ok {
		t.Skipf("%T does not support transactions", c)
	}
	ctx := context.Background()

	u := &User{Email: "a@b.com", Membership: MembershipFull, Active: true}
	createN(t, repo, u)

	q, err := repo.Where("is_active", core.OpEqual, true)
	require.NoError(t, err)

	var got []*User
	err = record.RunTransaction(ctx, db, func(ctx context.Context, tx core.Transaction) error {
		var err error
		got, err = q.StreamTx(ctx, tx).GetAll()
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, []string{u.ID()}, ids(got))

	boom := errors.New("boom")
	err = record.RunTransaction(ctx, db, func(context.Context, core.Transaction) error { return boom })
	require.ErrorIs(t, err, boom)
}
