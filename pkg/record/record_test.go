package record_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/fireclass/pkg/adapters/memory"
	"github.com/aretw0/fireclass/pkg/core"
	"github.com/aretw0/fireclass/pkg/record"
)

type Membership int

const (
	MembershipNone Membership = iota + 1
	MembershipIntermediate
	MembershipFull
)

func (m Membership) Valid() bool { return m >= MembershipNone && m <= MembershipFull }

type User struct {
	record.Base
	Email      string      `fireclass:"email_address"`
	Count      int         `fireclass:"family_members_count"`
	LastLogin  time.Time   `fireclass:"last_login_date"`
	Membership Membership  `fireclass:"membership"`
	Active     bool        `fireclass:"is_active"`
	Nick       *string     `fireclass:"nick"`
	Tags       []string    `fireclass:"tags"`
	Level      *Membership `fireclass:"level"`
}

type Account struct {
	record.Base
	Owner string `fireclass:"owner"`
}

func (Account) CollectionName() string { return "accounts" }

type Plain struct {
	Name string
}

func newDB(t *testing.T) *core.Database {
	t.Helper()
	db := core.NewDatabase(nil)
	require.NoError(t, db.Configure(memory.New()))
	return db
}

func newUsers(t *testing.T) *record.Repository[User] {
	t.Helper()
	repo, err := record.New[User](newDB(t))
	require.NoError(t, err)
	return repo
}

func TestNew(t *testing.T) {
	db := newDB(t)

	users, err := record.New[User](db)
	require.NoError(t, err)
	assert.Equal(t, "User", users.Collection())
	assert.Equal(t, "User", users.Schema().Name)

	accounts, err := record.New[Account](db)
	require.NoError(t, err)
	assert.Equal(t, "accounts", accounts.Collection())

	renamed, err := record.New[Account](db, record.WithCollection("legacy_accounts"))
	require.NoError(t, err)
	assert.Equal(t, "legacy_accounts", renamed.Collection())

	_, err = record.New[Plain](db)
	require.ErrorIs(t, err, core.ErrUnsupportedType)

	assert.Panics(t, func() { record.MustNew[Plain](db) })
}

func TestNotConfigured(t *testing.T) {
	ctx := context.Background()
	repo, err := record.New[User](core.NewDatabase(nil))
	require.NoError(t, err)

	u := &User{Email: "a@b.com", Membership: MembershipNone}
	_, err = repo.Create(ctx, u)
	require.ErrorIs(t, err, core.ErrNotConfigured)
	assert.False(t, u.HasID())

	_, err = repo.Get(ctx, "x")
	require.ErrorIs(t, err, core.ErrNotConfigured)

	_, err = repo.DeleteByID(ctx, "x")
	require.ErrorIs(t, err, core.ErrNotConfigured)

	_, err = repo.Stream(ctx).Next()
	require.ErrorIs(t, err, core.ErrNotConfigured)

	_, err = repo.Query().Stream(ctx).Next()
	require.ErrorIs(t, err, core.ErrNotConfigured)
}

func TestNilRecord(t *testing.T) {
	repo := newUsers(t)
	_, err := repo.Create(context.Background(), nil)
	require.ErrorIs(t, err, core.ErrInvalidValue)
}

func TestWhere_Validation(t *testing.T) {
	repo := newUsers(t)
	naive := time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)
	nick := "n"

	tests := []struct {
		name  string
		field string
		op    core.Operator
		value any
		err   error
	}{
		{"unknown field", "wrong_field_name", core.OpEqual, "x", core.ErrUnknownField},
		{"go name is not a stored name", "Email", core.OpEqual, "x", core.ErrUnknownField},
		{"bool against string", "is_active", core.OpEqual, "not a bool", core.ErrTypeMismatch},
		{"int against int64", "family_members_count", core.OpEqual, int64(1), core.ErrTypeMismatch},
		{"enum against int", "membership", core.OpEqual, 2, core.ErrTypeMismatch},
		{"nil against required", "email_address", core.OpEqual, nil, core.ErrTypeMismatch},
		{"unsupported operator", "email_address", core.Operator("!="), "x", core.ErrInvalidValue},
		{"array_contains on scalar", "email_address", core.OpArrayContains, "x", core.ErrTypeMismatch},
		{"array_contains wrong element", "tags", core.OpArrayContains, 1, core.ErrTypeMismatch},
		{"naive timestamp", "last_login_date", core.OpGreater, naive, core.ErrInvalidValue},
		{"invalid enum member", "membership", core.OpEqual, Membership(42), core.ErrInvalidValue},
		{"ordering against nil", "nick", core.OpLess, nil, core.ErrInvalidValue},
		{"ordering against nil pointer", "nick", core.OpGreaterEqual, (*string)(nil), core.ErrInvalidValue},
		{"ordering against nil enum", "level", core.OpGreater, (*Membership)(nil), core.ErrInvalidValue},

		{"optional nil", "nick", core.OpEqual, nil, nil},
		{"optional inner type", "nick", core.OpEqual, "n", nil},
		{"optional pointer", "nick", core.OpEqual, &nick, nil},
		{"optional enum", "level", core.OpEqual, MembershipFull, nil},
		{"enum", "membership", core.OpEqual, MembershipIntermediate, nil},
		{"timestamp", "last_login_date", core.OpLessEqual, naive.UTC(), nil},
		{"array_contains", "tags", core.OpArrayContains, "x", nil},
		{"int", "family_members_count", core.OpGreaterEqual, 2, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := repo.Where(tt.field, tt.op, tt.value)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				var fe *core.FieldError
				require.ErrorAs(t, err, &fe)
				assert.Equal(t, "User", fe.Type)
				assert.Equal(t, tt.field, fe.Field)
				assert.Empty(t, q.Predicates())
				return
			}
			require.NoError(t, err)
			require.Len(t, q.Predicates(), 1)
			assert.Equal(t, tt.field, q.Predicates()[0].Field)
		})
	}
}

func TestWhere_EncodesValue(t *testing.T) {
	repo := newUsers(t)

	q, err := repo.Where("membership", core.OpEqual, MembershipIntermediate)
	require.NoError(t, err)
	assert.Equal(t, []core.Predicate{{Field: "membership", Op: core.OpEqual, Value: int64(2)}}, q.Predicates())
}

func TestQuery_Immutable(t *testing.T) {
	repo := newUsers(t)

	base, err := repo.Where("is_active", core.OpEqual, true)
	require.NoError(t, err)

	a, err := base.Where("membership", core.OpEqual, MembershipFull)
	require.NoError(t, err)
	b, err := base.Where("membership", core.OpEqual, MembershipNone)
	require.NoError(t, err)
	limited, err := base.Limit(3)
	require.NoError(t, err)

	assert.Len(t, base.Predicates(), 1)
	assert.Len(t, a.Predicates(), 2)
	assert.Len(t, b.Predicates(), 2)
	assert.Equal(t, int64(3), a.Predicates()[1].Value)
	assert.Equal(t, int64(1), b.Predicates()[1].Value)

	assert.Equal(t, "is_active == true", base.String())
	assert.Equal(t, "is_active == true LIMIT 3", limited.String())
	assert.Equal(t, "*", repo.Query().String())

	_, err = base.Limit(-1)
	require.ErrorIs(t, err, core.ErrInvalidValue)
}

func TestQuery_LimitBeforeWhere(t *testing.T) {
	ctx := context.Background()
	repo := newUsers(t)

	for i := range 4 {
		u := &User{Email: "a@b.com", Membership: MembershipNone, Active: i%2 == 0}
		_, err := repo.Create(ctx, u)
		require.NoError(t, err)
	}

	q, err := repo.Query().Limit(1)
	require.NoError(t, err)
	q, err = q.Where("is_active", core.OpEqual, true)
	require.NoError(t, err)

	got, err := q.Stream(ctx).GetAll()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Active)

	q, err = repo.Query().Limit(0)
	require.NoError(t, err)
	got, err = q.Stream(ctx).GetAll()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGet_UndeclaredStoredField(t *testing.T) {
	ctx := context.Background()
	db := newDB(t)
	repo, err := record.New[Account](db)
	require.NoError(t, err)

	c, err := db.Client()
	require.NoError(t, err)
	_, err = c.Collection("accounts").Doc("a1").Create(ctx, map[string]any{"owner": "x", "legacy": true})
	require.NoError(t, err)

	_, err = repo.Get(ctx, "a1")
	require.ErrorIs(t, err, core.ErrUnknownField)

	_, err = repo.Stream(ctx).GetAll()
	require.ErrorIs(t, err, core.ErrUnknownField)
}

func TestGet_EmptyID(t *testing.T) {
	repo := newUsers(t)
	_, err := repo.Get(context.Background(), "")
	require.ErrorIs(t, err, core.ErrInvalidValue)
}

func TestRunTransaction_Unsupported(t *testing.T) {
	db := core.NewDatabase(nil)
	require.NoError(t, db.Configure(plainClient{memory.New()}))

	err := record.RunTransaction(context.Background(), db, func(context.Context, core.Transaction) error { return nil })
	require.ErrorIs(t, err, core.ErrUnsupportedType)
}

// plainClient hides every optional capability of the wrapped client.
type plainClient struct {
	c core.Client
}

func (p plainClient) Collection(name string) core.Collection { return p.c.Collection(name) }

func TestIterator_AllBreak(t *testing.T) {
	ctx := context.Background()
	repo := newUsers(t)
	for range 3 {
		_, err := repo.Create(ctx, &User{Email: "a@b.com", Membership: MembershipNone})
		require.NoError(t, err)
	}

	it := repo.Stream(ctx)
	n := 0
	for _, err := range it.All() {
		require.NoError(t, err)
		n++
		break
	}
	assert.Equal(t, 1, n)

	_, err := it.Next()
	require.ErrorIs(t, err, core.Done, "breaking out of All stops the iterator")
}

func TestIterator_ChanCancel(t *testing.T) {
	ctx := context.Background()
	repo := newUsers(t)
	for range 3 {
		_, err := repo.Create(ctx, &User{Email: "a@b.com", Membership: MembershipNone})
		require.NoError(t, err)
	}

	cctx, cancel := context.WithCancel(ctx)
	ch := repo.Stream(ctx).Chan(cctx)
	res, ok := <-ch
	require.True(t, ok)
	require.NoError(t, res.Err)
	cancel()

	// The channel is closed once the pump notices the cancellation.
	for range ch {
	}
}
