package fireclass_test

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aretw0/fireclass"
)

type Membership int

const (
	MembershipNone Membership = iota + 1
	MembershipIntermediate
	MembershipFull
)

func (m Membership) Valid() bool { return m >= MembershipNone && m <= MembershipFull }

type User struct {
	fireclass.Base
	Email      string     `fireclass:"email_address"`
	LastLogin  *time.Time `fireclass:"last_login_date"`
	Membership Membership `fireclass:"membership"`
	Active     bool       `fireclass:"is_active"`
}

// Example_basic creates a record in the in-memory store and reads it back.
func Example_basic() {
	ctx := context.Background()

	db, err := fireclass.Open(ctx)
	if err != nil {
		log.Fatal(err)
	}
	users, err := fireclass.For[User](db)
	if err != nil {
		log.Fatal(err)
	}

	u := &User{Email: "a@b.com", Membership: MembershipFull, Active: true}
	if _, err := users.Create(ctx, u, fireclass.WithID("alice")); err != nil {
		log.Fatal(err)
	}

	got, err := users.Get(ctx, "alice")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(got.ID(), got.Email, got.Membership == MembershipFull)
	// Output:
	// alice a@b.com true
}

// ExampleQuery filters records by an enum field and caps the result size.
func ExampleQuery() {
	ctx := context.Background()

	db, err := fireclass.Open(ctx)
	if err != nil {
		log.Fatal(err)
	}
	users := must(fireclass.For[User](db))

	for i, m := range []Membership{MembershipNone, MembershipIntermediate, MembershipIntermediate, MembershipFull} {
		u := &User{Email: fmt.Sprintf("user%d@b.com", i), Membership: m}
		must(users.Create(ctx, u, fireclass.WithID(fmt.Sprintf("u%d", i))))
	}

	q := must(users.Where("membership", fireclass.OpEqual, MembershipIntermediate))
	q = must(q.Limit(10))

	for u, err := range q.Stream(ctx).All() {
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(u.ID(), u.Email)
	}

	_, err = users.Where("membership", fireclass.OpEqual, "INTERMEDIATE")
	fmt.Println(err)
	// Output:
	// u1 user1@b.com
	// u2 user2@b.com
	// User.membership: type mismatch: expected enum (fireclass_test.Membership), received string
}

func must[T any](v T, err error) T {
	if err != nil {
		log.Fatal(err)
	}
	return v
}
