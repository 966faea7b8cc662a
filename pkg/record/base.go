// Package record maps user-declared structs onto documents of a store.
//
// A record type is a struct embedding Base:
//
//	type User struct {
//		record.Base
//		Email      string     `fireclass:"email_address"`
//		Membership Membership `fireclass:"membership"`
//		Active     bool       `fireclass:"is_active"`
//	}
//
// A Repository[User] persists *User values in the "User" collection of the
// store configured on a core.Database.
package record

// Base is the identity slot of a record. It is empty until the record is
// created in, or loaded from, the store and never changes afterwards.
type Base struct {
	id string
}

// ID returns the store identifier, or "" if the record has none yet.
func (b *Base) ID() string { return b.id }

// HasID reports whether the record has been created or loaded.
func (b *Base) HasID() bool { return b.id != "" }

func (b *Base) identity() *Base { return b }

// Entity is implemented by pointers to structs that embed Base.
type Entity interface {
	ID() string
	HasID() bool
	identity() *Base
}

// Named may be implemented by a record type to choose its collection name.
// By default the collection is named after the Go type.
type Named interface {
	CollectionName() string
}
