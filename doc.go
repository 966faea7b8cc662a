// Package fireclass is the composition root of the fireclass object mapper.
//
// It connects the typed record layer (pkg/record, pkg/schema, pkg/codec)
// with the store adapters (memory, bolt, firestore) behind the core.Client
// boundary.
//
// Features:
//
//   - **Plain structs as records**: embed Base, tag fields with `fireclass:"name"`.
//   - **Schema-driven codec**: enums, optional fields and zone-aware timestamps.
//   - **Type-checked queries**: Where validates the field and the value type
//     before anything reaches the store.
//   - **Pluggable stores**: in-memory, a bbolt file, or Cloud Firestore.
//
// Usage:
//
//	db, err := fireclass.Open(ctx, fireclass.WithAdapter("bolt"), fireclass.WithPath("app.db"))
//	users, err := fireclass.For[User](db)
//
//	u := &User{Email: "a@b.com", Membership: MembershipFull}
//	_, err = users.Create(ctx, u)
//
//	q, err := users.Where("membership", fireclass.OpEqual, MembershipFull)
//	all, err := q.Stream(ctx).GetAll()
package fireclass
