package bolt

import (
	"github.com/aretw0/introspection"
	bolt "go.etcd.io/bbolt"
)

// ClientState exposes internal state for observability.
type ClientState struct {
	Path        string `json:"path"`
	ReadOnly    bool   `json:"read_only"`
	Collections int    `json:"collections"`
	Documents   int    `json:"documents"`
}

// State implements introspection.Introspectable.
func (c *Client) State() any {
	st := ClientState{Path: c.path, ReadOnly: c.readOnly}
	_ = c.db.View(func(tx *bolt.Tx) error {
		return tx.ForEach(func(_ []byte, b *bolt.Bucket) error {
			n := b.Stats().KeyN
			if n > 0 {
				st.Collections++
				st.Documents += n
			}
			return nil
		})
	})
	return st
}

// ComponentType implements introspection.Component.
func (c *Client) ComponentType() string {
	return "bolt"
}

var _ introspection.Introspectable = (*Client)(nil)
var _ introspection.Component = (*Client)(nil)
