package memory

import (
	"github.com/aretw0/introspection"
)

// ClientState exposes internal state for observability.
type ClientState struct {
	Collections int `json:"collections"`
	Documents   int `json:"documents"`
}

// State implements introspection.Introspectable.
func (c *Client) State() any {
	c.mu.RLock()
	defer c.mu.RUnlock()

	st := ClientState{}
	for _, docs := range c.data {
		if len(docs) > 0 {
			st.Collections++
			st.Documents += len(docs)
		}
	}
	return st
}

// ComponentType implements introspection.Component.
func (c *Client) ComponentType() string {
	return "memory"
}

var _ introspection.Introspectable = (*Client)(nil)
var _ introspection.Component = (*Client)(nil)
