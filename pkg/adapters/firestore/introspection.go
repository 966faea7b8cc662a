package firestore

import (
	"os"

	"github.com/aretw0/introspection"
)

// ClientState exposes internal state for observability.
type ClientState struct {
	ProjectID string `json:"project_id,omitempty"`
	Emulator  string `json:"emulator,omitempty"`
	Owned     bool   `json:"owned"`
}

// State implements introspection.Introspectable.
func (c *Client) State() any {
	return ClientState{
		ProjectID: c.projectID,
		Emulator:  os.Getenv("FIRESTORE_EMULATOR_HOST"),
		Owned:     c.owned,
	}
}

// ComponentType implements introspection.Component.
func (c *Client) ComponentType() string {
	return "firestore"
}

var _ introspection.Introspectable = (*Client)(nil)
var _ introspection.Component = (*Client)(nil)
