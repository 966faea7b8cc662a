package core

import (
	"fmt"

	"github.com/aretw0/introspection"
)

// DatabaseState exposes internal state for observability.
type DatabaseState struct {
	Configured bool   `json:"configured"`
	ClientType string `json:"client_type"`
}

// State implements introspection.Introspectable.
func (d *Database) State() any {
	c, err := d.Client()
	clientType := "none"
	switch comp := c.(type) {
	case nil:
	case introspection.Component:
		clientType = comp.ComponentType()
	default:
		clientType = fmt.Sprintf("%T", comp)
	}

	return DatabaseState{
		Configured: err == nil,
		ClientType: clientType,
	}
}

// ComponentType implements introspection.Component.
func (d *Database) ComponentType() string {
	return "database"
}

var _ introspection.Introspectable = (*Database)(nil)
var _ introspection.Component = (*Database)(nil)
