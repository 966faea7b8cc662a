package firestore

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/aretw0/fireclass/pkg/core"
)

func TestOperator(t *testing.T) {
	for _, op := range core.Operators {
		got := operator(op)
		if op == core.OpArrayContains {
			assert.Equal(t, "array-contains", got)
			continue
		}
		assert.Equal(t, string(op), got)
	}
}

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil))
	assert.ErrorIs(t, translate(status.Error(codes.NotFound, "no doc")), core.ErrNotFound)
	assert.ErrorIs(t, translate(status.Error(codes.AlreadyExists, "exists")), core.ErrAlreadyExists)
	assert.ErrorIs(t, translate(status.Error(codes.InvalidArgument, "bad")), core.ErrInvalidValue)

	other := errors.New("network down")
	assert.Same(t, other, translate(other))
}

func TestFromClient_DoesNotOwn(t *testing.T) {
	c := FromClient(nil)
	assert.NoError(t, c.Close())
	assert.Equal(t, ClientState{}, c.State().(ClientState))
	assert.Equal(t, "firestore", c.ComponentType())
}
