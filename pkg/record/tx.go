package record

import (
	"context"
	"fmt"

	"github.com/aretw0/fireclass/pkg/core"
)

// RunTransaction runs fn inside a transaction of the client configured on
// db. The handle passed to fn is meant for Query.StreamTx; committing and
// retrying are left to the client.
func RunTransaction(ctx context.Context, db *core.Database, fn func(ctx context.Context, tx core.Transaction) error) error {
	c, err := db.Client()
	if err != nil {
		return err
	}
	t, ok := c.(core.Transactional)
	if !ok {
		return fmt.Errorf("%w: %T does not support transactions", core.ErrUnsupportedType, c)
	}
	return t.RunTransaction(ctx, fn)
}
