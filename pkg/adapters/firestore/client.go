// Package firestore adapts a Cloud Firestore client to core.Client.
//
// Point FIRESTORE_EMULATOR_HOST at a local emulator to run against it
// instead of a real project.
package firestore

import (
	"context"
	"errors"
	"fmt"
	"slices"

	gfs "cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/aretw0/fireclass/pkg/core"
)

// Client is a core.Client over a *firestore.Client.
type Client struct {
	fs        *gfs.Client
	projectID string
	owned     bool
}

// New connects to the Firestore database of projectID.
func New(ctx context.Context, projectID string, opts ...option.ClientOption) (*Client, error) {
	fs, err := gfs.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	return &Client{fs: fs, projectID: projectID, owned: true}, nil
}

// FromClient wraps an existing client. Close does not close fs.
func FromClient(fs *gfs.Client) *Client {
	return &Client{fs: fs}
}

// Close closes the underlying client when New created it.
func (c *Client) Close() error {
	if !c.owned {
		return nil
	}
	return c.fs.Close()
}

// Collection implements core.Client.
func (c *Client) Collection(name string) core.Collection {
	return &collection{client: c, ref: c.fs.Collection(name)}
}

// Collections lists the top-level collections.
func (c *Client) Collections(ctx context.Context) ([]string, error) {
	it := c.fs.Collections(ctx)
	var names []string
	for {
		ref, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, translate(err)
		}
		names = append(names, ref.ID)
	}
	slices.Sort(names)
	return names, nil
}

// RunTransaction runs fn inside a read-only Firestore transaction. Firestore
// may call fn more than once.
func (c *Client) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx core.Transaction) error) error {
	return c.fs.RunTransaction(ctx, func(ctx context.Context, t *gfs.Transaction) error {
		return fn(ctx, &txn{client: c, tx: t})
	}, gfs.ReadOnly)
}

type txn struct {
	client *Client
	tx     *gfs.Transaction
}

func (t *txn) Store() string { return "firestore" }

// translate maps gRPC status codes onto the core sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	switch status.Code(err) {
	case codes.NotFound:
		return fmt.Errorf("%w: %v", core.ErrNotFound, err)
	case codes.AlreadyExists:
		return fmt.Errorf("%w: %v", core.ErrAlreadyExists, err)
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %v", core.ErrInvalidValue, err)
	}
	return err
}

// operator returns the Firestore spelling of op.
func operator(op core.Operator) string {
	if op == core.OpArrayContains {
		return "array-contains"
	}
	return string(op)
}

var (
	_ core.Client           = (*Client)(nil)
	_ core.Transactional    = (*Client)(nil)
	_ core.CollectionLister = (*Client)(nil)
)
