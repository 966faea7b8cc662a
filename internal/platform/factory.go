package platform

import (
	"context"
	"fmt"
	"log/slog"

	gfs "cloud.google.com/go/firestore"

	"github.com/aretw0/fireclass/pkg/adapters/bolt"
	"github.com/aretw0/fireclass/pkg/adapters/firestore"
	"github.com/aretw0/fireclass/pkg/adapters/memory"
	"github.com/aretw0/fireclass/pkg/core"
)

// Open builds a Database and configures it with the selected store client.
//
//	db, err := platform.Open(ctx, platform.WithAdapter("bolt"), platform.WithPath("app.db"))
func Open(ctx context.Context, opts ...Option) (*core.Database, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	c, err := newClient(ctx, o)
	if err != nil {
		return nil, err
	}

	db := core.NewDatabase(o.logger)
	if err := db.Configure(c); err != nil {
		return nil, err
	}
	return db, nil
}

// NewClient builds only the store client described by opts.
func NewClient(ctx context.Context, opts ...Option) (core.Client, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return newClient(ctx, o)
}

func newClient(ctx context.Context, o *options) (core.Client, error) {
	if o.client != nil {
		return o.client, nil
	}

	switch o.adapter {
	case AdapterMemory:
		return memory.New(), nil
	case AdapterBolt:
		return openBolt(o)
	case AdapterFirestore:
		projectID := o.projectID
		if projectID == "" {
			projectID = gfs.DetectProjectID
		}
		return firestore.New(ctx, projectID, o.clientOpts...)
	default:
		return nil, fmt.Errorf("unknown adapter: %s", o.adapter)
	}
}

func openBolt(o *options) (core.Client, error) {
	bypassSafety := o.readOnly || !o.devSafety
	useTemp := IsDevRun() && !bypassSafety
	path := ResolveStorePath(o.path, useTemp)

	if o.logger != nil && IsDevRun() {
		switch {
		case o.readOnly:
			o.logger.Debug("running in READ-ONLY mode (bypassing dev sandbox)", "path", path)
		case bypassSafety:
			o.logger.Warn("running in UNSAFE mode (bypassing dev sandbox)", "path", path)
		default:
			o.logger.Debug("running in SAFE mode (dev sandbox enabled)", "original_path", o.path, "path", path)
		}
	}

	var boltOpts []bolt.Option
	if o.boltTimeout > 0 {
		boltOpts = append(boltOpts, bolt.WithTimeout(o.boltTimeout))
	}
	if o.readOnly {
		boltOpts = append(boltOpts, bolt.WithReadOnly(true))
	}
	c, err := bolt.Open(path, boltOpts...)
	if err != nil {
		return nil, err
	}
	logger(o).Debug("bolt store opened", "path", c.Path(), "read_only", o.readOnly)
	return c, nil
}

func logger(o *options) *slog.Logger {
	if o.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.logger
}
