package core

import (
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
)

// Database is the store-access context every record operation receives.
// It holds the configured Client and the logger. A Database is safe for
// concurrent use; the client is installed once with Configure.
type Database struct {
	client atomic.Pointer[clientHolder]
	logger *slog.Logger
}

type clientHolder struct {
	c Client
}

// NewDatabase creates an unconfigured Database. A nil logger discards output.
func NewDatabase(logger *slog.Logger) *Database {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Database{logger: logger}
}

// Configure installs the store client. It may be called only once.
func (d *Database) Configure(c Client) error {
	if c == nil {
		return fmt.Errorf("%w: nil client", ErrNotConfigured)
	}
	if !d.client.CompareAndSwap(nil, &clientHolder{c: c}) {
		return ErrAlreadyConfigured
	}
	d.logger.Debug("store client configured", "client", fmt.Sprintf("%T", c))
	return nil
}

// Client returns the configured client, or ErrNotConfigured.
func (d *Database) Client() (Client, error) {
	if d == nil {
		return nil, ErrNotConfigured
	}
	h := d.client.Load()
	if h == nil {
		return nil, ErrNotConfigured
	}
	return h.c, nil
}

// Logger returns the logger attached to the Database.
func (d *Database) Logger() *slog.Logger {
	if d == nil || d.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return d.logger
}

// Close closes the configured client if it holds resources.
func (d *Database) Close() error {
	c, err := d.Client()
	if err != nil {
		return nil
	}
	if closer, ok := c.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
