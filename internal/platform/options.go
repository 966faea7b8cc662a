package platform

import (
	"log/slog"
	"time"

	"google.golang.org/api/option"

	"github.com/aretw0/fireclass/pkg/core"
)

// Adapter names accepted by WithAdapter.
const (
	AdapterMemory    = "memory"
	AdapterBolt      = "bolt"
	AdapterFirestore = "firestore"
)

// DefaultPath is the bolt file used when no path is given.
const DefaultPath = "fireclass.db"

// Adapters lists the adapter names in a stable order.
var Adapters = []string{AdapterMemory, AdapterBolt, AdapterFirestore}

// options holds the internal configuration used to build a Database.
type options struct {
	client      core.Client
	logger      *slog.Logger
	adapter     string
	path        string
	projectID   string
	boltTimeout time.Duration
	readOnly    bool
	devSafety   bool
	clientOpts  []option.ClientOption
}

// Option defines a functional option for configuring a Database.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		adapter:   AdapterMemory,
		path:      DefaultPath,
		devSafety: true,
	}
}

// WithLogger sets the logger shared by the Database and its repositories.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithClient installs an already built store client (e.g. a fake, or a
// firestore client wrapped with its own settings). The adapter name is
// ignored when a client is given.
func WithClient(c core.Client) Option {
	return func(o *options) {
		o.client = c
	}
}

// WithAdapter selects the store adapter by name. Defaults to "memory".
func WithAdapter(name string) Option {
	return func(o *options) {
		o.adapter = name
	}
}

// WithPath sets the bolt file. Defaults to DefaultPath.
func WithPath(path string) Option {
	return func(o *options) {
		o.path = path
	}
}

// WithProjectID sets the Google Cloud project of the firestore adapter.
// When empty the project is detected from the environment.
func WithProjectID(id string) Option {
	return func(o *options) {
		o.projectID = id
	}
}

// WithFirestoreOptions passes client options (credentials, endpoint) to the
// firestore adapter.
func WithFirestoreOptions(opts ...option.ClientOption) Option {
	return func(o *options) {
		o.clientOpts = append(o.clientOpts, opts...)
	}
}

// WithBoltTimeout bounds how long the bolt adapter waits for the file lock.
func WithBoltTimeout(d time.Duration) Option {
	return func(o *options) {
		o.boltTimeout = d
	}
}

// WithReadOnly opens the bolt file read-only. Writes fail and the dev
// sandbox is bypassed.
func WithReadOnly(enabled bool) Option {
	return func(o *options) {
		o.readOnly = enabled
	}
}

// WithDevSafety controls the sandbox applied to the bolt file when running
// under `go run` or `go test`. By default (true) such runs use a file under
// the system temp directory instead of the given path.
//
// CAUTION: Only disable this if you are sure your code is safe.
func WithDevSafety(enabled bool) Option {
	return func(o *options) {
		o.devSafety = enabled
	}
}
