package record

// Option configures a Repository.
type Option func(*options)

type options struct {
	collection string
}

// WithCollection overrides the collection the repository reads and writes.
func WithCollection(name string) Option {
	return func(o *options) {
		o.collection = name
	}
}

// CreateOption configures a single Create call.
type CreateOption func(*createOptions)

type createOptions struct {
	id string
}

// WithID creates the document under id instead of a store-generated one.
func WithID(id string) CreateOption {
	return func(o *createOptions) {
		o.id = id
	}
}
