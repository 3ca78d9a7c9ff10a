package processor

// WithIDGenerator overrides the run ID generator.
func WithIDGenerator(newID func() string) Options {
	return func(o *options) {
		o.newID = newID
	}
}
