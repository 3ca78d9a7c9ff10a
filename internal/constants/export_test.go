package constants

// WithUserConfigDir overrides the lookup of the user configuration directory.
func WithUserConfigDir(dir func() (string, error)) option {
	return func(o *options) {
		o.userConfigDir = dir
	}
}
