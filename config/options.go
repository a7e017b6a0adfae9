package config

// LoadOption configures a single Load or Merge call.
type LoadOption func(*loadOptions)

type loadOptions struct {
	glob string
	env  *EnvOptions
}

// WithGlob sets the pattern used to discover configuration files.
// Relative patterns are resolved against the source root.
func WithGlob(glob string) LoadOption {
	return func(opts *loadOptions) {
		opts.glob = glob
	}
}

// WithEnv sets the options used to load .env files before parsing.
func WithEnv(env EnvOptions) LoadOption {
	return func(opts *loadOptions) {
		opts.env = &env
	}
}

// WithoutEnv skips loading .env files.
func WithoutEnv() LoadOption {
	return func(opts *loadOptions) {
		opts.env = &EnvOptions{Disabled: true} //nolint:exhaustruct // only Disabled matters
	}
}

func newLoadOptions(opts []LoadOption) loadOptions {
	options := loadOptions{
		glob: DefaultGlob,
		env:  nil,
	}

	for _, apply := range opts {
		apply(&options)
	}

	return options
}
