package hjarta

import (
	"github.com/0xalexb/hjarta-config/config"

	"go.uber.org/fx"
)

// Options holds configuration settings for the application.
type Options struct {
	Modules       []fx.Option
	LogLevel      string
	LogFormat     string
	ConfigEnabled bool
	ConfigLoader  *config.Loader
	ConfigLoads   []config.LoadOption
	SourcePath    string
}

// Option defines a function type for applying configuration options.
type Option func(*Options)

// WithModules adds Fx modules to the application.
func WithModules(modules ...fx.Option) Option {
	return func(opts *Options) {
		opts.Modules = append(opts.Modules, modules...)
	}
}

// WithLogLevel sets the log level for the application.
// Valid levels are: "debug", "info", "warn", "error".
// If not set or invalid, defaults to "info".
func WithLogLevel(level string) Option {
	return func(opts *Options) {
		opts.LogLevel = level
	}
}

// WithLogFormat sets the log format, "json" (default) or "text".
func WithLogFormat(format string) Option {
	return func(opts *Options) {
		opts.LogFormat = format
	}
}

// WithConfig provides a *config.Service to the application, loaded with loadOpts.
// Calling it again appends further load options.
func WithConfig(loadOpts ...config.LoadOption) Option {
	return func(opts *Options) {
		opts.ConfigEnabled = true
		opts.ConfigLoads = append(opts.ConfigLoads, loadOpts...)
	}
}

// WithConfigLoader sets the loader used by WithConfig. Defaults to config.Default().
func WithConfigLoader(loader *config.Loader) Option {
	return func(opts *Options) {
		opts.ConfigLoader = loader
	}
}

// WithSourcePath resolves the configuration source root from start, an absolute
// path inside the application sources, before the application is built.
// It implies WithConfig.
func WithSourcePath(start string) Option {
	return func(opts *Options) {
		opts.ConfigEnabled = true
		opts.SourcePath = start
	}
}
