package hjarta

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/0xalexb/hjarta-config/config"
	"github.com/0xalexb/hjarta-config/logging"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
)

var errAppNotInitialized = errors.New("app not initialized")

// App is an Fx application with logging and configuration wired in.
type App struct {
	app *fx.App
}

// NewApp creates a new instance of App with Fx configured.
func NewApp(opts ...Option) *App {
	var options Options

	for _, apply := range opts {
		apply(&options)
	}

	return &App{
		app: configure(&options),
	}
}

func configure(options *Options) *fx.App {
	loggerConfig := newLoggerConfig(options)
	logger := logging.NewLogger(loggerConfig, os.Stderr)
	slog.SetDefault(logger)

	return fx.New(
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.SlogLogger{Logger: logger}
		}),
		fx.Supply(loggerConfig),
		fx.Supply(logger),
		configModule(options),
		fx.Options(options.Modules...),
	)
}

// newLoggerConfig reads LOG_LEVEL and LOG_FORMAT, then applies the level and
// format set through options.
func newLoggerConfig(options *Options) logging.LoggerConfig {
	loggerConfig, err := logging.LoggerConfigFromEnv()
	if err != nil {
		slog.Warn("ignoring logger environment", slog.Any("error", err))
	}

	if options.LogLevel != "" {
		loggerConfig.Level = options.LogLevel
	}

	if options.LogFormat != "" {
		loggerConfig.Format = options.LogFormat
	}

	return loggerConfig
}

// configModule resolves the source root and adds the config module when
// the application asked for configuration.
//
//nolint:ireturn // fx.Option is the standard return type for Fx options
func configModule(options *Options) fx.Option {
	if !options.ConfigEnabled {
		return fx.Options()
	}

	loader := options.ConfigLoader
	if loader == nil {
		loader = config.Default()
	}

	if options.SourcePath != "" {
		err := loader.ResolveSrcPath(options.SourcePath)
		if err != nil {
			return fx.Error(fmt.Errorf("resolving source path: %w", err))
		}
	}

	return config.NewModule(loader, options.ConfigLoads...)
}

// Start starts the Fx application.
func (app *App) Start() error {
	if app != nil && app.app != nil {
		err := app.app.Start(context.Background())
		if err != nil {
			return fmt.Errorf("failed to start app: %w", err)
		}

		return nil
	}

	return errAppNotInitialized
}

// Run starts the application and blocks until an OS signal is received, then shuts down gracefully.
func (app *App) Run() {
	if app == nil || app.app == nil {
		slog.Error("attempted to run an uninitialized app")

		return
	}

	app.app.Run()
}

// Stop stops the Fx application gracefully.
func (app *App) Stop() error {
	if app != nil && app.app != nil {
		err := app.app.Stop(context.Background())
		if err != nil {
			return fmt.Errorf("failed to stop app: %w", err)
		}

		return nil
	}

	return errAppNotInitialized
}
