package config

import (
	"context"

	"go.uber.org/fx"
)

// ModuleName is the name of the Fx module created by NewModule.
const ModuleName = "config"

// NewModule creates an Fx module that supplies loader and provides the
// *Service it loads with opts. A nil loader means Default().
//
// Resolve the source root before the application starts, typically from main:
//
//	_, file, _, _ := runtime.Caller(0)
//	_ = config.ResolveSrcPath(file)
//
//nolint:ireturn // fx.Option is the standard return type for Fx modules
func NewModule(loader *Loader, opts ...LoadOption) fx.Option {
	if loader == nil {
		loader = Default()
	}

	return fx.Module(ModuleName,
		fx.Supply(loader),
		fx.Provide(func(loader *Loader) (*Service, error) {
			return loader.Load(context.Background(), opts...)
		}),
	)
}
