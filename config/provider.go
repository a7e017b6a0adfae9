package config

import (
	"fmt"
	"log/slog"

	"go.uber.org/fx"
)

// Provider returns a function that decodes the section at key, sets defaults, and validates it.
//
// The returned function is an Fx constructor: it depends on *Service and provides *T.
func Provider[T any](target *T, key string) func(*Service) (*T, error) {
	return func(svc *Service) (*T, error) {
		err := svc.Decode(key, target)
		if err != nil {
			return nil, fmt.Errorf("decoding error: %w", err)
		}

		return prepare(target, key)
	}
}

// FileProvider is Provider for a value decoded straight from one file with
// Loader.DecodeFile. It depends on *Loader, which NewModule supplies.
func FileProvider[T any](target *T, file, key string) func(*Loader) (*T, error) {
	return func(loader *Loader) (*T, error) {
		err := loader.DecodeFile(file, key, target)
		if err != nil {
			return nil, fmt.Errorf("decoding error: %w", err)
		}

		return prepare(target, file+":"+key)
	}
}

func prepare[T any](target *T, key string) (*T, error) {
	targetDefaulter, isDefaulter := any(target).(Defaulter)
	if isDefaulter {
		changed := targetDefaulter.SetDefaults()
		if changed {
			slog.Info("defaults applied", slog.String("key", key))
		}
	}

	targetValidatable, isValidatable := any(target).(Validator)
	if isValidatable {
		err := targetValidatable.Validate()
		if err != nil {
			return nil, fmt.Errorf("validating error: %w", err)
		}
	}

	return target, nil
}

// ProvideSection provides *T decoded from the section at key.
//
//nolint:ireturn // fx.Option is the standard return type for Fx options
func ProvideSection[T any](key string) fx.Option {
	return fx.Provide(Provider(new(T), key))
}

// ProvideFile provides *T decoded from key in file.
//
//nolint:ireturn // fx.Option is the standard return type for Fx options
func ProvideFile[T any](file, key string) fx.Option {
	return fx.Provide(FileProvider(new(T), file, key))
}
