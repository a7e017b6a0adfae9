package config

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cast"
)

// HelperFunc is a computed value embedded in a configuration mapping.
// It receives the Service it is bound to.
type HelperFunc func(s *Service, args ...any) any

// Helper is a HelperFunc bound to a Service.
type Helper func(args ...any) any

// Service gives access to a configuration mapping.
//
// Keys address nested values with dots and brackets, see ParseKey.
// A Service is safe for concurrent use. Values returned by Get are shared
// with the mapping, not copied.
type Service struct {
	mu      sync.RWMutex
	loader  *Loader
	config  Mapping
	helpers map[string]Helper
}

// NewService creates a Service owning mapping. HelperFunc values found at
// any depth of mapping are replaced in place by Helpers bound to the
// Service and registered under their key prefixed with an underscore.
func (l *Loader) NewService(mapping Mapping) *Service {
	if mapping == nil {
		mapping = Mapping{}
	}

	svc := &Service{
		mu:      sync.RWMutex{},
		loader:  l,
		config:  mapping,
		helpers: make(map[string]Helper),
	}

	svc.bindHelpers(mapping)

	return svc
}

// Get returns the value at key, or the first fallback (nil if none) when
// the key does not resolve to a non-nil value.
func (s *Service) Get(key string, fallback ...any) any {
	value, ok := s.lookup(key)
	if !ok {
		if len(fallback) > 0 {
			return fallback[0]
		}

		return nil
	}

	return value
}

// Has reports whether key resolves to a non-nil value.
func (s *Service) Has(key string) bool {
	_, ok := s.lookup(key)

	return ok
}

// Set writes value at key, creating intermediate maps (or slices for
// numeric segments) as needed, and returns the whole mapping.
func (s *Service) Set(key string, value any) Mapping {
	path := ParseKey(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(path) > 0 {
		s.config[path[0]] = assign(s.config[path[0]], path[1:], value)
	}

	return s.config
}

// Delete removes the value at key and reports whether it existed.
// Slice elements are set to nil rather than removed.
func (s *Service) Delete(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return remove(s.config, ParseKey(key))
}

// All returns the mapping backing the Service.
func (s *Service) All() Mapping {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.config
}

// Sections returns the sorted names of the top-level sections.
func (s *Service) Sections() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.config))
	for name := range s.config {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Merge loads the files matched by glob and replaces each loaded section
// wholesale. Sections not present in the new load are left untouched.
func (s *Service) Merge(ctx context.Context, glob string, env *EnvOptions) error {
	mapping, err := s.loader.LoadConfig(ctx, glob, env)
	if err != nil {
		return err
	}

	s.replaceSections(mapping)

	return nil
}

// MergeSync is Merge without a context. It returns the Service for chaining.
func (s *Service) MergeSync(glob string, env *EnvOptions) (*Service, error) {
	err := s.Merge(context.Background(), glob, env)
	if err != nil {
		return nil, err
	}

	return s, nil
}

// MergeMapping replaces the sections present in mapping, binding any
// HelperFunc values it contains to the Service.
func (s *Service) MergeMapping(mapping Mapping) *Service {
	s.bindHelpers(mapping)
	s.replaceSections(mapping)

	return s
}

// RegisterHelper binds fn to the Service under name. It returns the Service for chaining.
func (s *Service) RegisterHelper(name string, fn HelperFunc) *Service {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.helpers[name] = s.bind(fn)

	return s
}

// Helper returns the helper registered under name.
func (s *Service) Helper(name string) (Helper, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	helper, ok := s.helpers[name]

	return helper, ok
}

// CallHelper calls the helper registered under name with args.
func (s *Service) CallHelper(name string, args ...any) (any, error) {
	helper, ok := s.Helper(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrHelperNotFound, name)
	}

	return helper(args...), nil
}

// GetString returns the value at key converted to a string, or "" when
// the key is missing or the value cannot be converted.
func (s *Service) GetString(key string) string {
	return cast.ToString(s.Get(key))
}

// GetInt returns the value at key converted to an int.
func (s *Service) GetInt(key string) int {
	return cast.ToInt(s.Get(key))
}

// GetBool returns the value at key converted to a bool.
func (s *Service) GetBool(key string) bool {
	return cast.ToBool(s.Get(key))
}

// GetFloat64 returns the value at key converted to a float64.
func (s *Service) GetFloat64(key string) float64 {
	return cast.ToFloat64(s.Get(key))
}

// GetDuration returns the value at key converted to a time.Duration.
// Strings use time.ParseDuration syntax; plain numbers are nanoseconds.
func (s *Service) GetDuration(key string) time.Duration {
	return cast.ToDuration(s.Get(key))
}

// GetStringSlice returns the value at key converted to a []string.
func (s *Service) GetStringSlice(key string) []string {
	return cast.ToStringSlice(s.Get(key))
}

// GetStringMap returns the value at key converted to a map[string]any.
func (s *Service) GetStringMap(key string) map[string]any {
	return cast.ToStringMap(s.Get(key))
}

// Decode decodes the value at key into target, which must be a pointer.
// Struct fields are matched by their yaml tag, or case-insensitively by name.
func (s *Service) Decode(key string, target any) error {
	value, ok := s.lookup(key)
	if !ok {
		return fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{ //nolint:exhaustruct // defaults are fine
		Result:           target,
		TagName:          "yaml",
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return fmt.Errorf("creating decoder: %w", err)
	}

	err = decoder.Decode(value)
	if err != nil {
		return fmt.Errorf("decoding %q: %w", key, err)
	}

	return nil
}

func (s *Service) lookup(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return lookup(s.config, ParseKey(key))
}

func (s *Service) replaceSections(mapping Mapping) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for name, section := range mapping {
		s.config[name] = section
	}
}

func (s *Service) bind(fn HelperFunc) Helper {
	return func(args ...any) any {
		return fn(s, args...)
	}
}

// bindHelpers walks container in place, replacing HelperFunc values by bound Helpers.
func (s *Service) bindHelpers(container any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.walkHelpers(container)
}

func (s *Service) walkHelpers(container any) {
	visit := func(key string, value any) (any, bool) {
		switch typed := value.(type) {
		case HelperFunc:
			helper := s.bind(typed)
			s.helpers["_"+key] = helper

			return helper, true
		case func(*Service, ...any) any:
			helper := s.bind(typed)
			s.helpers["_"+key] = helper

			return helper, true
		case Mapping, map[string]any, []any:
			s.walkHelpers(typed)
		}

		return nil, false
	}

	switch typed := container.(type) {
	case Mapping:
		for key, value := range typed {
			if helper, ok := visit(key, value); ok {
				typed[key] = helper
			}
		}
	case map[string]any:
		for key, value := range typed {
			if helper, ok := visit(key, value); ok {
				typed[key] = helper
			}
		}
	case []any:
		for idx, value := range typed {
			if helper, ok := visit(strconv.Itoa(idx), value); ok {
				typed[idx] = helper
			}
		}
	}
}
