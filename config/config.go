package config

import "errors"

// DefaultGlob is the pattern used to discover configuration files when no
// glob is given. It is resolved against the source root.
const DefaultGlob = "config/**/*.{yaml,yml,json,toml}"

var (
	// ErrRelativeStartPath is returned when the source path search starts from a relative path.
	ErrRelativeStartPath = errors.New("start path must be an absolute path")

	// ErrGlob is returned when a configuration glob cannot be expanded.
	ErrGlob = errors.New("glob expansion failed")

	// ErrUnsupportedFormat is returned when no parser is registered for a matched file extension.
	ErrUnsupportedFormat = errors.New("unsupported configuration format")

	// ErrKeyNotFound is returned when a key required for decoding does not resolve to a value.
	ErrKeyNotFound = errors.New("configuration key not found")

	// ErrHelperNotFound is returned when calling a helper that was never registered.
	ErrHelperNotFound = errors.New("helper not found")
)

// Mapping holds configuration sections keyed by their name.
// A section name is the base name of the file it was loaded from, without extension.
type Mapping map[string]any

// Parser defines an interface for parsing configuration data into a target structure.
//
// The path parameter specifies a navigation path within the configuration data
// using colon (:) as the separator for nested keys. For example:
//   - "api:permissions" navigates to config["api"]["permissions"]
//   - "" (empty path) means parse the entire document
//
// Loader.LoadConfig parses whole documents; Loader.DecodeFile passes a key
// converted to this form. See config/parser/yaml and config/parser/toml for
// the implementations the Loader registers.
type Parser interface {
	Parse(data []byte, target any, path string) error
}

// DataFetcher defines an interface for reading configuration data.
// config/fetcher/file implements it for the files matched by the Loader.
type DataFetcher interface {
	Fetch() ([]byte, error)
}

// Validator defines an interface for validating configuration structures.
type Validator interface {
	Validate() error
}

// Defaulter defines an interface for setting default values in configuration structures.
type Defaulter interface {
	SetDefaults() (changed bool)
}
