package yaml

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

// ErrEmptyData is returned when the input data is empty.
var ErrEmptyData = errors.New("empty data")

// ErrPathNotFound is returned when the specified path is not found in the document.
var ErrPathNotFound = errors.New("path not found")

// Parser implements config.Parser for YAML and JSON documents.
type Parser struct {
	decodeOptions []yaml.DecodeOption
}

// Option configures a Parser.
type Option func(*Parser)

// WithStrict makes decoding into structs fail on unknown fields.
func WithStrict() Option {
	return func(p *Parser) {
		p.decodeOptions = append(p.decodeOptions, yaml.Strict())
	}
}

// NewParser creates a new YAML parser instance.
func NewParser(opts ...Option) *Parser {
	parser := &Parser{decodeOptions: nil}

	for _, apply := range opts {
		apply(parser)
	}

	return parser
}

// Parse decodes data into target.
// The path parameter selects a nested node using colon (:) as separator;
// an empty path decodes the entire document.
func (p *Parser) Parse(data []byte, target any, path string) error {
	if len(data) == 0 {
		return ErrEmptyData
	}

	if path == "" {
		err := yaml.UnmarshalWithOptions(data, target, p.decodeOptions...)
		if err != nil {
			return fmt.Errorf("unmarshal error: %w", err)
		}

		return nil
	}

	node, err := buildPath(path).ReadNode(bytes.NewReader(data))
	if err != nil {
		if yaml.IsNotFoundNodeError(err) {
			return fmt.Errorf("%w: %s", ErrPathNotFound, path)
		}

		return fmt.Errorf("reading path %q: %w", path, err)
	}

	err = yaml.NodeToValue(node, target, p.decodeOptions...)
	if err != nil {
		return fmt.Errorf("decoding path %q: %w", path, err)
	}

	return nil
}

// buildPath converts a colon-separated path to a YAML path. Numeric
// segments select sequence elements, so "servers:0:host" becomes
// "$.servers[0].host". Keys with reserved characters are quoted.
func buildPath(path string) *yaml.Path {
	builder := (&yaml.PathBuilder{}).Root()

	for _, segment := range strings.Split(path, ":") {
		idx, err := strconv.ParseUint(segment, 10, 32)
		if err == nil && strconv.FormatUint(idx, 10) == segment {
			builder = builder.Index(uint(idx))

			continue
		}

		builder = builder.Child(segment)
	}

	return builder.Build()
}
