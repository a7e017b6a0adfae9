package toml

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	gotoml "github.com/pelletier/go-toml/v2"
)

// ErrEmptyData is returned when the input data is empty.
var ErrEmptyData = errors.New("empty data")

// ErrPathNotFound is returned when the specified path is not found in the document.
var ErrPathNotFound = errors.New("path not found")

// ErrInvalidTarget is returned when the target is not a non-nil pointer.
var ErrInvalidTarget = errors.New("target must be a non-nil pointer")

// Parser implements config.Parser for TOML documents.
type Parser struct{}

// NewParser creates a new TOML parser instance.
func NewParser() *Parser {
	return &Parser{}
}

// Parse decodes data into target.
// The path parameter selects a nested table or value using colon (:) as
// separator; an empty path decodes the entire document.
func (p *Parser) Parse(data []byte, target any, path string) error {
	if len(data) == 0 {
		return ErrEmptyData
	}

	if path == "" {
		err := gotoml.Unmarshal(data, target)
		if err != nil {
			return fmt.Errorf("unmarshal error: %w", err)
		}

		return nil
	}

	var document map[string]any

	err := gotoml.Unmarshal(data, &document)
	if err != nil {
		return fmt.Errorf("unmarshal error: %w", err)
	}

	node, err := navigate(document, path)
	if err != nil {
		return err
	}

	err = decodeNode(node, target)
	if err != nil {
		return fmt.Errorf("decoding path %q: %w", path, err)
	}

	return nil
}

// navigate follows path through tables and arrays; numeric segments
// select array elements.
func navigate(document map[string]any, path string) (any, error) {
	var node any = document

	for _, key := range strings.Split(path, ":") {
		next, ok := step(node, key)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrPathNotFound, path)
		}

		node = next
	}

	return node, nil
}

func step(node any, key string) (any, bool) {
	switch typed := node.(type) {
	case map[string]any:
		value, ok := typed[key]

		return value, ok
	case []any:
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 || idx >= len(typed) {
			return nil, false
		}

		return typed[idx], true
	case []map[string]any:
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 || idx >= len(typed) {
			return nil, false
		}

		return typed[idx], true
	default:
		return nil, false
	}
}

// decodeNode re-encodes node under a "value" key and decodes it into a
// wrapper struct holding target's type, so nested values follow the same
// decoding rules as a whole document.
func decodeNode(node any, target any) error {
	targetValue := reflect.ValueOf(target)
	if targetValue.Kind() != reflect.Pointer || targetValue.IsNil() {
		return ErrInvalidTarget
	}

	encoded, err := gotoml.Marshal(map[string]any{"value": node})
	if err != nil {
		return fmt.Errorf("encoding node: %w", err)
	}

	wrapperType := reflect.StructOf([]reflect.StructField{{
		Name: "Value",
		Type: targetValue.Type().Elem(),
		Tag:  `toml:"value"`,
	}})
	wrapper := reflect.New(wrapperType)

	err = gotoml.Unmarshal(encoded, wrapper.Interface())
	if err != nil {
		return fmt.Errorf("unmarshal error: %w", err)
	}

	targetValue.Elem().Set(wrapper.Elem().Field(0))

	return nil
}
