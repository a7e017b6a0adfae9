package config

import (
	"reflect"
	"strconv"
	"strings"
)

// ParseKey splits a key into path segments.
//
// Segments are separated by dots. Brackets address slice indexes or quoted
// map keys, so all of the following are valid:
//
//	"db.host"            -> [db host]
//	"servers[0].port"    -> [servers 0 port]
//	`labels["app.kind"]` -> [labels app.kind]
//
// Empty segments are kept, so ".a" is ["" a]. An unterminated bracket is
// taken literally.
func ParseKey(key string) []string {
	if key == "" {
		return nil
	}

	var (
		segments []string
		current  strings.Builder
		pending  bool
	)

	flush := func() {
		if pending || current.Len() > 0 {
			segments = append(segments, current.String())
		}

		current.Reset()

		pending = false
	}

	for pos := 0; pos < len(key); pos++ {
		char := key[pos]

		switch char {
		case '.':
			if pos == 0 {
				pending = true
			}

			flush()

			pending = true
		case '[':
			segment, next, ok := readBracket(key, pos)
			if !ok {
				current.WriteByte(char)

				continue
			}

			flush()

			segments = append(segments, segment)
			pos = next
		default:
			current.WriteByte(char)
		}
	}

	flush()

	return segments
}

// readBracket reads a bracketed segment starting at key[start] == '['.
// It returns the segment, the index of the closing bracket and whether the
// bracket was terminated.
func readBracket(key string, start int) (string, int, bool) {
	pos := start + 1
	if pos >= len(key) {
		return "", 0, false
	}

	quote := key[pos]
	if quote == '"' || quote == '\'' {
		var segment strings.Builder

		for pos++; pos < len(key); pos++ {
			char := key[pos]

			if char == '\\' && pos+1 < len(key) {
				pos++
				segment.WriteByte(key[pos])

				continue
			}

			if char == quote {
				if pos+1 < len(key) && key[pos+1] == ']' {
					return segment.String(), pos + 1, true
				}

				return "", 0, false
			}

			segment.WriteByte(char)
		}

		return "", 0, false
	}

	end := strings.IndexByte(key[pos:], ']')
	if end < 0 {
		return "", 0, false
	}

	return key[pos : pos+end], pos + end, true
}

// Path builds a key from explicit segments. Segments that contain dots,
// brackets or quotes are bracket-quoted, so ParseKey(Path(s...)) == s.
func Path(segments ...string) string {
	var key strings.Builder

	for idx, segment := range segments {
		if segment == "" || strings.ContainsAny(segment, `.[]"'\`) {
			key.WriteString(`["`)
			key.WriteString(strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(segment))
			key.WriteString(`"]`)

			continue
		}

		if idx > 0 {
			key.WriteByte('.')
		}

		key.WriteString(segment)
	}

	return key.String()
}

func lookup(root any, path []string) (any, bool) {
	if len(path) == 0 {
		return nil, false
	}

	current := root

	for _, segment := range path {
		next, ok := child(current, segment)
		if !ok {
			return nil, false
		}

		current = next
	}

	if current == nil {
		return nil, false
	}

	return current, true
}

func child(container any, segment string) (any, bool) {
	switch typed := container.(type) {
	case Mapping:
		value, ok := typed[segment]

		return value, ok
	case map[string]any:
		value, ok := typed[segment]

		return value, ok
	case []any:
		idx, ok := sliceIndex(segment)
		if !ok || idx >= len(typed) {
			return nil, false
		}

		return typed[idx], true
	case nil:
		return nil, false
	}

	return reflectChild(reflect.ValueOf(container), segment)
}

func reflectChild(value reflect.Value, segment string) (any, bool) {
	for value.Kind() == reflect.Pointer || value.Kind() == reflect.Interface {
		if value.IsNil() {
			return nil, false
		}

		value = value.Elem()
	}

	switch value.Kind() { //nolint:exhaustive // only containers are traversable
	case reflect.Map:
		if value.Type().Key().Kind() != reflect.String {
			return nil, false
		}

		item := value.MapIndex(reflect.ValueOf(segment).Convert(value.Type().Key()))
		if !item.IsValid() {
			return nil, false
		}

		return item.Interface(), true
	case reflect.Slice, reflect.Array:
		idx, ok := sliceIndex(segment)
		if !ok || idx >= value.Len() {
			return nil, false
		}

		return value.Index(idx).Interface(), true
	default:
		return nil, false
	}
}

// assign writes value at path inside container and returns the container,
// which is a new value when a slice had to grow or the container was a
// typed map or slice. Typed containers are copied into map[string]any or
// []any so their existing entries survive.
func assign(container any, path []string, value any) any {
	if len(path) == 0 {
		return value
	}

	segment, rest := path[0], path[1:]

	switch typed := container.(type) {
	case Mapping:
		typed[segment] = assign(typed[segment], rest, value)

		return typed
	case map[string]any:
		typed[segment] = assign(typed[segment], rest, value)

		return typed
	case []any:
		idx, ok := sliceIndex(segment)
		if ok {
			for len(typed) <= idx {
				typed = append(typed, nil)
			}

			typed[idx] = assign(typed[idx], rest, value)

			return typed
		}
	case nil:
	default:
		if generic, ok := toGeneric(reflect.ValueOf(container)); ok {
			return assign(generic, path, value)
		}
	}

	if idx, ok := sliceIndex(segment); ok {
		created := make([]any, idx+1)
		created[idx] = assign(nil, rest, value)

		return created
	}

	return map[string]any{segment: assign(nil, rest, value)}
}

// toGeneric copies a string-keyed map into map[string]any and a slice or
// array into []any. Other values are not containers.
func toGeneric(value reflect.Value) (any, bool) {
	for value.Kind() == reflect.Pointer || value.Kind() == reflect.Interface {
		if value.IsNil() {
			return nil, false
		}

		value = value.Elem()
	}

	switch value.Kind() { //nolint:exhaustive // only containers are converted
	case reflect.Map:
		if value.Type().Key().Kind() != reflect.String {
			return nil, false
		}

		converted := make(map[string]any, value.Len())

		iter := value.MapRange()
		for iter.Next() {
			converted[iter.Key().String()] = iter.Value().Interface()
		}

		return converted, true
	case reflect.Slice, reflect.Array:
		converted := make([]any, value.Len())

		for idx := range converted {
			converted[idx] = value.Index(idx).Interface()
		}

		return converted, true
	default:
		return nil, false
	}
}

func remove(container any, path []string) bool {
	if len(path) == 0 {
		return false
	}

	parent := container

	if len(path) > 1 {
		var ok bool

		parent, ok = lookup(container, path[:len(path)-1])
		if !ok {
			return false
		}
	}

	last := path[len(path)-1]

	switch typed := parent.(type) {
	case Mapping:
		_, ok := typed[last]
		delete(typed, last)

		return ok
	case map[string]any:
		_, ok := typed[last]
		delete(typed, last)

		return ok
	case []any:
		idx, ok := sliceIndex(last)
		if !ok || idx >= len(typed) {
			return false
		}

		typed[idx] = nil

		return true
	}

	return false
}

func sliceIndex(segment string) (int, bool) {
	if segment == "" {
		return 0, false
	}

	idx, err := strconv.Atoi(segment)
	if err != nil || idx < 0 || strconv.Itoa(idx) != segment {
		return 0, false
	}

	return idx, true
}
