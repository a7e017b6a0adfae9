package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	filefetcher "github.com/0xalexb/hjarta-config/config/fetcher/file"
	tomlparser "github.com/0xalexb/hjarta-config/config/parser/toml"
	yamlparser "github.com/0xalexb/hjarta-config/config/parser/yaml"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/drone/envsubst"
)

// Loader discovers configuration files under the source root and aggregates
// them into a Mapping. A Loader owns the source root, so it is usually
// created once per process; see Default.
type Loader struct {
	mu        sync.Mutex
	root      string
	srcPath   string
	parsers   map[string]Parser
	expandEnv bool
	log       *slog.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithRoot sets the directory the source path search stops at and the
// default location of .env files. Defaults to the process working directory.
func WithRoot(dir string) LoaderOption {
	return func(l *Loader) {
		abs, err := filepath.Abs(dir)
		if err != nil {
			abs = filepath.Clean(dir)
		}

		l.root = abs
	}
}

// WithParser registers parser for files with the given extension, e.g. ".ini".
// It replaces any parser registered for the same extension.
func WithParser(ext string, parser Parser) LoaderOption {
	return func(l *Loader) {
		l.parsers[normalizeExt(ext)] = parser
	}
}

// WithEnvExpansion toggles ${VAR} expansion in string values. Enabled by default.
// Write "$${VAR}" to keep a literal "${VAR}" while expansion is enabled.
func WithEnvExpansion(enabled bool) LoaderOption {
	return func(l *Loader) {
		l.expandEnv = enabled
	}
}

// WithStrictDecoding registers YAML and JSON parsers that reject fields the
// target struct does not declare. It only affects DecodeFile, since
// LoadConfig decodes into generic maps. It replaces parsers registered for
// .yaml, .yml and .json by earlier options.
func WithStrictDecoding() LoaderOption {
	return func(l *Loader) {
		strict := yamlparser.NewParser(yamlparser.WithStrict())

		for _, ext := range []string{".yaml", ".yml", ".json"} {
			l.parsers[ext] = strict
		}
	}
}

// WithLogger sets the logger used by the Loader. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		l.log = logger
	}
}

// NewLoader creates a Loader with YAML, JSON and TOML parsers registered.
func NewLoader(opts ...LoaderOption) *Loader {
	yamlParser := yamlparser.NewParser()

	loader := &Loader{
		mu:      sync.Mutex{},
		root:    workingDir(),
		srcPath: "",
		parsers: map[string]Parser{
			".yaml": yamlParser,
			".yml":  yamlParser,
			".json": yamlParser,
			".toml": tomlparser.NewParser(),
		},
		expandEnv: true,
		log:       nil,
	}

	for _, apply := range opts {
		apply(loader)
	}

	return loader
}

//nolint:gochecknoglobals // process-wide loader backing the package-level functions.
var (
	defaultLoader     *Loader
	defaultLoaderOnce sync.Once
)

// Default returns the process-wide Loader used by the package-level functions.
func Default() *Loader {
	defaultLoaderOnce.Do(func() {
		defaultLoader = NewLoader()
	})

	return defaultLoader
}

// ResolveSrcPath resolves the source root of the default Loader.
func ResolveSrcPath(start string) error {
	return Default().ResolveSrcPath(start)
}

// Load loads configuration with the default Loader.
func Load(ctx context.Context, opts ...LoadOption) (*Service, error) {
	return Default().Load(ctx, opts...)
}

// LoadSync loads configuration with the default Loader without a context.
func LoadSync(opts ...LoadOption) (*Service, error) {
	return Default().LoadSync(opts...)
}

// NewService creates a Service bound to the default Loader.
func NewService(mapping Mapping) *Service {
	return Default().NewService(mapping)
}

func (l *Loader) logger() *slog.Logger {
	if l.log != nil {
		return l.log
	}

	return slog.Default()
}

// Load runs the aggregation pipeline and returns a Service owning the result.
func (l *Loader) Load(ctx context.Context, opts ...LoadOption) (*Service, error) {
	options := newLoadOptions(opts)

	mapping, err := l.LoadConfig(ctx, options.glob, options.env)
	if err != nil {
		return nil, err
	}

	return l.NewService(mapping), nil
}

// LoadSync is Load without a context.
func (l *Loader) LoadSync(opts ...LoadOption) (*Service, error) {
	return l.Load(context.Background(), opts...)
}

// LoadConfig expands glob against the source root, loads the .env files
// described by env and parses every matched file into a section.
// Sections are stored in glob order; a later file with the same name
// replaces an earlier one. Any failing file fails the whole load.
func (l *Loader) LoadConfig(ctx context.Context, glob string, env *EnvOptions) (Mapping, error) {
	if glob == "" {
		glob = DefaultGlob
	}

	pattern := l.Src(glob)

	err := l.LoadEnv(env)
	if err != nil {
		return nil, err
	}

	err = ctx.Err()
	if err != nil {
		return nil, fmt.Errorf("loading %q: %w", pattern, err)
	}

	matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrGlob, pattern, err)
	}

	configs := make(Mapping, len(matches))

	for _, match := range matches {
		err = ctx.Err()
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", match, err)
		}

		name := SectionName(match)

		section, err := l.loadFile(match)
		if err != nil {
			return nil, err
		}

		if _, exists := configs[name]; exists {
			l.logger().Debug("section replaced", "name", name, "file", match)
		}

		configs[name] = section
	}

	l.logger().Info("configuration loaded", "pattern", pattern, "sections", len(configs))

	return configs, nil
}

// LoadConfigSync is LoadConfig without a context.
func (l *Loader) LoadConfigSync(glob string, env *EnvOptions) (Mapping, error) {
	return l.LoadConfig(context.Background(), glob, env)
}

// SectionName derives a section name from a file path: the base name without its extension.
func SectionName(file string) string {
	base := filepath.Base(file)

	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (l *Loader) loadFile(path string) (any, error) {
	parser, err := l.parserFor(path)
	if err != nil {
		return nil, err
	}

	fetcher, err := filefetcher.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	log := l.logger().With("file", fetcher.Path(), "section", SectionName(fetcher.Path()))

	if fetcher.Blank() {
		log.Debug("config file is blank")

		return map[string]any{}, nil
	}

	var document any

	err = decodeData(fetcher, parser, &document, "")
	if err != nil {
		return nil, fmt.Errorf("parsing config %q: %w", fetcher.Path(), err)
	}

	document = normalize(unwrapDefault(document))

	if l.expandEnv {
		document = l.expand(fetcher.Path(), document)
	}

	log.Debug("config file loaded", "bytes", fetcher.Size(), "modified", fetcher.ModTime())

	return document, nil
}

// DecodeFile decodes the value at key in a single configuration file into
// target with the parser registered for the file extension. A relative file
// is resolved against the source root. An empty key decodes the whole file.
//
// The file is decoded as written: no default document is unwrapped and no
// ${VAR} references are expanded. Struct fields follow the parser's rules,
// so a Loader built WithStrictDecoding rejects unknown YAML and JSON fields.
func (l *Loader) DecodeFile(file, key string, target any) error {
	path := file
	if !filepath.IsAbs(path) {
		path = l.Src(file)
	}

	parser, err := l.parserFor(path)
	if err != nil {
		return err
	}

	fetcher, err := filefetcher.Open(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}

	err = decodeData(fetcher, parser, target, parserPath(key))
	if err != nil {
		return fmt.Errorf("decoding %q in %q: %w", key, fetcher.Path(), err)
	}

	l.logger().Debug("config file decoded", "file", fetcher.Path(), "key", key)

	return nil
}

func (l *Loader) parserFor(path string) (Parser, error) { //nolint:ireturn // parsers are registered by extension
	parser, ok := l.parsers[normalizeExt(filepath.Ext(path))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, path)
	}

	return parser, nil
}

func decodeData(fetcher DataFetcher, parser Parser, target any, path string) error {
	data, err := fetcher.Fetch()
	if err != nil {
		return fmt.Errorf("fetching: %w", err)
	}

	return parser.Parse(data, target, path) //nolint:wrapcheck // wrapped by callers with the file path
}

// parserPath converts a key to the colon-separated form parsers navigate.
func parserPath(key string) string {
	return strings.Join(ParseKey(key), ":")
}

// unwrapDefault returns the value under "default" when it is the only key of the document.
func unwrapDefault(document any) any {
	mapping, ok := document.(map[string]any)
	if !ok || len(mapping) != 1 {
		return document
	}

	if value, ok := mapping["default"]; ok {
		return value
	}

	return document
}

// normalize converts decoded documents to map[string]any, []any and int
// where the decoder produced other map or integer types.
func normalize(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		for key, item := range typed {
			typed[key] = normalize(item)
		}

		return typed
	case map[any]any:
		converted := make(map[string]any, len(typed))
		for key, item := range typed {
			converted[fmt.Sprint(key)] = normalize(item)
		}

		return converted
	case []any:
		for idx, item := range typed {
			typed[idx] = normalize(item)
		}

		return typed
	case int64:
		if int64(int(typed)) == typed {
			return int(typed)
		}

		return typed
	case uint64:
		if typed <= uint64(^uint(0)>>1) {
			return int(typed)
		}

		return typed
	default:
		return value
	}
}

// expand replaces ${VAR} references in string values in place. "$${VAR}"
// keeps a literal "${VAR}". A string envsubst cannot parse, such as an
// unbalanced "${", is kept as written.
func (l *Loader) expand(file string, value any) any {
	switch typed := value.(type) {
	case string:
		if !strings.Contains(typed, "${") {
			return typed
		}

		expanded, err := envsubst.EvalEnv(typed)
		if err != nil {
			l.logger().Debug("value kept literal", "file", file, "error", err)

			return typed
		}

		return expanded
	case map[string]any:
		for key, item := range typed {
			typed[key] = l.expand(file, item)
		}

		return typed
	case []any:
		for idx, item := range typed {
			typed[idx] = l.expand(file, item)
		}

		return typed
	default:
		return value
	}
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	return ext
}

func workingDir() string {
	dir, err := os.Getwd()
	if err != nil {
		return string(filepath.Separator)
	}

	return dir
}
