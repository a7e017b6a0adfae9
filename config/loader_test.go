package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigTree(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()

	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))

		err := os.MkdirAll(filepath.Dir(path), 0o750)
		require.NoError(t, err)

		err = os.WriteFile(path, []byte(content), 0o600)
		require.NoError(t, err)
	}

	return root
}

func TestLoader_LoadConfig_Testdata(t *testing.T) {
	t.Parallel()

	loader := NewLoader(WithRoot("testdata/app"))

	mapping, err := loader.LoadConfig(context.Background(), DefaultGlob, &EnvOptions{Disabled: true})
	require.NoError(t, err)

	assert.Equal(t, Mapping{
		"db": map[string]any{
			"host": "db.example.com",
			"port": 5432,
			"pool": map[string]any{
				"max":          20,
				"idle_timeout": "30s",
			},
			"replicas": []any{"db-r1.example.com", "db-r2.example.com"},
		},
		"auth": map[string]any{
			"issuer":    "hjarta",
			"ttl":       "15m",
			"audiences": []any{"web", "mobile"},
		},
		"server": map[string]any{
			"host":  "api.example.com",
			"port":  8443,
			"debug": false,
		},
	}, mapping)
}

func TestLoader_LoadConfig_SectionsFromFileNames(t *testing.T) {
	t.Parallel()

	root := writeConfigTree(t, map[string]string{
		"config/db.yaml":   "x: 1\n",
		"config/auth.yaml": "y: 2\n",
		"other/cache.yaml": "z: 3\n",
	})

	mapping, err := NewLoader(WithRoot(root)).LoadConfigSync("", &EnvOptions{Disabled: true})
	require.NoError(t, err)

	assert.Equal(t, Mapping{
		"db":   map[string]any{"x": 1},
		"auth": map[string]any{"y": 2},
	}, mapping)
}

func TestLoader_LoadConfig_ResolvesAgainstSourceRoot(t *testing.T) {
	t.Parallel()

	root := writeConfigTree(t, map[string]string{
		"config/app.yaml":      "from: root\n",
		"dist/config/app.yaml": "from: dist\n",
	})

	loader := NewLoader(WithRoot(root))

	err := loader.ResolveSrcPath(filepath.Join(root, "dist", "cmd", "main.go"))
	require.NoError(t, err)

	mapping, err := loader.LoadConfigSync("config/*.yaml", &EnvOptions{Disabled: true})
	require.NoError(t, err)
	assert.Equal(t, Mapping{"app": map[string]any{"from": "dist"}}, mapping)
}

func TestLoader_LoadConfig_AbsoluteGlob(t *testing.T) {
	t.Parallel()

	root := writeConfigTree(t, map[string]string{
		"settings/app.json": `{"name": "hjarta"}`,
	})

	mapping, err := NewLoader().LoadConfigSync(filepath.Join(root, "settings", "*.json"), &EnvOptions{Disabled: true})
	require.NoError(t, err)
	assert.Equal(t, Mapping{"app": map[string]any{"name": "hjarta"}}, mapping)
}

func TestLoader_LoadConfig_DuplicateNamesOverwrite(t *testing.T) {
	t.Parallel()

	root := writeConfigTree(t, map[string]string{
		"config/db.yaml":        "source: top\n",
		"config/nested/db.yaml": "source: nested\n",
	})

	mapping, err := NewLoader(WithRoot(root)).LoadConfigSync("", &EnvOptions{Disabled: true})
	require.NoError(t, err)

	require.Len(t, mapping, 1)
	assert.Contains(t, []any{"top", "nested"}, mapping["db"].(map[string]any)["source"])
}

func TestLoader_LoadConfig_DefaultDocument(t *testing.T) {
	t.Parallel()

	root := writeConfigTree(t, map[string]string{
		"config/only.yaml":  "default:\n  a: 1\n",
		"config/mixed.yaml": "default:\n  a: 1\nother: 2\n",
	})

	mapping, err := NewLoader(WithRoot(root)).LoadConfigSync("", &EnvOptions{Disabled: true})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"a": 1}, mapping["only"])
	assert.Equal(t, map[string]any{"default": map[string]any{"a": 1}, "other": 2}, mapping["mixed"])
}

func TestLoader_LoadConfig_EmptyFile(t *testing.T) {
	t.Parallel()

	root := writeConfigTree(t, map[string]string{
		"config/empty.yaml": "\n\n",
	})

	mapping, err := NewLoader(WithRoot(root)).LoadConfigSync("", &EnvOptions{Disabled: true})
	require.NoError(t, err)
	assert.Equal(t, Mapping{"empty": map[string]any{}}, mapping)
}

func TestLoader_LoadConfig_NoMatches(t *testing.T) {
	t.Parallel()

	mapping, err := NewLoader(WithRoot(t.TempDir())).LoadConfigSync("", &EnvOptions{Disabled: true})
	require.NoError(t, err)
	assert.Empty(t, mapping)
}

func TestLoader_LoadConfig_ExpandsEnv(t *testing.T) {
	t.Parallel()

	root := writeConfigTree(t, map[string]string{
		"config/db.yaml": "dsn: ${HJARTA_TEST_UNSET_DSN:-postgres://localhost}\nraw: $HOME\nlist:\n  - ${HJARTA_TEST_UNSET_ITEM:-item}\n",
	})

	mapping, err := NewLoader(WithRoot(root)).LoadConfigSync("", &EnvOptions{Disabled: true})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"dsn":  "postgres://localhost",
		"raw":  "$HOME",
		"list": []any{"item"},
	}, mapping["db"])

	mapping, err = NewLoader(WithRoot(root), WithEnvExpansion(false)).LoadConfigSync("", &EnvOptions{Disabled: true})
	require.NoError(t, err)
	assert.Equal(t, "${HJARTA_TEST_UNSET_DSN:-postgres://localhost}", mapping["db"].(map[string]any)["dsn"])
}

func TestLoader_LoadConfig_KeepsUnparsableReferences(t *testing.T) {
	t.Parallel()

	root := writeConfigTree(t, map[string]string{
		"config/db.yaml": "password: \"ab${cd\"\nescaped: \"$${HJARTA_TEST_UNSET_USER}\"\nuser: ${HJARTA_TEST_UNSET_USER:-app}\n",
	})

	mapping, err := NewLoader(WithRoot(root)).LoadConfigSync("", &EnvOptions{Disabled: true})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"password": "ab${cd",
		"escaped":  "${HJARTA_TEST_UNSET_USER}",
		"user":     "app",
	}, mapping["db"])
}

func TestLoader_LoadConfig_LoadsEnvBeforeExpansion(t *testing.T) {
	unsetEnv(t, "APP_ENV", "HJARTA_TEST_DB_HOST")

	root := writeConfigTree(t, map[string]string{
		".env":           "HJARTA_TEST_DB_HOST=db.from.env\n",
		"config/db.yaml": "host: ${HJARTA_TEST_DB_HOST}\n",
	})

	mapping, err := NewLoader(WithRoot(root)).LoadConfigSync("", nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"host": "db.from.env"}, mapping["db"])
}

func TestLoader_LoadConfig_Errors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		files   map[string]string
		glob    string
		wantErr error
		wantMsg string
	}{
		{
			name:    "invalid glob",
			files:   map[string]string{},
			glob:    "config/[.yaml",
			wantErr: ErrGlob,
		},
		{
			name:    "unsupported format",
			files:   map[string]string{"config/app.ini": "a=1"},
			glob:    "config/*",
			wantErr: ErrUnsupportedFormat,
		},
		{
			name:    "malformed file fails whole load",
			files:   map[string]string{"config/a.yaml": "ok: true\n", "config/b.yaml": "broken: [\n"},
			glob:    "",
			wantMsg: "parsing config",
		},
	}

	for _, testCase := range testCases {
		testCase := testCase

		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			root := writeConfigTree(t, testCase.files)

			mapping, err := NewLoader(WithRoot(root)).LoadConfigSync(testCase.glob, &EnvOptions{Disabled: true})
			require.Error(t, err)
			assert.Nil(t, mapping)

			if testCase.wantErr != nil {
				require.ErrorIs(t, err, testCase.wantErr)
			}

			if testCase.wantMsg != "" {
				assert.Contains(t, err.Error(), testCase.wantMsg)
			}
		})
	}
}

func TestLoader_LoadConfig_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLoader(WithRoot("testdata/app")).LoadConfig(ctx, "", &EnvOptions{Disabled: true})
	require.ErrorIs(t, err, context.Canceled)
}

type upperParser struct{}

func (upperParser) Parse(data []byte, target any, _ string) error {
	document, ok := target.(*any)
	if !ok {
		return ErrUnsupportedFormat
	}

	*document = map[string]any{"raw": string(data)}

	return nil
}

func TestLoader_WithParser(t *testing.T) {
	t.Parallel()

	root := writeConfigTree(t, map[string]string{
		"config/feature.ini": "enabled=true",
	})

	loader := NewLoader(WithRoot(root), WithParser("ini", upperParser{}))

	mapping, err := loader.LoadConfigSync("config/*.ini", &EnvOptions{Disabled: true})
	require.NoError(t, err)
	assert.Equal(t, Mapping{"feature": map[string]any{"raw": "enabled=true"}}, mapping)
}

type poolSettings struct {
	Max int `yaml:"max"`
}

type serverSettings struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

func TestLoader_DecodeFile(t *testing.T) {
	t.Parallel()

	loader := NewLoader(WithRoot("testdata/app"))

	t.Run("yaml key", func(t *testing.T) {
		t.Parallel()

		var pool poolSettings

		err := loader.DecodeFile("config/db.yaml", "pool", &pool)
		require.NoError(t, err)
		assert.Equal(t, poolSettings{Max: 20}, pool)
	})

	t.Run("yaml index", func(t *testing.T) {
		t.Parallel()

		var replica string

		err := loader.DecodeFile("config/db.yaml", "replicas[1]", &replica)
		require.NoError(t, err)
		assert.Equal(t, "db-r2.example.com", replica)
	})

	t.Run("toml whole file", func(t *testing.T) {
		t.Parallel()

		var server serverSettings

		err := loader.DecodeFile("config/nested/server.toml", "", &server)
		require.NoError(t, err)
		assert.Equal(t, serverSettings{Host: "api.example.com", Port: 8443}, server)
	})

	t.Run("json as written", func(t *testing.T) {
		t.Parallel()

		var issuer string

		err := loader.DecodeFile("config/auth.json", "default.issuer", &issuer)
		require.NoError(t, err)
		assert.Equal(t, "hjarta", issuer)
	})

	t.Run("missing key", func(t *testing.T) {
		t.Parallel()

		var pool poolSettings

		err := loader.DecodeFile("config/db.yaml", "cache", &pool)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db.yaml")
	})

	t.Run("unsupported format", func(t *testing.T) {
		t.Parallel()

		var value any

		err := loader.DecodeFile("config/db.ini", "", &value)
		require.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		var value any

		err := loader.DecodeFile("config/cache.yaml", "", &value)
		require.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestLoader_DecodeFile_Strict(t *testing.T) {
	t.Parallel()

	root := writeConfigTree(t, map[string]string{
		"config/db.yaml": "pool:\n  max: 5\n  maximum: 50\n",
	})

	var lenient poolSettings

	err := NewLoader(WithRoot(root)).DecodeFile("config/db.yaml", "pool", &lenient)
	require.NoError(t, err)
	assert.Equal(t, 5, lenient.Max)

	var strict poolSettings

	err = NewLoader(WithRoot(root), WithStrictDecoding()).DecodeFile("config/db.yaml", "pool", &strict)
	require.Error(t, err)

	mapping, err := NewLoader(WithRoot(root), WithStrictDecoding()).LoadConfigSync("", &EnvOptions{Disabled: true})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"max": 5, "maximum": 50}, mapping["db"].(map[string]any)["pool"])
}

func TestSectionName(t *testing.T) {
	t.Parallel()

	testCases := map[string]string{
		"/srv/app/config/db.yaml":      "db",
		"config/nested/auth.json":      "auth",
		"config/app.config.toml":       "app.config",
		"config/noext":                 "noext",
		filepath.Join("a", "b.Y.YAML"): "b.Y",
	}

	for path, expected := range testCases {
		assert.Equal(t, expected, SectionName(path), path)
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	result := normalize(map[string]any{
		"a": uint64(1),
		"b": int64(-2),
		"c": map[any]any{1: "one"},
		"d": []any{uint64(3)},
		"e": 1.5,
	})

	assert.Equal(t, map[string]any{
		"a": 1,
		"b": -2,
		"c": map[string]any{"1": "one"},
		"d": []any{3},
		"e": 1.5,
	}, result)
}
