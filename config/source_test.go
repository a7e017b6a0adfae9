package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoader_ResolveSrcPath(t *testing.T) {
	t.Parallel()

	root := t.TempDir()

	testCases := []struct {
		name     string
		start    string
		expected string
	}{
		{
			name:     "file deep in sources",
			start:    filepath.Join(root, "dist", "modules", "users", "handler.go"),
			expected: filepath.Join(root, "dist"),
		},
		{
			name:     "top level source directory",
			start:    filepath.Join(root, "src"),
			expected: filepath.Join(root, "src"),
		},
		{
			name:     "root itself",
			start:    root,
			expected: root,
		},
		{
			name:     "outside root walks to filesystem root",
			start:    filepath.Join(filepath.Dir(root), "elsewhere", "main.go"),
			expected: string(filepath.Separator),
		},
	}

	for _, testCase := range testCases {
		testCase := testCase

		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			loader := NewLoader(WithRoot(root))

			err := loader.ResolveSrcPath(testCase.start)
			require.NoError(t, err)
			assert.Equal(t, testCase.expected, loader.SrcPath())
		})
	}
}

func TestLoader_ResolveSrcPath_FirstCallWins(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	loader := NewLoader(WithRoot(root))

	err := loader.ResolveSrcPath(filepath.Join(root, "dist", "main.go"))
	require.NoError(t, err)

	err = loader.ResolveSrcPath(filepath.Join(root, "build", "deeper", "still", "main.go"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "dist"), loader.SrcPath())
}

func TestLoader_ResolveSrcPath_RelativePath(t *testing.T) {
	t.Parallel()

	testCases := []string{"dist/main.go", "./main.go", "", "../src"}

	for _, start := range testCases {
		start := start

		t.Run(start, func(t *testing.T) {
			t.Parallel()

			loader := NewLoader(WithRoot(t.TempDir()))

			err := loader.ResolveSrcPath(start)
			require.ErrorIs(t, err, ErrRelativeStartPath)
			assert.Empty(t, loader.SrcPath())
		})
	}
}

func TestLoader_Src(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	loader := NewLoader(WithRoot(root))

	assert.Equal(t, filepath.Join(root, "config"), loader.Src("config"), "falls back to root before resolution")
	assert.Equal(t, root, loader.Src(""))

	err := loader.ResolveSrcPath(filepath.Join(root, "dist", "app.go"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "dist", "config"), loader.Src("config"))
	assert.Equal(t, filepath.Join(root, "config"), loader.Root("config"))
	assert.Equal(t, "/etc/app", loader.Src("/etc/app/"), "absolute paths are kept")
}
