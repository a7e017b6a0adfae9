package config

import (
	"fmt"
	"path/filepath"
)

// ResolveSrcPath finds and stores the application source directory.
//
// The search starts at start, which can be any absolute path under the
// application sources, and walks up the parent directories. The last
// directory visited before reaching the loader root becomes the source root.
// Only the first successful call has an effect.
func (l *Loader) ResolveSrcPath(start string) error {
	if !filepath.IsAbs(start) {
		return fmt.Errorf("%w: %q", ErrRelativeStartPath, start)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.srcPath != "" {
		return nil
	}

	root := l.root
	src := filepath.Clean(start)
	parent := filepath.Dir(src)

	for src != root && parent != root && parent != src {
		src = parent
		parent = filepath.Dir(src)
	}

	l.srcPath = src

	l.logger().Debug("source path resolved", "start", start, "src", src)

	return nil
}

// SrcPath returns the resolved source root, or an empty string when
// ResolveSrcPath has not been called yet.
func (l *Loader) SrcPath() string {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.srcPath
}

// Root resolves dir against the loader root.
func (l *Loader) Root(dir string) string {
	return resolve(l.root, dir)
}

// Src resolves dir against the source root, falling back to the loader root
// when the source root is not resolved.
func (l *Loader) Src(dir string) string {
	base := l.SrcPath()
	if base == "" {
		base = l.root
	}

	return resolve(base, dir)
}

func resolve(base, dir string) string {
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir)
	}

	return filepath.Join(base, dir)
}
