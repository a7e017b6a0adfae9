package file

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrPathIsDirectory is returned when the path matched a directory.
var ErrPathIsDirectory = errors.New("path is a directory, not a file")

// Fetcher holds the contents of one configuration file as read by Open.
type Fetcher struct {
	path    string
	modTime time.Time
	data    []byte
}

// Open reads the configuration file at path.
func Open(path string) (*Fetcher, error) {
	cleanPath := filepath.Clean(path)

	stat, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("stat file %q: %w", cleanPath, err)
	}

	if stat.IsDir() {
		return nil, fmt.Errorf("path %q: %w", cleanPath, ErrPathIsDirectory)
	}

	data, err := os.ReadFile(cleanPath) // #nosec G304 -- path comes from the configuration glob
	if err != nil {
		return nil, fmt.Errorf("reading file %q: %w", cleanPath, err)
	}

	return &Fetcher{
		path:    cleanPath,
		modTime: stat.ModTime(),
		data:    data,
	}, nil
}

// Path returns the cleaned path of the file.
func (f *Fetcher) Path() string {
	return f.path
}

// ModTime returns the modification time observed when the file was opened.
func (f *Fetcher) ModTime() time.Time {
	return f.modTime
}

// Size returns the number of bytes read.
func (f *Fetcher) Size() int {
	return len(f.data)
}

// Blank reports whether the file holds nothing but whitespace.
func (f *Fetcher) Blank() bool {
	return len(bytes.TrimSpace(f.data)) == 0
}

// Fetch returns a copy of the contents read by Open.
func (f *Fetcher) Fetch() ([]byte, error) {
	return bytes.Clone(f.data), nil
}
