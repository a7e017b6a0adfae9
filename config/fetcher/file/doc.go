// Package file reads configuration files for the config package.
//
// The config loader opens one Fetcher per file matched by its glob and hands
// the bytes to the parser registered for the file extension. Path and
// ModTime end up in the loader's errors and debug logs; a Blank file becomes
// an empty section without being parsed.
//
//	fetcher, err := file.Open("/srv/app/config/db.yaml")
//	if err != nil {
//	    // not found, permission denied, or errors.Is(err, file.ErrPathIsDirectory)
//	}
//	data, _ := fetcher.Fetch()
package file
