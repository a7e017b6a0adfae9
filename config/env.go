package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// testEnv is the environment name for which .env.local is not loaded.
const testEnv = "test"

// EnvOptions describes which .env files are loaded into the process environment.
//
// Files are looked up in a single directory, from lowest to highest precedence:
//
//	.env
//	.env.local        (not loaded when the environment is "test")
//	.env.<env>
//	.env.<env>.local
//
// Variables already set in the process environment are kept unless Override is set.
type EnvOptions struct {
	// Path is the directory holding the .env files, or a path to a .env file
	// whose directory is used. Defaults to the loader root.
	Path string
	// Cwd is the directory holding the .env files. It takes precedence over Path.
	Cwd string
	// Env is the environment name. Defaults to APP_ENV, then DefaultEnv.
	Env string
	// DefaultEnv is the environment name used when neither Env nor APP_ENV is set.
	DefaultEnv string
	// Override lets values from .env files replace variables already set.
	Override bool
	// Disabled skips loading entirely.
	Disabled bool
}

type envSettings struct {
	AppEnv string `env:"APP_ENV"`
}

// LoadEnv loads .env files into the process environment.
// A nil opts loads the files found in the loader root.
func (l *Loader) LoadEnv(opts *EnvOptions) error {
	if opts != nil && opts.Disabled {
		return nil
	}

	options := l.envDefaults(opts)

	files, err := EnvFiles(options)
	if err != nil {
		return err
	}

	values := make(map[string]string)

	for _, file := range files {
		fileValues, err := godotenv.Read(file)
		if err != nil {
			return fmt.Errorf("reading env file %q: %w", file, err)
		}

		for key, value := range fileValues {
			values[key] = value
		}

		l.logger().Debug("env file loaded", "file", file, "variables", len(fileValues))
	}

	for key, value := range values {
		if _, exists := os.LookupEnv(key); exists && !options.Override {
			continue
		}

		err = os.Setenv(key, value)
		if err != nil {
			return fmt.Errorf("setting env %q: %w", key, err)
		}
	}

	return nil
}

// EnvFiles lists the existing .env files described by opts, lowest precedence first.
func EnvFiles(opts EnvOptions) ([]string, error) {
	dir := opts.Cwd
	if dir == "" {
		dir = strings.TrimSuffix(opts.Path, ".env")
	}

	name, err := envName(opts)
	if err != nil {
		return nil, err
	}

	candidates := []string{".env"}

	if name != testEnv {
		candidates = append(candidates, ".env.local")
	}

	if name != "" {
		candidates = append(candidates, ".env."+name, ".env."+name+".local")
	}

	files := make([]string, 0, len(candidates))

	for _, candidate := range candidates {
		path := filepath.Join(dir, candidate)

		stat, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}

			return nil, fmt.Errorf("stat env file %q: %w", path, err)
		}

		if stat.IsDir() {
			continue
		}

		files = append(files, path)
	}

	return files, nil
}

func envName(opts EnvOptions) (string, error) {
	if opts.Env != "" {
		return opts.Env, nil
	}

	var settings envSettings

	err := env.Parse(&settings)
	if err != nil {
		return "", fmt.Errorf("reading environment name: %w", err)
	}

	if settings.AppEnv != "" {
		return settings.AppEnv, nil
	}

	return opts.DefaultEnv, nil
}

func (l *Loader) envDefaults(opts *EnvOptions) EnvOptions {
	var options EnvOptions
	if opts != nil {
		options = *opts
	}

	if options.Path == "" && options.Cwd == "" {
		options.Path = l.root
	}

	return options
}
