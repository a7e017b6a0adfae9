// Package toml parses TOML configuration files with github.com/pelletier/go-toml/v2.
//
// Colon-separated paths ("server:tls") select a nested table before decoding.
package toml
