// Package yaml parses YAML and JSON configuration files with github.com/goccy/go-yaml.
//
// JSON is a subset of YAML, so the config loader registers the same Parser
// for .yaml, .yml and .json files. Colon-separated paths ("api:permissions")
// are converted to YAML paths ("$.api.permissions") to decode a single node.
package yaml
