// Package config loads application configuration from files and .env
// overrides and exposes it through an injectable Service.
//
// Loading runs as a pipeline:
//   - Source root: ResolveSrcPath walks up from a path inside the application
//     sources and remembers the top-level source directory.
//   - Environment: LoadEnv reads .env, .env.local, .env.<env> and
//     .env.<env>.local into the process environment.
//   - Aggregation: LoadConfig expands a glob (DefaultGlob unless given)
//     against the source root and parses every match into a section named
//     after the file, e.g. config/db.yaml becomes section "db".
//   - Access: Service offers Get, Set, Has, Merge and typed getters on top
//     of the resulting Mapping.
//
// Supported formats are YAML, JSON and TOML. Other formats can be added with
// WithParser. String values may reference environment variables as ${VAR}
// or ${VAR:-default}; "$${VAR}" keeps the text literal, and values that are
// not valid references, such as "ab${cd", are kept as written.
//
// # Keys
//
// Keys use dots for nesting and brackets for indexes or keys containing dots:
//
//	svc.Get("db.host")
//	svc.Get("servers[0].port")
//	svc.Get(config.Path("labels", "app.kind"))
//
// # Helpers
//
// A HelperFunc stored in a Mapping becomes a Helper bound to the Service:
//
//	svc := config.NewService(config.Mapping{
//	    "app": map[string]any{
//	        "url": config.HelperFunc(func(s *config.Service, _ ...any) any {
//	            return "https://" + s.GetString("app.host")
//	        }),
//	    },
//	})
//	url, _ := svc.CallHelper("_url")
//
// # Fx
//
// NewModule provides *Service to an Fx application, and ProvideSection
// decodes a section into a typed struct, applying the Defaulter and
// Validator hooks when the struct implements them. ProvideFile does the same
// for a key of a single file through Loader.DecodeFile, which uses the
// file's parser directly and honours WithStrictDecoding.
package config
