// Package hjarta builds Fx applications whose components receive their
// configuration from an injected *config.Service.
//
//	app := hjarta.NewApp(
//	    hjarta.WithLogLevel("info"),
//	    hjarta.WithSourcePath(mainFile),
//	    hjarta.WithConfig(config.WithGlob("config/**/*.yaml")),
//	    hjarta.WithModules(config.ProvideSection[ServerConfig]("server")),
//	)
//	app.Run()
//
// WithSourcePath fixes the directory configuration globs are resolved
// against; WithConfig adds the config module that loads .env files and
// configuration sections when the container is built.
package hjarta
