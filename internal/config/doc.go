// Package config loads fsroute.json, the project configuration of the
// fsroute command.
//
// # Configuration File Structure
//
//	{
//	  "routes": "app/routes",
//	  "pageFiles": ["page.go", "index.go"],
//	  "manifest": "s3://my-bucket/routes.json",
//	  "emptyCatchAll": "bind",
//	  "server": {
//	    "host": "localhost",
//	    "port": 3000,
//	    "watch": true,
//	    "watchInterval": "500ms"
//	  },
//	  "metrics": {
//	    "namespace": "fsroute"
//	  },
//	  "tracing": {
//	    "tracerName": "fsroute",
//	    "exporter": "stdout"
//	  }
//	}
//
// FSROUTE_ROUTES, FSROUTE_MANIFEST and FSROUTE_PORT override the file
// when ApplyEnv is called.
//
// # Usage
//
//	cfg, err := config.LoadOrDefault(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.ApplyEnv(os.Getenv); err != nil {
//	    log.Fatal(err)
//	}
//	table, err := router.Build(decls, cfg.BuildOptions()...)
package config
