// Package config provides configuration parsing for the vrt command.
//
// The configuration is stored in vrt.json in the working directory. A
// missing file is not an error for the CLI: it falls back to New.
//
// # Configuration File Structure
//
//	{
//	  "dev": true,
//	  "maxRecursion": 100,
//	  "throwUnhandledErrors": false,
//	  "log": {
//	    "level": "info",
//	    "format": "text"
//	  },
//	  "render": {
//	    "pretty": true,
//	    "comments": false
//	  },
//	  "serve": {
//	    "host": "localhost",
//	    "port": 3000,
//	    "tick": "1s",
//	    "frameLimit": 65536
//	  },
//	  "metrics": {
//	    "enabled": true,
//	    "namespace": "vrt",
//	    "path": "/metrics"
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Listening on", cfg.Serve.Address())
package config
