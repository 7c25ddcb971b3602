// Package config loads runtime configuration for the GophForge CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the GophForge HTTP API
//	-t int      request timeout (seconds)
//
// # JSON schema
//
// The JSON loader uses timex.Duration for the timeout, so values can be either
// strings like "30s" or integer nanoseconds:
//
//	{
//	  "server_base_url": "http://127.0.0.1:8000",
//	  "request_timeout": "3m"
//	}
package config
