package config

import (
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/gophforge/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8000")
//	-g string   gRPC health bind address (e.g., ":50051")
//	-d string   database DSN
//	-m string   image mode: inline | persist
//	-o string   image output directory
//	-k string   Gemini API key
//	-l string   log level
//
// The function first filters args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with -c/-config.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-g", "-d", "-m", "-o", "-k", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run the HTTP API")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "address and port to run the gRPC health server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.ImageMode, "m", config.ImageMode, "image mode (inline|persist)")
	fs.StringVar(&config.ImageOutputDir, "o", config.ImageOutputDir, "directory for persisted images")
	fs.StringVar(&config.GeminiAPIKey, "k", config.GeminiAPIKey, "Gemini API key")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level (debug|info|warn|error)")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}
