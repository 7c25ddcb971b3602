package cli

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/gophforge/internal/client/client"
	"github.com/dmitrijs2005/gophforge/internal/client/config"
)

// Run loads the configuration from args, then executes the command found
// after the global flags, or starts the REPL when there is none.
func Run(ctx context.Context, args []string, in io.Reader, out io.Writer) error {
	cfg, err := config.Load(args)
	if err != nil {
		return err
	}

	// global flags are already applied; skip past them to the command
	fs := flag.NewFlagSet("gophforge-cli", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.String("a", "", "")
	fs.Int("t", 0, "")
	fs.String("c", "", "")
	fs.String("config", "", "")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v\n\n%s", ErrUsage, err, usage)
	}

	app := NewApp(client.NewHTTPClient(cfg.ServerBaseURL, cfg.RequestTimeout), in, out)

	if fs.NArg() > 0 {
		return app.RunCommand(ctx, fs.Args())
	}

	fmt.Fprintf(out, "GophForge CLI, server %s (type 'help' for commands)\n", cfg.ServerBaseURL)
	runREPL(ctx, app, app.in)
	return nil
}
