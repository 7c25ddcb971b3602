package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/gophforge/internal/buildinfo"
	"github.com/dmitrijs2005/gophforge/internal/client/client"
)

const usage = `Usage: gophforge-cli [-a url] [-t seconds] [-c config.json] [command]

Commands:
  health                               check the server
  version                              print build information
  create <name> [description]          store an item
  list                                 list items
  get <id>                             show an item
  delete <id>                          delete an item
  generate [-o file|-] [-r 16:9] [-s 1K] <prompt...>
                                       generate an image (prompt read from stdin when omitted)

Without a command an interactive session is started.`

// ErrUsage reports a malformed command line.
var ErrUsage = errors.New("usage error")

// RunCommand executes a single command given as args (command name first).
func (a *App) RunCommand(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: no command", ErrUsage)
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "help", "-h", "--help":
		a.printf("%s\n", usage)
		return nil

	case "health":
		return a.Health(ctx)

	case "version":
		buildinfo.PrintBuildData(a.out)
		return nil

	case "create":
		if len(rest) == 0 {
			return fmt.Errorf("%w: create <name> [description]", ErrUsage)
		}
		var desc *string
		if len(rest) > 1 {
			d := strings.Join(rest[1:], " ")
			desc = &d
		}
		return a.Create(ctx, rest[0], desc)

	case "list", "ls":
		return a.List(ctx)

	case "get", "show":
		if len(rest) != 1 {
			return fmt.Errorf("%w: get <id>", ErrUsage)
		}
		return a.Get(ctx, rest[0])

	case "delete", "rm":
		if len(rest) != 1 {
			return fmt.Errorf("%w: delete <id>", ErrUsage)
		}
		return a.Delete(ctx, rest[0])

	case "generate":
		return a.generateCommand(ctx, rest)

	default:
		return fmt.Errorf("%w: unknown command %q", ErrUsage, cmd)
	}
}

func (a *App) generateCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	outPath := fs.String("o", "", "output file, - for stdout")
	aspect := fs.String("r", "", "aspect ratio")
	size := fs.String("s", "", "image size")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	prompt := strings.Join(fs.Args(), " ")
	if prompt == "" {
		b, err := io.ReadAll(a.in)
		if err != nil {
			return fmt.Errorf("read prompt: %w", err)
		}
		prompt = strings.TrimSpace(string(b))
	}

	return a.Generate(ctx, client.ImageRequest{Prompt: prompt, AspectRatio: *aspect, ImageSize: *size}, *outPath)
}
