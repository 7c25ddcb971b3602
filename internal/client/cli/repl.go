package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophforge/internal/client/client"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	Health(ctx context.Context) error
	List(ctx context.Context) error
	Get(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	CreateInteractive(ctx context.Context) error
	GenerateInteractive(ctx context.Context) error
}

// runREPL reads commands line by line and dispatches them to a. Errors are
// reported and the loop goes on. It returns on EOF or "exit"/"quit".
//
//	help              show available commands
//	create            store an item (prompts for name and description)
//	(l)ist            list items
//	get <id>          show an item
//	delete <id>       delete an item
//	generate          generate an image (prompts for a multi-line prompt)
//	health            check the server
//	exit | quit       leave the program
//
// Commands and interactive prompts share reader, so a command's own prompts
// consume the lines that follow it.
func runREPL(ctx context.Context, a execIface, reader *bufio.Reader) {
	for {
		printlnFn("gf> ")
		line, readErr := reader.ReadString('\n')
		if readErr != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help":
			printlnFn("Available commands: create, (l)ist, get <id>, delete <id>, generate, health, exit")

		case "create":
			err = a.CreateInteractive(ctx)

		case "l", "list":
			err = a.List(ctx)

		case "get", "show":
			if len(args) != 1 {
				printlnFn("Usage: get <id>")
				continue
			}
			err = a.Get(ctx, args[0])

		case "delete":
			if len(args) != 1 {
				printlnFn("Usage: delete <id>")
				continue
			}
			err = a.Delete(ctx, args[0])

		case "generate":
			err = a.GenerateInteractive(ctx)

		case "health":
			err = a.Health(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err)
		}
	}
}

// CreateInteractive prompts for the item fields and stores the item.
func (a *App) CreateInteractive(ctx context.Context) error {
	name, err := GetSimpleText(a.in, "Name", a.out)
	if err != nil {
		return err
	}
	desc, err := GetOptionalText(a.in, "Description", a.out)
	if err != nil {
		return err
	}
	return a.Create(ctx, name, desc)
}

// GenerateInteractive prompts for a prompt and an output file.
func (a *App) GenerateInteractive(ctx context.Context) error {
	prompt, err := GetMultiline(a.in, "Prompt (include a line \"Server name: ...\" to name the stored file)", a.out)
	if err != nil {
		return err
	}
	outPath, err := GetSimpleText(a.in, "Save inline image to (empty for image.<ext>)", a.out)
	if err != nil {
		return err
	}
	return a.Generate(ctx, client.ImageRequest{Prompt: prompt}, outPath)
}
