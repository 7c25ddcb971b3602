package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/dmitrijs2005/gophforge/internal/client/client"
)

// isTerminal is a test seam for term.IsTerminal.
var isTerminal = term.IsTerminal

// writeFile is a test seam for os.WriteFile.
var writeFile = os.WriteFile

// App executes CLI commands against a client.Client.
type App struct {
	client client.Client
	in     *bufio.Reader
	out    io.Writer
	// outFd is the descriptor behind out, or -1 when out is not a file.
	outFd int
}

// NewApp builds an App that reads from in and writes to out. When out is an
// *os.File, binary output to it is refused if it is a terminal.
func NewApp(c client.Client, in io.Reader, out io.Writer) *App {
	fd := -1
	if f, ok := out.(*os.File); ok {
		fd = int(f.Fd())
	}
	return &App{client: c, in: bufio.NewReader(in), out: out, outFd: fd}
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) printItem(it *client.Item) {
	desc := "<none>"
	if it.Description != nil {
		desc = fmt.Sprintf("%q", *it.Description)
	}
	a.printf("%s  %s  %s  %s\n", it.ID, it.CreatedAt.Format(time.RFC3339), it.Name, desc)
}

// Health checks that the server and its database answer.
func (a *App) Health(ctx context.Context) error {
	if err := a.client.Ping(ctx); err != nil {
		return err
	}
	a.printf("ok\n")
	return nil
}

// Create stores a new item.
func (a *App) Create(ctx context.Context, name string, description *string) error {
	it, err := a.client.CreateItem(ctx, name, description)
	if err != nil {
		return err
	}
	a.printItem(it)
	return nil
}

// List prints every stored item.
func (a *App) List(ctx context.Context) error {
	items, err := a.client.ListItems(ctx)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		a.printf("no items\n")
		return nil
	}
	for i := range items {
		a.printItem(&items[i])
	}
	return nil
}

// Get prints one item.
func (a *App) Get(ctx context.Context, id string) error {
	it, err := a.client.GetItem(ctx, id)
	if err != nil {
		return err
	}
	a.printItem(it)
	return nil
}

// Delete removes one item.
func (a *App) Delete(ctx context.Context, id string) error {
	msg, err := a.client.DeleteItem(ctx, id)
	if err != nil {
		return err
	}
	a.printf("%s\n", msg)
	return nil
}

// Generate requests an image. Inline image bytes go to outPath, or to the
// output stream when outPath is "-" and the stream is not a terminal. A
// stored image is only reported, unless outPath is set, in which case it is
// downloaded there too.
func (a *App) Generate(ctx context.Context, req client.ImageRequest, outPath string) error {
	if strings.TrimSpace(req.Prompt) == "" {
		return errors.New("prompt is required")
	}
	if outPath == "-" && a.outFd >= 0 && isTerminal(a.outFd) {
		return errors.New("refusing to write image bytes to a terminal, use -o <file>")
	}

	res, err := a.client.GenerateImage(ctx, req)
	if err != nil {
		return err
	}

	if res.Stored() {
		if outPath != "-" {
			a.printf("%s: %s (server name %q)\n", res.Status, res.ImageURL, res.ServerName)
		}
		if outPath == "" {
			return nil
		}
		// also keep a local copy when an output was asked for
		data, mimeType, err := a.client.FetchImage(ctx, res.ImageURL)
		if err != nil {
			return err
		}
		res.Data, res.MimeType = data, mimeType
	}

	switch outPath {
	case "-":
		_, err = a.out.Write(res.Data)
		return err
	case "":
		outPath = "image" + extensionFor(res.MimeType)
	}
	if err := writeFile(outPath, res.Data, 0o644); err != nil {
		return fmt.Errorf("save image: %w", err)
	}
	a.printf("saved %d bytes (%s) to %s\n", len(res.Data), res.MimeType, outPath)
	return nil
}

func extensionFor(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}
