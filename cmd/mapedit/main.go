// Command mapedit applies map editing operations to image files without
// opening a window.
package main

import (
	"io"
	"log/slog"
	"os"

	"map-editor/internal/version"

	"github.com/alecthomas/kong"
)

// Globals are flags shared by every subcommand.
type Globals struct {
	Verbose bool             `short:"v" help:"Enable debug logging"`
	Version kong.VersionFlag `help:"Print version information and quit"`

	Stdin  io.Reader    `kong:"-"`
	Stdout io.Writer    `kong:"-"`
	Log    *slog.Logger `kong:"-"`
}

// CLI is the command tree.
type CLI struct {
	Globals

	Info      InfoCmd      `cmd:"" help:"Print image size, pixel classes and origin"`
	Invert    InvertCmd    `cmd:"" help:"Invert the RGB channels of every pixel"`
	Rotate    RotateCmd    `cmd:"" help:"Rotate by quarter turns"`
	Highlight HighlightCmd `cmd:"" help:"Mark the occupied area and save the highlighted image"`
	Brush     BrushCmd     `cmd:"" help:"Paint a brush stroke through a list of points"`
	Line      LineCmd      `cmd:"" help:"Draw a straight line"`
	Rect      RectCmd      `cmd:"" help:"Fill a rectangle"`
	Convert   ConvertCmd   `cmd:"" help:"Re-encode an image in the format named by the output extension"`
	Render    RenderCmd    `cmd:"" help:"Render a viewport snapshot with optional origin axes"`
}

func newParser(cli *CLI) (*kong.Kong, error) {
	return kong.New(cli,
		kong.Name("mapedit"),
		kong.Description("Batch editing for occupancy map images."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)
}

// run parses args and executes the selected subcommand.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var cli CLI
	parser, err := newParser(&cli)
	if err != nil {
		return err
	}
	parser.Stdout, parser.Stderr = stdout, stderr

	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if cli.Verbose {
		level = slog.LevelDebug
	}
	cli.Stdin, cli.Stdout = stdin, stdout
	cli.Log = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	cli.Log.Debug("running", "command", kctx.Command(), version.Attr())

	return kctx.Run(&cli.Globals)
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		slog.Error("mapedit failed", "error", err)
		os.Exit(1)
	}
}
