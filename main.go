// Package main provides the entry point for the Map Editor desktop application.
package main

import (
	"log/slog"
	"os"

	"map-editor/internal/app"
	"map-editor/internal/render"
	"map-editor/internal/version"
	"map-editor/ui/mainwindow"
	"map-editor/ui/prefs"

	fyneapp "fyne.io/fyne/v2/app"
	"github.com/alecthomas/kong"
)

const appID = "io.github.map-editor"

type cli struct {
	Image   string           `arg:"" optional:"" type:"existingfile" help:"Map image to open"`
	Meta    string           `type:"existingfile" help:"Map metadata YAML file to load"`
	NoWatch bool             `help:"Do not watch the open image for outside changes"`
	Verbose bool             `short:"v" help:"Enable debug logging"`
	Version kong.VersionFlag `help:"Print version information and quit"`
}

func main() {
	var args cli
	kong.Parse(&args,
		kong.Name("map-editor"),
		kong.Description("Edit occupancy map images."),
		kong.Vars{"version": version.String()},
	)

	level := slog.LevelInfo
	if args.Verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)
	log.Info("starting Map Editor", version.Attr())

	renderer, err := render.New()
	if err != nil {
		log.Error("failed to initialise renderer", "error", err)
		os.Exit(1)
	}

	fyneApp := fyneapp.NewWithID(appID)
	fyneApp.Settings().SetTheme(&app.MapEditorTheme{})

	appState := app.NewState(log)
	if !args.NoWatch {
		appState.EnableFileWatch(app.DefaultSettle)
	}
	appPrefs := prefs.Load()

	win := mainwindow.New(fyneApp, appState, appPrefs, renderer, log)

	// Handle command line arguments
	if args.Meta != "" {
		if err := appState.LoadMetadata(args.Meta); err != nil {
			log.Error("failed to load map metadata", "path", args.Meta, "error", err)
		}
	}
	image := args.Image
	if image == "" && appState.Metadata != nil {
		image = appState.Metadata.ImagePath()
	}
	if image != "" {
		win.OpenImage(image)
	}

	win.ShowAndRun()
}
