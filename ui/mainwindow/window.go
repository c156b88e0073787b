// Package mainwindow provides the main application window.
package mainwindow

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"map-editor/internal/app"
	"map-editor/internal/editor"
	mapimage "map-editor/internal/image"
	"map-editor/internal/interaction"
	"map-editor/internal/render"
	"map-editor/internal/version"
	"map-editor/pkg/colorutil"
	"map-editor/pkg/geometry"
	"map-editor/ui/canvas"
	"map-editor/ui/prefs"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
)

const (
	appTitle = "Map Editor"
	// translateRange bounds the pan sliders, in screen pixels.
	translateRange = 1000
)

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app   fyne.App
	state *app.State
	prefs *prefs.Prefs
	log   *slog.Logger

	canvas *canvas.MapCanvas

	colorRadio     *widget.RadioGroup
	thicknessLabel *widget.Label
	thickness      *widget.Slider
	modeRadio      *widget.RadioGroup
	translateX     *widget.Slider
	translateY     *widget.Slider
	pointerLabel   *widget.Label
	worldLabel     *widget.Label
	sizeLabel      *widget.Label
	statusBar      *widget.Label

	// Menu items that need state tracking
	editMenu      *fyne.Menu
	viewMenu      *fyne.Menu
	highlightItem *fyne.MenuItem
	originItem    *fyne.MenuItem

	// syncing is set while controls are updated from the session, so their
	// change handlers do not write back.
	syncing bool
}

// New creates the main window.
func New(fyneApp fyne.App, state *app.State, p *prefs.Prefs, r *render.Renderer, log *slog.Logger) *MainWindow {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	mw := &MainWindow{
		Window: fyneApp.NewWindow(appTitle),
		app:    fyneApp,
		state:  state,
		prefs:  p,
		log:    log,
	}
	mw.canvas = canvas.New(state, r)

	mw.setupUI()
	mw.setupMenus()
	mw.setupShortcuts()
	mw.setupEventHandlers()
	mw.restorePreferences()

	mw.SetCloseIntercept(mw.onClose)
	mw.Resize(fyne.NewSize(1200, 800))
	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	names := make([]string, 0, len(colorutil.Presets()))
	for _, pr := range colorutil.Presets() {
		names = append(names, presetLabel(pr))
	}
	mw.colorRadio = widget.NewRadioGroup(names, mw.onColorChanged)
	mw.colorRadio.Required = true

	mw.thicknessLabel = widget.NewLabel("")
	mw.thickness = widget.NewSlider(editor.MinThickness, editor.MaxThickness)
	mw.thickness.Step = 1
	mw.thickness.OnChanged = mw.onThicknessChanged

	modes := make([]string, 0, 3)
	for _, m := range interaction.Modes() {
		modes = append(modes, m.String())
	}
	mw.modeRadio = widget.NewRadioGroup(modes, mw.onModeChanged)
	mw.modeRadio.Required = true

	mw.translateX = widget.NewSlider(-translateRange, translateRange)
	mw.translateX.OnChanged = func(float64) { mw.onTranslateChanged() }
	mw.translateY = widget.NewSlider(-translateRange, translateRange)
	mw.translateY.Orientation = widget.Vertical
	mw.translateY.OnChanged = func(float64) { mw.onTranslateChanged() }

	mw.pointerLabel = widget.NewLabel(app.PointerLabel(geometry.Point2D{}, false))
	mw.worldLabel = widget.NewLabel("")
	mw.sizeLabel = widget.NewLabel(mw.state.SizeLabel())
	mw.statusBar = widget.NewLabel("Ready")

	side := container.NewVBox(
		widget.NewLabel("Color:"),
		mw.colorRadio,
		mw.thicknessLabel,
		mw.thickness,
		widget.NewSeparator(),
		mw.modeRadio,
		widget.NewSeparator(),
		mw.pointerLabel,
		mw.worldLabel,
		mw.sizeLabel,
	)

	canvasArea := container.NewBorder(
		nil,           // top
		mw.translateX, // bottom
		nil,           // left
		mw.translateY, // right
		mw.canvas,     // center
	)

	split := container.NewHSplit(canvasArea, side)
	split.SetOffset(0.78)

	content := container.NewBorder(
		nil,                               // top
		container.NewPadded(mw.statusBar), // bottom
		nil,                               // left
		nil,                               // right
		split,                             // center
	)
	mw.SetContent(content)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open...", mw.onOpen),
		fyne.NewMenuItem("Save...", func() { mw.onSave(nil) }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Exit", mw.onClose),
	)

	mw.highlightItem = fyne.NewMenuItem("Show occupied area", mw.onToggleHighlight)
	undoItem := fyne.NewMenuItem("Undo", mw.onUndo)
	undoItem.Shortcut = undoShortcut
	mw.editMenu = fyne.NewMenu("Edit",
		fyne.NewMenuItem("Invert Colors", mw.state.Engine.Invert),
		mw.highlightItem,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Rotate Clockwise", mw.state.Engine.RotateClockwise),
		fyne.NewMenuItem("Rotate Counterclockwise", mw.state.Engine.RotateCounterclockwise),
		fyne.NewMenuItemSeparator(),
		undoItem,
	)

	mw.originItem = fyne.NewMenuItem("Show origin", mw.onToggleOrigin)
	mw.viewMenu = fyne.NewMenu("View",
		fyne.NewMenuItem("Load map metadata...", mw.onLoadMetadata),
		mw.originItem,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Reset view", mw.state.ResetView),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, mw.editMenu, mw.viewMenu, helpMenu))
}

var undoShortcut = &desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierShortcutDefault}

// setupShortcuts registers window-wide keys.
func (mw *MainWindow) setupShortcuts() {
	mw.Canvas().AddShortcut(undoShortcut, func(fyne.Shortcut) { mw.onUndo() })
	mw.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		if ev.Name == fyne.KeyEscape {
			mw.state.Controller.Cancel()
			mw.canvas.Refresh()
		}
	})
}

// setupEventHandlers registers for application events.
func (mw *MainWindow) setupEventHandlers() {
	mw.state.On(app.EventImageLoaded, func(data interface{}) {
		if path, ok := data.(string); ok {
			mw.updateStatus("Image loaded: " + path)
		}
		mw.updateTitle()
	})

	mw.state.On(app.EventImageSaved, func(data interface{}) {
		if path, ok := data.(string); ok {
			mw.updateStatus("Image saved: " + path)
		}
		mw.updateTitle()
	})

	mw.state.On(app.EventImageChanged, func(interface{}) {
		mw.sizeLabel.SetText(mw.state.SizeLabel())
		mw.updateTitle()
	})

	mw.state.On(app.EventHighlightChanged, func(data interface{}) {
		on, _ := data.(bool)
		mw.highlightItem.Checked = on
		mw.editMenu.Refresh()
	})

	mw.state.On(app.EventOriginToggled, func(data interface{}) {
		on, _ := data.(bool)
		mw.originItem.Checked = on
		mw.viewMenu.Refresh()
	})

	mw.state.On(app.EventMetadataLoaded, func(data interface{}) {
		if path, ok := data.(string); ok {
			mw.updateStatus("Map metadata loaded: " + path)
		}
	})

	mw.state.On(app.EventPointerMoved, func(data interface{}) {
		p, ok := data.(geometry.Point2D)
		mw.pointerLabel.SetText(app.PointerLabel(p, ok))
		mw.worldLabel.SetText(mw.state.WorldLabel(p))
	})

	mw.state.On(app.EventViewChanged, func(interface{}) {
		mw.syncTranslateSliders()
	})

	mw.state.On(app.EventFileChanged, func(data interface{}) {
		path, _ := data.(string)
		dialog.ShowConfirm("File Changed",
			fmt.Sprintf("%s was changed by another program.\nReload it and discard the edit history?", filepath.Base(path)),
			func(reload bool) {
				if reload {
					mw.openImage(path)
				}
			}, mw.Window)
	})
}

// restorePreferences applies saved drawing settings.
func (mw *MainWindow) restorePreferences() {
	pr, ok := colorutil.PresetByName(mw.prefs.String(prefs.KeyDrawColor, ""))
	if !ok {
		pr = colorutil.Presets()[0]
	}
	mw.colorRadio.SetSelected(presetLabel(pr))

	mw.thickness.SetValue(float64(mw.prefs.Int(prefs.KeyThickness, editor.DefaultThickness)))
	mw.onThicknessChanged(mw.thickness.Value)

	mode, err := interaction.ParseMode(mw.prefs.String(prefs.KeyMode, ""))
	if err != nil {
		mode = interaction.ModeBrush
	}
	mw.modeRadio.SetSelected(mode.String())

	if mw.prefs.Bool(prefs.KeyHighlight, false) {
		mw.state.Engine.SetHighlightEnabled(true)
	}
	if meta := mw.prefs.String(prefs.KeyLastMetadata, ""); meta != "" {
		if err := mw.state.LoadMetadata(meta); err != nil {
			mw.log.Warn("could not restore map metadata", "path", meta, "error", err)
		}
	}
	mw.state.SetShowOrigin(mw.prefs.Bool(prefs.KeyShowOrigin, false))
}

// SavePreferences writes the preference file.
func (mw *MainWindow) SavePreferences() {
	if err := mw.prefs.Save(); err != nil {
		mw.log.Error("failed to save preferences", "path", mw.prefs.Path(), "error", err)
	}
}

// OpenImage loads path, reporting failures in a dialog.
func (mw *MainWindow) OpenImage(path string) {
	mw.openImage(path)
}

func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

func (mw *MainWindow) updateTitle() {
	title := appTitle
	if path := mw.state.Engine.Path(); path != "" {
		title += " - " + filepath.Base(path)
	}
	if mw.state.HasUnsavedChanges() {
		title += " *"
	}
	mw.SetTitle(title)
}

func (mw *MainWindow) syncTranslateSliders() {
	tx, ty := mw.state.View.Translate()
	mw.syncing = true
	mw.translateX.SetValue(tx)
	mw.translateY.SetValue(-ty)
	mw.syncing = false
}

// lastDir returns the last used directory as a ListableURI, or nil.
func (mw *MainWindow) lastDir() fyne.ListableURI {
	path := mw.prefs.String(prefs.KeyLastDirectory, "")
	if path == "" {
		return nil
	}
	listable, err := storage.ListerForURI(storage.NewFileURI(path))
	if err != nil {
		return nil
	}
	return listable
}

func (mw *MainWindow) saveLastDir(filePath string) {
	mw.prefs.SetString(prefs.KeyLastDirectory, filepath.Dir(filePath))
}

// Control handlers

func (mw *MainWindow) onColorChanged(label string) {
	for _, pr := range colorutil.Presets() {
		if presetLabel(pr) == label {
			mw.state.Engine.SetDrawColor(pr.Color)
			mw.prefs.SetString(prefs.KeyDrawColor, pr.Name)
			return
		}
	}
}

func (mw *MainWindow) onThicknessChanged(v float64) {
	mw.state.Engine.SetDrawThickness(int(v))
	t := mw.state.Engine.DrawThickness()
	mw.thicknessLabel.SetText(fmt.Sprintf("Thickness: %d", t))
	mw.prefs.SetInt(prefs.KeyThickness, t)
	mw.canvas.Refresh()
}

func (mw *MainWindow) onModeChanged(label string) {
	m, err := interaction.ParseMode(label)
	if err != nil {
		return
	}
	mw.state.SetMode(m)
	mw.prefs.SetString(prefs.KeyMode, m.String())
}

func (mw *MainWindow) onTranslateChanged() {
	if mw.syncing {
		return
	}
	mw.state.SetTranslate(mw.translateX.Value, -mw.translateY.Value)
}

// Menu action handlers

func (mw *MainWindow) onOpen() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		mw.openImage(reader.URI().Path())
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter(mapimage.SupportedFormats()))
	if loc := mw.lastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) openImage(path string) {
	mw.saveLastDir(path)
	if err := mw.state.OpenImage(path); err != nil {
		dialog.ShowError(err, mw.Window)
		return
	}
	mw.updateTitle()
}

// onSave asks for a destination and saves. done, if set, runs after a
// successful save.
func (mw *MainWindow) onSave(done func()) {
	if !mw.state.Engine.IsLoaded() {
		dialog.ShowError(errors.New("no image is open"), mw.Window)
		return
	}
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		writer.Close()
		path := writer.URI().Path()
		if !mapimage.IsSupportedFormat(path) {
			path += ".png"
		}
		mw.saveLastDir(path)
		if err := mw.state.SaveImage(path); err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		if done != nil {
			done()
		}
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".png", ".pgm"}))
	if name := mw.state.Engine.Path(); name != "" {
		fd.SetFileName(filepath.Base(name))
	} else {
		fd.SetFileName("map.png")
	}
	if loc := mw.lastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onUndo() {
	mw.state.Undo()
	if !mw.state.Engine.CanUndo() {
		mw.updateStatus("Nothing more to undo")
	}
}

func (mw *MainWindow) onToggleHighlight() {
	on := !mw.state.Engine.HighlightEnabled()
	mw.state.Engine.SetHighlightEnabled(on)
	mw.prefs.SetBool(prefs.KeyHighlight, on)
}

func (mw *MainWindow) onToggleOrigin() {
	on := !mw.state.ShowOrigin
	mw.state.SetShowOrigin(on)
	mw.prefs.SetBool(prefs.KeyShowOrigin, on)
	if on && mw.state.Metadata == nil {
		mw.updateStatus("Load map metadata to show the origin")
	}
}

func (mw *MainWindow) onLoadMetadata() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		path := reader.URI().Path()
		mw.saveLastDir(path)
		if err := mw.state.LoadMetadata(path); err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.prefs.SetString(prefs.KeyLastMetadata, path)
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".yaml", ".yml"}))
	if loc := mw.lastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

// onClose asks whether to save a modified image before quitting.
func (mw *MainWindow) onClose() {
	quit := func() {
		mw.SavePreferences()
		if err := mw.state.Close(); err != nil {
			mw.log.Warn("failed to release session", "error", err)
		}
		mw.app.Quit()
	}
	if !mw.state.HasUnsavedChanges() {
		quit()
		return
	}

	var dlg *dialog.CustomDialog
	save := widget.NewButton("Save", func() {
		dlg.Hide()
		mw.onSave(quit)
	})
	save.Importance = widget.HighImportance
	discard := widget.NewButton("Don't Save", func() {
		dlg.Hide()
		quit()
	})
	cancel := widget.NewButton("Cancel", func() { dlg.Hide() })

	dlg = dialog.NewCustomWithoutButtons("Exit Confirmation",
		widget.NewLabel("Do you want to save the file before exiting?"), mw.Window)
	dlg.SetButtons([]fyne.CanvasObject{cancel, discard, save})
	dlg.Show()
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About "+appTitle,
		fmt.Sprintf("%s v%s\n\n"+
			"An editor for occupancy map images.\n\n"+
			"Built: %s\n"+
			"Commit: %s",
			appTitle, version.Version, version.BuildTime, version.GitCommit),
		mw.Window)
}

func presetLabel(pr colorutil.Preset) string {
	return fmt.Sprintf("%s (%s)", pr.Name, strings.ToUpper(colorutil.Hex(pr.Color)))
}
