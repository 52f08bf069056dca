// Package mainwindow provides the main application window.
package mainwindow

import (
	"image/color"
	"image/png"
	"path/filepath"

	"drawboard/internal/app"
	"drawboard/internal/interaction"
	"drawboard/internal/object"
	"drawboard/internal/persist"
	"drawboard/ui/board"
	"drawboard/ui/tabs"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
)

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app   fyne.App
	state *app.State
	board *board.Board
	tabs  *tabs.Panel

	sidePanel   fyne.CanvasObject
	statusBar   *widget.Label
	widthSlider *widget.Slider
}

// New creates a new main window.
func New(fyneApp fyne.App, state *app.State) *MainWindow {
	win := fyneApp.NewWindow("Drawboard")

	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		state:  state,
	}

	mw.setupUI()
	mw.setupShortcuts()
	mw.setupEventHandlers()
	mw.setupControllerCallbacks()

	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.board = board.New(mw.state.Engine, mw.state.Table, mw.state.Controller)

	mw.tabs = tabs.NewPanel(mw.state)
	mw.tabs.SetWindow(mw.Window)
	mw.sidePanel = mw.tabs.Container()

	mw.statusBar = widget.NewLabel("Ready")

	toolbar := mw.createToolbar()

	boardArea := container.NewBorder(
		toolbar, // top
		nil, nil, nil,
		mw.board,
	)

	content := container.NewBorder(
		nil,                               // top
		container.NewPadded(mw.statusBar), // bottom
		mw.sidePanel,                      // left
		nil,
		boardArea,
	)

	mw.SetContent(content)
	mw.Resize(fyne.NewSize(1280, 800))
}

// createToolbar creates the drawing toolbar.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	colorBtn := widget.NewButton("Color", mw.onColorPicker)
	textBtn := widget.NewButton("Text", func() {
		mw.state.Controller.ToggleTextMode()
		mw.updateStatus("Text mode: " + mw.state.Controller.State().String())
	})
	captureBtn := widget.NewButton("Recognize", func() {
		mw.board.EnableCaptureMode()
		mw.updateStatus("Drag a region to recognize")
	})
	clearBtn := widget.NewButton("Clear", func() {
		mw.state.Controller.ClearCanvas()
	})
	undoBtn := widget.NewButton("Undo", func() {
		mw.state.Controller.HandleShortcut(interaction.ShortcutUndo, false)
		mw.board.Refresh()
	})
	redoBtn := widget.NewButton("Redo", func() {
		mw.state.Controller.HandleShortcut(interaction.ShortcutRedo, false)
		mw.board.Refresh()
	})
	exportBtn := widget.NewButton("Export", mw.onExport)

	mw.widthSlider = widget.NewSlider(1, 32)
	mw.widthSlider.Value = mw.state.Controller.BrushWidth
	mw.widthSlider.OnChanged = func(v float64) {
		mw.state.Controller.BrushWidth = v
	}

	return container.NewBorder(nil, nil,
		container.NewHBox(colorBtn, textBtn, captureBtn, clearBtn, undoBtn, redoBtn, exportBtn),
		container.NewHBox(widget.NewLabel("Width:")),
		mw.widthSlider,
	)
}

// keyBinding pairs a key chord with its controller action.
type keyBinding struct {
	key    fyne.KeyName
	mod    fyne.KeyModifier
	action interaction.Shortcut
}

// keyBindings lists every keyboard shortcut. All of them, delete included,
// require the Ctrl-class modifier: an unmodified Backspace or Delete must
// never reach the clear-canvas path.
func keyBindings() []keyBinding {
	return []keyBinding{
		{fyne.KeyZ, fyne.KeyModifierControl, interaction.ShortcutUndo},
		{fyne.KeyZ, fyne.KeyModifierControl | fyne.KeyModifierShift, interaction.ShortcutRedo},
		{fyne.KeyY, fyne.KeyModifierControl, interaction.ShortcutRedo},
		{fyne.KeyC, fyne.KeyModifierControl, interaction.ShortcutCopy},
		{fyne.KeyV, fyne.KeyModifierControl, interaction.ShortcutPaste},
		{fyne.KeyK, fyne.KeyModifierControl, interaction.ShortcutColorPicker},
		{fyne.KeyT, fyne.KeyModifierControl, interaction.ShortcutTextMode},
		{fyne.KeyB, fyne.KeyModifierControl, interaction.ShortcutTabPanel},
		{fyne.KeyDelete, fyne.KeyModifierControl, interaction.ShortcutDelete},
		{fyne.KeyBackspace, fyne.KeyModifierControl, interaction.ShortcutDelete},
	}
}

// setupShortcuts registers the keyboard shortcuts. Focused text entries
// consume their own clipboard shortcuts before these fire, so the suppression
// list in the controller covers the remaining cases.
func (mw *MainWindow) setupShortcuts() {
	for _, kb := range keyBindings() {
		action := kb.action
		mw.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: kb.key, Modifier: kb.mod}, func(fyne.Shortcut) {
			mw.state.Controller.HandleShortcut(action, mw.textEditing())
			mw.board.Refresh()
		})
	}
}

// textEditing reports whether a text-editing control has keyboard focus.
func (mw *MainWindow) textEditing() bool {
	_, ok := mw.Canvas().Focused().(*widget.Entry)
	return ok
}

// setupEventHandlers registers for application events. Save status callbacks
// originate on the saver's timer goroutine, so the saver is given a post
// executor that marshals them onto the event loop first.
func (mw *MainWindow) setupEventHandlers() {
	mw.state.Saver.SetPost(func(fn func()) { fyne.Do(fn) })
	mw.state.On(app.EventDocumentSwitched, func(interface{}) {
		mw.board.Refresh()
	})
	mw.state.On(app.EventBoardLoaded, func(interface{}) {
		mw.board.Refresh()
		mw.updateStatus("Board loaded")
	})
	mw.state.On(app.EventSaveStatus, func(data interface{}) {
		if status, ok := data.(persist.Status); ok {
			mw.updateStatus(status.String())
		}
	})
	mw.state.On(app.EventDecodeFailed, func(data interface{}) {
		if err, ok := data.(error); ok {
			mw.updateStatus("Snapshot restore failed: " + err.Error())
		}
	})
}

// setupControllerCallbacks wires the controller's UI hooks: clipboard
// access, the edit dialog, the color picker, and the tab panel toggle.
func (mw *MainWindow) setupControllerCallbacks() {
	mw.state.Controller.SetClipboard(
		func() (string, error) { return mw.Clipboard().Content(), nil },
		func(text string) { mw.Clipboard().SetContent(text) },
	)
	mw.state.Controller.OnEditFocus(mw.editText)
	mw.state.Controller.OnColorPicker(mw.onColorPicker)
	mw.state.Controller.OnToggleTabs(mw.toggleSidePanel)
}

// editText opens the content editor for a text object.
func (mw *MainWindow) editText(id object.ID) {
	current := mw.state.Table.Objects().Find(id)
	if current == nil {
		return
	}

	entry := widget.NewMultiLineEntry()
	entry.SetText(current.Content)

	d := dialog.NewCustomConfirm("Edit Text", "OK", "Cancel", entry, func(ok bool) {
		if !ok {
			return
		}
		if mw.state.Table.SetContent(id, entry.Text) {
			mw.state.MarkChanged()
			mw.board.Refresh()
		}
	}, mw.Window)
	d.Resize(fyne.NewSize(400, 240))
	d.Show()
	mw.Canvas().Focus(entry)
}

func (mw *MainWindow) onColorPicker() {
	picker := dialog.NewColorPicker("Brush Color", "Pick the brush and text color", func(c color.Color) {
		r, g, b, a := c.RGBA()
		rgba := color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
		mw.state.Controller.BrushColor = rgba
		if sel := mw.state.Table.Selected(); sel != "" {
			if mw.state.Table.SetColor(sel, rgba) {
				mw.state.MarkChanged()
				mw.board.Refresh()
			}
		}
	}, mw.Window)
	picker.Advanced = true
	picker.Show()
}

func (mw *MainWindow) toggleSidePanel() {
	if mw.sidePanel.Visible() {
		mw.sidePanel.Hide()
	} else {
		mw.sidePanel.Show()
	}
}

// onExport flattens the active document and writes it as a PNG.
func (mw *MainWindow) onExport() {
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		defer writer.Close()

		img := mw.state.Engine.Composite(mw.state.Table.Objects())
		if err := png.Encode(writer, img); err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.updateStatus("Exported " + filepath.Base(writer.URI().Path()))
	}, mw.Window)

	name := "board.png"
	if active := mw.state.Store.Active(); active != nil {
		name = active.Name + ".png"
	}
	fd.SetFileName(name)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".png"}))
	fd.Show()
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}
