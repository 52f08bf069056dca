// Package tabs provides the document tab panel: one entry per document in
// the board, with switching, creation, deletion, and reordering.
package tabs

import (
	"fmt"

	"drawboard/internal/app"
	"drawboard/internal/document"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/sirupsen/logrus"
)

// Panel lists the board's documents and exposes tab operations.
type Panel struct {
	state     *app.State
	window    fyne.Window
	container fyne.CanvasObject

	list     *widget.List
	ids      []string
	selected int
}

// NewPanel creates the document panel and subscribes it to board events.
func NewPanel(state *app.State) *Panel {
	p := &Panel{
		state:    state,
		selected: -1,
	}

	p.list = widget.NewList(
		func() int { return len(p.ids) },
		func() fyne.CanvasObject {
			return widget.NewLabel("")
		},
		func(i widget.ListItemID, item fyne.CanvasObject) {
			docs := p.state.Store.Documents()
			if i < 0 || i >= len(docs) {
				return
			}
			item.(*widget.Label).SetText(tabTitle(docs[i]))
		},
	)
	p.list.OnSelected = func(i widget.ListItemID) {
		if i < 0 || i >= len(p.ids) {
			return
		}
		p.state.Store.SwitchTo(p.ids[i])
	}

	newBtn := widget.NewButton("New", p.onNew)
	deleteBtn := widget.NewButton("Delete", p.onDelete)
	upBtn := widget.NewButton("Up", func() { p.onMove(-1) })
	downBtn := widget.NewButton("Down", func() { p.onMove(1) })

	buttons := container.NewHBox(newBtn, deleteBtn, upBtn, downBtn)
	p.container = container.NewBorder(nil, buttons, nil, nil, p.list)

	state.On(app.EventBoardLoaded, func(interface{}) { p.sync() })
	state.On(app.EventDocumentsChanged, func(interface{}) { p.sync() })
	state.On(app.EventDocumentSwitched, func(interface{}) { p.sync() })

	p.sync()
	return p
}

// Container returns the panel container.
func (p *Panel) Container() fyne.CanvasObject {
	return p.container
}

// SetWindow sets the parent window for dialogs.
func (p *Panel) SetWindow(w fyne.Window) {
	p.window = w
}

// sync rebuilds the id slice and selection from the store.
func (p *Panel) sync() {
	docs := p.state.Store.Documents()
	active := p.state.Store.Active()

	p.ids = p.ids[:0]
	p.selected = -1
	for i, d := range docs {
		p.ids = append(p.ids, d.ID)
		if active != nil && d.ID == active.ID {
			p.selected = i
		}
	}

	p.list.Refresh()
	if p.selected >= 0 {
		p.list.Select(p.selected)
	}
}

func (p *Panel) onNew() {
	docs := p.state.Store.Documents()
	id := p.state.Store.Create(document.Config{
		Name: fmt.Sprintf("Board %d", len(docs)+1),
	})
	logrus.WithField("document", id).Debug("document created")
}

func (p *Panel) onDelete() {
	active := p.state.Store.Active()
	if active == nil {
		return
	}
	if !p.state.Store.Delete(active.ID) {
		if p.window != nil {
			dialog.ShowInformation("Delete", "The last document cannot be deleted.", p.window)
		}
		return
	}
	logrus.WithField("document", active.ID).Debug("document deleted")
}

// onMove swaps the active document with its neighbor in the given direction.
func (p *Panel) onMove(dir int) {
	if p.selected < 0 {
		return
	}
	j := p.selected + dir
	if j < 0 || j >= len(p.ids) {
		return
	}
	order := make([]string, len(p.ids))
	copy(order, p.ids)
	order[p.selected], order[j] = order[j], order[p.selected]
	p.state.Store.Reorder(order)
}

func tabTitle(d *document.Document) string {
	if d.Emoji != "" {
		return d.Emoji + " " + d.Name
	}
	return d.Name
}
