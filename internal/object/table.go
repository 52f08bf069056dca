package object

import (
	"image/color"

	"drawboard/pkg/geometry"
)

// Table holds the live object list for the active document, plus the current
// selection. All mutations are copy-on-write: the slice and the changed object
// are replaced, never edited, so snapshots taken earlier keep their contents.
type Table struct {
	objects  List
	selected ID
}

// NewTable creates an empty object table.
func NewTable() *Table {
	return &Table{}
}

// Objects returns the current list snapshot. Callers must not modify it.
func (t *Table) Objects() List {
	return t.objects
}

// Replace swaps in a new object list, e.g. on tab switch or history reload.
// The selection is cleared unless the selected object survives.
func (t *Table) Replace(objs List) {
	t.objects = objs
	if t.selected != "" && objs.Find(t.selected) == nil {
		t.selected = ""
	}
}

// Selected returns the id of the selected object, or "".
func (t *Table) Selected() ID {
	return t.selected
}

// Select marks the object with the given id as selected. Selecting an unknown
// id clears the selection.
func (t *Table) Select(id ID) {
	if t.objects.Find(id) == nil {
		t.selected = ""
		return
	}
	t.selected = id
}

// ClearSelection deselects any selected object.
func (t *Table) ClearSelection() {
	t.selected = ""
}

// InsertText creates a text object at the given screen position with the
// default 250x100 size and the supplied brush-derived style. The new object
// becomes selected.
func (t *Table) InsertText(content string, pos geometry.Point2D, col color.RGBA, fontSize float64) ID {
	o := &Object{
		ID:       NewID(),
		Kind:     KindText,
		X:        pos.X,
		Y:        pos.Y,
		W:        DefaultTextWidth,
		H:        DefaultTextHeight,
		Content:  content,
		Color:    col,
		FontSize: fontSize,
	}
	t.objects = append(t.snapshotForAppend(), o)
	t.selected = o.ID
	return o.ID
}

// InsertImage creates an image object sized to its natural content dimensions.
// Image objects are immutable in content and not resizable.
func (t *Table) InsertImage(ref string, pos geometry.Point2D, w, h float64) ID {
	o := &Object{
		ID:      NewID(),
		Kind:    KindImage,
		X:       pos.X,
		Y:       pos.Y,
		W:       w,
		H:       h,
		Content: ref,
	}
	t.objects = append(t.snapshotForAppend(), o)
	t.selected = o.ID
	return o.ID
}

// Move updates an object's position unconditionally. Position is screen-pixel
// space for every kind.
func (t *Table) Move(id ID, pos geometry.Point2D) bool {
	return t.mutate(id, func(o *Object) bool {
		o.X = pos.X
		o.Y = pos.Y
		return true
	})
}

// Resize sets a text object's size, clamped to the 50x30 minimum. Resizing an
// image object is rejected as a no-op.
func (t *Table) Resize(id ID, w, h float64) bool {
	return t.mutate(id, func(o *Object) bool {
		switch o.Kind {
		case KindText:
			if w < MinTextWidth {
				w = MinTextWidth
			}
			if h < MinTextHeight {
				h = MinTextHeight
			}
			o.W = w
			o.H = h
			return true
		case KindImage:
			return false
		}
		return false
	})
}

// SetContent replaces a text object's content. Image content is immutable.
func (t *Table) SetContent(id ID, content string) bool {
	return t.mutate(id, func(o *Object) bool {
		switch o.Kind {
		case KindText:
			o.Content = content
			return true
		case KindImage:
			return false
		}
		return false
	})
}

// SetColor changes a text object's color.
func (t *Table) SetColor(id ID, col color.RGBA) bool {
	return t.mutate(id, func(o *Object) bool {
		switch o.Kind {
		case KindText:
			o.Color = col
			return true
		case KindImage:
			return false
		}
		return false
	})
}

// SetFontSize changes a text object's font size.
func (t *Table) SetFontSize(id ID, size float64) bool {
	return t.mutate(id, func(o *Object) bool {
		switch o.Kind {
		case KindText:
			o.FontSize = size
			return true
		case KindImage:
			return false
		}
		return false
	})
}

// Delete removes the object with the given id. Deleting the selected object
// clears the selection.
func (t *Table) Delete(id ID) bool {
	for i, o := range t.objects {
		if o.ID == id {
			next := make(List, 0, len(t.objects)-1)
			next = append(next, t.objects[:i]...)
			next = append(next, t.objects[i+1:]...)
			t.objects = next
			if t.selected == id {
				t.selected = ""
			}
			return true
		}
	}
	return false
}

// HitTest returns the topmost object whose body contains the screen point,
// or nil if the point is over empty canvas.
func (t *Table) HitTest(p geometry.Point2D) *Object {
	for i := len(t.objects) - 1; i >= 0; i-- {
		o := t.objects[i]
		switch o.Kind {
		case KindText, KindImage:
			if o.Bounds().Contains(p) {
				return o
			}
		}
	}
	return nil
}

// HandleHitTest returns the topmost text object whose resize handle contains
// the screen point.
func (t *Table) HandleHitTest(p geometry.Point2D) *Object {
	for i := len(t.objects) - 1; i >= 0; i-- {
		o := t.objects[i]
		if hb, ok := o.HandleBounds(); ok && hb.Contains(p) {
			return o
		}
	}
	return nil
}

// mutate replaces the identified object with an edited copy. The callback
// reports whether the edit is permitted for the object's kind.
func (t *Table) mutate(id ID, fn func(*Object) bool) bool {
	for i, o := range t.objects {
		if o.ID != id {
			continue
		}
		edited := *o
		if !fn(&edited) {
			return false
		}
		next := make(List, len(t.objects))
		copy(next, t.objects)
		next[i] = &edited
		t.objects = next
		return true
	}
	return false
}

// snapshotForAppend copies the slice header so appends never write into a
// snapshot already handed to the history log.
func (t *Table) snapshotForAppend() List {
	next := make(List, len(t.objects), len(t.objects)+1)
	copy(next, t.objects)
	return next
}
