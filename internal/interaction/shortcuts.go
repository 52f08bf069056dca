package interaction

import (
	"drawboard/internal/object"
)

// Shortcut identifies a Ctrl-class keyboard action.
type Shortcut int

const (
	ShortcutUndo Shortcut = iota
	ShortcutRedo
	ShortcutCopy
	ShortcutPaste
	ShortcutColorPicker
	ShortcutTextMode
	ShortcutTabPanel
	ShortcutDelete
)

func (s Shortcut) String() string {
	switch s {
	case ShortcutUndo:
		return "undo"
	case ShortcutRedo:
		return "redo"
	case ShortcutCopy:
		return "copy"
	case ShortcutPaste:
		return "paste"
	case ShortcutColorPicker:
		return "color-picker"
	case ShortcutTextMode:
		return "text-mode"
	case ShortcutTabPanel:
		return "tab-panel"
	case ShortcutDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// editAllowed lists the shortcuts that stay active while a text-editing
// control has focus. Everything else is suppressed so typing is not hijacked.
func editAllowed(s Shortcut) bool {
	switch s {
	case ShortcutUndo, ShortcutRedo, ShortcutCopy, ShortcutPaste:
		return true
	}
	return false
}

// HandleShortcut dispatches a keyboard shortcut. textEditing reports whether
// a text-editing control currently has focus. Returns whether the shortcut
// took effect.
func (c *Controller) HandleShortcut(s Shortcut, textEditing bool) bool {
	if textEditing && !editAllowed(s) {
		return false
	}

	switch s {
	case ShortcutUndo:
		if c.log.Undo() {
			c.changed()
			return true
		}
		return false
	case ShortcutRedo:
		if c.log.Redo() {
			c.changed()
			return true
		}
		return false
	case ShortcutCopy:
		return c.copySelected()
	case ShortcutPaste:
		return c.PasteText()
	case ShortcutColorPicker:
		if c.onColorPicker != nil {
			c.onColorPicker()
			return true
		}
		return false
	case ShortcutTextMode:
		c.ToggleTextMode()
		return true
	case ShortcutTabPanel:
		if c.onToggleTabs != nil {
			c.onToggleTabs()
			return true
		}
		return false
	case ShortcutDelete:
		// Delete the selected object, or clear the canvas when nothing is
		// selected.
		if c.DeleteSelected() {
			return true
		}
		c.ClearCanvas()
		return true
	}
	return false
}

// copySelected writes the selected text object's content to the clipboard.
func (c *Controller) copySelected() bool {
	if c.writeClipboard == nil {
		return false
	}
	sel := c.table.Objects().Find(c.table.Selected())
	if sel == nil {
		return false
	}
	switch sel.Kind {
	case object.KindText:
		c.writeClipboard(sel.Content)
		return true
	case object.KindImage:
		return false
	}
	return false
}
