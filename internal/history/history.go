// Package history provides the bounded per-document undo/redo log. A step
// pairs a raster snapshot with an object-list snapshot; the log holds at most
// Capacity steps and a cursor, and the live document state always equals the
// step under the cursor immediately after any undo, redo, or commit.
package history

import (
	"drawboard/internal/object"
)

// Capacity bounds the number of retained steps. Committing past it evicts
// the oldest step.
const Capacity = 30

// Step is one committed point in time: the encoded raster plus the object
// list as it stood. Object lists are copy-on-write snapshots, so holding one
// here shares unchanged objects instead of cloning them.
type Step struct {
	Raster  []byte
	Objects object.List
}

// Log is the undo/redo log for the active document. Undo never crosses a
// document boundary: the log is reset on every tab switch.
type Log struct {
	steps  []Step
	cursor int

	// apply reloads the live document state from a step. The raster part of
	// the reload decodes asynchronously and is generation-guarded by the
	// raster engine, so a stale decode never lands.
	apply func(Step)
}

// NewLog creates an empty log. apply is invoked with the step to restore on
// undo and redo.
func NewLog(apply func(Step)) *Log {
	return &Log{apply: apply}
}

// Len returns the number of retained steps.
func (l *Log) Len() int {
	return len(l.steps)
}

// Cursor returns the index of the current step. Meaningless while Len is 0.
func (l *Log) Cursor() int {
	return l.cursor
}

// Current returns the step under the cursor.
func (l *Log) Current() (Step, bool) {
	if len(l.steps) == 0 {
		return Step{}, false
	}
	return l.steps[l.cursor], true
}

// Reset drops all steps, e.g. when the active document changes.
func (l *Log) Reset() {
	l.steps = nil
	l.cursor = 0
}

// Commit truncates any redo branch past the cursor, appends the step, evicts
// the oldest step when over capacity, and moves the cursor to the new end.
func (l *Log) Commit(step Step) {
	if len(l.steps) > 0 {
		l.steps = l.steps[:l.cursor+1]
	}
	l.steps = append(l.steps, step)
	if len(l.steps) > Capacity {
		l.steps = l.steps[1:]
	}
	l.cursor = len(l.steps) - 1
}

// Record commits a completed change. When the log is empty the pre-change
// state is committed first as the baseline, so the first undo can restore
// the document as it stood before the gesture.
func (l *Log) Record(pre, post Step) {
	if len(l.steps) == 0 {
		l.Commit(pre)
	}
	l.Commit(post)
}

// Undo steps the cursor back and reloads that step. Returns false at the
// oldest step.
func (l *Log) Undo() bool {
	if l.cursor <= 0 || len(l.steps) == 0 {
		return false
	}
	l.cursor--
	l.reload(l.steps[l.cursor])
	return true
}

// Redo steps the cursor forward and reloads that step. Returns false at the
// newest step.
func (l *Log) Redo() bool {
	if l.cursor >= len(l.steps)-1 {
		return false
	}
	l.cursor++
	l.reload(l.steps[l.cursor])
	return true
}

func (l *Log) reload(step Step) {
	if l.apply != nil {
		l.apply(step)
	}
}
