package interaction

import (
	"image"
	"image/color"
	"testing"

	"drawboard/internal/history"
	"drawboard/internal/object"
	"drawboard/internal/raster"
	"drawboard/pkg/geometry"
)

type fixture struct {
	engine     *raster.Engine
	table      *object.Table
	log        *history.Log
	controller *Controller
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		engine: raster.NewEngine(),
		table:  object.NewTable(),
	}
	f.engine.SetExecutors(func(fn func()) { fn() }, func(fn func()) { fn() })
	f.log = history.NewLog(func(step history.Step) {
		f.table.Replace(step.Objects)
		f.engine.LoadSnapshot(step.Raster, nil)
	})
	f.controller = NewController(f.engine, f.table, f.log)
	return f
}

func pt(x, y float64) geometry.Point2D {
	return geometry.NewPoint2D(x, y)
}

func TestDrawingGestureCommitsOneStep(t *testing.T) {
	f := newFixture(t)

	f.controller.PointerDown(pt(100, 100))
	if f.controller.State() != StateDrawing {
		t.Fatalf("state = %v, want drawing", f.controller.State())
	}
	f.controller.PointerMove(pt(150, 120), false)
	f.controller.PointerMove(pt(200, 140), false)
	f.controller.PointerUp(pt(200, 140))

	if f.controller.State() != StateIdle {
		t.Errorf("state = %v after release, want idle", f.controller.State())
	}
	// Baseline plus the stroke: one gesture, one new step.
	if f.log.Len() != 2 {
		t.Errorf("history len = %d, want 2", f.log.Len())
	}
	if f.engine.InStroke() {
		t.Error("stroke still in progress after release")
	}
}

func TestUndoAfterFirstStrokeRestoresBlank(t *testing.T) {
	f := newFixture(t)

	f.controller.PointerDown(pt(100, 100))
	f.controller.PointerUp(pt(100, 100))

	if !f.controller.HandleShortcut(ShortcutUndo, false) {
		t.Fatal("undo of the first stroke unavailable")
	}
	logical := f.engine.DisplayToLogical(pt(100, 100), raster.LogicalWidth, raster.LogicalHeight)
	if got := f.engine.Surface().RGBAAt(int(logical.X), int(logical.Y)); got.A != 0 {
		t.Errorf("pixel after undo = %v, want blank baseline", got)
	}
	if f.controller.HandleShortcut(ShortcutUndo, false) {
		t.Error("undo past the baseline = true, want false")
	}
}

func TestRedoUnavailableAfterDivergentStroke(t *testing.T) {
	f := newFixture(t)

	f.controller.PointerDown(pt(100, 100))
	f.controller.PointerUp(pt(100, 100))
	f.controller.HandleShortcut(ShortcutUndo, false)

	f.controller.PointerDown(pt(500, 500))
	f.controller.PointerUp(pt(500, 500))

	if f.controller.HandleShortcut(ShortcutRedo, false) {
		t.Error("redo available after a divergent stroke")
	}
}

func TestDragPreservesGrabOffset(t *testing.T) {
	f := newFixture(t)
	id := f.table.InsertText("x", pt(100, 100), color.RGBA{A: 255}, 12)
	f.table.ClearSelection()

	// Grab 20,10 inside the object and drag.
	f.controller.PointerDown(pt(120, 110))
	if f.controller.State() != StateDraggingObject {
		t.Fatalf("state = %v, want dragging", f.controller.State())
	}
	if f.table.Selected() != id {
		t.Error("pressed object not selected")
	}
	f.controller.PointerMove(pt(320, 210), false)
	f.controller.PointerUp(pt(320, 210))

	o := f.table.Objects().Find(id)
	if o.X != 300 || o.Y != 200 {
		t.Errorf("position = (%v,%v), want (300,200)", o.X, o.Y)
	}
}

func TestDragDoesNotCommitHistory(t *testing.T) {
	f := newFixture(t)
	f.table.InsertText("x", pt(100, 100), color.RGBA{A: 255}, 12)

	f.controller.PointerDown(pt(120, 110))
	f.controller.PointerMove(pt(400, 400), false)
	f.controller.PointerUp(pt(400, 400))

	if f.log.Len() != 0 {
		t.Errorf("history len after drag = %d, want 0", f.log.Len())
	}
}

func TestResizeViaHandleClamps(t *testing.T) {
	f := newFixture(t)
	id := f.table.InsertText("x", pt(100, 100), color.RGBA{A: 255}, 12)

	// Press inside the bottom-right handle.
	f.controller.PointerDown(pt(100+object.DefaultTextWidth-2, 100+object.DefaultTextHeight-2))
	if f.controller.State() != StateResizingObject {
		t.Fatalf("state = %v, want resizing", f.controller.State())
	}

	// Drag far past the origin: size clamps to the exact minimums.
	f.controller.PointerMove(pt(-900, -900), false)
	f.controller.PointerUp(pt(-900, -900))

	o := f.table.Objects().Find(id)
	if o.W != object.MinTextWidth || o.H != object.MinTextHeight {
		t.Errorf("size = %vx%v, want %vx%v", o.W, o.H, object.MinTextWidth, object.MinTextHeight)
	}
	if f.log.Len() != 0 {
		t.Errorf("history len after resize = %d, want 0", f.log.Len())
	}
}

func TestTextModeInsertsOnEmptyCanvas(t *testing.T) {
	f := newFixture(t)
	var focused object.ID
	f.controller.OnEditFocus(func(id object.ID) { focused = id })

	f.controller.ToggleTextMode()
	if f.controller.State() != StateTextInsertPending {
		t.Fatalf("state = %v, want text-pending", f.controller.State())
	}

	f.controller.PointerDown(pt(300, 300))

	if f.controller.State() != StateIdle {
		t.Errorf("state = %v after insertion, want idle", f.controller.State())
	}
	objs := f.table.Objects()
	if len(objs) != 1 {
		t.Fatalf("objects = %d, want 1", len(objs))
	}
	o := objs[0]
	if o.X != 300 || o.Y != 300 {
		t.Errorf("position = (%v,%v), want (300,300)", o.X, o.Y)
	}
	if o.W != object.DefaultTextWidth || o.H != object.DefaultTextHeight {
		t.Errorf("size = %vx%v, want defaults", o.W, o.H)
	}
	if o.Color.A == 0 {
		t.Error("inserted text has a zero color")
	}
	if o.FontSize <= 0 {
		t.Error("inserted text has no font size")
	}
	if focused != o.ID {
		t.Error("edit focus not given to the new object")
	}
	if f.log.Len() != 2 {
		t.Errorf("history len = %d, want baseline plus insertion", f.log.Len())
	}
}

func TestTextModePressOnObjectCancelsMode(t *testing.T) {
	f := newFixture(t)
	id := f.table.InsertText("existing", pt(100, 100), color.RGBA{A: 255}, 12)

	f.controller.ToggleTextMode()
	f.controller.PointerDown(pt(120, 120))

	// The press lands on the object: no insertion, mode cancelled, and the
	// press handled as a normal drag start.
	if len(f.table.Objects()) != 1 {
		t.Errorf("objects = %d, want 1 (no insertion)", len(f.table.Objects()))
	}
	if f.controller.State() != StateDraggingObject {
		t.Errorf("state = %v, want dragging", f.controller.State())
	}
	if f.table.Selected() != id {
		t.Error("pressed object not selected")
	}
	f.controller.PointerUp(pt(120, 120))
}

func TestToggleTextModeTwiceDisarms(t *testing.T) {
	f := newFixture(t)
	f.controller.ToggleTextMode()
	f.controller.ToggleTextMode()
	if f.controller.State() != StateIdle {
		t.Errorf("state = %v, want idle", f.controller.State())
	}
}

func TestPointerMoveCoalescesToOneFramePerToken(t *testing.T) {
	f := newFixture(t)

	var frames []func()
	f.controller.SetFrameScheduler(func(fn func()) { frames = append(frames, fn) })
	f.table.InsertText("x", pt(100, 100), color.RGBA{A: 255}, 12)

	f.controller.PointerDown(pt(120, 110))
	f.controller.PointerMove(pt(130, 110), false)
	f.controller.PointerMove(pt(140, 110), false)
	f.controller.PointerMove(pt(150, 110), false)

	// One scheduled frame for the whole burst.
	if len(frames) != 1 {
		t.Fatalf("scheduled frames = %d, want 1", len(frames))
	}
	frames[0]()

	// Only the newest position is applied.
	o := f.table.Objects()[0]
	if o.X != 130 {
		t.Errorf("X = %v, want 130 (latest move in the burst)", o.X)
	}

	// After the frame runs, a new move schedules a new frame.
	f.controller.PointerMove(pt(160, 110), false)
	if len(frames) != 2 {
		t.Errorf("scheduled frames = %d, want 2", len(frames))
	}
	f.controller.PointerUp(pt(160, 110))
}

func TestDeleteSelectedCommits(t *testing.T) {
	f := newFixture(t)
	f.table.InsertText("x", pt(100, 100), color.RGBA{A: 255}, 12)

	if !f.controller.DeleteSelected() {
		t.Fatal("DeleteSelected = false with a selection")
	}
	if len(f.table.Objects()) != 0 {
		t.Error("object survived deletion")
	}
	if f.log.Len() != 2 {
		t.Errorf("history len = %d, want baseline plus deletion", f.log.Len())
	}
	if f.controller.DeleteSelected() {
		t.Error("DeleteSelected = true without a selection")
	}

	// Undo brings the object back.
	f.controller.HandleShortcut(ShortcutUndo, false)
	if len(f.table.Objects()) != 1 {
		t.Error("undo did not restore the deleted object")
	}
}

func TestClearCanvasCommits(t *testing.T) {
	f := newFixture(t)

	f.controller.PointerDown(pt(100, 100))
	f.controller.PointerUp(pt(100, 100))

	f.controller.ClearCanvas()
	if f.log.Len() != 3 {
		t.Errorf("history len = %d, want 3", f.log.Len())
	}

	f.controller.HandleShortcut(ShortcutUndo, false)
	logical := f.engine.DisplayToLogical(pt(100, 100), raster.LogicalWidth, raster.LogicalHeight)
	if got := f.engine.Surface().RGBAAt(int(logical.X), int(logical.Y)); got.A == 0 {
		t.Error("undo of clear did not restore the stroke")
	}
}

func TestPasteInsertsAtLastPointer(t *testing.T) {
	f := newFixture(t)
	f.controller.SetClipboard(func() (string, error) { return "pasted", nil }, nil)

	f.controller.PointerMove(pt(400, 250), false)
	if !f.controller.PasteText() {
		t.Fatal("PasteText = false")
	}

	o := f.table.Objects()[0]
	if o.Content != "pasted" {
		t.Errorf("Content = %q, want pasted", o.Content)
	}
	if o.X != 400 || o.Y != 250 {
		t.Errorf("position = (%v,%v), want the last pointer position", o.X, o.Y)
	}
}

func TestPasteEmptyClipboardIsNoOp(t *testing.T) {
	f := newFixture(t)
	f.controller.SetClipboard(func() (string, error) { return "", nil }, nil)

	if f.controller.PasteText() {
		t.Error("PasteText = true for an empty clipboard")
	}
	if len(f.table.Objects()) != 0 {
		t.Error("empty paste created an object")
	}
}

func TestCopySelectedText(t *testing.T) {
	f := newFixture(t)
	var copied string
	f.controller.SetClipboard(nil, func(s string) { copied = s })

	f.table.InsertText("copy me", pt(10, 10), color.RGBA{A: 255}, 12)
	if !f.controller.HandleShortcut(ShortcutCopy, false) {
		t.Fatal("copy shortcut = false with a text selection")
	}
	if copied != "copy me" {
		t.Errorf("copied = %q, want the object content", copied)
	}

	// Image objects are not copyable as text.
	f.table.InsertImage("ref", pt(50, 50), 10, 10)
	copied = ""
	if f.controller.HandleShortcut(ShortcutCopy, false) {
		t.Error("copy shortcut = true for an image selection")
	}
}

func TestShortcutSuppressionDuringTextEdit(t *testing.T) {
	f := newFixture(t)
	var pickerShown bool
	f.controller.OnColorPicker(func() { pickerShown = true })

	f.controller.PointerDown(pt(100, 100))
	f.controller.PointerUp(pt(100, 100))

	// While editing text, undo stays live but the rest is suppressed.
	if !f.controller.HandleShortcut(ShortcutUndo, true) {
		t.Error("undo suppressed during text edit")
	}
	if f.controller.HandleShortcut(ShortcutColorPicker, true) {
		t.Error("color picker fired during text edit")
	}
	if pickerShown {
		t.Error("color picker callback invoked during text edit")
	}
	if f.controller.HandleShortcut(ShortcutTextMode, true) {
		t.Error("text mode toggled during text edit")
	}
	if f.controller.HandleShortcut(ShortcutDelete, true) {
		t.Error("delete fired during text edit")
	}

	// Outside editing they work.
	if !f.controller.HandleShortcut(ShortcutColorPicker, false) {
		t.Error("color picker shortcut = false outside text edit")
	}
	if !pickerShown {
		t.Error("color picker callback not invoked")
	}
}

func TestCaptureRegionInsertsRecognizedText(t *testing.T) {
	f := newFixture(t)
	f.controller.SetRecognizer(func(_ image.Image, r geometry.RectInt) (string, error) {
		return "  hello  ", nil
	})

	if !f.controller.CaptureRegion(geometry.RectInt{X: 40, Y: 60, Width: 100, Height: 50}) {
		t.Fatal("CaptureRegion = false")
	}
	o := f.table.Objects()[0]
	if o.Content != "hello" {
		t.Errorf("Content = %q, want trimmed recognition output", o.Content)
	}
	if o.X != 40 || o.Y != 60 {
		t.Errorf("position = (%v,%v), want the region origin", o.X, o.Y)
	}
}

func TestCaptureRegionEmptyResultIsNoOp(t *testing.T) {
	f := newFixture(t)
	f.controller.SetRecognizer(func(_ image.Image, _ geometry.RectInt) (string, error) {
		return "   ", nil
	})

	if f.controller.CaptureRegion(geometry.RectInt{Width: 10, Height: 10}) {
		t.Error("CaptureRegion = true for whitespace-only recognition")
	}
	if len(f.table.Objects()) != 0 {
		t.Error("whitespace recognition created an object")
	}
}
