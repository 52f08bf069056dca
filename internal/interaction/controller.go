// Package interaction implements the pointer/keyboard state machine that
// routes the single global pointer stream to the raster engine, the object
// table, and the history log. Exactly one interaction state is active at any
// time; invalid flag combinations cannot be expressed.
package interaction

import (
	"image"
	"image/color"
	"strings"

	"github.com/sirupsen/logrus"

	"drawboard/internal/history"
	"drawboard/internal/object"
	"drawboard/internal/raster"
	"drawboard/pkg/geometry"
)

// State identifies the active interaction mode.
type State int

const (
	StateIdle State = iota
	StateDrawing
	StateDraggingObject
	StateResizingObject
	StateTextInsertPending
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDrawing:
		return "drawing"
	case StateDraggingObject:
		return "dragging"
	case StateResizingObject:
		return "resizing"
	case StateTextInsertPending:
		return "text-pending"
	default:
		return "unknown"
	}
}

// gesture is the tagged union of interaction states. target, dragOffset, and
// anchor are only meaningful for the state that set them.
type gesture struct {
	state      State
	target     object.ID
	dragOffset geometry.Point2D // pointer minus object origin while dragging
	anchor     geometry.Point2D // object origin while resizing
}

type pointerMove struct {
	pos         geometry.Point2D
	constrained bool
}

// Controller owns the interaction state and the ambient pointer bookkeeping
// (last pointer position, pending animation frame) as explicit fields.
type Controller struct {
	engine *raster.Engine
	table  *object.Table
	log    *history.Log

	gesture     gesture
	lastPointer geometry.Point2D

	// Frame coalescing: bursts of pointer motion collapse to one state
	// update per scheduled frame through this single in-flight token.
	framePending bool
	pendingMove  pointerMove

	// pre is the pre-gesture state, captured when a mutating gesture begins
	// so the history log can seed its baseline step.
	pre history.Step

	// Current brush settings, owned by the toolbar but applied here.
	BrushColor color.RGBA
	BrushWidth float64

	schedule    func(func())
	displaySize func() (w, h float64)

	readClipboard  func() (string, error)
	writeClipboard func(string)
	recognizeText  func(img image.Image, r geometry.RectInt) (string, error)

	onEditFocus   func(object.ID)
	onColorPicker func()
	onToggleTabs  func()
	onChange      func()
}

// NewController creates a controller in the Idle state with default brush
// settings.
func NewController(engine *raster.Engine, table *object.Table, log *history.Log) *Controller {
	return &Controller{
		engine:      engine,
		table:       table,
		log:         log,
		BrushColor:  color.RGBA{A: 255},
		BrushWidth:  4,
		schedule:    func(fn func()) { fn() },
		displaySize: func() (float64, float64) { return raster.LogicalWidth, raster.LogicalHeight },
	}
}

// State returns the active interaction state.
func (c *Controller) State() State {
	return c.gesture.state
}

// LastPointer returns the last observed pointer position in screen space.
func (c *Controller) LastPointer() geometry.Point2D {
	return c.lastPointer
}

// SetFrameScheduler installs the animation-frame scheduler used to coalesce
// pointer motion. The UI passes a frame-aligned scheduler; tests pass a
// synchronous one.
func (c *Controller) SetFrameScheduler(fn func(func())) {
	if fn != nil {
		c.schedule = fn
	}
}

// SetDisplaySize installs the provider for the canvas widget's on-screen
// size, queried per event when rescaling pointer coordinates.
func (c *Controller) SetDisplaySize(fn func() (w, h float64)) {
	if fn != nil {
		c.displaySize = fn
	}
}

// SetClipboard installs the clipboard read/write functions.
func (c *Controller) SetClipboard(read func() (string, error), write func(string)) {
	c.readClipboard = read
	c.writeClipboard = write
}

// SetRecognizer installs the handwriting recognizer used by CaptureRegion.
func (c *Controller) SetRecognizer(fn func(img image.Image, r geometry.RectInt) (string, error)) {
	c.recognizeText = fn
}

// OnEditFocus registers a callback invoked when a newly created text object
// should receive immediate edit focus.
func (c *Controller) OnEditFocus(fn func(object.ID)) {
	c.onEditFocus = fn
}

// OnColorPicker registers the color-picker shortcut callback.
func (c *Controller) OnColorPicker(fn func()) {
	c.onColorPicker = fn
}

// OnToggleTabs registers the tab-panel shortcut callback.
func (c *Controller) OnToggleTabs(fn func()) {
	c.onToggleTabs = fn
}

// OnChange registers a callback invoked after any committed or transient
// state change, e.g. to arm the persistence debounce.
func (c *Controller) OnChange(fn func()) {
	c.onChange = fn
}

// PointerDown classifies a press into one of the mutually exclusive modes:
// stroke on empty canvas, drag on an object body, resize on a handle, or
// text insertion while text mode is pending.
func (c *Controller) PointerDown(p geometry.Point2D) {
	c.lastPointer = p

	switch c.gesture.state {
	case StateTextInsertPending:
		if c.table.HitTest(p) == nil {
			c.gesture = gesture{state: StateIdle}
			c.insertTextAt("", p)
			return
		}
		// Pressing an object while text mode is pending cancels the mode
		// and handles the press normally.
		c.gesture = gesture{state: StateIdle}
		c.pointerDownIdle(p)
	case StateIdle:
		c.pointerDownIdle(p)
	}
}

func (c *Controller) pointerDownIdle(p geometry.Point2D) {
	if o := c.table.HandleHitTest(p); o != nil {
		c.table.Select(o.ID)
		c.gesture = gesture{
			state:  StateResizingObject,
			target: o.ID,
			anchor: geometry.NewPoint2D(o.X, o.Y),
		}
		return
	}

	if o := c.table.HitTest(p); o != nil {
		c.table.Select(o.ID)
		c.gesture = gesture{
			state:      StateDraggingObject,
			target:     o.ID,
			dragOffset: p.Sub(geometry.NewPoint2D(o.X, o.Y)),
		}
		return
	}

	c.table.ClearSelection()
	c.pre = c.snapshot()
	c.engine.BeginStroke(c.toLogical(p), c.BrushColor, c.BrushWidth)
	c.gesture = gesture{state: StateDrawing}
}

// PointerMove records motion and coalesces it to at most one state update
// per animation frame via the in-flight token.
func (c *Controller) PointerMove(p geometry.Point2D, constrained bool) {
	c.lastPointer = p

	switch c.gesture.state {
	case StateDrawing, StateDraggingObject, StateResizingObject:
	default:
		return
	}

	c.pendingMove = pointerMove{pos: p, constrained: constrained}
	if c.framePending {
		return
	}
	c.framePending = true
	c.schedule(func() {
		c.framePending = false
		c.applyMove(c.pendingMove)
	})
}

// PointerUp completes the gesture. Drawing commits a history step; drag and
// resize do not commit on release. That no-commit behavior is a known
// limitation kept pending a product decision, not an accident.
func (c *Controller) PointerUp(p geometry.Point2D) {
	c.lastPointer = p

	switch c.gesture.state {
	case StateDrawing:
		c.applyMove(pointerMove{pos: p, constrained: c.pendingMove.constrained})
		c.engine.EndStroke()
		c.gesture = gesture{state: StateIdle}
		c.commit()
	case StateDraggingObject, StateResizingObject:
		c.applyMove(pointerMove{pos: p, constrained: false})
		c.gesture = gesture{state: StateIdle}
		c.changed()
	}
}

func (c *Controller) applyMove(mv pointerMove) {
	switch c.gesture.state {
	case StateDrawing:
		c.engine.ContinueStroke(c.toLogical(mv.pos), mv.constrained)
	case StateDraggingObject:
		c.table.Move(c.gesture.target, mv.pos.Sub(c.gesture.dragOffset))
	case StateResizingObject:
		c.table.Resize(c.gesture.target, mv.pos.X-c.gesture.anchor.X, mv.pos.Y-c.gesture.anchor.Y)
	}
}

// ToggleTextMode arms or disarms text insertion. The next press on empty
// canvas while armed inserts a text object there.
func (c *Controller) ToggleTextMode() {
	switch c.gesture.state {
	case StateIdle:
		c.gesture = gesture{state: StateTextInsertPending}
	case StateTextInsertPending:
		c.gesture = gesture{state: StateIdle}
	}
}

// ClearCanvas wipes the raster surface and commits. The current object list
// is kept as the commit's object association.
func (c *Controller) ClearCanvas() {
	pre := c.snapshot()
	c.engine.Clear()
	c.log.Record(pre, c.snapshot())
	c.changed()
}

// DeleteSelected removes the selected object and commits immediately, unlike
// move/resize edits.
func (c *Controller) DeleteSelected() bool {
	sel := c.table.Selected()
	if sel == "" {
		return false
	}
	pre := c.snapshot()
	if !c.table.Delete(sel) {
		return false
	}
	c.log.Record(pre, c.snapshot())
	c.changed()
	return true
}

// PasteText inserts the clipboard's plain text as a text object at the last
// known pointer position. Failures are logged and otherwise silent.
func (c *Controller) PasteText() bool {
	if c.readClipboard == nil {
		return false
	}
	text, err := c.readClipboard()
	if err != nil {
		logrus.WithError(err).Warn("clipboard read failed")
		return false
	}
	if text == "" {
		return false
	}
	c.insertTextAt(text, c.lastPointer)
	return true
}

// CaptureRegion recognizes handwriting within a logical-canvas region and
// inserts the recognized text as a text object at the region's origin.
// Recognition failures are logged and otherwise silent.
func (c *Controller) CaptureRegion(r geometry.RectInt) bool {
	if c.recognizeText == nil {
		return false
	}
	text, err := c.recognizeText(c.engine.Surface(), r)
	if err != nil {
		logrus.WithError(err).Warn("region recognition failed")
		return false
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	c.insertTextAt(text, geometry.NewPoint2D(float64(r.X), float64(r.Y)))
	return true
}

// insertTextAt creates a text object with the current brush style, gives it
// edit focus, and commits.
func (c *Controller) insertTextAt(content string, p geometry.Point2D) {
	pre := c.snapshot()
	id := c.table.InsertText(content, p, c.BrushColor, fontSizeForBrush(c.BrushWidth))
	c.log.Record(pre, c.snapshot())
	if c.onEditFocus != nil {
		c.onEditFocus(id)
	}
	c.changed()
}

// fontSizeForBrush derives a text size from the brush width so thicker pens
// produce larger annotations.
func fontSizeForBrush(width float64) float64 {
	size := 12 + width*2
	if size < 12 {
		size = 12
	}
	return size
}

func (c *Controller) snapshot() history.Step {
	return history.Step{
		Raster:  c.engine.EncodeSnapshot(),
		Objects: c.table.Objects(),
	}
}

func (c *Controller) commit() {
	c.log.Record(c.pre, c.snapshot())
	c.changed()
}

func (c *Controller) changed() {
	if c.onChange != nil {
		c.onChange()
	}
}

func (c *Controller) toLogical(p geometry.Point2D) geometry.Point2D {
	w, h := c.displaySize()
	return c.engine.DisplayToLogical(p, w, h)
}
