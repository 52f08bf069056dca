// Package raster owns the fixed-resolution drawing surface: stroke rendering,
// coordinate scaling, and snapshot encode/decode.
package raster

import (
	"image"
	"image/color"

	"drawboard/pkg/geometry"
)

// The logical canvas resolution. Pointer coordinates are rescaled into this
// space at every event, so resizing the window never distorts prior strokes.
const (
	LogicalWidth  = 1920
	LogicalHeight = 1080
)

// Engine maintains the active document's bitmap and the in-progress stroke.
// All mutating calls happen on the UI loop. Snapshot decoding runs off it via
// the spawn executor and its completion, including the staleness check,
// executes through the post executor. The default post runs completions
// directly on the decode goroutine: whoever hosts the engine on an event
// loop must install a loop-marshaling post via SetExecutors, as the board
// widget does.
type Engine struct {
	surface *image.RGBA

	// In-progress stroke state. preStroke holds the pixels captured at
	// BeginStroke so a constrained (rectangle preview) gesture can restore
	// them on every move.
	preStroke   *image.RGBA
	strokeStart geometry.Point2D
	strokeLast  geometry.Point2D
	strokeColor color.RGBA
	strokeWidth int
	inStroke    bool

	// loadGen rises on every reload, clear, or stroke begin. A decode that
	// finishes carrying an older generation is discarded.
	loadGen uint64

	// loadPending is true from LoadSnapshot dispatching an async decode until
	// its completion lands, or until a stroke or clear supersedes it and the
	// surface becomes authoritative again.
	loadPending bool

	spawn func(func()) // runs decode work off the loop
	post  func(func()) // marshals completions back onto the loop

	onRepaint func()
}

// NewEngine creates an engine with a blank logical-resolution surface.
func NewEngine() *Engine {
	return &Engine{
		surface: blankSurface(),
		spawn:   func(fn func()) { go fn() },
		post:    func(fn func()) { fn() },
	}
}

// SetExecutors replaces the decode and completion executors. The UI installs
// a loop-marshaling post here; tests install synchronous ones.
func (e *Engine) SetExecutors(spawn, post func(func())) {
	if spawn != nil {
		e.spawn = spawn
	}
	if post != nil {
		e.post = post
	}
}

// OnRepaint registers a callback invoked whenever surface pixels change.
func (e *Engine) OnRepaint(fn func()) {
	e.onRepaint = fn
}

// Surface returns the live bitmap. Callers must not retain it across events.
func (e *Engine) Surface() *image.RGBA {
	return e.surface
}

// InStroke reports whether a stroke gesture is in progress.
func (e *Engine) InStroke() bool {
	return e.inStroke
}

// LoadPending reports whether a snapshot decode is still in flight. While it
// is, the surface does not yet reflect the loaded document and the stored
// snapshot remains the authority.
func (e *Engine) LoadPending() bool {
	return e.loadPending
}

// DisplayToLogical rescales a display-space point into logical canvas space.
// The transform is recomputed from the current display bounds on every call,
// never cached, so window resizes take effect immediately.
func (e *Engine) DisplayToLogical(p geometry.Point2D, displayW, displayH float64) geometry.Point2D {
	if displayW <= 0 || displayH <= 0 {
		return p
	}
	t, err := displayTransform(displayW, displayH)
	if err != nil {
		t = geometry.Scale(LogicalWidth/displayW, LogicalHeight/displayH)
	}
	return t.Apply(p)
}

// BeginStroke captures the pre-stroke pixels and starts a path at the given
// logical point. Any pending snapshot decode is superseded.
func (e *Engine) BeginStroke(p geometry.Point2D, col color.RGBA, width float64) {
	e.loadGen++
	e.loadPending = false

	pre := image.NewRGBA(e.surface.Bounds())
	copy(pre.Pix, e.surface.Pix)
	e.preStroke = pre

	e.strokeStart = p
	e.strokeLast = p
	e.strokeColor = col
	e.strokeWidth = int(width)
	if e.strokeWidth < 1 {
		e.strokeWidth = 1
	}
	e.inStroke = true

	drawLine(e.surface, int(p.X), int(p.Y), int(p.X), int(p.Y), col, e.strokeWidth)
	e.repaint()
}

// ContinueStroke extends the in-progress gesture. Unconstrained motion appends
// a line segment. Constrained motion restores the pre-stroke pixels and draws
// a single live preview rectangle from the stroke origin to p; whatever is on
// the surface at release is what EndStroke finalizes.
func (e *Engine) ContinueStroke(p geometry.Point2D, constrained bool) {
	if !e.inStroke {
		return
	}

	if constrained {
		copy(e.surface.Pix, e.preStroke.Pix)
		drawRectOutline(e.surface, e.strokeStart, p, e.strokeColor, e.strokeWidth)
	} else {
		drawLine(e.surface, int(e.strokeLast.X), int(e.strokeLast.Y), int(p.X), int(p.Y), e.strokeColor, e.strokeWidth)
	}
	e.strokeLast = p
	e.repaint()
}

// EndStroke finalizes whatever is currently painted as the new raster state.
// The caller is responsible for committing a history step afterwards.
func (e *Engine) EndStroke() {
	if !e.inStroke {
		return
	}
	e.inStroke = false
	e.preStroke = nil
}

// Clear wipes the surface to empty. The object-list association of the
// resulting commit is left to the caller.
func (e *Engine) Clear() {
	e.loadGen++
	e.loadPending = false
	e.surface = blankSurface()
	e.inStroke = false
	e.preStroke = nil
	e.repaint()
}

func (e *Engine) repaint() {
	if e.onRepaint != nil {
		e.onRepaint()
	}
}

func blankSurface() *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, LogicalWidth, LogicalHeight))
}

// drawLine draws a thick line between two points using Bresenham's algorithm.
func drawLine(dst *image.RGBA, x1, y1, x2, y2 int, col color.RGBA, thickness int) {
	bounds := dst.Bounds()

	dx := x2 - x1
	dy := y2 - y1
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}

	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}

	err := dx - dy

	for {
		// Draw thick point
		for t := -thickness / 2; t <= thickness/2; t++ {
			for s := -thickness / 2; s <= thickness/2; s++ {
				px, py := x1+s, y1+t
				if px >= bounds.Min.X && px < bounds.Max.X && py >= bounds.Min.Y && py < bounds.Max.Y {
					dst.SetRGBA(px, py, col)
				}
			}
		}

		if x1 == x2 && y1 == y2 {
			break
		}

		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// drawRectOutline draws the constrained-stroke preview rectangle between two
// opposite corners.
func drawRectOutline(dst *image.RGBA, a, b geometry.Point2D, col color.RGBA, thickness int) {
	x1, y1 := int(a.X), int(a.Y)
	x2, y2 := int(b.X), int(b.Y)
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if y1 > y2 {
		y1, y2 = y2, y1
	}

	drawLine(dst, x1, y1, x2, y1, col, thickness)
	drawLine(dst, x1, y2, x2, y2, col, thickness)
	drawLine(dst, x1, y1, x1, y2, col, thickness)
	drawLine(dst, x2, y1, x2, y2, col, thickness)
}
