// Package board provides the drawing surface widget: a raster view of the
// active document's canvas with vector annotations layered on top, feeding
// pointer events to the interaction controller.
package board

import (
	"image"
	"image/color"
	"image/draw"
	"time"

	"drawboard/internal/interaction"
	"drawboard/internal/object"
	"drawboard/internal/raster"
	"drawboard/pkg/geometry"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	xdraw "golang.org/x/image/draw"
)

// frameInterval is the pointer-motion coalescing period, roughly one frame
// at 60 Hz.
const frameInterval = 16 * time.Millisecond

var (
	selectionColor = color.RGBA{R: 30, G: 120, B: 220, A: 255}
	handleColor    = color.RGBA{R: 30, G: 120, B: 220, A: 255}
	captureColor   = color.RGBA{R: 220, G: 120, B: 30, A: 255}
)

// Board displays the active document and routes mouse input to the
// interaction controller.
type Board struct {
	widget.BaseWidget

	engine     *raster.Engine
	table      *object.Table
	controller *interaction.Controller

	raster *fynecanvas.Raster

	// runOnMain marshals callbacks arriving on timer or decode goroutines
	// onto the Fyne event loop, where all controller and engine state lives.
	runOnMain func(func())

	// Capture mode: while armed, the next drag rubber-bands a region and
	// hands it to the controller for handwriting recognition.
	captureMode  bool
	capturing    bool
	captureStart fyne.Position
	captureEnd   fyne.Position

	pressed bool
}

// New creates the board widget and wires the controller's frame scheduler,
// the engine's decode completion executor, and the display-size provider to
// it. Frame and decode callbacks fire on timer and worker goroutines, so both
// are marshaled back onto the event loop before touching shared state.
func New(engine *raster.Engine, table *object.Table, controller *interaction.Controller) *Board {
	b := &Board{
		engine:     engine,
		table:      table,
		controller: controller,
		runOnMain:  func(fn func()) { fyne.Do(fn) },
	}

	b.raster = fynecanvas.NewRaster(b.draw)
	b.raster.SetMinSize(fyne.NewSize(640, 360))

	controller.SetDisplaySize(func() (float64, float64) {
		size := b.Size()
		return float64(size.Width), float64(size.Height)
	})
	controller.SetFrameScheduler(func(fn func()) {
		time.AfterFunc(frameInterval, func() {
			b.runOnMain(func() {
				fn()
				b.raster.Refresh()
			})
		})
	})
	engine.SetExecutors(nil, func(fn func()) {
		b.runOnMain(fn)
	})
	engine.OnRepaint(func() {
		b.raster.Refresh()
	})

	b.ExtendBaseWidget(b)
	return b
}

// CreateRenderer implements fyne.Widget.
func (b *Board) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(b.raster)
}

// EnableCaptureMode arms region capture for the next drag.
func (b *Board) EnableCaptureMode() {
	b.captureMode = true
	b.capturing = false
}

// draw renders the board at the requested pixel size: the logical canvas
// scaled to fit, then annotations, selection chrome, and the capture
// rubber band. Annotations live in widget coordinates, so they are scaled
// by the widget-to-pixel ratio rather than the logical-to-display one.
func (b *Board) draw(w, h int) image.Image {
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(out, out.Bounds(), image.White, image.Point{}, draw.Src)

	surface := b.engine.Surface()
	xdraw.ApproxBiLinear.Scale(out, out.Bounds(), surface, surface.Bounds(), xdraw.Over, nil)

	size := b.Size()
	fx, fy := 1.0, 1.0
	if size.Width > 0 && size.Height > 0 {
		fx = float64(w) / float64(size.Width)
		fy = float64(h) / float64(size.Height)
	}

	selected := b.table.Selected()
	for _, o := range b.table.Objects() {
		b.drawObject(out, o, fx, fy)
		if o.ID == selected {
			b.drawSelection(out, o, fx, fy)
		}
	}

	if b.capturing {
		a := geometry.NewPoint2D(float64(b.captureStart.X)*fx, float64(b.captureStart.Y)*fy)
		c := geometry.NewPoint2D(float64(b.captureEnd.X)*fx, float64(b.captureEnd.Y)*fy)
		drawOutline(out, a, c, captureColor)
	}

	return out
}

func (b *Board) drawObject(out *image.RGBA, o *object.Object, fx, fy float64) {
	scaled := *o
	scaled.X *= fx
	scaled.Y *= fy
	scaled.W *= fx
	scaled.H *= fy
	raster.DrawObject(out, &scaled)
}

func (b *Board) drawSelection(out *image.RGBA, o *object.Object, fx, fy float64) {
	bounds := o.Bounds()
	a := geometry.NewPoint2D(bounds.X*fx, bounds.Y*fy)
	c := geometry.NewPoint2D(bounds.BottomRight().X*fx, bounds.BottomRight().Y*fy)
	drawOutline(out, a, c, selectionColor)

	if hb, ok := o.HandleBounds(); ok {
		x1, y1 := int(hb.X*fx), int(hb.Y*fy)
		x2, y2 := int(hb.BottomRight().X*fx), int(hb.BottomRight().Y*fy)
		for y := y1; y < y2; y++ {
			for x := x1; x < x2; x++ {
				if image.Pt(x, y).In(out.Bounds()) {
					out.SetRGBA(x, y, handleColor)
				}
			}
		}
	}
}

// drawOutline draws a one-pixel rectangle outline between two corners.
func drawOutline(dst *image.RGBA, a, c geometry.Point2D, col color.RGBA) {
	x1, y1 := int(a.X), int(a.Y)
	x2, y2 := int(c.X), int(c.Y)
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	for x := x1; x <= x2; x++ {
		setIfInside(dst, x, y1, col)
		setIfInside(dst, x, y2, col)
	}
	for y := y1; y <= y2; y++ {
		setIfInside(dst, x1, y, col)
		setIfInside(dst, x2, y, col)
	}
}

func setIfInside(dst *image.RGBA, x, y int, col color.RGBA) {
	if image.Pt(x, y).In(dst.Bounds()) {
		dst.SetRGBA(x, y, col)
	}
}

// Mouse handling. Events arrive in widget coordinates, which is the space
// annotations live in; stroke coordinates are rescaled to the logical
// canvas inside the controller.

// MouseDown implements desktop.Mouseable.
func (b *Board) MouseDown(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	if b.captureMode {
		b.capturing = true
		b.captureStart = ev.Position
		b.captureEnd = ev.Position
		b.raster.Refresh()
		return
	}
	b.pressed = true
	b.controller.PointerDown(toPoint(ev.Position))
	b.raster.Refresh()
}

// MouseUp implements desktop.Mouseable.
func (b *Board) MouseUp(ev *desktop.MouseEvent) {
	if b.capturing {
		b.capturing = false
		b.captureMode = false
		b.finishCapture(ev.Position)
		b.raster.Refresh()
		return
	}
	if !b.pressed {
		return
	}
	b.pressed = false
	b.controller.PointerUp(toPoint(ev.Position))
	b.raster.Refresh()
}

// MouseIn implements desktop.Hoverable.
func (b *Board) MouseIn(*desktop.MouseEvent) {}

// MouseMoved implements desktop.Hoverable.
func (b *Board) MouseMoved(ev *desktop.MouseEvent) {
	if b.capturing {
		b.captureEnd = ev.Position
		b.raster.Refresh()
		return
	}
	constrained := ev.Modifier&fyne.KeyModifierShift != 0
	b.controller.PointerMove(toPoint(ev.Position), constrained)
}

// MouseOut implements desktop.Hoverable.
func (b *Board) MouseOut() {}

// finishCapture converts the rubber-band corners to logical-canvas
// coordinates and asks the controller to recognize the region.
func (b *Board) finishCapture(end fyne.Position) {
	size := b.Size()
	w, h := float64(size.Width), float64(size.Height)
	a := b.engine.DisplayToLogical(toPoint(b.captureStart), w, h)
	c := b.engine.DisplayToLogical(geometry.NewPoint2D(float64(end.X), float64(end.Y)), w, h)

	x1, y1 := int(a.X), int(a.Y)
	x2, y2 := int(c.X), int(c.Y)
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	if x2-x1 < 4 || y2-y1 < 4 {
		return
	}
	b.controller.CaptureRegion(geometry.RectInt{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1})
}

func toPoint(pos fyne.Position) geometry.Point2D {
	return geometry.NewPoint2D(float64(pos.X), float64(pos.Y))
}
