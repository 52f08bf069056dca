package raster

import (
	"bytes"
	"image/color"
	"testing"

	"drawboard/pkg/geometry"
)

var ink = color.RGBA{R: 10, G: 20, B: 30, A: 255}

// syncEngine runs decode work inline so tests observe results immediately.
func syncEngine() *Engine {
	e := NewEngine()
	e.SetExecutors(func(fn func()) { fn() }, func(fn func()) { fn() })
	return e
}

func TestStrokePaintsPixels(t *testing.T) {
	e := syncEngine()

	e.BeginStroke(geometry.NewPoint2D(100, 100), ink, 4)
	e.ContinueStroke(geometry.NewPoint2D(140, 100), false)
	e.EndStroke()

	if got := e.Surface().RGBAAt(120, 100); got != ink {
		t.Errorf("pixel on stroke path = %v, want %v", got, ink)
	}
	if got := e.Surface().RGBAAt(120, 200); got.A != 0 {
		t.Errorf("pixel off stroke path = %v, want transparent", got)
	}
	if e.InStroke() {
		t.Error("InStroke() = true after EndStroke")
	}
}

func TestConstrainedStrokeRestoresPreStrokePixels(t *testing.T) {
	e := syncEngine()

	e.BeginStroke(geometry.NewPoint2D(100, 100), ink, 2)
	// Freehand wander first, then constrain: the wander must vanish and only
	// the rectangle preview remain.
	e.ContinueStroke(geometry.NewPoint2D(300, 300), false)
	e.ContinueStroke(geometry.NewPoint2D(200, 150), true)

	if got := e.Surface().RGBAAt(200, 200); got.A != 0 {
		t.Errorf("freehand wander survived constrained preview: %v", got)
	}
	if got := e.Surface().RGBAAt(150, 100); got != ink {
		t.Errorf("rectangle top edge = %v, want %v", got, ink)
	}
	if got := e.Surface().RGBAAt(150, 125); got.A != 0 {
		t.Errorf("rectangle interior = %v, want transparent", got)
	}

	// A second constrained move replaces the previous preview entirely.
	e.ContinueStroke(geometry.NewPoint2D(120, 110), true)
	if got := e.Surface().RGBAAt(200, 100); got.A != 0 {
		t.Errorf("stale preview edge survived: %v", got)
	}
	e.EndStroke()
}

func TestClearWipesSurface(t *testing.T) {
	e := syncEngine()
	e.BeginStroke(geometry.NewPoint2D(50, 50), ink, 8)
	e.EndStroke()

	e.Clear()

	if got := e.Surface().RGBAAt(50, 50); got.A != 0 {
		t.Errorf("pixel after Clear = %v, want transparent", got)
	}
}

func TestDisplayToLogicalRescales(t *testing.T) {
	e := NewEngine()

	// Display at half the logical resolution: center maps to center.
	p := e.DisplayToLogical(geometry.NewPoint2D(480, 270), 960, 540)
	if p.X < 959 || p.X > 961 || p.Y < 539 || p.Y > 541 {
		t.Errorf("center mapped to (%v,%v), want (960,540)", p.X, p.Y)
	}

	// Origin and far corner pin to the logical bounds.
	o := e.DisplayToLogical(geometry.NewPoint2D(0, 0), 960, 540)
	if o.X < -1 || o.X > 1 || o.Y < -1 || o.Y > 1 {
		t.Errorf("origin mapped to (%v,%v), want (0,0)", o.X, o.Y)
	}
	c := e.DisplayToLogical(geometry.NewPoint2D(960, 540), 960, 540)
	if c.X < LogicalWidth-1 || c.X > LogicalWidth+1 || c.Y < LogicalHeight-1 || c.Y > LogicalHeight+1 {
		t.Errorf("corner mapped to (%v,%v), want (%v,%v)", c.X, c.Y, LogicalWidth, LogicalHeight)
	}

	// Degenerate display size falls back to the identity.
	d := e.DisplayToLogical(geometry.NewPoint2D(7, 9), 0, 0)
	if d.X != 7 || d.Y != 9 {
		t.Errorf("degenerate size mapped to (%v,%v), want (7,9)", d.X, d.Y)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	e := syncEngine()
	e.BeginStroke(geometry.NewPoint2D(300, 300), ink, 6)
	e.ContinueStroke(geometry.NewPoint2D(400, 350), false)
	e.EndStroke()

	data := e.EncodeSnapshot()
	if len(data) == 0 {
		t.Fatal("EncodeSnapshot returned no data")
	}

	restored, err := DecodeSnapshot(data)
	if err != nil {
		t.Fatalf("DecodeSnapshot: %v", err)
	}
	if !bytes.Equal(restored.Pix, e.Surface().Pix) {
		t.Error("decoded surface differs from the encoded one")
	}
}

func TestLoadSnapshotEmptyPaintsBlank(t *testing.T) {
	e := syncEngine()
	e.BeginStroke(geometry.NewPoint2D(10, 10), ink, 4)
	e.EndStroke()

	var done bool
	e.LoadSnapshot(nil, func(err error) {
		done = true
		if err != nil {
			t.Errorf("done(err) = %v, want nil", err)
		}
	})

	if !done {
		t.Fatal("done callback not invoked")
	}
	if got := e.Surface().RGBAAt(10, 10); got.A != 0 {
		t.Errorf("pixel after blank load = %v, want transparent", got)
	}
}

func TestLoadSnapshotKeepsPixelsOnDecodeError(t *testing.T) {
	e := syncEngine()
	e.BeginStroke(geometry.NewPoint2D(10, 10), ink, 4)
	e.EndStroke()

	var gotErr error
	e.LoadSnapshot([]byte("not a png"), func(err error) { gotErr = err })

	if gotErr == nil {
		t.Fatal("done(err) = nil, want decode error")
	}
	if got := e.Surface().RGBAAt(10, 10); got != ink {
		t.Errorf("pixel after failed decode = %v, want %v (pre-reload content)", got, ink)
	}
}

func TestLoadSnapshotStaleDecodeDiscarded(t *testing.T) {
	e := NewEngine()

	// Hold the first decode's completion until after a newer load lands.
	var held func()
	e.SetExecutors(
		func(fn func()) { fn() },
		func(fn func()) { held = fn },
	)

	withInk := syncEngine()
	withInk.BeginStroke(geometry.NewPoint2D(5, 5), ink, 4)
	withInk.EndStroke()
	old := withInk.EncodeSnapshot()

	var oldDone bool
	e.LoadSnapshot(old, func(error) { oldDone = true })
	first := held

	// The newer load is a blank one, applied synchronously.
	e.SetExecutors(func(fn func()) { fn() }, func(fn func()) { fn() })
	e.LoadSnapshot(nil, nil)

	// Now the stale completion arrives. It must be discarded.
	first()

	if oldDone {
		t.Error("stale decode completion was applied")
	}
	if got := e.Surface().RGBAAt(5, 5); got.A != 0 {
		t.Errorf("stale pixels landed: %v", got)
	}
}

func TestLoadSnapshotAppliesOnlyInsidePostExecutor(t *testing.T) {
	withInk := syncEngine()
	withInk.BeginStroke(geometry.NewPoint2D(5, 5), ink, 4)
	withInk.EndStroke()
	data := withInk.EncodeSnapshot()

	// Decode runs inline, but the completion is held: nothing on the
	// surface may change until the post executor runs it.
	e := NewEngine()
	var held func()
	e.SetExecutors(
		func(fn func()) { fn() },
		func(fn func()) { held = fn },
	)

	e.LoadSnapshot(data, nil)

	if held == nil {
		t.Fatal("completion not handed to the post executor")
	}
	if got := e.Surface().RGBAAt(5, 5); got.A != 0 {
		t.Fatal("surface changed before the post executor ran the completion")
	}

	held()

	if got := e.Surface().RGBAAt(5, 5); got != ink {
		t.Errorf("pixel after completion = %v, want %v", got, ink)
	}
}

func TestLoadPendingLifecycle(t *testing.T) {
	withInk := syncEngine()
	withInk.BeginStroke(geometry.NewPoint2D(5, 5), ink, 4)
	withInk.EndStroke()
	data := withInk.EncodeSnapshot()

	e := NewEngine()
	var held func()
	e.SetExecutors(func(fn func()) { fn() }, func(fn func()) { held = fn })

	if e.LoadPending() {
		t.Fatal("LoadPending true before any load")
	}

	e.LoadSnapshot(data, nil)
	if !e.LoadPending() {
		t.Fatal("LoadPending false while the decode completion is held")
	}

	held()
	if e.LoadPending() {
		t.Error("LoadPending true after the completion applied")
	}

	// A stroke supersedes a pending decode and makes the surface
	// authoritative again.
	e.LoadSnapshot(data, nil)
	e.BeginStroke(geometry.NewPoint2D(1, 1), ink, 2)
	e.EndStroke()
	if e.LoadPending() {
		t.Error("LoadPending true after a stroke superseded the decode")
	}
	held()
	if e.LoadPending() {
		t.Error("discarded completion resurrected the pending flag")
	}
}

func TestBeginStrokeSupersedesPendingDecode(t *testing.T) {
	e := NewEngine()

	withInk := syncEngine()
	withInk.BeginStroke(geometry.NewPoint2D(5, 5), ink, 4)
	withInk.EndStroke()
	old := withInk.EncodeSnapshot()

	var held func()
	e.SetExecutors(func(fn func()) { fn() }, func(fn func()) { held = fn })
	e.LoadSnapshot(old, nil)

	// The user starts drawing before the decode completes.
	e.BeginStroke(geometry.NewPoint2D(700, 700), ink, 4)
	e.EndStroke()

	held()

	if got := e.Surface().RGBAAt(5, 5); got.A != 0 {
		t.Errorf("pending decode overwrote a newer stroke: %v", got)
	}
	if got := e.Surface().RGBAAt(700, 700); got != ink {
		t.Errorf("stroke pixel = %v, want %v", got, ink)
	}
}
