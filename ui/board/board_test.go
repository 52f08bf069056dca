package board

import (
	"image/color"
	"sync"
	"testing"
	"time"

	"drawboard/internal/history"
	"drawboard/internal/interaction"
	"drawboard/internal/object"
	"drawboard/internal/raster"
	"drawboard/pkg/geometry"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"
)

// dispatcher counts callbacks routed through the board's UI-loop executor.
// The count rises only after the callback has fully run, so a test that
// observes it may safely read the state the callback mutated.
type dispatcher struct {
	mu    sync.Mutex
	count int
}

func (d *dispatcher) run(fn func()) {
	fn()
	d.mu.Lock()
	d.count++
	d.mu.Unlock()
}

func (d *dispatcher) calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.count
}

func newTestBoard(t *testing.T) (*Board, *raster.Engine, *dispatcher) {
	t.Helper()
	test.NewApp()

	engine := raster.NewEngine()
	table := object.NewTable()
	log := history.NewLog(func(step history.Step) {
		table.Replace(step.Objects)
		engine.LoadSnapshot(step.Raster, nil)
	})
	controller := interaction.NewController(engine, table, log)

	b := New(engine, table, controller)
	d := &dispatcher{}
	b.runOnMain = d.run
	b.Resize(fyne.NewSize(640, 360))
	return b, engine, d
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func mouseEvent(x, y float32) *desktop.MouseEvent {
	return &desktop.MouseEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(x, y)},
		Button:       desktop.MouseButtonPrimary,
	}
}

func TestDecodeCompletionRunsOnUIDispatcher(t *testing.T) {
	_, engine, d := newTestBoard(t)

	src := raster.NewEngine()
	src.SetExecutors(func(fn func()) { fn() }, func(fn func()) { fn() })
	ink := color.RGBA{R: 200, A: 255}
	src.BeginStroke(geometry.NewPoint2D(50, 50), ink, 4)
	src.EndStroke()
	data := src.EncodeSnapshot()

	done := make(chan error, 1)
	engine.LoadSnapshot(data, func(err error) { done <- err })

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("decode failed: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("decode did not complete")
	}

	waitFor(t, func() bool { return d.calls() > 0 })
	if got := engine.Surface().RGBAAt(50, 50); got != ink {
		t.Errorf("pixel after decode = %v, want %v", got, ink)
	}
}

func TestFrameCallbacksRunOnUIDispatcher(t *testing.T) {
	b, engine, d := newTestBoard(t)

	// Widget space is 640x360, logical space 1920x1080: a factor of three.
	b.MouseDown(mouseEvent(50, 30))
	b.MouseMoved(mouseEvent(80, 60))

	waitFor(t, func() bool { return d.calls() > 0 })

	ink := color.RGBA{A: 255}
	if got := engine.Surface().RGBAAt(150, 90); got != ink {
		t.Errorf("stroke origin pixel = %v, want %v", got, ink)
	}
	if got := engine.Surface().RGBAAt(240, 180); got != ink {
		t.Errorf("coalesced move pixel = %v, want %v", got, ink)
	}

	b.MouseUp(mouseEvent(80, 60))
}
