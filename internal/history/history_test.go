package history

import (
	"bytes"
	"fmt"
	"testing"

	"drawboard/internal/object"
)

func step(tag string) Step {
	return Step{Raster: []byte(tag)}
}

func TestRecordSeedsBaseline(t *testing.T) {
	l := NewLog(nil)

	l.Record(step("initial"), step("A"))

	if l.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", l.Len())
	}
	if l.Cursor() != 1 {
		t.Errorf("Cursor() = %d, want 1", l.Cursor())
	}
	cur, ok := l.Current()
	if !ok || !bytes.Equal(cur.Raster, []byte("A")) {
		t.Errorf("Current() = %q, want A", cur.Raster)
	}
}

func TestRecordSkipsBaselineWhenNonEmpty(t *testing.T) {
	l := NewLog(nil)
	l.Record(step("initial"), step("A"))
	l.Record(step("A"), step("B"))

	// The second Record must not re-commit its pre step.
	if l.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", l.Len())
	}
}

func TestUndoRedoRestoresSteps(t *testing.T) {
	var applied []string
	l := NewLog(func(s Step) {
		applied = append(applied, string(s.Raster))
	})

	l.Record(step("initial"), step("A"))
	l.Record(step("A"), step("B"))

	if !l.Undo() {
		t.Fatal("Undo() = false, want true")
	}
	if !l.Undo() {
		t.Fatal("second Undo() = false, want true")
	}
	if l.Undo() {
		t.Error("Undo() at oldest step = true, want false")
	}
	if !l.Redo() {
		t.Fatal("Redo() = false, want true")
	}

	want := []string{"A", "initial", "A"}
	if len(applied) != len(want) {
		t.Fatalf("applied %v, want %v", applied, want)
	}
	for i := range want {
		if applied[i] != want[i] {
			t.Errorf("applied[%d] = %q, want %q", i, applied[i], want[i])
		}
	}
}

func TestRedoUnavailableAtNewestStep(t *testing.T) {
	l := NewLog(nil)
	l.Record(step("initial"), step("A"))

	if l.Redo() {
		t.Error("Redo() with no redo branch = true, want false")
	}
}

func TestCommitTruncatesRedoBranch(t *testing.T) {
	l := NewLog(nil)
	l.Record(step("initial"), step("A"))
	l.Undo()

	// Committing B from the undone position discards A.
	l.Record(step("initial"), step("B"))

	if l.Redo() {
		t.Error("Redo() after divergent commit = true, want false")
	}
	cur, _ := l.Current()
	if string(cur.Raster) != "B" {
		t.Errorf("Current() = %q, want B", cur.Raster)
	}
	if l.Len() != 2 {
		t.Errorf("Len() = %d, want 2", l.Len())
	}
}

func TestCapacityEvictsOldest(t *testing.T) {
	l := NewLog(nil)

	for i := 0; i < Capacity+10; i++ {
		l.Commit(step(fmt.Sprintf("s%d", i)))
	}

	if l.Len() != Capacity {
		t.Fatalf("Len() = %d, want %d", l.Len(), Capacity)
	}
	if l.Cursor() != Capacity-1 {
		t.Errorf("Cursor() = %d, want %d", l.Cursor(), Capacity-1)
	}

	// Undoing all the way down lands on the oldest retained step, not the
	// evicted ones.
	for l.Undo() {
	}
	cur, _ := l.Current()
	if string(cur.Raster) != "s10" {
		t.Errorf("oldest retained step = %q, want s10", cur.Raster)
	}
}

func TestUndoRedoRoundTripIsIdentical(t *testing.T) {
	var last Step
	l := NewLog(func(s Step) { last = s })

	objs := object.List{&object.Object{ID: "o1", Kind: object.KindText, Content: "hello"}}
	post := Step{Raster: []byte("A"), Objects: objs}
	l.Record(Step{Raster: []byte("initial")}, post)

	l.Undo()
	l.Redo()

	if !bytes.Equal(last.Raster, post.Raster) {
		t.Errorf("redo raster = %q, want %q", last.Raster, post.Raster)
	}
	if len(last.Objects) != 1 || last.Objects[0] != objs[0] {
		t.Error("redo object list does not share the committed snapshot")
	}
}

func TestResetDropsSteps(t *testing.T) {
	l := NewLog(nil)
	l.Record(step("initial"), step("A"))
	l.Reset()

	if l.Len() != 0 {
		t.Errorf("Len() after Reset = %d, want 0", l.Len())
	}
	if l.Undo() {
		t.Error("Undo() after Reset = true, want false")
	}
	if _, ok := l.Current(); ok {
		t.Error("Current() after Reset reported a step")
	}
}
