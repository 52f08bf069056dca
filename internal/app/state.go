// Package app provides application lifecycle management, component wiring,
// and events.
package app

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"drawboard/internal/document"
	"drawboard/internal/history"
	"drawboard/internal/interaction"
	"drawboard/internal/object"
	"drawboard/internal/persist"
	"drawboard/internal/raster"
)

// EventType identifies different application events.
type EventType int

const (
	EventBoardLoaded EventType = iota
	EventBoardChanged
	EventDocumentSwitched
	EventDocumentsChanged
	EventSelectionChanged
	EventSaveStatus
	EventDecodeFailed
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// State wires the drawing-board components together: the raster engine, the
// live object table, the history log, the document store, the interaction
// controller, and the debounced saver.
type State struct {
	mu sync.RWMutex

	Engine     *raster.Engine
	Table      *object.Table
	Log        *history.Log
	Store      *document.Store
	Controller *interaction.Controller
	Saver      *persist.Saver

	gateway persist.Gateway

	// Set when the last snapshot decode failed; cleared by the next
	// successful reload. The canvas keeps its pre-reload pixels meanwhile.
	decodeErr error

	listeners map[EventType][]EventListener
}

// NewState builds and wires a fresh application state on top of the given
// persistence gateway.
func NewState(gw persist.Gateway) *State {
	s := &State{
		gateway:   gw,
		listeners: make(map[EventType][]EventListener),
	}

	s.Engine = raster.NewEngine()
	s.Table = object.NewTable()

	s.Log = history.NewLog(func(step history.Step) {
		s.Table.Replace(step.Objects)
		s.Engine.LoadSnapshot(step.Raster, s.decodeDone)
	})

	s.Store = document.NewStore(s.Engine, s.Table, s.Log)
	s.Store.OnSwitch(func(doc *document.Document) {
		s.Emit(EventDocumentSwitched, doc)
	})
	s.Store.OnChange(func() {
		s.Emit(EventDocumentsChanged, nil)
		s.MarkChanged()
	})
	s.Store.OnDecodeDone(s.decodeDone)

	s.Controller = interaction.NewController(s.Engine, s.Table, s.Log)
	s.Controller.OnChange(s.MarkChanged)

	s.Saver = persist.NewSaver(gw, persist.DefaultDelay)
	s.Saver.OnStatus(func(status persist.Status) {
		s.Emit(EventSaveStatus, status)
	})

	return s
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// LoadBoard retrieves the stored document set and installs it. Loading never
// fails hard: gateway errors fall back to a fresh single-document board.
func (s *State) LoadBoard(ctx context.Context) {
	bf, err := s.gateway.Load(ctx)
	if err != nil {
		logrus.WithError(err).Error("board load failed, starting fresh")
		bf = document.Normalize(nil)
	}
	s.Store.Load(bf)
	s.Emit(EventBoardLoaded, bf)
}

// Flush saves immediately, bypassing the debounce, e.g. on shutdown.
func (s *State) Flush() {
	s.Saver.Flush()
}

// DecodeError returns the recoverable error from the last failed snapshot
// decode, or nil.
func (s *State) DecodeError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.decodeErr
}

// MarkChanged captures the board file, re-arms the persistence debounce, and
// announces the change. It must run on the UI loop: the capture reads live
// document state, and the saver only ever sees the detached copy.
func (s *State) MarkChanged() {
	s.Saver.Arm(s.Store.BoardFile())
	s.Emit(EventBoardChanged, nil)
}

func (s *State) decodeDone(err error) {
	if err != nil {
		s.decodeDoneErr(err)
		return
	}
	s.mu.Lock()
	s.decodeErr = nil
	s.mu.Unlock()
}

func (s *State) decodeDoneErr(err error) {
	logrus.WithError(err).Warn("raster snapshot decode failed, keeping previous pixels")
	s.mu.Lock()
	s.decodeErr = err
	s.mu.Unlock()
	s.Emit(EventDecodeFailed, err)
}

// DebounceDelay reports the quiet period used by the saver.
func DebounceDelay() time.Duration {
	return persist.DefaultDelay
}
