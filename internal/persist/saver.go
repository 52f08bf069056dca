package persist

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"drawboard/internal/document"
)

// Status is the save-channel state surfaced to the UI as a non-blocking
// indicator.
type Status int

const (
	StatusIdle Status = iota
	StatusSaving
	StatusSaved
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "Idle"
	case StatusSaving:
		return "Saving…"
	case StatusSaved:
		return "Saved"
	case StatusError:
		return "Error"
	default:
		return "Unknown"
	}
}

// DefaultDelay is the quiet period before a save fires.
const DefaultDelay = time.Second

// Saver debounces persistence. Arm captures the board file and restarts the
// quiet-period timer on every state change (trailing edge); a newer timer
// always supersedes an older one, and a failed save is retried only by the
// next natural debounce cycle. The timer goroutine only ever touches the
// captured board file, never live application state: callers pass a detached
// copy and status callbacks are delivered through the post executor.
type Saver struct {
	mu       sync.Mutex
	gw       Gateway
	delay    time.Duration
	timer    *time.Timer
	status   Status
	pending  *document.BoardFile
	post     func(func())
	onStatus func(Status)
}

// NewSaver creates a saver. Status callbacks run directly on the saving
// goroutine until SetPost installs a marshaling executor.
func NewSaver(gw Gateway, delay time.Duration) *Saver {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Saver{gw: gw, delay: delay, post: func(fn func()) { fn() }}
}

// SetPost replaces the executor used to deliver status callbacks. The UI
// installs one that marshals onto its event loop.
func (s *Saver) SetPost(post func(func())) {
	if post == nil {
		return
	}
	s.mu.Lock()
	s.post = post
	s.mu.Unlock()
}

// OnStatus registers a status observer.
func (s *Saver) OnStatus(fn func(Status)) {
	s.mu.Lock()
	s.onStatus = fn
	s.mu.Unlock()
}

// Status returns the current save-channel status.
func (s *Saver) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Arm stores the board file to save and restarts the debounce timer. bf must
// be detached from live state: the saver hands it to the timer goroutine.
func (s *Saver) Arm(bf *document.BoardFile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if bf != nil {
		s.pending = bf
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, s.flush)
}

// Flush cancels any pending timer and saves the captured board file
// immediately, e.g. on shutdown. With nothing pending it is a no-op.
func (s *Saver) Flush() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
	s.flush()
}

func (s *Saver) flush() {
	s.mu.Lock()
	bf := s.pending
	s.pending = nil
	s.mu.Unlock()
	if bf == nil {
		return
	}

	s.setStatus(StatusSaving)
	if err := s.gw.Save(context.Background(), bf); err != nil {
		logrus.WithError(err).Error("board save failed")
		// Keep the failed snapshot so the next debounce cycle retries it,
		// unless a newer one arrived during the save.
		s.mu.Lock()
		if s.pending == nil {
			s.pending = bf
		}
		s.mu.Unlock()
		s.setStatus(StatusError)
		return
	}
	s.setStatus(StatusSaved)
}

func (s *Saver) setStatus(status Status) {
	s.mu.Lock()
	s.status = status
	fn := s.onStatus
	post := s.post
	s.mu.Unlock()
	if fn != nil {
		post(func() { fn(status) })
	}
}
