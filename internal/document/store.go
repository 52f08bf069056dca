package document

import (
	"drawboard/internal/history"
	"drawboard/internal/object"
	"drawboard/internal/raster"
)

// Store owns the document list and the active-tab lifecycle. Switching tabs
// stashes the outgoing document's live state, repaints the incoming one, and
// resets history: undo never crosses a document boundary. That reset is a
// deliberate scope limitation, not an oversight.
type Store struct {
	engine *raster.Engine
	table  *object.Table
	log    *history.Log

	docs   []*Document
	active int

	onSwitch     func(*Document)
	onChange     func()
	onDecodeDone func(error)
}

// NewStore creates a store bound to the live raster engine, object table,
// and history log. It starts with a single empty document: the store never
// holds zero documents.
func NewStore(engine *raster.Engine, table *object.Table, log *history.Log) *Store {
	s := &Store{engine: engine, table: table, log: log}
	s.docs = []*Document{NewDocument(Config{})}
	return s
}

// OnSwitch registers a callback invoked after the active document changes.
func (s *Store) OnSwitch(fn func(*Document)) {
	s.onSwitch = fn
}

// OnChange registers a callback invoked after any document-set mutation.
func (s *Store) OnChange(fn func()) {
	s.onChange = fn
}

// OnDecodeDone registers a callback invoked when an incoming snapshot reload
// completes. A non-nil error means the decode failed; the canvas keeps its
// pre-reload content and the error is recoverable.
func (s *Store) OnDecodeDone(fn func(error)) {
	s.onDecodeDone = fn
}

// Documents returns the documents in tab order.
func (s *Store) Documents() []*Document {
	return s.docs
}

// Active returns the active document.
func (s *Store) Active() *Document {
	return s.docs[s.active]
}

// Load replaces the whole document set from a normalized board file and
// activates its recorded active document.
func (s *Store) Load(bf *BoardFile) {
	if bf == nil || len(bf.Documents) == 0 {
		return
	}
	s.docs = bf.Documents
	s.active = findDocument(s.docs, bf.ActiveID)
	if s.active < 0 {
		s.active = 0
	}
	s.applyActive()
}

// Create appends an empty document, makes it active, and resets history.
func (s *Store) Create(cfg Config) string {
	s.stashActive()
	doc := NewDocument(cfg)
	s.docs = append(s.docs, doc)
	s.active = len(s.docs) - 1
	s.applyActive()
	s.changed()
	return doc.ID
}

// SwitchTo activates the document with the given id. Switching to the active
// document is a no-op. The outgoing document's raster and objects are stashed
// first; the incoming snapshot is decoded asynchronously and painted once
// ready.
func (s *Store) SwitchTo(id string) bool {
	idx := findDocument(s.docs, id)
	if idx < 0 {
		return false
	}
	if idx == s.active {
		return true
	}
	s.stashActive()
	s.active = idx
	s.applyActive()
	s.changed()
	return true
}

// Delete removes the document with the given id. Deleting the last remaining
// document is rejected. If the active document is deleted, the first
// remaining one becomes active.
func (s *Store) Delete(id string) bool {
	if len(s.docs) <= 1 {
		return false
	}
	idx := findDocument(s.docs, id)
	if idx < 0 {
		return false
	}

	wasActive := idx == s.active
	s.docs = append(s.docs[:idx], s.docs[idx+1:]...)

	switch {
	case wasActive:
		s.active = 0
		s.applyActive()
	case idx < s.active:
		s.active--
	}
	s.changed()
	return true
}

// Reorder permutes the tab order. The id list must be a permutation of the
// current documents; raster and object state is untouched.
func (s *Store) Reorder(ids []string) bool {
	if len(ids) != len(s.docs) {
		return false
	}
	activeID := s.Active().ID
	next := make([]*Document, 0, len(ids))
	for _, id := range ids {
		idx := findDocument(s.docs, id)
		if idx < 0 {
			return false
		}
		for _, d := range next {
			if d.ID == id {
				return false
			}
		}
		next = append(next, s.docs[idx])
	}
	s.docs = next
	s.active = findDocument(s.docs, activeID)
	s.changed()
	return true
}

// BoardFile stashes the active document's live state and returns the whole
// set in its serialized shape. The returned records are detached copies:
// later stashes replace the snapshot and object list wholesale, so the copies
// stay stable and may be handed to another goroutine.
func (s *Store) BoardFile() *BoardFile {
	s.stashActive()
	docs := make([]*Document, len(s.docs))
	for i, d := range s.docs {
		c := *d
		docs[i] = &c
	}
	return &BoardFile{
		Version:   1,
		Documents: docs,
		ActiveID:  s.Active().ID,
	}
}

// stashActive captures the live raster and object list onto the active
// document. While a snapshot decode is still in flight the stored snapshot
// remains the authority: encoding the surface then would capture the cleared
// canvas instead of the document's content.
func (s *Store) stashActive() {
	doc := s.docs[s.active]
	doc.Objects = s.table.Objects()
	if s.engine.LoadPending() {
		return
	}
	doc.Snapshot = s.engine.EncodeSnapshot()
}

// applyActive clears the surface, kicks off the incoming snapshot decode,
// replaces the live object list, and resets history.
func (s *Store) applyActive() {
	doc := s.docs[s.active]
	s.engine.Clear()
	s.engine.LoadSnapshot(doc.Snapshot, func(err error) {
		if s.onDecodeDone != nil {
			s.onDecodeDone(err)
		}
	})
	s.table.Replace(doc.Objects)
	s.log.Reset()
	if s.onSwitch != nil {
		s.onSwitch(doc)
	}
}

func (s *Store) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}
