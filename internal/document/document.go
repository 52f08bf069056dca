// Package document manages the tabbed collection of drawing documents: one
// raster snapshot plus one object list per tab, active-tab switching, and
// the serialized board-file shape the persistence gateway stores.
package document

import (
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/oklog/ulid/v2"

	"drawboard/internal/object"
)

// Document is one independent drawing workspace. The store owns every
// document exclusively; the snapshot and object list are refreshed whenever
// the active document's state is committed or switched away from.
type Document struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
	Emoji string `json:"emoji,omitempty"`

	// Snapshot is the PNG-encoded raster, nil until first committed.
	Snapshot []byte `json:"snapshot,omitempty"`

	Objects object.List `json:"objects,omitempty"`
}

// Config carries the display attributes for a new document.
type Config struct {
	Name  string
	Color string
	Emoji string
}

// BoardFile is the serialized document set exchanged with the persistence
// gateway.
type BoardFile struct {
	Version   int         `json:"version"`
	Documents []*Document `json:"documents"`
	ActiveID  string      `json:"active_id,omitempty"`
}

// NewDocument creates an empty document with a fresh id.
func NewDocument(cfg Config) *Document {
	name := cfg.Name
	if name == "" {
		name = "Untitled"
	}
	return &Document{
		ID:    ulid.Make().String(),
		Name:  name,
		Color: cfg.Color,
		Emoji: cfg.Emoji,
	}
}

// Normalize coerces loaded payload bytes into the current board-file shape.
// It accepts the current multi-document form, the legacy single-raster-string
// form, and anything malformed, which collapses to a fresh one-document
// board. It never fails: loading problems must not block editing.
func Normalize(data []byte) *BoardFile {
	if len(data) > 0 {
		var bf BoardFile
		if err := json.Unmarshal(data, &bf); err == nil && len(bf.Documents) > 0 {
			for _, d := range bf.Documents {
				if d.ID == "" {
					d.ID = ulid.Make().String()
				}
				if d.Name == "" {
					d.Name = "Untitled"
				}
			}
			if findDocument(bf.Documents, bf.ActiveID) < 0 {
				bf.ActiveID = bf.Documents[0].ID
			}
			return &bf
		}

		// Legacy payload: a bare JSON string holding the encoded raster of a
		// single unnamed board.
		var legacy string
		if err := json.Unmarshal(data, &legacy); err == nil && legacy != "" {
			doc := NewDocument(Config{})
			doc.Snapshot = decodeLegacyRaster(legacy)
			return &BoardFile{Version: 1, Documents: []*Document{doc}, ActiveID: doc.ID}
		}
	}

	doc := NewDocument(Config{})
	return &BoardFile{Version: 1, Documents: []*Document{doc}, ActiveID: doc.ID}
}

// decodeLegacyRaster unwraps a legacy raster string, tolerating a data-URL
// prefix. An undecodable string yields a nil snapshot (blank board).
func decodeLegacyRaster(s string) []byte {
	if i := strings.Index(s, ";base64,"); i >= 0 {
		s = s[i+len(";base64,"):]
	}
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil
	}
	return raw
}

func findDocument(docs []*Document, id string) int {
	for i, d := range docs {
		if d.ID == id {
			return i
		}
	}
	return -1
}
