// Package object defines the annotation objects placed over the raster surface
// and the mutations each kind permits.
package object

import (
	"image/color"

	"github.com/oklog/ulid/v2"

	"drawboard/pkg/geometry"
)

// ID uniquely identifies an annotation object.
type ID string

// Kind is the variant tag of an annotation object.
type Kind int

const (
	KindText Kind = iota
	KindImage
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindImage:
		return "image"
	default:
		return "unknown"
	}
}

// Size limits and defaults for text objects, in screen pixels.
const (
	MinTextWidth      = 50.0
	MinTextHeight     = 30.0
	DefaultTextWidth  = 250.0
	DefaultTextHeight = 100.0
)

// HandleSize is the edge length of the resize handle at a text object's
// bottom-right corner, in screen pixels.
const HandleSize = 12.0

// Object is a single annotation positioned over the raster surface.
// Positions and sizes are in screen-pixel space, not logical canvas space:
// annotations do not scale with the window, while raster strokes do.
type Object struct {
	ID   ID   `json:"id"`
	Kind Kind `json:"kind"`

	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w,omitempty"`
	H float64 `json:"h,omitempty"`

	// Content holds the literal text for text objects, or an encoded image
	// reference for image objects.
	Content string `json:"content"`

	// Text styling. Unused for image objects.
	Color    color.RGBA `json:"color,omitempty"`
	FontSize float64    `json:"font_size,omitempty"`
}

// Bounds returns the object's screen-space bounding rectangle.
func (o *Object) Bounds() geometry.Rect {
	return geometry.NewRect(o.X, o.Y, o.W, o.H)
}

// HandleBounds returns the resize handle rectangle for text objects.
// Image objects are not resizable and have no handle.
func (o *Object) HandleBounds() (geometry.Rect, bool) {
	switch o.Kind {
	case KindText:
		br := o.Bounds().BottomRight()
		return geometry.NewRect(br.X-HandleSize, br.Y-HandleSize, HandleSize, HandleSize), true
	case KindImage:
		return geometry.Rect{}, false
	}
	return geometry.Rect{}, false
}

// List is an ordered, immutable snapshot of annotation objects. Mutations go
// through a Table, which replaces changed entries instead of editing them in
// place, so older snapshots held by the history log stay valid and unchanged
// objects are shared rather than cloned.
type List []*Object

// Find returns the object with the given id, or nil.
func (l List) Find(id ID) *Object {
	for _, o := range l {
		if o.ID == id {
			return o
		}
	}
	return nil
}

// IDs returns the ids in list order.
func (l List) IDs() []ID {
	ids := make([]ID, len(l))
	for i, o := range l {
		ids[i] = o.ID
	}
	return ids
}

// NewID returns a fresh object id.
func NewID() ID {
	return ID(ulid.Make().String())
}
