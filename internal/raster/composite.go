package raster

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/draw"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"drawboard/internal/object"
)

// Composite flattens the surface and the annotation objects into a single
// image for export. Object positions are taken as-is; annotations live in
// screen-pixel space and are stamped without rescaling.
func (e *Engine) Composite(objs object.List) *image.RGBA {
	out := image.NewRGBA(e.surface.Bounds())
	copy(out.Pix, e.surface.Pix)

	for _, o := range objs {
		DrawObject(out, o)
	}
	return out
}

// DrawObject stamps a single annotation object onto dst at the object's own
// coordinates.
func DrawObject(dst *image.RGBA, o *object.Object) {
	switch o.Kind {
	case object.KindText:
		drawText(dst, o)
	case object.KindImage:
		drawImageObject(dst, o)
	}
}

// drawText stamps a text object line by line with the fixed bitmap face.
func drawText(dst *image.RGBA, o *object.Object) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(o.Color),
		Face: face,
	}

	lineHeight := face.Metrics().Height.Ceil()
	y := int(o.Y) + face.Metrics().Ascent.Ceil()
	for _, line := range strings.Split(o.Content, "\n") {
		d.Dot = fixed.P(int(o.X), y)
		d.DrawString(line)
		y += lineHeight
	}
}

// drawImageObject decodes the object's base64 image reference and draws it at
// its natural size. Undecodable references are skipped.
func drawImageObject(dst *image.RGBA, o *object.Object) {
	raw, err := base64.StdEncoding.DecodeString(o.Content)
	if err != nil {
		return
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return
	}

	r := image.Rect(int(o.X), int(o.Y), int(o.X)+img.Bounds().Dx(), int(o.Y)+img.Bounds().Dy())
	draw.Draw(dst, r, img, img.Bounds().Min, draw.Over)
}
