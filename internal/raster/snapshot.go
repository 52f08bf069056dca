package raster

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"

	xdraw "golang.org/x/image/draw"
)

// EncodeSnapshot serializes the current surface as PNG. The result is the
// opaque raster snapshot stored on documents and history steps.
func (e *Engine) EncodeSnapshot() []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, e.surface); err != nil {
		// Encoding an in-memory RGBA image only fails on writer errors,
		// which a bytes.Buffer cannot produce.
		return nil
	}
	return buf.Bytes()
}

// DecodeSnapshot decodes a PNG snapshot into a logical-resolution surface,
// rescaling if the stored bitmap has different bounds.
func DecodeSnapshot(data []byte) (*image.RGBA, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	dst := blankSurface()
	if img.Bounds().Dx() == LogicalWidth && img.Bounds().Dy() == LogicalHeight {
		draw.Draw(dst, dst.Bounds(), img, img.Bounds().Min, draw.Src)
	} else {
		xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	}
	return dst, nil
}

// LoadSnapshot asynchronously decodes data and paints it once decoded. A nil
// or empty snapshot paints a blank surface immediately. Each call supersedes
// any decode still in flight: a stale completion is discarded, so switching
// documents or undoing while a decode is pending can never paint old pixels
// over newer state. On decode failure the surface keeps its pre-reload
// content and the error is reported through done.
func (e *Engine) LoadSnapshot(data []byte, done func(error)) {
	e.loadGen++
	gen := e.loadGen

	if len(data) == 0 {
		e.loadPending = false
		e.surface = blankSurface()
		e.inStroke = false
		e.preStroke = nil
		e.repaint()
		if done != nil {
			done(nil)
		}
		return
	}

	e.loadPending = true
	e.spawn(func() {
		img, err := DecodeSnapshot(data)
		e.post(func() {
			if gen != e.loadGen {
				return // superseded by a newer reload, clear, or stroke
			}
			e.loadPending = false
			if err != nil {
				if done != nil {
					done(err)
				}
				return
			}
			e.surface = img
			e.inStroke = false
			e.preStroke = nil
			e.repaint()
			if done != nil {
				done(nil)
			}
		})
	})
}
