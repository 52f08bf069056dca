// Package recognize converts handwriting on the raster surface into text,
// backing the capture-region-to-text operation.
package recognize

import (
	"fmt"
	"image"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"gocv.io/x/gocv"

	"drawboard/pkg/geometry"
)

// Engine provides handwriting recognition using Tesseract.
type Engine struct {
	client *gosseract.Client
}

// NewEngine creates a new recognition engine.
func NewEngine() (*Engine, error) {
	client := gosseract.NewClient()

	if err := client.SetLanguage("eng"); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set OCR language: %w", err)
	}

	return &Engine{client: client}, nil
}

// Close releases recognition resources.
func (e *Engine) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}

// RecognizeRegion recognizes the text drawn within a region of the surface.
func (e *Engine) RecognizeRegion(img image.Image, bounds geometry.RectInt) (string, error) {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return "", fmt.Errorf("failed to convert surface: %w", err)
	}
	defer mat.Close()

	// Clamp bounds to the surface
	x, y, w, h := bounds.X, bounds.Y, bounds.Width, bounds.Height
	imgH, imgW := mat.Rows(), mat.Cols()
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	if w > imgW-x {
		w = imgW - x
	}
	if h > imgH-y {
		h = imgH - y
	}
	if w <= 0 || h <= 0 {
		return "", fmt.Errorf("invalid region bounds")
	}

	region := mat.Region(image.Rect(x, y, x+w, y+h))
	defer region.Close()

	processed := preprocess(region)
	defer processed.Close()

	buf, err := gocv.IMEncode(gocv.PNGFileExt, processed)
	if err != nil {
		return "", fmt.Errorf("failed to encode region: %w", err)
	}
	defer buf.Close()

	// PSM 6 = assume a single uniform block of text
	if err := e.client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		return "", fmt.Errorf("failed to set PSM: %w", err)
	}

	if err := e.client.SetImageFromBytes(buf.GetBytes()); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := e.client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}

	text = strings.TrimSpace(text)
	text = strings.Join(strings.Fields(text), " ")
	return text, nil
}

// preprocess prepares a surface region for recognition: grayscale, upscale
// when small, and binarize. Strokes are sparse over a transparent canvas,
// so Otsu thresholding separates them cleanly.
func preprocess(region gocv.Mat) gocv.Mat {
	gray := gocv.NewMat()
	gocv.CvtColor(region, &gray, gocv.ColorRGBToGray)

	// Upscale small regions for better recognition (target ~150px minimum)
	h, w := gray.Rows(), gray.Cols()
	minDim := h
	if w < h {
		minDim = w
	}
	if minDim > 0 && minDim < 150 {
		scale := 150.0 / float64(minDim)
		scaled := gocv.NewMat()
		gocv.Resize(gray, &scaled, image.Point{}, scale, scale, gocv.InterpolationCubic)
		gray.Close()
		gray = scaled
	}

	binary := gocv.NewMat()
	gocv.Threshold(gray, &binary, 0, 255, gocv.ThresholdBinaryInv+gocv.ThresholdOtsu)
	gray.Close()
	return binary
}
