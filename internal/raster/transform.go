package raster

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"drawboard/pkg/geometry"
)

// displayTransform returns the affine transform mapping display coordinates
// onto the logical canvas, fitted from corner correspondences of the two
// rectangles.
func displayTransform(displayW, displayH float64) (geometry.AffineTransform, error) {
	src := []geometry.Point2D{
		{X: 0, Y: 0},
		{X: displayW, Y: 0},
		{X: 0, Y: displayH},
		{X: displayW, Y: displayH},
	}
	dst := []geometry.Point2D{
		{X: 0, Y: 0},
		{X: LogicalWidth, Y: 0},
		{X: 0, Y: LogicalHeight},
		{X: LogicalWidth, Y: LogicalHeight},
	}
	return fitAffine(src, dst)
}

// fitAffine solves the least-squares affine mapping from src points to dst
// points. Each correspondence contributes two rows to the design matrix:
//
//	[x y 1 0 0 0] [a b tx c d ty]^T = x'
//	[0 0 0 x y 1]                   = y'
func fitAffine(src, dst []geometry.Point2D) (geometry.AffineTransform, error) {
	if len(src) != len(dst) || len(src) < 3 {
		return geometry.Identity(), fmt.Errorf("affine fit needs at least 3 point pairs, got %d/%d", len(src), len(dst))
	}

	n := len(src)
	a := mat.NewDense(2*n, 6, nil)
	b := mat.NewVecDense(2*n, nil)

	for i, s := range src {
		a.SetRow(2*i, []float64{s.X, s.Y, 1, 0, 0, 0})
		a.SetRow(2*i+1, []float64{0, 0, 0, s.X, s.Y, 1})
		b.SetVec(2*i, dst[i].X)
		b.SetVec(2*i+1, dst[i].Y)
	}

	var x mat.VecDense
	if err := x.SolveVec(a, b); err != nil {
		return geometry.Identity(), fmt.Errorf("affine fit: %w", err)
	}

	return geometry.AffineTransform{
		A: x.AtVec(0), B: x.AtVec(1), TX: x.AtVec(2),
		C: x.AtVec(3), D: x.AtVec(4), TY: x.AtVec(5),
	}, nil
}
