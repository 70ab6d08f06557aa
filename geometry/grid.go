package geometry

import (
	"github.com/YuminosukeSato/gmmtutor/core/linalg"
	"github.com/YuminosukeSato/gmmtutor/core/parallel"
)

// gridRowThreshold is the number of rows below which a grid is evaluated
// on the calling goroutine.
const gridRowThreshold = 16

// Grid holds values over a rectangular lattice. Z[j][i] is the value at
// (X[i], Y[j]), so each row of Z shares one y coordinate.
type Grid struct {
	X []float64   `json:"x"`
	Y []float64   `json:"y"`
	Z [][]float64 `json:"z"`
}

// Window is an axis-aligned plotting range sampled with N points per axis.
type Window struct {
	XMin, XMax float64
	YMin, YMax float64
	N          int
}

// SquareWindow returns the window [lo, hi]² with n points per axis.
func SquareWindow(lo, hi float64, n int) Window {
	return Window{XMin: lo, XMax: hi, YMin: lo, YMax: hi, N: n}
}

// Axes returns the sample coordinates of w.
func (w Window) Axes() (xs, ys []float64) {
	return Linspace(w.XMin, w.XMax, w.N), Linspace(w.YMin, w.YMax, w.N)
}

// EvaluateGrid evaluates f at every lattice point of w. Rows are evaluated
// concurrently, so f must be safe for concurrent use.
func EvaluateGrid(w Window, f func(linalg.Point) float64) Grid {
	xs, ys := w.Axes()
	z := make([][]float64, len(ys))
	parallel.ParallelizeWithThreshold(len(ys), gridRowThreshold, func(start, end int) {
		for j := start; j < end; j++ {
			row := make([]float64, len(xs))
			for i, x := range xs {
				row[i] = f(linalg.Point{X: x, Y: ys[j]})
			}
			z[j] = row
		}
	})
	return Grid{X: xs, Y: ys, Z: z}
}

// ClassifyGrid labels every lattice point of w with classify. The labels
// are stored as float64 so the grid can be drawn as a heatmap.
func ClassifyGrid(w Window, classify func(linalg.Point) int) Grid {
	return EvaluateGrid(w, func(p linalg.Point) float64 {
		return float64(classify(p))
	})
}

// Range returns the minimum and maximum of g.Z.
func (g Grid) Range() (lo, hi float64) {
	first := true
	for _, row := range g.Z {
		for _, v := range row {
			if first {
				lo, hi = v, v
				first = false
				continue
			}
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}
	return lo, hi
}
