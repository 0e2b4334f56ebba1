package fluid

import (
	"errors"
	"fmt"
)

// ErrOutOfRange is returned when a query lies outside the reference sequence.
// Callers clamp before interpolating.
var ErrOutOfRange = errors.New("fluid: query outside table")

// FindBetween returns i such that x lies between xs[i] and xs[i+1].
// xs may be increasing or decreasing.
func FindBetween(x float64, xs []float64) (int, error) {
	for i := 0; i < len(xs)-1; i++ {
		if (xs[i] <= x && x <= xs[i+1]) || (xs[i] >= x && x >= xs[i+1]) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%v in %v: %w", x, xs, ErrOutOfRange)
}

// Interp1D linearly interpolates ys at x. Exact knots return the stored value.
func Interp1D(x float64, xs, ys []float64) (float64, error) {
	if len(xs) != len(ys) {
		return 0, fmt.Errorf("fluid: %d knots, %d values", len(xs), len(ys))
	}
	i, err := FindBetween(x, xs)
	if err != nil {
		return 0, err
	}
	return linearInterp(x, xs[i], ys[i], xs[i+1], ys[i+1]), nil
}

func linearInterp(x, x1, y1, x3, y3 float64) float64 {
	switch {
	case x == x1 || x1 == x3:
		return y1
	case x == x3:
		return y3
	}
	return (x-x1)*(y3-y1)/(x3-x1) + y1
}

// Interp2D interpolates z at (x, y) where z[i][j] is the value at (xs[i], ys[j]).
// Both bracketing columns are interpolated along x, then the two results along y.
func Interp2D(x, y float64, xs, ys []float64, z [][]float64) (float64, error) {
	if len(z) != len(xs) {
		return 0, fmt.Errorf("fluid: %d rows for %d knots", len(z), len(xs))
	}
	for i := range z {
		if len(z[i]) != len(ys) {
			return 0, fmt.Errorf("fluid: row %d has %d columns for %d knots", i, len(z[i]), len(ys))
		}
	}
	j, err := FindBetween(y, ys)
	if err != nil {
		return 0, err
	}
	z1, err := Interp1D(x, xs, column(z, j))
	if err != nil {
		return 0, err
	}
	z2, err := Interp1D(x, xs, column(z, j+1))
	if err != nil {
		return 0, err
	}
	return Interp1D(y, ys[j:j+2], []float64{z1, z2})
}

func column(z [][]float64, j int) []float64 {
	col := make([]float64, len(z))
	for i := range z {
		col[i] = z[i][j]
	}
	return col
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
