package linalg

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/gmmtutor/pkg/errors"
)

func TestMat2_Inverse(t *testing.T) {
	m := Sym(2, 0.5, 1)
	inv, err := m.Inverse()
	require.NoError(t, err)
	assertMat2InDelta(t, Identity(), m.Mul(inv), 1e-12)
	assertMat2InDelta(t, Identity(), inv.Mul(m), 1e-12)
}

func TestMat2_InverseSingular(t *testing.T) {
	_, err := Sym(1, 1, 1).Inverse()
	require.Error(t, err)

	var dce *errors.DegenerateCovarianceError
	require.True(t, errors.As(err, &dce))
	assert.Equal(t, "Inverse", dce.Op)
	assert.Equal(t, 0.0, dce.Det)
}

func TestMat2_QuadForm(t *testing.T) {
	tests := []struct {
		name string
		m    Mat2
		p    Point
		want float64
	}{
		{"identity", Identity(), Point{3, 4}, 25},
		{"diagonal", Diag(2, 0.5), Point{1, 2}, 4},
		{"off-diagonal", Sym(1, 1, 1), Point{1, -1}, 0},
		{"origin", Sym(3, 1, 2), Point{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.m.QuadForm(tt.p), 1e-12)
		})
	}
}

func TestMat2_Rotate(t *testing.T) {
	m := Diag(4, 1)

	quarter := m.Rotate(math.Pi / 2)
	assertMat2InDelta(t, Diag(1, 4), quarter, 1e-12)

	// Rotation keeps trace and determinant.
	r := m.Rotate(math.Pi / 6)
	assert.InDelta(t, m.Trace(), r.Trace(), 1e-12)
	assert.InDelta(t, m.Det(), r.Det(), 1e-12)
	assert.True(t, r.IsSymmetric())

	e, err := EigenSym(r)
	require.NoError(t, err)
	assert.InDelta(t, math.Pi/6, math.Mod(e.Angle()+math.Pi, math.Pi), 1e-9)
}

func TestValidateCovariance(t *testing.T) {
	tests := []struct {
		name    string
		m       Mat2
		wantErr bool
	}{
		{"identity", Identity(), false},
		{"correlated", Sym(1, 0.9, 1), false},
		{"nearly symmetric", Mat2{{1, 0.3}, {0.3 + 1e-12, 1}}, false},
		{"singular", Sym(1, 1, 1), true},
		{"negative diagonal", Diag(-1, 1), true},
		{"zero", Mat2{}, true},
		{"asymmetric", Mat2{{1, 0.2}, {0.4, 1}}, true},
		{"NaN", Diag(math.NaN(), 1), true},
		{"tiny determinant", Diag(1e-8, 1e-8), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCovariance("test", tt.m)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsDegenerateCovariance(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSymDenseRoundTrip(t *testing.T) {
	m := Sym(2, -0.4, 3)
	got, err := FromSymmetric(m.SymDense())
	require.NoError(t, err)
	assert.Equal(t, m, got)
}

func TestCoords(t *testing.T) {
	points := []Point{{1, 2}, {3, 4}, {5, 6}}
	xs, ys := Coords(points)
	assert.Equal(t, []float64{1, 3, 5}, xs)
	assert.Equal(t, []float64{2, 4, 6}, ys)
	assert.Equal(t, points, FromCoords(xs, ys))
	assert.Len(t, FromCoords(xs, ys[:2]), 2)
}
