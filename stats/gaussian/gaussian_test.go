package gaussian

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distmv"

	"github.com/YuminosukeSato/gmmtutor/core/linalg"
	"github.com/YuminosukeSato/gmmtutor/pkg/errors"
)

// scriptedSource replays a fixed sequence of uniform draws.
type scriptedSource struct {
	values []float64
	pos    int
}

func (s *scriptedSource) Float64() float64 {
	v := s.values[s.pos%len(s.values)]
	s.pos++
	return v
}

func TestBoxMuller_Scripted(t *testing.T) {
	// u1 = 1 - 0.5, u2 = 0.25 → angle π/2
	src := &scriptedSource{values: []float64{0.5, 0.25}}
	z1, z2 := BoxMuller(src)

	r := math.Sqrt(2 * math.Ln2)
	assert.InDelta(t, 0.0, z1, 1e-12)
	assert.InDelta(t, r, z2, 1e-12)
	assert.Equal(t, 2, src.pos)
}

func TestBoxMuller_ZeroDrawIsFinite(t *testing.T) {
	src := &scriptedSource{values: []float64{0, 0}}
	z1, z2 := BoxMuller(src)
	assert.False(t, math.IsInf(z1, 0) || math.IsNaN(z1))
	assert.False(t, math.IsInf(z2, 0) || math.IsNaN(z2))
}

func TestSample_ExactValues(t *testing.T) {
	src := &scriptedSource{values: []float64{0.5, 0.25, 0.5, 0.5}}
	mean := linalg.Point{X: 1, Y: 2}
	cov := linalg.Diag(4, 1)

	points, err := Sample(src, 2, mean, cov)
	require.NoError(t, err)
	require.Len(t, points, 2)

	r := math.Sqrt(2 * math.Ln2)
	// First pair: z = (0, r); sd = (2, 1) along (1,0) and (0,1).
	assert.InDelta(t, 1.0, points[0].X, 1e-12)
	assert.InDelta(t, 2.0+r, points[0].Y, 1e-12)
	// Second pair: angle π → z = (-r, 0).
	assert.InDelta(t, 1.0-2*r, points[1].X, 1e-12)
	assert.InDelta(t, 2.0, points[1].Y, 1e-12)
}

func TestSample_RotatedBasis(t *testing.T) {
	// Major axis along (1,1)/√2 with variance 3, minor with variance 1.
	cov := linalg.Sym(2, 1, 2)
	src := &scriptedSource{values: []float64{1 - math.Exp(-0.5), 0}} // z = (1, 0)
	points, err := Sample(src, 1, linalg.Point{}, cov)
	require.NoError(t, err)

	want := math.Sqrt(3) / math.Sqrt2
	assert.InDelta(t, want, math.Abs(points[0].X), 1e-12)
	assert.InDelta(t, points[0].X, points[0].Y, 1e-12)
}

func TestSample_EdgeCases(t *testing.T) {
	src := NewSource(1)

	points, err := Sample(src, 0, linalg.Point{}, linalg.Identity())
	require.NoError(t, err)
	assert.Empty(t, points)
	assert.NotNil(t, points)

	_, err = Sample(src, -1, linalg.Point{}, linalg.Identity())
	var ve *errors.ValidationError
	assert.True(t, errors.As(err, &ve))

	_, err = Sample(nil, 3, linalg.Point{}, linalg.Identity())
	assert.Error(t, err)

	_, err = Sample(src, 3, linalg.Point{}, linalg.Sym(1, 2, 1))
	assert.True(t, errors.IsDegenerateCovariance(err), "indefinite covariance should be rejected, got %v", err)
}

func TestSample_Moments(t *testing.T) {
	src := NewSource(42)
	mean := linalg.Point{X: -1, Y: 3}
	cov := linalg.Sym(2, 0.8, 1)

	points, err := Sample(src, 40000, mean, cov)
	require.NoError(t, err)

	xs, ys := linalg.Coords(points)
	assert.InDelta(t, mean.X, stat.Mean(xs, nil), 0.05)
	assert.InDelta(t, mean.Y, stat.Mean(ys, nil), 0.05)
	assert.InDelta(t, cov[0][0], stat.Variance(xs, nil), 0.08)
	assert.InDelta(t, cov[1][1], stat.Variance(ys, nil), 0.05)
	assert.InDelta(t, cov[0][1], stat.Covariance(xs, ys, nil), 0.05)
}

func TestSample_SeedReproducible(t *testing.T) {
	a, err := Sample(NewSource(7), 20, linalg.Point{}, linalg.Sym(1, 0.3, 2))
	require.NoError(t, err)
	b, err := Sample(NewSource(7), 20, linalg.Point{}, linalg.Sym(1, 0.3, 2))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestPDF_Normalization(t *testing.T) {
	const (
		lo, hi = -10.0, 10.0
		step   = 0.05
	)
	d, err := NewDensity(linalg.Point{}, linalg.Identity())
	require.NoError(t, err)

	total := 0.0
	for x := lo + step/2; x < hi; x += step {
		for y := lo + step/2; y < hi; y += step {
			total += d.PDF(linalg.Point{X: x, Y: y})
		}
	}
	assert.InDelta(t, 1.0, total*step*step, 1e-3)
}

func TestPDF_MatchesDistmv(t *testing.T) {
	cases := []struct {
		mean linalg.Point
		cov  linalg.Mat2
		x    linalg.Point
	}{
		{linalg.Point{}, linalg.Identity(), linalg.Point{X: 0.5, Y: -0.3}},
		{linalg.Point{X: 1, Y: -2}, linalg.Sym(2, 0.6, 0.8), linalg.Point{X: 0, Y: 0}},
		{linalg.Point{X: 3, Y: 0}, linalg.Sym(1, -0.7, 1), linalg.Point{X: 2.5, Y: 1}},
	}
	for _, c := range cases {
		normal, ok := distmv.NewNormal([]float64{c.mean.X, c.mean.Y}, c.cov.SymDense(), nil)
		require.True(t, ok)

		p, err := PDF(c.x, c.mean, c.cov)
		require.NoError(t, err)
		assert.InDelta(t, normal.Prob([]float64{c.x.X, c.x.Y}), p, 1e-12)

		lp, err := LogPDF(c.x, c.mean, c.cov)
		require.NoError(t, err)
		assert.InDelta(t, normal.LogProb([]float64{c.x.X, c.x.Y}), lp, 1e-10)
	}
}

func TestPDF_SymmetricComponents(t *testing.T) {
	cov := linalg.Diag(0.5, 2)
	left, err := PDF(linalg.Point{}, linalg.Point{X: -2}, cov)
	require.NoError(t, err)
	right, err := PDF(linalg.Point{}, linalg.Point{X: 2}, cov)
	require.NoError(t, err)
	assert.Equal(t, left, right)
}

func TestPDF_DegenerateCovariance(t *testing.T) {
	_, err := PDF(linalg.Point{}, linalg.Point{}, linalg.Sym(1, 1, 1))
	require.Error(t, err)

	var dce *errors.DegenerateCovarianceError
	require.True(t, errors.As(err, &dce))
	assert.Equal(t, "PDF", dce.Op)

	_, err = Mahalanobis(linalg.Point{}, linalg.Point{}, linalg.Mat2{})
	assert.True(t, errors.IsDegenerateCovariance(err))
}

func TestMahalanobis(t *testing.T) {
	d, err := Mahalanobis(linalg.Point{X: 3, Y: 4}, linalg.Point{}, linalg.Identity())
	require.NoError(t, err)
	assert.InDelta(t, 5.0, d, 1e-12)

	d, err = Mahalanobis(linalg.Point{X: 2}, linalg.Point{}, linalg.Diag(4, 1))
	require.NoError(t, err)
	assert.InDelta(t, 1.0, d, 1e-12)
}

func TestRandomCovariance_AlwaysValid(t *testing.T) {
	src := NewSource(3)
	for i := 0; i < 1000; i++ {
		cov := RandomCovariance(src)
		require.NoError(t, linalg.ValidateCovariance("test", cov))
		assert.GreaterOrEqual(t, cov[0][0], 0.5)
		assert.Less(t, cov[0][0], 2.0)
		assert.LessOrEqual(t, math.Abs(cov[0][1]), 0.9*math.Sqrt(cov[0][0]*cov[1][1]))
	}
}

func TestRandomClusterSpec_Ranges(t *testing.T) {
	src := NewSource(5)
	for _, s := range RandomClusterSpecs(src, 200) {
		assert.GreaterOrEqual(t, s.N, 50)
		assert.Less(t, s.N, 100)
		assert.GreaterOrEqual(t, s.Mean.X, -2.0)
		assert.Less(t, s.Mean.X, 2.0)
		assert.GreaterOrEqual(t, s.Mean.Y, -2.0)
		assert.Less(t, s.Mean.Y, 2.0)
	}
}

func TestGenerateDataset(t *testing.T) {
	specs := ThreeClusterSpecs()
	ds, err := GenerateDataset(NewSource(11), specs)
	require.NoError(t, err)

	assert.Equal(t, 300, ds.Len())
	assert.Equal(t, 3, ds.K)
	require.Len(t, ds.Labels, 300)
	assert.Equal(t, 0, ds.Labels[0])
	assert.Equal(t, 1, ds.Labels[100])
	assert.Equal(t, 2, ds.Labels[299])

	for k, m := range ds.ClusterMeans() {
		assert.InDeltaf(t, specs[k].Mean.X, m.X, 0.35, "cluster %d", k)
		assert.InDeltaf(t, specs[k].Mean.Y, m.Y, 0.35, "cluster %d", k)
	}
}

func TestGenerateDataset_Errors(t *testing.T) {
	_, err := GenerateDataset(NewSource(1), nil)
	assert.Error(t, err)

	_, err = GenerateDataset(NewSource(1), []ClusterSpec{
		{N: 10, Cov: linalg.Identity()},
		{N: 10, Cov: linalg.Sym(1, 3, 1)},
	})
	require.Error(t, err)
	assert.True(t, errors.IsDegenerateCovariance(err))
	assert.Contains(t, err.Error(), "cluster 1")
}

func TestClusterMeans_EmptyCluster(t *testing.T) {
	ds := Dataset{Points: []linalg.Point{{X: 1, Y: 1}}, Labels: []int{0}, K: 2}
	means := ds.ClusterMeans()
	assert.Equal(t, linalg.Point{X: 1, Y: 1}, means[0])
	assert.Equal(t, linalg.Point{}, means[1])
}
