package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gmmtutor/core/linalg"
	"github.com/YuminosukeSato/gmmtutor/pkg/errors"
	"github.com/YuminosukeSato/gmmtutor/pkg/log"
	"github.com/YuminosukeSato/gmmtutor/stats/gaussian"
)

// 3つの十分に離れたクラスタを生成する
func threeBlobs(t *testing.T, seed uint64) gaussian.Dataset {
	t.Helper()
	ds, err := gaussian.GenerateDataset(gaussian.NewSource(seed), []gaussian.ClusterSpec{
		{N: 80, Mean: linalg.Point{X: -4, Y: -4}, Cov: linalg.Diag(0.3, 0.3)},
		{N: 80, Mean: linalg.Point{X: 0, Y: 4}, Cov: linalg.Diag(0.3, 0.3)},
		{N: 80, Mean: linalg.Point{X: 4, Y: -1}, Cov: linalg.Diag(0.3, 0.3)},
	})
	require.NoError(t, err)
	return ds
}

// 同じクラスタのサンプルは同じラベル、異なるクラスタは異なるラベルになることを確認
func assertSamePartition(t *testing.T, want, got []int) {
	t.Helper()
	require.Len(t, got, len(want))
	mapping := map[int]int{}
	used := map[int]bool{}
	for i := range want {
		if m, ok := mapping[want[i]]; ok {
			assert.Equalf(t, m, got[i], "sample %d", i)
			continue
		}
		assert.Falsef(t, used[got[i]], "label %d reused for a second cluster", got[i])
		mapping[want[i]] = got[i]
		used[got[i]] = true
	}
}

func TestKMeans_SeparatedBlobs(t *testing.T) {
	for _, init := range []string{"k-means++", "random"} {
		t.Run(init, func(t *testing.T) {
			ds := threeBlobs(t, 1)
			km := NewKMeans(
				WithKMeansNClusters(3),
				WithKMeansInit(init),
				WithKMeansNInit(5),
				WithKMeansRandomState(42),
			)
			require.NoError(t, km.FitPoints(ds.Points))

			assert.True(t, km.IsFitted())
			assertSamePartition(t, ds.Labels, km.Labels())
			assert.Greater(t, km.NIterations(), 0)
			assert.Less(t, km.Inertia(), 240*2*0.3*1.5)

			centers := km.CenterPoints()
			require.Len(t, centers, 3)
			for _, truth := range ds.ClusterMeans() {
				best := 1e9
				for _, c := range centers {
					if d := c.Sub(truth).Norm(); d < best {
						best = d
					}
				}
				assert.Less(t, best, 0.3)
			}
		})
	}
}

func TestKMeans_PredictMatchesLabels(t *testing.T) {
	ds := threeBlobs(t, 2)
	km := NewKMeans(WithKMeansNClusters(3), WithKMeansRandomState(7))
	require.NoError(t, km.FitPoints(ds.Points))

	labels, err := km.PredictPoints(ds.Points)
	require.NoError(t, err)
	assert.Equal(t, km.Labels(), labels)

	dist, err := km.Transform(pointsMatrix(ds.Points[:5]))
	require.NoError(t, err)
	r, c := dist.Dims()
	assert.Equal(t, 5, r)
	assert.Equal(t, 3, c)
	for i := 0; i < r; i++ {
		assert.Equal(t, labels[i], argmin(mat.Row(nil, i, dist)))
	}
}

func argmin(xs []float64) int {
	best := 0
	for i, x := range xs {
		if x < xs[best] {
			best = i
		}
	}
	return best
}

func TestKMeans_Reproducible(t *testing.T) {
	ds := threeBlobs(t, 3)
	a := NewKMeans(WithKMeansNClusters(3), WithKMeansRandomState(11))
	b := NewKMeans(WithKMeansNClusters(3), WithKMeansRandomState(11))
	require.NoError(t, a.FitPoints(ds.Points))
	require.NoError(t, b.FitPoints(ds.Points))
	assert.Equal(t, a.ClusterCenters(), b.ClusterCenters())
}

func TestKMeans_Errors(t *testing.T) {
	km := NewKMeans(WithKMeansNClusters(3))

	_, err := km.Predict(mat.NewDense(1, 2, []float64{0, 0}))
	var nfe *errors.NotFittedError
	assert.True(t, errors.As(err, &nfe))

	err = km.Fit(mat.NewDense(2, 2, []float64{0, 0, 1, 1}), nil)
	var ve *errors.ValidationError
	assert.True(t, errors.As(err, &ve))

	err = NewKMeans(WithKMeansInit("forgy")).Fit(mat.NewDense(10, 2, nil), nil)
	assert.True(t, errors.As(err, &ve))

	require.NoError(t, km.Fit(mat.NewDense(4, 2, []float64{0, 0, 0, 1, 5, 5, 9, 9}), nil))
	_, err = km.Predict(mat.NewDense(1, 3, nil))
	var de *errors.DimensionError
	assert.True(t, errors.As(err, &de))
}

// 重複した点だけのデータでもk-means++が破綻しない
func TestKMeans_DuplicatePoints(t *testing.T) {
	points := make([]linalg.Point, 10)
	km := NewKMeans(WithKMeansNClusters(2), WithKMeansRandomState(1))
	require.NoError(t, km.FitPoints(points))
	assert.Equal(t, 0.0, km.Inertia())
}

func TestKMeans_LogsFit(t *testing.T) {
	logger, _ := log.NewTestLogger(log.LevelDebug)
	ds := threeBlobs(t, 4)
	km := NewKMeans(WithKMeansNClusters(3), WithKMeansRandomState(1), WithKMeansLogger(logger))
	require.NoError(t, km.FitPoints(ds.Points))
	assert.True(t, logger.ContainsMessage("KMeans fitted"))
	assert.True(t, logger.ContainsField(log.ClustersKey, 3.0))
}
