package mixture

import (
	"github.com/YuminosukeSato/gmmtutor/core/linalg"
	"github.com/YuminosukeSato/gmmtutor/pkg/errors"
	"github.com/YuminosukeSato/gmmtutor/sklearn/cluster"
	"github.com/YuminosukeSato/gmmtutor/stats/gaussian"
)

// DefaultPerturbation is the width of the uniform offset applied to each
// coordinate by PerturbedMeans.
const DefaultPerturbation = 1.0

// UniformWeights returns k weights of 1/k.
func UniformWeights(k int) []float64 {
	w := make([]float64, k)
	for i := range w {
		w[i] = 1 / float64(k)
	}
	return w
}

// IdentityCovariances returns k identity matrices.
func IdentityCovariances(k int) []linalg.Mat2 {
	c := make([]linalg.Mat2, k)
	for i := range c {
		c[i] = linalg.Identity()
	}
	return c
}

// PerturbedMeans offsets every coordinate of means by a uniform draw from
// [-spread/2, spread/2).
func PerturbedMeans(src gaussian.Source, means []linalg.Point, spread float64) []linalg.Point {
	out := make([]linalg.Point, len(means))
	for i, m := range means {
		out[i] = linalg.Point{
			X: m.X + gaussian.Uniform(src, -spread/2, spread/2),
			Y: m.Y + gaussian.Uniform(src, -spread/2, spread/2),
		}
	}
	return out
}

// KMeansMeans returns the k cluster centres found by K-Means.
func KMeansMeans(points []linalg.Point, k int, seed int64) ([]linalg.Point, error) {
	km := cluster.NewKMeans(
		cluster.WithKMeansNClusters(k),
		cluster.WithKMeansRandomState(seed),
	)
	if err := km.FitPoints(points); err != nil {
		return nil, errors.Wrap(err, "k-means initialization")
	}
	return km.CenterPoints(), nil
}

// RandomMeans picks k distinct data points as means.
func RandomMeans(src gaussian.Source, points []linalg.Point, k int) ([]linalg.Point, error) {
	if k > len(points) {
		return nil, errors.NewValidationError("n_components", "must not exceed the number of samples", k)
	}
	// Partial Fisher-Yates shuffle over indices
	idx := make([]int, len(points))
	for i := range idx {
		idx[i] = i
	}
	means := make([]linalg.Point, k)
	for i := 0; i < k; i++ {
		j := i + gaussian.UniformInt(src, 0, len(points)-i)
		idx[i], idx[j] = idx[j], idx[i]
		means[i] = points[idx[i]]
	}
	return means, nil
}

// InitialParams builds starting parameters around means: uniform weights
// and identity covariances.
func InitialParams(means []linalg.Point) Params {
	k := len(means)
	return Params{
		Weights:     UniformWeights(k),
		Means:       append([]linalg.Point(nil), means...),
		Covariances: IdentityCovariances(k),
	}
}
