package gaussian

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/gmmtutor/core/linalg"
	"github.com/YuminosukeSato/gmmtutor/pkg/errors"
)

// ClusterSpec describes one generating cluster of a synthetic dataset.
type ClusterSpec struct {
	N    int          `json:"n" yaml:"n"`
	Mean linalg.Point `json:"mean" yaml:"mean"`
	Cov  linalg.Mat2  `json:"cov" yaml:"cov"`
}

// Dataset is a set of points with the index of the cluster that generated
// each one.
type Dataset struct {
	Points []linalg.Point `json:"points"`
	Labels []int          `json:"labels"`
	K      int            `json:"k"`
}

// Len returns the number of points.
func (d Dataset) Len() int { return len(d.Points) }

// RandomCovariance draws a positive definite covariance with variances in
// [0.5, 2.0) and a covariance term within 0.9·√(v₁v₂), which keeps the
// correlation strictly inside (-1, 1).
func RandomCovariance(src Source) linalg.Mat2 {
	v1 := Uniform(src, 0.5, 2.0)
	v2 := Uniform(src, 0.5, 2.0)
	maxCov := 0.9 * math.Sqrt(v1*v2)
	c := Uniform(src, -1, 1) * maxCov
	return linalg.Sym(v1, c, v2)
}

// RandomClusterSpec draws a cluster with its mean in [-2, 2)², a random
// covariance and between 50 and 99 points.
func RandomClusterSpec(src Source) ClusterSpec {
	mean := linalg.Point{X: Uniform(src, -2, 2), Y: Uniform(src, -2, 2)}
	return ClusterSpec{
		Mean: mean,
		Cov:  RandomCovariance(src),
		N:    UniformInt(src, 50, 100),
	}
}

// RandomClusterSpecs draws k clusters with RandomClusterSpec.
func RandomClusterSpecs(src Source, k int) []ClusterSpec {
	specs := make([]ClusterSpec, k)
	for i := range specs {
		specs[i] = RandomClusterSpec(src)
	}
	return specs
}

// ThreeClusterSpecs returns the fixed, well separated dataset used by the
// EM walkthrough: 100 points each around (-2,-2), (0,2) and (3,0).
func ThreeClusterSpecs() []ClusterSpec {
	return []ClusterSpec{
		{N: 100, Mean: linalg.Point{X: -2, Y: -2}, Cov: linalg.Identity()},
		{N: 100, Mean: linalg.Point{X: 0, Y: 2}, Cov: linalg.Sym(1, 0.5, 1)},
		{N: 100, Mean: linalg.Point{X: 3, Y: 0}, Cov: linalg.Sym(1, -0.7, 1)},
	}
}

// GenerateDataset samples every spec in order and concatenates the points.
// Labels[i] is the index of the ClusterSpec that produced Points[i].
func GenerateDataset(src Source, specs []ClusterSpec) (Dataset, error) {
	if len(specs) == 0 {
		return Dataset{}, errors.NewValidationError("specs", "at least one cluster is required", 0)
	}
	total := 0
	for _, s := range specs {
		total += s.N
	}

	ds := Dataset{
		Points: make([]linalg.Point, 0, total),
		Labels: make([]int, 0, total),
		K:      len(specs),
	}
	for k, s := range specs {
		points, err := Sample(src, s.N, s.Mean, s.Cov)
		if err != nil {
			return Dataset{}, errors.Wrapf(err, "cluster %d", k)
		}
		ds.Points = append(ds.Points, points...)
		for range points {
			ds.Labels = append(ds.Labels, k)
		}
	}
	return ds, nil
}

// ClusterPoints returns the points generated by cluster k.
func (d Dataset) ClusterPoints(k int) []linalg.Point {
	var out []linalg.Point
	for i, l := range d.Labels {
		if l == k {
			out = append(out, d.Points[i])
		}
	}
	return out
}

// ClusterMeans returns the empirical mean of each generating cluster.
// A cluster without points has a zero mean.
func (d Dataset) ClusterMeans() []linalg.Point {
	means := make([]linalg.Point, d.K)
	for k := range means {
		xs, ys := linalg.Coords(d.ClusterPoints(k))
		if len(xs) == 0 {
			continue
		}
		means[k] = linalg.Point{X: stat.Mean(xs, nil), Y: stat.Mean(ys, nil)}
	}
	return means
}
