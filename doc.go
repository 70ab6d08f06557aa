// Package gmmtutor is an interactive tutorial on two-dimensional Gaussian
// mixture models and the expectation-maximization algorithm.
//
// The numerical kernel is small and exact: a closed-form eigendecomposition
// of symmetric 2×2 matrices, a Box–Muller sampler, the bivariate normal
// density, one EM iteration at a time with a recorded log-likelihood
// history, and confidence ellipses of fitted components. Around it the
// tutorial compares GMM with K-Means on elongated clusters and replays an
// EM run frame by frame.
//
// # Installation
//
//	go install github.com/YuminosukeSato/gmmtutor/cmd/gmmtutor@latest
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/gmmtutor/sklearn/mixture"
//	    "github.com/YuminosukeSato/gmmtutor/stats/gaussian"
//	)
//
//	func main() {
//	    src := gaussian.NewSource(42)
//	    ds, err := gaussian.GenerateDataset(src, gaussian.ThreeClusterSpecs())
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    start := mixture.InitialParams(mixture.PerturbedMeans(src, ds.ClusterMeans(), 1))
//	    em, err := mixture.NewEM(ds.Points, start, mixture.WithMaxIter(10))
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    for !em.Done() {
//	        ll, err := em.Step()
//	        if err != nil {
//	            log.Fatal(err)
//	        }
//	        fmt.Printf("iteration %d: %.2f\n", em.Iteration(), ll)
//	    }
//	}
//
// # Packages
//
//   - core/linalg: 2×2 matrices, points and the symmetric eigendecomposition
//   - stats/gaussian: random sources, sampling, densities and datasets
//   - sklearn/mixture: EM steps, the EM driver and a GaussianMixture estimator
//   - sklearn/cluster: K-Means
//   - geometry: confidence ellipses and evaluation grids
//   - metrics: clustering agreement (adjusted Rand index, accuracy)
//   - chart: renderer-independent figure description and themes
//   - render/plotimg, render/ascii: gonum/plot and terminal renderers
//   - tutorial: configuration, session, comparison and walkthrough panels
//   - core/model, core/parallel: estimator plumbing shared by the estimators
//   - pkg/errors, pkg/log: structured errors and logging
//
// # scikit-learn Compatibility
//
// GaussianMixture and KMeans accept gonum matrices with two columns:
//
//	gm := mixture.NewGaussianMixture(
//	    mixture.WithNComponents(3),
//	    mixture.WithRandomState(42),
//	)
//	if err := gm.Fit(X, nil); err != nil {
//	    log.Fatal(err)
//	}
//	labels, err := gm.Predict(X)
//
// # License
//
// gmmtutor is released under the MIT License.
package gmmtutor
