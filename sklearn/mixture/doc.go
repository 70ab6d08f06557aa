// Package mixture fits two-dimensional Gaussian mixture models with the
// Expectation-Maximization algorithm.
//
// The building blocks are pure functions over explicit parameters:
// ComputeResponsibilities (E-step), UpdateParameters (M-step) and
// ComputeLogLikelihood. EM threads them into a stepwise state machine with a
// fixed iteration budget and a log-likelihood history, and GaussianMixture
// wraps EM in a scikit-learn style estimator over gonum matrices.
//
// Example:
//
//	params := mixture.InitialParams(means)
//	em, err := mixture.NewEM(points, params, mixture.WithMaxIter(10))
//	if err != nil {
//	    return err
//	}
//	history, err := em.Run(ctx)
package mixture
