// Package linalg provides the closed-form 2×2 linear algebra used by the
// Gaussian sampler, the density evaluator and the ellipse geometry.
//
// Everything here is hand-coded for two dimensions. Conversions to gonum's
// mat types exist for the estimator API and for cross-checking in tests.
package linalg
