// Package log defines standard attribute keys for mixture-model operations.
//
// The keys follow a hierarchical naming convention (e.g., "model.name",
// "data.samples") so that EM runs, render steps and session actions can be
// filtered consistently.

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the algorithm or estimator.
	// Examples: "EM", "GaussianMixture", "KMeans"
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict", "e_step", "m_step", "render"
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is performing the operation.
	ComponentKey = "ml.component"

	// PanelKey identifies a tutorial panel ("interactive", "comparison", ...).
	PanelKey = "tutorial.panel"

	// ActionKey identifies a user-triggered session action ("new_data", "reset", "iterate").
	ActionKey = "tutorial.action"
)

// Data Shape and Characteristics
const (
	// SamplesKey indicates the number of points in the dataset.
	SamplesKey = "data.samples"

	// ComponentsKey indicates the number of mixture components K.
	ComponentsKey = "mixture.components"

	// ClustersKey indicates the number of generating clusters.
	ClustersKey = "data.clusters"
)

// Fitting Progress
const (
	// IterationKey records the current EM iteration.
	IterationKey = "training.iteration"

	// MaxIterationsKey records the configured iteration limit.
	MaxIterationsKey = "training.max_iterations"

	// LogLikelihoodKey records the data log-likelihood after an iteration.
	LogLikelihoodKey = "metrics.log_likelihood"

	// WeightsKey records the mixture weights.
	WeightsKey = "mixture.weights"

	// InertiaKey records the K-Means within-cluster sum of squares.
	InertiaKey = "metrics.inertia"

	// AgreementKey records a clustering agreement score (adjusted Rand index).
	AgreementKey = "metrics.ari"

	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"
)

// Output Context
const (
	// PathKey records an output file path.
	PathKey = "output.path"

	// FormatKey records an output format ("png", "svg", "json").
	FormatKey = "output.format"

	// RandomSeedKey records the random seed for reproducibility.
	RandomSeedKey = "config.random_seed"
)

// Error Context
const (
	// ErrorTypeKey categorizes the type of error encountered.
	ErrorTypeKey = "error.type"

	// ErrorCodeKey provides a structured error code for programmatic handling.
	ErrorCodeKey = "error.code"
)

// Standard attribute values.
const (
	OperationFit     = "fit"
	OperationPredict = "predict"
	OperationEStep   = "e_step"
	OperationMStep   = "m_step"
	OperationRender  = "render"

	ActionNewData = "new_data"
	ActionReset   = "reset"
	ActionIterate = "iterate"

	ErrorDegenerateCovariance = "DEGENERATE_COVARIANCE"
	ErrorMaxIterations        = "MAX_ITERATIONS"
	ErrorMissingCollaborator  = "MISSING_COLLABORATOR"
)
