// Package log defines standard attribute keys for machine learning operations.
//
// Using these keys consistently across packages makes the JSON logs of a
// tutorial run (fit, predict, evaluate, plot) filterable by model, operation
// and data shape.

package log

// Model and operation context.
const (
	// ModelNameKey identifies the type of model.
	// Examples: "KMeans", "MultinomialNB", "IsolationForest"
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict", "transform", "score", "sweep"
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is performing the operation.
	// Examples: "cluster", "preprocessing", "metrics", "visualization"
	ComponentKey = "ml.component"
)

// Data shape and characteristics.
const (
	// SamplesKey indicates the number of samples (rows) in the dataset.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of features (columns) in the dataset.
	FeaturesKey = "data.features"

	// ClassesKey indicates the number of target classes for classification.
	ClassesKey = "data.classes"

	// SourceKey names the data source, typically a CSV path.
	SourceKey = "data.source"
)

// Hyperparameters and results.
const (
	// ClustersKey records the cluster count K for clustering operations.
	ClustersKey = "param.n_clusters"

	// SeedKey records the random seed used for a deterministic run.
	SeedKey = "param.random_state"

	// InertiaKey records the within-cluster sum of squares after fitting.
	InertiaKey = "metrics.inertia"

	// AccuracyKey records classification accuracy, range [0, 1].
	AccuracyKey = "metrics.accuracy"

	// AUCKey records the area under a ROC curve, range [0, 1].
	AUCKey = "metrics.auc"

	// MSEKey records mean squared error for regression evaluation.
	MSEKey = "metrics.mse"

	// R2Key records the coefficient of determination.
	R2Key = "metrics.r2"

	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"
)
