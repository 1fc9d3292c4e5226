// Package model provides additional interfaces and types for machine learning models.
// This file complements the interfaces in estimator.go and transformer.go.
package model

import (
	"gonum.org/v1/gonum/mat"
)

// Scorer is the interface for models that can compute a score.
type Scorer interface {
	// Score returns an evaluation score for the prediction
	// (R^2 for regressors, mean accuracy for classifiers).
	Score(X mat.Matrix, y mat.Matrix) (float64, error)
}

// IncrementalLearner is the interface for models that support incremental learning.
type IncrementalLearner interface {
	// PartialFit updates the model from one mini-batch of samples.
	// classes must list all class labels on the first call for classifiers;
	// pass nil for regressors and on subsequent calls.
	PartialFit(X mat.Matrix, y mat.Matrix, classes []int) error
}

// Regressor combines interfaces for regression models.
type Regressor interface {
	Estimator
	Scorer
}

// Classifier combines interfaces for classification models.
type Classifier interface {
	Estimator
	Scorer

	// PredictProba returns probability estimates for each class.
	PredictProba(X mat.Matrix) (mat.Matrix, error)

	// Classes returns the unique classes seen during fitting.
	Classes() []int
}

// OutlierDetector is the interface for unsupervised anomaly detection models.
type OutlierDetector interface {
	// Fit learns the structure of the data without labels.
	Fit(X mat.Matrix) error

	// Predict classifies each sample as +1 (inlier) or -1 (outlier).
	Predict(X mat.Matrix) ([]int, error)

	// ScoreSamples returns the raw anomaly score of each sample.
	// Higher scores indicate more anomalous samples.
	ScoreSamples(X mat.Matrix) ([]float64, error)

	// DecisionFunction returns the shifted score such that negative
	// values are outliers and non-negative values are inliers.
	DecisionFunction(X mat.Matrix) ([]float64, error)
}

// ParameterGetter is the interface for models that expose their parameters.
type ParameterGetter interface {
	// GetParams returns the model's hyperparameters.
	GetParams() map[string]interface{}
}

// ParameterSetter is the interface for models that allow parameter modification.
type ParameterSetter interface {
	// SetParams sets the model's hyperparameters.
	SetParams(params map[string]interface{}) error
}

// Persistable is the interface for models that can be saved and loaded.
type Persistable interface {
	// Save saves the model to a file.
	Save(path string) error

	// Load loads the model from a file.
	Load(path string) error
}
