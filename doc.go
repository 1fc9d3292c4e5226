// Package mlblogs provides the machine learning building blocks behind a
// series of hands-on tutorials: clustering, classification, regression and
// anomaly detection with a scikit-learn-like API in pure Go.
//
// Each tutorial has a runnable counterpart under examples/, pairing a small
// CSV dataset with the algorithm the post explains:
//
//   - K-Means clustering with elbow-method model selection
//   - K-Nearest Neighbors classification with one-vs-rest ROC/AUC
//   - Multinomial Naive Bayes spam filtering over word counts
//   - Linear and polynomial least-squares regression
//   - Isolation Forest anomaly detection
//
// # Quick Start
//
// Cluster two-dimensional data and pick K with the elbow method:
//
//	package main
//
//	import (
//	    "fmt"
//
//	    "github.com/sahana-alt/ML1Blogs/dataset"
//	    "github.com/sahana-alt/ML1Blogs/sklearn/cluster"
//	)
//
//	func main() {
//	    X, _, err := dataset.MakeBlobs(200, [][]float64{{0, 0}, {5, 5}, {0, 5}}, 0.5, 42)
//	    if err != nil {
//	        panic(err)
//	    }
//
//	    points, err := cluster.ElbowSweep(X, 1, 8, 42)
//	    if err != nil {
//	        panic(err)
//	    }
//	    for _, p := range points {
//	        fmt.Printf("K=%d WCSS=%.2f\n", p.K, p.Inertia)
//	    }
//
//	    km := cluster.NewKMeans(cluster.WithNClusters(3), cluster.WithRandomState(42))
//	    if err := km.Fit(X, nil); err != nil {
//	        panic(err)
//	    }
//	    fmt.Println(km.ClusterCenters())
//	}
//
// # Package Layout
//
//   - dataset: CSV loading, train/test splitting, synthetic data generators
//   - preprocessing: scalers, label/one-hot encoders, polynomial features
//   - sklearn/cluster: K-Means and the elbow-method sweep
//   - sklearn/neighbors: K-Nearest Neighbors classification
//   - sklearn/naive_bayes: Multinomial Naive Bayes with online learning
//   - sklearn/linear_model: ordinary least squares regression
//   - sklearn/ensemble: Isolation Forest anomaly detection
//   - sklearn/feature_extraction: bag-of-words text vectorization
//   - metrics: regression, classification, ranking and ROC/AUC metrics
//   - visualization: PNG chart rendering for every tutorial
//
// Models validate their inputs and return structured errors with stack
// traces; conditions that leave a metric undefined are reported through
// the warning system in pkg/errors rather than silently coerced.
package mlblogs
