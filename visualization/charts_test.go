package visualization

import (
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/sahana-alt/ML1Blogs/metrics"
	"github.com/sahana-alt/ML1Blogs/sklearn/cluster"
)

func assertFileExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("chart file was not created: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("chart file is empty")
	}
}

func TestElbowCurve(t *testing.T) {
	points := []cluster.ElbowPoint{
		{K: 1, Inertia: 100},
		{K: 2, Inertia: 40},
		{K: 3, Inertia: 15},
		{K: 4, Inertia: 12},
		{K: 5, Inertia: 10},
	}

	path := filepath.Join(t.TempDir(), "elbow.png")
	if err := ElbowCurve(points, path); err != nil {
		t.Fatalf("ElbowCurve failed: %v", err)
	}
	assertFileExists(t, path)

	if err := ElbowCurve(nil, path); err == nil {
		t.Error("ElbowCurve should fail on empty input")
	}
}

func TestROCCurves(t *testing.T) {
	yTrue := mat.NewVecDense(5, []float64{1, 0, 1, 1, 0})
	scores := mat.NewVecDense(5, []float64{0.9, 0.2, 0.8, 0.4, 0.6})
	curve, err := metrics.ROCCurve(yTrue, scores)
	if err != nil {
		t.Fatalf("ROCCurve failed: %v", err)
	}

	results := []metrics.ClassROC{
		{Class: 0, Curve: curve, AUC: 5.0 / 6.0, Defined: true},
		{Class: 1, Defined: false},
	}

	path := filepath.Join(t.TempDir(), "roc.png")
	if err := ROCCurves(results, path); err != nil {
		t.Fatalf("ROCCurves failed: %v", err)
	}
	assertFileExists(t, path)

	// Only undefined curves means nothing to plot
	undefined := []metrics.ClassROC{{Class: 0, Defined: false}}
	if err := ROCCurves(undefined, path); err == nil {
		t.Error("ROCCurves should fail when no curve is defined")
	}
}

func TestClusterScatter(t *testing.T) {
	X := mat.NewDense(6, 2, []float64{
		0, 0, 0.2, 0.1, 0.1, 0.3,
		5, 5, 5.2, 4.9, 4.8, 5.1,
	})
	labels := []int{0, 0, 0, 1, 1, 1}
	centers := mat.NewDense(2, 2, []float64{0.1, 0.13, 5.0, 5.0})

	path := filepath.Join(t.TempDir(), "clusters.png")
	if err := ClusterScatter(X, labels, centers, path); err != nil {
		t.Fatalf("ClusterScatter failed: %v", err)
	}
	assertFileExists(t, path)

	wide := mat.NewDense(2, 3, nil)
	if err := ClusterScatter(wide, []int{0, 0}, nil, path); err == nil {
		t.Error("ClusterScatter should fail on non-2D input")
	}
}

func TestRegressionCharts(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	y := []float64{2.1, 3.9, 6.2, 8.1, 9.8}
	predicted := []float64{2, 4, 6, 8, 10}

	dir := t.TempDir()

	fitPath := filepath.Join(dir, "fit.png")
	if err := RegressionFit(x, y, predicted, fitPath); err != nil {
		t.Fatalf("RegressionFit failed: %v", err)
	}
	assertFileExists(t, fitPath)

	residuals := make([]float64, len(y))
	for i := range y {
		residuals[i] = y[i] - predicted[i]
	}
	resPath := filepath.Join(dir, "residuals.png")
	if err := ResidualPlot(predicted, residuals, resPath); err != nil {
		t.Fatalf("ResidualPlot failed: %v", err)
	}
	assertFileExists(t, resPath)

	if err := RegressionFit(x, y[:3], predicted, fitPath); err == nil {
		t.Error("RegressionFit should fail on length mismatch")
	}
}

func TestAnomalyHistogram(t *testing.T) {
	scores := []float64{0.3, 0.32, 0.35, 0.4, 0.41, 0.45, 0.5, 0.7, 0.75}

	path := filepath.Join(t.TempDir(), "anomaly.png")
	if err := AnomalyHistogram(scores, 0.6, path); err != nil {
		t.Fatalf("AnomalyHistogram failed: %v", err)
	}
	assertFileExists(t, path)

	if err := AnomalyHistogram(nil, 0.5, path); err == nil {
		t.Error("AnomalyHistogram should fail on empty input")
	}
}
