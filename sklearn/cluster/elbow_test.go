package cluster

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/sahana-alt/ML1Blogs/dataset"
)

func TestElbowSweepNonIncreasing(t *testing.T) {
	centers := [][]float64{
		{0, 0},
		{10, 0},
		{0, 10},
		{10, 10},
		{5, 20},
	}
	X, _, err := dataset.MakeBlobs(200, centers, 0.5, 42)
	if err != nil {
		t.Fatalf("MakeBlobs failed: %v", err)
	}

	points, err := ElbowSweep(X, 1, 10, 42)
	if err != nil {
		t.Fatalf("ElbowSweep failed: %v", err)
	}

	if len(points) != 10 {
		t.Fatalf("expected 10 points, got %d", len(points))
	}

	for i, p := range points {
		if p.K != i+1 {
			t.Errorf("point %d: K = %d, want %d", i, p.K, i+1)
		}
	}

	// 確率的初期化を考慮した許容誤差つきの単調非増加性
	for i := 1; i < len(points); i++ {
		tolerance := 1e-6 * math.Max(1, points[i-1].Inertia)
		if points[i].Inertia > points[i-1].Inertia+tolerance {
			t.Errorf("inertia increased from K=%d (%.6f) to K=%d (%.6f)",
				points[i-1].K, points[i-1].Inertia, points[i].K, points[i].Inertia)
		}
	}
}

func TestElbowSweepSingleClusterEqualsTotalVariance(t *testing.T) {
	X, _, err := dataset.MakeBlobs(120, [][]float64{{0, 0}, {5, 5}}, 1.0, 7)
	if err != nil {
		t.Fatalf("MakeBlobs failed: %v", err)
	}

	points, err := ElbowSweep(X, 1, 1, 7)
	if err != nil {
		t.Fatalf("ElbowSweep failed: %v", err)
	}

	// K=1 の慣性は全体平均まわりの総変動に一致する
	rows, cols := X.Dims()
	col := make([]float64, rows)
	want := 0.0
	for j := 0; j < cols; j++ {
		mat.Col(col, j, X)
		mean := stat.Mean(col, nil)
		for _, v := range col {
			want += (v - mean) * (v - mean)
		}
	}

	if math.Abs(points[0].Inertia-want) > 1e-6*want {
		t.Errorf("K=1 inertia = %.6f, want total variance %.6f", points[0].Inertia, want)
	}
}

func TestElbowSweepErrors(t *testing.T) {
	X := mat.NewDense(5, 2, nil)

	tests := []struct {
		name string
		kMin int
		kMax int
	}{
		{"kMin below 1", 0, 3},
		{"kMax below kMin", 3, 2},
		{"kMax above sample count", 1, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ElbowSweep(X, tt.kMin, tt.kMax, 0); err == nil {
				t.Error("ElbowSweep should fail")
			}
		})
	}
}
