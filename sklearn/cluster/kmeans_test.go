package cluster

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/sahana-alt/ML1Blogs/dataset"
	"github.com/sahana-alt/ML1Blogs/pkg/errors"
)

func blobData(t *testing.T) (*mat.Dense, []int, [][]float64) {
	t.Helper()

	centers := [][]float64{
		{0, 0},
		{10, 0},
		{0, 10},
		{10, 10},
		{5, 20},
	}
	X, labels, err := dataset.MakeBlobs(200, centers, 0.5, 42)
	if err != nil {
		t.Fatalf("MakeBlobs failed: %v", err)
	}
	return X, labels, centers
}

func TestKMeansRecoverBlobs(t *testing.T) {
	X, trueLabels, trueCenters := blobData(t)

	km := NewKMeans(WithNClusters(5), WithRandomState(42))
	if err := km.Fit(X, nil); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	centers := km.ClusterCenters()
	if len(centers) != 5 {
		t.Fatalf("expected 5 centers, got %d", len(centers))
	}

	// 各真の中心に最も近い学習済み中心を対応付ける（最適なラベル置換）
	perm := make([]int, 5)
	for c, tc := range trueCenters {
		best, bestDist := 0, math.Inf(1)
		for i, fc := range centers {
			d := euclideanDistance(tc, fc)
			if d < bestDist {
				best, bestDist = i, d
			}
		}
		perm[c] = best
		if bestDist > 0.5 {
			t.Errorf("center %d recovered at distance %.3f from true mean", c, bestDist)
		}
	}

	// 置換後のラベル一致率を確認
	labels := km.Labels()
	correct := 0
	for i, tl := range trueLabels {
		if labels[i] == perm[tl] {
			correct++
		}
	}
	if acc := float64(correct) / float64(len(labels)); acc < 0.99 {
		t.Errorf("cluster assignment accuracy = %.3f, want >= 0.99", acc)
	}
}

func TestKMeansDeterministicWithSeed(t *testing.T) {
	X, _, _ := blobData(t)

	km1 := NewKMeans(WithNClusters(5), WithRandomState(7))
	km2 := NewKMeans(WithNClusters(5), WithRandomState(7))

	if err := km1.Fit(X, nil); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if err := km2.Fit(X, nil); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	if math.Abs(km1.Inertia()-km2.Inertia()) > 1e-12 {
		t.Errorf("same seed should give identical inertia: %v vs %v", km1.Inertia(), km2.Inertia())
	}
}

func TestKMeansConvergenceWarning(t *testing.T) {
	X, _, _ := blobData(t)

	var warnings []error
	errors.SetWarningHandler(func(w error) {
		warnings = append(warnings, w)
	})
	defer errors.SetWarningHandler(nil)

	// 1反復では収束判定に到達できず、警告が出る
	km := NewKMeans(
		WithNClusters(5),
		WithMaxIter(1),
		WithTol(0),
		WithRandomState(42),
	)
	if err := km.Fit(X, nil); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	found := false
	for _, w := range warnings {
		var cw *errors.ConvergenceWarning
		if errors.As(w, &cw) {
			found = true
			if cw.Algorithm != "KMeans" {
				t.Errorf("warning algorithm = %q, want KMeans", cw.Algorithm)
			}
			if cw.Iterations != 1 {
				t.Errorf("warning iterations = %d, want 1", cw.Iterations)
			}
		}
	}
	if !found {
		t.Error("expected a ConvergenceWarning when maxIter is exhausted")
	}

	// 十分な反復回数があれば警告は出ない
	warnings = nil
	converged := NewKMeans(WithNClusters(5), WithMaxIter(300), WithRandomState(42))
	if err := converged.Fit(X, nil); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	for _, w := range warnings {
		var cw *errors.ConvergenceWarning
		if errors.As(w, &cw) {
			t.Errorf("unexpected ConvergenceWarning after converged fit: %v", w)
		}
	}
}

func TestKMeansFitErrors(t *testing.T) {
	tests := []struct {
		name      string
		rows      int
		nClusters int
	}{
		{"fewer samples than clusters", 3, 5},
		{"zero clusters", 3, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			X := mat.NewDense(tt.rows, 2, nil)
			km := NewKMeans(WithNClusters(tt.nClusters), WithRandomState(0))
			if err := km.Fit(X, nil); err == nil {
				t.Error("Fit should fail")
			}
		})
	}
}

func TestKMeansPredictUnfitted(t *testing.T) {
	km := NewKMeans(WithNClusters(2))
	X := mat.NewDense(2, 2, []float64{0, 0, 1, 1})

	if _, err := km.Predict(X); err == nil {
		t.Error("Predict should fail on unfitted model")
	}
	if _, err := km.Transform(X); err == nil {
		t.Error("Transform should fail on unfitted model")
	}
}

func TestKMeansPredictDimensionMismatch(t *testing.T) {
	X, _, _ := blobData(t)
	km := NewKMeans(WithNClusters(5), WithRandomState(42))
	if err := km.Fit(X, nil); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	bad := mat.NewDense(2, 3, nil)
	if _, err := km.Predict(bad); err == nil {
		t.Error("Predict should fail on feature dimension mismatch")
	}
}

func TestKMeansTransformShape(t *testing.T) {
	X, _, _ := blobData(t)
	km := NewKMeans(WithNClusters(5), WithRandomState(42))
	if err := km.Fit(X, nil); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	distances, err := km.Transform(X)
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}

	r, c := distances.Dims()
	if r != 200 || c != 5 {
		t.Errorf("expected 200x5 distance matrix, got %dx%d", r, c)
	}

	// 距離は非負で、所属クラスタまでの距離が最小になる
	labels := km.Labels()
	for i := 0; i < r; i++ {
		minCol, minVal := 0, math.Inf(1)
		for j := 0; j < c; j++ {
			v := distances.At(i, j)
			if v < 0 {
				t.Fatalf("negative distance at (%d,%d)", i, j)
			}
			if v < minVal {
				minCol, minVal = j, v
			}
		}
		if minCol != labels[i] {
			t.Errorf("sample %d: nearest center %d but label %d", i, minCol, labels[i])
		}
	}
}

func TestKMeansSingleCluster(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{
		0, 0,
		2, 0,
		0, 2,
		2, 2,
	})

	km := NewKMeans(WithNClusters(1), WithRandomState(0))
	if err := km.Fit(X, nil); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	centers := km.ClusterCenters()
	if math.Abs(centers[0][0]-1) > 1e-9 || math.Abs(centers[0][1]-1) > 1e-9 {
		t.Errorf("single cluster center should be the global mean, got %v", centers[0])
	}

	// 慣性 = 全体平均まわりの総変動
	want := 4 * (1.0 + 1.0) // 各点が(1,1)から距離sqrt(2)
	if math.Abs(km.Inertia()-want) > 1e-9 {
		t.Errorf("inertia = %v, want %v", km.Inertia(), want)
	}
}

func BenchmarkKMeansFit(b *testing.B) {
	centers := [][]float64{{0, 0}, {10, 0}, {0, 10}}
	X, _, err := dataset.MakeBlobs(300, centers, 1.0, 1)
	if err != nil {
		b.Fatalf("MakeBlobs failed: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		km := NewKMeans(WithNClusters(3), WithRandomState(1), WithNInit(3))
		_ = km.Fit(X, nil)
	}
}
