package linear_model

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/sahana-alt/ML1Blogs/core/model"
)

func TestLinearRegressionExactFit(t *testing.T) {
	// y = 2*x1 + 3*x2 + 1
	X := mat.NewDense(5, 2, []float64{
		1, 1,
		2, 1,
		3, 2,
		4, 3,
		5, 5,
	})
	y := mat.NewDense(5, 1, []float64{
		6, 8, 13, 18, 26,
	})

	lr := NewLinearRegression()
	if err := lr.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	coef := lr.Coef()
	if math.Abs(coef[0]-2.0) > 1e-8 {
		t.Errorf("coef[0] = %v, want 2.0", coef[0])
	}
	if math.Abs(coef[1]-3.0) > 1e-8 {
		t.Errorf("coef[1] = %v, want 3.0", coef[1])
	}
	if math.Abs(lr.Intercept()-1.0) > 1e-8 {
		t.Errorf("intercept = %v, want 1.0", lr.Intercept())
	}

	score, err := lr.Score(X, y)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if math.Abs(score-1.0) > 1e-10 {
		t.Errorf("R2 for exact fit = %v, want 1.0", score)
	}
}

func TestLinearRegressionNoIntercept(t *testing.T) {
	// y = 3*x, passes through the origin
	X := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	y := mat.NewDense(4, 1, []float64{3, 6, 9, 12})

	lr := NewLinearRegression(WithFitIntercept(false))
	if err := lr.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	if math.Abs(lr.Coef()[0]-3.0) > 1e-8 {
		t.Errorf("coef[0] = %v, want 3.0", lr.Coef()[0])
	}
	if lr.Intercept() != 0 {
		t.Errorf("intercept = %v, want 0", lr.Intercept())
	}
}

func TestLinearRegressionPredict(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{1, 2, 3})
	y := mat.NewDense(3, 1, []float64{3, 5, 7})

	lr := NewLinearRegression()
	if err := lr.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	XTest := mat.NewDense(2, 1, []float64{4, 10})
	predictions, err := lr.Predict(XTest)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}

	want := []float64{9, 21}
	for i, w := range want {
		if math.Abs(predictions.At(i, 0)-w) > 1e-8 {
			t.Errorf("prediction[%d] = %v, want %v", i, predictions.At(i, 0), w)
		}
	}
}

func TestLinearRegressionValidation(t *testing.T) {
	tests := []struct {
		name string
		X    mat.Matrix
		y    mat.Matrix
	}{
		{
			name: "dimension mismatch",
			X:    mat.NewDense(3, 1, []float64{1, 2, 3}),
			y:    mat.NewDense(2, 1, []float64{1, 2}),
		},
		{
			name: "multi-column target",
			X:    mat.NewDense(2, 1, []float64{1, 2}),
			y:    mat.NewDense(2, 2, []float64{1, 2, 3, 4}),
		},
		{
			name: "fewer samples than parameters",
			X:    mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6}),
			y:    mat.NewDense(2, 1, []float64{1, 2}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lr := NewLinearRegression()
			if err := lr.Fit(tt.X, tt.y); err == nil {
				t.Error("Fit should fail")
			}
		})
	}

	lr := NewLinearRegression()
	if _, err := lr.Predict(mat.NewDense(1, 1, []float64{1})); err == nil {
		t.Error("Predict should fail on unfitted model")
	}
}

func TestLinearRegressionWeightsRoundTrip(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{1, 2, 2, 3, 3, 5, 4, 7})
	y := mat.NewDense(4, 1, []float64{5, 8, 13, 18})

	lr := NewLinearRegression()
	if err := lr.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	weights, err := lr.ExportWeights()
	if err != nil {
		t.Fatalf("ExportWeights failed: %v", err)
	}
	if err := weights.Validate(); err != nil {
		t.Fatalf("exported weights failed validation: %v", err)
	}

	// JSONを経由しても同じモデルが復元できること
	data, err := weights.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}
	decoded := &model.ModelWeights{}
	if err := decoded.FromJSON(data); err != nil {
		t.Fatalf("FromJSON failed: %v", err)
	}

	restored := NewLinearRegression()
	if err := restored.ImportWeights(decoded); err != nil {
		t.Fatalf("ImportWeights failed: %v", err)
	}

	origPred, _ := lr.Predict(X)
	restPred, err := restored.Predict(X)
	if err != nil {
		t.Fatalf("Predict on restored model failed: %v", err)
	}

	for i := 0; i < 4; i++ {
		if math.Abs(origPred.At(i, 0)-restPred.At(i, 0)) > 1e-12 {
			t.Errorf("restored prediction[%d] differs: %v vs %v", i, origPred.At(i, 0), restPred.At(i, 0))
		}
	}

	// Clone is independent of the original
	clone := weights.Clone()
	clone.Coefficients[0] += 1.0
	if weights.Coefficients[0] == clone.Coefficients[0] {
		t.Error("mutating a clone must not affect the original weights")
	}

	// Corrupted coefficients must fail the checksum verification
	weights.Coefficients[0] += 1.0
	corrupted := NewLinearRegression()
	if err := corrupted.ImportWeights(weights); err == nil {
		t.Error("ImportWeights should fail on checksum mismatch")
	}
}

func TestLinearRegressionSetParamsAndClone(t *testing.T) {
	lr := NewLinearRegression()

	if err := lr.SetParams(map[string]interface{}{"fit_intercept": false}); err != nil {
		t.Fatalf("SetParams failed: %v", err)
	}
	if got := lr.GetParams()["fit_intercept"]; got != false {
		t.Errorf("fit_intercept = %v, want false", got)
	}

	if err := lr.SetParams(map[string]interface{}{"fit_intercept": "yes"}); err == nil {
		t.Error("SetParams should reject a non-bool fit_intercept")
	}
	if err := lr.SetParams(map[string]interface{}{"learning_rate": 0.1}); err == nil {
		t.Error("SetParams should reject an unknown parameter")
	}

	clone := lr.Clone()
	if clone.GetParams()["fit_intercept"] != false {
		t.Error("Clone should carry hyperparameters")
	}
	if clone.GetParams()["fitted"] != false {
		t.Error("Clone must be unfitted")
	}
}

func BenchmarkLinearRegressionFit(b *testing.B) {
	n := 1000
	data := make([]float64, n*3)
	target := make([]float64, n)
	for i := 0; i < n; i++ {
		x1 := float64(i) / float64(n)
		x2 := float64(i%10) / 10.0
		x3 := float64(i%7) / 7.0
		data[i*3] = x1
		data[i*3+1] = x2
		data[i*3+2] = x3
		target[i] = 2*x1 + 3*x2 - x3 + 0.5
	}
	X := mat.NewDense(n, 3, data)
	y := mat.NewDense(n, 1, target)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		lr := NewLinearRegression()
		_ = lr.Fit(X, y)
	}
}
