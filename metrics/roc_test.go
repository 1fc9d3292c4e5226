package metrics

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/sahana-alt/ML1Blogs/pkg/errors"
)

func TestROCCurve(t *testing.T) {
	yTrue := mat.NewVecDense(5, []float64{1, 0, 1, 1, 0})
	scores := mat.NewVecDense(5, []float64{0.9, 0.2, 0.8, 0.4, 0.6})

	curve, err := ROCCurve(yTrue, scores)
	if err != nil {
		t.Fatalf("ROCCurve failed: %v", err)
	}

	first := curve[0]
	last := curve[len(curve)-1]
	if first.FPR != 0 || first.TPR != 0 {
		t.Errorf("Curve should start at (0, 0), got (%v, %v)", first.FPR, first.TPR)
	}
	if last.FPR != 1 || last.TPR != 1 {
		t.Errorf("Curve should end at (1, 1), got (%v, %v)", last.FPR, last.TPR)
	}

	// Threshold sweep over this exact set gives AUC = 5/6
	auc := aucTrapezoid(curve)
	if math.Abs(auc-5.0/6.0) > 1e-10 {
		t.Errorf("AUC = %v, want %v", auc, 5.0/6.0)
	}

	// FPR and TPR must be monotonically non-decreasing along the sweep
	for i := 1; i < len(curve); i++ {
		if curve[i].FPR < curve[i-1].FPR {
			t.Errorf("FPR decreased at point %d: %v -> %v", i, curve[i-1].FPR, curve[i].FPR)
		}
		if curve[i].TPR < curve[i-1].TPR {
			t.Errorf("TPR decreased at point %d: %v -> %v", i, curve[i-1].TPR, curve[i].TPR)
		}
	}
}

func TestROCCurveSingleClass(t *testing.T) {
	yTrue := mat.NewVecDense(3, []float64{1, 1, 1})
	scores := mat.NewVecDense(3, []float64{0.1, 0.5, 0.9})

	_, err := ROCCurve(yTrue, scores)
	if err == nil {
		t.Error("ROCCurve should fail when only one class is present")
	}
}

func TestMultiClassROC(t *testing.T) {
	// 3 classes, perfectly separable probabilities
	yTrue := mat.NewDense(6, 3, []float64{
		1, 0, 0,
		1, 0, 0,
		0, 1, 0,
		0, 1, 0,
		0, 0, 1,
		0, 0, 1,
	})
	proba := mat.NewDense(6, 3, []float64{
		0.8, 0.1, 0.1,
		0.7, 0.2, 0.1,
		0.1, 0.8, 0.1,
		0.2, 0.7, 0.1,
		0.1, 0.1, 0.8,
		0.1, 0.2, 0.7,
	})

	results, err := MultiClassROC(yTrue, proba)
	if err != nil {
		t.Fatalf("MultiClassROC failed: %v", err)
	}

	if len(results) != 3 {
		t.Fatalf("Expected 3 class results, got %d", len(results))
	}

	for _, r := range results {
		if !r.Defined {
			t.Errorf("Class %d should have a defined curve", r.Class)
			continue
		}
		if math.Abs(r.AUC-1.0) > 1e-10 {
			t.Errorf("Class %d: perfect separator should have AUC 1.0, got %v", r.Class, r.AUC)
		}
		first := r.Curve[0]
		last := r.Curve[len(r.Curve)-1]
		if first.FPR != 0 || first.TPR != 0 || last.FPR != 1 || last.TPR != 1 {
			t.Errorf("Class %d: curve endpoints should be (0,0) and (1,1)", r.Class)
		}
	}
}

func TestMultiClassROCAbsentClass(t *testing.T) {
	var warnings []error
	errors.SetWarningHandler(func(w error) {
		warnings = append(warnings, w)
	})
	defer errors.SetWarningHandler(nil)

	// Class 2 never appears in the partition
	yTrue := mat.NewDense(4, 3, []float64{
		1, 0, 0,
		0, 1, 0,
		1, 0, 0,
		0, 1, 0,
	})
	proba := mat.NewDense(4, 3, []float64{
		0.8, 0.1, 0.1,
		0.1, 0.8, 0.1,
		0.7, 0.2, 0.1,
		0.2, 0.7, 0.1,
	})

	results, err := MultiClassROC(yTrue, proba)
	if err != nil {
		t.Fatalf("MultiClassROC failed: %v", err)
	}

	absent := results[2]
	if absent.Defined {
		t.Error("Absent class should be reported as undefined")
	}
	if !math.IsNaN(absent.AUC) {
		t.Errorf("Absent class AUC should be NaN, got %v", absent.AUC)
	}
	if absent.Curve != nil {
		t.Error("Absent class should not have a curve")
	}

	if len(warnings) == 0 {
		t.Error("Absent class should emit an UndefinedMetricWarning")
	} else {
		var umw *errors.UndefinedMetricWarning
		if !errors.As(warnings[0], &umw) {
			t.Errorf("Expected UndefinedMetricWarning, got %T", warnings[0])
		}
	}

	// The two present classes must still be evaluated independently
	for _, c := range []int{0, 1} {
		if !results[c].Defined {
			t.Errorf("Class %d should have a defined curve", c)
		}
	}
}

func TestMultiClassROCValidation(t *testing.T) {
	tests := []struct {
		name  string
		yTrue mat.Matrix
		proba mat.Matrix
	}{
		{
			name:  "nil input",
			yTrue: nil,
			proba: mat.NewDense(1, 1, []float64{0.5}),
		},
		{
			name:  "shape mismatch",
			yTrue: mat.NewDense(2, 2, []float64{1, 0, 0, 1}),
			proba: mat.NewDense(2, 3, []float64{0.5, 0.3, 0.2, 0.1, 0.8, 0.1}),
		},
		{
			name:  "not one-hot",
			yTrue: mat.NewDense(2, 2, []float64{1, 1, 0, 1}),
			proba: mat.NewDense(2, 2, []float64{0.5, 0.5, 0.5, 0.5}),
		},
		{
			name:  "non-binary labels",
			yTrue: mat.NewDense(2, 2, []float64{0.5, 0.5, 1, 0}),
			proba: mat.NewDense(2, 2, []float64{0.5, 0.5, 0.5, 0.5}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := MultiClassROC(tt.yTrue, tt.proba)
			if err == nil {
				t.Error("MultiClassROC should fail")
			}
		})
	}
}
