package dataset

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/sahana-alt/ML1Blogs/pkg/errors"
)

// TrainTestSplit はデータを訓練用とテスト用に分割する
// 分割は指定したシードに対して決定的である
//
// パラメータ:
//   - X: 特徴量行列 (n_samples × n_features)
//   - y: ラベル行列 (n_samples × 1)
//   - testSize: テストデータの割合 (0 < testSize < 1)
//   - randomState: 乱数シード
//
// 戻り値:
//   - XTrain, XTest, yTrain, yTest
func TrainTestSplit(X, y mat.Matrix, testSize float64, randomState int64) (*mat.Dense, *mat.Dense, *mat.Dense, *mat.Dense, error) {
	rows, cols := X.Dims()
	yRows, yCols := y.Dims()

	if rows != yRows {
		return nil, nil, nil, nil, errors.NewDimensionError("TrainTestSplit", rows, yRows, 0)
	}
	if testSize <= 0 || testSize >= 1 {
		return nil, nil, nil, nil, errors.NewValidationError("testSize", "must be in (0, 1)", testSize)
	}

	nTest := int(float64(rows) * testSize)
	if nTest == 0 {
		nTest = 1
	}
	nTrain := rows - nTest
	if nTrain == 0 {
		return nil, nil, nil, nil, errors.NewValueError("TrainTestSplit", "not enough samples for a non-empty train partition")
	}

	// Fisher-Yatesシャッフルで行の並び替えを決定
	rng := rand.New(rand.NewSource(randomState))
	perm := rng.Perm(rows)

	XTrain := mat.NewDense(nTrain, cols, nil)
	XTest := mat.NewDense(nTest, cols, nil)
	yTrain := mat.NewDense(nTrain, yCols, nil)
	yTest := mat.NewDense(nTest, yCols, nil)

	for i, src := range perm {
		if i < nTrain {
			XTrain.SetRow(i, mat.Row(nil, src, X))
			yTrain.SetRow(i, mat.Row(nil, src, y))
		} else {
			XTest.SetRow(i-nTrain, mat.Row(nil, src, X))
			yTest.SetRow(i-nTrain, mat.Row(nil, src, y))
		}
	}

	return XTrain, XTest, yTrain, yTest, nil
}
