// Package metrics は回帰・分類・ランキングモデルの評価指標を提供します。
//
// 全ての関数はgonumのベクトル/行列を受け取り、入力の次元検証を行った上で
// スカラー値の指標を返します。未定義となるケース（単一クラスのAUCなど）は
// UndefinedMetricWarningを通知した上で慣例的なフォールバック値を返します。
package metrics

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/sahana-alt/ML1Blogs/pkg/errors"
)

// validateVectors はベクトルペアの共通検証を行う
func validateVectors(yTrue, yPred *mat.VecDense) error {
	if yTrue == nil || yPred == nil {
		return errors.NewValidationError("yTrue/yPred", "must not be nil", nil)
	}
	if yTrue.Len() == 0 || yPred.Len() == 0 {
		return errors.NewModelError("metrics", "empty data", errors.ErrEmptyData)
	}
	if yTrue.Len() != yPred.Len() {
		return errors.NewDimensionError("metrics", yTrue.Len(), yPred.Len(), 0)
	}
	return nil
}

// firstColumn は行列の第1列をベクトルとして取り出す
func firstColumn(m mat.Matrix) (*mat.VecDense, error) {
	if m == nil {
		return nil, errors.NewValidationError("matrix", "must not be nil", nil)
	}
	rows, cols := m.Dims()
	if rows == 0 || cols == 0 {
		return nil, errors.NewModelError("metrics", "empty data", errors.ErrEmptyData)
	}
	vec := mat.NewVecDense(rows, nil)
	for i := 0; i < rows; i++ {
		vec.SetVec(i, m.At(i, 0))
	}
	return vec, nil
}

// MSE は平均二乗誤差を計算する
func MSE(yTrue, yPred *mat.VecDense) (float64, error) {
	if err := validateVectors(yTrue, yPred); err != nil {
		return 0, err
	}

	n := yTrue.Len()
	sum := 0.0
	for i := 0; i < n; i++ {
		diff := yTrue.AtVec(i) - yPred.AtVec(i)
		sum += diff * diff
	}

	return sum / float64(n), nil
}

// MSEMatrix は単一列の行列入力に対するMSEを計算する
func MSEMatrix(yTrue, yPred mat.Matrix) (float64, error) {
	if yTrue == nil || yPred == nil {
		return 0, errors.NewValidationError("yTrue/yPred", "must not be nil", nil)
	}
	_, cols := yTrue.Dims()
	if cols > 1 {
		return 0, errors.NewDimensionError("MSEMatrix", 1, cols, 1)
	}

	yTrueVec, err := firstColumn(yTrue)
	if err != nil {
		return 0, err
	}
	yPredVec, err := firstColumn(yPred)
	if err != nil {
		return 0, err
	}

	return MSE(yTrueVec, yPredVec)
}

// RMSE は二乗平均平方根誤差を計算する
func RMSE(yTrue, yPred *mat.VecDense) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE は平均絶対誤差を計算する
func MAE(yTrue, yPred *mat.VecDense) (float64, error) {
	if err := validateVectors(yTrue, yPred); err != nil {
		return 0, err
	}

	n := yTrue.Len()
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += math.Abs(yTrue.AtVec(i) - yPred.AtVec(i))
	}

	return sum / float64(n), nil
}

// R2Score は決定係数を計算する
// 1.0が完全な予測、0.0は平均値予測と同等、負値は平均値予測より悪い
// yTrueに分散がない場合はエラーを返す
func R2Score(yTrue, yPred *mat.VecDense) (float64, error) {
	if err := validateVectors(yTrue, yPred); err != nil {
		return 0, err
	}

	n := yTrue.Len()
	mean := stat.Mean(yTrue.RawVector().Data, nil)

	ssRes := 0.0
	ssTot := 0.0
	for i := 0; i < n; i++ {
		resDiff := yTrue.AtVec(i) - yPred.AtVec(i)
		totDiff := yTrue.AtVec(i) - mean
		ssRes += resDiff * resDiff
		ssTot += totDiff * totDiff
	}

	if ssTot == 0 {
		return 0, errors.NewValueError("R2Score", "total sum of squares is zero, R2 is undefined")
	}

	return 1.0 - ssRes/ssTot, nil
}

// MAPE は平均絶対パーセント誤差を計算する
// yTrueに0が含まれる場合はエラーを返す
func MAPE(yTrue, yPred *mat.VecDense) (float64, error) {
	if err := validateVectors(yTrue, yPred); err != nil {
		return 0, err
	}

	n := yTrue.Len()
	sum := 0.0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == 0 {
			return 0, errors.NewValueError("MAPE", "yTrue contains zero values, MAPE is undefined")
		}
		sum += math.Abs((yTrue.AtVec(i) - yPred.AtVec(i)) / yTrue.AtVec(i))
	}

	return sum / float64(n) * 100.0, nil
}

// ExplainedVarianceScore は説明分散スコアを計算する
func ExplainedVarianceScore(yTrue, yPred *mat.VecDense) (float64, error) {
	if err := validateVectors(yTrue, yPred); err != nil {
		return 0, err
	}

	n := yTrue.Len()
	residuals := make([]float64, n)
	for i := 0; i < n; i++ {
		residuals[i] = yTrue.AtVec(i) - yPred.AtVec(i)
	}

	varTrue := stat.Variance(yTrue.RawVector().Data, nil)
	if varTrue == 0 {
		return 0, errors.NewValueError("ExplainedVarianceScore", "yTrue has zero variance")
	}
	varRes := stat.Variance(residuals, nil)

	return 1.0 - varRes/varTrue, nil
}
