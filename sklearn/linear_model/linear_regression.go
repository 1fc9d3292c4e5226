// Package linear_model は最小二乗法による線形回帰モデルを提供します。
package linear_model

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/sahana-alt/ML1Blogs/core/model"
	"github.com/sahana-alt/ML1Blogs/pkg/errors"
)

// LinearRegression は通常最小二乗法による線形回帰モデル
// scikit-learnのLinearRegressionと互換性を持つ
//
// 学習は正規方程式の代わりに数値的に安定なQR分解で解く。
// 多項式回帰はpreprocessing.PolynomialFeaturesで特徴量を
// 展開してから本モデルに渡すことで実現する。
type LinearRegression struct {
	state *model.StateManager

	// ハイパーパラメータ
	fitIntercept bool // 切片を学習するか

	// 学習パラメータ
	coef_      []float64 // 回帰係数
	intercept_ float64   // 切片

	nFeatures_ int
	nSamples_  int
}

// LinearRegressionOption はLinearRegressionの設定オプション
type LinearRegressionOption func(*LinearRegression)

// WithFitIntercept は切片の学習有無を設定
// falseの場合データは原点を通ると仮定される
func WithFitIntercept(fit bool) LinearRegressionOption {
	return func(lr *LinearRegression) {
		lr.fitIntercept = fit
	}
}

// NewLinearRegression は新しいLinearRegressionを作成
func NewLinearRegression(options ...LinearRegressionOption) *LinearRegression {
	lr := &LinearRegression{
		state:        model.NewStateManager(),
		fitIntercept: true,
	}

	for _, opt := range options {
		opt(lr)
	}

	return lr
}

// Fit は最小二乗法で回帰係数を学習する
func (lr *LinearRegression) Fit(X, y mat.Matrix) error {
	rows, cols := X.Dims()
	yRows, yCols := y.Dims()

	if rows == 0 || cols == 0 {
		return errors.NewModelError("LinearRegression.Fit", "empty data", errors.ErrEmptyData)
	}
	if rows != yRows {
		return errors.NewDimensionError("LinearRegression.Fit", rows, yRows, 0)
	}
	if yCols != 1 {
		return errors.NewDimensionError("LinearRegression.Fit", 1, yCols, 1)
	}

	nParams := cols
	if lr.fitIntercept {
		nParams++
	}
	if rows < nParams {
		return errors.NewValidationError("X",
			fmt.Sprintf("need at least %d samples to estimate %d parameters", nParams, nParams), rows)
	}

	// 切片を学習する場合は計画行列の先頭にバイアス列を足す
	var XFit mat.Matrix
	if lr.fitIntercept {
		design := mat.NewDense(rows, cols+1, nil)
		for i := 0; i < rows; i++ {
			design.Set(i, 0, 1.0)
			for j := 0; j < cols; j++ {
				design.Set(i, j+1, X.At(i, j))
			}
		}
		XFit = design
	} else {
		XFit = X
	}

	var qr mat.QR
	qr.Factorize(XFit)

	solution := mat.NewDense(nParams, 1, nil)
	if err := qr.SolveTo(solution, false, y); err != nil {
		return errors.Wrap(errors.ErrSingularMatrix, "LinearRegression.Fit: failed to solve least squares system")
	}

	lr.coef_ = make([]float64, cols)
	if lr.fitIntercept {
		lr.intercept_ = solution.At(0, 0)
		for j := 0; j < cols; j++ {
			lr.coef_[j] = solution.At(j+1, 0)
		}
	} else {
		lr.intercept_ = 0.0
		for j := 0; j < cols; j++ {
			lr.coef_[j] = solution.At(j, 0)
		}
	}

	lr.nFeatures_ = cols
	lr.nSamples_ = rows
	lr.state.SetDimensions(cols, rows)
	lr.state.SetFitted()
	return nil
}

// Predict は入力データに対する予測値を計算する
func (lr *LinearRegression) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !lr.state.IsFitted() {
		return nil, errors.NewNotFittedError("LinearRegression", "Predict")
	}

	rows, cols := X.Dims()
	if cols != lr.nFeatures_ {
		return nil, errors.NewDimensionError("LinearRegression.Predict", lr.nFeatures_, cols, 1)
	}

	predictions := mat.NewDense(rows, 1, nil)
	for i := 0; i < rows; i++ {
		pred := lr.intercept_
		for j := 0; j < cols; j++ {
			pred += X.At(i, j) * lr.coef_[j]
		}
		predictions.Set(i, 0, pred)
	}

	return predictions, nil
}

// Score はテストデータに対する決定係数（R2）を計算する
func (lr *LinearRegression) Score(X, y mat.Matrix) (float64, error) {
	predictions, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}

	rows, _ := y.Dims()
	var yMean float64
	for i := 0; i < rows; i++ {
		yMean += y.At(i, 0)
	}
	yMean /= float64(rows)

	var ssTot, ssRes float64
	for i := 0; i < rows; i++ {
		yi := y.At(i, 0)
		pred := predictions.At(i, 0)
		ssTot += (yi - yMean) * (yi - yMean)
		ssRes += (yi - pred) * (yi - pred)
	}

	if ssTot == 0 {
		return 0, errors.NewValueError("LinearRegression.Score", "cannot compute R2 with zero variance in y")
	}

	return 1.0 - ssRes/ssTot, nil
}

// Coef は学習された回帰係数のコピーを返す
func (lr *LinearRegression) Coef() []float64 {
	if lr.coef_ == nil {
		return nil
	}
	coef := make([]float64, len(lr.coef_))
	copy(coef, lr.coef_)
	return coef
}

// Intercept は学習された切片を返す
func (lr *LinearRegression) Intercept() float64 {
	return lr.intercept_
}

// GetParams はハイパーパラメータを返す
func (lr *LinearRegression) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"fit_intercept": lr.fitIntercept,
		"fitted":        lr.state.IsFitted(),
	}
}

// SetParams はハイパーパラメータを設定する
// 学習済みの状態には影響しない
func (lr *LinearRegression) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		switch key {
		case "fit_intercept":
			v, ok := value.(bool)
			if !ok {
				return errors.NewValidationError("fit_intercept", "must be a bool", value)
			}
			lr.fitIntercept = v
		case "fitted":
			// GetParamsの出力をそのまま渡せるように読み飛ばす
		default:
			return errors.NewValidationError("params", "unknown parameter", key)
		}
	}
	return nil
}

// Clone はハイパーパラメータのみを引き継いだ未学習のコピーを返す
func (lr *LinearRegression) Clone() *LinearRegression {
	return NewLinearRegression(WithFitIntercept(lr.fitIntercept))
}

// ExportWeights は学習済みの重みをシリアライズ可能な形式で返す
// 係数のチェックサムを含み、インポート時に破損を検出できる
func (lr *LinearRegression) ExportWeights() (*model.ModelWeights, error) {
	if !lr.state.IsFitted() {
		return nil, errors.NewNotFittedError("LinearRegression", "ExportWeights")
	}

	weights := &model.ModelWeights{
		ModelType:       "LinearRegression",
		Version:         "1.0.0",
		Coefficients:    lr.Coef(),
		Intercept:       lr.intercept_,
		IsFitted:        true,
		Hyperparameters: lr.GetParams(),
		Metadata: map[string]interface{}{
			"n_features": lr.nFeatures_,
			"n_samples":  lr.nSamples_,
		},
	}

	data, err := json.Marshal(weights.Coefficients)
	if err != nil {
		return nil, errors.Wrap(err, "LinearRegression.ExportWeights: failed to compute checksum")
	}
	hash := sha256.Sum256(data)
	weights.Metadata["checksum"] = hex.EncodeToString(hash[:])

	return weights, nil
}

// ImportWeights はエクスポートされた重みを読み込む
func (lr *LinearRegression) ImportWeights(weights *model.ModelWeights) error {
	if weights == nil {
		return errors.NewValidationError("weights", "must not be nil", nil)
	}
	if weights.ModelType != "LinearRegression" {
		return errors.NewValidationError("weights",
			"model type mismatch, expected LinearRegression", weights.ModelType)
	}

	if checksumStr, ok := weights.Metadata["checksum"].(string); ok {
		data, err := json.Marshal(weights.Coefficients)
		if err != nil {
			return errors.Wrap(err, "LinearRegression.ImportWeights: failed to verify checksum")
		}
		hash := sha256.Sum256(data)
		if checksumStr != hex.EncodeToString(hash[:]) {
			return errors.NewValueError("LinearRegression.ImportWeights", "checksum mismatch, weights may be corrupted")
		}
	}

	if v, ok := weights.Hyperparameters["fit_intercept"].(bool); ok {
		lr.fitIntercept = v
	}

	lr.coef_ = make([]float64, len(weights.Coefficients))
	copy(lr.coef_, weights.Coefficients)
	lr.intercept_ = weights.Intercept
	lr.nFeatures_ = len(lr.coef_)

	// JSON経由の数値はfloat64にデコードされる
	if v, ok := weights.Metadata["n_samples"].(float64); ok {
		lr.nSamples_ = int(v)
	}

	lr.state.SetDimensions(lr.nFeatures_, lr.nSamples_)
	lr.state.SetFitted()
	return nil
}

// String はモデルの文字列表現を返す
func (lr *LinearRegression) String() string {
	if !lr.state.IsFitted() {
		return fmt.Sprintf("LinearRegression(fit_intercept=%t)", lr.fitIntercept)
	}
	return fmt.Sprintf("LinearRegression(fit_intercept=%t, n_features=%d, fitted=true)",
		lr.fitIntercept, lr.nFeatures_)
}
