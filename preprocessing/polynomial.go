package preprocessing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/sahana-alt/ML1Blogs/core/model"
	"github.com/sahana-alt/ML1Blogs/pkg/errors"
)

// PolynomialFeatures は特徴量を多項式展開する変換器
// 単一の特徴量 x を [x, x², ..., x^degree] に展開し、
// 線形回帰モデルで非線形の関係を学習できるようにする
//
// 複数特徴量の場合は交互作用項を含まない累乗のみの展開を行う
// （各列ごとに [x_j, x_j², ..., x_j^degree]）
type PolynomialFeatures struct {
	model.BaseEstimator

	// Degree は展開する最大次数 (>= 1)
	Degree int

	// NFeaturesIn は入力特徴量の数
	NFeaturesIn int
}

// NewPolynomialFeatures は新しいPolynomialFeaturesを作成する
func NewPolynomialFeatures(degree int) *PolynomialFeatures {
	return &PolynomialFeatures{Degree: degree}
}

// Fit は入力の特徴量数を記録する
func (p *PolynomialFeatures) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("PolynomialFeatures.Fit", "empty data", errors.ErrEmptyData)
	}
	if p.Degree < 1 {
		return errors.NewValidationError("degree", "must be at least 1", p.Degree)
	}

	p.NFeaturesIn = c
	p.SetFitted()
	return nil
}

// Transform は各特徴量を次数ごとの累乗列に展開する
// 出力は n_samples × (n_features * degree) の行列
func (p *PolynomialFeatures) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !p.IsFitted() {
		return nil, errors.NewNotFittedError("PolynomialFeatures", "Transform")
	}

	r, c := X.Dims()
	if c != p.NFeaturesIn {
		return nil, errors.NewDimensionError("PolynomialFeatures.Transform", p.NFeaturesIn, c, 1)
	}

	out := mat.NewDense(r, c*p.Degree, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := X.At(i, j)
			for d := 1; d <= p.Degree; d++ {
				out.Set(i, j*p.Degree+d-1, math.Pow(v, float64(d)))
			}
		}
	}

	return out, nil
}

// FitTransform はFitとTransformを同時に実行する
func (p *PolynomialFeatures) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := p.Fit(X); err != nil {
		return nil, err
	}
	return p.Transform(X)
}

// String は変換器の文字列表現を返す
func (p *PolynomialFeatures) String() string {
	return fmt.Sprintf("PolynomialFeatures(degree=%d)", p.Degree)
}
