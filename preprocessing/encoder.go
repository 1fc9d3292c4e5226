package preprocessing

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/sahana-alt/ML1Blogs/core/model"
	"github.com/sahana-alt/ML1Blogs/pkg/errors"
)

// LabelEncoder は文字列ラベルを連番の整数クラスに変換する
// クラス番号はラベルの辞書順で割り当てられ、学習のたびに同じ順序になる
type LabelEncoder struct {
	model.BaseEstimator

	// Classes_ は学習されたラベル（辞書順）
	Classes_ []string

	index map[string]int
}

// NewLabelEncoder は新しいLabelEncoderを作成する
func NewLabelEncoder() *LabelEncoder {
	return &LabelEncoder{}
}

// Fit はラベル集合を学習する
func (le *LabelEncoder) Fit(labels []string) error {
	if len(labels) == 0 {
		return errors.NewModelError("LabelEncoder.Fit", "empty labels", errors.ErrEmptyData)
	}

	seen := make(map[string]bool)
	for _, l := range labels {
		seen[l] = true
	}

	le.Classes_ = make([]string, 0, len(seen))
	for l := range seen {
		le.Classes_ = append(le.Classes_, l)
	}
	// ラベル順序を固定するため辞書順に並べる
	sort.Strings(le.Classes_)

	le.index = make(map[string]int, len(le.Classes_))
	for i, l := range le.Classes_ {
		le.index[l] = i
	}

	le.SetFitted()
	return nil
}

// Transform はラベルをクラス番号に変換する
func (le *LabelEncoder) Transform(labels []string) ([]int, error) {
	if !le.IsFitted() {
		return nil, errors.NewNotFittedError("LabelEncoder", "Transform")
	}

	encoded := make([]int, len(labels))
	for i, l := range labels {
		idx, ok := le.index[l]
		if !ok {
			return nil, errors.NewValidationError("label", "unseen label", l)
		}
		encoded[i] = idx
	}
	return encoded, nil
}

// FitTransform はFitとTransformを同時に実行する
func (le *LabelEncoder) FitTransform(labels []string) ([]int, error) {
	if err := le.Fit(labels); err != nil {
		return nil, err
	}
	return le.Transform(labels)
}

// InverseTransform はクラス番号をラベルに戻す
func (le *LabelEncoder) InverseTransform(encoded []int) ([]string, error) {
	if !le.IsFitted() {
		return nil, errors.NewNotFittedError("LabelEncoder", "InverseTransform")
	}

	labels := make([]string, len(encoded))
	for i, c := range encoded {
		if c < 0 || c >= len(le.Classes_) {
			return nil, errors.NewValidationError("class", "class index out of range", c)
		}
		labels[i] = le.Classes_[c]
	}
	return labels, nil
}

// LabelVector はクラス番号列を n_samples × 1 の行列として返す
func (le *LabelEncoder) LabelVector(labels []string) (*mat.Dense, error) {
	encoded, err := le.Transform(labels)
	if err != nil {
		return nil, err
	}
	y := mat.NewDense(len(encoded), 1, nil)
	for i, c := range encoded {
		y.Set(i, 0, float64(c))
	}
	return y, nil
}

// OneHotEncoder はクラス番号をone-hot行列に変換する
// 多クラスのone-vs-rest評価で使用する（各行にちょうど1つの1を持つ）
type OneHotEncoder struct {
	model.BaseEstimator

	// NClasses はクラス数
	NClasses int
}

// NewOneHotEncoder は新しいOneHotEncoderを作成する
func NewOneHotEncoder() *OneHotEncoder {
	return &OneHotEncoder{}
}

// Fit はクラス数を学習する
func (oh *OneHotEncoder) Fit(y []int) error {
	if len(y) == 0 {
		return errors.NewModelError("OneHotEncoder.Fit", "empty labels", errors.ErrEmptyData)
	}

	maxClass := 0
	for _, c := range y {
		if c < 0 {
			return errors.NewValidationError("y", "negative class label", c)
		}
		if c > maxClass {
			maxClass = c
		}
	}

	oh.NClasses = maxClass + 1
	oh.SetFitted()
	return nil
}

// Transform はクラス番号列を n_samples × n_classes のone-hot行列に変換する
func (oh *OneHotEncoder) Transform(y []int) (*mat.Dense, error) {
	if !oh.IsFitted() {
		return nil, errors.NewNotFittedError("OneHotEncoder", "Transform")
	}

	out := mat.NewDense(len(y), oh.NClasses, nil)
	for i, c := range y {
		if c < 0 || c >= oh.NClasses {
			return nil, errors.NewValidationError("y", "class label out of range", c)
		}
		out.Set(i, c, 1)
	}
	return out, nil
}

// FitTransform はFitとTransformを同時に実行する
func (oh *OneHotEncoder) FitTransform(y []int) (*mat.Dense, error) {
	if err := oh.Fit(y); err != nil {
		return nil, err
	}
	return oh.Transform(y)
}
