// Package naive_bayes は単純ベイズ分類器を提供します。
//
// MultinomialNBは単語カウントのような非負の離散特徴量に適した
// 多項分布ベースの分類器で、スパムフィルタなどのテキスト分類で
// 広く使われています。
package naive_bayes

import (
	"io"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/sahana-alt/ML1Blogs/core/model"
	"github.com/sahana-alt/ML1Blogs/pkg/errors"
)

// MultinomialNB は多項分布単純ベイズ分類器
// scikit-learnのMultinomialNBと互換性を持つ
//
// 特徴量は非負値であることを前提とする（単語カウント、TF-IDFなど）。
// PartialFitによるオンライン学習に対応しており、クラスごとの
// 特徴量カウントを累積することでバッチをまたいだ学習ができる。
type MultinomialNB struct {
	state *model.StateManager

	// ハイパーパラメータ
	alpha    float64 // ラプラススムージング係数
	fitPrior bool    // クラス事前確率をデータから推定するか

	// 学習パラメータ
	classes_      []int       // クラスラベル（昇順）
	classIndex_   map[int]int // クラスラベルから行インデックスへの変換
	classCount_   []float64   // クラスごとのサンプル数
	featureCount_ *mat.Dense  // クラスごとの特徴量カウント (nClasses x nFeatures)
	nFeatures_    int
	nSamplesSeen_ int
}

// NBOption はMultinomialNBの設定オプション
type NBOption func(*MultinomialNB)

// WithAlpha はラプラススムージング係数を設定
// alpha=0はスムージングなし、大きいほど一様分布に近づく
func WithAlpha(alpha float64) NBOption {
	return func(nb *MultinomialNB) {
		nb.alpha = alpha
	}
}

// WithFitPrior はクラス事前確率の推定方法を設定
// falseの場合は一様事前確率を使用
func WithFitPrior(fitPrior bool) NBOption {
	return func(nb *MultinomialNB) {
		nb.fitPrior = fitPrior
	}
}

// NewMultinomialNB は新しいMultinomialNBを作成
func NewMultinomialNB(options ...NBOption) *MultinomialNB {
	nb := &MultinomialNB{
		state:    model.NewStateManager(),
		alpha:    1.0,
		fitPrior: true,
	}

	for _, opt := range options {
		opt(nb)
	}

	return nb
}

// Fit は訓練データから分類器を学習する
// クラスラベルはyから自動的に抽出される
func (nb *MultinomialNB) Fit(X, y mat.Matrix) error {
	rows, _ := X.Dims()

	classSet := make(map[int]bool)
	for i := 0; i < rows; i++ {
		classSet[int(y.At(i, 0))] = true
	}
	classes := make([]int, 0, len(classSet))
	for c := range classSet {
		classes = append(classes, c)
	}
	sort.Ints(classes)

	nb.reset()
	if err := nb.initCounters(classes, X); err != nil {
		return err
	}
	return nb.accumulate(X, y)
}

// PartialFit はミニバッチによるオンライン学習を行う
// 初回呼び出しでは出現しうる全クラスをclassesで指定する必要がある
func (nb *MultinomialNB) PartialFit(X, y mat.Matrix, classes []int) error {
	if nb.featureCount_ == nil {
		if len(classes) == 0 {
			return errors.NewValidationError("classes", "must be provided on first PartialFit call", classes)
		}
		sorted := make([]int, len(classes))
		copy(sorted, classes)
		sort.Ints(sorted)
		if err := nb.initCounters(sorted, X); err != nil {
			return err
		}
	}
	return nb.accumulate(X, y)
}

func (nb *MultinomialNB) reset() {
	nb.classes_ = nil
	nb.classIndex_ = nil
	nb.classCount_ = nil
	nb.featureCount_ = nil
	nb.nSamplesSeen_ = 0
	nb.state.Reset()
}

func (nb *MultinomialNB) initCounters(classes []int, X mat.Matrix) error {
	_, cols := X.Dims()
	if cols == 0 {
		return errors.NewModelError("MultinomialNB.Fit", "empty data", errors.ErrEmptyData)
	}

	nb.classes_ = classes
	nb.classIndex_ = make(map[int]int, len(classes))
	for i, c := range classes {
		nb.classIndex_[c] = i
	}
	nb.classCount_ = make([]float64, len(classes))
	nb.featureCount_ = mat.NewDense(len(classes), cols, nil)
	nb.nFeatures_ = cols
	return nil
}

// accumulate はカウンタにバッチを加算する
func (nb *MultinomialNB) accumulate(X, y mat.Matrix) error {
	rows, cols := X.Dims()
	yRows, yCols := y.Dims()

	if rows == 0 {
		return errors.NewModelError("MultinomialNB.Fit", "empty data", errors.ErrEmptyData)
	}
	if rows != yRows {
		return errors.NewDimensionError("MultinomialNB.Fit", rows, yRows, 0)
	}
	if yCols != 1 {
		return errors.NewDimensionError("MultinomialNB.Fit", 1, yCols, 1)
	}
	if cols != nb.nFeatures_ {
		return errors.NewDimensionError("MultinomialNB.Fit", nb.nFeatures_, cols, 1)
	}

	for i := 0; i < rows; i++ {
		label := int(y.At(i, 0))
		ci, ok := nb.classIndex_[label]
		if !ok {
			return errors.NewValidationError("y", "contains a label not declared in classes", label)
		}

		for j := 0; j < cols; j++ {
			v := X.At(i, j)
			if v < 0 {
				return errors.NewValidationError("X", "MultinomialNB requires non-negative feature values", v)
			}
			nb.featureCount_.Set(ci, j, nb.featureCount_.At(ci, j)+v)
		}
		nb.classCount_[ci]++
	}

	nb.nSamplesSeen_ += rows
	nb.state.SetDimensions(cols, nb.nSamplesSeen_)
	nb.state.SetFitted()
	return nil
}

// jointLogLikelihood は各サンプル・各クラスの結合対数尤度を計算する
// log P(c) + Σ_j x_j * log P(x_j | c)
func (nb *MultinomialNB) jointLogLikelihood(X mat.Matrix) (*mat.Dense, error) {
	if !nb.state.IsFitted() {
		return nil, errors.NewNotFittedError("MultinomialNB", "Predict")
	}

	rows, cols := X.Dims()
	if cols != nb.nFeatures_ {
		return nil, errors.NewDimensionError("MultinomialNB.Predict", nb.nFeatures_, cols, 1)
	}

	nClasses := len(nb.classes_)

	// スムージング済み対数尤度 log((count + alpha) / (total + alpha*n_features))
	logPrior := make([]float64, nClasses)
	logProb := mat.NewDense(nClasses, cols, nil)
	for c := 0; c < nClasses; c++ {
		if nb.fitPrior {
			logPrior[c] = math.Log(nb.classCount_[c] / float64(nb.nSamplesSeen_))
		} else {
			logPrior[c] = -math.Log(float64(nClasses))
		}

		total := 0.0
		for j := 0; j < cols; j++ {
			total += nb.featureCount_.At(c, j)
		}
		denom := math.Log(total + nb.alpha*float64(cols))
		for j := 0; j < cols; j++ {
			logProb.Set(c, j, math.Log(nb.featureCount_.At(c, j)+nb.alpha)-denom)
		}
	}

	jll := mat.NewDense(rows, nClasses, nil)
	for i := 0; i < rows; i++ {
		for c := 0; c < nClasses; c++ {
			sum := logPrior[c]
			for j := 0; j < cols; j++ {
				v := X.At(i, j)
				if v < 0 {
					return nil, errors.NewValidationError("X", "MultinomialNB requires non-negative feature values", v)
				}
				if v != 0 {
					sum += v * logProb.At(c, j)
				}
			}
			jll.Set(i, c, sum)
		}
	}

	return jll, nil
}

// Predict は各サンプルのクラスラベルを予測する
func (nb *MultinomialNB) Predict(X mat.Matrix) (mat.Matrix, error) {
	jll, err := nb.jointLogLikelihood(X)
	if err != nil {
		return nil, err
	}

	rows, _ := jll.Dims()
	predictions := mat.NewDense(rows, 1, nil)
	for i := 0; i < rows; i++ {
		best := 0
		for c := 1; c < len(nb.classes_); c++ {
			if jll.At(i, c) > jll.At(i, best) {
				best = c
			}
		}
		predictions.Set(i, 0, float64(nb.classes_[best]))
	}

	return predictions, nil
}

// PredictLogProba は各クラスの対数事後確率を予測する
func (nb *MultinomialNB) PredictLogProba(X mat.Matrix) (mat.Matrix, error) {
	jll, err := nb.jointLogLikelihood(X)
	if err != nil {
		return nil, err
	}

	// log-sum-expで正規化して数値的オーバーフローを回避
	rows, nClasses := jll.Dims()
	for i := 0; i < rows; i++ {
		maxVal := jll.At(i, 0)
		for c := 1; c < nClasses; c++ {
			if jll.At(i, c) > maxVal {
				maxVal = jll.At(i, c)
			}
		}
		sumExp := 0.0
		for c := 0; c < nClasses; c++ {
			sumExp += math.Exp(jll.At(i, c) - maxVal)
		}
		logSum := maxVal + math.Log(sumExp)
		for c := 0; c < nClasses; c++ {
			jll.Set(i, c, jll.At(i, c)-logSum)
		}
	}

	return jll, nil
}

// PredictProba は各クラスの事後確率を予測する
// 各行の確率は1に正規化される
func (nb *MultinomialNB) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	logProba, err := nb.PredictLogProba(X)
	if err != nil {
		return nil, err
	}

	rows, cols := logProba.Dims()
	proba := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for c := 0; c < cols; c++ {
			proba.Set(i, c, math.Exp(logProba.At(i, c)))
		}
	}

	return proba, nil
}

// Score はテストデータに対する平均正解率を返す
func (nb *MultinomialNB) Score(X, y mat.Matrix) (float64, error) {
	predictions, err := nb.Predict(X)
	if err != nil {
		return 0, err
	}

	rows, _ := y.Dims()
	correct := 0
	for i := 0; i < rows; i++ {
		if predictions.At(i, 0) == y.At(i, 0) {
			correct++
		}
	}

	return float64(correct) / float64(rows), nil
}

// multinomialNBState はシリアライゼーション用のスナップショット
type multinomialNBState struct {
	Alpha        float64
	FitPrior     bool
	Classes      []int
	ClassCount   []float64
	FeatureCount []float64 // 行優先 (nClasses x nFeatures)
	NFeatures    int
	NSamplesSeen int
}

func (nb *MultinomialNB) snapshot() *multinomialNBState {
	nClasses := len(nb.classes_)
	s := &multinomialNBState{
		Alpha:        nb.alpha,
		FitPrior:     nb.fitPrior,
		Classes:      make([]int, nClasses),
		ClassCount:   make([]float64, nClasses),
		FeatureCount: make([]float64, nClasses*nb.nFeatures_),
		NFeatures:    nb.nFeatures_,
		NSamplesSeen: nb.nSamplesSeen_,
	}
	copy(s.Classes, nb.classes_)
	copy(s.ClassCount, nb.classCount_)
	for c := 0; c < nClasses; c++ {
		for j := 0; j < nb.nFeatures_; j++ {
			s.FeatureCount[c*nb.nFeatures_+j] = nb.featureCount_.At(c, j)
		}
	}
	return s
}

func (nb *MultinomialNB) restore(s *multinomialNBState) error {
	if len(s.Classes) == 0 || s.NFeatures <= 0 {
		return errors.NewValueError("MultinomialNB.Load", "snapshot has no classes or features")
	}
	if len(s.FeatureCount) != len(s.Classes)*s.NFeatures {
		return errors.NewValueError("MultinomialNB.Load", "feature count matrix has inconsistent size")
	}
	if len(s.ClassCount) != len(s.Classes) {
		return errors.NewValueError("MultinomialNB.Load", "class count vector has inconsistent size")
	}

	nb.alpha = s.Alpha
	nb.fitPrior = s.FitPrior
	nb.classes_ = make([]int, len(s.Classes))
	copy(nb.classes_, s.Classes)
	nb.classIndex_ = make(map[int]int, len(s.Classes))
	for i, c := range s.Classes {
		nb.classIndex_[c] = i
	}
	nb.classCount_ = make([]float64, len(s.ClassCount))
	copy(nb.classCount_, s.ClassCount)
	counts := make([]float64, len(s.FeatureCount))
	copy(counts, s.FeatureCount)
	nb.featureCount_ = mat.NewDense(len(s.Classes), s.NFeatures, counts)
	nb.nFeatures_ = s.NFeatures
	nb.nSamplesSeen_ = s.NSamplesSeen

	nb.state.SetDimensions(s.NFeatures, s.NSamplesSeen)
	nb.state.SetFitted()
	return nil
}

// Save は学習済みモデルをgob形式でファイルに保存する
func (nb *MultinomialNB) Save(path string) error {
	if !nb.state.IsFitted() {
		return errors.NewNotFittedError("MultinomialNB", "Save")
	}
	return model.SaveModel(nb.snapshot(), path)
}

// Load は保存済みモデルをファイルから読み込む
func (nb *MultinomialNB) Load(path string) error {
	var s multinomialNBState
	if err := model.LoadModel(&s, path); err != nil {
		return err
	}
	return nb.restore(&s)
}

// SaveTo は学習済みモデルを任意のWriterに書き出す
func (nb *MultinomialNB) SaveTo(w io.Writer) error {
	if !nb.state.IsFitted() {
		return errors.NewNotFittedError("MultinomialNB", "SaveTo")
	}
	return model.SaveModelTo(nb.snapshot(), w)
}

// LoadFrom は任意のReaderからモデルを読み込む
func (nb *MultinomialNB) LoadFrom(r io.Reader) error {
	var s multinomialNBState
	if err := model.LoadModelFrom(&s, r); err != nil {
		return err
	}
	return nb.restore(&s)
}

// Classes は学習されたクラスラベルを昇順で返す
func (nb *MultinomialNB) Classes() []int {
	result := make([]int, len(nb.classes_))
	copy(result, nb.classes_)
	return result
}

// NSamplesSeen は学習に使用された累積サンプル数を返す
func (nb *MultinomialNB) NSamplesSeen() int {
	return nb.nSamplesSeen_
}
