// Package neighbors は近傍ベースの分類アルゴリズムを提供します。
package neighbors

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/sahana-alt/ML1Blogs/core/model"
	"github.com/sahana-alt/ML1Blogs/core/parallel"
	"github.com/sahana-alt/ML1Blogs/pkg/errors"
)

// KNeighborsClassifier はK近傍法による分類器
// scikit-learnのKNeighborsClassifierと互換性を持つ
//
// 学習は訓練データの保持のみで、予測時に各サンプルの
// ユークリッド距離による近傍探索と多数決を行う
type KNeighborsClassifier struct {
	state *model.StateManager

	// ハイパーパラメータ
	nNeighbors int    // 近傍数
	weights    string // 投票の重み付け: "uniform", "distance"

	// 学習パラメータ
	X_         *mat.Dense // 訓練データ
	y_         []int      // 訓練ラベル
	classes_   []int      // 学習されたクラスラベル（昇順）
	nClasses_  int
	nFeatures_ int
}

// KNNOption はKNeighborsClassifierの設定オプション
type KNNOption func(*KNeighborsClassifier)

// WithNNeighbors は近傍数を設定
func WithNNeighbors(k int) KNNOption {
	return func(knn *KNeighborsClassifier) {
		knn.nNeighbors = k
	}
}

// WithWeights は投票の重み付け方法を設定 ("uniform" または "distance")
func WithWeights(weights string) KNNOption {
	return func(knn *KNeighborsClassifier) {
		knn.weights = weights
	}
}

// NewKNeighborsClassifier は新しいKNeighborsClassifierを作成
func NewKNeighborsClassifier(options ...KNNOption) *KNeighborsClassifier {
	knn := &KNeighborsClassifier{
		state:      model.NewStateManager(),
		nNeighbors: 5,
		weights:    "uniform",
	}

	for _, opt := range options {
		opt(knn)
	}

	return knn
}

// Fit は訓練データを保持する
func (knn *KNeighborsClassifier) Fit(X, y mat.Matrix) error {
	rows, cols := X.Dims()
	yRows, yCols := y.Dims()

	if rows == 0 || cols == 0 {
		return errors.NewModelError("KNeighborsClassifier.Fit", "empty data", errors.ErrEmptyData)
	}
	if rows != yRows {
		return errors.NewDimensionError("KNeighborsClassifier.Fit", rows, yRows, 0)
	}
	if yCols != 1 {
		return errors.NewDimensionError("KNeighborsClassifier.Fit", 1, yCols, 1)
	}
	if knn.nNeighbors < 1 {
		return errors.NewValidationError("n_neighbors", "must be at least 1", knn.nNeighbors)
	}
	if knn.nNeighbors > rows {
		return errors.NewValidationError("n_neighbors", "must not exceed number of samples", knn.nNeighbors)
	}
	if knn.weights != "uniform" && knn.weights != "distance" {
		return errors.NewValidationError("weights", `must be "uniform" or "distance"`, knn.weights)
	}

	knn.X_ = mat.DenseCopyOf(X)
	knn.y_ = make([]int, rows)
	classSet := make(map[int]bool)
	for i := 0; i < rows; i++ {
		label := int(y.At(i, 0))
		knn.y_[i] = label
		classSet[label] = true
	}

	knn.classes_ = make([]int, 0, len(classSet))
	for c := range classSet {
		knn.classes_ = append(knn.classes_, c)
	}
	sort.Ints(knn.classes_)
	knn.nClasses_ = len(knn.classes_)
	knn.nFeatures_ = cols

	knn.state.SetFitted()
	knn.state.SetDimensions(cols, rows)
	return nil
}

// neighbor は近傍探索の1件（訓練サンプル番号と距離）
type neighbor struct {
	index    int
	distance float64
}

// kNearest はクエリ点のk近傍を距離の昇順で返す
func (knn *KNeighborsClassifier) kNearest(query []float64) []neighbor {
	rows, _ := knn.X_.Dims()
	all := make([]neighbor, rows)

	for i := 0; i < rows; i++ {
		sum := 0.0
		for j := range query {
			diff := knn.X_.At(i, j) - query[j]
			sum += diff * diff
		}
		all[i] = neighbor{index: i, distance: math.Sqrt(sum)}
	}

	sort.Slice(all, func(a, b int) bool {
		if all[a].distance != all[b].distance {
			return all[a].distance < all[b].distance
		}
		return all[a].index < all[b].index
	})

	return all[:knn.nNeighbors]
}

// classVotes はk近傍からクラスごとの投票値を集計する
func (knn *KNeighborsClassifier) classVotes(nearest []neighbor) []float64 {
	classIndex := make(map[int]int, knn.nClasses_)
	for i, c := range knn.classes_ {
		classIndex[c] = i
	}

	votes := make([]float64, knn.nClasses_)
	for _, nb := range nearest {
		w := 1.0
		if knn.weights == "distance" {
			// 距離0の近傍（完全一致）は圧倒的な重みを持たせる
			if nb.distance < 1e-12 {
				w = 1e12
			} else {
				w = 1.0 / nb.distance
			}
		}
		votes[classIndex[knn.y_[nb.index]]] += w
	}

	return votes
}

// Predict は入力データに対する予測クラスを返す
func (knn *KNeighborsClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !knn.state.IsFitted() {
		return nil, errors.NewNotFittedError("KNeighborsClassifier", "Predict")
	}

	rows, cols := X.Dims()
	if cols != knn.nFeatures_ {
		return nil, errors.NewDimensionError("KNeighborsClassifier.Predict", knn.nFeatures_, cols, 1)
	}

	predictions := mat.NewDense(rows, 1, nil)

	parallel.ParallelizeWithThreshold(rows, 200, func(start, end int) {
		for i := start; i < end; i++ {
			query := mat.Row(nil, i, X)
			votes := knn.classVotes(knn.kNearest(query))

			best, bestVotes := 0, math.Inf(-1)
			for c, v := range votes {
				if v > bestVotes {
					best, bestVotes = c, v
				}
			}
			predictions.Set(i, 0, float64(knn.classes_[best]))
		}
	})

	return predictions, nil
}

// PredictProba は各クラスの予測確率を返す
// 確率は近傍の投票値をクラス間で正規化したもの
func (knn *KNeighborsClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if !knn.state.IsFitted() {
		return nil, errors.NewNotFittedError("KNeighborsClassifier", "PredictProba")
	}

	rows, cols := X.Dims()
	if cols != knn.nFeatures_ {
		return nil, errors.NewDimensionError("KNeighborsClassifier.PredictProba", knn.nFeatures_, cols, 1)
	}

	proba := mat.NewDense(rows, knn.nClasses_, nil)

	parallel.ParallelizeWithThreshold(rows, 200, func(start, end int) {
		for i := start; i < end; i++ {
			query := mat.Row(nil, i, X)
			votes := knn.classVotes(knn.kNearest(query))

			total := 0.0
			for _, v := range votes {
				total += v
			}
			for c, v := range votes {
				proba.Set(i, c, v/total)
			}
		}
	})

	return proba, nil
}

// Score はテストデータでの平均正解率を返す
func (knn *KNeighborsClassifier) Score(X, y mat.Matrix) (float64, error) {
	predictions, err := knn.Predict(X)
	if err != nil {
		return 0, err
	}

	rows, _ := y.Dims()
	correct := 0
	for i := 0; i < rows; i++ {
		if int(predictions.At(i, 0)) == int(y.At(i, 0)) {
			correct++
		}
	}

	return float64(correct) / float64(rows), nil
}

// Classes は学習されたクラスラベルを返す
func (knn *KNeighborsClassifier) Classes() []int {
	classes := make([]int, len(knn.classes_))
	copy(classes, knn.classes_)
	return classes
}

// String は分類器の文字列表現を返す
func (knn *KNeighborsClassifier) String() string {
	return fmt.Sprintf("KNeighborsClassifier(n_neighbors=%d, weights=%q)", knn.nNeighbors, knn.weights)
}
