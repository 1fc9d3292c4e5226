// Package ensemble は決定木ベースのアンサンブル異常検知モデルを提供します。
package ensemble

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/sahana-alt/ML1Blogs/core/model"
	"github.com/sahana-alt/ML1Blogs/core/parallel"
	"github.com/sahana-alt/ML1Blogs/pkg/errors"
)

// isolationNode は分離木の1ノード
// 葉ノードではfeatureが-1となり、sizeに到達サンプル数を保持する
type isolationNode struct {
	feature   int
	threshold float64
	left      *isolationNode
	right     *isolationNode
	size      int
}

// IsolationForest はランダム分割による異常検知アンサンブル
// scikit-learnのIsolationForestと互換性を持つ
//
// 各木はサブサンプルに対してランダムな特徴量・しきい値で再帰分割を行い、
// 点が孤立するまでの経路長の期待値から異常スコアを計算する。
// 異常な点ほど少ない分割で孤立するため経路が短くなる。
type IsolationForest struct {
	state *model.StateManager

	// ハイパーパラメータ
	nEstimators   int     // 木の本数
	maxSamples    int     // 各木のサブサンプル数（0は自動: min(256, n)）
	contamination float64 // データ中の異常の想定割合
	randomState   int64

	// 学習パラメータ
	trees      []*isolationNode
	offset_    float64 // contamination分位点による判定しきい値
	nFeatures_ int
	sampleSize int // 実際に使用したサブサンプル数
}

// IsolationForestOption はIsolationForestの設定オプション
type IsolationForestOption func(*IsolationForest)

// WithNEstimators は木の本数を設定
func WithNEstimators(n int) IsolationForestOption {
	return func(f *IsolationForest) {
		f.nEstimators = n
	}
}

// WithMaxSamples は各木のサブサンプル数を設定
func WithMaxSamples(n int) IsolationForestOption {
	return func(f *IsolationForest) {
		f.maxSamples = n
	}
}

// WithContamination はデータ中の異常割合を設定 (0, 0.5]
// Predictの判定しきい値はこの分位点から決まる
func WithContamination(c float64) IsolationForestOption {
	return func(f *IsolationForest) {
		f.contamination = c
	}
}

// WithRandomState は乱数シードを設定
func WithRandomState(seed int64) IsolationForestOption {
	return func(f *IsolationForest) {
		f.randomState = seed
	}
}

// NewIsolationForest は新しいIsolationForestを作成
func NewIsolationForest(options ...IsolationForestOption) *IsolationForest {
	f := &IsolationForest{
		state:         model.NewStateManager(),
		nEstimators:   100,
		maxSamples:    0,
		contamination: 0.1,
		randomState:   -1,
	}

	for _, opt := range options {
		opt(f)
	}

	return f
}

// averagePathLength は二分探索木における平均経路長 c(n)
// 経路長の正規化係数として使用する
func averagePathLength(n int) float64 {
	if n <= 1 {
		return 0
	}
	if n == 2 {
		return 1
	}
	harmonic := math.Log(float64(n-1)) + 0.5772156649 // オイラー・マスケローニ定数
	return 2*harmonic - 2*float64(n-1)/float64(n)
}

// Fit はサブサンプルごとに分離木を構築する
func (f *IsolationForest) Fit(X mat.Matrix) error {
	rows, cols := X.Dims()

	if rows == 0 || cols == 0 {
		return errors.NewModelError("IsolationForest.Fit", "empty data", errors.ErrEmptyData)
	}
	if f.nEstimators <= 0 {
		return errors.NewValidationError("nEstimators", "must be positive", f.nEstimators)
	}
	if f.contamination <= 0 || f.contamination > 0.5 {
		return errors.NewValidationError("contamination", "must be in (0, 0.5]", f.contamination)
	}

	sampleSize := f.maxSamples
	if sampleSize <= 0 || sampleSize > rows {
		sampleSize = 256
		if sampleSize > rows {
			sampleSize = rows
		}
	}
	f.sampleSize = sampleSize
	f.nFeatures_ = cols

	var rng *rand.Rand
	if f.randomState >= 0 {
		rng = rand.New(rand.NewSource(f.randomState))
	} else {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}

	// 木の深さは平均経路長が飽和するlog2(サブサンプル数)で打ち切る
	maxDepth := int(math.Ceil(math.Log2(float64(sampleSize))))
	if maxDepth < 1 {
		maxDepth = 1
	}

	f.trees = make([]*isolationNode, f.nEstimators)
	for t := 0; t < f.nEstimators; t++ {
		indices := rng.Perm(rows)[:sampleSize]
		sample := make([][]float64, sampleSize)
		for i, idx := range indices {
			row := make([]float64, cols)
			for j := 0; j < cols; j++ {
				row[j] = X.At(idx, j)
			}
			sample[i] = row
		}
		f.trees[t] = buildIsolationTree(sample, 0, maxDepth, rng)
	}

	// contamination分位点でしきい値を決める
	scores, err := f.scoreAll(X)
	if err != nil {
		return err
	}
	sorted := make([]float64, len(scores))
	copy(sorted, scores)
	sort.Float64s(sorted)

	// しきい値は分位点を挟む2つの順序統計量の中点に置く
	// 分位点ちょうどのスコアを持つサンプルも異常側に入り、
	// 学習データのうちおよそcontamination割合が-1と判定される
	cutoff := int(math.Ceil(float64(rows) * (1.0 - f.contamination)))
	if cutoff > rows-1 {
		cutoff = rows - 1
	}
	if cutoff < 1 {
		cutoff = 1
	}
	if rows == 1 {
		f.offset_ = sorted[0]
	} else {
		f.offset_ = (sorted[cutoff-1] + sorted[cutoff]) / 2
	}

	f.state.SetDimensions(cols, rows)
	f.state.SetFitted()
	return nil
}

// buildIsolationTree はランダム分割で再帰的に木を構築する
func buildIsolationTree(sample [][]float64, depth, maxDepth int, rng *rand.Rand) *isolationNode {
	n := len(sample)
	if n <= 1 || depth >= maxDepth {
		return &isolationNode{feature: -1, size: n}
	}

	cols := len(sample[0])

	// 値に幅のある特徴量からランダムに選ぶ
	candidates := rng.Perm(cols)
	for _, feature := range candidates {
		minVal, maxVal := sample[0][feature], sample[0][feature]
		for _, row := range sample[1:] {
			if row[feature] < minVal {
				minVal = row[feature]
			}
			if row[feature] > maxVal {
				maxVal = row[feature]
			}
		}
		if minVal == maxVal {
			continue
		}

		threshold := minVal + rng.Float64()*(maxVal-minVal)
		var left, right [][]float64
		for _, row := range sample {
			if row[feature] < threshold {
				left = append(left, row)
			} else {
				right = append(right, row)
			}
		}

		return &isolationNode{
			feature:   feature,
			threshold: threshold,
			left:      buildIsolationTree(left, depth+1, maxDepth, rng),
			right:     buildIsolationTree(right, depth+1, maxDepth, rng),
			size:      n,
		}
	}

	// 全特徴量が定数なら分割できない
	return &isolationNode{feature: -1, size: n}
}

// pathLength は点が葉に到達するまでの調整済み経路長を計算する
// 葉に複数サンプルが残る場合はc(size)で補正する
func pathLength(node *isolationNode, point []float64, depth float64) float64 {
	if node.feature == -1 {
		return depth + averagePathLength(node.size)
	}
	if point[node.feature] < node.threshold {
		return pathLength(node.left, point, depth+1)
	}
	return pathLength(node.right, point, depth+1)
}

// scoreAll は全サンプルの異常スコアを並列計算する
func (f *IsolationForest) scoreAll(X mat.Matrix) ([]float64, error) {
	rows, cols := X.Dims()
	if cols != f.nFeatures_ {
		return nil, errors.NewDimensionError("IsolationForest.ScoreSamples", f.nFeatures_, cols, 1)
	}

	cNorm := averagePathLength(f.sampleSize)
	scores := make([]float64, rows)

	parallel.ParallelizeWithThreshold(rows, 100, func(start, end int) {
		point := make([]float64, cols)
		for i := start; i < end; i++ {
			for j := 0; j < cols; j++ {
				point[j] = X.At(i, j)
			}
			sum := 0.0
			for _, tree := range f.trees {
				sum += pathLength(tree, point, 0)
			}
			avgPath := sum / float64(len(f.trees))
			scores[i] = math.Pow(2, -avgPath/cNorm)
		}
	})

	return scores, nil
}

// ScoreSamples は各サンプルの異常スコア [0, 1) を返す
// 1に近いほど異常、0.5前後は正常とみなせる
func (f *IsolationForest) ScoreSamples(X mat.Matrix) ([]float64, error) {
	if !f.state.IsFitted() {
		return nil, errors.NewNotFittedError("IsolationForest", "ScoreSamples")
	}
	return f.scoreAll(X)
}

// DecisionFunction はしきい値との差による判定値を返す
// 負の値は異常、非負の値は正常を意味する
func (f *IsolationForest) DecisionFunction(X mat.Matrix) ([]float64, error) {
	scores, err := f.ScoreSamples(X)
	if err != nil {
		return nil, err
	}
	for i := range scores {
		scores[i] = f.offset_ - scores[i]
	}
	return scores, nil
}

// Predict は各サンプルを+1（正常）または-1（異常）に分類する
func (f *IsolationForest) Predict(X mat.Matrix) ([]int, error) {
	decisions, err := f.DecisionFunction(X)
	if err != nil {
		return nil, err
	}

	labels := make([]int, len(decisions))
	for i, d := range decisions {
		if d < 0 {
			labels[i] = -1
		} else {
			labels[i] = 1
		}
	}
	return labels, nil
}

// Threshold はcontamination分位点から決まった判定しきい値を返す
func (f *IsolationForest) Threshold() float64 {
	return f.offset_
}
