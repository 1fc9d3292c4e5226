// Package cluster はクラスタリングアルゴリズムを提供します。
package cluster

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/sahana-alt/ML1Blogs/core/model"
	"github.com/sahana-alt/ML1Blogs/pkg/errors"
)

// KMeans はLloyd法によるバッチK-meansクラスタリング
// scikit-learnのKMeansと互換性を持つ
type KMeans struct {
	model.BaseEstimator

	// ハイパーパラメータ
	nClusters   int     // クラスタ数
	init        string  // 初期化方法: "k-means++", "random"
	maxIter     int     // 1回の実行あたりの最大イテレーション数
	nInit       int     // 異なる初期化での実行回数（最良の結果を採用）
	tol         float64 // 収束判定の許容誤差（慣性の改善量）
	randomState int64   // 乱数シード

	// 学習パラメータ
	clusterCenters_ [][]float64 // クラスタ中心（nClusters x nFeatures）
	labels_         []int       // 各サンプルのクラスタラベル
	inertia_        float64     // クラスタ内平方和誤差（WCSS）
	nIter_          int         // 実行されたイテレーション数

	// 内部状態
	mu         sync.RWMutex
	rng        *rand.Rand
	nFeatures_ int
	nSamples_  int
}

// KMeansOption はKMeansの設定オプション
type KMeansOption func(*KMeans)

// WithNClusters はクラスタ数を設定
func WithNClusters(n int) KMeansOption {
	return func(km *KMeans) {
		km.nClusters = n
	}
}

// WithInit は初期化方法を設定 ("k-means++" または "random")
func WithInit(init string) KMeansOption {
	return func(km *KMeans) {
		km.init = init
	}
}

// WithMaxIter は最大イテレーション数を設定
func WithMaxIter(maxIter int) KMeansOption {
	return func(km *KMeans) {
		km.maxIter = maxIter
	}
}

// WithNInit は初期化のやり直し回数を設定
func WithNInit(n int) KMeansOption {
	return func(km *KMeans) {
		km.nInit = n
	}
}

// WithTol は収束判定の許容誤差を設定
func WithTol(tol float64) KMeansOption {
	return func(km *KMeans) {
		km.tol = tol
	}
}

// WithRandomState は乱数シードを設定
func WithRandomState(seed int64) KMeansOption {
	return func(km *KMeans) {
		km.randomState = seed
		if seed >= 0 {
			km.rng = rand.New(rand.NewSource(seed))
		}
	}
}

// NewKMeans は新しいKMeansを作成
func NewKMeans(options ...KMeansOption) *KMeans {
	km := &KMeans{
		nClusters:   8,
		init:        "k-means++",
		maxIter:     300,
		nInit:       10,
		tol:         1e-4,
		randomState: -1,
	}

	for _, opt := range options {
		opt(km)
	}

	if km.rng == nil {
		if km.randomState >= 0 {
			km.rng = rand.New(rand.NewSource(km.randomState))
		} else {
			km.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
		}
	}

	return km
}

// Fit はLloyd法でモデルを学習する
// サンプル数がクラスタ数より少ない場合は即座にエラーを返す
func (km *KMeans) Fit(X, y mat.Matrix) error {
	km.mu.Lock()
	defer km.mu.Unlock()

	rows, cols := X.Dims()
	if rows == 0 || cols == 0 {
		return errors.NewModelError("KMeans.Fit", "empty data", errors.ErrEmptyData)
	}
	if km.nClusters < 1 {
		return errors.NewValidationError("n_clusters", "must be at least 1", km.nClusters)
	}
	if rows < km.nClusters {
		return errors.Newf("mlblogs: KMeans.Fit: n_samples=%d should be >= n_clusters=%d", rows, km.nClusters)
	}

	km.nSamples_ = rows
	km.nFeatures_ = cols

	// 複数回実行して最良（最小慣性）の結果を採用
	bestInertia := math.Inf(1)
	var bestCenters [][]float64
	var bestLabels []int
	var bestNIter int
	var bestConverged bool

	for run := 0; run < km.nInit; run++ {
		centers, labels, inertia, nIter, converged := km.lloydRun(X)
		if inertia < bestInertia {
			bestInertia = inertia
			bestCenters = centers
			bestLabels = labels
			bestNIter = nIter
			bestConverged = converged
		}
	}

	if !bestConverged {
		errors.Warn(errors.NewConvergenceWarning("KMeans", km.maxIter,
			"inertia improvement did not fall below tol"))
	}

	km.clusterCenters_ = bestCenters
	km.labels_ = bestLabels
	km.inertia_ = bestInertia
	km.nIter_ = bestNIter

	km.SetFitted()
	return nil
}

// lloydRun は1回の初期化からLloyd反復を収束まで実行する
// maxIterを使い切って収束しなかった場合はconvergedがfalseになる
func (km *KMeans) lloydRun(X mat.Matrix) ([][]float64, []int, float64, int, bool) {
	rows, cols := X.Dims()

	centers := km.initializeCenters(X)
	labels := make([]int, rows)
	prevInertia := math.Inf(1)
	var finalIter int
	converged := false

	for iter := 0; iter < km.maxIter; iter++ {
		finalIter = iter

		// 割り当てステップ: 各サンプルを最近傍の中心に割り当てる
		inertia := 0.0
		for i := 0; i < rows; i++ {
			sample := mat.Row(nil, i, X)
			c, dist := nearestCenter(sample, centers)
			labels[i] = c
			inertia += dist * dist
		}

		// 更新ステップ: 各クラスタの中心を所属サンプルの平均に移動する
		sums := make([][]float64, km.nClusters)
		counts := make([]int, km.nClusters)
		for c := range sums {
			sums[c] = make([]float64, cols)
		}
		for i := 0; i < rows; i++ {
			c := labels[i]
			counts[c]++
			for j := 0; j < cols; j++ {
				sums[c][j] += X.At(i, j)
			}
		}
		for c := 0; c < km.nClusters; c++ {
			if counts[c] == 0 {
				// 空クラスタはランダムなサンプルに再配置する
				idx := km.rng.Intn(rows)
				copy(centers[c], mat.Row(nil, idx, X))
				continue
			}
			for j := 0; j < cols; j++ {
				centers[c][j] = sums[c][j] / float64(counts[c])
			}
		}

		// 収束判定
		if prevInertia-inertia < km.tol && iter > 0 {
			converged = true
			break
		}
		prevInertia = inertia
	}

	// 最終的な割り当てと慣性を確定する
	inertia := 0.0
	for i := 0; i < rows; i++ {
		sample := mat.Row(nil, i, X)
		c, dist := nearestCenter(sample, centers)
		labels[i] = c
		inertia += dist * dist
	}

	return centers, labels, inertia, finalIter, converged
}

// Predict は入力データに対するクラスタ予測を行う
func (km *KMeans) Predict(X mat.Matrix) (mat.Matrix, error) {
	km.mu.RLock()
	defer km.mu.RUnlock()

	if !km.IsFitted() {
		return nil, errors.NewNotFittedError("KMeans", "Predict")
	}

	rows, cols := X.Dims()
	if cols != km.nFeatures_ {
		return nil, errors.NewDimensionError("KMeans.Predict", km.nFeatures_, cols, 1)
	}

	predictions := mat.NewDense(rows, 1, nil)
	for i := 0; i < rows; i++ {
		sample := mat.Row(nil, i, X)
		c, _ := nearestCenter(sample, km.clusterCenters_)
		predictions.Set(i, 0, float64(c))
	}

	return predictions, nil
}

// Transform はデータを各クラスタ中心との距離に変換する
func (km *KMeans) Transform(X mat.Matrix) (mat.Matrix, error) {
	km.mu.RLock()
	defer km.mu.RUnlock()

	if !km.IsFitted() {
		return nil, errors.NewNotFittedError("KMeans", "Transform")
	}

	rows, cols := X.Dims()
	if cols != km.nFeatures_ {
		return nil, errors.NewDimensionError("KMeans.Transform", km.nFeatures_, cols, 1)
	}

	distances := mat.NewDense(rows, km.nClusters, nil)
	for i := 0; i < rows; i++ {
		sample := mat.Row(nil, i, X)
		for c := 0; c < km.nClusters; c++ {
			distances.Set(i, c, euclideanDistance(sample, km.clusterCenters_[c]))
		}
	}

	return distances, nil
}

// FitPredict は学習と予測を同時に行う
func (km *KMeans) FitPredict(X, y mat.Matrix) (mat.Matrix, error) {
	if err := km.Fit(X, y); err != nil {
		return nil, err
	}
	return km.Predict(X)
}

// ClusterCenters は学習されたクラスタ中心を返す
func (km *KMeans) ClusterCenters() [][]float64 {
	km.mu.RLock()
	defer km.mu.RUnlock()

	centers := make([][]float64, len(km.clusterCenters_))
	for i := range km.clusterCenters_ {
		centers[i] = make([]float64, len(km.clusterCenters_[i]))
		copy(centers[i], km.clusterCenters_[i])
	}
	return centers
}

// Labels は学習データのクラスタラベルを返す
func (km *KMeans) Labels() []int {
	km.mu.RLock()
	defer km.mu.RUnlock()

	if km.labels_ == nil {
		return nil
	}

	labels := make([]int, len(km.labels_))
	copy(labels, km.labels_)
	return labels
}

// Inertia は慣性（クラスタ内平方和誤差、WCSS）を返す
func (km *KMeans) Inertia() float64 {
	km.mu.RLock()
	defer km.mu.RUnlock()
	return km.inertia_
}

// NIterations は最良の実行で消費されたイテレーション数を返す
func (km *KMeans) NIterations() int {
	km.mu.RLock()
	defer km.mu.RUnlock()
	return km.nIter_
}

// 内部ヘルパーメソッド

// initializeCenters はクラスタ中心を初期化する
func (km *KMeans) initializeCenters(X mat.Matrix) [][]float64 {
	rows, cols := X.Dims()

	if km.init == "random" {
		centers := make([][]float64, km.nClusters)
		for i := 0; i < km.nClusters; i++ {
			centers[i] = make([]float64, cols)
			idx := km.rng.Intn(rows)
			copy(centers[i], mat.Row(nil, idx, X))
		}
		return centers
	}

	// デフォルトはk-means++
	return km.initKMeansPlusPlus(X)
}

// initKMeansPlusPlus はk-means++初期化を実行する
// 最初の中心をランダムに選び、以降は既存の中心から遠いサンプルを
// 距離の二乗に比例した確率で選ぶ
func (km *KMeans) initKMeansPlusPlus(X mat.Matrix) [][]float64 {
	rows, cols := X.Dims()
	centers := make([][]float64, km.nClusters)

	centers[0] = make([]float64, cols)
	copy(centers[0], mat.Row(nil, km.rng.Intn(rows), X))

	distances := make([]float64, rows)
	for c := 1; c < km.nClusters; c++ {
		totalDistance := 0.0
		for i := 0; i < rows; i++ {
			sample := mat.Row(nil, i, X)
			_, minDist := nearestCenter(sample, centers[:c])
			distances[i] = minDist * minDist
			totalDistance += distances[i]
		}

		target := km.rng.Float64() * totalDistance
		cumSum := 0.0
		selectedIdx := 0
		for i := 0; i < rows; i++ {
			cumSum += distances[i]
			if cumSum >= target {
				selectedIdx = i
				break
			}
		}

		centers[c] = make([]float64, cols)
		copy(centers[c], mat.Row(nil, selectedIdx, X))
	}

	return centers
}

// 補助関数

// nearestCenter は最近傍のクラスタ中心とその距離を返す
func nearestCenter(sample []float64, centers [][]float64) (int, float64) {
	nearest := 0
	minDist := math.Inf(1)

	for c, center := range centers {
		dist := euclideanDistance(sample, center)
		if dist < minDist {
			minDist = dist
			nearest = c
		}
	}

	return nearest, minDist
}

// euclideanDistance はユークリッド距離を計算する
func euclideanDistance(a, b []float64) float64 {
	if len(a) != len(b) {
		return math.Inf(1)
	}

	sum := 0.0
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}

	return math.Sqrt(sum)
}
