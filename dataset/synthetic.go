package dataset

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/sahana-alt/ML1Blogs/pkg/errors"
)

// MakeBlobs は等方性ガウス分布のクラスタを持つ合成データを生成する
// クラスタリングのテストとデモに使用する
//
// パラメータ:
//   - nSamples: 生成するサンプル数（各クラスタにほぼ均等に割り当てる）
//   - centers: クラスタ中心（nCenters × nFeatures）
//   - clusterStd: 各クラスタの標準偏差
//   - randomState: 乱数シード
//
// 戻り値:
//   - X: 特徴量行列 (nSamples × nFeatures)
//   - labels: 各サンプルの所属クラスタ番号
func MakeBlobs(nSamples int, centers [][]float64, clusterStd float64, randomState int64) (*mat.Dense, []int, error) {
	if nSamples <= 0 {
		return nil, nil, errors.NewValidationError("nSamples", "must be positive", nSamples)
	}
	if len(centers) == 0 {
		return nil, nil, errors.NewValueError("MakeBlobs", "no centers given")
	}

	nFeatures := len(centers[0])
	for _, c := range centers {
		if len(c) != nFeatures {
			return nil, nil, errors.NewDimensionError("MakeBlobs", nFeatures, len(c), 1)
		}
	}

	rng := rand.New(rand.NewSource(randomState))
	X := mat.NewDense(nSamples, nFeatures, nil)
	labels := make([]int, nSamples)

	for i := 0; i < nSamples; i++ {
		c := i % len(centers)
		labels[i] = c
		for j := 0; j < nFeatures; j++ {
			X.Set(i, j, centers[c][j]+rng.NormFloat64()*clusterStd)
		}
	}

	return X, labels, nil
}

// MakeRegression は線形関係にノイズを加えた合成回帰データを生成する
//
// y = X*coef + intercept + N(0, noise)
func MakeRegression(nSamples int, coef []float64, intercept, noise float64, randomState int64) (*mat.Dense, *mat.Dense, error) {
	if nSamples <= 0 {
		return nil, nil, errors.NewValidationError("nSamples", "must be positive", nSamples)
	}
	if len(coef) == 0 {
		return nil, nil, errors.NewValueError("MakeRegression", "no coefficients given")
	}

	nFeatures := len(coef)
	rng := rand.New(rand.NewSource(randomState))

	X := mat.NewDense(nSamples, nFeatures, nil)
	y := mat.NewDense(nSamples, 1, nil)

	for i := 0; i < nSamples; i++ {
		target := intercept
		for j := 0; j < nFeatures; j++ {
			v := rng.Float64()*10 - 5
			X.Set(i, j, v)
			target += v * coef[j]
		}
		y.Set(i, 0, target+rng.NormFloat64()*noise)
	}

	return X, y, nil
}
