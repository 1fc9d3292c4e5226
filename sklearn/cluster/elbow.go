package cluster

import (
	"gonum.org/v1/gonum/mat"

	"github.com/sahana-alt/ML1Blogs/pkg/errors"
)

// ElbowPoint はエルボー法の1点（クラスタ数とその慣性）
type ElbowPoint struct {
	// K はクラスタ数
	K int

	// Inertia はKクラスタでのクラスタ内平方和誤差（WCSS）
	Inertia float64
}

// ElbowSweep はクラスタ数Kを閉区間[kMin, kMax]で走査し、
// 各Kについて新しいKMeansを最初から学習して慣性を記録する
//
// 前のKの中心を引き継ぐウォームスタートは行わない。
// 返り値はKの昇順に並んだ(K, 慣性)のペアで、最適に学習できていれば
// 慣性はKに対してほぼ単調非増加になる（確率的初期化のため厳密ではない）。
// K=1の慣性は全サンプルの全体平均まわりの総変動に一致する。
//
// パラメータ:
//   - X: スケーリング済みの特徴量行列
//   - kMin, kMax: 走査するKの範囲（両端を含む）
//   - randomState: 各Kの学習に使う乱数シード（決定性のため固定）
//   - options: 各KMeansに追加で適用するオプション
//
// サンプル数がkMaxより少ない場合など、いずれかのKで学習に失敗した場合は
// 即座にエラーを返す。
func ElbowSweep(X mat.Matrix, kMin, kMax int, randomState int64, options ...KMeansOption) ([]ElbowPoint, error) {
	if kMin < 1 {
		return nil, errors.NewValidationError("kMin", "must be at least 1", kMin)
	}
	if kMax < kMin {
		return nil, errors.NewValidationError("kMax", "must be >= kMin", kMax)
	}

	points := make([]ElbowPoint, 0, kMax-kMin+1)
	for k := kMin; k <= kMax; k++ {
		opts := make([]KMeansOption, 0, len(options)+2)
		opts = append(opts, options...)
		opts = append(opts, WithNClusters(k), WithRandomState(randomState))

		km := NewKMeans(opts...)
		if err := km.Fit(X, nil); err != nil {
			return nil, errors.Wrapf(err, "elbow sweep failed at k=%d", k)
		}

		points = append(points, ElbowPoint{K: k, Inertia: km.Inertia()})
	}

	return points, nil
}
