package metrics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/sahana-alt/ML1Blogs/pkg/errors"
)

// scorePair はスコアと正解関連度の組
type scorePair = struct {
	score     float64
	relevance float64
}

// dcg は与えられた順序のまま上位k件のDCGを計算する
// 利得は 2^relevance - 1、割引は log2(position + 1)
func dcg(pairs []scorePair, k int) float64 {
	if k > len(pairs) {
		k = len(pairs)
	}

	sum := 0.0
	for i := 0; i < k; i++ {
		gain := math.Pow(2, pairs[i].relevance) - 1
		discount := math.Log2(float64(i) + 2)
		sum += gain / discount
	}
	return sum
}

// NDCG は正規化割引累積利得を計算する
//
// yPredのスコア降順に並べたDCGを、yTrueの理想順序のDCGで正規化する。
// k=-1は全件評価を意味する。関連度が全て0の場合は0.0を返す。
func NDCG(yTrue, yPred *mat.VecDense, k int) (float64, error) {
	if err := validateVectors(yTrue, yPred); err != nil {
		return 0, err
	}
	if k == 0 || k < -1 {
		return 0, errors.NewValidationError("k", "must be positive or -1 for all elements", k)
	}

	n := yTrue.Len()
	if k == -1 {
		k = n
	}

	pairs := make([]scorePair, n)
	for i := 0; i < n; i++ {
		rel := yTrue.AtVec(i)
		if rel < 0 {
			return 0, errors.NewValidationError("yTrue", "relevance must be non-negative", rel)
		}
		pairs[i] = scorePair{score: yPred.AtVec(i), relevance: rel}
	}

	// 予測スコア降順のDCG
	predicted := make([]scorePair, n)
	copy(predicted, pairs)
	sort.SliceStable(predicted, func(a, b int) bool {
		return predicted[a].score > predicted[b].score
	})

	// 関連度降順のIDCG
	ideal := make([]scorePair, n)
	copy(ideal, pairs)
	sort.SliceStable(ideal, func(a, b int) bool {
		return ideal[a].relevance > ideal[b].relevance
	})

	idcg := dcg(ideal, k)
	if idcg == 0 {
		return 0.0, nil
	}

	return dcg(predicted, k) / idcg, nil
}

// NDCGMatrix は行列入力（第1列を使用）に対するNDCGを計算する
func NDCGMatrix(yTrue, yPred mat.Matrix, k int) (float64, error) {
	yTrueVec, err := firstColumn(yTrue)
	if err != nil {
		return 0, err
	}
	yPredVec, err := firstColumn(yPred)
	if err != nil {
		return 0, err
	}
	return NDCG(yTrueVec, yPredVec, k)
}

// AveragePrecision は二値関連度に対する平均適合率を計算する
// スコア降順に走査し、各正例位置での適合率を平均する
func AveragePrecision(yTrue, yPred *mat.VecDense) (float64, error) {
	if err := validateVectors(yTrue, yPred); err != nil {
		return 0, err
	}
	if err := validateBinaryLabels(yTrue); err != nil {
		return 0, err
	}

	n := yTrue.Len()
	pairs := make([]scorePair, n)
	for i := 0; i < n; i++ {
		pairs[i] = scorePair{score: yPred.AtVec(i), relevance: yTrue.AtVec(i)}
	}
	sort.SliceStable(pairs, func(a, b int) bool {
		return pairs[a].score > pairs[b].score
	})

	hits := 0
	sum := 0.0
	for i, p := range pairs {
		if p.relevance == 1 {
			hits++
			sum += float64(hits) / float64(i+1)
		}
	}

	if hits == 0 {
		return 0.0, nil
	}
	return sum / float64(hits), nil
}

// MeanAveragePrecision は複数クエリの平均適合率を平均する
func MeanAveragePrecision(yTrueList, yPredList []*mat.VecDense) (float64, error) {
	if len(yTrueList) == 0 || len(yPredList) == 0 {
		return 0, errors.NewModelError("MeanAveragePrecision", "empty data", errors.ErrEmptyData)
	}
	if len(yTrueList) != len(yPredList) {
		return 0, errors.NewDimensionError("MeanAveragePrecision", len(yTrueList), len(yPredList), 0)
	}

	sum := 0.0
	for i := range yTrueList {
		ap, err := AveragePrecision(yTrueList[i], yPredList[i])
		if err != nil {
			return 0, errors.Wrapf(err, "query %d", i)
		}
		sum += ap
	}

	return sum / float64(len(yTrueList)), nil
}
