package metrics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/sahana-alt/ML1Blogs/pkg/errors"
)

// logLossEpsilon は対数損失計算時のクリッピング値
// log(0)の発散を防ぐため予測確率を[eps, 1-eps]に収める
const logLossEpsilon = 1e-15

// validateBinaryLabels はラベルが0/1のみであることを確認する
func validateBinaryLabels(yTrue *mat.VecDense) error {
	for i := 0; i < yTrue.Len(); i++ {
		v := yTrue.AtVec(i)
		if v != 0 && v != 1 {
			return errors.NewValidationError("yTrue", "labels must be binary (0 or 1)", v)
		}
	}
	return nil
}

// AUC はROC曲線下面積を計算する
//
// Mann-Whitney統計量による順位ベースの計算で、同点スコアは
// 平均順位として扱う。正例または負例しか存在しない場合は
// UndefinedMetricWarningを通知して0.5を返す。
func AUC(yTrue, yPred *mat.VecDense) (float64, error) {
	if err := validateVectors(yTrue, yPred); err != nil {
		return 0, err
	}
	if err := validateBinaryLabels(yTrue); err != nil {
		return 0, err
	}

	n := yTrue.Len()
	nPos := 0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == 1 {
			nPos++
		}
	}
	nNeg := n - nPos

	if nPos == 0 || nNeg == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("AUC", "only one class present in yTrue", 0.5))
		return 0.5, nil
	}

	// スコア昇順の平均順位を割り当てる（順位は1始まり）
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	sort.Slice(indices, func(a, b int) bool {
		return yPred.AtVec(indices[a]) < yPred.AtVec(indices[b])
	})

	ranks := make([]float64, n)
	i := 0
	for i < n {
		j := i
		for j < n-1 && yPred.AtVec(indices[j+1]) == yPred.AtVec(indices[i]) {
			j++
		}
		// 同点グループ[i, j]に平均順位を付与
		avgRank := float64(i+j)/2.0 + 1.0
		for k := i; k <= j; k++ {
			ranks[indices[k]] = avgRank
		}
		i = j + 1
	}

	sumRanksPos := 0.0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == 1 {
			sumRanksPos += ranks[i]
		}
	}

	return (sumRanksPos - float64(nPos)*float64(nPos+1)/2.0) / (float64(nPos) * float64(nNeg)), nil
}

// AUCMatrix は行列入力（第1列を使用）に対するAUCを計算する
func AUCMatrix(yTrue, yPred mat.Matrix) (float64, error) {
	yTrueVec, err := firstColumn(yTrue)
	if err != nil {
		return 0, err
	}
	yPredVec, err := firstColumn(yPred)
	if err != nil {
		return 0, err
	}
	return AUC(yTrueVec, yPredVec)
}

// BinaryLogLoss は二値分類の対数損失（交差エントロピー）を計算する
// 予測確率はlog(0)を避けるためepsilonでクリッピングされる
func BinaryLogLoss(yTrue, yPred *mat.VecDense) (float64, error) {
	if err := validateVectors(yTrue, yPred); err != nil {
		return 0, err
	}
	if err := validateBinaryLabels(yTrue); err != nil {
		return 0, err
	}

	n := yTrue.Len()
	sum := 0.0
	for i := 0; i < n; i++ {
		p := yPred.AtVec(i)
		if p < logLossEpsilon {
			p = logLossEpsilon
		}
		if p > 1-logLossEpsilon {
			p = 1 - logLossEpsilon
		}
		if yTrue.AtVec(i) == 1 {
			sum -= math.Log(p)
		} else {
			sum -= math.Log(1 - p)
		}
	}

	return sum / float64(n), nil
}

// Accuracy は分類の正解率を計算する
func Accuracy(yTrue, yPred *mat.VecDense) (float64, error) {
	if err := validateVectors(yTrue, yPred); err != nil {
		return 0, err
	}

	n := yTrue.Len()
	correct := 0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == yPred.AtVec(i) {
			correct++
		}
	}

	return float64(correct) / float64(n), nil
}

// ClassificationError は分類の誤り率（1 - 正解率）を計算する
func ClassificationError(yTrue, yPred *mat.VecDense) (float64, error) {
	acc, err := Accuracy(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return 1.0 - acc, nil
}

// Precision は二値分類の適合率 TP / (TP + FP) を計算する
// 正例予測が存在しない場合はUndefinedMetricWarningを通知して0.0を返す
func Precision(yTrue, yPred *mat.VecDense) (float64, error) {
	if err := validateVectors(yTrue, yPred); err != nil {
		return 0, err
	}
	if err := validateBinaryLabels(yTrue); err != nil {
		return 0, err
	}

	tp, fp := 0, 0
	for i := 0; i < yTrue.Len(); i++ {
		if yPred.AtVec(i) == 1 {
			if yTrue.AtVec(i) == 1 {
				tp++
			} else {
				fp++
			}
		}
	}

	if tp+fp == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("Precision", "no positive predictions", 0.0))
		return 0.0, nil
	}

	return float64(tp) / float64(tp+fp), nil
}

// Recall は二値分類の再現率 TP / (TP + FN) を計算する
// 正例ラベルが存在しない場合はUndefinedMetricWarningを通知して0.0を返す
func Recall(yTrue, yPred *mat.VecDense) (float64, error) {
	if err := validateVectors(yTrue, yPred); err != nil {
		return 0, err
	}
	if err := validateBinaryLabels(yTrue); err != nil {
		return 0, err
	}

	tp, fn := 0, 0
	for i := 0; i < yTrue.Len(); i++ {
		if yTrue.AtVec(i) == 1 {
			if yPred.AtVec(i) == 1 {
				tp++
			} else {
				fn++
			}
		}
	}

	if tp+fn == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("Recall", "no positive labels", 0.0))
		return 0.0, nil
	}

	return float64(tp) / float64(tp+fn), nil
}

// F1Score は適合率と再現率の調和平均を計算する
func F1Score(yTrue, yPred *mat.VecDense) (float64, error) {
	precision, err := Precision(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	recall, err := Recall(yTrue, yPred)
	if err != nil {
		return 0, err
	}

	if precision+recall == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("F1Score", "precision and recall are both zero", 0.0))
		return 0.0, nil
	}

	return 2 * precision * recall / (precision + recall), nil
}

// ConfusionMatrix は混同行列を計算する
// 返り値の行列C[i][j]はクラスiの真のサンプルがクラスjと予測された数
// クラスラベルは昇順のスライスとして併せて返す
func ConfusionMatrix(yTrue, yPred *mat.VecDense) (*mat.Dense, []int, error) {
	if err := validateVectors(yTrue, yPred); err != nil {
		return nil, nil, err
	}

	classSet := make(map[int]bool)
	for i := 0; i < yTrue.Len(); i++ {
		classSet[int(yTrue.AtVec(i))] = true
		classSet[int(yPred.AtVec(i))] = true
	}
	classes := make([]int, 0, len(classSet))
	for c := range classSet {
		classes = append(classes, c)
	}
	sort.Ints(classes)

	index := make(map[int]int, len(classes))
	for i, c := range classes {
		index[c] = i
	}

	cm := mat.NewDense(len(classes), len(classes), nil)
	for i := 0; i < yTrue.Len(); i++ {
		ti := index[int(yTrue.AtVec(i))]
		pi := index[int(yPred.AtVec(i))]
		cm.Set(ti, pi, cm.At(ti, pi)+1)
	}

	return cm, classes, nil
}
