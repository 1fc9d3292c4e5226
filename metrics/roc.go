package metrics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/sahana-alt/ML1Blogs/pkg/errors"
)

// ROCPoint はROC曲線上の1点
type ROCPoint struct {
	FPR       float64 // 偽陽性率
	TPR       float64 // 真陽性率
	Threshold float64 // この点を生成した判定しきい値
}

// ClassROC は1クラス分のone-vs-rest ROC評価結果
//
// テスト分割にそのクラスのサンプルが存在しない場合、曲線は定義できない。
// その場合Definedはfalse、AUCはNaNとなり、0や1などの値で代用されることはない。
type ClassROC struct {
	Class   int        // クラスインデックス（ラベル行列の列位置）
	Curve   []ROCPoint // (0,0)から(1,1)まで並んだ曲線
	AUC     float64    // 台形則による曲線下面積
	Defined bool       // 正例と負例が両方存在し曲線が定義できたか
}

// ROCCurve は二値分類のROC曲線をしきい値スイープで構築する
//
// スコア降順に判定しきい値を下げながら(FPR, TPR)を記録する。
// 曲線は必ず(0,0)で始まり(1,1)で終わる。正例か負例が存在しない
// 場合はエラーを返す。
func ROCCurve(yTrue, scores *mat.VecDense) ([]ROCPoint, error) {
	if err := validateVectors(yTrue, scores); err != nil {
		return nil, err
	}
	if err := validateBinaryLabels(yTrue); err != nil {
		return nil, err
	}

	n := yTrue.Len()
	nPos, nNeg := 0, 0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == 1 {
			nPos++
		} else {
			nNeg++
		}
	}
	if nPos == 0 || nNeg == 0 {
		return nil, errors.NewValueError("ROCCurve", "both classes must be present to trace a curve")
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	sort.SliceStable(indices, func(a, b int) bool {
		return scores.AtVec(indices[a]) > scores.AtVec(indices[b])
	})

	curve := []ROCPoint{{FPR: 0, TPR: 0, Threshold: math.Inf(1)}}
	tp, fp := 0, 0
	i := 0
	for i < n {
		// 同点スコアはまとめて1しきい値として処理する
		threshold := scores.AtVec(indices[i])
		for i < n && scores.AtVec(indices[i]) == threshold {
			if yTrue.AtVec(indices[i]) == 1 {
				tp++
			} else {
				fp++
			}
			i++
		}
		curve = append(curve, ROCPoint{
			FPR:       float64(fp) / float64(nNeg),
			TPR:       float64(tp) / float64(nPos),
			Threshold: threshold,
		})
	}

	return curve, nil
}

// aucTrapezoid はROC曲線の台形則による面積を計算する
func aucTrapezoid(curve []ROCPoint) float64 {
	area := 0.0
	for i := 1; i < len(curve); i++ {
		width := curve[i].FPR - curve[i-1].FPR
		height := (curve[i].TPR + curve[i-1].TPR) / 2.0
		area += width * height
	}
	return area
}

// MultiClassROC はone-vs-restで多クラスROC曲線とAUCを組み立てる
//
// YTrueはone-hotラベル行列（各行にちょうど1つの1）、probaは同形状の
// 予測確率行列。各クラスを独立した二値問題として扱い、クラスごとの
// 曲線とAUCを返す。テスト分割に正例が存在しないクラスはDefined=false、
// AUC=NaNで明示的に報告され、UndefinedMetricWarningが通知される。
func MultiClassROC(yTrue, proba mat.Matrix) ([]ClassROC, error) {
	if yTrue == nil || proba == nil {
		return nil, errors.NewValidationError("yTrue/proba", "must not be nil", nil)
	}

	rows, cols := yTrue.Dims()
	pRows, pCols := proba.Dims()
	if rows == 0 || cols == 0 {
		return nil, errors.NewModelError("MultiClassROC", "empty data", errors.ErrEmptyData)
	}
	if rows != pRows || cols != pCols {
		return nil, errors.NewDimensionError("MultiClassROC", rows*cols, pRows*pCols, 0)
	}

	// one-hot検証: 各行にちょうど1つの1
	for i := 0; i < rows; i++ {
		ones := 0
		for j := 0; j < cols; j++ {
			v := yTrue.At(i, j)
			if v != 0 && v != 1 {
				return nil, errors.NewValidationError("yTrue", "must be one-hot encoded (0/1 values)", v)
			}
			if v == 1 {
				ones++
			}
		}
		if ones != 1 {
			return nil, errors.NewValidationError("yTrue", "each row must have exactly one positive class", ones)
		}
	}

	results := make([]ClassROC, cols)
	for c := 0; c < cols; c++ {
		binary := mat.NewVecDense(rows, nil)
		scores := mat.NewVecDense(rows, nil)
		nPos := 0
		for i := 0; i < rows; i++ {
			binary.SetVec(i, yTrue.At(i, c))
			scores.SetVec(i, proba.At(i, c))
			if yTrue.At(i, c) == 1 {
				nPos++
			}
		}

		if nPos == 0 || nPos == rows {
			errors.Warn(errors.NewUndefinedMetricWarning(
				"MultiClassROC", "class has no positive or no negative samples in the partition", math.NaN()))
			results[c] = ClassROC{Class: c, Curve: nil, AUC: math.NaN(), Defined: false}
			continue
		}

		curve, err := ROCCurve(binary, scores)
		if err != nil {
			return nil, errors.Wrapf(err, "class %d", c)
		}
		results[c] = ClassROC{Class: c, Curve: curve, AUC: aucTrapezoid(curve), Defined: true}
	}

	return results, nil
}
