// Package visualization はモデルの評価結果をPNGチャートとして保存します。
//
// 全ての関数は値のスライスからファイルパスへの純粋な変換で、
// 隠れた状態を持ちません。
package visualization

import (
	"fmt"
	"image/color"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/sahana-alt/ML1Blogs/metrics"
	"github.com/sahana-alt/ML1Blogs/pkg/errors"
	"github.com/sahana-alt/ML1Blogs/sklearn/cluster"
)

const (
	chartWidth  = 6 * vg.Inch
	chartHeight = 4 * vg.Inch
)

// ElbowCurve はクラスタ数スイープの結果をエルボー図として保存する
func ElbowCurve(points []cluster.ElbowPoint, path string) error {
	if len(points) == 0 {
		return errors.NewModelError("visualization.ElbowCurve", "empty data", errors.ErrEmptyData)
	}

	p := plot.New()
	p.Title.Text = "Elbow Method"
	p.X.Label.Text = "Number of Clusters (K)"
	p.Y.Label.Text = "Within-Cluster Sum of Squares"

	xys := make(plotter.XYs, len(points))
	for i, pt := range points {
		xys[i].X = float64(pt.K)
		xys[i].Y = pt.Inertia
	}

	line, scatter, err := plotter.NewLinePoints(xys)
	if err != nil {
		return errors.Wrap(err, "visualization.ElbowCurve: failed to build line")
	}
	line.Color = plotutil.Color(0)
	scatter.GlyphStyle.Color = plotutil.Color(0)
	p.Add(line, scatter)

	if err := p.Save(chartWidth, chartHeight, path); err != nil {
		return errors.Wrapf(err, "visualization.ElbowCurve: failed to save %s", path)
	}
	return nil
}

// ROCCurves は多クラスROC評価の曲線を1枚のチャートに重ねて保存する
// Defined=falseのクラスはスキップされる
func ROCCurves(results []metrics.ClassROC, path string) error {
	if len(results) == 0 {
		return errors.NewModelError("visualization.ROCCurves", "empty data", errors.ErrEmptyData)
	}

	p := plot.New()
	p.Title.Text = "ROC Curves (One-vs-Rest)"
	p.X.Label.Text = "False Positive Rate"
	p.Y.Label.Text = "True Positive Rate"
	p.X.Min, p.X.Max = 0, 1
	p.Y.Min, p.Y.Max = 0, 1
	p.Legend.Top = false

	// ランダム分類器の対角基準線
	diagonal, err := plotter.NewLine(plotter.XYs{{X: 0, Y: 0}, {X: 1, Y: 1}})
	if err != nil {
		return errors.Wrap(err, "visualization.ROCCurves: failed to build baseline")
	}
	diagonal.Color = color.Gray{Y: 160}
	diagonal.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
	p.Add(diagonal)

	plotted := 0
	for i, r := range results {
		if !r.Defined {
			continue
		}

		xys := make(plotter.XYs, len(r.Curve))
		for j, pt := range r.Curve {
			xys[j].X = pt.FPR
			xys[j].Y = pt.TPR
		}

		line, err := plotter.NewLine(xys)
		if err != nil {
			return errors.Wrapf(err, "visualization.ROCCurves: failed to build curve for class %d", r.Class)
		}
		line.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("class %d (AUC=%.3f)", r.Class, r.AUC), line)
		plotted++
	}

	if plotted == 0 {
		return errors.NewValueError("visualization.ROCCurves", "no defined curves to plot")
	}

	if err := p.Save(chartWidth, chartHeight, path); err != nil {
		return errors.Wrapf(err, "visualization.ROCCurves: failed to save %s", path)
	}
	return nil
}

// ClusterScatter は2次元データのクラスタ割り当てと中心点を散布図として保存する
// Xは2列の行列でなければならない
func ClusterScatter(X mat.Matrix, labels []int, centers mat.Matrix, path string) error {
	rows, cols := X.Dims()
	if cols != 2 {
		return errors.NewDimensionError("visualization.ClusterScatter", 2, cols, 1)
	}
	if rows != len(labels) {
		return errors.NewDimensionError("visualization.ClusterScatter", rows, len(labels), 0)
	}

	p := plot.New()
	p.Title.Text = "Cluster Assignments"
	p.X.Label.Text = "Feature 1"
	p.Y.Label.Text = "Feature 2"

	// クラスタごとに色分けした散布図
	byCluster := make(map[int]plotter.XYs)
	for i := 0; i < rows; i++ {
		c := labels[i]
		byCluster[c] = append(byCluster[c], plotter.XY{X: X.At(i, 0), Y: X.At(i, 1)})
	}

	nClusters := 0
	for c := range byCluster {
		if c+1 > nClusters {
			nClusters = c + 1
		}
	}

	for c := 0; c < nClusters; c++ {
		xys, ok := byCluster[c]
		if !ok {
			continue
		}
		scatter, err := plotter.NewScatter(xys)
		if err != nil {
			return errors.Wrapf(err, "visualization.ClusterScatter: failed to build cluster %d", c)
		}
		scatter.GlyphStyle.Color = plotutil.Color(c)
		scatter.GlyphStyle.Radius = vg.Points(2)
		p.Add(scatter)
		p.Legend.Add(fmt.Sprintf("cluster %d", c), scatter)
	}

	if centers != nil {
		cRows, cCols := centers.Dims()
		if cCols != 2 {
			return errors.NewDimensionError("visualization.ClusterScatter", 2, cCols, 1)
		}
		xys := make(plotter.XYs, cRows)
		for i := 0; i < cRows; i++ {
			xys[i].X = centers.At(i, 0)
			xys[i].Y = centers.At(i, 1)
		}
		marks, err := plotter.NewScatter(xys)
		if err != nil {
			return errors.Wrap(err, "visualization.ClusterScatter: failed to build centroids")
		}
		marks.GlyphStyle.Color = color.Black
		marks.GlyphStyle.Radius = vg.Points(5)
		p.Add(marks)
		p.Legend.Add("centroids", marks)
	}

	if err := p.Save(chartWidth, chartHeight, path); err != nil {
		return errors.Wrapf(err, "visualization.ClusterScatter: failed to save %s", path)
	}
	return nil
}

// RegressionFit は単回帰の観測値と予測直線を1枚のチャートとして保存する
// xは説明変数、yは観測値、predictedはxに対応する予測値
func RegressionFit(x, y, predicted []float64, path string) error {
	if len(x) == 0 {
		return errors.NewModelError("visualization.RegressionFit", "empty data", errors.ErrEmptyData)
	}
	if len(x) != len(y) || len(x) != len(predicted) {
		return errors.NewDimensionError("visualization.RegressionFit", len(x), len(y), 0)
	}

	p := plot.New()
	p.Title.Text = "Regression Fit"
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"

	observed := make(plotter.XYs, len(x))
	fitted := make(plotter.XYs, len(x))
	for i := range x {
		observed[i] = plotter.XY{X: x[i], Y: y[i]}
		fitted[i] = plotter.XY{X: x[i], Y: predicted[i]}
	}

	scatter, err := plotter.NewScatter(observed)
	if err != nil {
		return errors.Wrap(err, "visualization.RegressionFit: failed to build scatter")
	}
	scatter.GlyphStyle.Color = plotutil.Color(0)
	scatter.GlyphStyle.Radius = vg.Points(2)

	line, err := plotter.NewLine(fitted)
	if err != nil {
		return errors.Wrap(err, "visualization.RegressionFit: failed to build fit line")
	}
	line.Color = plotutil.Color(1)

	p.Add(scatter, line)
	p.Legend.Add("observed", scatter)
	p.Legend.Add("fitted", line)

	if err := p.Save(chartWidth, chartHeight, path); err != nil {
		return errors.Wrapf(err, "visualization.RegressionFit: failed to save %s", path)
	}
	return nil
}

// ResidualPlot は予測値に対する残差の散布図を保存する
func ResidualPlot(predicted, residuals []float64, path string) error {
	if len(predicted) == 0 {
		return errors.NewModelError("visualization.ResidualPlot", "empty data", errors.ErrEmptyData)
	}
	if len(predicted) != len(residuals) {
		return errors.NewDimensionError("visualization.ResidualPlot", len(predicted), len(residuals), 0)
	}

	p := plot.New()
	p.Title.Text = "Residuals"
	p.X.Label.Text = "Predicted"
	p.Y.Label.Text = "Residual"

	xys := make(plotter.XYs, len(predicted))
	for i := range predicted {
		xys[i] = plotter.XY{X: predicted[i], Y: residuals[i]}
	}

	scatter, err := plotter.NewScatter(xys)
	if err != nil {
		return errors.Wrap(err, "visualization.ResidualPlot: failed to build scatter")
	}
	scatter.GlyphStyle.Color = plotutil.Color(0)
	scatter.GlyphStyle.Radius = vg.Points(2)
	p.Add(scatter)

	// 残差0の基準線
	minX, maxX := predicted[0], predicted[0]
	for _, v := range predicted {
		if v < minX {
			minX = v
		}
		if v > maxX {
			maxX = v
		}
	}
	zero, err := plotter.NewLine(plotter.XYs{{X: minX, Y: 0}, {X: maxX, Y: 0}})
	if err != nil {
		return errors.Wrap(err, "visualization.ResidualPlot: failed to build baseline")
	}
	zero.Color = color.Gray{Y: 160}
	zero.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
	p.Add(zero)

	if err := p.Save(chartWidth, chartHeight, path); err != nil {
		return errors.Wrapf(err, "visualization.ResidualPlot: failed to save %s", path)
	}
	return nil
}

// AnomalyHistogram は異常スコアのヒストグラムと判定しきい値の縦線を保存する
func AnomalyHistogram(scores []float64, threshold float64, path string) error {
	if len(scores) == 0 {
		return errors.NewModelError("visualization.AnomalyHistogram", "empty data", errors.ErrEmptyData)
	}

	p := plot.New()
	p.Title.Text = "Anomaly Scores"
	p.X.Label.Text = "Score"
	p.Y.Label.Text = "Count"

	values := make(plotter.Values, len(scores))
	copy(values, scores)

	hist, err := plotter.NewHist(values, 30)
	if err != nil {
		return errors.Wrap(err, "visualization.AnomalyHistogram: failed to build histogram")
	}
	hist.FillColor = plotutil.Color(0)
	p.Add(hist)

	// しきい値の縦線
	maxCount := 0.0
	for _, bin := range hist.Bins {
		if bin.Weight > maxCount {
			maxCount = bin.Weight
		}
	}
	cut, err := plotter.NewLine(plotter.XYs{
		{X: threshold, Y: 0},
		{X: threshold, Y: maxCount},
	})
	if err != nil {
		return errors.Wrap(err, "visualization.AnomalyHistogram: failed to build threshold line")
	}
	cut.Color = color.RGBA{R: 200, A: 255}
	cut.Width = vg.Points(1.5)
	p.Add(cut)
	p.Legend.Add("threshold", cut)

	if err := p.Save(chartWidth, chartHeight, path); err != nil {
		return errors.Wrapf(err, "visualization.AnomalyHistogram: failed to save %s", path)
	}
	return nil
}
