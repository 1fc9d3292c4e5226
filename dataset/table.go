// Package dataset はチュートリアルで使用する表形式データの読み込みを提供します。
// CSVファイルを列名付きのTableとして読み込み、特徴量行列・ラベルベクトルへの
// 変換を行います。
package dataset

import (
	"encoding/csv"
	"os"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/sahana-alt/ML1Blogs/pkg/errors"
)

// Table はヘッダ行付きCSVから読み込まれた表形式データ
// 全てのセルは文字列として保持し、数値変換は列の取り出し時に行う
type Table struct {
	// Columns は列名（ヘッダ行の順序を保持）
	Columns []string

	// rows は行データ（rows[i][j] は i行目のj列目のセル）
	rows [][]string

	// index は列名から列番号への逆引き
	index map[string]int
}

// LoadCSV はヘッダ行付きのCSVファイルをTableとして読み込む
//
// パラメータ:
//   - path: CSVファイルのパス
//
// 戻り値:
//   - *Table: 読み込まれたテーブル
//   - error: ファイルが存在しない、またはCSVとして不正な場合
func LoadCSV(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "dataset: failed to open %s", path)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "dataset: failed to parse %s", path)
	}

	if len(records) < 2 {
		return nil, errors.NewValueError("LoadCSV", "file must contain a header row and at least one data row")
	}

	return NewTable(records[0], records[1:])
}

// NewTable はヘッダと行データからTableを構築する
func NewTable(columns []string, rows [][]string) (*Table, error) {
	if len(columns) == 0 {
		return nil, errors.NewValueError("NewTable", "no columns")
	}

	index := make(map[string]int, len(columns))
	for j, name := range columns {
		if _, dup := index[name]; dup {
			return nil, errors.NewValidationError("columns", "duplicate column name", name)
		}
		index[name] = j
	}

	for _, row := range rows {
		if len(row) != len(columns) {
			return nil, errors.NewDimensionError("NewTable", len(columns), len(row), 1)
		}
	}

	return &Table{Columns: columns, rows: rows, index: index}, nil
}

// NumRows は行数を返す
func (t *Table) NumRows() int {
	return len(t.rows)
}

// NumCols は列数を返す
func (t *Table) NumCols() int {
	return len(t.Columns)
}

// HasColumn は列が存在するかどうかを返す
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// StringColumn は指定列を文字列スライスとして返す
func (t *Table) StringColumn(name string) ([]string, error) {
	j, ok := t.index[name]
	if !ok {
		return nil, errors.NewValidationError("column", "column not found", name)
	}

	values := make([]string, len(t.rows))
	for i, row := range t.rows {
		values[i] = row[j]
	}
	return values, nil
}

// FloatColumn は指定列を数値スライスとして返す
// 数値として解釈できないセルがあればエラーを返す
func (t *Table) FloatColumn(name string) ([]float64, error) {
	j, ok := t.index[name]
	if !ok {
		return nil, errors.NewValidationError("column", "column not found", name)
	}

	values := make([]float64, len(t.rows))
	for i, row := range t.rows {
		v, err := strconv.ParseFloat(row[j], 64)
		if err != nil {
			return nil, errors.Newf("dataset: column %q row %d: cannot parse %q as float", name, i, row[j])
		}
		values[i] = v
	}
	return values, nil
}

// FeatureMatrix は指定した数値列を n_samples × n_features の行列として返す
//
// 使用例:
//
//	X, err := table.FeatureMatrix("Annual Income (k$)", "Spending Score (1-100)")
func (t *Table) FeatureMatrix(columns ...string) (*mat.Dense, error) {
	if len(columns) == 0 {
		return nil, errors.NewValueError("FeatureMatrix", "no columns specified")
	}

	n := len(t.rows)
	if n == 0 {
		return nil, errors.NewModelError("Table.FeatureMatrix", "empty table", errors.ErrEmptyData)
	}

	X := mat.NewDense(n, len(columns), nil)
	for j, name := range columns {
		col, err := t.FloatColumn(name)
		if err != nil {
			return nil, err
		}
		X.SetCol(j, col)
	}
	return X, nil
}

// LabelVector は指定した数値列を n_samples × 1 の行列として返す
func (t *Table) LabelVector(column string) (*mat.Dense, error) {
	col, err := t.FloatColumn(column)
	if err != nil {
		return nil, err
	}
	y := mat.NewDense(len(col), 1, nil)
	y.SetCol(0, col)
	return y, nil
}

// Row は i 行目のセルを返す
func (t *Table) Row(i int) []string {
	row := make([]string, len(t.rows[i]))
	copy(row, t.rows[i])
	return row
}
