package pipeline

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrDatasetNotFound 数据集文件不存在
var ErrDatasetNotFound = errors.New("dataset not found")

var missingTokens = map[string]bool{
	"":     true,
	"NA":   true,
	"N/A":  true,
	"NaN":  true,
	"nan":  true,
	"null": true,
}

// Frame 列式数据集。数值列的缺失值以 NaN 表示
type Frame struct {
	columns []string
	numeric map[string][]float64
	text    map[string][]string
	rows    int
}

// LoadCSV 读取带表头的CSV文件
func LoadCSV(path string) (*Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w at %s", ErrDatasetNotFound, path)
		}
		return nil, err
	}
	defer file.Close()

	return ReadCSV(file)
}

// ReadCSV 解析CSV内容，去除UTF-8 BOM
func ReadCSV(r io.Reader) (*Frame, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	reader := csv.NewReader(decoded)

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("csv is empty")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	seen := make(map[string]bool, len(header))
	for _, name := range header {
		if seen[name] {
			return nil, fmt.Errorf("duplicate column %q", name)
		}
		seen[name] = true
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}

	frame := &Frame{
		columns: append([]string(nil), header...),
		numeric: make(map[string][]float64),
		text:    make(map[string][]string),
		rows:    len(records),
	}

	for col, name := range header {
		cells := make([]string, len(records))
		for i, record := range records {
			cells[i] = strings.TrimSpace(record[col])
		}
		if values, ok := parseNumeric(cells); ok {
			frame.numeric[name] = values
		} else {
			frame.text[name] = cells
		}
	}

	return frame, nil
}

func parseNumeric(cells []string) ([]float64, bool) {
	values := make([]float64, len(cells))
	for i, cell := range cells {
		if missingTokens[cell] {
			values[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, false
		}
		values[i] = v
	}
	return values, true
}

func (f *Frame) Columns() []string {
	return append([]string(nil), f.columns...)
}

func (f *Frame) Len() int {
	return f.rows
}

func (f *Frame) Has(column string) bool {
	_, okNum := f.numeric[column]
	_, okText := f.text[column]
	return okNum || okText
}

func (f *Frame) IsNumeric(column string) bool {
	_, ok := f.numeric[column]
	return ok
}

// NumericColumns 按表头顺序返回数值列
func (f *Frame) NumericColumns() []string {
	names := make([]string, 0, len(f.numeric))
	for _, name := range f.columns {
		if f.IsNumeric(name) {
			names = append(names, name)
		}
	}
	return names
}

// Float 返回数值列的副本
func (f *Frame) Float(column string) ([]float64, error) {
	values, ok := f.numeric[column]
	if !ok {
		if f.Has(column) {
			return nil, fmt.Errorf("column %q is not numeric", column)
		}
		return nil, fmt.Errorf("column %q not found", column)
	}
	return append([]float64(nil), values...), nil
}

// Text 返回列的原始文本；数值列被格式化回字符串
func (f *Frame) Text(column string) ([]string, error) {
	if cells, ok := f.text[column]; ok {
		return append([]string(nil), cells...), nil
	}
	values, ok := f.numeric[column]
	if !ok {
		return nil, fmt.Errorf("column %q not found", column)
	}
	cells := make([]string, len(values))
	for i, v := range values {
		cells[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return cells, nil
}

// SetFloat 替换数值列的值
func (f *Frame) SetFloat(column string, values []float64) error {
	if _, ok := f.numeric[column]; !ok {
		return fmt.Errorf("column %q is not numeric", column)
	}
	if len(values) != f.rows {
		return fmt.Errorf("column %q: expected %d values, got %d", column, f.rows, len(values))
	}
	f.numeric[column] = append([]float64(nil), values...)
	return nil
}

// Matrix 按给定列顺序取出特征矩阵，缺失值视为错误
func (f *Frame) Matrix(columns []string) ([][]float64, error) {
	cols := make([][]float64, len(columns))
	for j, name := range columns {
		values, err := f.Float(name)
		if err != nil {
			return nil, err
		}
		cols[j] = values
	}

	matrix := make([][]float64, f.rows)
	for i := range matrix {
		row := make([]float64, len(columns))
		for j := range columns {
			v := cols[j][i]
			if math.IsNaN(v) {
				return nil, fmt.Errorf("column %q has a missing value at row %d", columns[j], i)
			}
			row[j] = v
		}
		matrix[i] = row
	}
	return matrix, nil
}

// Range 数值列的观测最小/最大值
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// ColumnRange 计算数值列的范围，忽略缺失值
func (f *Frame) ColumnRange(column string) (Range, error) {
	values, err := f.Float(column)
	if err != nil {
		return Range{}, err
	}
	r := Range{Min: math.Inf(1), Max: math.Inf(-1)}
	present := 0
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		present++
		r.Min = math.Min(r.Min, v)
		r.Max = math.Max(r.Max, v)
	}
	if present == 0 {
		return Range{}, fmt.Errorf("column %q has no values", column)
	}
	return r, nil
}
