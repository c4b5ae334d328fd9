package pipeline

import (
	"fmt"
	"math"
	"strings"
)

var labelWords = map[string]int{
	"Presence": 1,
	"Absence":  0,
	"Yes":      1,
	"No":       0,
}

// BinaryLabels 提取目标列。文本标签先按词表映射，映射不全时按关键字回退
func BinaryLabels(frame *Frame, column string) ([]int, error) {
	if !frame.Has(column) {
		return nil, fmt.Errorf("target column %q not found", column)
	}

	if frame.IsNumeric(column) {
		values, err := frame.Float(column)
		if err != nil {
			return nil, err
		}
		labels := make([]int, len(values))
		for i, v := range values {
			if math.IsNaN(v) {
				return nil, fmt.Errorf("target column %q has a missing value at row %d", column, i)
			}
			labels[i] = int(v)
		}
		return labels, nil
	}

	cells, err := frame.Text(column)
	if err != nil {
		return nil, err
	}
	labels := make([]int, len(cells))
	mapped := true
	for i, cell := range cells {
		label, ok := labelWords[cell]
		if !ok {
			mapped = false
			break
		}
		labels[i] = label
	}
	if mapped {
		return labels, nil
	}

	for i, cell := range cells {
		if strings.Contains(cell, "resence") || strings.Contains(cell, "Yes") {
			labels[i] = 1
		} else {
			labels[i] = 0
		}
	}
	return labels, nil
}

// TargetColumn 返回首选目标列，不存在时回退到最后一列
func TargetColumn(frame *Frame, preferred string, fallbackLast bool) (string, error) {
	if frame.Has(preferred) {
		return preferred, nil
	}
	columns := frame.Columns()
	if fallbackLast && len(columns) > 0 {
		return columns[len(columns)-1], nil
	}
	return "", fmt.Errorf("target column %q not found", preferred)
}
