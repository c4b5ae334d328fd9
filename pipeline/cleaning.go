package pipeline

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// CleaningRule 清洗规则
type CleaningRule interface {
	Apply(*Frame, *CleaningStats) error
	Name() string
}

// CleaningStats 清洗统计
type CleaningStats struct {
	Rows     int            `json:"rows"`
	Replaced map[string]int `json:"replaced"`
	Filled   map[string]int `json:"filled"`
	Skipped  []string       `json:"skipped,omitempty"`
}

// DataCleaner 数据清洗器，按顺序应用规则
type DataCleaner struct {
	rules []CleaningRule
}

// NewDataCleaner 创建数据清洗器
func NewDataCleaner(rules ...CleaningRule) *DataCleaner {
	return &DataCleaner{rules: rules}
}

// AddRule 添加清洗规则
func (dc *DataCleaner) AddRule(rule CleaningRule) {
	dc.rules = append(dc.rules, rule)
}

// Rules 返回规则名称
func (dc *DataCleaner) Rules() []string {
	names := make([]string, len(dc.rules))
	for i, rule := range dc.rules {
		names[i] = rule.Name()
	}
	return names
}

// Clean 原地清洗数据集
func (dc *DataCleaner) Clean(frame *Frame) (CleaningStats, error) {
	stats := CleaningStats{
		Rows:     frame.Len(),
		Replaced: make(map[string]int),
		Filled:   make(map[string]int),
	}
	for _, rule := range dc.rules {
		if err := rule.Apply(frame, &stats); err != nil {
			return stats, fmt.Errorf("%s: %w", rule.Name(), err)
		}
	}
	return stats, nil
}

// ============ 清洗规则实现 ============

// ZeroAsMissingRule 将指定列中不合理的0值视为缺失
type ZeroAsMissingRule struct {
	Columns []string
}

func NewZeroAsMissingRule(columns ...string) *ZeroAsMissingRule {
	return &ZeroAsMissingRule{Columns: columns}
}

func (r *ZeroAsMissingRule) Name() string {
	return "zero_as_missing"
}

func (r *ZeroAsMissingRule) Apply(frame *Frame, stats *CleaningStats) error {
	for _, column := range r.Columns {
		// 数据集缺少该列时跳过
		if !frame.IsNumeric(column) {
			stats.Skipped = append(stats.Skipped, column)
			continue
		}
		values, err := frame.Float(column)
		if err != nil {
			return err
		}
		for i, v := range values {
			if v == 0 {
				values[i] = math.NaN()
				stats.Replaced[column]++
			}
		}
		if err := frame.SetFloat(column, values); err != nil {
			return err
		}
	}
	return nil
}

// MeanImputeRule 用列均值填充所有数值列的缺失值
type MeanImputeRule struct{}

func NewMeanImputeRule() *MeanImputeRule {
	return &MeanImputeRule{}
}

func (r *MeanImputeRule) Name() string {
	return "mean_impute"
}

func (r *MeanImputeRule) Apply(frame *Frame, stats *CleaningStats) error {
	for _, column := range frame.NumericColumns() {
		values, err := frame.Float(column)
		if err != nil {
			return err
		}

		present := make([]float64, 0, len(values))
		for _, v := range values {
			if !math.IsNaN(v) {
				present = append(present, v)
			}
		}
		if len(present) == len(values) {
			continue
		}
		if len(present) == 0 {
			// 全部缺失的列保持缺失，由特征提取报错
			continue
		}

		mean := stat.Mean(present, nil)
		for i, v := range values {
			if math.IsNaN(v) {
				values[i] = mean
				stats.Filled[column]++
			}
		}
		if err := frame.SetFloat(column, values); err != nil {
			return err
		}
	}
	return nil
}
