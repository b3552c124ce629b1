package ta

import (
	"github.com/markcheno/go-talib"

	"crypto-trading-engine/internal/model"
)

// Closes 从样本窗口提取价格序列
func Closes(samples []model.PriceSample) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s.Price
	}
	return out
}

// Volumes 从样本窗口提取成交量序列
func Volumes(samples []model.PriceSample) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s.Volume
	}
	return out
}

// Mean 计算整个序列的算术平均值
// 底层使用 talib 的 SMA，period 取序列全长，取输出的最后一个值
func Mean(values []float64) float64 {
	switch len(values) {
	case 0:
		return 0
	case 1:
		return values[0]
	}
	sma := talib.Sma(values, len(values))
	return sma[len(sma)-1]
}

// Sma 计算给定周期的简单移动平均，返回最新值
// 序列长度不足时返回 0
func Sma(values []float64, period int) float64 {
	if period < 2 || len(values) < period {
		return 0
	}
	out := talib.Sma(values, period)
	return out[len(out)-1]
}

// RelativeChange 计算序列首尾之间的相对变化率 (last-first)/first
func RelativeChange(values []float64) float64 {
	if len(values) < 2 || values[0] == 0 {
		return 0
	}
	first := values[0]
	last := values[len(values)-1]
	return (last - first) / first
}
