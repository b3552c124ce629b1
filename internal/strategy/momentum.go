package strategy

import (
	"math"

	"crypto-trading-engine/internal/model"
	"crypto-trading-engine/pkg/ta"
)

// minMeanVolume 动量信号要求窗口平均成交量高于该值，过滤薄市场的假突破
const minMeanVolume = 1000.0

// Momentum 动量策略：回看窗口内价格相对变化超过阈值且成交量充足时，
// 顺着变化方向发出信号
type Momentum struct {
	lookback  int
	threshold float64
	quantity  float64
}

// NewMomentum 创建动量策略
func NewMomentum(lookback int, threshold, quantity float64) *Momentum {
	return &Momentum{
		lookback:  lookback,
		threshold: threshold,
		quantity:  quantity,
	}
}

func (m *Momentum) Name() string {
	return "MomentumStrategy"
}

// Analyze 计算最新样本相对 lookback 步之前样本的涨跌幅
func (m *Momentum) Analyze(window []model.PriceSample, _ *model.OrderBookSnapshot) *model.TradingSignal {
	if m.lookback < 2 || len(window) < m.lookback {
		return nil
	}

	recent := window[len(window)-m.lookback:]
	closes := ta.Closes(recent)
	change := ta.RelativeChange(closes)
	meanVolume := ta.Mean(ta.Volumes(recent))

	if math.Abs(change) <= m.threshold || meanVolume <= minMeanVolume {
		return nil
	}

	side := model.SideBuy
	if change < 0 {
		side = model.SideSell
	}

	return &model.TradingSignal{
		Symbol:      recent[len(recent)-1].Symbol,
		Side:        side,
		Confidence:  math.Min(math.Abs(change), 1.0),
		TargetPrice: closes[len(closes)-1],
		Quantity:    m.quantity,
		Strategy:    m.Name(),
	}
}
