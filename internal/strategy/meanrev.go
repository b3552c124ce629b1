package strategy

import (
	"math"

	"crypto-trading-engine/internal/model"
	"crypto-trading-engine/pkg/ta"
)

// MeanReversion 均值回归策略：最新价格偏离窗口均值超过阈值时，
// 发出向均值回归方向的信号，目标价即窗口均值
type MeanReversion struct {
	lookback  int
	threshold float64
	quantity  float64
}

// NewMeanReversion 创建均值回归策略
func NewMeanReversion(lookback int, threshold, quantity float64) *MeanReversion {
	return &MeanReversion{
		lookback:  lookback,
		threshold: threshold,
		quantity:  quantity,
	}
}

func (m *MeanReversion) Name() string {
	return "MeanReversionStrategy"
}

// Analyze 计算最新价格相对回看均值的偏离度，均值取 lookback 周期的 SMA
func (m *MeanReversion) Analyze(window []model.PriceSample, _ *model.OrderBookSnapshot) *model.TradingSignal {
	if m.lookback < 2 || len(window) < m.lookback {
		return nil
	}

	closes := ta.Closes(window)
	mean := ta.Sma(closes, m.lookback)
	if mean == 0 {
		return nil
	}

	current := closes[len(closes)-1]
	deviation := (current - mean) / mean
	if math.Abs(deviation) <= m.threshold {
		return nil
	}

	// 价格在均值之上预期回落，做空；在均值之下预期回升，做多
	side := model.SideSell
	if deviation < 0 {
		side = model.SideBuy
	}

	return &model.TradingSignal{
		Symbol:      window[len(window)-1].Symbol,
		Side:        side,
		Confidence:  math.Min(math.Abs(deviation), 1.0),
		TargetPrice: mean,
		Quantity:    m.quantity,
		Strategy:    m.Name(),
	}
}
