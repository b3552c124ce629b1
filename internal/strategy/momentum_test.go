package strategy

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crypto-trading-engine/internal/model"
)

// window 构造给定价格序列的样本窗口，成交量固定
func window(symbol string, volume float64, prices ...float64) []model.PriceSample {
	out := make([]model.PriceSample, len(prices))
	for i, p := range prices {
		out[i] = model.PriceSample{Symbol: symbol, Price: p, Timestamp: int64(i), Volume: volume}
	}
	return out
}

func TestMomentumRisingWindowBuys(t *testing.T) {
	strat := NewMomentum(10, 0.02, 100)

	// 100 -> 118 共 10 步，涨幅 18%，平均成交量 2000 > 1000
	prices := []float64{100, 102, 104, 106, 108, 110, 112, 114, 116, 118}
	signal := strat.Analyze(window("BTC-USDT", 2000, prices...), nil)

	require.NotNil(t, signal)
	assert.Equal(t, model.SideBuy, signal.Side)
	assert.Equal(t, "BTC-USDT", signal.Symbol)
	assert.Equal(t, 100.0, signal.Quantity)
	assert.Equal(t, 118.0, signal.TargetPrice)

	expected := math.Min((118.0-100.0)/100.0, 1.0)
	assert.InDelta(t, expected, signal.Confidence, 1e-9)
}

func TestMomentumFallingWindowSells(t *testing.T) {
	strat := NewMomentum(10, 0.02, 100)

	prices := []float64{118, 116, 114, 112, 110, 108, 106, 104, 102, 100}
	signal := strat.Analyze(window("BTC-USDT", 2000, prices...), nil)

	require.NotNil(t, signal)
	assert.Equal(t, model.SideSell, signal.Side)
	assert.InDelta(t, math.Abs((100.0-118.0)/118.0), signal.Confidence, 1e-9)
}

func TestMomentumBelowThresholdNoSignal(t *testing.T) {
	strat := NewMomentum(10, 0.02, 100)

	// 涨幅 0.9% < 2%
	prices := []float64{100, 100.1, 100.2, 100.3, 100.4, 100.5, 100.6, 100.7, 100.8, 100.9}
	assert.Nil(t, strat.Analyze(window("BTC-USDT", 2000, prices...), nil))
}

func TestMomentumThinVolumeNoSignal(t *testing.T) {
	strat := NewMomentum(10, 0.02, 100)

	prices := []float64{100, 102, 104, 106, 108, 110, 112, 114, 116, 118}
	// 平均成交量 500 <= 1000，信号被过滤
	assert.Nil(t, strat.Analyze(window("BTC-USDT", 500, prices...), nil))
}

func TestMomentumInsufficientSamples(t *testing.T) {
	strat := NewMomentum(10, 0.02, 100)
	assert.Nil(t, strat.Analyze(window("BTC-USDT", 2000, 100, 105, 110), nil))
}

func TestMomentumUsesLookbackTail(t *testing.T) {
	strat := NewMomentum(3, 0.02, 100)

	// 窗口长于 lookback 时，只看最后 3 个样本: 100 -> 110
	prices := []float64{500, 400, 300, 100, 105, 110}
	signal := strat.Analyze(window("BTC-USDT", 2000, prices...), nil)

	require.NotNil(t, signal)
	assert.Equal(t, model.SideBuy, signal.Side)
	assert.InDelta(t, 0.10, signal.Confidence, 1e-9)
}
