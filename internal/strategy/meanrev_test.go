package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crypto-trading-engine/internal/model"
)

func TestMeanReversionAboveMeanSells(t *testing.T) {
	strat := NewMeanReversion(4, 0.03, 50)

	// 均值 100，当前 106，偏离 +6% > 3% -> Sell，目标价为均值
	signal := strat.Analyze(window("BTC-USDT", 2000, 98, 98, 98, 106), nil)

	require.NotNil(t, signal)
	assert.Equal(t, model.SideSell, signal.Side)
	assert.InDelta(t, 100.0, signal.TargetPrice, 1e-9)
	assert.InDelta(t, 0.06, signal.Confidence, 1e-9)
	assert.Equal(t, 50.0, signal.Quantity)
}

func TestMeanReversionBelowMeanBuys(t *testing.T) {
	strat := NewMeanReversion(4, 0.03, 50)

	// 均值 100，当前 94，偏离 -6% -> Buy
	signal := strat.Analyze(window("BTC-USDT", 2000, 102, 102, 102, 94), nil)

	require.NotNil(t, signal)
	assert.Equal(t, model.SideBuy, signal.Side)
	assert.InDelta(t, 100.0, signal.TargetPrice, 1e-9)
	assert.InDelta(t, 0.06, signal.Confidence, 1e-9)
}

func TestMeanReversionWithinBandNoSignal(t *testing.T) {
	strat := NewMeanReversion(4, 0.03, 50)

	// 偏离约 1.5% < 3%
	assert.Nil(t, strat.Analyze(window("BTC-USDT", 2000, 100, 100, 100, 102), nil))
}

func TestMeanReversionUsesLookbackTail(t *testing.T) {
	strat := NewMeanReversion(4, 0.03, 50)

	// 窗口长于 lookback 时，均值只取最后 4 个样本: mean=100，当前 106
	signal := strat.Analyze(window("BTC-USDT", 2000, 500, 500, 98, 98, 98, 106), nil)

	require.NotNil(t, signal)
	assert.Equal(t, model.SideSell, signal.Side)
	assert.InDelta(t, 100.0, signal.TargetPrice, 1e-9)
	assert.InDelta(t, 0.06, signal.Confidence, 1e-9)
}

func TestMeanReversionInsufficientSamples(t *testing.T) {
	strat := NewMeanReversion(20, 0.03, 50)
	assert.Nil(t, strat.Analyze(window("BTC-USDT", 2000, 100, 106), nil))
}

func TestRegistryKeepsOrder(t *testing.T) {
	momentum := NewMomentum(10, 0.02, 100)
	meanrev := NewMeanReversion(20, 0.03, 50)

	registry := NewRegistry(momentum, meanrev)
	all := registry.All()

	require.Len(t, all, 2)
	assert.Equal(t, "MomentumStrategy", all[0].Name())
	assert.Equal(t, "MeanReversionStrategy", all[1].Name())

	registry.Register(NewMomentum(5, 0.01, 10))
	assert.Len(t, registry.All(), 3)
}
