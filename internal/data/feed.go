package data

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"crypto-trading-engine/internal/model"
)

// MarketDataSource 是行情来源的通用接口，可替换为真实交易所接入。
// 返回 (nil, nil) 表示本轮没有新数据，不是错误；error 仅用于传输层故障。
type MarketDataSource interface {
	GetPrice(ctx context.Context, symbol string) (*model.PriceSample, error)
	GetOrderbook(ctx context.Context, symbol string) (*model.OrderBookSnapshot, error)
}

// SimFeed 是随机游走的行情模拟器，用于本地运行和端到端测试
type SimFeed struct {
	mu    sync.Mutex
	rng   *rand.Rand
	last  map[string]float64 // 每个交易对的最新模拟价格
	drift float64            // 每步最大相对波动，例如 0.005
}

// NewSimFeed 创建模拟行情源；seed 相同则序列可复现
func NewSimFeed(symbols []string, basePrice float64, seed int64) *SimFeed {
	if basePrice <= 0 {
		basePrice = 100.0
	}
	last := make(map[string]float64, len(symbols))
	for _, symbol := range symbols {
		last[symbol] = basePrice
	}
	return &SimFeed{
		rng:   rand.New(rand.NewSource(seed)),
		last:  last,
		drift: 0.005,
	}
}

// GetPrice 生成下一个随机游走样本
func (f *SimFeed) GetPrice(ctx context.Context, symbol string) (*model.PriceSample, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	price, ok := f.last[symbol]
	if !ok {
		// 未订阅的交易对视为无数据
		return nil, nil
	}

	// 随机游走: price *= 1 + U(-drift, +drift)
	step := (f.rng.Float64()*2 - 1) * f.drift
	price = price * (1 + step)
	if price <= 0 {
		price = f.last[symbol]
	}
	f.last[symbol] = price

	return &model.PriceSample{
		Symbol:    symbol,
		Price:     price,
		Timestamp: time.Now().Unix(),
		Volume:    100 + f.rng.Float64()*9900,
	}, nil
}

// GetOrderbook 围绕最新价格生成 5 档模拟订单簿
func (f *SimFeed) GetOrderbook(ctx context.Context, symbol string) (*model.OrderBookSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	base, ok := f.last[symbol]
	if !ok {
		return nil, nil
	}

	bids := make([]model.PriceLevel, 0, 5)
	asks := make([]model.PriceLevel, 0, 5)
	tick := base * 0.0001
	for i := 1; i <= 5; i++ {
		bids = append(bids, model.PriceLevel{
			Price:    base - float64(i)*tick,
			Quantity: 10 + f.rng.Float64()*990,
		})
		asks = append(asks, model.PriceLevel{
			Price:    base + float64(i)*tick,
			Quantity: 10 + f.rng.Float64()*990,
		})
	}

	return &model.OrderBookSnapshot{
		Symbol:    symbol,
		Bids:      bids,
		Asks:      asks,
		Timestamp: time.Now().Unix(),
	}, nil
}
