package strategy

import (
	"crypto-trading-engine/internal/model"
)

// Strategy 是交易策略的通用接口
// Analyze 必须是输入的纯函数：不持有内部可变状态，因此可以被决策循环
// 跨交易对安全地并发调用。返回 nil 表示本轮无信号。
type Strategy interface {
	// Analyze 基于价格窗口和订单簿快照评估是否产生交易信号
	Analyze(window []model.PriceSample, book *model.OrderBookSnapshot) *model.TradingSignal

	// Name 返回策略名称，用于日志和指标
	Name() string
}

// Registry 保存已注册策略的有序集合，注册顺序即评估顺序
type Registry struct {
	strategies []Strategy
}

// NewRegistry 创建策略注册表
func NewRegistry(strategies ...Strategy) *Registry {
	return &Registry{strategies: strategies}
}

// Register 追加一个策略
func (r *Registry) Register(s Strategy) {
	r.strategies = append(r.strategies, s)
}

// All 按注册顺序返回全部策略
func (r *Registry) All() []Strategy {
	return r.strategies
}
