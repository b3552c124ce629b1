package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// OrderSide 定义订单方向
type OrderSide string

const (
	SideBuy  OrderSide = "BUY"
	SideSell OrderSide = "SELL"
)

func (s OrderSide) String() string {
	return string(s)
}

// SignedQuantity 将订单数量按方向转换为带符号数量 (Buy=+, Sell=-)
func (s OrderSide) SignedQuantity(quantity float64) float64 {
	if s == SideSell {
		return -quantity
	}
	return quantity
}

// OrderType 定义订单类型
type OrderType string

const (
	TypeMarket OrderType = "MARKET"
	TypeLimit  OrderType = "LIMIT"
)

// OrderStatus 定义订单生命周期状态
// Created -> Submitted -> (Filled | Cancelled | Rejected)
type OrderStatus string

const (
	StatusCreated   OrderStatus = "CREATED"
	StatusSubmitted OrderStatus = "SUBMITTED"
	StatusFilled    OrderStatus = "FILLED"
	StatusCancelled OrderStatus = "CANCELLED"
	StatusRejected  OrderStatus = "REJECTED"
)

// PriceSample 代表单个市场价格采样，创建后不可变
type PriceSample struct {
	Symbol    string  // 所属交易对，例如 "BTC-USDT"
	Price     float64 // 价格，必须为正
	Timestamp int64   // 秒级时间戳
	Volume    float64 // 成交量，非负
}

// PriceLevel 代表订单簿中的一个价格档位
type PriceLevel struct {
	Price    float64
	Quantity float64
}

// OrderBookSnapshot 代表某一时刻的订单簿快照，创建后不可变
// Bids 按价格降序排列，Asks 按价格升序排列
type OrderBookSnapshot struct {
	Symbol    string
	Bids      []PriceLevel
	Asks      []PriceLevel
	Timestamp int64
}

// TradingSignal 是策略层向决策层发出的交易建议
type TradingSignal struct {
	Symbol      string
	Side        OrderSide
	Confidence  float64 // 信号置信度，区间 [0, 1]
	TargetPrice float64 // 期望成交价格
	Quantity    float64 // 建议数量
	Strategy    string  // 信号来源策略名称，用于诊断
}

func (s TradingSignal) String() string {
	return fmt.Sprintf("SIGNAL [%s | %s] @ %.4f | Qty: %.2f | Conf: %.2f | Source: %s",
		s.Symbol, s.Side, s.TargetPrice, s.Quantity, s.Confidence, s.Strategy)
}

// Order 代表一笔待提交或已提交的订单
type Order struct {
	ID        string
	Symbol    string
	Side      OrderSide
	Type      OrderType
	Quantity  float64 // 必须 > 0
	Price     float64 // 限价单必填 (>0)，市价单忽略
	Timestamp int64   // 创建时间，秒级时间戳
	Status    OrderStatus
}

// NewMarketOrder 构造一笔新的市价单，ID 使用 UUID v4
func NewMarketOrder(symbol string, side OrderSide, quantity float64) Order {
	return Order{
		ID:        uuid.NewString(),
		Symbol:    symbol,
		Side:      side,
		Type:      TypeMarket,
		Quantity:  quantity,
		Timestamp: time.Now().Unix(),
		Status:    StatusCreated,
	}
}

func (o Order) String() string {
	return fmt.Sprintf("ORDER [%s | %s %s] Qty: %.2f | Type: %s | Status: %s",
		o.ID, o.Side, o.Symbol, o.Quantity, o.Type, o.Status)
}

// Position 代表单个交易对的净持仓
// AvgPrice 仅在 Quantity != 0 时有意义；数量归零时 AvgPrice 重置为 0
type Position struct {
	Symbol   string
	Quantity float64 // 带符号数量：正=多头，负=空头
	AvgPrice float64 // 成交量加权平均开仓价格
}

// UnrealizedPnL 根据当前价格计算浮动盈亏 (不作为独立状态存储，按需推导)
func (p Position) UnrealizedPnL(currentPrice float64) float64 {
	return (currentPrice - p.AvgPrice) * p.Quantity
}

// ExecutionReport 是外部网关回报的执行结果，供风控层消费
type ExecutionReport struct {
	OrderID  string
	Symbol   string
	Side     OrderSide
	Quantity float64
	Price    float64
	Status   OrderStatus // Filled / Cancelled / Rejected
}
