package risk

import (
	"errors"
	"sync"

	"go.uber.org/zap"

	"crypto-trading-engine/internal/model"
	"crypto-trading-engine/internal/service"
)

// 风控拒绝原因。Validate 返回 nil 表示接受，返回下列错误之一表示拒绝。
var (
	ErrInvalidQuantity   = errors.New("order quantity must be positive")
	ErrInvalidSymbol     = errors.New("order symbol is empty")
	ErrInvalidPrice      = errors.New("reference price must be positive")
	ErrDailyLossExceeded = errors.New("daily loss limit exceeded")
	ErrPositionLimit     = errors.New("position size limit exceeded")
	ErrTradeLossLimit    = errors.New("potential loss per trade too high")
)

// Reason 将拒绝错误映射为短代码，用于日志和指标标签
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidQuantity):
		return "invalid_quantity"
	case errors.Is(err, ErrInvalidSymbol):
		return "invalid_symbol"
	case errors.Is(err, ErrInvalidPrice):
		return "invalid_price"
	case errors.Is(err, ErrDailyLossExceeded):
		return "daily_loss"
	case errors.Is(err, ErrPositionLimit):
		return "position_limit"
	case errors.Is(err, ErrTradeLossLimit):
		return "trade_loss"
	default:
		return "unknown"
	}
}

// Manager 持有持仓台账和当日盈亏累计器，是两者唯一的写入方。
// Validate 和 UpdatePosition 共用同一把互斥锁：验证读到的永远是
// 最近一次提交后的台账状态，不存在读写锁分离导致的旧值校验问题。
type Manager struct {
	mu        sync.Mutex
	cfg       service.RiskConfig
	positions map[string]*model.Position
	dailyPnL  float64
	logger    *zap.Logger
}

// NewManager 创建风控管理器
func NewManager(cfg service.RiskConfig, logger *zap.Logger) *Manager {
	return &Manager{
		cfg:       cfg,
		positions: make(map[string]*model.Position),
		logger:    logger.With(zap.String("component", "risk")),
	}
}

// Validate 按固定顺序检查订单，首个失败即返回对应拒绝原因。
// 所有检查只使用已提交的台账状态，对相同输入的重复校验结果是确定的。
func (m *Manager) Validate(order model.Order, referencePrice float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// 0. 输入分类检查：可识别的非法输入必须显式拒绝，绝不静默放行
	if order.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if order.Symbol == "" {
		return ErrInvalidSymbol
	}
	if referencePrice <= 0 {
		return ErrInvalidPrice
	}

	// 1. 当日亏损检查
	if m.dailyPnL < -m.cfg.MaxDailyLoss {
		m.logger.Warn("Order rejected: daily loss limit exceeded",
			zap.String("order_id", order.ID),
			zap.Float64("daily_pnl", m.dailyPnL),
			zap.Float64("max_daily_loss", m.cfg.MaxDailyLoss))
		return ErrDailyLossExceeded
	}

	// 2. 持仓规模检查：计算订单生效后的带符号净持仓
	if pos, ok := m.positions[order.Symbol]; ok {
		newQuantity := pos.Quantity + order.Side.SignedQuantity(order.Quantity)
		if abs(newQuantity) > m.cfg.MaxPositionSize {
			m.logger.Warn("Order rejected: position size limit exceeded",
				zap.String("order_id", order.ID),
				zap.Float64("current", pos.Quantity),
				zap.Float64("resulting", newQuantity))
			return ErrPositionLimit
		}
	}

	// 3. 单笔损失敞口检查：按止损比例估算最大可能损失
	potentialLoss := order.Quantity * referencePrice * m.cfg.StopLossPct
	if potentialLoss > m.cfg.MaxLossPerTrade {
		m.logger.Warn("Order rejected: potential loss too high",
			zap.String("order_id", order.ID),
			zap.Float64("potential_loss", potentialLoss),
			zap.Float64("max_loss_per_trade", m.cfg.MaxLossPerTrade))
		return ErrTradeLossLimit
	}

	return nil
}

// UpdatePosition 是持仓的唯一写入口，按成交量加权更新平均开仓价。
// 每笔被接受且成功提交的订单必须恰好调用一次，delta 带方向
// (Buy=+quantity, Sell=-quantity)；重复调用会重复计入。
func (m *Manager) UpdatePosition(symbol string, delta, price float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.applyDelta(symbol, delta, price)
}

// applyDelta 调用方必须持有 m.mu
func (m *Manager) applyDelta(symbol string, delta, price float64) {
	pos, ok := m.positions[symbol]
	if !ok {
		pos = &model.Position{Symbol: symbol}
		m.positions[symbol] = pos
	}

	newQuantity := pos.Quantity + delta
	switch {
	case newQuantity == 0:
		// 数量归零：平均价必须重置，否则下一次加权计算会带入过期值
		pos.Quantity = 0
		pos.AvgPrice = 0
	case pos.Quantity*newQuantity < 0:
		// 穿越零点反向开仓：残余仓位是按本次成交价新开的，
		// 加权公式在符号翻转时会产生无意义的成本基础
		pos.Quantity = newQuantity
		pos.AvgPrice = price
	default:
		totalCost := pos.Quantity*pos.AvgPrice + delta*price
		pos.AvgPrice = totalCost / newQuantity
		pos.Quantity = newQuantity
	}
}

// ApplyExecution 消费网关回报的执行结果。
// Filled 不再改动持仓 (提交成功时已入账)；Rejected / Cancelled 说明
// 提交时的乐观入账需要回退。
func (m *Manager) ApplyExecution(report model.ExecutionReport) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch report.Status {
	case model.StatusRejected, model.StatusCancelled:
		m.applyDelta(report.Symbol, -report.Side.SignedQuantity(report.Quantity), report.Price)
		m.logger.Info("Position rollback on execution feedback",
			zap.String("order_id", report.OrderID),
			zap.String("status", string(report.Status)))
	case model.StatusFilled:
		// 持仓在提交成功时已更新，成交回报只作确认
	}
}

// Position 返回指定交易对持仓的副本
func (m *Manager) Position(symbol string) (model.Position, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pos, ok := m.positions[symbol]
	if !ok {
		return model.Position{}, false
	}
	return *pos, true
}

// DailyPnL 返回当日累计盈亏
func (m *Manager) DailyPnL() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dailyPnL
}

// AddDailyPnL 累加当日盈亏 (已实现 + 浮动结转由外部协作方驱动)
func (m *Manager) AddDailyPnL(delta float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dailyPnL += delta
}

// ResetDaily 清零当日盈亏，由外部的日切触发器调用
func (m *Manager) ResetDaily() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dailyPnL = 0
	m.logger.Info("Daily PnL reset")
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
