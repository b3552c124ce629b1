package execution

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"crypto-trading-engine/internal/metrics"
	"crypto-trading-engine/internal/model"
)

// Coordinator 持有待确认订单集合，并负责对外部网关的提交与撤销。
// 对网关的每次调用都带超时上限，决策循环不会被缓慢的外部依赖拖死；
// pending 集合的所有修改串行化在同一把互斥锁下，且绝不跨网关调用持锁。
type Coordinator struct {
	gateway OrderGateway
	timeout time.Duration
	logger  *zap.Logger

	mu      sync.Mutex
	pending map[string]model.Order
}

// NewCoordinator 创建订单协调器
func NewCoordinator(gateway OrderGateway, timeout time.Duration, logger *zap.Logger) *Coordinator {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Coordinator{
		gateway: gateway,
		timeout: timeout,
		logger:  logger.With(zap.String("component", "coordinator")),
		pending: make(map[string]model.Order),
	}
}

// Submit 将订单提交到外部网关。成功时订单进入 pending 集合并返回订单 ID；
// 失败 (含超时) 时不改动任何本地状态，由调用方决定是否重试。
// 持仓入账必须在 Submit 成功返回之后进行，避免"网关未收到但本地已记账"。
func (c *Coordinator) Submit(ctx context.Context, order model.Order) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	orderID, err := c.gateway.SubmitOrder(ctx, order)
	if err != nil {
		metrics.OrdersFailed.Inc()
		c.logger.Error("Order submission failed",
			zap.String("order_id", order.ID),
			zap.Error(err))
		return "", fmt.Errorf("gateway submit: %w", err)
	}

	order.Status = model.StatusSubmitted
	c.mu.Lock()
	c.pending[order.ID] = order
	c.mu.Unlock()

	metrics.OrdersSubmitted.Inc()
	c.logger.Info("Order submitted",
		zap.String("order_id", orderID),
		zap.String("symbol", order.Symbol),
		zap.String("side", order.Side.String()))
	return orderID, nil
}

// Cancel 撤销一笔待确认订单。
// 返回值 removed 表示本次调用是否真正移除了订单：未知 ID 或重复撤销
// 返回 (false, nil)，是无操作而非错误。
func (c *Coordinator) Cancel(ctx context.Context, orderID string) (removed bool, err error) {
	c.mu.Lock()
	_, ok := c.pending[orderID]
	c.mu.Unlock()
	if !ok {
		return false, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.gateway.CancelOrder(ctx, orderID); err != nil {
		c.logger.Error("Order cancel failed",
			zap.String("order_id", orderID),
			zap.Error(err))
		// 网关撤销失败时订单保持 pending，等待后续回报或重试
		return false, fmt.Errorf("gateway cancel: %w", err)
	}

	c.mu.Lock()
	delete(c.pending, orderID)
	c.mu.Unlock()

	metrics.OrdersCancelled.Inc()
	c.logger.Info("Order cancelled", zap.String("order_id", orderID))
	return true, nil
}

// Pending 查询一笔待确认订单
func (c *Coordinator) Pending(orderID string) (model.Order, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	order, ok := c.pending[orderID]
	return order, ok
}

// PendingCount 返回当前待确认订单数量
func (c *Coordinator) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Remove 从 pending 集合移除订单，供外部成交/撤销回报的消费方调用
func (c *Coordinator) Remove(orderID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.pending[orderID]; !ok {
		return false
	}
	delete(c.pending, orderID)
	return true
}
