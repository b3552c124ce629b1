package execution

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"crypto-trading-engine/internal/model"
)

// OrderGateway 是外部订单路由的通用接口，调用可能缓慢或失败。
// 本核心只依赖该接口，不关心底层传输。
type OrderGateway interface {
	// SubmitOrder 向交易所提交订单，成功时返回订单 ID
	SubmitOrder(ctx context.Context, order model.Order) (string, error)

	// CancelOrder 撤销指定订单
	CancelOrder(ctx context.Context, orderID string) error
}

// SimulatedGateway 模拟交易所网关：以固定延迟接受所有订单。
// 延迟通过定时器实现并响应 ctx 取消，不会在关停时悬挂调用方。
type SimulatedGateway struct {
	latency time.Duration
	logger  *zap.Logger

	mu       sync.Mutex
	accepted map[string]model.Order // 已接受且未撤销的订单
}

// NewSimulatedGateway 创建模拟网关
func NewSimulatedGateway(latency time.Duration, logger *zap.Logger) *SimulatedGateway {
	return &SimulatedGateway{
		latency:  latency,
		logger:   logger.With(zap.String("component", "sim_gateway")),
		accepted: make(map[string]model.Order),
	}
}

// SubmitOrder 模拟一次网关往返后接受订单
func (g *SimulatedGateway) SubmitOrder(ctx context.Context, order model.Order) (string, error) {
	if err := g.wait(ctx); err != nil {
		return "", err
	}

	g.mu.Lock()
	g.accepted[order.ID] = order
	g.mu.Unlock()

	g.logger.Info("Gateway accepted order",
		zap.String("order_id", order.ID),
		zap.String("symbol", order.Symbol),
		zap.String("side", order.Side.String()),
		zap.Float64("quantity", order.Quantity))
	return order.ID, nil
}

// CancelOrder 撤销订单；未知 ID 视为已撤销，保持幂等
func (g *SimulatedGateway) CancelOrder(ctx context.Context, orderID string) error {
	if err := g.wait(ctx); err != nil {
		return err
	}

	g.mu.Lock()
	delete(g.accepted, orderID)
	g.mu.Unlock()

	g.logger.Info("Gateway cancelled order", zap.String("order_id", orderID))
	return nil
}

// AcceptedCount 返回网关侧当前记录的订单数 (测试与诊断用)
func (g *SimulatedGateway) AcceptedCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.accepted)
}

// wait 模拟网络延迟，ctx 取消时立即返回
func (g *SimulatedGateway) wait(ctx context.Context) error {
	if g.latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(g.latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
