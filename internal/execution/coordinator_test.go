package execution

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"crypto-trading-engine/internal/model"
)

// stubGateway 可编程的网关桩：按配置返回错误或阻塞
type stubGateway struct {
	mu        sync.Mutex
	submitErr error
	cancelErr error
	delay     time.Duration
	submits   int
	cancels   int
}

func (s *stubGateway) SubmitOrder(ctx context.Context, order model.Order) (string, error) {
	s.mu.Lock()
	s.submits++
	err, delay := s.submitErr, s.delay
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
	}
	if err != nil {
		return "", err
	}
	return order.ID, nil
}

func (s *stubGateway) CancelOrder(ctx context.Context, orderID string) error {
	s.mu.Lock()
	s.cancels++
	err := s.cancelErr
	s.mu.Unlock()
	return err
}

func TestSubmitSuccessTracksPending(t *testing.T) {
	gw := &stubGateway{}
	c := NewCoordinator(gw, time.Second, zap.NewNop())

	order := model.NewMarketOrder("BTC-USDT", model.SideBuy, 100)
	id, err := c.Submit(context.Background(), order)
	require.NoError(t, err)
	assert.Equal(t, order.ID, id)

	pending, ok := c.Pending(order.ID)
	require.True(t, ok)
	assert.Equal(t, model.StatusSubmitted, pending.Status)
	assert.Equal(t, 1, c.PendingCount())
}

func TestSubmitGatewayFailureLeavesNoState(t *testing.T) {
	gw := &stubGateway{submitErr: errors.New("exchange unavailable")}
	c := NewCoordinator(gw, time.Second, zap.NewNop())

	_, err := c.Submit(context.Background(), model.NewMarketOrder("BTC-USDT", model.SideBuy, 100))
	require.Error(t, err)
	assert.Equal(t, 0, c.PendingCount())
	assert.Equal(t, 1, gw.submits)
}

func TestSubmitTimesOutOnSlowGateway(t *testing.T) {
	gw := &stubGateway{delay: 200 * time.Millisecond}
	c := NewCoordinator(gw, 20*time.Millisecond, zap.NewNop())

	start := time.Now()
	_, err := c.Submit(context.Background(), model.NewMarketOrder("BTC-USDT", model.SideBuy, 100))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 150*time.Millisecond, "submit should be bounded by coordinator timeout")
	assert.Equal(t, 0, c.PendingCount())
}

func TestCancelRemovesPendingOrder(t *testing.T) {
	gw := &stubGateway{}
	c := NewCoordinator(gw, time.Second, zap.NewNop())

	order := model.NewMarketOrder("BTC-USDT", model.SideBuy, 100)
	_, err := c.Submit(context.Background(), order)
	require.NoError(t, err)

	removed, err := c.Cancel(context.Background(), order.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, 0, c.PendingCount())

	// 重复撤销是无操作
	removed, err = c.Cancel(context.Background(), order.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestCancelUnknownOrderIsNoOp(t *testing.T) {
	gw := &stubGateway{}
	c := NewCoordinator(gw, time.Second, zap.NewNop())

	removed, err := c.Cancel(context.Background(), "no-such-order")
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, 0, gw.cancels, "gateway should not be called for unknown orders")
}

func TestCancelGatewayFailureKeepsPending(t *testing.T) {
	gw := &stubGateway{cancelErr: errors.New("exchange unavailable")}
	c := NewCoordinator(gw, time.Second, zap.NewNop())

	order := model.NewMarketOrder("BTC-USDT", model.SideBuy, 100)
	_, err := c.Submit(context.Background(), order)
	require.NoError(t, err)

	removed, err := c.Cancel(context.Background(), order.ID)
	require.Error(t, err)
	assert.False(t, removed)
	assert.Equal(t, 1, c.PendingCount())
}

func TestRemoveConsumesExecutionFeedback(t *testing.T) {
	gw := &stubGateway{}
	c := NewCoordinator(gw, time.Second, zap.NewNop())

	order := model.NewMarketOrder("BTC-USDT", model.SideBuy, 100)
	_, err := c.Submit(context.Background(), order)
	require.NoError(t, err)

	assert.True(t, c.Remove(order.ID))
	assert.False(t, c.Remove(order.ID))
	assert.Equal(t, 0, c.PendingCount())
}

func TestSimulatedGatewayAcceptsAndCancels(t *testing.T) {
	gw := NewSimulatedGateway(time.Millisecond, zap.NewNop())

	order := model.NewMarketOrder("BTC-USDT", model.SideBuy, 100)
	id, err := gw.SubmitOrder(context.Background(), order)
	require.NoError(t, err)
	assert.Equal(t, order.ID, id)
	assert.Equal(t, 1, gw.AcceptedCount())

	require.NoError(t, gw.CancelOrder(context.Background(), order.ID))
	assert.Equal(t, 0, gw.AcceptedCount())

	// 未知 ID 的撤销保持幂等
	require.NoError(t, gw.CancelOrder(context.Background(), "unknown"))
}

func TestSimulatedGatewayHonorsContext(t *testing.T) {
	gw := NewSimulatedGateway(time.Second, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := gw.SubmitOrder(ctx, model.NewMarketOrder("BTC-USDT", model.SideBuy, 100))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 0, gw.AcceptedCount())
}
