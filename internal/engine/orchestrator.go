package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"crypto-trading-engine/internal/data"
	"crypto-trading-engine/internal/execution"
	"crypto-trading-engine/internal/metrics"
	"crypto-trading-engine/internal/model"
	"crypto-trading-engine/internal/risk"
	"crypto-trading-engine/internal/service"
	"crypto-trading-engine/internal/strategy"
)

var (
	ErrAlreadyRunning = errors.New("orchestrator already running")
	ErrNoSymbols      = errors.New("no symbols to trade")
)

// Orchestrator 独占持有全部核心组件，对外只暴露 Start/Stop。
// 并发循环通过 Orchestrator 的方法访问共享组件，各组件内部自带锁保护，
// 循环之间不直接传递裸引用。
//
// 生命周期: Stopped -> Running -> Stopped。
// Start 为每个交易对启动一个采集循环，外加一个决策循环；
// Stop 取消上下文并等待全部循环退出，不会留下孤儿 goroutine。
type Orchestrator struct {
	cfg      service.EngineConfig
	feed     data.MarketDataSource
	store    *data.PriceHistoryStore
	registry *strategy.Registry
	riskMgr  *risk.Manager
	coord    *execution.Coordinator
	logger   *zap.Logger

	mu      sync.Mutex
	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewOrchestrator 组装引擎
func NewOrchestrator(
	cfg service.EngineConfig,
	feed data.MarketDataSource,
	store *data.PriceHistoryStore,
	registry *strategy.Registry,
	riskMgr *risk.Manager,
	coord *execution.Coordinator,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		cfg:      cfg,
		feed:     feed,
		store:    store,
		registry: registry,
		riskMgr:  riskMgr,
		coord:    coord,
		logger:   logger.With(zap.String("component", "orchestrator")),
	}
}

// Start 进入 Running 状态并启动全部并发循环；重复调用返回 ErrAlreadyRunning
func (o *Orchestrator) Start(symbols []string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.running.Load() {
		return ErrAlreadyRunning
	}
	if len(symbols) == 0 {
		return ErrNoSymbols
	}

	ctx, cancel := context.WithCancel(context.Background())
	o.cancel = cancel
	o.running.Store(true)
	o.logger.Info("Starting trading engine", zap.Strings("symbols", symbols))

	// 每个交易对一个独立的采集循环
	for _, symbol := range symbols {
		o.wg.Add(1)
		go o.ingestLoop(ctx, symbol)
	}

	// 唯一的决策循环，以更高频率扫描全部交易对
	o.wg.Add(1)
	go o.decisionLoop(ctx, symbols)

	return nil
}

// Stop 翻转运行标志并等待所有循环退出；重复调用是无操作
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.running.Load() {
		return
	}
	o.running.Store(false)
	o.cancel()

	// 持锁等待全部循环确认退出：Stop 返回后不再有网关调用，
	// 并发的 Start 也不可能在 Wait 进行中向 WaitGroup 添加计数
	o.wg.Wait()
	o.logger.Info("Trading engine stopped")
}

// Running 返回当前是否处于 Running 状态
func (o *Orchestrator) Running() bool {
	return o.running.Load()
}

// OnExecution 接入外部网关的执行回报：
// 从 pending 集合移除订单，并交给风控层处理台账影响
func (o *Orchestrator) OnExecution(report model.ExecutionReport) {
	o.coord.Remove(report.OrderID)
	o.riskMgr.ApplyExecution(report)
}

// ingestLoop 以固定周期从行情源拉取单个交易对的价格样本。
// 行情源返回 nil 表示本轮无数据，直接跳过；单轮失败只记日志不退出。
func (o *Orchestrator) ingestLoop(ctx context.Context, symbol string) {
	defer o.wg.Done()

	logger := o.logger.With(zap.String("loop", "ingest"), zap.String("symbol", symbol))
	logger.Info("Ingest loop started")

	ticker := time.NewTicker(o.cfg.IngestInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Ingest loop stopped")
			return
		case <-ticker.C:
			if !o.running.Load() {
				return
			}
			sample, err := o.feed.GetPrice(ctx, symbol)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				logger.Warn("Fetch price failed", zap.Error(err))
				continue
			}
			if sample == nil {
				// 本轮无新数据，不是错误
				continue
			}
			o.store.Record(*sample)
			metrics.SamplesIngested.WithLabelValues(symbol).Inc()
		}
	}
}

// decisionLoop 周期性地对每个交易对做一轮完整的评估:
// 历史快照 -> 订单簿 -> 全部策略 -> 风控 -> 提交 -> 持仓入账
func (o *Orchestrator) decisionLoop(ctx context.Context, symbols []string) {
	defer o.wg.Done()

	logger := o.logger.With(zap.String("loop", "decision"))
	logger.Info("Decision loop started")

	ticker := time.NewTicker(o.cfg.DecisionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Decision loop stopped")
			return
		case <-ticker.C:
			for _, symbol := range symbols {
				if !o.running.Load() || ctx.Err() != nil {
					return
				}
				o.evaluateSymbol(ctx, symbol)
			}
		}
	}
}

// evaluateSymbol 对单个交易对跑一轮策略评估；所有失败都被吞掉并记日志，
// 不会中断决策循环
func (o *Orchestrator) evaluateSymbol(ctx context.Context, symbol string) {
	// 先 copy-out 快照，持锁时间与策略计算解耦
	window := o.store.Snapshot(symbol)
	if len(window) < o.cfg.MinSamples {
		return
	}

	book, err := o.feed.GetOrderbook(ctx, symbol)
	if err != nil {
		if ctx.Err() == nil {
			o.logger.Warn("Fetch orderbook failed",
				zap.String("symbol", symbol), zap.Error(err))
		}
		return
	}
	if book == nil {
		return
	}

	for _, strat := range o.registry.All() {
		signal := strat.Analyze(window, book)
		if signal == nil {
			continue
		}
		metrics.SignalsTotal.WithLabelValues(strat.Name()).Inc()
		o.logger.Info("New trading signal", zap.String("signal", signal.String()))
		o.executeSignal(ctx, *signal)
	}
}

// executeSignal 将信号转为订单并走完 风控 -> 提交 -> 入账 链路。
// 持仓入账只在提交确认成功之后发生，网关失败不会污染台账。
func (o *Orchestrator) executeSignal(ctx context.Context, signal model.TradingSignal) {
	order := model.NewMarketOrder(signal.Symbol, signal.Side, signal.Quantity)

	if err := o.riskMgr.Validate(order, signal.TargetPrice); err != nil {
		metrics.RiskRejections.WithLabelValues(risk.Reason(err)).Inc()
		o.logger.Info("Signal dropped by risk manager",
			zap.String("order_id", order.ID),
			zap.String("strategy", signal.Strategy),
			zap.String("reason", risk.Reason(err)))
		return
	}

	if _, err := o.coord.Submit(ctx, order); err != nil {
		// 网关失败或超时：订单作废，持仓保持不变
		o.logger.Warn("Order submission failed, signal dropped",
			zap.String("order_id", order.ID), zap.Error(err))
		return
	}

	o.riskMgr.UpdatePosition(
		signal.Symbol,
		signal.Side.SignedQuantity(signal.Quantity),
		signal.TargetPrice,
	)
}
