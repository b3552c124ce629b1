package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"crypto-trading-engine/internal/api"
	"crypto-trading-engine/internal/data"
	"crypto-trading-engine/internal/engine"
	"crypto-trading-engine/internal/execution"
	"crypto-trading-engine/internal/metrics"
	"crypto-trading-engine/internal/risk"
	"crypto-trading-engine/internal/service"
	"crypto-trading-engine/internal/strategy"
)

func main() {
	service.InitLogger()
	defer service.Logger.Sync()

	configPath := "config"
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		service.Logger.Fatal("Configuration directory 'config/' not found. Please create it.")
	}
	cfg := service.LoadConfig(configPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 1. 选择行情来源：本地模拟器或 Okx 实时行情
	var feed data.MarketDataSource
	switch cfg.Engine.Feed {
	case "okx":
		connector := api.NewConnector(cfg.Exchange.WSURL, cfg.Engine.Symbols, service.Logger)
		go connector.Start(ctx)
		feed = connector
	default:
		feed = data.NewSimFeed(cfg.Engine.Symbols, 100.0, time.Now().UnixNano())
	}
	service.Logger.Info("Market data source ready", zap.String("feed", cfg.Engine.Feed))

	// 2. 组装核心组件
	store := data.NewPriceHistoryStore(cfg.Engine.HistoryLimit)
	registry := strategy.NewRegistry(
		strategy.NewMomentum(
			cfg.Strategies.Momentum.Lookback,
			cfg.Strategies.Momentum.Threshold,
			cfg.Strategies.Momentum.Quantity,
		),
		strategy.NewMeanReversion(
			cfg.Strategies.MeanReversion.Lookback,
			cfg.Strategies.MeanReversion.Threshold,
			cfg.Strategies.MeanReversion.Quantity,
		),
	)
	riskMgr := risk.NewManager(cfg.Risk, service.Logger)
	gateway := execution.NewSimulatedGateway(cfg.Gateway.Latency, service.Logger)
	coordinator := execution.NewCoordinator(gateway, cfg.Gateway.SubmitTimeout, service.Logger)

	orchestrator := engine.NewOrchestrator(
		cfg.Engine, feed, store, registry, riskMgr, coordinator, service.Logger)

	// 3. 可选的 Prometheus 指标端点
	if cfg.Engine.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			if err := http.ListenAndServe(cfg.Engine.MetricsAddr, mux); err != nil {
				service.Logger.Error("Metrics server stopped", zap.Error(err))
			}
		}()
		service.Logger.Info("Metrics endpoint started", zap.String("addr", cfg.Engine.MetricsAddr))
	}

	// 4. 启动引擎
	if err := orchestrator.Start(cfg.Engine.Symbols); err != nil {
		service.Logger.Fatal("Failed to start engine", zap.Error(err))
	}

	// 5. 等待退出条件：SIGINT/SIGTERM，或配置的运行时长到期
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	if cfg.Engine.RunDuration > 0 {
		select {
		case <-sigCh:
			service.Logger.Info("Signal received, shutting down...")
		case <-time.After(cfg.Engine.RunDuration):
			service.Logger.Info("Run duration elapsed, shutting down...")
		}
	} else {
		<-sigCh
		service.Logger.Info("Signal received, shutting down...")
	}

	cancel()
	orchestrator.Stop()
	service.Logger.Info("Shutdown complete",
		zap.Float64("daily_pnl", riskMgr.DailyPnL()),
		zap.Int("pending_orders", coordinator.PendingCount()))
}
