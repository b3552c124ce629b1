// Package metrics 提供引擎的 Prometheus 指标
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SamplesIngested 按交易对统计采集到的价格样本数
	SamplesIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "engine_samples_ingested_total",
		Help: "Total number of price samples ingested",
	}, []string{"symbol"})

	// SignalsTotal 按策略统计产生的交易信号数
	SignalsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "engine_signals_total",
		Help: "Total number of trading signals produced",
	}, []string{"strategy"})

	// RiskRejections 按拒绝原因统计风控拦截的订单数
	RiskRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "engine_risk_rejections_total",
		Help: "Orders rejected by the risk manager",
	}, []string{"reason"})

	// OrdersSubmitted 统计成功提交到网关的订单数
	OrdersSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "engine_orders_submitted_total",
		Help: "Orders accepted by the gateway",
	})

	// OrdersFailed 统计网关提交失败 (含超时) 的订单数
	OrdersFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "engine_orders_failed_total",
		Help: "Order submissions that failed at the gateway",
	})

	// OrdersCancelled 统计成功撤销的订单数
	OrdersCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "engine_orders_cancelled_total",
		Help: "Orders cancelled at the gateway",
	})
)

// Handler 返回 Prometheus 指标的 HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
