// internal/service/config.go
package service

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// EngineConfig 定义引擎运行参数
type EngineConfig struct {
	Symbols          []string      // 要交易的全部交易对
	HistoryLimit     int           // 每个交易对保留的最大价格样本数
	MinSamples       int           // 决策循环评估策略所需的最小样本数
	IngestInterval   time.Duration // 行情采集轮询周期 (每个交易对一个循环)
	DecisionInterval time.Duration // 决策循环轮询周期
	RunDuration      time.Duration // 运行时长，0 表示一直运行直到收到信号
	Feed             string        // 行情来源: "simulator" 或 "okx"
	MetricsAddr      string        // Prometheus 指标监听地址，空则不启动
}

// ExchangeConfig 定义了交易所的连接信息 (仅 okx 行情模式使用)
type ExchangeConfig struct {
	Name  string
	WSURL string
}

// RiskConfig 定义风控参数，全部为正数；百分比以小数表示 (0.02 = 2%)
type RiskConfig struct {
	MaxPositionSize float64 // 单交易对最大净持仓 (绝对值)
	MaxLossPerTrade float64 // 单笔交易最大可接受损失
	MaxDailyLoss    float64 // 单日最大累计亏损
	StopLossPct     float64 // 止损比例
	TakeProfitPct   float64 // 止盈比例
}

// MomentumConfig 动量策略参数
type MomentumConfig struct {
	Lookback  int     // 回看样本数
	Threshold float64 // 相对涨跌幅阈值
	Quantity  float64 // 基础下单数量
}

// MeanReversionConfig 均值回归策略参数
type MeanReversionConfig struct {
	Lookback  int
	Threshold float64 // 偏离均值的相对阈值
	Quantity  float64
}

// StrategiesConfig 汇总所有策略参数
type StrategiesConfig struct {
	Momentum      MomentumConfig
	MeanReversion MeanReversionConfig
}

// GatewayConfig 定义订单网关行为
type GatewayConfig struct {
	Latency       time.Duration // 模拟网关的单次往返延迟
	SubmitTimeout time.Duration // 单次 submit/cancel 的超时上限
}

type Config struct {
	Engine     EngineConfig     `mapstructure:"Engine"`
	Exchange   ExchangeConfig   `mapstructure:"Exchange"`
	Risk       RiskConfig       `mapstructure:"Risk"`
	Strategies StrategiesConfig `mapstructure:"Strategies"`
	Gateway    GatewayConfig    `mapstructure:"Gateway"`
}

// GlobalConfig 存储加载后的全局配置
var GlobalConfig Config

// LoadConfig 读取并解析配置文件
func LoadConfig(configPath string) *Config {
	// 设置配置文件的名称、类型和路径
	viper.SetConfigName("config") // 文件名是 config
	viper.SetConfigType("yaml")   // 文件类型是 yaml
	viper.AddConfigPath(configPath)

	// 查找并读取配置文件
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Fatalf("Config file not found: %s", err)
		} else {
			log.Fatalf("Error reading config file: %s", err)
		}
	}

	// 将配置绑定到结构体
	if err := viper.Unmarshal(&GlobalConfig); err != nil {
		log.Fatalf("Unable to decode config into struct: %s", err)
	}

	applyDefaults(&GlobalConfig)

	return &GlobalConfig
}

// applyDefaults 为未填写的字段补默认值，保证引擎不会以零周期空转
func applyDefaults(cfg *Config) {
	if cfg.Engine.HistoryLimit <= 0 {
		cfg.Engine.HistoryLimit = 1000
	}
	if cfg.Engine.MinSamples <= 0 {
		cfg.Engine.MinSamples = 10
	}
	if cfg.Engine.IngestInterval <= 0 {
		cfg.Engine.IngestInterval = 100 * time.Millisecond
	}
	if cfg.Engine.DecisionInterval <= 0 {
		cfg.Engine.DecisionInterval = 50 * time.Millisecond
	}
	if cfg.Engine.Feed == "" {
		cfg.Engine.Feed = "simulator"
	}
	if cfg.Gateway.Latency <= 0 {
		cfg.Gateway.Latency = 10 * time.Millisecond
	}
	if cfg.Gateway.SubmitTimeout <= 0 {
		cfg.Gateway.SubmitTimeout = 2 * time.Second
	}
}
