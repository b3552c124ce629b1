package api

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"crypto-trading-engine/internal/model"
	"crypto-trading-engine/internal/service"
)

// okxWsData 适用于 Okx V5 的通用响应结构
type okxWsData struct {
	Arg struct {
		Channel string `json:"channel"`
		InstID  string `json:"instId"`
	} `json:"arg"`
	Data  json.RawMessage `json:"data"` // 延迟解析，按 channel 分发
	Event string          `json:"event"`
}

// okxTradeData 适配 Okx trades 频道数据结构
type okxTradeData struct {
	Timestamp string `json:"ts"` // 成交时间 (毫秒字符串)
	Price     string `json:"px"` // 成交价格
	Size      string `json:"sz"` // 成交数量
	InstID    string `json:"instId"`
}

// okxBookData 适配 Okx books5 频道数据结构，档位为字符串数组
type okxBookData struct {
	Asks      [][]string `json:"asks"`
	Bids      [][]string `json:"bids"`
	Timestamp string     `json:"ts"`
}

// Connector 是基于 Okx WebSocket 的实时行情源，实现 data.MarketDataSource。
// 读循环把最新成交与订单簿缓存在内存里；GetPrice 对同一次更新只返回一次，
// 两次更新之间的轮询视为"本轮无数据"。
type Connector struct {
	wsURL   string
	symbols []string
	logger  *zap.Logger

	mu     sync.RWMutex
	latest map[string]*model.PriceSample       // 尚未被消费的最新样本
	books  map[string]*model.OrderBookSnapshot // 最新订单簿快照
}

// NewConnector 创建行情连接器；symbols 直接作为 Okx 现货 instId 使用 (如 "BTC-USDT")
func NewConnector(wsURL string, symbols []string, logger *zap.Logger) *Connector {
	return &Connector{
		wsURL:   wsURL,
		symbols: symbols,
		logger:  logger.With(zap.String("component", "okx_connector")),
		latest:  make(map[string]*model.PriceSample),
		books:   make(map[string]*model.OrderBookSnapshot),
	}
}

// Start 建立 WebSocket 连接并持续接收行情，断线后退避重连，
// ctx 取消时退出。应在独立 goroutine 中运行。
func (c *Connector) Start(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		if err := c.connectAndRead(ctx); err != nil && ctx.Err() == nil {
			c.logger.Error("WS connection lost, reconnecting...", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(5 * time.Second):
		}
	}
}

// GetPrice 返回该交易对最近一次更新的样本；每次更新只消费一次
func (c *Connector) GetPrice(ctx context.Context, symbol string) (*model.PriceSample, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	sample := c.latest[symbol]
	if sample == nil {
		return nil, nil
	}
	c.latest[symbol] = nil
	return sample, nil
}

// GetOrderbook 返回该交易对的最新订单簿快照；尚无数据时返回 nil
func (c *Connector) GetOrderbook(ctx context.Context, symbol string) (*model.OrderBookSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.books[symbol], nil
}

// connectAndRead 完成一次 连接 -> 订阅 -> 读循环 的生命周期
func (c *Connector) connectAndRead(ctx context.Context) error {
	c.logger.Info("Connecting Okx WS...", zap.String("url", c.wsURL))

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.wsURL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	// ctx 取消时强制关闭连接，解除 ReadMessage 阻塞
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	var args []map[string]string
	for _, instID := range c.symbols {
		args = append(args, map[string]string{"channel": "trades", "instId": instID})
		args = append(args, map[string]string{"channel": "books5", "instId": instID})
	}
	subscribeMsg := map[string]interface{}{
		"op":   "subscribe",
		"args": args,
	}
	if err := conn.WriteJSON(subscribeMsg); err != nil {
		return err
	}
	c.logger.Info("Subscribed to Okx trades and books5 streams", zap.Strings("symbols", c.symbols))

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var wsResp okxWsData
		if err := json.Unmarshal(message, &wsResp); err != nil {
			continue
		}
		if wsResp.Event != "" {
			continue // 忽略订阅确认等事件消息
		}
		if wsResp.Arg.InstID == "" || len(wsResp.Data) == 0 {
			continue
		}

		switch wsResp.Arg.Channel {
		case "trades":
			c.handleTrades(wsResp.Arg.InstID, wsResp.Data)
		case "books5":
			c.handleBook(wsResp.Arg.InstID, wsResp.Data)
		}
	}
}

// handleTrades 将成交数据转换为 PriceSample 并缓存
func (c *Connector) handleTrades(instID string, raw json.RawMessage) {
	var trades []okxTradeData
	if err := json.Unmarshal(raw, &trades); err != nil {
		c.logger.Error("Trade data unmarshal error", zap.Error(err))
		return
	}

	for _, trade := range trades {
		price, err := service.StringToFloat(trade.Price)
		if err != nil {
			continue
		}
		volume, err := service.StringToFloat(trade.Size)
		if err != nil {
			continue
		}
		tsMilli, err := service.StringToInt64(trade.Timestamp)
		if err != nil {
			continue
		}

		c.mu.Lock()
		c.latest[instID] = &model.PriceSample{
			Symbol:    instID,
			Price:     price,
			Timestamp: tsMilli / 1000,
			Volume:    volume,
		}
		c.mu.Unlock()
	}
}

// handleBook 将 books5 数据转换为 OrderBookSnapshot 并缓存
func (c *Connector) handleBook(instID string, raw json.RawMessage) {
	var books []okxBookData
	if err := json.Unmarshal(raw, &books); err != nil {
		c.logger.Error("Book data unmarshal error", zap.Error(err))
		return
	}
	if len(books) == 0 {
		return
	}
	book := books[0] // 仅处理最新快照

	tsMilli, _ := service.StringToInt64(book.Timestamp)
	snapshot := &model.OrderBookSnapshot{
		Symbol:    instID,
		Bids:      parseLevels(book.Bids),
		Asks:      parseLevels(book.Asks),
		Timestamp: tsMilli / 1000,
	}

	c.mu.Lock()
	c.books[instID] = snapshot
	c.mu.Unlock()
}

// parseLevels 解析 Okx 档位数组 ["price","size",...]，保持交易所给定的排序
// (bids 价格降序, asks 价格升序)
func parseLevels(raw [][]string) []model.PriceLevel {
	levels := make([]model.PriceLevel, 0, len(raw))
	for _, entry := range raw {
		if len(entry) < 2 {
			continue
		}
		price, err := service.StringToFloat(entry[0])
		if err != nil {
			continue
		}
		quantity, err := service.StringToFloat(entry[1])
		if err != nil {
			continue
		}
		levels = append(levels, model.PriceLevel{Price: price, Quantity: quantity})
	}
	return levels
}
