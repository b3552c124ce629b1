package data

import (
	"sync"

	"crypto-trading-engine/internal/model"
)

// PriceHistoryStore 维护每个交易对的有界价格历史，供多个采集循环并发写入、
// 决策循环并发读取。写锁只覆盖追加和淘汰，读取用 copy-out，绝不在持锁期间
// 执行策略计算或任何 I/O。
type PriceHistoryStore struct {
	mu      sync.RWMutex
	limit   int
	history map[string][]model.PriceSample
}

// NewPriceHistoryStore 创建历史存储，limit 为每个交易对保留的最大样本数
func NewPriceHistoryStore(limit int) *PriceHistoryStore {
	if limit <= 0 {
		limit = 1000
	}
	return &PriceHistoryStore{
		limit:   limit,
		history: make(map[string][]model.PriceSample),
	}
}

// Record 追加一个样本；超过上限时按 FIFO 淘汰最旧的样本
func (s *PriceHistoryStore) Record(sample model.PriceSample) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := append(s.history[sample.Symbol], sample)
	if len(h) > s.limit {
		h = h[len(h)-s.limit:]
	}
	s.history[sample.Symbol] = h
}

// Snapshot 返回指定交易对历史的只读副本；不存在的交易对返回 nil。
// 调用方拿到的是独立切片，后续写入不会影响它。
func (s *PriceHistoryStore) Snapshot(symbol string) []model.PriceSample {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.history[symbol]
	if !ok {
		return nil
	}
	out := make([]model.PriceSample, len(h))
	copy(out, h)
	return out
}

// Len 返回指定交易对当前的样本数
func (s *PriceHistoryStore) Len(symbol string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.history[symbol])
}

// Symbols 返回当前有历史数据的全部交易对
func (s *PriceHistoryStore) Symbols() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.history))
	for symbol := range s.history {
		out = append(out, symbol)
	}
	return out
}
