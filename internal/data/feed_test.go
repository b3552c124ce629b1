package data

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimFeedGetPrice(t *testing.T) {
	feed := NewSimFeed([]string{"BTC-USDT"}, 100.0, 42)

	sample, err := feed.GetPrice(context.Background(), "BTC-USDT")
	require.NoError(t, err)
	require.NotNil(t, sample)
	assert.Equal(t, "BTC-USDT", sample.Symbol)
	assert.Greater(t, sample.Price, 0.0)
	assert.GreaterOrEqual(t, sample.Volume, 100.0)
}

func TestSimFeedUnknownSymbol(t *testing.T) {
	feed := NewSimFeed([]string{"BTC-USDT"}, 100.0, 42)

	sample, err := feed.GetPrice(context.Background(), "DOGE-USDT")
	require.NoError(t, err)
	assert.Nil(t, sample, "unsubscribed symbol should yield no data")
}

func TestSimFeedOrderbookShape(t *testing.T) {
	feed := NewSimFeed([]string{"BTC-USDT"}, 100.0, 42)

	book, err := feed.GetOrderbook(context.Background(), "BTC-USDT")
	require.NoError(t, err)
	require.NotNil(t, book)
	require.Len(t, book.Bids, 5)
	require.Len(t, book.Asks, 5)

	// bids 降序，asks 升序，且 best bid < best ask
	for i := 1; i < 5; i++ {
		assert.Less(t, book.Bids[i].Price, book.Bids[i-1].Price)
		assert.Greater(t, book.Asks[i].Price, book.Asks[i-1].Price)
	}
	assert.Less(t, book.Bids[0].Price, book.Asks[0].Price)
}

func TestSimFeedCancelledContext(t *testing.T) {
	feed := NewSimFeed([]string{"BTC-USDT"}, 100.0, 42)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := feed.GetPrice(ctx, "BTC-USDT")
	assert.Error(t, err)
}
