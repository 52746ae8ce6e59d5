package utils

import (
	"testing"
	"time"

	"market-sync/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func point(ts int64, price float64) models.MPricePoint {
	return models.MPricePoint{Timestamp: ts, Price: price, ChangePercent: 1.5, Volume: 100}
}

// -----------------------------------------------------------------------------

func TestRingBufferAppendAndGetAll(t *testing.T) {
	rb := NewRingBuffer(4)

	for i := 1; i <= 3; i++ {
		rb.Append(point(int64(i), float64(i)*10))
	}

	assert.Equal(t, 3, rb.Size())
	assert.False(t, rb.IsFull())

	all := rb.GetAll()
	require.Len(t, all, 3)
	assert.Equal(t, int64(1), all[0].Timestamp)
	assert.Equal(t, int64(3), all[2].Timestamp)
	assert.Equal(t, 1.5, all[0].ChangePercent)
}

func TestRingBufferWrapAround(t *testing.T) {
	rb := NewRingBuffer(3)

	for i := 1; i <= 5; i++ {
		rb.Append(point(int64(i), float64(i)))
	}

	assert.True(t, rb.IsFull())
	assert.Equal(t, 3, rb.Size())

	all := rb.GetAll()
	require.Len(t, all, 3)
	// Oldest two were overwritten
	assert.Equal(t, int64(3), all[0].Timestamp)
	assert.Equal(t, int64(5), all[2].Timestamp)
}

func TestRingBufferGetLatest(t *testing.T) {
	rb := NewRingBuffer(5)

	for i := 1; i <= 4; i++ {
		rb.Append(point(int64(i), float64(i)))
	}

	latest := rb.GetLatest(2)
	require.Len(t, latest, 2)
	assert.Equal(t, int64(3), latest[0].Timestamp)
	assert.Equal(t, int64(4), latest[1].Timestamp)

	// Asking for more than stored returns everything
	assert.Len(t, rb.GetLatest(100), 4)
	assert.Empty(t, rb.GetLatest(0))
}

func TestRingBufferResizeShrinkKeepsNewest(t *testing.T) {
	rb := NewRingBuffer(5)
	for i := 1; i <= 5; i++ {
		rb.Append(point(int64(i), float64(i)))
	}

	rb.Resize(2)
	assert.Equal(t, 2, rb.Capacity())

	all := rb.GetAll()
	require.Len(t, all, 2)
	assert.Equal(t, int64(4), all[0].Timestamp)
	assert.Equal(t, int64(5), all[1].Timestamp)

	// Appending after a shrink keeps wrapping correctly
	rb.Append(point(6, 6))
	all = rb.GetAll()
	assert.Equal(t, int64(5), all[0].Timestamp)
	assert.Equal(t, int64(6), all[1].Timestamp)
}

func TestRingBufferClear(t *testing.T) {
	rb := NewRingBuffer(3)
	rb.Append(point(1, 1))
	rb.Clear()

	assert.Equal(t, 0, rb.Size())
	assert.Empty(t, rb.GetAll())
}

// -----------------------------------------------------------------------------

func testKeeper() *HistoryKeeper {
	return NewHistoryKeeper(0, 10, testLogger())
}

func TestHistoryKeeperRecordsPerStock(t *testing.T) {
	hk := testKeeper()

	now := time.Now()
	hk.Record(&models.MMarketSnapshot{
		ReceivedAt: now,
		Stocks: []models.MStock{
			{ID: 1, Price: 100, ChangePercent: 2, Volume: 50},
			{ID: 2, Price: 40},
		},
	})
	hk.Record(&models.MMarketSnapshot{
		ReceivedAt: now.Add(time.Second),
		Stocks:     []models.MStock{{ID: 1, Price: 101}},
	})

	assert.Equal(t, 2, hk.StockCount())
	assert.True(t, hk.HasStock(1))
	assert.False(t, hk.HasStock(99))

	series := hk.History(1, 0)
	require.Len(t, series, 2)
	assert.Equal(t, 100.0, series[0].Price)
	assert.Equal(t, 101.0, series[1].Price)

	assert.Len(t, hk.History(2, 0), 1)
	assert.Empty(t, hk.History(99, 0))
}

func TestHistoryKeeperLimit(t *testing.T) {
	hk := testKeeper()

	for i := 0; i < 5; i++ {
		hk.Record(&models.MMarketSnapshot{
			ReceivedAt: time.Unix(int64(i), 0),
			Stocks:     []models.MStock{{ID: 1, Price: float64(i)}},
		})
	}

	recent := hk.History(1, 2)
	require.Len(t, recent, 2)
	assert.Equal(t, 3.0, recent[0].Price)
	assert.Equal(t, 4.0, recent[1].Price)
}

func TestHistoryKeeperBoundedRetention(t *testing.T) {
	hk := NewHistoryKeeper(0, 3, testLogger())

	for i := 0; i < 10; i++ {
		hk.Record(&models.MMarketSnapshot{
			ReceivedAt: time.Unix(int64(i), 0),
			Stocks:     []models.MStock{{ID: 1, Price: float64(i)}},
		})
	}

	series := hk.History(1, 0)
	require.Len(t, series, 3)
	assert.Equal(t, 7.0, series[0].Price)
}

func TestHistoryKeeperCleanup(t *testing.T) {
	hk := testKeeper()
	hk.Record(&models.MMarketSnapshot{Stocks: []models.MStock{{ID: 1, Price: 1}}})

	hk.Cleanup()
	assert.Equal(t, 0, hk.StockCount())
}

func TestHistoryKeeperNilSnapshot(t *testing.T) {
	hk := testKeeper()
	hk.Record(nil)
	assert.Equal(t, 0, hk.StockCount())
}
