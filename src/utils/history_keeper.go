package utils

import (
	"runtime"
	"runtime/debug"
	"sync"

	"market-sync/src/logger"
	"market-sync/src/models"
)

// -----------------------------------------------------------------------------
// HistoryKeeper retains a bounded price series per stock, fed from the live
// snapshots. It backs the /api/stocks/:id/history endpoint.
// -----------------------------------------------------------------------------

type HistoryKeeper struct {
	Series      map[int64]*RingBuffer
	MaxMemoryMB int
	MaxPoints   int
	Logger      *logger.Logger
	mu          sync.RWMutex
}

// -----------------------------------------------------------------------------

func NewHistoryKeeper(maxMemoryMB, maxPoints int, log *logger.Logger) *HistoryKeeper {
	if maxPoints <= 0 {
		maxPoints = DefaultHistoryPoints
	}
	return &HistoryKeeper{
		Series:      make(map[int64]*RingBuffer),
		MaxMemoryMB: maxMemoryMB,
		MaxPoints:   maxPoints,
		Logger:      log,
	}
}

// -----------------------------------------------------------------------------

// Record appends one sample per stock in the snapshot.
func (hk *HistoryKeeper) Record(snapshot *models.MMarketSnapshot) {
	if snapshot == nil {
		return
	}

	ts := snapshot.ReceivedAt.Unix()

	hk.mu.Lock()
	defer hk.mu.Unlock()

	for _, stock := range snapshot.Stocks {
		buffer, ok := hk.Series[stock.ID]
		if !ok {
			buffer = NewRingBuffer(hk.MaxPoints)
			hk.Series[stock.ID] = buffer
		}

		buffer.Append(models.MPricePoint{
			Timestamp:     ts,
			Price:         stock.Price,
			ChangePercent: stock.ChangePercent,
			Volume:        stock.Volume,
		})

		// Periodic memory check
		if buffer.Size()%100 == 0 {
			hk.checkMemoryLimits()
		}
	}
}

// -----------------------------------------------------------------------------

// History returns up to n recent samples for a stock, oldest first. n <= 0
// means the full retained series.
func (hk *HistoryKeeper) History(stockID int64, n int) []models.MPricePoint {
	hk.mu.RLock()
	defer hk.mu.RUnlock()

	buffer, ok := hk.Series[stockID]
	if !ok || buffer.Size() == 0 {
		return []models.MPricePoint{}
	}

	if n <= 0 {
		return buffer.GetAll()
	}
	return buffer.GetLatest(n)
}

// -----------------------------------------------------------------------------

// HasStock checks whether any samples exist for a stock.
func (hk *HistoryKeeper) HasStock(stockID int64) bool {
	hk.mu.RLock()
	defer hk.mu.RUnlock()

	_, ok := hk.Series[stockID]
	return ok
}

// StockCount returns the number of stocks with retained samples.
func (hk *HistoryKeeper) StockCount() int {
	hk.mu.RLock()
	defer hk.mu.RUnlock()

	return len(hk.Series)
}

// -----------------------------------------------------------------------------

// checkMemoryLimits halves retention when the heap outgrows the budget.
// Caller holds the write lock.
func (hk *HistoryKeeper) checkMemoryLimits() {
	if hk.MaxMemoryMB <= 0 {
		return
	}

	currentMemory := processMemoryMB()
	if currentMemory <= float64(hk.MaxMemoryMB) {
		return
	}

	hk.Logger.Info("Memory usage %.1fMB exceeds limit %dMB. Shrinking history buffers.",
		currentMemory, hk.MaxMemoryMB)

	for _, buffer := range hk.Series {
		if buffer.Capacity() > MinHistoryPoints*2 {
			newCapacity := buffer.Capacity() / 2
			if newCapacity < MinHistoryPoints {
				newCapacity = MinHistoryPoints
			}
			buffer.Resize(newCapacity)
		}
	}

	runtime.GC()
	debug.FreeOSMemory()
}

// -----------------------------------------------------------------------------

func processMemoryMB() float64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return float64(m.HeapAlloc) / 1024 / 1024
}

// -----------------------------------------------------------------------------

// Cleanup drops all retained series.
func (hk *HistoryKeeper) Cleanup() {
	hk.mu.Lock()
	defer hk.mu.Unlock()

	hk.Series = make(map[int64]*RingBuffer)
	runtime.GC()
	debug.FreeOSMemory()
}
