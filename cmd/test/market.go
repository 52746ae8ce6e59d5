package main

import (
	"encoding/json"
	"math/rand"
	"sync"
	"time"
)

func tickDuration(ms int) time.Duration {
	if ms <= 0 {
		ms = 1000
	}
	return time.Duration(ms) * time.Millisecond
}

// -----------------------------------------------------------------------------
// Simulated market: a few instruments on a clamped random walk. The tick
// frame mirrors the real backend's wire shape, day_open included, so the
// normalizer sees the same payload it would in production.
// -----------------------------------------------------------------------------

type stubStock struct {
	ID        int64   `json:"id"`
	Symbol    string  `json:"symbol"`
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Price     float64 `json:"price"`
	DayOpen   float64 `json:"day_open"`
	PrevClose float64 `json:"prev_close"`
	Volume    float64 `json:"volume"`
}

type market struct {
	mu       sync.RWMutex
	stocks   []stubStock
	interval time.Duration

	subMu sync.Mutex
	subs  map[chan []byte]struct{}
}

// -----------------------------------------------------------------------------

func newMarket(interval time.Duration) *market {
	return &market{
		interval: interval,
		subs:     make(map[chan []byte]struct{}),
		stocks: []stubStock{
			{ID: 1, Symbol: "MOON", Name: "Moonshot Industries", Category: "tech", Price: 120, DayOpen: 118, PrevClose: 115},
			{ID: 2, Symbol: "DIRT", Name: "Dirt Cheap Mining", Category: "materials", Price: 14.5, DayOpen: 15, PrevClose: 15.2},
			{ID: 3, Symbol: "SNKO", Name: "Snake Oil Co", Category: "pharma", Price: 47, DayOpen: 47, PrevClose: 44},
			{ID: 4, Symbol: "YOLO", Name: "Yolo Capital", Category: "finance", Price: 310, DayOpen: 305, PrevClose: 300},
		},
	}
}

// -----------------------------------------------------------------------------

func (m *market) run() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for range ticker.C {
		m.step()
		m.publish(m.tickFrame())
	}
}

// step moves every price by up to ±1%, floored at a cent.
func (m *market) step() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.stocks {
		drift := (rand.Float64() - 0.5) * 0.02
		price := m.stocks[i].Price * (1 + drift)
		if price < 0.01 {
			price = 0.01
		}
		m.stocks[i].Price = price
		m.stocks[i].Volume += rand.Float64() * 1000
	}
}

// -----------------------------------------------------------------------------

func (m *market) tickFrame() []byte {
	m.mu.RLock()
	stocks := make([]stubStock, len(m.stocks))
	copy(stocks, m.stocks)
	m.mu.RUnlock()

	frame, _ := json.Marshal(map[string]interface{}{
		"type":   "tick",
		"stocks": stocks,
	})
	return frame
}

func (m *market) snapshot() []stubStock {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]stubStock, len(m.stocks))
	copy(out, m.stocks)
	return out
}

// -----------------------------------------------------------------------------
// Subscriber plumbing for the /ws endpoint.
// -----------------------------------------------------------------------------

func (m *market) subscribe() chan []byte {
	ch := make(chan []byte, 16)
	m.subMu.Lock()
	m.subs[ch] = struct{}{}
	m.subMu.Unlock()
	return ch
}

func (m *market) unsubscribe(ch chan []byte) {
	m.subMu.Lock()
	if _, ok := m.subs[ch]; ok {
		delete(m.subs, ch)
		close(ch)
	}
	m.subMu.Unlock()
}

func (m *market) publish(frame []byte) {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	for ch := range m.subs {
		select {
		case ch <- frame:
		default:
			// Slow consumer, drop the frame
		}
	}
}
