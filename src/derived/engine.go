package derived

import (
	"sync"

	"market-sync/src/models"
)

// -----------------------------------------------------------------------------
// Pure valuation rules. Short positions never add to stock value: only long
// quantities are marked against the live price.
// -----------------------------------------------------------------------------

// ComputeStockValue marks long positions to market. Positions whose stock is
// absent from the snapshot contribute nothing.
func ComputeStockValue(positions []models.MPosition, snapshot *models.MMarketSnapshot) float64 {
	total := 0.0
	for _, p := range positions {
		if p.IsShort {
			continue
		}
		stock, ok := snapshot.StockByID(p.StockID)
		if !ok {
			continue
		}
		total += p.Quantity * stock.Price
	}
	return total
}

// ComputeNetWorth is cash plus marked long value.
func ComputeNetWorth(cash float64, positions []models.MPosition, snapshot *models.MMarketSnapshot) models.MNetWorthView {
	stockValue := ComputeStockValue(positions, snapshot)
	return models.MNetWorthView{
		Cash:       cash,
		StockValue: stockValue,
		NetWorth:   cash + stockValue,
	}
}

// -----------------------------------------------------------------------------

// BuildPositionViews produces the per-position display rows. Shorts are
// listed with their market value and unrealized P&L even though they are
// excluded from the aggregate stock value.
func BuildPositionViews(positions []models.MPosition, snapshot *models.MMarketSnapshot) []models.MPositionView {
	views := make([]models.MPositionView, 0, len(positions))
	for _, p := range positions {
		view := models.MPositionView{
			StockID:  p.StockID,
			Quantity: p.Quantity,
			AvgCost:  p.AvgCost,
			IsShort:  p.IsShort,
		}
		if stock, ok := snapshot.StockByID(p.StockID); ok {
			view.Symbol = stock.Symbol
			view.CurrentPrice = stock.Price
			view.MarketValue = p.Quantity * stock.Price
			if p.IsShort {
				view.Unrealized = p.Quantity * (p.AvgCost - stock.Price)
			} else {
				view.Unrealized = p.Quantity * (stock.Price - p.AvgCost)
			}
		}
		views = append(views, view)
	}
	return views
}

// -----------------------------------------------------------------------------
// Engine caches the latest inputs and recomputes the view whenever any of
// them changes. All methods are safe for concurrent use.
// -----------------------------------------------------------------------------

type Engine struct {
	mu        sync.RWMutex
	cash      float64
	positions []models.MPosition
	snapshot  *models.MMarketSnapshot

	netWorth models.MNetWorthView
	views    []models.MPositionView
}

func NewEngine() *Engine {
	return &Engine{snapshot: &models.MMarketSnapshot{}}
}

// -----------------------------------------------------------------------------

func (e *Engine) SetCash(cash float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cash = cash
	e.recompute()
}

func (e *Engine) SetPositions(positions []models.MPosition) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.positions = positions
	e.recompute()
}

func (e *Engine) SetSnapshot(snapshot *models.MMarketSnapshot) {
	if snapshot == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.snapshot = snapshot
	e.recompute()
}

// Reset clears portfolio inputs after a session teardown. Market data is
// session independent and survives.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cash = 0
	e.positions = nil
	e.recompute()
}

// -----------------------------------------------------------------------------

func (e *Engine) recompute() {
	e.netWorth = ComputeNetWorth(e.cash, e.positions, e.snapshot)
	e.views = BuildPositionViews(e.positions, e.snapshot)
}

func (e *Engine) NetWorth() models.MNetWorthView {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.netWorth
}

func (e *Engine) PositionViews() []models.MPositionView {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]models.MPositionView, len(e.views))
	copy(out, e.views)
	return out
}

func (e *Engine) Snapshot() *models.MMarketSnapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snapshot
}
