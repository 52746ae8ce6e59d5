package models

// MPosition is one holding as served by /api/portfolio. Quantity is always
// positive; direction is carried by IsShort.
type MPosition struct {
	StockID  int64   `json:"stock_id"`
	Quantity float64 `json:"quantity"`
	AvgCost  float64 `json:"avg_cost"`
	IsShort  bool    `json:"is_short"`
}

// -----------------------------------------------------------------------------

// MNetWorthView is derived, never persisted. StockValue sums long positions
// only; shorts are excluded from the additive total.
type MNetWorthView struct {
	Cash       float64 `json:"cash"`
	StockValue float64 `json:"stock_value"`
	NetWorth   float64 `json:"net_worth"`
}

// -----------------------------------------------------------------------------

// MPositionView is the per-item display row. Shorts appear here with their
// mark-to-market value even though they do not contribute to StockValue.
type MPositionView struct {
	StockID      int64   `json:"stock_id"`
	Symbol       string  `json:"symbol"`
	Quantity     float64 `json:"quantity"`
	AvgCost      float64 `json:"avg_cost"`
	IsShort      bool    `json:"is_short"`
	CurrentPrice float64 `json:"current_price"`
	MarketValue  float64 `json:"market_value"`
	Unrealized   float64 `json:"unrealized_pnl"`
}
