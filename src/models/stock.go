package models

import "time"

// MStock represents one instrument in a normalized snapshot.
// ChangePercent is always populated by the normalizer before publication.
type MStock struct {
	ID            int64    `json:"id"`
	Symbol        string   `json:"symbol"`
	Name          string   `json:"name"`
	Category      string   `json:"category"`
	Price         float64  `json:"price"`
	DayOpen       float64  `json:"day_open,omitempty"`
	PrevClose     float64  `json:"prev_close,omitempty"`
	ChangePercent float64  `json:"change_percent"`
	Volume        float64  `json:"volume"`
	Volatility    float64  `json:"volatility"`
	DividendYield *float64 `json:"dividend_yield,omitempty"`
}

// -----------------------------------------------------------------------------

type MMarketEvent struct {
	ID               int64   `json:"id"`
	EventType        string  `json:"event_type"`
	Description      string  `json:"description"`
	ImpactMultiplier float64 `json:"impact_multiplier"`
	TargetStock      string  `json:"target_stock,omitempty"`
	CreatedAt        string  `json:"created_at"`
}

type MRaceInfo struct {
	ID             int64    `json:"id"`
	Status         string   `json:"status"`
	BettingEndTime string   `json:"betting_end_time,omitempty"`
	RaceStartTime  string   `json:"race_start_time,omitempty"`
	Horses         []MHorse `json:"horses,omitempty"`
}

type MHorse struct {
	ID   int64   `json:"id"`
	Name string  `json:"name"`
	Odds float64 `json:"odds"`
}

type MForecast struct {
	GuruName    string  `json:"guru_name"`
	StockSymbol string  `json:"stock_symbol"`
	Prediction  string  `json:"prediction"` // "BULLISH" or "BEARISH"
	Confidence  float64 `json:"confidence"`
	Reason      string  `json:"reason"`
}

// -----------------------------------------------------------------------------

// MMarketSnapshot is the latest fully-normalized market state. It is replaced
// wholesale on every valid tick; a nil Event/Race/Forecast means the server no
// longer reports one.
type MMarketSnapshot struct {
	Stocks     []MStock      `json:"stocks"`
	Event      *MMarketEvent `json:"event,omitempty"`
	Race       *MRaceInfo    `json:"race,omitempty"`
	Forecast   *MForecast    `json:"forecast,omitempty"`
	ReceivedAt time.Time     `json:"received_at"`
}

// -----------------------------------------------------------------------------

// StockByID finds a stock in the snapshot. A nil snapshot or an unknown id
// returns (zero, false) so callers can treat the contribution as zero.
func (s *MMarketSnapshot) StockByID(id int64) (MStock, bool) {
	if s == nil {
		return MStock{}, false
	}
	for _, st := range s.Stocks {
		if st.ID == id {
			return st, true
		}
	}
	return MStock{}, false
}
