package stream

import (
	"encoding/json"
	"errors"
	"time"

	"market-sync/src/helpers"
	"market-sync/src/logger"
	"market-sync/src/models"
)

// ErrFrameIgnored marks a syntactically valid frame whose type is not "tick".
// Such frames are dropped without touching the current snapshot.
var ErrFrameIgnored = errors.New("frame ignored")

// -----------------------------------------------------------------------------
// Wire format of one push frame. change_percent and dividend_yield are
// pointers because absence is meaningful.
// -----------------------------------------------------------------------------

type tickFrame struct {
	Type     string               `json:"type"`
	Stocks   []rawStock           `json:"stocks"`
	Event    *models.MMarketEvent `json:"event"`
	Race     *models.MRaceInfo    `json:"race"`
	Forecast *models.MForecast    `json:"forecast"`
}

type rawStock struct {
	ID            int64    `json:"id"`
	Symbol        string   `json:"symbol"`
	Name          string   `json:"name"`
	Category      string   `json:"category"`
	Price         float64  `json:"price"`
	DayOpen       float64  `json:"day_open"`
	PrevClose     float64  `json:"prev_close"`
	ChangePercent *float64 `json:"change_percent"`
	Volume        float64  `json:"volume"`
	Volatility    float64  `json:"volatility"`
	DividendYield *float64 `json:"dividend_yield"`
}

// -----------------------------------------------------------------------------

type Normalizer struct {
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewNormalizer(log *logger.Logger) *Normalizer {
	return &Normalizer{Logger: log}
}

// -----------------------------------------------------------------------------

// Normalize validates a raw frame and builds a canonical snapshot. The
// returned snapshot replaces the previous one wholesale: a field absent in
// this tick is nil here and must overwrite anything published before.
func (n *Normalizer) Normalize(raw []byte, receivedAt time.Time) (*models.MMarketSnapshot, error) {
	var frame tickFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		n.Logger.Debug("Dropping malformed frame: %v", err)
		return nil, helpers.NewParseError("push frame", err)
	}

	if frame.Type != "tick" {
		n.Logger.Debug("Ignoring frame of type %q", frame.Type)
		return nil, ErrFrameIgnored
	}

	snapshot := &models.MMarketSnapshot{
		Stocks:     make([]models.MStock, 0, len(frame.Stocks)),
		Event:      frame.Event,
		Race:       frame.Race,
		Forecast:   frame.Forecast,
		ReceivedAt: receivedAt,
	}

	for _, rs := range frame.Stocks {
		snapshot.Stocks = append(snapshot.Stocks, normalizeStock(rs))
	}

	return snapshot, nil
}

// -----------------------------------------------------------------------------

// normalizeStock fills in change_percent when the server omits it. The base
// is day_open, falling back to prev_close, falling back to the price itself;
// a base of zero or less yields 0%.
func normalizeStock(rs rawStock) models.MStock {
	base := rs.DayOpen
	if base == 0 {
		base = rs.PrevClose
	}
	if base == 0 {
		base = rs.Price
	}

	changePercent := 0.0
	if rs.ChangePercent != nil {
		changePercent = *rs.ChangePercent
	} else if base > 0 {
		changePercent = (rs.Price - base) / base * 100
	}

	prevClose := rs.PrevClose
	if prevClose == 0 {
		// Map the derivation base back so the display layer always has one.
		prevClose = base
	}

	return models.MStock{
		ID:            rs.ID,
		Symbol:        rs.Symbol,
		Name:          rs.Name,
		Category:      rs.Category,
		Price:         rs.Price,
		DayOpen:       rs.DayOpen,
		PrevClose:     prevClose,
		ChangePercent: changePercent,
		Volume:        rs.Volume,
		Volatility:    rs.Volatility,
		DividendYield: rs.DividendYield,
	}
}
