package models

// MPricePoint is one retained sample of a stock's recent price series.
type MPricePoint struct {
	Timestamp     int64   `json:"timestamp"`
	Price         float64 `json:"price"`
	ChangePercent float64 `json:"change_percent"`
	Volume        float64 `json:"volume"`
}
