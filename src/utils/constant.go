package utils

// -----------------------------------------------------------------------------

// Feature layout of one retained price sample inside the ring buffer.
const (
	RB_NUM_FEATURES = 4

	RB_IDX_TIMESTAMP = 0
	RB_IDX_PRICE     = 1
	RB_IDX_CHG_PCT   = 2
	RB_IDX_VOLUME    = 3
)

// -----------------------------------------------------------------------------

// The simulated market ticks roughly once per second, so 300 points cover
// the five minutes a sparkline needs.
const (
	DefaultHistoryPoints = 300
	MinHistoryPoints     = 50
)
