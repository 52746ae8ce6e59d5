package models

// MUser mirrors the authenticated-user payload from /api/users/me.
type MUser struct {
	ID              int64   `json:"id"`
	Username        string  `json:"username"`
	Nickname        string  `json:"nickname"`
	Balance         float64 `json:"balance"`
	KarmaScore      float64 `json:"karma_score"`
	IsTradingFrozen bool    `json:"is_trading_frozen"`
	FrozenReason    string  `json:"frozen_reason,omitempty"`
	CreatedAt       string  `json:"created_at"`
}

// -----------------------------------------------------------------------------

type MBonusResult struct {
	Message    string  `json:"message"`
	Status     string  `json:"status,omitempty"` // "claimed" when already taken today
	Amount     float64 `json:"amount"`
	NewBalance float64 `json:"new_balance"`
}
