package models

type MLeaderboardEntry struct {
	Username string  `json:"username"`
	Balance  float64 `json:"balance"`
	NetWorth float64 `json:"net_worth"`
}

// -----------------------------------------------------------------------------

type MFriend struct {
	UserID   int64   `json:"user_id"`
	Username string  `json:"username"`
	Nickname string  `json:"nickname"`
	NetWorth float64 `json:"net_worth"`
}

type MPendingRequest struct {
	RequestID    int64  `json:"request_id"`
	FromUserID   int64  `json:"from_user_id"`
	FromUsername string `json:"from_username"`
	CreatedAt    string `json:"created_at"`
}

// -----------------------------------------------------------------------------

// MPublicProfile is another user's visible profile plus their holdings.
type MPublicProfile struct {
	UserID    int64       `json:"user_id"`
	Username  string      `json:"username"`
	Nickname  string      `json:"nickname"`
	NetWorth  float64     `json:"net_worth"`
	Positions []MPosition `json:"positions,omitempty"`
}
