package models

// -----------------------------------------------------------------------------
// Hub State Structure (what UI shells receive over /ws and /api/state)
// -----------------------------------------------------------------------------

type MSyncState struct {
	Type        string              `json:"type"` // "INITIAL" or "UPDATE"
	Connection  string              `json:"connection"`
	Snapshot    *MMarketSnapshot    `json:"snapshot,omitempty"`
	NetWorth    MNetWorthView       `json:"net_worth"`
	Positions   []MPositionView     `json:"positions,omitempty"`
	Debt        *MDebtStatus        `json:"debt,omitempty"`
	Leaderboard []MLeaderboardEntry `json:"leaderboard,omitempty"`
	Overlay     MOverlay            `json:"overlay"`
	Timestamp   int64               `json:"timestamp"`
}

// -----------------------------------------------------------------------------
// Ticker overlay variant. Exactly one kind is active; priority when several
// sources are present: event > forecast > race > default.
// -----------------------------------------------------------------------------

type OverlayKind string

const (
	OverlayEvent    OverlayKind = "event"
	OverlayForecast OverlayKind = "forecast"
	OverlayRace     OverlayKind = "race"
	OverlayDefault  OverlayKind = "default"
)

type MOverlay struct {
	Kind     OverlayKind   `json:"kind"`
	Event    *MMarketEvent `json:"event,omitempty"`
	Forecast *MForecast    `json:"forecast,omitempty"`
	Race     *MRaceInfo    `json:"race,omitempty"`
	Text     string        `json:"text,omitempty"` // default ticker text
}
