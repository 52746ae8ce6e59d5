package models

// MDebtStatus is the frozen-account detail from /api/bank/status. It is not
// carried on the push channel and is only polled while the account is frozen.
type MDebtStatus struct {
	Rates        map[string]float64 `json:"rates,omitempty"`
	Loans        []MLoan            `json:"loans,omitempty"`
	TotalDebt    float64            `json:"total_debt"`
	IsFrozen     bool               `json:"is_frozen"`
	FrozenReason string             `json:"frozen_reason,omitempty"`
	Karma        float64            `json:"karma"`
}

type MLoan struct {
	ID        int64   `json:"id"`
	Principal float64 `json:"principal"`
	Interest  float64 `json:"interest"`
	DueAt     string  `json:"due_at,omitempty"`
}
