package bank

import (
	"sync"

	"market-sync/src/client"
	"market-sync/src/logger"
	"market-sync/src/models"
	"market-sync/src/session"
)

// -----------------------------------------------------------------------------
// FreezeMonitor tracks the trading-frozen flag coming out of the session
// profile refresh and keeps the debt detail warm while it is set. It does no
// polling of its own: the session loop already ticks every refresh interval,
// so the monitor just rides each EventUserUpdated.
// -----------------------------------------------------------------------------

type DebtHandler func(*models.MDebtStatus)

type FreezeMonitor struct {
	Logger *logger.Logger
	API    *client.APIClient

	mu     sync.Mutex
	active bool
	status *models.MDebtStatus

	onDebt DebtHandler
}

func NewFreezeMonitor(api *client.APIClient, log *logger.Logger) *FreezeMonitor {
	return &FreezeMonitor{
		Logger: log,
		API:    api,
	}
}

// -----------------------------------------------------------------------------

// SetHandler registers the observer invoked whenever the debt detail changes,
// including the nil push when the freeze clears.
func (m *FreezeMonitor) SetHandler(h DebtHandler) {
	m.onDebt = h
}

// Status returns the last debt detail fetched, or nil when not frozen.
func (m *FreezeMonitor) Status() *models.MDebtStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Active reports whether the monitor is currently in the frozen cycle.
func (m *FreezeMonitor) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// -----------------------------------------------------------------------------

// OnSessionEvent is the session subscriber. A profile refresh with the frozen
// flag set starts (or continues) the debt cycle; a refresh without it stops
// the cycle and drops the cached detail. A token change always stops it.
func (m *FreezeMonitor) OnSessionEvent(ev session.Event) {
	switch ev.Kind {
	case session.EventTokenChanged:
		m.deactivate()
	case session.EventUserUpdated:
		if ev.User != nil && ev.User.IsTradingFrozen {
			m.refresh()
		} else {
			m.deactivate()
		}
	}
}

// -----------------------------------------------------------------------------

// refresh fetches the debt detail. Fetch errors are swallowed: the freeze
// flag itself came from the profile, and a stale detail beats a broken UI.
func (m *FreezeMonitor) refresh() {
	m.mu.Lock()
	wasActive := m.active
	m.active = true
	m.mu.Unlock()

	if !wasActive {
		m.Logger.Info("Account frozen, starting debt status cycle")
	}

	status, err := m.API.FetchDebtStatus()
	if err != nil {
		m.Logger.Debug("Debt status fetch failed: %v", err)
		return
	}

	m.mu.Lock()
	m.status = &status
	m.mu.Unlock()

	if m.onDebt != nil {
		m.onDebt(&status)
	}
}

func (m *FreezeMonitor) deactivate() {
	m.mu.Lock()
	wasActive := m.active
	m.active = false
	m.status = nil
	m.mu.Unlock()

	if wasActive {
		m.Logger.Info("Account freeze cleared, stopping debt status cycle")
		if m.onDebt != nil {
			m.onDebt(nil)
		}
	}
}
