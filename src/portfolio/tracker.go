package portfolio

import (
	"sync"

	"market-sync/src/client"
	"market-sync/src/derived"
	"market-sync/src/logger"
	"market-sync/src/session"
)

// -----------------------------------------------------------------------------
// Tracker keeps the valuation engine fed with the authoritative portfolio.
// It refetches holdings whenever the session profile changes, since any
// fill, dividend or bonus moves the cash balance first.
// -----------------------------------------------------------------------------

type Tracker struct {
	Logger *logger.Logger
	API    *client.APIClient
	Engine *derived.Engine

	mu       sync.Mutex
	lastCash float64
	hasUser  bool
}

func NewTracker(api *client.APIClient, engine *derived.Engine, log *logger.Logger) *Tracker {
	return &Tracker{
		Logger: log,
		API:    api,
		Engine: engine,
	}
}

// -----------------------------------------------------------------------------

// OnSessionEvent is the session subscriber. Teardown resets the engine;
// profile updates push the fresh cash balance and trigger a holdings refetch
// when the balance moved.
func (t *Tracker) OnSessionEvent(ev session.Event) {
	switch ev.Kind {
	case session.EventTokenChanged:
		if ev.Token == "" {
			t.mu.Lock()
			t.hasUser = false
			t.lastCash = 0
			t.mu.Unlock()
			t.Engine.Reset()
		}
	case session.EventUserUpdated:
		if ev.User == nil {
			return
		}
		t.Engine.SetCash(ev.User.Balance)

		t.mu.Lock()
		changed := !t.hasUser || ev.User.Balance != t.lastCash
		t.hasUser = true
		t.lastCash = ev.User.Balance
		t.mu.Unlock()

		if changed {
			t.Refetch()
		}
	}
}

// -----------------------------------------------------------------------------

// Refetch pulls holdings and hands them to the engine. A failed fetch keeps
// the previous positions; they will be retried on the next balance change.
func (t *Tracker) Refetch() {
	positions, err := t.API.FetchPortfolio()
	if err != nil {
		t.Logger.Debug("Portfolio fetch failed: %v", err)
		return
	}
	t.Engine.SetPositions(positions)
}
