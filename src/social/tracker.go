package social

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"market-sync/src/client"
	"market-sync/src/logger"
	"market-sync/src/models"
)

// -----------------------------------------------------------------------------
// Tracker polls the global leaderboard on its own cadence (reference 10 s,
// slower than the session refresh). The last good board is retained across
// failed polls so subscribers never see a flash of empty rankings.
// -----------------------------------------------------------------------------

type BoardHandler func([]models.MLeaderboardEntry)

type Tracker struct {
	Logger *logger.Logger
	API    *client.APIClient

	interval time.Duration
	onBoard  BoardHandler

	mu      sync.RWMutex
	entries []models.MLeaderboardEntry

	isRunning  atomic.Bool
	cancelFunc context.CancelFunc
}

func NewTracker(api *client.APIClient, interval time.Duration, log *logger.Logger) *Tracker {
	return &Tracker{
		Logger:   log,
		API:      api,
		interval: interval,
	}
}

// -----------------------------------------------------------------------------

func (t *Tracker) SetHandler(h BoardHandler) {
	t.onBoard = h
}

// Leaderboard returns the last successfully fetched board.
func (t *Tracker) Leaderboard() []models.MLeaderboardEntry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]models.MLeaderboardEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// -----------------------------------------------------------------------------

func (t *Tracker) Start(parentCtx context.Context, wg *sync.WaitGroup) error {
	if !t.isRunning.CompareAndSwap(false, true) {
		t.Logger.Warning("Leaderboard tracker already running")
		return nil
	}

	ctx, cancel := context.WithCancel(parentCtx)
	t.cancelFunc = cancel

	wg.Add(1)
	go t.runLoop(ctx, wg)

	t.Logger.Info("Leaderboard tracker started (interval %v)", t.interval)
	return nil
}

func (t *Tracker) Stop() {
	if !t.isRunning.CompareAndSwap(true, false) {
		return
	}
	if t.cancelFunc != nil {
		t.cancelFunc()
	}
	t.Logger.Info("Leaderboard tracker stopped")
}

// -----------------------------------------------------------------------------

func (t *Tracker) runLoop(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	t.pollOnce()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.pollOnce()
		}
	}
}

// pollOnce is a secondary poll: any error is logged at debug and the board
// keeps its previous contents.
func (t *Tracker) pollOnce() {
	entries, err := t.API.FetchLeaderboard()
	if err != nil {
		t.Logger.Debug("Leaderboard fetch failed: %v", err)
		return
	}

	t.mu.Lock()
	t.entries = entries
	t.mu.Unlock()

	if t.onBoard != nil {
		t.onBoard(entries)
	}
}
