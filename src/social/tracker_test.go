package social

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"market-sync/src/client"
	"market-sync/src/logger"
	"market-sync/src/models"
	"market-sync/src/network"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

type boardStub struct {
	mu    sync.Mutex
	calls int
	fail  bool
}

func (b *boardStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.calls++
	fail := b.fail
	b.mu.Unlock()

	if fail {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Write([]byte(`[{"username":"whale","balance":50000,"net_worth":60000}]`))
}

func (b *boardStub) setFail(fail bool) {
	b.mu.Lock()
	b.fail = fail
	b.mu.Unlock()
}

func (b *boardStub) callCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

func newTestTracker(t *testing.T, stub *boardStub, interval time.Duration) *Tracker {
	t.Helper()

	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)

	cfg := &models.MConfig{
		Upstream: models.MUpstreamConfig{BaseURL: srv.URL},
		Network:  models.MNetworkConfig{RequestTimeout: 5, MaxRetries: 0},
	}
	log := logger.NewLogger("ERROR", "test")
	netMgr := network.NewAuthNetworkManager(cfg, log, func() string { return "tok" })
	return NewTracker(client.NewAPIClient(netMgr, log), interval, log)
}

// -----------------------------------------------------------------------------

func TestTrackerPollsOnItsOwnCadence(t *testing.T) {
	stub := &boardStub{}
	tracker := newTestTracker(t, stub, 20*time.Millisecond)

	var pushes int
	var mu sync.Mutex
	tracker.SetHandler(func(entries []models.MLeaderboardEntry) {
		mu.Lock()
		pushes++
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wg := &sync.WaitGroup{}

	require.NoError(t, tracker.Start(ctx, wg))

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) && stub.callCount() < 3 {
		time.Sleep(5 * time.Millisecond)
	}

	tracker.Stop()
	cancel()
	wg.Wait()

	assert.GreaterOrEqual(t, stub.callCount(), 3)
	board := tracker.Leaderboard()
	require.Len(t, board, 1)
	assert.Equal(t, "whale", board[0].Username)

	mu.Lock()
	defer mu.Unlock()
	assert.GreaterOrEqual(t, pushes, 3)
}

func TestTrackerKeepsLastGoodBoard(t *testing.T) {
	stub := &boardStub{}
	tracker := newTestTracker(t, stub, time.Hour)

	tracker.pollOnce()
	require.Len(t, tracker.Leaderboard(), 1)

	stub.setFail(true)
	tracker.pollOnce()

	// Failed poll is swallowed and the board survives
	assert.Len(t, tracker.Leaderboard(), 1)
}

func TestTrackerDoubleStartIsNoop(t *testing.T) {
	stub := &boardStub{}
	tracker := newTestTracker(t, stub, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wg := &sync.WaitGroup{}

	require.NoError(t, tracker.Start(ctx, wg))
	require.NoError(t, tracker.Start(ctx, wg))

	tracker.Stop()
	tracker.Stop()
	cancel()
	wg.Wait()
}
