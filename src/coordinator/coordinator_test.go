package coordinator

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"market-sync/src/bank"
	"market-sync/src/client"
	"market-sync/src/derived"
	"market-sync/src/interfaces"
	"market-sync/src/logger"
	"market-sync/src/models"
	"market-sync/src/network"
	"market-sync/src/portfolio"
	"market-sync/src/session"
	"market-sync/src/social"
	"market-sync/src/stream"
	"market-sync/src/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------
// Fakes: in-memory vault, recording exchanger, transport that never connects.
// -----------------------------------------------------------------------------

type memVault struct {
	mu    sync.Mutex
	token string
}

func (v *memVault) Initialize() error { return nil }
func (v *memVault) Close() error      { return nil }
func (v *memVault) Clear() error      { return v.Save("") }

func (v *memVault) Load() (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.token, nil
}

func (v *memVault) Save(token string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.token = token
	return nil
}

type recordingExchanger struct {
	mu         sync.Mutex
	broadcasts []*models.MSyncState
	cached     []*models.MSyncState
}

func (e *recordingExchanger) Broadcast(state *models.MSyncState) {
	e.mu.Lock()
	e.broadcasts = append(e.broadcasts, state)
	e.mu.Unlock()
}

func (e *recordingExchanger) UpdateState(state *models.MSyncState) {
	e.mu.Lock()
	e.cached = append(e.cached, state)
	e.mu.Unlock()
}

func (e *recordingExchanger) Start() error { return nil }
func (e *recordingExchanger) Stop() error  { return nil }

func (e *recordingExchanger) cachedStates() []*models.MSyncState {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*models.MSyncState, len(e.cached))
	copy(out, e.cached)
	return out
}

func (e *recordingExchanger) broadcastWith(match func(*models.MSyncState) bool) *models.MSyncState {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, state := range e.broadcasts {
		if match(state) {
			return state
		}
	}
	return nil
}

// blockedTransport parks every dial until the session is cancelled, keeping
// connection-state noise out of the assertions.
type blockedTransport struct{}

func (blockedTransport) OpenChannel(ctx context.Context, url string) (interfaces.IChannel, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

// -----------------------------------------------------------------------------

func stubUpstream(t *testing.T, balance float64) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/users/me", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"id":1,"username":"demo","balance":%g,"is_trading_frozen":false}`, balance)
	})
	mux.HandleFunc("/api/portfolio", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"stock_id":1,"quantity":10,"avg_cost":40,"is_short":false}]`)
	})
	mux.HandleFunc("/api/leaderboard", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	})

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func newCoordinatorHarness(t *testing.T, balance float64) (*Coordinator, *recordingExchanger, *session.Store) {
	t.Helper()

	ts := stubUpstream(t, balance)

	log := logger.NewLogger("ERROR", "test")
	cfg := &models.MConfig{
		Upstream: models.MUpstreamConfig{BaseURL: ts.URL},
		Network:  models.MNetworkConfig{RequestTimeout: 5},
	}

	netMgr := network.NewAuthNetworkManager(cfg, log, func() string { return "" })
	api := client.NewAPIClient(netMgr, log)

	sess := session.NewStore(api, &memVault{}, time.Hour, log)
	engine := derived.NewEngine()
	conn := stream.NewConnectionManager(blockedTransport{}, stream.NewNormalizer(log), "ws://upstream/ws", time.Hour, log)

	coord := NewCoordinator(
		sess,
		conn,
		engine,
		utils.NewHistoryKeeper(0, 10, log),
		social.NewTracker(api, time.Hour, log),
		bank.NewFreezeMonitor(api, log),
		portfolio.NewTracker(api, engine, log),
		&recordingExchanger{},
		log,
	)
	exchanger := coord.Exchanger.(*recordingExchanger)

	ctx, cancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}
	require.NoError(t, coord.Start(ctx, wg))
	t.Cleanup(func() {
		coord.Stop()
		cancel()
		wg.Wait()
	})

	return coord, exchanger, sess
}

// -----------------------------------------------------------------------------

func TestStartSeedsSurfaceCache(t *testing.T) {
	_, exchanger, _ := newCoordinatorHarness(t, 1000)

	cached := exchanger.cachedStates()
	require.Len(t, cached, 1)
	assert.Equal(t, "connecting", cached[0].Connection)
	assert.Equal(t, models.OverlayDefault, cached[0].Overlay.Kind)
}

func TestProfileRefreshPublishesNetWorth(t *testing.T) {
	_, exchanger, sess := newCoordinatorHarness(t, 1000)

	// Installing the token runs the synchronous event chain: trackers fold
	// the profile into the engine, then the coordinator republishes.
	sess.SetToken("token-a")

	state := exchanger.broadcastWith(func(s *models.MSyncState) bool {
		return s.NetWorth.Cash == 1000
	})
	require.NotNil(t, state, "no state published after profile refresh")
	assert.Equal(t, 1000.0, state.NetWorth.NetWorth)
	require.Len(t, state.Positions, 1)
	assert.Equal(t, int64(1), state.Positions[0].StockID)
}
