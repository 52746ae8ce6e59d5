package bank

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"market-sync/src/client"
	"market-sync/src/logger"
	"market-sync/src/models"
	"market-sync/src/network"
	"market-sync/src/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

type bankStub struct {
	mu     sync.Mutex
	status int
	calls  int
	body   string
}

func (b *bankStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.calls++
	status, body := b.status, b.body
	b.mu.Unlock()

	if status != http.StatusOK {
		w.WriteHeader(status)
		return
	}
	w.Write([]byte(body))
}

func (b *bankStub) callCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

func newTestMonitor(t *testing.T, stub *bankStub) *FreezeMonitor {
	t.Helper()

	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)

	cfg := &models.MConfig{
		Upstream: models.MUpstreamConfig{BaseURL: srv.URL},
		Network:  models.MNetworkConfig{RequestTimeout: 5, MaxRetries: 0},
	}
	log := logger.NewLogger("ERROR", "test")
	netMgr := network.NewAuthNetworkManager(cfg, log, func() string { return "tok" })
	return NewFreezeMonitor(client.NewAPIClient(netMgr, log), log)
}

func frozenUser() *models.MUser {
	return &models.MUser{ID: 1, Username: "alice", IsTradingFrozen: true, FrozenReason: "debt"}
}

func thawedUser() *models.MUser {
	return &models.MUser{ID: 1, Username: "alice"}
}

// -----------------------------------------------------------------------------

func TestMonitorFetchesWhileFrozen(t *testing.T) {
	stub := &bankStub{status: http.StatusOK, body: `{"is_frozen":true,"total_debt":500,"frozen_reason":"debt"}`}
	m := newTestMonitor(t, stub)

	m.OnSessionEvent(session.Event{Kind: session.EventUserUpdated, User: frozenUser()})
	assert.True(t, m.Active())
	require.NotNil(t, m.Status())
	assert.Equal(t, 500.0, m.Status().TotalDebt)
	assert.Equal(t, 1, stub.callCount())

	// Each refresh cycle while frozen polls again
	m.OnSessionEvent(session.Event{Kind: session.EventUserUpdated, User: frozenUser()})
	assert.Equal(t, 2, stub.callCount())
}

func TestMonitorIdleWhileNotFrozen(t *testing.T) {
	stub := &bankStub{status: http.StatusOK, body: `{}`}
	m := newTestMonitor(t, stub)

	m.OnSessionEvent(session.Event{Kind: session.EventUserUpdated, User: thawedUser()})
	assert.False(t, m.Active())
	assert.Nil(t, m.Status())
	assert.Equal(t, 0, stub.callCount())
}

func TestMonitorStopsWhenFreezeClears(t *testing.T) {
	stub := &bankStub{status: http.StatusOK, body: `{"is_frozen":true,"total_debt":500}`}
	m := newTestMonitor(t, stub)

	var pushed []*models.MDebtStatus
	m.SetHandler(func(s *models.MDebtStatus) { pushed = append(pushed, s) })

	m.OnSessionEvent(session.Event{Kind: session.EventUserUpdated, User: frozenUser()})
	require.True(t, m.Active())

	m.OnSessionEvent(session.Event{Kind: session.EventUserUpdated, User: thawedUser()})
	assert.False(t, m.Active())
	assert.Nil(t, m.Status())

	// Freeze detail followed by the nil push on clear
	require.Len(t, pushed, 2)
	assert.NotNil(t, pushed[0])
	assert.Nil(t, pushed[1])

	// No further polling once clear
	m.OnSessionEvent(session.Event{Kind: session.EventUserUpdated, User: thawedUser()})
	assert.Equal(t, 1, stub.callCount())
}

func TestMonitorSwallowsFetchErrors(t *testing.T) {
	stub := &bankStub{status: http.StatusOK, body: `{"is_frozen":true,"total_debt":500}`}
	m := newTestMonitor(t, stub)

	m.OnSessionEvent(session.Event{Kind: session.EventUserUpdated, User: frozenUser()})
	require.NotNil(t, m.Status())

	// Upstream starts failing; the stale detail must survive
	stub.mu.Lock()
	stub.status = http.StatusInternalServerError
	stub.mu.Unlock()

	m.OnSessionEvent(session.Event{Kind: session.EventUserUpdated, User: frozenUser()})
	assert.True(t, m.Active())
	require.NotNil(t, m.Status())
	assert.Equal(t, 500.0, m.Status().TotalDebt)
}

func TestMonitorResetsOnTokenChange(t *testing.T) {
	stub := &bankStub{status: http.StatusOK, body: `{"is_frozen":true,"total_debt":500}`}
	m := newTestMonitor(t, stub)

	m.OnSessionEvent(session.Event{Kind: session.EventUserUpdated, User: frozenUser()})
	require.True(t, m.Active())

	m.OnSessionEvent(session.Event{Kind: session.EventTokenChanged, Token: ""})
	assert.False(t, m.Active())
	assert.Nil(t, m.Status())
}
