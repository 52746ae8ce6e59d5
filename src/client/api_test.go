package client

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"market-sync/src/helpers"
	"market-sync/src/logger"
	"market-sync/src/models"
	"market-sync/src/network"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.Handler) (*APIClient, *network.AuthNetworkManager) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &models.MConfig{
		Upstream: models.MUpstreamConfig{BaseURL: srv.URL},
		Network:  models.MNetworkConfig{RequestTimeout: 5, MaxRetries: 0},
	}

	log := logger.NewLogger("ERROR", "test")
	netMgr := network.NewAuthNetworkManager(cfg, log, func() string { return "tok-123" })
	return NewAPIClient(netMgr, log), netMgr
}

// -----------------------------------------------------------------------------

func TestLoginPostsForm(t *testing.T) {
	var gotContentType, gotUser, gotPass string

	api, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/token", r.URL.Path)
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, r.ParseForm())
		gotUser = r.PostFormValue("username")
		gotPass = r.PostFormValue("hashed_password")
		w.Write([]byte(`{"access_token":"abc","token_type":"bearer"}`))
	}))

	result, err := api.Login("alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, "abc", result.AccessToken)
	assert.Equal(t, "application/x-www-form-urlencoded", gotContentType)
	assert.Equal(t, "alice", gotUser)
	assert.Equal(t, "secret", gotPass)
}

func TestLoginUnregisteredStatus(t *testing.T) {
	api, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"unregistered"}`))
	}))

	result, err := api.Login("nobody", "x")
	require.NoError(t, err)
	assert.Equal(t, "unregistered", result.Status)
	assert.Empty(t, result.AccessToken)
}

// -----------------------------------------------------------------------------

func TestFetchMeSendsBearerToken(t *testing.T) {
	api, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		w.Write([]byte(`{"id":1,"username":"alice","balance":1000,"is_trading_frozen":true,"frozen_reason":"margin call"}`))
	}))

	user, err := api.FetchMe()
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, 1000.0, user.Balance)
	assert.True(t, user.IsTradingFrozen)
	assert.Equal(t, "margin call", user.FrozenReason)
}

func TestUnauthorizedTriggersHook(t *testing.T) {
	api, netMgr := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	hookCalls := 0
	netMgr.SetUnauthorizedHook(func() { hookCalls++ })

	_, err := api.FetchMe()
	assert.ErrorIs(t, err, helpers.ErrUnauthorized)
	assert.Equal(t, 1, hookCalls)
}

func TestFetchMeParseError(t *testing.T) {
	api, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))

	_, err := api.FetchMe()
	var parseErr *helpers.ParseError
	assert.ErrorAs(t, err, &parseErr)
}

// -----------------------------------------------------------------------------

func TestFetchPortfolio(t *testing.T) {
	api, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/portfolio", r.URL.Path)
		w.Write([]byte(`[{"stock_id":1,"quantity":10,"avg_cost":40,"is_short":false},{"stock_id":2,"quantity":3,"avg_cost":220,"is_short":true}]`))
	}))

	positions, err := api.FetchPortfolio()
	require.NoError(t, err)
	require.Len(t, positions, 2)
	assert.True(t, positions[1].IsShort)
}

func TestFetchDebtStatus(t *testing.T) {
	api, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/bank/status", r.URL.Path)
		w.Write([]byte(`{"is_frozen":true,"frozen_reason":"debt","total_debt":420.5}`))
	}))

	status, err := api.FetchDebtStatus()
	require.NoError(t, err)
	assert.True(t, status.IsFrozen)
	assert.Equal(t, 420.5, status.TotalDebt)
}

// -----------------------------------------------------------------------------

func TestClaimDailyBonusWrapsActionError(t *testing.T) {
	api, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"already claimed"}`, http.StatusBadRequest)
	}))

	_, err := api.ClaimDailyBonus()
	var actionErr *helpers.ActionError
	require.ErrorAs(t, err, &actionErr)
}

func TestSearchUsersQueryParam(t *testing.T) {
	api, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "bob", r.URL.Query().Get("q"))
		w.Write([]byte(`[{"user_id":2,"username":"bob"}]`))
	}))

	users, err := api.SearchUsers("bob")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "bob", users[0].Username)
}

func TestRemoveFriendUsesDelete(t *testing.T) {
	api, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/api/friends/7", r.URL.Path)
		w.Write([]byte(`{}`))
	}))

	require.NoError(t, api.RemoveFriend(7))
}
