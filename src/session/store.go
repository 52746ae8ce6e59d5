package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"market-sync/src/client"
	"market-sync/src/helpers"
	"market-sync/src/interfaces"
	"market-sync/src/logger"
	"market-sync/src/models"
)

// -----------------------------------------------------------------------------
// Events
// -----------------------------------------------------------------------------

type EventKind int

const (
	// EventTokenChanged fires on login, logout and restore. Token "" means the
	// session is gone; the connection manager treats this as its single
	// authoritative cancellation signal.
	EventTokenChanged EventKind = iota

	// EventUserUpdated fires once per successful profile refresh, including
	// the initial fetch after a token change.
	EventUserUpdated
)

type Event struct {
	Kind  EventKind
	Token string
	User  *models.MUser
}

type Listener func(Event)

// -----------------------------------------------------------------------------
// Store owns the Session: the opaque token plus the authenticated user
// profile. It is the only component that mutates either.
// -----------------------------------------------------------------------------

type Store struct {
	Logger *logger.Logger
	API    *client.APIClient
	Vault  interfaces.ITokenVault

	mu        sync.RWMutex
	token     string
	user      *models.MUser
	listeners []Listener

	refreshInterval time.Duration
	cancelFunc      context.CancelFunc
	isRunning       atomic.Bool
}

// -----------------------------------------------------------------------------

func NewStore(api *client.APIClient, vault interfaces.ITokenVault, refreshInterval time.Duration, log *logger.Logger) *Store {
	return &Store{
		Logger:          log,
		API:             api,
		Vault:           vault,
		refreshInterval: refreshInterval,
	}
}

// -----------------------------------------------------------------------------

// Subscribe registers a listener. Listeners are invoked synchronously in
// registration order; they must not block.
func (s *Store) Subscribe(l Listener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()
}

func (s *Store) notify(ev Event) {
	s.mu.RLock()
	listeners := make([]Listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.RUnlock()

	for _, l := range listeners {
		l(ev)
	}
}

// -----------------------------------------------------------------------------

// Token returns the current session token, or "" when logged out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns the current profile snapshot, or nil before the first fetch.
func (s *Store) User() *models.MUser {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// -----------------------------------------------------------------------------

// RestoreToken loads a persisted token on boot. A missing token is not an
// error; the store just stays logged out.
func (s *Store) RestoreToken() error {
	token, err := s.Vault.Load()
	if err != nil {
		return err
	}
	if token == "" {
		return nil
	}
	s.applyToken(token, false)
	return nil
}

// -----------------------------------------------------------------------------

// Login exchanges credentials for a token and installs it.
func (s *Store) Login(username, password string) (client.LoginResult, error) {
	result, err := s.API.Login(username, password)
	if err != nil {
		return result, err
	}
	if result.Status == "unregistered" {
		return result, nil
	}
	if result.AccessToken == "" {
		return result, fmt.Errorf("login succeeded but no token returned")
	}
	s.applyToken(result.AccessToken, true)
	return result, nil
}

// -----------------------------------------------------------------------------

// SetToken installs a token obtained elsewhere (e.g. a shell that ran its own
// login flow) and persists it.
func (s *Store) SetToken(token string) {
	s.applyToken(token, true)
}

func (s *Store) applyToken(token string, persist bool) {
	if persist {
		if err := s.Vault.Save(token); err != nil {
			s.Logger.Error("Failed to persist token: %v", err)
		}
	}

	s.mu.Lock()
	s.token = token
	s.user = nil
	s.mu.Unlock()

	s.notify(Event{Kind: EventTokenChanged, Token: token})

	// Fetch the profile right away so the UI does not wait a full cycle.
	s.refreshOnce()
}

// -----------------------------------------------------------------------------

// Teardown destroys the session: persisted token, in-memory token and user.
// It is idempotent; the cascade from a rejected request may race a manual
// logout.
func (s *Store) Teardown() {
	s.mu.Lock()
	hadToken := s.token != ""
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	if !hadToken {
		return
	}

	if err := s.Vault.Clear(); err != nil {
		s.Logger.Error("Failed to clear persisted token: %v", err)
	}
	s.Logger.Info("Session torn down")
	s.notify(Event{Kind: EventTokenChanged, Token: ""})
}

// -----------------------------------------------------------------------------
// Refresh loop
// -----------------------------------------------------------------------------

// Start begins the periodic profile refresh.
func (s *Store) Start(parentCtx context.Context, wg *sync.WaitGroup) error {
	if !s.isRunning.CompareAndSwap(false, true) {
		return fmt.Errorf("session store is already running")
	}

	ctx, cancel := context.WithCancel(parentCtx)
	s.cancelFunc = cancel

	wg.Add(1)
	go s.runLoop(ctx, wg)
	s.Logger.Info("Started session refresh loop (every %v)", s.refreshInterval)
	return nil
}

// -----------------------------------------------------------------------------

// Stop terminates the refresh loop.
func (s *Store) Stop() {
	if !s.isRunning.CompareAndSwap(true, false) {
		return
	}
	if s.cancelFunc != nil {
		s.cancelFunc()
	}
}

// -----------------------------------------------------------------------------

func (s *Store) runLoop(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	ticker := time.NewTicker(s.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.refreshOnce()
		}
	}
}

// -----------------------------------------------------------------------------

// refreshOnce fetches /users/me and applies the result. Transient failures
// keep the previous profile; a rejection tears the session down via the
// network layer's hook, so it is not duplicated here.
func (s *Store) refreshOnce() {
	if s.Token() == "" {
		return
	}

	user, err := s.API.FetchMe()
	if err != nil {
		if !errors.Is(err, helpers.ErrUnauthorized) {
			s.Logger.Warning("Profile refresh failed: %v", err)
		}
		return
	}

	s.mu.Lock()
	if s.token == "" {
		// Torn down while the fetch was in flight.
		s.mu.Unlock()
		return
	}
	s.user = &user
	s.mu.Unlock()

	s.notify(Event{Kind: EventUserUpdated, User: &user})
}
