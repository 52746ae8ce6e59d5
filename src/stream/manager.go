package stream

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"market-sync/src/interfaces"
	"market-sync/src/logger"
	"market-sync/src/models"
)

// -----------------------------------------------------------------------------
// Connection state machine: Connecting -> Open -> Closed -> (timer or resume)
// -> Connecting. No terminal state; the manager runs for the lifetime of a
// valid session.
// -----------------------------------------------------------------------------

type ConnectionState int32

const (
	StateConnecting ConnectionState = iota
	StateOpen
	StateClosed
)

func (s ConnectionState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------

type StateHandler func(ConnectionState)
type SnapshotHandler func(*models.MMarketSnapshot)

// -----------------------------------------------------------------------------
// ConnectionManager owns the single push channel for the active session.
// Token change is its only cancellation signal besides app teardown.
// -----------------------------------------------------------------------------

type ConnectionManager struct {
	Logger     *logger.Logger
	Transport  interfaces.IChannelTransport
	Normalizer *Normalizer

	url            string
	reconnectDelay time.Duration

	onState    StateHandler
	onSnapshot SnapshotHandler

	state      atomic.Int32
	retryCount atomic.Int64

	mu      sync.Mutex
	token   string
	cancel  context.CancelFunc
	channel interfaces.IChannel
	done    chan struct{}
	resume  chan struct{}
}

// -----------------------------------------------------------------------------

func NewConnectionManager(transport interfaces.IChannelTransport, normalizer *Normalizer, url string, reconnectDelay time.Duration, log *logger.Logger) *ConnectionManager {
	m := &ConnectionManager{
		Logger:         log,
		Transport:      transport,
		Normalizer:     normalizer,
		url:            url,
		reconnectDelay: reconnectDelay,
		resume:         make(chan struct{}, 1),
	}
	m.state.Store(int32(StateConnecting))
	return m
}

// -----------------------------------------------------------------------------

// SetHandlers registers the observers. Must be called before the first token
// is installed.
func (m *ConnectionManager) SetHandlers(onState StateHandler, onSnapshot SnapshotHandler) {
	m.onState = onState
	m.onSnapshot = onSnapshot
}

// -----------------------------------------------------------------------------

// State returns the current connection state.
func (m *ConnectionManager) State() ConnectionState {
	return ConnectionState(m.state.Load())
}

// RetryCount reports how many reconnect attempts have been made.
func (m *ConnectionManager) RetryCount() int64 {
	return m.retryCount.Load()
}

// -----------------------------------------------------------------------------

// SetToken reacts to a session-token change. Any existing channel is closed
// before a new one is opened; an empty token just closes.
func (m *ConnectionManager) SetToken(token string) {
	m.mu.Lock()
	if m.token == token {
		m.mu.Unlock()
		return
	}
	m.token = token
	m.stopLocked()
	// stopLocked drops the lock while draining the old session loop, so
	// another transition may have superseded this one in the meantime.
	if token == "" || m.token != token {
		m.mu.Unlock()
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	m.cancel = cancel
	m.done = done
	m.mu.Unlock()

	go m.runSession(ctx, done)
}

// -----------------------------------------------------------------------------

// Close releases the channel and stops reconnecting. Idempotent.
func (m *ConnectionManager) Close() {
	m.mu.Lock()
	m.token = ""
	m.stopLocked()
	m.mu.Unlock()
}

// stopLocked cancels the running session loop and waits for it to exit, so no
// dangling channel survives a token change.
func (m *ConnectionManager) stopLocked() {
	if m.cancel == nil {
		return
	}
	m.cancel()
	if m.channel != nil {
		m.channel.Close()
		m.channel = nil
	}
	done := m.done
	m.cancel = nil
	m.done = nil

	m.mu.Unlock()
	<-done
	m.mu.Lock()
}

// -----------------------------------------------------------------------------

// Resume is the foreground signal (mobile app returning to front). If the
// channel is not open it triggers an immediate reconnect attempt, bypassing
// the fixed delay.
func (m *ConnectionManager) Resume() {
	if m.State() == StateOpen {
		return
	}
	select {
	case m.resume <- struct{}{}:
	default:
	}
}

// -----------------------------------------------------------------------------

func (m *ConnectionManager) setState(s ConnectionState) {
	m.state.Store(int32(s))
	if m.onState != nil {
		m.onState(s)
	}
}

// -----------------------------------------------------------------------------

// runSession is the per-token connection loop. Each pass makes exactly one
// connection attempt; after a closure it waits the fixed delay (reference
// 3000 ms, no backoff, no heartbeat) unless a resume signal arrives first.
func (m *ConnectionManager) runSession(ctx context.Context, done chan struct{}) {
	defer close(done)

	for {
		m.setState(StateConnecting)

		channel, err := m.Transport.OpenChannel(ctx, m.url)
		if err != nil {
			// Malformed URLs and transport errors follow the same retry
			// policy as a normal disconnect.
			m.Logger.Warning("Channel open failed: %v", err)
			m.setState(StateClosed)
		} else {
			m.mu.Lock()
			if ctx.Err() != nil {
				// Cancelled between dial and registration; nobody else
				// will ever close this channel.
				m.mu.Unlock()
				channel.Close()
				return
			}
			m.channel = channel
			m.mu.Unlock()

			m.Logger.Info("Connected to market stream")
			m.setState(StateOpen)

			m.readFrames(channel)

			channel.Close()
			m.mu.Lock()
			// A successor session may already own m.channel and the state.
			if m.channel == channel {
				m.channel = nil
			}
			m.mu.Unlock()
			if ctx.Err() != nil {
				return
			}

			m.Logger.Warning("Market stream disconnected. Reconnecting in %v...", m.reconnectDelay)
			m.setState(StateClosed)
		}

		if ctx.Err() != nil {
			return
		}

		timer := time.NewTimer(m.reconnectDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		case <-m.resume:
			timer.Stop()
			m.Logger.Info("Foreground resume, reconnecting immediately")
		}
		m.retryCount.Add(1)
	}
}

// -----------------------------------------------------------------------------

// readFrames consumes the channel until it dies. Frames are processed in
// arrival order; invalid ones are dropped and the previous snapshot stays
// untouched.
func (m *ConnectionManager) readFrames(channel interfaces.IChannel) {
	for {
		raw, err := channel.ReadFrame()
		if err != nil {
			return
		}

		snapshot, err := m.Normalizer.Normalize(raw, time.Now())
		if err != nil {
			// Parse failures and non-tick frames are diagnostics only.
			continue
		}
		if m.onSnapshot != nil {
			m.onSnapshot(snapshot)
		}
	}
}
