package coordinator

import (
	"context"
	"sync"
	"time"

	"market-sync/src/bank"
	"market-sync/src/derived"
	"market-sync/src/interfaces"
	"market-sync/src/logger"
	"market-sync/src/models"
	"market-sync/src/portfolio"
	"market-sync/src/session"
	"market-sync/src/social"
	"market-sync/src/stream"
	"market-sync/src/utils"
)

// -----------------------------------------------------------------------------
// Coordinator owns the event flow between the session, the push channel, the
// derived-state engine and the local surface. Components never talk to each
// other directly; every edge runs through here.
// -----------------------------------------------------------------------------

type Coordinator struct {
	Logger *logger.Logger

	Session   *session.Store
	Conn      *stream.ConnectionManager
	Engine    *derived.Engine
	History   *utils.HistoryKeeper
	Social    *social.Tracker
	Bank      *bank.FreezeMonitor
	Portfolio *portfolio.Tracker
	Exchanger interfaces.IDataExchanger
}

// -----------------------------------------------------------------------------

func NewCoordinator(
	sess *session.Store,
	conn *stream.ConnectionManager,
	engine *derived.Engine,
	history *utils.HistoryKeeper,
	socialTracker *social.Tracker,
	freezeMonitor *bank.FreezeMonitor,
	portfolioTracker *portfolio.Tracker,
	exchanger interfaces.IDataExchanger,
	log *logger.Logger,
) *Coordinator {
	return &Coordinator{
		Logger:    log,
		Session:   sess,
		Conn:      conn,
		Engine:    engine,
		History:   history,
		Social:    socialTracker,
		Bank:      freezeMonitor,
		Portfolio: portfolioTracker,
		Exchanger: exchanger,
	}
}

// -----------------------------------------------------------------------------

// Start wires the observers and launches the background loops. The push
// channel itself only opens once a token is installed (restore or login).
func (c *Coordinator) Start(ctx context.Context, wg *sync.WaitGroup) error {
	c.Conn.SetHandlers(c.onConnectionState, c.onSnapshot)
	c.Social.SetHandler(c.onLeaderboard)
	c.Bank.SetHandler(c.onDebt)

	// Trackers subscribe first so their engine updates land before the
	// publish triggered by the same event.
	c.Session.Subscribe(c.Portfolio.OnSessionEvent)
	c.Session.Subscribe(c.Bank.OnSessionEvent)
	c.Session.Subscribe(c.onSessionEvent)

	if err := c.Session.Start(ctx, wg); err != nil {
		return err
	}
	if err := c.Social.Start(ctx, wg); err != nil {
		return err
	}

	// Seed the surface cache so state reads are meaningful before the first
	// broadcast lands.
	c.Exchanger.UpdateState(c.composeState())

	// Token restore happens after subscription so the channel open rides the
	// same event path as a fresh login.
	if err := c.Session.RestoreToken(); err != nil {
		c.Logger.Warning("Token restore failed: %v", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

// Stop tears the pipeline down in dependency order.
func (c *Coordinator) Stop() {
	c.Conn.Close()
	c.Social.Stop()
	c.Session.Stop()
}

// -----------------------------------------------------------------------------
// Session edge
// -----------------------------------------------------------------------------

// onSessionEvent reacts to session changes. A token change is the only signal
// that closes and reopens the push channel; profile refreshes republish so
// balance moves reach the shells without waiting for a tick.
func (c *Coordinator) onSessionEvent(ev session.Event) {
	switch ev.Kind {
	case session.EventUserUpdated:
		c.publish()

	case session.EventTokenChanged:
		if ev.Token == "" {
			c.Logger.Info("Session torn down, closing market stream")
			c.Conn.Close()
			c.publish()
			return
		}
		c.Conn.SetToken(ev.Token)
	}
}

// -----------------------------------------------------------------------------
// Stream edge
// -----------------------------------------------------------------------------

func (c *Coordinator) onConnectionState(state stream.ConnectionState) {
	c.Logger.Debug("Market stream state: %s", state)
	c.publish()
}

func (c *Coordinator) onSnapshot(snapshot *models.MMarketSnapshot) {
	c.Engine.SetSnapshot(snapshot)
	c.History.Record(snapshot)
	c.publish()
}

// -----------------------------------------------------------------------------
// Secondary poll edges
// -----------------------------------------------------------------------------

func (c *Coordinator) onLeaderboard([]models.MLeaderboardEntry) {
	c.publish()
}

func (c *Coordinator) onDebt(*models.MDebtStatus) {
	c.publish()
}

// -----------------------------------------------------------------------------

// Resume forwards the foreground signal to the connection manager.
func (c *Coordinator) Resume() {
	c.Conn.Resume()
}

// -----------------------------------------------------------------------------

func (c *Coordinator) composeState() *models.MSyncState {
	snapshot := c.Engine.Snapshot()

	return &models.MSyncState{
		Connection:  c.Conn.State().String(),
		Snapshot:    snapshot,
		NetWorth:    c.Engine.NetWorth(),
		Positions:   c.Engine.PositionViews(),
		Debt:        c.Bank.Status(),
		Leaderboard: c.Social.Leaderboard(),
		Overlay:     derived.ResolveOverlay(snapshot),
		Timestamp:   time.Now().Unix(),
	}
}

// publish composes the full state and hands it to the exchanger.
func (c *Coordinator) publish() {
	c.Exchanger.Broadcast(c.composeState())
}
