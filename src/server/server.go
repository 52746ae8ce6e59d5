package server

import (
	"fmt"
	"strings"
	"sync"

	"market-sync/src/bank"
	"market-sync/src/client"
	"market-sync/src/derived"
	"market-sync/src/logger"
	"market-sync/src/models"
	"market-sync/src/session"
	"market-sync/src/social"
	"market-sync/src/utils"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// SyncServer
// -----------------------------------------------------------------------------

// Deps are the sync components the local surface reads from and the upstream
// client it proxies account actions through.
type Deps struct {
	Session *session.Store
	API     *client.APIClient
	Engine  *derived.Engine
	History *utils.HistoryKeeper
	Social  *social.Tracker
	Bank    *bank.FreezeMonitor
}

type SyncServer struct {
	Config *models.MConfig
	Logger *logger.Logger
	Deps   Deps
	engine *gin.Engine

	// WebSocket clients
	clients    map[*Client]struct{}
	broadcast  chan *models.MSyncState // Strongly typed and Buffered Queue
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once

	// Local cache
	latestState *models.MSyncState
	stateMutex  sync.RWMutex
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewSyncServer(cfg *models.MConfig, deps Deps, log *logger.Logger) *SyncServer {
	// Set Gin mode
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &SyncServer{
		Config:  cfg,
		Logger:  log,
		Deps:    deps,
		engine:  gin.Default(),
		clients: make(map[*Client]struct{}),
		// Buffered channel absorbs tick bursts without blocking producers
		broadcast:  make(chan *models.MSyncState, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		latestState: &models.MSyncState{
			Type:       "INITIAL",
			Connection: "connecting",
			Overlay:    models.MOverlay{Kind: models.OverlayDefault},
		},
	}

	// Add CORS Middleware
	s.engine.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") || strings.HasPrefix(origin, "http://localhost:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// setup web routes
	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *SyncServer) setupRoutes() {
	// Read-only state surface
	s.engine.GET("/api/health", s.getHealth)
	s.engine.GET("/api/state", s.getState)
	s.engine.GET("/api/networth", s.getNetWorth)
	s.engine.GET("/api/positions", s.getPositions)
	s.engine.GET("/api/overlay", s.getOverlay)
	s.engine.GET("/api/leaderboard", s.getLeaderboard)
	s.engine.GET("/api/debt", s.getDebt)
	s.engine.GET("/api/stocks/:id/history", s.getStockHistory)

	// Session
	s.engine.POST("/api/login", s.postLogin)
	s.engine.POST("/api/register", s.postRegister)
	s.engine.POST("/api/logout", s.postLogout)
	s.engine.GET("/api/me", s.getMe)

	// Account actions proxied upstream
	s.engine.POST("/api/bonus/claim", s.postBonusClaim)
	s.engine.GET("/api/users/search", s.getUserSearch)
	s.engine.GET("/api/users/:id/profile", s.getUserProfile)
	s.engine.GET("/api/friends/requests", s.getFriendRequests)
	s.engine.POST("/api/friends/requests", s.postFriendRequest)
	s.engine.POST("/api/friends/requests/:id/accept", s.postFriendAccept)
	s.engine.POST("/api/friends/requests/:id/reject", s.postFriendReject)
	s.engine.DELETE("/api/friends/:id", s.deleteFriend)
	s.engine.GET("/api/friends/leaderboard", s.getFriendsLeaderboard)

	// WebSocket endpoint
	s.engine.GET("/ws", s.handleWebSocket)
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

func (s *SyncServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	s.Logger.Info("Starting local surface on %s", addr)

	go s.handleWebsockets()

	return s.engine.Run(addr)
}

// -----------------------------------------------------------------------------

// Stop shuts the hub loop down and drops all shell connections. Idempotent.
// The work channels stay open so late producers never panic.
func (s *SyncServer) Stop() error {
	s.stopOnce.Do(func() { close(s.done) })
	return nil
}
