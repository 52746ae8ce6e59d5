package main

import (
	"net/http"
	"strings"

	"market-sync/src/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// REST fixtures. One hardcoded account, token issued by /api/token; every
// authed route accepts that token and nothing else so 401 handling can be
// exercised by hand.
// -----------------------------------------------------------------------------

const (
	stubUsername = "demo"
	stubPassword = "demo"
	stubToken    = "stub-token-1"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func registerRoutes(engine *gin.Engine, m *market, log *logger.Logger) {
	engine.POST("/api/token", func(c *gin.Context) {
		username := c.PostForm("username")
		password := c.PostForm("hashed_password")
		if username != stubUsername || password != stubPassword {
			c.JSON(http.StatusUnauthorized, gin.H{"detail": "Incorrect username or password"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"access_token": stubToken, "token_type": "bearer"})
	})

	engine.POST("/api/register", func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"status": "ok"})
	})

	authed := engine.Group("/api", requireToken(log))
	{
		authed.GET("/users/me", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"id":                1,
				"username":          stubUsername,
				"nickname":          "Demo Trader",
				"balance":           1000.0,
				"karma_score":       50.0,
				"is_trading_frozen": false,
			})
		})

		authed.GET("/portfolio", func(c *gin.Context) {
			c.JSON(http.StatusOK, []gin.H{
				{"stock_id": 1, "quantity": 10.0, "avg_cost": 100.0, "is_short": false},
				{"stock_id": 3, "quantity": 5.0, "avg_cost": 50.0, "is_short": true},
			})
		})

		authed.GET("/bank/status", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"is_frozen":  false,
				"total_debt": 0.0,
				"karma":      50.0,
			})
		})

		authed.GET("/leaderboard", func(c *gin.Context) {
			stocks := m.snapshot()
			top := 0.0
			if len(stocks) > 0 {
				top = stocks[0].Price * 100
			}
			c.JSON(http.StatusOK, []gin.H{
				{"username": "whale", "balance": 50000.0, "net_worth": 50000.0 + top},
				{"username": stubUsername, "balance": 1000.0, "net_worth": 2000.0},
			})
		})

		authed.POST("/bonus/claim", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "Bonus claimed", "amount": 100.0, "new_balance": 1100.0})
		})

		authed.GET("/friends/pending", func(c *gin.Context) {
			c.JSON(http.StatusOK, []gin.H{})
		})
		authed.GET("/friends/search", func(c *gin.Context) {
			c.JSON(http.StatusOK, []gin.H{})
		})
		authed.GET("/friends/leaderboard", func(c *gin.Context) {
			c.JSON(http.StatusOK, []gin.H{})
		})
	}

	engine.GET("/ws", func(c *gin.Context) {
		serveWS(c, m, log)
	})
}

// -----------------------------------------------------------------------------

func requireToken(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if token != stubToken {
			log.Debug("Rejected token %q on %s", token, c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Not authenticated"})
			return
		}
		c.Next()
	}
}

// -----------------------------------------------------------------------------

func serveWS(c *gin.Context, m *market, log *logger.Logger) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warning("Upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	frames := m.subscribe()
	defer m.unsubscribe(frames)

	// Immediate frame so clients render without waiting for the next tick
	if err := conn.WriteMessage(websocket.TextMessage, m.tickFrame()); err != nil {
		return
	}

	for frame := range frames {
		if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			return
		}
	}
}
