package server

import (
	"net/http"
	"strconv"

	"market-sync/src/derived"
	"market-sync/src/models"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// Read-only state surface
// -----------------------------------------------------------------------------

func (s *SyncServer) getHealth(c *gin.Context) {
	s.stateMutex.RLock()
	connections := len(s.clients)
	connState := s.latestState.Connection
	timestamp := s.latestState.Timestamp
	s.stateMutex.RUnlock()

	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"connections":   connections,
		"upstream":      connState,
		"latest_update": timestamp,
	})
}

// -----------------------------------------------------------------------------

func (s *SyncServer) getState(c *gin.Context) {
	s.stateMutex.RLock()
	defer s.stateMutex.RUnlock()

	c.JSON(http.StatusOK, s.latestState)
}

// -----------------------------------------------------------------------------

func (s *SyncServer) getNetWorth(c *gin.Context) {
	c.JSON(http.StatusOK, s.Deps.Engine.NetWorth())
}

// -----------------------------------------------------------------------------

func (s *SyncServer) getPositions(c *gin.Context) {
	c.JSON(http.StatusOK, s.Deps.Engine.PositionViews())
}

// -----------------------------------------------------------------------------

func (s *SyncServer) getOverlay(c *gin.Context) {
	c.JSON(http.StatusOK, derived.ResolveOverlay(s.Deps.Engine.Snapshot()))
}

// -----------------------------------------------------------------------------

func (s *SyncServer) getLeaderboard(c *gin.Context) {
	c.JSON(http.StatusOK, s.Deps.Social.Leaderboard())
}

// -----------------------------------------------------------------------------

func (s *SyncServer) getDebt(c *gin.Context) {
	status := s.Deps.Bank.Status()
	if status == nil {
		c.JSON(http.StatusOK, gin.H{"is_frozen": false})
		return
	}
	c.JSON(http.StatusOK, status)
}

// -----------------------------------------------------------------------------

func (s *SyncServer) getStockHistory(c *gin.Context) {
	stockID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid stock id"})
		return
	}

	points := 0
	if raw := c.Query("points"); raw != "" {
		points, err = strconv.Atoi(raw)
		if err != nil || points < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid points"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"stock_id": stockID,
		"points":   s.Deps.History.History(stockID, points),
	})
}

// -----------------------------------------------------------------------------
// Session
// -----------------------------------------------------------------------------

type credentialsBody struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Nickname string `json:"nickname"`
}

func (s *SyncServer) postLogin(c *gin.Context) {
	var body credentialsBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password required"})
		return
	}

	result, err := s.Deps.Session.Login(body.Username, body.Password)
	if err != nil {
		s.writeUpstreamError(c, err)
		return
	}
	if result.Status == "unregistered" {
		c.JSON(http.StatusOK, gin.H{"status": "unregistered"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// -----------------------------------------------------------------------------

func (s *SyncServer) postRegister(c *gin.Context) {
	var body credentialsBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password required"})
		return
	}

	if err := s.Deps.API.Register(body.Username, body.Password, body.Nickname); err != nil {
		s.writeUpstreamError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "registered"})
}

// -----------------------------------------------------------------------------

func (s *SyncServer) postLogout(c *gin.Context) {
	s.Deps.Session.Teardown()
	c.JSON(http.StatusOK, gin.H{"status": "logged_out"})
}

// -----------------------------------------------------------------------------

func (s *SyncServer) getMe(c *gin.Context) {
	user := s.Deps.Session.User()
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no active session"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// -----------------------------------------------------------------------------
// Account actions proxied upstream
// -----------------------------------------------------------------------------

func (s *SyncServer) postBonusClaim(c *gin.Context) {
	result, err := s.Deps.API.ClaimDailyBonus()
	if err != nil {
		s.writeUpstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// -----------------------------------------------------------------------------

func (s *SyncServer) getUserSearch(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusOK, []models.MFriend{})
		return
	}

	users, err := s.Deps.API.SearchUsers(query)
	if err != nil {
		s.writeUpstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// -----------------------------------------------------------------------------

func (s *SyncServer) getUserProfile(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	profile, err := s.Deps.API.FetchPublicProfile(userID)
	if err != nil {
		s.writeUpstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// -----------------------------------------------------------------------------

func (s *SyncServer) getFriendRequests(c *gin.Context) {
	requests, err := s.Deps.API.PendingFriendRequests()
	if err != nil {
		s.writeUpstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, requests)
}

// -----------------------------------------------------------------------------

type friendRequestBody struct {
	UserID int64 `json:"user_id" binding:"required"`
}

func (s *SyncServer) postFriendRequest(c *gin.Context) {
	var body friendRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id required"})
		return
	}

	if err := s.Deps.API.SendFriendRequest(body.UserID); err != nil {
		s.writeUpstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "sent"})
}

// -----------------------------------------------------------------------------

func (s *SyncServer) postFriendAccept(c *gin.Context) {
	s.resolveFriendRequest(c, s.Deps.API.AcceptFriendRequest, "accepted")
}

func (s *SyncServer) postFriendReject(c *gin.Context) {
	s.resolveFriendRequest(c, s.Deps.API.RejectFriendRequest, "rejected")
}

func (s *SyncServer) resolveFriendRequest(c *gin.Context, action func(int64) error, status string) {
	requestID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}

	if err := action(requestID); err != nil {
		s.writeUpstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}

// -----------------------------------------------------------------------------

func (s *SyncServer) deleteFriend(c *gin.Context) {
	friendID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid friend id"})
		return
	}

	if err := s.Deps.API.RemoveFriend(friendID); err != nil {
		s.writeUpstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}

// -----------------------------------------------------------------------------

func (s *SyncServer) getFriendsLeaderboard(c *gin.Context) {
	friends, err := s.Deps.API.FriendsLeaderboard()
	if err != nil {
		s.writeUpstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, friends)
}
