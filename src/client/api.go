package client

import (
	"encoding/json"
	"fmt"

	"market-sync/src/helpers"
	"market-sync/src/interfaces"
	"market-sync/src/logger"
	"market-sync/src/models"
)

// -----------------------------------------------------------------------------
// APIClient wraps the upstream request-response endpoints. The push channel is
// handled separately by the stream package; everything here is plain
// authenticated REST.
// -----------------------------------------------------------------------------

type APIClient struct {
	Network interfaces.INetworkManager
	Logger  *logger.Logger
}

// -----------------------------------------------------------------------------

func NewAPIClient(netMgr interfaces.INetworkManager, log *logger.Logger) *APIClient {
	return &APIClient{
		Network: netMgr,
		Logger:  log,
	}
}

// -----------------------------------------------------------------------------
// Auth
// -----------------------------------------------------------------------------

type LoginResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
	Status      string `json:"status,omitempty"` // "unregistered" when unknown user
}

// Login exchanges credentials for a session token. The endpoint expects
// form encoding, not JSON.
func (c *APIClient) Login(username, password string) (LoginResult, error) {
	var result LoginResult
	body, err := c.Network.PostForm("/api/token", map[string]string{
		"username":        username,
		"hashed_password": password, // server hashes; field name is historical
	})
	if err != nil {
		return result, err
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return result, helpers.NewParseError("login response", err)
	}
	return result, nil
}

// -----------------------------------------------------------------------------

func (c *APIClient) Register(username, password, nickname string) error {
	payload := map[string]string{
		"username":        username,
		"hashed_password": password, // server hashes; field name is historical
	}
	if nickname != "" {
		payload["nickname"] = nickname
	}
	_, err := c.Network.PostJSON("/api/register", payload)
	if err != nil {
		return helpers.NewActionError("register", err)
	}
	return nil
}

// -----------------------------------------------------------------------------
// Session / portfolio
// -----------------------------------------------------------------------------

func (c *APIClient) FetchMe() (models.MUser, error) {
	var user models.MUser
	body, err := c.Network.Get("/api/users/me", nil)
	if err != nil {
		return user, err
	}
	if err := json.Unmarshal(body, &user); err != nil {
		return user, helpers.NewParseError("users/me response", err)
	}
	return user, nil
}

// -----------------------------------------------------------------------------

func (c *APIClient) FetchPortfolio() ([]models.MPosition, error) {
	body, err := c.Network.Get("/api/portfolio", nil)
	if err != nil {
		return nil, err
	}
	var positions []models.MPosition
	if err := json.Unmarshal(body, &positions); err != nil {
		return nil, helpers.NewParseError("portfolio response", err)
	}
	return positions, nil
}

// -----------------------------------------------------------------------------

// FetchDebtStatus loads the frozen-account debt detail. Only the freeze
// monitor calls this; its failures are swallowed by the caller.
func (c *APIClient) FetchDebtStatus() (models.MDebtStatus, error) {
	var status models.MDebtStatus
	body, err := c.Network.Get("/api/bank/status", nil)
	if err != nil {
		return status, err
	}
	if err := json.Unmarshal(body, &status); err != nil {
		return status, helpers.NewParseError("bank status response", err)
	}
	return status, nil
}

// -----------------------------------------------------------------------------
// Leaderboard / bonus
// -----------------------------------------------------------------------------

func (c *APIClient) FetchLeaderboard() ([]models.MLeaderboardEntry, error) {
	body, err := c.Network.Get("/api/leaderboard", nil)
	if err != nil {
		return nil, err
	}
	var entries []models.MLeaderboardEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, helpers.NewParseError("leaderboard response", err)
	}
	return entries, nil
}

// -----------------------------------------------------------------------------

func (c *APIClient) ClaimDailyBonus() (models.MBonusResult, error) {
	var result models.MBonusResult
	body, err := c.Network.PostJSON("/api/bonus/claim", nil)
	if err != nil {
		return result, helpers.NewActionError("claim bonus", err)
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return result, helpers.NewParseError("bonus response", err)
	}
	return result, nil
}

// -----------------------------------------------------------------------------
// Friends
// -----------------------------------------------------------------------------

func (c *APIClient) SearchUsers(query string) ([]models.MFriend, error) {
	body, err := c.Network.Get("/api/friends/search", map[string]string{"q": query})
	if err != nil {
		return nil, err
	}
	var users []models.MFriend
	if err := json.Unmarshal(body, &users); err != nil {
		return nil, helpers.NewParseError("friend search response", err)
	}
	return users, nil
}

// -----------------------------------------------------------------------------

func (c *APIClient) PendingFriendRequests() ([]models.MPendingRequest, error) {
	body, err := c.Network.Get("/api/friends/pending", nil)
	if err != nil {
		return nil, err
	}
	var pending []models.MPendingRequest
	if err := json.Unmarshal(body, &pending); err != nil {
		return nil, helpers.NewParseError("pending requests response", err)
	}
	return pending, nil
}

// -----------------------------------------------------------------------------

func (c *APIClient) SendFriendRequest(userID int64) error {
	_, err := c.Network.PostJSON(fmt.Sprintf("/api/friends/request/%d", userID), nil)
	if err != nil {
		return helpers.NewActionError("send friend request", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (c *APIClient) AcceptFriendRequest(requestID int64) error {
	_, err := c.Network.PostJSON(fmt.Sprintf("/api/friends/accept/%d", requestID), nil)
	if err != nil {
		return helpers.NewActionError("accept friend request", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (c *APIClient) RejectFriendRequest(requestID int64) error {
	_, err := c.Network.PostJSON(fmt.Sprintf("/api/friends/reject/%d", requestID), nil)
	if err != nil {
		return helpers.NewActionError("reject friend request", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (c *APIClient) RemoveFriend(friendID int64) error {
	_, err := c.Network.Delete(fmt.Sprintf("/api/friends/%d", friendID))
	if err != nil {
		return helpers.NewActionError("remove friend", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (c *APIClient) FriendsLeaderboard() ([]models.MFriend, error) {
	body, err := c.Network.Get("/api/friends/leaderboard", nil)
	if err != nil {
		return nil, err
	}
	var friends []models.MFriend
	if err := json.Unmarshal(body, &friends); err != nil {
		return nil, helpers.NewParseError("friends leaderboard response", err)
	}
	return friends, nil
}

// -----------------------------------------------------------------------------
// Public profiles
// -----------------------------------------------------------------------------

func (c *APIClient) FetchPublicProfile(userID int64) (models.MPublicProfile, error) {
	var profile models.MPublicProfile
	body, err := c.Network.Get(fmt.Sprintf("/api/users/%d/full_profile", userID), nil)
	if err != nil {
		return profile, err
	}
	if err := json.Unmarshal(body, &profile); err != nil {
		return profile, helpers.NewParseError("public profile response", err)
	}
	return profile, nil
}
