package server

import (
	"errors"
	"net/http"

	"market-sync/src/helpers"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------

// writeUpstreamError maps an upstream failure onto the local surface.
// Auth rejection stays a 401 so shells can route to their login screen;
// everything else is a bad gateway with the discrete message attached.
func (s *SyncServer) writeUpstreamError(c *gin.Context, err error) {
	if errors.Is(err, helpers.ErrUnauthorized) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
		return
	}

	var actionErr *helpers.ActionError
	if errors.As(err, &actionErr) {
		c.JSON(http.StatusBadGateway, gin.H{"error": actionErr.Message})
		return
	}

	s.Logger.Warning("Upstream call failed: %v", err)
	c.JSON(http.StatusBadGateway, gin.H{"error": "upstream unavailable"})
}
