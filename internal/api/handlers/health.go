package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gridironlink/backend/internal/game"
)

// HealthCheck reports process liveness and the live session / queue counts.
func HealthCheck(engine *game.Engine, matchmaker *game.Matchmaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":       "ok",
			"sessions":     engine.NumSessions(),
			"queue_length": matchmaker.QueueLength(),
		})
	}
}
