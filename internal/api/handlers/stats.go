package handlers

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/gridironlink/backend/internal/models"
)

// GetUserStats returns the persistent win/loss and high-score record for a
// user. Users without any finished games get an all-zero record.
func GetUserStats(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Param("userID")

		var stats models.UserStats
		err := db.Get(&stats, `
			SELECT user_id, single_player_high_score, multiplayer_wins, multiplayer_losses
			FROM user_stats
			WHERE user_id = $1
		`, userID)
		if err == sql.ErrNoRows {
			stats = models.UserStats{UserID: userID}
		} else if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "stats lookup failed"})
			return
		}

		c.JSON(http.StatusOK, stats)
	}
}
