package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/gridironlink/backend/internal/models"
)

// SearchPlayers returns players whose name matches the query prefix. Used by
// the client's path-builder autocomplete.
func SearchPlayers(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := strings.TrimSpace(c.Query("q"))
		if len(q) < 2 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "query must be at least 2 characters"})
			return
		}

		var players []models.Player
		err := db.Select(&players, `
			SELECT id, name, position, college, draft_year, teams, first_season, last_season
			FROM players
			WHERE name ILIKE $1
			ORDER BY name
			LIMIT 20
		`, q+"%")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"players": players})
	}
}
