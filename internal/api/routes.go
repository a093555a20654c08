package api

import (
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/gridironlink/backend/internal/api/handlers"
	"github.com/gridironlink/backend/internal/config"
	"github.com/gridironlink/backend/internal/game"
	"github.com/gridironlink/backend/internal/ws"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, db *sqlx.DB, hub *ws.Hub, engine *game.Engine, matchmaker *game.Matchmaker, cfg *config.Config) {
	// CORS middleware for the web client
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// API v1 group
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck(engine, matchmaker))

		// Real-time game channel
		v1.GET("/game/ws", ws.HandleWebSocket(hub, engine, matchmaker, cfg))

		// Player lookup for the client's picker UI
		v1.GET("/players/search", handlers.SearchPlayers(db))

		// Persistent per-user record
		v1.GET("/stats/:userID", handlers.GetUserStats(db))
	}
}
