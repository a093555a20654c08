package ws

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"

	"github.com/gridironlink/backend/internal/config"
	"github.com/gridironlink/backend/internal/game"
)

// wsMessage is the inbound wire envelope.
type wsMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type difficultyData struct {
	Difficulty string `json:"difficulty"`
}

type sessionData struct {
	SessionID string `json:"sessionId"`
}

type submitPathData struct {
	SessionID string   `json:"sessionId"`
	Path      []string `json:"path"`
}

// HandleWebSocket authenticates the handshake and attaches a new channel to
// the hub. The bearer token's subject becomes the channel's user identity.
func HandleWebSocket(hub *Hub, engine *game.Engine, matchmaker *game.Matchmaker, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := c.Query("token")
		if tokenStr == "" {
			if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
				tokenStr = strings.TrimPrefix(auth, "Bearer ")
			}
		}
		if tokenStr == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		userID, err := verifyToken(tokenStr, cfg.JWTSecret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("[WS] Upgrade error: %v", err)
			return
		}

		client := &Client{
			hub:        hub,
			conn:       conn,
			channelID:  generateChannelID(),
			userID:     userID,
			engine:     engine,
			matchmaker: matchmaker,
			send:       make(chan []byte, 256),
		}

		hub.register <- client

		go client.writePump()
		go client.readPump()
	}
}

// verifyToken validates an HS256 bearer token and returns its subject.
func verifyToken(tokenStr, secret string) (string, error) {
	parsed, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		return "", fmt.Errorf("token verification failed: %w", err)
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("unexpected claims type")
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", fmt.Errorf("token has no subject")
	}
	return sub, nil
}

// handleMessage maps one inbound frame to a matchmaker or engine operation.
// Malformed or out-of-place frames are dropped; the engine ignores events that
// are disallowed in the session's current state.
func (c *Client) handleMessage(msg wsMessage) {
	switch msg.Type {
	case "joinQueue":
		var data difficultyData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return
		}
		difficulty, err := game.ParseDifficulty(data.Difficulty)
		if err != nil {
			log.Printf("[WS] Channel %s: %v", c.channelID, err)
			return
		}
		if err := c.matchmaker.Enqueue(c.channelID, c.userID, difficulty); err != nil {
			log.Printf("[WS] Channel %s: enqueue rejected: %v", c.channelID, err)
		}

	case "leaveQueue":
		c.matchmaker.Dequeue(c.channelID)

	case "startSinglePlayerGame":
		var data difficultyData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return
		}
		difficulty, err := game.ParseDifficulty(data.Difficulty)
		if err != nil {
			log.Printf("[WS] Channel %s: %v", c.channelID, err)
			return
		}
		if _, err := c.engine.CreateSingleSession(c.channelID, c.userID, difficulty); err != nil {
			log.Printf("[WS] Channel %s: single session rejected: %v", c.channelID, err)
		}

	case "playerReady":
		var data sessionData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return
		}
		c.engine.Ready(c.channelID, data.SessionID)

	case "submitPath":
		var data submitPathData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return
		}
		c.engine.SubmitPath(c.channelID, data.SessionID, data.Path)

	case "giveUp":
		var data sessionData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return
		}
		c.engine.GiveUp(c.channelID, data.SessionID)

	default:
		log.Printf("[WS] Channel %s: unknown message type %q", c.channelID, msg.Type)
	}
}
