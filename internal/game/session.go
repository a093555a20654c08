package game

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/gridironlink/backend/internal/graph"
)

// Status is the session lifecycle state.
type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusActive   Status = "active"
	StatusFinished Status = "finished"
)

// Participant binds a transport channel to a user identity for one session.
type Participant struct {
	ChannelID string
	UserID    string
	Ready     bool
}

// Session is one playthrough bound to an endpoint pair. All mutation happens
// under mu; the engine is the single writer.
type Session struct {
	ID         string
	Mode       Mode
	Difficulty Difficulty
	Start      graph.Player
	End        graph.Player

	mu           sync.Mutex
	status       Status
	participants []*Participant
	strikes      int
	createdAt    time.Time
	timer        *time.Timer
	winnerUserID string
}

// generateToken generates a secure random token
func generateToken(length int) string {
	bytes := make([]byte, length)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

func generateSessionID() string {
	return "sess_" + generateToken(8)
}

// participant returns the participant bound to channelID, or nil.
func (s *Session) participant(channelID string) *Participant {
	for _, p := range s.participants {
		if p.ChannelID == channelID {
			return p
		}
	}
	return nil
}

// opponent returns the other participant in a multiplayer session, or nil.
func (s *Session) opponent(channelID string) *Participant {
	for _, p := range s.participants {
		if p.ChannelID != channelID {
			return p
		}
	}
	return nil
}

func (s *Session) allReady() bool {
	for _, p := range s.participants {
		if !p.Ready {
			return false
		}
	}
	return true
}

// cancelTimer stops the scheduled deadline. Safe to call repeatedly and when no
// timer was scheduled.
func (s *Session) cancelTimer() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
