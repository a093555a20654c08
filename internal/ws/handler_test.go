package ws

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridironlink/backend/internal/game"
)

// attach registers a client on the hub directly, without a live connection or
// pumps, so Emit and CloseChannel can be exercised in isolation.
func attach(h *Hub, channelID string, buffer int) *Client {
	c := &Client{hub: h, channelID: channelID, send: make(chan []byte, buffer)}
	h.mu.Lock()
	h.clients[channelID] = c
	h.mu.Unlock()
	return c
}

func frameType(t *testing.T, raw []byte) string {
	t.Helper()
	var f struct {
		Type string `json:"type"`
	}
	require.NoError(t, json.Unmarshal(raw, &f))
	return f.Type
}

func TestEmitPreservesOrder(t *testing.T) {
	h := NewHub()
	c := attach(h, "ch_1", 4)

	h.Emit("ch_1", game.Frame{Type: "opponentReady"})
	h.Emit("ch_1", game.Frame{Type: "gameEnd"})

	assert.Equal(t, "opponentReady", frameType(t, <-c.send))
	assert.Equal(t, "gameEnd", frameType(t, <-c.send))
}

func TestEmitToUnknownChannelIsDropped(t *testing.T) {
	h := NewHub()
	h.Emit("ch_missing", game.Frame{Type: "gameEnd"}) // must not panic
}

func TestCloseChannelFlushesQueuedFrames(t *testing.T) {
	h := NewHub()
	c := attach(h, "ch_1", 4)

	h.Emit("ch_1", game.Frame{Type: "gameEnd"})
	h.CloseChannel("ch_1")

	// The queued terminal frame drains before the channel reports closed
	raw, ok := <-c.send
	require.True(t, ok)
	assert.Equal(t, "gameEnd", frameType(t, raw))
	_, ok = <-c.send
	assert.False(t, ok)

	// Emit after close is a no-op
	h.Emit("ch_1", game.Frame{Type: "opponentReady"})
}

func TestEmitFullBufferDropsNonTerminal(t *testing.T) {
	h := NewHub()
	c := attach(h, "ch_1", 1)

	h.Emit("ch_1", game.Frame{Type: "opponentReady"})
	h.Emit("ch_1", game.Frame{Type: "invalidPath"}) // buffer full, dropped

	h.mu.RLock()
	_, exists := h.clients["ch_1"]
	h.mu.RUnlock()
	assert.True(t, exists, "a dropped non-terminal frame must not close the channel")
	assert.Equal(t, "opponentReady", frameType(t, <-c.send))
}

// A terminal frame that cannot be queued forces the channel closed so the
// client still observes the session ending.
func TestEmitFullBufferTerminalForcesClose(t *testing.T) {
	h := NewHub()
	c := attach(h, "ch_1", 1)

	h.Emit("ch_1", game.Frame{Type: "opponentReady"})
	h.Emit("ch_1", game.Frame{Type: "gameEnd"}) // buffer full

	h.mu.RLock()
	_, exists := h.clients["ch_1"]
	h.mu.RUnlock()
	assert.False(t, exists)

	raw, ok := <-c.send
	require.True(t, ok)
	assert.Equal(t, "opponentReady", frameType(t, raw))
	_, ok = <-c.send
	assert.False(t, ok, "send channel must be closed after the forced close")
}
