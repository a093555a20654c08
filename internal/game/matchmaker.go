package game

import (
	"errors"
	"log"
	"sync"
	"time"
)

// ErrAlreadyQueued is returned when a channel enqueues twice.
var ErrAlreadyQueued = errors.New("game: channel already in queue")

type queueEntry struct {
	ChannelID  string
	UserID     string
	Difficulty Difficulty
	EnqueuedAt time.Time
}

// Matchmaker holds the wait queue and pairs the two oldest entries. The first
// entry's declared difficulty decides the session parameters; fairness for the
// head of the queue outranks strict difficulty agreement.
type Matchmaker struct {
	engine  *Engine
	picker  *Picker
	emitter Emitter

	mu        sync.Mutex
	entries   []queueEntry
	byChannel map[string]bool
}

// NewMatchmaker creates an empty queue bound to the session engine.
func NewMatchmaker(engine *Engine, picker *Picker, emitter Emitter) *Matchmaker {
	return &Matchmaker{
		engine:    engine,
		picker:    picker,
		emitter:   emitter,
		byChannel: make(map[string]bool),
	}
}

// Enqueue appends a channel to the queue and immediately attempts a match.
// A channel may hold at most one entry.
func (m *Matchmaker) Enqueue(channelID, userID string, difficulty Difficulty) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.byChannel[channelID] {
		return ErrAlreadyQueued
	}
	m.entries = append(m.entries, queueEntry{
		ChannelID:  channelID,
		UserID:     userID,
		Difficulty: difficulty,
		EnqueuedAt: time.Now(),
	})
	m.byChannel[channelID] = true
	log.Printf("[MATCHMAKER] %s queued (%s), queue length %d", userID, difficulty, len(m.entries))

	m.tryMatch()
	return nil
}

// Dequeue removes a channel's entry if present. Enqueue followed by Dequeue on
// the same channel is a no-op overall.
func (m *Matchmaker) Dequeue(channelID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.byChannel[channelID] {
		return false
	}
	for i, e := range m.entries {
		if e.ChannelID == channelID {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			break
		}
	}
	delete(m.byChannel, channelID)
	log.Printf("[MATCHMAKER] Channel %s left queue, queue length %d", channelID, len(m.entries))
	return true
}

// QueueLength reports the current queue size.
func (m *Matchmaker) QueueLength() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Shutdown empties the queue and acknowledges every waiting channel so no
// client is left believing it is still queued.
func (m *Matchmaker) Shutdown() {
	m.mu.Lock()
	entries := m.entries
	m.entries = nil
	m.byChannel = make(map[string]bool)
	m.mu.Unlock()

	log.Printf("[MATCHMAKER] Shutting down, dequeuing %d entries", len(entries))
	for _, e := range entries {
		m.emitter.Emit(e.ChannelID, leftQueueFrame())
	}
}

// tryMatch pairs the two oldest entries while possible. Caller holds m.mu.
func (m *Matchmaker) tryMatch() {
	for len(m.entries) >= 2 {
		first, second := m.entries[0], m.entries[1]

		start, end, err := m.picker.PickEndpoints(first.Difficulty)
		if err != nil {
			// No playable pair right now; leave the queue untouched
			log.Printf("[MATCHMAKER] No endpoints available for %s, keeping %s and %s queued",
				first.Difficulty, first.UserID, second.UserID)
			return
		}

		m.entries = m.entries[2:]
		delete(m.byChannel, first.ChannelID)
		delete(m.byChannel, second.ChannelID)

		_, err = m.engine.CreateMultiplayerSession(
			Participant{ChannelID: first.ChannelID, UserID: first.UserID},
			Participant{ChannelID: second.ChannelID, UserID: second.UserID},
			first.Difficulty, start, end,
		)
		if err != nil {
			// Only a channel already bound to a live session can fail here.
			// Return the innocent entry to the head of the queue; the busy
			// channel loses its slot.
			log.Printf("[MATCHMAKER] Failed to create session for %s vs %s: %v", first.UserID, second.UserID, err)
			var keep []queueEntry
			for _, e := range []queueEntry{first, second} {
				if m.engine.InSession(e.ChannelID) {
					continue
				}
				keep = append(keep, e)
				m.byChannel[e.ChannelID] = true
			}
			m.entries = append(keep, m.entries...)
			if len(keep) == 2 {
				// Nothing was dropped, so retrying would spin on the same pair
				return
			}
			continue
		}
		log.Printf("[MATCHMAKER] Matched %s vs %s (%s)", first.UserID, second.UserID, first.Difficulty)
	}
}
