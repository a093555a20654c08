package game

import (
	"context"
	"errors"
	"log"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/gridironlink/backend/internal/config"
	"github.com/gridironlink/backend/internal/graph"
)

// ErrChannelBusy is returned when a channel already participates in a session.
var ErrChannelBusy = errors.New("game: channel already in a session")

// PathValidator checks a single edge of a submission. The in-memory store never
// fails; SQL-backed validators surface transient errors, which cost no strike.
type PathValidator interface {
	Connected(a, b string, allowed graph.TypeSet) (bool, error)
}

// SolutionFinder produces alternative shortest solution paths at game end.
type SolutionFinder interface {
	ShortestPaths(start, end string, allowed graph.TypeSet, k int) [][]string
}

// StatsRecorder is the write path for session outcomes. Implementations must be
// idempotent per session id.
type StatsRecorder interface {
	RecordSessionOutcome(ctx context.Context, o Outcome) error
}

// Outcome describes a terminated session for the stats writer.
type Outcome struct {
	SessionID    string
	Mode         Mode
	Difficulty   Difficulty
	UserIDs      []string
	WinnerUserID string // empty when no winner
	Score        int    // single-player path_found only
}

// Engine owns every live session. The registry maps are guarded by mu; each
// session serializes its own mutations under its own lock.
type Engine struct {
	store     *graph.Store
	validator PathValidator
	finder    SolutionFinder
	picker    *Picker
	stats     StatsRecorder
	emitter   Emitter

	countdown     time.Duration
	gameDuration  time.Duration
	solutionCount int

	mu        sync.RWMutex
	sessions  map[string]*Session
	byChannel map[string]string
}

// NewEngine wires the session engine. stats may be nil in tests.
func NewEngine(cfg *config.Config, store *graph.Store, finder SolutionFinder, picker *Picker, stats StatsRecorder, emitter Emitter) *Engine {
	return &Engine{
		store:         store,
		validator:     store,
		finder:        finder,
		picker:        picker,
		stats:         stats,
		emitter:       emitter,
		countdown:     time.Duration(cfg.CountdownSeconds) * time.Second,
		gameDuration:  time.Duration(cfg.GameDurationSeconds) * time.Second,
		solutionCount: cfg.SolutionPathCount,
		sessions:      make(map[string]*Session),
		byChannel:     make(map[string]string),
	}
}

// CreateMultiplayerSession creates a session in the waiting state for two
// matched channels and announces it to both.
func (e *Engine) CreateMultiplayerSession(p1, p2 Participant, difficulty Difficulty, start, end graph.Player) (*Session, error) {
	s := &Session{
		ID:           generateSessionID(),
		Mode:         ModeMultiplayer,
		Difficulty:   difficulty,
		Start:        start,
		End:          end,
		status:       StatusWaiting,
		participants: []*Participant{{ChannelID: p1.ChannelID, UserID: p1.UserID}, {ChannelID: p2.ChannelID, UserID: p2.UserID}},
		strikes:      difficulty.Params().Strikes,
		createdAt:    time.Now(),
	}
	if err := e.register(s); err != nil {
		return nil, err
	}

	log.Printf("[SESSION] Multiplayer session %s created: %s vs %s (%s, %s -> %s)",
		s.ID, p1.UserID, p2.UserID, difficulty, start.ID, end.ID)

	e.emitter.Emit(p1.ChannelID, gameStartFrame(GameStartData{
		SessionID:      s.ID,
		StartPlayer:    playerInfo(start),
		EndPlayer:      playerInfo(end),
		Mode:           ModeMultiplayer,
		Difficulty:     difficulty,
		OpponentUserID: p2.UserID,
	}))
	e.emitter.Emit(p2.ChannelID, gameStartFrame(GameStartData{
		SessionID:      s.ID,
		StartPlayer:    playerInfo(start),
		EndPlayer:      playerInfo(end),
		Mode:           ModeMultiplayer,
		Difficulty:     difficulty,
		OpponentUserID: p1.UserID,
	}))
	return s, nil
}

// CreateSingleSession creates a solo session directly in the active state. The
// stopwatch starts immediately; there is no ready phase and no deadline.
func (e *Engine) CreateSingleSession(channelID, userID string, difficulty Difficulty) (*Session, error) {
	start, end, err := e.picker.PickEndpoints(difficulty)
	if err != nil {
		return nil, err
	}

	s := &Session{
		ID:           generateSessionID(),
		Mode:         ModeSingle,
		Difficulty:   difficulty,
		Start:        start,
		End:          end,
		status:       StatusActive,
		participants: []*Participant{{ChannelID: channelID, UserID: userID}},
		strikes:      difficulty.Params().Strikes,
		createdAt:    time.Now(),
	}
	if err := e.register(s); err != nil {
		return nil, err
	}

	log.Printf("[SESSION] Single session %s created for %s (%s, %s -> %s)",
		s.ID, userID, difficulty, start.ID, end.ID)

	e.emitter.Emit(channelID, gameStartFrame(GameStartData{
		SessionID:   s.ID,
		StartPlayer: playerInfo(start),
		EndPlayer:   playerInfo(end),
		Mode:        ModeSingle,
		Difficulty:  difficulty,
	}))
	return s, nil
}

// Ready marks a multiplayer participant ready. Repeated calls are no-ops. When
// both are ready the session activates and the deadline is scheduled.
func (e *Engine) Ready(channelID, sessionID string) {
	s := e.lookup(sessionID, channelID)
	if s == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.participant(channelID)
	if p == nil || s.Mode != ModeMultiplayer || s.status != StatusWaiting || p.Ready {
		return
	}
	p.Ready = true

	if opp := s.opponent(channelID); opp != nil {
		e.emitter.Emit(opp.ChannelID, opponentReadyFrame())
	}

	if s.allReady() {
		s.status = StatusActive
		deadline := e.countdown + e.gameDuration
		sid := s.ID
		s.timer = time.AfterFunc(deadline, func() { e.timeout(sid) })
		for _, part := range s.participants {
			e.emitter.Emit(part.ChannelID, allPlayersReadyFrame())
		}
		log.Printf("[SESSION] Session %s active, deadline in %v", s.ID, deadline)
	}
}

// SubmitPath applies a path submission. Invalid submissions cost a strike;
// transient validation failures cost nothing and leave the session active.
func (e *Engine) SubmitPath(channelID, sessionID string, path []string) {
	s := e.lookup(sessionID, channelID)
	if s == nil {
		return
	}

	s.mu.Lock()

	p := s.participant(channelID)
	if p == nil || s.status != StatusActive {
		s.mu.Unlock()
		return
	}

	allowed := s.Difficulty.Params().AllowedTypes
	valid, err := e.validateSubmission(s, path, allowed)
	if err != nil {
		// Transient infrastructure failure: no win, no strike
		log.Printf("[SESSION] Session %s: validation error for %s, submission ignored: %v", s.ID, p.UserID, err)
		s.mu.Unlock()
		return
	}

	if !valid {
		s.strikes--
		e.emitter.Emit(channelID, invalidPathFrame(InvalidPathData{
			PathLength:       len(path),
			StrikesRemaining: s.strikes,
		}))
		opp := s.opponent(channelID)
		if s.Mode == ModeMultiplayer && opp != nil {
			e.emitter.Emit(opp.ChannelID, opponentAttemptedPathFrame(OpponentAttemptedPathData{
				Success:    false,
				PathLength: len(path),
			}))
		}
		if s.strikes > 0 {
			s.mu.Unlock()
			return
		}

		// Out of strikes: opponent wins in multiplayer, no winner solo
		s.status = StatusFinished
		s.cancelTimer()
		var winner string
		if s.Mode == ModeMultiplayer && opp != nil {
			winner = opp.UserID
			s.winnerUserID = winner
		}
		parts := append([]*Participant(nil), s.participants...)
		s.mu.Unlock()

		log.Printf("[SESSION] Session %s finished: out of strikes (%s)", s.ID, p.UserID)
		for _, part := range parts {
			e.emitter.Emit(part.ChannelID, gameEndFrame(GameEndData{
				WinnerUserID: winnerPtr(winner),
				Reason:       ReasonOutOfStrikes,
			}))
		}
		e.remove(s)
		e.recordOutcome(Outcome{SessionID: s.ID, Mode: s.Mode, Difficulty: s.Difficulty, UserIDs: userIDsOf(parts), WinnerUserID: winner})
		return
	}

	// Valid path: submitter wins
	s.status = StatusFinished
	s.cancelTimer()
	s.winnerUserID = p.UserID
	elapsed := time.Since(s.createdAt)
	parts := append([]*Participant(nil), s.participants...)
	s.mu.Unlock()

	winningPath := e.namePath(path)

	if s.Mode == ModeSingle {
		seconds := elapsed.Seconds()
		score := submissionScore(seconds, len(path)-1)
		log.Printf("[SESSION] Session %s solved by %s in %.1fs, score %d", s.ID, p.UserID, seconds, score)
		e.emitter.Emit(channelID, gameEndFrame(GameEndData{
			WinnerUserID: winnerPtr(p.UserID),
			Reason:       ReasonPathFound,
			WinningPath:  winningPath,
			Score:        &score,
			Time:         &seconds,
		}))
		e.remove(s)
		e.recordOutcome(Outcome{SessionID: s.ID, Mode: s.Mode, Difficulty: s.Difficulty, UserIDs: userIDsOf(parts), WinnerUserID: p.UserID, Score: score})
		return
	}

	// The loser additionally receives alternative shortest solutions; the
	// winner's frame carries exactly the path they submitted.
	solutions := e.solutionPaths(s, winningPath)
	log.Printf("[SESSION] Session %s solved by %s (%d hops, %d alternatives)", s.ID, p.UserID, len(path)-1, len(solutions))
	for _, part := range parts {
		data := GameEndData{
			WinnerUserID: winnerPtr(p.UserID),
			Reason:       ReasonPathFound,
			WinningPath:  winningPath,
		}
		if part.ChannelID != channelID {
			data.SolutionPaths = solutions
		}
		e.emitter.Emit(part.ChannelID, gameEndFrame(data))
	}
	e.remove(s)
	e.recordOutcome(Outcome{SessionID: s.ID, Mode: s.Mode, Difficulty: s.Difficulty, UserIDs: userIDsOf(parts), WinnerUserID: p.UserID})
}

// GiveUp forfeits the session for the submitting channel.
func (e *Engine) GiveUp(channelID, sessionID string) {
	s := e.lookup(sessionID, channelID)
	if s == nil {
		return
	}

	s.mu.Lock()
	p := s.participant(channelID)
	if p == nil || s.status != StatusActive {
		s.mu.Unlock()
		return
	}
	s.status = StatusFinished
	s.cancelTimer()
	var winner string
	opp := s.opponent(channelID)
	if s.Mode == ModeMultiplayer && opp != nil {
		winner = opp.UserID
		s.winnerUserID = winner
	}
	parts := append([]*Participant(nil), s.participants...)
	s.mu.Unlock()

	log.Printf("[SESSION] Session %s: %s gave up", s.ID, p.UserID)
	for _, part := range parts {
		reason := ReasonGaveUp
		if part.ChannelID != channelID {
			reason = ReasonOpponentGaveUp
		}
		e.emitter.Emit(part.ChannelID, gameEndFrame(GameEndData{
			WinnerUserID: winnerPtr(winner),
			Reason:       reason,
		}))
	}
	e.remove(s)
	e.recordOutcome(Outcome{SessionID: s.ID, Mode: s.Mode, Difficulty: s.Difficulty, UserIDs: userIDsOf(parts), WinnerUserID: winner})
}

// Disconnect handles a closed channel. In multiplayer the remaining participant
// wins; a solo session is destroyed silently.
func (e *Engine) Disconnect(channelID string) {
	e.mu.RLock()
	s := e.sessions[e.byChannel[channelID]]
	e.mu.RUnlock()
	if s == nil {
		return
	}

	s.mu.Lock()
	if s.status == StatusFinished {
		s.mu.Unlock()
		e.remove(s)
		return
	}
	s.status = StatusFinished
	s.cancelTimer()

	if s.Mode == ModeSingle {
		s.mu.Unlock()
		log.Printf("[SESSION] Session %s destroyed: sole participant disconnected", s.ID)
		e.remove(s)
		return
	}

	opp := s.opponent(channelID)
	var winner string
	if opp != nil {
		winner = opp.UserID
		s.winnerUserID = winner
	}
	parts := append([]*Participant(nil), s.participants...)
	s.mu.Unlock()

	log.Printf("[SESSION] Session %s finished: channel %s disconnected, %s wins", s.ID, channelID, winner)
	if opp != nil {
		e.emitter.Emit(opp.ChannelID, gameEndFrame(GameEndData{
			WinnerUserID: winnerPtr(winner),
			Reason:       ReasonOpponentDisconnected,
		}))
	}
	e.remove(s)
	e.recordOutcome(Outcome{SessionID: s.ID, Mode: s.Mode, Difficulty: s.Difficulty, UserIDs: userIDsOf(parts), WinnerUserID: winner})
}

// timeout fires when the wall-clock deadline passes. Both participants get the
// solution paths; there is no winner.
func (e *Engine) timeout(sessionID string) {
	e.mu.RLock()
	s := e.sessions[sessionID]
	e.mu.RUnlock()
	if s == nil {
		return
	}

	s.mu.Lock()
	if s.status != StatusActive {
		s.mu.Unlock()
		return
	}
	s.status = StatusFinished
	s.timer = nil
	parts := append([]*Participant(nil), s.participants...)
	s.mu.Unlock()

	solutions := e.solutionPaths(s, nil)
	log.Printf("[SESSION] Session %s timed out (%d solutions)", s.ID, len(solutions))
	for _, part := range parts {
		e.emitter.Emit(part.ChannelID, gameEndFrame(GameEndData{
			WinnerUserID:  nil,
			Reason:        ReasonTimeout,
			SolutionPaths: solutions,
		}))
	}
	e.remove(s)
	e.recordOutcome(Outcome{SessionID: s.ID, Mode: s.Mode, Difficulty: s.Difficulty, UserIDs: userIDsOf(parts)})
}

// Shutdown terminates every live session with an internal_error frame and
// closes the affected channels. Used on process exit and on unrecoverable
// engine failure.
func (e *Engine) Shutdown() {
	e.mu.Lock()
	live := make([]*Session, 0, len(e.sessions))
	for _, s := range e.sessions {
		live = append(live, s)
	}
	e.mu.Unlock()

	log.Printf("[SESSION] Shutting down, terminating %d sessions", len(live))
	for _, s := range live {
		s.mu.Lock()
		if s.status == StatusFinished {
			s.mu.Unlock()
			continue
		}
		s.status = StatusFinished
		s.cancelTimer()
		parts := append([]*Participant(nil), s.participants...)
		s.mu.Unlock()

		for _, part := range parts {
			e.emitter.Emit(part.ChannelID, gameEndFrame(GameEndData{
				Reason: ReasonInternalError,
			}))
			e.emitter.CloseChannel(part.ChannelID)
		}
		e.remove(s)
	}
}

// NumSessions reports the live session count.
func (e *Engine) NumSessions() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.sessions)
}

// InSession reports whether channelID is bound to a live session.
func (e *Engine) InSession(channelID string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.byChannel[channelID]
	return ok
}

func (e *Engine) register(s *Session) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, p := range s.participants {
		if _, busy := e.byChannel[p.ChannelID]; busy {
			return ErrChannelBusy
		}
	}
	e.sessions[s.ID] = s
	for _, p := range s.participants {
		e.byChannel[p.ChannelID] = s.ID
	}
	return nil
}

func (e *Engine) remove(s *Session) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.sessions, s.ID)
	for _, p := range s.participants {
		if e.byChannel[p.ChannelID] == s.ID {
			delete(e.byChannel, p.ChannelID)
		}
	}
}

// lookup resolves a session and verifies the channel is bound to it. Unknown
// sessions or foreign channels are protocol noise and yield nil.
func (e *Engine) lookup(sessionID, channelID string) *Session {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s := e.sessions[sessionID]
	if s == nil || e.byChannel[channelID] != sessionID {
		return nil
	}
	return s
}

// validateSubmission applies the four validity rules in order.
func (e *Engine) validateSubmission(s *Session, path []string, allowed graph.TypeSet) (bool, error) {
	if len(path) < 2 {
		return false, nil
	}
	if path[0] != s.Start.ID || path[len(path)-1] != s.End.ID {
		return false, nil
	}
	for i := 0; i+1 < len(path); i++ {
		ok, err := e.validator.Connected(path[i], path[i+1], allowed)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// solutionPaths maps up to solutionCount shortest paths to display names,
// deduplicated after the mapping and excluding the winning path if given.
func (e *Engine) solutionPaths(s *Session, exclude []string) [][]string {
	allowed := s.Difficulty.Params().AllowedTypes
	raw := e.finder.ShortestPaths(s.Start.ID, s.End.ID, allowed, e.solutionCount+1)

	seen := map[string]bool{}
	if exclude != nil {
		seen[strings.Join(exclude, "\x1f")] = true
	}
	var out [][]string
	for _, ids := range raw {
		names := e.namePath(ids)
		key := strings.Join(names, "\x1f")
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, names)
		if len(out) >= e.solutionCount {
			break
		}
	}
	return out
}

// namePath maps node ids to display names, falling back to the raw id.
func (e *Engine) namePath(ids []string) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if p, err := e.store.GetPlayer(id); err == nil {
			names = append(names, p.Name)
		} else {
			names = append(names, id)
		}
	}
	return names
}

func (e *Engine) recordOutcome(o Outcome) {
	if e.stats == nil {
		return
	}
	if err := e.stats.RecordSessionOutcome(context.Background(), o); err != nil {
		log.Printf("[STATS] Failed to record outcome for session %s: %v", o.SessionID, err)
	}
}

// submissionScore is the solo scoring formula: faster and shorter is better.
func submissionScore(elapsedSeconds float64, edges int) int {
	score := 10000 - int(math.Floor(elapsedSeconds*10)) - edges*100
	if score < 0 {
		return 0
	}
	return score
}

func playerInfo(p graph.Player) PlayerInfo {
	return PlayerInfo{ID: p.ID, Name: p.Name, Position: p.Position}
}

func winnerPtr(userID string) *string {
	if userID == "" {
		return nil
	}
	return &userID
}

func userIDsOf(parts []*Participant) []string {
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		ids = append(ids, p.UserID)
	}
	return ids
}
