package game

import (
	"context"
	"sync"
	"time"

	"github.com/gridironlink/backend/internal/config"
	"github.com/gridironlink/backend/internal/graph"
)

// fakeEmitter records frames per channel in emission order.
type fakeEmitter struct {
	mu     sync.Mutex
	frames map[string][]Frame
	closed map[string]bool
}

func newFakeEmitter() *fakeEmitter {
	return &fakeEmitter{
		frames: make(map[string][]Frame),
		closed: make(map[string]bool),
	}
}

func (f *fakeEmitter) Emit(channelID string, frame Frame) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames[channelID] = append(f.frames[channelID], frame)
}

func (f *fakeEmitter) CloseChannel(channelID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed[channelID] = true
}

func (f *fakeEmitter) framesFor(channelID string) []Frame {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Frame(nil), f.frames[channelID]...)
}

func (f *fakeEmitter) lastFrame(channelID string) (Frame, bool) {
	frames := f.framesFor(channelID)
	if len(frames) == 0 {
		return Frame{}, false
	}
	return frames[len(frames)-1], true
}

func (f *fakeEmitter) countType(channelID, frameType string) int {
	n := 0
	for _, fr := range f.framesFor(channelID) {
		if fr.Type == frameType {
			n++
		}
	}
	return n
}

// fakeStats records outcomes handed to the stats writer.
type fakeStats struct {
	mu       sync.Mutex
	outcomes []Outcome
}

func (f *fakeStats) RecordSessionOutcome(_ context.Context, o Outcome) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outcomes = append(f.outcomes, o)
	return nil
}

func (f *fakeStats) recorded() []Outcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Outcome(nil), f.outcomes...)
}

// testStore is the fixture graph shared by the engine tests:
//
//	X - Z - Y            (teammate two-hop)
//	X - U - V - W - Y    (teammate four-hop)
//	X ------ Y           (draft_class direct)
//
// Every player has star-level fantasy production.
func testStore() *graph.Store {
	players := []graph.Player{
		{ID: "X", Name: "Xavier Worthy", Position: "WR"},
		{ID: "Y", Name: "Yates Holden", Position: "QB"},
		{ID: "Z", Name: "Zimmer Cole", Position: "TE"},
		{ID: "U", Name: "Udo Grant", Position: "RB"},
		{ID: "V", Name: "Vick Moran", Position: "WR"},
		{ID: "W", Name: "Wade Otis", Position: "TE"},
	}
	connections := []graph.Connection{
		{Player1: "X", Player2: "Z", Type: graph.TypeTeammate},
		{Player1: "Z", Player2: "Y", Type: graph.TypeTeammate},
		{Player1: "X", Player2: "U", Type: graph.TypeTeammate},
		{Player1: "U", Player2: "V", Type: graph.TypeTeammate},
		{Player1: "V", Player2: "W", Type: graph.TypeTeammate},
		{Player1: "W", Player2: "Y", Type: graph.TypeTeammate},
		{Player1: "X", Player2: "Y", Type: graph.TypeDraftClass},
	}
	ppr := map[string]float64{}
	for _, p := range players {
		ppr[p.ID] = 200
	}
	return graph.NewStore(players, connections, ppr)
}

func testConfig() *config.Config {
	return &config.Config{
		GameDurationSeconds:  60,
		CountdownSeconds:     3,
		MaxSearchDepth:       5,
		SolutionPathCount:    3,
		EndpointPickAttempts: 50,
	}
}

type testRig struct {
	engine  *Engine
	emitter *fakeEmitter
	stats   *fakeStats
	store   *graph.Store
	picker  *Picker
}

func newTestRig() *testRig {
	cfg := testConfig()
	store := testStore()
	finder := graph.NewPathfinder(store, cfg.MaxSearchDepth)
	picker := NewPicker(store, finder, cfg.EndpointPickAttempts, 1)
	emitter := newFakeEmitter()
	stats := &fakeStats{}
	engine := NewEngine(cfg, store, finder, picker, stats, emitter)
	engine.countdown = 0 // no countdown wait in tests
	return &testRig{engine: engine, emitter: emitter, stats: stats, store: store, picker: picker}
}

func (r *testRig) player(id string) graph.Player {
	p, err := r.store.GetPlayer(id)
	if err != nil {
		panic(err)
	}
	return p
}

// activeMultiplayer creates an X->Y session for channels chA/chB and marks both
// participants ready.
func (r *testRig) activeMultiplayer(difficulty Difficulty) *Session {
	s, err := r.engine.CreateMultiplayerSession(
		Participant{ChannelID: "chA", UserID: "userA"},
		Participant{ChannelID: "chB", UserID: "userB"},
		difficulty, r.player("X"), r.player("Y"),
	)
	if err != nil {
		panic(err)
	}
	r.engine.Ready("chA", s.ID)
	r.engine.Ready("chB", s.ID)
	return s
}

// activeSingle registers a solo X->Y session directly, bypassing the picker so
// endpoints are fixed.
func (r *testRig) activeSingle(difficulty Difficulty) *Session {
	s := &Session{
		ID:           generateSessionID(),
		Mode:         ModeSingle,
		Difficulty:   difficulty,
		Start:        r.player("X"),
		End:          r.player("Y"),
		status:       StatusActive,
		participants: []*Participant{{ChannelID: "chC", UserID: "userC"}},
		strikes:      difficulty.Params().Strikes,
		createdAt:    time.Now(),
	}
	if err := r.engine.register(s); err != nil {
		panic(err)
	}
	return s
}
