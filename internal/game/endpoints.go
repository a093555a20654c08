package game

import (
	"errors"
	"log"
	"math/rand"
	"sync"

	"github.com/gridironlink/backend/internal/graph"
)

// ErrNoneAvailable is returned when no playable endpoint pair could be found.
var ErrNoneAvailable = errors.New("game: no playable endpoint pair available")

const minPoolSize = 10

// Picker selects start/end endpoint pairs that are guaranteed playable under
// the difficulty's own traversal rules.
type Picker struct {
	store    *graph.Store
	finder   *graph.Pathfinder
	attempts int

	mu  sync.Mutex
	rng *rand.Rand
}

// NewPicker creates a picker. seed fixes the sampling sequence; tests rely on
// this for reproducibility, production passes any value.
func NewPicker(store *graph.Store, finder *graph.Pathfinder, attempts int, seed int64) *Picker {
	return &Picker{
		store:    store,
		finder:   finder,
		attempts: attempts,
		rng:      rand.New(rand.NewSource(seed)),
	}
}

// PickEndpoints samples two distinct players from the difficulty's tier pool
// and accepts the pair when a path exists under the difficulty's allowed types
// with at least the minimum hop count. Gives up after the attempt budget.
func (p *Picker) PickEndpoints(difficulty Difficulty) (graph.Player, graph.Player, error) {
	params := difficulty.Params()
	pool := p.pool(params.Pools)
	if len(pool) < 2 {
		return graph.Player{}, graph.Player{}, ErrNoneAvailable
	}

	for attempt := 0; attempt < p.attempts; attempt++ {
		startID, endID := p.samplePair(pool)

		path := p.finder.ShortestPath(startID, endID, params.AllowedTypes)
		if len(path) == 0 || len(path)-1 < params.MinPathEdges {
			continue
		}

		start, err := p.store.GetPlayer(startID)
		if err != nil {
			continue
		}
		end, err := p.store.GetPlayer(endID)
		if err != nil {
			continue
		}
		return start, end, nil
	}

	log.Printf("[PICKER] Exhausted %d attempts for difficulty %s", p.attempts, difficulty)
	return graph.Player{}, graph.Player{}, ErrNoneAvailable
}

// pool walks the tier fallback chain until a pool of workable size appears.
func (p *Picker) pool(tiers []graph.Tier) []string {
	for _, tier := range tiers {
		candidates := p.store.Pool(tier)
		if len(candidates) >= minPoolSize {
			return candidates
		}
	}
	return p.store.Pool(graph.TierAll)
}

func (p *Picker) samplePair(pool []string) (string, string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	i := p.rng.Intn(len(pool))
	j := p.rng.Intn(len(pool) - 1)
	if j >= i {
		j++
	}
	return pool[i], pool[j]
}
