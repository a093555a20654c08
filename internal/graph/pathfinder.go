package graph

// Pathfinder runs depth-bounded shortest-path searches over a Store snapshot.
// It is stateless and safe for concurrent use.
type Pathfinder struct {
	store    *Store
	maxDepth int
}

// NewPathfinder creates a pathfinder with the given hop bound.
func NewPathfinder(store *Store, maxDepth int) *Pathfinder {
	return &Pathfinder{store: store, maxDepth: maxDepth}
}

// ShortestPath returns one shortest node sequence from start to end traversing
// only edges whose type is in allowed, or nil when end is unreachable within
// the hop bound. start == end yields the single-node sequence.
func (p *Pathfinder) ShortestPath(start, end string, allowed TypeSet) []string {
	if _, err := p.store.GetPlayer(start); err != nil {
		return nil
	}
	if _, err := p.store.GetPlayer(end); err != nil {
		return nil
	}
	if start == end {
		return []string{start}
	}

	type item struct {
		id    string
		depth int
	}
	parent := map[string]string{start: ""}
	queue := []item{{start, 0}}

	for len(queue) > 0 {
		it := queue[0]
		queue = queue[1:]
		if it.depth >= p.maxDepth {
			continue
		}
		for _, e := range p.store.Neighbors(it.id, allowed) {
			if _, visited := parent[e.Neighbor]; visited {
				continue
			}
			parent[e.Neighbor] = it.id
			if e.Neighbor == end {
				return rebuild(parent, start, end)
			}
			queue = append(queue, item{e.Neighbor, it.depth + 1})
		}
	}
	return nil
}

// ShortestPaths returns up to k distinct node sequences of minimum length from
// start to end. All returned paths have the same length; the result is
// deterministic because adjacency iteration order is fixed at load.
func (p *Pathfinder) ShortestPaths(start, end string, allowed TypeSet, k int) [][]string {
	if k <= 0 {
		return nil
	}
	if _, err := p.store.GetPlayer(start); err != nil {
		return nil
	}
	if _, err := p.store.GetPlayer(end); err != nil {
		return nil
	}
	if start == end {
		return [][]string{{start}}
	}

	// BFS recording every shortest predecessor, stopping at the level where
	// end is first discovered.
	depth := map[string]int{start: 0}
	parents := map[string][]string{}
	frontier := []string{start}
	endDepth := -1

	for d := 0; len(frontier) > 0 && d < p.maxDepth && endDepth < 0; d++ {
		var next []string
		for _, id := range frontier {
			for _, e := range p.store.Neighbors(id, allowed) {
				nd, found := depth[e.Neighbor]
				if !found {
					depth[e.Neighbor] = d + 1
					parents[e.Neighbor] = []string{id}
					next = append(next, e.Neighbor)
				} else if nd == d+1 {
					// Another shortest predecessor at the same level.
					// Duplicate (neighbor, type) entries would repeat the
					// predecessor; the store yields each pair once per type,
					// so guard against multi-type edges here.
					if !containsID(parents[e.Neighbor], id) {
						parents[e.Neighbor] = append(parents[e.Neighbor], id)
					}
				}
			}
		}
		if _, found := depth[end]; found {
			endDepth = depth[end]
		}
		frontier = next
	}

	if endDepth < 0 {
		return nil
	}

	// Walk the predecessor DAG backwards from end, emitting up to k paths.
	var paths [][]string
	var walk func(id string, suffix []string)
	walk = func(id string, suffix []string) {
		if len(paths) >= k {
			return
		}
		if id == start {
			path := make([]string, 0, len(suffix)+1)
			path = append(path, start)
			for i := len(suffix) - 1; i >= 0; i-- {
				path = append(path, suffix[i])
			}
			paths = append(paths, path)
			return
		}
		for _, prev := range parents[id] {
			walk(prev, append(suffix, id))
		}
	}
	walk(end, nil)
	return paths
}

func rebuild(parent map[string]string, start, end string) []string {
	var rev []string
	for at := end; at != ""; at = parent[at] {
		rev = append(rev, at)
		if at == start {
			break
		}
	}
	path := make([]string, 0, len(rev))
	for i := len(rev) - 1; i >= 0; i-- {
		path = append(path, rev[i])
	}
	return path
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
