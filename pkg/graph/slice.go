package graph

// Reachable returns the identities reachable from start (including start)
// in breadth-first order. Returns [ErrVertexNotFound] if start is absent
// and [ErrCycleGuard] if the walk exceeds the visit limit.
func (g *Graph) Reachable(start ID) ([]ID, error) {
	ids, _, err := g.bfs(start, -1)
	return ids, err
}

// bfs walks from start up to maxDepth hops (negative means unbounded) and
// returns the visit order and each vertex's distance.
func (g *Graph) bfs(start ID, maxDepth int) ([]ID, map[ID]int, error) {
	if _, ok := g.vertices[start]; !ok {
		return nil, nil, &VertexError{ID: start}
	}
	dist := map[ID]int{start: 0}
	order := []ID{start}
	for i := 0; i < len(order); i++ {
		if i >= g.visitLimit {
			return nil, nil, &CycleGuardError{Op: "walk", Limit: g.visitLimit}
		}
		id := order[i]
		d := dist[id]
		if maxDepth >= 0 && d >= maxDepth {
			continue
		}
		for _, e := range g.vertices[id].edges.entries {
			if _, seen := dist[e.To]; seen {
				continue
			}
			if _, ok := g.vertices[e.To]; !ok {
				return nil, nil, &DanglingEdgeError{From: id, Label: e.Label, To: e.To}
			}
			dist[e.To] = d + 1
			order = append(order, e.To)
		}
	}
	return order, dist, nil
}

// Slice returns a new graph with exactly the vertices reachable from start,
// keeping their identities, payloads and edges.
func (g *Graph) Slice(start ID) (*Graph, error) {
	return g.SliceDepth(start, -1)
}

// SliceDepth is like Slice but keeps only vertices at most depth hops away
// from start. Edges leading past the horizon are dropped. A negative depth
// means unbounded.
func (g *Graph) SliceDepth(start ID, depth int) (*Graph, error) {
	order, dist, err := g.bfs(start, depth)
	if err != nil {
		return nil, err
	}
	out := New(append(g.Options(), WithCapacity(len(order)))...)
	for _, id := range order {
		v := g.vertices[id]
		nv := &vertex{data: append([]byte(nil), v.data...), hasData: v.hasData}
		if v.hasData && nv.data == nil {
			nv.data = []byte{}
		}
		for _, e := range v.edges.entries {
			if _, kept := dist[e.To]; kept {
				nv.edges.put(e.Label, e.To, out.inline)
				out.edgeCount++
			}
		}
		out.vertices[id] = nv
	}
	return out, nil
}
