package graph

import "sort"

// IncidentEdges returns the edges touching a vertex, ordered by insertion
// sequence. A self-loop appears once.
func (g *Graph) IncidentEdges(id ID) []*Edge {
	set, ok := g.incident[id]
	if !ok {
		return nil
	}
	es := make([]*Edge, 0, len(set))
	for eid := range set {
		es = append(es, g.edges[eid])
	}
	sort.Slice(es, func(i, j int) bool { return es[i].Seq < es[j].Seq })
	return es
}

// Degree returns the number of edges incident to a vertex.
func (g *Graph) Degree(id ID) int {
	return len(g.incident[id])
}

// Neighbors returns the distinct vertices adjacent to a vertex, ordered by
// insertion sequence. The vertex itself is included only if it has a
// self-loop.
func (g *Graph) Neighbors(id ID) []*Vertex {
	set, ok := g.incident[id]
	if !ok {
		return nil
	}
	seen := make(map[ID]struct{}, len(set))
	var ns []*Vertex
	for eid := range set {
		e := g.edges[eid]
		other := e.From
		if e.From == id {
			other = e.To
		}
		if _, dup := seen[other]; dup {
			continue
		}
		seen[other] = struct{}{}
		ns = append(ns, g.vertices[other])
	}
	sort.Slice(ns, func(i, j int) bool { return ns[i].Seq < ns[j].Seq })
	return ns
}

// HasEdgeBetween reports whether any edge connects a and b, in either
// orientation.
func (g *Graph) HasEdgeBetween(a, b ID) bool {
	set := g.incident[a]
	for eid := range set {
		e := g.edges[eid]
		if (e.From == a && e.To == b) || (e.From == b && e.To == a) {
			return true
		}
	}
	return false
}

// FindVertexByLabel returns the first vertex (by insertion order) with the
// given label, if any.
func (g *Graph) FindVertexByLabel(label string) (*Vertex, bool) {
	for _, v := range g.Vertices() {
		if v.Label == label {
			return v, true
		}
	}
	return nil, false
}

// UnconnectedPairs returns every distinct vertex pair with no edge between
// them, ordered by (Seq, Seq) with the lower sequence first.
func (g *Graph) UnconnectedPairs() [][2]*Vertex {
	vs := g.Vertices()
	var pairs [][2]*Vertex
	for i := 0; i < len(vs); i++ {
		for j := i + 1; j < len(vs); j++ {
			if !g.HasEdgeBetween(vs[i].ID, vs[j].ID) {
				pairs = append(pairs, [2]*Vertex{vs[i], vs[j]})
			}
		}
	}
	return pairs
}

// ConnectLowestPair adds an edge between the unconnected vertex pair with the
// smallest insertion sequences, lower sequence first. The choice is
// deterministic for a given graph state. Returns ErrNoCandidatePair when the
// graph is complete (or has fewer than two vertices).
func (g *Graph) ConnectLowestPair(label string) (*Edge, error) {
	pairs := g.UnconnectedPairs()
	if len(pairs) == 0 {
		return nil, ErrNoCandidatePair
	}
	return g.AddEdge(pairs[0][0].ID, pairs[0][1].ID, label)
}
