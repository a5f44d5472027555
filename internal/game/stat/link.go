package stat

import "slices"

// Edge propagates a fraction of Source's changes onto Dependent.
type Edge struct {
	Source    ID
	Dependent ID
	Ratio     float64
}

// Propagated returns the share of delta carried across the edge, truncated toward zero.
func (e Edge) Propagated(delta int) int {
	return toInt(float64(delta) * e.Ratio)
}

// LinkGraph stores link edges as an adjacency list keyed by source.
type LinkGraph struct {
	out map[ID][]Edge
	n   int
}

// NewLinkGraph creates an empty graph.
func NewLinkGraph() *LinkGraph {
	return &LinkGraph{out: make(map[ID][]Edge)}
}

// Add inserts an edge. Self links and duplicate pairs are rejected.
func (g *LinkGraph) Add(e Edge) error {
	if e.Source == e.Dependent {
		return ErrSelfLink
	}
	if g.Has(e.Source, e.Dependent) {
		return ErrAlreadyLinked
	}
	g.out[e.Source] = append(g.out[e.Source], e)
	g.n++
	return nil
}

// Remove deletes the (source, dependent) edge if present.
func (g *LinkGraph) Remove(source, dependent ID) bool {
	edges := g.out[source]
	i := slices.IndexFunc(edges, func(e Edge) bool { return e.Dependent == dependent })
	if i < 0 {
		return false
	}
	edges = slices.Delete(edges, i, i+1)
	if len(edges) == 0 {
		delete(g.out, source)
	} else {
		g.out[source] = edges
	}
	g.n--
	return true
}

// Has reports whether source is linked to dependent.
func (g *LinkGraph) Has(source, dependent ID) bool {
	return slices.ContainsFunc(g.out[source], func(e Edge) bool { return e.Dependent == dependent })
}

// From returns a copy of the edges leaving source, in link order.
func (g *LinkGraph) From(source ID) []Edge {
	return slices.Clone(g.out[source])
}

// Edges returns every edge ordered by source then link order.
func (g *LinkGraph) Edges() []Edge {
	sources := make([]ID, 0, len(g.out))
	for id := range g.out {
		sources = append(sources, id)
	}
	slices.Sort(sources)

	out := make([]Edge, 0, g.n)
	for _, id := range sources {
		out = append(out, g.out[id]...)
	}
	return out
}

// Len returns the number of edges.
func (g *LinkGraph) Len() int {
	return g.n
}
