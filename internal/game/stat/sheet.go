package stat

import (
	"fmt"
	"log/slog"
	"math"
)

// DefaultMaxPropagationDepth bounds nested change dispatch when no depth is configured.
const DefaultMaxPropagationDepth = 8

// Sheet owns every stat of one entity and the links between them.
// Stats live in an arena indexed by ID; links are kept in a separate LinkGraph.
//
// Change dispatch is synchronous and re-entrant: a listener or a link may mutate
// further stats while a change is being delivered. Nesting deeper than the
// configured budget stops link propagation for that branch.
//
// Not safe for concurrent use; callers serialize access per entity.
type Sheet struct {
	stats  []*Value
	byName map[string]ID
	links  *LinkGraph

	listeners []sheetListener
	nextSub   int

	depth    int
	maxDepth int
}

type sheetListener struct {
	id int
	fn func(Change)
}

// NewSheet creates an empty sheet. maxDepth <= 0 selects DefaultMaxPropagationDepth.
func NewSheet(maxDepth int) *Sheet {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxPropagationDepth
	}
	return &Sheet{
		byName:   make(map[string]ID),
		links:    NewLinkGraph(),
		maxDepth: maxDepth,
	}
}

// Add defines a new stat and returns its ID.
func (s *Sheet) Add(name string, variation Variation, base, min, max int) (ID, error) {
	if _, ok := s.byName[name]; ok {
		return 0, fmt.Errorf("adding stat %q: %w", name, ErrDuplicateStat)
	}
	id := ID(len(s.stats))
	v := NewValue(id, name, variation, base, min, max)
	v.notify = s.dispatch
	s.stats = append(s.stats, v)
	s.byName[name] = id
	return id, nil
}

// Get returns the stat with the given ID.
func (s *Sheet) Get(id ID) (*Value, error) {
	if id < 0 || int(id) >= len(s.stats) {
		return nil, fmt.Errorf("stat id %d: %w", id, ErrUnknownStat)
	}
	return s.stats[id], nil
}

// Lookup returns the stat with the given name.
func (s *Sheet) Lookup(name string) (*Value, error) {
	id, ok := s.byName[name]
	if !ok {
		return nil, fmt.Errorf("stat %q: %w", name, ErrUnknownStat)
	}
	return s.stats[id], nil
}

// Values returns all stats in definition order.
func (s *Sheet) Values() []*Value {
	out := make([]*Value, len(s.stats))
	copy(out, s.stats)
	return out
}

// Len returns the number of stats.
func (s *Sheet) Len() int {
	return len(s.stats)
}

// Link makes dependent follow source's changes scaled by ratio.
// Cycles are not rejected here; the propagation budget bounds them.
func (s *Sheet) Link(source, dependent ID, ratio float64) error {
	if _, err := s.Get(source); err != nil {
		return fmt.Errorf("linking source: %w", err)
	}
	if _, err := s.Get(dependent); err != nil {
		return fmt.Errorf("linking dependent: %w", err)
	}
	if err := s.links.Add(Edge{Source: source, Dependent: dependent, Ratio: ratio}); err != nil {
		return fmt.Errorf("linking %s -> %s: %w", s.stats[source].name, s.stats[dependent].name, err)
	}
	return nil
}

// Unlink removes the (source, dependent) link. Missing links are a no-op.
func (s *Sheet) Unlink(source, dependent ID) bool {
	return s.links.Remove(source, dependent)
}

// Links returns every link edge.
func (s *Sheet) Links() []Edge {
	return s.links.Edges()
}

// Subscribe registers fn for every change on the sheet, including changes caused
// by link propagation. The returned func removes the subscription.
func (s *Sheet) Subscribe(fn func(Change)) (unsubscribe func()) {
	s.nextSub++
	id := s.nextSub
	s.listeners = append(s.listeners, sheetListener{id: id, fn: fn})
	return func() {
		for i, l := range s.listeners {
			if l.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

func (s *Sheet) dispatch(c Change) {
	s.depth++
	defer func() { s.depth-- }()

	for _, l := range s.listeners {
		l.fn(c)
	}

	if s.depth > s.maxDepth {
		slog.Warn("link propagation budget exhausted",
			"stat", c.Name,
			"depth", s.depth,
			"max_depth", s.maxDepth)
		return
	}

	delta := c.Delta()
	for _, e := range s.links.From(c.Stat) {
		s.propagate(e, delta)
	}
}

func (s *Sheet) propagate(e Edge, delta int) {
	p := e.Propagated(delta)
	if p == 0 {
		return
	}
	dep := s.stats[e.Dependent]
	// p carries the sign; both calls get a non-negative amount
	if p > 0 {
		_ = dep.AddPoints(p)
		return
	}
	if p == math.MinInt {
		p++
	}
	_ = dep.RemovePoints(-p)
}
