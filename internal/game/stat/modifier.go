package stat

import (
	"slices"
	"sort"
)

// Modifier is a named effect held by a ModifierStack.
type Modifier struct {
	Name   string
	Effect Effect
	seq    uint64
}

// ModifierStack keeps effects sorted by ascending priority.
// Equal priorities keep insertion order.
type ModifierStack struct {
	entries []Modifier
	nextSeq uint64
}

// Add inserts an effect under the given name. An existing modifier with the same
// name is replaced and the new one takes a fresh insertion slot.
func (s *ModifierStack) Add(name string, e Effect) {
	s.Remove(name)

	s.nextSeq++
	m := Modifier{Name: name, Effect: e, seq: s.nextSeq}

	// first entry with strictly greater priority
	i := sort.Search(len(s.entries), func(i int) bool {
		return s.entries[i].Effect.Priority > e.Priority
	})
	s.entries = slices.Insert(s.entries, i, m)
}

// Remove drops the named modifier. Returns false if nothing was removed.
func (s *ModifierStack) Remove(name string) bool {
	i := slices.IndexFunc(s.entries, func(m Modifier) bool { return m.Name == name })
	if i < 0 {
		return false
	}
	s.entries = slices.Delete(s.entries, i, i+1)
	return true
}

// Has reports whether a modifier with the given name is present.
func (s *ModifierStack) Has(name string) bool {
	return slices.ContainsFunc(s.entries, func(m Modifier) bool { return m.Name == name })
}

// Len returns the number of modifiers.
func (s *ModifierStack) Len() int {
	return len(s.entries)
}

// Entries returns a copy of the modifiers in application order.
func (s *ModifierStack) Entries() []Modifier {
	out := make([]Modifier, len(s.entries))
	copy(out, s.entries)
	return out
}

// Apply folds every effect over base in application order.
// Each effect receives the running result as current and the original base.
// The result is not clamped.
func (s *ModifierStack) Apply(base, max int) int {
	current := base
	for _, m := range s.entries {
		current = m.Effect.Apply(base, current, max)
	}
	return current
}
