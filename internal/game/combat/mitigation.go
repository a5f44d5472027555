package combat

import (
	"slices"
	"sort"
)

// Mitigation reduces incoming damage. Reduce receives the output of the previous
// mitigation and may return a negative value; negative damage heals.
type Mitigation struct {
	Name     string
	Priority int // lower applied first
	Reduce   func(damage int) int

	seq uint64
}

// Pipeline folds mitigations over a damage amount in ascending priority.
// Equal priorities keep insertion order.
type Pipeline struct {
	entries []Mitigation
	nextSeq uint64
}

// Add inserts m, replacing any mitigation with the same name.
func (p *Pipeline) Add(m Mitigation) {
	p.Remove(m.Name)

	p.nextSeq++
	m.seq = p.nextSeq
	i := sort.Search(len(p.entries), func(i int) bool {
		return p.entries[i].Priority > m.Priority
	})
	p.entries = slices.Insert(p.entries, i, m)
}

// Remove drops the named mitigation. Missing names are a no-op.
func (p *Pipeline) Remove(name string) bool {
	i := slices.IndexFunc(p.entries, func(m Mitigation) bool { return m.Name == name })
	if i < 0 {
		return false
	}
	p.entries = slices.Delete(p.entries, i, i+1)
	return true
}

// Apply runs damage through every mitigation.
func (p *Pipeline) Apply(damage int) int {
	for _, m := range p.entries {
		if m.Reduce == nil {
			continue
		}
		damage = m.Reduce(damage)
	}
	return damage
}

// Len returns the number of mitigations.
func (p *Pipeline) Len() int {
	return len(p.entries)
}

// Names returns mitigation names in application order.
func (p *Pipeline) Names() []string {
	out := make([]string, len(p.entries))
	for i, m := range p.entries {
		out[i] = m.Name
	}
	return out
}

// FlatMitigation subtracts a fixed amount (armor). Large amounts may push
// damage below zero.
func FlatMitigation(name string, priority, amount int) Mitigation {
	return Mitigation{
		Name:     name,
		Priority: priority,
		Reduce:   func(damage int) int { return damage - amount },
	}
}

// PercentMitigation removes a fraction of the damage, truncated toward zero.
func PercentMitigation(name string, priority int, fraction float64) Mitigation {
	return Mitigation{
		Name:     name,
		Priority: priority,
		Reduce: func(damage int) int {
			return damage - int(float64(damage)*fraction)
		},
	}
}

// CapMitigation limits damage to at most limit.
func CapMitigation(name string, priority, limit int) Mitigation {
	return Mitigation{
		Name:     name,
		Priority: priority,
		Reduce:   func(damage int) int { return min(damage, limit) },
	}
}
