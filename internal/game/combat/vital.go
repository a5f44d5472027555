package combat

import (
	"github.com/udisondev/statcore/internal/game/stat"
)

// Vital tracks accumulated damage against one stat (health, stamina, ...).
// Damage is kept apart from the stat itself: the stat's apparent value stays the
// capacity, and Current reports what is left after damage.
// Not safe for concurrent use.
type Vital struct {
	stat        *stat.Value
	damage      int
	mitigations Pipeline

	onDamage func(DamageResult)
	onHeal   func(HealResult)
}

// NewVital tracks damage against v.
func NewVital(v *stat.Value) *Vital {
	return &Vital{stat: v}
}

// Stat returns the underlying stat.
func (v *Vital) Stat() *stat.Value { return v.stat }

// Damage returns the accumulated damage, always within [0, max].
func (v *Vital) Damage() int { return v.damage }

// Current returns the stat's apparent value reduced by accumulated damage.
func (v *Vital) Current() int {
	return v.stat.Apparent() - v.damage
}

// IsDepleted reports whether no value is left above the stat minimum.
func (v *Vital) IsDepleted() bool {
	return v.Current() <= v.stat.Min()
}

// OnDamage sets the callback fired after every resolved hit.
func (v *Vital) OnDamage(fn func(DamageResult)) { v.onDamage = fn }

// OnHeal sets the callback fired after every heal.
func (v *Vital) OnHeal(fn func(HealResult)) { v.onHeal = fn }

// AddMitigation registers a damage reducer.
func (v *Vital) AddMitigation(m Mitigation) { v.mitigations.Add(m) }

// RemoveMitigation drops a damage reducer by name. Missing names are a no-op.
func (v *Vital) RemoveMitigation(name string) bool { return v.mitigations.Remove(name) }

// Mitigations returns mitigation names in application order.
func (v *Vital) Mitigations() []string { return v.mitigations.Names() }

// ApplyDamage resolves a hit: raw amount from opts, folded through mitigations,
// then added to accumulated damage clamped into [0, max]. Over-mitigated hits
// produce negative final damage and reduce the accumulated damage.
func (v *Vital) ApplyDamage(opts DamageOptions) (DamageResult, error) {
	if err := ValidateDamage(opts); err != nil {
		return DamageResult{}, err
	}

	limit := v.stat.Max()
	incoming := rawDamage(opts, v.Current(), limit)
	final := v.mitigations.Apply(incoming)

	before := v.damage
	v.damage = clampDamage(before+final, limit)

	res := DamageResult{
		Stat:            v.stat.Name(),
		Source:          opts.Source,
		Incoming:        incoming,
		Final:           final,
		IncomingPercent: percentOf(incoming, limit),
		FinalPercent:    percentOf(final, limit),
		DamageBefore:    before,
		DamageAfter:     v.damage,
	}
	if v.onDamage != nil {
		v.onDamage(res)
	}
	return res, nil
}

// Heal removes up to opts.Amount accumulated damage, floored at zero.
func (v *Vital) Heal(opts HealOptions) (HealResult, error) {
	if err := ValidateHeal(opts); err != nil {
		return HealResult{}, err
	}

	before := v.damage
	v.damage = max(before-opts.Amount, 0)
	healed := before - v.damage

	res := HealResult{
		Stat:         v.stat.Name(),
		Source:       opts.Source,
		Amount:       healed,
		Percent:      percentOf(healed, v.stat.Max()),
		DamageBefore: before,
		DamageAfter:  v.damage,
	}
	if v.onHeal != nil {
		v.onHeal(res)
	}
	return res, nil
}

// Restore sets accumulated damage without callbacks.
func (v *Vital) Restore(damage int) {
	v.damage = clampDamage(damage, v.stat.Max())
}

func clampDamage(d, limit int) int {
	return min(max(d, 0), max(limit, 0))
}
