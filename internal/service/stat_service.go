package service

import (
	"github.com/udisondev/statcore/internal/config"
	"github.com/udisondev/statcore/internal/game/combat"
	"github.com/udisondev/statcore/internal/game/stat"
	"github.com/udisondev/statcore/internal/model"
)

// StatView is a read-only copy of one stat.
type StatView struct {
	Name      string
	Variation stat.Variation
	Base      int
	Apparent  int
	Min       int
	Max       int
	Modifiers []string
}

// VitalView is a read-only copy of one vital.
type VitalView struct {
	Stat        string
	Current     int
	Max         int
	Damage      int
	Depleted    bool
	Mitigations []string
}

// StatService mutates stats, modifiers, links and vitals of registered entities.
type StatService struct {
	reg *Registry
}

func NewStatService(reg *Registry) *StatService {
	return &StatService{reg: reg}
}

// AddPoints raises a stat and returns its new apparent value.
func (s *StatService) AddPoints(entityID, name string, n int) (int, error) {
	return s.points("add_points", entityID, name, func(v *stat.Value) error {
		return v.AddPoints(n)
	})
}

// RemovePoints lowers a stat and returns its new apparent value.
func (s *StatService) RemovePoints(entityID, name string, n int) (int, error) {
	return s.points("remove_points", entityID, name, func(v *stat.Value) error {
		return v.RemovePoints(n)
	})
}

// SetPoints writes a stat directly. Derived stats refuse the write and report false.
func (s *StatService) SetPoints(entityID, name string, n int) (bool, error) {
	var applied bool
	err := s.reg.with(entityID, func(e *model.Entity) error {
		v, err := e.Stat(name)
		if err != nil {
			return invalid("set_points", entityID, name, err)
		}
		applied = v.SetPoints(n)
		return nil
	})
	return applied, err
}

// AddModifier attaches a named effect, replacing one with the same name.
func (s *StatService) AddModifier(entityID, name, modifier string, effect stat.Effect) error {
	_, err := s.points("add_modifier", entityID, name, func(v *stat.Value) error {
		v.AddModifier(modifier, effect)
		return nil
	})
	return err
}

// RemoveModifier detaches a named effect. Missing modifiers report false.
func (s *StatService) RemoveModifier(entityID, name, modifier string) (bool, error) {
	var removed bool
	_, err := s.points("remove_modifier", entityID, name, func(v *stat.Value) error {
		removed = v.RemoveModifier(modifier)
		return nil
	})
	return removed, err
}

// LinkStats makes dependent follow source scaled by ratio.
func (s *StatService) LinkStats(entityID, source, dependent string, ratio float64) error {
	return s.reg.with(entityID, func(e *model.Entity) error {
		return invalid("link", entityID, source, e.Link(source, dependent, ratio))
	})
}

// UnlinkStats removes a link. Missing links report false.
func (s *StatService) UnlinkStats(entityID, source, dependent string) (bool, error) {
	var removed bool
	err := s.reg.with(entityID, func(e *model.Entity) error {
		var err error
		removed, err = e.Unlink(source, dependent)
		return invalid("unlink", entityID, source, err)
	})
	return removed, err
}

// ApplyDamage resolves a hit against a vital.
func (s *StatService) ApplyDamage(entityID, vital string, opts combat.DamageOptions) (combat.DamageResult, error) {
	var res combat.DamageResult
	err := s.withVital("apply_damage", entityID, vital, func(v *combat.Vital) error {
		var err error
		res, err = v.ApplyDamage(opts)
		return err
	})
	return res, err
}

// Heal removes accumulated damage from a vital.
func (s *StatService) Heal(entityID, vital string, opts combat.HealOptions) (combat.HealResult, error) {
	var res combat.HealResult
	err := s.withVital("heal", entityID, vital, func(v *combat.Vital) error {
		var err error
		res, err = v.Heal(opts)
		return err
	})
	return res, err
}

// AddMitigation registers a mitigation on a vital.
func (s *StatService) AddMitigation(entityID, vital string, def config.MitigationDefinition) error {
	return s.reg.with(entityID, func(e *model.Entity) error {
		return invalid("add_mitigation", entityID, vital, e.AddMitigation(vital, def))
	})
}

// RemoveMitigation drops a mitigation from a vital.
func (s *StatService) RemoveMitigation(entityID, vital, name string) (bool, error) {
	var removed bool
	err := s.reg.with(entityID, func(e *model.Entity) error {
		var err error
		removed, err = e.RemoveMitigation(vital, name)
		return invalid("remove_mitigation", entityID, vital, err)
	})
	return removed, err
}

// Stat returns a copy of one stat.
func (s *StatService) Stat(entityID, name string) (StatView, error) {
	var view StatView
	err := s.reg.with(entityID, func(e *model.Entity) error {
		v, err := e.Stat(name)
		if err != nil {
			return invalid("stat", entityID, name, err)
		}
		view = statView(v)
		return nil
	})
	return view, err
}

// Stats returns copies of every stat in definition order.
func (s *StatService) Stats(entityID string) ([]StatView, error) {
	var views []StatView
	err := s.reg.with(entityID, func(e *model.Entity) error {
		for _, v := range e.Sheet().Values() {
			views = append(views, statView(v))
		}
		return nil
	})
	return views, err
}

// Vital returns a copy of one vital.
func (s *StatService) Vital(entityID, name string) (VitalView, error) {
	var view VitalView
	err := s.withVital("vital", entityID, name, func(v *combat.Vital) error {
		view = VitalView{
			Stat:        v.Stat().Name(),
			Current:     v.Current(),
			Max:         v.Stat().Max(),
			Damage:      v.Damage(),
			Depleted:    v.IsDepleted(),
			Mitigations: v.Mitigations(),
		}
		return nil
	})
	return view, err
}

func (s *StatService) points(op, entityID, name string, fn func(*stat.Value) error) (int, error) {
	var apparent int
	err := s.reg.with(entityID, func(e *model.Entity) error {
		v, err := e.Stat(name)
		if err != nil {
			return invalid(op, entityID, name, err)
		}
		if err := fn(v); err != nil {
			return invalid(op, entityID, name, err)
		}
		apparent = v.Apparent()
		return nil
	})
	return apparent, err
}

func (s *StatService) withVital(op, entityID, name string, fn func(*combat.Vital) error) error {
	return s.reg.with(entityID, func(e *model.Entity) error {
		v, err := e.Vital(name)
		if err != nil {
			return invalid(op, entityID, name, err)
		}
		return invalid(op, entityID, name, fn(v))
	})
}

func statView(v *stat.Value) StatView {
	view := StatView{
		Name:      v.Name(),
		Variation: v.Variation(),
		Base:      v.Base(),
		Apparent:  v.Apparent(),
		Min:       v.Min(),
		Max:       v.Max(),
	}
	for _, m := range v.Modifiers() {
		view.Modifiers = append(view.Modifiers, m.Name)
	}
	return view
}
