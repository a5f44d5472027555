package scenario

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/statcore/internal/game/combat"
	"github.com/udisondev/statcore/internal/service"
)

// StepFailure records a step that was rejected while StopOnError was off.
type StepFailure struct {
	Index int
	Op    Op
	Err   error
}

// EntityReport summarizes the run of one entity.
type EntityReport struct {
	ID       string
	Applied  int
	Failures []StepFailure
}

// Report summarizes a run, one entry per script entity in declaration order.
type Report struct {
	Entities []EntityReport
}

// Failed returns the total number of failed steps.
func (r Report) Failed() int {
	n := 0
	for _, e := range r.Entities {
		n += len(e.Failures)
	}
	return n
}

// Runner executes scripts against the services.
type Runner struct {
	reg      *service.Registry
	stats    *service.StatService
	leveling *service.LevelingService
}

func NewRunner(reg *service.Registry, stats *service.StatService, leveling *service.LevelingService) *Runner {
	return &Runner{reg: reg, stats: stats, leveling: leveling}
}

// Run spawns the script entities that are not registered yet and applies the
// steps: one goroutine per entity, steps of an entity in script order.
func (r *Runner) Run(ctx context.Context, s Script) (Report, error) {
	if err := s.Validate(); err != nil {
		return Report{}, err
	}

	registered := make(map[string]struct{})
	for _, id := range r.reg.IDs() {
		registered[id] = struct{}{}
	}
	for _, id := range s.Entities {
		if _, ok := registered[id]; ok {
			continue
		}
		if err := r.reg.Spawn(id); err != nil {
			return Report{}, err
		}
		registered[id] = struct{}{}
	}

	type indexed struct {
		index int
		step  Step
	}
	perEntity := make(map[string][]indexed, len(s.Entities))
	for i, st := range s.Steps {
		perEntity[st.Entity] = append(perEntity[st.Entity], indexed{index: i, step: st})
	}

	report := Report{Entities: make([]EntityReport, len(s.Entities))}
	g, ctx := errgroup.WithContext(ctx)
	for n, id := range s.Entities {
		report.Entities[n].ID = id
		steps := perEntity[id]
		g.Go(func() error {
			er := &report.Entities[n]
			for _, is := range steps {
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := r.apply(is.step); err != nil {
					if s.StopOnError {
						return fmt.Errorf("entity %s step %d (%s): %w", id, is.index, is.step.Op, err)
					}
					slog.Warn("scenario step failed",
						"entity", id,
						"step", is.index,
						"op", string(is.step.Op),
						"error", err)
					er.Failures = append(er.Failures, StepFailure{Index: is.index, Op: is.step.Op, Err: err})
					continue
				}
				er.Applied++
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return report, err
	}
	slog.Info("scenario finished",
		"entities", len(s.Entities),
		"steps", len(s.Steps),
		"failed", report.Failed())
	return report, nil
}

func (r *Runner) apply(st Step) error {
	var err error
	switch st.Op {
	case OpAddPoints:
		_, err = r.stats.AddPoints(st.Entity, st.Stat, st.Amount)
	case OpRemovePoints:
		_, err = r.stats.RemovePoints(st.Entity, st.Stat, st.Amount)
	case OpSetPoints:
		_, err = r.stats.SetPoints(st.Entity, st.Stat, st.Amount)
	case OpAddModifier:
		err = r.stats.AddModifier(st.Entity, st.Stat, st.Name, st.Effect.Effect())
	case OpRemoveModifier:
		_, err = r.stats.RemoveModifier(st.Entity, st.Stat, st.Name)
	case OpLink:
		err = r.stats.LinkStats(st.Entity, st.Stat, st.Target, st.Ratio)
	case OpUnlink:
		_, err = r.stats.UnlinkStats(st.Entity, st.Stat, st.Target)
	case OpDamage:
		_, err = r.stats.ApplyDamage(st.Entity, st.Stat, combat.DamageOptions{
			Flat:             st.Flat,
			PercentOfCurrent: st.PercentOfCurrent,
			PercentOfMax:     st.PercentOfMax,
			Source:           st.Source,
		})
	case OpHeal:
		_, err = r.stats.Heal(st.Entity, st.Stat, combat.HealOptions{Amount: st.Amount, Source: st.Source})
	case OpAddMitigation:
		err = r.stats.AddMitigation(st.Entity, st.Stat, st.Mitigation)
	case OpRemoveMitigation:
		_, err = r.stats.RemoveMitigation(st.Entity, st.Stat, st.Name)
	case OpAddExperience:
		_, err = r.leveling.AddPoints(st.Entity, st.Track, st.Amount)
	case OpSetExperience:
		_, err = r.leveling.SetPoints(st.Entity, st.Track, st.Amount)
	default:
		err = fmt.Errorf("%q: %w", st.Op, ErrUnknownOp)
	}
	return err
}
