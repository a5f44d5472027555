package service

import (
	"github.com/udisondev/statcore/internal/game/leveling"
	"github.com/udisondev/statcore/internal/model"
)

// TrackView is a read-only copy of one leveling track.
type TrackView struct {
	Name              string
	Level             int
	MaxLevel          int
	Points            int
	PointsToNextLevel int
	Progress          float64
	IsMaxLevel        bool
}

// LevelingService feeds points into leveling tracks of registered entities.
type LevelingService struct {
	reg *Registry
}

func NewLevelingService(reg *Registry) *LevelingService {
	return &LevelingService{reg: reg}
}

// AddPoints accumulates points on a track and returns its state afterwards.
func (s *LevelingService) AddPoints(entityID, track string, n int) (TrackView, error) {
	return s.mutate("add_experience", entityID, track, func(t *leveling.Track) error {
		return t.AddPoints(n)
	})
}

// SetPoints replaces the points of a track and returns its state afterwards.
func (s *LevelingService) SetPoints(entityID, track string, n int) (TrackView, error) {
	return s.mutate("set_experience", entityID, track, func(t *leveling.Track) error {
		return t.SetPoints(n)
	})
}

// Track returns the state of one track.
func (s *LevelingService) Track(entityID, track string) (TrackView, error) {
	return s.mutate("track", entityID, track, func(*leveling.Track) error { return nil })
}

// Tracks returns every track of an entity in blueprint order.
func (s *LevelingService) Tracks(entityID string) ([]TrackView, error) {
	var views []TrackView
	err := s.reg.with(entityID, func(e *model.Entity) error {
		for _, t := range e.Tracks() {
			views = append(views, trackView(t))
		}
		return nil
	})
	return views, err
}

func (s *LevelingService) mutate(op, entityID, name string, fn func(*leveling.Track) error) (TrackView, error) {
	var view TrackView
	err := s.reg.with(entityID, func(e *model.Entity) error {
		t, err := e.Track(name)
		if err != nil {
			return invalid(op, entityID, name, err)
		}
		if err := fn(t); err != nil {
			return invalid(op, entityID, name, err)
		}
		view = trackView(t)
		return nil
	})
	return view, err
}

func trackView(t *leveling.Track) TrackView {
	return TrackView{
		Name:              t.Name(),
		Level:             t.Level(),
		MaxLevel:          t.MaxLevel(),
		Points:            t.Points(),
		PointsToNextLevel: t.PointsToNextLevel(),
		Progress:          t.Progress(),
		IsMaxLevel:        t.IsMaxLevel(),
	}
}
