package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/statcore/internal/config"
	"github.com/udisondev/statcore/internal/game/combat"
	"github.com/udisondev/statcore/internal/game/leveling"
	"github.com/udisondev/statcore/internal/game/stat"
)

func newTestEntity(t *testing.T) *Entity {
	t.Helper()
	e, err := NewEntity("hero", config.DefaultBlueprint(), config.DefaultEngine())
	require.NoError(t, err)
	return e
}

func apparent(t *testing.T, e *Entity, name string) int {
	t.Helper()
	v, err := e.Stat(name)
	require.NoError(t, err)
	return v.Apparent()
}

func TestNewEntity_FromBlueprint(t *testing.T) {
	e := newTestEntity(t)

	assert.Equal(t, "hero", e.ID())
	assert.Equal(t, 4, e.Sheet().Len())
	assert.Len(t, e.Sheet().Links(), 2)

	vital, err := e.Vital("health")
	require.NoError(t, err)
	assert.Equal(t, []string{"armor", "resist"}, vital.Mitigations())
	assert.Equal(t, 100, vital.Current())

	track, err := e.Track("character")
	require.NoError(t, err)
	assert.Equal(t, 1, track.Level())
	assert.Equal(t, leveling.CurveExponential, track.Curve().Type)

	_, err = e.Vital("mana")
	assert.ErrorIs(t, err, ErrUnknownVital)
	_, err = e.Track("fishing")
	assert.ErrorIs(t, err, ErrUnknownTrack)
	_, err = e.Stat("luck")
	assert.ErrorIs(t, err, stat.ErrUnknownStat)
}

func TestNewEntity_InvalidBlueprint(t *testing.T) {
	bp := config.Blueprint{Stats: []config.StatDefinition{{Name: "x", Variation: "odd"}}}
	_, err := NewEntity("bad", bp, config.DefaultEngine())
	assert.Error(t, err)
}

func TestEntity_LinksPropagate(t *testing.T) {
	e := newTestEntity(t)

	con, err := e.Stat("constitution")
	require.NoError(t, err)
	require.NoError(t, con.AddPoints(2))
	assert.Equal(t, 120, apparent(t, e, "health"))

	str, err := e.Stat("strength")
	require.NoError(t, err)
	require.NoError(t, str.AddPoints(4))
	assert.Equal(t, 7, apparent(t, e, "attack"))

	removed, err := e.Unlink("strength", "attack")
	require.NoError(t, err)
	assert.True(t, removed)
	require.NoError(t, str.AddPoints(4))
	assert.Equal(t, 7, apparent(t, e, "attack"))

	_, err = e.Unlink("strength", "nope")
	assert.ErrorIs(t, err, stat.ErrUnknownStat)
}

func TestEntity_BoundTrackPaysStatPoints(t *testing.T) {
	e := newTestEntity(t)

	var order []string
	e.SetObserver(Observer{
		OnLevel:  func(c leveling.LevelChange) { order = append(order, "level:"+c.Track) },
		OnChange: func(c stat.Change) { order = append(order, "stat:"+c.Name) },
	})

	track, err := e.Track("character")
	require.NoError(t, err)
	require.NoError(t, track.AddPoints(110))

	assert.Equal(t, 3, track.Level())
	assert.Equal(t, 12, apparent(t, e, "strength"))
	assert.Equal(t, 6, apparent(t, e, "attack"))
	assert.Equal(t, []string{"level:character", "stat:strength", "stat:attack"}, order)

	// losing levels keeps the points already paid
	require.NoError(t, track.SetPoints(0))
	assert.Equal(t, 1, track.Level())
	assert.Equal(t, 12, apparent(t, e, "strength"))
}

func TestEntity_VitalDamageThroughMitigations(t *testing.T) {
	e := newTestEntity(t)

	var hits []combat.DamageResult
	e.SetObserver(Observer{OnDamage: func(r combat.DamageResult) { hits = append(hits, r) }})

	vital, err := e.Vital("health")
	require.NoError(t, err)

	res, err := vital.ApplyDamage(combat.FlatDamage(20, "test"))
	require.NoError(t, err)

	// 20 - 2 armor = 18, minus 10% truncated = 17
	assert.Equal(t, 17, res.Final)
	assert.Equal(t, 83, vital.Current())
	require.Len(t, hits, 1)
}

func TestEntity_Mitigations(t *testing.T) {
	e := newTestEntity(t)

	require.NoError(t, e.AddMitigation("health", config.MitigationDefinition{Name: "cap", Kind: "cap", Priority: 30, Amount: 5}))
	vital, err := e.Vital("health")
	require.NoError(t, err)
	assert.Equal(t, []string{"armor", "resist", "cap"}, vital.Mitigations())

	removed, err := e.RemoveMitigation("health", "armor")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, []string{"resist", "cap"}, vital.Mitigations())

	removed, err = e.RemoveMitigation("health", "armor")
	require.NoError(t, err)
	assert.False(t, removed)

	err = e.AddMitigation("health", config.MitigationDefinition{Name: "x", Kind: "weird"})
	assert.ErrorIs(t, err, config.ErrUnknownKind)

	err = e.AddMitigation("mana", config.MitigationDefinition{Name: "x", Kind: "flat"})
	assert.ErrorIs(t, err, ErrUnknownVital)
}

func TestEntity_SnapshotRestore(t *testing.T) {
	src := newTestEntity(t)

	str, err := src.Stat("strength")
	require.NoError(t, err)
	require.NoError(t, str.AddPoints(6))

	atk, err := src.Stat("attack")
	require.NoError(t, err)
	atk.AddModifier("sword", stat.Effect{FlatAmount: 3, IsPositive: true, IsAdditive: true})

	require.NoError(t, src.Link("constitution", "attack", 1))
	require.NoError(t, src.AddMitigation("health", config.MitigationDefinition{Name: "cap", Kind: "cap", Priority: 30, Amount: 50}))

	vital, err := src.Vital("health")
	require.NoError(t, err)
	_, err = vital.ApplyDamage(combat.FlatDamage(30, "test"))
	require.NoError(t, err)

	track, err := src.Track("character")
	require.NoError(t, err)
	require.NoError(t, track.AddPoints(50))

	snap := src.Snapshot()

	dst := newTestEntity(t)
	var notified int
	dst.SetObserver(Observer{OnChange: func(stat.Change) { notified++ }})
	require.NoError(t, dst.Restore(snap))

	got := dst.Snapshot()
	got.TakenAt = snap.TakenAt
	assert.Equal(t, snap, got)
	assert.Zero(t, notified)

	assert.Equal(t, 11, apparent(t, dst, "attack"))
	restored, err := dst.Vital("health")
	require.NoError(t, err)
	assert.Equal(t, vital.Damage(), restored.Damage())

	// restored link is live
	con, err := dst.Stat("constitution")
	require.NoError(t, err)
	require.NoError(t, con.AddPoints(1))
	assert.Equal(t, 12, apparent(t, dst, "attack"))
}

func TestEntity_RestoreUnknownStat(t *testing.T) {
	e := newTestEntity(t)
	err := e.Restore(Snapshot{Stats: []StatState{{Name: "ghost"}}})
	assert.ErrorIs(t, err, stat.ErrUnknownStat)
}

func TestEntity_FailedRestoreLeavesStateUntouched(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Snapshot)
		want   error
	}{
		{"unknown link stat", func(s *Snapshot) {
			s.Links = append(s.Links, LinkState{Source: "strength", Dependent: "ghost", Ratio: 1})
		}, stat.ErrUnknownStat},
		{"self link", func(s *Snapshot) {
			s.Links = append(s.Links, LinkState{Source: "strength", Dependent: "strength", Ratio: 1})
		}, stat.ErrSelfLink},
		{"duplicate link", func(s *Snapshot) {
			s.Links = append(s.Links, s.Links[0])
		}, stat.ErrAlreadyLinked},
		{"unknown vital", func(s *Snapshot) {
			s.Vitals = append(s.Vitals, VitalState{Stat: "mana"})
		}, ErrUnknownVital},
		{"bad mitigation", func(s *Snapshot) {
			s.Vitals[0].Mitigations = append(s.Vitals[0].Mitigations, config.MitigationDefinition{Name: "x", Kind: "weird"})
		}, config.ErrUnknownKind},
		{"unknown track", func(s *Snapshot) {
			s.Tracks = append(s.Tracks, TrackState{Name: "ghost", Points: 1})
		}, ErrUnknownTrack},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := newTestEntity(t).Snapshot()
			tt.mutate(&snap)

			e := newTestEntity(t)
			str, err := e.Stat("strength")
			require.NoError(t, err)
			require.NoError(t, str.AddPoints(5))
			require.NoError(t, e.AddMitigation("health", config.MitigationDefinition{Name: "cap", Kind: "cap", Priority: 30, Amount: 50}))
			hp, err := e.Vital("health")
			require.NoError(t, err)
			_, err = hp.ApplyDamage(combat.FlatDamage(20, "test"))
			require.NoError(t, err)
			before := e.Snapshot()

			err = e.Restore(snap)
			require.ErrorIs(t, err, tt.want)

			after := e.Snapshot()
			after.TakenAt = before.TakenAt
			assert.Equal(t, before, after)
			assert.Equal(t, 15, apparent(t, e, "strength"))
			assert.Equal(t, []string{"armor", "resist", "cap"}, hp.Mitigations())
		})
	}
}
