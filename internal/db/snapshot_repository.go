package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/statcore/internal/model"
)

var ErrSnapshotNotFound = errors.New("snapshot not found")

// SnapshotRepository хранит снапшоты сущностей в PostgreSQL.
// На одну сущность хранится один снапшот; повторное сохранение перезаписывает предыдущий.
type SnapshotRepository struct {
	db *pgxpool.Pool
}

// NewSnapshotRepository создаёт новый SnapshotRepository.
func NewSnapshotRepository(db *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Save сохраняет снапшот целиком (полная перезапись) в одной транзакции.
func (r *SnapshotRepository) Save(ctx context.Context, s model.Snapshot) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.Exec(ctx,
		`INSERT INTO entity_snapshots (entity_id, taken_at, saved_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (entity_id) DO UPDATE SET taken_at = $2, saved_at = now()`,
		s.EntityID, s.TakenAt,
	); err != nil {
		return fmt.Errorf("upserting snapshot %s: %w", s.EntityID, err)
	}

	// Дочерние строки перезаписываем полностью
	for _, table := range []string{"snapshot_stats", "snapshot_links", "snapshot_vitals", "snapshot_tracks"} {
		if _, err := tx.Exec(ctx, `DELETE FROM `+table+` WHERE entity_id = $1`, s.EntityID); err != nil {
			return fmt.Errorf("clearing %s for %s: %w", table, s.EntityID, err)
		}
	}

	batch := &pgx.Batch{}
	for i, st := range s.Stats {
		batch.Queue(
			`INSERT INTO snapshot_stats (entity_id, position, name, base, apparent, modifiers)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			s.EntityID, i, st.Name, st.Base, st.Apparent, st.Modifiers,
		)
	}
	for i, l := range s.Links {
		batch.Queue(
			`INSERT INTO snapshot_links (entity_id, position, source, dependent, ratio)
			 VALUES ($1, $2, $3, $4, $5)`,
			s.EntityID, i, l.Source, l.Dependent, l.Ratio,
		)
	}
	for i, v := range s.Vitals {
		batch.Queue(
			`INSERT INTO snapshot_vitals (entity_id, position, stat, damage, mitigations)
			 VALUES ($1, $2, $3, $4, $5)`,
			s.EntityID, i, v.Stat, v.Damage, v.Mitigations,
		)
	}
	for i, t := range s.Tracks {
		batch.Queue(
			`INSERT INTO snapshot_tracks (entity_id, position, name, points)
			 VALUES ($1, $2, $3, $4)`,
			s.EntityID, i, t.Name, t.Points,
		)
	}

	if batch.Len() > 0 {
		br := tx.SendBatch(ctx, batch)
		for range batch.Len() {
			if _, err := br.Exec(); err != nil {
				br.Close() //nolint:errcheck
				return fmt.Errorf("saving snapshot rows for %s: %w", s.EntityID, err)
			}
		}
		if err := br.Close(); err != nil {
			return fmt.Errorf("closing snapshot batch: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing snapshot %s: %w", s.EntityID, err)
	}
	return nil
}

// Load загружает снапшот сущности.
// Возвращает ErrSnapshotNotFound, если снапшот не сохранялся.
func (r *SnapshotRepository) Load(ctx context.Context, entityID string) (model.Snapshot, error) {
	s := model.Snapshot{EntityID: entityID}

	err := r.db.QueryRow(ctx,
		`SELECT taken_at FROM entity_snapshots WHERE entity_id = $1`, entityID,
	).Scan(&s.TakenAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Snapshot{}, fmt.Errorf("entity %s: %w", entityID, ErrSnapshotNotFound)
	}
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("querying snapshot %s: %w", entityID, err)
	}
	s.TakenAt = s.TakenAt.UTC()

	if s.Stats, err = r.loadStats(ctx, entityID); err != nil {
		return model.Snapshot{}, err
	}
	if s.Links, err = r.loadLinks(ctx, entityID); err != nil {
		return model.Snapshot{}, err
	}
	if s.Vitals, err = r.loadVitals(ctx, entityID); err != nil {
		return model.Snapshot{}, err
	}
	if s.Tracks, err = r.loadTracks(ctx, entityID); err != nil {
		return model.Snapshot{}, err
	}
	return s, nil
}

// Delete удаляет снапшот вместе с дочерними строками.
func (r *SnapshotRepository) Delete(ctx context.Context, entityID string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM entity_snapshots WHERE entity_id = $1`, entityID)
	if err != nil {
		return false, fmt.Errorf("deleting snapshot %s: %w", entityID, err)
	}
	return tag.RowsAffected() > 0, nil
}

// EntityIDs возвращает идентификаторы всех сохранённых сущностей.
func (r *SnapshotRepository) EntityIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT entity_id FROM entity_snapshots ORDER BY entity_id`)
	if err != nil {
		return nil, fmt.Errorf("querying snapshot ids: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("collecting snapshot ids: %w", err)
	}
	return ids, nil
}

func (r *SnapshotRepository) loadStats(ctx context.Context, entityID string) ([]model.StatState, error) {
	rows, err := r.db.Query(ctx,
		`SELECT name, base, apparent, modifiers
		 FROM snapshot_stats WHERE entity_id = $1 ORDER BY position`, entityID)
	if err != nil {
		return nil, fmt.Errorf("querying stats for %s: %w", entityID, err)
	}
	defer rows.Close()

	var out []model.StatState
	for rows.Next() {
		var st model.StatState
		if err := rows.Scan(&st.Name, &st.Base, &st.Apparent, &st.Modifiers); err != nil {
			return nil, fmt.Errorf("scanning stat row: %w", err)
		}
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating stat rows: %w", err)
	}
	return out, nil
}

func (r *SnapshotRepository) loadLinks(ctx context.Context, entityID string) ([]model.LinkState, error) {
	rows, err := r.db.Query(ctx,
		`SELECT source, dependent, ratio
		 FROM snapshot_links WHERE entity_id = $1 ORDER BY position`, entityID)
	if err != nil {
		return nil, fmt.Errorf("querying links for %s: %w", entityID, err)
	}
	defer rows.Close()

	var out []model.LinkState
	for rows.Next() {
		var l model.LinkState
		if err := rows.Scan(&l.Source, &l.Dependent, &l.Ratio); err != nil {
			return nil, fmt.Errorf("scanning link row: %w", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating link rows: %w", err)
	}
	return out, nil
}

func (r *SnapshotRepository) loadVitals(ctx context.Context, entityID string) ([]model.VitalState, error) {
	rows, err := r.db.Query(ctx,
		`SELECT stat, damage, mitigations
		 FROM snapshot_vitals WHERE entity_id = $1 ORDER BY position`, entityID)
	if err != nil {
		return nil, fmt.Errorf("querying vitals for %s: %w", entityID, err)
	}
	defer rows.Close()

	var out []model.VitalState
	for rows.Next() {
		var v model.VitalState
		if err := rows.Scan(&v.Stat, &v.Damage, &v.Mitigations); err != nil {
			return nil, fmt.Errorf("scanning vital row: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating vital rows: %w", err)
	}
	return out, nil
}

func (r *SnapshotRepository) loadTracks(ctx context.Context, entityID string) ([]model.TrackState, error) {
	rows, err := r.db.Query(ctx,
		`SELECT name, points
		 FROM snapshot_tracks WHERE entity_id = $1 ORDER BY position`, entityID)
	if err != nil {
		return nil, fmt.Errorf("querying tracks for %s: %w", entityID, err)
	}
	defer rows.Close()

	var out []model.TrackState
	for rows.Next() {
		var t model.TrackState
		if err := rows.Scan(&t.Name, &t.Points); err != nil {
			return nil, fmt.Errorf("scanning track row: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating track rows: %w", err)
	}
	return out, nil
}
