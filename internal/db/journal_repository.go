package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/overworld/internal/journal"
	"github.com/udisondev/overworld/internal/model"
)

var journalColumns = []string{
	"at", "kind", "map_id", "entity_id", "species", "level",
	"shiny", "tags", "outcome", "episode", "count",
}

// JournalRepository stores encounter journal entries.
type JournalRepository struct {
	pool *pgxpool.Pool
}

// NewJournalRepository creates a new journal repository.
func NewJournalRepository(pool *pgxpool.Pool) *JournalRepository {
	return &JournalRepository{pool: pool}
}

// InsertBatch appends entries with a single COPY.
func (r *JournalRepository) InsertBatch(ctx context.Context, entries []journal.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []any{
			e.At,
			string(e.Kind),
			int32(e.MapID),
			int64(e.EntityID),
			string(e.Species),
			int32(e.Level),
			e.Shiny,
			int16(e.Tags),
			e.Outcome,
			pgtype.UUID{Bytes: e.Episode, Valid: e.Episode != uuid.Nil},
			int32(e.Count),
		})
	}

	_, err := r.pool.CopyFrom(ctx,
		pgx.Identifier{"encounter_journal"},
		journalColumns,
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("inserting %d journal entries: %w", len(entries), err)
	}
	return nil
}

// Recent returns the newest entries for mapID, newest first.
func (r *JournalRepository) Recent(ctx context.Context, mapID model.MapID, limit int) ([]journal.Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT at, kind, map_id, entity_id, species, level, shiny, tags, outcome, episode, count
		FROM encounter_journal
		WHERE map_id = $1
		ORDER BY at DESC, id DESC
		LIMIT $2`, int32(mapID), limit)
	if err != nil {
		return nil, fmt.Errorf("querying journal for map %d: %w", mapID, err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// Episode returns every entry of one outbreak episode in insertion order.
func (r *JournalRepository) Episode(ctx context.Context, episode uuid.UUID) ([]journal.Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT at, kind, map_id, entity_id, species, level, shiny, tags, outcome, episode, count
		FROM encounter_journal
		WHERE episode = $1
		ORDER BY id`, pgtype.UUID{Bytes: episode, Valid: true})
	if err != nil {
		return nil, fmt.Errorf("querying journal episode %s: %w", episode, err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// CountByKind aggregates entries of mapID by kind.
func (r *JournalRepository) CountByKind(ctx context.Context, mapID model.MapID) (map[journal.Kind]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT kind, count(*) FROM encounter_journal WHERE map_id = $1 GROUP BY kind`,
		int32(mapID))
	if err != nil {
		return nil, fmt.Errorf("counting journal for map %d: %w", mapID, err)
	}
	defer rows.Close()

	counts := make(map[journal.Kind]int)
	for rows.Next() {
		var (
			kind string
			n    int64
		)
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("scanning journal count: %w", err)
		}
		counts[journal.Kind(kind)] = int(n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating journal counts: %w", err)
	}
	return counts, nil
}

func scanEntries(rows pgx.Rows) ([]journal.Entry, error) {
	var entries []journal.Entry
	for rows.Next() {
		var (
			e        journal.Entry
			kind     string
			mapID    int32
			entityID int64
			species  string
			level    int32
			tags     int16
			episode  pgtype.UUID
			count    int32
		)
		if err := rows.Scan(&e.At, &kind, &mapID, &entityID, &species, &level,
			&e.Shiny, &tags, &e.Outcome, &episode, &count); err != nil {
			return nil, fmt.Errorf("scanning journal row: %w", err)
		}
		e.Kind = journal.Kind(kind)
		e.MapID = model.MapID(mapID)
		e.EntityID = model.EntityID(entityID)
		e.Species = model.Species(species)
		e.Level = int(level)
		e.Tags = model.Tag(tags)
		e.Count = int(count)
		if episode.Valid {
			e.Episode = uuid.UUID(episode.Bytes)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating journal rows: %w", err)
	}
	return entries, nil
}
