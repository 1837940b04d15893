package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SF-XIV/VisibilityPluginPlus/internal/config"
	"github.com/SF-XIV/VisibilityPluginPlus/internal/model"
	"github.com/SF-XIV/VisibilityPluginPlus/internal/voidlist"
)

// ListRepository stores void list and whitelist entries keyed by identity.
// Implements voidlist.Store.
type ListRepository struct {
	db *pgxpool.Pool
}

var _ voidlist.Store = (*ListRepository)(nil)

// NewListRepository creates a new ListRepository.
func NewListRepository(db *pgxpool.Pool) *ListRepository {
	return &ListRepository{db: db}
}

// LoadByKind returns all entries of one list ordered by name.
func (r *ListRepository) LoadByKind(ctx context.Context, kind voidlist.Kind) ([]config.ListEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT name, home_world, object_id, reason, manual
		FROM list_entries
		WHERE list = $1
		ORDER BY name, home_world
	`, kind.String())
	if err != nil {
		return nil, fmt.Errorf("querying %s list: %w", kind, err)
	}
	defer rows.Close()

	var result []config.ListEntry
	for rows.Next() {
		var (
			e         config.ListEntry
			homeWorld int32
			objectID  int64
		)
		if err := rows.Scan(&e.Name, &homeWorld, &objectID, &e.Reason, &e.Manual); err != nil {
			return nil, fmt.Errorf("scanning %s list row: %w", kind, err)
		}
		e.HomeWorld = model.WorldID(homeWorld)
		e.ObjectID = model.EntityID(objectID)
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s list rows: %w", kind, err)
	}
	return result, nil
}

// SaveListEntry upserts one entry. Called by voidlist.Manager.Flush when the
// last-seen object id of an entry changed.
func (r *ListRepository) SaveListEntry(ctx context.Context, kind voidlist.Kind, entry config.ListEntry) error {
	key := voidlist.IdentityKey(entry.Name, entry.HomeWorld)
	_, err := r.db.Exec(ctx, `
		INSERT INTO list_entries (list, identity_key, name, home_world, object_id, reason, manual, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		ON CONFLICT (list, identity_key) DO UPDATE
		SET name = EXCLUDED.name,
		    object_id = EXCLUDED.object_id,
		    reason = EXCLUDED.reason,
		    manual = EXCLUDED.manual,
		    updated_at = now()
	`, kind.String(), key.String(), entry.Name, int32(entry.HomeWorld), int64(entry.ObjectID), entry.Reason, entry.Manual)
	if err != nil {
		return fmt.Errorf("upserting %s entry %q: %w", kind, entry.Name, err)
	}

	slog.Debug("saved list entry", "list", kind, "name", entry.Name, "object_id", entry.ObjectID)
	return nil
}

// DeleteListEntry removes one entry. Returns false if it did not exist.
func (r *ListRepository) DeleteListEntry(ctx context.Context, kind voidlist.Kind, name string, world model.WorldID) (bool, error) {
	key := voidlist.IdentityKey(name, world)
	tag, err := r.db.Exec(ctx,
		`DELETE FROM list_entries WHERE list = $1 AND identity_key = $2`,
		kind.String(), key.String())
	if err != nil {
		return false, fmt.Errorf("deleting %s entry %q: %w", kind, name, err)
	}
	return tag.RowsAffected() > 0, nil
}

// SaveTx replaces the whole list inside tx (delete + bulk insert).
func (r *ListRepository) SaveTx(ctx context.Context, tx pgx.Tx, kind voidlist.Kind, entries []config.ListEntry) error {
	if _, err := tx.Exec(ctx, `DELETE FROM list_entries WHERE list = $1`, kind.String()); err != nil {
		return fmt.Errorf("deleting %s list: %w", kind, err)
	}
	if len(entries) == 0 {
		return nil
	}

	seen := make(map[voidlist.Key]struct{}, len(entries))
	rows := make([][]any, 0, len(entries))
	for _, e := range entries {
		key := voidlist.IdentityKey(e.Name, e.HomeWorld)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		rows = append(rows, []any{
			kind.String(),
			key.String(),
			e.Name,
			int32(e.HomeWorld),
			int64(e.ObjectID),
			e.Reason,
			e.Manual,
		})
	}

	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"list_entries"},
		[]string{"list", "identity_key", "name", "home_world", "object_id", "reason", "manual"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("inserting %s list: %w", kind, err)
	}
	return nil
}
