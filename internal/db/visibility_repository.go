package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SF-XIV/VisibilityPluginPlus/internal/config"
	"github.com/SF-XIV/VisibilityPluginPlus/internal/model"
	"github.com/SF-XIV/VisibilityPluginPlus/internal/voidlist"
)

// VisibilityRepository stores the visibility configuration: master switches,
// the bound-territory whitelist and per-territory rule bundles.
type VisibilityRepository struct {
	db    *pgxpool.Pool
	lists *ListRepository
}

// NewVisibilityRepository creates a new VisibilityRepository.
func NewVisibilityRepository(db *pgxpool.Pool) *VisibilityRepository {
	return &VisibilityRepository{db: db, lists: NewListRepository(db)}
}

// Lists returns the list entry repository sharing the same pool.
func (r *VisibilityRepository) Lists() *ListRepository {
	return r.lists
}

// Load reads the full configuration. An empty database yields defaults.
func (r *VisibilityRepository) Load(ctx context.Context) (config.Visibility, error) {
	v := config.DefaultVisibility()

	var defaultJSON []byte
	err := r.db.QueryRow(ctx,
		`SELECT enabled, advanced_enabled, default_config FROM visibility_settings WHERE id = 1`,
	).Scan(&v.Enabled, &v.AdvancedEnabled, &defaultJSON)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		slog.Debug("no stored visibility settings, using defaults")
	case err != nil:
		return v, fmt.Errorf("querying visibility settings: %w", err)
	default:
		if err := json.Unmarshal(defaultJSON, &v.Default); err != nil {
			return v, fmt.Errorf("decoding default territory config: %w", err)
		}
	}

	if v.TerritoryTypeWhitelist, err = r.loadWhitelist(ctx); err != nil {
		return v, err
	}
	if v.Territories, err = r.loadTerritories(ctx); err != nil {
		return v, err
	}
	if v.VoidList, err = r.lists.LoadByKind(ctx, voidlist.KindVoid); err != nil {
		return v, err
	}
	if v.Whitelist, err = r.lists.LoadByKind(ctx, voidlist.KindWhitelist); err != nil {
		return v, err
	}

	return v, nil
}

func (r *VisibilityRepository) loadWhitelist(ctx context.Context) ([]model.TerritoryID, error) {
	rows, err := r.db.Query(ctx, `SELECT territory_type FROM territory_whitelist ORDER BY territory_type`)
	if err != nil {
		return nil, fmt.Errorf("querying territory whitelist: %w", err)
	}
	defer rows.Close()

	result := make([]model.TerritoryID, 0, 16)
	for rows.Next() {
		var id int32
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning territory whitelist row: %w", err)
		}
		result = append(result, model.TerritoryID(id))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating territory whitelist rows: %w", err)
	}
	return result, nil
}

func (r *VisibilityRepository) loadTerritories(ctx context.Context) (map[model.TerritoryID]config.TerritoryConfig, error) {
	rows, err := r.db.Query(ctx, `SELECT territory_type, config FROM territory_configs`)
	if err != nil {
		return nil, fmt.Errorf("querying territory configs: %w", err)
	}
	defer rows.Close()

	result := make(map[model.TerritoryID]config.TerritoryConfig, 32)
	for rows.Next() {
		var (
			id  int32
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("scanning territory config row: %w", err)
		}
		var tc config.TerritoryConfig
		if err := json.Unmarshal(raw, &tc); err != nil {
			return nil, fmt.Errorf("decoding territory config %d: %w", id, err)
		}
		tc.TerritoryType = model.TerritoryID(id)
		result[tc.TerritoryType] = tc
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating territory config rows: %w", err)
	}
	return result, nil
}

// Save writes the full configuration in a single transaction (full replace).
func (r *VisibilityRepository) Save(ctx context.Context, v config.Visibility) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction for visibility settings: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.Error("rollback failed", "error", err)
		}
	}()

	if err := r.saveSettingsTx(ctx, tx, v); err != nil {
		return err
	}
	if err := r.saveWhitelistTx(ctx, tx, v.TerritoryTypeWhitelist); err != nil {
		return err
	}
	if err := r.saveTerritoriesTx(ctx, tx, v.Territories); err != nil {
		return err
	}
	if err := r.lists.SaveTx(ctx, tx, voidlist.KindVoid, v.VoidList); err != nil {
		return err
	}
	if err := r.lists.SaveTx(ctx, tx, voidlist.KindWhitelist, v.Whitelist); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing visibility settings: %w", err)
	}

	slog.Debug("saved visibility settings",
		"territories", len(v.Territories),
		"whitelist", len(v.TerritoryTypeWhitelist),
		"void", len(v.VoidList))
	return nil
}

func (r *VisibilityRepository) saveSettingsTx(ctx context.Context, tx pgx.Tx, v config.Visibility) error {
	defaultJSON, err := json.Marshal(v.Default)
	if err != nil {
		return fmt.Errorf("encoding default territory config: %w", err)
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO visibility_settings (id, enabled, advanced_enabled, default_config, updated_at)
		VALUES (1, $1, $2, $3, now())
		ON CONFLICT (id) DO UPDATE
		SET enabled = EXCLUDED.enabled,
		    advanced_enabled = EXCLUDED.advanced_enabled,
		    default_config = EXCLUDED.default_config,
		    updated_at = now()
	`, v.Enabled, v.AdvancedEnabled, defaultJSON)
	if err != nil {
		return fmt.Errorf("upserting visibility settings: %w", err)
	}
	return nil
}

func (r *VisibilityRepository) saveWhitelistTx(ctx context.Context, tx pgx.Tx, ids []model.TerritoryID) error {
	if _, err := tx.Exec(ctx, `DELETE FROM territory_whitelist`); err != nil {
		return fmt.Errorf("deleting territory whitelist: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}

	seen := make(map[model.TerritoryID]struct{}, len(ids))
	rows := make([][]any, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		rows = append(rows, []any{int32(id)})
	}

	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"territory_whitelist"},
		[]string{"territory_type"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("inserting territory whitelist: %w", err)
	}
	return nil
}

func (r *VisibilityRepository) saveTerritoriesTx(ctx context.Context, tx pgx.Tx, territories map[model.TerritoryID]config.TerritoryConfig) error {
	if _, err := tx.Exec(ctx, `DELETE FROM territory_configs`); err != nil {
		return fmt.Errorf("deleting territory configs: %w", err)
	}
	if len(territories) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(territories))
	for id, tc := range territories {
		raw, err := json.Marshal(tc)
		if err != nil {
			return fmt.Errorf("encoding territory config %d: %w", id, err)
		}
		rows = append(rows, []any{int32(id), raw})
	}

	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"territory_configs"},
		[]string{"territory_type", "config"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("inserting territory configs: %w", err)
	}
	return nil
}

// SaveTerritoryConfig upserts a single territory config immediately.
func (r *VisibilityRepository) SaveTerritoryConfig(ctx context.Context, id model.TerritoryID, tc config.TerritoryConfig) error {
	raw, err := json.Marshal(tc)
	if err != nil {
		return fmt.Errorf("encoding territory config %d: %w", id, err)
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO territory_configs (territory_type, config, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (territory_type) DO UPDATE SET config = EXCLUDED.config, updated_at = now()
	`, int32(id), raw)
	if err != nil {
		return fmt.Errorf("upserting territory config %d: %w", id, err)
	}
	return nil
}
