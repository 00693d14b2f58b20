package settings

import (
	"context"
	"fmt"

	"github.com/udisondev/overworld/internal/config"
)

// SavePreset stores the current value of every registered key under name,
// replacing any preset with the same name.
func (s *Store) SavePreset(ctx context.Context, name string) error {
	values := s.All()

	tx, err := s.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin preset tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM setting_presets WHERE name = ?`, name); err != nil {
		return fmt.Errorf("clearing preset %s: %w", name, err)
	}

	stmt, err := tx.PreparexContext(ctx, `INSERT INTO setting_presets (name, key, value) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing preset insert: %w", err)
	}
	defer stmt.Close()

	for _, v := range values {
		if _, err := stmt.ExecContext(ctx, name, string(v.Key), v.Value); err != nil {
			return fmt.Errorf("saving preset %s key %s: %w", name, v.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit preset %s: %w", name, err)
	}
	return nil
}

// LoadPreset applies every stored value of the preset through Set.
// Keys that are no longer registered are skipped.
func (s *Store) LoadPreset(ctx context.Context, name string) error {
	var rows []settingRow
	if err := s.conn.SelectContext(ctx, &rows,
		`SELECT key, value FROM setting_presets WHERE name = ? ORDER BY key`, name,
	); err != nil {
		return fmt.Errorf("loading preset %s: %w", name, err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("loading preset %s: %w", name, ErrUnknownPreset)
	}

	for _, r := range rows {
		key := config.Key(r.Key)
		if _, ok := s.Get(key); !ok {
			continue
		}
		if _, err := s.Set(ctx, key, r.Value); err != nil {
			return fmt.Errorf("applying preset %s: %w", name, err)
		}
	}
	return nil
}

// DeletePreset removes a preset. Deleting a missing preset is a no-op.
func (s *Store) DeletePreset(ctx context.Context, name string) error {
	if _, err := s.conn.ExecContext(ctx, `DELETE FROM setting_presets WHERE name = ?`, name); err != nil {
		return fmt.Errorf("deleting preset %s: %w", name, err)
	}
	return nil
}

// Presets returns stored preset names in alphabetical order.
func (s *Store) Presets(ctx context.Context) ([]string, error) {
	var names []string
	if err := s.conn.SelectContext(ctx, &names,
		`SELECT DISTINCT name FROM setting_presets ORDER BY name`,
	); err != nil {
		return nil, fmt.Errorf("listing presets: %w", err)
	}
	return names, nil
}
