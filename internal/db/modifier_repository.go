package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/worldsim/internal/unitmod"
)

// ModifierRepository хранит постоянные модификаторы юнитов.
// Temporary tiers are skipped on Save: they belong to running effects and
// are rebuilt when those effects are reapplied.
type ModifierRepository struct {
	db *pgxpool.Pool
}

// NewModifierRepository создаёт новый ModifierRepository.
func NewModifierRepository(db *pgxpool.Pool) *ModifierRepository {
	return &ModifierRepository{db: db}
}

// Load загружает все сохранённые модификаторы юнита.
func (r *ModifierRepository) Load(ctx context.Context, unitID int64) ([]unitmod.Entry, error) {
	query := `
		SELECT mod_type, stat, flat_positive, flat_negative, mult_positive, mult_negative
		FROM unit_modifiers
		WHERE unit_id = $1
		ORDER BY mod_type, stat
	`

	rows, err := r.db.Query(ctx, query, unitID)
	if err != nil {
		return nil, fmt.Errorf("querying modifiers for unit %d: %w", unitID, err)
	}
	defer rows.Close()

	entries := make([]unitmod.Entry, 0, 16)
	for rows.Next() {
		var (
			typeName, statName string
			flatPos, flatNeg   float64
			multPos, multNeg   float64
		)
		if err := rows.Scan(&typeName, &statName, &flatPos, &flatNeg, &multPos, &multNeg); err != nil {
			return nil, fmt.Errorf("scanning modifier row: %w", err)
		}

		modType, err := unitmod.ParseModType(typeName)
		if err != nil {
			return nil, fmt.Errorf("unit %d modifier: %w", unitID, err)
		}
		stat, err := unitmod.ParseStat(statName)
		if err != nil {
			return nil, fmt.Errorf("unit %d modifier: %w", unitID, err)
		}

		entries = append(entries, unitmod.Entry{
			Type: modType,
			Stat: stat,
			Mod: unitmod.UnitMod{
				Type: modType,
				Flat: unitmod.NewFlat(flatPos, flatNeg),
				Mult: unitmod.NewMult(multPos, multNeg),
			},
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating modifier rows: %w", err)
	}

	return entries, nil
}

// Save сохраняет модификаторы юнита (полная перезапись) в одной транзакции.
func (r *ModifierRepository) Save(ctx context.Context, unitID int64, entries []unitmod.Entry) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.Error("rollback failed", "unitID", unitID, "error", err)
		}
	}()

	if _, err := tx.Exec(ctx, `DELETE FROM unit_modifiers WHERE unit_id = $1`, unitID); err != nil {
		return fmt.Errorf("deleting existing modifiers: %w", err)
	}

	batch := &pgx.Batch{}
	for _, e := range entries {
		if e.Type.IsTemporary() || e.Mod.IsIdle() {
			continue
		}
		batch.Queue(
			`INSERT INTO unit_modifiers
			 (unit_id, mod_type, stat, flat_positive, flat_negative, mult_positive, mult_negative)
			 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			unitID, e.Type.String(), e.Stat.String(),
			e.Mod.Flat.Positive(), e.Mod.Flat.Negative(),
			e.Mod.Mult.Positive(), e.Mod.Mult.Negative(),
		)
	}

	if batch.Len() > 0 {
		br := tx.SendBatch(ctx, batch)
		for range batch.Len() {
			if _, err := br.Exec(); err != nil {
				br.Close() //nolint:errcheck
				return fmt.Errorf("inserting modifier batch: %w", err)
			}
		}
		if err := br.Close(); err != nil {
			return fmt.Errorf("closing modifier batch: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing modifiers save: %w", err)
	}

	return nil
}

// Delete удаляет все модификаторы юнита.
func (r *ModifierRepository) Delete(ctx context.Context, unitID int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM unit_modifiers WHERE unit_id = $1`, unitID); err != nil {
		return fmt.Errorf("deleting modifiers for unit %d: %w", unitID, err)
	}
	return nil
}
