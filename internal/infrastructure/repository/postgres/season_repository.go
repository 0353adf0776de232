package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/yychockey/standings-sync/internal/domain/season"
	qb "github.com/yychockey/standings-sync/internal/platform/querybuilder"
)

type SeasonRepository struct {
	db *sqlx.DB
}

func NewSeasonRepository(db *sqlx.DB) *SeasonRepository {
	return &SeasonRepository{db: db}
}

// GetOrCreate relies on the unique name constraint: insert-or-ignore then
// reselect, so concurrent workers racing on the same season both land on
// the one row without any application lock.
func (r *SeasonRepository) GetOrCreate(ctx context.Context, name string) (season.Season, error) {
	insertQuery, insertArgs, err := qb.InsertModel("seasons", seasonInsertModel{Name: name},
		"ON CONFLICT (name) DO NOTHING")
	if err != nil {
		return season.Season{}, fmt.Errorf("build insert season query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
		return season.Season{}, fmt.Errorf("insert season name=%s: %w", name, err)
	}

	item, found, err := r.GetByName(ctx, name)
	if err != nil {
		return season.Season{}, err
	}
	if !found {
		return season.Season{}, fmt.Errorf("season name=%s vanished after insert", name)
	}
	return item, nil
}

func (r *SeasonRepository) GetByName(ctx context.Context, name string) (season.Season, bool, error) {
	query, args, err := qb.Select("*").From("seasons").
		Where(qb.Eq("name", name)).
		ToSQL()
	if err != nil {
		return season.Season{}, false, fmt.Errorf("build get season by name query: %w", err)
	}

	var row seasonTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return season.Season{}, false, nil
		}
		return season.Season{}, false, fmt.Errorf("get season by name: %w", err)
	}

	return season.Season{ID: row.ID, Name: row.Name}, true, nil
}

func (r *SeasonRepository) List(ctx context.Context) ([]season.Season, error) {
	query, args, err := qb.Select("*").From("seasons").
		OrderBy("name", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list seasons query: %w", err)
	}

	var rows []seasonTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list seasons: %w", err)
	}

	out := make([]season.Season, 0, len(rows))
	for _, row := range rows {
		out = append(out, season.Season{ID: row.ID, Name: row.Name})
	}
	return out, nil
}

func (r *SeasonRepository) Rename(ctx context.Context, seasonID int64, name string) error {
	query, args, err := qb.Update("seasons").
		Set("name", name).
		Where(qb.Eq("id", seasonID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build rename season query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("rename season id=%d: %w", seasonID, err)
	}
	return nil
}

func (r *SeasonRepository) Delete(ctx context.Context, seasonID int64) error {
	query, args, err := qb.DeleteFrom("seasons").
		Where(qb.Eq("id", seasonID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete season query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete season id=%d: %w", seasonID, err)
	}
	return nil
}
