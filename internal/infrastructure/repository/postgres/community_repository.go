package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/yychockey/standings-sync/internal/domain/community"
	qb "github.com/yychockey/standings-sync/internal/platform/querybuilder"
)

type CommunityRepository struct {
	db *sqlx.DB
}

func NewCommunityRepository(db *sqlx.DB) *CommunityRepository {
	return &CommunityRepository{db: db}
}

func (r *CommunityRepository) GetOrCreate(ctx context.Context, name string) (community.Community, error) {
	insertQuery, insertArgs, err := qb.InsertModel("communities", communityInsertModel{Name: name},
		"ON CONFLICT (name) DO NOTHING")
	if err != nil {
		return community.Community{}, fmt.Errorf("build insert community query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
		return community.Community{}, fmt.Errorf("insert community name=%s: %w", name, err)
	}

	query, args, err := qb.Select("*").From("communities").
		Where(qb.Eq("name", name)).
		ToSQL()
	if err != nil {
		return community.Community{}, fmt.Errorf("build get community by name query: %w", err)
	}

	var row communityTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		return community.Community{}, fmt.Errorf("get community name=%s: %w", name, err)
	}
	return community.Community{ID: row.ID, Name: row.Name}, nil
}

func (r *CommunityRepository) List(ctx context.Context) ([]community.Community, error) {
	query, args, err := qb.Select("*").From("communities").
		OrderBy("name").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list communities query: %w", err)
	}

	var rows []communityTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list communities: %w", err)
	}

	out := make([]community.Community, 0, len(rows))
	for _, row := range rows {
		out = append(out, community.Community{ID: row.ID, Name: row.Name})
	}
	return out, nil
}

func (r *CommunityRepository) Delete(ctx context.Context, communityID int64) error {
	query, args, err := qb.DeleteFrom("communities").
		Where(qb.Eq("id", communityID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete community query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete community id=%d: %w", communityID, err)
	}
	return nil
}
