package season

import "context"

type Repository interface {
	GetOrCreate(ctx context.Context, name string) (Season, error)
	GetByName(ctx context.Context, name string) (Season, bool, error)
	List(ctx context.Context) ([]Season, error)
	Rename(ctx context.Context, seasonID int64, name string) error
	Delete(ctx context.Context, seasonID int64) error
}
