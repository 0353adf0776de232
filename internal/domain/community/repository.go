package community

import "context"

type Repository interface {
	GetOrCreate(ctx context.Context, name string) (Community, error)
	List(ctx context.Context) ([]Community, error)
	Delete(ctx context.Context, communityID int64) error
}
