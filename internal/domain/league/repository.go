package league

import "context"

// Repository describes league persistence needs from use cases.
type Repository interface {
	GetOrCreate(ctx context.Context, item League) (League, error)
	List(ctx context.Context) ([]League, error)
	ListByStream(ctx context.Context, stream string) ([]League, error)
}
