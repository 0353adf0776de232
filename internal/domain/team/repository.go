package team

import "context"

// Repository describes team persistence needs from use cases.
type Repository interface {
	GetOrCreate(ctx context.Context, name string, communityID int64) (Team, error)
	SetCommunity(ctx context.Context, teamID, communityID int64) error
	ListByCommunity(ctx context.Context, communityID int64) ([]Team, error)
	Delete(ctx context.Context, teamID int64) error
}
