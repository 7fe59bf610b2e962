package users

import "context"

// Repo persists profiles.
type Repo interface {
	Create(ctx context.Context, p Profile) error
	Get(ctx context.Context, uid string) (Profile, error)
	GetByEmail(ctx context.Context, email string) (Profile, error)
	Update(ctx context.Context, p Profile) error
	List(ctx context.Context) ([]Profile, error)
}
