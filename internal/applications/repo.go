package applications

import "context"

// Repo persists applications.
type Repo interface {
	Create(ctx context.Context, app Application) error
	GetByID(ctx context.Context, id string) (Application, error)
	Update(ctx context.Context, app Application) error
	Delete(ctx context.Context, id string) error
	// ListByUser returns a user's applications, newest dateApplied first.
	ListByUser(ctx context.Context, userID string) ([]Application, error)
	// ListAll returns every application, newest dateApplied first.
	ListAll(ctx context.Context) ([]Application, error)
}
