package resumes

import "context"

// Repo persists resume metadata.
type Repo interface {
	Create(ctx context.Context, r Resume) error
	Get(ctx context.Context, id string) (Resume, error)
	Update(ctx context.Context, r Resume) error
	Delete(ctx context.Context, id string) error
	ListByUser(ctx context.Context, userID string) ([]Resume, error)
	// ClearDefault unsets the default flag on every resume of userID.
	ClearDefault(ctx context.Context, userID string) error
}
