package applications

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	apps map[string]Application
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{apps: make(map[string]Application)}
}

func (r *MemoryRepo) Create(ctx context.Context, app Application) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.apps[app.ID] = cloneApp(app)
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Application, error) {
	if err := ctx.Err(); err != nil {
		return Application{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	app, ok := r.apps[id]
	if !ok {
		return Application{}, ErrNotFound
	}
	return cloneApp(app), nil
}

// Update replaces the stored application. The owner is kept from the stored
// copy.
func (r *MemoryRepo) Update(ctx context.Context, app Application) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.apps[app.ID]
	if !ok {
		return ErrNotFound
	}
	app.UserID = existing.UserID
	app.CreatedAt = existing.CreatedAt
	r.apps[app.ID] = cloneApp(app)
	return nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.apps[id]; !ok {
		return ErrNotFound
	}
	delete(r.apps, id)
	return nil
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID string) ([]Application, error) {
	return r.list(ctx, func(a Application) bool { return a.UserID == userID })
}

func (r *MemoryRepo) ListAll(ctx context.Context) ([]Application, error) {
	return r.list(ctx, func(Application) bool { return true })
}

func (r *MemoryRepo) list(ctx context.Context, keep func(Application) bool) ([]Application, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]Application, 0, len(r.apps))
	for _, app := range r.apps {
		if keep(app) {
			out = append(out, cloneApp(app))
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DateApplied.Equal(out[j].DateApplied) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].DateApplied.After(out[j].DateApplied)
	})
	return out, nil
}

func cloneApp(app Application) Application {
	if app.Resume != nil {
		ref := *app.Resume
		app.Resume = &ref
	}
	return app
}

var _ Repo = (*MemoryRepo)(nil)
