package applications

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"job-tracker/internal/events"
	"job-tracker/internal/shared/metrics"
	"job-tracker/internal/shared/telemetry"
)

// Service contains business logic for applications. It does not decide who
// may act; callers check permissions first.
type Service struct {
	Repo   Repo
	Events events.Broker
	Now    func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repo, broker events.Broker) *Service {
	if broker == nil {
		broker = events.Nop{}
	}
	return &Service{Repo: repo, Events: broker, Now: time.Now}
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

// Create validates the form and stores a new application owned by userID.
func (s *Service) Create(ctx context.Context, userID string, in Input) (Application, error) {
	if strings.TrimSpace(userID) == "" {
		return Application{}, errors.New("user id required")
	}
	in = normalize(in)
	if err := Validate(in); err != nil {
		return Application{}, err
	}

	now := s.now()
	app := Application{
		ID:          uuid.NewString(),
		UserID:      userID,
		JobTitle:    in.JobTitle,
		Company:     in.Company,
		DateApplied: in.DateApplied.UTC(),
		Location:    in.Location,
		Salary:      in.Salary,
		Status:      in.Status,
		Notes:       in.Notes,
		JobURL:      in.JobURL,
		Resume:      in.Resume,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Repo.Create(ctx, app); err != nil {
		return Application{}, err
	}
	metrics.IncApplication("created")
	s.publish(ctx, app)
	return app, nil
}

// Get returns one application or ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (Application, error) {
	if strings.TrimSpace(id) == "" {
		return Application{}, ErrNotFound
	}
	return s.Repo.GetByID(ctx, id)
}

// Update applies a partial update. The owner cannot be changed.
func (s *Service) Update(ctx context.Context, id string, p Patch) (Application, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return Application{}, err
	}
	in := normalize(p.apply(existing.input()))
	if err := Validate(in); err != nil {
		return Application{}, err
	}

	updated := existing
	updated.JobTitle = in.JobTitle
	updated.Company = in.Company
	updated.DateApplied = in.DateApplied.UTC()
	updated.Location = in.Location
	updated.Salary = in.Salary
	updated.Status = in.Status
	updated.Notes = in.Notes
	updated.JobURL = in.JobURL
	updated.Resume = in.Resume
	updated.UpdatedAt = s.now()

	if err := s.Repo.Update(ctx, updated); err != nil {
		return Application{}, err
	}
	metrics.IncApplication("updated")
	s.publish(ctx, updated)
	return updated, nil
}

// Delete removes an application.
func (s *Service) Delete(ctx context.Context, id string) error {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	metrics.IncApplication("deleted")
	s.publish(ctx, existing)
	return nil
}

// ListByUser returns a user's applications, newest first.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]Application, error) {
	if userID == "" {
		return []Application{}, nil
	}
	return s.Repo.ListByUser(ctx, userID)
}

// ListAll returns every application, newest first.
func (s *Service) ListAll(ctx context.Context) ([]Application, error) {
	return s.Repo.ListAll(ctx)
}

// publish announces a change. Delivery failure does not undo the write.
func (s *Service) publish(ctx context.Context, app Application) {
	if err := s.Events.Publish(ctx, events.New(events.ApplicationsChanged, app.UserID, app.ID)); err != nil {
		telemetry.Warn("applications.publish_failed", map[string]any{
			"application_id": app.ID,
			"error":          err,
		})
	}
}

func normalize(in Input) Input {
	in.JobTitle = strings.TrimSpace(in.JobTitle)
	in.Company = strings.TrimSpace(in.Company)
	in.Location = strings.TrimSpace(in.Location)
	in.JobURL = strings.TrimSpace(in.JobURL)
	return in
}
