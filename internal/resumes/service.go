package resumes

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"job-tracker/internal/events"
	"job-tracker/internal/shared/metrics"
	"job-tracker/internal/shared/storage/object"
	"job-tracker/internal/shared/telemetry"
	"job-tracker/internal/shared/util"
)

// Service manages resume files and their metadata. Callers check
// ownership first.
type Service struct {
	Repo   Repo
	Store  object.ObjectStore
	Events events.Broker
	Rules  Rules
	Now    func() time.Time
}

// NewService constructs a Service with the default upload rules.
func NewService(repo Repo, store object.ObjectStore, broker events.Broker) *Service {
	if broker == nil {
		broker = events.Nop{}
	}
	return &Service{Repo: repo, Store: store, Events: broker, Rules: DefaultRules(), Now: time.Now}
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

// Validate checks the type, size and name of an upload.
func (s *Service) Validate(in UploadInput) error {
	contentType := strings.ToLower(strings.TrimSpace(strings.Split(in.ContentType, ";")[0]))
	allowed := false
	for _, t := range s.Rules.AllowedTypes {
		if contentType == t {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("%w: Only PDF files are allowed", ErrInvalidInput)
	}
	if in.Size > s.Rules.MaxSize {
		return fmt.Errorf("%w: File size must be less than %dMB", ErrInvalidInput, s.Rules.MaxSizeMB)
	}
	if strings.TrimSpace(in.FileName) == "" {
		return fmt.Errorf("%w: File must have a valid name", ErrInvalidInput)
	}
	if strings.TrimSpace(in.DisplayName) == "" {
		return fmt.Errorf("%w: Display name is required", ErrInvalidInput)
	}
	return nil
}

// Upload stores the file and records its metadata. When IsDefault is set,
// the user's other resumes lose the flag first.
func (s *Service) Upload(ctx context.Context, userID string, in UploadInput) (Resume, error) {
	if strings.TrimSpace(userID) == "" {
		return Resume{}, errors.New("User must be logged in to upload resumes")
	}
	if err := s.Validate(in); err != nil {
		return Resume{}, err
	}

	data, err := io.ReadAll(io.LimitReader(in.Body, s.Rules.MaxSize+1))
	if err != nil {
		return Resume{}, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.Rules.MaxSize {
		return Resume{}, fmt.Errorf("%w: File size must be less than %dMB", ErrInvalidInput, s.Rules.MaxSizeMB)
	}
	pages, err := inspectPDF(data)
	if err != nil {
		return Resume{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	now := s.now()
	displayName := strings.TrimSpace(in.DisplayName)
	fileName := storedFileName(now, displayName, in.FileName)
	key, err := util.ObjectKey("resumes", userID, fileName)
	if err != nil {
		return Resume{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	url, size, err := s.Store.Upload(ctx, key, mimePDF, bytes.NewReader(data))
	if err != nil {
		return Resume{}, fmt.Errorf("upload resume: %w", err)
	}

	if in.IsDefault {
		if err := s.Repo.ClearDefault(ctx, userID); err != nil {
			s.discard(ctx, key)
			return Resume{}, fmt.Errorf("clear default resumes: %w", err)
		}
	}

	res := Resume{
		ID:          uuid.NewString(),
		UserID:      userID,
		FileName:    fileName,
		DisplayName: displayName,
		FileURL:     url,
		StorageKey:  key,
		FileSize:    size,
		FileType:    mimePDF,
		PageCount:   pages,
		Tags:        normalizeTags(in.Tags),
		IsDefault:   in.IsDefault,
		UploadDate:  now,
	}
	if err := s.Repo.Create(ctx, res); err != nil {
		s.discard(ctx, key)
		return Resume{}, err
	}
	metrics.IncResume("uploaded")
	s.publish(ctx, res)
	return res, nil
}

// Get returns one resume or ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (Resume, error) {
	if strings.TrimSpace(id) == "" {
		return Resume{}, ErrNotFound
	}
	return s.Repo.Get(ctx, id)
}

// List returns a user's resumes, newest upload first.
func (s *Service) List(ctx context.Context, userID string) ([]Resume, error) {
	if userID == "" {
		return []Resume{}, nil
	}
	return s.Repo.ListByUser(ctx, userID)
}

// Default returns the user's default resume or ErrNotFound.
func (s *Service) Default(ctx context.Context, userID string) (Resume, error) {
	list, err := s.List(ctx, userID)
	if err != nil {
		return Resume{}, err
	}
	for _, res := range list {
		if res.IsDefault {
			return res, nil
		}
	}
	return Resume{}, ErrNotFound
}

// SetDefault makes id the user's default. Other resumes are cleared first
// and then id is set, as two writes; a concurrent SetDefault for the same
// user can interleave between them.
func (s *Service) SetDefault(ctx context.Context, id string) (Resume, error) {
	res, err := s.Get(ctx, id)
	if err != nil {
		return Resume{}, err
	}
	if err := s.Repo.ClearDefault(ctx, res.UserID); err != nil {
		return Resume{}, fmt.Errorf("clear default resumes: %w", err)
	}
	res.IsDefault = true
	if err := s.Repo.Update(ctx, res); err != nil {
		return Resume{}, err
	}
	metrics.IncResume("default_set")
	s.publish(ctx, res)
	return res, nil
}

// Update changes the display name, tags or default flag.
func (s *Service) Update(ctx context.Context, id string, p Patch) (Resume, error) {
	res, err := s.Get(ctx, id)
	if err != nil {
		return Resume{}, err
	}
	if p.DisplayName != nil {
		name := strings.TrimSpace(*p.DisplayName)
		if name == "" {
			return Resume{}, fmt.Errorf("%w: Display name is required", ErrInvalidInput)
		}
		res.DisplayName = name
	}
	if p.Tags != nil {
		res.Tags = normalizeTags(*p.Tags)
	}
	if p.IsDefault != nil {
		if *p.IsDefault && !res.IsDefault {
			if err := s.Repo.ClearDefault(ctx, res.UserID); err != nil {
				return Resume{}, fmt.Errorf("clear default resumes: %w", err)
			}
		}
		res.IsDefault = *p.IsDefault
	}
	if err := s.Repo.Update(ctx, res); err != nil {
		return Resume{}, err
	}
	metrics.IncResume("updated")
	s.publish(ctx, res)
	return res, nil
}

// Delete removes the stored file and then the metadata.
func (s *Service) Delete(ctx context.Context, id string) error {
	res, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Store.Delete(ctx, res.StorageKey); err != nil && !errors.Is(err, object.ErrNotFound) {
		return fmt.Errorf("delete resume file: %w", err)
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	metrics.IncResume("deleted")
	s.publish(ctx, res)
	return nil
}

// Open streams the stored file.
func (s *Service) Open(ctx context.Context, id string) (io.ReadCloser, Resume, error) {
	res, err := s.Get(ctx, id)
	if err != nil {
		return nil, Resume{}, err
	}
	body, err := s.Store.Open(ctx, res.StorageKey)
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			return nil, Resume{}, ErrNotFound
		}
		return nil, Resume{}, err
	}
	return body, res, nil
}

func (s *Service) discard(ctx context.Context, key string) {
	if err := s.Store.Delete(ctx, key); err != nil {
		telemetry.Warn("resumes.discard_failed", map[string]any{
			"storage_key": key,
			"error":       err,
		})
	}
}

func (s *Service) publish(ctx context.Context, res Resume) {
	if err := s.Events.Publish(ctx, events.New(events.ResumesChanged, res.UserID, res.ID)); err != nil {
		telemetry.Warn("resumes.publish_failed", map[string]any{
			"resume_id": res.ID,
			"error":     err,
		})
	}
}

// storedFileName is "<unix-ms>_<display name slug>.<ext>".
func storedFileName(now time.Time, displayName, original string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(original)), ".")
	if ext == "" {
		ext = "pdf"
	}
	return fmt.Sprintf("%d_%s.%s", now.UnixMilli(), util.Slug(displayName), util.Slug(ext))
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		key := util.Fold(t)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	return out
}
