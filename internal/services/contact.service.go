package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/NdanyuzweGentil/My-DS-Portfolio/internal/model"
	"github.com/NdanyuzweGentil/My-DS-Portfolio/internal/repository"
	"github.com/NdanyuzweGentil/My-DS-Portfolio/pkg/logger"
	"github.com/NdanyuzweGentil/My-DS-Portfolio/pkg/prom"
)

var (
	ErrNotFound    = errors.New("contact not found")
	ErrPersistence = errors.New("contact store failure")
)

type ContactRepository interface {
	Create(ctx context.Context, c *model.Contact) (*model.Contact, error)
	List(ctx context.Context) ([]*model.Contact, error)
	GetByID(ctx context.Context, id int64) (*model.Contact, error)
	UpdateStatus(ctx context.Context, id int64, status model.ContactStatus) error
}

// ContactValidator checks and sanitizes input. Failures are returned as
// validation.Errors.
type ContactValidator interface {
	Contact(in model.ContactSubmission) (model.ContactSubmission, error)
	Status(raw string) (model.ContactStatus, error)
}

// ContactNotifier is told about every stored submission.
type ContactNotifier interface {
	ContactCreated(ctx context.Context, c *model.Contact) error
}

type ContactService struct {
	repo      ContactRepository
	validator ContactValidator
	notifier  ContactNotifier
}

func NewContactService(repo ContactRepository, validator ContactValidator) *ContactService {
	return &ContactService{
		repo:      repo,
		validator: validator,
	}
}

// WithNotifier enables best-effort notifications on submit.
func (s *ContactService) WithNotifier(n ContactNotifier) *ContactService {
	s.notifier = n
	return s
}

// Submit validates, sanitizes and stores a submission. Empty request metadata
// is stored as absent.
func (s *ContactService) Submit(ctx context.Context, in model.ContactSubmission, meta model.RequestMeta) (*model.Contact, error) {
	clean, err := s.validator.Contact(in)
	if err != nil {
		prom.IncContactSubmission(prom.ResultInvalid)
		return nil, err
	}

	created, err := s.repo.Create(ctx, &model.Contact{
		Name:      clean.Name,
		Email:     clean.Email,
		Message:   clean.Message,
		IPAddress: optional(meta.IPAddress),
		UserAgent: optional(meta.UserAgent),
		Status:    model.ContactStatusNew,
	})
	if err != nil {
		prom.IncContactSubmission(prom.ResultError)
		return nil, fmt.Errorf("%w: create: %w", ErrPersistence, err)
	}
	prom.IncContactSubmission(prom.ResultAccepted)

	if s.notifier != nil {
		if err := s.notifier.ContactCreated(ctx, created); err != nil {
			logger.Warn("contact notification not queued", "contact_id", created.ID, "error", err)
		}
	}
	return created, nil
}

// List returns every contact, newest first. It never returns a nil slice.
func (s *ContactService) List(ctx context.Context) ([]*model.Contact, error) {
	contacts, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list: %w", ErrPersistence, err)
	}
	if contacts == nil {
		contacts = []*model.Contact{}
	}
	return contacts, nil
}

func (s *ContactService) Get(ctx context.Context, id int64) (*model.Contact, error) {
	c, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get: %w", ErrPersistence, err)
	}
	return c, nil
}

// UpdateStatus validates the requested status before looking the contact up,
// so a bad status on a missing id is reported as a validation failure.
func (s *ContactService) UpdateStatus(ctx context.Context, id int64, raw string) (model.ContactStatus, error) {
	status, err := s.validator.Status(raw)
	if err != nil {
		return "", err
	}

	err = s.repo.UpdateStatus(ctx, id, status)
	if errors.Is(err, repository.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: update status: %w", ErrPersistence, err)
	}
	prom.IncContactStatusUpdate(string(status))
	return status, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
