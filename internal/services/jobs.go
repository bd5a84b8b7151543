package services

import (
	"context"
	"github.com/go-playground/validator/v10"
	"github.com/maxaizer/realjobs/internal/auth"
	"github.com/maxaizer/realjobs/internal/entities"
	"github.com/pkg/errors"
	"strings"
)

type jobRepository interface {
	Add(ctx context.Context, job *entities.JobPosting) error
	GetByID(ctx context.Context, id string) (*entities.JobPosting, error)
	ListByOwner(ctx context.Context, userID string) ([]entities.JobPosting, error)
	UpdateStatus(ctx context.Context, id string, status entities.JobStatus) error
}

type SubmitJobRequest struct {
	Url         string
	Title       string
	Company     string
	Description string
	Category    string
	Location    string
	JobType     string
}

type Jobs struct {
	jobs     jobRepository
	validate *validator.Validate
}

func NewJobs(jobs jobRepository) *Jobs {
	return &Jobs{jobs: jobs, validate: validator.New()}
}

// Submit stores a new active posting owned by the current user.
func (s *Jobs) Submit(ctx context.Context, request SubmitJobRequest) (*entities.JobPosting, error) {

	user, ok := auth.CurrentUser(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	jobType := entities.Remote
	if value := strings.ToLower(strings.TrimSpace(request.JobType)); value != "" {
		parsed, err := entities.ToJobType(value)
		if err != nil {
			return nil, newValidationError("job_type", "must be remote, hybrid or onsite")
		}
		jobType = parsed
	}

	job := &entities.JobPosting{
		UserID:      user.ID,
		Url:         strings.TrimSpace(request.Url),
		Title:       strings.TrimSpace(request.Title),
		Company:     strings.TrimSpace(request.Company),
		Description: strings.TrimSpace(request.Description),
		Category:    strings.TrimSpace(request.Category),
		Location:    strings.TrimSpace(request.Location),
		JobType:     jobType,
		Status:      entities.StatusActive,
	}

	if err := s.validate.Struct(job); err != nil {
		return nil, toValidationError(err)
	}

	if err := s.jobs.Add(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *Jobs) Get(ctx context.Context, id string) (*entities.JobPosting, error) {
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, errors.Wrapf(ErrNotFound, "job %s", id)
	}
	return job, nil
}

// SetStatus lets the owner close an active posting as expired or filled.
func (s *Jobs) SetStatus(ctx context.Context, id string, status entities.JobStatus) error {

	user, ok := auth.CurrentUser(ctx)
	if !ok {
		return ErrUnauthorized
	}
	if status != entities.StatusExpired && status != entities.StatusFilled {
		return newValidationError("status", "must be expired or filled")
	}

	job, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if job.UserID != user.ID {
		return ErrForbidden
	}
	if !job.IsActive() {
		return newValidationError("status", "job is already closed")
	}

	return s.jobs.UpdateStatus(ctx, id, status)
}

func (s *Jobs) ListByOwner(ctx context.Context) ([]entities.JobPosting, error) {
	user, ok := auth.CurrentUser(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}
	return s.jobs.ListByOwner(ctx, user.ID)
}

func toValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		fieldErr := validationErrors[0]
		return newValidationError(strings.ToLower(fieldErr.Field()), "failed on "+fieldErr.Tag())
	}
	return newValidationError("request", err.Error())
}
