package services

import (
	"context"
	"github.com/maxaizer/realjobs/internal/auth"
	"github.com/maxaizer/realjobs/internal/entities"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

type bookmarkRepository interface {
	Toggle(ctx context.Context, userID, jobID string) (bool, error)
	Exists(ctx context.Context, userID, jobID string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]entities.Bookmark, error)
}

type jobsByIDs interface {
	GetByID(ctx context.Context, id string) (*entities.JobPosting, error)
	GetByIDs(ctx context.Context, ids []string) ([]entities.JobPosting, error)
}

type Bookmarks struct {
	bookmarks bookmarkRepository
	jobs      jobsByIDs
}

func NewBookmarks(bookmarks bookmarkRepository, jobs jobsByIDs) *Bookmarks {
	return &Bookmarks{bookmarks: bookmarks, jobs: jobs}
}

func (s *Bookmarks) Toggle(ctx context.Context, jobID string) (bool, error) {

	user, ok := auth.CurrentUser(ctx)
	if !ok {
		return false, ErrUnauthorized
	}

	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return false, err
	}
	if job == nil {
		return false, errors.Wrapf(ErrNotFound, "job %s", jobID)
	}

	return s.bookmarks.Toggle(ctx, user.ID, jobID)
}

func (s *Bookmarks) IsBookmarked(ctx context.Context, jobID string) (bool, error) {
	user, ok := auth.CurrentUser(ctx)
	if !ok {
		return false, nil
	}
	return s.bookmarks.Exists(ctx, user.ID, jobID)
}

// List returns bookmarked postings, most recently bookmarked first.
func (s *Bookmarks) List(ctx context.Context) ([]entities.JobPosting, error) {

	user, ok := auth.CurrentUser(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	bookmarks, err := s.bookmarks.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	jobs, err := s.jobs.GetByIDs(ctx, lo.Map(bookmarks, func(b entities.Bookmark, _ int) string { return b.JobPostingID }))
	if err != nil {
		return nil, err
	}

	byID := lo.KeyBy(jobs, func(j entities.JobPosting) string { return j.ID })
	return lo.FilterMap(bookmarks, func(b entities.Bookmark, _ int) (entities.JobPosting, bool) {
		job, found := byID[b.JobPostingID]
		return job, found
	}), nil
}
