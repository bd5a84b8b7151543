package repositories

import (
	"context"
	"github.com/maxaizer/realjobs/internal/entities"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type Bookmarks struct {
	db *gorm.DB
}

func NewBookmarksRepository(db *gorm.DB) *Bookmarks {
	return &Bookmarks{db: db}
}

// Toggle adds the bookmark if absent or removes it if present and reports
// whether the job is bookmarked afterwards.
func (repo *Bookmarks) Toggle(ctx context.Context, userID, jobID string) (bool, error) {

	bookmarked := false
	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND job_posting_id = ?", userID, jobID).Delete(&entities.Bookmark{})
		if res.Error != nil {
			return errors.Wrap(res.Error, "failed to remove bookmark")
		}
		if res.RowsAffected > 0 {
			return nil
		}

		bookmarked = true
		return errors.Wrap(tx.Create(&entities.Bookmark{UserID: userID, JobPostingID: jobID}).Error,
			"failed to save bookmark")
	})

	return bookmarked, err
}

func (repo *Bookmarks) Exists(ctx context.Context, userID, jobID string) (bool, error) {
	var count int64
	err := repo.db.WithContext(ctx).Model(&entities.Bookmark{}).
		Where("user_id = ? AND job_posting_id = ?", userID, jobID).
		Count(&count).Error
	return count > 0, errors.Wrap(err, "failed to look up bookmark")
}

// ListByUser returns bookmarks newest first.
func (repo *Bookmarks) ListByUser(ctx context.Context, userID string) ([]entities.Bookmark, error) {

	var bookmarks []entities.Bookmark
	if err := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&bookmarks).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list bookmarks")
	}
	return bookmarks, nil
}

func (repo *Bookmarks) UsersByJob(ctx context.Context, jobID string) ([]string, error) {

	var userIDs []string
	if err := repo.db.WithContext(ctx).Model(&entities.Bookmark{}).
		Where("job_posting_id = ?", jobID).
		Pluck("user_id", &userIDs).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list bookmark holders")
	}
	return userIDs, nil
}
