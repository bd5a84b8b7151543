package repositories

import (
	"context"
	"github.com/maxaizer/realjobs/internal/entities"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type Comments struct {
	db *gorm.DB
}

func NewCommentsRepository(db *gorm.DB) *Comments {
	return &Comments{db: db}
}

func (repo *Comments) Add(ctx context.Context, comment *entities.Comment) error {
	if comment.ID == "" {
		comment.ID = newID()
	}
	return errors.Wrap(repo.db.WithContext(ctx).Create(comment).Error, "failed to save comment")
}

func (repo *Comments) GetByID(ctx context.Context, id string) (*entities.Comment, error) {

	var comments []entities.Comment
	if err := repo.db.WithContext(ctx).Limit(1).Find(&comments, "id = ?", id).Error; err != nil {
		return nil, errors.Wrap(err, "failed to get comment")
	}
	if len(comments) == 0 {
		return nil, nil
	}
	return &comments[0], nil
}

// ListByJob returns every comment of the job, newest first.
func (repo *Comments) ListByJob(ctx context.Context, jobID string) ([]entities.Comment, error) {

	var comments []entities.Comment
	if err := repo.db.WithContext(ctx).
		Where("job_posting_id = ?", jobID).
		Order("created_at DESC").Order("id").
		Find(&comments).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list comments")
	}
	return comments, nil
}

func (repo *Comments) CountByJobs(ctx context.Context, jobIDs []string) (map[string]int, error) {

	result := make(map[string]int, len(jobIDs))
	if len(jobIDs) == 0 {
		return result, nil
	}

	var rows []struct {
		JobPostingID string
		Count        int
	}
	if err := repo.db.WithContext(ctx).Model(&entities.Comment{}).
		Select("job_posting_id, COUNT(*) AS count").
		Where("job_posting_id IN ?", jobIDs).
		Group("job_posting_id").
		Scan(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "failed to count comments")
	}

	for _, row := range rows {
		result[row.JobPostingID] = row.Count
	}
	return result, nil
}
