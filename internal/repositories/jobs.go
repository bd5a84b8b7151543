package repositories

import (
	"context"
	"github.com/maxaizer/realjobs/internal/entities"
	"github.com/maxaizer/realjobs/internal/ranking"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"strings"
	"time"
)

type Jobs struct {
	db *gorm.DB
}

func NewJobsRepository(db *gorm.DB) *Jobs {
	return &Jobs{db: db}
}

func (repo *Jobs) Add(ctx context.Context, job *entities.JobPosting) error {
	if job.ID == "" {
		job.ID = newID()
	}
	return errors.Wrap(repo.db.WithContext(ctx).Create(job).Error, "failed to save job posting")
}

func (repo *Jobs) GetByID(ctx context.Context, id string) (*entities.JobPosting, error) {

	var jobs []entities.JobPosting
	if err := repo.db.WithContext(ctx).Limit(1).Find(&jobs, "id = ?", id).Error; err != nil {
		return nil, errors.Wrap(err, "failed to get job posting")
	}
	if len(jobs) == 0 {
		return nil, nil
	}
	return &jobs[0], nil
}

func (repo *Jobs) GetByIDs(ctx context.Context, ids []string) ([]entities.JobPosting, error) {

	var jobs []entities.JobPosting
	if len(ids) == 0 {
		return jobs, nil
	}
	if err := repo.db.WithContext(ctx).Find(&jobs, "id IN ?", ids).Error; err != nil {
		return nil, errors.Wrap(err, "failed to get job postings")
	}
	return jobs, nil
}

func (repo *Jobs) ListByOwner(ctx context.Context, userID string) ([]entities.JobPosting, error) {

	var jobs []entities.JobPosting
	if err := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id").
		Find(&jobs).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list job postings")
	}
	return jobs, nil
}

// Find returns active postings matching filter, newest first.
func (repo *Jobs) Find(ctx context.Context, filter ranking.Filter, limit int, offset int) ([]entities.JobPosting, error) {

	var jobs []entities.JobPosting
	if err := applyFilter(repo.db.WithContext(ctx), filter).
		Order("created_at DESC").Order("id").
		Limit(limit).
		Offset(offset).
		Find(&jobs).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find job postings")
	}
	return jobs, nil
}

// Candidates returns up to limit active postings matching filter, ordered so
// the ones able to lead mode come first: highest trust score for Top, most
// downvotes for Fake and newest otherwise.
func (repo *Jobs) Candidates(ctx context.Context, filter ranking.Filter, mode ranking.Mode, limit int) (
	[]entities.JobPosting, error) {

	query := applyFilter(repo.db.WithContext(ctx), filter)
	switch mode {
	case ranking.Top:
		query = query.Order("trust_score DESC").Order("created_at DESC").Order("id")
	case ranking.Fake:
		query = query.Order(clause.OrderBy{Expression: clause.Expr{
			SQL: "(SELECT COUNT(*) FROM votes WHERE votes.job_posting_id = job_postings.id " +
				"AND votes.vote_type = ?) DESC, created_at DESC, id",
			Vars: []any{entities.VoteDown},
		}})
	default:
		query = query.Order("created_at DESC").Order("id")
	}

	var jobs []entities.JobPosting
	if err := query.Limit(limit).Find(&jobs).Error; err != nil {
		return nil, errors.Wrap(err, "failed to load ranking candidates")
	}
	return jobs, nil
}

func applyFilter(db *gorm.DB, filter ranking.Filter) *gorm.DB {

	query := db.Where("status = ?", entities.StatusActive)

	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("(LOWER(title) LIKE ? ESCAPE '!' OR LOWER(company) LIKE ? ESCAPE '!' "+
			"OR LOWER(description) LIKE ? ESCAPE '!')", pattern, pattern, pattern)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Location != "" {
		query = query.Where("LOWER(location) LIKE ? ESCAPE '!'", likePattern(filter.Location))
	}
	if filter.JobType != "" {
		query = query.Where("job_type = ?", filter.JobType)
	}
	if filter.MinScore != nil {
		query = query.Where("trust_score >= ?", *filter.MinScore)
	}
	return query
}

// likePattern matches term as a literal substring; '!' is the escape character.
func likePattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func (repo *Jobs) UpdateStatus(ctx context.Context, id string, status entities.JobStatus) error {
	return errors.Wrap(repo.db.WithContext(ctx).Model(&entities.JobPosting{}).Where("id = ?", id).
		Update("status", status).Error, "failed to update job status")
}

// ExpireOlderThan marks active postings created before the given time as expired.
func (repo *Jobs) ExpireOlderThan(ctx context.Context, before time.Time) (int64, error) {
	res := repo.db.WithContext(ctx).Model(&entities.JobPosting{}).
		Where("status = ? AND created_at < ?", entities.StatusActive, before).
		Update("status", entities.StatusExpired)
	return res.RowsAffected, errors.Wrap(res.Error, "failed to expire job postings")
}

// TrustScores returns the cached trust_score column of every posting.
func (repo *Jobs) TrustScores(ctx context.Context) (map[string]int, error) {

	var rows []struct {
		ID         string
		TrustScore int
	}
	if err := repo.db.WithContext(ctx).Model(&entities.JobPosting{}).
		Select("id, trust_score").Scan(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "failed to read trust scores")
	}

	result := make(map[string]int, len(rows))
	for _, row := range rows {
		result[row.ID] = row.TrustScore
	}
	return result, nil
}

func (repo *Jobs) SetTrustScore(ctx context.Context, id string, score int) error {
	return errors.Wrap(repo.db.WithContext(ctx).Model(&entities.JobPosting{}).Where("id = ?", id).
		UpdateColumn("trust_score", score).Error, "failed to update trust score")
}
