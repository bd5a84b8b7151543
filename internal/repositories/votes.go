package repositories

import (
	"context"
	"github.com/maxaizer/realjobs/internal/entities"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Votes is the job vote ledger. Every write recomputes the posting's
// trust_score from the ledger in the same transaction.
type Votes struct {
	box *ballotBox[entities.VoteType]
}

func NewVotesRepository(db *gorm.DB) *Votes {
	return &Votes{box: &ballotBox[entities.VoteType]{
		db:           db,
		table:        "votes",
		targetTable:  "job_postings",
		targetColumn: "job_posting_id",
		positive:     entities.VoteUp,
		negative:     entities.VoteDown,
		model:        func() any { return &entities.Vote{} },
		newRow: func(id, voterID, targetID string, voteType entities.VoteType) any {
			return &entities.Vote{ID: id, UserID: voterID, JobPostingID: targetID, VoteType: voteType}
		},
		afterWrite: syncTrustScore,
	}}
}

func syncTrustScore(tx *gorm.DB, jobID string, tally entities.Tally) error {
	err := tx.Model(&entities.JobPosting{}).Where("id = ?", jobID).
		UpdateColumn("trust_score", tally.Net()).Error
	return errors.Wrap(err, "failed to update trust score")
}

func (repo *Votes) Cast(ctx context.Context, voterID, jobID string, voteType entities.VoteType) (
	CastOutcome[entities.VoteType], error) {
	return repo.box.cast(ctx, voterID, jobID, voteType)
}

func (repo *Votes) CastIfAbsent(ctx context.Context, voterID, jobID string, voteType entities.VoteType) (bool, error) {
	return repo.box.castIfAbsent(ctx, voterID, jobID, voteType)
}

func (repo *Votes) Get(ctx context.Context, voterID, jobID string) (entities.VoteType, bool, error) {
	return repo.box.get(ctx, voterID, jobID)
}

func (repo *Votes) Tally(ctx context.Context, jobID string) (entities.Tally, error) {
	return repo.box.tally(repo.box.db.WithContext(ctx), jobID)
}

func (repo *Votes) Tallies(ctx context.Context, jobIDs []string) (map[string]entities.Tally, error) {
	if jobIDs == nil {
		jobIDs = []string{}
	}
	return repo.box.tallies(repo.box.db.WithContext(ctx), jobIDs)
}

// AllTallies counts the ledger of every job that has at least one vote.
func (repo *Votes) AllTallies(ctx context.Context) (map[string]entities.Tally, error) {
	return repo.box.tallies(repo.box.db.WithContext(ctx), nil)
}
