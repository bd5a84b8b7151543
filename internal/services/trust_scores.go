package services

import (
	"context"
	"github.com/maxaizer/realjobs/internal/entities"
	"github.com/maxaizer/realjobs/internal/trust"
	"github.com/pkg/errors"
)

type ledgerTally interface {
	Tally(ctx context.Context, jobID string) (entities.Tally, error)
}

type TrustScores struct {
	votes ledgerTally
	jobs  jobLookup
}

func NewTrustScores(votes ledgerTally, jobs jobLookup) *TrustScores {
	return &TrustScores{votes: votes, jobs: jobs}
}

// Compute returns upvotes minus downvotes as recorded in the ledger.
func (s *TrustScores) Compute(ctx context.Context, jobID string) (int, error) {
	tally, err := s.votes.Tally(ctx, jobID)
	if err != nil {
		return 0, err
	}
	return trust.Score(tally), nil
}

// Verify compares the cached trust_score of the job with the ledger.
func (s *TrustScores) Verify(ctx context.Context, jobID string) (bool, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return false, err
	}
	if job == nil {
		return false, errors.Wrapf(ErrNotFound, "job %s", jobID)
	}

	score, err := s.Compute(ctx, jobID)
	if err != nil {
		return false, err
	}
	return score == job.TrustScore, nil
}
