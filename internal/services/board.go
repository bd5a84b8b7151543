package services

import (
	"context"
	"fmt"
	"github.com/jonboulle/clockwork"
	"github.com/maxaizer/realjobs/internal/entities"
	"github.com/maxaizer/realjobs/internal/metrics"
	"github.com/maxaizer/realjobs/internal/ranking"
	"github.com/maxaizer/realjobs/internal/trust"
	"github.com/samber/lo"
	"time"
)

const DefaultCandidateLimit = 500

// MaxPage bounds the zero-based page a caller may request.
const MaxPage = 10_000

type jobFinder interface {
	Find(ctx context.Context, filter ranking.Filter, limit int, offset int) ([]entities.JobPosting, error)
	Candidates(ctx context.Context, filter ranking.Filter, mode ranking.Mode, limit int) ([]entities.JobPosting, error)
}

type voteTallies interface {
	Tallies(ctx context.Context, jobIDs []string) (map[string]entities.Tally, error)
}

type commentCounter interface {
	CountByJobs(ctx context.Context, jobIDs []string) (map[string]int, error)
}

type RankedEntry struct {
	ranking.Entry
	Badge string
	Color string
}

type RankedPage struct {
	Mode    ranking.Mode
	Page    int
	Entries []RankedEntry
	HasMore bool
}

// Board produces the ranked job listings. New is paged by the store; the
// derived orders rank a window of candidate_limit postings picked by the
// store: highest trust score for Top, most downvoted for Fake, newest for Hot.
type Board struct {
	jobs           jobFinder
	votes          voteTallies
	comments       commentCounter
	candidateLimit int
	clock          clockwork.Clock
}

func NewBoard(jobs jobFinder, votes voteTallies, comments commentCounter, candidateLimit int,
	clock clockwork.Clock) *Board {
	if candidateLimit <= 0 {
		candidateLimit = DefaultCandidateLimit
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Board{jobs: jobs, votes: votes, comments: comments, candidateLimit: candidateLimit, clock: clock}
}

func (b *Board) Rank(ctx context.Context, mode ranking.Mode, filter ranking.Filter, page int) (RankedPage, error) {

	if page < 0 || page > MaxPage {
		return RankedPage{}, newValidationError("page", fmt.Sprintf("must be between 0 and %d", MaxPage))
	}

	start := time.Now()
	defer func() {
		metrics.RankingDuration.WithLabelValues(string(mode)).Observe(time.Since(start).Seconds())
	}()

	var entries []ranking.Entry
	var hasMore bool
	var err error

	switch mode {
	case ranking.New:
		entries, hasMore, err = b.newest(ctx, filter, page)
	case ranking.Hot, ranking.Top, ranking.Fake:
		entries, hasMore, err = b.derived(ctx, mode, filter, page)
	default:
		return RankedPage{}, newValidationError("mode", "unknown ranking mode")
	}
	if err != nil {
		return RankedPage{}, err
	}

	now := b.clock.Now()
	return RankedPage{
		Mode: mode,
		Page: page,
		Entries: lo.Map(entries, func(e ranking.Entry, _ int) RankedEntry {
			return RankedEntry{
				Entry: e,
				Badge: trust.Badge(e.VoteCount, e.Job.CreatedAt, now),
				Color: trust.Color(e.VoteCount),
			}
		}),
		HasMore: hasMore,
	}, nil
}

func (b *Board) newest(ctx context.Context, filter ranking.Filter, page int) ([]ranking.Entry, bool, error) {

	jobs, err := b.jobs.Find(ctx, filter, ranking.PageSize+1, page*ranking.PageSize)
	if err != nil {
		return nil, false, err
	}

	hasMore := len(jobs) > ranking.PageSize
	if hasMore {
		jobs = jobs[:ranking.PageSize]
	}

	entries, err := b.annotate(ctx, jobs)
	return entries, hasMore, err
}

func (b *Board) derived(ctx context.Context, mode ranking.Mode, filter ranking.Filter, page int) ([]ranking.Entry, bool, error) {

	jobs, err := b.jobs.Candidates(ctx, filter, mode, b.candidateLimit)
	if err != nil {
		return nil, false, err
	}

	entries, err := b.annotate(ctx, jobs)
	if err != nil {
		return nil, false, err
	}

	ranked := ranking.Rank(entries, mode, b.clock.Now())
	if mode == ranking.Fake {
		if page > 0 {
			return []ranking.Entry{}, false, nil
		}
		return ranked, false, nil
	}

	pageEntries, hasMore := ranking.Paginate(ranked, page, ranking.PageSize)
	return pageEntries, hasMore, nil
}

func (b *Board) annotate(ctx context.Context, jobs []entities.JobPosting) ([]ranking.Entry, error) {

	ids := lo.Map(jobs, func(j entities.JobPosting, _ int) string { return j.ID })

	tallies, err := b.votes.Tallies(ctx, ids)
	if err != nil {
		return nil, err
	}
	commentCounts, err := b.comments.CountByJobs(ctx, ids)
	if err != nil {
		return nil, err
	}

	entries := make([]ranking.Entry, 0, len(jobs))
	for _, job := range jobs {
		tally := tallies[job.ID]
		entries = append(entries, ranking.Entry{
			Job:           job,
			VoteCount:     tally.Net(),
			CommentCount:  commentCounts[job.ID],
			DownvoteCount: tally.Negative,
		})
	}
	return entries, nil
}
