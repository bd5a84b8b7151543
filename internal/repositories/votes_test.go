package repositories

import (
	"context"
	"github.com/maxaizer/realjobs/internal/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"sync"
	"testing"
)

func trustScoreOf(t *testing.T, dbCtx *DbContext, jobID string) int {
	job, err := NewJobsRepository(dbCtx.DB).GetByID(context.Background(), jobID)
	require.NoError(t, err)
	require.NotNil(t, job)
	return job.TrustScore
}

func TestVotes_CastInsertToggleSwing(t *testing.T) {
	dbCtx := newTestDb(t)
	ctx := context.Background()
	user := seedUser(t, dbCtx, 1)
	job := seedJob(t, dbCtx, user.ID)
	votes := NewVotesRepository(dbCtx.DB)

	outcome, err := votes.Cast(ctx, user.ID, job.ID, entities.VoteUp)
	require.NoError(t, err)
	assert.Equal(t, entities.VoteType(""), outcome.Previous)
	assert.Equal(t, entities.VoteUp, outcome.Current)
	assert.Equal(t, 1, outcome.Tally.Net())
	assert.Equal(t, 1, trustScoreOf(t, dbCtx, job.ID))

	outcome, err = votes.Cast(ctx, user.ID, job.ID, entities.VoteDown)
	require.NoError(t, err)
	assert.Equal(t, entities.VoteUp, outcome.Previous)
	assert.Equal(t, entities.VoteDown, outcome.Current)
	assert.Equal(t, -1, outcome.Tally.Net())
	assert.Equal(t, -1, trustScoreOf(t, dbCtx, job.ID))

	outcome, err = votes.Cast(ctx, user.ID, job.ID, entities.VoteDown)
	require.NoError(t, err)
	assert.Equal(t, entities.VoteDown, outcome.Previous)
	assert.Equal(t, entities.VoteType(""), outcome.Current)
	assert.Equal(t, 0, outcome.Tally.Net())

	_, found, err := votes.Get(ctx, user.ID, job.ID)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestVotes_UnknownParticipants(t *testing.T) {
	dbCtx := newTestDb(t)
	ctx := context.Background()
	user := seedUser(t, dbCtx, 1)
	job := seedJob(t, dbCtx, user.ID)
	votes := NewVotesRepository(dbCtx.DB)

	_, err := votes.Cast(ctx, user.ID, "missing", entities.VoteUp)
	assert.ErrorIs(t, err, ErrTargetNotFound)

	_, err = votes.Cast(ctx, "missing", job.ID, entities.VoteUp)
	assert.ErrorIs(t, err, ErrVoterNotFound)

	tally, err := votes.Tally(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.Tally{}, tally)
}

func TestVotes_CastIfAbsentNeverOverrides(t *testing.T) {
	dbCtx := newTestDb(t)
	ctx := context.Background()
	user := seedUser(t, dbCtx, 1)
	job := seedJob(t, dbCtx, user.ID)
	votes := NewVotesRepository(dbCtx.DB)

	_, err := votes.Cast(ctx, user.ID, job.ID, entities.VoteUp)
	require.NoError(t, err)

	inserted, err := votes.CastIfAbsent(ctx, user.ID, job.ID, entities.VoteDown)
	require.NoError(t, err)
	assert.False(t, inserted)

	voteType, found, err := votes.Get(ctx, user.ID, job.ID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, entities.VoteUp, voteType)
	assert.Equal(t, 1, trustScoreOf(t, dbCtx, job.ID))

	other := seedUser(t, dbCtx, 2)
	inserted, err = votes.CastIfAbsent(ctx, other.ID, job.ID, entities.VoteDown)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.Equal(t, 0, trustScoreOf(t, dbCtx, job.ID))
}

func TestVotes_ConcurrentCastsKeepOneRowPerVoter(t *testing.T) {
	dbCtx := newTestDb(t)
	ctx := context.Background()
	job := seedJob(t, dbCtx, seedUser(t, dbCtx, 100).ID)
	votes := NewVotesRepository(dbCtx.DB)

	var voters []*entities.User
	for i := int64(1); i <= 5; i++ {
		voters = append(voters, seedUser(t, dbCtx, i))
	}

	var wg sync.WaitGroup
	for _, voter := range voters {
		voter := voter
		for n := 0; n < 3; n++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := votes.CastIfAbsent(ctx, voter.ID, job.ID, entities.VoteUp)
				assert.NoError(t, err)
			}()
		}
	}
	wg.Wait()

	var rows int64
	require.NoError(t, dbCtx.DB.Model(&entities.Vote{}).Where("job_posting_id = ?", job.ID).Count(&rows).Error)
	assert.EqualValues(t, len(voters), rows)
	assert.Equal(t, len(voters), trustScoreOf(t, dbCtx, job.ID))
}

func TestVotes_ConcurrentVotersKeepTrustScoreInSync(t *testing.T) {
	dbCtx := newTestDb(t)
	ctx := context.Background()
	job := seedJob(t, dbCtx, seedUser(t, dbCtx, 100).ID)
	votes := NewVotesRepository(dbCtx.DB)

	var voters []*entities.User
	for i := int64(1); i <= 8; i++ {
		voters = append(voters, seedUser(t, dbCtx, i))
	}

	var wg sync.WaitGroup
	for i, voter := range voters {
		voter := voter
		voteType := entities.VoteUp
		if i%3 == 0 {
			voteType = entities.VoteDown
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := votes.Cast(ctx, voter.ID, job.ID, voteType)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	tally, err := votes.Tally(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.Tally{Positive: 5, Negative: 3}, tally)
	assert.Equal(t, tally.Net(), trustScoreOf(t, dbCtx, job.ID))
}

func TestVotes_TargetRowIsLockedBeforeTally(t *testing.T) {
	db, err := gorm.Open(mysql.New(mysql.Config{
		DSN:                       "user:pass@tcp(127.0.0.1:3306)/jobs",
		SkipInitializeWithVersion: true,
	}), &gorm.Config{DisableAutomaticPing: true})
	require.NoError(t, err)

	box := NewVotesRepository(db).box
	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var ids []string
		return box.lockTarget(tx, "job-1").Pluck("id", &ids)
	})
	assert.Contains(t, sql, "FROM `job_postings`")
	assert.Contains(t, sql, "FOR UPDATE")
}

func TestVotes_TalliesGroupsByJob(t *testing.T) {
	dbCtx := newTestDb(t)
	ctx := context.Background()
	alice := seedUser(t, dbCtx, 1)
	bob := seedUser(t, dbCtx, 2)
	first := seedJob(t, dbCtx, alice.ID)
	second := seedJob(t, dbCtx, alice.ID)
	votes := NewVotesRepository(dbCtx.DB)

	for _, c := range []struct {
		voter string
		job   string
		vote  entities.VoteType
	}{
		{alice.ID, first.ID, entities.VoteUp},
		{bob.ID, first.ID, entities.VoteDown},
		{bob.ID, second.ID, entities.VoteUp},
	} {
		_, err := votes.Cast(ctx, c.voter, c.job, c.vote)
		require.NoError(t, err)
	}

	tallies, err := votes.Tallies(ctx, []string{first.ID, second.ID})
	require.NoError(t, err)
	assert.Equal(t, entities.Tally{Positive: 1, Negative: 1}, tallies[first.ID])
	assert.Equal(t, entities.Tally{Positive: 1}, tallies[second.ID])

	empty, err := votes.Tallies(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)

	all, err := votes.AllTallies(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestCommentVotes_IndependentOfJobVotes(t *testing.T) {
	dbCtx := newTestDb(t)
	ctx := context.Background()
	user := seedUser(t, dbCtx, 1)
	job := seedJob(t, dbCtx, user.ID)
	comment := &entities.Comment{JobPostingID: job.ID, UserID: user.ID, Content: "legit", Sentiment: entities.Neutral}
	require.NoError(t, NewCommentsRepository(dbCtx.DB).Add(ctx, comment))

	commentVotes := NewCommentVotesRepository(dbCtx.DB)
	outcome, err := commentVotes.Cast(ctx, user.ID, comment.ID, entities.Helpful)
	require.NoError(t, err)
	assert.Equal(t, 1, outcome.Tally.Net())

	_, err = commentVotes.Cast(ctx, user.ID, job.ID, entities.Helpful)
	assert.ErrorIs(t, err, ErrTargetNotFound)

	assert.Equal(t, 0, trustScoreOf(t, dbCtx, job.ID))
}
