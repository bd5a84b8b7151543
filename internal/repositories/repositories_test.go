package repositories

import (
	"context"
	"github.com/maxaizer/realjobs/internal/entities"
	"github.com/maxaizer/realjobs/internal/ranking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

func TestJobs_FindAppliesFilter(t *testing.T) {
	dbCtx := newTestDb(t)
	ctx := context.Background()
	owner := seedUser(t, dbCtx, 1)
	now := time.Now()

	golang := seedJob(t, dbCtx, owner.ID, func(job *entities.JobPosting) {
		job.Title = "Senior Golang Developer"
		job.Location = "Berlin, Germany"
		job.Category = "engineering"
		job.TrustScore = 7
		job.CreatedAt = now.Add(-time.Hour)
	})
	seedJob(t, dbCtx, owner.ID, func(job *entities.JobPosting) {
		job.Title = "Golang Developer (expired)"
		job.Status = entities.StatusExpired
	})
	seedJob(t, dbCtx, owner.ID, func(job *entities.JobPosting) {
		job.Title = "Product Designer"
		job.JobType = entities.Onsite
		job.CreatedAt = now
	})

	jobs := NewJobsRepository(dbCtx.DB)

	found, err := jobs.Find(ctx, ranking.Filter{Search: "GOLANG"}, 10, 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, golang.ID, found[0].ID)

	minScore := 5
	found, err = jobs.Find(ctx, ranking.Filter{Location: "berlin", Category: "engineering", MinScore: &minScore}, 10, 0)
	require.NoError(t, err)
	assert.Len(t, found, 1)

	found, err = jobs.Find(ctx, ranking.Filter{}, 10, 0)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "Product Designer", found[0].Title)

	found, err = jobs.Find(ctx, ranking.Filter{JobType: entities.Onsite}, 10, 0)
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestJobs_FindSearchIsLiteral(t *testing.T) {
	dbCtx := newTestDb(t)
	ctx := context.Background()
	owner := seedUser(t, dbCtx, 1)

	plain := seedJob(t, dbCtx, owner.ID, func(job *entities.JobPosting) {
		job.Title = "Data Engineer 50 percent"
	})
	percent := seedJob(t, dbCtx, owner.ID, func(job *entities.JobPosting) {
		job.Title = "Growth Lead, 50% bonus"
	})
	underscore := seedJob(t, dbCtx, owner.ID, func(job *entities.JobPosting) {
		job.Title = "Owner of data_engineer pipelines"
	})
	bang := seedJob(t, dbCtx, owner.ID, func(job *entities.JobPosting) {
		job.Title = "Hiring now! Apply"
		job.Location = "Remote_EU"
	})

	jobs := NewJobsRepository(dbCtx.DB)
	cases := map[string]struct {
		filter ranking.Filter
		want   *entities.JobPosting
	}{
		"percent":    {ranking.Filter{Search: "50%"}, percent},
		"underscore": {ranking.Filter{Search: "data_engineer"}, underscore},
		"bang":       {ranking.Filter{Search: "now! apply"}, bang},
		"location":   {ranking.Filter{Location: "remote_eu"}, bang},
	}
	for name, tc := range cases {
		found, err := jobs.Find(ctx, tc.filter, 10, 0)
		require.NoError(t, err, name)
		require.Len(t, found, 1, name)
		assert.Equal(t, tc.want.ID, found[0].ID, name)
	}

	found, err := jobs.Find(ctx, ranking.Filter{Search: "data engineer"}, 10, 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, plain.ID, found[0].ID)
}

func TestJobs_ExpireOlderThan(t *testing.T) {
	dbCtx := newTestDb(t)
	ctx := context.Background()
	owner := seedUser(t, dbCtx, 1)
	old := seedJob(t, dbCtx, owner.ID, func(job *entities.JobPosting) {
		job.CreatedAt = time.Now().AddDate(0, 0, -40)
	})
	fresh := seedJob(t, dbCtx, owner.ID)

	jobs := NewJobsRepository(dbCtx.DB)
	expired, err := jobs.ExpireOlderThan(ctx, time.Now().AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.EqualValues(t, 1, expired)

	got, err := jobs.GetByID(ctx, old.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.StatusExpired, got.Status)

	got, err = jobs.GetByID(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.StatusActive, got.Status)
}

func TestComments_ListAndCount(t *testing.T) {
	dbCtx := newTestDb(t)
	ctx := context.Background()
	user := seedUser(t, dbCtx, 1)
	job := seedJob(t, dbCtx, user.ID)
	comments := NewCommentsRepository(dbCtx.DB)

	now := time.Now()
	first := &entities.Comment{JobPostingID: job.ID, UserID: user.ID, Content: "first", CreatedAt: now.Add(-time.Minute)}
	second := &entities.Comment{JobPostingID: job.ID, UserID: user.ID, Content: "second", CreatedAt: now,
		ParentCommentID: &first.ID}
	require.NoError(t, comments.Add(ctx, first))
	require.NoError(t, comments.Add(ctx, second))

	list, err := comments.ListByJob(ctx, job.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.True(t, list[0].IsReply())

	counts, err := comments.CountByJobs(ctx, []string{job.ID, "other"})
	require.NoError(t, err)
	assert.Equal(t, 2, counts[job.ID])
	assert.Equal(t, 0, counts["other"])

	missing, err := comments.GetByID(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestBookmarks_Toggle(t *testing.T) {
	dbCtx := newTestDb(t)
	ctx := context.Background()
	user := seedUser(t, dbCtx, 1)
	job := seedJob(t, dbCtx, user.ID)
	bookmarks := NewBookmarksRepository(dbCtx.DB)

	bookmarked, err := bookmarks.Toggle(ctx, user.ID, job.ID)
	require.NoError(t, err)
	assert.True(t, bookmarked)

	holders, err := bookmarks.UsersByJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{user.ID}, holders)

	bookmarked, err = bookmarks.Toggle(ctx, user.ID, job.ID)
	require.NoError(t, err)
	assert.False(t, bookmarked)

	exists, err := bookmarks.Exists(ctx, user.ID, job.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUsers_EnsureIsIdempotent(t *testing.T) {
	dbCtx := newTestDb(t)
	ctx := context.Background()
	users := NewUsersRepository(dbCtx.DB)

	first, err := users.EnsureByTelegramID(ctx, 42, "alice")
	require.NoError(t, err)
	second, err := users.EnsureByTelegramID(ctx, 42, "alice")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	cached := NewCachedUsers(users)
	third, err := cached.EnsureByTelegramID(ctx, 42, "alice")
	require.NoError(t, err)
	assert.Equal(t, first.ID, third.ID)
}
