package services

import (
	"context"
	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/realjobs/internal/auth"
	"github.com/maxaizer/realjobs/internal/entities"
	"github.com/maxaizer/realjobs/internal/repositories"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"path/filepath"
	"testing"
	"time"
)

type testEnv struct {
	db           *repositories.DbContext
	bus          EventBus.Bus
	users        *repositories.Users
	jobs         *repositories.Jobs
	votes        *repositories.Votes
	comments     *repositories.Comments
	commentVotes *repositories.CommentVotes
	bookmarks    *repositories.Bookmarks
	jobLedger    *JobVoteLedger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dbCtx, err := repositories.NewDbContext(repositories.Sqlite, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, dbCtx.Migrate())
	t.Cleanup(func() { _ = dbCtx.Close() })

	env := &testEnv{
		db:           dbCtx,
		bus:          EventBus.New(),
		users:        repositories.NewUsersRepository(dbCtx.DB),
		jobs:         repositories.NewJobsRepository(dbCtx.DB),
		votes:        repositories.NewVotesRepository(dbCtx.DB),
		comments:     repositories.NewCommentsRepository(dbCtx.DB),
		commentVotes: repositories.NewCommentVotesRepository(dbCtx.DB),
		bookmarks:    repositories.NewBookmarksRepository(dbCtx.DB),
	}
	env.jobLedger = NewVoteLedger(JobVoteKind, env.votes, env.bus)
	return env
}

func (env *testEnv) user(t *testing.T, telegramID int64) entities.User {
	t.Helper()
	user, err := env.users.EnsureByTelegramID(context.Background(), telegramID, "tester")
	require.NoError(t, err)
	return *user
}

func (env *testEnv) job(t *testing.T, owner entities.User, mutate ...func(job *entities.JobPosting)) entities.JobPosting {
	t.Helper()
	job := &entities.JobPosting{
		UserID:    owner.ID,
		Url:       "https://example.com/jobs/42",
		Title:     "Platform Engineer",
		Company:   "Initech",
		JobType:   entities.Remote,
		Status:    entities.StatusActive,
		CreatedAt: time.Now(),
	}
	for _, m := range mutate {
		m(job)
	}
	require.NoError(t, env.jobs.Add(context.Background(), job))
	return *job
}

func as(user entities.User) context.Context {
	return auth.WithUser(context.Background(), user)
}

type mockAiClient struct {
	mock.Mock
}

func (m *mockAiClient) GenerateResponse(ctx context.Context, request string) (string, error) {
	args := m.Called(ctx, request)
	return args.String(0), args.Error(1)
}

type fixedClassifier struct {
	sentiment entities.Sentiment
	calls     int
}

func (f *fixedClassifier) Classify(ctx context.Context, content string) entities.Sentiment {
	f.calls++
	return f.sentiment
}
