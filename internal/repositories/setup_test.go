package repositories

import (
	"context"
	"github.com/maxaizer/realjobs/internal/entities"
	"github.com/stretchr/testify/require"
	"path/filepath"
	"testing"
	"time"
)

func newTestDb(t *testing.T) *DbContext {
	t.Helper()

	dbCtx, err := NewDbContext(Sqlite, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, dbCtx.Migrate())

	t.Cleanup(func() { _ = dbCtx.Close() })
	return dbCtx
}

func seedUser(t *testing.T, dbCtx *DbContext, telegramID int64) *entities.User {
	t.Helper()

	user, err := NewUsersRepository(dbCtx.DB).EnsureByTelegramID(context.Background(), telegramID, "user")
	require.NoError(t, err)
	return user
}

func seedJob(t *testing.T, dbCtx *DbContext, ownerID string, mutate ...func(job *entities.JobPosting)) *entities.JobPosting {
	t.Helper()

	job := &entities.JobPosting{
		UserID:    ownerID,
		Url:       "https://example.com/jobs/1",
		Title:     "Backend Engineer",
		Company:   "Acme",
		JobType:   entities.Remote,
		Status:    entities.StatusActive,
		CreatedAt: time.Now(),
	}
	for _, m := range mutate {
		m(job)
	}

	require.NoError(t, NewJobsRepository(dbCtx.DB).Add(context.Background(), job))
	return job
}
