package api

import (
	"bytes"
	"context"
	"encoding/json"
	"github.com/asaskevich/EventBus"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/maxaizer/realjobs/internal/entities"
	"github.com/maxaizer/realjobs/internal/repositories"
	"github.com/maxaizer/realjobs/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type staticClassifier struct {
	sentiment entities.Sentiment
}

func (s staticClassifier) Classify(ctx context.Context, content string) entities.Sentiment {
	return s.sentiment
}

type testServer struct {
	server *Server
	http   *httptest.Server
	users  *services.Users
	jobs   *repositories.Jobs
	tokens *services.Tokens
	feed   *services.CommentFeed
}

func newTestServer(t *testing.T, sentiment entities.Sentiment) *testServer {
	t.Helper()

	dbCtx, err := repositories.NewDbContext(repositories.Sqlite, filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	require.NoError(t, dbCtx.Migrate())
	t.Cleanup(func() { _ = dbCtx.Close() })

	bus := EventBus.New()
	clock := clockwork.NewRealClock()

	usersRepo := repositories.NewUsersRepository(dbCtx.DB)
	jobsRepo := repositories.NewJobsRepository(dbCtx.DB)
	votesRepo := repositories.NewVotesRepository(dbCtx.DB)
	commentsRepo := repositories.NewCommentsRepository(dbCtx.DB)
	commentVotesRepo := repositories.NewCommentVotesRepository(dbCtx.DB)

	jobLedger := services.NewVoteLedger(services.JobVoteKind, votesRepo, bus)
	commentLedger := services.NewVoteLedger(services.CommentVoteKind, commentVotesRepo, bus)
	feed, err := services.NewCommentFeed(bus)
	require.NoError(t, err)

	env := &testServer{
		users:  services.NewUsers(repositories.NewCachedUsers(usersRepo), usersRepo),
		jobs:   jobsRepo,
		tokens: services.NewTokens("0123456789abcdef0123", time.Hour, clock),
		feed:   feed,
	}

	env.server = NewServer(Dependencies{
		Board:        services.NewBoard(jobsRepo, votesRepo, commentsRepo, 0, clock),
		Jobs:         services.NewJobs(jobsRepo),
		JobVotes:     jobLedger,
		CommentVotes: commentLedger,
		Comments: services.NewComments(commentsRepo, jobsRepo, staticClassifier{sentiment: sentiment},
			jobLedger, commentVotesRepo, bus),
		Bookmarks: services.NewBookmarks(repositories.NewBookmarksRepository(dbCtx.DB), jobsRepo),
		Trust:     services.NewTrustScores(votesRepo, jobsRepo),
		Tokens:    env.tokens,
		Users:     env.users,
		Feed:      feed,
		Clock:     clock,
	})
	env.http = httptest.NewServer(env.server.Handler())
	t.Cleanup(env.http.Close)
	return env
}

func (env *testServer) login(t *testing.T, telegramID int64) (entities.User, string) {
	t.Helper()
	user, err := env.users.EnsureTelegramUser(context.Background(), telegramID, "tester")
	require.NoError(t, err)
	token, err := env.tokens.Issue(user.ID)
	require.NoError(t, err)
	return user, token
}

func (env *testServer) seedJob(t *testing.T, owner entities.User) entities.JobPosting {
	t.Helper()
	job := &entities.JobPosting{
		UserID:    owner.ID,
		Url:       "https://example.com/jobs/7",
		Title:     "Go Developer",
		Company:   "Hooli",
		JobType:   entities.Remote,
		Status:    entities.StatusActive,
		CreatedAt: time.Now(),
	}
	require.NoError(t, env.jobs.Add(context.Background(), job))
	return *job
}

func (env *testServer) do(t *testing.T, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}
	req, err := http.NewRequest(method, env.http.URL+path, &payload)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func Test_Health(t *testing.T) {
	env := newTestServer(t, entities.Neutral)
	resp, body := env.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func Test_VoteRequiresToken(t *testing.T) {
	env := newTestServer(t, entities.Neutral)
	owner, _ := env.login(t, 1)
	job := env.seedJob(t, owner)

	resp, _ := env.do(t, http.MethodPost, "/api/jobs/"+job.ID+"/votes", "", voteRequest{VoteType: "up"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = env.do(t, http.MethodPost, "/api/jobs/"+job.ID+"/votes", "garbage", voteRequest{VoteType: "up"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func Test_JobVoteToggle(t *testing.T) {
	env := newTestServer(t, entities.Neutral)
	owner, _ := env.login(t, 1)
	_, token := env.login(t, 2)
	job := env.seedJob(t, owner)

	resp, body := env.do(t, http.MethodPost, "/api/jobs/"+job.ID+"/votes", token, voteRequest{VoteType: "up"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "up", body["current"])
	assert.EqualValues(t, 1, body["delta"])
	assert.EqualValues(t, 1, body["net_count"])

	resp, body = env.do(t, http.MethodPost, "/api/jobs/"+job.ID+"/votes", token, voteRequest{VoteType: "down"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, -2, body["delta"])
	assert.EqualValues(t, -1, body["net_count"])

	resp, body = env.do(t, http.MethodPost, "/api/jobs/"+job.ID+"/votes", token, voteRequest{VoteType: "down"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Nil(t, body["current"])
	assert.EqualValues(t, 0, body["net_count"])

	_, body = env.do(t, http.MethodGet, "/api/jobs/"+job.ID, "", nil)
	assert.EqualValues(t, 0, body["trust_score"])
}

func Test_TrustReflectsLedger(t *testing.T) {
	env := newTestServer(t, entities.Neutral)
	owner, _ := env.login(t, 1)
	_, token := env.login(t, 2)
	job := env.seedJob(t, owner)

	resp, _ := env.do(t, http.MethodPost, "/api/jobs/"+job.ID+"/votes", token, voteRequest{VoteType: "down"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := env.do(t, http.MethodGet, "/api/jobs/"+job.ID+"/trust", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, -1, body["trust_score"])
	assert.Equal(t, true, body["in_sync"])
	assert.Equal(t, "red", body["color"])
	assert.Equal(t, "NEW", body["badge"])
}

func Test_InvalidVoteTypeIsBadRequest(t *testing.T) {
	env := newTestServer(t, entities.Neutral)
	owner, token := env.login(t, 1)
	job := env.seedJob(t, owner)

	resp, _ := env.do(t, http.MethodPost, "/api/jobs/"+job.ID+"/votes", token, voteRequest{VoteType: "sideways"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func Test_UnknownJobIsNotFound(t *testing.T) {
	env := newTestServer(t, entities.Neutral)
	resp, _ := env.do(t, http.MethodGet, "/api/jobs/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func Test_ListJobsValidatesMode(t *testing.T) {
	env := newTestServer(t, entities.Neutral)
	resp, body := env.do(t, http.MethodGet, "/api/jobs?mode=loudest", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "mode", body["field"])
}

func Test_ListJobsRejectsHugePage(t *testing.T) {
	env := newTestServer(t, entities.Neutral)
	resp, body := env.do(t, http.MethodGet, "/api/jobs?mode=new&page=922337203685477580", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "page", body["field"])
}

func Test_ListJobsReturnsPage(t *testing.T) {
	env := newTestServer(t, entities.Neutral)
	owner, _ := env.login(t, 1)
	env.seedJob(t, owner)
	env.seedJob(t, owner)

	resp, body := env.do(t, http.MethodGet, "/api/jobs?mode=new", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "new", body["mode"])
	assert.Len(t, body["jobs"], 2)
	assert.Equal(t, false, body["has_more"])
}

func Test_NegativeCommentDownvotesJob(t *testing.T) {
	env := newTestServer(t, entities.Negative)
	owner, _ := env.login(t, 1)
	_, token := env.login(t, 2)
	job := env.seedJob(t, owner)

	resp, body := env.do(t, http.MethodPost, "/api/jobs/"+job.ID+"/comments", token,
		commentRequest{Content: "they never replied, looks fake"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, true, body["auto_downvoted"])

	_, body = env.do(t, http.MethodGet, "/api/jobs/"+job.ID, "", nil)
	assert.EqualValues(t, -1, body["trust_score"])
}

func Test_EmptyCommentIsRejected(t *testing.T) {
	env := newTestServer(t, entities.Neutral)
	owner, token := env.login(t, 1)
	job := env.seedJob(t, owner)

	resp, body := env.do(t, http.MethodPost, "/api/jobs/"+job.ID+"/comments", token, commentRequest{Content: "   "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "content", body["field"])
}

func Test_ThreadNestsReplies(t *testing.T) {
	env := newTestServer(t, entities.Neutral)
	owner, token := env.login(t, 1)
	job := env.seedJob(t, owner)

	_, body := env.do(t, http.MethodPost, "/api/jobs/"+job.ID+"/comments", token, commentRequest{Content: "applied"})
	rootID := body["comment"].(map[string]any)["id"].(string)
	env.do(t, http.MethodPost, "/api/jobs/"+job.ID+"/comments", token,
		commentRequest{Content: "any answer?", ParentCommentID: rootID})

	resp, err := http.Get(env.http.URL + "/api/jobs/" + job.ID + "/comments")
	require.NoError(t, err)
	defer resp.Body.Close()

	var roots []commentNodeResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&roots))
	require.Len(t, roots, 1)
	assert.Equal(t, rootID, roots[0].ID)
	require.Len(t, roots[0].Replies, 1)
	assert.Equal(t, 1, roots[0].Replies[0].Depth)
	assert.True(t, roots[0].Replies[0].CanReply)
}

func Test_SetStatusOnlyByOwner(t *testing.T) {
	env := newTestServer(t, entities.Neutral)
	owner, ownerToken := env.login(t, 1)
	_, otherToken := env.login(t, 2)
	job := env.seedJob(t, owner)

	resp, _ := env.do(t, http.MethodPatch, "/api/jobs/"+job.ID+"/status", otherToken, statusRequest{Status: "filled"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = env.do(t, http.MethodPatch, "/api/jobs/"+job.ID+"/status", ownerToken, statusRequest{Status: "filled"})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func Test_LiveCommentsStream(t *testing.T) {
	env := newTestServer(t, entities.Positive)
	owner, token := env.login(t, 1)
	job := env.seedJob(t, owner)

	wsURL := "ws" + strings.TrimPrefix(env.http.URL, "http") + "/api/jobs/" + job.ID + "/comments/live"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return env.feed.Listeners(job.ID) == 1 }, time.Second, 10*time.Millisecond)

	resp, _ := env.do(t, http.MethodPost, "/api/jobs/"+job.ID+"/comments", token, commentRequest{Content: "great team"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var message createdCommentResponse
	require.NoError(t, conn.ReadJSON(&message))
	assert.Equal(t, "great team", message.Comment.Content)
	assert.Equal(t, "positive", message.Comment.Sentiment)
	assert.Equal(t, "tester", message.AuthorName)
}

func Test_LiveCommentsUnknownJob(t *testing.T) {
	env := newTestServer(t, entities.Neutral)
	wsURL := "ws" + strings.TrimPrefix(env.http.URL, "http") + "/api/jobs/missing/comments/live"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
