// Package api serves the board over HTTP: ranked listings, votes, comments
// and a websocket stream of new comments per job.
package api

import (
	"context"
	"errors"
	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/maxaizer/realjobs/internal/entities"
	"github.com/maxaizer/realjobs/internal/ranking"
	"github.com/maxaizer/realjobs/internal/services"
	log "github.com/sirupsen/logrus"
	"net/http"
)

type board interface {
	Rank(ctx context.Context, mode ranking.Mode, filter ranking.Filter, page int) (services.RankedPage, error)
}

type jobService interface {
	Submit(ctx context.Context, request services.SubmitJobRequest) (*entities.JobPosting, error)
	Get(ctx context.Context, id string) (*entities.JobPosting, error)
	SetStatus(ctx context.Context, id string, status entities.JobStatus) error
}

type jobVoter interface {
	Cast(ctx context.Context, jobID string, voteType entities.VoteType) (services.CastResult[entities.VoteType], error)
}

type commentVoter interface {
	Cast(ctx context.Context, commentID string, voteType entities.CommentVoteType) (
		services.CastResult[entities.CommentVoteType], error)
}

type commentService interface {
	Create(ctx context.Context, request services.CreateCommentRequest) (services.CreatedComment, error)
	Thread(ctx context.Context, jobID string) (services.Thread, error)
}

type bookmarkService interface {
	Toggle(ctx context.Context, jobID string) (bool, error)
}

type tokenParser interface {
	Parse(token string) (string, error)
}

type userLoader interface {
	Get(ctx context.Context, id string) (entities.User, error)
}

type trustScores interface {
	Compute(ctx context.Context, jobID string) (int, error)
	Verify(ctx context.Context, jobID string) (bool, error)
}

type commentFeed interface {
	Subscribe(jobID string, fn services.CommentListener) (unsubscribe func())
}

type Dependencies struct {
	Board        board
	Jobs         jobService
	JobVotes     jobVoter
	CommentVotes commentVoter
	Comments     commentService
	Bookmarks    bookmarkService
	Trust        trustScores
	Tokens       tokenParser
	Users        userLoader
	Feed         commentFeed
	Clock        clockwork.Clock
}

type Server struct {
	echo *echo.Echo
	deps Dependencies
}

func NewServer(deps Dependencies) *Server {
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.WithFields(log.Fields{
				"method":  v.Method,
				"uri":     v.URI,
				"status":  v.Status,
				"latency": v.Latency,
			}).Debug("request handled")
			return nil
		},
	}))

	s := &Server{echo: e, deps: deps}
	e.HTTPErrorHandler = s.handleError
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api := s.echo.Group("/api")
	api.GET("/jobs", s.handleListJobs)
	api.POST("/jobs", s.handleSubmitJob, s.requireAuth)
	api.GET("/jobs/:id", s.handleGetJob)
	api.GET("/jobs/:id/trust", s.handleTrust)
	api.PATCH("/jobs/:id/status", s.handleSetStatus, s.requireAuth)
	api.POST("/jobs/:id/votes", s.handleJobVote, s.requireAuth)
	api.POST("/jobs/:id/bookmark", s.handleBookmark, s.requireAuth)
	api.GET("/jobs/:id/comments", s.handleThread)
	api.POST("/jobs/:id/comments", s.handleCreateComment, s.requireAuth)
	api.GET("/jobs/:id/comments/live", s.handleLiveComments)
	api.POST("/comments/:id/votes", s.handleCommentVote, s.requireAuth)
}

func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start blocks until the server stops; a graceful Shutdown is not an error.
func (s *Server) Start(addr string) error {
	log.Infof("http api listening on %s", addr)
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
