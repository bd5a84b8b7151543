package api

import (
	"github.com/labstack/echo/v4"
	"github.com/maxaizer/realjobs/internal/entities"
	"github.com/maxaizer/realjobs/internal/ranking"
	"github.com/maxaizer/realjobs/internal/services"
	"github.com/samber/lo"
	"net/http"
	"strconv"
)

func (s *Server) handleListJobs(c echo.Context) error {

	mode, err := ranking.ParseMode(c.QueryParam("mode"))
	if err != nil {
		return &services.ValidationError{Field: "mode", Reason: err.Error()}
	}

	page, err := intParam(c, "page")
	if err != nil {
		return err
	}

	filter, err := parseFilter(c)
	if err != nil {
		return err
	}

	ranked, err := s.deps.Board.Rank(c.Request().Context(), mode, filter, lo.FromPtr(page))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, pageResponse{
		Mode:    string(ranked.Mode),
		Page:    ranked.Page,
		HasMore: ranked.HasMore,
		Jobs:    lo.Map(ranked.Entries, func(e services.RankedEntry, _ int) jobResponse { return newRankedJobResponse(e) }),
	})
}

func parseFilter(c echo.Context) (ranking.Filter, error) {
	filter := ranking.Filter{
		Search:   c.QueryParam("search"),
		Category: c.QueryParam("category"),
		Location: c.QueryParam("location"),
	}

	if value := c.QueryParam("job_type"); value != "" {
		jobType, err := entities.ToJobType(value)
		if err != nil {
			return filter, &services.ValidationError{Field: "job_type", Reason: err.Error()}
		}
		filter.JobType = jobType
	}

	minScore, err := intParam(c, "min_score")
	if err != nil {
		return filter, err
	}
	filter.MinScore = minScore
	return filter, nil
}

func intParam(c echo.Context, name string) (*int, error) {
	value := c.QueryParam(name)
	if value == "" {
		return nil, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return nil, &services.ValidationError{Field: name, Reason: "must be an integer"}
	}
	return &parsed, nil
}

func (s *Server) handleSubmitJob(c echo.Context) error {
	var request submitJobRequest
	if err := c.Bind(&request); err != nil {
		return err
	}

	job, err := s.deps.Jobs.Submit(c.Request().Context(), services.SubmitJobRequest{
		Url:         request.Url,
		Title:       request.Title,
		Company:     request.Company,
		Description: request.Description,
		Category:    request.Category,
		Location:    request.Location,
		JobType:     request.JobType,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, newJobResponse(*job, s.deps.Clock.Now()))
}

func (s *Server) handleGetJob(c echo.Context) error {
	job, err := s.deps.Jobs.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newJobResponse(*job, s.deps.Clock.Now()))
}

func (s *Server) handleTrust(c echo.Context) error {
	ctx := c.Request().Context()
	job, err := s.deps.Jobs.Get(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	score, err := s.deps.Trust.Compute(ctx, job.ID)
	if err != nil {
		return err
	}
	inSync, err := s.deps.Trust.Verify(ctx, job.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newTrustResponse(job.ID, score, inSync, job.CreatedAt, s.deps.Clock.Now()))
}

func (s *Server) handleSetStatus(c echo.Context) error {
	var request statusRequest
	if err := c.Bind(&request); err != nil {
		return err
	}

	status, err := entities.ToJobStatus(request.Status)
	if err != nil {
		return &services.ValidationError{Field: "status", Reason: err.Error()}
	}
	if err = s.deps.Jobs.SetStatus(c.Request().Context(), c.Param("id"), status); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleJobVote(c echo.Context) error {
	var request voteRequest
	if err := c.Bind(&request); err != nil {
		return err
	}

	result, err := s.deps.JobVotes.Cast(c.Request().Context(), c.Param("id"), entities.VoteType(request.VoteType))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, voteResponse{
		Previous: string(result.Previous),
		Current:  string(result.Current),
		Delta:    result.Delta,
		NetCount: result.NetCount,
	})
}

func (s *Server) handleCommentVote(c echo.Context) error {
	var request voteRequest
	if err := c.Bind(&request); err != nil {
		return err
	}

	result, err := s.deps.CommentVotes.Cast(c.Request().Context(), c.Param("id"),
		entities.CommentVoteType(request.VoteType))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, voteResponse{
		Previous: string(result.Previous),
		Current:  string(result.Current),
		Delta:    result.Delta,
		NetCount: result.NetCount,
	})
}

func (s *Server) handleBookmark(c echo.Context) error {
	bookmarked, err := s.deps.Bookmarks.Toggle(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]bool{"bookmarked": bookmarked})
}

func (s *Server) handleThread(c echo.Context) error {
	ctx := c.Request().Context()
	if _, err := s.deps.Jobs.Get(ctx, c.Param("id")); err != nil {
		return err
	}

	thread, err := s.deps.Comments.Thread(ctx, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newThreadResponse(thread))
}

func (s *Server) handleCreateComment(c echo.Context) error {
	var request commentRequest
	if err := c.Bind(&request); err != nil {
		return err
	}

	created, err := s.deps.Comments.Create(c.Request().Context(), services.CreateCommentRequest{
		JobID:           c.Param("id"),
		ParentCommentID: request.ParentCommentID,
		Content:         request.Content,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, createdCommentResponse{
		Comment:       newCommentResponse(created.Comment),
		AutoDownvoted: created.AutoDownvoted,
	})
}
