package services

import (
	"context"
	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/realjobs/internal/auth"
	"github.com/maxaizer/realjobs/internal/entities"
	"github.com/maxaizer/realjobs/internal/events"
	"github.com/maxaizer/realjobs/internal/logger"
	"github.com/maxaizer/realjobs/internal/metrics"
	"github.com/maxaizer/realjobs/internal/threads"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"strings"
	"unicode/utf8"
)

type commentRepository interface {
	Add(ctx context.Context, comment *entities.Comment) error
	GetByID(ctx context.Context, id string) (*entities.Comment, error)
	ListByJob(ctx context.Context, jobID string) ([]entities.Comment, error)
}

type jobLookup interface {
	GetByID(ctx context.Context, id string) (*entities.JobPosting, error)
}

type sentimentClassifier interface {
	Classify(ctx context.Context, content string) entities.Sentiment
}

type autoVoter interface {
	CastIfAbsent(ctx context.Context, voterID, targetID string, voteType entities.VoteType) (bool, error)
}

type commentTallies interface {
	Tallies(ctx context.Context, commentIDs []string) (map[string]entities.Tally, error)
}

type CreateCommentRequest struct {
	JobID           string
	ParentCommentID string
	Content         string
}

type CreatedComment struct {
	Comment       entities.Comment
	AutoDownvoted bool
}

// Thread is the reply forest of a job with the net helpfulness of each comment.
type Thread struct {
	Forest      *threads.Forest
	Helpfulness map[string]int
}

type Comments struct {
	comments   commentRepository
	jobs       jobLookup
	classifier sentimentClassifier
	voter      autoVoter
	tallies    commentTallies
	bus        EventBus.Bus
}

func NewComments(comments commentRepository, jobs jobLookup, classifier sentimentClassifier, voter autoVoter,
	tallies commentTallies, bus EventBus.Bus) *Comments {
	return &Comments{
		comments:   comments,
		jobs:       jobs,
		classifier: classifier,
		voter:      voter,
		tallies:    tallies,
		bus:        bus,
	}
}

// Create stores a comment with its classified sentiment. A negative comment
// downvotes the job on the author's behalf unless the author already voted.
func (s *Comments) Create(ctx context.Context, request CreateCommentRequest) (CreatedComment, error) {

	user, ok := auth.CurrentUser(ctx)
	if !ok {
		return CreatedComment{}, ErrUnauthorized
	}

	content := strings.TrimSpace(request.Content)
	if content == "" {
		return CreatedComment{}, newValidationError("content", "must not be empty")
	}
	if utf8.RuneCountInString(content) > entities.MaxCommentLength {
		return CreatedComment{}, newValidationError("content", "must be at most 500 characters")
	}

	job, err := s.jobs.GetByID(ctx, request.JobID)
	if err != nil {
		return CreatedComment{}, err
	}
	if job == nil {
		return CreatedComment{}, errors.Wrapf(ErrNotFound, "job %s", request.JobID)
	}

	comment := entities.Comment{
		JobPostingID: job.ID,
		UserID:       user.ID,
		Content:      content,
	}

	if parentID, err := s.resolveParent(ctx, job.ID, request.ParentCommentID); err != nil {
		return CreatedComment{}, err
	} else if parentID != "" {
		comment.ParentCommentID = &parentID
	}

	comment.Sentiment = s.classifier.Classify(ctx, content)

	if err = s.comments.Add(ctx, &comment); err != nil {
		return CreatedComment{}, err
	}
	metrics.CommentsCreatedCounter.WithLabelValues(string(comment.Sentiment)).Inc()

	created := CreatedComment{Comment: comment}
	if comment.Sentiment == entities.Negative {
		created.AutoDownvoted = s.autoDownvote(ctx, user.ID, job.ID)
	}

	if s.bus != nil {
		s.bus.Publish(events.CommentCreatedTopic, events.CommentCreated{
			Comment:       comment,
			AuthorName:    user.Username,
			AutoDownvoted: created.AutoDownvoted,
		})
	}

	return created, nil
}

// resolveParent drops a parent that is missing or belongs to another job.
func (s *Comments) resolveParent(ctx context.Context, jobID, parentID string) (string, error) {
	if parentID == "" {
		return "", nil
	}

	parent, err := s.comments.GetByID(ctx, parentID)
	if err != nil {
		return "", err
	}
	if parent == nil || parent.JobPostingID != jobID {
		log.Infof("ignoring parent %s for comment on job %s", parentID, jobID)
		return "", nil
	}
	return parent.ID, nil
}

func (s *Comments) autoDownvote(ctx context.Context, userID, jobID string) bool {
	inserted, err := s.voter.CastIfAbsent(ctx, userID, jobID, entities.VoteDown)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
			Errorf("failed to downvote job %s for negative comment: %v", jobID, err)
		return false
	}
	if inserted {
		metrics.AutoDownvotesCounter.Inc()
	}
	return inserted
}

func (s *Comments) Thread(ctx context.Context, jobID string) (Thread, error) {

	comments, err := s.comments.ListByJob(ctx, jobID)
	if err != nil {
		return Thread{}, err
	}

	thread := Thread{Forest: threads.Build(comments), Helpfulness: map[string]int{}}
	if s.tallies == nil || len(comments) == 0 {
		return thread, nil
	}

	ids := lo.Map(comments, func(c entities.Comment, _ int) string { return c.ID })
	tallies, err := s.tallies.Tallies(ctx, ids)
	if err != nil {
		return Thread{}, err
	}
	for id, tally := range tallies {
		thread.Helpfulness[id] = tally.Net()
	}
	return thread, nil
}

// Get returns the comment or ErrNotFound.
func (s *Comments) Get(ctx context.Context, id string) (*entities.Comment, error) {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, errors.Wrapf(ErrNotFound, "comment %s", id)
	}
	return comment, nil
}
