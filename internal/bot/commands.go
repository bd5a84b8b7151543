package bot

import (
	"context"
	"fmt"
	botApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/maxaizer/realjobs/internal/entities"
	"github.com/maxaizer/realjobs/internal/events"
	"github.com/maxaizer/realjobs/internal/logger"
	"github.com/maxaizer/realjobs/internal/ranking"
	"github.com/maxaizer/realjobs/internal/services"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"strconv"
	"strings"
)

const helpText = `Browse:
/jobs [hot|new|top|fake] [page] - ranked job postings
/job <id> - a posting with its comments
/myjobs - postings you submitted

Vote:
/up <job id>, /down <job id> - vote on a posting, repeat to undo
/helpful <comment id>, /nothelpful <comment id> - rate a comment

Discuss:
/comment <job id> <text> - comment on a posting
/reply <comment id> <text> - reply to a comment

Follow:
/bookmark <job id> - bookmark or unbookmark, bookmarked jobs notify you about new comments
/bookmarks - your bookmarks
/watch <job id>, /unwatch <job id> - live comments for this chat

Post:
/submit - post a job
/filled <job id>, /expired <job id> - close your posting
/token - an access token for the HTTP API`

func (b *Bot) handleCommand(ctx context.Context, user entities.User, userID, chatID int64, command, args string) {

	args = strings.TrimSpace(args)

	var response string
	var err error

	switch command {
	case "start", backToMenuCommandName:
		b.userContexts.Reset(userID)
		msg := botApi.NewMessage(chatID, "Welcome to the job board! Send /help to see what I can do.")
		msg.ReplyMarkup = defaultReplyKeyboard()
		_, _ = sendWithLogError(b.api, msg)
		return
	case "submit", submitJobCommandName:
		b.userContexts.With(userID, chatID, func(userCtx *userContext) {
			userCtx.RunCommand(newSubmitJobCommand(b.ctx, b.api, chatID, user, b.services.Jobs))
		})
		return
	case "help":
		response = helpText
	case "jobs", jobsCommandName:
		response, err = b.listJobs(ctx, args)
	case "job":
		response, err = b.showJob(ctx, args)
	case "myjobs":
		response, err = b.myJobs(ctx)
	case "up":
		response, err = b.voteJob(ctx, args, entities.VoteUp)
	case "down":
		response, err = b.voteJob(ctx, args, entities.VoteDown)
	case "helpful":
		response, err = b.voteComment(ctx, args, entities.Helpful)
	case "nothelpful":
		response, err = b.voteComment(ctx, args, entities.NotHelpful)
	case "comment":
		response, err = b.comment(ctx, args)
	case "reply":
		response, err = b.replyToComment(ctx, args)
	case "bookmark":
		response, err = b.toggleBookmark(ctx, args)
	case "bookmarks":
		response, err = b.listBookmarks(ctx)
	case "watch":
		response, err = b.watch(ctx, chatID, args)
	case "unwatch":
		response, err = b.unwatch(chatID, args)
	case "filled":
		response, err = b.closeJob(ctx, args, entities.StatusFilled)
	case "expired":
		response, err = b.closeJob(ctx, args, entities.StatusExpired)
	case "token":
		response, err = b.issueToken(user)
	default:
		response = "Unknown command! Send /help to see them."
	}

	if err != nil {
		response = describeError(err)
	}
	sendText(b.api, chatID, response)
}

var errMissingArgument = errors.New("missing argument")

// splitArgs returns the first word and the rest of the arguments.
func splitArgs(args string) (string, string, error) {
	head, tail, _ := strings.Cut(strings.TrimSpace(args), " ")
	if head == "" {
		return "", "", errMissingArgument
	}
	return head, strings.TrimSpace(tail), nil
}

func (b *Bot) listJobs(ctx context.Context, args string) (string, error) {

	fields := strings.Fields(args)
	mode := ranking.Hot
	page := 0

	if len(fields) > 0 {
		parsed, err := ranking.ParseMode(strings.ToLower(fields[0]))
		if err != nil {
			return "", &services.ValidationError{Field: "mode", Reason: "use hot, new, top or fake"}
		}
		mode = parsed
	}
	if len(fields) > 1 {
		number, err := strconv.Atoi(fields[1])
		if err != nil || number < 1 {
			return "", &services.ValidationError{Field: "page", Reason: "must be a positive number"}
		}
		page = number - 1
	}

	ranked, err := b.services.Board.Rank(ctx, mode, ranking.Filter{}, page)
	if err != nil {
		return "", err
	}
	return formatPage(ranked), nil
}

func (b *Bot) showJob(ctx context.Context, args string) (string, error) {
	jobID, _, err := splitArgs(args)
	if err != nil {
		return "", err
	}

	job, err := b.services.Jobs.Get(ctx, jobID)
	if err != nil {
		return "", err
	}
	thread, err := b.services.Comments.Thread(ctx, job.ID)
	if err != nil {
		return "", err
	}
	return formatJob(*job, thread, b.services.Clock.Now()), nil
}

func (b *Bot) myJobs(ctx context.Context) (string, error) {
	jobs, err := b.services.Jobs.ListByOwner(ctx)
	if err != nil {
		return "", err
	}
	return formatJobList("Your postings", jobs), nil
}

func (b *Bot) voteJob(ctx context.Context, args string, voteType entities.VoteType) (string, error) {
	jobID, _, err := splitArgs(args)
	if err != nil {
		return "", err
	}

	result, err := b.services.JobVotes.Cast(ctx, jobID, voteType)
	if err != nil {
		return "", err
	}
	if result.Current == "" {
		return fmt.Sprintf("Vote removed. Trust score is now %d.", result.NetCount), nil
	}
	return fmt.Sprintf("Voted %s. Trust score is now %d.", result.Current, result.NetCount), nil
}

func (b *Bot) voteComment(ctx context.Context, args string, voteType entities.CommentVoteType) (string, error) {
	commentID, _, err := splitArgs(args)
	if err != nil {
		return "", err
	}

	result, err := b.services.CommentVotes.Cast(ctx, commentID, voteType)
	if err != nil {
		return "", err
	}
	if result.Current == "" {
		return fmt.Sprintf("Rating removed. Helpfulness is now %d.", result.NetCount), nil
	}
	return fmt.Sprintf("Thanks! Helpfulness is now %d.", result.NetCount), nil
}

func (b *Bot) comment(ctx context.Context, args string) (string, error) {
	jobID, content, err := splitArgs(args)
	if err != nil {
		return "", err
	}
	return b.createComment(ctx, services.CreateCommentRequest{JobID: jobID, Content: content})
}

func (b *Bot) replyToComment(ctx context.Context, args string) (string, error) {
	commentID, content, err := splitArgs(args)
	if err != nil {
		return "", err
	}

	parent, err := b.services.Comments.Get(ctx, commentID)
	if err != nil {
		return "", err
	}
	return b.createComment(ctx, services.CreateCommentRequest{
		JobID:           parent.JobPostingID,
		ParentCommentID: parent.ID,
		Content:         content,
	})
}

func (b *Bot) createComment(ctx context.Context, request services.CreateCommentRequest) (string, error) {
	created, err := b.services.Comments.Create(ctx, request)
	if err != nil {
		return "", err
	}

	text := "Comment posted."
	if created.AutoDownvoted {
		text += " It reads as a warning, so it also counts as your downvote on the job."
	}
	return text, nil
}

func (b *Bot) toggleBookmark(ctx context.Context, args string) (string, error) {
	jobID, _, err := splitArgs(args)
	if err != nil {
		return "", err
	}

	bookmarked, err := b.services.Bookmarks.Toggle(ctx, jobID)
	if err != nil {
		return "", err
	}
	if bookmarked {
		return "Bookmarked. You will be notified about new comments.", nil
	}
	return "Bookmark removed.", nil
}

func (b *Bot) listBookmarks(ctx context.Context) (string, error) {
	jobs, err := b.services.Bookmarks.List(ctx)
	if err != nil {
		return "", err
	}
	return formatJobList("Your bookmarks", jobs), nil
}

func (b *Bot) watch(ctx context.Context, chatID int64, args string) (string, error) {
	jobID, _, err := splitArgs(args)
	if err != nil {
		return "", err
	}
	if _, err = b.services.Jobs.Get(ctx, jobID); err != nil {
		return "", err
	}

	added := b.watches.Add(chatID, jobID, func() func() {
		return b.services.Feed.Subscribe(jobID, func(event events.CommentCreated) {
			sendText(b.api, chatID, formatCommentNotification(event))
		})
	})
	if !added {
		return "You are already watching this job.", nil
	}
	return "Watching. New comments will show up here until you /unwatch " + jobID, nil
}

func (b *Bot) unwatch(chatID int64, args string) (string, error) {
	jobID, _, err := splitArgs(args)
	if err != nil {
		return "", err
	}
	if !b.watches.Remove(chatID, jobID) {
		return "You are not watching this job.", nil
	}
	return "Stopped watching.", nil
}

func (b *Bot) closeJob(ctx context.Context, args string, status entities.JobStatus) (string, error) {
	jobID, _, err := splitArgs(args)
	if err != nil {
		return "", err
	}
	if err = b.services.Jobs.SetStatus(ctx, jobID, status); err != nil {
		return "", err
	}
	return fmt.Sprintf("Marked as %s.", status), nil
}

func (b *Bot) issueToken(user entities.User) (string, error) {
	if b.services.Tokens == nil {
		return "The HTTP API is disabled.", nil
	}
	token, err := b.services.Tokens.Issue(user.ID)
	if err != nil {
		return "", err
	}
	return "Your API token:\n" + token, nil
}

func describeError(err error) string {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return fmt.Sprintf("Invalid %s: %s.", validationErr.Field, validationErr.Reason)
	case errors.Is(err, errMissingArgument):
		return "This command needs an id. Send /help to see the usage."
	case errors.Is(err, services.ErrNotFound):
		return "Not found."
	case errors.Is(err, services.ErrForbidden):
		return "Only the owner of the posting can do that."
	case errors.Is(err, services.ErrUnauthorized):
		return "Please send /start first."
	default:
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Error(err)
		return "Internal error!"
	}
}
