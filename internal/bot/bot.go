package bot

import (
	"context"
	"errors"
	"github.com/asaskevich/EventBus"
	botApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jonboulle/clockwork"
	"github.com/maxaizer/realjobs/internal/auth"
	"github.com/maxaizer/realjobs/internal/entities"
	"github.com/maxaizer/realjobs/internal/events"
	"github.com/maxaizer/realjobs/internal/ranking"
	"github.com/maxaizer/realjobs/internal/services"
	log "github.com/sirupsen/logrus"
	"slices"
	"sync"
	"time"
)

type userService interface {
	EnsureTelegramUser(ctx context.Context, telegramID int64, username string) (entities.User, error)
}

type board interface {
	Rank(ctx context.Context, mode ranking.Mode, filter ranking.Filter, page int) (services.RankedPage, error)
}

type jobService interface {
	jobSubmitter
	Get(ctx context.Context, id string) (*entities.JobPosting, error)
	SetStatus(ctx context.Context, id string, status entities.JobStatus) error
	ListByOwner(ctx context.Context) ([]entities.JobPosting, error)
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
	Get(ctx context.Context, id string) (*entities.Comment, error)
}

type bookmarkService interface {
	Toggle(ctx context.Context, jobID string) (bool, error)
	List(ctx context.Context) ([]entities.JobPosting, error)
}

type tokenIssuer interface {
	Issue(userID string) (string, error)
}

type commentFeed interface {
	Subscribe(jobID string, fn services.CommentListener) (unsubscribe func())
}

type followerRepository interface {
	UsersByJob(ctx context.Context, jobID string) ([]string, error)
}

type userDirectory interface {
	GetByIDs(ctx context.Context, ids []string) ([]entities.User, error)
}

type Services struct {
	Users        userService
	Board        board
	Jobs         jobService
	JobVotes     jobVoter
	CommentVotes commentVoter
	Comments     commentService
	Bookmarks    bookmarkService
	Feed         commentFeed
	Followers    followerRepository
	Directory    userDirectory
	// Tokens is nil when the HTTP API is disabled.
	Tokens tokenIssuer
	Clock  clockwork.Clock
}

type Bot struct {
	api          apiInterface
	updates      func() botApi.UpdatesChannel
	stopUpdates  func()
	bus          EventBus.Bus
	services     Services
	userContexts *userContexts
	watches      *watches
	ctx          context.Context
	cancel       context.CancelFunc
	handlers     sync.WaitGroup
}

const (
	backToMenuCommandName = "Main menu"
	jobsCommandName       = "Hot jobs"
	updateTimeout         = 30 * time.Second
)

var keyboardCommands = []string{submitJobCommandName, backToMenuCommandName, jobsCommandName}

func NewBot(token string, bus EventBus.Bus, services Services) (*Bot, error) {

	api, err := botApi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	log.Infof("Authorized on account %s", api.Self.UserName)

	err = botApi.SetLogger(log.StandardLogger())
	if err != nil {
		return nil, err
	}

	created, err := newBot(api, bus, services)
	if err != nil {
		return nil, err
	}

	created.updates = func() botApi.UpdatesChannel {
		updateConfig := botApi.NewUpdate(0)
		updateConfig.Timeout = 60
		return api.GetUpdatesChan(updateConfig)
	}
	created.stopUpdates = api.StopReceivingUpdates
	return created, nil
}

func newBot(api apiInterface, bus EventBus.Bus, services Services) (*Bot, error) {

	if bus == nil {
		return nil, errors.New("bus is nil")
	}
	if services.Users == nil || services.Board == nil || services.Jobs == nil || services.Comments == nil {
		return nil, errors.New("users, board, jobs and comments services are required")
	}
	if services.JobVotes == nil || services.CommentVotes == nil || services.Bookmarks == nil {
		return nil, errors.New("vote and bookmark services are required")
	}
	if services.Feed == nil || services.Followers == nil || services.Directory == nil {
		return nil, errors.New("comment feed and follower lookups are required")
	}
	if services.Clock == nil {
		services.Clock = clockwork.NewRealClock()
	}

	ctx, cancel := context.WithCancel(context.Background())
	created := &Bot{
		api:          api,
		bus:          bus,
		services:     services,
		userContexts: newUserContexts(),
		watches:      newWatches(),
		ctx:          ctx,
		cancel:       cancel,
	}

	if err := bus.SubscribeAsync(events.CommentCreatedTopic, created.onCommentCreated, false); err != nil {
		cancel()
		return nil, err
	}
	return created, nil
}

// Run handles updates until Stop is called. Each message gets its own
// goroutine and a bounded context.
func (b *Bot) Run() {

	for update := range b.updates() {

		if update.Message == nil || update.Message.From == nil {
			continue
		}

		if update.Message.Chat.IsGroup() || update.Message.Chat.IsSuperGroup() {
			continue
		}

		b.handlers.Add(1)
		go func(message *botApi.Message) {
			defer b.handlers.Done()
			b.handleMessage(message)
		}(update.Message)
	}
}

func (b *Bot) Stop() {
	if b.stopUpdates != nil {
		b.stopUpdates()
	}
	b.cancel()
	b.handlers.Wait()
	b.bus.WaitAsync()
	b.watches.Clear()
}

func (b *Bot) handleMessage(message *botApi.Message) {

	ctx, cancel := context.WithTimeout(b.ctx, updateTimeout)
	defer cancel()

	user, err := b.services.Users.EnsureTelegramUser(ctx, message.From.ID, message.From.UserName)
	if err != nil {
		sendText(b.api, message.Chat.ID, describeError(err))
		return
	}
	ctx = auth.WithUser(ctx, user)

	cmd := message.Command()
	if cmd == "" && slices.Contains(keyboardCommands, message.Text) {
		cmd = message.Text
	}

	if cmd != "" {
		b.handleCommand(ctx, user, message.From.ID, message.Chat.ID, cmd, message.CommandArguments())
	} else {
		b.handleInput(message.From.ID, message.Chat.ID, message.Text)
	}
}

func (b *Bot) handleInput(userID, chatID int64, input string) {

	handled := false
	b.userContexts.With(userID, chatID, func(ctx *userContext) {
		if ctx.HasRunningCommand() {
			ctx.OnUserInput(input)
			handled = true
		}
	})

	if !handled {
		sendText(b.api, chatID, "Expecting a command. Send /help to see them.")
	}
}

// onCommentCreated notifies bookmark holders other than the author. Chats
// watching the job already get the comment from the feed.
func (b *Bot) onCommentCreated(event events.CommentCreated) {

	if b.ctx.Err() != nil {
		return
	}

	ctx, cancel := context.WithTimeout(b.ctx, updateTimeout)
	defer cancel()

	followerIDs, err := b.services.Followers.UsersByJob(ctx, event.Comment.JobPostingID)
	if err != nil {
		log.Errorf("failed to load followers of job %s: %v", event.Comment.JobPostingID, err)
		return
	}

	recipients := slices.DeleteFunc(followerIDs, func(id string) bool { return id == event.Comment.UserID })
	if len(recipients) == 0 {
		return
	}

	users, err := b.services.Directory.GetByIDs(ctx, recipients)
	if err != nil {
		log.Errorf("failed to load followers of job %s: %v", event.Comment.JobPostingID, err)
		return
	}

	text := formatCommentNotification(event)
	for _, user := range users {
		if b.watches.Has(user.TelegramID, event.Comment.JobPostingID) {
			continue
		}
		sendText(b.api, user.TelegramID, text)
	}
}

func defaultReplyKeyboard() botApi.ReplyKeyboardMarkup {
	return botApi.NewReplyKeyboard(
		botApi.NewKeyboardButtonRow(
			botApi.NewKeyboardButton(jobsCommandName),
			botApi.NewKeyboardButton(submitJobCommandName),
		),
	)
}

func keyboardWithExit() botApi.ReplyKeyboardMarkup {
	return botApi.NewReplyKeyboard(
		botApi.NewKeyboardButtonRow(
			botApi.NewKeyboardButton(backToMenuCommandName),
		),
	)
}
