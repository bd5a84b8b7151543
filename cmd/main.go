package main

import (
	"context"
	"github.com/asaskevich/EventBus"
	"github.com/jonboulle/clockwork"
	"github.com/maxaizer/realjobs/internal/api"
	"github.com/maxaizer/realjobs/internal/bot"
	"github.com/maxaizer/realjobs/internal/clients/gemini"
	"github.com/maxaizer/realjobs/internal/clients/openai"
	"github.com/maxaizer/realjobs/internal/config"
	"github.com/maxaizer/realjobs/internal/logger"
	"github.com/maxaizer/realjobs/internal/metrics"
	"github.com/maxaizer/realjobs/internal/repositories"
	"github.com/maxaizer/realjobs/internal/services"
	log "github.com/sirupsen/logrus"
	"os/signal"
	"syscall"
	"time"
)

const shutdownTimeout = 10 * time.Second

type aiClient interface {
	GenerateResponse(ctx context.Context, request string) (string, error)
	SetSystemInstruction(instruction string)
	SetMinuteRateLimit(requests float32)
	SetDayRateLimit(requests float32)
}

// newAIClient returns nil when no key is configured, which turns sentiment
// moderation off.
func newAIClient(ctx context.Context, cfg config.AIConfig) (aiClient, func()) {

	if cfg.Key == "" {
		log.Warn("ai key is not set, every comment will be classified as neutral")
		return nil, func() {}
	}

	var client aiClient
	cleanup := func() {}

	switch cfg.Provider {
	case config.ProviderOpenAI:
		client = openai.NewClient(cfg.Key, cfg.Model)
	default:
		model := gemini.Model15Flash
		if cfg.Model != "" {
			model = gemini.Model(cfg.Model)
		}
		geminiClient, err := gemini.NewClient(ctx, cfg.Key, model)
		if err != nil {
			log.Fatalf("can't create AI client: %v", err)
		}
		client = geminiClient
		cleanup = func() { _ = geminiClient.Close() }
	}

	client.SetSystemInstruction(services.SentimentInstruction)
	client.SetMinuteRateLimit(cfg.MaxRequestsPerMinute)
	client.SetDayRateLimit(cfg.MaxRequestsPerDay)
	return client, cleanup
}

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Get()

	logger.Setup(ctx, cfg.Logger)
	defer logger.Cleanup()

	metrics.StartMetricsServer(cfg.Logger.MetricsAddr)

	dbContext, err := repositories.NewDbContext(repositories.Driver(cfg.DB.Driver), cfg.DB.ConnectionString)
	if err != nil {
		log.Fatalf("can't create db context: %v", err)
	}
	defer dbContext.Close()

	err = dbContext.Migrate()
	if err != nil {
		log.Fatalf("can't migrate db context: %v", err)
	}

	clock := clockwork.NewRealClock()
	bus := EventBus.New()

	usersRepo := repositories.NewUsersRepository(dbContext.DB)
	jobsRepo := repositories.NewJobsRepository(dbContext.DB)
	votesRepo := repositories.NewVotesRepository(dbContext.DB)
	commentsRepo := repositories.NewCommentsRepository(dbContext.DB)
	commentVotesRepo := repositories.NewCommentVotesRepository(dbContext.DB)
	bookmarksRepo := repositories.NewBookmarksRepository(dbContext.DB)

	jobLedger := services.NewVoteLedger(services.JobVoteKind, votesRepo, bus)
	commentLedger := services.NewVoteLedger(services.CommentVoteKind, commentVotesRepo, bus)

	client, closeClient := newAIClient(ctx, cfg.AI)
	defer closeClient()
	classifier := services.NewSentimentClassifier(client, cfg.AI.Timeout)

	users := services.NewUsers(repositories.NewCachedUsers(usersRepo), usersRepo)
	jobs := services.NewJobs(jobsRepo)
	comments := services.NewComments(commentsRepo, jobsRepo, classifier, jobLedger, commentVotesRepo, bus)
	bookmarks := services.NewBookmarks(bookmarksRepo, jobsRepo)
	board := services.NewBoard(jobsRepo, votesRepo, commentsRepo, cfg.Board.CandidateLimit, clock)

	feed, err := services.NewCommentFeed(bus)
	if err != nil {
		log.Fatalf("can't create comment feed: %v", err)
	}

	expirer, err := services.NewJobExpirer(jobsRepo, cfg.Board.ExpirationInDays, clock)
	if err != nil {
		log.Fatalf("can't create job expirer: %v", err)
	}
	maintenance, err := services.NewMaintenance(services.NewTrustReconciler(jobsRepo, votesRepo), expirer,
		cfg.Board.MaintenanceSchedule)
	if err != nil {
		log.Fatalf("can't create maintenance: %v", err)
	}
	maintenance.Start()
	defer maintenance.Stop()

	var tokens *services.Tokens
	var server *api.Server
	if cfg.API.Enabled() {
		tokens = services.NewTokens(cfg.API.JWTSecret, cfg.API.TokenTTL, clock)
		server = api.NewServer(api.Dependencies{
			Board:        board,
			Jobs:         jobs,
			JobVotes:     jobLedger,
			CommentVotes: commentLedger,
			Comments:     comments,
			Bookmarks:    bookmarks,
			Trust:        services.NewTrustScores(votesRepo, jobsRepo),
			Tokens:       tokens,
			Users:        users,
			Feed:         feed,
			Clock:        clock,
		})
		go func() {
			if err := server.Start(cfg.API.Addr); err != nil {
				log.Fatalf("http api stopped: %v", err)
			}
		}()
	}

	botServices := bot.Services{
		Users:        users,
		Board:        board,
		Jobs:         jobs,
		JobVotes:     jobLedger,
		CommentVotes: commentLedger,
		Comments:     comments,
		Bookmarks:    bookmarks,
		Feed:         feed,
		Followers:    bookmarksRepo,
		Directory:    usersRepo,
		Clock:        clock,
	}
	if tokens != nil {
		botServices.Tokens = tokens
	}

	tgbot, err := bot.NewBot(cfg.Bot.Token, bus, botServices)
	if err != nil {
		log.Fatalf("can't create bot: %v", err)
	}
	go tgbot.Run()

	<-ctx.Done()

	log.Info("Shutting down services...")
	tgbot.Stop()
	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Errorf("failed to stop http api: %v", err)
		}
	}
	log.Info("Services stopped.")
}
