package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"github.com/maxaizer/realjobs/internal/entities"
	"github.com/maxaizer/realjobs/internal/logger"
	"github.com/maxaizer/realjobs/internal/metrics"
	gocache "github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"strings"
	"time"
)

const SentimentInstruction = "You are a sentiment analysis assistant. Analyze the sentiment of job posting comments " +
	"and respond with ONLY one word: \"positive\", \"negative\", or \"neutral\". " +
	"Consider comments about fake jobs, scams, or suspicious activity as negative."

type aiClient interface {
	GenerateResponse(ctx context.Context, request string) (string, error)
}

// SentimentClassifier labels comment text. It never fails: any problem with
// the AI provider yields Neutral.
type SentimentClassifier struct {
	aiClient aiClient
	timeout  time.Duration
	cache    *gocache.Cache
}

// NewSentimentClassifier accepts a nil client, in which case every comment is neutral.
func NewSentimentClassifier(aiClient aiClient, timeout time.Duration) *SentimentClassifier {
	return &SentimentClassifier{
		aiClient: aiClient,
		timeout:  timeout,
		cache:    gocache.New(time.Hour, 2*time.Hour),
	}
}

func (s *SentimentClassifier) Classify(ctx context.Context, content string) entities.Sentiment {

	if s.aiClient == nil {
		metrics.SentimentFallbacksCounter.WithLabelValues("not_configured").Inc()
		return entities.Neutral
	}

	key := contentKey(content)
	if cached, found := s.cache.Get(key); found {
		return cached.(entities.Sentiment)
	}

	sentiment, err := s.classify(ctx, content)
	if err != nil {
		reason := "error"
		if errors.Is(err, context.DeadlineExceeded) {
			reason = "timeout"
		}
		metrics.SentimentFallbacksCounter.WithLabelValues(reason).Inc()
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeAiApi).
			Warnf("sentiment classification failed, falling back to neutral: %v", err)
		return entities.Neutral
	}

	s.cache.Set(key, sentiment, gocache.DefaultExpiration)
	return sentiment
}

func (s *SentimentClassifier) classify(ctx context.Context, content string) (entities.Sentiment, error) {

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	response, err := s.aiClient.GenerateResponse(ctx, sentimentRequest(content))
	if err != nil {
		return "", err
	}

	log.Debugf("got sentiment response \"%v\"", response)
	return parseSentiment(response)
}

func sentimentRequest(content string) string {
	return fmt.Sprintf("Analyze the sentiment of this comment about a job posting: %q", content)
}

// parseSentiment tolerates markdown and trailing punctuation around the label.
func parseSentiment(response string) (entities.Sentiment, error) {
	normalized := strings.ToLower(strings.TrimSpace(response))
	normalized = strings.Trim(normalized, "*\"'.!` \n")

	for _, sentiment := range []entities.Sentiment{entities.Negative, entities.Positive, entities.Neutral} {
		if strings.HasPrefix(normalized, string(sentiment)) {
			return sentiment, nil
		}
	}
	return "", fmt.Errorf("unexpected sentiment response \"%v\"", response)
}

func contentKey(content string) string {
	hash := sha256.Sum256([]byte(strings.TrimSpace(content)))
	return hex.EncodeToString(hash[:])
}
