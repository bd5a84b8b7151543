package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"net/http"
	"sync"
)

var (
	ErrorsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "realjobs_errors_total",
			Help: "Total number of occurred errors.",
		},
		[]string{"type"},
	)
	VotesCastCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "realjobs_votes_cast_total",
			Help: "Total number of committed ledger writes by target and outcome.",
		},
		[]string{"target", "outcome"},
	)
	CommentsCreatedCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "realjobs_comments_created_total",
			Help: "Total number of stored comments by classified sentiment.",
		},
		[]string{"sentiment"},
	)
	AutoDownvotesCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "realjobs_auto_downvotes_total",
			Help: "Total number of downvotes cast by sentiment moderation.",
		},
	)
	SentimentFallbacksCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "realjobs_sentiment_fallbacks_total",
			Help: "Total number of classifications that fell back to neutral.",
		},
		[]string{"reason"},
	)
	RankingDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "realjobs_ranking_duration_seconds",
			Help:    "Duration of ranking a board page in seconds.",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"mode"},
	)
	TrustScoreDriftCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "realjobs_trust_score_drift_total",
			Help: "Total number of cached trust scores found out of sync with the ledger.",
		},
	)
)

var registerOnce sync.Once

func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(ErrorsCounter)
		prometheus.MustRegister(VotesCastCounter)
		prometheus.MustRegister(CommentsCreatedCounter)
		prometheus.MustRegister(AutoDownvotesCounter)
		prometheus.MustRegister(SentimentFallbacksCounter)
		prometheus.MustRegister(RankingDuration)
		prometheus.MustRegister(TrustScoreDriftCounter)
	})
}

func StartMetricsServer(addr string) {

	Register()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		log.Fatal(http.ListenAndServe(addr, mux))
	}()
}
