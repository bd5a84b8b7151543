package services

import (
	"context"
	"github.com/jonboulle/clockwork"
	"github.com/maxaizer/realjobs/internal/entities"
	"github.com/maxaizer/realjobs/internal/logger"
	"github.com/maxaizer/realjobs/internal/metrics"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
	"time"
)

type trustScoreStore interface {
	TrustScores(ctx context.Context) (map[string]int, error)
	SetTrustScore(ctx context.Context, id string, score int) error
}

type ledgerTallies interface {
	AllTallies(ctx context.Context) (map[string]entities.Tally, error)
}

type jobExpiryStore interface {
	ExpireOlderThan(ctx context.Context, before time.Time) (int64, error)
}

// TrustReconciler rewrites cached trust scores that drifted from the ledger.
type TrustReconciler struct {
	jobs  trustScoreStore
	votes ledgerTallies
}

func NewTrustReconciler(jobs trustScoreStore, votes ledgerTallies) *TrustReconciler {
	return &TrustReconciler{jobs: jobs, votes: votes}
}

// Reconcile returns the number of postings whose score was corrected.
func (r *TrustReconciler) Reconcile(ctx context.Context) (int, error) {

	cached, err := r.jobs.TrustScores(ctx)
	if err != nil {
		return 0, err
	}
	tallies, err := r.votes.AllTallies(ctx)
	if err != nil {
		return 0, err
	}

	fixed := 0
	for jobID, score := range cached {
		actual := tallies[jobID].Net()
		if actual == score {
			continue
		}
		log.Warnf("trust score of job %s drifted: cached %d, ledger %d", jobID, score, actual)
		metrics.TrustScoreDriftCounter.Inc()
		if err = r.jobs.SetTrustScore(ctx, jobID, actual); err != nil {
			return fixed, err
		}
		fixed++
	}
	return fixed, nil
}

// JobExpirer closes active postings older than the configured age.
type JobExpirer struct {
	jobs             jobExpiryStore
	expirationInDays int
	clock            clockwork.Clock
}

func NewJobExpirer(jobs jobExpiryStore, expirationInDays int, clock clockwork.Clock) (*JobExpirer, error) {
	if expirationInDays <= 0 {
		return nil, errors.New("expiration in days must be greater than zero")
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &JobExpirer{jobs: jobs, expirationInDays: expirationInDays, clock: clock}, nil
}

func (e *JobExpirer) Expire(ctx context.Context) (int64, error) {
	before := e.clock.Now().AddDate(0, 0, -e.expirationInDays)
	return e.jobs.ExpireOlderThan(ctx, before)
}

// Maintenance runs the reconciler and the expirer on a cron schedule.
type Maintenance struct {
	reconciler *TrustReconciler
	expirer    *JobExpirer
	cron       *cron.Cron
}

func NewMaintenance(reconciler *TrustReconciler, expirer *JobExpirer, schedule string) (*Maintenance, error) {

	m := &Maintenance{
		reconciler: reconciler,
		expirer:    expirer,
		cron:       cron.New(),
	}

	if _, err := m.cron.AddFunc(schedule, m.Run); err != nil {
		return nil, errors.Wrapf(err, "invalid maintenance schedule %q", schedule)
	}
	return m, nil
}

func (m *Maintenance) Start() {
	m.cron.Start()
	log.Infof("maintenance started, expiration in days: %d", m.expirer.expirationInDays)
}

func (m *Maintenance) Stop() {
	<-m.cron.Stop().Done()
}

func (m *Maintenance) Run() {
	ctx := context.Background()

	expired, err := m.expirer.Expire(ctx)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("failed to expire old job postings: %v", err)
	} else {
		log.Infof("old job postings were expired at %v, affected rows: %v", time.Now(), expired)
	}

	fixed, err := m.reconciler.Reconcile(ctx)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("failed to reconcile trust scores: %v", err)
	} else {
		log.Infof("trust scores reconciled, corrected: %v", fixed)
	}
}
