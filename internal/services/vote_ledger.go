package services

import (
	"context"
	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/realjobs/internal/auth"
	"github.com/maxaizer/realjobs/internal/entities"
	"github.com/maxaizer/realjobs/internal/events"
	"github.com/maxaizer/realjobs/internal/metrics"
	"github.com/maxaizer/realjobs/internal/repositories"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// VoteKind names a ledger namespace and its two vote values.
type VoteKind[T ~string] struct {
	Target   events.VoteTarget
	Positive T
	Negative T
}

var (
	JobVoteKind = VoteKind[entities.VoteType]{
		Target: events.JobTarget, Positive: entities.VoteUp, Negative: entities.VoteDown,
	}
	CommentVoteKind = VoteKind[entities.CommentVoteType]{
		Target: events.CommentTarget, Positive: entities.Helpful, Negative: entities.NotHelpful,
	}
)

func (k VoteKind[T]) Parse(s string) (T, error) {
	switch T(s) {
	case k.Positive, k.Negative:
		return T(s), nil
	default:
		return "", newValidationError("vote_type", "must be "+string(k.Positive)+" or "+string(k.Negative))
	}
}

func (k VoteKind[T]) weight(voteType T) int {
	switch voteType {
	case k.Positive:
		return 1
	case k.Negative:
		return -1
	default:
		return 0
	}
}

type ballotStore[T ~string] interface {
	Cast(ctx context.Context, voterID, targetID string, voteType T) (repositories.CastOutcome[T], error)
	CastIfAbsent(ctx context.Context, voterID, targetID string, voteType T) (bool, error)
	Get(ctx context.Context, voterID, targetID string) (T, bool, error)
	Tally(ctx context.Context, targetID string) (entities.Tally, error)
}

// CastResult reports a committed vote. NetCount is read back from the store
// after the write.
type CastResult[T ~string] struct {
	Previous T
	Current  T
	Delta    int
	NetCount int
}

type VoteLedger[T ~string] struct {
	kind  VoteKind[T]
	store ballotStore[T]
	bus   EventBus.Bus
}

type (
	JobVoteLedger     = VoteLedger[entities.VoteType]
	CommentVoteLedger = VoteLedger[entities.CommentVoteType]
)

func NewVoteLedger[T ~string](kind VoteKind[T], store ballotStore[T], bus EventBus.Bus) *VoteLedger[T] {
	return &VoteLedger[T]{kind: kind, store: store, bus: bus}
}

// Cast records the current user's vote on the target. Casting the same type
// twice removes the vote; casting the opposite type replaces it.
func (l *VoteLedger[T]) Cast(ctx context.Context, targetID string, voteType T) (CastResult[T], error) {

	user, ok := auth.CurrentUser(ctx)
	if !ok {
		return CastResult[T]{}, ErrUnauthorized
	}
	if _, err := l.kind.Parse(string(voteType)); err != nil {
		return CastResult[T]{}, err
	}

	outcome, err := l.store.Cast(ctx, user.ID, targetID, voteType)
	if err != nil {
		return CastResult[T]{}, l.translate(err)
	}

	result := CastResult[T]{
		Previous: outcome.Previous,
		Current:  outcome.Current,
		Delta:    l.kind.weight(outcome.Current) - l.kind.weight(outcome.Previous),
		NetCount: outcome.Tally.Net(),
	}

	metrics.VotesCastCounter.WithLabelValues(string(l.kind.Target), castOutcomeLabel(result)).Inc()
	l.publish(user.ID, targetID, result)
	return result, nil
}

// CastIfAbsent inserts a vote on behalf of voterID only if the voter has not
// voted on the target yet. An existing vote is never touched.
func (l *VoteLedger[T]) CastIfAbsent(ctx context.Context, voterID, targetID string, voteType T) (bool, error) {

	if _, err := l.kind.Parse(string(voteType)); err != nil {
		return false, err
	}

	inserted, err := l.store.CastIfAbsent(ctx, voterID, targetID, voteType)
	if err != nil {
		return false, l.translate(err)
	}
	if !inserted {
		return false, nil
	}

	metrics.VotesCastCounter.WithLabelValues(string(l.kind.Target), "automatic").Inc()

	net, err := l.NetCount(ctx, targetID)
	if err != nil {
		log.WithError(err).Warnf("failed to read net count of %s %s after automatic vote", l.kind.Target, targetID)
		return true, nil
	}
	l.publish(voterID, targetID, CastResult[T]{Current: voteType, Delta: l.kind.weight(voteType), NetCount: net})
	return true, nil
}

func (l *VoteLedger[T]) UserVote(ctx context.Context, voterID, targetID string) (T, bool, error) {
	return l.store.Get(ctx, voterID, targetID)
}

func (l *VoteLedger[T]) NetCount(ctx context.Context, targetID string) (int, error) {
	tally, err := l.store.Tally(ctx, targetID)
	return tally.Net(), err
}

func (l *VoteLedger[T]) Tally(ctx context.Context, targetID string) (entities.Tally, error) {
	return l.store.Tally(ctx, targetID)
}

func (l *VoteLedger[T]) translate(err error) error {
	switch {
	case errors.Is(err, repositories.ErrTargetNotFound):
		return newValidationError(string(l.kind.Target)+"_id", "does not exist")
	case errors.Is(err, repositories.ErrVoterNotFound):
		return newValidationError("user_id", "does not exist")
	default:
		return err
	}
}

func (l *VoteLedger[T]) publish(voterID, targetID string, result CastResult[T]) {
	if l.bus == nil {
		return
	}
	l.bus.Publish(events.VoteCastTopic, events.VoteCast{
		Target:   l.kind.Target,
		TargetID: targetID,
		VoterID:  voterID,
		Previous: string(result.Previous),
		Current:  string(result.Current),
		NetCount: result.NetCount,
	})
}

func castOutcomeLabel[T ~string](result CastResult[T]) string {
	switch {
	case result.Previous == "":
		return "inserted"
	case result.Current == "":
		return "toggled_off"
	default:
		return "swung"
	}
}
