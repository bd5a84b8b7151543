package repositories

import (
	"context"
	"github.com/maxaizer/realjobs/internal/entities"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrTargetNotFound = errors.New("vote target not found")
	ErrVoterNotFound  = errors.New("voter not found")
)

// CastOutcome describes a committed ballot write. Previous and Current are
// empty when there was no vote before or there is none after.
type CastOutcome[T ~string] struct {
	Previous T
	Current  T
	Tally    entities.Tally
}

// ballotBox stores one vote per (voter, target) in a table keyed by a unique
// (user_id, targetColumn) index.
type ballotBox[T ~string] struct {
	db           *gorm.DB
	table        string
	targetTable  string
	targetColumn string
	positive     T
	negative     T
	model        func() any
	newRow       func(id, voterID, targetID string, voteType T) any
	afterWrite   func(tx *gorm.DB, targetID string, tally entities.Tally) error
}

func (b *ballotBox[T]) byBallot(tx *gorm.DB, voterID, targetID string) *gorm.DB {
	return tx.Table(b.table).Where("user_id = ? AND "+b.targetColumn+" = ?", voterID, targetID)
}

func (b *ballotBox[T]) conflictColumns() []clause.Column {
	return []clause.Column{{Name: "user_id"}, {Name: b.targetColumn}}
}

func (b *ballotBox[T]) cast(ctx context.Context, voterID, targetID string, voteType T) (CastOutcome[T], error) {

	var outcome CastOutcome[T]
	err := b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := b.requireParticipants(tx, voterID, targetID); err != nil {
			return err
		}

		previous, err := b.current(tx, voterID, targetID)
		if err != nil {
			return err
		}
		outcome.Previous = previous

		if previous == voteType {
			if err = b.byBallot(tx, voterID, targetID).Delete(b.model()).Error; err != nil {
				return errors.Wrap(err, "failed to remove vote")
			}
		} else {
			row := b.newRow(newID(), voterID, targetID, voteType)
			if err = tx.Clauses(clause.OnConflict{
				Columns:   b.conflictColumns(),
				DoUpdates: clause.AssignmentColumns([]string{"vote_type"}),
			}).Create(row).Error; err != nil {
				return errors.Wrap(err, "failed to save vote")
			}
			outcome.Current = voteType
		}

		outcome.Tally, err = b.tally(tx, targetID)
		if err != nil {
			return err
		}
		return b.runAfterWrite(tx, targetID, outcome.Tally)
	})

	return outcome, err
}

// castIfAbsent inserts the vote only when the voter has none on the target.
func (b *ballotBox[T]) castIfAbsent(ctx context.Context, voterID, targetID string, voteType T) (bool, error) {

	inserted := false
	err := b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := b.requireParticipants(tx, voterID, targetID); err != nil {
			return err
		}

		row := b.newRow(newID(), voterID, targetID, voteType)
		res := tx.Clauses(clause.OnConflict{
			Columns:   b.conflictColumns(),
			DoNothing: true,
		}).Create(row)
		if res.Error != nil {
			return errors.Wrap(res.Error, "failed to save vote")
		}
		if res.RowsAffected == 0 {
			return nil
		}
		inserted = true

		tally, err := b.tally(tx, targetID)
		if err != nil {
			return err
		}
		return b.runAfterWrite(tx, targetID, tally)
	})

	return inserted, err
}

// requireParticipants locks the target row first, so casts on one target
// serialize and the tally read after it counts every committed vote.
func (b *ballotBox[T]) requireParticipants(tx *gorm.DB, voterID, targetID string) error {
	var ids []string
	if err := b.lockTarget(tx, targetID).Pluck("id", &ids).Error; err != nil {
		return errors.Wrap(err, "failed to lock vote target")
	}
	if len(ids) == 0 {
		return ErrTargetNotFound
	}

	var count int64
	if err := tx.Table("users").Where("id = ?", voterID).Count(&count).Error; err != nil {
		return errors.Wrap(err, "failed to look up voter")
	}
	if count == 0 {
		return ErrVoterNotFound
	}
	return nil
}

func (b *ballotBox[T]) lockTarget(tx *gorm.DB, targetID string) *gorm.DB {
	return tx.Table(b.targetTable).Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Where("id = ?", targetID)
}

func (b *ballotBox[T]) current(tx *gorm.DB, voterID, targetID string) (T, error) {
	var types []string
	if err := b.byBallot(tx, voterID, targetID).Limit(1).Pluck("vote_type", &types).Error; err != nil {
		return "", errors.Wrap(err, "failed to read vote")
	}
	if len(types) == 0 {
		return "", nil
	}
	return T(types[0]), nil
}

func (b *ballotBox[T]) get(ctx context.Context, voterID, targetID string) (T, bool, error) {
	voteType, err := b.current(b.db.WithContext(ctx), voterID, targetID)
	return voteType, voteType != "", err
}

func (b *ballotBox[T]) tally(tx *gorm.DB, targetID string) (entities.Tally, error) {
	tallies, err := b.tallies(tx, []string{targetID})
	if err != nil {
		return entities.Tally{}, err
	}
	return tallies[targetID], nil
}

type tallyRow struct {
	TargetID string
	VoteType string
	Count    int
}

// tallies counts votes per target; nil targetIDs means every target.
func (b *ballotBox[T]) tallies(tx *gorm.DB, targetIDs []string) (map[string]entities.Tally, error) {

	query := tx.Table(b.table).
		Select(b.targetColumn + " AS target_id, vote_type, COUNT(*) AS count").
		Group(b.targetColumn + ", vote_type")
	if targetIDs != nil {
		if len(targetIDs) == 0 {
			return map[string]entities.Tally{}, nil
		}
		query = query.Where(b.targetColumn+" IN ?", targetIDs)
	}

	var rows []tallyRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "failed to count votes")
	}

	result := make(map[string]entities.Tally, len(rows))
	for _, row := range rows {
		tally := result[row.TargetID]
		switch T(row.VoteType) {
		case b.positive:
			tally.Positive += row.Count
		case b.negative:
			tally.Negative += row.Count
		}
		result[row.TargetID] = tally
	}
	return result, nil
}

func (b *ballotBox[T]) runAfterWrite(tx *gorm.DB, targetID string, tally entities.Tally) error {
	if b.afterWrite == nil {
		return nil
	}
	return b.afterWrite(tx, targetID, tally)
}
