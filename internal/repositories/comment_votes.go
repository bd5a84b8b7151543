package repositories

import (
	"context"
	"github.com/maxaizer/realjobs/internal/entities"
	"gorm.io/gorm"
)

type CommentVotes struct {
	box *ballotBox[entities.CommentVoteType]
}

func NewCommentVotesRepository(db *gorm.DB) *CommentVotes {
	return &CommentVotes{box: &ballotBox[entities.CommentVoteType]{
		db:           db,
		table:        "comment_votes",
		targetTable:  "comments",
		targetColumn: "comment_id",
		positive:     entities.Helpful,
		negative:     entities.NotHelpful,
		model:        func() any { return &entities.CommentVote{} },
		newRow: func(id, voterID, targetID string, voteType entities.CommentVoteType) any {
			return &entities.CommentVote{ID: id, UserID: voterID, CommentID: targetID, VoteType: voteType}
		},
	}}
}

func (repo *CommentVotes) Cast(ctx context.Context, voterID, commentID string, voteType entities.CommentVoteType) (
	CastOutcome[entities.CommentVoteType], error) {
	return repo.box.cast(ctx, voterID, commentID, voteType)
}

func (repo *CommentVotes) CastIfAbsent(ctx context.Context, voterID, commentID string,
	voteType entities.CommentVoteType) (bool, error) {
	return repo.box.castIfAbsent(ctx, voterID, commentID, voteType)
}

func (repo *CommentVotes) Get(ctx context.Context, voterID, commentID string) (entities.CommentVoteType, bool, error) {
	return repo.box.get(ctx, voterID, commentID)
}

func (repo *CommentVotes) Tally(ctx context.Context, commentID string) (entities.Tally, error) {
	return repo.box.tally(repo.box.db.WithContext(ctx), commentID)
}

func (repo *CommentVotes) Tallies(ctx context.Context, commentIDs []string) (map[string]entities.Tally, error) {
	if commentIDs == nil {
		commentIDs = []string{}
	}
	return repo.box.tallies(repo.box.db.WithContext(ctx), commentIDs)
}
