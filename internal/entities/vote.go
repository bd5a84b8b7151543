package entities

import "time"

type VoteType string

const (
	VoteUp   VoteType = "up"
	VoteDown VoteType = "down"
)

type CommentVoteType string

const (
	Helpful    CommentVoteType = "helpful"
	NotHelpful CommentVoteType = "not_helpful"
)

// Vote is a user's verdict on a job posting; at most one per (user, job).
type Vote struct {
	ID           string    `gorm:"primaryKey;size:36"`
	UserID       string    `gorm:"size:36;not null;uniqueIndex:idx_votes_user_job"`
	JobPostingID string    `gorm:"size:36;not null;uniqueIndex:idx_votes_user_job;index"`
	VoteType     VoteType  `gorm:"size:16;not null"`
	CreatedAt    time.Time
}

// CommentVote is a user's reaction to a comment; at most one per (user, comment).
type CommentVote struct {
	ID        string          `gorm:"primaryKey;size:36"`
	UserID    string          `gorm:"size:36;not null;uniqueIndex:idx_comment_votes_user_comment"`
	CommentID string          `gorm:"size:36;not null;uniqueIndex:idx_comment_votes_user_comment;index"`
	VoteType  CommentVoteType `gorm:"size:16;not null"`
	CreatedAt time.Time
}

// Tally holds the raw counts of one target's ledger.
type Tally struct {
	Positive int
	Negative int
}

func (t Tally) Net() int {
	return t.Positive - t.Negative
}
