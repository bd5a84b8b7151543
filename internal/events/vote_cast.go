package events

var VoteCastTopic = "VoteCastEvent"

type VoteTarget string

const (
	JobTarget     VoteTarget = "job"
	CommentTarget VoteTarget = "comment"
)

// VoteCast is published after a ledger write commits. Current is empty when
// the vote was toggled off.
type VoteCast struct {
	Target   VoteTarget
	TargetID string
	VoterID  string
	Previous string
	Current  string
	NetCount int
}
