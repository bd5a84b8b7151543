package api

import (
	"github.com/maxaizer/realjobs/internal/entities"
	"github.com/maxaizer/realjobs/internal/services"
	"github.com/maxaizer/realjobs/internal/threads"
	"github.com/maxaizer/realjobs/internal/trust"
	"time"
)

type jobResponse struct {
	ID            string    `json:"id"`
	Url           string    `json:"url"`
	Title         string    `json:"title"`
	Company       string    `json:"company"`
	Description   string    `json:"description,omitempty"`
	Category      string    `json:"category,omitempty"`
	Location      string    `json:"location,omitempty"`
	JobType       string    `json:"job_type"`
	Status        string    `json:"status"`
	TrustScore    int       `json:"trust_score"`
	Badge         string    `json:"badge,omitempty"`
	Color         string    `json:"color"`
	CreatedAt     time.Time `json:"created_at"`
	CommentCount  *int      `json:"comment_count,omitempty"`
	DownvoteCount *int      `json:"downvote_count,omitempty"`
}

func newJobResponse(job entities.JobPosting, now time.Time) jobResponse {
	resp := jobFields(job)
	resp.Badge = trust.Badge(job.TrustScore, job.CreatedAt, now)
	resp.Color = trust.Color(job.TrustScore)
	return resp
}

type trustResponse struct {
	JobID      string `json:"job_id"`
	TrustScore int    `json:"trust_score"`
	InSync     bool   `json:"in_sync"`
	Badge      string `json:"badge,omitempty"`
	Color      string `json:"color"`
}

func newTrustResponse(jobID string, score int, inSync bool, createdAt, now time.Time) trustResponse {
	return trustResponse{
		JobID:      jobID,
		TrustScore: score,
		InSync:     inSync,
		Badge:      trust.Badge(score, createdAt, now),
		Color:      trust.Color(score),
	}
}

func jobFields(job entities.JobPosting) jobResponse {
	return jobResponse{
		ID:          job.ID,
		Url:         job.Url,
		Title:       job.Title,
		Company:     job.Company,
		Description: job.Description,
		Category:    job.Category,
		Location:    job.Location,
		JobType:     string(job.JobType),
		Status:      string(job.Status),
		TrustScore:  job.TrustScore,
		CreatedAt:   job.CreatedAt,
	}
}

func newRankedJobResponse(entry services.RankedEntry) jobResponse {
	resp := jobFields(entry.Job)
	resp.TrustScore = entry.VoteCount
	resp.Badge = entry.Badge
	resp.Color = entry.Color
	resp.CommentCount = &entry.CommentCount
	resp.DownvoteCount = &entry.DownvoteCount
	return resp
}

type pageResponse struct {
	Mode    string        `json:"mode"`
	Page    int           `json:"page"`
	HasMore bool          `json:"has_more"`
	Jobs    []jobResponse `json:"jobs"`
}

type commentResponse struct {
	ID              string    `json:"id"`
	ParentCommentID *string   `json:"parent_comment_id,omitempty"`
	UserID          string    `json:"user_id"`
	Content         string    `json:"content"`
	Sentiment       string    `json:"sentiment"`
	CreatedAt       time.Time `json:"created_at"`
}

func newCommentResponse(comment entities.Comment) commentResponse {
	return commentResponse{
		ID:              comment.ID,
		ParentCommentID: comment.ParentCommentID,
		UserID:          comment.UserID,
		Content:         comment.Content,
		Sentiment:       string(comment.Sentiment),
		CreatedAt:       comment.CreatedAt,
	}
}

type commentNodeResponse struct {
	commentResponse
	Depth       int                    `json:"depth"`
	CanReply    bool                   `json:"can_reply"`
	Helpfulness int                    `json:"helpfulness"`
	Replies     []*commentNodeResponse `json:"replies"`
}

func newThreadResponse(thread services.Thread) []*commentNodeResponse {
	var convert func(nodes []*threads.Node) []*commentNodeResponse
	convert = func(nodes []*threads.Node) []*commentNodeResponse {
		result := make([]*commentNodeResponse, 0, len(nodes))
		for _, node := range nodes {
			result = append(result, &commentNodeResponse{
				commentResponse: newCommentResponse(node.Comment),
				Depth:           node.Depth,
				CanReply:        threads.CanReply(node.Depth),
				Helpfulness:     thread.Helpfulness[node.Comment.ID],
				Replies:         convert(node.Replies),
			})
		}
		return result
	}
	return convert(thread.Forest.Roots)
}

type voteRequest struct {
	VoteType string `json:"vote_type"`
}

type voteResponse struct {
	Previous string `json:"previous,omitempty"`
	Current  string `json:"current,omitempty"`
	Delta    int    `json:"delta"`
	NetCount int    `json:"net_count"`
}

type commentRequest struct {
	Content         string `json:"content"`
	ParentCommentID string `json:"parent_comment_id"`
}

type createdCommentResponse struct {
	Comment       commentResponse `json:"comment"`
	AuthorName    string          `json:"author_name,omitempty"`
	AutoDownvoted bool            `json:"auto_downvoted"`
}

type submitJobRequest struct {
	Url         string `json:"url"`
	Title       string `json:"title"`
	Company     string `json:"company"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Location    string `json:"location"`
	JobType     string `json:"job_type"`
}

type statusRequest struct {
	Status string `json:"status"`
}
