package bot

import (
	"fmt"
	"github.com/maxaizer/realjobs/internal/entities"
	"github.com/maxaizer/realjobs/internal/events"
	"github.com/maxaizer/realjobs/internal/services"
	"github.com/maxaizer/realjobs/internal/threads"
	"github.com/maxaizer/realjobs/internal/trust"
	"strings"
	"time"
	"unicode/utf8"
)

const previewLength = 80

var colorMarks = map[string]string{
	trust.ColorGreen:  "🟢",
	trust.ColorBlue:   "🔵",
	trust.ColorGray:   "⚪",
	trust.ColorYellow: "🟡",
	trust.ColorRed:    "🔴",
}

var sentimentMarks = map[entities.Sentiment]string{
	entities.Positive: "👍",
	entities.Neutral:  "💬",
	entities.Negative: "⚠️",
}

func formatPage(page services.RankedPage) string {
	if len(page.Entries) == 0 {
		return "No jobs here yet."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s jobs, page %d\n\n", strings.ToUpper(string(page.Mode)), page.Page+1)
	for i, entry := range page.Entries {
		fmt.Fprintf(&sb, "%d. %s %s at %s\n", i+1, colorMarks[entry.Color], entry.Job.Title, entry.Job.Company)
		fmt.Fprintf(&sb, "   score %d, %d comments", entry.VoteCount, entry.CommentCount)
		if entry.Badge != "" {
			fmt.Fprintf(&sb, ", %s", entry.Badge)
		}
		fmt.Fprintf(&sb, "\n   /job %s\n", entry.Job.ID)
	}
	if page.HasMore {
		fmt.Fprintf(&sb, "\nNext page: /jobs %s %d", page.Mode, page.Page+2)
	}
	return sb.String()
}

func formatJob(job entities.JobPosting, thread services.Thread, now time.Time) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s %s at %s\n", colorMarks[trust.Color(job.TrustScore)], job.Title, job.Company)
	if badge := trust.Badge(job.TrustScore, job.CreatedAt, now); badge != "" {
		fmt.Fprintf(&sb, "%s\n", badge)
	}
	fmt.Fprintf(&sb, "Trust score: %d\n", job.TrustScore)
	fmt.Fprintf(&sb, "Type: %s", job.JobType)
	if job.Location != "" {
		fmt.Fprintf(&sb, ", %s", job.Location)
	}
	if job.Category != "" {
		fmt.Fprintf(&sb, ", %s", job.Category)
	}
	if !job.IsActive() {
		fmt.Fprintf(&sb, "\nStatus: %s", job.Status)
	}
	fmt.Fprintf(&sb, "\n%s\n", job.Url)
	if job.Description != "" {
		fmt.Fprintf(&sb, "\n%s\n", job.Description)
	}

	fmt.Fprintf(&sb, "\n/up %[1]s  /down %[1]s  /bookmark %[1]s\n", job.ID)
	sb.WriteString("\n" + formatThread(thread))
	return sb.String()
}

func formatThread(thread services.Thread) string {
	if thread.Forest == nil || thread.Forest.Len() == 0 {
		return "No comments yet."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Comments (%d):\n", thread.Forest.Len())
	thread.Forest.Walk(func(node *threads.Node) {
		indent := strings.Repeat("    ", node.Depth)
		fmt.Fprintf(&sb, "%s%s %s [%+d]\n", indent, sentimentMarks[node.Comment.Sentiment],
			node.Comment.Content, thread.Helpfulness[node.Comment.ID])
		if threads.CanReply(node.Depth) {
			fmt.Fprintf(&sb, "%s/reply %s\n", indent, node.Comment.ID)
		}
	})
	return sb.String()
}

func formatCommentNotification(event events.CommentCreated) string {
	author := event.AuthorName
	if author == "" {
		author = "Someone"
	}
	return fmt.Sprintf("%s commented on a job you follow:\n%s %s\n/job %s", author,
		sentimentMarks[event.Comment.Sentiment], preview(event.Comment.Content), event.Comment.JobPostingID)
}

func formatJobList(title string, jobs []entities.JobPosting) string {
	if len(jobs) == 0 {
		return title + ": nothing yet."
	}

	var sb strings.Builder
	sb.WriteString(title + ":\n")
	for _, job := range jobs {
		fmt.Fprintf(&sb, "%s %s at %s", colorMarks[trust.Color(job.TrustScore)], job.Title, job.Company)
		if !job.IsActive() {
			fmt.Fprintf(&sb, " (%s)", job.Status)
		}
		fmt.Fprintf(&sb, "\n/job %s\n", job.ID)
	}
	return sb.String()
}

func preview(content string) string {
	if utf8.RuneCountInString(content) <= previewLength {
		return content
	}
	return string([]rune(content)[:previewLength]) + "…"
}
