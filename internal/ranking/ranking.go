// Package ranking orders job postings for the board views.
package ranking

import (
	"fmt"
	"github.com/maxaizer/realjobs/internal/entities"
	"github.com/samber/lo"
	"math"
	"sort"
	"time"
)

type Mode string

const (
	Hot  Mode = "hot"
	New  Mode = "new"
	Top  Mode = "top"
	Fake Mode = "fake"
)

const (
	PageSize = 10

	// FakeFloor is the minimum number of downvoted postings the Fake view keeps.
	FakeFloor = 10
	fakeShare = 0.5

	commentWeight = 0.5
	hotGravity    = 1.5
	hotAgeOffset  = 2.0
)

// ParseMode maps a user supplied mode to a Mode; empty input means Hot.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "":
		return Hot, nil
	case Hot, New, Top, Fake:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown ranking mode: %q", s)
	}
}

// Entry is a posting annotated with the counts ranking needs.
type Entry struct {
	Job           entities.JobPosting
	VoteCount     int
	CommentCount  int
	DownvoteCount int
}

// HotScore decays popularity with age: (votes + comments/2) / (ageHours + 2)^1.5.
func HotScore(e Entry, now time.Time) float64 {
	ageHours := now.Sub(e.Job.CreatedAt).Hours()
	if ageHours < 0 {
		ageHours = 0
	}
	popularity := float64(e.VoteCount) + float64(e.CommentCount)*commentWeight
	return popularity / math.Pow(ageHours+hotAgeOffset, hotGravity)
}

// FakeCutoff is how many of n downvoted postings the Fake view retains.
func FakeCutoff(n int) int {
	half := int(math.Ceil(float64(n) * fakeShare))
	return min(n, max(half, FakeFloor))
}

// Rank returns a new slice ordered for mode. Fake also filters and truncates.
func Rank(entries []Entry, mode Mode, now time.Time) []Entry {
	ranked := make([]Entry, len(entries))
	copy(ranked, entries)

	switch mode {
	case Hot:
		scores := make(map[string]float64, len(ranked))
		for _, e := range ranked {
			scores[e.Job.ID] = HotScore(e, now)
		}
		sortBy(ranked, func(a, b Entry) int {
			return compareFloat(scores[b.Job.ID], scores[a.Job.ID])
		})
	case New:
		sortBy(ranked, func(a, b Entry) int { return 0 })
	case Top:
		sortBy(ranked, func(a, b Entry) int { return b.VoteCount - a.VoteCount })
	case Fake:
		ranked = lo.Filter(ranked, func(e Entry, _ int) bool { return e.DownvoteCount > 0 })
		sortBy(ranked, func(a, b Entry) int { return b.DownvoteCount - a.DownvoteCount })
		ranked = ranked[:FakeCutoff(len(ranked))]
	}

	return ranked
}

// Paginate returns the zero-based page and whether more entries follow it.
func Paginate(entries []Entry, page, size int) ([]Entry, bool) {
	if page < 0 || size <= 0 {
		return []Entry{}, false
	}
	start := page * size
	if start >= len(entries) {
		return []Entry{}, false
	}
	end := min(start+size, len(entries))
	return entries[start:end], end < len(entries)
}

// sortBy sorts by primary, then newest first, then id, so equal scores keep
// a stable order across requests.
func sortBy(entries []Entry, primary func(a, b Entry) int) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if c := primary(a, b); c != 0 {
			return c < 0
		}
		if !a.Job.CreatedAt.Equal(b.Job.CreatedAt) {
			return a.Job.CreatedAt.After(b.Job.CreatedAt)
		}
		return a.Job.ID < b.Job.ID
	})
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
