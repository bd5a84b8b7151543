// Package trust derives the community verdict shown next to a job posting.
package trust

import (
	"github.com/maxaizer/realjobs/internal/entities"
	"time"
)

const (
	VerifiedThreshold   = 20
	SuspiciousThreshold = -5
)

const (
	BadgeVerified   = "Community Verified"
	BadgeSuspicious = "Suspicious"
	BadgeNew        = "NEW"
	BadgeToday      = "TODAY"
	BadgeYesterday  = "YESTERDAY"
	BadgeThisWeek   = "THIS WEEK"
)

const (
	ColorGreen  = "green"
	ColorBlue   = "blue"
	ColorGray   = "gray"
	ColorYellow = "yellow"
	ColorRed    = "red"
)

func Score(tally entities.Tally) int {
	return tally.Net()
}

// Badge gives score based badges priority over freshness ones. An empty
// result means no badge.
func Badge(score int, createdAt, now time.Time) string {
	if score >= VerifiedThreshold {
		return BadgeVerified
	}
	if score < SuspiciousThreshold {
		return BadgeSuspicious
	}

	age := now.Sub(createdAt)
	switch {
	case age <= 4*time.Hour:
		return BadgeNew
	case age <= 24*time.Hour:
		return BadgeToday
	case age <= 48*time.Hour:
		return BadgeYesterday
	case age <= 7*24*time.Hour:
		return BadgeThisWeek
	default:
		return ""
	}
}

func Color(score int) string {
	switch {
	case score >= 20:
		return ColorGreen
	case score >= 10:
		return ColorBlue
	case score >= 5:
		return ColorGray
	case score < 0:
		return ColorRed
	default:
		return ColorYellow
	}
}
