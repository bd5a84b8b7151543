package entities

import (
	"fmt"
	"time"
)

const MaxCommentLength = 500

type Sentiment string

const (
	Positive Sentiment = "positive"
	Neutral  Sentiment = "neutral"
	Negative Sentiment = "negative"
)

func ToSentiment(s string) (Sentiment, error) {
	switch s {
	case string(Positive):
		return Positive, nil
	case string(Neutral):
		return Neutral, nil
	case string(Negative):
		return Negative, nil
	default:
		return "", fmt.Errorf("invalid sentiment: %v", s)
	}
}

type Comment struct {
	ID              string    `gorm:"primaryKey;size:36"`
	JobPostingID    string    `gorm:"size:36;not null;index" validate:"required"`
	ParentCommentID *string   `gorm:"size:36;index"`
	UserID          string    `gorm:"size:36;not null;index" validate:"required"`
	Content         string    `gorm:"size:500;not null" validate:"min=1,max=500"`
	Sentiment       Sentiment `gorm:"size:16;not null;default:neutral"`
	CreatedAt       time.Time `gorm:"index"`
}

func (c Comment) IsReply() bool {
	return c.ParentCommentID != nil && *c.ParentCommentID != ""
}
