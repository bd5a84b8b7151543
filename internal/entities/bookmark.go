package entities

import "time"

type Bookmark struct {
	UserID       string `gorm:"primaryKey;size:36"`
	JobPostingID string `gorm:"primaryKey;size:36"`
	CreatedAt    time.Time
}
