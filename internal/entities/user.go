package entities

import "time"

// User is the profile behind an authenticated chat account.
type User struct {
	ID          string `gorm:"primaryKey;size:36"`
	TelegramID  int64  `gorm:"uniqueIndex;not null"`
	Username    string `gorm:"size:30"`
	Email       string
	KarmaPoints int `gorm:"not null;default:0"`
	CreatedAt   time.Time
}
