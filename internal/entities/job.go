package entities

import (
	"fmt"
	"time"
)

type JobType string

const (
	Remote JobType = "remote"
	Hybrid JobType = "hybrid"
	Onsite JobType = "onsite"
)

func ToJobType(s string) (JobType, error) {
	switch s {
	case string(Remote):
		return Remote, nil
	case string(Hybrid):
		return Hybrid, nil
	case string(Onsite):
		return Onsite, nil
	default:
		return "", fmt.Errorf("invalid job type: %v", s)
	}
}

type JobStatus string

const (
	StatusActive  JobStatus = "active"
	StatusExpired JobStatus = "expired"
	StatusFilled  JobStatus = "filled"
)

func ToJobStatus(s string) (JobStatus, error) {
	switch s {
	case string(StatusActive):
		return StatusActive, nil
	case string(StatusExpired):
		return StatusExpired, nil
	case string(StatusFilled):
		return StatusFilled, nil
	default:
		return "", fmt.Errorf("invalid job status: %v", s)
	}
}

// JobPosting is a submitted job link. TrustScore mirrors the net count of its
// votes and is maintained by the votes repository, never written directly.
type JobPosting struct {
	ID          string    `gorm:"primaryKey;size:36"`
	UserID      string    `gorm:"size:36;not null;index" validate:"required"`
	Url         string    `gorm:"not null" validate:"required,url"`
	Title       string    `gorm:"size:200;not null" validate:"min=5,max=200"`
	Company     string    `gorm:"size:100;not null" validate:"min=2,max=100"`
	Description string    `gorm:"size:500" validate:"max=500"`
	Category    string    `gorm:"size:100;index"`
	Location    string    `gorm:"size:100" validate:"max=100"`
	JobType     JobType   `gorm:"size:16;not null;default:remote" validate:"oneof=remote hybrid onsite"`
	Status      JobStatus `gorm:"size:16;not null;default:active;index"`
	TrustScore  int       `gorm:"not null;default:0"`
	CreatedAt   time.Time `gorm:"index"`
	UpdatedAt   time.Time
}

func (j JobPosting) IsActive() bool {
	return j.Status == StatusActive
}
