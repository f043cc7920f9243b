package model

import (
	"time"

	"gorm.io/datatypes"
)

// Segment is the in-app editing unit of a transcript. Time is the compact
// clock form shown to editors ("1:23" or "1:02:03"), not an SRT timestamp.
type Segment struct {
	Time string `json:"time"`
	Text string `json:"text"`
}

type Transcript struct {
	ID        int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	VideoID   string         `gorm:"type:uuid;not null;index" json:"videoId"`
	Language  string         `gorm:"not null;size:10" json:"language"`
	Content   datatypes.JSON `json:"content"`
	Draft     datatypes.JSON `json:"draft,omitempty"`
	Status    string         `gorm:"not null;default:'pending';size:20" json:"status"`
	UpdatedBy *int64         `json:"updatedBy,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

func (Transcript) TableName() string {
	return "transcripts"
}

// Approval status constants
const (
	TranscriptStatusPending  = "pending"
	TranscriptStatusInReview = "in_review"
	TranscriptStatusApproved = "approved"
)

func ValidTranscriptStatus(status string) bool {
	switch status {
	case TranscriptStatusPending, TranscriptStatusInReview, TranscriptStatusApproved:
		return true
	}
	return false
}
