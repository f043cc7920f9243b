package model

import "time"

type ReportedIssue struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Reference    string    `gorm:"not null;uniqueIndex;size:36" json:"reference"`
	Description  string    `gorm:"not null;type:text" json:"description"`
	PlaylistID   *int64    `json:"playlistId,omitempty"`
	VideoID      *string   `gorm:"type:uuid" json:"videoId,omitempty"`
	SegmentIndex *int      `json:"segmentIndex,omitempty"`
	ReporterName string    `gorm:"size:255" json:"reporterName,omitempty"`
	ReporterMail string    `gorm:"size:255" json:"reporterEmail,omitempty"`
	Status       string    `gorm:"default:'pending';size:20" json:"status"`
	ReviewedBy   *int64    `json:"reviewedBy,omitempty"`
	ReviewNote   string    `gorm:"type:text" json:"reviewNote,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (ReportedIssue) TableName() string {
	return "reported_issues"
}

// Status constants
const (
	IssueStatusPending   = "pending"
	IssueStatusResolved  = "resolved"
	IssueStatusDismissed = "dismissed"
)

func ValidIssueStatus(status string) bool {
	switch status {
	case IssueStatusPending, IssueStatusResolved, IssueStatusDismissed:
		return true
	}
	return false
}
