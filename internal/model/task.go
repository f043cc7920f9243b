package model

import "time"

type Task struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Description string    `gorm:"not null;type:text" json:"description"`
	Status      string    `gorm:"not null;default:'in_progress';size:20" json:"status"`
	AssigneeID  int64     `gorm:"not null;index" json:"assigneeId"`
	CreatorID   int64     `gorm:"not null;index" json:"creatorId"`
	Link        string    `gorm:"size:500" json:"link,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Assignee    *User     `gorm:"foreignKey:AssigneeID" json:"assignee,omitempty"`
	Creator     *User     `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
}

func (Task) TableName() string {
	return "tasks"
}

// Status constants
const (
	TaskStatusInProgress = "in_progress"
	TaskStatusComplete   = "complete"
)
