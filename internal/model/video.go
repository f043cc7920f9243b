package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Video struct {
	ID              string    `gorm:"type:uuid;primaryKey" json:"id"`
	YoutubeID       string    `gorm:"uniqueIndex;not null;size:20" json:"youtubeId"`
	Title           string    `gorm:"size:500" json:"title"`
	DurationSeconds int       `json:"durationSeconds"`
	ThumbnailURL    string    `json:"thumbnailUrl"`
	PlaylistID      *int64    `gorm:"index" json:"playlistId"`
	Position        int       `json:"position"`
	Status          string    `gorm:"not null;default:'processing';size:20" json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (Video) TableName() string {
	return "videos"
}

func (v *Video) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return nil
}

// Status constants
const (
	VideoStatusProcessing = "processing"
	VideoStatusPublic     = "public"
)
