package model

import (
	"time"

	"github.com/lib/pq"
)

type Playlist struct {
	ID          int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string         `gorm:"not null;size:255" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	Tags        pq.StringArray `gorm:"type:text[]" json:"tags"`
	Published   bool           `gorm:"default:false" json:"published"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	Videos      []Video        `gorm:"foreignKey:PlaylistID" json:"videos,omitempty"`
}

func (Playlist) TableName() string {
	return "playlists"
}
