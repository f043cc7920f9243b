package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/tarjama/api/internal/model"
)

type PlaylistHandler struct {
	db *gorm.DB
}

func NewPlaylistHandler(db *gorm.DB) *PlaylistHandler {
	return &PlaylistHandler{db: db}
}

type CreatePlaylistRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Published   bool     `json:"published"`
}

type UpdatePlaylistRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Tags        []string `json:"tags"`
	Published   *bool    `json:"published"`
}

type SetPlaylistVideosRequest struct {
	VideoIDs []string `json:"videoIds" binding:"required"`
}

// List returns all playlists with their video counts
func (h *PlaylistHandler) List(c *gin.Context) {
	var playlists []model.Playlist
	h.db.Order("created_at ASC").Find(&playlists)

	type playlistWithCount struct {
		model.Playlist
		VideoCount int64 `json:"videoCount"`
	}

	out := make([]playlistWithCount, len(playlists))
	for i, p := range playlists {
		var count int64
		h.db.Model(&model.Video{}).Where("playlist_id = ?", p.ID).Count(&count)
		out[i] = playlistWithCount{Playlist: p, VideoCount: count}
	}

	c.JSON(http.StatusOK, gin.H{"data": out})
}

// Create adds a new playlist
func (h *PlaylistHandler) Create(c *gin.Context) {
	var req CreatePlaylistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	playlist := model.Playlist{
		Name:        req.Name,
		Description: req.Description,
		Tags:        pq.StringArray(req.Tags),
		Published:   req.Published,
	}

	if err := h.db.Create(&playlist).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create playlist"})
		return
	}

	c.JSON(http.StatusCreated, playlist)
}

// Get returns a playlist with its videos in order
func (h *PlaylistHandler) Get(c *gin.Context) {
	playlistID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid playlist ID"})
		return
	}

	var playlist model.Playlist
	result := h.db.Preload("Videos", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).First(&playlist, playlistID)

	if result.Error != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "playlist not found"})
		return
	}

	c.JSON(http.StatusOK, playlist)
}

// Update modifies playlist fields
func (h *PlaylistHandler) Update(c *gin.Context) {
	playlistID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid playlist ID"})
		return
	}

	var playlist model.Playlist
	if err := h.db.First(&playlist, playlistID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "playlist not found"})
		return
	}

	var req UpdatePlaylistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	updates := map[string]interface{}{"updated_at": time.Now()}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Tags != nil {
		updates["tags"] = pq.StringArray(req.Tags)
	}
	if req.Published != nil {
		updates["published"] = *req.Published
	}

	if err := h.db.Model(&playlist).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update playlist"})
		return
	}

	h.db.First(&playlist, playlistID)
	c.JSON(http.StatusOK, playlist)
}

// Delete removes a playlist; member videos are detached, not deleted
func (h *PlaylistHandler) Delete(c *gin.Context) {
	playlistID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid playlist ID"})
		return
	}

	h.db.Model(&model.Video{}).Where("playlist_id = ?", playlistID).
		Updates(map[string]interface{}{"playlist_id": nil, "position": 0})

	result := h.db.Delete(&model.Playlist{}, playlistID)
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "playlist not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "playlist deleted"})
}

// SetVideos replaces the playlist's membership and ordering from an id list
func (h *PlaylistHandler) SetVideos(c *gin.Context) {
	playlistID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid playlist ID"})
		return
	}

	var playlist model.Playlist
	if err := h.db.First(&playlist, playlistID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "playlist not found"})
		return
	}

	var req SetPlaylistVideosRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "videoIds is required"})
		return
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		// Detach current members first so removed videos fall out of the playlist
		if err := tx.Model(&model.Video{}).Where("playlist_id = ?", playlistID).
			Updates(map[string]interface{}{"playlist_id": nil, "position": 0}).Error; err != nil {
			return err
		}

		for i, videoID := range req.VideoIDs {
			if err := tx.Model(&model.Video{}).Where("id = ?", videoID).
				Updates(map[string]interface{}{"playlist_id": playlistID, "position": i + 1}).Error; err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update playlist videos"})
		return
	}

	h.db.Preload("Videos", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).First(&playlist, playlistID)

	c.JSON(http.StatusOK, playlist)
}
