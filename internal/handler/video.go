package handler

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tarjama/api/internal/cache"
	"github.com/tarjama/api/internal/client"
	"github.com/tarjama/api/internal/model"
)

type VideoHandler struct {
	db      *gorm.DB
	youtube *client.YouTubeClient
	cache   ViewerCache
}

func NewVideoHandler(db *gorm.DB, youtube *client.YouTubeClient, viewerCache ViewerCache) *VideoHandler {
	return &VideoHandler{db: db, youtube: youtube, cache: viewerCache}
}

type CreateVideoRequest struct {
	YoutubeID       string `json:"youtubeId" binding:"required"`
	Title           string `json:"title"`
	DurationSeconds int    `json:"durationSeconds"`
	PlaylistID      *int64 `json:"playlistId"`
}

type UpdateVideoRequest struct {
	Title           *string `json:"title"`
	DurationSeconds *int    `json:"durationSeconds"`
	ThumbnailURL    *string `json:"thumbnailUrl"`
	PlaylistID      *int64  `json:"playlistId"`
	Status          *string `json:"status"`
}

// List returns videos with optional playlist/status filters and pagination
func (h *VideoHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	playlistID := c.Query("playlistId")
	status := c.Query("status")

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	offset := (page - 1) * limit

	query := h.db.Model(&model.Video{})

	if playlistID != "" {
		query = query.Where("playlist_id = ?", playlistID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var totalCount int64
	query.Count(&totalCount)

	var videos []model.Video
	query.Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&videos)

	totalPages := int((totalCount + int64(limit) - 1) / int64(limit))

	c.JSON(http.StatusOK, gin.H{
		"data":       videos,
		"page":       page,
		"limit":      limit,
		"totalCount": totalCount,
		"totalPages": totalPages,
	})
}

// Create registers a video by its YouTube ID and resolves metadata when possible
func (h *VideoHandler) Create(c *gin.Context) {
	var req CreateVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "youtubeId is required"})
		return
	}

	var existing model.Video
	if err := h.db.Where("youtube_id = ?", req.YoutubeID).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "video already exists", "id": existing.ID})
		return
	}

	video := model.Video{
		YoutubeID:       req.YoutubeID,
		Title:           req.Title,
		DurationSeconds: req.DurationSeconds,
		PlaylistID:      req.PlaylistID,
		Status:          model.VideoStatusProcessing,
	}

	// Metadata failure is not fatal; the worker retries until the video resolves
	if h.youtube != nil {
		if meta, err := h.youtube.GetMetadata(c.Request.Context(), req.YoutubeID); err == nil {
			if video.Title == "" {
				video.Title = meta.Title
			}
			video.ThumbnailURL = meta.ThumbnailURL
			video.Status = model.VideoStatusPublic
		} else {
			log.Printf("Metadata lookup failed for %s: %v", req.YoutubeID, err)
		}
	}

	if video.PlaylistID != nil {
		video.Position = h.nextPosition(*video.PlaylistID)
	}

	if err := h.db.Create(&video).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create video"})
		return
	}

	c.JSON(http.StatusCreated, video)
}

// Get returns a single video
func (h *VideoHandler) Get(c *gin.Context) {
	var video model.Video
	if err := h.db.First(&video, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "video not found"})
		return
	}

	c.JSON(http.StatusOK, video)
}

// Update modifies video fields
func (h *VideoHandler) Update(c *gin.Context) {
	var video model.Video
	if err := h.db.First(&video, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "video not found"})
		return
	}

	var req UpdateVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	updates := map[string]interface{}{"updated_at": time.Now()}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.DurationSeconds != nil {
		updates["duration_seconds"] = *req.DurationSeconds
	}
	if req.ThumbnailURL != nil {
		updates["thumbnail_url"] = *req.ThumbnailURL
	}
	if req.PlaylistID != nil {
		updates["playlist_id"] = *req.PlaylistID
		updates["position"] = h.nextPosition(*req.PlaylistID)
	}
	if req.Status != nil {
		if *req.Status != model.VideoStatusProcessing && *req.Status != model.VideoStatusPublic {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		updates["status"] = *req.Status
	}

	if err := h.db.Model(&video).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update video"})
		return
	}

	h.db.First(&video, "id = ?", video.ID)
	c.JSON(http.StatusOK, video)
}

// Delete removes a video and its transcripts
func (h *VideoHandler) Delete(c *gin.Context) {
	videoID := c.Param("id")

	var languages []string
	h.db.Model(&model.Transcript{}).Where("video_id = ?", videoID).Pluck("language", &languages)

	result := h.db.Delete(&model.Video{}, "id = ?", videoID)
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "video not found"})
		return
	}

	h.db.Where("video_id = ?", videoID).Delete(&model.Transcript{})

	// Cached viewer responses must not outlive the video
	if h.cache != nil {
		for _, language := range languages {
			h.cache.Delete(c.Request.Context(), cache.TranscriptKey(videoID, language))
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "video deleted"})
}

func (h *VideoHandler) nextPosition(playlistID int64) int {
	var maxPosition int
	h.db.Model(&model.Video{}).
		Where("playlist_id = ?", playlistID).
		Select("COALESCE(MAX(position), 0)").
		Scan(&maxPosition)
	return maxPosition + 1
}
