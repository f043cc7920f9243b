package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tarjama/api/internal/cache"
	"github.com/tarjama/api/internal/model"
)

// PublicHandler serves the unauthenticated viewer page.
type PublicHandler struct {
	db    *gorm.DB
	cache ViewerCache
}

func NewPublicHandler(db *gorm.DB, viewerCache ViewerCache) *PublicHandler {
	return &PublicHandler{db: db, cache: viewerCache}
}

type ReportIssueRequest struct {
	Description   string  `json:"description" binding:"required"`
	PlaylistID    *int64  `json:"playlistId"`
	VideoID       *string `json:"videoId"`
	SegmentIndex  *int    `json:"segmentIndex"`
	ReporterName  string  `json:"reporterName"`
	ReporterEmail string  `json:"reporterEmail"`
}

// ListPlaylists returns published playlists with their public video counts
func (h *PublicHandler) ListPlaylists(c *gin.Context) {
	var playlists []model.Playlist
	h.db.Where("published = true").Order("created_at ASC").Find(&playlists)

	type publicPlaylist struct {
		model.Playlist
		VideoCount int64 `json:"videoCount"`
	}

	out := make([]publicPlaylist, len(playlists))
	for i, p := range playlists {
		var count int64
		h.db.Model(&model.Video{}).
			Where("playlist_id = ? AND status = ?", p.ID, model.VideoStatusPublic).
			Count(&count)
		out[i] = publicPlaylist{Playlist: p, VideoCount: count}
	}

	c.JSON(http.StatusOK, gin.H{"data": out})
}

// GetPlaylist returns a published playlist and its public videos in order
func (h *PublicHandler) GetPlaylist(c *gin.Context) {
	playlistID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid playlist ID"})
		return
	}

	var playlist model.Playlist
	result := h.db.Where("published = true").
		Preload("Videos", func(db *gorm.DB) *gorm.DB {
			return db.Where("status = ?", model.VideoStatusPublic).Order("position ASC")
		}).
		First(&playlist, playlistID)

	if result.Error != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "playlist not found"})
		return
	}

	c.JSON(http.StatusOK, playlist)
}

// GetVideo returns a public video and the languages of its published transcripts
func (h *PublicHandler) GetVideo(c *gin.Context) {
	var video model.Video
	result := h.db.Where("status = ?", model.VideoStatusPublic).First(&video, "id = ?", c.Param("id"))
	if result.Error != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "video not found"})
		return
	}

	var languages []string
	h.db.Model(&model.Transcript{}).
		Where("video_id = ? AND content IS NOT NULL", video.ID).
		Order("language ASC").
		Pluck("language", &languages)

	c.JSON(http.StatusOK, gin.H{
		"video":     video,
		"languages": languages,
	})
}

// GetTranscript returns the published segments for a (video, language) pair,
// served from the viewer cache when warm.
func (h *PublicHandler) GetTranscript(c *gin.Context) {
	videoID := c.Param("id")
	language := normalizeLanguage(c.DefaultQuery("language", model.ArabicLanguage))

	cacheKey := cache.TranscriptKey(videoID, language)
	if h.cache != nil {
		if cached, err := h.cache.Get(c.Request.Context(), cacheKey); err == nil {
			c.Data(http.StatusOK, "application/json", cached)
			return
		}
	}

	var video model.Video
	if err := h.db.Where("status = ?", model.VideoStatusPublic).First(&video, "id = ?", videoID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "video not found"})
		return
	}

	var transcript model.Transcript
	result := h.db.Where("video_id = ? AND language = ?", video.ID, language).First(&transcript)
	if result.Error != nil || len(transcript.Content) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no published transcript for this language"})
		return
	}

	response := gin.H{
		"videoId":  video.ID,
		"language": transcript.Language,
		"status":   transcript.Status,
		"segments": json.RawMessage(transcript.Content),
	}

	if h.cache != nil {
		if body, err := json.Marshal(response); err == nil {
			h.cache.Set(c.Request.Context(), cacheKey, body)
		}
	}

	c.JSON(http.StatusOK, response)
}

// ReportIssue files a viewer-submitted issue and returns its reference code
func (h *PublicHandler) ReportIssue(c *gin.Context) {
	var req ReportIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "description is required"})
		return
	}

	issue := model.ReportedIssue{
		Reference:    uuid.NewString(),
		Description:  req.Description,
		PlaylistID:   req.PlaylistID,
		VideoID:      req.VideoID,
		SegmentIndex: req.SegmentIndex,
		ReporterName: req.ReporterName,
		ReporterMail: req.ReporterEmail,
		Status:       model.IssueStatusPending,
	}

	if err := h.db.Create(&issue).Error; err != nil {
		log.Printf("Failed to create reported issue: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to report issue"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"reference": issue.Reference})
}
