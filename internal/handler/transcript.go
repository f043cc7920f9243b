package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/tarjama/api/internal/cache"
	"github.com/tarjama/api/internal/middleware"
	"github.com/tarjama/api/internal/model"
	"github.com/tarjama/api/internal/srt"
)

// ViewerCache is the slice of the redis cache the handlers use for published
// transcripts. It is nil when redis is unavailable.
type ViewerCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

type TranscriptHandler struct {
	db    *gorm.DB
	cache ViewerCache
}

func NewTranscriptHandler(db *gorm.DB, viewerCache ViewerCache) *TranscriptHandler {
	return &TranscriptHandler{db: db, cache: viewerCache}
}

type SaveDraftRequest struct {
	Segments []model.Segment `json:"segments" binding:"required"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type ImportSRTRequest struct {
	SRT string `json:"srt" binding:"required"`
}

type TranscriptSummary struct {
	Language  string    `json:"language"`
	Status    string    `json:"status"`
	HasDraft  bool      `json:"hasDraft"`
	Published bool      `json:"published"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func normalizeLanguage(language string) string {
	return strings.ToLower(strings.TrimSpace(language))
}

// requireEditor checks the caller's role against the transcript language.
func requireEditor(c *gin.Context, language string) bool {
	role := c.GetString("userRole")
	if !model.CanEditLanguage(role, language) {
		c.JSON(http.StatusForbidden, gin.H{"error": "role cannot edit this language"})
		return false
	}
	return true
}

func (h *TranscriptHandler) findVideo(c *gin.Context) (*model.Video, bool) {
	var video model.Video
	if err := h.db.First(&video, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "video not found"})
		return nil, false
	}
	return &video, true
}

// List returns per-language transcript summaries for a video
func (h *TranscriptHandler) List(c *gin.Context) {
	video, ok := h.findVideo(c)
	if !ok {
		return
	}

	var transcripts []model.Transcript
	h.db.Where("video_id = ?", video.ID).Order("language ASC").Find(&transcripts)

	summaries := make([]TranscriptSummary, len(transcripts))
	for i, tr := range transcripts {
		summaries[i] = TranscriptSummary{
			Language:  tr.Language,
			Status:    tr.Status,
			HasDraft:  len(tr.Draft) > 0,
			Published: len(tr.Content) > 0,
			UpdatedAt: tr.UpdatedAt,
		}
	}

	c.JSON(http.StatusOK, gin.H{"videoId": video.ID, "data": summaries})
}

// Get returns the full transcript including draft content for its editors
func (h *TranscriptHandler) Get(c *gin.Context) {
	language := normalizeLanguage(c.Param("language"))
	if !requireEditor(c, language) {
		return
	}

	video, ok := h.findVideo(c)
	if !ok {
		return
	}

	var transcript model.Transcript
	result := h.db.Where("video_id = ? AND language = ?", video.ID, language).First(&transcript)
	if result.Error != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "transcript not found"})
		return
	}

	c.JSON(http.StatusOK, transcript)
}

// SaveDraft upserts the draft segments of a transcript
func (h *TranscriptHandler) SaveDraft(c *gin.Context) {
	language := normalizeLanguage(c.Param("language"))
	if !requireEditor(c, language) {
		return
	}

	video, ok := h.findVideo(c)
	if !ok {
		return
	}

	var req SaveDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "segments is required"})
		return
	}

	if len(req.Segments) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "segments must not be empty"})
		return
	}

	if err := validateSegments(req.Segments); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	draftJSON, err := json.Marshal(req.Segments)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to encode segments"})
		return
	}

	transcript, err := h.upsert(c, video.ID, language, func(tr *model.Transcript) {
		tr.Draft = datatypes.JSON(draftJSON)
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save draft"})
		return
	}

	c.JSON(http.StatusOK, transcript)
}

// Publish promotes the draft to published content and clears it
func (h *TranscriptHandler) Publish(c *gin.Context) {
	language := normalizeLanguage(c.Param("language"))
	if !requireEditor(c, language) {
		return
	}

	video, ok := h.findVideo(c)
	if !ok {
		return
	}

	var transcript model.Transcript
	result := h.db.Where("video_id = ? AND language = ?", video.ID, language).First(&transcript)
	if result.Error != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "transcript not found"})
		return
	}

	if len(transcript.Draft) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no draft to publish"})
		return
	}

	userID := c.GetInt64("userID")
	transcript.Content = transcript.Draft
	transcript.Draft = nil
	transcript.Status = model.TranscriptStatusInReview
	transcript.UpdatedBy = &userID
	transcript.UpdatedAt = time.Now()

	if err := h.db.Save(&transcript).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to publish transcript"})
		return
	}

	// Viewer cache must not outlive the old content
	if h.cache != nil {
		h.cache.Delete(c.Request.Context(), cache.TranscriptKey(video.ID, language))
	}

	middleware.RecordTranscriptPublish(language)

	c.JSON(http.StatusOK, transcript)
}

// DiscardDraft drops unpublished edits
func (h *TranscriptHandler) DiscardDraft(c *gin.Context) {
	language := normalizeLanguage(c.Param("language"))
	if !requireEditor(c, language) {
		return
	}

	video, ok := h.findVideo(c)
	if !ok {
		return
	}

	result := h.db.Model(&model.Transcript{}).
		Where("video_id = ? AND language = ?", video.ID, language).
		Updates(map[string]interface{}{"draft": nil, "updated_at": time.Now()})
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "transcript not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "draft discarded"})
}

// UpdateStatus sets the per-language approval status
func (h *TranscriptHandler) UpdateStatus(c *gin.Context) {
	language := normalizeLanguage(c.Param("language"))

	video, ok := h.findVideo(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	if !model.ValidTranscriptStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}

	userID := c.GetInt64("userID")
	result := h.db.Model(&model.Transcript{}).
		Where("video_id = ? AND language = ?", video.ID, language).
		Updates(map[string]interface{}{
			"status":     req.Status,
			"updated_by": userID,
			"updated_at": time.Now(),
		})
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "transcript not found"})
		return
	}

	// The cached viewer response carries the status
	if h.cache != nil {
		h.cache.Delete(c.Request.Context(), cache.TranscriptKey(video.ID, language))
	}

	c.JSON(http.StatusOK, gin.H{"language": language, "status": req.Status})
}

// ImportSRT parses SubRip text into the draft
func (h *TranscriptHandler) ImportSRT(c *gin.Context) {
	language := normalizeLanguage(c.Param("language"))
	if !requireEditor(c, language) {
		return
	}

	video, ok := h.findVideo(c)
	if !ok {
		return
	}

	var req ImportSRTRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "srt is required"})
		return
	}

	segments := srt.Parse(req.SRT)
	if len(segments) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no segments found in SRT input"})
		return
	}

	draftJSON, err := json.Marshal(segments)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to encode segments"})
		return
	}

	transcript, err := h.upsert(c, video.ID, language, func(tr *model.Transcript) {
		tr.Draft = datatypes.JSON(draftJSON)
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to import SRT"})
		return
	}

	middleware.RecordSRTImport(language)

	c.JSON(http.StatusOK, gin.H{
		"transcript":   transcript,
		"segmentCount": len(segments),
	})
}

// ExportSRT renders the published content as a SubRip attachment
func (h *TranscriptHandler) ExportSRT(c *gin.Context) {
	language := normalizeLanguage(c.Param("language"))

	video, ok := h.findVideo(c)
	if !ok {
		return
	}

	var transcript model.Transcript
	result := h.db.Where("video_id = ? AND language = ?", video.ID, language).First(&transcript)
	if result.Error != nil || len(transcript.Content) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no published transcript"})
		return
	}

	var segments []model.Segment
	if err := json.Unmarshal(transcript.Content, &segments); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to decode transcript"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s-%s.srt", video.YoutubeID, language))
	c.Data(http.StatusOK, "application/x-subrip", []byte(srt.Format(segments)))
}

// upsert loads or creates the (video, language) transcript row, applies the
// mutation and persists it with the caller recorded as updater.
func (h *TranscriptHandler) upsert(c *gin.Context, videoID, language string, mutate func(*model.Transcript)) (*model.Transcript, error) {
	userID := c.GetInt64("userID")

	var transcript model.Transcript
	result := h.db.Where("video_id = ? AND language = ?", videoID, language).First(&transcript)
	if result.Error != nil {
		if result.Error != gorm.ErrRecordNotFound {
			return nil, result.Error
		}
		transcript = model.Transcript{
			VideoID:  videoID,
			Language: language,
			Status:   model.TranscriptStatusPending,
		}
	}

	mutate(&transcript)
	transcript.UpdatedBy = &userID
	transcript.UpdatedAt = time.Now()

	if err := h.db.Save(&transcript).Error; err != nil {
		return nil, err
	}

	return &transcript, nil
}

// validateSegments checks that every segment has parseable time and some text.
// Monotonic ordering is deliberately not enforced; that is a UI concern.
func validateSegments(segments []model.Segment) error {
	for i, seg := range segments {
		if _, err := srt.ParseClock(seg.Time); err != nil {
			return fmt.Errorf("segment %d: %v", i, err)
		}
		if strings.TrimSpace(seg.Text) == "" {
			return fmt.Errorf("segment %d: text is required", i)
		}
	}
	return nil
}
