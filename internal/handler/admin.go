package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tarjama/api/internal/model"
)

type AdminHandler struct {
	db *gorm.DB
}

func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{db: db}
}

type DashboardStats struct {
	TotalVideos          int64            `json:"totalVideos"`
	ProcessingVideos     int64            `json:"processingVideos"`
	TotalPlaylists       int64            `json:"totalPlaylists"`
	TranscriptsByStatus  map[string]int64 `json:"transcriptsByStatus"`
	TranscriptLanguages  []LanguageCount  `json:"transcriptLanguages"`
	PendingIssues        int64            `json:"pendingIssues"`
	OpenTasks            int64            `json:"openTasks"`
	UsersByRole          map[string]int64 `json:"usersByRole"`
}

type LanguageCount struct {
	Language string `json:"language"`
	Count    int64  `json:"count"`
}

// GetStats returns dashboard statistics
func (h *AdminHandler) GetStats(c *gin.Context) {
	var stats DashboardStats

	h.db.Model(&model.Video{}).Count(&stats.TotalVideos)
	h.db.Model(&model.Video{}).Where("status = ?", model.VideoStatusProcessing).Count(&stats.ProcessingVideos)
	h.db.Model(&model.Playlist{}).Count(&stats.TotalPlaylists)
	h.db.Model(&model.ReportedIssue{}).Where("status = ?", model.IssueStatusPending).Count(&stats.PendingIssues)
	h.db.Model(&model.Task{}).Where("status = ?", model.TaskStatusInProgress).Count(&stats.OpenTasks)

	stats.TranscriptsByStatus = make(map[string]int64)
	type statusCount struct {
		Status string
		Count  int64
	}
	var statusCounts []statusCount
	h.db.Model(&model.Transcript{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&statusCounts)
	for _, sc := range statusCounts {
		stats.TranscriptsByStatus[sc.Status] = sc.Count
	}

	h.db.Model(&model.Transcript{}).
		Select("language, count(*) as count").
		Group("language").
		Order("count DESC").
		Scan(&stats.TranscriptLanguages)

	stats.UsersByRole = make(map[string]int64)
	type roleCount struct {
		Role  string
		Count int64
	}
	var roleCounts []roleCount
	h.db.Model(&model.User{}).
		Select("role, count(*) as count").
		Group("role").
		Scan(&roleCounts)
	for _, rc := range roleCounts {
		stats.UsersByRole[rc.Role] = rc.Count
	}

	c.JSON(http.StatusOK, stats)
}

// ListUsers returns all users with pagination
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	role := c.Query("role")

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	offset := (page - 1) * limit

	query := h.db.Model(&model.User{})
	if role != "" {
		query = query.Where("role = ?", role)
	}

	var totalCount int64
	query.Count(&totalCount)

	var users []model.User
	query.Order("created_at ASC").
		Offset(offset).
		Limit(limit).
		Find(&users)

	totalPages := int((totalCount + int64(limit) - 1) / int64(limit))

	c.JSON(http.StatusOK, gin.H{
		"data":       users,
		"page":       page,
		"limit":      limit,
		"totalCount": totalCount,
		"totalPages": totalPages,
	})
}

type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// UpdateUserRole changes a user's role
func (h *AdminHandler) UpdateUserRole(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user ID"})
		return
	}

	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "role is required"})
		return
	}

	if !model.ValidRole(req.Role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role"})
		return
	}

	// Admins cannot strip their own role; another admin has to do it
	if userID == c.GetInt64("userID") && req.Role != model.RoleAdmin {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot change your own admin role"})
		return
	}

	var user model.User
	if err := h.db.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	user.Role = req.Role
	user.UpdatedAt = time.Now()

	if err := h.db.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update user"})
		return
	}

	c.JSON(http.StatusOK, user)
}

// ListIssues returns reported issues with pagination and filters
func (h *AdminHandler) ListIssues(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	status := c.Query("status")

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	offset := (page - 1) * limit

	query := h.db.Model(&model.ReportedIssue{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var totalCount int64
	query.Count(&totalCount)

	var issues []model.ReportedIssue
	query.Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&issues)

	totalPages := int((totalCount + int64(limit) - 1) / int64(limit))

	c.JSON(http.StatusOK, gin.H{
		"data":       issues,
		"page":       page,
		"limit":      limit,
		"totalCount": totalCount,
		"totalPages": totalPages,
	})
}

type ReviewIssueRequest struct {
	Status     string `json:"status" binding:"required"`
	ReviewNote string `json:"reviewNote"`
}

// ReviewIssue updates the status of a reported issue
func (h *AdminHandler) ReviewIssue(c *gin.Context) {
	issueID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid issue ID"})
		return
	}

	var req ReviewIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if !model.ValidIssueStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}

	var issue model.ReportedIssue
	if err := h.db.First(&issue, issueID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "issue not found"})
		return
	}

	reviewerID := c.GetInt64("userID")
	issue.Status = req.Status
	issue.ReviewNote = req.ReviewNote
	issue.ReviewedBy = &reviewerID
	issue.UpdatedAt = time.Now()

	if err := h.db.Save(&issue).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update issue"})
		return
	}

	c.JSON(http.StatusOK, issue)
}
