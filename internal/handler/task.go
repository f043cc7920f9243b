package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tarjama/api/internal/model"
)

type TaskHandler struct {
	db *gorm.DB
}

func NewTaskHandler(db *gorm.DB) *TaskHandler {
	return &TaskHandler{db: db}
}

type CreateTaskRequest struct {
	Description string `json:"description" binding:"required"`
	AssigneeID  int64  `json:"assigneeId" binding:"required"`
	Link        string `json:"link"`
}

type UpdateTaskRequest struct {
	Description *string `json:"description"`
	Status      *string `json:"status"`
	AssigneeID  *int64  `json:"assigneeId"`
	Link        *string `json:"link"`
}

// List returns tasks visible to the caller. Admins see everything; everyone
// else sees tasks they created or were assigned.
func (h *TaskHandler) List(c *gin.Context) {
	userID := c.GetInt64("userID")
	role := c.GetString("userRole")
	status := c.Query("status")

	query := h.db.Model(&model.Task{}).Preload("Assignee").Preload("Creator")

	if role != model.RoleAdmin {
		query = query.Where("assignee_id = ? OR creator_id = ?", userID, userID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var tasks []model.Task
	query.Order("created_at DESC").Find(&tasks)

	c.JSON(http.StatusOK, gin.H{"data": tasks})
}

// Create adds a task assigned to another user
func (h *TaskHandler) Create(c *gin.Context) {
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "description and assigneeId are required"})
		return
	}

	var assignee model.User
	if err := h.db.First(&assignee, req.AssigneeID).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "assignee not found"})
		return
	}

	task := model.Task{
		Description: req.Description,
		Status:      model.TaskStatusInProgress,
		AssigneeID:  req.AssigneeID,
		CreatorID:   c.GetInt64("userID"),
		Link:        req.Link,
	}

	if err := h.db.Create(&task).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create task"})
		return
	}

	h.db.Preload("Assignee").Preload("Creator").First(&task, task.ID)
	c.JSON(http.StatusCreated, task)
}

// Update modifies a task; only the creator, the assignee, or an admin may
func (h *TaskHandler) Update(c *gin.Context) {
	taskID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task ID"})
		return
	}

	var task model.Task
	if err := h.db.First(&task, taskID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}

	userID := c.GetInt64("userID")
	role := c.GetString("userRole")
	if role != model.RoleAdmin && task.CreatorID != userID && task.AssigneeID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not allowed to update this task"})
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	updates := map[string]interface{}{"updated_at": time.Now()}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Status != nil {
		if *req.Status != model.TaskStatusInProgress && *req.Status != model.TaskStatusComplete {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		updates["status"] = *req.Status
	}
	if req.AssigneeID != nil {
		updates["assignee_id"] = *req.AssigneeID
	}
	if req.Link != nil {
		updates["link"] = *req.Link
	}

	if err := h.db.Model(&task).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update task"})
		return
	}

	h.db.Preload("Assignee").Preload("Creator").First(&task, taskID)
	c.JSON(http.StatusOK, task)
}

// Delete removes a task; only the creator or an admin may
func (h *TaskHandler) Delete(c *gin.Context) {
	taskID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task ID"})
		return
	}

	var task model.Task
	if err := h.db.First(&task, taskID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}

	userID := c.GetInt64("userID")
	role := c.GetString("userRole")
	if role != model.RoleAdmin && task.CreatorID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not allowed to delete this task"})
		return
	}

	h.db.Delete(&task)
	c.JSON(http.StatusOK, gin.H{"message": "task deleted"})
}
