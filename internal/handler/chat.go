package handler

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tarjama/api/internal/client"
	"github.com/tarjama/api/internal/middleware"
)

// ChatHandler proxies the admin-only assistant to the LLM service.
type ChatHandler struct {
	llmClient *client.LLMClient
}

func NewChatHandler(llmClient *client.LLMClient) *ChatHandler {
	return &ChatHandler{llmClient: llmClient}
}

type AdminChatRequest struct {
	Message string `json:"message" binding:"required"`
	Context string `json:"context"`
}

func (h *ChatHandler) Chat(c *gin.Context) {
	var req AdminChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	start := time.Now()
	resp, err := h.llmClient.Chat(c.Request.Context(), req.Message, req.Context)
	middleware.RecordLLMChatCall(err == nil, time.Since(start))

	if err != nil {
		log.Printf("LLM chat call failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "assistant is unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reply": resp.Reply})
}
