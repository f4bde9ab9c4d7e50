package http

import (
	"net/http"

	"knead/internal/chat"
	appErrors "knead/pkg/errors"
	"knead/pkg/logger"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	usecase chat.ChatUsecase
	logger  logger.Logger
}

func NewChatHandler(usecase chat.ChatUsecase, logger logger.Logger) *ChatHandler {
	return &ChatHandler{usecase: usecase, logger: logger}
}

func (h *ChatHandler) MapRoutes(g *gin.RouterGroup) {
	g.GET("/conversations", h.ListConversations())
	g.POST("/conversations", h.OpenConversation())
	g.GET("/conversations/:id/messages", h.GetMessages())
	g.POST("/conversations/:id/messages", h.SendMessage())
	g.POST("/conversations/:id/read", h.MarkRead())
	g.POST("/messages", h.SendMessageToUser())
}

func (h *ChatHandler) ListConversations() gin.HandlerFunc {
	return func(c *gin.Context) {
		viewerID := c.Query("viewer")
		if viewerID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "viewer is required"})
			return
		}

		list, err := h.usecase.GetConversations(c.Request.Context(), viewerID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

type openConversationRequest struct {
	ViewerID    string `json:"viewer_id" binding:"required"`
	OtherUserID string `json:"other_user_id" binding:"required"`
}

func (h *ChatHandler) OpenConversation() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req openConversationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		conv, err := h.usecase.OpenConversationWithUser(c.Request.Context(), req.ViewerID, req.OtherUserID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, conv)
	}
}

func (h *ChatHandler) GetMessages() gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := h.usecase.GetMessages(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

type sendMessageRequest struct {
	SenderID string `json:"sender_id" binding:"required"`
	Content  string `json:"content" binding:"required"`
}

func (h *ChatHandler) SendMessage() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req sendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		msg, err := h.usecase.SendMessage(c.Request.Context(), req.SenderID, c.Param("id"), req.Content)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, msg)
	}
}

type sendToUserRequest struct {
	SenderID   string `json:"sender_id" binding:"required"`
	ReceiverID string `json:"receiver_id" binding:"required"`
	Content    string `json:"content" binding:"required"`
}

func (h *ChatHandler) SendMessageToUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req sendToUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		msg, err := h.usecase.SendMessageToUser(c.Request.Context(), req.SenderID, req.ReceiverID, req.Content)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, msg)
	}
}

type markReadRequest struct {
	ViewerID string `json:"viewer_id" binding:"required"`
}

func (h *ChatHandler) MarkRead() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req markReadRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if err := h.usecase.MarkMessagesAsRead(c.Request.Context(), req.ViewerID, c.Param("id")); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func respondError(c *gin.Context, err error) {
	c.JSON(appErrors.HTTPStatus(err), gin.H{"error": err.Error()})
}
