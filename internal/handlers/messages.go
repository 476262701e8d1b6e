package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"doctor-booking-server/internal/chat"
	"doctor-booking-server/internal/models"
	"doctor-booking-server/internal/utils"
)

// MessageHandler handles chat threads and messages.
type MessageHandler struct {
	Chat   *chat.Service
	Hub    *chat.Hub
	Logger *logrus.Logger
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(svc *chat.Service, hub *chat.Hub, logger *logrus.Logger) *MessageHandler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &MessageHandler{Chat: svc, Hub: hub, Logger: logger}
}

type StartChatRequest struct {
	DoctorID string `json:"doctorId" binding:"required"`
}

type SendMessageRequest struct {
	Content  string `json:"content" binding:"max=4000"`
	ImageURL string `json:"imageUrl" binding:"omitempty,url"`
}

type EditMessageRequest struct {
	Content string `json:"content" binding:"required,max=4000"`
}

// StartChat opens (or reopens) the thread with a doctor.
func (h *MessageHandler) StartChat(c *gin.Context) {
	var req StartChatRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	user, ok := requireUser(c)
	if !ok {
		return
	}
	id, err := h.Chat.StartChat(c.Request.Context(), user, req.DoctorID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Chat started", gin.H{"threadId": id})
}

// GetConversations lists the user's threads, most recent first.
func (h *MessageHandler) GetConversations(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	threads, err := h.Chat.Threads(c.Request.Context(), user)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Conversations retrieved successfully", threads)
}

// GetMessages returns the conversation with a doctor.
func (h *MessageHandler) GetMessages(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	msgs, err := h.Chat.Messages(c.Request.Context(), user, c.Param("doctorId"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Messages retrieved successfully", msgs)
}

// SendMessage posts a message to a doctor.
func (h *MessageHandler) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	user, ok := requireUser(c)
	if !ok {
		return
	}
	msg, err := h.Chat.SendMessage(c.Request.Context(), user, c.Param("doctorId"), req.Content, req.ImageURL)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Created(c, "Message sent successfully", msg)
}

// MarkAsRead flags the doctor's messages to the user as read.
func (h *MessageHandler) MarkAsRead(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	n, err := h.Chat.MarkRead(c.Request.Context(), user, c.Param("doctorId"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Messages marked as read", gin.H{"updated": n})
}

// Reply posts a doctor's answer into a thread. Doctors have no sign-in of
// their own, so this is served from the admin console.
func (h *MessageHandler) Reply(c *gin.Context) {
	var req SendMessageRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	msg, err := h.Chat.Reply(c.Request.Context(), c.Param("threadId"), req.Content, req.ImageURL)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Created(c, "Reply sent successfully", msg)
}

func (h *MessageHandler) EditMessage(c *gin.Context) {
	var req EditMessageRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	user, ok := requireUser(c)
	if !ok {
		return
	}
	msg, err := h.Chat.EditMessage(c.Request.Context(), user, c.Param("id"), req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Message updated successfully", msg)
}

func (h *MessageHandler) DeleteMessage(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	if err := h.Chat.DeleteMessage(c.Request.Context(), user, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Message deleted successfully", nil)
}

func (h *MessageHandler) DeleteChat(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	if err := h.Chat.DeleteChat(c.Request.Context(), user, c.Param("threadId")); err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Chat deleted successfully", nil)
}

// Stream upgrades to a websocket carrying live events of the thread with
// a doctor.
func (h *MessageHandler) Stream(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	threadID := models.ThreadID(user.ID, c.Param("doctorId"))
	if err := h.Hub.ServeWS(c.Writer, c.Request, threadID); err != nil {
		h.Logger.WithError(err).WithField("thread_id", threadID).Debug("chat websocket ended")
	}
}
