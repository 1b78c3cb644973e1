package controllers

import (
	"net/http"

	"civiclens-be/services"

	"github.com/gin-gonic/gin"
)

type ChatController struct {
	chat *services.ChatService
}

func NewChatController(chat *services.ChatService) *ChatController {
	return &ChatController{chat: chat}
}

// Ask handles POST /chatbot.
func (h *ChatController) Ask(c *gin.Context) {
	var req struct {
		Message  string `json:"message"`
		Locality string `json:"locality"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reply, err := h.chat.Ask(c.Request.Context(), req.Message, req.Locality)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reply": reply})
}
