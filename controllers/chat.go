package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/PattyWambere/Your-Commissioner/middleware"
	svc "github.com/PattyWambere/Your-Commissioner/pkg/services"

	"github.com/gin-gonic/gin"
)

type sendMessageInput struct {
	ConversationID *uint  `json:"conversationId"`
	PropertyID     *uint  `json:"propertyId"`
	PropertyName   string `json:"propertyName"`
	PropertyImage  string `json:"propertyImage"`
	PropertyLink   string `json:"propertyLink"`
	Body           string `json:"body" binding:"required"`
	Phone          string `json:"phone"`
}

// SendMessage is the authoritative send path: persist first, then notify
// live sockets best-effort through the messenger.
func SendMessage(m *svc.Messenger) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := middleware.CurrentPrincipal(c)

		var body sendMessageInput
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
			return
		}

		msg, conversationID, err := m.SendMessage(c.Request.Context(), principal.UserID, svc.SendInput{
			ConversationID: body.ConversationID,
			PropertyID:     body.PropertyID,
			PropertyName:   body.PropertyName,
			PropertyImage:  body.PropertyImage,
			PropertyLink:   body.PropertyLink,
			Body:           body.Body,
			Phone:          body.Phone,
		})
		if err != nil {
			abortForError(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{"message": msg, "conversationId": conversationID})
	}
}

// ListMessages returns a conversation's history oldest-first, capped at 500.
func ListMessages(m *svc.Messenger) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := middleware.CurrentPrincipal(c)

		raw := c.Query("conversationId")
		if raw == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "conversationId is required"})
			return
		}
		conversationID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || conversationID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "conversationId is required"})
			return
		}

		msgs, err := m.History(c.Request.Context(), principal.UserID, uint(conversationID))
		if err != nil {
			abortForError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"messages": msgs})
	}
}

// abortForError maps messenger sentinels onto the HTTP surface.
func abortForError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, svc.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	case errors.Is(err, svc.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	case errors.Is(err, svc.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, svc.ErrInvalidPayload):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
