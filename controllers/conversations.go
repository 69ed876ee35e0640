package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/PattyWambere/Your-Commissioner/middleware"
	"github.com/PattyWambere/Your-Commissioner/models"
	"github.com/PattyWambere/Your-Commissioner/pkg/config"
	"github.com/PattyWambere/Your-Commissioner/pkg/store"

	"github.com/gin-gonic/gin"
)

// ListConversations lists the caller's threads newest-activity-first, each
// decorated with its most recent message and the counterpart's profile.
// Commissioners pass scope=commissioner to see their inbound threads.
func ListConversations(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := middleware.CurrentPrincipal(c)
		ctx := c.Request.Context()

		take := config.ConversationListDefault
		if raw := c.Query("take"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil && n > 0 {
				take = n
			}
		}

		asCommissioner := principal.Role == models.RoleCommissioner && c.Query("scope") == "commissioner"

		var convs []models.Conversation
		var err error
		if asCommissioner {
			convs, err = st.ListConversationsForCommissioner(ctx, principal.UserID, take)
		} else {
			convs, err = st.ListConversationsForUser(ctx, principal.UserID, take)
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		for i := range convs {
			if latest, err := st.LatestMessage(ctx, convs[i].ID); err == nil {
				convs[i].Messages = []models.Message{*latest}
			}
			counterpartID := convs[i].CommissionerID
			if asCommissioner {
				counterpartID = convs[i].UserID
			}
			if u, err := st.FindUser(ctx, counterpartID); err == nil {
				p := u.Public()
				if asCommissioner {
					convs[i].User = &p
				} else {
					convs[i].Commissioner = &p
				}
			}
		}

		c.JSON(http.StatusOK, gin.H{"conversations": convs})
	}
}

// CreateConversation opens (or returns) the thread between the caller and a
// property's commissioner, so the chat UI can join the room before the
// first message is sent.
func CreateConversation(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := middleware.CurrentPrincipal(c)
		ctx := c.Request.Context()

		var body struct {
			PropertyID uint `json:"propertyId" binding:"required"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
			return
		}

		prop, err := st.FindProperty(ctx, body.PropertyID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		if existing, err := st.FindConversationByParticipants(ctx, principal.UserID, prop.CommissionerID); err == nil {
			c.JSON(http.StatusOK, gin.H{"conversation": existing})
			return
		} else if !errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		conv, err := st.UpsertConversation(ctx, principal.UserID, prop.CommissionerID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"conversation": conv})
	}
}
