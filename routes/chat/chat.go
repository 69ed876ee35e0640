package chat

import (
	"github.com/PattyWambere/Your-Commissioner/controllers"
	"github.com/PattyWambere/Your-Commissioner/middleware"
	svc "github.com/PattyWambere/Your-Commissioner/pkg/services"
	"github.com/PattyWambere/Your-Commissioner/pkg/store"

	"github.com/gin-gonic/gin"
)

// Register registers chat routes (protected)
func Register(g *gin.RouterGroup, st *store.Store, m *svc.Messenger) {
	g.POST("/chat/messages", middleware.RateLimit(), controllers.SendMessage(m))
	g.GET("/chat/messages", controllers.ListMessages(m))
	g.GET("/chat/conversations", controllers.ListConversations(st))
	g.POST("/chat/conversations", middleware.RateLimit(), controllers.CreateConversation(st))
}
