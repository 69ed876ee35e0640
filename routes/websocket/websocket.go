package websocket

import (
	"github.com/PattyWambere/Your-Commissioner/controllers"
	"github.com/PattyWambere/Your-Commissioner/middleware"
	"github.com/PattyWambere/Your-Commissioner/pkg/realtime"
	svc "github.com/PattyWambere/Your-Commissioner/pkg/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func Register(r *gin.Engine, gw *realtime.Gateway, m *svc.Messenger, auth *middleware.Authenticator, logger zerolog.Logger) {
	r.GET("/ws/chat", middleware.RateLimit(), controllers.ChatWS(gw, m, auth, logger))
}
