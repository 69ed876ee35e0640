package routes

import (
	"net/http"

	"github.com/PattyWambere/Your-Commissioner/middleware"
	"github.com/PattyWambere/Your-Commissioner/pkg/realtime"
	svc "github.com/PattyWambere/Your-Commissioner/pkg/services"
	"github.com/PattyWambere/Your-Commissioner/pkg/store"
	tokenstore "github.com/PattyWambere/Your-Commissioner/pkg/token"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	authRoutes "github.com/PattyWambere/Your-Commissioner/routes/auth"
	chatRoutes "github.com/PattyWambere/Your-Commissioner/routes/chat"
	websocketRoutes "github.com/PattyWambere/Your-Commissioner/routes/websocket"
)

// Deps carries the constructed collaborators into the route registrars.
type Deps struct {
	Store       *store.Store
	Messenger   *svc.Messenger
	Gateway     *realtime.Gateway
	Auth        *middleware.Authenticator
	Revocations *tokenstore.Store
	Logger      zerolog.Logger
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"msg": "chat relay running"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	websocketRoutes.Register(r, d.Gateway, d.Messenger, d.Auth, d.Logger)

	protected := r.Group("/api")
	protected.Use(d.Auth.Middleware())
	authRoutes.RegisterProtected(protected, d.Revocations)
	chatRoutes.Register(protected, d.Store, d.Messenger)
}
