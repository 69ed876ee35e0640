package auth

import (
	"github.com/PattyWambere/Your-Commissioner/controllers"
	tokenstore "github.com/PattyWambere/Your-Commissioner/pkg/token"

	"github.com/gin-gonic/gin"
)

// RegisterProtected registers session routes. There is no login here: tokens
// are minted by the account service and only verified (and revoked) by this
// one.
func RegisterProtected(g *gin.RouterGroup, revocations *tokenstore.Store) {
	g.POST("/logout", controllers.Logout(revocations))
}
