package controllers

import (
	"net/http"

	"github.com/PattyWambere/Your-Commissioner/middleware"
	tokenstore "github.com/PattyWambere/Your-Commissioner/pkg/token"

	"github.com/gin-gonic/gin"
)

// Logout revokes the presented token's jti. Token issuance lives in the
// account service; revocation has to happen here so open sockets and
// subsequent requests stop honoring the credential.
func Logout(revocations *tokenstore.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		jtiRaw, _ := c.Get(middleware.ContextJTIKey)
		jti, _ := jtiRaw.(string)
		revocations.Revoke(jti)
		c.JSON(http.StatusOK, gin.H{"msg": "Logged out"})
	}
}
