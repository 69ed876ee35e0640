package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/PattyWambere/Your-Commissioner/pkg/config"
	tokenstore "github.com/PattyWambere/Your-Commissioner/pkg/token"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	ContextPrincipalKey = "current_principal"
	ContextJTIKey       = "current_jti"
)

// Principal is the verified identity carried by a request token. Tokens are
// issued by the account service; this app only verifies them.
type Principal struct {
	UserID uint
	Email  string
	Role   string
}

var errInvalidToken = errors.New("invalid token")

// Authenticator verifies request credentials against the shared secret and
// the injected revocation store.
type Authenticator struct {
	revocations *tokenstore.Store
}

func NewAuthenticator(revocations *tokenstore.Store) *Authenticator {
	return &Authenticator{revocations: revocations}
}

// VerifyCredential validates a signed token and returns its principal and
// jti. Revoked tokens fail verification.
func (a *Authenticator) VerifyCredential(tokenStr string) (*Principal, string, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		// only accept HMAC signing
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return []byte(config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, "", errInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, "", errInvalidToken
	}

	jti, _ := claims["jti"].(string)
	if a.revocations.IsRevoked(jti) {
		return nil, "", errInvalidToken
	}

	var userID uint
	switch v := claims["userId"].(type) {
	case string:
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, "", errInvalidToken
		}
		userID = uint(n)
	case float64:
		// numeric claims decode as float64
		userID = uint(v)
	default:
		return nil, "", errInvalidToken
	}
	if userID == 0 {
		return nil, "", errInvalidToken
	}

	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	return &Principal{UserID: userID, Email: email, Role: role}, jti, nil
}

// TokenFromRequest reads the credential from the token cookie, falling back
// to a bearer Authorization header.
func TokenFromRequest(c *gin.Context) string {
	if cookie, err := c.Cookie("token"); err == nil && cookie != "" {
		return cookie
	}
	auth := c.GetHeader("Authorization")
	parts := strings.Fields(auth)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1]
	}
	return ""
}

// Middleware rejects requests without a verifiable credential and stores the
// principal and jti on the context for handlers downstream.
func (a *Authenticator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := TokenFromRequest(c)
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		principal, jti, err := a.VerifyCredential(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Set(ContextPrincipalKey, principal)
		c.Set(ContextJTIKey, jti)
		c.Next()
	}
}

// CurrentPrincipal returns the principal set by the auth middleware, or nil
// on unauthenticated routes.
func CurrentPrincipal(c *gin.Context) *Principal {
	if v, ok := c.Get(ContextPrincipalKey); ok {
		if p, ok2 := v.(*Principal); ok2 {
			return p
		}
	}
	return nil
}
