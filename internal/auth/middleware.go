package auth

import (
	"strings"

	"github.com/gin-gonic/gin"

	"nearmex/internal/apperr"
)

func abort(c *gin.Context, err error) {
	c.AbortWithStatusJSON(apperr.Status(err), gin.H{"message": apperr.PublicMessage(err)})
}

// bearerToken accepts both "Bearer <token>" and a bare token.
func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) >= 7 && strings.EqualFold(header[:7], "bearer ") {
		header = header[7:]
	}
	return strings.TrimSpace(header)
}

// AuthMiddleware is the session gate: it rejects requests without a valid
// session token and attaches the caller's Identity otherwise.
func AuthMiddleware(issuer *TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if strings.TrimSpace(header) == "" {
			abort(c, apperr.ErrUnauthenticated)
			return
		}
		id, err := issuer.Verify(bearerToken(header))
		if err != nil {
			abort(c, apperr.ErrInvalidToken)
			return
		}
		setIdentity(c, id)
		c.Next()
	}
}

// RequireAdmin is the role gate. It must run after AuthMiddleware; without an
// identity it forbids the request.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := IdentityFrom(c)
		if !ok || !id.IsAdmin() {
			abort(c, apperr.ErrForbidden)
			return
		}
		c.Next()
	}
}
