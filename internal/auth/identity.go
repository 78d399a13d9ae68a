package auth

import (
	"github.com/gin-gonic/gin"

	"nearmex/internal/user"
)

const identityKey = "nearmex.identity"

// Identity is the authenticated caller. Only AuthMiddleware produces one.
type Identity struct {
	UserID uint
	Role   user.Role
}

func (id Identity) IsAdmin() bool {
	return id.Role == user.RoleAdmin
}

// IdentityFrom returns the identity attached by AuthMiddleware.
func IdentityFrom(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}

func setIdentity(c *gin.Context, id Identity) {
	c.Set(identityKey, id)
}
