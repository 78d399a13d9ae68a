package api

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"nearmex/internal/user"
)

// SetupHandler creates the first account, as an admin. It is refused once any
// user exists.
func SetupHandler(users *user.Store, hasher *user.Hasher) gin.HandlerFunc {
	// Serializes setups within this process so two first requests cannot
	// both see an empty table.
	var mu sync.Mutex
	return func(c *gin.Context) {
		var req RegisterRequest
		if !bind(c, &req) {
			return
		}
		mu.Lock()
		defer mu.Unlock()

		ctx := c.Request.Context()
		count, err := users.Count(ctx)
		if err != nil {
			fail(c, err)
			return
		}
		if count != 0 {
			message(c, http.StatusForbidden, "Setup not allowed; users already exist")
			return
		}
		u, err := createAccount(ctx, users, hasher, req, user.RoleAdmin)
		if err != nil {
			fail(c, err)
			return
		}
		logFor(c).WithField("user_id", u.ID).Info("initial admin created")
		c.JSON(http.StatusCreated, gin.H{
			"id":             u.ID,
			"username":       u.Username,
			"role":           u.Role,
			"createdAt":      u.CreatedAt,
			"setup_complete": true,
		})
	}
}
