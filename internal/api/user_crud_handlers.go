package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"nearmex/internal/apperr"
	"nearmex/internal/user"
)

// GET /admin/users  [admin only]
func ListUsersHandler(users *user.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := users.List(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		result := make([]user.Profile, 0, len(list))
		for i := range list {
			result = append(result, list[i].Profile())
		}
		c.JSON(http.StatusOK, result)
	}
}

// PUT /admin/users/:id/role  [admin only]
func SetUserRoleHandler(users *user.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := identity(c)
		if !ok {
			return
		}
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		var req struct {
			Role user.Role `json:"role"`
		}
		if !bind(c, &req) {
			return
		}
		if !req.Role.Valid() {
			fail(c, apperr.Invalid("Role must be user or admin"))
			return
		}
		if id == caller.UserID && req.Role != user.RoleAdmin {
			fail(c, apperr.Invalid("You cannot remove your own admin role"))
			return
		}
		if err := users.SetRole(c.Request.Context(), id, req.Role); err != nil {
			fail(c, err)
			return
		}
		logFor(c).WithFields(logrus.Fields{"user_id": id, "role": req.Role, "by": caller.UserID}).Info("role changed")
		message(c, http.StatusOK, "Role updated")
	}
}
