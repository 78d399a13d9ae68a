package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"nearmex/internal/apperr"
	"nearmex/internal/auth"
)

// fail writes err as {"message": ...} with its mapped status. Server-side
// failures are logged with their detail; the client only sees the public text.
func fail(c *gin.Context, err error) {
	status := apperr.Status(err)
	if status >= http.StatusInternalServerError {
		logFor(c).WithError(err).WithField("path", c.FullPath()).Error("request failed")
	}
	c.AbortWithStatusJSON(status, gin.H{"message": apperr.PublicMessage(err)})
}

func message(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"message": msg})
}

// bind decodes the JSON body into dst, writing a 400 on failure.
func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		if errors.Is(err, apperr.ErrInvalidInput) {
			fail(c, err)
		} else {
			fail(c, apperr.Invalid("Invalid request body"))
		}
		return false
	}
	return true
}

func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		fail(c, apperr.Invalid("Invalid "+name))
		return 0, false
	}
	return uint(id), true
}

// identity returns the caller attached by the session gate. Routes using it
// are always mounted behind auth.AuthMiddleware; the fallback only guards
// against a miswired route.
func identity(c *gin.Context) (auth.Identity, bool) {
	id, ok := auth.IdentityFrom(c)
	if !ok {
		fail(c, apperr.ErrUnauthenticated)
	}
	return id, ok
}

func logFor(c *gin.Context) *logrus.Entry {
	if v, ok := c.Get(loggerKey); ok {
		if entry, ok := v.(*logrus.Entry); ok {
			return entry
		}
	}
	return logrus.NewEntry(logrus.StandardLogger())
}
