package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"nearmex/internal/destination"
)

// GET /destinations
func ListDestinationsHandler(dests *destination.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := dests.List(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// GET /destinations/:id
func GetDestinationHandler(dests *destination.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		d, err := dests.Get(c.Request.Context(), id)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, d)
	}
}

// POST /destinations  [admin only]
func CreateDestinationHandler(dests *destination.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in destination.Input
		if !bind(c, &in) {
			return
		}
		d, err := dests.Create(c.Request.Context(), in)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, d)
	}
}

// PUT /destinations/:id  [admin only]
func UpdateDestinationHandler(dests *destination.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		var in destination.Input
		if !bind(c, &in) {
			return
		}
		d, err := dests.Update(c.Request.Context(), id, in)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, d)
	}
}

// DELETE /destinations/:id  [admin only]
func DeleteDestinationHandler(dests *destination.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		if err := dests.Delete(c.Request.Context(), id); err != nil {
			fail(c, err)
			return
		}
		message(c, http.StatusOK, "Destination deleted")
	}
}
