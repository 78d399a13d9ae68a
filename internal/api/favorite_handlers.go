package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"nearmex/internal/favorite"
)

// GET /favorites
func ListFavoritesHandler(favs *favorite.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := identity(c)
		if !ok {
			return
		}
		list, err := favs.List(c.Request.Context(), id.UserID)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// GET /favorites/ids
func FavoriteIDsHandler(favs *favorite.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := identity(c)
		if !ok {
			return
		}
		ids, err := favs.IDs(c.Request.Context(), id.UserID)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, ids)
	}
}

// POST /favorites
func AddFavoriteHandler(favs *favorite.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := identity(c)
		if !ok {
			return
		}
		var req struct {
			DestinationID uint `json:"destinationId"`
		}
		if !bind(c, &req) {
			return
		}
		if err := favs.Add(c.Request.Context(), id.UserID, req.DestinationID); err != nil {
			fail(c, err)
			return
		}
		message(c, http.StatusCreated, "Added to favorites")
	}
}

// DELETE /favorites/:destinationId
func RemoveFavoriteHandler(favs *favorite.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := identity(c)
		if !ok {
			return
		}
		destID, ok := paramID(c, "destinationId")
		if !ok {
			return
		}
		if err := favs.Remove(c.Request.Context(), id.UserID, destID); err != nil {
			fail(c, err)
			return
		}
		message(c, http.StatusOK, "Removed from favorites")
	}
}
