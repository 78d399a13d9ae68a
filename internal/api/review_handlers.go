package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"nearmex/internal/mail"
	"nearmex/internal/metrics"
	"nearmex/internal/review"
)

// GET /reviews/:destinationId
func ListReviewsHandler(reviews *review.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		destID, ok := paramID(c, "destinationId")
		if !ok {
			return
		}
		list, err := reviews.ListByDestination(c.Request.Context(), destID)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// GET /reviews/user
func ListMyReviewsHandler(reviews *review.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := identity(c)
		if !ok {
			return
		}
		list, err := reviews.ListByUser(c.Request.Context(), id.UserID)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// POST /reviews
func CreateReviewHandler(reviews *review.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := identity(c)
		if !ok {
			return
		}
		var in review.Input
		if !bind(c, &in) {
			return
		}
		r, err := reviews.Create(c.Request.Context(), id.UserID, in)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "Review added successfully", "review": r})
	}
}

// PUT /reviews/:id
func UpdateReviewHandler(reviews *review.Store) gin.HandlerFunc {
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
			Rating  int    `json:"rating"`
			Comment string `json:"comment"`
		}
		if !bind(c, &req) {
			return
		}
		if err := reviews.Update(c.Request.Context(), id, caller.UserID, req.Rating, req.Comment); err != nil {
			fail(c, err)
			return
		}
		message(c, http.StatusOK, "Review updated successfully")
	}
}

// DELETE /reviews/:id
func DeleteReviewHandler(reviews *review.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := identity(c)
		if !ok {
			return
		}
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		if err := reviews.Delete(c.Request.Context(), id, caller.UserID); err != nil {
			fail(c, err)
			return
		}
		message(c, http.StatusOK, "Review deleted successfully")
	}
}

// DELETE /reviews/admin/:id  [admin only]
//
// The author is told by email; a failed send does not undo the delete.
func AdminDeleteReviewHandler(reviews *review.Store, notifier mail.Notifier, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		removed, err := reviews.DeleteAny(c.Request.Context(), id)
		if err != nil {
			fail(c, err)
			return
		}
		log := logFor(c).WithField("review_id", id)
		log.Info("review removed by admin")
		if removed.AuthorEmail != "" {
			err := notifier.SendReviewRemoved(context.WithoutCancel(c.Request.Context()),
				removed.AuthorEmail, removed.AuthorUsername, removed.DestinationName)
			m.MailSent("review_removed", err)
			if err != nil {
				log.WithError(err).Error("review removal email failed")
			}
		}
		message(c, http.StatusOK, "Review deleted by administrator")
	}
}
