package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"campus-reveal-backend/internal/metrics"
	"campus-reveal-backend/internal/model"
)

type addReviewRequest struct {
	Review string `json:"review"`
	Rating *int   `json:"rating" binding:"required,min=1,max=5"`
}

// ListReviews handles GET /api/colleges/:collegeId/reviews.
func (h *Handler) ListReviews(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	reviews, err := h.store.ListReviews(ctx, c.Param("collegeId"))
	if err != nil {
		fail(c, http.StatusInternalServerError, "Error fetching reviews", err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}

// AddReview handles POST /api/colleges/:collegeId/reviews. The college is
// not looked up; the review only records its identifier.
func (h *Handler) AddReview(c *gin.Context) {
	collegeID := c.Param("collegeId")
	if _, err := uuid.Parse(collegeID); err != nil {
		fail(c, http.StatusBadRequest, "Invalid college ID", errors.New("college ID must be a UUID"))
		return
	}

	var req addReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid review", err)
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	review := model.Review{
		CollegeID: collegeID,
		Review:    req.Review,
		Rating:    *req.Rating,
	}
	if err := h.store.AddReview(ctx, &review); err != nil {
		fail(c, http.StatusInternalServerError, "Error adding review", err)
		return
	}

	metrics.ReviewsSubmitted.Inc()
	c.JSON(http.StatusCreated, review)
}
