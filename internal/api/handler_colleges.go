package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"campus-reveal-backend/internal/metrics"
	"campus-reveal-backend/internal/model"
	"campus-reveal-backend/internal/store"
)

// ListColleges handles GET /api/colleges. The optional name query keeps
// colleges whose name contains it, ignoring case.
func (h *Handler) ListColleges(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	colleges, err := h.store.ListColleges(ctx, c.Query("name"))
	if err != nil {
		fail(c, http.StatusInternalServerError, "Error fetching colleges", err)
		return
	}
	c.JSON(http.StatusOK, colleges)
}

// GetCollege handles GET /api/colleges/:collegeId.
func (h *Handler) GetCollege(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	college, err := h.store.GetCollege(ctx, c.Param("collegeId"))
	if errors.Is(err, store.ErrNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "College not found"})
		return
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, "Error fetching college details", err)
		return
	}
	c.JSON(http.StatusOK, college)
}

// RequestCollege handles POST /api/colleges/request-college. The request is
// mailed to the administrator and not stored; the response waits for the
// relay to accept the message.
func (h *Handler) RequestCollege(c *gin.Context) {
	var req model.CollegeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid college request", err)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.City = strings.TrimSpace(req.City)
	req.State = strings.TrimSpace(req.State)
	if req.Name == "" || req.City == "" || req.State == "" {
		fail(c, http.StatusBadRequest, "Invalid college request", errors.New("name, city and state must not be blank"))
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	if err := h.notifier.Notify(ctx, req); err != nil {
		metrics.CollegeRequests.WithLabelValues("failed").Inc()
		h.log.Errorw("college request not sent", "name", req.Name, "err", err)
		fail(c, http.StatusInternalServerError, "Error sending email", err)
		return
	}

	metrics.CollegeRequests.WithLabelValues("sent").Inc()
	h.log.Infow("college request sent", "name", req.Name, "city", req.City, "state", req.State)
	c.JSON(http.StatusOK, gin.H{"message": "Request submitted successfully and email sent!"})
}
