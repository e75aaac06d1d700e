package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"campus-reveal-backend/internal/model"
	"campus-reveal-backend/internal/store"
)

// CollegeRequestNotifier forwards a college addition request to an administrator.
type CollegeRequestNotifier interface {
	Notify(ctx context.Context, req model.CollegeRequest) error
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store    store.Store
	notifier CollegeRequestNotifier
	timeout  time.Duration
	log      *zap.SugaredLogger
}

// NewHandler creates a new API handler. Every store or relay call made on
// behalf of a request is bounded by timeout.
func NewHandler(s store.Store, notifier CollegeRequestNotifier, timeout time.Duration, log *zap.SugaredLogger) *Handler {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Handler{
		store:    s,
		notifier: notifier,
		timeout:  timeout,
		log:      log,
	}
}

func (h *Handler) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), h.timeout)
}

// fail aborts the request with a summary message and the underlying detail.
func fail(c *gin.Context, status int, message string, err error) {
	body := gin.H{"message": message}
	if err != nil {
		body["error"] = err.Error()
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, body)
}

// Health reports whether the store is reachable.
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		fail(c, http.StatusServiceUnavailable, "Database unreachable", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
