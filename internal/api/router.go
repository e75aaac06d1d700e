package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"campus-reveal-backend/config"
	"campus-reveal-backend/internal/metrics"
	"campus-reveal-backend/internal/mw"
	"campus-reveal-backend/internal/store"
)

// limiterIdle is how long a quiet client's rate limiter is remembered.
const limiterIdle = 10 * time.Minute

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg *config.ServerConfig, s store.Store, notifier CollegeRequestNotifier, log *zap.SugaredLogger) *gin.Engine {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	r := gin.New()
	r.Use(gin.Recovery(), mw.AccessLog(log), mw.Metrics(), mw.CORS(cfg.AllowedOrigin))
	if cfg.RequestIPHeader != "" {
		r.RemoteIPHeaders = []string{cfg.RequestIPHeader}
	}

	handler := NewHandler(s, notifier, cfg.RequestTimeout, log)
	limiter := mw.NewIPRateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst, limiterIdle)

	r.GET("/healthz", handler.Health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api/colleges")
	api.Use(mw.RateLimiter(limiter))
	{
		api.GET("", handler.ListColleges)
		api.GET("/", handler.ListColleges)
		api.GET("/:collegeId", handler.GetCollege)
		api.POST("/request-college", handler.RequestCollege)

		api.GET("/:collegeId/reviews", handler.ListReviews)
		api.POST("/:collegeId/reviews", handler.AddReview)
	}

	return r
}
