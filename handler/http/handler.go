package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"resumatch/src/core/search"
	"resumatch/src/infrastructure/metrics"
)

type Handler struct {
	searchService search.Service
}

func NewHandler(searchService search.Service) *Handler {
	return &Handler{
		searchService: searchService,
	}
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.Use(metrics.GinMiddleware())

	api := r.Group("/api")

	api.POST("/search", h.Search)
	api.POST("/search/feedback", h.Feedback)
	api.GET("/search/health", h.Health)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// ErrorResponse is the common error body
type ErrorResponse struct {
	Message string `json:"message"`
}

func sendError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, search.ErrInvalidRequest) {
		status = http.StatusBadRequest
	}

	c.JSON(status, ErrorResponse{Message: err.Error()})
}

// userID extracts the externally supplied caller identity. Authentication
// itself happens upstream of this service.
func userID(c *gin.Context) string {
	return c.GetHeader("X-User-ID")
}
