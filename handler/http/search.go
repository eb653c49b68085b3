package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"resumatch/src/core/search"
	"resumatch/src/log"
)

type searchRequest struct {
	Query    string           `json:"query"`
	Feedback *search.Feedback `json:"feedback,omitempty"`
}

type feedbackRequest struct {
	Query       string             `json:"query"`
	ResultID    string             `json:"resultId"`
	Rating      *int               `json:"rating"`
	Interaction search.Interaction `json:"interaction,omitempty"`
}

// Search runs the full pipeline for one query. A feedback block riding
// along with the query is recorded before the search executes.
func (h *Handler) Search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, fmt.Errorf("%w: %v", search.ErrInvalidRequest, err))
		return
	}

	uid := userID(c)

	if req.Feedback != nil {
		if err := h.searchService.RecordFeedback(c.Request.Context(), uid, *req.Feedback); err != nil {
			// Piggybacked feedback is best-effort; a bad block does not
			// block the search itself.
			log.Error(err, "failed to record piggybacked feedback", "user", uid)
		}
	}

	response, err := h.searchService.Search(c.Request.Context(), uid, req.Query)
	if err != nil {
		sendError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// Feedback records one explicit feedback event.
func (h *Handler) Feedback(c *gin.Context) {
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, fmt.Errorf("%w: %v", search.ErrInvalidRequest, err))
		return
	}

	if req.Rating == nil {
		sendError(c, fmt.Errorf("%w: query, resultId, and rating are required", search.ErrInvalidRequest))
		return
	}

	err := h.searchService.RecordFeedback(c.Request.Context(), userID(c), search.Feedback{
		Query:       req.Query,
		ResultID:    req.ResultID,
		Rating:      *req.Rating,
		Interaction: req.Interaction,
	})
	if err != nil {
		sendError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Feedback recorded successfully"})
}

// Health reports generative-collaborator availability. It always answers
// 200; degraded generation only flips the availability flag.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, h.searchService.Health(c.Request.Context()))
}
