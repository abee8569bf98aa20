package api

import (
	"errors"
	"fmt"
	"net/http"

	"alcyxob/coach-engine/internal/domain"
	"alcyxob/coach-engine/internal/service"

	"github.com/gin-gonic/gin"
)

// ActivityHandler holds the feedback service dependency.
type ActivityHandler struct {
	feedbackService service.FeedbackService
}

// NewActivityHandler creates a new ActivityHandler.
func NewActivityHandler(feedbackService service.FeedbackService) *ActivityHandler {
	return &ActivityHandler{feedbackService: feedbackService}
}

// Feedback processes a completed activity: zone analysis, session match,
// VDOT/FTP detection. The response carries every outcome with its reason.
func (h *ActivityHandler) Feedback(c *gin.Context) {
	athleteID, err := getAthleteIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, err.Error())
		return
	}

	var activity domain.Activity
	if err := c.ShouldBindJSON(&activity); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	if activity.ID == 0 || activity.StartDate == "" {
		abortWithError(c, http.StatusBadRequest, "activity id and start_date are required")
		return
	}

	result, err := h.feedbackService.ProcessActivity(c.Request.Context(), athleteID, &activity)
	if err != nil {
		if errors.Is(err, service.ErrAthleteNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to process activity")
		}
		return
	}

	c.JSON(http.StatusOK, result)
}
