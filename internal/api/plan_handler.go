package api

import (
	"errors"
	"fmt"
	"net/http"

	"alcyxob/coach-engine/internal/parser"
	"alcyxob/coach-engine/internal/service"

	"github.com/gin-gonic/gin"
)

// PlanHandler holds the plan service dependency.
type PlanHandler struct {
	planService service.PlanService
}

// NewPlanHandler creates a new PlanHandler.
func NewPlanHandler(planService service.PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

// --- Request Structs ---

type IngestPlanRequest struct {
	// Document is the plan markdown, optionally followed by a fenced
	// ```json block carrying week structure hints.
	Document      string `json:"document" binding:"required"`
	Goal          string `json:"goal,omitempty"`
	GoalDate      string `json:"goal_date,omitempty"`
	GoalDistance  string `json:"goal_distance,omitempty"`
	PlanStartDate string `json:"plan_start_date,omitempty"`
}

// --- Handler Methods ---

// Ingest parses a plan document and stores the merged result.
func (h *PlanHandler) Ingest(c *gin.Context) {
	athleteID, err := getAthleteIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, err.Error())
		return
	}

	var req IngestPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	inputs := parser.UserInputs{
		Goal:          req.Goal,
		GoalDate:      req.GoalDate,
		GoalDistance:  req.GoalDistance,
		PlanStartDate: req.PlanStartDate,
	}

	plan, err := h.planService.Ingest(c.Request.Context(), athleteID, req.Document, inputs)
	if err != nil {
		if errors.Is(err, service.ErrEmptyPlan) {
			abortWithError(c, http.StatusUnprocessableEntity, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to ingest plan")
		}
		return
	}

	c.JSON(http.StatusOK, plan)
}

// GetPlan returns the athlete's current plan.
func (h *PlanHandler) GetPlan(c *gin.Context) {
	athleteID, err := getAthleteIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, err.Error())
		return
	}

	plan, err := h.planService.CurrentPlan(c.Request.Context(), athleteID)
	if err != nil {
		if errors.Is(err, service.ErrPlanNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to load plan")
		}
		return
	}

	c.JSON(http.StatusOK, plan)
}

// DeletePlan archives and removes the athlete's current plan.
func (h *PlanHandler) DeletePlan(c *gin.Context) {
	athleteID, err := getAthleteIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, err.Error())
		return
	}

	if err := h.planService.DeletePlan(c.Request.Context(), athleteID); err != nil {
		if errors.Is(err, service.ErrPlanNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to delete plan")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Plan deleted"})
}

// GetCurrentWeek returns the week containing today, or the nearest
// upcoming week.
func (h *PlanHandler) GetCurrentWeek(c *gin.Context) {
	athleteID, err := getAthleteIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, err.Error())
		return
	}

	week, err := h.planService.CurrentWeek(c.Request.Context(), athleteID)
	if err != nil {
		if errors.Is(err, service.ErrPlanNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to load current week")
		}
		return
	}

	c.JSON(http.StatusOK, week)
}
