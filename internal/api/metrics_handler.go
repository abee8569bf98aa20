package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"alcyxob/coach-engine/internal/domain"
	"alcyxob/coach-engine/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MetricsHandler holds the metrics service dependency.
type MetricsHandler struct {
	metricsService service.MetricsService
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(metricsService service.MetricsService) *MetricsHandler {
	return &MetricsHandler{metricsService: metricsService}
}

// --- Request Structs ---

type LabValueRequest struct {
	Value    int    `json:"value" binding:"required,gt=0"`
	TestDate string `json:"test_date" binding:"required"` // YYYY-MM-DD
	Notes    string `json:"notes,omitempty"`
}

// --- Handler Methods ---

// Get returns the athlete's threshold metrics.
func (h *MetricsHandler) Get(c *gin.Context) {
	athleteID, err := getAthleteIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, err.Error())
		return
	}

	metrics, err := h.metricsService.Get(c.Request.Context(), athleteID)
	if err != nil {
		if errors.Is(err, service.ErrMetricsNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to load metrics")
		}
		return
	}

	c.JSON(http.StatusOK, metrics)
}

// SetLTHRFromLab records a lab-tested LTHR.
func (h *MetricsHandler) SetLTHRFromLab(c *gin.Context) {
	h.setLab(c, h.metricsService.SetLTHRFromLab)
}

// SetFTPFromLab records a lab-tested FTP.
func (h *MetricsHandler) SetFTPFromLab(c *gin.Context) {
	h.setLab(c, h.metricsService.SetFTPFromLab)
}

// Confirm marks the named metric as accepted by the athlete.
func (h *MetricsHandler) Confirm(c *gin.Context) {
	athleteID, err := getAthleteIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, err.Error())
		return
	}

	metric := c.Param("metric")
	metrics, err := h.metricsService.Confirm(c.Request.Context(), athleteID, metric)
	if err != nil {
		if errors.Is(err, service.ErrUnknownMetric) || errors.Is(err, service.ErrMetricNotSet) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to confirm metric")
		}
		return
	}

	c.JSON(http.StatusOK, metrics)
}

// setLab binds a lab value request and applies it through the given
// service method.
func (h *MetricsHandler) setLab(c *gin.Context, apply func(ctx context.Context, athleteID primitive.ObjectID, value int, testDate, notes string) (*domain.TrainingMetrics, error)) {
	athleteID, err := getAthleteIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, err.Error())
		return
	}

	var req LabValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	if _, err := time.Parse(domain.DateLayout, req.TestDate); err != nil {
		abortWithError(c, http.StatusBadRequest, "test_date must be YYYY-MM-DD")
		return
	}

	metrics, err := apply(c.Request.Context(), athleteID, req.Value, req.TestDate, req.Notes)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to store lab value")
		return
	}

	c.JSON(http.StatusOK, metrics)
}
