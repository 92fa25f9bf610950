package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/petalhealth/petal_backend/internal/apperrors"
	portssvc "github.com/petalhealth/petal_backend/internal/core/ports/services"
	"github.com/petalhealth/petal_backend/internal/dto"
	"github.com/petalhealth/petal_backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

// activityHandler handles HTTP requests for activity logging.
type activityHandler struct {
	activityService portssvc.ActivitySvcFacade
}

// newActivityHandler creates a new activityHandler.
func newActivityHandler(as portssvc.ActivitySvcFacade) *activityHandler {
	return &activityHandler{
		activityService: as,
	}
}

// registerActivityRoutes registers all activity-related routes.
func registerActivityRoutes(rg *gin.RouterGroup, activityService portssvc.ActivitySvcFacade) {
	h := newActivityHandler(activityService)

	activities := rg.Group("/activities")
	{
		activities.POST("", h.logActivity)
		activities.GET("", h.listActivities)
		activities.GET("/statistics", h.getStatistics)
	}
}

// logActivity godoc
// @Summary Log an activity
// @Description Records an activity and credits the computed points reward to the ledger.
// @Tags activities
// @Accept json
// @Produce json
// @Param activity body dto.CreateActivityRequest true "Activity details"
// @Success 201 {object} dto.ActivityResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /activities [post]
func (h *activityHandler) logActivity(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.CreateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	var performedAt time.Time
	if req.PerformedAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.PerformedAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid performedAt"})
			return
		}
		performedAt = parsed
	}

	activity, awarded, err := h.activityService.LogActivity(c.Request.Context(), userID, req.ActivityType, req.DurationMin, req.ExerciseRPE, req.Notes, performedAt)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		logger.Error("Failed to log activity", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to log activity"})
		return
	}

	logger.Info("Activity logged", slog.String("activity_id", activity.ActivityID), slog.Int64("points_awarded", awarded))
	c.JSON(http.StatusCreated, dto.ToActivityResponse(activity, awarded))
}

// listActivities godoc
// @Summary List activities
// @Description Returns a page of the user's activities, newest first.
// @Tags activities
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {array} dto.ActivityResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /activities [get]
func (h *activityHandler) listActivities(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var params dto.ListActivitiesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	activities, err := h.activityService.ListActivities(c.Request.Context(), userID, params.Page, params.Limit)
	if err != nil {
		logger.Error("Failed to list activities", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list activities"})
		return
	}

	c.JSON(http.StatusOK, dto.ToListActivityResponse(activities))
}

// getStatistics godoc
// @Summary Get activity statistics
// @Description Summarises the user's activities over the last 30 days.
// @Tags activities
// @Produce json
// @Success 200 {object} domain.ActivityStatistics
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /activities/statistics [get]
func (h *activityHandler) getStatistics(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	stats, err := h.activityService.GetStatistics(c.Request.Context(), userID)
	if err != nil {
		logger.Error("Failed to get activity statistics", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to retrieve statistics"})
		return
	}

	c.JSON(http.StatusOK, stats)
}
