package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/petalhealth/petal_backend/internal/apperrors"
	portssvc "github.com/petalhealth/petal_backend/internal/core/ports/services"
	"github.com/petalhealth/petal_backend/internal/dto"
	"github.com/petalhealth/petal_backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

// cycleHandler handles HTTP requests for cycle tracking and analytics.
type cycleHandler struct {
	cycleService portssvc.CycleSvcFacade
}

// newCycleHandler creates a new cycleHandler.
func newCycleHandler(cs portssvc.CycleSvcFacade) *cycleHandler {
	return &cycleHandler{
		cycleService: cs,
	}
}

// registerCycleRoutes registers all cycle-related routes.
func registerCycleRoutes(rg *gin.RouterGroup, cycleService portssvc.CycleSvcFacade) {
	h := newCycleHandler(cycleService)

	cycles := rg.Group("/cycles")
	{
		cycles.POST("", h.createCycle)
		cycles.GET("", h.listCycles)
		cycles.GET("/statistics", h.getStatistics)
		cycles.GET("/prediction", h.getPrediction)
		cycles.GET("/:id", h.getCycle)
		cycles.PUT("/:id", h.updateCycle)
		cycles.POST("/:id/logs", h.addDailyLog)
	}
}

// createCycle godoc
// @Summary Log a new cycle
// @Description Records a new cycle for the authenticated user.
// @Tags cycles
// @Accept json
// @Produce json
// @Param cycle body dto.CreateCycleRequest true "Cycle details"
// @Success 201 {object} dto.CycleResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /cycles [post]
func (h *cycleHandler) createCycle(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.CreateCycleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	startDate, err := dto.ParseDate(req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid startDate"})
		return
	}
	var endDate *time.Time
	if req.EndDate != nil {
		parsed, err := dto.ParseDate(*req.EndDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid endDate"})
			return
		}
		endDate = &parsed
	}

	cycle, err := h.cycleService.CreateCycle(c.Request.Context(), userID, startDate, endDate, req.PeriodLength)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		logger.Error("Failed to create cycle", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to create cycle"})
		return
	}

	logger.Info("Cycle created", slog.String("cycle_id", cycle.CycleID))
	c.JSON(http.StatusCreated, dto.ToCycleResponse(cycle))
}

// listCycles godoc
// @Summary List cycles
// @Description Returns the user's cycles, newest start date first.
// @Tags cycles
// @Produce json
// @Param limit query int false "Maximum number of cycles (0 for all)"
// @Success 200 {array} dto.CycleResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /cycles [get]
func (h *cycleHandler) listCycles(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid limit parameter"})
			return
		}
		limit = parsed
	}

	cycles, err := h.cycleService.GetUserCycles(c.Request.Context(), userID, limit)
	if err != nil {
		logger.Error("Failed to list cycles", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list cycles"})
		return
	}

	c.JSON(http.StatusOK, dto.ToListCycleResponse(cycles))
}

// getCycle godoc
// @Summary Get a cycle with its daily logs
// @Description Returns one of the user's cycles together with its daily logs.
// @Tags cycles
// @Produce json
// @Param id path string true "Cycle ID"
// @Success 200 {object} dto.CycleWithLogsResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /cycles/{id} [get]
func (h *cycleHandler) getCycle(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}
	cycleID := c.Param("id")

	cycle, logs, err := h.cycleService.GetCycleWithLogs(c.Request.Context(), userID, cycleID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Cycle not found"})
			return
		}
		logger.Error("Failed to get cycle", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to retrieve cycle"})
		return
	}

	logResponses := make([]dto.DailyLogResponse, len(logs))
	for i := range logs {
		logResponses[i] = dto.ToDailyLogResponse(&logs[i])
	}
	c.JSON(http.StatusOK, dto.CycleWithLogsResponse{
		Cycle: dto.ToCycleResponse(cycle),
		Logs:  logResponses,
	})
}

// updateCycle godoc
// @Summary Update a cycle
// @Description Sets the end date and/or period length of a cycle. Completing a cycle credits the cycle-completion reward.
// @Tags cycles
// @Accept json
// @Produce json
// @Param id path string true "Cycle ID"
// @Param cycle body dto.UpdateCycleRequest true "Fields to update"
// @Success 200 {object} dto.CycleResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /cycles/{id} [put]
func (h *cycleHandler) updateCycle(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}
	cycleID := c.Param("id")

	var req dto.UpdateCycleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	var endDate *time.Time
	if req.EndDate != nil {
		parsed, err := dto.ParseDate(*req.EndDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid endDate"})
			return
		}
		endDate = &parsed
	}

	cycle, err := h.cycleService.UpdateCycle(c.Request.Context(), userID, cycleID, endDate, req.PeriodLength)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Cycle not found"})
			return
		}
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		logger.Error("Failed to update cycle", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to update cycle"})
		return
	}

	logger.Info("Cycle updated", slog.String("cycle_id", cycle.CycleID))
	c.JSON(http.StatusOK, dto.ToCycleResponse(cycle))
}

// getStatistics godoc
// @Summary Get cycle statistics
// @Description Returns average cycle length, average period length and total cycle count.
// @Tags cycles
// @Produce json
// @Success 200 {object} dto.CycleStatisticsResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /cycles/statistics [get]
func (h *cycleHandler) getStatistics(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	stats, err := h.cycleService.CalculateStatistics(c.Request.Context(), userID)
	if err != nil {
		logger.Error("Failed to calculate cycle statistics", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to calculate statistics"})
		return
	}

	c.JSON(http.StatusOK, dto.ToCycleStatisticsResponse(stats))
}

// getPrediction godoc
// @Summary Predict next cycle
// @Description Forecasts the next cycle start date from the user's history. Returns 204 when there is insufficient data.
// @Tags cycles
// @Produce json
// @Success 200 {object} dto.CyclePredictionResponse
// @Success 204 "Insufficient data to predict"
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /cycles/prediction [get]
func (h *cycleHandler) getPrediction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	prediction, err := h.cycleService.PredictNextCycle(c.Request.Context(), userID)
	if err != nil {
		logger.Error("Failed to predict next cycle", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to predict next cycle"})
		return
	}
	if prediction == nil {
		c.Status(http.StatusNoContent)
		return
	}

	c.JSON(http.StatusOK, dto.ToCyclePredictionResponse(prediction))
}

// addDailyLog godoc
// @Summary Add a daily log to a cycle
// @Description Attaches a per-day symptom log to one of the user's cycles.
// @Tags cycles
// @Accept json
// @Produce json
// @Param id path string true "Cycle ID"
// @Param log body dto.CreateDailyLogRequest true "Daily log details"
// @Success 201 {object} dto.DailyLogResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /cycles/{id}/logs [post]
func (h *cycleHandler) addDailyLog(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}
	cycleID := c.Param("id")

	var req dto.CreateDailyLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	logDate, err := dto.ParseDate(req.LogDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid logDate"})
		return
	}

	log, err := h.cycleService.AddDailyLog(c.Request.Context(), userID, cycleID, logDate, req.Selections)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Cycle not found"})
			return
		}
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		logger.Error("Failed to add daily log", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to add daily log"})
		return
	}

	logger.Info("Daily log added", slog.String("log_id", log.LogID), slog.String("cycle_id", cycleID))
	c.JSON(http.StatusCreated, dto.ToDailyLogResponse(log))
}
