package dto

import (
	"time"

	"github.com/petalhealth/petal_backend/internal/core/domain"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// CreateCycleRequest defines the data needed to log a new cycle.
// Dates travel as "YYYY-MM-DD" strings and are parsed in the handler.
type CreateCycleRequest struct {
	StartDate    string  `json:"startDate" binding:"required,datetime=2006-01-02"`
	EndDate      *string `json:"endDate" binding:"omitempty,datetime=2006-01-02"`
	PeriodLength *int    `json:"periodLength" binding:"omitempty,min=1,max=60"`
}

// UpdateCycleRequest defines the fields that may be set on an existing
// cycle. Pointers distinguish "not provided" from zero values.
type UpdateCycleRequest struct {
	EndDate      *string `json:"endDate" binding:"omitempty,datetime=2006-01-02"`
	PeriodLength *int    `json:"periodLength" binding:"omitempty,min=1,max=60"`
}

// CreateDailyLogRequest defines the data needed to attach a daily log
// to a cycle.
type CreateDailyLogRequest struct {
	LogDate    string         `json:"logDate" binding:"required,datetime=2006-01-02"`
	Selections map[string]any `json:"selections" binding:"required"`
}

// CycleResponse defines the data returned for a cycle.
type CycleResponse struct {
	CycleID      string  `json:"cycleID"`
	StartDate    string  `json:"startDate"`
	EndDate      *string `json:"endDate"`
	PeriodLength *int    `json:"periodLength"`
}

// DailyLogResponse defines the data returned for a daily log.
type DailyLogResponse struct {
	LogID      string         `json:"logID"`
	CycleID    string         `json:"cycleID"`
	LogDate    string         `json:"logDate"`
	Selections map[string]any `json:"selections"`
}

// CycleWithLogsResponse pairs a cycle with its daily logs.
type CycleWithLogsResponse struct {
	Cycle CycleResponse      `json:"cycle"`
	Logs  []DailyLogResponse `json:"logs"`
}

// CycleStatisticsResponse defines the data returned for cycle
// statistics. Averages are null when undefined.
type CycleStatisticsResponse struct {
	AvgCycleLength  *float64 `json:"avgCycleLength"`
	AvgPeriodLength *float64 `json:"avgPeriodLength"`
	TotalCycles     int      `json:"totalCycles"`
}

// CyclePredictionResponse defines the data returned for a prediction.
type CyclePredictionResponse struct {
	PredictedStartDate string `json:"predictedStartDate"`
	Confidence         string `json:"confidence"`
	BasedOnCycles      int    `json:"basedOnCycles"`
}

// ToCycleResponse converts a domain.Cycle to a CycleResponse DTO.
func ToCycleResponse(c *domain.Cycle) CycleResponse {
	res := CycleResponse{
		CycleID:      c.CycleID,
		StartDate:    c.StartDate.Format(DateLayout),
		PeriodLength: c.PeriodLength,
	}
	if c.EndDate != nil {
		end := c.EndDate.Format(DateLayout)
		res.EndDate = &end
	}
	return res
}

// ToListCycleResponse converts a slice of cycles to DTOs.
func ToListCycleResponse(cycles []domain.Cycle) []CycleResponse {
	res := make([]CycleResponse, len(cycles))
	for i := range cycles {
		res[i] = ToCycleResponse(&cycles[i])
	}
	return res
}

// ToDailyLogResponse converts a domain.DailyLog to a DTO.
func ToDailyLogResponse(l *domain.DailyLog) DailyLogResponse {
	return DailyLogResponse{
		LogID:      l.LogID,
		CycleID:    l.CycleID,
		LogDate:    l.LogDate.Format(DateLayout),
		Selections: l.Selections,
	}
}

// ToCycleStatisticsResponse converts domain statistics to a DTO,
// flattening the decimal averages to JSON numbers.
func ToCycleStatisticsResponse(s *domain.CycleStatistics) CycleStatisticsResponse {
	res := CycleStatisticsResponse{TotalCycles: s.TotalCycles}
	if s.AvgCycleLength != nil {
		v := s.AvgCycleLength.InexactFloat64()
		res.AvgCycleLength = &v
	}
	if s.AvgPeriodLength != nil {
		v := s.AvgPeriodLength.InexactFloat64()
		res.AvgPeriodLength = &v
	}
	return res
}

// ToCyclePredictionResponse converts a domain prediction to a DTO.
func ToCyclePredictionResponse(p *domain.CyclePrediction) CyclePredictionResponse {
	return CyclePredictionResponse{
		PredictedStartDate: p.PredictedStartDate.Format(DateLayout),
		Confidence:         string(p.Confidence),
		BasedOnCycles:      p.BasedOnCycles,
	}
}

// ParseDate parses a "YYYY-MM-DD" wire date into a UTC time.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}
