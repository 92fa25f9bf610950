package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cycle represents one menstrual cycle for a user. A cycle with a nil
// EndDate is still open; the engine never closes a cycle on its own.
type Cycle struct {
	CycleID      string     `json:"cycleID"` // Primary Key (UUID)
	UserID       string     `json:"userID"`  // FK -> User.userID (Not Null)
	StartDate    time.Time  `json:"startDate"`
	EndDate      *time.Time `json:"endDate,omitempty"`
	PeriodLength *int       `json:"periodLength,omitempty"` // days
}

// Completed reports whether the cycle has been closed with an end date.
func (c Cycle) Completed() bool {
	return c.EndDate != nil
}

// DailyLog is a per-day symptom/mood record attached to a cycle.
// Selections maps symptom keys to arbitrary logged values.
type DailyLog struct {
	LogID      string         `json:"logID"`   // Primary Key (UUID)
	UserID     string         `json:"userID"`  // FK -> User.userID (Not Null)
	CycleID    string         `json:"cycleID"` // FK -> Cycle.cycleID (Not Null)
	LogDate    time.Time      `json:"logDate"`
	Selections map[string]any `json:"selections"`
}

// CycleStatistics summarises a user's cycle history. The averages are
// nil when fewer than two cycles exist or no cycle is completed.
type CycleStatistics struct {
	AvgCycleLength  *decimal.Decimal `json:"avgCycleLength"`  // days, 1 decimal place
	AvgPeriodLength *decimal.Decimal `json:"avgPeriodLength"` // days, 1 decimal place
	TotalCycles     int              `json:"totalCycles"`
}

// PredictionConfidence labels how much history backs a prediction.
type PredictionConfidence string

const (
	ConfidenceHigh   PredictionConfidence = "high"
	ConfidenceMedium PredictionConfidence = "medium"
)

// CyclePrediction is a forecast of the next cycle start date.
type CyclePrediction struct {
	PredictedStartDate time.Time            `json:"predictedStartDate"`
	Confidence         PredictionConfidence `json:"confidence"`
	BasedOnCycles      int                  `json:"basedOnCycles"`
}
