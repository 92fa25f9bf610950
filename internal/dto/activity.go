package dto

import (
	"time"

	"github.com/petalhealth/petal_backend/internal/core/domain"
)

// CreateActivityRequest defines the data needed to log an activity.
type CreateActivityRequest struct {
	ActivityType string `json:"activityType" binding:"required,min=1,max=64"`
	DurationMin  *int   `json:"durationMin" binding:"omitempty,min=0"`
	ExerciseRPE  *int   `json:"exerciseRPE" binding:"omitempty,min=1,max=10"`
	Notes        string `json:"notes"`
	PerformedAt  string `json:"performedAt" binding:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

// ListActivitiesParams defines query parameters for listing activities.
type ListActivitiesParams struct {
	Page  int `form:"page,default=1" binding:"omitempty,min=1"`
	Limit int `form:"limit,default=20" binding:"omitempty,min=1,max=100"`
}

// ActivityResponse defines the data returned for an activity log.
type ActivityResponse struct {
	ActivityID    string    `json:"activityID"`
	ActivityType  string    `json:"activityType"`
	DurationMin   *int      `json:"durationMin"`
	ExerciseRPE   *int      `json:"exerciseRPE"`
	Notes         string    `json:"notes,omitempty"`
	PerformedAt   time.Time `json:"performedAt"`
	PointsAwarded int64     `json:"pointsAwarded,omitempty"`
}

// ToActivityResponse converts a domain.ActivityLog to a DTO.
func ToActivityResponse(a *domain.ActivityLog, awarded int64) ActivityResponse {
	return ActivityResponse{
		ActivityID:    a.ActivityID,
		ActivityType:  a.ActivityType,
		DurationMin:   a.DurationMin,
		ExerciseRPE:   a.ExerciseRPE,
		Notes:         a.Notes,
		PerformedAt:   a.PerformedAt,
		PointsAwarded: awarded,
	}
}

// ToListActivityResponse converts a slice of activity logs to DTOs.
func ToListActivityResponse(activities []domain.ActivityLog) []ActivityResponse {
	res := make([]ActivityResponse, len(activities))
	for i := range activities {
		res[i] = ToActivityResponse(&activities[i], 0)
	}
	return res
}
