package domain

import "time"

// ActivityLog records a single logged activity (exercise, walk, ...).
// DurationMin and ExerciseRPE are optional; RPE (rate of perceived
// exertion) is on a 1-10 scale when present.
type ActivityLog struct {
	ActivityID   string    `json:"activityID"` // Primary Key (UUID)
	UserID       string    `json:"userID"`     // FK -> User.userID (Not Null)
	ActivityType string    `json:"activityType"`
	DurationMin  *int      `json:"durationMin,omitempty"`
	ExerciseRPE  *int      `json:"exerciseRPE,omitempty"`
	Notes        string    `json:"notes"` // Nullable
	PerformedAt  time.Time `json:"performedAt"`
}

// ActivityStatistics summarises a user's activities over the last 30 days.
type ActivityStatistics struct {
	TotalActivities     int     `json:"totalActivities"`
	ActivitiesThisMonth int     `json:"activitiesThisMonth"`
	TotalDuration       int     `json:"totalDuration"` // minutes
	AvgDuration         float64 `json:"avgDuration"`
	AvgRPE              float64 `json:"avgRPE"`
	MostCommonActivity  *string `json:"mostCommonActivity"`
}
