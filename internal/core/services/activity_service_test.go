package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/petalhealth/petal_backend/internal/apperrors"
	"github.com/petalhealth/petal_backend/internal/core/domain"
	portssvc "github.com/petalhealth/petal_backend/internal/core/ports/services"
	"github.com/petalhealth/petal_backend/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock ActivityRepository ---
type MockActivityRepository struct {
	mock.Mock
}

func (m *MockActivityRepository) SaveActivity(ctx context.Context, activity domain.ActivityLog) error {
	args := m.Called(ctx, activity)
	return args.Error(0)
}

func (m *MockActivityRepository) FindActivitiesByUserID(ctx context.Context, userID string, limit int, offset int) ([]domain.ActivityLog, error) {
	args := m.Called(ctx, userID, limit, offset)
	var activities []domain.ActivityLog
	if args.Get(0) != nil {
		activities = args.Get(0).([]domain.ActivityLog)
	}
	return activities, args.Error(1)
}

func (m *MockActivityRepository) FindActivitiesSince(ctx context.Context, userID string, since time.Time) ([]domain.ActivityLog, error) {
	args := m.Called(ctx, userID, since)
	var activities []domain.ActivityLog
	if args.Get(0) != nil {
		activities = args.Get(0).([]domain.ActivityLog)
	}
	return activities, args.Error(1)
}

func (m *MockActivityRepository) CountActivitiesByUserID(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int), args.Error(1)
}

// --- Test Suite ---
// The activity service is exercised against a real ledger service
// backed by the transaction repository mock, so reward crediting goes
// through the same code path as production.
type ActivityServiceTestSuite struct {
	suite.Suite
	mockActivityRepo *MockActivityRepository
	mockTxnRepo      *MockTransactionRepository
	service          portssvc.ActivitySvcFacade
	fixedNow         time.Time
}

func (suite *ActivityServiceTestSuite) SetupTest() {
	suite.mockActivityRepo = new(MockActivityRepository)
	suite.mockTxnRepo = new(MockTransactionRepository)
	suite.fixedNow = time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)

	ledger := services.NewLedgerService(suite.mockTxnRepo)
	suite.service = services.NewActivityService(suite.mockActivityRepo, ledger, services.WithActivityClock(func() time.Time {
		return suite.fixedNow
	}))
}

// --- LogActivity Tests ---

func (suite *ActivityServiceTestSuite) TestLogActivity_RewardCredited() {
	ctx := context.Background()
	userID := uuid.NewString()
	duration := 25
	performedAt := time.Date(2024, 6, 14, 7, 30, 0, 0, time.UTC)

	suite.mockActivityRepo.On("SaveActivity", ctx, mock.MatchedBy(func(a domain.ActivityLog) bool {
		return a.UserID == userID && a.ActivityType == "walk" && a.PerformedAt.Equal(performedAt)
	})).Return(nil).Once()
	// 5 base + 25/10 = 7 points
	suite.mockTxnRepo.On("SaveTransaction", ctx, mock.MatchedBy(func(txn domain.Transaction) bool {
		return txn.UserID == userID &&
			txn.Amount == 7 &&
			txn.Kind == domain.KindActivityCompletion &&
			txn.Description == "Activity completed: walk"
	})).Return(nil).Once()

	activity, awarded, err := suite.service.LogActivity(ctx, userID, "walk", &duration, nil, "", performedAt)

	suite.Require().NoError(err)
	suite.Require().NotNil(activity)
	suite.Equal(int64(7), awarded)
	suite.mockActivityRepo.AssertExpectations(suite.T())
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *ActivityServiceTestSuite) TestLogActivity_NoDurationNoReward() {
	ctx := context.Background()
	userID := uuid.NewString()

	suite.mockActivityRepo.On("SaveActivity", ctx, mock.AnythingOfType("domain.ActivityLog")).Return(nil).Once()

	activity, awarded, err := suite.service.LogActivity(ctx, userID, "stretching", nil, nil, "before bed", time.Time{})

	suite.Require().NoError(err)
	suite.Require().NotNil(activity)
	suite.Equal(int64(0), awarded)
	// Zero-value performedAt defaults to the service clock.
	suite.Equal(suite.fixedNow, activity.PerformedAt)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SaveTransaction", mock.Anything, mock.Anything)
}

func (suite *ActivityServiceTestSuite) TestLogActivity_InvalidRPERejectedBeforePersist() {
	ctx := context.Background()
	duration := 30
	badRPE := 12

	activity, awarded, err := suite.service.LogActivity(ctx, uuid.NewString(), "run", &duration, &badRPE, "", time.Time{})

	suite.Require().Error(err)
	suite.Nil(activity)
	suite.Equal(int64(0), awarded)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockActivityRepo.AssertNotCalled(suite.T(), "SaveActivity", mock.Anything, mock.Anything)
}

func (suite *ActivityServiceTestSuite) TestLogActivity_RewardFailureReported() {
	ctx := context.Background()
	userID := uuid.NewString()
	duration := 40
	expectedErr := assert.AnError

	suite.mockActivityRepo.On("SaveActivity", ctx, mock.AnythingOfType("domain.ActivityLog")).Return(nil).Once()
	suite.mockTxnRepo.On("SaveTransaction", ctx, mock.AnythingOfType("domain.Transaction")).Return(expectedErr).Once()

	activity, awarded, err := suite.service.LogActivity(ctx, userID, "run", &duration, nil, "", time.Time{})

	// The activity record survives; the caller learns the reward failed.
	suite.Require().Error(err)
	suite.Require().NotNil(activity)
	suite.Equal(int64(0), awarded)
	suite.ErrorIs(err, expectedErr)
}

// --- ListActivities Tests ---

func (suite *ActivityServiceTestSuite) TestListActivities_Pagination() {
	ctx := context.Background()
	userID := uuid.NewString()
	expected := []domain.ActivityLog{{ActivityID: uuid.NewString(), UserID: userID}}

	suite.mockActivityRepo.On("FindActivitiesByUserID", ctx, userID, 10, 10).Return(expected, nil).Once()

	activities, err := suite.service.ListActivities(ctx, userID, 2, 10)

	suite.Require().NoError(err)
	suite.Equal(expected, activities)
	suite.mockActivityRepo.AssertExpectations(suite.T())
}

// --- GetStatistics Tests ---

func (suite *ActivityServiceTestSuite) TestGetStatistics_Aggregates() {
	ctx := context.Background()
	userID := uuid.NewString()
	since := suite.fixedNow.Add(-30 * 24 * time.Hour)

	d20, d40 := 20, 40
	rpe7, rpe8 := 7, 8
	recent := []domain.ActivityLog{
		{ActivityID: uuid.NewString(), ActivityType: "run", DurationMin: &d40, ExerciseRPE: &rpe8},
		{ActivityID: uuid.NewString(), ActivityType: "walk", DurationMin: &d20, ExerciseRPE: &rpe7},
		{ActivityID: uuid.NewString(), ActivityType: "run"},
	}

	suite.mockActivityRepo.On("FindActivitiesSince", ctx, userID, since).Return(recent, nil).Once()
	suite.mockActivityRepo.On("CountActivitiesByUserID", ctx, userID).Return(12, nil).Once()

	stats, err := suite.service.GetStatistics(ctx, userID)

	suite.Require().NoError(err)
	suite.Equal(12, stats.TotalActivities)
	suite.Equal(3, stats.ActivitiesThisMonth)
	suite.Equal(60, stats.TotalDuration)
	suite.Equal(30.0, stats.AvgDuration)
	suite.Equal(7.5, stats.AvgRPE)
	suite.Require().NotNil(stats.MostCommonActivity)
	suite.Equal("run", *stats.MostCommonActivity)
	suite.mockActivityRepo.AssertExpectations(suite.T())
}

func (suite *ActivityServiceTestSuite) TestGetStatistics_NoRecentActivity() {
	ctx := context.Background()
	userID := uuid.NewString()
	since := suite.fixedNow.Add(-30 * 24 * time.Hour)

	suite.mockActivityRepo.On("FindActivitiesSince", ctx, userID, since).Return([]domain.ActivityLog{}, nil).Once()
	suite.mockActivityRepo.On("CountActivitiesByUserID", ctx, userID).Return(5, nil).Once()

	stats, err := suite.service.GetStatistics(ctx, userID)

	suite.Require().NoError(err)
	suite.Equal(5, stats.TotalActivities)
	suite.Equal(0, stats.ActivitiesThisMonth)
	suite.Equal(0.0, stats.AvgDuration)
	suite.Nil(stats.MostCommonActivity)
}

// --- Run Suite ---
func TestActivityService(t *testing.T) {
	suite.Run(t, new(ActivityServiceTestSuite))
}
