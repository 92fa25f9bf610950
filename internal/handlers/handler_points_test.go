package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/petalhealth/petal_backend/internal/apperrors"
	"github.com/petalhealth/petal_backend/internal/core/domain"
	portssvc "github.com/petalhealth/petal_backend/internal/core/ports/services"
	"github.com/petalhealth/petal_backend/internal/dto"
	"github.com/petalhealth/petal_backend/internal/handlers"
	"github.com/petalhealth/petal_backend/pkg/config"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock LedgerService ---
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) GetBalance(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerService) ListTransactions(ctx context.Context, userID string, page int, limit int, kind *domain.TransactionKind) ([]domain.Transaction, error) {
	args := m.Called(ctx, userID, page, limit, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockLedgerService) GetLeaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LeaderboardEntry), args.Error(1)
}

func (m *MockLedgerService) AddTransaction(ctx context.Context, userID string, amount int64, kind domain.TransactionKind, description string) (*domain.Transaction, error) {
	args := m.Called(ctx, userID, amount, kind, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockLedgerService) ProcessDailyLogin(ctx context.Context, userID string) (*domain.DailyLoginResult, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DailyLoginResult), args.Error(1)
}

func (m *MockLedgerService) AwardTaskCompletion(ctx context.Context, userID string, taskDescription string) (*domain.Transaction, error) {
	args := m.Called(ctx, userID, taskDescription)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockLedgerService) AwardCommunityPost(ctx context.Context, userID string) (*domain.Transaction, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockLedgerService) AwardCycleCompletion(ctx context.Context, userID string) (*domain.Transaction, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockLedgerService) SpendPoints(ctx context.Context, userID string, amount int64, kind domain.TransactionKind, description string) (*domain.Transaction, int64, error) {
	args := m.Called(ctx, userID, amount, kind, description)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).(*domain.Transaction), args.Get(1).(int64), args.Error(2)
}

func (m *MockLedgerService) CalculateActivityReward(activityType string, durationMin *int, exerciseRPE *int) (int64, error) {
	args := m.Called(activityType, durationMin, exerciseRPE)
	return args.Get(0).(int64), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.LedgerSvcFacade = (*MockLedgerService)(nil)

// --- Test Suite ---
type PointsHandlerTestSuite struct {
	suite.Suite
	router            *gin.Engine
	mockLedgerService *MockLedgerService
	jwtSecret         string
}

// generateTestToken creates a dummy JWT for testing.
func (suite *PointsHandlerTestSuite) generateTestToken(userID string) string {
	claims := jwt.RegisteredClaims{
		Issuer:    "petal-test",
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tsignedString, err := token.SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return tsignedString
}

func (suite *PointsHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"

	suite.mockLedgerService = new(MockLedgerService)

	cfg := &config.Config{
		JWTSecret:     suite.jwtSecret,
		IsProduction:  true, // skip swagger registration
		AuthRateLimit: "5-M",
	}
	services := &portssvc.ServiceContainer{Ledger: suite.mockLedgerService}
	handlers.RegisterRoutes(suite.router, cfg, services)
}

func (suite *PointsHandlerTestSuite) authedRequest(method, url string, userID string) *http.Request {
	req, _ := http.NewRequest(method, url, nil)
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(userID))
	req.Header.Set("Accept", "application/json")
	return req
}

// --- Test Cases ---

func (suite *PointsHandlerTestSuite) TestGetBalance_Success() {
	userID := uuid.NewString()

	suite.mockLedgerService.On("GetBalance", mock.Anything, userID).Return(int64(73), nil).Once()

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, suite.authedRequest(http.MethodGet, "/api/v1/points/balance", userID))

	suite.Equal(http.StatusOK, w.Code)
	var body dto.BalanceResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Equal(int64(73), body.Balance)
	suite.mockLedgerService.AssertExpectations(suite.T())
}

func (suite *PointsHandlerTestSuite) TestGetBalance_NoToken() {
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/points/balance", nil)

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockLedgerService.AssertNotCalled(suite.T(), "GetBalance", mock.Anything, mock.Anything)
}

func (suite *PointsHandlerTestSuite) TestClaimDailyLogin_FirstClaim() {
	userID := uuid.NewString()
	result := &domain.DailyLoginResult{Awarded: true, Amount: 10, TransactionID: uuid.NewString()}

	suite.mockLedgerService.On("ProcessDailyLogin", mock.Anything, userID).Return(result, nil).Once()

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, suite.authedRequest(http.MethodPost, "/api/v1/points/daily-login", userID))

	suite.Equal(http.StatusOK, w.Code)
	var body dto.DailyLoginResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.True(body.Awarded)
	suite.Equal(int64(10), body.Amount)
	suite.mockLedgerService.AssertExpectations(suite.T())
}

func (suite *PointsHandlerTestSuite) TestClaimDailyLogin_RepeatClaimStillOK() {
	userID := uuid.NewString()
	result := &domain.DailyLoginResult{Awarded: false, Amount: 0}

	suite.mockLedgerService.On("ProcessDailyLogin", mock.Anything, userID).Return(result, nil).Once()

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, suite.authedRequest(http.MethodPost, "/api/v1/points/daily-login", userID))

	// A repeat claim is not an error; the body reports awarded=false.
	suite.Equal(http.StatusOK, w.Code)
	var body dto.DailyLoginResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.False(body.Awarded)
	suite.Equal(int64(0), body.Amount)
}

func (suite *PointsHandlerTestSuite) TestListTransactions_KindFilter() {
	userID := uuid.NewString()
	kind := domain.KindDailyLogin
	expected := []domain.Transaction{{TransactionID: uuid.NewString(), UserID: userID, Amount: 10, Kind: kind}}

	suite.mockLedgerService.On("ListTransactions", mock.Anything, userID, 1, 20, &kind).Return(expected, nil).Once()

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, suite.authedRequest(http.MethodGet, "/api/v1/points/transactions?kind=daily_login", userID))

	suite.Equal(http.StatusOK, w.Code)
	var body []dto.TransactionResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Len(body, 1)
	suite.Equal(expected[0].TransactionID, body[0].TransactionID)
	suite.mockLedgerService.AssertExpectations(suite.T())
}

func (suite *PointsHandlerTestSuite) TestListTransactions_BadKindRejected() {
	userID := uuid.NewString()

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, suite.authedRequest(http.MethodGet, "/api/v1/points/transactions?kind=jackpot", userID))

	// The oneof binding on the kind parameter rejects unknown kinds
	// before the service is reached.
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockLedgerService.AssertNotCalled(suite.T(), "ListTransactions", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PointsHandlerTestSuite) TestSpendPoints_Success() {
	userID := uuid.NewString()
	txn := &domain.Transaction{
		TransactionID: uuid.NewString(),
		UserID:        userID,
		Amount:        -30,
		Kind:          domain.KindStorePurchase,
		Description:   "Sticker pack",
	}

	suite.mockLedgerService.On("SpendPoints", mock.Anything, userID, int64(30), domain.KindStorePurchase, "Sticker pack").
		Return(txn, int64(70), nil).Once()

	body, _ := json.Marshal(dto.SpendPointsRequest{Amount: 30, Kind: "store_purchase", Description: "Sticker pack"})
	req := suite.authedRequest(http.MethodPost, "/api/v1/points/spend", userID)
	req.Body = io.NopCloser(bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.SpendPointsResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(int64(-30), resp.Transaction.Amount)
	suite.Equal(int64(70), resp.NewBalance)
	suite.mockLedgerService.AssertExpectations(suite.T())
}

func (suite *PointsHandlerTestSuite) TestSpendPoints_InsufficientBalance() {
	userID := uuid.NewString()

	suite.mockLedgerService.On("SpendPoints", mock.Anything, userID, int64(500), domain.KindPetFeed, "").
		Return(nil, int64(0), fmt.Errorf("%w: insufficient balance", apperrors.ErrValidation)).Once()

	body, _ := json.Marshal(dto.SpendPointsRequest{Amount: 500, Kind: "pet_feed"})
	req := suite.authedRequest(http.MethodPost, "/api/v1/points/spend", userID)
	req.Body = io.NopCloser(bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockLedgerService.AssertExpectations(suite.T())
}

func (suite *PointsHandlerTestSuite) TestSpendPoints_NonSpendableKindRejected() {
	userID := uuid.NewString()

	body, _ := json.Marshal(dto.SpendPointsRequest{Amount: 10, Kind: "daily_login"})
	req := suite.authedRequest(http.MethodPost, "/api/v1/points/spend", userID)
	req.Body = io.NopCloser(bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	// The oneof binding on the kind field only admits the spendable
	// kinds, so reward kinds never reach the service.
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockLedgerService.AssertNotCalled(suite.T(), "SpendPoints", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PointsHandlerTestSuite) TestGetLeaderboard_Success() {
	userID := uuid.NewString()
	expected := []domain.LeaderboardEntry{{Username: "ada", Balance: 120}}

	suite.mockLedgerService.On("GetLeaderboard", mock.Anything, 10).Return(expected, nil).Once()

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, suite.authedRequest(http.MethodGet, "/api/v1/points/leaderboard", userID))

	suite.Equal(http.StatusOK, w.Code)
	var body dto.LeaderboardResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Len(body.Leaderboard, 1)
	suite.Equal("ada", body.Leaderboard[0].Username)
}

// --- Run Test Suite ---
func TestPointsHandler(t *testing.T) {
	suite.Run(t, new(PointsHandlerTestSuite))
}
