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

// --- Mock TransactionRepository ---
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockTransactionRepository) FindTransactionsByUserID(ctx context.Context, userID string, kind *domain.TransactionKind, limit int, offset int) ([]domain.Transaction, error) {
	args := m.Called(ctx, userID, kind, limit, offset)
	var txns []domain.Transaction
	if args.Get(0) != nil {
		txns = args.Get(0).([]domain.Transaction)
	}
	return txns, args.Error(1)
}

func (m *MockTransactionRepository) SumAmountByUserID(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTransactionRepository) FindDailyLoginOnDay(ctx context.Context, userID string, day time.Time) (*domain.Transaction, error) {
	args := m.Called(ctx, userID, day)
	var txn *domain.Transaction
	if args.Get(0) != nil {
		txn = args.Get(0).(*domain.Transaction)
	}
	return txn, args.Error(1)
}

func (m *MockTransactionRepository) FindTopBalances(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	args := m.Called(ctx, limit)
	var entries []domain.LeaderboardEntry
	if args.Get(0) != nil {
		entries = args.Get(0).([]domain.LeaderboardEntry)
	}
	return entries, args.Error(1)
}

// --- Test Suite ---
type LedgerServiceTestSuite struct {
	suite.Suite
	mockTxnRepo *MockTransactionRepository
	service     portssvc.LedgerSvcFacade
	fixedNow    time.Time
}

func (suite *LedgerServiceTestSuite) SetupTest() {
	suite.mockTxnRepo = new(MockTransactionRepository)
	suite.fixedNow = time.Date(2024, 6, 15, 14, 30, 0, 0, time.UTC)
	suite.service = services.NewLedgerService(suite.mockTxnRepo, services.WithLedgerClock(func() time.Time {
		return suite.fixedNow
	}))
}

func (suite *LedgerServiceTestSuite) today() time.Time {
	return suite.fixedNow.Truncate(24 * time.Hour)
}

// --- GetBalance Tests ---

func (suite *LedgerServiceTestSuite) TestGetBalance_Success() {
	ctx := context.Background()
	userID := uuid.NewString()

	suite.mockTxnRepo.On("SumAmountByUserID", ctx, userID).Return(int64(42), nil).Once()

	balance, err := suite.service.GetBalance(ctx, userID)

	suite.Require().NoError(err)
	suite.Equal(int64(42), balance)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestGetBalance_EmptyLedger() {
	ctx := context.Background()
	userID := uuid.NewString()

	suite.mockTxnRepo.On("SumAmountByUserID", ctx, userID).Return(int64(0), nil).Once()

	balance, err := suite.service.GetBalance(ctx, userID)

	suite.Require().NoError(err)
	suite.Equal(int64(0), balance)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestGetBalance_RepoError() {
	ctx := context.Background()
	userID := uuid.NewString()
	expectedErr := assert.AnError

	suite.mockTxnRepo.On("SumAmountByUserID", ctx, userID).Return(int64(0), expectedErr).Once()

	balance, err := suite.service.GetBalance(ctx, userID)

	suite.Require().Error(err)
	suite.Equal(int64(0), balance)
	suite.ErrorIs(err, expectedErr)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

// --- ListTransactions Tests ---

func (suite *LedgerServiceTestSuite) TestListTransactions_DefaultsAndOffset() {
	ctx := context.Background()
	userID := uuid.NewString()
	expected := []domain.Transaction{{TransactionID: uuid.NewString(), UserID: userID, Amount: 10}}

	// Page 3 with limit 20 translates to offset 40.
	suite.mockTxnRepo.On("FindTransactionsByUserID", ctx, userID, (*domain.TransactionKind)(nil), 20, 40).Return(expected, nil).Once()

	txns, err := suite.service.ListTransactions(ctx, userID, 3, 0, nil)

	suite.Require().NoError(err)
	suite.Equal(expected, txns)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestListTransactions_KindFilter() {
	ctx := context.Background()
	userID := uuid.NewString()
	kind := domain.KindDailyLogin

	suite.mockTxnRepo.On("FindTransactionsByUserID", ctx, userID, &kind, 10, 0).Return([]domain.Transaction{}, nil).Once()

	txns, err := suite.service.ListTransactions(ctx, userID, 1, 10, &kind)

	suite.Require().NoError(err)
	suite.Empty(txns)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestListTransactions_InvalidKind() {
	ctx := context.Background()
	userID := uuid.NewString()
	kind := domain.TransactionKind("bogus")

	txns, err := suite.service.ListTransactions(ctx, userID, 1, 10, &kind)

	suite.Require().Error(err)
	suite.Nil(txns)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "FindTransactionsByUserID", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestListTransactions_NilBecomesEmpty() {
	ctx := context.Background()
	userID := uuid.NewString()

	suite.mockTxnRepo.On("FindTransactionsByUserID", ctx, userID, (*domain.TransactionKind)(nil), 20, 0).Return(nil, nil).Once()

	txns, err := suite.service.ListTransactions(ctx, userID, 1, 0, nil)

	suite.Require().NoError(err)
	suite.Require().NotNil(txns)
	suite.Empty(txns)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

// --- AddTransaction Tests ---

func (suite *LedgerServiceTestSuite) TestAddTransaction_Success() {
	ctx := context.Background()
	userID := uuid.NewString()

	suite.mockTxnRepo.On("SaveTransaction", ctx, mock.MatchedBy(func(txn domain.Transaction) bool {
		return txn.UserID == userID &&
			txn.Amount == -30 &&
			txn.Kind == domain.KindStorePurchase &&
			txn.TransactionID != "" &&
			txn.CreatedAt.Equal(suite.fixedNow)
	})).Return(nil).Once()

	txn, err := suite.service.AddTransaction(ctx, userID, -30, domain.KindStorePurchase, "Sticker pack")

	suite.Require().NoError(err)
	suite.Require().NotNil(txn)
	suite.Equal(int64(-30), txn.Amount)
	suite.Equal(domain.KindStorePurchase, txn.Kind)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestAddTransaction_ZeroAmount() {
	ctx := context.Background()

	txn, err := suite.service.AddTransaction(ctx, uuid.NewString(), 0, domain.KindTaskCompletion, "")

	suite.Require().Error(err)
	suite.Nil(txn)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SaveTransaction", mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestAddTransaction_InvalidKind() {
	ctx := context.Background()

	txn, err := suite.service.AddTransaction(ctx, uuid.NewString(), 10, domain.TransactionKind("nope"), "")

	suite.Require().Error(err)
	suite.Nil(txn)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SaveTransaction", mock.Anything, mock.Anything)
}

// --- ProcessDailyLogin Tests ---

func (suite *LedgerServiceTestSuite) TestProcessDailyLogin_FirstClaim() {
	ctx := context.Background()
	userID := uuid.NewString()

	suite.mockTxnRepo.On("FindDailyLoginOnDay", ctx, userID, suite.today()).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockTxnRepo.On("SaveTransaction", ctx, mock.MatchedBy(func(txn domain.Transaction) bool {
		return txn.UserID == userID &&
			txn.Amount == domain.DailyLoginReward &&
			txn.Kind == domain.KindDailyLogin
	})).Return(nil).Once()

	result, err := suite.service.ProcessDailyLogin(ctx, userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(result)
	suite.True(result.Awarded)
	suite.Equal(int64(domain.DailyLoginReward), result.Amount)
	suite.NotEmpty(result.TransactionID)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestProcessDailyLogin_AlreadyClaimedToday() {
	ctx := context.Background()
	userID := uuid.NewString()
	existing := &domain.Transaction{TransactionID: uuid.NewString(), UserID: userID, Kind: domain.KindDailyLogin}

	suite.mockTxnRepo.On("FindDailyLoginOnDay", ctx, userID, suite.today()).Return(existing, nil).Once()

	result, err := suite.service.ProcessDailyLogin(ctx, userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(result)
	suite.False(result.Awarded)
	suite.Equal(int64(0), result.Amount)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SaveTransaction", mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestProcessDailyLogin_ConcurrentClaimLosesRace() {
	ctx := context.Background()
	userID := uuid.NewString()

	// The check sees no claim, but the insert hits the uniqueness
	// constraint because a concurrent request won.
	suite.mockTxnRepo.On("FindDailyLoginOnDay", ctx, userID, suite.today()).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockTxnRepo.On("SaveTransaction", ctx, mock.AnythingOfType("domain.Transaction")).Return(apperrors.ErrDuplicate).Once()

	result, err := suite.service.ProcessDailyLogin(ctx, userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(result)
	suite.False(result.Awarded)
	suite.Equal(int64(0), result.Amount)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestProcessDailyLogin_NextDayClaims() {
	ctx := context.Background()
	userID := uuid.NewString()

	// First claim on day one.
	suite.mockTxnRepo.On("FindDailyLoginOnDay", ctx, userID, suite.today()).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockTxnRepo.On("SaveTransaction", ctx, mock.AnythingOfType("domain.Transaction")).Return(nil).Twice()

	first, err := suite.service.ProcessDailyLogin(ctx, userID)
	suite.Require().NoError(err)
	suite.True(first.Awarded)

	// Advance the clock past midnight UTC; the new calendar day opens a
	// fresh claim.
	suite.fixedNow = suite.fixedNow.Add(24 * time.Hour)
	suite.mockTxnRepo.On("FindDailyLoginOnDay", ctx, userID, suite.today()).Return(nil, apperrors.ErrNotFound).Once()

	second, err := suite.service.ProcessDailyLogin(ctx, userID)
	suite.Require().NoError(err)
	suite.True(second.Awarded)

	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestProcessDailyLogin_CheckError() {
	ctx := context.Background()
	userID := uuid.NewString()
	expectedErr := assert.AnError

	suite.mockTxnRepo.On("FindDailyLoginOnDay", ctx, userID, suite.today()).Return(nil, expectedErr).Once()

	result, err := suite.service.ProcessDailyLogin(ctx, userID)

	suite.Require().Error(err)
	suite.Nil(result)
	suite.ErrorIs(err, expectedErr)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SaveTransaction", mock.Anything, mock.Anything)
}

// --- CalculateActivityReward Tests ---

func (suite *LedgerServiceTestSuite) TestCalculateActivityReward_NoDuration() {
	reward, err := suite.service.CalculateActivityReward("walk", nil, nil)

	suite.Require().NoError(err)
	suite.Equal(int64(0), reward)
}

func (suite *LedgerServiceTestSuite) TestCalculateActivityReward_ZeroDuration() {
	duration := 0
	reward, err := suite.service.CalculateActivityReward("walk", &duration, nil)

	suite.Require().NoError(err)
	suite.Equal(int64(0), reward)
}

func (suite *LedgerServiceTestSuite) TestCalculateActivityReward_DurationOnly() {
	duration := 25
	reward, err := suite.service.CalculateActivityReward("walk", &duration, nil)

	// 5 base + 25/10 = 7
	suite.Require().NoError(err)
	suite.Equal(int64(7), reward)
}

func (suite *LedgerServiceTestSuite) TestCalculateActivityReward_IntensityBonus() {
	duration := 45
	rpe := 9
	reward, err := suite.service.CalculateActivityReward("run", &duration, &rpe)

	// 5 base + 4 duration + (9-6) intensity = 12
	suite.Require().NoError(err)
	suite.Equal(int64(12), reward)
}

func (suite *LedgerServiceTestSuite) TestCalculateActivityReward_LowRPENoBonus() {
	duration := 30
	rpe := 6
	reward, err := suite.service.CalculateActivityReward("yoga", &duration, &rpe)

	// 5 base + 3 duration, no bonus below RPE 7
	suite.Require().NoError(err)
	suite.Equal(int64(8), reward)
}

func (suite *LedgerServiceTestSuite) TestCalculateActivityReward_Capped() {
	duration := 600
	rpe := 10
	reward, err := suite.service.CalculateActivityReward("ultramarathon", &duration, &rpe)

	suite.Require().NoError(err)
	suite.Equal(int64(domain.ActivityRewardCap), reward)
}

func (suite *LedgerServiceTestSuite) TestCalculateActivityReward_InvalidRPE() {
	duration := 30
	for _, rpe := range []int{0, 11, -1} {
		r := rpe
		reward, err := suite.service.CalculateActivityReward("run", &duration, &r)

		suite.Require().Error(err)
		suite.Equal(int64(0), reward)
		suite.ErrorIs(err, apperrors.ErrValidation)
	}
}

// --- Award Wrappers ---

func (suite *LedgerServiceTestSuite) TestAwardTaskCompletion() {
	ctx := context.Background()
	userID := uuid.NewString()

	suite.mockTxnRepo.On("SaveTransaction", ctx, mock.MatchedBy(func(txn domain.Transaction) bool {
		return txn.Amount == domain.TaskCompletionReward &&
			txn.Kind == domain.KindTaskCompletion &&
			txn.Description == "Task completed: Drink water"
	})).Return(nil).Once()

	txn, err := suite.service.AwardTaskCompletion(ctx, userID, "Drink water")

	suite.Require().NoError(err)
	suite.Equal(int64(domain.TaskCompletionReward), txn.Amount)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestAwardCommunityPost() {
	ctx := context.Background()

	suite.mockTxnRepo.On("SaveTransaction", ctx, mock.MatchedBy(func(txn domain.Transaction) bool {
		return txn.Amount == domain.CommunityPostReward && txn.Kind == domain.KindCommunityPost
	})).Return(nil).Once()

	txn, err := suite.service.AwardCommunityPost(ctx, uuid.NewString())

	suite.Require().NoError(err)
	suite.Equal(int64(domain.CommunityPostReward), txn.Amount)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestAwardCycleCompletion() {
	ctx := context.Background()

	suite.mockTxnRepo.On("SaveTransaction", ctx, mock.MatchedBy(func(txn domain.Transaction) bool {
		return txn.Amount == domain.CycleCompletionReward && txn.Kind == domain.KindCycleCompletion
	})).Return(nil).Once()

	txn, err := suite.service.AwardCycleCompletion(ctx, uuid.NewString())

	suite.Require().NoError(err)
	suite.Equal(int64(domain.CycleCompletionReward), txn.Amount)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

// --- SpendPoints Tests ---

func (suite *LedgerServiceTestSuite) TestSpendPoints_Success() {
	ctx := context.Background()
	userID := uuid.NewString()

	suite.mockTxnRepo.On("SumAmountByUserID", ctx, userID).Return(int64(100), nil).Once()
	suite.mockTxnRepo.On("SaveTransaction", ctx, mock.MatchedBy(func(txn domain.Transaction) bool {
		return txn.UserID == userID &&
			txn.Amount == -30 &&
			txn.Kind == domain.KindStorePurchase
	})).Return(nil).Once()

	txn, newBalance, err := suite.service.SpendPoints(ctx, userID, 30, domain.KindStorePurchase, "Sticker pack")

	suite.Require().NoError(err)
	suite.Require().NotNil(txn)
	suite.Equal(int64(-30), txn.Amount)
	suite.Equal(int64(70), newBalance)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestSpendPoints_InsufficientBalance() {
	ctx := context.Background()
	userID := uuid.NewString()

	suite.mockTxnRepo.On("SumAmountByUserID", ctx, userID).Return(int64(10), nil).Once()

	txn, newBalance, err := suite.service.SpendPoints(ctx, userID, 30, domain.KindPetFeed, "Treats")

	suite.Require().Error(err)
	suite.Nil(txn)
	suite.Zero(newBalance)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SaveTransaction", mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestSpendPoints_NonSpendableKind() {
	ctx := context.Background()

	txn, _, err := suite.service.SpendPoints(ctx, uuid.NewString(), 10, domain.KindDailyLogin, "")

	suite.Require().Error(err)
	suite.Nil(txn)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SumAmountByUserID", mock.Anything, mock.Anything)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SaveTransaction", mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestSpendPoints_NonPositiveAmount() {
	ctx := context.Background()

	txn, _, err := suite.service.SpendPoints(ctx, uuid.NewString(), 0, domain.KindStorePurchase, "")

	suite.Require().Error(err)
	suite.Nil(txn)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SaveTransaction", mock.Anything, mock.Anything)
}

// --- GetLeaderboard Tests ---

func (suite *LedgerServiceTestSuite) TestGetLeaderboard_DefaultLimit() {
	ctx := context.Background()
	expected := []domain.LeaderboardEntry{{Username: "ada", Balance: 120}, {Username: "grace", Balance: 90}}

	suite.mockTxnRepo.On("FindTopBalances", ctx, 10).Return(expected, nil).Once()

	entries, err := suite.service.GetLeaderboard(ctx, 0)

	suite.Require().NoError(err)
	suite.Equal(expected, entries)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestGetLeaderboard_RepoError() {
	ctx := context.Background()
	expectedErr := assert.AnError

	suite.mockTxnRepo.On("FindTopBalances", ctx, 5).Return(nil, expectedErr).Once()

	entries, err := suite.service.GetLeaderboard(ctx, 5)

	suite.Require().Error(err)
	suite.Nil(entries)
	suite.ErrorIs(err, expectedErr)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

// --- Run Suite ---
func TestLedgerService(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}
