package domain

import "time"

// TransactionKind classifies what a points transaction was issued for.
type TransactionKind string

const (
	KindDailyLogin         TransactionKind = "daily_login"
	KindTaskCompletion     TransactionKind = "task_completion"
	KindActivityCompletion TransactionKind = "activity_completion"
	KindCommunityPost      TransactionKind = "community_post"
	KindCycleCompletion    TransactionKind = "cycle_completion"
	KindStorePurchase      TransactionKind = "store_purchase"
	KindPetFeed            TransactionKind = "pet_feed"
	KindUnlockContent      TransactionKind = "unlock_content"
)

// Valid reports whether k is one of the known transaction kinds.
func (k TransactionKind) Valid() bool {
	switch k {
	case KindDailyLogin, KindTaskCompletion, KindActivityCompletion,
		KindCommunityPost, KindCycleCompletion, KindStorePurchase,
		KindPetFeed, KindUnlockContent:
		return true
	}
	return false
}

// Spendable reports whether k is a kind users may spend points on.
// Every other kind is a reward the app credits on its own.
func (k TransactionKind) Spendable() bool {
	switch k {
	case KindStorePurchase, KindPetFeed, KindUnlockContent:
		return true
	}
	return false
}

// Fixed reward amounts. A user's balance is always the sum of their
// transaction amounts; these are the credits the app hands out.
const (
	DailyLoginReward      int64 = 10
	TaskCompletionReward  int64 = 20
	ActivityBaseReward    int64 = 5
	CommunityPostReward   int64 = 2
	CycleCompletionReward int64 = 50

	// ActivityRewardCap is the maximum reward a single activity can earn.
	ActivityRewardCap int64 = 50
)

// Transaction is a single immutable entry in a user's points ledger.
// Transactions are only ever appended; positive amounts are credits,
// negative amounts are debits (e.g. store purchases).
type Transaction struct {
	TransactionID string          `json:"transactionID"` // Primary Key (UUID)
	UserID        string          `json:"userID"`        // FK -> User.userID (Not Null)
	Amount        int64           `json:"amount"`
	Kind          TransactionKind `json:"kind"`
	Description   string          `json:"description"` // Nullable
	CreatedAt     time.Time       `json:"createdAt"`
}

// DailyLoginResult is the outcome of a daily-login claim.
// Awarded is false when the reward was already granted today.
type DailyLoginResult struct {
	Awarded       bool   `json:"awarded"`
	Amount        int64  `json:"amount"`
	TransactionID string `json:"transactionID,omitempty"`
}

// LeaderboardEntry pairs a username with their derived points balance.
type LeaderboardEntry struct {
	Username string `json:"username"`
	Balance  int64  `json:"balance"`
}
