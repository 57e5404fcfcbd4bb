// Package rewards handles catalog browsing and point redemption.
//
// Redemption is split in two: Evaluate is a pure decision over the catalog,
// a balance, and a clock, and the service commits a positive decision by
// deducting points and persisting a redemption row.
package rewards

import (
	"errors"
	"fmt"
	"time"

	"github.com/urbansignal/billboard-watch/internal/catalog"
	"github.com/urbansignal/billboard-watch/internal/metrics"
	"github.com/urbansignal/billboard-watch/internal/models"
	"github.com/urbansignal/billboard-watch/internal/repository"
	"github.com/urbansignal/billboard-watch/internal/service/accounts"
	"github.com/urbansignal/billboard-watch/pkg/logger"
)

// Failure codes carried in a redemption result.
const (
	FailureNotFound           = "not_found"
	FailureInsufficientPoints = "insufficient_points"
	FailureExpired            = "expired"
)

// Result is the outcome of a redemption decision. Exactly one of the
// success fields or the failure fields is populated.
type Result struct {
	Success     bool            `json:"success"`
	Reward      *catalog.Reward `json:"reward,omitempty"`
	PointsSpent int             `json:"points_spent,omitempty"`
	NewBalance  int             `json:"new_balance,omitempty"`
	FailureCode string          `json:"failure_code,omitempty"`
	Message     string          `json:"message,omitempty"`
}

func failure(code, message string) Result {
	return Result{FailureCode: code, Message: message}
}

// Evaluate decides a redemption without side effects. Expiry is checked
// against the supplied clock so the decision is reproducible.
func Evaluate(cat *catalog.Catalog, rewardID string, balance int, now time.Time) Result {
	reward := cat.RewardByID(rewardID)
	if reward == nil {
		return failure(FailureNotFound, "Reward not found")
	}
	if balance < reward.PointsCost {
		return failure(FailureInsufficientPoints, "Insufficient points")
	}
	if reward.Expired(now) {
		return failure(FailureExpired, "Reward has expired")
	}
	return Result{
		Success:     true,
		Reward:      reward,
		PointsSpent: reward.PointsCost,
		NewBalance:  balance - reward.PointsCost,
	}
}

// Available returns the catalog rewards an account with the given balance
// could afford. Expiry does not filter here; it is enforced at redemption.
func Available(cat *catalog.Catalog, balance int) []catalog.Reward {
	var out []catalog.Reward
	for _, r := range cat.Rewards() {
		if r.PointsCost <= balance {
			out = append(out, r)
		}
	}
	return out
}

// AccountGetter loads the account whose balance backs a redemption.
type AccountGetter interface {
	Get(id uint) (*models.Account, error)
}

// PointsSpender deducts the redemption cost from an account.
type PointsSpender interface {
	Spend(accountID uint, points int, action string) (*models.Account, error)
}

// RedemptionRepository persists committed redemptions.
type RedemptionRepository interface {
	Create(redemption *models.Redemption) error
	ListByAccount(accountID uint) ([]models.Redemption, error)
}

type Service struct {
	catalog     *catalog.Catalog
	accounts    AccountGetter
	spender     PointsSpender
	redemptions RedemptionRepository
	log         *logger.Logger
}

func NewService(cat *catalog.Catalog, accountsSvc *accounts.Service, redemptions *repository.RedemptionRepository) *Service {
	return NewServiceWithInterfaces(cat, accountsSvc, accountsSvc, redemptions)
}

func NewServiceWithInterfaces(cat *catalog.Catalog, getter AccountGetter, spender PointsSpender, redemptions RedemptionRepository) *Service {
	return &Service{
		catalog:     cat,
		accounts:    getter,
		spender:     spender,
		redemptions: redemptions,
		log:         logger.Get(),
	}
}

// Catalog returns all reward definitions.
func (s *Service) Catalog() []catalog.Reward {
	return s.catalog.Rewards()
}

// AvailableFor returns the rewards the account can currently afford.
func (s *Service) AvailableFor(accountID uint) ([]catalog.Reward, error) {
	account, err := s.accounts.Get(accountID)
	if err != nil {
		return nil, err
	}
	return Available(s.catalog, account.Points), nil
}

// Redeem evaluates and, on success, commits a redemption: the cost is
// deducted through the points ledger and a redemption row is recorded.
// Failed decisions return a failure result with a nil error.
func (s *Service) Redeem(accountID uint, rewardID string) (Result, error) {
	account, err := s.accounts.Get(accountID)
	if err != nil {
		return Result{}, err
	}

	result := Evaluate(s.catalog, rewardID, account.Points, time.Now())
	if !result.Success {
		metrics.RecordRedemption(rewardID, result.FailureCode)
		return result, nil
	}

	updated, err := s.spender.Spend(accountID, result.PointsSpent, "reward_redeemed")
	if err != nil {
		if errors.Is(err, accounts.ErrInsufficientPoints) {
			// Balance changed between evaluation and commit.
			metrics.RecordRedemption(rewardID, FailureInsufficientPoints)
			return failure(FailureInsufficientPoints, "Insufficient points"), nil
		}
		return Result{}, fmt.Errorf("failed to deduct redemption cost: %w", err)
	}
	result.NewBalance = updated.Points

	if err := s.redemptions.Create(&models.Redemption{
		AccountID:    accountID,
		RewardID:     rewardID,
		PointsSpent:  result.PointsSpent,
		BalanceAfter: updated.Points,
	}); err != nil {
		return Result{}, fmt.Errorf("failed to record redemption: %w", err)
	}

	metrics.RecordRedemption(rewardID, "success")
	s.log.Info().
		Uint("account_id", accountID).
		Str("reward", rewardID).
		Int("points_spent", result.PointsSpent).
		Int("balance", updated.Points).
		Msg("Reward redeemed")
	return result, nil
}

// History returns an account's committed redemptions.
func (s *Service) History(accountID uint) ([]models.Redemption, error) {
	if _, err := s.accounts.Get(accountID); err != nil {
		return nil, err
	}
	return s.redemptions.ListByAccount(accountID)
}
