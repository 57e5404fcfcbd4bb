// Package accounts manages citizen accounts and is the single entry point
// for point mutations. Every award or deduction goes through Credit /
// Spend so the stored level and rank snapshots are recomputed inside
// the same transaction that changes the balance.
package accounts

import (
	"errors"
	"fmt"

	"github.com/urbansignal/billboard-watch/internal/metrics"
	"github.com/urbansignal/billboard-watch/internal/models"
	"github.com/urbansignal/billboard-watch/internal/repository"
	"github.com/urbansignal/billboard-watch/internal/service/scoring"
	"github.com/urbansignal/billboard-watch/pkg/logger"
)

var (
	ErrNotFound           = errors.New("account not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInsufficientPoints = repository.ErrInsufficientPoints
)

// AccountRepository is the persistence surface the service needs.
type AccountRepository interface {
	Create(account *models.Account) error
	GetByID(id uint) (*models.Account, error)
	GetByEmail(email string) (*models.Account, error)
	Update(account *models.Account) error
	List(city, role string) ([]models.Account, error)
	ApplyPointsDelta(accountID uint, delta int, action string, derive func(points int) (int, string)) (*models.Account, error)
	GetPointsHistory(accountID uint, limit int) ([]models.PointsEntry, error)
}

type Service struct {
	accounts AccountRepository
	log      *logger.Logger
}

func NewService(accounts *repository.AccountRepository) *Service {
	return NewServiceWithInterfaces(accounts)
}

// NewServiceWithInterfaces wires the service with explicit dependencies,
// used by tests to inject mocks.
func NewServiceWithInterfaces(accounts AccountRepository) *Service {
	return &Service{
		accounts: accounts,
		log:      logger.Get(),
	}
}

// CreateInput holds the fields accepted when registering an account.
type CreateInput struct {
	Email    string
	FullName string
	Phone    string
	City     string
	Role     string
}

// Create registers a new account with a zero balance. Email must be unique.
func (s *Service) Create(in CreateInput) (*models.Account, error) {
	if existing, err := s.accounts.GetByEmail(in.Email); err == nil && existing != nil {
		return nil, ErrEmailTaken
	}

	role := in.Role
	if role == "" {
		role = models.RoleCitizen
	}

	account := &models.Account{
		Email:    in.Email,
		FullName: in.FullName,
		Phone:    in.Phone,
		City:     in.City,
		Role:     role,
		Points:   0,
		Level:    scoring.Level(0),
		Rank:     scoring.Rank(0),
	}
	if err := s.accounts.Create(account); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	s.log.Info().
		Uint("account_id", account.ID).
		Str("email", account.Email).
		Msg("Account created")
	return account, nil
}

func (s *Service) Get(id uint) (*models.Account, error) {
	account, err := s.accounts.GetByID(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return account, nil
}

func (s *Service) List(city, role string) ([]models.Account, error) {
	return s.accounts.List(city, role)
}

// AwardPoints credits an account for a named action and returns the updated
// account. The points value is computed from the action and its details; a
// zero award is a no-op that still returns the current account state.
func (s *Service) AwardPoints(accountID uint, action string, details *scoring.ActionDetails) (*models.Account, int, error) {
	points := scoring.PointsForAction(action, details)
	account, err := s.Credit(accountID, points, action)
	if err != nil {
		return nil, 0, err
	}
	return account, points, nil
}

// Credit adds a known point amount to an account under an action label.
// Level and rank are rederived from the new balance atomically.
func (s *Service) Credit(accountID uint, points int, action string) (*models.Account, error) {
	if points == 0 {
		return s.Get(accountID)
	}

	account, err := s.accounts.ApplyPointsDelta(accountID, points, action, scoring.Derive)
	if err != nil {
		return nil, fmt.Errorf("failed to credit points: %w", err)
	}

	metrics.RecordPointsAwarded(action, points)
	s.log.Info().
		Uint("account_id", accountID).
		Str("action", action).
		Int("points", points).
		Int("balance", account.Points).
		Int("level", account.Level).
		Str("rank", account.Rank).
		Msg("Points credited")
	return account, nil
}

// Spend deducts points from an account, failing with ErrInsufficientPoints
// when the balance would go negative.
func (s *Service) Spend(accountID uint, points int, action string) (*models.Account, error) {
	account, err := s.accounts.ApplyPointsDelta(accountID, -points, action, scoring.Derive)
	if err != nil {
		if errors.Is(err, repository.ErrInsufficientPoints) {
			return nil, ErrInsufficientPoints
		}
		return nil, fmt.Errorf("failed to spend points: %w", err)
	}

	s.log.Info().
		Uint("account_id", accountID).
		Str("action", action).
		Int("points", points).
		Int("balance", account.Points).
		Msg("Points spent")
	return account, nil
}

// PointsHistory returns the most recent ledger entries for an account.
func (s *Service) PointsHistory(accountID uint, limit int) ([]models.PointsEntry, error) {
	if _, err := s.Get(accountID); err != nil {
		return nil, err
	}
	return s.accounts.GetPointsHistory(accountID, limit)
}

// Progress returns the account's position between level thresholds.
func (s *Service) Progress(accountID uint) (*models.Account, scoring.LevelProgress, error) {
	account, err := s.Get(accountID)
	if err != nil {
		return nil, scoring.LevelProgress{}, err
	}
	return account, scoring.ProgressToNextLevel(account.Points), nil
}
