package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/lsalmeida/ecoeletronico-backend/pkg/config"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/db/models"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/enums"
	pkgerrors "github.com/lsalmeida/ecoeletronico-backend/pkg/errors"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/security"
)

// Service defines the account profile and admin management operations.
type Service interface {
	Me(ctx context.Context, accountID uuid.UUID) (*ProfileDTO, error)
	ChangePassword(ctx context.Context, accountID uuid.UUID, current, next string) error
	UpdateConsent(ctx context.Context, accountID uuid.UUID, consent bool) error
	SetActive(ctx context.Context, accountID uuid.UUID, active bool) error
	AdjustBalance(ctx context.Context, accountID uuid.UUID, delta decimal.Decimal) error
	Ranking(ctx context.Context) ([]RankingEntryDTO, error)
}

type termReader interface {
	Current(ctx context.Context) (int, error)
}

type service struct {
	repo        Repository
	terms       termReader
	passwordCfg config.PasswordConfig
}

// ServiceParams bundles the dependencies required to build an accounts service.
type ServiceParams struct {
	Repo        Repository
	Terms       termReader
	PasswordCfg config.PasswordConfig
}

// NewService constructs an accounts service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("accounts repository is required")
	}
	if params.Terms == nil {
		return nil, fmt.Errorf("terms reader is required")
	}
	return &service{
		repo:        params.Repo,
		terms:       params.Terms,
		passwordCfg: params.PasswordCfg,
	}, nil
}

func (s *service) Me(ctx context.Context, accountID uuid.UUID) (*ProfileDTO, error) {
	account, err := s.findAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	term, err := s.terms.Current(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load current term")
	}

	purchases, err := s.repo.ListPurchases(ctx, accountID, term)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list purchases")
	}

	categories := make([]enums.CouponCategory, 0, len(purchases))
	for _, p := range purchases {
		categories = append(categories, p.Category)
	}

	return &ProfileDTO{
		Account:             FromModel(account),
		CurrentTerm:         term,
		PurchasedCategories: categories,
	}, nil
}

func (s *service) ChangePassword(ctx context.Context, accountID uuid.UUID, current, next string) error {
	if len(next) < 6 {
		return pkgerrors.New(pkgerrors.CodeValidation, "password must have at least 6 characters")
	}

	account, err := s.findAccount(ctx, accountID)
	if err != nil {
		return err
	}

	valid, err := security.VerifyPassword(current, account.PasswordHash)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "current password is incorrect")
	}

	hash, err := security.HashPassword(next, s.passwordCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	if err := s.repo.UpdatePasswordHash(ctx, accountID, hash); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update password")
	}
	return nil
}

func (s *service) UpdateConsent(ctx context.Context, accountID uuid.UUID, consent bool) error {
	if _, err := s.findAccount(ctx, accountID); err != nil {
		return err
	}
	if err := s.repo.UpdateConsent(ctx, accountID, consent); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update consent")
	}
	return nil
}

func (s *service) SetActive(ctx context.Context, accountID uuid.UUID, active bool) error {
	if _, err := s.findAccount(ctx, accountID); err != nil {
		return err
	}
	if err := s.repo.SetActive(ctx, accountID, active); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update account status")
	}
	return nil
}

// AdjustBalance applies an admin correction. Debits that would push the
// balance negative are rejected, not clamped.
func (s *service) AdjustBalance(ctx context.Context, accountID uuid.UUID, delta decimal.Decimal) error {
	if delta.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "delta must be non-zero")
	}
	if _, err := s.findAccount(ctx, accountID); err != nil {
		return err
	}

	ok, err := s.repo.AdjustBalance(ctx, accountID, delta)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "adjust balance")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeInsufficientPoints, "balance cannot go negative")
	}
	return nil
}

func (s *service) Ranking(ctx context.Context) ([]RankingEntryDTO, error) {
	accounts, err := s.repo.ListRanked(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list accounts")
	}
	out := make([]RankingEntryDTO, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, rankingEntryFromModel(a))
	}
	return out, nil
}

func (s *service) findAccount(ctx context.Context, accountID uuid.UUID) (*models.Account, error) {
	if accountID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account id required")
	}
	account, err := s.repo.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup account")
	}
	return account, nil
}
