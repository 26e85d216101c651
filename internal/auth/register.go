package auth

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/lsalmeida/ecoeletronico-backend/internal/accounts"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/config"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/db"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/db/models"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/enums"
	pkgerrors "github.com/lsalmeida/ecoeletronico-backend/pkg/errors"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/security"
)

// RegisterRequest contains the payload required to enroll a new student.
type RegisterRequest struct {
	Name        string `json:"name" validate:"required,min=2"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	ClassGroup  string `json:"class_group" validate:"required"`
	LGPDConsent bool   `json:"lgpd_consent"`
}

// RegisterService handles the student enrollment transaction.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) (*accounts.AccountDTO, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type registerAccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
}

// RegisterServiceParams packages the dependencies for the registration flow.
type RegisterServiceParams struct {
	TxRunner           txRunner
	AccountRepoFactory func(tx *gorm.DB) registerAccountRepository
	PasswordConfig     config.PasswordConfig
}

type registerService struct {
	tx          txRunner
	repoFactory func(tx *gorm.DB) registerAccountRepository
	passwordCfg config.PasswordConfig
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.TxRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	if params.AccountRepoFactory == nil {
		params.AccountRepoFactory = func(tx *gorm.DB) registerAccountRepository {
			return accounts.NewRepository(tx)
		}
	}
	return &registerService{
		tx:          params.TxRunner,
		repoFactory: params.AccountRepoFactory,
		passwordCfg: params.PasswordConfig,
	}, nil
}

func (s *registerService) Register(ctx context.Context, req RegisterRequest) (*accounts.AccountDTO, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	account := &models.Account{
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		ClassGroup:   strings.TrimSpace(req.ClassGroup),
		LGPDConsent:  req.LGPDConsent,
		IsActive:     true,
		Role:         enums.RoleStudent,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repoFactory(tx)
		if err := repo.Create(ctx, account); err != nil {
			if db.IsUniqueViolation(err, "ux_accounts_email") {
				return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create account")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return accounts.FromModel(account), nil
}
