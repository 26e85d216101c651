package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lsalmeida/ecoeletronico-backend/pkg/config"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/db/models"
	pkgerrors "github.com/lsalmeida/ecoeletronico-backend/pkg/errors"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/security"
)

// RecoveryRequest asks for a password recovery code.
type RecoveryRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// RecoveryResponse acknowledges a code request. The code itself is only
// echoed back in dev, where no delivery channel exists.
type RecoveryResponse struct {
	ExpiresInSeconds int     `json:"expires_in_seconds"`
	DevCode          *string `json:"dev_code,omitempty"`
}

// RecoveryConfirmRequest resets the password using a previously issued code.
type RecoveryConfirmRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Code        string `json:"code" validate:"required,len=6,numeric"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

type recoveryAccountRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
}

type codeStore interface {
	SetCode(ctx context.Context, emailHash, code string, cfg config.RecoveryConfig) error
	GetCode(ctx context.Context, emailHash string) (string, error)
	DeleteCode(ctx context.Context, emailHash string) error
}

// RecoveryService issues and redeems password recovery codes.
type RecoveryService interface {
	RequestCode(ctx context.Context, req RecoveryRequest) (*RecoveryResponse, error)
	ConfirmReset(ctx context.Context, req RecoveryConfirmRequest) error
}

// RecoveryServiceParams packages the dependencies for the recovery flow.
type RecoveryServiceParams struct {
	AccountRepo    recoveryAccountRepository
	Codes          codeStore
	PasswordConfig config.PasswordConfig
	RecoveryConfig config.RecoveryConfig
	AppConfig      config.AppConfig
}

type recoveryService struct {
	accounts    recoveryAccountRepository
	codes       codeStore
	passwordCfg config.PasswordConfig
	recoveryCfg config.RecoveryConfig
	appCfg      config.AppConfig
}

// NewRecoveryService builds a password recovery service.
func NewRecoveryService(params RecoveryServiceParams) (RecoveryService, error) {
	if params.AccountRepo == nil {
		return nil, fmt.Errorf("account repository is required")
	}
	if params.Codes == nil {
		return nil, fmt.Errorf("code store is required")
	}
	return &recoveryService{
		accounts:    params.AccountRepo,
		codes:       params.Codes,
		passwordCfg: params.PasswordConfig,
		recoveryCfg: params.RecoveryConfig,
		appCfg:      params.AppConfig,
	}, nil
}

func (s *recoveryService) RequestCode(ctx context.Context, req RecoveryRequest) (*RecoveryResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	resp := &RecoveryResponse{ExpiresInSeconds: int(s.recoveryCfg.CodeTTL.Seconds())}

	_, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Unknown emails get the same acknowledgement so the
			// endpoint cannot be used to enumerate accounts.
			return resp, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup account")
	}

	code, err := security.GenerateRecoveryCode()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate recovery code")
	}
	if err := s.codes.SetCode(ctx, hashEmail(email), code, s.recoveryCfg); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store recovery code")
	}

	if s.appCfg.IsDev() {
		resp.DevCode = &code
	}
	return resp, nil
}

func (s *recoveryService) ConfirmReset(ctx context.Context, req RecoveryConfirmRequest) error {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	emailHash := hashEmail(email)

	stored, err := s.codes.GetCode(ctx, emailHash)
	if err != nil || stored == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid or expired recovery code")
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(req.Code)) != 1 {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid or expired recovery code")
	}

	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid or expired recovery code")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup account")
	}

	hash, err := security.HashPassword(req.NewPassword, s.passwordCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	if err := s.accounts.UpdatePasswordHash(ctx, account.ID, hash); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update password")
	}

	if err := s.codes.DeleteCode(ctx, emailHash); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "consume recovery code")
	}
	return nil
}

func hashEmail(email string) string {
	sum := sha256.Sum256([]byte(email))
	return hex.EncodeToString(sum[:])
}
