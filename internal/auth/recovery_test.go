package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lsalmeida/ecoeletronico-backend/pkg/config"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/db/models"
	pkgerrors "github.com/lsalmeida/ecoeletronico-backend/pkg/errors"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/security"
)

type fakeRecoveryRepo struct {
	findByEmailFn        func(ctx context.Context, email string) (*models.Account, error)
	updatePasswordHashFn func(ctx context.Context, id uuid.UUID, hash string) error
}

func (f *fakeRecoveryRepo) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	return f.findByEmailFn(ctx, email)
}

func (f *fakeRecoveryRepo) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	if f.updatePasswordHashFn == nil {
		return nil
	}
	return f.updatePasswordHashFn(ctx, id, hash)
}

type memoryCodeStore struct {
	codes map[string]string
}

func newMemoryCodeStore() *memoryCodeStore {
	return &memoryCodeStore{codes: map[string]string{}}
}

func (m *memoryCodeStore) SetCode(ctx context.Context, emailHash, code string, cfg config.RecoveryConfig) error {
	m.codes[emailHash] = code
	return nil
}

func (m *memoryCodeStore) GetCode(ctx context.Context, emailHash string) (string, error) {
	return m.codes[emailHash], nil
}

func (m *memoryCodeStore) DeleteCode(ctx context.Context, emailHash string) error {
	delete(m.codes, emailHash)
	return nil
}

func newRecoveryService(t *testing.T, repo recoveryAccountRepository, codes codeStore, appEnv string) RecoveryService {
	t.Helper()

	svc, err := NewRecoveryService(RecoveryServiceParams{
		AccountRepo:    repo,
		Codes:          codes,
		PasswordConfig: testPasswordCfg(),
		RecoveryConfig: config.RecoveryConfig{CodeTTL: 15 * time.Minute},
		AppConfig:      config.AppConfig{Env: appEnv},
	})
	if err != nil {
		t.Fatalf("new recovery service: %v", err)
	}
	return svc
}

func TestRequestCodeUnknownEmailIsSilent(t *testing.T) {
	repo := &fakeRecoveryRepo{
		findByEmailFn: func(ctx context.Context, email string) (*models.Account, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	codes := newMemoryCodeStore()

	svc := newRecoveryService(t, repo, codes, config.AppEnvDev)

	resp, err := svc.RequestCode(context.Background(), RecoveryRequest{Email: "nobody@escola.edu.br"})
	if err != nil {
		t.Fatalf("request code: %v", err)
	}
	if resp.DevCode != nil {
		t.Fatal("unknown email must not produce a code")
	}
	if len(codes.codes) != 0 {
		t.Fatal("no code should be stored for unknown emails")
	}
}

func TestRequestAndConfirmReset(t *testing.T) {
	account := studentAccount(t, "senha123")

	var newHash string
	repo := &fakeRecoveryRepo{
		findByEmailFn: func(ctx context.Context, email string) (*models.Account, error) {
			if email != account.Email {
				t.Fatalf("unexpected email %q", email)
			}
			return account, nil
		},
		updatePasswordHashFn: func(ctx context.Context, id uuid.UUID, hash string) error {
			newHash = hash
			return nil
		},
	}
	codes := newMemoryCodeStore()

	svc := newRecoveryService(t, repo, codes, config.AppEnvDev)

	resp, err := svc.RequestCode(context.Background(), RecoveryRequest{Email: account.Email})
	if err != nil {
		t.Fatalf("request code: %v", err)
	}
	if resp.DevCode == nil || len(*resp.DevCode) != 6 {
		t.Fatalf("expected 6-digit dev code, got %v", resp.DevCode)
	}

	err = svc.ConfirmReset(context.Background(), RecoveryConfirmRequest{
		Email:       account.Email,
		Code:        *resp.DevCode,
		NewPassword: "novasenha",
	})
	if err != nil {
		t.Fatalf("confirm reset: %v", err)
	}

	ok, err := security.VerifyPassword("novasenha", newHash)
	if err != nil || !ok {
		t.Fatalf("new password does not verify (ok=%v err=%v)", ok, err)
	}
	if len(codes.codes) != 0 {
		t.Fatal("code must be consumed after reset")
	}
}

func TestConfirmResetWrongCode(t *testing.T) {
	account := studentAccount(t, "senha123")

	repo := &fakeRecoveryRepo{
		findByEmailFn: func(ctx context.Context, email string) (*models.Account, error) {
			return account, nil
		},
		updatePasswordHashFn: func(ctx context.Context, id uuid.UUID, hash string) error {
			t.Fatal("password must not be updated")
			return nil
		},
	}
	codes := newMemoryCodeStore()
	codes.codes[hashEmail(account.Email)] = "123456"

	svc := newRecoveryService(t, repo, codes, config.AppEnvProd)

	err := svc.ConfirmReset(context.Background(), RecoveryConfirmRequest{
		Email:       account.Email,
		Code:        "654321",
		NewPassword: "novasenha",
	})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestConfirmResetExpiredCode(t *testing.T) {
	repo := &fakeRecoveryRepo{
		findByEmailFn: func(ctx context.Context, email string) (*models.Account, error) {
			t.Fatal("lookup must not happen without a stored code")
			return nil, nil
		},
	}

	svc := newRecoveryService(t, repo, newMemoryCodeStore(), config.AppEnvProd)

	err := svc.ConfirmReset(context.Background(), RecoveryConfirmRequest{
		Email:       "aluno@escola.edu.br",
		Code:        "123456",
		NewPassword: "novasenha",
	})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}
